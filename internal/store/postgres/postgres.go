// Package postgres implements the account, session, and profile stores on
// PostgreSQL. The combat hit path runs inside a single transaction with row
// locks, which is the transactional analogue of the in-memory store's
// critical section.
package postgres

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Config holds database configuration
type Config struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// LoadConfigFromEnv loads database configuration from environment variables
func LoadConfigFromEnv() *Config {
	return &Config{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnv("DB_PORT", "5432"),
		User:            getEnv("DB_USER", "embervale"),
		Password:        getEnv("DB_PASSWORD", "embervale_password"),
		DBName:          getEnv("DB_NAME", "embervale_db"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
	}
}

// NewConnection creates a new database connection with the provided configuration
func NewConnection(config *Config, logger *zap.Logger) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connected",
		zap.String("host", config.Host),
		zap.String("port", config.Port),
		zap.String("dbname", config.DBName),
		zap.Int("max_open_conns", config.MaxOpenConns),
		zap.Int("max_idle_conns", config.MaxIdleConns),
	)

	return &DB{db}, nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// InitSchema creates database tables if they don't exist
func (db *DB) InitSchema() error {
	schema := `
	-- Users table
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_login_at TIMESTAMPTZ NULL
	);

	-- Bans table
	CREATE TABLE IF NOT EXISTS user_bans (
		ban_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		reason TEXT NOT NULL,
		banned_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);

	-- Auth sessions table
	CREATE TABLE IF NOT EXISTS auth_sessions (
		session_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		issued_at TIMESTAMPTZ NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		revoked_at TIMESTAMPTZ NULL
	);

	-- Player profiles table (a user may own several)
	CREATE TABLE IF NOT EXISTS player_profiles (
		player_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		display_name TEXT NOT NULL,
		skill_id TEXT NULL,
		equipped_weapon_id TEXT NULL,
		pos_x DOUBLE PRECISION NOT NULL DEFAULT 0,
		pos_y DOUBLE PRECISION NOT NULL DEFAULT 0,
		can_receive_pvp_knockback BOOLEAN NOT NULL DEFAULT TRUE,
		attributes JSONB NOT NULL DEFAULT '{}',
		assets JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	-- Weapon ownership set
	CREATE TABLE IF NOT EXISTS player_weapons_owned (
		player_id TEXT NOT NULL REFERENCES player_profiles(player_id) ON DELETE CASCADE,
		weapon_id TEXT NOT NULL,
		obtained_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (player_id, weapon_id)
	);

	-- Quest progress (upsert on re-accept)
	CREATE TABLE IF NOT EXISTS player_quests (
		player_id TEXT NOT NULL REFERENCES player_profiles(player_id) ON DELETE CASCADE,
		quest_id TEXT NOT NULL,
		status TEXT NOT NULL,
		accepted_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (player_id, quest_id)
	);

	-- Append-only combat audit trail
	CREATE TABLE IF NOT EXISTS combat_hit_events (
		hit_id TEXT PRIMARY KEY,
		attacker_player_id TEXT NOT NULL REFERENCES player_profiles(player_id),
		target_player_id TEXT NOT NULL REFERENCES player_profiles(player_id),
		weapon_id TEXT NOT NULL,
		knockback_applied_x DOUBLE PRECISION NOT NULL,
		knockback_applied_y DOUBLE PRECISION NOT NULL,
		was_applied BOOLEAN NOT NULL,
		server_reason TEXT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	-- Create indexes for performance
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users(lower(username));
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users(lower(email));
	CREATE INDEX IF NOT EXISTS idx_user_bans_user_id ON user_bans(user_id);
	CREATE INDEX IF NOT EXISTS idx_auth_sessions_user_id ON auth_sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_player_profiles_user_id ON player_profiles(user_id);
	CREATE INDEX IF NOT EXISTS idx_player_quests_player_id ON player_quests(player_id);
	CREATE INDEX IF NOT EXISTS idx_combat_hit_events_attacker ON combat_hit_events(attacker_player_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_combat_hit_events_target ON combat_hit_events(target_player_id, created_at DESC);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
