package main

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ember-vale/api/internal/catalog"
	"github.com/ember-vale/api/internal/config"
	"github.com/ember-vale/api/internal/handlers"
	"github.com/ember-vale/api/internal/middleware"
	"github.com/ember-vale/api/internal/presence"
	"github.com/ember-vale/api/internal/redis"
	"github.com/ember-vale/api/internal/store"
	"github.com/ember-vale/api/internal/store/memory"
	"github.com/ember-vale/api/internal/store/postgres"
)

func main() {
	// Load .env if present; real env vars win
	_ = godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.LoadFromEnv()
	cat := catalog.Default()

	var (
		accounts store.AccountStore
		sessions store.SessionStore
		profiles store.ProfileStore
	)

	switch cfg.StoreBackend {
	case "postgres":
		dbCfg := postgres.LoadConfigFromEnv()
		db, err := postgres.NewConnection(dbCfg, logger)
		if err != nil {
			logger.Fatal("failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := db.InitSchema(); err != nil {
			logger.Fatal("failed to initialize schema", zap.Error(err))
		}

		pg := postgres.NewStore(db, cat)
		accounts, sessions, profiles = pg, pg, pg
	case "memory":
		mem := memory.NewAccountStore()
		accounts, sessions = mem, mem
		profiles = memory.NewProfileStore(cat)
	default:
		logger.Fatal("unknown STORE_BACKEND", zap.String("backend", cfg.StoreBackend))
	}

	// Redis, when configured, takes over sessions and enables the hit
	// leaderboard. The server runs fine without it.
	var leaderboard store.HitLeaderboard
	redisCfg := redis.LoadConfigFromEnv()
	if redisCfg.Enabled() {
		client, err := redis.NewClient(redisCfg, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()

		sessions = redis.NewSessionStore(client)
		leaderboard = client
	}

	tracker := presence.NewTracker()
	authn := middleware.NewAuthenticator(accounts, sessions)

	authHandler := handlers.NewAuthHandler(accounts, sessions, tracker, cfg.SessionTTL, logger)
	profileHandler := handlers.NewProfileHandler(accounts, profiles, logger)
	combatHandler := handlers.NewCombatHandler(profiles, leaderboard, logger)
	worldHandler := handlers.NewWorldHandler(accounts, profiles, tracker, leaderboard, logger)
	catalogHandler := handlers.NewCatalogHandler(cat)
	wsHandler := handlers.NewWSHandler(tracker, logger)

	// Setup HTTP routes
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Auth routes
	mux.HandleFunc("/auth/register", authHandler.Register)
	mux.HandleFunc("/auth/login", authHandler.Login)
	mux.HandleFunc("/auth/logout", authHandler.Logout)
	mux.HandleFunc("/auth/refresh", authHandler.Refresh)

	// Account and profile routes
	mux.HandleFunc("/profile/me", authn.RequireUser(profileHandler.Me))
	mux.HandleFunc("/profiles", authn.RequireUser(profileHandler.Profiles))
	mux.HandleFunc("/profiles/position", authn.RequireUser(profileHandler.UpdatePosition))
	mux.HandleFunc("/profiles/equip", authn.RequireUser(profileHandler.Equip))
	mux.HandleFunc("/profiles/quests/accept", authn.RequireUser(profileHandler.AcceptQuest))

	// Combat routes
	mux.HandleFunc("/combat/hit", authn.RequireUser(combatHandler.Hit))
	mux.HandleFunc("/combat/log", authn.RequireUser(combatHandler.Log))

	// Presence and world routes
	mux.HandleFunc("/session/connect", authn.RequireUser(worldHandler.Connect))
	mux.HandleFunc("/session/disconnect", authn.RequireUser(worldHandler.Disconnect))
	mux.HandleFunc("/session/online", authn.RequireUser(worldHandler.Online))
	mux.HandleFunc("/world/state", authn.RequireUser(worldHandler.State))
	mux.HandleFunc("/leaderboard/hits", authn.RequireUser(worldHandler.Leaderboard))
	mux.HandleFunc("/ws", authn.RequireUser(wsHandler.Serve))

	// Catalog routes
	mux.HandleFunc("/catalog/weapons", authn.RequireUser(catalogHandler.Weapons))
	mux.HandleFunc("/catalog/skills", authn.RequireUser(catalogHandler.Skills))
	mux.HandleFunc("/catalog/quests", authn.RequireUser(catalogHandler.Quests))

	// CORS middleware
	handler := corsMiddleware(mux)

	logger.Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("store_backend", cfg.StoreBackend),
		zap.Bool("redis", redisCfg.Enabled()),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
