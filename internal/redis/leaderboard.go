package redis

import (
	"context"
	"fmt"

	"github.com/ember-vale/api/internal/models"
)

const leaderboardHitsKey = "leaderboard:hits"

// RecordHit increments the attacker's landed-hit count.
func (c *Client) RecordHit(ctx context.Context, attackerPlayerID string) error {
	return c.ZIncrBy(ctx, leaderboardHitsKey, 1, attackerPlayerID).Err()
}

// TopHitters returns the top N attackers by landed hits, best first.
func (c *Client) TopHitters(ctx context.Context, limit int64) ([]models.LeaderboardEntry, error) {
	rows, err := c.ZRevRangeWithScores(ctx, leaderboardHitsKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get top hitters: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		playerID, ok := row.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, models.LeaderboardEntry{
			PlayerID: playerID,
			Hits:     row.Score,
			Rank:     int64(i + 1),
		})
	}
	return entries, nil
}
