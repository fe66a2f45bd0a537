package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const winsKey = "leaderboard:wins"

// LeaderboardCache tallies game wins per nickname across all rooms in a
// Redis ZSET.
type LeaderboardCache interface {
	IncrementWins(ctx context.Context, nickname string) error
	GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// LeaderboardEntry is a single leaderboard row.
type LeaderboardEntry struct {
	Nickname string `json:"nickname"`
	Wins     int    `json:"wins"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache.
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{client: client}
}

func (c *leaderboardCache) IncrementWins(ctx context.Context, nickname string) error {
	return c.client.ZIncrBy(ctx, winsKey, 1, nickname).Err()
}

func (c *leaderboardCache) GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, winsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			Nickname: z.Member.(string),
			Wins:     int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}
