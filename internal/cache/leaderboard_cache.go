package cache

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	leaderboardKey = "keno:lb"
	playsKey       = "keno:lb:plays"
)

// LeaderboardCache handles Redis ZSET operations for the global ranking
type LeaderboardCache interface {
	AddResult(ctx context.Context, nickname string, points int) error
	GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// LeaderboardEntry represents a single leaderboard entry
type LeaderboardEntry struct {
	Nickname      string `json:"nickname"`
	Score         int    `json:"score"`
	MatchesPlayed int    `json:"matchesPlayed"`
	Rank          int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
	}
}

// AddResult adds one match's points and play to the nickname's totals
func (c *leaderboardCache) AddResult(ctx context.Context, nickname string, points int) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZIncrBy(ctx, leaderboardKey, float64(points), nickname)
		pipe.HIncrBy(ctx, playsKey, nickname, 1)
		return nil
	})
	return err
}

func (c *leaderboardCache) GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	nicknames := make([]string, len(results))
	for i, z := range results {
		nicknames[i] = z.Member.(string)
	}
	plays, err := c.client.HMGet(ctx, playsKey, nicknames...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			Nickname: nicknames[i],
			Score:    int(z.Score),
			Rank:     i + 1,
		}
		if s, ok := plays[i].(string); ok {
			entries[i].MatchesPlayed, _ = strconv.Atoi(s)
		}
	}
	return entries, nil
}
