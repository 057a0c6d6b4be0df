package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoomCache mirrors each room's shared countdown so a restarted process
// resumes from the last value clients agreed on
type RoomCache interface {
	SetTimer(ctx context.Context, roomID string, seconds int) error
	// GetTimer reports ok=false when no timer was mirrored for roomID
	GetTimer(ctx context.Context, roomID string) (seconds int, ok bool, err error)
}

type roomCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomCache creates a new room cache
func NewRoomCache(client *redis.Client) RoomCache {
	return &roomCache{
		client: client,
		ttl:    24 * time.Hour, // Rooms expire after 24h
	}
}

func (c *roomCache) timerKey(roomID string) string {
	return fmt.Sprintf("room:%s:timer", roomID)
}

func (c *roomCache) SetTimer(ctx context.Context, roomID string, seconds int) error {
	return c.client.Set(ctx, c.timerKey(roomID), seconds, c.ttl).Err()
}

func (c *roomCache) GetTimer(ctx context.Context, roomID string) (int, bool, error) {
	data, err := c.client.Get(ctx, c.timerKey(roomID)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	seconds, err := strconv.Atoi(data)
	if err != nil {
		return 0, false, err
	}
	return seconds, true, nil
}
