package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/drivelink/drivelink-backend/internal/models"
	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

const openFeedKey = "requests:open:feed"

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// CacheOpenFeed stores the driver-facing open request feed
func CacheOpenFeed(ctx context.Context, requests []models.BookingRequest) error {
	data, err := json.Marshal(requests)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, openFeedKey, data, time.Minute).Err()
}

// GetCachedOpenFeed retrieves the cached open request feed
func GetCachedOpenFeed(ctx context.Context) ([]models.BookingRequest, error) {
	data, err := RedisClient.Get(ctx, openFeedKey).Result()
	if err != nil {
		return nil, err
	}

	var requests []models.BookingRequest
	if err := json.Unmarshal([]byte(data), &requests); err != nil {
		return nil, err
	}

	return requests, nil
}

// InvalidateOpenFeed drops the cached feed after a request is created,
// selected or finalized
func InvalidateOpenFeed(ctx context.Context) error {
	return RedisClient.Del(ctx, openFeedKey).Err()
}

// SetDriverAvailability stores driver availability status
func SetDriverAvailability(ctx context.Context, driverID uint, isAvailable bool) error {
	key := fmt.Sprintf("driver:availability:%d", driverID)
	value := "true"
	if !isAvailable {
		value = "false"
	}
	return RedisClient.Set(ctx, key, value, time.Hour).Err()
}

// GetDriverAvailability retrieves driver availability status
func GetDriverAvailability(ctx context.Context, driverID uint) (bool, error) {
	key := fmt.Sprintf("driver:availability:%d", driverID)
	result, err := RedisClient.Get(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return result == "true", nil
}

// PublishBookingEvent publishes a booking lifecycle event to Redis pub/sub
func PublishBookingEvent(ctx context.Context, event string, requestID uint, data map[string]interface{}) error {
	eventData := map[string]interface{}{
		"event":     event,
		"requestId": requestID,
		"data":      data,
		"timestamp": time.Now().Unix(),
	}

	jsonData, err := json.Marshal(eventData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, "booking:events", jsonData).Err()
}
