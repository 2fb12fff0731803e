// pkg/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/kaqfa/student-space/internal/models"
)

const (
	quizTTL        = 24 * time.Hour
	leaderboardTTL = 24 * time.Hour
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(opts Options) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})
	return &RedisCache{client: client}
}

func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func quizKey(id uint) string        { return fmt.Sprintf("quiz:%d", id) }
func leaderboardKey(id uint) string { return fmt.Sprintf("leaderboard:%d", id) }

// SetQuiz caches a quiz template together with its candidate ids and point total.
func (c *RedisCache) SetQuiz(ctx context.Context, quiz *models.Quiz) error {
	data, err := json.Marshal(cachedQuiz{Quiz: *quiz, CandidatePoints: quiz.CandidatePoints})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, quizKey(quiz.ID), data, quizTTL).Err()
}

// GetQuiz returns redis.Nil when the quiz is not cached.
func (c *RedisCache) GetQuiz(ctx context.Context, id uint) (*models.Quiz, error) {
	data, err := c.client.Get(ctx, quizKey(id)).Bytes()
	if err != nil {
		return nil, err
	}

	var cached cachedQuiz
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, err
	}
	quiz := cached.Quiz
	quiz.CandidatePoints = cached.CandidatePoints
	return &quiz, nil
}

func (c *RedisCache) InvalidateQuiz(ctx context.Context, id uint) error {
	return c.client.Del(ctx, quizKey(id)).Err()
}

// SetLeaderboard replaces the quiz leaderboard with the given best scores.
func (c *RedisCache) SetLeaderboard(ctx context.Context, quizID uint, entries []models.LeaderboardEntry) error {
	key := leaderboardKey(quizID)

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	for _, entry := range entries {
		pipe.ZAdd(ctx, key, &redis.Z{
			Score:  entry.BestScore,
			Member: entry.Username,
		})
	}
	pipe.Expire(ctx, key, leaderboardTTL)

	_, err := pipe.Exec(ctx)
	return err
}

// GetLeaderboard returns entries by descending score, ties by descending username.
// A missing key yields an empty slice.
func (c *RedisCache) GetLeaderboard(ctx context.Context, quizID uint, limit int) ([]models.LeaderboardEntry, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	results, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey(quizID), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		entries[i] = models.LeaderboardEntry{
			Username:  member,
			BestScore: z.Score,
		}
	}
	return entries, nil
}

// cachedQuiz carries fields the model hides from JSON.
type cachedQuiz struct {
	models.Quiz
	CandidatePoints int `json:"candidate_points"`
}
