package cache

import (
	"assessment_backend/internal/model"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrCacheMiss = errors.New("cache miss")

// QuestionCache 缓存不含答案的题目列表
type QuestionCache interface {
	GetQuestions(ctx context.Context, sectionID uint) ([]model.QuestionView, error)
	SetQuestions(ctx context.Context, sectionID uint, questions []model.QuestionView) error
	Invalidate(ctx context.Context, sectionID uint) error
}

type RedisQuestionCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisQuestionCache(rdb *redis.Client, ttl time.Duration) *RedisQuestionCache {
	return &RedisQuestionCache{rdb: rdb, ttl: ttl}
}

func questionsKey(sectionID uint) string {
	return fmt.Sprintf("assessment:section:%d:questions", sectionID)
}

func (c *RedisQuestionCache) GetQuestions(ctx context.Context, sectionID uint) ([]model.QuestionView, error) {
	raw, err := c.rdb.Get(ctx, questionsKey(sectionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var questions []model.QuestionView
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *RedisQuestionCache) SetQuestions(ctx context.Context, sectionID uint, questions []model.QuestionView) error {
	raw, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, questionsKey(sectionID), raw, c.ttl).Err()
}

func (c *RedisQuestionCache) Invalidate(ctx context.Context, sectionID uint) error {
	return c.rdb.Del(ctx, questionsKey(sectionID)).Err()
}
