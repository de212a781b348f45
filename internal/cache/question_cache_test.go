package cache

import (
	"assessment_backend/internal/model"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*RedisQuestionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisQuestionCache(rdb, time.Minute), mr
}

func TestRedisQuestionCache(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	_, err := c.GetQuestions(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)

	questions := []model.QuestionView{
		{ID: 1, Type: model.QuestionSingleChoice, Prompt: "2+2", Weight: 10, Options: []model.OptionView{{ID: 1, Label: "4"}}},
		{ID: 2, Type: model.QuestionEssay, Prompt: "capital of France", Weight: 5},
	}
	require.NoError(t, c.SetQuestions(ctx, 1, questions))

	got, err := c.GetQuestions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, questions, got)
	assert.Equal(t, time.Minute, mr.TTL(questionsKey(1)))

	require.NoError(t, c.Invalidate(ctx, 1))
	_, err = c.GetQuestions(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisQuestionCacheExpiry(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	require.NoError(t, c.SetQuestions(ctx, 7, []model.QuestionView{{ID: 3}}))
	mr.FastForward(2 * time.Minute)

	_, err := c.GetQuestions(ctx, 7)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisQuestionCacheCorrupt(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set(questionsKey(9), "not-json"))

	_, err := c.GetQuestions(context.Background(), 9)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}
