package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*TriageCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTriageCache(client, time.Minute), mr
}

func TestTriageCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	got, err := c.Get(ctx, "chest pain")
	require.NoError(t, err)
	assert.Nil(t, got)

	want := &model.TriageResult{Department: model.DepartmentCardiology, Confidence: 0.9, Source: model.TriageSourcePrimary}
	require.NoError(t, c.Set(ctx, "chest pain", want))

	// ключ не зависит от регистра и пробелов по краям
	got, err = c.Get(ctx, "  Chest Pain ")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.Equal(t, time.Minute, mr.TTL(Key("chest pain")))

	mr.FastForward(2 * time.Minute)
	got, err = c.Get(ctx, "chest pain")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTriageCache_ErrorsWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, err := c.Get(context.Background(), "chest pain")
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("Dizzy"), Key(" dizzy "))
	assert.NotEqual(t, Key("dizzy"), Key("dizziness"))
	assert.Contains(t, Key("dizzy"), "smartcare:triage:")
}
