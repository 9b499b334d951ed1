package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plant struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func TestGetSetForget(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemory(), "planty:")

	var p plant
	assert.False(t, s.Get(ctx, "plants:1", &p))

	require.NoError(t, s.Set(ctx, "plants:1", plant{Name: "Fern", Price: 12.5}, time.Minute))
	assert.True(t, s.Get(ctx, "plants:1", &p))
	assert.Equal(t, "Fern", p.Name)

	require.NoError(t, s.Forget(ctx, "plants:1"))
	assert.False(t, s.Get(ctx, "plants:1", &p))
}

func TestMemoryExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	b := NewMemory().(*memoryBackend)
	b.now = func() time.Time { return now }
	s := New(b, "")

	require.NoError(t, s.Set(context.Background(), "k", 1, time.Second))
	now = now.Add(2 * time.Second)

	var v int
	assert.False(t, s.Get(context.Background(), "k", &v))
}

func TestRememberCallsLoaderOnce(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemory(), "")
	calls := 0
	load := func() (interface{}, error) {
		calls++
		return []plant{{Name: "Aloe", Price: 8}}, nil
	}

	var first, second []plant
	require.NoError(t, s.Remember(ctx, "plants:all", time.Minute, &first, load))
	require.NoError(t, s.Remember(ctx, "plants:all", time.Minute, &second, load))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, "Aloe", second[0].Name)
}

func TestRememberPropagatesLoaderError(t *testing.T) {
	s := New(NewMemory(), "")
	boom := errors.New("store down")

	var out []plant
	err := s.Remember(context.Background(), "plants:all", time.Minute, &out, func() (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	assert.False(t, s.Get(context.Background(), "plants:all", &out))
}
