package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/userkv/pkg/adapters/memory"
	"github.com/aretw0/userkv/pkg/core"
	"github.com/aretw0/userkv/pkg/record"
)

func TestStore_Hashes(t *testing.T) {
	ctx := context.Background()

	t.Run("missing hash reads empty", func(t *testing.T) {
		s := memory.New()

		fields, err := s.GetAll(ctx, "user:1")
		require.NoError(t, err)
		assert.Empty(t, fields)

		_, err = s.GetField(ctx, "user:1", "email")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("set merges fields", func(t *testing.T) {
		s := memory.New()

		require.NoError(t, s.SetFields(ctx, "user:1", []record.Field{{"a", "1"}, {"b", "2"}}))
		require.NoError(t, s.SetFields(ctx, "user:1", []record.Field{{"b", "3"}}))

		fields, err := s.GetAll(ctx, "user:1")
		require.NoError(t, err)
		assert.Equal(t, core.Fields{"a": "1", "b": "3"}, fields)
	})

	t.Run("returned map is a copy", func(t *testing.T) {
		s := memory.New()
		require.NoError(t, s.SetFields(ctx, "k", []record.Field{{"a", "1"}}))

		fields, err := s.GetAll(ctx, "k")
		require.NoError(t, err)
		fields["a"] = "changed"

		v, err := s.GetField(ctx, "k", "a")
		require.NoError(t, err)
		assert.Equal(t, "1", v)
	})

	t.Run("empty field list rejected", func(t *testing.T) {
		s := memory.New()
		assert.ErrorIs(t, s.SetFields(ctx, "k", nil), core.ErrInvalidKey)
	})

	t.Run("wrong type", func(t *testing.T) {
		s := memory.New()
		require.NoError(t, s.AddScore(ctx, "board", "1", 10))

		assert.ErrorIs(t, s.SetFields(ctx, "board", []record.Field{{"a", "1"}}), memory.ErrWrongType)
		_, err := s.GetField(ctx, "board", "a")
		assert.ErrorIs(t, err, memory.ErrWrongType)
	})
}

func TestStore_Scan(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	for _, k := range []string{"user:1", "user:2", "user:3", "user:4", "user:5"} {
		require.NoError(t, s.SetFields(ctx, k, []record.Field{{"a", "1"}}))
	}
	require.NoError(t, s.AddScore(ctx, "leaderboard", "1", 1))

	t.Run("pages until cursor is zero", func(t *testing.T) {
		var all []string
		var cursor uint64
		calls := 0
		for {
			keys, next, err := s.Scan(ctx, cursor, "", 2)
			require.NoError(t, err)
			all = append(all, keys...)
			calls++
			if next == 0 {
				break
			}
			cursor = next
		}
		assert.Equal(t, 3, calls)
		assert.Equal(t, []string{"leaderboard", "user:1", "user:2", "user:3", "user:4", "user:5"}, all)
	})

	t.Run("match pattern", func(t *testing.T) {
		keys, next, err := s.Scan(ctx, 0, "user:*", 100)
		require.NoError(t, err)
		assert.Zero(t, next)
		assert.Len(t, keys, 5)
		assert.NotContains(t, keys, "leaderboard")
	})

	t.Run("cursor past end", func(t *testing.T) {
		keys, next, err := s.Scan(ctx, 99, "", 10)
		require.NoError(t, err)
		assert.Empty(t, keys)
		assert.Zero(t, next)
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, _, err := s.Scan(ctx, 0, "user:[", 10)
		assert.Error(t, err)
	})

	t.Run("empty store", func(t *testing.T) {
		keys, next, err := memory.New().Scan(ctx, 0, "", 10)
		require.NoError(t, err)
		assert.Empty(t, keys)
		assert.Zero(t, next)
	})
}

func TestStore_RevRangeWithScores(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	scores := map[string]float64{"a": 5, "b": 9, "c": 1, "d": 9}
	for m, sc := range scores {
		require.NoError(t, s.AddScore(ctx, "board", m, sc))
	}

	got, err := s.RevRangeWithScores(ctx, "board", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []core.ScoredMember{{"d", 9}, {"b", 9}, {"a", 5}}, got)

	got, err = s.RevRangeWithScores(ctx, "board", 0, -1)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = s.RevRangeWithScores(ctx, "board", -1, -1)
	require.NoError(t, err)
	assert.Equal(t, []core.ScoredMember{{"c", 1}}, got)

	got, err = s.RevRangeWithScores(ctx, "missing", 0, 9)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.SetFields(ctx, "user:1", []record.Field{{"n", "x"}})
				_, _ = s.GetAll(ctx, "user:1")
				_, _, _ = s.Scan(ctx, 0, "", 10)
			}
		}(i)
	}
	wg.Wait()

	state := s.State().(memory.StoreState)
	assert.Equal(t, 1, state.Hashes)
}
