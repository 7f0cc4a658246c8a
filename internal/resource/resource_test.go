package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID   string
	Name string
}

func rowID(r row) string { return r.ID }

func newRowCollection(fetch func(context.Context) ([]row, error)) *Collection[row] {
	return NewCollection("rows", fetch, rowID)
}

func TestCollectionRefresh(t *testing.T) {
	t.Run("success replaces items and clears error", func(t *testing.T) {
		c := newRowCollection(func(ctx context.Context) ([]row, error) {
			return []row{{ID: "a"}, {ID: "b"}}, nil
		})

		c.Refresh(context.Background())

		assert.Equal(t, 2, c.Len())
		assert.Empty(t, c.Err())
		assert.False(t, c.Loading())
	})

	t.Run("failure empties items and records a message", func(t *testing.T) {
		c := newRowCollection(func(ctx context.Context) ([]row, error) {
			return nil, errors.New("connection refused")
		})

		c.Refresh(context.Background())

		assert.NotNil(t, c.Items())
		assert.Empty(t, c.Items())
		assert.Equal(t, "failed to load rows: connection refused", c.Err())
		assert.False(t, c.Loading())
	})

	t.Run("success after failure clears the message", func(t *testing.T) {
		var fail bool
		c := newRowCollection(func(ctx context.Context) ([]row, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return []row{{ID: "a"}}, nil
		})

		fail = true
		c.Refresh(context.Background())
		require.NotEmpty(t, c.Err())

		fail = false
		c.Refresh(context.Background())
		assert.Empty(t, c.Err())
		assert.Equal(t, 1, c.Len())
	})

	t.Run("nil fetch result reads as empty, not nil", func(t *testing.T) {
		c := newRowCollection(func(ctx context.Context) ([]row, error) {
			return nil, nil
		})

		c.Refresh(context.Background())

		assert.NotNil(t, c.Items())
		assert.Empty(t, c.Items())
		assert.Empty(t, c.Err())
	})

	t.Run("stale refresh response is discarded", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		calls := 0
		c := newRowCollection(func(ctx context.Context) ([]row, error) {
			calls++
			if calls == 1 {
				close(started)
				<-release
				return []row{{ID: "stale"}}, nil
			}
			return []row{{ID: "fresh"}}, nil
		})

		done := make(chan struct{})
		go func() {
			c.Refresh(context.Background())
			close(done)
		}()
		<-started

		// Second refresh supersedes the in-flight one.
		c.Refresh(context.Background())
		close(release)
		<-done

		items := c.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "fresh", items[0].ID)
		assert.False(t, c.Loading())
	})
}

func TestCollectionPatches(t *testing.T) {
	seed := func() *Collection[row] {
		c := newRowCollection(func(ctx context.Context) ([]row, error) {
			return []row{{ID: "a", Name: "first"}, {ID: "b", Name: "second"}}, nil
		})
		c.Refresh(context.Background())
		return c
	}

	t.Run("prepend puts the new row first", func(t *testing.T) {
		c := seed()
		c.Prepend(row{ID: "c", Name: "newest"})

		items := c.Items()
		require.Len(t, items, 3)
		assert.Equal(t, "c", items[0].ID)
		assert.Equal(t, "a", items[1].ID)
	})

	t.Run("replace swaps in place without changing length", func(t *testing.T) {
		c := seed()
		c.Replace("b", row{ID: "b", Name: "renamed"})

		assert.Equal(t, 2, c.Len())
		got, ok := c.Get("b")
		require.True(t, ok)
		assert.Equal(t, "renamed", got.Name)
	})

	t.Run("replace of an unknown id is a no-op", func(t *testing.T) {
		c := seed()
		c.Replace("zzz", row{ID: "zzz"})

		assert.Equal(t, 2, c.Len())
		_, ok := c.Get("zzz")
		assert.False(t, ok)
	})

	t.Run("remove drops exactly the matching row", func(t *testing.T) {
		c := seed()
		c.Remove("a")

		assert.Equal(t, 1, c.Len())
		_, ok := c.Get("a")
		assert.False(t, ok)
		_, ok = c.Get("b")
		assert.True(t, ok)
	})

	t.Run("remove of an unknown id is a no-op", func(t *testing.T) {
		c := seed()
		c.Remove("zzz")

		assert.Equal(t, 2, c.Len())
	})

	t.Run("items returns a copy", func(t *testing.T) {
		c := seed()
		items := c.Items()
		items[0].Name = "mutated"

		got, ok := c.Get("a")
		require.True(t, ok)
		assert.Equal(t, "first", got.Name)
	})
}

func TestCollectionGet(t *testing.T) {
	c := newRowCollection(func(ctx context.Context) ([]row, error) {
		return []row{{ID: "x", Name: "only"}}, nil
	})
	c.Refresh(context.Background())

	got, ok := c.Get("x")
	require.True(t, ok)
	assert.Equal(t, "only", got.Name)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}
