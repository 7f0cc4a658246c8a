package cart

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncurnier/artlease/internal/models"
)

func TestCartAdd(t *testing.T) {
	svc := NewService(NewMemStore())

	t.Run("assigns an item id and computes the rental window", func(t *testing.T) {
		start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		added := svc.Add("v1", models.CartItem{
			ArtworkID:     "art-1",
			Title:         "Nympheas",
			PricePerMonth: 200,
			Duration:      3,
			StartDate:     start,
		})

		assert.NotEmpty(t, added.ID)
		assert.Equal(t, start.AddDate(0, 3, 0), added.EndDate)

		items := svc.Items("v1")
		require.Len(t, items, 1)
		assert.Equal(t, added.ID, items[0].ID)
	})

	t.Run("duration below one is clamped to one month", func(t *testing.T) {
		added := svc.Add("v2", models.CartItem{ArtworkID: "art-2", Duration: 0})
		assert.Equal(t, 1, added.Duration)
		assert.Equal(t, added.StartDate.AddDate(0, 1, 0), added.EndDate)
	})

	t.Run("zero start date defaults to today", func(t *testing.T) {
		added := svc.Add("v3", models.CartItem{ArtworkID: "art-3", Duration: 2})
		assert.False(t, added.StartDate.IsZero())
	})
}

func TestCartTotals(t *testing.T) {
	svc := NewService(NewMemStore())
	svc.Add("v", models.CartItem{ArtworkID: "a", PricePerMonth: 200, Duration: 3})
	svc.Add("v", models.CartItem{ArtworkID: "b", PricePerMonth: 150, Duration: 6})

	assert.Equal(t, 2, svc.Count("v"))
	assert.InDelta(t, 200*3+150*6, svc.TotalPrice("v"), 0.001)

	// Another visitor's basket is untouched.
	assert.Equal(t, 0, svc.Count("other"))
	assert.Zero(t, svc.TotalPrice("other"))
}

func TestCartRemove(t *testing.T) {
	svc := NewService(NewMemStore())
	a := svc.Add("v", models.CartItem{ArtworkID: "a", PricePerMonth: 100, Duration: 1})
	svc.Add("v", models.CartItem{ArtworkID: "b", PricePerMonth: 100, Duration: 1})

	svc.Remove("v", a.ID)
	items := svc.Items("v")
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ArtworkID)

	// Removing an id that is not there changes nothing.
	svc.Remove("v", "no-such-item")
	assert.Equal(t, 1, svc.Count("v"))
}

func TestCartUpdateDuration(t *testing.T) {
	svc := NewService(NewMemStore())
	start := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	item := svc.Add("v", models.CartItem{ArtworkID: "a", PricePerMonth: 120, Duration: 3, StartDate: start})

	svc.UpdateDuration("v", item.ID, 12)

	items := svc.Items("v")
	require.Len(t, items, 1)
	assert.Equal(t, 12, items[0].Duration)
	assert.Equal(t, start.AddDate(0, 12, 0), items[0].EndDate)
	assert.InDelta(t, 120*12, svc.TotalPrice("v"), 0.001)
}

func TestCartClear(t *testing.T) {
	svc := NewService(NewMemStore())
	svc.Add("v", models.CartItem{ArtworkID: "a", PricePerMonth: 100, Duration: 1})

	svc.Clear("v")

	assert.Empty(t, svc.Items("v"))
	assert.Zero(t, svc.TotalPrice("v"))
}

func TestCartCorruptStorage(t *testing.T) {
	kv := NewMemStore()
	kv.Set(cartKeyPrefix+"v", "{not json")

	svc := NewService(kv)
	assert.NotNil(t, svc.Items("v"))
	assert.Empty(t, svc.Items("v"))
}

func TestFileStorePersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")

	first := NewService(NewFileStore(path))
	added := first.Add("v", models.CartItem{ArtworkID: "a", Title: "Nympheas", PricePerMonth: 200, Duration: 3})

	// A new store over the same file sees the basket.
	second := NewService(NewFileStore(path))
	items := second.Items("v")
	require.Len(t, items, 1)
	assert.Equal(t, added.ID, items[0].ID)
	assert.Equal(t, "Nympheas", items[0].Title)

	second.Clear("v")
	third := NewService(NewFileStore(path))
	assert.Empty(t, third.Items("v"))
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.json")
	require.NoError(t, os.WriteFile(path, []byte("][garbage"), 0o600))

	fs := NewFileStore(path)
	_, ok := fs.Get("anything")
	assert.False(t, ok)

	// The store recovers: writes land and survive a reload.
	fs.Set("k", "v")
	reloaded := NewFileStore(path)
	got, ok := reloaded.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestFavorites(t *testing.T) {
	svc := NewService(NewMemStore())

	assert.False(t, svc.IsFavorite("v", "art-1"))

	on := svc.ToggleFavorite("v", "art-1")
	assert.True(t, on)
	assert.True(t, svc.IsFavorite("v", "art-1"))
	assert.Equal(t, []string{"art-1"}, svc.FavoriteIDs("v"))

	off := svc.ToggleFavorite("v", "art-1")
	assert.False(t, off)
	assert.False(t, svc.IsFavorite("v", "art-1"))
	assert.Empty(t, svc.FavoriteIDs("v"))
}
