package resource

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncurnier/artlease/internal/models"
	"github.com/ncurnier/artlease/internal/store"
)

func newTestRegistry(t *testing.T) (*Registry, *store.Store) {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate("../../migrations"))

	r := NewRegistry(s)
	r.RefreshAll(context.Background())
	return r, s
}

func TestRegistryRefreshAll(t *testing.T) {
	r, _ := newTestRegistry(t)

	assert.False(t, r.AnyLoading())
	assert.Empty(t, r.Artworks.Err())
	assert.Empty(t, r.Newsletter.Err())

	// Seeded plans come up warm, cheapest first.
	formulas := r.Formulas.Items()
	require.Len(t, formulas, 3)
	assert.Equal(t, "Essentielle", formulas[0].Name)
}

func TestArtworksWriteThrough(t *testing.T) {
	r, s := newTestRegistry(t)
	ctx := context.Background()

	created, err := r.Artworks.Create(ctx, models.Artwork{Title: "Nympheas", Artist: "Monet", PricePerMonth: 200})
	require.NoError(t, err)

	// Cache and store agree without another refresh.
	items := r.Artworks.Items()
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)

	stored, err := s.GetArtworkByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nympheas", stored.Title)

	_, err = r.Artworks.SetAvailability(ctx, created.ID, models.AvailabilityReserved)
	require.NoError(t, err)
	cached, ok := r.Artworks.Get(created.ID)
	require.True(t, ok)
	assert.Equal(t, models.AvailabilityReserved, cached.Availability)

	require.NoError(t, r.Artworks.Delete(ctx, created.ID))
	assert.Zero(t, r.Artworks.Len())
	_, err = s.GetArtworkByID(ctx, created.ID)
	assert.Error(t, err)
}

func TestFailedMutationLeavesCacheUntouched(t *testing.T) {
	r, s := newTestRegistry(t)
	ctx := context.Background()

	client, err := r.Clients.Create(ctx, models.Client{Name: "C", Email: "c@example.com"})
	require.NoError(t, err)
	artwork, err := r.Artworks.Create(ctx, models.Artwork{Title: "A", Artist: "X", PricePerMonth: 100})
	require.NoError(t, err)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err = r.Locations.Create(ctx, models.Location{
		ClientID:  client.ID,
		ArtworkID: artwork.ID,
		StartDate: start,
		EndDate:   start, // invalid period
	})
	require.ErrorIs(t, err, store.ErrInvalidPeriod)
	assert.Zero(t, r.Locations.Len())

	locations, err := s.ListLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, locations)
}

func TestLocationBatchCommitsAllOrNothing(t *testing.T) {
	r, s := newTestRegistry(t)
	ctx := context.Background()

	client, err := r.Clients.Create(ctx, models.Client{Name: "C", Email: "c@example.com"})
	require.NoError(t, err)
	first, err := r.Artworks.Create(ctx, models.Artwork{Title: "First", Artist: "X", PricePerMonth: 200})
	require.NoError(t, err)
	second, err := r.Artworks.Create(ctx, models.Artwork{Title: "Second", Artist: "X", PricePerMonth: 150})
	require.NoError(t, err)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	batch := []models.Location{
		{ClientID: client.ID, ArtworkID: first.ID, StartDate: start, EndDate: start.AddDate(0, 3, 0), MonthlyPrice: 200},
		{ClientID: client.ID, ArtworkID: second.ID, StartDate: start, EndDate: start, MonthlyPrice: 150},
	}

	// The second item is invalid: neither the cache nor the store may
	// keep the first one.
	_, err = r.Locations.CreateBatch(ctx, batch)
	require.ErrorIs(t, err, store.ErrInvalidPeriod)
	assert.Zero(t, r.Locations.Len())

	locations, err := s.ListLocations(ctx)
	require.NoError(t, err)
	assert.Empty(t, locations)

	batch[1].EndDate = start.AddDate(0, 6, 0)
	created, err := r.Locations.CreateBatch(ctx, batch)
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Equal(t, 2, r.Locations.Len())
}

func TestProspectConversionFlow(t *testing.T) {
	r, s := newTestRegistry(t)
	ctx := context.Background()

	p, err := r.Prospects.Create(ctx, models.Prospect{Name: "Galerie", Email: "g@example.com"})
	require.NoError(t, err)

	// Conversion goes through the store transaction; callers then patch
	// both collections the way the admin handler does.
	client, err := s.ConvertProspect(ctx, p.ID)
	require.NoError(t, err)
	r.Clients.Prepend(*client)
	converted, err := s.GetProspectByID(ctx, p.ID)
	require.NoError(t, err)
	r.Prospects.Replace(p.ID, *converted)

	cachedProspect, ok := r.Prospects.Get(p.ID)
	require.True(t, ok)
	assert.Equal(t, models.ProspectConverted, cachedProspect.Status)

	cachedClient, ok := r.Clients.Get(client.ID)
	require.True(t, ok)
	assert.Equal(t, "Galerie", cachedClient.Name)
}

func TestNewsletterAggregate(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	sub, err := r.Newsletter.Subscribe(ctx, models.NewsletterSubscriber{Email: "reader@example.com", Source: models.SourceNewsletter})
	require.NoError(t, err)
	assert.Equal(t, models.SubscriberActive, sub.Status)
	assert.Equal(t, 1, r.Newsletter.Subscribers.Len())

	campaign, err := r.Newsletter.CreateCampaign(ctx, models.NewsletterCampaign{Title: "Autumn", Subject: "New this month"})
	require.NoError(t, err)
	assert.Equal(t, models.CampaignDraft, campaign.Status)

	sent, err := r.Newsletter.SendCampaign(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CampaignSent, sent.Status)
	assert.Equal(t, 1, sent.Recipients)
	require.NotNil(t, sent.SentAt)

	cached, ok := r.Newsletter.Campaigns.Get(campaign.ID)
	require.True(t, ok)
	assert.Equal(t, models.CampaignSent, cached.Status)

	// Unsubscribing shrinks the audience for the next send.
	_, err = r.Newsletter.SetSubscriberStatus(ctx, sub.ID, models.SubscriberUnsubscribed)
	require.NoError(t, err)

	second, err := r.Newsletter.CreateCampaign(ctx, models.NewsletterCampaign{Title: "Winter", Subject: "S"})
	require.NoError(t, err)
	sentSecond, err := r.Newsletter.SendCampaign(ctx, second.ID)
	require.NoError(t, err)
	assert.Zero(t, sentSecond.Recipients)
}

func TestReconcilerPicksUpExternalWrites(t *testing.T) {
	r, s := newTestRegistry(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Write behind the cache's back, then let the reconciler run.
	_, err := s.CreateArtwork(ctx, models.Artwork{Title: "Hidden", Artist: "X", PricePerMonth: 50})
	require.NoError(t, err)
	assert.Zero(t, r.Artworks.Len())

	r.StartReconciler(ctx, 10*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for r.Artworks.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("reconciler never refreshed the artworks collection")
		case <-time.After(10 * time.Millisecond):
		}
	}
	assert.Equal(t, 1, r.Artworks.Len())
}
