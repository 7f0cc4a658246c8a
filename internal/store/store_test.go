package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncurnier/artlease/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate("../../migrations"))
	return s
}

func TestMigrateIsIdempotent(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Migrate("../../migrations"))
	require.NoError(t, s.Migrate("../../migrations"))

	// Seed data is applied once, not twice.
	formulas, err := s.ListFormulas(context.Background())
	require.NoError(t, err)
	assert.Len(t, formulas, 3)
}

func TestArtworks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("create defaults availability to available", func(t *testing.T) {
		a, err := s.CreateArtwork(ctx, models.Artwork{Title: "Nympheas", Artist: "Monet", PricePerMonth: 200})
		require.NoError(t, err)
		assert.NotEmpty(t, a.ID)
		assert.Equal(t, models.AvailabilityAvailable, a.Availability)

		got, err := s.GetArtworkByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "Nympheas", got.Title)
		assert.Equal(t, models.AvailabilityAvailable, got.Availability)
	})

	t.Run("update returns the stored row", func(t *testing.T) {
		a, err := s.CreateArtwork(ctx, models.Artwork{Title: "Old", Artist: "X", PricePerMonth: 100})
		require.NoError(t, err)

		a.Title = "New"
		a.PricePerMonth = 150
		got, err := s.UpdateArtwork(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, "New", got.Title)
		assert.Equal(t, 150.0, got.PricePerMonth)
	})

	t.Run("availability transitions persist", func(t *testing.T) {
		a, err := s.CreateArtwork(ctx, models.Artwork{Title: "T", Artist: "X", PricePerMonth: 100})
		require.NoError(t, err)

		got, err := s.UpdateArtworkAvailability(ctx, a.ID, models.AvailabilityReserved)
		require.NoError(t, err)
		assert.Equal(t, models.AvailabilityReserved, got.Availability)
	})

	t.Run("delete removes the row", func(t *testing.T) {
		a, err := s.CreateArtwork(ctx, models.Artwork{Title: "Gone", Artist: "X", PricePerMonth: 100})
		require.NoError(t, err)
		require.NoError(t, s.DeleteArtwork(ctx, a.ID))

		_, err = s.GetArtworkByID(ctx, a.ID)
		assert.Error(t, err)
	})
}

func TestProspects(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("create defaults status and source", func(t *testing.T) {
		p, err := s.CreateProspect(ctx, models.Prospect{Name: "Alice", Email: "alice@example.com"})
		require.NoError(t, err)
		assert.Equal(t, models.ProspectNew, p.Status)
		assert.Equal(t, models.SourceManual, p.Source)
	})

	t.Run("explicit source is kept", func(t *testing.T) {
		p, err := s.CreateProspect(ctx, models.Prospect{Name: "Bob", Email: "bob@example.com", Source: models.SourceContact})
		require.NoError(t, err)
		assert.Equal(t, models.SourceContact, p.Source)
	})

	t.Run("status update round-trips", func(t *testing.T) {
		p, err := s.CreateProspect(ctx, models.Prospect{Name: "Carol", Email: "carol@example.com"})
		require.NoError(t, err)

		got, err := s.UpdateProspectStatus(ctx, p.ID, models.ProspectContacted)
		require.NoError(t, err)
		assert.Equal(t, models.ProspectContacted, got.Status)
	})
}

func TestConvertProspect(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreateProspect(ctx, models.Prospect{
		Name:    "Galerie Perrin",
		Company: "Perrin SARL",
		Email:   "contact@perrin.example",
		Phone:   "0102030405",
	})
	require.NoError(t, err)

	c, err := s.ConvertProspect(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, c.Name)
	assert.Equal(t, p.Email, c.Email)
	assert.Equal(t, models.ClientActive, c.Status)

	// Both sides of the transition landed.
	gotClient, err := s.GetClientByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Galerie Perrin", gotClient.Name)

	gotProspect, err := s.GetProspectByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProspectConverted, gotProspect.Status)

	// A second conversion of the same prospect is refused.
	_, err = s.ConvertProspect(ctx, p.ID)
	assert.Error(t, err)
}

func TestClients(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c, err := s.CreateClient(ctx, models.Client{Name: "Bureau Lyon", Email: "lyon@example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.ClientActive, c.Status)

	byEmail, err := s.GetClientByEmail(ctx, "lyon@example.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byEmail.ID)

	c.Status = models.ClientInactive
	c.Address = "12 rue de la Paix"
	got, err := s.UpdateClient(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, models.ClientInactive, got.Status)
	assert.Equal(t, "12 rue de la Paix", got.Address)
}

func TestLocations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, models.Client{Name: "C", Email: "c@example.com"})
	require.NoError(t, err)
	artwork, err := s.CreateArtwork(ctx, models.Artwork{Title: "A", Artist: "X", PricePerMonth: 200})
	require.NoError(t, err)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	t.Run("end before start is rejected", func(t *testing.T) {
		_, err := s.CreateLocation(ctx, models.Location{
			ClientID:  client.ID,
			ArtworkID: artwork.ID,
			StartDate: start,
			EndDate:   start.AddDate(0, -1, 0),
		})
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("end equal to start is rejected", func(t *testing.T) {
		_, err := s.CreateLocation(ctx, models.Location{
			ClientID:  client.ID,
			ArtworkID: artwork.ID,
			StartDate: start,
			EndDate:   start,
		})
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("create defaults to ongoing and round-trips services", func(t *testing.T) {
		l, err := s.CreateLocation(ctx, models.Location{
			ClientID:     client.ID,
			ArtworkID:    artwork.ID,
			StartDate:    start,
			EndDate:      start.AddDate(0, 6, 0),
			MonthlyPrice: 200,
			Services:     []string{"delivery", "insurance"},
		})
		require.NoError(t, err)
		assert.Equal(t, models.LocationOngoing, l.Status)

		got, err := s.GetLocationByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"delivery", "insurance"}, got.Services)
		assert.Empty(t, got.FormulaID)
	})

	t.Run("formula reference survives the round trip", func(t *testing.T) {
		l, err := s.CreateLocation(ctx, models.Location{
			ClientID:     client.ID,
			ArtworkID:    artwork.ID,
			FormulaID:    "f-prestige",
			StartDate:    start,
			EndDate:      start.AddDate(1, 0, 0),
			MonthlyPrice: 280,
		})
		require.NoError(t, err)

		got, err := s.GetLocationByID(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, "f-prestige", got.FormulaID)
	})

	t.Run("list by client only sees that client's contracts", func(t *testing.T) {
		other, err := s.CreateClient(ctx, models.Client{Name: "Other", Email: "other@example.com"})
		require.NoError(t, err)

		mine, err := s.ListLocationsByClient(ctx, client.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, mine)

		theirs, err := s.ListLocationsByClient(ctx, other.ID)
		require.NoError(t, err)
		assert.Empty(t, theirs)
	})

	t.Run("status update round-trips", func(t *testing.T) {
		l, err := s.CreateLocation(ctx, models.Location{
			ClientID:     client.ID,
			ArtworkID:    artwork.ID,
			StartDate:    start,
			EndDate:      start.AddDate(0, 3, 0),
			MonthlyPrice: 100,
		})
		require.NoError(t, err)

		got, err := s.UpdateLocationStatus(ctx, l.ID, models.LocationCompleted)
		require.NoError(t, err)
		assert.Equal(t, models.LocationCompleted, got.Status)
	})
}

func TestCreateLocationsIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, models.Client{Name: "C", Email: "batch@example.com"})
	require.NoError(t, err)
	first, err := s.CreateArtwork(ctx, models.Artwork{Title: "First", Artist: "X", PricePerMonth: 200})
	require.NoError(t, err)
	second, err := s.CreateArtwork(ctx, models.Artwork{Title: "Second", Artist: "X", PricePerMonth: 150})
	require.NoError(t, err)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	batch := []models.Location{
		{ClientID: client.ID, ArtworkID: first.ID, StartDate: start, EndDate: start.AddDate(0, 3, 0), MonthlyPrice: 200},
		{ClientID: client.ID, ArtworkID: second.ID, StartDate: start, EndDate: start, MonthlyPrice: 150},
	}

	t.Run("a bad item rolls back the whole batch", func(t *testing.T) {
		_, err := s.CreateLocations(ctx, batch)
		require.ErrorIs(t, err, ErrInvalidPeriod)

		// The first item was valid but must not have been committed.
		locations, err := s.ListLocations(ctx)
		require.NoError(t, err)
		assert.Empty(t, locations)
	})

	t.Run("a valid batch commits every contract", func(t *testing.T) {
		batch[1].EndDate = start.AddDate(0, 6, 0)
		created, err := s.CreateLocations(ctx, batch)
		require.NoError(t, err)
		require.Len(t, created, 2)
		for _, l := range created {
			assert.NotEmpty(t, l.ID)
			assert.Equal(t, models.LocationOngoing, l.Status)
		}

		locations, err := s.ListLocations(ctx)
		require.NoError(t, err)
		assert.Len(t, locations, 2)
	})
}

func TestListsTolerateNullColumns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Rows written outside the store leave optional TEXT columns NULL.
	_, err := s.DB.ExecContext(ctx, `INSERT INTO artworks (id, title, artist, price_per_month, created_at) VALUES (?, ?, ?, ?, ?)`,
		"a-null", "Untitled", "Anonymous", 120.0, now)
	require.NoError(t, err)
	_, err = s.DB.ExecContext(ctx, `INSERT INTO prospects (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		"p-null", "Prospect", "p-null@example.com", now)
	require.NoError(t, err)
	_, err = s.DB.ExecContext(ctx, `INSERT INTO clients (id, name, email, created_at) VALUES (?, ?, ?, ?)`,
		"c-null", "Client", "c-null@example.com", now)
	require.NoError(t, err)

	artworks, err := s.ListArtworks(ctx)
	require.NoError(t, err)
	require.Len(t, artworks, 1)
	assert.Empty(t, artworks[0].Period)
	assert.Empty(t, artworks[0].Movement)
	assert.Empty(t, artworks[0].Description)
	assert.Empty(t, artworks[0].ArtistBio)
	assert.Empty(t, artworks[0].ImageURL)

	prospects, err := s.ListProspects(ctx)
	require.NoError(t, err)
	require.Len(t, prospects, 1)
	assert.Empty(t, prospects[0].Company)
	assert.Empty(t, prospects[0].Phone)

	clients, err := s.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Empty(t, clients[0].Company)
	assert.Empty(t, clients[0].Phone)
	assert.Empty(t, clients[0].Address)

	got, err := s.GetArtworkByID(ctx, "a-null")
	require.NoError(t, err)
	assert.Equal(t, "Untitled", got.Title)
}

func TestIsUniqueViolation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateSubscriber(ctx, models.NewsletterSubscriber{Email: "once@example.com"})
	require.NoError(t, err)
	_, err = s.CreateSubscriber(ctx, models.NewsletterSubscriber{Email: "once@example.com"})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
}

func TestFormulas(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	formulas, err := s.ListFormulas(ctx)
	require.NoError(t, err)
	require.Len(t, formulas, 3)

	// Cheapest plan leads.
	assert.Equal(t, "Essentielle", formulas[0].Name)
	assert.True(t, formulas[0].BasePrice <= formulas[1].BasePrice)
	assert.True(t, formulas[1].BasePrice <= formulas[2].BasePrice)
	assert.NotEmpty(t, formulas[0].Services)

	got, err := s.GetFormulaByID(ctx, "f-prestige")
	require.NoError(t, err)
	assert.Equal(t, "Prestige", got.Name)
	assert.Equal(t, 6, got.MinDuration)
}

func TestNewsletterSubscribers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("create defaults to active", func(t *testing.T) {
		n, err := s.CreateSubscriber(ctx, models.NewsletterSubscriber{Email: "sub@example.com", Source: models.SourceNewsletter})
		require.NoError(t, err)
		assert.Equal(t, models.SubscriberActive, n.Status)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := s.CreateSubscriber(ctx, models.NewsletterSubscriber{Email: "dup@example.com"})
		require.NoError(t, err)
		_, err = s.CreateSubscriber(ctx, models.NewsletterSubscriber{Email: "dup@example.com"})
		assert.Error(t, err)
	})

	t.Run("active count ignores unsubscribed", func(t *testing.T) {
		n, err := s.CreateSubscriber(ctx, models.NewsletterSubscriber{Email: "leaving@example.com"})
		require.NoError(t, err)

		before, err := s.CountActiveSubscribers(ctx)
		require.NoError(t, err)

		_, err = s.UpdateSubscriberStatus(ctx, n.ID, models.SubscriberUnsubscribed)
		require.NoError(t, err)

		after, err := s.CountActiveSubscribers(ctx)
		require.NoError(t, err)
		assert.Equal(t, before-1, after)
	})
}

func TestNewsletterCampaigns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("create forces draft with zeroed counters", func(t *testing.T) {
		sent := time.Now()
		c, err := s.CreateCampaign(ctx, models.NewsletterCampaign{
			Title:      "Autumn selection",
			Subject:    "New artworks this month",
			Status:     models.CampaignSent,
			Recipients: 999,
			SentAt:     &sent,
		})
		require.NoError(t, err)
		assert.Equal(t, models.CampaignDraft, c.Status)
		assert.Zero(t, c.Recipients)
		assert.Nil(t, c.SentAt)

		got, err := s.GetCampaignByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CampaignDraft, got.Status)
		assert.Nil(t, got.SentAt)
	})

	t.Run("mark sent stamps recipients and time", func(t *testing.T) {
		c, err := s.CreateCampaign(ctx, models.NewsletterCampaign{Title: "T", Subject: "S"})
		require.NoError(t, err)

		got, err := s.MarkCampaignSent(ctx, c.ID, 42)
		require.NoError(t, err)
		assert.Equal(t, models.CampaignSent, got.Status)
		assert.Equal(t, 42, got.Recipients)
		require.NotNil(t, got.SentAt)
		assert.WithinDuration(t, time.Now().UTC(), *got.SentAt, time.Minute)
	})

	t.Run("cancel round-trips", func(t *testing.T) {
		c, err := s.CreateCampaign(ctx, models.NewsletterCampaign{Title: "T2", Subject: "S2"})
		require.NoError(t, err)

		got, err := s.CancelCampaign(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, models.CampaignCancelled, got.Status)
	})
}

func TestProfiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("unknown email is nil, not an error", func(t *testing.T) {
		p, err := s.GetProfileByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, p)
	})

	t.Run("create defaults role to client", func(t *testing.T) {
		p, err := s.CreateProfile(ctx, models.Profile{Name: "N", Email: "n@example.com", PasswordHash: "x"})
		require.NoError(t, err)
		assert.Equal(t, models.RoleClient, p.Role)

		got, err := s.GetProfileByEmail(ctx, "n@example.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, p.ID, got.ID)
	})

	t.Run("update touches name and company only", func(t *testing.T) {
		p, err := s.CreateProfile(ctx, models.Profile{Name: "Before", Email: "u@example.com", PasswordHash: "x", Role: models.RoleAdmin})
		require.NoError(t, err)

		got, err := s.UpdateProfile(ctx, p.ID, "After", "ArtLease")
		require.NoError(t, err)
		assert.Equal(t, "After", got.Name)
		assert.Equal(t, "ArtLease", got.Company)
		assert.Equal(t, models.RoleAdmin, got.Role)
		assert.Equal(t, "u@example.com", got.Email)
	})
}

func TestDashboardStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	client, err := s.CreateClient(ctx, models.Client{Name: "C", Email: "c@example.com"})
	require.NoError(t, err)
	artwork, err := s.CreateArtwork(ctx, models.Artwork{Title: "A", Artist: "X", PricePerMonth: 200})
	require.NoError(t, err)
	_, err = s.CreateProspect(ctx, models.Prospect{Name: "P", Email: "p@example.com"})
	require.NoError(t, err)
	_, err = s.CreateSubscriber(ctx, models.NewsletterSubscriber{Email: "s@example.com"})
	require.NoError(t, err)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err = s.CreateLocation(ctx, models.Location{
		ClientID: client.ID, ArtworkID: artwork.ID,
		StartDate: start, EndDate: start.AddDate(0, 6, 0), MonthlyPrice: 200,
	})
	require.NoError(t, err)
	cancelled, err := s.CreateLocation(ctx, models.Location{
		ClientID: client.ID, ArtworkID: artwork.ID,
		StartDate: start, EndDate: start.AddDate(0, 3, 0), MonthlyPrice: 999,
	})
	require.NoError(t, err)
	_, err = s.UpdateLocationStatus(ctx, cancelled.ID, models.LocationCancelled)
	require.NoError(t, err)

	stats, err := s.GetDashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalArtworks)
	assert.Equal(t, 1, stats.TotalProspects)
	assert.Equal(t, 1, stats.TotalClients)
	assert.Equal(t, 1, stats.OngoingLocations)
	assert.InDelta(t, 200, stats.MonthlyRevenue, 0.001)
	assert.Equal(t, 1, stats.ActiveSubscribers)
	assert.Equal(t, 1, stats.ProspectsByStatus[models.ProspectNew])
	assert.Equal(t, 1, stats.ArtworksByState[models.AvailabilityAvailable])
}
