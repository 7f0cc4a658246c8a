package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ncurnier/artlease/internal/models"
)

const artworkCols = `id, title, artist, COALESCE(period, ''), COALESCE(movement, ''), COALESCE(description, ''), COALESCE(artist_bio, ''), price_per_month, COALESCE(availability, 'available') as availability, COALESCE(image_url, ''), created_at`

func scanArtwork(row interface{ Scan(...any) error }) (models.Artwork, error) {
	var a models.Artwork
	err := row.Scan(&a.ID, &a.Title, &a.Artist, &a.Period, &a.Movement, &a.Description, &a.ArtistBio, &a.PricePerMonth, &a.Availability, &a.ImageURL, &a.CreatedAt)
	return a, err
}

func (s *Store) ListArtworks(ctx context.Context) ([]models.Artwork, error) {
	query := `SELECT ` + artworkCols + ` FROM artworks ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var artworks []models.Artwork
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, err
		}
		artworks = append(artworks, a)
	}
	return artworks, rows.Err()
}

func (s *Store) GetArtworkByID(ctx context.Context, id string) (*models.Artwork, error) {
	query := `SELECT ` + artworkCols + ` FROM artworks WHERE id = ?`
	a, err := scanArtwork(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) CreateArtwork(ctx context.Context, a models.Artwork) (models.Artwork, error) {
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	if a.Availability == "" {
		a.Availability = models.AvailabilityAvailable
	}
	query := `
		INSERT INTO artworks (id, title, artist, period, movement, description, artist_bio, price_per_month, availability, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.DB.ExecContext(ctx, query, a.ID, a.Title, a.Artist, a.Period, a.Movement, a.Description, a.ArtistBio, a.PricePerMonth, a.Availability, a.ImageURL, a.CreatedAt)
	if err != nil {
		return models.Artwork{}, err
	}
	return a, nil
}

func (s *Store) UpdateArtwork(ctx context.Context, a models.Artwork) (*models.Artwork, error) {
	query := `
		UPDATE artworks
		SET title = ?, artist = ?, period = ?, movement = ?, description = ?, artist_bio = ?, price_per_month = ?, availability = ?
		WHERE id = ?
	`
	if _, err := s.DB.ExecContext(ctx, query, a.Title, a.Artist, a.Period, a.Movement, a.Description, a.ArtistBio, a.PricePerMonth, a.Availability, a.ID); err != nil {
		return nil, err
	}
	return s.GetArtworkByID(ctx, a.ID)
}

func (s *Store) UpdateArtworkImage(ctx context.Context, id, imageURL string) error {
	query := `UPDATE artworks SET image_url = ? WHERE id = ?`
	_, err := s.DB.ExecContext(ctx, query, imageURL, id)
	return err
}

func (s *Store) UpdateArtworkAvailability(ctx context.Context, id, availability string) (*models.Artwork, error) {
	query := `UPDATE artworks SET availability = ? WHERE id = ?`
	if _, err := s.DB.ExecContext(ctx, query, availability, id); err != nil {
		return nil, err
	}
	return s.GetArtworkByID(ctx, id)
}

func (s *Store) DeleteArtwork(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM artworks WHERE id = ?`, id)
	return err
}
