package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ncurnier/artlease/internal/models"
)

// ErrInvalidPeriod rejects a rental contract whose end does not come
// strictly after its start.
var ErrInvalidPeriod = errors.New("rental end date must be after start date")

const locationCols = `id, client_id, artwork_id, COALESCE(formula_id, ''), start_date, end_date, monthly_price, status, services, created_at`

func scanLocation(row interface{ Scan(...any) error }) (models.Location, error) {
	var l models.Location
	var services string
	err := row.Scan(&l.ID, &l.ClientID, &l.ArtworkID, &l.FormulaID, &l.StartDate, &l.EndDate, &l.MonthlyPrice, &l.Status, &services, &l.CreatedAt)
	if err != nil {
		return l, err
	}
	if err := json.Unmarshal([]byte(services), &l.Services); err != nil {
		l.Services = nil
	}
	return l, nil
}

func (s *Store) ListLocations(ctx context.Context) ([]models.Location, error) {
	query := `SELECT ` + locationCols + ` FROM locations ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (s *Store) GetLocationByID(ctx context.Context, id string) (*models.Location, error) {
	query := `SELECT ` + locationCols + ` FROM locations WHERE id = ?`
	l, err := scanLocation(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *Store) ListLocationsByClient(ctx context.Context, clientID string) ([]models.Location, error) {
	query := `SELECT ` + locationCols + ` FROM locations WHERE client_id = ? ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func (s *Store) CreateLocation(ctx context.Context, l models.Location) (models.Location, error) {
	if !l.EndDate.After(l.StartDate) {
		return models.Location{}, ErrInvalidPeriod
	}
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()
	if l.Status == "" {
		l.Status = models.LocationOngoing
	}
	services, err := json.Marshal(l.Services)
	if err != nil {
		return models.Location{}, err
	}
	query := `
		INSERT INTO locations (id, client_id, artwork_id, formula_id, start_date, end_date, monthly_price, status, services, created_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?)
	`
	_, err = s.DB.ExecContext(ctx, query, l.ID, l.ClientID, l.ArtworkID, l.FormulaID, l.StartDate, l.EndDate, l.MonthlyPrice, l.Status, string(services), l.CreatedAt)
	if err != nil {
		return models.Location{}, err
	}
	return l, nil
}

// CreateLocations opens several rental contracts in one transaction:
// a multi-item checkout commits every contract or none of them.
func (s *Store) CreateLocations(ctx context.Context, ls []models.Location) ([]models.Location, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO locations (id, client_id, artwork_id, formula_id, start_date, end_date, monthly_price, status, services, created_at)
		VALUES (?, ?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?)
	`
	created := make([]models.Location, 0, len(ls))
	for _, l := range ls {
		if !l.EndDate.After(l.StartDate) {
			return nil, ErrInvalidPeriod
		}
		l.ID = uuid.NewString()
		l.CreatedAt = time.Now().UTC()
		if l.Status == "" {
			l.Status = models.LocationOngoing
		}
		services, err := json.Marshal(l.Services)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, query, l.ID, l.ClientID, l.ArtworkID, l.FormulaID, l.StartDate, l.EndDate, l.MonthlyPrice, l.Status, string(services), l.CreatedAt); err != nil {
			return nil, err
		}
		created = append(created, l)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) UpdateLocationStatus(ctx context.Context, id, status string) (*models.Location, error) {
	query := `UPDATE locations SET status = ? WHERE id = ?`
	if _, err := s.DB.ExecContext(ctx, query, status, id); err != nil {
		return nil, err
	}
	return s.GetLocationByID(ctx, id)
}

func (s *Store) UpdateLocation(ctx context.Context, l models.Location) (*models.Location, error) {
	if !l.EndDate.After(l.StartDate) {
		return nil, ErrInvalidPeriod
	}
	services, err := json.Marshal(l.Services)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE locations
		SET client_id = ?, artwork_id = ?, formula_id = NULLIF(?, ''), start_date = ?, end_date = ?, monthly_price = ?, status = ?, services = ?
		WHERE id = ?
	`
	if _, err := s.DB.ExecContext(ctx, query, l.ClientID, l.ArtworkID, l.FormulaID, l.StartDate, l.EndDate, l.MonthlyPrice, l.Status, string(services), l.ID); err != nil {
		return nil, err
	}
	return s.GetLocationByID(ctx, l.ID)
}

func (s *Store) DeleteLocation(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	return err
}
