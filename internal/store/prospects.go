package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ncurnier/artlease/internal/models"
)

const prospectCols = `id, name, COALESCE(company, ''), email, COALESCE(phone, ''), status, source, created_at`

func scanProspect(row interface{ Scan(...any) error }) (models.Prospect, error) {
	var p models.Prospect
	err := row.Scan(&p.ID, &p.Name, &p.Company, &p.Email, &p.Phone, &p.Status, &p.Source, &p.CreatedAt)
	return p, err
}

func (s *Store) ListProspects(ctx context.Context) ([]models.Prospect, error) {
	query := `SELECT ` + prospectCols + ` FROM prospects ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prospects []models.Prospect
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		prospects = append(prospects, p)
	}
	return prospects, rows.Err()
}

func (s *Store) GetProspectByID(ctx context.Context, id string) (*models.Prospect, error) {
	query := `SELECT ` + prospectCols + ` FROM prospects WHERE id = ?`
	p, err := scanProspect(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProspect(ctx context.Context, p models.Prospect) (models.Prospect, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if p.Status == "" {
		p.Status = models.ProspectNew
	}
	if p.Source == "" {
		p.Source = models.SourceManual
	}
	query := `
		INSERT INTO prospects (id, name, company, email, phone, status, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.DB.ExecContext(ctx, query, p.ID, p.Name, p.Company, p.Email, p.Phone, p.Status, p.Source, p.CreatedAt)
	if err != nil {
		return models.Prospect{}, err
	}
	return p, nil
}

func (s *Store) UpdateProspectStatus(ctx context.Context, id, status string) (*models.Prospect, error) {
	query := `UPDATE prospects SET status = ? WHERE id = ?`
	if _, err := s.DB.ExecContext(ctx, query, status, id); err != nil {
		return nil, err
	}
	return s.GetProspectByID(ctx, id)
}

func (s *Store) DeleteProspect(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM prospects WHERE id = ?`, id)
	return err
}

// ConvertProspect is the one named transition between the CRM tables: it
// creates a client from the prospect's contact details and marks the
// prospect converted, atomically. The new client row is returned.
func (s *Store) ConvertProspect(ctx context.Context, prospectID string) (*models.Client, error) {
	p, err := s.GetProspectByID(ctx, prospectID)
	if err != nil {
		return nil, fmt.Errorf("load prospect: %w", err)
	}
	if p.Status == models.ProspectConverted {
		return nil, fmt.Errorf("prospect %s already converted", prospectID)
	}

	c := models.Client{
		ID:        uuid.NewString(),
		Name:      p.Name,
		Company:   p.Company,
		Email:     p.Email,
		Phone:     p.Phone,
		Status:    models.ClientActive,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO clients (id, name, company, email, phone, address, status, created_at)
		VALUES (?, ?, ?, ?, ?, '', ?, ?)
	`, c.ID, c.Name, c.Company, c.Email, c.Phone, c.Status, c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert client: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE prospects SET status = ? WHERE id = ?`, models.ProspectConverted, prospectID)
	if err != nil {
		return nil, fmt.Errorf("mark prospect converted: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &c, nil
}
