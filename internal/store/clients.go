package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ncurnier/artlease/internal/models"
)

const clientCols = `id, name, COALESCE(company, ''), email, COALESCE(phone, ''), COALESCE(address, ''), status, created_at`

func scanClient(row interface{ Scan(...any) error }) (models.Client, error) {
	var c models.Client
	err := row.Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Address, &c.Status, &c.CreatedAt)
	return c, err
}

func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	query := `SELECT ` + clientCols + ` FROM clients ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (s *Store) GetClientByID(ctx context.Context, id string) (*models.Client, error) {
	query := `SELECT ` + clientCols + ` FROM clients WHERE id = ?`
	c, err := scanClient(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	query := `SELECT ` + clientCols + ` FROM clients WHERE email = ? ORDER BY created_at DESC LIMIT 1`
	c, err := scanClient(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, c models.Client) (models.Client, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	if c.Status == "" {
		c.Status = models.ClientActive
	}
	query := `
		INSERT INTO clients (id, name, company, email, phone, address, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.DB.ExecContext(ctx, query, c.ID, c.Name, c.Company, c.Email, c.Phone, c.Address, c.Status, c.CreatedAt)
	if err != nil {
		return models.Client{}, err
	}
	return c, nil
}

func (s *Store) UpdateClient(ctx context.Context, c models.Client) (*models.Client, error) {
	query := `
		UPDATE clients
		SET name = ?, company = ?, email = ?, phone = ?, address = ?, status = ?
		WHERE id = ?
	`
	if _, err := s.DB.ExecContext(ctx, query, c.Name, c.Company, c.Email, c.Phone, c.Address, c.Status, c.ID); err != nil {
		return nil, err
	}
	return s.GetClientByID(ctx, c.ID)
}

func (s *Store) DeleteClient(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	return err
}
