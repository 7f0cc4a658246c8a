package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/ncurnier/artlease/internal/models"
)

const profileCols = `id, name, email, role, COALESCE(company, ''), verified, password_hash, created_at`

func scanProfile(row interface{ Scan(...any) error }) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Role, &p.Company, &p.Verified, &p.PasswordHash, &p.CreatedAt)
	return p, err
}

func (s *Store) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	p, err := scanProfile(s.DB.QueryRowContext(ctx, `SELECT `+profileCols+` FROM user_profiles WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileByEmail returns (nil, nil) when no profile matches, so the
// login path can distinguish "unknown email" from a real store error.
func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	p, err := scanProfile(s.DB.QueryRowContext(ctx, `SELECT `+profileCols+` FROM user_profiles WHERE email = ?`, email))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProfile(ctx context.Context, p models.Profile) (models.Profile, error) {
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if p.Role == "" {
		p.Role = models.RoleClient
	}
	query := `
		INSERT INTO user_profiles (id, name, email, role, company, verified, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.DB.ExecContext(ctx, query, p.ID, p.Name, p.Email, p.Role, p.Company, p.Verified, p.PasswordHash, p.CreatedAt)
	if err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// UpdateProfile patches the user-editable fields only; email, role and
// credentials go through their own paths.
func (s *Store) UpdateProfile(ctx context.Context, id, name, company string) (*models.Profile, error) {
	query := `UPDATE user_profiles SET name = ?, company = ? WHERE id = ?`
	if _, err := s.DB.ExecContext(ctx, query, name, company, id); err != nil {
		return nil, err
	}
	return s.GetProfileByID(ctx, id)
}

func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+profileCols+` FROM user_profiles ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
