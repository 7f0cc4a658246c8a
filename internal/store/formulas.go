package store

import (
	"context"
	"encoding/json"

	"github.com/ncurnier/artlease/internal/models"
)

const formulaCols = `id, name, description, base_price, services, min_duration`

func scanFormula(row interface{ Scan(...any) error }) (models.Formula, error) {
	var f models.Formula
	var services string
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.BasePrice, &services, &f.MinDuration)
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal([]byte(services), &f.Services); err != nil {
		f.Services = nil
	}
	return f, nil
}

// ListFormulas orders by base price ascending so the cheapest plan leads
// the pricing page.
func (s *Store) ListFormulas(ctx context.Context) ([]models.Formula, error) {
	query := `SELECT ` + formulaCols + ` FROM formulas ORDER BY base_price ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var formulas []models.Formula
	for rows.Next() {
		f, err := scanFormula(rows)
		if err != nil {
			return nil, err
		}
		formulas = append(formulas, f)
	}
	return formulas, rows.Err()
}

func (s *Store) GetFormulaByID(ctx context.Context, id string) (*models.Formula, error) {
	query := `SELECT ` + formulaCols + ` FROM formulas WHERE id = ?`
	f, err := scanFormula(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return &f, nil
}
