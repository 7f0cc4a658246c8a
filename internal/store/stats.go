package store

import (
	"context"
	"database/sql"
)

type DashboardStats struct {
	TotalArtworks     int
	TotalProspects    int
	TotalClients      int
	OngoingLocations  int
	MonthlyRevenue    float64
	ProspectsByStatus map[string]int
	ArtworksByState   map[string]int
	ActiveSubscribers int
}

func (s *Store) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		ProspectsByStatus: make(map[string]int),
		ArtworksByState:   make(map[string]int),
	}

	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM artworks").Scan(&stats.TotalArtworks)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM prospects").Scan(&stats.TotalProspects)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients").Scan(&stats.TotalClients)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRowContext(ctx, "SELECT COUNT(*), COALESCE(SUM(monthly_price), 0) FROM locations WHERE status = 'ongoing'").Scan(&stats.OngoingLocations, &stats.MonthlyRevenue)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	err = s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM newsletter_subscribers WHERE status = 'active'").Scan(&stats.ActiveSubscribers)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, "SELECT status, COUNT(*) FROM prospects GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ProspectsByStatus[status] = count
	}

	stateRows, err := s.DB.QueryContext(ctx, "SELECT availability, COUNT(*) FROM artworks GROUP BY availability")
	if err != nil {
		return nil, err
	}
	defer stateRows.Close()
	for stateRows.Next() {
		var state string
		var count int
		if err := stateRows.Scan(&state, &count); err != nil {
			return nil, err
		}
		stats.ArtworksByState[state] = count
	}

	return stats, nil
}
