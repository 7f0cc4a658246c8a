package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/ncurnier/artlease/internal/models"
)

const subscriberCols = `id, email, COALESCE(name, ''), COALESCE(company, ''), source, status, created_at`

func scanSubscriber(row interface{ Scan(...any) error }) (models.NewsletterSubscriber, error) {
	var n models.NewsletterSubscriber
	err := row.Scan(&n.ID, &n.Email, &n.Name, &n.Company, &n.Source, &n.Status, &n.CreatedAt)
	return n, err
}

func (s *Store) ListSubscribers(ctx context.Context) ([]models.NewsletterSubscriber, error) {
	query := `SELECT ` + subscriberCols + ` FROM newsletter_subscribers ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subscribers []models.NewsletterSubscriber
	for rows.Next() {
		n, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subscribers = append(subscribers, n)
	}
	return subscribers, rows.Err()
}

func (s *Store) CreateSubscriber(ctx context.Context, n models.NewsletterSubscriber) (models.NewsletterSubscriber, error) {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	if n.Source == "" {
		n.Source = models.SourceManual
	}
	if n.Status == "" {
		n.Status = models.SubscriberActive
	}
	query := `
		INSERT INTO newsletter_subscribers (id, email, name, company, source, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.DB.ExecContext(ctx, query, n.ID, n.Email, n.Name, n.Company, n.Source, n.Status, n.CreatedAt)
	if err != nil {
		return models.NewsletterSubscriber{}, err
	}
	return n, nil
}

func (s *Store) UpdateSubscriberStatus(ctx context.Context, id, status string) (*models.NewsletterSubscriber, error) {
	if _, err := s.DB.ExecContext(ctx, `UPDATE newsletter_subscribers SET status = ? WHERE id = ?`, status, id); err != nil {
		return nil, err
	}
	n, err := scanSubscriber(s.DB.QueryRowContext(ctx, `SELECT `+subscriberCols+` FROM newsletter_subscribers WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) DeleteSubscriber(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM newsletter_subscribers WHERE id = ?`, id)
	return err
}

func (s *Store) CountActiveSubscribers(ctx context.Context) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM newsletter_subscribers WHERE status = ?`, models.SubscriberActive).Scan(&count)
	return count, err
}

const campaignCols = `id, title, subject, COALESCE(body, ''), status, recipients, opens, clicks, sent_at, created_at`

func scanCampaign(row interface{ Scan(...any) error }) (models.NewsletterCampaign, error) {
	var c models.NewsletterCampaign
	var sentAt sql.NullTime
	err := row.Scan(&c.ID, &c.Title, &c.Subject, &c.Body, &c.Status, &c.Recipients, &c.Opens, &c.Clicks, &sentAt, &c.CreatedAt)
	if sentAt.Valid {
		c.SentAt = &sentAt.Time
	}
	return c, err
}

func (s *Store) ListCampaigns(ctx context.Context) ([]models.NewsletterCampaign, error) {
	query := `SELECT ` + campaignCols + ` FROM newsletter_campaigns ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []models.NewsletterCampaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (s *Store) GetCampaignByID(ctx context.Context, id string) (*models.NewsletterCampaign, error) {
	c, err := scanCampaign(s.DB.QueryRowContext(ctx, `SELECT `+campaignCols+` FROM newsletter_campaigns WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCampaign always starts a campaign as a draft with zeroed counters
// regardless of what the caller passes.
func (s *Store) CreateCampaign(ctx context.Context, c models.NewsletterCampaign) (models.NewsletterCampaign, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	c.Status = models.CampaignDraft
	c.Recipients, c.Opens, c.Clicks = 0, 0, 0
	c.SentAt = nil
	query := `
		INSERT INTO newsletter_campaigns (id, title, subject, body, status, recipients, opens, clicks, created_at)
		VALUES (?, ?, ?, ?, ?, 0, 0, 0, ?)
	`
	_, err := s.DB.ExecContext(ctx, query, c.ID, c.Title, c.Subject, c.Body, c.Status, c.CreatedAt)
	if err != nil {
		return models.NewsletterCampaign{}, err
	}
	return c, nil
}

// MarkCampaignSent stamps the campaign with the recipient count and send
// time.
func (s *Store) MarkCampaignSent(ctx context.Context, id string, recipients int) (*models.NewsletterCampaign, error) {
	sentAt := time.Now().UTC()
	query := `UPDATE newsletter_campaigns SET status = ?, recipients = ?, sent_at = ? WHERE id = ?`
	if _, err := s.DB.ExecContext(ctx, query, models.CampaignSent, recipients, sentAt, id); err != nil {
		return nil, err
	}
	return s.GetCampaignByID(ctx, id)
}

func (s *Store) CancelCampaign(ctx context.Context, id string) (*models.NewsletterCampaign, error) {
	if _, err := s.DB.ExecContext(ctx, `UPDATE newsletter_campaigns SET status = ? WHERE id = ?`, models.CampaignCancelled, id); err != nil {
		return nil, err
	}
	return s.GetCampaignByID(ctx, id)
}

func (s *Store) DeleteCampaign(ctx context.Context, id string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM newsletter_campaigns WHERE id = ?`, id)
	return err
}
