package resource

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ncurnier/artlease/internal/models"
	"github.com/ncurnier/artlease/internal/store"
)

// Newsletter aggregates the two newsletter collections behind one
// refresh: subscribers and campaigns load in parallel and the combined
// loading flag stays up until both settle. Mutations stay independent.
type Newsletter struct {
	Subscribers *Collection[models.NewsletterSubscriber]
	Campaigns   *Collection[models.NewsletterCampaign]
	store       *store.Store
}

func NewNewsletter(s *store.Store) *Newsletter {
	return &Newsletter{
		Subscribers: NewCollection("newsletter subscribers", s.ListSubscribers, func(n models.NewsletterSubscriber) string { return n.ID }),
		Campaigns:   NewCollection("newsletter campaigns", s.ListCampaigns, func(c models.NewsletterCampaign) string { return c.ID }),
		store:       s,
	}
}

func (n *Newsletter) Refresh(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		n.Subscribers.Refresh(ctx)
		return nil
	})
	g.Go(func() error {
		n.Campaigns.Refresh(ctx)
		return nil
	})
	g.Wait()
}

func (n *Newsletter) Loading() bool {
	return n.Subscribers.Loading() || n.Campaigns.Loading()
}

// Err reports the first failing sub-resource; both lists fail
// independently.
func (n *Newsletter) Err() string {
	if msg := n.Subscribers.Err(); msg != "" {
		return msg
	}
	return n.Campaigns.Err()
}

func (n *Newsletter) Subscribe(ctx context.Context, in models.NewsletterSubscriber) (models.NewsletterSubscriber, error) {
	created, err := n.store.CreateSubscriber(ctx, in)
	if err != nil {
		return models.NewsletterSubscriber{}, err
	}
	n.Subscribers.Prepend(created)
	return created, nil
}

func (n *Newsletter) SetSubscriberStatus(ctx context.Context, id, status string) (*models.NewsletterSubscriber, error) {
	updated, err := n.store.UpdateSubscriberStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	n.Subscribers.Replace(id, *updated)
	return updated, nil
}

func (n *Newsletter) DeleteSubscriber(ctx context.Context, id string) error {
	if err := n.store.DeleteSubscriber(ctx, id); err != nil {
		return err
	}
	n.Subscribers.Remove(id)
	return nil
}

func (n *Newsletter) CreateCampaign(ctx context.Context, in models.NewsletterCampaign) (models.NewsletterCampaign, error) {
	created, err := n.store.CreateCampaign(ctx, in)
	if err != nil {
		return models.NewsletterCampaign{}, err
	}
	n.Campaigns.Prepend(created)
	return created, nil
}

// SendCampaign marks the campaign sent to every active subscriber.
// Delivery itself is a logged mock; only the counters and the send
// timestamp are real.
func (n *Newsletter) SendCampaign(ctx context.Context, id string) (*models.NewsletterCampaign, error) {
	recipients, err := n.store.CountActiveSubscribers(ctx)
	if err != nil {
		return nil, err
	}
	updated, err := n.store.MarkCampaignSent(ctx, id, recipients)
	if err != nil {
		return nil, err
	}
	n.Campaigns.Replace(id, *updated)
	return updated, nil
}

func (n *Newsletter) CancelCampaign(ctx context.Context, id string) (*models.NewsletterCampaign, error) {
	updated, err := n.store.CancelCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	n.Campaigns.Replace(id, *updated)
	return updated, nil
}

func (n *Newsletter) DeleteCampaign(ctx context.Context, id string) error {
	if err := n.store.DeleteCampaign(ctx, id); err != nil {
		return err
	}
	n.Campaigns.Remove(id)
	return nil
}
