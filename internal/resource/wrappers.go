package resource

import (
	"context"

	"github.com/ncurnier/artlease/internal/models"
	"github.com/ncurnier/artlease/internal/store"
)

// Artworks caches the artwork catalogue and writes mutations through the
// store before patching the cache.
type Artworks struct {
	*Collection[models.Artwork]
	store *store.Store
}

func NewArtworks(s *store.Store) *Artworks {
	return &Artworks{
		Collection: NewCollection("artworks", s.ListArtworks, func(a models.Artwork) string { return a.ID }),
		store:      s,
	}
}

func (a *Artworks) Create(ctx context.Context, in models.Artwork) (models.Artwork, error) {
	created, err := a.store.CreateArtwork(ctx, in)
	if err != nil {
		return models.Artwork{}, err
	}
	a.Prepend(created)
	return created, nil
}

func (a *Artworks) Update(ctx context.Context, in models.Artwork) (*models.Artwork, error) {
	updated, err := a.store.UpdateArtwork(ctx, in)
	if err != nil {
		return nil, err
	}
	a.Replace(updated.ID, *updated)
	return updated, nil
}

func (a *Artworks) SetImage(ctx context.Context, id, imageURL string) error {
	if err := a.store.UpdateArtworkImage(ctx, id, imageURL); err != nil {
		return err
	}
	if item, ok := a.Get(id); ok {
		item.ImageURL = imageURL
		a.Replace(id, item)
	}
	return nil
}

func (a *Artworks) SetAvailability(ctx context.Context, id, availability string) (*models.Artwork, error) {
	updated, err := a.store.UpdateArtworkAvailability(ctx, id, availability)
	if err != nil {
		return nil, err
	}
	a.Replace(id, *updated)
	return updated, nil
}

func (a *Artworks) Delete(ctx context.Context, id string) error {
	if err := a.store.DeleteArtwork(ctx, id); err != nil {
		return err
	}
	a.Remove(id)
	return nil
}

type Prospects struct {
	*Collection[models.Prospect]
	store *store.Store
}

func NewProspects(s *store.Store) *Prospects {
	return &Prospects{
		Collection: NewCollection("prospects", s.ListProspects, func(p models.Prospect) string { return p.ID }),
		store:      s,
	}
}

func (p *Prospects) Create(ctx context.Context, in models.Prospect) (models.Prospect, error) {
	created, err := p.store.CreateProspect(ctx, in)
	if err != nil {
		return models.Prospect{}, err
	}
	p.Prepend(created)
	return created, nil
}

func (p *Prospects) SetStatus(ctx context.Context, id, status string) (*models.Prospect, error) {
	updated, err := p.store.UpdateProspectStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	p.Replace(id, *updated)
	return updated, nil
}

func (p *Prospects) Delete(ctx context.Context, id string) error {
	if err := p.store.DeleteProspect(ctx, id); err != nil {
		return err
	}
	p.Remove(id)
	return nil
}

type Clients struct {
	*Collection[models.Client]
	store *store.Store
}

func NewClients(s *store.Store) *Clients {
	return &Clients{
		Collection: NewCollection("clients", s.ListClients, func(c models.Client) string { return c.ID }),
		store:      s,
	}
}

func (c *Clients) Create(ctx context.Context, in models.Client) (models.Client, error) {
	created, err := c.store.CreateClient(ctx, in)
	if err != nil {
		return models.Client{}, err
	}
	c.Prepend(created)
	return created, nil
}

func (c *Clients) Update(ctx context.Context, in models.Client) (*models.Client, error) {
	updated, err := c.store.UpdateClient(ctx, in)
	if err != nil {
		return nil, err
	}
	c.Replace(updated.ID, *updated)
	return updated, nil
}

func (c *Clients) Delete(ctx context.Context, id string) error {
	if err := c.store.DeleteClient(ctx, id); err != nil {
		return err
	}
	c.Remove(id)
	return nil
}

type Locations struct {
	*Collection[models.Location]
	store *store.Store
}

func NewLocations(s *store.Store) *Locations {
	return &Locations{
		Collection: NewCollection("locations", s.ListLocations, func(l models.Location) string { return l.ID }),
		store:      s,
	}
}

func (l *Locations) Create(ctx context.Context, in models.Location) (models.Location, error) {
	created, err := l.store.CreateLocation(ctx, in)
	if err != nil {
		return models.Location{}, err
	}
	l.Prepend(created)
	return created, nil
}

// CreateBatch opens every contract in one store transaction; the cache
// is patched only after the whole batch has committed.
func (l *Locations) CreateBatch(ctx context.Context, in []models.Location) ([]models.Location, error) {
	created, err := l.store.CreateLocations(ctx, in)
	if err != nil {
		return nil, err
	}
	for _, loc := range created {
		l.Prepend(loc)
	}
	return created, nil
}

func (l *Locations) Update(ctx context.Context, in models.Location) (*models.Location, error) {
	updated, err := l.store.UpdateLocation(ctx, in)
	if err != nil {
		return nil, err
	}
	l.Replace(updated.ID, *updated)
	return updated, nil
}

func (l *Locations) SetStatus(ctx context.Context, id, status string) (*models.Location, error) {
	updated, err := l.store.UpdateLocationStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	l.Replace(id, *updated)
	return updated, nil
}

func (l *Locations) Delete(ctx context.Context, id string) error {
	if err := l.store.DeleteLocation(ctx, id); err != nil {
		return err
	}
	l.Remove(id)
	return nil
}

// Formulas is read-only catalogue data.
type Formulas struct {
	*Collection[models.Formula]
}

func NewFormulas(s *store.Store) *Formulas {
	return &Formulas{
		Collection: NewCollection("formulas", s.ListFormulas, func(f models.Formula) string { return f.ID }),
	}
}
