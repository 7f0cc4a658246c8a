package resource

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ncurnier/artlease/internal/store"
)

// Registry owns every cached collection. It is built once at startup and
// handed to the handlers; nothing else mutates the collections directly.
type Registry struct {
	Artworks   *Artworks
	Prospects  *Prospects
	Clients    *Clients
	Locations  *Locations
	Formulas   *Formulas
	Newsletter *Newsletter
}

func NewRegistry(s *store.Store) *Registry {
	return &Registry{
		Artworks:   NewArtworks(s),
		Prospects:  NewProspects(s),
		Clients:    NewClients(s),
		Locations:  NewLocations(s),
		Formulas:   NewFormulas(s),
		Newsletter: NewNewsletter(s),
	}
}

// RefreshAll warms every collection in parallel. There is no ordering
// guarantee between them; callers tolerate partial readiness through
// AnyLoading.
func (r *Registry) RefreshAll(ctx context.Context) {
	var g errgroup.Group
	for _, refresh := range []func(context.Context){
		r.Artworks.Refresh,
		r.Prospects.Refresh,
		r.Clients.Refresh,
		r.Locations.Refresh,
		r.Formulas.Refresh,
		r.Newsletter.Refresh,
	} {
		refresh := refresh
		g.Go(func() error {
			refresh(ctx)
			return nil
		})
	}
	g.Wait()
}

// AnyLoading is the logical OR over all collections, for surfaces that
// render several of them at once.
func (r *Registry) AnyLoading() bool {
	return r.Artworks.Loading() ||
		r.Prospects.Loading() ||
		r.Clients.Loading() ||
		r.Locations.Loading() ||
		r.Formulas.Loading() ||
		r.Newsletter.Loading()
}

// StartReconciler re-fetches everything on an interval so the optimistic
// cache cannot drift from the store for long. Stops when ctx is done.
func (r *Registry) StartReconciler(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				slog.Debug("Reconciling resource collections")
				r.RefreshAll(ctx)
			}
		}
	}()
}
