package cart

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ncurnier/artlease/internal/models"
)

// Storage keys mirror the two pieces of visitor-local state: the basket
// and the favorited artwork ids. Both are namespaced per visitor.
const (
	cartKeyPrefix      = "artlease-cart:"
	favoritesKeyPrefix = "artlease-favorites:"
)

// Service manages per-visitor baskets. Every mutation writes the full
// item list back to the KV so a restart never loses a basket.
type Service struct {
	kv KV
}

func NewService(kv KV) *Service {
	return &Service{kv: kv}
}

// Items returns the visitor's basket. Corrupt stored data reads as an
// empty basket, never an error.
func (s *Service) Items(visitor string) []models.CartItem {
	raw, ok := s.kv.Get(cartKeyPrefix + visitor)
	if !ok {
		return []models.CartItem{}
	}
	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []models.CartItem{}
	}
	return items
}

// Add appends the artwork to the basket with a fresh item id and the
// rental window computed from the duration. Server-side availability is
// not checked here; checkout is the honest gate.
func (s *Service) Add(visitor string, item models.CartItem) models.CartItem {
	item.ID = uuid.NewString()
	if item.Duration < 1 {
		item.Duration = 1
	}
	if item.StartDate.IsZero() {
		item.StartDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	item.EndDate = item.StartDate.AddDate(0, item.Duration, 0)

	items := append(s.Items(visitor), item)
	s.save(visitor, items)
	return item
}

// Remove filters by item id; a nonexistent id is a no-op.
func (s *Service) Remove(visitor, id string) {
	items := s.Items(visitor)
	kept := items[:0]
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	s.save(visitor, kept)
}

// UpdateDuration changes an item's rental duration and recomputes its end
// date.
func (s *Service) UpdateDuration(visitor, id string, months int) {
	if months < 1 {
		months = 1
	}
	items := s.Items(visitor)
	for i := range items {
		if items[i].ID == id {
			items[i].Duration = months
			items[i].EndDate = items[i].StartDate.AddDate(0, months, 0)
		}
	}
	s.save(visitor, items)
}

// Clear empties the basket and removes the persisted copy.
func (s *Service) Clear(visitor string) {
	s.kv.Delete(cartKeyPrefix + visitor)
}

// TotalPrice is the sum of price-per-month times duration over the
// basket.
func (s *Service) TotalPrice(visitor string) float64 {
	var total float64
	for _, item := range s.Items(visitor) {
		total += item.PricePerMonth * float64(item.Duration)
	}
	return total
}

func (s *Service) Count(visitor string) int {
	return len(s.Items(visitor))
}

func (s *Service) save(visitor string, items []models.CartItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	s.kv.Set(cartKeyPrefix+visitor, string(raw))
}
