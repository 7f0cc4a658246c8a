package cart

import (
	"encoding/json"
)

// Favorites is the visitor's set of favorited artwork ids, stored next to
// the basket under its own key.

func (s *Service) FavoriteIDs(visitor string) []string {
	raw, ok := s.kv.Get(favoritesKeyPrefix + visitor)
	if !ok {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil || ids == nil {
		return []string{}
	}
	return ids
}

func (s *Service) IsFavorite(visitor, artworkID string) bool {
	for _, id := range s.FavoriteIDs(visitor) {
		if id == artworkID {
			return true
		}
	}
	return false
}

// ToggleFavorite adds the artwork to the set or removes it if present,
// returning whether it is now favorited.
func (s *Service) ToggleFavorite(visitor, artworkID string) bool {
	ids := s.FavoriteIDs(visitor)
	kept := ids[:0]
	found := false
	for _, id := range ids {
		if id == artworkID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		kept = append(kept, artworkID)
	}

	raw, err := json.Marshal(kept)
	if err != nil {
		return !found
	}
	s.kv.Set(favoritesKeyPrefix+visitor, string(raw))
	return !found
}
