package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ncurnier/artlease/internal/models"
)

func TestDecide(t *testing.T) {
	admin := &models.Profile{ID: "u1", Role: models.RoleAdmin}
	client := &models.Profile{ID: "u2", Role: models.RoleClient}

	tests := []struct {
		name        string
		hasIdentity bool
		profile     *models.Profile
		resolving   bool
		required    models.Role
		want        Decision
	}{
		{"resolving wins over everything", true, admin, true, models.RoleAdmin, Pending},
		{"resolving without identity still pends", false, nil, true, "", Pending},
		{"anonymous goes to login", false, nil, false, "", RedirectLogin},
		{"anonymous goes to login even for role-less routes", false, nil, false, models.RoleAdmin, RedirectLogin},
		{"signed in, no role required", true, client, false, "", Render},
		{"signed in, role matches", true, admin, false, models.RoleAdmin, Render},
		{"signed in, role mismatch", true, client, false, models.RoleAdmin, RedirectHome},
		{"signed in, profile unavailable, role required", true, nil, false, models.RoleAdmin, RedirectHome},
		{"signed in, profile unavailable, no role required", true, nil, false, "", Render},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.hasIdentity, tt.profile, tt.resolving, tt.required)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSafeReturnPath(t *testing.T) {
	tests := []struct {
		name string
		next string
		want string
	}{
		{"empty falls back to home", "", "/"},
		{"relative path falls back to home", "profile", "/"},
		{"absolute URL falls back to home", "https://evil.example/phish", "/"},
		{"protocol-relative URL falls back to home", "//evil.example", "/"},
		{"site path passes through", "/checkout", "/checkout"},
		{"site path with query passes through", "/admin/artworks?refetch=1", "/admin/artworks?refetch=1"},
		{"bare slash passes through", "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeReturnPath(tt.next))
		})
	}
}

func TestProfileHasRole(t *testing.T) {
	assert.False(t, (*models.Profile)(nil).HasRole(models.RoleAdmin))
	assert.True(t, (&models.Profile{Role: models.RoleAdmin}).HasRole(models.RoleAdmin))
	assert.False(t, (&models.Profile{Role: models.RoleClient}).HasRole(models.RoleAdmin))
}
