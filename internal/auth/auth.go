// Package auth owns sign-in, sign-up and per-request identity
// resolution. Profile lookup is fail-closed: when the profile row cannot
// be read, the visitor is treated as anonymous rather than granted any
// default role.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"

	"github.com/ncurnier/artlease/internal/models"
	"github.com/ncurnier/artlease/internal/store"
)

const SessionName = "artlease-session"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account already exists for this email")
	// ErrProfileUnavailable means the session names an identity whose
	// profile could not be read. Callers must treat this as anonymous.
	ErrProfileUnavailable = errors.New("profile unavailable")
)

type Service struct {
	Store    *store.Store
	Sessions *sessions.CookieStore
}

func NewService(s *store.Store, sessions *sessions.CookieStore) *Service {
	return &Service{Store: s, Sessions: sessions}
}

// SignIn verifies the password and binds the profile id to the cookie
// session.
func (s *Service) SignIn(w http.ResponseWriter, r *http.Request, email, password string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	profile, err := s.Store.GetProfileByEmail(r.Context(), email)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, _ := s.Sessions.Get(r, SessionName)
	session.Values["user_id"] = profile.ID
	session.Options.Path = "/"
	if err := session.Save(r, w); err != nil {
		return nil, err
	}

	slog.Info("Sign-in successful", "user_id", profile.ID, "role", profile.Role)
	return profile, nil
}

// SignUp creates the profile row (default role client) and signs the new
// account in.
func (s *Service) SignUp(w http.ResponseWriter, r *http.Request, email, password string, in models.Profile) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.Store.GetProfileByEmail(r.Context(), email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	in.Email = email
	in.PasswordHash = string(hash)
	if in.Role == "" {
		in.Role = models.RoleClient
	}
	created, err := s.Store.CreateProfile(r.Context(), in)
	if err != nil {
		return nil, err
	}

	session, _ := s.Sessions.Get(r, SessionName)
	session.Values["user_id"] = created.ID
	session.Options.Path = "/"
	if err := session.Save(r, w); err != nil {
		return nil, err
	}

	slog.Info("Sign-up successful", "user_id", created.ID)
	return &created, nil
}

func (s *Service) SignOut(w http.ResponseWriter, r *http.Request) {
	session, _ := s.Sessions.Get(r, SessionName)
	delete(session.Values, "user_id")
	session.Options.MaxAge = -1 // Expire immediately
	session.Save(r, w)
}

// Current resolves the request's identity and profile. Returns
// ("", nil, nil) for anonymous visitors and ErrProfileUnavailable when a
// session exists but its profile cannot be read.
func (s *Service) Current(r *http.Request) (string, *models.Profile, error) {
	session, _ := s.Sessions.Get(r, SessionName)
	userID, ok := session.Values["user_id"].(string)
	if !ok || userID == "" {
		return "", nil, nil
	}

	profile, err := s.Store.GetProfileByID(r.Context(), userID)
	if err != nil {
		slog.Error("Profile lookup failed", "user_id", userID, "error", err)
		return userID, nil, ErrProfileUnavailable
	}
	return userID, profile, nil
}

// UpdateProfile patches the editable fields and returns the updated row.
func (s *Service) UpdateProfile(ctx context.Context, id, name, company string) (*models.Profile, error) {
	return s.Store.UpdateProfile(ctx, id, name, company)
}
