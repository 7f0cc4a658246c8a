package auth

import (
	"net/http"
	"net/url"

	"github.com/ncurnier/artlease/internal/models"
)

// Decision is the outcome of guarding one navigation target.
type Decision int

const (
	// Pending: identity resolution still in flight, show a placeholder.
	Pending Decision = iota
	// Render: the visitor may see the requested view.
	Render
	// RedirectLogin: no identity; send to login, preserving the target.
	RedirectLogin
	// RedirectHome: identity present but the role requirement failed.
	RedirectHome
)

// Decide is the whole route guard: pure inputs to one decision, no side
// effects. A required role is only satisfied by an exact match on a
// resolved profile; a missing profile or missing role always denies.
func Decide(hasIdentity bool, profile *models.Profile, resolving bool, required models.Role) Decision {
	if resolving {
		return Pending
	}
	if !hasIdentity {
		return RedirectLogin
	}
	if required != "" && !profile.HasRole(required) {
		return RedirectHome
	}
	return Render
}

// Require wraps a handler with the guard, resolving identity from the
// request session. Login redirects carry the original target in ?next=
// for the post-login return.
func (s *Service) Require(required models.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, profile, err := s.Current(r)
		if err != nil {
			// Fail closed: an unreadable profile never grants access.
			profile = nil
		}

		switch Decide(userID != "", profile, false, required) {
		case RedirectLogin:
			target := "/login?next=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
		case RedirectHome:
			http.Redirect(w, r, "/", http.StatusSeeOther)
		default:
			next(w, r)
		}
	}
}

// SafeReturnPath validates a ?next= value so the post-login redirect can
// only land inside this site.
func SafeReturnPath(next string) string {
	if next == "" || next[0] != '/' {
		return "/"
	}
	if len(next) > 1 && next[1] == '/' {
		// Protocol-relative URLs escape the site.
		return "/"
	}
	return next
}
