package handlers

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// PublicSessionName carries flashes and the visitor id the cart is keyed
// by; the auth session stays separate so signing out never empties a
// basket.
const PublicSessionName = "artlease-public"

// visitorID returns the stable id keying this visitor's cart and
// favorites, minting one on first contact.
func visitorID(store *sessions.CookieStore, w http.ResponseWriter, r *http.Request) string {
	session, _ := store.Get(r, PublicSessionName)
	if id, ok := session.Values["visitor_id"].(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	session.Values["visitor_id"] = id
	session.Options.Path = "/"
	session.Save(r, w)
	return id
}

// Basic email validation regex
var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
