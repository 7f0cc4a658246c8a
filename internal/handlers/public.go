package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/ncurnier/artlease/internal/auth"
	"github.com/ncurnier/artlease/internal/cart"
	"github.com/ncurnier/artlease/internal/models"
	"github.com/ncurnier/artlease/internal/resource"
	"github.com/ncurnier/artlease/internal/store"
)

// PublicHandler serves the visitor-facing pages: catalogue, plans,
// contact and newsletter signup.
type PublicHandler struct {
	Resources    *resource.Registry
	Cart         *cart.Service
	Auth         *auth.Service
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

func (h *PublicHandler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
	tmpl := h.Templates.Get(name)
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	if data == nil {
		data = map[string]interface{}{}
	}
	data["Flashes"] = GetFlash(session)
	if _, ok := data["CsrfField"]; !ok {
		data["CsrfField"] = csrf.TemplateField(r)
	}
	_, profile, err := h.Auth.Current(r)
	if err == nil && profile != nil {
		data["Profile"] = profile
		data["IsAdmin"] = profile.HasRole(models.RoleAdmin)
	}
	data["CartCount"] = h.Cart.Count(visitorID(h.SessionStore, w, r))
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.URL.Query().Get("refetch") == "1" {
		h.Resources.Artworks.Refresh(r.Context())
	}

	artworks := h.Resources.Artworks.Items()
	// Featured: first few available works.
	var featured []models.Artwork
	for _, a := range artworks {
		if a.Availability == models.AvailabilityAvailable {
			featured = append(featured, a)
		}
		if len(featured) == 6 {
			break
		}
	}

	h.render(w, r, "home.html", map[string]interface{}{
		"Featured": featured,
		"Error":    h.Resources.Artworks.Err(),
		"Loading":  h.Resources.Artworks.Loading(),
	})
}

func (h *PublicHandler) Catalogue(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refetch") == "1" {
		h.Resources.Artworks.Refresh(r.Context())
	}
	visitor := visitorID(h.SessionStore, w, r)

	favorites := make(map[string]bool)
	for _, id := range h.Cart.FavoriteIDs(visitor) {
		favorites[id] = true
	}

	h.render(w, r, "catalogue.html", map[string]interface{}{
		"Artworks":  h.Resources.Artworks.Items(),
		"Favorites": favorites,
		"Error":     h.Resources.Artworks.Err(),
		"Loading":   h.Resources.Artworks.Loading(),
	})
}

func (h *PublicHandler) ArtworkDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	artwork, ok := h.Resources.Artworks.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	visitor := visitorID(h.SessionStore, w, r)

	h.render(w, r, "artwork.html", map[string]interface{}{
		"Artwork":    artwork,
		"IsFavorite": h.Cart.IsFavorite(visitor, id),
	})
}

func (h *PublicHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(h.SessionStore, w, r)
	artworkID := r.FormValue("artwork_id")
	if artworkID != "" {
		h.Cart.ToggleFavorite(visitor, artworkID)
	}
	target := r.Referer()
	if target == "" {
		target = "/catalogue"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *PublicHandler) Formulas(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refetch") == "1" {
		h.Resources.Formulas.Refresh(r.Context())
	}
	h.render(w, r, "formulas.html", map[string]interface{}{
		"Formulas": h.Resources.Formulas.Items(),
		"Error":    h.Resources.Formulas.Err(),
		"Loading":  h.Resources.Formulas.Loading(),
	})
}

func (h *PublicHandler) ContactForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "contact.html", nil)
}

// SubmitContact creates a prospect from the public contact form.
func (h *PublicHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	defer session.Save(r, w)

	name := strings.TrimSpace(r.FormValue("name"))
	company := strings.TrimSpace(r.FormValue("company"))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	phone := strings.TrimSpace(r.FormValue("phone"))

	errors := make(map[string]string)
	if name == "" {
		errors["name"] = "Your name is required."
	}
	if email == "" {
		errors["email"] = "Email address is required."
	} else if !isValidEmail(email) {
		errors["email"] = "Please enter a valid email address."
	}

	if len(errors) > 0 {
		for _, msg := range errors {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}

	_, err := h.Resources.Prospects.Create(r.Context(), models.Prospect{
		Name:    name,
		Company: company,
		Email:   email,
		Phone:   phone,
		Source:  models.SourceContact,
	})
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to send your message. Please try again."})
		http.Redirect(w, r, "/contact", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Thank you! Our team will get back to you shortly."})
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

// Subscribe adds a newsletter subscriber from the footer form.
func (h *PublicHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	defer session.Save(r, w)

	back := r.Referer()
	if back == "" {
		back = "/"
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	if !isValidEmail(email) {
		session.AddFlash(FlashMessage{Type: "error", Message: "Please enter a valid email address."})
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	_, err := h.Resources.Newsletter.Subscribe(r.Context(), models.NewsletterSubscriber{
		Email:  email,
		Source: models.SourceNewsletter,
	})
	if err != nil {
		if !store.IsUniqueViolation(err) {
			slog.Error("Newsletter signup failed", "error", err)
			session.AddFlash(FlashMessage{Type: "error", Message: "Subscription failed. Please try again."})
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		// Duplicate signup: don't reveal which emails are already
		// subscribed, answer as if it succeeded.
		session.AddFlash(FlashMessage{Type: "success", Message: "You are subscribed to the newsletter."})
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "You are subscribed to the newsletter."})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
