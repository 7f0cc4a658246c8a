package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/ncurnier/artlease/internal/auth"
	"github.com/ncurnier/artlease/internal/cart"
	"github.com/ncurnier/artlease/internal/models"
	"github.com/ncurnier/artlease/internal/resource"
	"github.com/ncurnier/artlease/internal/store"
)

// CartHandler drives the basket and the checkout flow. Checkout is the
// one place basket state becomes server state: it opens a rental contract
// per item and reserves the artworks.
type CartHandler struct {
	Resources    *resource.Registry
	Cart         *cart.Service
	Auth         *auth.Service
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("cart.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	visitor := visitorID(h.SessionStore, w, r)
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	data := map[string]interface{}{
		"Items":     h.Cart.Items(visitor),
		"Total":     h.Cart.TotalPrice(visitor),
		"Count":     h.Cart.Count(visitor),
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	defer session.Save(r, w)
	visitor := visitorID(h.SessionStore, w, r)

	artworkID := r.FormValue("artwork_id")
	artwork, ok := h.Resources.Artworks.Get(artworkID)
	if !ok {
		session.AddFlash(FlashMessage{Type: "error", Message: "Artwork not found."})
		http.Redirect(w, r, "/catalogue", http.StatusSeeOther)
		return
	}

	duration := 1
	if d, err := strconv.Atoi(r.FormValue("duration")); err == nil && d > 0 {
		duration = d
	}

	h.Cart.Add(visitor, models.CartItem{
		ArtworkID:     artwork.ID,
		Title:         artwork.Title,
		Artist:        artwork.Artist,
		Image:         artwork.ImageURL,
		PricePerMonth: artwork.PricePerMonth,
		Duration:      duration,
	})

	session.AddFlash(FlashMessage{Type: "success", Message: "Artwork added to your basket."})
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(h.SessionStore, w, r)
	h.Cart.Remove(visitor, r.FormValue("id"))
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *CartHandler) UpdateDuration(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(h.SessionStore, w, r)
	months, err := strconv.Atoi(r.FormValue("duration"))
	if err != nil || months < 1 {
		months = 1
	}
	h.Cart.UpdateDuration(visitor, r.FormValue("id"), months)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(h.SessionStore, w, r)
	h.Cart.Clear(visitor)
	http.Redirect(w, r, "/cart", http.StatusSeeOther)
}

func (h *CartHandler) CheckoutForm(w http.ResponseWriter, r *http.Request) {
	visitor := visitorID(h.SessionStore, w, r)
	items := h.Cart.Items(visitor)
	if len(items) == 0 {
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	_, profile, _ := h.Auth.Current(r)

	tmpl := h.Templates.Get("checkout.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	data := map[string]interface{}{
		"Items":     items,
		"Total":     h.Cart.TotalPrice(visitor),
		"Profile":   profile,
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

// SubmitCheckout turns the basket into rental contracts: one location per
// item, bound to the signed-in visitor's client record, then clears the
// basket. Payment itself is a logged mock.
func (h *CartHandler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	defer session.Save(r, w)
	visitor := visitorID(h.SessionStore, w, r)

	items := h.Cart.Items(visitor)
	if len(items) == 0 {
		session.AddFlash(FlashMessage{Type: "error", Message: "Your basket is empty."})
		http.Redirect(w, r, "/cart", http.StatusSeeOther)
		return
	}

	_, profile, err := h.Auth.Current(r)
	if err != nil || profile == nil {
		http.Redirect(w, r, "/login?next=%2Fcheckout", http.StatusSeeOther)
		return
	}

	client, err := h.resolveClient(r, profile)
	if err != nil {
		slog.Error("Checkout client resolution failed", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Checkout failed. Please try again."})
		http.Redirect(w, r, "/checkout", http.StatusSeeOther)
		return
	}

	contracts := make([]models.Location, 0, len(items))
	for _, item := range items {
		contracts = append(contracts, models.Location{
			ClientID:     client.ID,
			ArtworkID:    item.ArtworkID,
			StartDate:    item.StartDate,
			EndDate:      item.EndDate,
			MonthlyPrice: item.PricePerMonth,
			Status:       models.LocationOngoing,
		})
	}

	// All contracts commit in one transaction: a failure on any item
	// leaves no partial order behind.
	created, err := h.Resources.Locations.CreateBatch(r.Context(), contracts)
	if err != nil {
		slog.Error("Failed to create rental contracts", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Checkout failed. Your basket is unchanged."})
		http.Redirect(w, r, "/checkout", http.StatusSeeOther)
		return
	}

	for _, contract := range created {
		if _, err := h.Resources.Artworks.SetAvailability(r.Context(), contract.ArtworkID, models.AvailabilityReserved); err != nil {
			slog.Warn("Failed to reserve artwork", "artwork_id", contract.ArtworkID, "error", err)
		}
	}

	// MOCK PAYMENT
	slog.Info("==========================================")
	slog.Info("💳 PAYMENT PROCESSED FOR: " + client.Email)
	slog.Info("Contracts created: " + strconv.Itoa(len(items)))
	slog.Info("Monthly total: " + strconv.FormatFloat(h.Cart.TotalPrice(visitor), 'f', 2, 64) + " €")
	slog.Info("==========================================")

	h.Cart.Clear(visitor)

	session.AddFlash(FlashMessage{Type: "success", Message: "Your rental is confirmed! Our team will contact you for delivery."})
	http.Redirect(w, r, "/my-rentals", http.StatusSeeOther)
}

// resolveClient finds the client record for the signed-in profile,
// creating one from the checkout form fields on first rental.
func (h *CartHandler) resolveClient(r *http.Request, profile *models.Profile) (*models.Client, error) {
	existing, err := h.Store.GetClientByEmail(r.Context(), profile.Email)
	if err == nil {
		return existing, nil
	}

	created, err := h.Resources.Clients.Create(r.Context(), models.Client{
		Name:    profile.Name,
		Company: profile.Company,
		Email:   profile.Email,
		Phone:   r.FormValue("phone"),
		Address: r.FormValue("address"),
		Status:  models.ClientActive,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// MyRentals lists the signed-in visitor's rental contracts.
func (h *CartHandler) MyRentals(w http.ResponseWriter, r *http.Request) {
	_, profile, err := h.Auth.Current(r)
	if err != nil || profile == nil {
		http.Redirect(w, r, "/login?next=%2Fmy-rentals", http.StatusSeeOther)
		return
	}

	var rentals []models.Location
	client, err := h.Store.GetClientByEmail(r.Context(), profile.Email)
	if err == nil {
		rentals, _ = h.Store.ListLocationsByClient(r.Context(), client.ID)
	}

	artworks := make(map[string]models.Artwork)
	for _, rental := range rentals {
		if a, ok := h.Resources.Artworks.Get(rental.ArtworkID); ok {
			artworks[rental.ArtworkID] = a
		}
	}

	tmpl := h.Templates.Get("my_rentals.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	data := map[string]interface{}{
		"Rentals":  rentals,
		"Artworks": artworks,
		"Flashes":  GetFlash(session),
		"Now":      time.Now(),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}
