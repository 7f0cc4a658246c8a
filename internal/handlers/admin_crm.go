package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ncurnier/artlease/internal/models"
)

// CRM pages: prospects, clients and rental contracts.

func (h *AdminHandler) ListProspects(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refetch") == "1" {
		h.Resources.Prospects.Refresh(r.Context())
	}
	h.render(w, r, "admin_prospects.html", map[string]interface{}{
		"Prospects": h.Resources.Prospects.Items(),
		"Error":     h.Resources.Prospects.Err(),
	})
}

func (h *AdminHandler) CreateProspect(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	if name == "" || !isValidEmail(email) {
		h.flashAndRedirect(w, r, "/admin/prospects", "error", "Name and a valid email are required.")
		return
	}

	_, err := h.Resources.Prospects.Create(r.Context(), models.Prospect{
		Name:    name,
		Company: strings.TrimSpace(r.FormValue("company")),
		Email:   email,
		Phone:   strings.TrimSpace(r.FormValue("phone")),
		Source:  models.SourceManual,
	})
	if err != nil {
		slog.Error("Failed to create prospect", "error", err)
		h.flashAndRedirect(w, r, "/admin/prospects", "error", "Error creating prospect.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/prospects", "success", "Prospect added.")
}

var validProspectStatuses = map[string]bool{
	models.ProspectNew:        true,
	models.ProspectContacted:  true,
	models.ProspectFollowedUp: true,
	models.ProspectConverted:  true,
}

func (h *AdminHandler) UpdateProspectStatus(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	status := r.FormValue("status")
	if id == "" || !validProspectStatuses[status] {
		h.flashAndRedirect(w, r, "/admin/prospects", "error", "Invalid prospect status.")
		return
	}
	if _, err := h.Resources.Prospects.SetStatus(r.Context(), id, status); err != nil {
		slog.Error("Failed to update prospect status", "id", id, "error", err)
		h.flashAndRedirect(w, r, "/admin/prospects", "error", "Error updating prospect.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/prospects", "success", "Prospect updated.")
}

// ConvertProspect runs the named prospect-to-client transition and pulls
// the new client into the cache.
func (h *AdminHandler) ConvertProspect(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if id == "" {
		h.flashAndRedirect(w, r, "/admin/prospects", "error", "Invalid ID.")
		return
	}

	client, err := h.Store.ConvertProspect(r.Context(), id)
	if err != nil {
		slog.Error("Failed to convert prospect", "id", id, "error", err)
		h.flashAndRedirect(w, r, "/admin/prospects", "error", "Error converting prospect.")
		return
	}

	h.Resources.Clients.Prepend(*client)
	if p, ok := h.Resources.Prospects.Get(id); ok {
		p.Status = models.ProspectConverted
		h.Resources.Prospects.Replace(id, p)
	}

	h.flashAndRedirect(w, r, "/admin/prospects", "success", "Prospect converted to client.")
}

func (h *AdminHandler) DeleteProspect(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if err := h.Resources.Prospects.Delete(r.Context(), id); err != nil {
		slog.Error("Failed to delete prospect", "id", id, "error", err)
		h.flashAndRedirect(w, r, "/admin/prospects", "error", "Error deleting prospect.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/prospects", "success", "Prospect deleted.")
}

func (h *AdminHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refetch") == "1" {
		h.Resources.Clients.Refresh(r.Context())
	}
	h.render(w, r, "admin_clients.html", map[string]interface{}{
		"Clients": h.Resources.Clients.Items(),
		"Error":   h.Resources.Clients.Err(),
	})
}

func (h *AdminHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	if name == "" || !isValidEmail(email) {
		h.flashAndRedirect(w, r, "/admin/clients", "error", "Name and a valid email are required.")
		return
	}

	_, err := h.Resources.Clients.Create(r.Context(), models.Client{
		Name:    name,
		Company: strings.TrimSpace(r.FormValue("company")),
		Email:   email,
		Phone:   strings.TrimSpace(r.FormValue("phone")),
		Address: strings.TrimSpace(r.FormValue("address")),
		Status:  models.ClientActive,
	})
	if err != nil {
		slog.Error("Failed to create client", "error", err)
		h.flashAndRedirect(w, r, "/admin/clients", "error", "Error creating client.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/clients", "success", "Client added.")
}

func (h *AdminHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	status := r.FormValue("status")
	if status != models.ClientActive && status != models.ClientInactive {
		status = models.ClientActive
	}
	client := models.Client{
		ID:      r.FormValue("id"),
		Name:    strings.TrimSpace(r.FormValue("name")),
		Company: strings.TrimSpace(r.FormValue("company")),
		Email:   strings.ToLower(strings.TrimSpace(r.FormValue("email"))),
		Phone:   strings.TrimSpace(r.FormValue("phone")),
		Address: strings.TrimSpace(r.FormValue("address")),
		Status:  status,
	}
	if client.ID == "" || client.Name == "" || !isValidEmail(client.Email) {
		h.flashAndRedirect(w, r, "/admin/clients", "error", "Name and a valid email are required.")
		return
	}

	if _, err := h.Resources.Clients.Update(r.Context(), client); err != nil {
		slog.Error("Failed to update client", "id", client.ID, "error", err)
		h.flashAndRedirect(w, r, "/admin/clients", "error", "Error updating client.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/clients", "success", "Client updated.")
}

func (h *AdminHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if err := h.Resources.Clients.Delete(r.Context(), id); err != nil {
		slog.Error("Failed to delete client", "id", id, "error", err)
		h.flashAndRedirect(w, r, "/admin/clients", "error", "Error deleting client.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/clients", "success", "Client deleted.")
}

func (h *AdminHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refetch") == "1" {
		h.Resources.Locations.Refresh(r.Context())
	}

	// Resolve the weak references for display; missing rows render blank.
	clients := make(map[string]models.Client)
	for _, c := range h.Resources.Clients.Items() {
		clients[c.ID] = c
	}
	artworks := make(map[string]models.Artwork)
	for _, a := range h.Resources.Artworks.Items() {
		artworks[a.ID] = a
	}

	h.render(w, r, "admin_locations.html", map[string]interface{}{
		"Locations":   h.Resources.Locations.Items(),
		"Clients":     clients,
		"Artworks":    artworks,
		"AllClients":  h.Resources.Clients.Items(),
		"AllArtworks": h.Resources.Artworks.Items(),
		"Formulas":    h.Resources.Formulas.Items(),
		"Error":       h.Resources.Locations.Err(),
	})
}

func (h *AdminHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	start, err1 := time.Parse("2006-01-02", r.FormValue("start_date"))
	end, err2 := time.Parse("2006-01-02", r.FormValue("end_date"))
	price, err3 := strconv.ParseFloat(r.FormValue("monthly_price"), 64)
	if err1 != nil || err2 != nil || err3 != nil || price <= 0 {
		h.flashAndRedirect(w, r, "/admin/locations", "error", "Dates and a positive monthly price are required.")
		return
	}

	location := models.Location{
		ClientID:     r.FormValue("client_id"),
		ArtworkID:    r.FormValue("artwork_id"),
		FormulaID:    r.FormValue("formula_id"),
		StartDate:    start,
		EndDate:      end,
		MonthlyPrice: price,
		Status:       models.LocationOngoing,
	}
	if services := strings.TrimSpace(r.FormValue("services")); services != "" {
		for _, s := range strings.Split(services, ",") {
			location.Services = append(location.Services, strings.TrimSpace(s))
		}
	}
	if location.ClientID == "" || location.ArtworkID == "" {
		h.flashAndRedirect(w, r, "/admin/locations", "error", "Client and artwork are required.")
		return
	}

	if _, err := h.Resources.Locations.Create(r.Context(), location); err != nil {
		slog.Error("Failed to create rental contract", "error", err)
		h.flashAndRedirect(w, r, "/admin/locations", "error", "Error creating rental contract: "+err.Error())
		return
	}
	h.flashAndRedirect(w, r, "/admin/locations", "success", "Rental contract created.")
}

var validLocationStatuses = map[string]bool{
	models.LocationOngoing:   true,
	models.LocationCompleted: true,
	models.LocationCancelled: true,
}

func (h *AdminHandler) UpdateLocationStatus(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	status := r.FormValue("status")
	if id == "" || !validLocationStatuses[status] {
		h.flashAndRedirect(w, r, "/admin/locations", "error", "Invalid contract status.")
		return
	}
	if _, err := h.Resources.Locations.SetStatus(r.Context(), id, status); err != nil {
		slog.Error("Failed to update rental contract", "id", id, "error", err)
		h.flashAndRedirect(w, r, "/admin/locations", "error", "Error updating rental contract.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/locations", "success", "Rental contract updated.")
}

func (h *AdminHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if err := h.Resources.Locations.Delete(r.Context(), id); err != nil {
		slog.Error("Failed to delete rental contract", "id", id, "error", err)
		h.flashAndRedirect(w, r, "/admin/locations", "error", "Error deleting rental contract.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/locations", "success", "Rental contract deleted.")
}
