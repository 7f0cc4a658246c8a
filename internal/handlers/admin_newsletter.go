package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ncurnier/artlease/internal/models"
)

func (h *AdminHandler) Newsletter(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refetch") == "1" {
		h.Resources.Newsletter.Refresh(r.Context())
	}

	subscribers := h.Resources.Newsletter.Subscribers.Items()
	active := 0
	for _, s := range subscribers {
		if s.Status == models.SubscriberActive {
			active++
		}
	}

	h.render(w, r, "admin_newsletter.html", map[string]interface{}{
		"Subscribers":       subscribers,
		"Campaigns":         h.Resources.Newsletter.Campaigns.Items(),
		"ActiveSubscribers": active,
		"Loading":           h.Resources.Newsletter.Loading(),
		"Error":             h.Resources.Newsletter.Err(),
	})
}

func (h *AdminHandler) AddSubscriber(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	if !isValidEmail(email) {
		h.flashAndRedirect(w, r, "/admin/newsletter", "error", "Please enter a valid email address.")
		return
	}

	_, err := h.Resources.Newsletter.Subscribe(r.Context(), models.NewsletterSubscriber{
		Email:   email,
		Name:    strings.TrimSpace(r.FormValue("name")),
		Company: strings.TrimSpace(r.FormValue("company")),
		Source:  models.SourceManual,
	})
	if err != nil {
		slog.Error("Failed to add subscriber", "error", err)
		h.flashAndRedirect(w, r, "/admin/newsletter", "error", "Error adding subscriber (email may already exist).")
		return
	}
	h.flashAndRedirect(w, r, "/admin/newsletter", "success", "Subscriber added.")
}

var validSubscriberStatuses = map[string]bool{
	models.SubscriberActive:       true,
	models.SubscriberInactive:     true,
	models.SubscriberUnsubscribed: true,
}

func (h *AdminHandler) UpdateSubscriberStatus(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	status := r.FormValue("status")
	if id == "" || !validSubscriberStatuses[status] {
		h.flashAndRedirect(w, r, "/admin/newsletter", "error", "Invalid subscriber status.")
		return
	}
	if _, err := h.Resources.Newsletter.SetSubscriberStatus(r.Context(), id, status); err != nil {
		slog.Error("Failed to update subscriber", "id", id, "error", err)
		h.flashAndRedirect(w, r, "/admin/newsletter", "error", "Error updating subscriber.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/newsletter", "success", "Subscriber updated.")
}

func (h *AdminHandler) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if err := h.Resources.Newsletter.DeleteSubscriber(r.Context(), id); err != nil {
		slog.Error("Failed to delete subscriber", "id", id, "error", err)
		h.flashAndRedirect(w, r, "/admin/newsletter", "error", "Error deleting subscriber.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/newsletter", "success", "Subscriber deleted.")
}

func (h *AdminHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.FormValue("title"))
	subject := strings.TrimSpace(r.FormValue("subject"))
	if title == "" || subject == "" {
		h.flashAndRedirect(w, r, "/admin/newsletter", "error", "Title and subject are required.")
		return
	}

	_, err := h.Resources.Newsletter.CreateCampaign(r.Context(), models.NewsletterCampaign{
		Title:   title,
		Subject: subject,
		Body:    r.FormValue("body"),
	})
	if err != nil {
		slog.Error("Failed to create campaign", "error", err)
		h.flashAndRedirect(w, r, "/admin/newsletter", "error", "Error creating campaign.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/newsletter", "success", "Campaign created as draft.")
}

func (h *AdminHandler) SendCampaign(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if id == "" {
		h.flashAndRedirect(w, r, "/admin/newsletter", "error", "Invalid ID.")
		return
	}

	campaign, err := h.Resources.Newsletter.SendCampaign(r.Context(), id)
	if err != nil {
		slog.Error("Failed to send campaign", "id", id, "error", err)
		h.flashAndRedirect(w, r, "/admin/newsletter", "error", "Error sending campaign.")
		return
	}

	// MOCK EMAIL SENDING
	slog.Info("==========================================")
	slog.Info("📧 CAMPAIGN SENT: " + campaign.Title)
	slog.Info("Subject: " + campaign.Subject)
	slog.Info("Recipients: " + strconv.Itoa(campaign.Recipients))
	slog.Info("==========================================")

	h.flashAndRedirect(w, r, "/admin/newsletter", "success", "Campaign sent to "+strconv.Itoa(campaign.Recipients)+" subscribers.")
}

func (h *AdminHandler) CancelCampaign(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if _, err := h.Resources.Newsletter.CancelCampaign(r.Context(), id); err != nil {
		slog.Error("Failed to cancel campaign", "id", id, "error", err)
		h.flashAndRedirect(w, r, "/admin/newsletter", "error", "Error cancelling campaign.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/newsletter", "success", "Campaign cancelled.")
}

func (h *AdminHandler) DeleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if err := h.Resources.Newsletter.DeleteCampaign(r.Context(), id); err != nil {
		slog.Error("Failed to delete campaign", "id", id, "error", err)
		h.flashAndRedirect(w, r, "/admin/newsletter", "error", "Error deleting campaign.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/newsletter", "success", "Campaign deleted.")
}
