package handlers

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
	"github.com/nfnt/resize"

	"github.com/ncurnier/artlease/internal/models"
	"github.com/ncurnier/artlease/internal/resource"
	"github.com/ncurnier/artlease/internal/store"
)

// AdminHandler is the back-office: dashboard, catalogue management, CRM
// and newsletter. Every route is mounted behind the admin role guard.
type AdminHandler struct {
	Resources    *resource.Registry
	Store        *store.Store
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
	UploadDir    string
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, name string, data map[string]interface{}) {
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
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AdminHandler) flashAndRedirect(w http.ResponseWriter, r *http.Request, target, kind, message string) {
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	session.AddFlash(FlashMessage{Type: kind, Message: message})
	session.Save(r, w)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.GetDashboardStats(r.Context())
	if err != nil {
		http.Error(w, "Error fetching stats", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "admin.html", map[string]interface{}{
		"Stats":   stats,
		"Loading": h.Resources.AnyLoading(),
	})
}

// Refresh re-fetches every collection on demand; the dashboard links here
// as its retry affordance.
func (h *AdminHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.Resources.RefreshAll(r.Context())
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *AdminHandler) ListArtworks(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin_artworks.html", map[string]interface{}{
		"Artworks": h.Resources.Artworks.Items(),
		"Error":    h.Resources.Artworks.Err(),
	})
}

func (h *AdminHandler) AddArtworkForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "admin_artwork_form.html", map[string]interface{}{
		"Values": r.Form,
	})
}

// parseArtworkForm validates the shared create/update fields.
func parseArtworkForm(r *http.Request) (models.Artwork, map[string]string) {
	errors := make(map[string]string)

	a := models.Artwork{
		Title:        r.FormValue("title"),
		Artist:       r.FormValue("artist"),
		Period:       r.FormValue("period"),
		Movement:     r.FormValue("movement"),
		Description:  r.FormValue("description"),
		ArtistBio:    r.FormValue("artist_bio"),
		Availability: r.FormValue("availability"),
	}
	if a.Availability == "" {
		a.Availability = models.AvailabilityAvailable
	}

	if a.Title == "" {
		errors["title"] = "Title is required."
	}
	if a.Artist == "" {
		errors["artist"] = "Artist is required."
	}
	priceStr := r.FormValue("price_per_month")
	if priceStr == "" {
		errors["price"] = "Monthly price is required."
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil {
		errors["price"] = "Invalid price format."
	} else if price <= 0 {
		errors["price"] = "Price must be positive."
	}
	a.PricePerMonth = price

	validStates := map[string]bool{
		models.AvailabilityAvailable: true,
		models.AvailabilityReserved:  true,
		models.AvailabilityRotating:  true,
	}
	if !validStates[a.Availability] {
		errors["availability"] = "Invalid availability selected."
	}

	return a, errors
}

func (h *AdminHandler) CreateArtwork(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	defer session.Save(r, w)

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10MB
		session.AddFlash(FlashMessage{Type: "error", Message: "File too large. Max 10MB."})
		http.Redirect(w, r, "/admin/artworks/new", http.StatusSeeOther)
		return
	}

	artwork, formErrors := parseArtworkForm(r)

	file, header, fileErr := r.FormFile("image")
	if fileErr != nil {
		formErrors["image"] = "Image file is required."
	}

	if len(formErrors) > 0 {
		if fileErr == nil {
			file.Close()
		}
		for _, msg := range formErrors {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, "/admin/artworks/new", http.StatusSeeOther)
		return
	}
	defer file.Close()

	imageURL, err := h.saveArtworkImage(file, header.Filename)
	if err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: err.Error()})
		http.Redirect(w, r, "/admin/artworks/new", http.StatusSeeOther)
		return
	}
	artwork.ImageURL = imageURL

	if _, err := h.Resources.Artworks.Create(r.Context(), artwork); err != nil {
		slog.Error("Failed to create artwork", "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Error saving artwork to database."})
		http.Redirect(w, r, "/admin/artworks/new", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Artwork added successfully!"})
	http.Redirect(w, r, "/admin/artworks", http.StatusSeeOther)
}

func (h *AdminHandler) EditArtworkForm(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	artwork, ok := h.Resources.Artworks.Get(id)
	if !ok {
		http.Error(w, "Artwork not found", http.StatusNotFound)
		return
	}
	h.render(w, r, "admin_artwork_form.html", map[string]interface{}{
		"Artwork": artwork,
	})
}

func (h *AdminHandler) UpdateArtwork(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	defer session.Save(r, w)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "File too large. Max 10MB."})
		http.Redirect(w, r, "/admin/artworks", http.StatusSeeOther)
		return
	}

	artwork, formErrors := parseArtworkForm(r)
	artwork.ID = r.FormValue("id")
	if artwork.ID == "" {
		formErrors["id"] = "Missing artwork id."
	}

	if len(formErrors) > 0 {
		for _, msg := range formErrors {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, "/admin/artworks", http.StatusSeeOther)
		return
	}

	if _, err := h.Resources.Artworks.Update(r.Context(), artwork); err != nil {
		slog.Error("Failed to update artwork", "id", artwork.ID, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Error updating artwork."})
		http.Redirect(w, r, "/admin/artworks", http.StatusSeeOther)
		return
	}

	// A replacement image is optional on update.
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		imageURL, err := h.saveArtworkImage(file, header.Filename)
		if err != nil {
			session.AddFlash(FlashMessage{Type: "error", Message: err.Error()})
			http.Redirect(w, r, "/admin/artworks", http.StatusSeeOther)
			return
		}
		if err := h.Resources.Artworks.SetImage(r.Context(), artwork.ID, imageURL); err != nil {
			slog.Error("Failed to update artwork image", "id", artwork.ID, "error", err)
		}
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Artwork updated successfully!"})
	http.Redirect(w, r, "/admin/artworks", http.StatusSeeOther)
}

func (h *AdminHandler) DeleteArtwork(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("id")
	if id == "" {
		h.flashAndRedirect(w, r, "/admin/artworks", "error", "Invalid ID.")
		return
	}
	if err := h.Resources.Artworks.Delete(r.Context(), id); err != nil {
		slog.Error("Failed to delete artwork", "id", id, "error", err)
		h.flashAndRedirect(w, r, "/admin/artworks", "error", "Error deleting artwork.")
		return
	}
	h.flashAndRedirect(w, r, "/admin/artworks", "success", "Artwork deleted successfully!")
}

// saveArtworkImage decodes, downsizes and stores an uploaded image,
// returning its public URL.
func (h *AdminHandler) saveArtworkImage(file interface {
	Read(p []byte) (int, error)
}, filename string) (string, error) {
	var img image.Image
	var err error
	ext := filepath.Ext(filename)
	switch ext {
	case ".png":
		img, err = png.Decode(file)
	case ".jpeg", ".jpg":
		img, err = jpeg.Decode(file)
	default:
		return "", fmt.Errorf("unsupported image format. Only PNG, JPG, JPEG are allowed")
	}
	if err != nil {
		return "", fmt.Errorf("failed to decode image")
	}

	// Resize image (max width 1200px, preserve aspect ratio)
	newImage := resize.Resize(1200, 0, img, resize.Lanczos3)

	name := fmt.Sprintf("%s.jpg", uuid.New().String())
	uploadPath := filepath.Join(h.UploadDir, name)

	out, err := os.Create(uploadPath)
	if err != nil {
		return "", fmt.Errorf("error saving image file")
	}
	defer out.Close()

	if err := jpeg.Encode(out, newImage, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("error encoding image")
	}

	return "/static/uploads/" + name, nil
}
