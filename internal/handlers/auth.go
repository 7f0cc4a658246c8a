package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/ncurnier/artlease/internal/auth"
	"github.com/ncurnier/artlease/internal/models"
)

type AuthHandler struct {
	Auth         *auth.Service
	Templates    *TemplateCache
	SessionStore *sessions.CookieStore
}

func (h *AuthHandler) LoginGet(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("login.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
		"Next":      auth.SafeReturnPath(r.URL.Query().Get("next")),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AuthHandler) LoginPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, PublicSessionName)

	email := r.FormValue("email")
	password := r.FormValue("password")
	next := auth.SafeReturnPath(r.FormValue("next"))

	profile, err := h.Auth.SignIn(w, r, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			session.AddFlash(FlashMessage{Type: "error", Message: "Invalid email or password"})
		} else {
			slog.Error("Sign-in failed", "error", err)
			session.AddFlash(FlashMessage{Type: "error", Message: "Internal Server Error"})
		}
		session.Save(r, w)
		http.Redirect(w, r, "/login?next="+next, http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Welcome back, " + profile.Name + "!"})
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (h *AuthHandler) RegisterGet(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("register.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	data := map[string]interface{}{
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AuthHandler) RegisterPost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	defer session.Save(r, w)

	name := strings.TrimSpace(r.FormValue("name"))
	company := strings.TrimSpace(r.FormValue("company"))
	email := r.FormValue("email")
	password := r.FormValue("password")

	errors := make(map[string]string)
	if name == "" {
		errors["name"] = "Your name is required."
	}
	if !isValidEmail(strings.ToLower(strings.TrimSpace(email))) {
		errors["email"] = "Please enter a valid email address."
	}
	if len(password) < 8 {
		errors["password"] = "Password must be at least 8 characters."
	}
	if len(errors) > 0 {
		for _, msg := range errors {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	_, err := h.Auth.SignUp(w, r, email, password, models.Profile{
		Name:    name,
		Company: company,
		Role:    models.RoleClient,
	})
	if err != nil {
		if err == auth.ErrEmailTaken {
			session.AddFlash(FlashMessage{Type: "error", Message: "An account already exists for this email."})
		} else {
			slog.Error("Sign-up failed", "error", err)
			session.AddFlash(FlashMessage{Type: "error", Message: "Registration failed. Please try again."})
		}
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Welcome to ArtLease!"})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Auth.SignOut(w, r)
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	session.AddFlash(FlashMessage{Type: "success", Message: "Logged out successfully!"})
	session.Save(r, w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) ProfileGet(w http.ResponseWriter, r *http.Request) {
	_, profile, err := h.Auth.Current(r)
	if err != nil || profile == nil {
		http.Redirect(w, r, "/login?next=%2Fprofile", http.StatusSeeOther)
		return
	}

	tmpl := h.Templates.Get("profile.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	data := map[string]interface{}{
		"Profile":   profile,
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	session.Save(r, w)
	tmpl.Execute(w, data)
}

func (h *AuthHandler) ProfilePost(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, PublicSessionName)
	defer session.Save(r, w)

	userID, profile, err := h.Auth.Current(r)
	if err != nil || profile == nil {
		http.Redirect(w, r, "/login?next=%2Fprofile", http.StatusSeeOther)
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	company := strings.TrimSpace(r.FormValue("company"))
	if name == "" {
		session.AddFlash(FlashMessage{Type: "error", Message: "Your name is required."})
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	if _, err := h.Auth.UpdateProfile(r.Context(), userID, name, company); err != nil {
		slog.Error("Profile update failed", "user_id", userID, "error", err)
		session.AddFlash(FlashMessage{Type: "error", Message: "Failed to update profile."})
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	session.AddFlash(FlashMessage{Type: "success", Message: "Profile updated."})
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}
