package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/ncurnier/artlease/internal/auth"
	"github.com/ncurnier/artlease/internal/cart"
	"github.com/ncurnier/artlease/internal/config"
	"github.com/ncurnier/artlease/internal/handlers"
	"github.com/ncurnier/artlease/internal/models"
	"github.com/ncurnier/artlease/internal/resource"
	"github.com/ncurnier/artlease/internal/store"
)

func main() {
	// Configure slog before anything else can log.
	handlerOpts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	// TextHandler for console readability; for production JSONHandler might be preferred.
	logger := slog.New(slog.NewTextHandler(os.Stdout, handlerOpts))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Init DB
	db, err := store.NewStore(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}

	// Run Migrations
	if err := db.Migrate("migrations"); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// 3. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 4. Core services
	resources := resource.NewRegistry(db)

	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 30*time.Second)
	resources.RefreshAll(warmCtx)
	cancelWarm()

	reconcileCtx, stopReconciler := context.WithCancel(context.Background())
	resources.StartReconciler(reconcileCtx, cfg.ReconcileInterval)
	defer stopReconciler()

	authService := auth.NewService(db, sessionStore)
	cartService := cart.NewService(cart.NewFileStore(cfg.CartStorePath))

	// 5. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load("templates"); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 6. Setup Handlers
	publicHandler := &handlers.PublicHandler{
		Resources:    resources,
		Cart:         cartService,
		Auth:         authService,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	authHandler := &handlers.AuthHandler{
		Auth:         authService,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	cartHandler := &handlers.CartHandler{
		Resources:    resources,
		Cart:         cartService,
		Auth:         authService,
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
	}
	adminHandler := &handlers.AdminHandler{
		Resources:    resources,
		Store:        db,
		Templates:    templates,
		SessionStore: sessionStore,
		UploadDir:    cfg.UploadDir,
	}

	mux := http.NewServeMux()

	// Static Files
	fileServer := http.FileServer(http.Dir("./static"))
	mux.Handle("/static/", http.StripPrefix("/static", fileServer))

	// Rate Limiter (1 request per minute on public forms)
	rateLimiter := handlers.NewRateLimiter(1 * time.Minute)

	// Public Routes
	mux.HandleFunc("/", publicHandler.Home)
	mux.HandleFunc("/catalogue", publicHandler.Catalogue)
	mux.HandleFunc("/artworks/{id}", publicHandler.ArtworkDetail)
	mux.HandleFunc("POST /favorites/toggle", publicHandler.ToggleFavorite)
	mux.HandleFunc("/formulas", publicHandler.Formulas)
	mux.HandleFunc("/contact", publicHandler.ContactForm)
	mux.HandleFunc("POST /contact", rateLimiter.Middleware(publicHandler.SubmitContact))
	mux.HandleFunc("POST /newsletter/subscribe", rateLimiter.Middleware(publicHandler.Subscribe))

	// Auth
	mux.HandleFunc("/login", authHandler.LoginGet)
	mux.HandleFunc("POST /login", authHandler.LoginPost)
	mux.HandleFunc("/register", authHandler.RegisterGet)
	mux.HandleFunc("POST /register", authHandler.RegisterPost)
	mux.HandleFunc("/logout", authHandler.Logout)
	mux.HandleFunc("/profile", authHandler.ProfileGet)
	mux.HandleFunc("POST /profile", authHandler.ProfilePost)

	// Cart & Checkout
	mux.HandleFunc("/cart", cartHandler.View)
	mux.HandleFunc("POST /cart/add", cartHandler.Add)
	mux.HandleFunc("POST /cart/remove", cartHandler.Remove)
	mux.HandleFunc("POST /cart/update", cartHandler.UpdateDuration)
	mux.HandleFunc("POST /cart/clear", cartHandler.Clear)
	mux.HandleFunc("/checkout", cartHandler.CheckoutForm)
	mux.HandleFunc("POST /checkout", cartHandler.SubmitCheckout)
	mux.HandleFunc("/my-rentals", cartHandler.MyRentals)

	// Protected Routes (admin role required, fail closed)
	requireAdmin := func(next http.HandlerFunc) http.HandlerFunc {
		return authService.Require(models.RoleAdmin, next)
	}
	mux.HandleFunc("/admin", requireAdmin(adminHandler.Dashboard))
	mux.HandleFunc("POST /admin/refresh", requireAdmin(adminHandler.Refresh))

	mux.HandleFunc("/admin/artworks", requireAdmin(adminHandler.ListArtworks))
	mux.HandleFunc("/admin/artworks/new", requireAdmin(adminHandler.AddArtworkForm))
	mux.HandleFunc("POST /admin/artworks", requireAdmin(adminHandler.CreateArtwork))
	mux.HandleFunc("/admin/artworks/edit", requireAdmin(adminHandler.EditArtworkForm))
	mux.HandleFunc("POST /admin/artworks/update", requireAdmin(adminHandler.UpdateArtwork))
	mux.HandleFunc("POST /admin/artworks/delete", requireAdmin(adminHandler.DeleteArtwork))

	mux.HandleFunc("/admin/prospects", requireAdmin(adminHandler.ListProspects))
	mux.HandleFunc("POST /admin/prospects", requireAdmin(adminHandler.CreateProspect))
	mux.HandleFunc("POST /admin/prospects/status", requireAdmin(adminHandler.UpdateProspectStatus))
	mux.HandleFunc("POST /admin/prospects/convert", requireAdmin(adminHandler.ConvertProspect))
	mux.HandleFunc("POST /admin/prospects/delete", requireAdmin(adminHandler.DeleteProspect))

	mux.HandleFunc("/admin/clients", requireAdmin(adminHandler.ListClients))
	mux.HandleFunc("POST /admin/clients", requireAdmin(adminHandler.CreateClient))
	mux.HandleFunc("POST /admin/clients/update", requireAdmin(adminHandler.UpdateClient))
	mux.HandleFunc("POST /admin/clients/delete", requireAdmin(adminHandler.DeleteClient))

	mux.HandleFunc("/admin/locations", requireAdmin(adminHandler.ListLocations))
	mux.HandleFunc("POST /admin/locations", requireAdmin(adminHandler.CreateLocation))
	mux.HandleFunc("POST /admin/locations/status", requireAdmin(adminHandler.UpdateLocationStatus))
	mux.HandleFunc("POST /admin/locations/delete", requireAdmin(adminHandler.DeleteLocation))

	mux.HandleFunc("/admin/newsletter", requireAdmin(adminHandler.Newsletter))
	mux.HandleFunc("POST /admin/newsletter/subscribers", requireAdmin(adminHandler.AddSubscriber))
	mux.HandleFunc("POST /admin/newsletter/subscribers/status", requireAdmin(adminHandler.UpdateSubscriberStatus))
	mux.HandleFunc("POST /admin/newsletter/subscribers/delete", requireAdmin(adminHandler.DeleteSubscriber))
	mux.HandleFunc("POST /admin/newsletter/campaigns", requireAdmin(adminHandler.CreateCampaign))
	mux.HandleFunc("POST /admin/newsletter/campaigns/send", requireAdmin(adminHandler.SendCampaign))
	mux.HandleFunc("POST /admin/newsletter/campaigns/cancel", requireAdmin(adminHandler.CancelCampaign))
	mux.HandleFunc("POST /admin/newsletter/campaigns/delete", requireAdmin(adminHandler.DeleteCampaign))

	// 7. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(mux),
		),
	)

	// 8. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	<-stop

	slog.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
