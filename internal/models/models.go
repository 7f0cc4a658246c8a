package models

import (
	"time"
)

// Artwork availability states shown in the public catalogue.
const (
	AvailabilityAvailable = "available"
	AvailabilityReserved  = "reserved"
	AvailabilityRotating  = "rotating"
)

type Artwork struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	Period        string    `json:"period"`
	Movement      string    `json:"movement"`
	Description   string    `json:"description"`
	ArtistBio     string    `json:"artist_bio"`
	PricePerMonth float64   `json:"price_per_month"`
	Availability  string    `json:"availability"` // "available", "reserved", "rotating"
	ImageURL      string    `json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// Prospect statuses follow the CRM pipeline order.
const (
	ProspectNew        = "new"
	ProspectContacted  = "contacted"
	ProspectFollowedUp = "followed_up"
	ProspectConverted  = "converted"
)

const (
	SourceNewsletter = "newsletter"
	SourceContact    = "contact"
	SourceManual     = "manual"
)

type Prospect struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Status    string    `json:"status"` // "new", "contacted", "followed_up", "converted"
	Source    string    `json:"source"` // "newsletter", "contact", "manual"
	CreatedAt time.Time `json:"created_at"`
}

const (
	ClientActive   = "active"
	ClientInactive = "inactive"
)

type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Status    string    `json:"status"` // "active", "inactive"
	CreatedAt time.Time `json:"created_at"`
}

// Location is a rental contract: one client renting one artwork for a
// date range at a monthly price. It references client and artwork by id
// only; deleting either does not cascade.
const (
	LocationOngoing   = "ongoing"
	LocationCompleted = "completed"
	LocationCancelled = "cancelled"
)

type Location struct {
	ID           string    `json:"id"`
	ClientID     string    `json:"client_id"`
	ArtworkID    string    `json:"artwork_id"`
	FormulaID    string    `json:"formula_id,omitempty"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	MonthlyPrice float64   `json:"monthly_price"`
	Status       string    `json:"status"` // "ongoing", "completed", "cancelled"
	Services     []string  `json:"services"`
	CreatedAt    time.Time `json:"created_at"`
}

// Formula is a subscription plan bundling a base price, included services
// and a minimum rental duration in months. Read-only catalogue data.
type Formula struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BasePrice   float64  `json:"base_price"`
	Services    []string `json:"services"`
	MinDuration int      `json:"min_duration"` // months
}

const (
	SubscriberActive       = "active"
	SubscriberInactive     = "inactive"
	SubscriberUnsubscribed = "unsubscribed"
)

type NewsletterSubscriber struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Source    string    `json:"source"`
	Status    string    `json:"status"` // "active", "inactive", "unsubscribed"
	CreatedAt time.Time `json:"created_at"`
}

const (
	CampaignDraft     = "draft"
	CampaignScheduled = "scheduled"
	CampaignSent      = "sent"
	CampaignCancelled = "cancelled"
)

type NewsletterCampaign struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	Status     string     `json:"status"` // "draft", "scheduled", "sent", "cancelled"
	Recipients int        `json:"recipients"`
	Opens      int        `json:"opens"`
	Clicks     int        `json:"clicks"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Role gates access to the back-office. Only "admin" is checked by the
// route guard today; the other roles exist for profile display.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleClient  Role = "client"
	RoleArtist  Role = "artist"
	RoleGallery Role = "gallery"
)

type Profile struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	Company      string    `json:"company"`
	Verified     bool      `json:"verified"`
	PasswordHash string    `json:"-"` // bcrypt hash, never rendered
	CreatedAt    time.Time `json:"created_at"`
}

func (p *Profile) HasRole(r Role) bool {
	return p != nil && p.Role == r
}

// CartItem is visitor-local only: it snapshots the artwork fields needed
// for display and is never synchronized with the server until checkout.
type CartItem struct {
	ID            string    `json:"id"`
	ArtworkID     string    `json:"artwork_id"`
	Title         string    `json:"title"`
	Artist        string    `json:"artist"`
	Image         string    `json:"image"`
	PricePerMonth float64   `json:"price_per_month"`
	Duration      int       `json:"duration"` // months
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}
