package model

import (
	"strings"
	"time"
)

// Prospect is a company being considered for, or already sent, an outreach
// email. The normalized website URL is the sole deduplication key: at most
// one row exists per normalized URL.
type Prospect struct {
	ID                  string    `json:"id"`
	CompanyName         string    `json:"company_name"`
	WebsiteURL          string    `json:"website_url"`
	PrimaryEmail        string    `json:"primary_email"`
	SenderEmail         string    `json:"sender_email"`
	Contacted           bool      `json:"contacted"`
	RecommendedServices string    `json:"recommended_services,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// SendRecord is an append-only log entry for one delivered (or simulated)
// outreach email. Records are never updated or deleted; the rate limiter is
// derived entirely from counting them.
type SendRecord struct {
	ID          string    `json:"id"`
	ProspectID  string    `json:"prospect_id"`
	SenderEmail string    `json:"sender_email"`
	SentAt      time.Time `json:"sent_at"`
}

// Activity is a SendRecord joined with its Prospect for the activities feed.
type Activity struct {
	ID                  string    `json:"id"`
	CompanyName         string    `json:"company_name"`
	WebsiteURL          string    `json:"website_url"`
	Email               string    `json:"email"`
	SentAt              time.Time `json:"sent_at"`
	RecommendedServices string    `json:"recommended_services,omitempty"`
}

// NormalizeURL canonicalizes a website URL for prospect lookup: trim,
// lowercase, and prefix https:// when no scheme is present. Idempotent —
// every caller touching prospect state must apply it before lookup.
func NormalizeURL(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	if u == "" {
		return u
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return u
}
