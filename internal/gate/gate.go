// Package gate implements the eligibility gatekeeper: the authority that
// approves or denies an outreach send based on duplicate-prospect detection
// and a sliding-hour rate limit.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/serp-hawk/outreach-cli/internal/model"
	"github.com/serp-hawk/outreach-cli/internal/store"
)

// DuplicateProspectError rejects a send because the prospect was already
// contacted. Carries the prior contact context for operator messaging.
type DuplicateProspectError struct {
	CompanyName string
	WebsiteURL  string
	ContactedAt time.Time
}

func (e *DuplicateProspectError) Error() string {
	return fmt.Sprintf("prospecting email already sent to %s (%s) on %s",
		e.CompanyName, e.WebsiteURL, e.ContactedAt.Format("2006-01-02 15:04"))
}

// RateLimitExceededError rejects a send because the sender hit the hourly cap.
type RateLimitExceededError struct {
	Count int
	Limit int
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("hourly email limit (%d) reached: %d emails sent in the last hour", e.Limit, e.Count)
}

// Eligibility is the outcome of a successful gate check.
type Eligibility struct {
	Eligible bool `json:"eligible"`
	// Existing is the prospect row for the URL, if any. A found-but-not-
	// contacted prospect does not block drafting or sending.
	Existing     *model.Prospect `json:"existing_prospect,omitempty"`
	SentLastHour int             `json:"emails_sent_last_hour"`
}

// Gatekeeper evaluates the duplicate and rate-limit rules. All state derives
// from persisted rows at check time, so the limiter survives restarts and
// multiple instances. Under truly concurrent sends the count-then-insert
// sequence can transiently admit slightly more than the cap; the hourly
// limit is a soft cap, not a strict one.
type Gatekeeper struct {
	store       store.Store
	senderEmail string
	hourlyLimit int
}

// New constructs a Gatekeeper with explicit configuration.
func New(st store.Store, senderEmail string, hourlyLimit int) *Gatekeeper {
	return &Gatekeeper{store: st, senderEmail: senderEmail, hourlyLimit: hourlyLimit}
}

// Check evaluates both rules for the given URL. The duplicate rule takes
// precedence when both would fail. Callers run Check advisorily before
// drafting and must run it again immediately before a persisted send: time
// passes between the two phases and other sends may have landed.
func (g *Gatekeeper) Check(ctx context.Context, rawURL string) (*Eligibility, error) {
	normalized := model.NormalizeURL(rawURL)

	result := &Eligibility{Eligible: true}

	// Rule A: duplicate check.
	existing, err := g.store.GetProspect(ctx, normalized)
	if err != nil {
		return nil, eris.Wrap(err, "gate: prospect lookup")
	}
	if existing != nil {
		result.Existing = existing
		if existing.Contacted {
			return nil, &DuplicateProspectError{
				CompanyName: existing.CompanyName,
				WebsiteURL:  existing.WebsiteURL,
				ContactedAt: existing.CreatedAt,
			}
		}
	}

	// Rule B: sliding-hour rate limit.
	oneHourAgo := time.Now().UTC().Add(-time.Hour)
	count, err := g.store.CountSendsSince(ctx, g.senderEmail, oneHourAgo)
	if err != nil {
		return nil, eris.Wrap(err, "gate: count sends")
	}
	result.SentLastHour = count

	if count >= g.hourlyLimit {
		return nil, &RateLimitExceededError{Count: count, Limit: g.hourlyLimit}
	}

	zap.L().Debug("gate: check passed",
		zap.String("url", normalized),
		zap.Int("sent_last_hour", count),
		zap.Int("hourly_limit", g.hourlyLimit),
	)
	return result, nil
}

// CheckRateOnly evaluates only the rate-limit rule, for ad-hoc sends that
// carry no prospect URL to deduplicate on.
func (g *Gatekeeper) CheckRateOnly(ctx context.Context) (*Eligibility, error) {
	oneHourAgo := time.Now().UTC().Add(-time.Hour)
	count, err := g.store.CountSendsSince(ctx, g.senderEmail, oneHourAgo)
	if err != nil {
		return nil, eris.Wrap(err, "gate: count sends")
	}
	if count >= g.hourlyLimit {
		return nil, &RateLimitExceededError{Count: count, Limit: g.hourlyLimit}
	}
	return &Eligibility{Eligible: true, SentLastHour: count}, nil
}
