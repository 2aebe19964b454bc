package store

import (
	"context"
	"time"

	"github.com/serp-hawk/outreach-cli/internal/model"
)

// Store defines the persistence operations the outreach core needs:
// point lookup and upsert-by-unique-key for prospects, append-only inserts
// and a count-by-predicate query for send records.
type Store interface {
	// GetProspect looks up a prospect by normalized website URL.
	// Returns (nil, nil) when no row exists.
	GetProspect(ctx context.Context, websiteURL string) (*model.Prospect, error)

	// UpsertProspect inserts a prospect or, when a row with the same
	// website URL exists, updates its contacted flag, primary email and
	// recommended services in a single statement.
	UpsertProspect(ctx context.Context, p model.Prospect) (*model.Prospect, error)

	// InsertSendRecord appends one immutable send-log row.
	InsertSendRecord(ctx context.Context, prospectID, senderEmail string) (*model.SendRecord, error)

	// CountSendsSince counts send records for a sender with sent_at
	// strictly after the cutoff.
	CountSendsSince(ctx context.Context, senderEmail string, since time.Time) (int, error)

	// ListActivities returns recent send records joined with their
	// prospects, newest first.
	ListActivities(ctx context.Context, limit int) ([]model.Activity, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
