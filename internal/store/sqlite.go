package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/serp-hawk/outreach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS prospects (
	id                   TEXT PRIMARY KEY,
	company_name         TEXT NOT NULL,
	website_url          TEXT NOT NULL UNIQUE,
	primary_email        TEXT NOT NULL,
	sender_email         TEXT NOT NULL,
	contacted            INTEGER NOT NULL DEFAULT 0,
	recommended_services TEXT,
	created_at           DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS send_records (
	id           TEXT PRIMARY KEY,
	prospect_id  TEXT NOT NULL REFERENCES prospects(id),
	sender_email TEXT NOT NULL,
	sent_at      DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prospects_website_url ON prospects(website_url);
CREATE INDEX IF NOT EXISTS idx_send_records_sender_sent_at ON send_records(sender_email, sent_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetProspect(ctx context.Context, websiteURL string) (*model.Prospect, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company_name, website_url, primary_email, sender_email, contacted, recommended_services, created_at
		 FROM prospects WHERE website_url = ?`,
		websiteURL,
	)
	p, err := scanProspect(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get prospect")
	}
	return p, nil
}

// UpsertProspect relies on the UNIQUE constraint on website_url so the
// one-row-per-normalized-URL invariant holds without a read-then-write.
func (s *SQLiteStore) UpsertProspect(ctx context.Context, p model.Prospect) (*model.Prospect, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prospects (id, company_name, website_url, primary_email, sender_email, contacted, recommended_services, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (website_url) DO UPDATE SET
			contacted = excluded.contacted,
			primary_email = excluded.primary_email,
			recommended_services = CASE WHEN excluded.recommended_services != '' THEN excluded.recommended_services ELSE prospects.recommended_services END`,
		p.ID, p.CompanyName, p.WebsiteURL, p.PrimaryEmail, p.SenderEmail, boolToInt(p.Contacted), p.RecommendedServices, p.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert prospect %s", p.WebsiteURL)
	}

	// Re-read so callers see the surviving row (the insert ID loses on
	// conflict with an existing row).
	stored, err := s.GetProspect(ctx, p.WebsiteURL)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, eris.Errorf("sqlite: prospect vanished after upsert: %s", p.WebsiteURL)
	}
	return stored, nil
}

func (s *SQLiteStore) InsertSendRecord(ctx context.Context, prospectID, senderEmail string) (*model.SendRecord, error) {
	rec := &model.SendRecord{
		ID:          uuid.New().String(),
		ProspectID:  prospectID,
		SenderEmail: senderEmail,
		SentAt:      time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO send_records (id, prospect_id, sender_email, sent_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.ProspectID, rec.SenderEmail, rec.SentAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert send record for %s", prospectID)
	}
	return rec, nil
}

func (s *SQLiteStore) CountSendsSince(ctx context.Context, senderEmail string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM send_records WHERE sender_email = ? AND sent_at > ?`,
		senderEmail, since,
	).Scan(&count)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: count sends")
	}
	return count, nil
}

func (s *SQLiteStore) ListActivities(ctx context.Context, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, p.company_name, p.website_url, p.primary_email, r.sent_at, COALESCE(p.recommended_services, '')
		 FROM send_records r
		 JOIN prospects p ON p.id = r.prospect_id
		 ORDER BY r.sent_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list activities")
	}
	defer rows.Close()

	var acts []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.CompanyName, &a.WebsiteURL, &a.Email, &a.SentAt, &a.RecommendedServices); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan activity")
		}
		acts = append(acts, a)
	}
	return acts, eris.Wrap(rows.Err(), "sqlite: list activities iterate")
}

// helpers

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scannable interface {
	Scan(dest ...any) error
}

func scanProspect(row scannable) (*model.Prospect, error) {
	var p model.Prospect
	var contacted int
	var services sql.NullString

	err := row.Scan(&p.ID, &p.CompanyName, &p.WebsiteURL, &p.PrimaryEmail, &p.SenderEmail, &contacted, &services, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Contacted = contacted != 0
	if services.Valid {
		p.RecommendedServices = services.String
	}
	return &p, nil
}
