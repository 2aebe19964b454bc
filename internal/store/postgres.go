package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/serp-hawk/outreach-cli/internal/model"
)

// Pool abstracts the pgx pool operations the store uses, so tests can
// substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool (tests).
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS prospects (
	id                   TEXT PRIMARY KEY,
	company_name         TEXT NOT NULL,
	website_url          TEXT NOT NULL UNIQUE,
	primary_email        TEXT NOT NULL,
	sender_email         TEXT NOT NULL,
	contacted            BOOLEAN NOT NULL DEFAULT FALSE,
	recommended_services TEXT,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS send_records (
	id           TEXT PRIMARY KEY,
	prospect_id  TEXT NOT NULL REFERENCES prospects(id),
	sender_email TEXT NOT NULL,
	sent_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_prospects_website_url ON prospects(website_url);
CREATE INDEX IF NOT EXISTS idx_send_records_sender_sent_at ON send_records(sender_email, sent_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetProspect(ctx context.Context, websiteURL string) (*model.Prospect, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, company_name, website_url, primary_email, sender_email, contacted, COALESCE(recommended_services, ''), created_at
		 FROM prospects WHERE website_url = $1`,
		websiteURL,
	)

	var p model.Prospect
	err := row.Scan(&p.ID, &p.CompanyName, &p.WebsiteURL, &p.PrimaryEmail, &p.SenderEmail, &p.Contacted, &p.RecommendedServices, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get prospect")
	}
	return &p, nil
}

func (s *PostgresStore) UpsertProspect(ctx context.Context, p model.Prospect) (*model.Prospect, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO prospects (id, company_name, website_url, primary_email, sender_email, contacted, recommended_services, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (website_url) DO UPDATE SET
			contacted = excluded.contacted,
			primary_email = excluded.primary_email,
			recommended_services = CASE WHEN excluded.recommended_services != '' THEN excluded.recommended_services ELSE prospects.recommended_services END
		 RETURNING id, company_name, website_url, primary_email, sender_email, contacted, COALESCE(recommended_services, ''), created_at`,
		p.ID, p.CompanyName, p.WebsiteURL, p.PrimaryEmail, p.SenderEmail, p.Contacted, p.RecommendedServices, p.CreatedAt,
	)

	var stored model.Prospect
	err := row.Scan(&stored.ID, &stored.CompanyName, &stored.WebsiteURL, &stored.PrimaryEmail, &stored.SenderEmail, &stored.Contacted, &stored.RecommendedServices, &stored.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert prospect %s", p.WebsiteURL)
	}
	return &stored, nil
}

func (s *PostgresStore) InsertSendRecord(ctx context.Context, prospectID, senderEmail string) (*model.SendRecord, error) {
	rec := &model.SendRecord{
		ID:          uuid.New().String(),
		ProspectID:  prospectID,
		SenderEmail: senderEmail,
		SentAt:      time.Now().UTC(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO send_records (id, prospect_id, sender_email, sent_at) VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.ProspectID, rec.SenderEmail, rec.SentAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert send record for %s", prospectID)
	}
	return rec, nil
}

func (s *PostgresStore) CountSendsSince(ctx context.Context, senderEmail string, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM send_records WHERE sender_email = $1 AND sent_at > $2`,
		senderEmail, since,
	).Scan(&count)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: count sends")
	}
	return count, nil
}

func (s *PostgresStore) ListActivities(ctx context.Context, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT r.id, p.company_name, p.website_url, p.primary_email, r.sent_at, COALESCE(p.recommended_services, '')
		 FROM send_records r
		 JOIN prospects p ON p.id = r.prospect_id
		 ORDER BY r.sent_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list activities")
	}
	defer rows.Close()

	var acts []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.CompanyName, &a.WebsiteURL, &a.Email, &a.SentAt, &a.RecommendedServices); err != nil {
			return nil, eris.Wrap(err, "postgres: scan activity")
		}
		acts = append(acts, a)
	}
	return acts, eris.Wrap(rows.Err(), "postgres: list activities iterate")
}
