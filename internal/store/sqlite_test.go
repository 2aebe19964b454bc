package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serp-hawk/outreach-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_UpsertProspect_CreatesThenUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.UpsertProspect(ctx, model.Prospect{
		CompanyName:  "Acme Corp",
		WebsiteURL:   "https://acme.com",
		PrimaryEmail: "info@acme.com",
		SenderEmail:  "sales@serphawk.com",
		Contacted:    true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Contacted)

	// Second upsert for the same URL must update the existing row, not add one.
	updated, err := s.UpsertProspect(ctx, model.Prospect{
		CompanyName:         "Acme Corp",
		WebsiteURL:          "https://acme.com",
		PrimaryEmail:        "ceo@acme.com",
		SenderEmail:         "sales@serphawk.com",
		Contacted:           true,
		RecommendedServices: "Organic SEO, Local SEO",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "ceo@acme.com", updated.PrimaryEmail)
	assert.Equal(t, "Organic SEO, Local SEO", updated.RecommendedServices)

	got, err := s.GetProspect(ctx, "https://acme.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, created.ID, got.ID)
}

func TestSQLite_UpsertProspect_EmptyServicesPreservesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertProspect(ctx, model.Prospect{
		CompanyName:         "Acme Corp",
		WebsiteURL:          "https://acme.com",
		PrimaryEmail:        "info@acme.com",
		SenderEmail:         "sales@serphawk.com",
		RecommendedServices: "Organic SEO",
	})
	require.NoError(t, err)

	updated, err := s.UpsertProspect(ctx, model.Prospect{
		CompanyName:  "Acme Corp",
		WebsiteURL:   "https://acme.com",
		PrimaryEmail: "info@acme.com",
		SenderEmail:  "sales@serphawk.com",
		Contacted:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Organic SEO", updated.RecommendedServices)
}

func TestSQLite_GetProspect_Missing(t *testing.T) {
	s := newTestStore(t)

	got, err := s.GetProspect(context.Background(), "https://nobody.example")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_CountSendsSince_WindowBoundary(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.UpsertProspect(ctx, model.Prospect{
		CompanyName:  "Acme Corp",
		WebsiteURL:   "https://acme.com",
		PrimaryEmail: "info@acme.com",
		SenderEmail:  "sales@serphawk.com",
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	seed := func(sentAt time.Time) {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO send_records (id, prospect_id, sender_email, sent_at) VALUES (?, ?, ?, ?)`,
			uuid.New().String(), p.ID, "sales@serphawk.com", sentAt,
		)
		require.NoError(t, err)
	}

	// One record just outside the window, one just inside.
	seed(now.Add(-61 * time.Minute))
	seed(now.Add(-59 * time.Minute))

	count, err := s.CountSendsSince(ctx, "sales@serphawk.com", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Other senders never count.
	count, err = s.CountSendsSince(ctx, "other@serphawk.com", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSQLite_ListActivities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.UpsertProspect(ctx, model.Prospect{
		CompanyName:         "Acme Corp",
		WebsiteURL:          "https://acme.com",
		PrimaryEmail:        "info@acme.com",
		SenderEmail:         "sales@serphawk.com",
		Contacted:           true,
		RecommendedServices: "Local SEO",
	})
	require.NoError(t, err)

	rec, err := s.InsertSendRecord(ctx, p.ID, "sales@serphawk.com")
	require.NoError(t, err)

	acts, err := s.ListActivities(ctx, 10)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, rec.ID, acts[0].ID)
	assert.Equal(t, "Acme Corp", acts[0].CompanyName)
	assert.Equal(t, "https://acme.com", acts[0].WebsiteURL)
	assert.Equal(t, "info@acme.com", acts[0].Email)
	assert.Equal(t, "Local SEO", acts[0].RecommendedServices)
}
