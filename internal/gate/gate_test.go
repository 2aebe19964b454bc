package gate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serp-hawk/outreach-cli/internal/model"
)

// fakeStore implements the subset of store.Store the gate touches.
type fakeStore struct {
	prospects map[string]*model.Prospect
	sends     []time.Time
	sender    string
}

func newFakeStore() *fakeStore {
	return &fakeStore{prospects: make(map[string]*model.Prospect)}
}

func (f *fakeStore) GetProspect(_ context.Context, url string) (*model.Prospect, error) {
	return f.prospects[url], nil
}

func (f *fakeStore) UpsertProspect(_ context.Context, p model.Prospect) (*model.Prospect, error) {
	f.prospects[p.WebsiteURL] = &p
	return &p, nil
}

func (f *fakeStore) InsertSendRecord(_ context.Context, _, _ string) (*model.SendRecord, error) {
	f.sends = append(f.sends, time.Now().UTC())
	return &model.SendRecord{}, nil
}

func (f *fakeStore) CountSendsSince(_ context.Context, sender string, since time.Time) (int, error) {
	if f.sender != "" && sender != f.sender {
		return 0, nil
	}
	count := 0
	for _, at := range f.sends {
		if at.After(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ListActivities(_ context.Context, _ int) ([]model.Activity, error) {
	return nil, nil
}

func (f *fakeStore) Migrate(_ context.Context) error { return nil }
func (f *fakeStore) Close() error                    { return nil }

func seedSends(f *fakeStore, ages ...time.Duration) {
	now := time.Now().UTC()
	for _, age := range ages {
		f.sends = append(f.sends, now.Add(-age))
	}
}

func TestCheck_FreshProspectEligible(t *testing.T) {
	st := newFakeStore()
	g := New(st, "sales@serphawk.com", 10)

	result, err := g.Check(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.True(t, result.Eligible)
	assert.Nil(t, result.Existing)
	assert.Zero(t, result.SentLastHour)
}

func TestCheck_KnownButUncontactedProspectAllowed(t *testing.T) {
	st := newFakeStore()
	st.prospects["https://acme.com"] = &model.Prospect{
		CompanyName: "Acme Corp",
		WebsiteURL:  "https://acme.com",
		Contacted:   false,
	}
	g := New(st, "sales@serphawk.com", 10)

	result, err := g.Check(context.Background(), "acme.com")
	require.NoError(t, err)
	assert.True(t, result.Eligible)
	require.NotNil(t, result.Existing)
	assert.Equal(t, "Acme Corp", result.Existing.CompanyName)
}

func TestCheck_ContactedProspectRejected(t *testing.T) {
	contactedAt := time.Date(2026, 8, 12, 9, 30, 0, 0, time.UTC)
	st := newFakeStore()
	st.prospects["https://acme.com"] = &model.Prospect{
		CompanyName: "Acme Corp",
		WebsiteURL:  "https://acme.com",
		Contacted:   true,
		CreatedAt:   contactedAt,
	}
	g := New(st, "sales@serphawk.com", 10)

	_, err := g.Check(context.Background(), "ACME.com")
	var dup *DuplicateProspectError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Acme Corp", dup.CompanyName)
	assert.Equal(t, contactedAt, dup.ContactedAt)
	assert.Contains(t, dup.Error(), "2026-08-12 09:30")
}

func TestCheck_DuplicateTakesPrecedenceOverRateLimit(t *testing.T) {
	st := newFakeStore()
	st.prospects["https://acme.com"] = &model.Prospect{
		CompanyName: "Acme Corp",
		WebsiteURL:  "https://acme.com",
		Contacted:   true,
	}
	// Rate limit would also fail.
	seedSends(st, time.Minute, 2*time.Minute, 3*time.Minute)
	g := New(st, "sales@serphawk.com", 1)

	_, err := g.Check(context.Background(), "acme.com")
	var dup *DuplicateProspectError
	assert.ErrorAs(t, err, &dup)
	var rate *RateLimitExceededError
	assert.False(t, errors.As(err, &rate))
}

func TestCheck_RateLimitBoundary(t *testing.T) {
	st := newFakeStore()
	seedSends(st, time.Minute, 5*time.Minute) // 2 recent sends
	g := New(st, "sales@serphawk.com", 3)

	result, err := g.Check(context.Background(), "fresh.example")
	require.NoError(t, err)
	assert.Equal(t, 2, result.SentLastHour)

	// One more send reaches the limit exactly: next check must fail.
	seedSends(st, 30*time.Second)
	_, err = g.Check(context.Background(), "fresh.example")
	var rate *RateLimitExceededError
	require.ErrorAs(t, err, &rate)
	assert.Equal(t, 3, rate.Count)
	assert.Equal(t, 3, rate.Limit)
}

func TestCheck_OldSendsOutsideWindowIgnored(t *testing.T) {
	st := newFakeStore()
	seedSends(st, 61*time.Minute, 59*time.Minute)
	g := New(st, "sales@serphawk.com", 2)

	result, err := g.Check(context.Background(), "fresh.example")
	require.NoError(t, err)
	assert.Equal(t, 1, result.SentLastHour)
}

func TestCheckRateOnly(t *testing.T) {
	st := newFakeStore()
	seedSends(st, time.Minute)
	g := New(st, "sales@serphawk.com", 1)

	_, err := g.CheckRateOnly(context.Background())
	var rate *RateLimitExceededError
	require.ErrorAs(t, err, &rate)
	assert.Equal(t, 1, rate.Count)
}
