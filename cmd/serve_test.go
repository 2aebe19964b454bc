package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serp-hawk/outreach-cli/internal/enrich"
	"github.com/serp-hawk/outreach-cli/internal/fetch"
	"github.com/serp-hawk/outreach-cli/internal/gate"
	"github.com/serp-hawk/outreach-cli/internal/model"
	"github.com/serp-hawk/outreach-cli/internal/pipeline"
	anthropicpkg "github.com/serp-hawk/outreach-cli/pkg/anthropic"
	"github.com/serp-hawk/outreach-cli/pkg/mailer"
)

const routerTestSender = "sales@serphawk.com"

// routerStore is an in-memory store.Store for router tests.
type routerStore struct {
	prospects map[string]*model.Prospect
	sends     []time.Time
}

func newRouterStore() *routerStore {
	return &routerStore{prospects: make(map[string]*model.Prospect)}
}

func (s *routerStore) GetProspect(_ context.Context, websiteURL string) (*model.Prospect, error) {
	return s.prospects[websiteURL], nil
}

func (s *routerStore) UpsertProspect(_ context.Context, p model.Prospect) (*model.Prospect, error) {
	p.CreatedAt = time.Now().UTC()
	s.prospects[p.WebsiteURL] = &p
	return &p, nil
}

func (s *routerStore) InsertSendRecord(_ context.Context, prospectID, senderEmail string) (*model.SendRecord, error) {
	now := time.Now().UTC()
	s.sends = append(s.sends, now)
	return &model.SendRecord{ID: "rec-1", ProspectID: prospectID, SenderEmail: senderEmail, SentAt: now}, nil
}

func (s *routerStore) CountSendsSince(_ context.Context, _ string, since time.Time) (int, error) {
	n := 0
	for _, t := range s.sends {
		if t.After(since) {
			n++
		}
	}
	return n, nil
}

func (s *routerStore) ListActivities(_ context.Context, _ int) ([]model.Activity, error) {
	return []model.Activity{
		{ID: "rec-1", CompanyName: "Acme Corp", WebsiteURL: "https://acme.com", Email: "info@acme.com", SentAt: time.Now().UTC()},
	}, nil
}

func (s *routerStore) Migrate(_ context.Context) error { return nil }
func (s *routerStore) Close() error                    { return nil }

// cannedClient answers every prompt with the same draft JSON. The analysis
// stages degrade to annotated defaults on a shape mismatch, which the router
// tests do not care about.
type cannedClient struct{}

func (cannedClient) CreateMessage(_ context.Context, _ anthropicpkg.MessageRequest) (*anthropicpkg.MessageResponse, error) {
	return &anthropicpkg.MessageResponse{
		Content: []anthropicpkg.ContentBlock{
			{Type: "text", Text: `{"subject": "Quick question", "body_html": "<p>Hello</p>"}`},
		},
	}, nil
}

type routerFetcher struct{}

func (routerFetcher) Fetch(_ context.Context, url string) *fetch.Result {
	return &fetch.Result{
		URL:    url,
		Text:   "Source URL: " + url + "\n\nWebsite Content:\nWe sell widgets.",
		Emails: []string{"info@acme.com"},
	}
}

func (routerFetcher) Name() string { return "stub" }

func newTestRouter(t *testing.T, st *routerStore) (http.Handler, *mailer.Simulated) {
	t.Helper()

	catalog, err := enrich.LoadCatalog()
	require.NoError(t, err)

	analyzer := enrich.NewAnalyzer(cannedClient{}, "test-model", 1024, catalog)
	drafter := enrich.NewDrafter(analyzer, enrich.DrafterConfig{
		BrandName:  "SERP Hawk",
		SignerName: "Test Signer",
	})
	sim := &mailer.Simulated{}

	p := pipeline.New(pipeline.Options{
		Store:       st,
		Gate:        gate.New(st, routerTestSender, 10),
		Fetcher:     routerFetcher{},
		Analyzer:    analyzer,
		Drafter:     drafter,
		Mailer:      sim,
		SenderEmail: routerTestSender,
	})

	return newRouter(p, st, t.TempDir()), sim
}

func postJSON(t *testing.T, r http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestServeHealth(t *testing.T) {
	r, _ := newTestRouter(t, newRouterStore())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "outreach-cli", body["service"])
}

func TestServeDraftLead_MissingFields(t *testing.T) {
	r, _ := newTestRouter(t, newRouterStore())

	rr := postJSON(t, r, "/draft-lead", map[string]string{"company_name": "Acme Corp"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServeDraftLead_Success(t *testing.T) {
	st := newRouterStore()
	r, _ := newTestRouter(t, st)

	rr := postJSON(t, r, "/draft-lead", map[string]string{
		"company_name":  "Acme Corp",
		"website_url":   "acme.com",
		"primary_email": "info@acme.com",
	})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var body struct {
		Success bool        `json:"success"`
		Draft   model.Draft `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Quick question", body.Draft.Subject)
	assert.Equal(t, "https://acme.com", body.Draft.WebsiteURL)

	// Drafting must not create a prospect row.
	assert.Empty(t, st.prospects)
}

func TestServeDraftLead_DuplicateWarnsButDrafts(t *testing.T) {
	st := newRouterStore()
	st.prospects["https://acme.com"] = &model.Prospect{
		CompanyName: "Acme Corp",
		WebsiteURL:  "https://acme.com",
		Contacted:   true,
		CreatedAt:   time.Now().UTC(),
	}
	r, _ := newTestRouter(t, st)

	rr := postJSON(t, r, "/draft-lead", map[string]string{
		"company_name":  "Acme Corp",
		"website_url":   "acme.com",
		"primary_email": "info@acme.com",
	})

	// Drafting is advisory: the duplicate surfaces as a warning, not a 409.
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var body struct {
		Success bool   `json:"success"`
		Warning string `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Contains(t, body.Warning, "already sent")
}

func TestServeSendLead_DuplicateConflict(t *testing.T) {
	st := newRouterStore()
	st.prospects["https://acme.com"] = &model.Prospect{
		CompanyName: "Acme Corp",
		WebsiteURL:  "https://acme.com",
		Contacted:   true,
		CreatedAt:   time.Now().UTC(),
	}
	r, sim := newTestRouter(t, st)

	rr := postJSON(t, r, "/send-lead", map[string]string{
		"company_name":  "Acme Corp",
		"website_url":   "acme.com",
		"primary_email": "info@acme.com",
		"subject":       "Quick question",
		"body":          "<p>Hello</p>",
	})

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "already sent")
	assert.Empty(t, sim.Sent)
}

func TestServeSendLead_DeliversAndRecords(t *testing.T) {
	st := newRouterStore()
	r, sim := newTestRouter(t, st)

	rr := postJSON(t, r, "/send-lead", map[string]string{
		"company_name":  "Acme Corp",
		"website_url":   "acme.com",
		"primary_email": "info@acme.com",
		"subject":       "Quick question",
		"body":          "<p>Hello</p>",
	})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, sim.Sent, 1)
	assert.Equal(t, "info@acme.com", sim.Sent[0].To)
	require.Contains(t, st.prospects, "https://acme.com")
	assert.True(t, st.prospects["https://acme.com"].Contacted)
	assert.Len(t, st.sends, 1)
}

func TestServeSend_RateLimited(t *testing.T) {
	st := newRouterStore()
	now := time.Now().UTC()
	for i := 0; i < 10; i++ {
		st.sends = append(st.sends, now.Add(-time.Minute))
	}
	r, _ := newTestRouter(t, st)

	rr := postJSON(t, r, "/send", map[string]any{
		"email_data": map[string]string{
			"to_email": "someone@example.com",
			"subject":  "Hi",
			"body":     "Hello",
		},
	})

	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Contains(t, rr.Body.String(), "hourly email limit")
}

func TestServeGenerate(t *testing.T) {
	r, _ := newTestRouter(t, newRouterStore())

	rr := postJSON(t, r, "/generate", map[string]any{
		"urls": []string{"https://acme.com", "https://globex.com"},
	})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var items []pipeline.GenerateItem
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "https://acme.com", items[0].URL)
	assert.Equal(t, "https://globex.com", items[1].URL)
}

func TestServeGenerate_EmptyURLs(t *testing.T) {
	r, _ := newTestRouter(t, newRouterStore())

	rr := postJSON(t, r, "/generate", map[string]any{"urls": []string{}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServeActivities(t *testing.T) {
	r, _ := newTestRouter(t, newRouterStore())

	req := httptest.NewRequest(http.MethodGet, "/activities?limit=5", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Activities []model.Activity `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Activities, 1)
	assert.Equal(t, "Acme Corp", body.Activities[0].CompanyName)
}

func TestServeStaticCards(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acme_email_image.html"), []byte("<html>card</html>"), 0o644))

	catalog, err := enrich.LoadCatalog()
	require.NoError(t, err)
	analyzer := enrich.NewAnalyzer(cannedClient{}, "test-model", 1024, catalog)
	st := newRouterStore()
	p := pipeline.New(pipeline.Options{
		Store:       st,
		Gate:        gate.New(st, routerTestSender, 10),
		Fetcher:     routerFetcher{},
		Analyzer:    analyzer,
		Drafter:     enrich.NewDrafter(analyzer, enrich.DrafterConfig{BrandName: "SERP Hawk"}),
		Mailer:      &mailer.Simulated{},
		SenderEmail: routerTestSender,
	})
	r := newRouter(p, st, dir)

	req := httptest.NewRequest(http.MethodGet, "/static/generated_images/acme_email_image.html", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "card")
}
