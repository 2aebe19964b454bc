package pipeline

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/serp-hawk/outreach-cli/internal/model"
)

// defaultGenerateConcurrency bounds parallel URL processing in Generate.
const defaultGenerateConcurrency = 3

// DraftPair holds both framings of a generated email.
type DraftPair struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ContactDrafts is the outreach/inbound pair generated for one contact.
type ContactDrafts struct {
	ToEmail       string    `json:"to_email"`
	RecipientName string    `json:"recipient_name"`
	Role          string    `json:"role"`
	Outreach      DraftPair `json:"outreach"`
	Inbound       DraftPair `json:"inbound"`
}

// GenerateAnalysis is the condensed analysis attached to a Generate item.
type GenerateAnalysis struct {
	CompanyName string          `json:"company_name"`
	WhatTheyDo  string          `json:"what_they_do"`
	Contacts    []model.Contact `json:"contacts"`
}

// GenerateItem is the per-URL result of a Generate run. Either Error is set
// or the analysis/emails fields are populated.
type GenerateItem struct {
	URL      string            `json:"url"`
	Error    string            `json:"error,omitempty"`
	Analysis *GenerateAnalysis `json:"analysis,omitempty"`
	Emails   []ContactDrafts   `json:"emails,omitempty"`
	ImageURL string            `json:"image_url,omitempty"`
}

// Generate runs the full analysis workflow for a batch of URLs and returns
// draft emails for every discovered contact, in both outreach and inbound
// framings, plus a rendered summary card. Nothing is sent or persisted: the
// output feeds the review UI and SendAdHoc. Unlike the draft-lead path,
// fetch failures here report an error item instead of the name-only fallback
// because there is no operator-provided company name to fall back on.
// Results keep input order; one URL failing never stops the batch.
func (p *Pipeline) Generate(ctx context.Context, urls []string, concurrency int) []GenerateItem {
	if concurrency <= 0 {
		concurrency = defaultGenerateConcurrency
	}

	items := make([]GenerateItem, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, url := range urls {
		g.Go(func() error {
			items[i] = p.generateOne(gctx, url)
			return nil
		})
	}
	// Workers never return errors; failures live on the items.
	_ = g.Wait()

	return items
}

func (p *Pipeline) generateOne(ctx context.Context, rawURL string) GenerateItem {
	item := GenerateItem{URL: rawURL}

	fetched := p.fetcher.Fetch(ctx, model.NormalizeURL(rawURL))
	if fetched.Failed() {
		if fetched.Err != nil {
			item.Error = fetched.Err.Error()
		} else {
			item.Error = "failed to fetch website"
		}
		return item
	}

	info := p.analyzer.AnalyzeContent(ctx, fetched.Text)
	companyName := orDefault(info.CompanyName, "Unknown Company")

	ma := p.analyzer.AnalyzeMarket(ctx, companyName, fetched.Text)
	sm := p.analyzer.MatchServices(ctx, info, ma)

	item.Analysis = &GenerateAnalysis{
		CompanyName: companyName,
		WhatTheyDo:  info.WhatTheyDo,
		Contacts:    info.Contacts,
	}
	item.Emails = p.draftForContacts(ctx, info, ma, sm)

	if p.renderer != nil {
		filename, err := p.renderer.Render(companyName, sm.RecommendedServices)
		if err != nil {
			zap.L().Warn("pipeline: card render failed",
				zap.String("company", companyName),
				zap.Error(err),
			)
		} else {
			item.ImageURL = "/static/generated_images/" + filename
		}
	}

	return item
}

// draftForContacts generates both draft framings per discovered contact, or
// one general pair when no contacts were found.
func (p *Pipeline) draftForContacts(ctx context.Context, info model.CompanyInfo, ma model.MarketAnalysis, sm model.ServiceMatches) []ContactDrafts {
	contacts := info.Contacts
	if len(contacts) == 0 {
		outSubj, outBody := p.drafter.Draft(ctx, info, ma, sm, nil, model.DraftModeOutreach)
		inSubj, inBody := p.drafter.Draft(ctx, info, ma, sm, nil, model.DraftModeInbound)
		return []ContactDrafts{{
			RecipientName: "General",
			Role:          "N/A",
			Outreach:      DraftPair{Subject: outSubj, Body: outBody},
			Inbound:       DraftPair{Subject: inSubj, Body: inBody},
		}}
	}

	drafts := make([]ContactDrafts, 0, len(contacts))
	for _, contact := range contacts {
		outSubj, outBody := p.drafter.Draft(ctx, info, ma, sm, &contact, model.DraftModeOutreach)
		inSubj, inBody := p.drafter.Draft(ctx, info, ma, sm, &contact, model.DraftModeInbound)
		drafts = append(drafts, ContactDrafts{
			ToEmail:       contact.Email,
			RecipientName: contact.Name,
			Role:          contact.Role,
			Outreach:      DraftPair{Subject: outSubj, Body: outBody},
			Inbound:       DraftPair{Subject: inSubj, Body: inBody},
		})
	}
	return drafts
}
