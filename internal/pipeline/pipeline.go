// Package pipeline orchestrates the outreach workflow: fetch, analyze,
// match, draft, and the gated two-phase send.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/serp-hawk/outreach-cli/internal/enrich"
	"github.com/serp-hawk/outreach-cli/internal/fetch"
	"github.com/serp-hawk/outreach-cli/internal/gate"
	"github.com/serp-hawk/outreach-cli/internal/model"
	"github.com/serp-hawk/outreach-cli/internal/render"
	"github.com/serp-hawk/outreach-cli/internal/store"
	"github.com/serp-hawk/outreach-cli/pkg/mailer"
)

// Pipeline wires the outreach stages together. All dependencies are
// interfaces or swappable components so each stage can be tested alone.
type Pipeline struct {
	store       store.Store
	gate        *gate.Gatekeeper
	fetcher     fetch.Fetcher
	analyzer    *enrich.Analyzer
	drafter     *enrich.Drafter
	mailer      mailer.Mailer
	renderer    *render.CardRenderer
	senderEmail string
}

// Options collects the pipeline's dependencies.
type Options struct {
	Store       store.Store
	Gate        *gate.Gatekeeper
	Fetcher     fetch.Fetcher
	Analyzer    *enrich.Analyzer
	Drafter     *enrich.Drafter
	Mailer      mailer.Mailer
	Renderer    *render.CardRenderer
	SenderEmail string
}

// New constructs a Pipeline.
func New(opts Options) *Pipeline {
	return &Pipeline{
		store:       opts.Store,
		gate:        opts.Gate,
		fetcher:     opts.Fetcher,
		analyzer:    opts.Analyzer,
		drafter:     opts.Drafter,
		mailer:      opts.Mailer,
		renderer:    opts.Renderer,
		senderEmail: opts.SenderEmail,
	}
}

// Enrich runs fetch and analysis for one URL. When fetching fails the
// name-only fallback path fills in the analysis so a draft is always
// possible; the result records which path ran.
func (p *Pipeline) Enrich(ctx context.Context, rawURL, companyName string) *model.EnrichmentResult {
	result := &model.EnrichmentResult{}

	fetched := p.fetcher.Fetch(ctx, rawURL)
	if fetched.Failed() {
		if fetched.Err != nil {
			result.FetchError = fetched.Err.Error()
		} else {
			result.FetchError = "no content"
		}
		zap.L().Warn("pipeline: fetch failed, using name-only fallback",
			zap.String("url", rawURL),
			zap.String("company", companyName),
			zap.String("fetch_error", result.FetchError),
		)
		p.fillFallback(ctx, companyName, result)
		return result
	}

	result.CompanyInfo = p.analyzer.AnalyzeContent(ctx, fetched.Text)
	if result.CompanyInfo.CompanyName == "" || result.CompanyInfo.CompanyName == "Unknown" {
		if companyName != "" {
			result.CompanyInfo.CompanyName = companyName
		}
	}

	result.MarketAnalysis = p.analyzer.AnalyzeMarket(ctx, result.CompanyInfo.CompanyName, fetched.Text)
	result.ServiceMatches = p.analyzer.MatchServices(ctx, result.CompanyInfo, result.MarketAnalysis)
	return result
}

// fillFallback populates a result from the company name alone: inferred
// market analysis plus fixed visibility-focused service recommendations.
func (p *Pipeline) fillFallback(ctx context.Context, companyName string, result *model.EnrichmentResult) {
	result.UsedFallback = true

	inferred := p.analyzer.InferFromName(ctx, companyName)

	result.CompanyInfo = model.CompanyInfo{
		CompanyName: companyName,
		WhatTheyDo:  inferred.TargetAudience,
	}
	result.MarketAnalysis = model.MarketAnalysis{
		Industry:        inferred.Industry,
		SubCategory:     inferred.SubCategory,
		BusinessModel:   inferred.BusinessModel,
		PainPoints:      inferred.PainPoints,
		GrowthPotential: "High",
		OnlinePresence:  model.OnlinePresence{SEOStatus: "Needs improvement"},
		Confidence:      inferred.Confidence,
	}
	result.ServiceMatches = model.ServiceMatches{
		RecommendedServices: []model.ServiceMatch{
			{
				ServiceName:    "Organic SEO",
				WhyRelevant:    "Improve online visibility and search rankings",
				ExpectedImpact: "More qualified leads from search",
			},
			{
				ServiceName:    "Local SEO",
				WhyRelevant:    "Dominate local search results",
				ExpectedImpact: "Increased local customer acquisition",
			},
		},
		EmailHook:         "Growth opportunities for " + orDefault(inferred.Industry, "your business"),
		PackageSuggestion: "Growth",
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
