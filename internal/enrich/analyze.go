// Package enrich turns fetched website text into structured company intel:
// content analysis, market analysis, service matching, and email drafting.
// Each stage degrades to an annotated default on failure instead of failing
// the pipeline; the Error field on the result marks the degraded path.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/serp-hawk/outreach-cli/internal/model"
	"github.com/serp-hawk/outreach-cli/pkg/anthropic"
)

// Prompt-side truncation caps. Fetched documents are already bounded, but the
// market prompt carries extra context so it gets a tighter cap.
const (
	analyzeContentCap = 15000
	marketContentCap  = 10000
)

const analyzeSystem = "You are a business analyst extracting structured facts from website content. Return only valid JSON matching the requested schema. Use null for fields not found."

const analyzePrompt = `Analyze the following website content and return a JSON object with this exact structure:
{
    "company_name": "Name of the company",
    "what_they_do": "Brief summary of their business (2-3 sentences)",
    "contacts": [
        {
            "name": "Full Name",
            "role": "Job Title",
            "email": "Email address if found, else null",
            "context": "Any specific context or null"
        }
    ],
    "key_value_props": ["prop1", "prop2"]
}

Website Content:
%s`

const marketPrompt = `Analyze this company's website content and provide a comprehensive market analysis.

Company: %s
Website Content: %s

Provide analysis in JSON format with the following structure:
{
    "industry": "Primary industry/sector",
    "sub_category": "More specific business category within the industry",
    "niche": "Specialized focus area or unique positioning",
    "business_type": "Type of business (e.g., E-commerce, SaaS, Service Provider, etc.)",
    "business_model": "Revenue model (B2B, B2C, B2B2C, Marketplace, etc.)",
    "market_size": "Estimated market size and description",
    "growth_potential": "High/Medium/Low with detailed explanation",
    "growth_indicators": ["Indicator 1: explanation", "Indicator 2: explanation"],
    "target_audience": "Description of their target audience",
    "online_presence": {
        "website_quality": "Assessment of current website",
        "seo_status": "Visible SEO optimization level",
        "social_signals": "Any social media presence detected"
    },
    "competitors": [
        {"name": "Competitor name", "website": "competitor.com (if identifiable)", "why_competitor": "Brief explanation"}
    ],
    "pain_points": ["Potential challenge 1", "Potential challenge 2"],
    "opportunities": ["Growth opportunity 1", "Growth opportunity 2"]
}

Be specific and insightful. Focus on actionable intelligence.`

const matchPrompt = `Based on this company's profile and market analysis, recommend the TOP 3-4 most relevant services.

Company: %s
Industry: %s
Business Type: %s
Growth Potential: %s
Pain Points: %s
Opportunities: %s
Current Online Presence: %s

Available Services:
%s

Return JSON format:
{
    "recommended_services": [
        {
            "service_name": "Service Name",
            "priority": "High/Medium",
            "relevance_score": 85,
            "why_relevant": "Detailed explanation of why this service would help them",
            "expected_impact": "What results they can expect",
            "use_case": "Specific use case for their business"
        }
    ],
    "package_suggestion": "Starter/Growth/Enterprise - based on their business size and needs",
    "quick_wins": ["Service 1 for immediate impact", "Service 2 for quick results"],
    "long_term_strategy": ["Service 1 for sustained growth", "Service 2 for competitive advantage"],
    "email_hook": "A compelling opening line for the email that references their specific situation"
}

Be specific and compelling. Show deep understanding of their business.`

// maxRecommendedServices caps how many catalog services a match may carry.
const maxRecommendedServices = 4

// Analyzer runs the model-backed enrichment stages.
type Analyzer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	catalog   *Catalog
}

// NewAnalyzer constructs an Analyzer against the given model.
func NewAnalyzer(client anthropic.Client, modelID string, maxTokens int64, catalog *Catalog) *Analyzer {
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Analyzer{client: client, model: modelID, maxTokens: maxTokens, catalog: catalog}
}

// AnalyzeContent extracts company facts from website text. On any failure it
// returns the annotated default rather than an error.
func (a *Analyzer) AnalyzeContent(ctx context.Context, text string) model.CompanyInfo {
	prompt := fmt.Sprintf(analyzePrompt, truncate(text, analyzeContentCap))

	out, err := anthropic.Generate(ctx, a.client, a.model, analyzeSystem, prompt, a.maxTokens)
	if err == nil {
		var info model.CompanyInfo
		if err = ParseModelJSON(out, &info); err == nil {
			return info
		}
	}

	zap.L().Warn("enrich: content analysis degraded", zap.Error(err))
	return model.CompanyInfo{
		CompanyName: "Unknown",
		WhatTheyDo:  "Analysis failed",
		Error:       err.Error(),
	}
}

// AnalyzeMarket produces the market-position view from scraped content.
func (a *Analyzer) AnalyzeMarket(ctx context.Context, companyName, text string) model.MarketAnalysis {
	prompt := fmt.Sprintf(marketPrompt, companyName, truncate(text, marketContentCap))

	out, err := anthropic.Generate(ctx, a.client, a.model, "", prompt, a.maxTokens)
	if err == nil {
		var ma model.MarketAnalysis
		if err = ParseModelJSON(out, &ma); err == nil {
			return ma
		}
	}

	zap.L().Warn("enrich: market analysis degraded", zap.Error(err))
	return model.MarketAnalysis{
		Industry:        "Unknown",
		BusinessType:    "Unknown",
		GrowthPotential: "Unable to analyze",
		Error:           err.Error(),
	}
}

// MatchServices ranks catalog services against the prospect's profile. Names
// outside the catalog are dropped and the list is capped.
func (a *Analyzer) MatchServices(ctx context.Context, info model.CompanyInfo, ma model.MarketAnalysis) model.ServiceMatches {
	prompt := fmt.Sprintf(matchPrompt,
		info.CompanyName,
		ma.Industry,
		ma.BusinessType,
		ma.GrowthPotential,
		mustJSON(ma.PainPoints),
		mustJSON(ma.Opportunities),
		mustJSON(ma.OnlinePresence),
		a.catalog.PromptBlock(),
	)

	out, err := anthropic.Generate(ctx, a.client, a.model, "", prompt, a.maxTokens)
	if err == nil {
		var sm model.ServiceMatches
		if err = ParseModelJSON(out, &sm); err == nil {
			sm.RecommendedServices = a.filterToCatalog(sm.RecommendedServices)
			return sm
		}
	}

	zap.L().Warn("enrich: service matching degraded", zap.Error(err))
	return model.ServiceMatches{Error: err.Error()}
}

// filterToCatalog keeps only matches whose names exist in the catalog, in
// model order, capped at maxRecommendedServices.
func (a *Analyzer) filterToCatalog(matches []model.ServiceMatch) []model.ServiceMatch {
	known := make(map[string]struct{}, len(a.catalog.Services))
	for _, s := range a.catalog.Services {
		known[s.Name] = struct{}{}
	}

	var kept []model.ServiceMatch
	for _, m := range matches {
		if _, ok := known[m.ServiceName]; !ok {
			zap.L().Debug("enrich: dropping non-catalog service", zap.String("service", m.ServiceName))
			continue
		}
		kept = append(kept, m)
		if len(kept) == maxRecommendedServices {
			break
		}
	}
	return kept
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}
