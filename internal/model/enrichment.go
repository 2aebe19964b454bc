package model

// Contact is a person extracted from scraped content. Contacts are consumed
// only to personalize drafts and are never persisted on their own.
type Contact struct {
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
	Email   string `json:"email,omitempty"`
	Context string `json:"context,omitempty"`
}

// CompanyInfo holds structured facts extracted from website content. Every
// field is optional: model output carries no schema guarantees, so consumers
// must default missing fields rather than trust the declared shape.
type CompanyInfo struct {
	CompanyName   string    `json:"company_name,omitempty"`
	WhatTheyDo    string    `json:"what_they_do,omitempty"`
	Contacts      []Contact `json:"contacts,omitempty"`
	KeyValueProps []string  `json:"key_value_props,omitempty"`

	// Error annotates a degraded default produced after a generation or
	// parse failure. It is informational only and never aborts the pipeline.
	Error string `json:"error,omitempty"`
}

// OnlinePresence summarizes a company's visible web footprint.
type OnlinePresence struct {
	WebsiteQuality string `json:"website_quality,omitempty"`
	SEOStatus      string `json:"seo_status,omitempty"`
	SocialSignals  string `json:"social_signals,omitempty"`
}

// Competitor is one competitor identified by the market analysis.
type Competitor struct {
	Name          string `json:"name,omitempty"`
	Website       string `json:"website,omitempty"`
	WhyCompetitor string `json:"why_competitor,omitempty"`
}

// MarketAnalysis is the market-position view of a prospect, produced either
// from scraped content or (lower confidence) from the company name alone.
// Downstream stages cannot tell which path produced it.
type MarketAnalysis struct {
	Industry         string         `json:"industry,omitempty"`
	SubCategory      string         `json:"sub_category,omitempty"`
	Niche            string         `json:"niche,omitempty"`
	BusinessType     string         `json:"business_type,omitempty"`
	BusinessModel    string         `json:"business_model,omitempty"`
	MarketSize       string         `json:"market_size,omitempty"`
	GrowthPotential  string         `json:"growth_potential,omitempty"`
	GrowthIndicators []string       `json:"growth_indicators,omitempty"`
	TargetAudience   string         `json:"target_audience,omitempty"`
	OnlinePresence   OnlinePresence `json:"online_presence,omitempty"`
	Competitors      []Competitor   `json:"competitors,omitempty"`
	PainPoints       []string       `json:"pain_points,omitempty"`
	Opportunities    []string       `json:"opportunities,omitempty"`
	Confidence       string         `json:"confidence,omitempty"`

	Error string `json:"error,omitempty"`
}

// ServiceMatch is one catalog service ranked against a prospect's needs.
type ServiceMatch struct {
	ServiceName    string `json:"service_name"`
	Priority       string `json:"priority,omitempty"`
	RelevanceScore int    `json:"relevance_score,omitempty"`
	WhyRelevant    string `json:"why_relevant,omitempty"`
	ExpectedImpact string `json:"expected_impact,omitempty"`
	UseCase        string `json:"use_case,omitempty"`
}

// ServiceMatches is the prioritized recommendation list for a prospect.
type ServiceMatches struct {
	RecommendedServices []ServiceMatch `json:"recommended_services"`
	PackageSuggestion   string         `json:"package_suggestion,omitempty"`
	QuickWins           []string       `json:"quick_wins,omitempty"`
	LongTermStrategy    []string       `json:"long_term_strategy,omitempty"`
	EmailHook           string         `json:"email_hook,omitempty"`

	Error string `json:"error,omitempty"`
}

// ServiceNames returns the matched service names joined for display and
// persistence on the prospect row.
func (s ServiceMatches) ServiceNames() string {
	names := make([]string, 0, len(s.RecommendedServices))
	for _, m := range s.RecommendedServices {
		if m.ServiceName != "" {
			names = append(names, m.ServiceName)
		}
	}
	if len(names) == 0 {
		return ""
	}
	out := names[0]
	for _, n := range names[1:] {
		out += ", " + n
	}
	return out
}

// EnrichmentResult threads the pipeline stages' outputs through one request.
// Each sub-field degrades independently; absence never aborts the pipeline.
type EnrichmentResult struct {
	CompanyInfo    CompanyInfo    `json:"company_info"`
	MarketAnalysis MarketAnalysis `json:"market_analysis"`
	ServiceMatches ServiceMatches `json:"service_matches"`

	// UsedFallback marks that the name-only inference path supplied the
	// analysis because fetching failed or returned no usable content.
	UsedFallback bool   `json:"used_fallback,omitempty"`
	FetchError   string `json:"fetch_error,omitempty"`
}

// DraftMode selects the prompt framing for email generation.
type DraftMode string

const (
	// DraftModeOutreach sells our services, foregrounding outcomes.
	DraftModeOutreach DraftMode = "outreach"
	// DraftModeInbound poses as a prospective customer of the target.
	DraftModeInbound DraftMode = "inbound"
)

// Draft is a generated email awaiting operator review. It exists only
// between the draft and send phases and is never persisted until a send
// succeeds.
type Draft struct {
	Subject             string `json:"subject"`
	Body                string `json:"body"`
	RecipientEmail      string `json:"primary_email"`
	CompanyName         string `json:"company_name"`
	WebsiteURL          string `json:"website_url"`
	RecommendedServices string `json:"recommended_services,omitempty"`
}
