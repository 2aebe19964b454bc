package enrich

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/serp-hawk/outreach-cli/internal/model"
	"github.com/serp-hawk/outreach-cli/pkg/anthropic"
)

const fallbackPrompt = `Analyze this company name and make educated guesses about their business:

Company Name: %s

Based on the name alone, provide your best analysis in JSON format:
{
    "likely_industry": "Most probable industry/sector",
    "sub_category": "Specific business category",
    "business_model": "B2B, B2C, or B2B2C",
    "what_they_likely_do": "Brief description of probable business activities",
    "common_pain_points": [
        "Pain point 1 common in this industry",
        "Pain point 2 common in this industry",
        "Pain point 3 common in this industry"
    ],
    "target_audience": "Likely target customer base",
    "confidence": "High/Medium/Low - how confident are you in this analysis"
}

Be specific and practical. Focus on actionable insights even with limited information.`

// nameInference is the fallback response shape.
type nameInference struct {
	LikelyIndustry   string   `json:"likely_industry"`
	SubCategory      string   `json:"sub_category"`
	BusinessModel    string   `json:"business_model"`
	WhatTheyLikelyDo string   `json:"what_they_likely_do"`
	CommonPainPoints []string `json:"common_pain_points"`
	TargetAudience   string   `json:"target_audience"`
	Confidence       string   `json:"confidence"`
}

// InferFromName is the fallback analysis path for prospects whose site could
// not be fetched: it guesses industry and pain points from the company name
// alone. The result slots into the same MarketAnalysis shape as the content
// path, with Confidence carrying the lowered trust.
func (a *Analyzer) InferFromName(ctx context.Context, companyName string) model.MarketAnalysis {
	prompt := fmt.Sprintf(fallbackPrompt, companyName)

	out, err := anthropic.Generate(ctx, a.client, a.model, "", prompt, a.maxTokens)
	if err == nil {
		var inf nameInference
		if err = ParseModelJSON(out, &inf); err == nil {
			zap.L().Info("enrich: name-only inference",
				zap.String("company", companyName),
				zap.String("industry", inf.LikelyIndustry),
				zap.String("confidence", inf.Confidence),
			)
			return inf.toMarketAnalysis()
		}
	}

	zap.L().Warn("enrich: name-only inference degraded", zap.Error(err))
	return defaultNameInference().toMarketAnalysis()
}

// defaultNameInference is the last-resort guess when even the name-only model
// call fails.
func defaultNameInference() nameInference {
	return nameInference{
		LikelyIndustry:   "General Business",
		SubCategory:      "Unknown",
		BusinessModel:    "B2B",
		WhatTheyLikelyDo: "Business services",
		CommonPainPoints: []string{"Lead Generation", "Online Visibility", "Customer Acquisition"},
		TargetAudience:   "Business owners",
		Confidence:       "Low",
	}
}

func (n nameInference) toMarketAnalysis() model.MarketAnalysis {
	return model.MarketAnalysis{
		Industry:       n.LikelyIndustry,
		SubCategory:    n.SubCategory,
		BusinessModel:  n.BusinessModel,
		TargetAudience: n.TargetAudience,
		PainPoints:     n.CommonPainPoints,
		Confidence:     n.Confidence,
	}
}
