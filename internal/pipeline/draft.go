package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/serp-hawk/outreach-cli/internal/gate"
	"github.com/serp-hawk/outreach-cli/internal/model"
)

// DraftLeadRequest identifies the prospect to draft for.
type DraftLeadRequest struct {
	CompanyName  string `json:"company_name"`
	WebsiteURL   string `json:"website_url"`
	PrimaryEmail string `json:"primary_email"`
}

// DraftLeadResult pairs the reviewable draft with the advisory gate outcome.
// A non-empty Warning means the send phase would currently reject this
// prospect; the operator decides whether the draft is still worth reviewing.
type DraftLeadResult struct {
	Draft   *model.Draft `json:"draft"`
	Warning string       `json:"warning,omitempty"`
}

// DraftLead is phase one of the two-phase flow: check eligibility, enrich,
// and return a reviewable draft. The gate is advisory here: a duplicate or
// rate rejection is surfaced as a warning, not a blocker, because drafting
// performs no persistence and no sending. The send phase re-checks
// authoritatively.
func (p *Pipeline) DraftLead(ctx context.Context, req DraftLeadRequest) (*DraftLeadResult, error) {
	normalized := model.NormalizeURL(req.WebsiteURL)

	warning, err := p.advisoryCheck(ctx, normalized)
	if err != nil {
		return nil, err
	}

	zap.L().Info("pipeline: drafting lead",
		zap.String("company", req.CompanyName),
		zap.String("url", normalized),
	)

	enrichment := p.Enrich(ctx, normalized, req.CompanyName)

	contact := &model.Contact{
		Name:  req.CompanyName,
		Email: req.PrimaryEmail,
		Role:  "Decision Maker",
	}
	subject, body := p.drafter.Draft(ctx,
		enrichment.CompanyInfo,
		enrichment.MarketAnalysis,
		enrichment.ServiceMatches,
		contact,
		model.DraftModeOutreach,
	)

	return &DraftLeadResult{
		Draft: &model.Draft{
			Subject:             subject,
			Body:                body,
			RecipientEmail:      req.PrimaryEmail,
			CompanyName:         req.CompanyName,
			WebsiteURL:          normalized,
			RecommendedServices: enrichment.ServiceMatches.ServiceNames(),
		},
		Warning: warning,
	}, nil
}

// advisoryCheck runs the gate and converts eligibility rejections into a
// warning string. Store failures still propagate as errors.
func (p *Pipeline) advisoryCheck(ctx context.Context, normalizedURL string) (string, error) {
	_, err := p.gate.Check(ctx, normalizedURL)
	if err == nil {
		return "", nil
	}

	var dup *gate.DuplicateProspectError
	var rate *gate.RateLimitExceededError
	if errors.As(err, &dup) || errors.As(err, &rate) {
		zap.L().Warn("pipeline: draft eligibility warning",
			zap.String("url", normalizedURL),
			zap.String("warning", err.Error()),
		)
		return err.Error(), nil
	}
	return "", err
}
