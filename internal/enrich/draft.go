package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/serp-hawk/outreach-cli/internal/model"
	"github.com/serp-hawk/outreach-cli/pkg/anthropic"
)

const inboundPrompt = `Write a professional INBOUND inquiry email to %s.
We are %s, and we are interested in potentially hiring THEM for what they do.

Context:
- Target Company: %s
- What they do: %s

Instructions:
- Be professional and curious.
- Mention that we saw their website and are interested in their %s services.
- Ask a specific question about their process or availability.
- Keep it very short (under 100 words).
- Signature: %s, %s.

Output Format (JSON):
{
    "subject": "Inquiry regarding %s services",
    "body_html": "HTML formatted email content"
}`

const outreachPrompt = `Write a RESULTS-FOCUSED, transformation-driven sales email from %s to %s.

CRITICAL STYLE REQUIREMENTS:
- DO NOT talk about "who we are" or company history
- FOCUS 100%% on RESULTS, BENEFITS, and TRANSFORMATION
- Use "Imagine..." storytelling to paint the outcome
- Highlight what they GET, not what we do
- Make it feel like a game-changer, not a service pitch

Context:
- Company: %s
- Industry: %s
- Pain Points: %s
- Growth Potential: %s

Our Solutions:
%s

Email Structure:
1. Opening: "Imagine..." scenario showing the transformation
2. The Problem (briefly): Reference their specific pain points
3. The Introduction: Briefly mention %s's readiness to provide these outcomes.
4. The Solution Details: 2-3 specific OUTCOMES they'll get (numbers/tangible results)
5. CTA: Simple and direct (Reply 'INTERESTED' or call %s)
6. P.S.: Urgency or bonus insight

Output Format (JSON):
{
    "subject": "Curiosity-driven subject line",
    "body_html": "HTML email focusing on RESULTS and TRANSFORMATION"
}`

// DrafterConfig identifies the sending brand in generated emails.
type DrafterConfig struct {
	BrandName  string
	SignerName string
	Phone      string
}

// Drafter generates outreach and inbound email drafts.
type Drafter struct {
	analyzer *Analyzer
	cfg      DrafterConfig
}

// NewDrafter wires a Drafter onto an Analyzer's model settings.
func NewDrafter(analyzer *Analyzer, cfg DrafterConfig) *Drafter {
	return &Drafter{analyzer: analyzer, cfg: cfg}
}

// draftEnvelope is the model response shape. Some models answer with "body"
// instead of "body_html"; both are accepted.
type draftEnvelope struct {
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
	Body     string `json:"body"`
}

// Draft generates an email for the prospect. A nil contact addresses the
// whole team. Generation failures degrade to a fixed minimal draft so the
// two-phase flow always yields something reviewable.
func (d *Drafter) Draft(ctx context.Context, info model.CompanyInfo, ma model.MarketAnalysis, sm model.ServiceMatches, contact *model.Contact, mode model.DraftMode) (subject, bodyHTML string) {
	companyName := info.CompanyName
	if companyName == "" {
		companyName = "your company"
	}
	industry := ma.Industry
	if industry == "" {
		industry = "your industry"
	}

	var prompt string
	if mode == model.DraftModeInbound {
		prompt = fmt.Sprintf(inboundPrompt,
			companyName, d.cfg.BrandName,
			companyName, orDefault(info.WhatTheyDo, "their services"),
			industry,
			d.cfg.SignerName, d.cfg.BrandName,
			companyName,
		)
	} else {
		prompt = fmt.Sprintf(outreachPrompt,
			d.cfg.BrandName, companyName,
			companyName, industry,
			mustJSON(ma.PainPoints), ma.GrowthPotential,
			formatSolutions(sm),
			d.cfg.BrandName, d.cfg.Phone,
		)
	}

	out, err := anthropic.Generate(ctx, d.analyzer.client, d.analyzer.model, "", prompt, d.analyzer.maxTokens)
	if err == nil {
		var env draftEnvelope
		if err = ParseModelJSON(out, &env); err == nil {
			body := env.BodyHTML
			if body == "" {
				body = formatPlainToHTML(env.Body)
			}
			if env.Subject != "" && body != "" {
				return env.Subject, body
			}
			err = eris.New("draft missing subject or body")
		}
	}

	zap.L().Warn("enrich: draft generation degraded",
		zap.String("company", companyName),
		zap.String("mode", string(mode)),
		zap.Error(err),
	)
	return fallbackDraft(companyName, Salutation(companyName, contact), mode)
}

// Salutation personalizes the greeting: first name when a named contact
// exists, otherwise the company team.
func Salutation(companyName string, contact *model.Contact) string {
	if contact != nil && strings.TrimSpace(contact.Name) != "" {
		first := strings.Fields(contact.Name)[0]
		return fmt.Sprintf("Hi %s,", first)
	}
	return fmt.Sprintf("Hi %s Team,", companyName)
}

// fallbackDraft is the fixed minimal draft used when generation fails.
func fallbackDraft(companyName, salutation string, mode model.DraftMode) (string, string) {
	subject := fmt.Sprintf("Growth for %s", companyName)
	if mode == model.DraftModeInbound {
		subject = fmt.Sprintf("Question for the %s team", companyName)
	}
	body := fmt.Sprintf("<p>%s</p><p>I had a quick question about your business. Can we chat?</p>", salutation)
	return subject, body
}

// formatSolutions renders the top matched services for the outreach prompt.
func formatSolutions(sm model.ServiceMatches) string {
	services := sm.RecommendedServices
	if len(services) > 3 {
		services = services[:3]
	}
	var b strings.Builder
	for i, svc := range services {
		fmt.Fprintf(&b, "\n%d. **%s**: %s\n   Expected Impact: %s", i+1, svc.ServiceName, svc.WhyRelevant, svc.ExpectedImpact)
	}
	if b.Len() == 0 {
		return "General digital marketing and web development services."
	}
	return b.String()
}

// formatPlainToHTML wraps double-newline paragraphs in <p> tags.
func formatPlainToHTML(plain string) string {
	if strings.TrimSpace(plain) == "" {
		return ""
	}
	var out []string
	for _, p := range strings.Split(plain, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, "<p>"+trimmed+"</p>")
		}
	}
	return strings.Join(out, "\n")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
