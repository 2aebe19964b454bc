package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/serp-hawk/outreach-cli/internal/model"
	"github.com/serp-hawk/outreach-cli/pkg/mailer"
)

// SendLeadRequest is an approved draft coming back for delivery.
type SendLeadRequest struct {
	CompanyName         string `json:"company_name"`
	WebsiteURL          string `json:"website_url"`
	PrimaryEmail        string `json:"primary_email"`
	Subject             string `json:"subject"`
	Body                string `json:"body"`
	RecommendedServices string `json:"recommended_services,omitempty"`

	// Manual logs the outreach without delivering, for emails sent outside
	// the system.
	Manual bool `json:"manual,omitempty"`
}

// SendLead is phase two: re-check the gate, deliver, then persist the
// prospect and the send record. The gate re-check is mandatory because time
// passed since drafting and other sends may have consumed the rate budget.
//
// Delivery and persistence are not atomic. A send that lands but fails to
// record is logged loudly and surfaced as an error; the next gate check will
// not count it, which can admit one extra send past the cap.
func (p *Pipeline) SendLead(ctx context.Context, req SendLeadRequest) error {
	normalized := model.NormalizeURL(req.WebsiteURL)

	if _, err := p.gate.Check(ctx, normalized); err != nil {
		return err
	}

	if !req.Manual {
		if err := p.mailer.Send(mailer.Email{
			To:      req.PrimaryEmail,
			Subject: req.Subject,
			Body:    req.Body,
		}); err != nil {
			return err
		}
	} else {
		zap.L().Info("pipeline: manual send logged without delivery",
			zap.String("to", req.PrimaryEmail),
			zap.String("subject", req.Subject),
		)
	}

	prospect, err := p.store.UpsertProspect(ctx, model.Prospect{
		ID:                  uuid.New().String(),
		CompanyName:         req.CompanyName,
		WebsiteURL:          normalized,
		PrimaryEmail:        req.PrimaryEmail,
		SenderEmail:         p.senderEmail,
		Contacted:           true,
		RecommendedServices: req.RecommendedServices,
	})
	if err != nil {
		zap.L().Error("pipeline: email delivered but prospect not recorded",
			zap.String("to", req.PrimaryEmail),
			zap.String("url", normalized),
			zap.Error(err),
		)
		return eris.Wrap(err, "pipeline: record prospect after send")
	}

	if _, err := p.store.InsertSendRecord(ctx, prospect.ID, p.senderEmail); err != nil {
		zap.L().Error("pipeline: email delivered but send not recorded",
			zap.String("prospect_id", prospect.ID),
			zap.Error(err),
		)
		return eris.Wrap(err, "pipeline: record send")
	}

	zap.L().Info("pipeline: lead sent",
		zap.String("company", req.CompanyName),
		zap.String("to", req.PrimaryEmail),
		zap.Bool("manual", req.Manual),
	)
	return nil
}

// SendAdHoc delivers an email that did not come from the draft flow, e.g.
// straight out of a Generate result. There is no prospect URL to deduplicate
// on, so only the rate-limit rule applies; a shell prospect keyed on the
// recipient email anchors the send record.
func (p *Pipeline) SendAdHoc(ctx context.Context, to, subject, body string) error {
	if _, err := p.gate.CheckRateOnly(ctx); err != nil {
		return err
	}

	if err := p.mailer.Send(mailer.Email{To: to, Subject: subject, Body: body}); err != nil {
		return err
	}

	services := p.analyzer.ExtractServices(ctx, body)

	prospect, err := p.store.UpsertProspect(ctx, model.Prospect{
		ID:                  uuid.New().String(),
		CompanyName:         "Ad-Hoc Outreach Contact",
		WebsiteURL:          fmt.Sprintf("adhoc://%s/%s", to, uuid.New().String()),
		PrimaryEmail:        to,
		SenderEmail:         p.senderEmail,
		Contacted:           true,
		RecommendedServices: services,
	})
	if err != nil {
		zap.L().Error("pipeline: ad-hoc email delivered but prospect not recorded",
			zap.String("to", to),
			zap.Error(err),
		)
		return eris.Wrap(err, "pipeline: record ad-hoc prospect after send")
	}

	if _, err := p.store.InsertSendRecord(ctx, prospect.ID, p.senderEmail); err != nil {
		zap.L().Error("pipeline: ad-hoc email delivered but send not recorded",
			zap.String("prospect_id", prospect.ID),
			zap.Error(err),
		)
		return eris.Wrap(err, "pipeline: record ad-hoc send")
	}

	zap.L().Info("pipeline: ad-hoc email sent", zap.String("to", to))
	return nil
}
