package enrich

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/serp-hawk/outreach-cli/pkg/anthropic"
)

const extractServicesPrompt = `Analyze the following email content and extract a list of specific services that are being offered or requested.
Return ONLY a comma-separated list of services. Do not include any other text, explanation, or introductions.

Example Output: SEO Audit, Content Marketing, Google Ads

Email Content:
%s`

// ExtractServices pulls a comma-separated service list out of an ad-hoc email
// body, for activity records on sends that skipped the pipeline. Returns ""
// on empty input or failure.
func (a *Analyzer) ExtractServices(ctx context.Context, emailBody string) string {
	if strings.TrimSpace(emailBody) == "" {
		return ""
	}

	out, err := anthropic.Generate(ctx, a.client, a.model, "", fmt.Sprintf(extractServicesPrompt, emailBody), a.maxTokens)
	if err != nil {
		zap.L().Warn("enrich: service extraction failed", zap.Error(err))
		return ""
	}

	text := strings.TrimSpace(out)
	text = strings.TrimSpace(strings.TrimPrefix(text, "Services:"))
	return text
}
