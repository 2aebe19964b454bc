// Package render produces the shareable HTML summary card for a prospect:
// company name plus the recommended services, written under the static
// directory the server exposes.
package render

import (
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/serp-hawk/outreach-cli/internal/model"
)

const cardTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.CompanyName}} - Growth Opportunities</title>
<style>
  body { font-family: 'Segoe UI', Arial, sans-serif; background: #0f172a; color: #e2e8f0; margin: 0; padding: 40px; }
  .card { max-width: 640px; margin: 0 auto; background: #1e293b; border-radius: 12px; padding: 32px; }
  h1 { color: #38bdf8; font-size: 28px; margin: 0 0 8px; }
  .tagline { color: #94a3b8; margin-bottom: 24px; }
  .service { background: #0f172a; border-left: 4px solid #38bdf8; border-radius: 6px; padding: 16px; margin-bottom: 12px; }
  .service h2 { font-size: 18px; margin: 0 0 6px; color: #f1f5f9; }
  .service p { margin: 0; color: #94a3b8; font-size: 14px; }
  .impact { color: #4ade80; font-size: 13px; margin-top: 6px; }
</style>
</head>
<body>
<div class="card">
  <h1>{{.CompanyName}}</h1>
  <p class="tagline">Recommended growth services</p>
  {{range .Services}}
  <div class="service">
    <h2>{{.ServiceName}}</h2>
    {{if .WhyRelevant}}<p>{{.WhyRelevant}}</p>{{end}}
    {{if .ExpectedImpact}}<p class="impact">Expected impact: {{.ExpectedImpact}}</p>{{end}}
  </div>
  {{end}}
</div>
</body>
</html>
`

var cardTmpl = template.Must(template.New("card").Parse(cardTemplate))

// CardRenderer writes summary cards into a directory.
type CardRenderer struct {
	dir string
}

// NewCardRenderer creates the output directory if needed.
func NewCardRenderer(dir string) (*CardRenderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "render: create output dir %s", dir)
	}
	return &CardRenderer{dir: dir}, nil
}

type cardData struct {
	CompanyName string
	Services    []model.ServiceMatch
}

// Render writes the card for a company and returns the generated filename
// (relative to the renderer's directory).
func (r *CardRenderer) Render(companyName string, services []model.ServiceMatch) (string, error) {
	filename := SafeFilename(companyName) + "_email_image.html"
	path := filepath.Join(r.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "render: create card %s", path)
	}
	defer func() { _ = f.Close() }()

	if err := cardTmpl.Execute(f, cardData{CompanyName: companyName, Services: services}); err != nil {
		return "", eris.Wrap(err, "render: execute card template")
	}

	zap.L().Info("render: card written",
		zap.String("company", companyName),
		zap.String("file", filename),
	)
	return filename, nil
}

// SafeFilename reduces a company name to filesystem-safe characters, spaces
// collapsed to underscores, capped at 50 characters.
func SafeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune(' ')
		}
	}
	out := strings.TrimSpace(b.String())
	out = strings.ReplaceAll(out, " ", "_")
	if len(out) > 50 {
		out = out[:50]
	}
	if out == "" {
		out = "company"
	}
	return out
}
