package enrich

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// controlCharRe matches C0/C1 control characters that models occasionally
// leak inside string values, which strict JSON decoding rejects.
var controlCharRe = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)

// cleanJSON strips markdown code fences and any prose surrounding the
// outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// ParseModelJSON decodes model output into v. It cleans fences first, then
// tries a strict parse; on failure it strips control characters and retries
// once before giving up.
func ParseModelJSON(raw string, v any) error {
	cleaned := cleanJSON(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	repaired := controlCharRe.ReplaceAllString(cleaned, "")
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return eris.Wrap(err, "enrich: parse model json")
	}
	return nil
}
