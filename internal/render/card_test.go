package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serp-hawk/outreach-cli/internal/model"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Acme Plumbing", "Acme_Plumbing"},
		{"Fish & Chips Co.", "Fish__Chips_Co"},
		{"  padded  ", "padded"},
		{"", "company"},
		{"!!!", "company"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeFilename(tt.in), "input %q", tt.in)
	}
}

func TestSafeFilename_Caps(t *testing.T) {
	long := ""
	for i := 0; i < 80; i++ {
		long += "a"
	}
	assert.Len(t, SafeFilename(long), 50)
}

func TestCardRenderer_Render(t *testing.T) {
	dir := t.TempDir()
	r, err := NewCardRenderer(dir)
	require.NoError(t, err)

	filename, err := r.Render("Acme Plumbing", []model.ServiceMatch{
		{ServiceName: "Local SEO", WhyRelevant: "Local demand", ExpectedImpact: "More calls"},
		{ServiceName: "Organic SEO"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme_Plumbing_email_image.html", filename)

	content, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Acme Plumbing")
	assert.Contains(t, string(content), "Local SEO")
	assert.Contains(t, string(content), "Expected impact: More calls")
}

func TestCardRenderer_EscapesHTML(t *testing.T) {
	dir := t.TempDir()
	r, err := NewCardRenderer(dir)
	require.NoError(t, err)

	filename, err := r.Render("<script>alert(1)</script>", nil)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, filename))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "<script>alert(1)</script>")
}
