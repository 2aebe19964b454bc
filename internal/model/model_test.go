package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare domain", "example.com", "https://example.com"},
		{"uppercase trimmed", "  Example.COM  ", "https://example.com"},
		{"http preserved", "http://example.com", "http://example.com"},
		{"https preserved", "https://example.com/about", "https://example.com/about"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}

func TestNormalizeURL_Idempotent(t *testing.T) {
	inputs := []string{
		"example.com",
		"HTTPS://Example.com/Path",
		"  sub.domain.co.uk ",
		"http://already.normal",
	}
	for _, in := range inputs {
		once := NormalizeURL(in)
		assert.Equal(t, once, NormalizeURL(once), "normalize must be idempotent for %q", in)
	}
}

func TestServiceMatches_ServiceNames(t *testing.T) {
	m := ServiceMatches{
		RecommendedServices: []ServiceMatch{
			{ServiceName: "Organic SEO"},
			{ServiceName: "Local SEO"},
			{ServiceName: ""},
			{ServiceName: "Automation Services"},
		},
	}
	assert.Equal(t, "Organic SEO, Local SEO, Automation Services", m.ServiceNames())

	assert.Empty(t, ServiceMatches{}.ServiceNames())
}
