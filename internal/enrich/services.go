package enrich

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed services.yaml
var servicesYAML []byte

// CatalogService is one offering from the fixed service catalog.
type CatalogService struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Catalog is the fixed set of services drafts may recommend. Matching never
// invents services outside this list.
type Catalog struct {
	Services []CatalogService `yaml:"services"`
}

// LoadCatalog parses the embedded service catalog.
func LoadCatalog() (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(servicesYAML, &c); err != nil {
		return nil, eris.Wrap(err, "enrich: parse service catalog")
	}
	if len(c.Services) == 0 {
		return nil, eris.New("enrich: service catalog is empty")
	}
	return &c, nil
}

// PromptBlock renders the catalog as a numbered list for prompt injection.
func (c *Catalog) PromptBlock() string {
	var b strings.Builder
	for i, s := range c.Services {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, s.Name, s.Description)
	}
	return b.String()
}

// Names returns the canonical service names.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.Services))
	for i, s := range c.Services {
		names[i] = s.Name
	}
	return names
}
