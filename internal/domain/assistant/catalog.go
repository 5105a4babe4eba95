package assistant

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

func (p Provider) Valid() bool {
	return p == ProviderOpenAI || p == ProviderAnthropic
}

//go:embed models.yaml
var catalogYAML []byte

type CatalogEntry struct {
	Model       string   `yaml:"model" json:"model"`
	Provider    Provider `yaml:"provider" json:"provider"`
	DisplayName string   `yaml:"display_name" json:"display_name"`
}

type catalogFile struct {
	Models []CatalogEntry `yaml:"models"`
}

var (
	catalogOnce    sync.Once
	catalog        map[string]CatalogEntry
	catalogOrdered []CatalogEntry
	catalogErr     error
)

// openAIPrefixes route uncatalogued models, compared case-insensitively.
var openAIPrefixes = []string{"gpt", "o1", "o3", "o4"}

func loadCatalog() (map[string]CatalogEntry, error) {
	catalogOnce.Do(func() {
		var f catalogFile
		if err := yaml.Unmarshal(catalogYAML, &f); err != nil {
			catalogErr = fmt.Errorf("parse model catalog: %w", err)
			return
		}
		catalog = make(map[string]CatalogEntry, len(f.Models))
		for _, m := range f.Models {
			if !m.Provider.Valid() {
				catalogErr = fmt.Errorf("model catalog: %q has unknown provider %q", m.Model, m.Provider)
				return
			}
			catalog[strings.ToLower(m.Model)] = m
		}
		catalogOrdered = f.Models
	})
	return catalog, catalogErr
}

// Catalog returns the known models in file order. The embedded file is
// validated once.
func Catalog() ([]CatalogEntry, error) {
	if _, err := loadCatalog(); err != nil {
		return nil, err
	}
	return append([]CatalogEntry(nil), catalogOrdered...), nil
}

// ResolveProvider maps a model name to the provider that serves it. Catalog
// entries win; unknown models fall back to the name prefix, and anything that
// is not an OpenAI family goes to Anthropic.
func ResolveProvider(model string) Provider {
	m := strings.ToLower(strings.TrimSpace(model))
	if c, err := loadCatalog(); err == nil {
		if e, ok := c[m]; ok {
			return e.Provider
		}
	}
	for _, p := range openAIPrefixes {
		if strings.HasPrefix(m, p) {
			return ProviderOpenAI
		}
	}
	return ProviderAnthropic
}
