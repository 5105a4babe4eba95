package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestResolveProvider(t *testing.T) {
	cases := map[string]Provider{
		"gpt-4":                      ProviderOpenAI,
		"GPT-4o":                     ProviderOpenAI,
		"gpt-5-preview":              ProviderOpenAI,
		"o3-mini":                    ProviderOpenAI,
		"o1-preview":                 ProviderOpenAI,
		"O4-mini":                    ProviderOpenAI,
		"claude-3-5-sonnet-20241022": ProviderAnthropic,
		"claude-unknown":             ProviderAnthropic,
		"":                           ProviderAnthropic,
	}
	for model, want := range cases {
		assert.Equal(t, want, ResolveProvider(model), model)
	}
}

func TestCatalogLoads(t *testing.T) {
	entries, err := Catalog()
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.True(t, e.Provider.Valid(), e.Model)
	}
}

func TestCatalogKeepsFileOrder(t *testing.T) {
	var f catalogFile
	require.NoError(t, yaml.Unmarshal(catalogYAML, &f))

	for i := 0; i < 3; i++ {
		entries, err := Catalog()
		require.NoError(t, err)
		require.Len(t, entries, len(f.Models))
		for j, e := range entries {
			assert.Equal(t, f.Models[j].Model, e.Model)
		}
	}

	entries, _ := Catalog()
	entries[0].Model = "mutated"
	again, _ := Catalog()
	assert.Equal(t, f.Models[0].Model, again[0].Model)
}
