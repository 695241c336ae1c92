package llmprovider

import (
	"sort"

	"capture-recall/pkg/deepseek"
	"capture-recall/pkg/gemini"
)

// ProviderSpec describes one configured provider.
type ProviderSpec struct {
	Name     string
	Enabled  bool
	Priority int // lower runs first
	APIKey   string
	BaseURL  string
	Model    string
}

// BuildProviders constructs enabled providers sorted by priority. Unknown
// provider names are skipped.
func BuildProviders(specs []ProviderSpec) []Provider {
	enabled := make([]ProviderSpec, 0, len(specs))
	for _, spec := range specs {
		if spec.Enabled && spec.APIKey != "" {
			enabled = append(enabled, spec)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})

	providers := make([]Provider, 0, len(enabled))
	for _, spec := range enabled {
		switch spec.Name {
		case "deepseek":
			client := deepseek.NewClient(spec.APIKey).WithModel(spec.Model).WithBaseURL(spec.BaseURL)
			providers = append(providers, NewDeepSeekAdapter(client))
		case "gemini":
			client := gemini.NewClient(spec.APIKey).WithModel(spec.Model).WithBaseURL(spec.BaseURL)
			providers = append(providers, NewGeminiAdapter(client))
		}
	}
	return providers
}
