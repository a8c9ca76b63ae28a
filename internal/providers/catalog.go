package providers

// Info describes one supported provider for client configuration UIs.
type Info struct {
	ID             string `json:"id"`
	Label          string `json:"label"`
	RequiresAPIKey bool   `json:"requires_api_key"`
	DefaultBaseURL string `json:"default_base_url,omitempty"`
	DefaultModel   string `json:"default_model"`
}

// Catalog lists every supported provider with its defaults.
func Catalog() []Info {
	return []Info{
		{ID: ProviderOpenAI, Label: "OpenAI", RequiresAPIKey: true, DefaultModel: "gpt-4o-mini"},
		{ID: ProviderAnthropic, Label: "Anthropic", RequiresAPIKey: true, DefaultModel: "claude-3-5-sonnet-latest"},
		{ID: ProviderGemini, Label: "Google Gemini", RequiresAPIKey: true, DefaultModel: "gemini-1.5-flash"},
		{ID: ProviderOllama, Label: "Ollama", DefaultBaseURL: defaultOllamaURL, DefaultModel: "llama3.1"},
		{ID: ProviderLMStudio, Label: "LM Studio", DefaultBaseURL: defaultLMStudioURL, DefaultModel: "local-model"},
		{ID: ProviderGeneric, Label: "OpenAI-compatible", DefaultModel: ""},
	}
}
