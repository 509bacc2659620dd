package embedding

import (
	"fmt"
	"net/http"
	"time"
)

// NewFromProvider constructs an Embedder for indexing frame/section
// text. provider, model, and baseURL normally come straight from
// config.Config (EmbeddingProvider/EmbeddingModel/EmbeddingBaseURL);
// openAIKey comes from config.Config.OpenAIAPIKey rather than being
// read from the environment here, so the caller's resolved
// configuration stays the single source of truth.
//
// "auto" (default) tries ollama first, falls back to openai if a key
// is supplied. "ollama": model and baseURL are optional (defaults
// apply). "openai": openAIKey is required.
func NewFromProvider(provider, model, baseURL, openAIKey string) (Embedder, error) {
	switch provider {
	case "auto", "":
		if ollamaReachable(baseURL) {
			return NewOllama(model, baseURL), nil
		}
		if openAIKey != "" {
			return NewOpenAI(openAIKey), nil
		}
		return nil, fmt.Errorf("no embedder available — run ollama or set an OpenAI API key")
	case "ollama":
		return NewOllama(model, baseURL), nil
	case "openai":
		if openAIKey == "" {
			return nil, fmt.Errorf("openai embedder: no API key configured")
		}
		return NewOpenAI(openAIKey), nil
	default:
		return nil, fmt.Errorf("unknown embedder provider %q (available: auto, ollama, openai)", provider)
	}
}

func ollamaReachable(baseURL string) bool {
	if baseURL == "" {
		baseURL = ollamaDefaultBaseURL
	}
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/tags")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
