// Package config loads the process-wide environment configuration.
// A Config is built once per process and handed around explicitly
// rather than re-read mid-request; the source is environment
// variables rather than layered JSON/YAML files.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config is the resolved environment configuration for one process.
// Load reads it once at entry; callers pass it down explicitly rather
// than re-reading the environment mid-request.
type Config struct {
	VaultHardCapBytes int64

	QdrantURL        string
	QdrantCollection string

	// Embedding* select the provider buildVecLane's Embedder is built
	// from: "auto" (default) tries ollama, then falls back to openai
	// if OpenAIAPIKey is set.
	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingBaseURL  string
	OpenAIAPIKey      string

	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string

	AnthropicMaxTokens   int
	AnthropicTemperature float64
	AnthropicTopP        float64
	AnthropicTimeout     int // seconds

	AnthropicMaxRetries int
	AnthropicRetryBase  int // milliseconds
	AnthropicRetryMax   int // milliseconds

	AnthropicFallbackModel string
	VertexFallbackURL      string
	VertexFallback         bool

	CriticEnabled     bool
	CriticModel       string
	CriticTimeout     int
	CriticMaxTokens   int
	CriticContextTurn int

	// ToolAutonomy maps a tool name (lowercased) to its autonomy
	// override, read from TOOL_AUTONOMY_<TOOLNAME>.
	ToolAutonomy map[string]Autonomy

	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json
	LogFile   string // additional sink; stdout is always written
}

// Autonomy is a per-tool autonomy override.
type Autonomy string

const (
	AutonomyAutonomous  Autonomy = "autonomous"
	AutonomySuggestOnly Autonomy = "suggest_only"
	AutonomyBackground  Autonomy = "background"
	AutonomyConfirm     Autonomy = "confirm"
)

const DefaultVaultHardCapBytes int64 = 500_000_000

// Load reads the enumerated option set from the process
// environment. Unset options take documented defaults.
func Load() *Config {
	return LoadFrom(os.Environ())
}

// LoadFrom parses a "KEY=VALUE" environment slice, the same shape
// os.Environ() returns. Exposed so tests can supply a fixed
// environment instead of mutating the real process environment.
func LoadFrom(environ []string) *Config {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			env[kv[:i]] = kv[i+1:]
		}
	}
	get := func(key string) string { return env[key] }

	cfg := &Config{
		VaultHardCapBytes: getInt64(get, "VAULT_HARD_CAP_BYTES", DefaultVaultHardCapBytes),

		QdrantURL:        get("QDRANT_URL"),
		QdrantCollection: get("QDRANT_COLLECTION"),

		EmbeddingProvider: orDefault(get("EMBEDDING_PROVIDER"), "auto"),
		EmbeddingModel:    get("EMBEDDING_MODEL"),
		EmbeddingBaseURL:  get("EMBEDDING_BASE_URL"),
		OpenAIAPIKey:      get("OPENAI_API_KEY"),

		AnthropicAPIKey:  get("ANTHROPIC_API_KEY"),
		AnthropicModel:   get("ANTHROPIC_MODEL"),
		AnthropicBaseURL: get("ANTHROPIC_BASE_URL"),

		AnthropicMaxTokens:   getInt(get, "ANTHROPIC_MAX_TOKENS", 4096),
		AnthropicTemperature: getFloat(get, "ANTHROPIC_TEMPERATURE", 1.0),
		AnthropicTopP:        getFloat(get, "ANTHROPIC_TOP_P", 1.0),
		AnthropicTimeout:     getInt(get, "ANTHROPIC_TIMEOUT", 60),

		AnthropicMaxRetries: getInt(get, "ANTHROPIC_MAX_RETRIES", 3),
		AnthropicRetryBase:  getInt(get, "ANTHROPIC_RETRY_BASE", 500),
		AnthropicRetryMax:   getInt(get, "ANTHROPIC_RETRY_MAX", 8000),

		AnthropicFallbackModel: get("ANTHROPIC_FALLBACK_MODEL"),
		VertexFallbackURL:      get("VERTEX_FALLBACK_URL"),
		VertexFallback:         getBool(get, "VERTEX_FALLBACK", false),

		CriticEnabled:     getBool(get, "CRITIC_ENABLED", false),
		CriticModel:       get("CRITIC_MODEL"),
		CriticTimeout:     getInt(get, "CRITIC_TIMEOUT", 30),
		CriticMaxTokens:   getInt(get, "CRITIC_MAX_TOKENS", 1024),
		CriticContextTurn: getInt(get, "CRITIC_CONTEXT_TURNS", 4),

		ToolAutonomy: map[string]Autonomy{},

		LogLevel:  orDefault(get("AETHER_LOG_LEVEL"), "info"),
		LogFormat: orDefault(get("AETHER_LOG_FORMAT"), "text"),
		LogFile:   get("AETHER_LOG_FILE"),
	}

	const prefix = "TOOL_AUTONOMY_"
	for key, val := range env {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		tool := strings.ToLower(strings.TrimPrefix(key, prefix))
		switch Autonomy(val) {
		case AutonomyAutonomous, AutonomySuggestOnly, AutonomyBackground, AutonomyConfirm:
			cfg.ToolAutonomy[tool] = Autonomy(val)
		}
	}

	return cfg
}

// Autonomy looks up a tool's autonomy override, defaulting to
// AutonomyConfirm when unset (the conservative default).
func (c *Config) Autonomy(tool string) Autonomy {
	if a, ok := c.ToolAutonomy[strings.ToLower(tool)]; ok {
		return a
	}
	return AutonomyConfirm
}

// ExternalVectorConfigured reports whether an external vector
// service is configured to run against the raw query.
func (c *Config) ExternalVectorConfigured() bool {
	return c.QdrantURL != "" && c.QdrantCollection != ""
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func getInt64(get func(string) string, key string, def int64) int64 {
	v := get(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getInt(get func(string) string, key string, def int) int {
	v := get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getFloat(get func(string) string, key string, def float64) float64 {
	v := get(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getBool(get func(string) string, key string, def bool) bool {
	v := get(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
