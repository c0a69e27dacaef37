package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Placeholder values shipped in the example secrets file. Keys still set to
// these are treated as unconfigured.
const (
	PlaceholderOpenAIKey = "your_openai_api_key_here"
	PlaceholderTavilyKey = "your_tavily_api_key_here"
)

// Config holds all configuration for the assistant.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Arxiv     ArxivConfig     `mapstructure:"arxiv"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig configures the chat-completion provider.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SearchConfig configures the web search provider (Tavily).
type SearchConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	MaxResults   int           `mapstructure:"max_results"`
	SearchDepth  string        `mapstructure:"search_depth"`
	SnippetChars int           `mapstructure:"snippet_chars"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// ArxivConfig configures the scientific-literature retriever.
type ArxivConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	TopK           int           `mapstructure:"top_k"`
	FullDocuments  bool          `mapstructure:"full_documents"`
	MaxCharsPerDoc int           `mapstructure:"max_chars_per_doc"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// AgentConfig controls the two-tier answer path.
type AgentConfig struct {
	AutonomousEnabled bool `mapstructure:"autonomous_enabled"`
	MaxSteps          int  `mapstructure:"max_steps"`
}

// TelemetryConfig contains monitoring settings.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// CredentialError reports a missing or placeholder secret. It is distinct
// from generic setup failures so callers can surface which key to fix.
type CredentialError struct {
	Key string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("missing or placeholder API key: %s", e.Key)
}

// ValidateCredentials checks both required secrets and returns a
// CredentialError naming the first one that is not usable.
func (c *Config) ValidateCredentials() error {
	if key := strings.TrimSpace(c.LLM.APIKey); key == "" || key == PlaceholderOpenAIKey {
		return &CredentialError{Key: "OPENAI_API_KEY"}
	}
	if key := strings.TrimSpace(c.Search.APIKey); key == "" || key == PlaceholderTavilyKey {
		return &CredentialError{Key: "TAVILY_API_KEY"}
	}
	return nil
}

// CredentialsStatus reports whether both API keys are configured, with a
// human-readable message suitable for display.
func (c *Config) CredentialsStatus() (bool, string) {
	if err := c.ValidateCredentials(); err != nil {
		var credErr *CredentialError
		if errors.As(err, &credErr) {
			switch credErr.Key {
			case "OPENAI_API_KEY":
				return false, "OpenAI API key not configured"
			case "TAVILY_API_KEY":
				return false, "Tavily API key not configured"
			}
		}
		return false, err.Error()
	}
	return true, "API keys configured"
}

// LoadConfig loads config from file, falling back to defaults plus
// environment variables when no file is present.
func LoadConfig(path string) *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.default_timeout", 90*time.Second)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 0)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("search.base_url", "https://api.tavily.com")
	v.SetDefault("search.max_results", 3)
	v.SetDefault("search.search_depth", "advanced")
	v.SetDefault("search.snippet_chars", 500)
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("arxiv.base_url", "http://export.arxiv.org/api/query")
	v.SetDefault("arxiv.top_k", 3)
	v.SetDefault("arxiv.full_documents", true)
	v.SetDefault("arxiv.max_chars_per_doc", 20000)
	v.SetDefault("arxiv.timeout", 45*time.Second)
	v.SetDefault("agent.autonomous_enabled", true)
	v.SetDefault("agent.max_steps", 6)
	v.SetDefault("telemetry.enabled", true)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("HEALTHBUDDY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The well-known secret names win over file values so deployments can
	// keep keys out of config files entirely.
	_ = v.BindEnv("llm.api_key", "OPENAI_API_KEY", "HEALTHBUDDY_LLM_API_KEY")
	_ = v.BindEnv("search.api_key", "TAVILY_API_KEY", "HEALTHBUDDY_SEARCH_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && path != "" {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return &config
}
