// Package config provides application configuration with multi-source
// priority and the immutable per-tenant pipeline policy.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables prefixed CONCIERGE_ (runtime override)
//  2. Config file (~/.concierge/config.yaml)
//  3. Defaults
//
// The application-level Config covers process concerns: HTTP address,
// database URL, model names, notifier webhook. The per-tenant Policy
// (policy.go) covers everything the answer pipeline needs, so the
// pipeline stays pure and unit-testable without a live tenant store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel errors for configuration validation. Wrapped with context via
// fmt.Errorf("%w: ...") so callers can branch with errors.Is.
var (
	// ErrMissingDatabaseURL indicates no PostgreSQL connection URL is set.
	ErrMissingDatabaseURL = errors.New("missing database URL")

	// ErrInvalidAddr indicates an unusable HTTP listen address.
	ErrInvalidAddr = errors.New("invalid listen address")

	// ErrInvalidModelName indicates an empty completion model name.
	ErrInvalidModelName = errors.New("invalid model name")
)

// Default values for the application config.
const (
	DefaultAddr          = "127.0.0.1:3500"
	DefaultModelName     = "googleai/gemini-2.5-flash"
	DefaultEmbedderModel = "googleai/text-embedding-004"
)

// Config is the application-level configuration.
type Config struct {
	// Addr is the HTTP listen address for the serve command.
	Addr string

	// DatabaseURL is the postgres:// connection URL for the knowledge
	// repository and the semantic index.
	DatabaseURL string

	// ModelName is the provider-qualified completion model.
	ModelName string

	// EmbedderModel is the provider-qualified embedding model backing
	// semantic retrieval.
	EmbedderModel string

	// EscalationWebhook receives fire-and-forget escalation notices.
	// Empty disables notification.
	EscalationWebhook string

	// LogJSON switches log output to JSON.
	LogJSON bool

	// Policy is the per-tenant pipeline policy for this deployment,
	// seeded from defaults and overridable under the policy.* keys.
	Policy Policy
}

// Load reads configuration from file and environment.
// A missing config file is not an error; defaults and env cover it.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".concierge"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("CONCIERGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		Addr:              v.GetString("addr"),
		DatabaseURL:       v.GetString("database_url"),
		ModelName:         v.GetString("model_name"),
		EmbedderModel:     v.GetString("embedder_model"),
		EscalationWebhook: v.GetString("escalation_webhook"),
		LogJSON:           v.GetBool("log_json"),
		Policy:            loadPolicy(v),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadPolicy overlays viper policy.* keys on the policy defaults.
func loadPolicy(v *viper.Viper) Policy {
	p := DefaultPolicy(v.GetString("tenant_name"))
	p.FAQLimit = v.GetInt("policy.faq_limit")
	p.MenuLimit = v.GetInt("policy.menu_limit")
	p.StockLimit = v.GetInt("policy.stock_limit")
	p.KnowledgeMaxRunes = v.GetInt("policy.knowledge_max_runes")
	p.OwnerDirectives = v.GetStringSlice("policy.owner_directives")
	p.Retrieval.TopK = v.GetInt("policy.retrieval.top_k")
	p.Retrieval.MinScore = v.GetFloat64("policy.retrieval.min_score")
	p.Retrieval.VectorWeight = v.GetFloat64("policy.retrieval.vector_weight")
	p.Retrieval.LexicalWeight = v.GetFloat64("policy.retrieval.lexical_weight")
	return p
}

// Validate checks the config for unusable values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr is empty", ErrInvalidAddr)
	}
	if strings.TrimSpace(c.ModelName) == "" {
		return ErrInvalidModelName
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("log_json", false)
	v.SetDefault("tenant_name", "Concierge")

	// Per-tenant policy defaults, overridable per deployment.
	v.SetDefault("policy.faq_limit", defaultFAQLimit)
	v.SetDefault("policy.menu_limit", defaultMenuLimit)
	v.SetDefault("policy.stock_limit", defaultStockLimit)
	v.SetDefault("policy.knowledge_max_runes", defaultKnowledgeMaxRunes)
	v.SetDefault("policy.retrieval.top_k", defaultTopK)
	v.SetDefault("policy.retrieval.min_score", defaultMinScore)
	v.SetDefault("policy.retrieval.vector_weight", defaultVectorWeight)
	v.SetDefault("policy.retrieval.lexical_weight", defaultLexicalWeight)
}
