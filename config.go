package mbtichat

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ──────────────────────────────────────────────
// Configuration — one explicit value, injected at construction
// ──────────────────────────────────────────────
//
// Credentials are resolved here, once, at startup. No component reads
// environment state at call sites.

// Environment variables consulted when the YAML leaves a field empty.
const (
	envOpenAIKey   = "OPENAI_API_KEY"
	envLlamaKey    = "LLAMA_CLOUD_API_KEY"
	envLlamaURL    = "LLAMA_BASE_URL"
	envWeaviateURL = "WEAVIATE_URL"
	envWeaviateKey = "WEAVIATE_API_KEY"
	envRedisAddr   = "REDIS_ADDR"
)

// BackendConfig holds one completion backend's credentials and model.
type BackendConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// WeaviateConfig points at the knowledge store.
type WeaviateConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Class  string `yaml:"class"` // default MBTIPersonality
}

// RedisConfig points at the conversation history store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Config is the single explicit configuration value for the whole system.
type Config struct {
	OpenAI   BackendConfig  `yaml:"openai"`
	Llama    BackendConfig  `yaml:"llama"`
	Weaviate WeaviateConfig `yaml:"weaviate"`
	Redis    RedisConfig    `yaml:"redis"`

	// Allocation overrides the default per-type provider try-order.
	// Keys are type codes, values ordered provider names.
	Allocation map[string][]string `yaml:"allocation"`

	// TopK is the retrieval depth, clamped to [3, 7]. Zero means 3.
	TopK int `yaml:"top_k"`
}

// LoadConfig reads YAML from path, applies environment fallbacks, and
// validates. An empty path yields an environment-only config.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFromEnv builds a config from environment variables only.
func ConfigFromEnv() Config {
	var cfg Config
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv(envOpenAIKey)
	}
	if c.Llama.APIKey == "" {
		c.Llama.APIKey = os.Getenv(envLlamaKey)
	}
	if c.Llama.BaseURL == "" {
		c.Llama.BaseURL = os.Getenv(envLlamaURL)
	}
	if c.Weaviate.URL == "" {
		c.Weaviate.URL = os.Getenv(envWeaviateURL)
	}
	if c.Weaviate.APIKey == "" {
		c.Weaviate.APIKey = os.Getenv(envWeaviateKey)
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = os.Getenv(envRedisAddr)
	}
	if c.Weaviate.Class == "" {
		c.Weaviate.Class = "MBTIPersonality"
	}
}

// Validate rejects malformed allocations. Missing credentials are not an
// error: an unconfigured backend simply degrades to the next provider in
// the chain.
func (c *Config) Validate() error {
	valid := map[string]bool{
		ProviderRetrieval: true,
		ProviderLlama:     true,
		ProviderOpenAI:    true,
	}
	for code, order := range c.Allocation {
		for _, name := range order {
			if !valid[name] {
				return fmt.Errorf("allocation for %s: unknown provider %q", code, name)
			}
		}
	}
	if c.TopK < 0 {
		return fmt.Errorf("top_k must not be negative, got %d", c.TopK)
	}
	return nil
}

// AllocationTable converts the YAML allocation override into the typed
// table, or nil when no override is configured.
func (c *Config) AllocationTable() ProviderAllocation {
	if len(c.Allocation) == 0 {
		return nil
	}
	table := make(ProviderAllocation, len(c.Allocation))
	for code, order := range c.Allocation {
		table[PersonalityType(code)] = append([]string(nil), order...)
	}
	return table
}
