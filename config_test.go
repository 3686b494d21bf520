package mbtichat

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeConfigFile(t, `
openai:
  api_key: sk-test
  model: gpt-4o-mini
llama:
  api_key: llk-test
  base_url: https://llama.example.com/v1
weaviate:
  url: https://weaviate.example.com
redis:
  addr: localhost:6379
  db: 2
top_k: 5
allocation:
  INTJ: [llama, openai]
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-test" || cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("openai = %+v", cfg.OpenAI)
	}
	if cfg.Llama.BaseURL != "https://llama.example.com/v1" {
		t.Fatalf("llama = %+v", cfg.Llama)
	}
	if cfg.Weaviate.Class != "MBTIPersonality" {
		t.Fatalf("weaviate class default not applied: %+v", cfg.Weaviate)
	}
	if cfg.Redis.DB != 2 {
		t.Fatalf("redis = %+v", cfg.Redis)
	}
	if cfg.TopK != 5 {
		t.Fatalf("top_k = %d", cfg.TopK)
	}

	table := cfg.AllocationTable()
	if len(table) != 1 || table["INTJ"][0] != ProviderLlama {
		t.Fatalf("allocation table = %v", table)
	}
}

func TestLoadConfigEnvFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("LLAMA_CLOUD_API_KEY", "llk-from-env")
	t.Setenv("LLAMA_BASE_URL", "https://env.example.com")
	t.Setenv("WEAVIATE_URL", "")
	t.Setenv("REDIS_ADDR", "env-redis:6379")

	// YAML value wins over the environment.
	path := writeConfigFile(t, "openai:\n  api_key: sk-from-yaml\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-from-yaml" {
		t.Fatalf("yaml should win, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Llama.APIKey != "llk-from-env" || cfg.Llama.BaseURL != "https://env.example.com" {
		t.Fatalf("env fallback missing: %+v", cfg.Llama)
	}
	if cfg.Redis.Addr != "env-redis:6379" {
		t.Fatalf("redis addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env-only")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.OpenAI.APIKey != "sk-env-only" {
		t.Fatalf("env-only config = %+v", cfg.OpenAI)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("/does/not/exist.yaml"); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestConfigValidate(t *testing.T) {
	bad := Config{Allocation: map[string][]string{"INTJ": {"carrier-pigeon"}}}
	if err := bad.Validate(); err == nil {
		t.Fatal("unknown provider name must be rejected")
	}

	negative := Config{TopK: -1}
	if err := negative.Validate(); err == nil {
		t.Fatal("negative top_k must be rejected")
	}

	ok := Config{
		TopK:       7,
		Allocation: map[string][]string{"ENFP": {ProviderOpenAI, ProviderRetrieval}},
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestAllocationTableEmpty(t *testing.T) {
	var cfg Config
	if cfg.AllocationTable() != nil {
		t.Fatal("no allocation override should yield a nil table")
	}
}
