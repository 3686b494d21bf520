package main

import (
	"testing"

	mbtichat "github.com/personaverse/mbtichat-go"
)

func TestBuildSystemLlamaOnlyServesRetrieval(t *testing.T) {
	cfg := mbtichat.Config{
		Llama: mbtichat.BackendConfig{
			APIKey:  "llk-test",
			BaseURL: "https://llama.example.com/v1",
		},
	}

	orch, _ := buildSystem(cfg, false)

	status := orch.ServiceStatus()
	if !status[mbtichat.ProviderLlama] {
		t.Fatalf("llama not registered: %v", status)
	}
	if _, ok := status[mbtichat.ProviderRetrieval]; !ok {
		t.Fatalf("retrieval not registered with a llama-only config: %v", status)
	}
	if !status[mbtichat.ProviderRetrieval] {
		t.Fatalf("retrieval should be available over the seeded store and llama: %v", status)
	}
	if _, ok := status[mbtichat.ProviderOpenAI]; ok {
		t.Fatalf("openai registered without credentials: %v", status)
	}
}

func TestBuildSystemNoBackends(t *testing.T) {
	orch, composer := buildSystem(mbtichat.Config{}, false)
	if composer == nil {
		t.Fatal("composer must always be built")
	}

	status := orch.ServiceStatus()
	if _, ok := status[mbtichat.ProviderRetrieval]; ok {
		t.Fatalf("retrieval needs a completion backend: %v", status)
	}
	if !status[mbtichat.ProviderSimulation] {
		t.Fatalf("simulation must always be on: %v", status)
	}
}
