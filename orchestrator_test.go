package mbtichat

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
)

func newTestOrchestrator() *Orchestrator {
	// Seeded formatter so emoji decoration is reproducible.
	return NewOrchestrator(NewResponseFormatter(rand.New(rand.NewSource(1))), NewTemplateSimulator())
}

func TestDefaultAllocation(t *testing.T) {
	alloc := DefaultAllocation([]string{ProviderOpenAI, ProviderLlama, ProviderRetrieval})

	wantAnalytical := []string{ProviderRetrieval, ProviderLlama, ProviderOpenAI}
	wantDirect := []string{ProviderOpenAI, ProviderRetrieval}

	check := func(typ PersonalityType, want []string) {
		got := alloc[typ]
		if len(got) != len(want) {
			t.Fatalf("%s: order %v, want %v", typ, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: order %v, want %v", typ, got, want)
			}
		}
	}
	check("INTJ", wantAnalytical)
	check("ISTP", wantAnalytical)
	check("ENFP", wantDirect)
	check("ESFJ", wantDirect)

	// Unconfigured providers never appear in the order.
	partial := DefaultAllocation([]string{ProviderOpenAI})
	if len(partial["INTJ"]) != 1 || partial["INTJ"][0] != ProviderOpenAI {
		t.Fatalf("partial allocation = %v", partial["INTJ"])
	}
}

func TestOrchestratorFallbackOrder(t *testing.T) {
	failing := &fakeCompleter{
		name:      ProviderOpenAI,
		err:       newProviderError(ProviderOpenAI, ErrAuthMissing, errors.New("no key")),
		available: true,
	}
	working := &fakeCompleter{name: ProviderRetrieval, reply: "from retrieval", available: true}

	o := newTestOrchestrator()
	o.RegisterProvider(failing)
	o.RegisterProvider(working)

	// ISFP is non-analytical: openai first, then retrieval.
	result := o.RespondDetailed(context.Background(), "ISFP", "tell me about art")
	if result.Text != "from retrieval" {
		t.Fatalf("text = %q", result.Text)
	}
	if result.Provider != ProviderRetrieval || result.Simulated {
		t.Fatalf("winner = %q simulated=%v", result.Provider, result.Simulated)
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Fatalf("calls: openai=%d retrieval=%d, want 1 each", failing.calls, working.calls)
	}
	if len(result.Attempts) != 1 || result.Attempts[0].Provider != ProviderOpenAI || result.Attempts[0].Kind != ErrAuthMissing {
		t.Fatalf("attempts = %+v", result.Attempts)
	}
}

func TestOrchestratorSkipsDeadProviders(t *testing.T) {
	dead := &fakeCompleter{name: ProviderOpenAI, reply: "never", available: false}
	o := newTestOrchestrator()
	o.RegisterProvider(dead)

	result := o.RespondDetailed(context.Background(), "ISFP", "hello friend")
	if !result.Simulated {
		t.Fatal("expected simulation when the only provider is dead")
	}
	if dead.calls != 0 {
		t.Fatalf("dead provider was invoked %d times", dead.calls)
	}
	if len(result.Attempts) != 1 || !result.Attempts[0].Skipped || result.Attempts[0].Kind != ErrUnavailable {
		t.Fatalf("attempts = %+v", result.Attempts)
	}
}

func TestOrchestratorNeverFails(t *testing.T) {
	failing := &fakeCompleter{
		name:      ProviderOpenAI,
		err:       newProviderError(ProviderOpenAI, ErrUnknown, errors.New("boom")),
		available: true,
	}
	o := newTestOrchestrator()
	o.RegisterProvider(failing)

	for _, typ := range AllTypes() {
		text := o.Respond(context.Background(), typ, "what matters most to you?")
		if text == "" {
			t.Fatalf("%s: empty response", typ)
		}
	}
}

func TestOrchestratorNoProvidersSimulates(t *testing.T) {
	o := newTestOrchestrator()
	result := o.RespondDetailed(context.Background(), "INTJ", "swimming")
	if !result.Simulated || result.Provider != ProviderSimulation {
		t.Fatalf("result = %+v", result)
	}
	if !strings.Contains(result.Text, "strategic optimization") {
		t.Fatalf("simulated text = %q", result.Text)
	}
}

func TestOrchestratorFormatsProviderOutput(t *testing.T) {
	o := newTestOrchestrator()
	// ENTP reply with a self-identifying prefix: stripped, then the emphatic
	// "!" applied. Same pipeline the simulated path goes through.
	p := &fakeCompleter{name: ProviderOpenAI, reply: "ENTP: Chaos is a ladder", available: true}
	o.RegisterProvider(p)

	text := o.Respond(context.Background(), "ENTP", "opinions on chaos")
	if text != "Chaos is a ladder!" {
		t.Fatalf("formatted text = %q", text)
	}
}

func TestOrchestratorCustomAllocation(t *testing.T) {
	a := &fakeCompleter{name: ProviderOpenAI, reply: "from openai", available: true}
	b := &fakeCompleter{name: ProviderLlama, reply: "from llama", available: true}

	o := newTestOrchestrator()
	o.SetAllocation(ProviderAllocation{"INTJ": {ProviderLlama, ProviderOpenAI}})
	o.RegisterProvider(a)
	o.RegisterProvider(b)

	result := o.RespondDetailed(context.Background(), "INTJ", "plans?")
	if result.Provider != ProviderLlama {
		t.Fatalf("winner = %q, custom allocation ignored", result.Provider)
	}
	if a.calls != 0 {
		t.Fatal("openai should not have been tried")
	}
}

func TestOrchestratorUnknownTypeUsesDirectOrder(t *testing.T) {
	p := &fakeCompleter{name: ProviderOpenAI, reply: "generic reply", available: true}
	o := newTestOrchestrator()
	o.RegisterProvider(p)

	result := o.RespondDetailed(context.Background(), "ABCD", "hello?")
	if result.Provider != ProviderOpenAI {
		t.Fatalf("unknown type should still try registered providers, got %+v", result)
	}
}

func TestServiceStatus(t *testing.T) {
	alive := &fakeCompleter{name: ProviderOpenAI, available: true}
	dead := &fakeCompleter{name: ProviderLlama, available: false}

	o := newTestOrchestrator()
	o.RegisterProvider(alive)
	o.RegisterProvider(dead)

	status := o.ServiceStatus()
	if !status[ProviderOpenAI] || status[ProviderLlama] {
		t.Fatalf("status = %v", status)
	}
	if !status[ProviderSimulation] {
		t.Fatal("simulation must always report available")
	}
}

func TestPersonaSystemPrompt(t *testing.T) {
	prompt := personaSystemPrompt("ENFP")
	if !strings.Contains(prompt, "ENFP personality type from the Myers-Briggs Type Indicator") {
		t.Fatalf("prompt = %q", prompt)
	}
	if !strings.Contains(prompt, Profile("ENFP").TraitSummary) {
		t.Fatal("prompt should embed the trait summary")
	}
	if !strings.Contains(personaSystemPrompt("ZZZZ"), "unique and interesting") {
		t.Fatal("unknown types should get the generic trait summary")
	}
}
