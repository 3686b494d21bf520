package mbtichat

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ──────────────────────────────────────────────
// Response Orchestrator — the fallback decision core
// ──────────────────────────────────────────────
//
// Per request: TRY_NEXT_PROVIDER → SUCCESS | ALL_FAILED → FALLBACK_SIMULATION.
// The key invariant is that Respond always returns a usable string, because
// the template simulator is an unconditional final fallback.

// ProviderAllocation maps a type to its ordered provider try-order.
type ProviderAllocation map[PersonalityType][]string

// DefaultAllocation builds the default try-order over the configured
// provider set: analytical types prefer the retrieval-augmented and
// alternate providers first, everyone else prefers direct completion.
// Any other table is equally valid; the orchestrator only consumes the
// resolved order.
func DefaultAllocation(configured []string) ProviderAllocation {
	has := make(map[string]bool, len(configured))
	for _, name := range configured {
		has[name] = true
	}

	pick := func(order ...string) []string {
		var result []string
		for _, name := range order {
			if has[name] {
				result = append(result, name)
			}
		}
		return result
	}

	analytical := pick(ProviderRetrieval, ProviderLlama, ProviderOpenAI)
	direct := pick(ProviderOpenAI, ProviderRetrieval)

	allocation := make(ProviderAllocation, len(allTypes))
	for _, t := range allTypes {
		if IsAnalytical(t) {
			allocation[t] = analytical
		} else {
			allocation[t] = direct
		}
	}
	return allocation
}

// Attempt records one provider try within a request.
type Attempt struct {
	Provider string
	Skipped  bool // skipped via the availability cache, no network attempt
	Kind     ErrorKind
	Err      string
}

// Result is the detailed outcome of one orchestrated response.
type Result struct {
	Text      string
	Provider  string // winning provider, ProviderSimulation when all failed
	Simulated bool
	Attempts  []Attempt
}

// Orchestrator selects a provider order per type, tries each in turn with
// error isolation, and falls back to local simulation.
type Orchestrator struct {
	providers   map[string]Provider
	order       []string // registration order, for status reporting
	allocation  ProviderAllocation
	customAlloc bool
	formatter   *ResponseFormatter
	simulator   *TemplateSimulator
	tracer      *Tracer
	timeout     time.Duration
}

// NewOrchestrator creates an orchestrator with no providers registered;
// until RegisterProvider is called every response is simulated.
func NewOrchestrator(formatter *ResponseFormatter, simulator *TemplateSimulator) *Orchestrator {
	if formatter == nil {
		formatter = NewResponseFormatter(nil)
	}
	if simulator == nil {
		simulator = NewTemplateSimulator()
	}
	policy := defaultRetryPolicy()
	return &Orchestrator{
		providers: make(map[string]Provider),
		formatter: formatter,
		simulator: simulator,
		tracer:    NewTracer(nil, false),
		// Worst-case retry waits plus headroom for the attempts themselves.
		timeout: policy.maxElapsed() + 90*time.Second,
	}
}

// RegisterProvider adds a provider and refreshes the default allocation.
// A custom allocation set via SetAllocation is preserved.
func (o *Orchestrator) RegisterProvider(p Provider) {
	name := p.Name()
	if _, exists := o.providers[name]; !exists {
		o.order = append(o.order, name)
	}
	o.providers[name] = p
	if !o.customAlloc {
		o.allocation = DefaultAllocation(o.order)
	}
}

// SetAllocation replaces the per-type try-order table. Once set, the table
// is no longer recomputed when providers are registered.
func (o *Orchestrator) SetAllocation(allocation ProviderAllocation) {
	o.allocation = allocation
	o.customAlloc = true
}

// SetTracer installs a tracer for attempt-level observability.
func (o *Orchestrator) SetTracer(t *Tracer) {
	if t != nil {
		o.tracer = t
	}
}

// SetTimeout caps the wall-clock time of a single provider attempt cycle.
// Zero disables the cap.
func (o *Orchestrator) SetTimeout(d time.Duration) {
	o.timeout = d
}

// Respond generates a personality-styled reply. It never fails: when every
// provider is skipped or errors, the simulator output is returned, formatted
// identically to a real response.
func (o *Orchestrator) Respond(ctx context.Context, t PersonalityType, query string) string {
	return o.RespondDetailed(ctx, t, query).Text
}

// RespondDetailed is Respond plus the observability side channel: the
// winning provider and the per-provider failure record.
func (o *Orchestrator) RespondDetailed(ctx context.Context, t PersonalityType, query string) Result {
	span := o.tracer.StartSpan(fmt.Sprintf("respond:%s", t), SpanKindOrchestrator, nil, nil)

	result := Result{}
	systemPrompt := personaSystemPrompt(t)

	for _, name := range o.resolveOrder(t) {
		p, ok := o.providers[name]
		if !ok {
			continue
		}
		if !p.Available() {
			result.Attempts = append(result.Attempts, Attempt{Provider: name, Skipped: true, Kind: ErrUnavailable})
			log.Printf("[Orchestrator] skipping %s for %s: marked unavailable", name, t)
			continue
		}

		text, err := o.generate(ctx, p, GenerateRequest{
			Prompt:       query,
			SystemPrompt: systemPrompt,
			Persona:      t,
		}, span)
		if err != nil {
			attempt := Attempt{Provider: name, Kind: ErrUnknown, Err: err.Error()}
			if pe, ok := AsProviderError(err); ok {
				attempt.Kind = pe.Kind
			}
			result.Attempts = append(result.Attempts, attempt)
			log.Printf("[Orchestrator] provider %s failed for %s: %v", name, t, err)
			continue
		}

		result.Text = o.formatter.Format(text, t)
		result.Provider = name
		span.SetAttribute("provider", name)
		o.tracer.EndSpan(span, "ok", "")
		return result
	}

	simSpan := o.tracer.StartSpan("simulate", SpanKindSimulator, span, nil)
	result.Text = o.formatter.Format(o.simulator.Respond(t, query), t)
	result.Provider = ProviderSimulation
	result.Simulated = true
	o.tracer.EndSpan(simSpan, "ok", "")

	span.SetAttribute("provider", ProviderSimulation)
	o.tracer.EndSpan(span, "ok", "")
	return result
}

// generate runs one provider attempt under the per-call timeout.
func (o *Orchestrator) generate(ctx context.Context, p Provider, req GenerateRequest, parent *Span) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	span := o.tracer.StartSpan(fmt.Sprintf("generate:%s", p.Name()), SpanKindProvider, parent, nil)
	text, err := p.Generate(ctx, req)
	if err != nil {
		o.tracer.EndSpan(span, "error", err.Error())
		return "", err
	}
	o.tracer.EndSpan(span, "ok", "")
	return text, nil
}

// resolveOrder returns the try-order for a type. Unknown codes are not
// validated; they get the non-analytical default over the registered
// providers, so a typo degrades to simulation instead of crashing a
// discussion.
func (o *Orchestrator) resolveOrder(t PersonalityType) []string {
	if order, ok := o.allocation[t]; ok {
		return order
	}
	var direct []string
	for _, name := range []string{ProviderOpenAI, ProviderRetrieval, ProviderLlama} {
		if _, ok := o.providers[name]; ok {
			direct = append(direct, name)
		}
	}
	return direct
}

// ServiceStatus reports cached provider availability, plus the simulator,
// which is always on.
func (o *Orchestrator) ServiceStatus() map[string]bool {
	status := make(map[string]bool, len(o.order)+1)
	for _, name := range o.order {
		status[name] = o.providers[name].Available()
	}
	status[ProviderSimulation] = true
	return status
}

// RecheckAll re-probes every registered provider, refreshing availability
// caches. Returns the updated status map.
func (o *Orchestrator) RecheckAll(ctx context.Context) map[string]bool {
	for _, name := range o.order {
		o.providers[name].HealthCheck(ctx)
	}
	return o.ServiceStatus()
}

// personaSystemPrompt builds the styling instruction for a type from the
// static trait table.
func personaSystemPrompt(t PersonalityType) string {
	return fmt.Sprintf(`You are simulating an %s personality type from the Myers-Briggs Type Indicator.

%s personalities are %s.

Respond as if you are this personality type, expressing their natural style:
- Use vocabulary and expressions typical for this type
- Make it feel like a casual conversation with a friend, not a formal analysis
- Do NOT mention that you are roleplaying or simulating a personality`, t, t, TraitSummary(t))
}
