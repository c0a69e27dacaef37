package react

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/careloop/healthbuddy/internal/agent/core"
	"github.com/careloop/healthbuddy/provider"
)

// Event is one step of the agent's internal execution. Callers that only
// want the answer keep the last event with Final set.
type Event struct {
	Step    int
	Content string
	Final   bool
	Err     error
}

// Agent implements the Reason+Act pattern over the capability providers:
// the model requests tools with "TOOL: <name>" lines, observations are fed
// back, and a response without tool lines is the final answer.
type Agent struct {
	llm       provider.Provider
	providers map[core.CapabilityKind]core.CapabilityProvider
	maxSteps  int
	logger    *log.Logger
}

func New(llm provider.Provider, providers []core.CapabilityProvider, maxSteps int, logger *log.Logger) *Agent {
	if maxSteps <= 0 {
		maxSteps = 6
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[REACT] ", log.LstdFlags)
	}
	byKind := make(map[core.CapabilityKind]core.CapabilityProvider, len(providers))
	for _, p := range providers {
		byKind[p.Kind()] = p
	}
	return &Agent{llm: llm, providers: byKind, maxSteps: maxSteps, logger: logger}
}

// Stream runs the loop in a goroutine and emits one Event per step. The
// channel is closed when the loop finishes; an Err event means the loop
// failed and the caller should fall back to the deterministic path.
func (a *Agent) Stream(ctx context.Context, question string) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		a.run(ctx, question, events)
	}()
	return events
}

func (a *Agent) run(ctx context.Context, question string, events chan<- Event) {
	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: core.AgentSystemPrompt},
		{Role: provider.RoleUser, Content: question},
	}

	for step := 1; step <= a.maxSteps; step++ {
		response, err := a.llm.Chat(ctx, messages)
		if err != nil {
			events <- Event{Step: step, Err: fmt.Errorf("agent step failed: %w", err)}
			return
		}

		requested := requestedTools(response)
		if len(requested) == 0 {
			a.logger.Printf("final answer after %d step(s)", step)
			events <- Event{Step: step, Content: response, Final: true}
			return
		}

		events <- Event{Step: step, Content: response}

		var observations []string
		for _, kind := range requested {
			prov, ok := a.providers[kind]
			if !ok {
				observations = append(observations, fmt.Sprintf("%s: unavailable", kind))
				continue
			}
			a.logger.Printf("step %d executing: %s", step, kind)
			docs, err := prov.Invoke(ctx, question)
			if err != nil {
				observations = append(observations, fmt.Sprintf("%s: error: %v", kind, err))
				continue
			}
			observations = append(observations, formatObservation(kind, docs))
		}

		messages = append(messages,
			provider.Message{Role: provider.RoleUser, Content: "Observations:\n" + strings.Join(observations, "\n\n") + "\n\nIf you have enough information, write your final answer without any TOOL lines."},
		)
	}

	events <- Event{Step: a.maxSteps, Err: fmt.Errorf("agent exhausted %d steps without a final answer", a.maxSteps)}
}

// requestedTools extracts tool markers in the fixed capability order.
func requestedTools(response string) []core.CapabilityKind {
	var out []core.CapabilityKind
	for _, kind := range []core.CapabilityKind{core.CapabilityWebSearch, core.CapabilityLiteratureSearch, core.CapabilityDoctorRecommendation} {
		if strings.Contains(response, "TOOL: "+string(kind)) {
			out = append(out, kind)
		}
	}
	return out
}

func formatObservation(kind core.CapabilityKind, docs []core.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", kind)
	for _, doc := range docs {
		if doc.Title != "" {
			fmt.Fprintf(&b, "- %s: ", doc.Title)
		} else {
			b.WriteString("- ")
		}
		b.WriteString(doc.Content)
		if doc.SourceRef != "" {
			fmt.Fprintf(&b, " (%s)", doc.SourceRef)
		}
		b.WriteString("\n")
	}
	return b.String()
}
