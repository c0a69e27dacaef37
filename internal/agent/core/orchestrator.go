package core

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/healthbuddy/internal/agent/telemetry"
	"github.com/careloop/healthbuddy/provider"
)

// Orchestrator executes invocation plans against the capability providers
// and drives final-answer synthesis.
type Orchestrator struct {
	planner   *DirectivePlanner
	providers map[CapabilityKind]CapabilityProvider
	llm       provider.Provider
	logger    *log.Logger
	telemetry *telemetry.Telemetry
}

// NewOrchestrator wires the deterministic answer path.
func NewOrchestrator(llm provider.Provider, providers []CapabilityProvider, logger *log.Logger, tele *telemetry.Telemetry) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	byKind := make(map[CapabilityKind]CapabilityProvider, len(providers))
	for _, p := range providers {
		byKind[p.Kind()] = p
	}
	return &Orchestrator{
		planner:   NewDirectivePlanner(),
		providers: byKind,
		llm:       llm,
		logger:    logger,
		telemetry: tele,
	}
}

// Answer runs one full deterministic cycle: tool routing, plan execution,
// and synthesis. Provider failures are isolated inside the plan; only the
// routing and synthesis oracle calls can fail the cycle.
func (o *Orchestrator) Answer(ctx context.Context, question string) (AnswerResult, error) {
	start := time.Now()
	result := AnswerResult{
		ID:        uuid.New().String(),
		Question:  question,
		CreatedAt: start,
	}

	directive, err := o.llm.Chat(ctx, []provider.Message{
		{Role: provider.RoleSystem, Content: routerSystemPrompt},
		{Role: provider.RoleUser, Content: question},
	})
	if err != nil {
		result.ProcessingTime = time.Since(start)
		return result, fmt.Errorf("tool routing failed: %w", err)
	}
	o.logger.Printf("model directive: %s", directive)

	plan, notes := o.planner.Plan(question, directive)
	record := ExecutionRecord{ReasoningText: directive, ExecutionLog: notes}

	outputs := o.ExecutePlan(ctx, question, plan, &record)

	var answer string
	if len(outputs) > 0 {
		answer, err = o.synthesize(ctx, question, plan, outputs)
		if err != nil {
			result.Record = record
			result.ProcessingTime = time.Since(start)
			return result, fmt.Errorf("synthesis failed: %w", err)
		}
	} else {
		// Defensive: the planner guarantees a non-empty plan, so this only
		// happens if every provider is missing from the registry.
		record.AppendLog("The model didn't specify tools clearly - falling back to direct response.")
		answer = directive
	}

	result.AnswerText = answer
	result.Record = record
	result.ProcessingTime = time.Since(start)
	return result, nil
}

// ExecutePlan invokes each planned capability in order with the original
// question, appending to the execution record as it goes. One tool's failure
// never prevents the remaining tools from running.
func (o *Orchestrator) ExecutePlan(ctx context.Context, question string, plan InvocationPlan, record *ExecutionRecord) map[CapabilityKind][]Document {
	outputs := make(map[CapabilityKind][]Document)
	for _, kind := range plan {
		prov, ok := o.providers[kind]
		if !ok {
			record.AppendLog(fmt.Sprintf("%s skipped: no provider registered", kind))
			continue
		}

		o.logger.Printf("executing: %s", kind)
		record.ToolsSelected = append(record.ToolsSelected, kind)

		docs, err := prov.Invoke(ctx, question)
		if err != nil {
			// Providers convert their own failures to sentinel documents,
			// but a misbehaving implementation must not abort the plan.
			docs = []Document{{Content: fmt.Sprintf("Error executing %s: %v", kind, err)}}
		}
		if o.telemetry != nil {
			o.telemetry.RecordToolInvocation(string(kind), err != nil)
		}

		if err != nil {
			record.AppendLog(fmt.Sprintf("%s failed: %v", kind, err))
		} else {
			record.AppendLog(fmt.Sprintf("%s returned %d results", kind, len(docs)))
		}
		outputs[kind] = docs
	}
	return outputs
}

// synthesize combines all tool outputs into one structured answer with a
// single oracle call.
func (o *Orchestrator) synthesize(ctx context.Context, question string, plan InvocationPlan, outputs map[CapabilityKind][]Document) (string, error) {
	return o.llm.Chat(ctx, []provider.Message{
		{Role: provider.RoleSystem, Content: synthesisSystemPrompt},
		{Role: provider.RoleUser, Content: fmt.Sprintf(synthesisUserPrompt, question, formatOutputs(plan, outputs))},
	})
}

// formatOutputs renders collected documents in plan order so the synthesis
// prompt is deterministic for a given run.
func formatOutputs(plan InvocationPlan, outputs map[CapabilityKind][]Document) string {
	var b strings.Builder
	for _, kind := range plan {
		docs, ok := outputs[kind]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "### %s\n", kind)
		for _, doc := range docs {
			if doc.Title != "" {
				fmt.Fprintf(&b, "## Title\n%s\n\n", doc.Title)
			}
			fmt.Fprintf(&b, "%s\n", doc.Content)
			if doc.SourceRef != "" {
				fmt.Fprintf(&b, "\n## Source\n%s\n", doc.SourceRef)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
