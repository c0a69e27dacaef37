package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/careloop/healthbuddy/provider"
)

type stubLLM struct {
	responses []string
	errOn     int // 1-based call index that fails; 0 means never
	calls     [][]provider.Message
}

func (s *stubLLM) Chat(ctx context.Context, messages []provider.Message) (string, error) {
	s.calls = append(s.calls, messages)
	n := len(s.calls)
	if s.errOn == n {
		return "", &provider.Error{Provider: "stub", Err: errors.New("boom")}
	}
	if n <= len(s.responses) {
		return s.responses[n-1], nil
	}
	return "", nil
}

type stubProvider struct {
	kind CapabilityKind
	docs []Document
	err  error
}

func (s *stubProvider) Kind() CapabilityKind { return s.kind }

func (s *stubProvider) Invoke(ctx context.Context, query string) ([]Document, error) {
	return s.docs, s.err
}

func testLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestAnswerExecutesDefaultPlan(t *testing.T) {
	llm := &stubLLM{responses: []string{
		"",
		"Diabetes symptoms include increased thirst and fatigue.",
	}}
	web := &stubProvider{kind: CapabilityWebSearch, docs: []Document{
		{Title: "Diabetes overview", Content: "thirst, fatigue", SourceRef: "https://example.org/diabetes"},
	}}
	orch := NewOrchestrator(llm, []CapabilityProvider{web}, testLogger(), nil)

	result, err := orch.Answer(context.Background(), "What are the symptoms of diabetes?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(result.Record.ToolsSelected) != 1 || result.Record.ToolsSelected[0] != CapabilityWebSearch {
		t.Fatalf("expected [search_web], got %v", result.Record.ToolsSelected)
	}
	if result.AnswerText != "Diabetes symptoms include increased thirst and fatigue." {
		t.Fatalf("unexpected answer: %q", result.AnswerText)
	}
	if len(llm.calls) != 2 {
		t.Fatalf("expected routing + synthesis calls, got %d", len(llm.calls))
	}
	synthesis := llm.calls[1][1].Content
	if !strings.Contains(synthesis, "thirst, fatigue") || !strings.Contains(synthesis, "https://example.org/diabetes") {
		t.Fatalf("synthesis prompt missing web evidence: %s", synthesis)
	}
}

func TestOneToolFailureDoesNotStopThePlan(t *testing.T) {
	llm := &stubLLM{responses: []string{
		"TOOL: search_web",
		"Exercise helps; see Dr. Matt Murdock.",
	}}
	web := &stubProvider{kind: CapabilityWebSearch, err: fmt.Errorf("connection refused")}
	lit := &stubProvider{kind: CapabilityLiteratureSearch, docs: []Document{{Title: "Exercise RCT", Content: "positive effect"}}}
	doc := &stubProvider{kind: CapabilityDoctorRecommendation, docs: []Document{{Title: "Recommended Doctor", Content: `{"name":"Dr. Matt Murdock"}`}}}
	orch := NewOrchestrator(llm, []CapabilityProvider{web, lit, doc}, testLogger(), nil)

	question := "What does research say about exercise and mental health, and recommend a doctor?"
	result, err := orch.Answer(context.Background(), question)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}

	want := []CapabilityKind{CapabilityWebSearch, CapabilityLiteratureSearch, CapabilityDoctorRecommendation}
	if len(result.Record.ToolsSelected) != len(want) {
		t.Fatalf("expected all planned tools to run, got %v", result.Record.ToolsSelected)
	}
	for i, k := range want {
		if result.Record.ToolsSelected[i] != k {
			t.Fatalf("expected tools %v, got %v", want, result.Record.ToolsSelected)
		}
	}
	if result.AnswerText == "" || strings.HasPrefix(result.AnswerText, "Error") {
		t.Fatalf("expected a synthesized answer despite tool failure, got %q", result.AnswerText)
	}

	var loggedFailure bool
	for _, line := range result.Record.ExecutionLog {
		if strings.Contains(line, string(CapabilityWebSearch)) && strings.Contains(line, "failed") {
			loggedFailure = true
		}
	}
	if !loggedFailure {
		t.Fatalf("expected web search failure in execution log: %v", result.Record.ExecutionLog)
	}

	synthesis := llm.calls[1][1].Content
	if !strings.Contains(synthesis, "Dr. Matt Murdock") {
		t.Fatalf("synthesis prompt missing doctor output: %s", synthesis)
	}
	if !strings.Contains(synthesis, "positive effect") {
		t.Fatalf("synthesis prompt missing literature output: %s", synthesis)
	}
}

func TestAnswerKeepsReasoningText(t *testing.T) {
	llm := &stubLLM{responses: []string{"TOOL: search_web because the user asks general info", "done"}}
	web := &stubProvider{kind: CapabilityWebSearch, docs: []Document{{Content: "x"}}}
	orch := NewOrchestrator(llm, []CapabilityProvider{web}, testLogger(), nil)

	result, err := orch.Answer(context.Background(), "general question")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if result.Record.ReasoningText != "TOOL: search_web because the user asks general info" {
		t.Fatalf("expected raw directive preserved, got %q", result.Record.ReasoningText)
	}
}

func TestRoutingFailurePropagates(t *testing.T) {
	llm := &stubLLM{errOn: 1}
	orch := NewOrchestrator(llm, nil, testLogger(), nil)

	_, err := orch.Answer(context.Background(), "anything")
	if err == nil || !strings.Contains(err.Error(), "tool routing failed") {
		t.Fatalf("expected routing failure, got %v", err)
	}
	var provErr *provider.Error
	if !errors.As(err, &provErr) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestSynthesisFailurePropagates(t *testing.T) {
	llm := &stubLLM{responses: []string{""}, errOn: 2}
	web := &stubProvider{kind: CapabilityWebSearch, docs: []Document{{Content: "x"}}}
	orch := NewOrchestrator(llm, []CapabilityProvider{web}, testLogger(), nil)

	result, err := orch.Answer(context.Background(), "anything")
	if err == nil || !strings.Contains(err.Error(), "synthesis failed") {
		t.Fatalf("expected synthesis failure, got %v", err)
	}
	// best-effort record still reports the executed tools
	if len(result.Record.ToolsSelected) != 1 {
		t.Fatalf("expected best-effort record, got %v", result.Record.ToolsSelected)
	}
}

func TestNoRegisteredProvidersFallsBackToDirective(t *testing.T) {
	llm := &stubLLM{responses: []string{"I would use TOOL: search_web"}}
	orch := NewOrchestrator(llm, nil, testLogger(), nil)

	result, err := orch.Answer(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if result.AnswerText != "I would use TOOL: search_web" {
		t.Fatalf("expected raw directive fallback, got %q", result.AnswerText)
	}
	var warned bool
	for _, line := range result.Record.ExecutionLog {
		if strings.Contains(line, "falling back to direct response") {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("expected fallback warning, got %v", result.Record.ExecutionLog)
	}
}
