// Package agent wires the HealthBuddy facade: lazy setup of the oracle and
// tool clients, the autonomous answer tier, and the deterministic fallback.
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careloop/healthbuddy/config"
	"github.com/careloop/healthbuddy/internal/agent/core"
	"github.com/careloop/healthbuddy/internal/agent/react"
	"github.com/careloop/healthbuddy/internal/agent/telemetry"
	"github.com/careloop/healthbuddy/internal/directory"
	openai_provider "github.com/careloop/healthbuddy/provider/openai"
	"github.com/careloop/healthbuddy/tools/arxiv"
	"github.com/careloop/healthbuddy/tools/web_search"
)

// HealthBuddy is the single entry point the presentation layer talks to.
// Setup runs on first use and is retried on the next call after a failure;
// there is no terminal failed state.
type HealthBuddy struct {
	cfg       *config.Config
	logger    *log.Logger
	telemetry *telemetry.Telemetry
	directory *directory.Directory

	mu   sync.Mutex
	orch *core.Orchestrator
	auto *react.Agent
}

// New creates a facade with a seeded doctor directory. Oracle and tool
// clients are constructed lazily on the first Answer call.
func New(cfg *config.Config, logger *log.Logger, tele *telemetry.Telemetry) (*HealthBuddy, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[HEALTHBUDDY] ", log.LstdFlags)
	}
	dir, err := directory.NewSeeded()
	if err != nil {
		return nil, fmt.Errorf("failed to seed doctor directory: %w", err)
	}
	return &HealthBuddy{cfg: cfg, logger: logger, telemetry: tele, directory: dir}, nil
}

// ensureSetup builds the oracle and provider clients once, under lock.
// Failures leave the facade uninitialized so a later call retries from
// scratch.
func (h *HealthBuddy) ensureSetup() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.orch != nil {
		return nil
	}

	if err := h.cfg.ValidateCredentials(); err != nil {
		return err
	}

	llm := openai_provider.New(h.cfg.LLM)

	searcher, err := web_search.NewWebSearcher(web_search.TavilyProvider, h.cfg.Search)
	if err != nil {
		return fmt.Errorf("failed to create web searcher: %w", err)
	}
	retriever := arxiv.New(h.cfg.Arxiv)

	providers := []core.CapabilityProvider{
		core.NewWebSearchProvider(searcher, h.cfg.Search.MaxResults, h.cfg.Search.SnippetChars, h.logger),
		core.NewLiteratureSearchProvider(retriever, h.logger),
		core.NewDoctorRecommendationProvider(h.directory, llm, h.logger),
	}

	h.orch = core.NewOrchestrator(llm, providers, h.logger, h.telemetry)
	if h.cfg.Agent.AutonomousEnabled {
		h.auto = react.New(llm, providers, h.cfg.Agent.MaxSteps, h.logger)
	}
	h.logger.Printf("setup complete (autonomous=%v)", h.auto != nil)
	return nil
}

// Answer processes one question end to end. It never panics and never
// returns an error: every failure path yields a string answer paired with a
// best-effort execution record.
func (h *HealthBuddy) Answer(ctx context.Context, question string) (result core.AnswerResult) {
	start := time.Now()
	result = core.AnswerResult{
		ID:        uuid.New().String(),
		Question:  question,
		CreatedAt: start,
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Printf("panic while answering: %v", r)
			result.AnswerText = fmt.Sprintf("Sorry, I encountered an error: %v", r)
			result.ProcessingTime = time.Since(start)
		}
	}()

	if err := h.ensureSetup(); err != nil {
		h.logger.Printf("setup failed: %v", err)
		result.AnswerText = fmt.Sprintf("HealthBuddy setup failed: %v. Please check your API key configuration.", err)
		result.ProcessingTime = time.Since(start)
		if h.telemetry != nil {
			h.telemetry.RecordAnswer("setup", false, result.ProcessingTime)
		}
		return result
	}

	h.logger.Printf("thinking about: %s", question)

	if h.auto != nil {
		if answered, ok := h.answerAutonomous(ctx, question, &result); ok {
			result.AnswerText = answered
			result.ProcessingTime = time.Since(start)
			if h.telemetry != nil {
				h.telemetry.RecordAnswer("autonomous", true, result.ProcessingTime)
			}
			return result
		}
		result.Record.AppendLog("Autonomous agent unavailable; using deterministic path.")
	}

	deterministic, err := h.orch.Answer(ctx, question)
	if err != nil {
		h.logger.Printf("deterministic path failed: %v", err)
		result.Record.ReasoningText = deterministic.Record.ReasoningText
		result.Record.ToolsSelected = deterministic.Record.ToolsSelected
		result.Record.ExecutionLog = append(result.Record.ExecutionLog, deterministic.Record.ExecutionLog...)
		result.AnswerText = fmt.Sprintf("Sorry, I encountered an error: %v", err)
		result.ProcessingTime = time.Since(start)
		if h.telemetry != nil {
			h.telemetry.RecordAnswer("deterministic", false, result.ProcessingTime)
		}
		return result
	}

	deterministic.Record.ExecutionLog = append(result.Record.ExecutionLog, deterministic.Record.ExecutionLog...)
	result.AnswerText = deterministic.AnswerText
	result.Record = deterministic.Record
	result.ProcessingTime = time.Since(start)
	if h.telemetry != nil {
		h.telemetry.RecordAnswer("deterministic", true, result.ProcessingTime)
	}
	return result
}

// answerAutonomous streams the agent loop and keeps only the final event's
// content. Any failure, including an empty stream, reports not-ok so the
// caller falls back for this call.
func (h *HealthBuddy) answerAutonomous(ctx context.Context, question string, result *core.AnswerResult) (string, bool) {
	var final string
	var sawFinal bool
	for event := range h.auto.Stream(ctx, question) {
		if event.Err != nil {
			h.logger.Printf("autonomous agent failed: %v", event.Err)
			result.Record.AppendLog(fmt.Sprintf("Autonomous agent error: %v", event.Err))
			return "", false
		}
		result.Record.AppendLog(fmt.Sprintf("Agent step %d: %s", event.Step, firstLine(event.Content)))
		if event.Final {
			final = event.Content
			sawFinal = true
		}
	}
	if !sawFinal {
		h.logger.Printf("autonomous agent produced no final answer")
		return "", false
	}
	return final, true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// ListDoctors returns all doctors in the directory.
func (h *HealthBuddy) ListDoctors() []directory.DoctorRecord {
	return h.directory.List()
}

// SearchDoctors runs a keyword query over the directory.
func (h *HealthBuddy) SearchDoctors(q string, k int) ([]directory.DoctorRecord, error) {
	return h.directory.Search(q, k)
}

// AddDoctor appends a new record. All fields are required.
func (h *HealthBuddy) AddDoctor(name, specialization, timings, location, contact string) error {
	for field, value := range map[string]string{
		"name":              name,
		"specialization":    specialization,
		"available_timings": timings,
		"location":          location,
		"contact":           contact,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("field %s is required", field)
		}
	}
	rec := directory.DoctorRecord{
		Name:             name,
		Specialization:   specialization,
		AvailableTimings: timings,
		Location:         location,
		Contact:          contact,
	}
	if err := h.directory.Add(rec); err != nil {
		return err
	}
	h.logger.Printf("added new doctor: %s", name)
	return nil
}

// CredentialsStatus reports whether the required API keys are configured.
func (h *HealthBuddy) CredentialsStatus() (bool, string) {
	return h.cfg.CredentialsStatus()
}

// Workflow returns the static pipeline description for display.
func (h *HealthBuddy) Workflow() string {
	return core.WorkflowDescription
}
