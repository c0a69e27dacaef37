package core

import (
	"context"
	"time"
)

// CapabilityKind identifies one of the external lookup tools. The set is
// closed; there is no dynamic registration.
type CapabilityKind string

const (
	CapabilityWebSearch            CapabilityKind = "search_web"
	CapabilityLiteratureSearch     CapabilityKind = "search_arxiv"
	CapabilityDoctorRecommendation CapabilityKind = "recommend_doctor"
)

// scanOrder is the fixed order in which directive markers are scanned and
// capabilities planned, independent of where markers appear in oracle text.
var scanOrder = []CapabilityKind{
	CapabilityWebSearch,
	CapabilityLiteratureSearch,
	CapabilityDoctorRecommendation,
}

// Document is one unit of retrieved evidence. Immutable once produced;
// consumed exactly once during synthesis.
type Document struct {
	Title     string `json:"title,omitempty"`
	Content   string `json:"content"`
	SourceRef string `json:"source_ref,omitempty"`
}

// InvocationPlan is an ordered, deduplicated sequence of capabilities to
// execute for one question. The planner guarantees it is never empty.
type InvocationPlan []CapabilityKind

// Contains reports whether the plan already includes kind.
func (p InvocationPlan) Contains(kind CapabilityKind) bool {
	for _, k := range p {
		if k == kind {
			return true
		}
	}
	return false
}

// ExecutionRecord is the structured trace of one orchestration run.
type ExecutionRecord struct {
	ReasoningText string           `json:"reasoning"`
	ToolsSelected []CapabilityKind `json:"tools_selected"`
	ExecutionLog  []string         `json:"execution_log"`
}

// AppendLog adds one human-readable trace line.
func (r *ExecutionRecord) AppendLog(line string) {
	r.ExecutionLog = append(r.ExecutionLog, line)
}

// AnswerResult is the terminal output of one question-answering cycle.
type AnswerResult struct {
	ID             string          `json:"id"`
	Question       string          `json:"question"`
	AnswerText     string          `json:"answer"`
	Record         ExecutionRecord `json:"record"`
	ProcessingTime time.Duration   `json:"processing_time"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CapabilityProvider is the uniform abstraction over the external tools.
// Implementations convert their own failures into a single error-description
// Document and return a nil error, so one tool's failure never aborts a plan.
type CapabilityProvider interface {
	Kind() CapabilityKind
	Invoke(ctx context.Context, query string) ([]Document, error)
}
