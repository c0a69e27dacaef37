package core

import (
	"fmt"
	"strings"
)

// directiveMarkers are the fixed substrings the oracle uses to request a
// tool. They are scanned independently of their position in the text.
var directiveMarkers = map[CapabilityKind]string{
	CapabilityWebSearch:            "TOOL: search_web",
	CapabilityLiteratureSearch:     "TOOL: search_arxiv",
	CapabilityDoctorRecommendation: "TOOL: recommend_doctor",
}

// doctorKeywords triggers the doctor-recommendation override.
var doctorKeywords = []string{
	"doctor", "specialist", "physician", "consult", "consultation",
	"appointment", "cardiologist", "neurologist", "oncologist",
	"dermatologist", "psychiatrist", "pediatrician", "endocrinologist",
	"gastroenterologist", "surgeon", "orthopedist", "dentist",
}

// researchKeywords triggers the literature-search override.
var researchKeywords = []string{
	"research", "study", "studies", "paper", "papers", "arxiv",
	"clinical trial", "evidence", "meta-analysis", "systematic review",
}

// DirectivePlanner turns the oracle's free-text directives plus
// deterministic keyword rules into a safe invocation plan.
//
// Precedence: oracle directives first (in fixed scan order), then keyword
// additions, then the web-search default. Overrides only ever add tools;
// they never remove an oracle-suggested one.
type DirectivePlanner struct{}

func NewDirectivePlanner() *DirectivePlanner { return &DirectivePlanner{} }

// Plan builds the invocation plan for one question. The returned notes are
// trace lines explaining every rule that fired; callers append them to the
// execution log. The plan is never empty and contains no duplicates.
func (p *DirectivePlanner) Plan(question, directiveText string) (InvocationPlan, []string) {
	var plan InvocationPlan
	var notes []string

	// Oracle directives, in fixed scan order rather than text order. The
	// oracle's ordering is not reliable enough to depend on.
	for _, kind := range scanOrder {
		if strings.Contains(directiveText, directiveMarkers[kind]) && !plan.Contains(kind) {
			plan = append(plan, kind)
		}
	}

	if containsAny(question, researchKeywords) && !plan.Contains(CapabilityLiteratureSearch) {
		notes = append(notes, fmt.Sprintf("Added %s because the question references research/studies.", CapabilityLiteratureSearch))
		plan = append(plan, CapabilityLiteratureSearch)
	}
	if containsAny(question, doctorKeywords) && !plan.Contains(CapabilityDoctorRecommendation) {
		notes = append(notes, fmt.Sprintf("Added %s because the question requests a doctor.", CapabilityDoctorRecommendation))
		plan = append(plan, CapabilityDoctorRecommendation)
	}

	if len(plan) == 0 {
		notes = append(notes, fmt.Sprintf("No tool selected by the model; defaulting to %s.", CapabilityWebSearch))
		plan = append(plan, CapabilityWebSearch)
	}

	return plan, notes
}

func containsAny(text string, vocabulary []string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range vocabulary {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
