package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/careloop/healthbuddy/internal/directory"
	"github.com/careloop/healthbuddy/tools/arxiv"
	"github.com/careloop/healthbuddy/tools/web_search/models"
)

type stubSearcher struct {
	results []models.Result
	err     error
}

func (s stubSearcher) RawSearch(ctx context.Context, q string, k int) ([]models.Result, error) {
	return s.results, s.err
}

type stubRetriever struct {
	papers []arxiv.Paper
	err    error
}

func (s stubRetriever) Retrieve(ctx context.Context, query string) ([]arxiv.Paper, error) {
	return s.papers, s.err
}

func TestWebSearchProviderFiltersAndTruncates(t *testing.T) {
	searcher := stubSearcher{results: []models.Result{
		{Title: "Kept", URL: "https://a.example", RawContent: strings.Repeat("x", 600)},
		{Title: "Dropped", URL: "https://b.example", RawContent: ""},
	}}
	p := NewWebSearchProvider(searcher, 3, 500, testLogger())

	docs, err := p.Invoke(context.Background(), "q")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected result without raw content to be dropped, got %d docs", len(docs))
	}
	if len(docs[0].Content) != 503 || !strings.HasSuffix(docs[0].Content, "...") {
		t.Fatalf("expected 500-char truncation with ellipsis, got %d chars", len(docs[0].Content))
	}
	if docs[0].SourceRef != "https://a.example" {
		t.Fatalf("unexpected source ref: %s", docs[0].SourceRef)
	}
}

func TestWebSearchProviderConvertsErrorToSentinel(t *testing.T) {
	p := NewWebSearchProvider(stubSearcher{err: errors.New("timeout")}, 3, 500, testLogger())

	docs, err := p.Invoke(context.Background(), "q")
	if err != nil {
		t.Fatalf("provider must not surface errors, got %v", err)
	}
	if len(docs) != 1 || !strings.Contains(docs[0].Content, "Error searching the web") {
		t.Fatalf("expected error sentinel, got %v", docs)
	}
}

func TestLiteratureProviderEmptyResultSentinel(t *testing.T) {
	p := NewLiteratureSearchProvider(stubRetriever{}, testLogger())

	docs, err := p.Invoke(context.Background(), "nonexistent topic")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected exactly one sentinel document, got %d", len(docs))
	}
	if docs[0].Content != "No articles found for the given query." {
		t.Fatalf("unexpected sentinel text: %q", docs[0].Content)
	}
}

func TestLiteratureProviderFormatsPapers(t *testing.T) {
	p := NewLiteratureSearchProvider(stubRetriever{papers: []arxiv.Paper{
		{Title: "Paper A", Summary: "short abstract", Content: "full body", URL: "https://arxiv.org/abs/1234.5678"},
	}}, testLogger())

	docs, err := p.Invoke(context.Background(), "q")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "Paper A" {
		t.Fatalf("unexpected docs: %v", docs)
	}
	if !strings.Contains(docs[0].Content, "short abstract") || !strings.Contains(docs[0].Content, "full body") {
		t.Fatalf("expected summary and body in content: %s", docs[0].Content)
	}
}

func TestLiteratureProviderConvertsErrorToSentinel(t *testing.T) {
	p := NewLiteratureSearchProvider(stubRetriever{err: errors.New("503")}, testLogger())

	docs, err := p.Invoke(context.Background(), "q")
	if err != nil {
		t.Fatalf("provider must not surface errors, got %v", err)
	}
	if len(docs) != 1 || !strings.Contains(docs[0].Content, "Error fetching arXiv articles") {
		t.Fatalf("expected error sentinel, got %v", docs)
	}
}

func TestDoctorProviderSerializesRoster(t *testing.T) {
	dir, err := directory.NewSeeded()
	if err != nil {
		t.Fatalf("NewSeeded: %v", err)
	}
	llm := &stubLLM{responses: []string{`{"name":"Dr. Don Blake"}`}}
	p := NewDoctorRecommendationProvider(dir, llm, testLogger())

	docs, err := p.Invoke(context.Background(), "I have chest pain")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if len(docs) != 1 || docs[0].Content != `{"name":"Dr. Don Blake"}` {
		t.Fatalf("unexpected docs: %v", docs)
	}

	prompt := llm.calls[0][0].Content
	if !strings.Contains(prompt, "Dr. Don Blake") || !strings.Contains(prompt, "General Physician") {
		t.Fatalf("selection prompt missing roster: %s", prompt)
	}
	if !strings.Contains(prompt, "I have chest pain") {
		t.Fatalf("selection prompt missing query: %s", prompt)
	}
}

func TestDoctorProviderConvertsErrorToSentinel(t *testing.T) {
	dir, err := directory.NewSeeded()
	if err != nil {
		t.Fatalf("NewSeeded: %v", err)
	}
	llm := &stubLLM{errOn: 1}
	p := NewDoctorRecommendationProvider(dir, llm, testLogger())

	docs, err := p.Invoke(context.Background(), "q")
	if err != nil {
		t.Fatalf("provider must not surface errors, got %v", err)
	}
	if len(docs) != 1 || !strings.Contains(docs[0].Content, "Error recommending doctor") {
		t.Fatalf("expected error sentinel, got %v", docs)
	}
}
