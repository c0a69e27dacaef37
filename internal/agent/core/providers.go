package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/careloop/healthbuddy/internal/directory"
	"github.com/careloop/healthbuddy/provider"
	"github.com/careloop/healthbuddy/tools/arxiv"
	"github.com/careloop/healthbuddy/tools/web_search"
)

// noArticlesSentinel is returned by the literature provider when arXiv has
// no matches, so downstream synthesis never has to special-case emptiness.
const noArticlesSentinel = "No articles found for the given query."

// WebSearchProvider retrieves general health information from the web.
type WebSearchProvider struct {
	searcher     web_search.WebSearcher
	maxResults   int
	snippetChars int
	logger       *log.Logger
}

func NewWebSearchProvider(searcher web_search.WebSearcher, maxResults, snippetChars int, logger *log.Logger) *WebSearchProvider {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &WebSearchProvider{searcher: searcher, maxResults: maxResults, snippetChars: snippetChars, logger: logger}
}

func (w *WebSearchProvider) Kind() CapabilityKind { return CapabilityWebSearch }

// Invoke searches the web and formats up to maxResults documents. Results
// without retrievable raw content are dropped; retained bodies are truncated
// to the configured snippet length. Failures become an error document.
func (w *WebSearchProvider) Invoke(ctx context.Context, query string) ([]Document, error) {
	w.logger.Printf("searching the web for: %s", query)

	results, err := w.searcher.RawSearch(ctx, query, w.maxResults)
	if err != nil {
		w.logger.Printf("web search failed: %v", err)
		return []Document{{Content: fmt.Sprintf("Error searching the web: %v", err)}}, nil
	}

	var docs []Document
	for _, r := range results {
		if r.RawContent == "" {
			continue
		}
		content := r.RawContent
		if w.snippetChars > 0 && len(content) > w.snippetChars {
			content = content[:w.snippetChars] + "..."
		}
		docs = append(docs, Document{Title: r.Title, Content: content, SourceRef: r.URL})
	}
	w.logger.Printf("found %d web results", len(docs))
	return docs, nil
}

// LiteratureRetriever is the boundary to the scientific-literature source.
// *arxiv.Retriever is the production implementation.
type LiteratureRetriever interface {
	Retrieve(ctx context.Context, query string) ([]arxiv.Paper, error)
}

// LiteratureSearchProvider retrieves scientific papers from arXiv.
type LiteratureSearchProvider struct {
	retriever LiteratureRetriever
	logger    *log.Logger
}

func NewLiteratureSearchProvider(retriever LiteratureRetriever, logger *log.Logger) *LiteratureSearchProvider {
	return &LiteratureSearchProvider{retriever: retriever, logger: logger}
}

func (l *LiteratureSearchProvider) Kind() CapabilityKind { return CapabilityLiteratureSearch }

// Invoke returns one document per paper. Zero matches yield the fixed
// sentinel document, never an empty slice.
func (l *LiteratureSearchProvider) Invoke(ctx context.Context, query string) ([]Document, error) {
	l.logger.Printf("searching arXiv for: %s", query)

	papers, err := l.retriever.Retrieve(ctx, query)
	if err != nil {
		l.logger.Printf("research search failed: %v", err)
		return []Document{{Content: fmt.Sprintf("Error fetching arXiv articles: %v", err)}}, nil
	}
	if len(papers) == 0 {
		l.logger.Printf("no research papers found")
		return []Document{{Content: noArticlesSentinel}}, nil
	}

	docs := make([]Document, 0, len(papers))
	for _, p := range papers {
		var b strings.Builder
		b.WriteString("## Summary\n")
		b.WriteString(p.Summary)
		b.WriteString("\n\n## Content\n")
		b.WriteString(p.Content)
		docs = append(docs, Document{Title: p.Title, Content: b.String(), SourceRef: p.URL})
	}
	l.logger.Printf("found %d research papers", len(docs))
	return docs, nil
}

// DoctorRecommendationProvider asks the oracle to pick one record from the
// directory; it performs no external search itself.
type DoctorRecommendationProvider struct {
	directory *directory.Directory
	llm       provider.Provider
	logger    *log.Logger
}

func NewDoctorRecommendationProvider(dir *directory.Directory, llm provider.Provider, logger *log.Logger) *DoctorRecommendationProvider {
	return &DoctorRecommendationProvider{directory: dir, llm: llm, logger: logger}
}

func (d *DoctorRecommendationProvider) Kind() CapabilityKind { return CapabilityDoctorRecommendation }

// Invoke serializes the whole directory into a selection prompt. The oracle
// picks exactly one record, defaulting to the General Physician when unsure.
func (d *DoctorRecommendationProvider) Invoke(ctx context.Context, query string) ([]Document, error) {
	d.logger.Printf("finding a doctor for: %s", query)

	roster, err := json.MarshalIndent(d.directory.List(), "", "  ")
	if err != nil {
		return []Document{{Content: fmt.Sprintf("Error recommending doctor: %v", err)}}, nil
	}

	prompt := fmt.Sprintf(doctorSelectionPrompt, string(roster), query)
	response, err := d.llm.Chat(ctx, []provider.Message{{Role: provider.RoleUser, Content: prompt}})
	if err != nil {
		d.logger.Printf("doctor recommendation failed: %v", err)
		return []Document{{Content: fmt.Sprintf("Error recommending doctor: %v", err)}}, nil
	}

	d.logger.Printf("doctor recommendation generated")
	return []Document{{Title: "Recommended Doctor", Content: response, SourceRef: "doctor-directory"}}, nil
}
