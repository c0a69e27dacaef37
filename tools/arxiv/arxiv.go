package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/careloop/healthbuddy/config"
)

// Paper is one retrieved arXiv entry. Content holds the extracted article
// text when full-document retrieval is enabled, capped at MaxCharsPerDoc.
type Paper struct {
	Title     string
	Summary   string
	URL       string
	Published string
	Content   string
}

// Retriever queries the arXiv Atom API.
// https://info.arxiv.org/help/api/user-manual.html
type Retriever struct {
	baseURL       string
	topK          int
	fullDocuments bool
	maxChars      int
	httpClient    *http.Client
}

func New(cfg config.ArxivConfig) *Retriever {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	topK := cfg.TopK
	if topK <= 0 {
		topK = 3
	}
	return &Retriever{
		baseURL:       cfg.BaseURL,
		topK:          topK,
		fullDocuments: cfg.FullDocuments,
		maxChars:      cfg.MaxCharsPerDoc,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string     `xml:"id"`
	Title     string     `xml:"title"`
	Summary   string     `xml:"summary"`
	Published string     `xml:"published"`
	Links     []atomLink `xml:"link"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// Retrieve returns up to topK papers matching the query. A nil slice means
// no matches; the caller decides how to represent emptiness.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Paper, error) {
	u := fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d", r.baseURL, url.QueryEscape(query), r.topK)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned status: %d", resp.StatusCode)
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to parse arxiv feed: %w", err)
	}

	var papers []Paper
	for _, entry := range feed.Entries {
		p := Paper{
			Title:     strings.TrimSpace(entry.Title),
			Summary:   strings.TrimSpace(entry.Summary),
			URL:       entry.pageURL(),
			Published: strings.TrimSpace(entry.Published),
		}
		if r.fullDocuments && p.URL != "" {
			if text, err := r.fetchArticle(ctx, p.URL); err == nil && text != "" {
				p.Content = text
			}
		}
		if p.Content == "" {
			p.Content = p.Summary
		}
		if r.maxChars > 0 && len(p.Content) > r.maxChars {
			p.Content = p.Content[:r.maxChars]
		}
		papers = append(papers, p)
	}
	return papers, nil
}

// pageURL prefers the alternate (abstract page) link, falling back to the
// entry ID which arXiv also sets to the abstract URL.
func (e atomEntry) pageURL() string {
	for _, l := range e.Links {
		if l.Rel == "alternate" {
			return l.Href
		}
	}
	return strings.TrimSpace(e.ID)
}

func (r *Retriever) fetchArticle(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article fetch returned status: %d", resp.StatusCode)
	}

	html, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	article, err := readability.FromReader(strings.NewReader(string(html)), parsed)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(article.TextContent), nil
}
