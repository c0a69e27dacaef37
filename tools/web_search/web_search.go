package web_search

import (
	"context"

	"github.com/careloop/healthbuddy/config"
	"github.com/careloop/healthbuddy/tools/web_search/models"
	"github.com/careloop/healthbuddy/tools/web_search/tavily"
)

// WebSearcher retrieves raw web results for a query. Implementations request
// full page content so callers can truncate to their own length limit.
type WebSearcher interface {
	RawSearch(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	TavilyProvider Provider = "tavily"
)

type Error struct{ msg string }

func (e *Error) Error() string { return e.msg }

var ErrUnsupportedProvider = &Error{"unsupported provider"}

func NewWebSearcher(provider Provider, cfg config.SearchConfig) (WebSearcher, error) {
	switch provider {
	case TavilyProvider:
		return tavily.New(cfg), nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
