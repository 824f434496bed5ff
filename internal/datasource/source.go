// Package datasource selects and opens the backend the three casedesk
// collections are read from: the HTTP case service or a local SQLite file.
package datasource

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vanderheijden86/casedesk/pkg/collection"
	"github.com/vanderheijden86/casedesk/pkg/debug"
	"github.com/vanderheijden86/casedesk/pkg/model"
)

// SourceType identifies the kind of backend.
type SourceType string

const (
	// SourceTypeHTTP is the remote case service.
	SourceTypeHTTP SourceType = "http"
	// SourceTypeSQLite is a local database file.
	SourceTypeSQLite SourceType = "sqlite"
)

// ParseSourceType validates a configured source name.
func ParseSourceType(s string) (SourceType, error) {
	switch t := SourceType(strings.ToLower(strings.TrimSpace(s))); t {
	case "", SourceTypeHTTP:
		return SourceTypeHTTP, nil
	case SourceTypeSQLite:
		return t, nil
	default:
		return "", fmt.Errorf("unknown source %q (want http or sqlite)", s)
	}
}

// DataSource describes where the collections live.
type DataSource struct {
	Type SourceType `json:"type"`
	// URL is the base URL of the case service.
	URL string `json:"url,omitempty"`
	// Path is the SQLite database file.
	Path string `json:"path,omitempty"`
	// Timeout bounds each HTTP request. Zero means no client-side limit.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// String returns a human-readable description of the source.
func (s DataSource) String() string {
	if s.Type == SourceTypeSQLite {
		return fmt.Sprintf("sqlite %s", s.Path)
	}
	return fmt.Sprintf("http %s", s.URL)
}

// Collections are the three opened collections, each wrapped with latency
// metrics.
type Collections struct {
	Source    DataSource
	Cases     collection.Sync[string, model.Case]
	Watchlist collection.Sync[string, model.WatchlistEntry]
	Keywords  collection.Sync[int, model.Keyword]

	// Store is set for SQLite sources.
	Store *Store
}

// Close releases the SQLite database, if any.
func (c *Collections) Close() error {
	if c.Store != nil {
		return c.Store.Close()
	}
	return nil
}

// Open connects the three collections to source.
func Open(source DataSource) (*Collections, error) {
	debug.Log("datasource: opening %s", source)
	switch source.Type {
	case SourceTypeSQLite:
		if source.Path == "" {
			return nil, fmt.Errorf("sqlite source needs a database path")
		}
		store, err := OpenSQLite(source.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", source.Path, err)
		}
		return &Collections{
			Source:    source,
			Cases:     collection.WithTiming[string, model.Case]("cases", store.Cases()),
			Watchlist: collection.WithTiming[string, model.WatchlistEntry]("watchlist", store.Watchlist()),
			Keywords:  collection.WithTiming[int, model.Keyword]("keywords", store.Keywords()),
			Store:     store,
		}, nil

	case SourceTypeHTTP, "":
		if source.URL == "" {
			return nil, fmt.Errorf("http source needs a backend URL")
		}
		hc := collection.WithHTTPClient(&http.Client{Timeout: source.Timeout})
		return &Collections{
			Source:    source,
			Cases:     collection.WithTiming[string, model.Case]("cases", collection.NewHTTPCollection[string, model.Case](source.URL, "cases", hc, collection.WithFormCreate())),
			Watchlist: collection.WithTiming[string, model.WatchlistEntry]("watchlist", collection.NewHTTPCollection[string, model.WatchlistEntry](source.URL, "watchlist", hc, collection.WithFormCreate())),
			Keywords:  collection.WithTiming[int, model.Keyword]("keywords", collection.NewKeywordCollection(source.URL, hc)),
		}, nil

	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
}
