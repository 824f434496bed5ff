package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vanderheijden86/casedesk/pkg/model"
	"github.com/vanderheijden86/casedesk/pkg/table"
)

// Table cells are plain text: widths and truncation are measured on the raw
// string. Colored badges live in the detail pane and the header line.

func caseID(c model.Case) string               { return c.ID }
func watchlistID(w model.WatchlistEntry) string { return w.ID }
func keywordID(k model.Keyword) int             { return k.ID }

func caseColumns() []table.Column[model.Case] {
	return []table.Column[model.Case]{
		{Key: "id", Header: "ID", Value: func(c model.Case) any { return c.ID }},
		{Key: "source", Header: "Source", Value: func(c model.Case) any { return c.Source }},
		{
			Key: "severity", Header: "Severity", Width: 8,
			Value:  func(c model.Case) any { return c.Severity.Rank() },
			Render: func(_ any, c model.Case) string { return string(c.Severity) },
		},
		{Key: "status", Header: "Status", Width: 9, Value: func(c model.Case) any { return string(c.Status) }},
		{Key: "type", Header: "Type", Value: func(c model.Case) any { return c.Type }},
		{
			Key: "risk", Header: "Risk", Width: 5,
			Value:  func(c model.Case) any { return c.RiskScore },
			Render: func(v any, _ model.Case) string { return fmt.Sprintf("%3.0f", v) },
		},
		{Key: "timestamp", Header: "Received", Width: 16, Value: func(c model.Case) any { return c.Timestamp }},
		{Key: "keywords", Header: "Keywords", Render: func(_ any, c model.Case) string { return strings.Join(c.FlaggedKeywords, ", ") }},
	}
}

var caseMatcher = table.Matcher[model.Case]{
	Searchable: func(c model.Case) []string {
		fields := []string{c.ID, c.Source, c.Type, string(c.Status), c.Summary}
		fields = append(fields, c.FlaggedKeywords...)
		return append(fields, c.RelatedEntities...)
	},
	Classify: func(c model.Case) []string { return []string{string(c.Severity)} },
}

// severityFilters are the tag filters of the cases screen.
var severityFilters = []string{string(model.SeverityHigh), string(model.SeverityMedium), string(model.SeverityLow)}

func watchlistColumns() []table.Column[model.WatchlistEntry] {
	return []table.Column[model.WatchlistEntry]{
		{Key: "id", Header: "ID", Value: func(w model.WatchlistEntry) any { return w.ID }},
		{Key: "name", Header: "Name", Value: func(w model.WatchlistEntry) any { return w.Name }},
		{Key: "phone", Header: "Phone", Value: func(w model.WatchlistEntry) any { return w.PhoneNumber }},
		{
			Key: "risk", Header: "Risk", Width: 6,
			Value:  func(w model.WatchlistEntry) any { return riskRank(w.RiskLevel) },
			Render: func(_ any, w model.WatchlistEntry) string { return string(w.RiskLevel) },
		},
		{
			Key: "last", Header: "Last mentioned", Width: 16,
			Value: func(w model.WatchlistEntry) any { return w.LastMentioned },
			Render: func(v any, w model.WatchlistEntry) string {
				if w.NeverMentioned() {
					return "never"
				}
				return table.FormatValue(v)
			},
		},
	}
}

func riskRank(l model.RiskLevel) int {
	return model.Severity(l).Rank()
}

var watchlistMatcher = table.Matcher[model.WatchlistEntry]{
	Searchable: func(w model.WatchlistEntry) []string {
		return []string{w.ID, w.UserID, w.Name, w.PhoneNumber}
	},
	Classify: func(w model.WatchlistEntry) []string { return []string{string(w.RiskLevel)} },
}

func keywordColumns() []table.Column[model.Keyword] {
	return []table.Column[model.Keyword]{
		{Key: "id", Header: "#", Width: 4, Value: func(k model.Keyword) any { return k.ID }},
		{Key: "word", Header: "Word", Value: func(k model.Keyword) any { return k.Word }},
		{Key: "category", Header: "Category", Value: func(k model.Keyword) any { return k.Category }},
		{Key: "score", Header: "Score", Width: 6, Value: func(k model.Keyword) any { return k.Score }},
	}
}

var keywordMatcher = table.Matcher[model.Keyword]{
	Searchable: func(k model.Keyword) []string {
		return []string{k.Word, k.Category, strconv.Itoa(k.Score)}
	},
	Classify: func(k model.Keyword) []string { return []string{scoreBand(k.Score)} },
}

// keywordFilters band keyword scores the way case severities are banded.
var keywordFilters = []string{"score 70+", "score 30-69", "score <30"}

func scoreBand(score int) string {
	switch model.SeverityForScore(float64(score)) {
	case model.SeverityHigh:
		return keywordFilters[0]
	case model.SeverityMedium:
		return keywordFilters[1]
	default:
		return keywordFilters[2]
	}
}

// statusOf feeds the inline status picker its current value.
func statusOf(c model.Case) string { return strings.ToLower(string(c.Status)) }

// CaseColumns returns the cases screen columns. The list output sorts and
// prints with the same columns as the screens.
func CaseColumns() []table.Column[model.Case] { return caseColumns() }

// CaseMatcher returns the search and tag matcher of the cases screen.
func CaseMatcher() table.Matcher[model.Case] { return caseMatcher }

func WatchlistColumns() []table.Column[model.WatchlistEntry] { return watchlistColumns() }

func WatchlistMatcher() table.Matcher[model.WatchlistEntry] { return watchlistMatcher }

func KeywordColumns() []table.Column[model.Keyword] { return keywordColumns() }

func KeywordMatcher() table.Matcher[model.Keyword] { return keywordMatcher }
