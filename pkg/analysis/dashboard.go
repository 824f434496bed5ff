// Package analysis computes the dashboard figures and case link clusters
// shown next to the tables.
package analysis

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/casedesk/pkg/model"
)

// RiskStats summarizes the risk score distribution.
type RiskStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// MonthCount is the number of cases received in one calendar month.
type MonthCount struct {
	Month string `json:"month"` // 2006-01
	Cases int    `json:"cases"`
}

// KeywordCount is how many cases flagged a keyword.
type KeywordCount struct {
	Word  string `json:"word"`
	Cases int    `json:"cases"`
}

// Dashboard holds the summary figures for the dashboard line and
// --robot-summary.
type Dashboard struct {
	TotalCases           int                    `json:"total_cases"`
	NewAlerts            int                    `json:"new_alerts"`
	ActiveCases          int                    `json:"active_cases"`
	HighRiskCases        int                    `json:"high_risk_cases"`
	ResolutionRate       float64                `json:"resolution_rate"`
	WeeklyResolutionRate float64                `json:"weekly_resolution_rate"`
	TrackedIndividuals   int                    `json:"tracked_individuals"`
	HighRiskIndividuals  int                    `json:"high_risk_individuals"`
	NeverMentioned       int                    `json:"never_mentioned"`
	Keywords             int                    `json:"keywords"`
	BySeverity           map[model.Severity]int `json:"by_severity"`
	ByStatus             map[model.Status]int   `json:"by_status"`
	Risk                 RiskStats              `json:"risk"`
	Trend                []MonthCount           `json:"trend"`
	TopKeywords          []KeywordCount         `json:"top_keywords"`
	GeneratedAt          time.Time              `json:"generated_at"`
}

// TrendMonths is how many calendar months Trend covers, ending at now.
const TrendMonths = 6

// topKeywordLimit caps Dashboard.TopKeywords.
const topKeywordLimit = 5

// ComputeDashboard derives the dashboard from the loaded collections.
// Rates are fractions in [0, 1]; an empty set yields 0.
func ComputeDashboard(cases []model.Case, watchlist []model.WatchlistEntry, keywords []model.Keyword, now time.Time) Dashboard {
	d := Dashboard{
		TotalCases:         len(cases),
		TrackedIndividuals: len(watchlist),
		Keywords:           len(keywords),
		BySeverity:         make(map[model.Severity]int),
		ByStatus:           make(map[model.Status]int),
		GeneratedAt:        now,
	}

	scores := make([]float64, 0, len(cases))
	flagged := make(map[string]int)
	weekAgo := now.AddDate(0, 0, -7)
	var resolved, weekly, weeklyResolved int

	for _, c := range cases {
		scores = append(scores, c.RiskScore)
		sev := c.Severity
		if sev == "" {
			sev = model.SeverityForScore(c.RiskScore)
		}
		d.BySeverity[sev]++
		d.ByStatus[c.Status]++

		if sev == model.SeverityHigh {
			d.HighRiskCases++
		}
		if c.Status == model.StatusNew {
			d.NewAlerts++
		}
		if c.Status.IsTerminal() {
			resolved++
		} else {
			d.ActiveCases++
		}
		if !c.Timestamp.Before(weekAgo) && !c.Timestamp.After(now) {
			weekly++
			if c.Status.IsTerminal() {
				weeklyResolved++
			}
		}
		seen := make(map[string]bool, len(c.FlaggedKeywords))
		for _, kw := range c.FlaggedKeywords {
			if !seen[kw] {
				seen[kw] = true
				flagged[kw]++
			}
		}
	}

	d.ResolutionRate = ratio(resolved, len(cases))
	d.WeeklyResolutionRate = ratio(weeklyResolved, weekly)
	d.Risk = riskStats(scores)
	d.Trend = monthlyTrend(cases, now)
	d.TopKeywords = topKeywords(flagged, topKeywordLimit)

	for _, w := range watchlist {
		if w.RiskLevel == model.RiskHigh {
			d.HighRiskIndividuals++
		}
		if w.NeverMentioned() {
			d.NeverMentioned++
		}
	}
	return d
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func riskStats(scores []float64) RiskStats {
	if len(scores) == 0 {
		return RiskStats{}
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)

	rs := RiskStats{
		Mean:   stat.Mean(sorted, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		rs.StdDev = stat.StdDev(sorted, nil)
	}
	return rs
}

func monthlyTrend(cases []model.Case, now time.Time) []MonthCount {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(TrendMonths - 1), 0)
	out := make([]MonthCount, TrendMonths)
	index := make(map[string]int, TrendMonths)
	for i := range out {
		m := first.AddDate(0, i, 0).Format("2006-01")
		out[i].Month = m
		index[m] = i
	}
	for _, c := range cases {
		if i, ok := index[c.Timestamp.In(now.Location()).Format("2006-01")]; ok {
			out[i].Cases++
		}
	}
	return out
}

func topKeywords(counts map[string]int, limit int) []KeywordCount {
	out := make([]KeywordCount, 0, len(counts))
	for w, n := range counts {
		out = append(out, KeywordCount{Word: w, Cases: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cases != out[j].Cases {
			return out[i].Cases > out[j].Cases
		}
		return out[i].Word < out[j].Word
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
