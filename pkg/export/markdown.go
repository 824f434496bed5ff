// Package export writes the loaded collections out as a standalone
// markdown case report.
package export

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/vanderheijden86/casedesk/pkg/analysis"
	"github.com/vanderheijden86/casedesk/pkg/model"
)

// Package-level compiled regex for slug creation (avoids recompilation per call)
var slugNonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeMermaidID ensures an ID is valid for Mermaid diagrams.
// Mermaid node IDs must be alphanumeric with hyphens/underscores.
func sanitizeMermaidID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	result := sb.String()
	if result == "" {
		return "node"
	}
	return result
}

// sanitizeMermaidText prepares text for use in Mermaid node labels.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := replacer.Replace(text)

	result = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, result)

	result = strings.TrimSpace(result)

	// Truncate if too long (UTF-8 safe using runes)
	runes := []rune(result)
	if len(runes) > 40 {
		result = string(runes[:37]) + "..."
	}

	return result
}

// Report is everything one export covers.
type Report struct {
	Title     string
	Cases     []model.Case
	Watchlist []model.WatchlistEntry
	Keywords  []model.Keyword
	Now       time.Time
}

// GenerateMarkdown renders the report: dashboard figures, a table of
// contents, the link graph and one section per case. Cases appear in the
// order given.
func GenerateMarkdown(r Report) string {
	var sb strings.Builder
	now := r.Now
	if now.IsZero() {
		now = time.Now()
	}
	title := r.Title
	if title == "" {
		title = "Case Report"
	}
	dash := analysis.ComputeDashboard(r.Cases, r.Watchlist, r.Keywords, now)
	links := analysis.LinkCases(r.Cases, r.Watchlist)

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", now.Format(time.RFC1123)))

	// Summary Statistics
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Total cases** | %d |\n", dash.TotalCases))
	sb.WriteString(fmt.Sprintf("| New alerts | %d |\n", dash.NewAlerts))
	sb.WriteString(fmt.Sprintf("| Active | %d |\n", dash.ActiveCases))
	sb.WriteString(fmt.Sprintf("| High risk | %d |\n", dash.HighRiskCases))
	sb.WriteString(fmt.Sprintf("| Resolution rate | %.0f%% |\n", dash.ResolutionRate*100))
	sb.WriteString(fmt.Sprintf("| Watchlist | %d (%d high risk) |\n", dash.TrackedIndividuals, dash.HighRiskIndividuals))
	sb.WriteString(fmt.Sprintf("| Keywords | %d |\n", dash.Keywords))
	sb.WriteString(fmt.Sprintf("| Linked groups | %d |\n\n", len(links.Clusters())))

	if dash.TotalCases > 0 {
		sb.WriteString("### Risk scores\n\n")
		sb.WriteString(fmt.Sprintf("Mean %.1f, median %.1f, P90 %.1f, max %.1f.\n\n",
			dash.Risk.Mean, dash.Risk.Median, dash.Risk.P90, dash.Risk.Max))
	}
	if len(dash.TopKeywords) > 0 {
		sb.WriteString("### Most flagged keywords\n\n")
		for _, k := range dash.TopKeywords {
			sb.WriteString(fmt.Sprintf("- `%s` in %d case(s)\n", k.Word, k.Cases))
		}
		sb.WriteString("\n")
	}

	// Precompute stable, unique slugs for TOC anchors and headings.
	slugCounts := make(map[string]int, len(r.Cases))
	slugs := make([]string, len(r.Cases))
	for idx, c := range r.Cases {
		slugs[idx] = uniqueSlug(createSlug(caseHeadingText(c)), slugCounts)
	}

	sb.WriteString("## Table of Contents\n\n")
	for idx, c := range r.Cases {
		sb.WriteString(fmt.Sprintf("- [%s %s](#%s)\n", getSeverityEmoji(c.Severity), caseHeadingText(c), slugs[idx]))
	}
	sb.WriteString("\n---\n\n")

	if len(links.Clusters()) > 0 {
		sb.WriteString("## Linked Cases\n\n")
		sb.WriteString("```mermaid\n")
		sb.WriteString(GenerateLinkGraph(r.Cases, links, MermaidConfig{LinkedOnly: true}))
		sb.WriteString("```\n\n")
		sb.WriteString("---\n\n")
	}

	for idx, c := range r.Cases {
		sb.WriteString(fmt.Sprintf("<a id=\"%s\"></a>\n\n", slugs[idx]))
		sb.WriteString(fmt.Sprintf("## %s\n\n", caseHeadingText(c)))

		sb.WriteString("| Property | Value |\n|----------|-------|\n")
		sb.WriteString(fmt.Sprintf("| **Source** | %s |\n", escapeCell(c.Source)))
		sb.WriteString(fmt.Sprintf("| **Type** | %s |\n", escapeCell(c.Type)))
		sb.WriteString(fmt.Sprintf("| **Status** | %s |\n", c.Status))
		sb.WriteString(fmt.Sprintf("| **Severity** | %s %s |\n", getSeverityEmoji(c.Severity), c.Severity))
		sb.WriteString(fmt.Sprintf("| **Risk score** | %.0f |\n", c.RiskScore))
		if !c.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf("| **Received** | %s |\n", c.Timestamp.Format("2006-01-02 15:04")))
		}
		if len(c.FlaggedKeywords) > 0 {
			escaped := make([]string, len(c.FlaggedKeywords))
			for i, k := range c.FlaggedKeywords {
				escaped[i] = escapeCell(k)
			}
			sb.WriteString(fmt.Sprintf("| **Keywords** | %s |\n", strings.Join(escaped, ", ")))
		}
		sb.WriteString("\n")

		if c.Summary != "" {
			sb.WriteString("### Summary\n\n")
			sb.WriteString(c.Summary + "\n\n")
		}

		if hits := links.WatchlistHits(c.ID); len(hits) > 0 {
			sb.WriteString("### Watchlist\n\n")
			for _, w := range hits {
				sb.WriteString(fmt.Sprintf("- ⚠️ **%s** %s (%s risk)\n", w.Name, w.PhoneNumber, w.RiskLevel))
			}
			sb.WriteString("\n")
		}

		if linked := links.Linked(c.ID); len(linked) > 0 {
			sb.WriteString("### Linked cases\n\n")
			for _, id := range linked {
				sb.WriteString(fmt.Sprintf("- 🔗 `%s`\n", id))
			}
			sb.WriteString("\n")
		}

		if c.Script != "" {
			sb.WriteString("### Transcript\n\n")
			sb.WriteString("> " + strings.ReplaceAll(c.Script, "\n", "\n> ") + "\n\n")
		}

		sb.WriteString("---\n\n")
	}

	return sb.String()
}

func caseHeadingText(c model.Case) string {
	return fmt.Sprintf("%s %s", c.ID, c.Type)
}

// escapeCell keeps a value on one table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	return strings.ReplaceAll(s, "|", "\\|")
}

func uniqueSlug(base string, counts map[string]int) string {
	if base == "" {
		base = "section"
	}
	if count, ok := counts[base]; ok {
		count++
		counts[base] = count
		return fmt.Sprintf("%s-%d", base, count)
	}
	counts[base] = 0
	return base
}

// createSlug creates a URL-friendly slug from heading text.
func createSlug(text string) string {
	slug := strings.ToLower(text)
	slug = slugNonAlphanumericRegex.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	return slug
}

func getSeverityEmoji(s model.Severity) string {
	switch s {
	case model.SeverityHigh:
		return "🔴"
	case model.SeverityMedium:
		return "🟠"
	case model.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

// SaveMarkdownToFile writes the report with open cases first, then by risk
// score, then newest first.
func SaveMarkdownToFile(r Report, filename string) error {
	// Make a copy to avoid mutating the caller's slice
	cases := make([]model.Case, len(r.Cases))
	copy(cases, r.Cases)

	sort.SliceStable(cases, func(i, j int) bool {
		iDone := cases[i].Status.IsTerminal()
		jDone := cases[j].Status.IsTerminal()
		if iDone != jDone {
			return !iDone
		}
		if cases[i].RiskScore != cases[j].RiskScore {
			return cases[i].RiskScore > cases[j].RiskScore
		}
		return cases[i].Timestamp.After(cases[j].Timestamp)
	})
	r.Cases = cases

	return os.WriteFile(filename, []byte(GenerateMarkdown(r)), 0644)
}
