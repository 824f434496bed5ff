package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/casedesk/pkg/analysis"
	"github.com/vanderheijden86/casedesk/pkg/debug"
	"github.com/vanderheijden86/casedesk/pkg/model"
)

// detailPane shows one case as rendered markdown.
type detailPane struct {
	caseID   string
	viewport viewport.Model
	renderer *glamour.TermRenderer
	wrap     int
	theme    Theme
}

func newDetailPane(theme Theme) detailPane {
	return detailPane{viewport: viewport.New(0, 0), theme: theme}
}

// SetSize resizes the pane. The markdown renderer is rebuilt when the wrap
// width changes.
func (d *detailPane) SetSize(width, height int) {
	d.viewport.Width = width
	d.viewport.Height = height
	wrap := width - 4
	if wrap < 20 {
		wrap = 20
	}
	if wrap != d.wrap || d.renderer == nil {
		d.wrap = wrap
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			debug.Log("detail: glamour renderer: %v", err)
			r = nil
		}
		d.renderer = r
	}
}

// Show renders c with its links into the pane and scrolls to the top.
func (d *detailPane) Show(c model.Case, links *analysis.Links, backendURL string) {
	d.caseID = c.ID
	md := caseMarkdown(c, links, backendURL)
	out := md
	if d.renderer != nil {
		if rendered, err := d.renderer.Render(md); err == nil {
			out = rendered
		} else {
			debug.Log("detail: render %s: %v", c.ID, err)
		}
	}
	header := RenderStatusBadge(c.Status, d.theme) + " " + RenderLevelBadge(string(c.Severity), d.theme) +
		" " + d.theme.PrimaryBold.Render(c.ID)
	d.viewport.SetContent(header + "\n" + out)
	d.viewport.GotoTop()
}

func (d *detailPane) Clear() {
	d.caseID = ""
	d.viewport.SetContent("")
}

func (d detailPane) View() string {
	if d.caseID == "" {
		return d.theme.MutedText.Render("Select a case and press enter for details.")
	}
	return d.viewport.View()
}

// caseMarkdown is the detail pane source, separate from rendering so it can
// be checked without a terminal.
func caseMarkdown(c model.Case, links *analysis.Links, backendURL string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Case %s\n\n", c.ID)
	fmt.Fprintf(&sb, "| | |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Source | %s |\n", c.Source)
	fmt.Fprintf(&sb, "| Type | %s |\n", c.Type)
	fmt.Fprintf(&sb, "| Status | %s |\n", c.Status)
	fmt.Fprintf(&sb, "| Severity | %s |\n", c.Severity)
	fmt.Fprintf(&sb, "| Risk score | %.0f |\n", c.RiskScore)
	if !c.Timestamp.IsZero() {
		fmt.Fprintf(&sb, "| Received | %s |\n", c.Timestamp.Local().Format("2006-01-02 15:04"))
	}
	if c.Duration != "" {
		fmt.Fprintf(&sb, "| Duration | %s |\n", c.Duration)
	}
	if url := c.FileURL(); url != "" {
		fmt.Fprintf(&sb, "| Recording | %s%s |\n", strings.TrimRight(backendURL, "/"), url)
	}

	sb.WriteString("\n## Risk factors\n\n")
	for _, f := range c.RiskFactors() {
		fmt.Fprintf(&sb, "- **%s** (%.1f): %s\n", f.Name, f.Impact, f.Description)
	}

	if c.Summary != "" {
		fmt.Fprintf(&sb, "\n## Summary\n\n%s\n", c.Summary)
	}
	if len(c.FlaggedKeywords) > 0 {
		fmt.Fprintf(&sb, "\n## Flagged keywords\n\n`%s`\n", strings.Join(c.FlaggedKeywords, "` `"))
	}
	if len(c.Reason) > 0 {
		sb.WriteString("\n## Reasons\n\n")
		for _, r := range c.Reason {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}

	if links != nil {
		if hits := links.WatchlistHits(c.ID); len(hits) > 0 {
			sb.WriteString("\n## Watchlist matches\n\n")
			for _, w := range hits {
				fmt.Fprintf(&sb, "- **%s** %s (%s risk)\n", w.Name, w.PhoneNumber, w.RiskLevel)
			}
		}
		if linked := links.Linked(c.ID); len(linked) > 0 {
			fmt.Fprintf(&sb, "\n## Linked cases (%d)\n\n%s\n", len(linked), strings.Join(linked, ", "))
		}
	}

	if c.Script != "" {
		fmt.Fprintf(&sb, "\n## Transcript\n\n> %s\n", strings.ReplaceAll(c.Script, "\n", "\n> "))
	}
	return sb.String()
}
