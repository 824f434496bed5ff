package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vanderheijden86/casedesk/pkg/analysis"
	"github.com/vanderheijden86/casedesk/pkg/model"
)

var reportNow = time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC)

func reportCases() []model.Case {
	return []model.Case{
		{ID: "c1", Source: "+15550100", Type: "Phone Call", Status: model.StatusNew, Severity: model.SeverityHigh, RiskScore: 90, RelatedEntities: []string{"Acme"}, FlaggedKeywords: []string{"gift card"}},
		{ID: "c2", Source: "+15550200", Type: "SMS", Status: model.StatusResolved, Severity: model.SeverityLow, RiskScore: 10, RelatedEntities: []string{"acme"}},
		{ID: "c3", Source: "+15550300", Type: "Phone Call", Status: model.StatusOpen, Severity: model.SeverityMedium, RiskScore: 50, Summary: "Pipe | in text", Script: "hello\nthere"},
	}
}

func TestGenerateMarkdown(t *testing.T) {
	md := GenerateMarkdown(Report{
		Title:     "Weekly",
		Cases:     reportCases(),
		Watchlist: []model.WatchlistEntry{{ID: "w1", Name: "Ann", PhoneNumber: "+15550100", RiskLevel: model.RiskHigh}},
		Keywords:  []model.Keyword{{ID: 1, Word: "gift card", Score: 80}},
		Now:       reportNow,
	})

	for _, want := range []string{
		"# Weekly",
		"| **Total cases** | 3 |",
		"| Linked groups | 1 |",
		"- `gift card` in 1 case(s)",
		"- [🔴 c1 Phone Call](#c1-phone-call)",
		"```mermaid\ngraph LR",
		"c1 --- c2",
		"<a id=\"c3-phone-call\"></a>",
		"- ⚠️ **Ann** +15550100 (high risk)",
		"- 🔗 `c2`",
		"> hello\n> there",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	if strings.Contains(md, "c3[") {
		t.Error("link graph should leave out unlinked cases")
	}
}

func TestGenerateMarkdownEmpty(t *testing.T) {
	md := GenerateMarkdown(Report{Now: reportNow})
	if !strings.Contains(md, "# Case Report") || !strings.Contains(md, "| **Total cases** | 0 |") {
		t.Errorf("unexpected empty report:\n%s", md)
	}
	if strings.Contains(md, "mermaid") || strings.Contains(md, "Risk scores") {
		t.Error("empty report should not draw a graph or risk figures")
	}
}

func TestUniqueSlug(t *testing.T) {
	counts := map[string]int{}
	got := []string{
		uniqueSlug(createSlug("C1 Phone Call"), counts),
		uniqueSlug(createSlug("c1 phone-call"), counts),
		uniqueSlug(createSlug("!!!"), counts),
	}
	want := []string{"c1-phone-call", "c1-phone-call-1", "section"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slug %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGenerateLinkGraph(t *testing.T) {
	cases := reportCases()
	cases = append(cases, model.Case{ID: "c1/", Source: "[x]", RelatedEntities: []string{"acme"}})
	links := analysis.LinkCases(cases, nil)

	g := GenerateLinkGraph(cases, links, MermaidConfig{})
	if !strings.Contains(g, "class c1 high") || !strings.Contains(g, "class c2 done") {
		t.Errorf("classes missing:\n%s", g)
	}
	// "c1/" sanitizes to "c1" and must not collide with the real c1.
	if strings.Count(g, "    c1[") != 1 || !strings.Contains(g, "c1_") {
		t.Errorf("colliding IDs not separated:\n%s", g)
	}
	if !strings.Contains(g, "(x)") {
		t.Error("brackets in labels should be replaced")
	}

	empty := GenerateLinkGraph(cases[2:3], analysis.LinkCases(cases[2:3], nil), MermaidConfig{ShowNoLinksNode: true})
	if !strings.Contains(empty, "NoLinks") {
		t.Error("expected placeholder node")
	}
}

func TestSaveMarkdownToFileOrdersOpenFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.md")
	cases := reportCases()
	if err := SaveMarkdownToFile(Report{Cases: cases, Now: reportNow}, path); err != nil {
		t.Fatal(err)
	}
	if cases[0].ID != "c1" || cases[1].ID != "c2" {
		t.Error("caller's slice was reordered")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	md := string(data)
	i1, i3, i2 := strings.Index(md, "## c1 "), strings.Index(md, "## c3 "), strings.Index(md, "## c2 ")
	if i1 < 0 || !(i1 < i3 && i3 < i2) {
		t.Errorf("section order c1 %d, c3 %d, c2 %d", i1, i3, i2)
	}
}
