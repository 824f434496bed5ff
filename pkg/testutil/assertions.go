package testutil

import (
	json "github.com/goccy/go-json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/casedesk/pkg/model"
)

// AssertCaseCount verifies the expected number of cases.
func AssertCaseCount(t *testing.T, cases []model.Case, expected int) {
	t.Helper()
	if len(cases) != expected {
		t.Errorf("expected %d cases, got %d", expected, len(cases))
	}
}

// AssertNoDuplicateIDs verifies all case IDs are unique.
func AssertNoDuplicateIDs(t *testing.T, cases []model.Case) {
	t.Helper()
	seen := make(map[string]bool)
	for _, c := range cases {
		if seen[c.ID] {
			t.Errorf("duplicate case ID: %s", c.ID)
		}
		seen[c.ID] = true
	}
}

// AssertAllValid verifies all cases pass validation.
func AssertAllValid(t *testing.T, cases []model.Case) {
	t.Helper()
	for i, c := range cases {
		if err := c.Validate(); err != nil {
			t.Errorf("case %d (%s) invalid: %v", i, c.ID, err)
		}
	}
}

// AssertIDs verifies the order of a sequence of IDs.
func AssertIDs[R any](t *testing.T, records []R, id func(R) string, want ...string) {
	t.Helper()
	got := make([]string, len(records))
	for i, r := range records {
		got[i] = id(r)
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ids = %v, want %v", got, want)
	}
}

// AssertStatusCounts verifies the count of cases in each status.
func AssertStatusCounts(t *testing.T, cases []model.Case, want map[model.Status]int) {
	t.Helper()
	counts := make(map[model.Status]int)
	for _, c := range cases {
		counts[c.Status]++
	}
	for status, n := range want {
		if counts[status] != n {
			t.Errorf("expected %d %s cases, got %d", n, status, counts[status])
		}
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
// Useful for comparing structs that may have different Go representations
// but equivalent JSON forms.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()

	path := g.Path()

	if g.update {
		// Update golden file
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	// Compare against golden file
	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != actual {
		// Find first difference for helpful error message
		expectedLines := strings.Split(string(expected), "\n")
		actualLines := strings.Split(actual, "\n")

		for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
			var expLine, actLine string
			if i < len(expectedLines) {
				expLine = expectedLines[i]
			}
			if i < len(actualLines) {
				actLine = actualLines[i]
			}
			if expLine != actLine {
				g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s\n\nFull diff (expected vs actual):\n%s\nvs\n%s",
					i+1, expLine, actLine, string(expected), actual)
				return
			}
		}
		g.t.Errorf("golden file mismatch (length differs)")
	}
}

// AssertJSON compares actual value as JSON against the golden file.
func (g *GoldenFile) AssertJSON(actual any) {
	g.t.Helper()

	data, err := json.MarshalIndent(actual, "", "  ")
	if err != nil {
		g.t.Fatalf("failed to marshal actual value: %v", err)
	}

	g.Assert(string(data))
}
