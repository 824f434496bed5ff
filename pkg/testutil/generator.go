// Package testutil provides deterministic fixtures and fakes for casedesk
// tests.
package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/vanderheijden86/casedesk/pkg/model"
)

// GeneratorConfig controls fixture generation.
type GeneratorConfig struct {
	Seed      int64          // Random seed for determinism (0 = use current time)
	IDPrefix  string         // Prefix for case IDs (default: "CASE")
	BaseTime  time.Time      // Timestamp of the first case (default: fixed time)
	StatusMix []model.Status // Status distribution (nil = all new)
	Keywords  []string       // Keyword pool for flagged keywords and scripts
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:      42, // Deterministic
		IDPrefix:  "CASE",
		BaseTime:  time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		StatusMix: []model.Status{model.StatusNew},
		Keywords:  []string{"offshore", "urgent", "gift card", "wire transfer", "verify"},
	}
}

// Generator produces reproducible cases, watchlist entries and keywords.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	def := DefaultConfig()
	if cfg.BaseTime.IsZero() {
		cfg.BaseTime = def.BaseTime
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = def.IDPrefix
	}
	if len(cfg.StatusMix) == 0 {
		cfg.StatusMix = def.StatusMix
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = def.Keywords
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// Cases returns n cases one hour apart with random scores.
func (g *Generator) Cases(n int) []model.Case {
	out := make([]model.Case, 0, n)
	for i := 0; i < n; i++ {
		score := float64(g.rng.Intn(101))
		kw := g.cfg.Keywords[g.rng.Intn(len(g.cfg.Keywords))]
		out = append(out, model.Case{
			ID:              fmt.Sprintf("%s-%d", g.cfg.IDPrefix, i+1),
			Source:          fmt.Sprintf("+1555%07d", g.rng.Intn(10_000_000)),
			Severity:        model.SeverityForScore(score),
			Status:          g.cfg.StatusMix[g.rng.Intn(len(g.cfg.StatusMix))],
			Type:            "Phone Call",
			Timestamp:       g.cfg.BaseTime.Add(time.Duration(i) * time.Hour),
			RiskScore:       score,
			FlaggedKeywords: []string{kw},
			Script:          fmt.Sprintf("caller mentioned %s twice", kw),
			Summary:         fmt.Sprintf("Possible fraud involving %s.", kw),
			Duration:        fmt.Sprintf("%02d:%02d", g.rng.Intn(10), g.rng.Intn(60)),
			WavFileID:       fmt.Sprintf("wav%04d", i+1),
		})
	}
	return out
}

// Watchlist returns n watchlist entries cycling through risk levels.
func (g *Generator) Watchlist(n int) []model.WatchlistEntry {
	levels := []model.RiskLevel{model.RiskLow, model.RiskMedium, model.RiskHigh}
	out := make([]model.WatchlistEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.WatchlistEntry{
			ID:            fmt.Sprintf("W%d", i+1),
			UserID:        fmt.Sprintf("user%d", i+1),
			Name:          fmt.Sprintf("Person %d", i+1),
			PhoneNumber:   fmt.Sprintf("+1555%07d", g.rng.Intn(10_000_000)),
			RiskLevel:     levels[i%len(levels)],
			LastMentioned: g.cfg.BaseTime.Add(-time.Duration(g.rng.Intn(72)) * time.Hour),
		})
	}
	return out
}

// Keywords returns one keyword per pool entry with IDs 1..n.
func (g *Generator) Keywords() []model.Keyword {
	out := make([]model.Keyword, 0, len(g.cfg.Keywords))
	for i, w := range g.cfg.Keywords {
		out = append(out, model.Keyword{
			ID:       i + 1,
			Word:     w,
			Category: "fraud",
			Score:    10 + g.rng.Intn(90),
		})
	}
	return out
}

// QuickCases returns n cases from the default generator.
func QuickCases(n int) []model.Case {
	return NewDefault().Cases(n)
}
