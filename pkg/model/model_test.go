package model

import (
	"errors"
	"testing"
	"time"
)

func TestSeverityForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  Severity
	}{
		{0, SeverityLow},
		{29.9, SeverityLow},
		{30, SeverityMedium},
		{69, SeverityMedium},
		{70, SeverityHigh},
		{100, SeverityHigh},
	}
	for _, tt := range tests {
		if got := SeverityForScore(tt.score); got != tt.want {
			t.Errorf("SeverityForScore(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestSeverityRankOrdersBands(t *testing.T) {
	if !(SeverityLow.Rank() < SeverityMedium.Rank() && SeverityMedium.Rank() < SeverityHigh.Rank()) {
		t.Fatal("expected low < medium < high")
	}
	if Severity("unknown").Rank() != 0 {
		t.Error("unknown severity should rank 0")
	}
}

func TestStatusValidity(t *testing.T) {
	if !StatusPending.IsValid() {
		t.Error("pending should be valid")
	}
	if Status("archived").IsValid() {
		t.Error("archived should not be valid")
	}
	if !StatusClosed.IsTerminal() || StatusOpen.IsTerminal() {
		t.Error("terminal statuses misclassified")
	}
}

func TestCaseValidate(t *testing.T) {
	c := Case{ID: "1", Source: "+1234567890", RiskScore: 85}
	if err := c.Validate(); err != nil {
		t.Fatalf("expected valid case, got %v", err)
	}
	c.RiskScore = 120
	if err := c.Validate(); err == nil {
		t.Error("expected out-of-range score to fail")
	}
	if err := (Case{Source: "x"}).Validate(); err == nil {
		t.Error("expected empty id to fail")
	}
}

func TestCaseRiskFactorsAndFileURL(t *testing.T) {
	c := Case{ID: "1", RiskScore: 60, WavFileID: "abc"}
	f := c.RiskFactors()
	if len(f) != 3 || f[0].Impact != 20 || f[1].Impact != 30 || f[2].Impact != 10 {
		t.Fatalf("unexpected risk factors: %+v", f)
	}
	if c.FileURL() != "/files/abc" {
		t.Errorf("unexpected file url %q", c.FileURL())
	}
	if (Case{}).FileURL() != "" {
		t.Error("case without recording should have no file url")
	}
}

func TestWatchlistEntry(t *testing.T) {
	w := WatchlistEntry{Name: "John Doe", PhoneNumber: "+1234567890", LastMentioned: time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)}
	if err := w.Validate(); err != nil {
		t.Fatalf("expected valid entry, got %v", err)
	}
	if !w.NeverMentioned() {
		t.Error("year-1 timestamp should count as never mentioned")
	}
	if err := (WatchlistEntry{Name: "x"}).Validate(); err == nil {
		t.Error("expected missing phone to fail")
	}
}

func TestParseKeywordLines(t *testing.T) {
	text := "offshore,finance,40\n\nurgent,pressure,25\nlegacy,10\n"
	kws, err := ParseKeywordLines(text)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(kws) != 3 {
		t.Fatalf("expected 3 keywords, got %d", len(kws))
	}
	if kws[0].Word != "offshore" || kws[0].Category != "finance" || kws[0].Score != 40 {
		t.Errorf("unexpected first keyword %+v", kws[0])
	}
	if kws[2].Word != "legacy" || kws[2].Score != 10 {
		t.Errorf("unexpected two-field keyword %+v", kws[2])
	}
	if kws[0].Line() != "offshore,finance,40" {
		t.Errorf("unexpected line %q", kws[0].Line())
	}
}

func TestParseScoreRejectsNonNumeric(t *testing.T) {
	_, err := ParseScore("ten")
	var se *ScoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected ScoreError, got %v", err)
	}
	if _, err := ParseKeywordLines("word,cat,abc"); err == nil {
		t.Error("expected malformed score to fail")
	}
}
