// Package model defines the records casedesk browses: flagged call cases,
// watchlist entries and suspicious keywords.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Severity is the risk band a case falls in.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityForScore maps a 0-100 risk score to a severity band.
func SeverityForScore(score float64) Severity {
	switch {
	case score < 30:
		return SeverityLow
	case score < 70:
		return SeverityMedium
	default:
		return SeverityHigh
	}
}

// Rank orders severities low < medium < high. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

// Status is the review state of a case.
type Status string

const (
	StatusNew      Status = "new"
	StatusOpen     Status = "open"
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed"
	StatusResolved Status = "resolved"
	StatusClosed   Status = "closed"
)

// CaseStatuses lists the statuses offered by the inline status picker.
func CaseStatuses() []string {
	return []string{
		string(StatusNew),
		string(StatusOpen),
		string(StatusPending),
		string(StatusReviewed),
		string(StatusResolved),
		string(StatusClosed),
	}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	for _, known := range CaseStatuses() {
		if string(s) == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the case needs no further review.
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// Case is a flagged phone call.
type Case struct {
	ID              string    `json:"id"`
	Source          string    `json:"source"`
	Severity        Severity  `json:"severity"`
	Status          Status    `json:"status"`
	Type            string    `json:"type"`
	Timestamp       time.Time `json:"timestamp"`
	RiskScore       float64   `json:"riskScore"`
	FlaggedKeywords []string  `json:"flaggedKeywords,omitempty"`
	Reason          []string  `json:"reason,omitempty"`
	Script          string    `json:"script,omitempty"`
	Summary         string    `json:"summary,omitempty"`
	Duration        string    `json:"duration,omitempty"`
	RelatedEntities []string  `json:"related_entities,omitempty"`
	WavFileID       string    `json:"wav_file_id,omitempty"`
}

// Validate checks the fields every case must carry.
func (c Case) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("case id cannot be empty")
	}
	if strings.TrimSpace(c.Source) == "" {
		return fmt.Errorf("case %s: source cannot be empty", c.ID)
	}
	if c.RiskScore < 0 || c.RiskScore > 100 {
		return fmt.Errorf("case %s: risk score %.1f out of range 0-100", c.ID, c.RiskScore)
	}
	return nil
}

// RiskFactor is one weighted contribution shown in the case detail pane.
type RiskFactor struct {
	Name        string
	Impact      float64
	Description string
}

// RiskFactors splits the case score into the three factors the detail pane
// shows.
func (c Case) RiskFactors() []RiskFactor {
	return []RiskFactor{
		{Name: "Suspicious Keywords", Impact: c.RiskScore / 3, Description: "High-risk terms detected in the conversation"},
		{Name: "Call Pattern", Impact: c.RiskScore / 2, Description: "Unusual timing and frequency of calls"},
		{Name: "Historical Data", Impact: c.RiskScore / 6, Description: "Previous suspicious activity on this source"},
	}
}

// FileURL returns the download path of the case recording relative to the
// backend base URL, or "" when the case has no recording.
func (c Case) FileURL() string {
	if c.WavFileID == "" {
		return ""
	}
	return "/files/" + c.WavFileID
}
