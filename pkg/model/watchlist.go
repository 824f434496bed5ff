package model

import (
	"errors"
	"strings"
	"time"
)

// RiskLevel grades how closely a watchlisted person is monitored.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskLevels lists the selectable risk levels.
func RiskLevels() []string {
	return []string{string(RiskLow), string(RiskMedium), string(RiskHigh)}
}

// WatchlistEntry is a monitored individual.
type WatchlistEntry struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	PhoneNumber   string    `json:"phoneNumber"`
	RiskLevel     RiskLevel `json:"riskLevel"`
	LastMentioned time.Time `json:"lastMentioned"`
}

// Validate checks the fields every entry must carry.
func (w WatchlistEntry) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return errors.New("watchlist entry name cannot be empty")
	}
	if strings.TrimSpace(w.PhoneNumber) == "" {
		return errors.New("watchlist entry phone number cannot be empty")
	}
	return nil
}

// NeverMentioned reports whether the entry has not appeared in any call.
// The backend stores year 1 for that.
func (w WatchlistEntry) NeverMentioned() bool {
	return w.LastMentioned.IsZero() || w.LastMentioned.Year() <= 1
}
