package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Keyword is one entry of the suspicious-word list used to score calls.
type Keyword struct {
	ID       int    `json:"id"`
	Word     string `json:"word"`
	Category string `json:"category"`
	Score    int    `json:"score"`
}

// Line renders the keyword in the backend's "word,category,score" format.
func (k Keyword) Line() string {
	return fmt.Sprintf("%s,%s,%d", k.Word, k.Category, k.Score)
}

// ScoreError reports a score that is not an integer.
type ScoreError struct {
	Input string
}

func (e *ScoreError) Error() string {
	return fmt.Sprintf("score %q is not a number", e.Input)
}

// InvalidField names the rejected field.
func (e *ScoreError) InvalidField() string { return "score" }

// ParseScore parses a keyword score typed by the user.
func ParseScore(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &ScoreError{Input: s}
	}
	return v, nil
}

// ParseKeywordLine parses one "word,category,score" line. Older lists carry
// only "word,score".
func ParseKeywordLine(line string) (Keyword, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	switch len(parts) {
	case 2:
		score, err := ParseScore(parts[1])
		if err != nil {
			return Keyword{}, err
		}
		return Keyword{Word: strings.TrimSpace(parts[0]), Score: score}, nil
	case 3:
		score, err := ParseScore(parts[2])
		if err != nil {
			return Keyword{}, err
		}
		return Keyword{
			Word:     strings.TrimSpace(parts[0]),
			Category: strings.TrimSpace(parts[1]),
			Score:    score,
		}, nil
	default:
		return Keyword{}, fmt.Errorf("malformed keyword line %q", line)
	}
}

// ParseKeywordLines parses a newline separated keyword list, skipping blank
// lines. IDs are left zero; callers assign identities.
func ParseKeywordLines(text string) ([]Keyword, error) {
	var out []Keyword
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		k, err := ParseKeywordLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, k)
	}
	return out, nil
}
