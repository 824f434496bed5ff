// Package loader reads casedesk records from JSONL exports and fetches the
// three collections at startup.
package loader

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/casedesk/pkg/model"
)

// DefaultMaxBufferSize is the longest line read at once (10MB). Case
// transcripts can be long.
const DefaultMaxBufferSize = 1024 * 1024 * 10

// ParseOptions configures JSONL parsing.
type ParseOptions[R any] struct {
	// WarningHandler is called with warning messages (e.g., malformed JSON).
	// If nil, warnings are printed to os.Stderr.
	WarningHandler func(string)

	// BufferSize sets the maximum line size in bytes. Longer lines are
	// skipped with a warning. If 0, uses DefaultMaxBufferSize.
	BufferSize int

	// Normalize runs on each decoded record before validation.
	Normalize func(*R)

	// Validate rejects a record; rejected lines are skipped with a warning.
	Validate func(R) error
}

// ParseJSONL parses one record per line. Blank lines are ignored and a
// leading UTF-8 BOM is stripped. Malformed or invalid lines are skipped with
// a warning; only read errors fail the whole parse.
func ParseJSONL[R any](r io.Reader, opts ParseOptions[R]) ([]R, error) {
	maxCapacity := opts.BufferSize
	if maxCapacity <= 0 {
		maxCapacity = DefaultMaxBufferSize
	}
	reader := bufio.NewReaderSize(r, maxCapacity)

	warn := opts.WarningHandler
	if warn == nil {
		if os.Getenv("CASEDESK_ROBOT") == "1" {
			warn = func(string) {}
		} else {
			warn = func(msg string) {
				fmt.Fprintf(os.Stderr, "Warning: %s\n", msg)
			}
		}
	}

	var out []R
	lineNum := 0
	for {
		lineNum++
		line, isPrefix, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading records at line %d: %w", lineNum, err)
		}

		if isPrefix {
			warn(fmt.Sprintf("skipping line %d: line too long (exceeds %d bytes)", lineNum, maxCapacity))
			if err := discardRest(reader); err != nil {
				return nil, fmt.Errorf("error skipping long line at line %d: %w", lineNum, err)
			}
			continue
		}

		if lineNum == 1 {
			line = stripBOM(line)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var rec R
		if err := json.Unmarshal(line, &rec); err != nil {
			warn(fmt.Sprintf("skipping malformed JSON on line %d: %v", lineNum, err))
			continue
		}
		if opts.Normalize != nil {
			opts.Normalize(&rec)
		}
		if opts.Validate != nil {
			if err := opts.Validate(rec); err != nil {
				warn(fmt.Sprintf("skipping invalid record on line %d: %v", lineNum, err))
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func discardRest(reader *bufio.Reader) error {
	for {
		_, isPrefix, err := reader.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if !isPrefix {
			return nil
		}
	}
}

// ParseCases parses a JSONL case export. Statuses are lower-cased and
// trimmed, and a missing severity is derived from the risk score.
func ParseCases(r io.Reader, warn func(string)) ([]model.Case, error) {
	return ParseJSONL(r, ParseOptions[model.Case]{
		WarningHandler: warn,
		Normalize:      normalizeCase,
		Validate:       model.Case.Validate,
	})
}

// ParseWatchlist parses a JSONL watchlist export.
func ParseWatchlist(r io.Reader, warn func(string)) ([]model.WatchlistEntry, error) {
	return ParseJSONL(r, ParseOptions[model.WatchlistEntry]{
		WarningHandler: warn,
		Validate:       model.WatchlistEntry.Validate,
	})
}

// LoadCasesFromFile reads a JSONL case export.
func LoadCasesFromFile(path string) ([]model.Case, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no case export found at %s", path)
		}
		return nil, fmt.Errorf("failed to open case export: %w", err)
	}
	defer f.Close()
	return ParseCases(f, nil)
}

// LoadWatchlistFromFile reads a JSONL watchlist export.
func LoadWatchlistFromFile(path string) ([]model.WatchlistEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no watchlist export found at %s", path)
		}
		return nil, fmt.Errorf("failed to open watchlist export: %w", err)
	}
	defer f.Close()
	return ParseWatchlist(f, nil)
}

// ParseKeywords reads a keyword list with one "word,category,score" line
// per keyword. IDs are assigned in file order from 1.
func ParseKeywords(r io.Reader) ([]model.Keyword, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading keywords: %w", err)
	}
	out, err := model.ParseKeywordLines(string(stripBOM(data)))
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].ID = i + 1
	}
	return out, nil
}

// LoadKeywordsFromFile reads a keyword list file.
func LoadKeywordsFromFile(path string) ([]model.Keyword, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyword list: %w", err)
	}
	defer f.Close()
	return ParseKeywords(f)
}

// WriteJSONL writes one record per line.
func WriteJSONL[R any](w io.Writer, records []R) error {
	enc := json.NewEncoder(w)
	for i, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
	}
	return nil
}

// stripBOM removes the UTF-8 Byte Order Mark if present
func stripBOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}

func normalizeCase(c *model.Case) {
	if s := strings.ToLower(strings.TrimSpace(string(c.Status))); s != "" {
		c.Status = model.Status(s)
	}
	if c.Severity == "" {
		c.Severity = model.SeverityForScore(c.RiskScore)
	}
}
