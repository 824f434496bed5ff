// Package collection is the boundary between the table engine and the
// backend that stores cases, watchlist entries and keywords.
package collection

import (
	"context"
	"errors"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
)

// Sync is the set of remote operations a table needs from one collection.
// Implementations must be safe for concurrent use: calls are issued from
// tea.Cmd goroutines.
type Sync[K comparable, R any] interface {
	List(ctx context.Context) ([]R, error)
	Create(ctx context.Context, p Payload) (R, error)
	Update(ctx context.Context, id K, patch Patch) (R, error)
	Delete(ctx context.Context, id K) error
}

// Patch is a partial update with JSON merge semantics: a nil value removes
// the field.
type Patch map[string]any

// Keys returns the patched field names in sorted order.
func (p Patch) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the patch as compact JSON, for logs.
func (p Patch) String() string {
	data, err := json.Marshal(map[string]any(p))
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(p))
	}
	return string(data)
}

// Attachment is a file uploaded as part of a Create call.
type Attachment struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Payload is the body of a Create call. Attachments travel in the same
// request as the fields.
type Payload struct {
	Fields      map[string]string
	Attachments []Attachment
}

// HasAttachments reports whether the payload needs a multipart body.
func (p Payload) HasAttachments() bool {
	return len(p.Attachments) > 0
}

// ErrAcknowledged is returned by Update when the backend confirmed the write
// but did not send the updated record back. Callers apply the patch to the
// record they already hold.
var ErrAcknowledged = errors.New("update acknowledged without record")

// MergePatch applies patch to a copy of current by round-tripping through
// JSON, so field names follow the record's json tags.
func MergePatch[R any](current R, patch Patch) (R, error) {
	var out R
	data, err := json.Marshal(current)
	if err != nil {
		return out, fmt.Errorf("encoding record: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return out, fmt.Errorf("record is not a JSON object: %w", err)
	}
	for k, v := range patch {
		if v == nil {
			delete(fields, k)
			continue
		}
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return out, fmt.Errorf("encoding merged record: %w", err)
	}
	if err := json.Unmarshal(merged, &out); err != nil {
		return out, fmt.Errorf("decoding merged record: %w", err)
	}
	return out, nil
}
