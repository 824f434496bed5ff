package collection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultTimeout bounds a single request when the caller's context has no
// deadline.
const DefaultTimeout = 10 * time.Second

// maxDetail caps how much of an error body is kept in a ServerError.
const maxDetail = 200

// Option configures an HTTP-backed collection.
type Option func(*options)

type options struct {
	client     *http.Client
	formCreate bool
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithFormCreate sends Create as multipart form data even without
// attachments.
func WithFormCreate() Option {
	return func(o *options) { o.formCreate = true }
}

func buildOptions(opts []Option) options {
	o := options{client: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// client performs requests against one backend base URL and turns failures
// into NetworkError and ServerError.
type client struct {
	http *http.Client
	base string
}

func newClient(base string, hc *http.Client) client {
	return client{http: hc, base: strings.TrimRight(base, "/")}
}

func (c client) url(parts ...string) string {
	return c.base + "/" + strings.Join(parts, "/")
}

func (c client) do(ctx context.Context, op, method, url string, body io.Reader, contentType string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{Op: op, URL: url, StatusCode: resp.StatusCode, Detail: errorDetail(data)}
	}
	return data, nil
}

func (c client) doJSON(ctx context.Context, op, method, url string, v any) ([]byte, error) {
	if v == nil {
		return c.do(ctx, op, method, url, nil, "")
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s body: %w", op, err)
	}
	return c.do(ctx, op, method, url, bytes.NewReader(body), "application/json")
}

// errorDetail extracts {"detail": "..."} bodies and falls back to the raw
// text.
func errorDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok {
			return s
		}
		return fmt.Sprint(payload.Detail)
	}
	text := strings.TrimSpace(string(body))
	if len(text) > maxDetail {
		text = text[:maxDetail] + "..."
	}
	return text
}

// acknowledgement reports whether body is a bare {"message": "..."} reply.
func acknowledgement(body []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return false
	}
	_, ok := fields["message"]
	return ok && len(fields) == 1
}

// encodeMultipart writes fields and attachments as one multipart form.
func encodeMultipart(p Payload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, k := range sortedKeys(p.Fields) {
		if err := w.WriteField(k, p.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", k, err)
		}
	}
	for _, a := range p.Attachments {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, a.Field, a.Filename))
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("creating part %s: %w", a.Field, err)
		}
		if _, err := part.Write(a.Data); err != nil {
			return nil, "", fmt.Errorf("writing part %s: %w", a.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
