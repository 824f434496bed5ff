package collection

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	json "github.com/goccy/go-json"
)

// HTTPCollection is a REST collection at {base}/{name}: GET lists, POST
// creates, PUT {id} updates and DELETE {id} removes.
type HTTPCollection[K comparable, R any] struct {
	client
	name string
	opts options
}

// NewHTTPCollection returns a collection client for base/name.
func NewHTTPCollection[K comparable, R any](base, name string, opts ...Option) *HTTPCollection[K, R] {
	o := buildOptions(opts)
	return &HTTPCollection[K, R]{client: newClient(base, o.client), name: name, opts: o}
}

// Name returns the collection's path segment.
func (c *HTTPCollection[K, R]) Name() string { return c.name }

func (c *HTTPCollection[K, R]) itemURL(id K) string {
	return c.url(c.name, url.PathEscape(fmt.Sprint(id)))
}

func (c *HTTPCollection[K, R]) List(ctx context.Context) ([]R, error) {
	body, err := c.do(ctx, "list "+c.name, http.MethodGet, c.url(c.name), nil, "")
	if err != nil {
		return nil, err
	}
	var out []R
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding %s list: %w", c.name, err)
	}
	if out == nil {
		out = []R{}
	}
	return out, nil
}

func (c *HTTPCollection[K, R]) Create(ctx context.Context, p Payload) (R, error) {
	var zero R
	op := "create " + c.name
	var (
		body []byte
		err  error
	)
	if p.HasAttachments() || c.opts.formCreate {
		buf, ct, encErr := encodeMultipart(p)
		if encErr != nil {
			return zero, encErr
		}
		body, err = c.do(ctx, op, http.MethodPost, c.url(c.name), buf, ct)
	} else {
		body, err = c.doJSON(ctx, op, http.MethodPost, c.url(c.name), p.Fields)
	}
	if err != nil {
		return zero, err
	}
	var out R
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, fmt.Errorf("decoding created %s record: %w", c.name, err)
	}
	return out, nil
}

// Update sends patch as the PUT body. A reply carrying only a message
// yields ErrAcknowledged.
func (c *HTTPCollection[K, R]) Update(ctx context.Context, id K, patch Patch) (R, error) {
	var zero R
	body, err := c.doJSON(ctx, "update "+c.name, http.MethodPut, c.itemURL(id), map[string]any(patch))
	if err != nil {
		return zero, err
	}
	if acknowledgement(body) {
		return zero, ErrAcknowledged
	}
	var out R
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, fmt.Errorf("decoding updated %s record: %w", c.name, err)
	}
	return out, nil
}

func (c *HTTPCollection[K, R]) Delete(ctx context.Context, id K) error {
	_, err := c.do(ctx, "delete "+c.name, http.MethodDelete, c.itemURL(id), nil, "")
	return err
}
