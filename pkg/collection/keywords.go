package collection

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/casedesk/pkg/model"
)

// ErrNotFound is returned for an identity the collection does not hold.
var ErrNotFound = errors.New("record not found")

// KeywordCollection adapts the /badwords text endpoints to Sync.
//
// The backend addresses keywords by 1-based line number, and deleting a line
// shifts every later one. The adapter hands out stable IDs at List time,
// keeps the ID-to-line mapping itself and holds a lock across each remote
// write so a shifted line number is never sent.
type KeywordCollection struct {
	client

	mu     sync.Mutex
	nextID int
	lines  []int
	byID   map[int]model.Keyword
}

var _ Sync[int, model.Keyword] = (*KeywordCollection)(nil)

// NewKeywordCollection returns an adapter for base/badwords.
func NewKeywordCollection(base string, opts ...Option) *KeywordCollection {
	o := buildOptions(opts)
	return &KeywordCollection{
		client: newClient(base, o.client),
		byID:   make(map[int]model.Keyword),
	}
}

type keywordBody struct {
	Word     string `json:"word"`
	Category string `json:"category"`
	Score    int    `json:"score"`
}

func (c *KeywordCollection) List(ctx context.Context) ([]model.Keyword, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	body, err := c.do(ctx, "list badwords", http.MethodGet, c.url("badwords"), nil, "")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Badwords string `json:"badwords"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding badwords: %w", err)
	}
	kws, err := model.ParseKeywordLines(payload.Badwords)
	if err != nil {
		return nil, fmt.Errorf("parsing badwords: %w", err)
	}

	c.lines = make([]int, 0, len(kws))
	c.byID = make(map[int]model.Keyword, len(kws))
	out := make([]model.Keyword, 0, len(kws))
	for _, k := range kws {
		c.nextID++
		k.ID = c.nextID
		c.lines = append(c.lines, k.ID)
		c.byID[k.ID] = k
		out = append(out, k)
	}
	return out, nil
}

// Create appends a keyword. Fields are word, category and score.
func (c *KeywordCollection) Create(ctx context.Context, p Payload) (model.Keyword, error) {
	score, err := model.ParseScore(p.Fields["score"])
	if err != nil {
		return model.Keyword{}, err
	}
	k := model.Keyword{Word: p.Fields["word"], Category: p.Fields["category"], Score: score}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.doJSON(ctx, "create badwords", http.MethodPost, c.url("badwords", "add"), keywordBody{k.Word, k.Category, k.Score}); err != nil {
		return model.Keyword{}, err
	}
	c.nextID++
	k.ID = c.nextID
	c.lines = append(c.lines, k.ID)
	c.byID[k.ID] = k
	return k, nil
}

func (c *KeywordCollection) Update(ctx context.Context, id int, patch Patch) (model.Keyword, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lineOf(id)
	if !ok {
		return model.Keyword{}, fmt.Errorf("update keyword %d: %w", id, ErrNotFound)
	}
	merged, err := MergePatch(c.byID[id], patch)
	if err != nil {
		return model.Keyword{}, fmt.Errorf("update keyword %d: %w", id, err)
	}
	merged.ID = id

	body := keywordBody{merged.Word, merged.Category, merged.Score}
	if _, err := c.doJSON(ctx, "update badwords", http.MethodPost, c.url("badwords", "update", strconv.Itoa(line)), body); err != nil {
		return model.Keyword{}, err
	}
	c.byID[id] = merged
	return merged, nil
}

func (c *KeywordCollection) Delete(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.lineOf(id)
	if !ok {
		return fmt.Errorf("delete keyword %d: %w", id, ErrNotFound)
	}
	if _, err := c.do(ctx, "delete badwords", http.MethodDelete, c.url("badwords", "delete", strconv.Itoa(line)), nil, ""); err != nil {
		return err
	}
	c.lines = append(c.lines[:line-1], c.lines[line:]...)
	delete(c.byID, id)
	return nil
}

// lineOf returns the 1-based line currently holding id. Caller holds mu.
func (c *KeywordCollection) lineOf(id int) (int, bool) {
	for i, lid := range c.lines {
		if lid == id {
			return i + 1, true
		}
	}
	return 0, false
}
