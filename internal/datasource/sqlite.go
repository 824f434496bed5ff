package datasource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/casedesk/pkg/collection"
	"github.com/vanderheijden86/casedesk/pkg/model"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	seq     INTEGER PRIMARY KEY AUTOINCREMENT,
	kind    TEXT NOT NULL,
	id      TEXT NOT NULL,
	body    TEXT NOT NULL,
	UNIQUE (kind, id)
);
CREATE TABLE IF NOT EXISTS files (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	content_type TEXT NOT NULL,
	data         BLOB NOT NULL
);
`

// Store is a local SQLite database holding cases, watchlist entries and
// keywords as JSON documents. It backs offline review and demos with the
// same collection contract as the HTTP backend.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	// One connection serializes writers and keeps the AUTOINCREMENT read in
	// the same transaction as the insert.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

func (s *Store) url(kind string) string { return "sqlite://" + s.path + "/" + kind }

// Cases returns the cases collection.
func (s *Store) Cases() *Table[string, model.Case] {
	return &Table[string, model.Case]{
		store: s,
		kind:  "cases",
		id:    func(c model.Case) string { return c.ID },
		key:   func(id string) string { return id },
		build: s.buildCase,
	}
}

// Watchlist returns the watchlist collection.
func (s *Store) Watchlist() *Table[string, model.WatchlistEntry] {
	return &Table[string, model.WatchlistEntry]{
		store: s,
		kind:  "watchlist",
		id:    func(w model.WatchlistEntry) string { return w.ID },
		key:   func(id string) string { return id },
		build: buildWatchlistEntry,
	}
}

// Keywords returns the keyword collection. Keyword IDs are the row
// sequence, so they are never reused after a delete.
func (s *Store) Keywords() *Table[int, model.Keyword] {
	return &Table[int, model.Keyword]{
		store: s,
		kind:  "keywords",
		id:    func(k model.Keyword) int { return k.ID },
		key:   strconv.Itoa,
		build: buildKeyword,
	}
}

// File returns a stored attachment.
func (s *Store) File(ctx context.Context, id string) (name string, data []byte, err error) {
	err = s.db.QueryRowContext(ctx, "SELECT name, data FROM files WHERE id = ?", id).Scan(&name, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("file %s: %w", id, collection.ErrNotFound)
	}
	return name, data, err
}

// Seed inserts records as they are, keeping their IDs. Existing records with
// the same ID are replaced.
func Seed[K comparable, R any](ctx context.Context, t *Table[K, R], records ...R) error {
	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()
	for _, r := range records {
		body, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (kind, id, body) VALUES (?, ?, ?)
			 ON CONFLICT (kind, id) DO UPDATE SET body = excluded.body`,
			t.kind, t.key(t.id(r)), string(body)); err != nil {
			return fmt.Errorf("seeding %s: %w", t.kind, err)
		}
	}
	return tx.Commit()
}

// Table is one collection inside a Store.
type Table[K comparable, R any] struct {
	store *Store
	kind  string
	id    func(R) K
	key   func(K) string
	build func(ctx context.Context, tx *sql.Tx, seq int64, p collection.Payload) (R, error)
}

var (
	_ collection.Sync[string, model.Case]           = (*Table[string, model.Case])(nil)
	_ collection.Sync[string, model.WatchlistEntry] = (*Table[string, model.WatchlistEntry])(nil)
	_ collection.Sync[int, model.Keyword]           = (*Table[int, model.Keyword])(nil)
)

// Name returns the collection name.
func (t *Table[K, R]) Name() string { return t.kind }

func (t *Table[K, R]) storeError(op string, err error) error {
	return &collection.ServerError{Op: op, URL: t.store.url(t.kind), StatusCode: 500, Detail: err.Error()}
}

func (t *Table[K, R]) notFound(op string, id K) error {
	return &collection.ServerError{Op: op, URL: t.store.url(t.kind), StatusCode: 404, Detail: fmt.Sprintf("%v not found", id)}
}

func (t *Table[K, R]) List(ctx context.Context) ([]R, error) {
	rows, err := t.store.db.QueryContext(ctx, "SELECT body FROM records WHERE kind = ? ORDER BY seq", t.kind)
	if err != nil {
		return nil, t.storeError("list "+t.kind, err)
	}
	defer rows.Close()

	out := []R{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, t.storeError("list "+t.kind, err)
		}
		var r R
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return nil, t.storeError("list "+t.kind, fmt.Errorf("decoding record: %w", err))
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, t.storeError("list "+t.kind, err)
	}
	return out, nil
}

// Create inserts a record built from p. Invalid input is rejected with the
// builder's error before anything is written.
func (t *Table[K, R]) Create(ctx context.Context, p collection.Payload) (R, error) {
	var zero R
	op := "create " + t.kind

	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, t.storeError(op, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "INSERT INTO records (kind, id, body) VALUES (?, ?, '{}')",
		t.kind, "pending:"+uuid.NewString())
	if err != nil {
		return zero, t.storeError(op, err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return zero, t.storeError(op, err)
	}

	rec, err := t.build(ctx, tx, seq, p)
	if err != nil {
		return zero, err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return zero, t.storeError(op, err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE records SET id = ?, body = ? WHERE seq = ?",
		t.key(t.id(rec)), string(body), seq); err != nil {
		return zero, t.storeError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, t.storeError(op, err)
	}
	return rec, nil
}

// Update merges patch into the stored record and returns the result.
func (t *Table[K, R]) Update(ctx context.Context, id K, patch collection.Patch) (R, error) {
	var zero R
	op := "update " + t.kind

	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, t.storeError(op, err)
	}
	defer tx.Rollback()

	var body string
	err = tx.QueryRowContext(ctx, "SELECT body FROM records WHERE kind = ? AND id = ?", t.kind, t.key(id)).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, t.notFound(op, id)
	}
	if err != nil {
		return zero, t.storeError(op, err)
	}
	var current R
	if err := json.Unmarshal([]byte(body), &current); err != nil {
		return zero, t.storeError(op, fmt.Errorf("decoding record: %w", err))
	}
	merged, err := collection.MergePatch(current, patch)
	if err != nil {
		return zero, t.storeError(op, err)
	}
	if t.id(merged) != id {
		return zero, t.storeError(op, fmt.Errorf("patch changes the record id"))
	}
	out, err := json.Marshal(merged)
	if err != nil {
		return zero, t.storeError(op, err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE records SET body = ? WHERE kind = ? AND id = ?", string(out), t.kind, t.key(id)); err != nil {
		return zero, t.storeError(op, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, t.storeError(op, err)
	}
	return merged, nil
}

func (t *Table[K, R]) Delete(ctx context.Context, id K) error {
	op := "delete " + t.kind
	res, err := t.store.db.ExecContext(ctx, "DELETE FROM records WHERE kind = ? AND id = ?", t.kind, t.key(id))
	if err != nil {
		return t.storeError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return t.storeError(op, err)
	}
	if n == 0 {
		return t.notFound(op, id)
	}
	return nil
}

// newID returns a time-ordered UUID, falling back to a random one.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func required(p collection.Payload, field string) (string, error) {
	v := strings.TrimSpace(p.Fields[field])
	if v == "" {
		return "", &FieldError{Field: field, Err: errors.New("required")}
	}
	return v, nil
}

// FieldError rejects a Create payload before anything is written.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %v", e.Field, e.Err) }

func (e *FieldError) Unwrap() error { return e.Err }

// InvalidField names the rejected field.
func (e *FieldError) InvalidField() string { return e.Field }

func (s *Store) buildCase(ctx context.Context, tx *sql.Tx, _ int64, p collection.Payload) (model.Case, error) {
	var c model.Case
	source, err := required(p, "source")
	if err != nil {
		return c, err
	}
	typ, err := required(p, "type")
	if err != nil {
		return c, err
	}
	score := 0.0
	if v := strings.TrimSpace(p.Fields["riskScore"]); v != "" {
		score, err = strconv.ParseFloat(v, 64)
		if err != nil || score < 0 || score > 100 {
			return c, &FieldError{Field: "riskScore", Err: fmt.Errorf("%q is not a score between 0 and 100", v)}
		}
	}
	c = model.Case{
		ID:        newID(),
		Source:    source,
		Type:      typ,
		Status:    model.StatusNew,
		RiskScore: score,
		Severity:  model.SeverityForScore(score),
		Timestamp: s.now().UTC().Truncate(time.Second),
		Summary:   p.Fields["summary"],
	}
	for _, a := range p.Attachments {
		if a.Field != "wavFile" {
			continue
		}
		if !strings.EqualFold(filepath.Ext(a.Filename), ".wav") {
			return c, &FieldError{Field: "wavFile", Err: fmt.Errorf("%s is not a .wav file", a.Filename)}
		}
		fileID := newID()
		ct := a.ContentType
		if ct == "" {
			ct = "audio/wav"
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO files (id, name, content_type, data) VALUES (?, ?, ?, ?)",
			fileID, a.Filename, ct, a.Data); err != nil {
			return c, fmt.Errorf("storing %s: %w", a.Filename, err)
		}
		c.WavFileID = fileID
	}
	return c, nil
}

func buildWatchlistEntry(_ context.Context, _ *sql.Tx, _ int64, p collection.Payload) (model.WatchlistEntry, error) {
	level := model.RiskLevel(strings.TrimSpace(p.Fields["riskLevel"]))
	if level == "" {
		level = model.RiskMedium
	}
	w := model.WatchlistEntry{
		ID:          newID(),
		UserID:      strings.TrimSpace(p.Fields["id"]),
		Name:        strings.TrimSpace(p.Fields["name"]),
		PhoneNumber: strings.TrimSpace(p.Fields["phoneNumber"]),
		RiskLevel:   level,
	}
	if err := w.Validate(); err != nil {
		return w, &FieldError{Field: "watchlist", Err: err}
	}
	return w, nil
}

func buildKeyword(_ context.Context, _ *sql.Tx, seq int64, p collection.Payload) (model.Keyword, error) {
	word, err := required(p, "word")
	if err != nil {
		return model.Keyword{}, err
	}
	score, err := model.ParseScore(p.Fields["score"])
	if err != nil {
		return model.Keyword{}, err
	}
	return model.Keyword{
		ID:       int(seq),
		Word:     word,
		Category: strings.TrimSpace(p.Fields["category"]),
		Score:    score,
	}, nil
}
