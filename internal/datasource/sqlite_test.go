package datasource

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/casedesk/pkg/collection"
	"github.com/vanderheijden86/casedesk/pkg/model"
	"github.com/vanderheijden86/casedesk/pkg/testutil"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "casedesk.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteCasesRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	cases := store.Cases()

	got, err := cases.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("empty store should list an empty, non-nil slice, got %v", got)
	}

	seed := testutil.NewDefault().Cases(3)
	if err := Seed(ctx, cases, seed...); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	got, err = cases.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	testutil.AssertIDs(t, got, func(c model.Case) string { return c.ID }, "CASE-1", "CASE-2", "CASE-3")

	updated, err := cases.Update(ctx, "CASE-2", collection.Patch{"status": "resolved"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != model.StatusResolved || updated.Source != seed[1].Source {
		t.Fatalf("Update returned %+v", updated)
	}

	if err := cases.Delete(ctx, "CASE-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ = cases.List(ctx)
	testutil.AssertIDs(t, got, func(c model.Case) string { return c.ID }, "CASE-2", "CASE-3")
	if got[0].Status != model.StatusResolved {
		t.Errorf("update not persisted: %+v", got[0])
	}
}

func TestSQLiteMissingRecordIsNotFound(t *testing.T) {
	ctx := context.Background()
	cases := openTestStore(t).Cases()

	var se *collection.ServerError
	if _, err := cases.Update(ctx, "nope", collection.Patch{"status": "open"}); !errors.As(err, &se) || !se.NotFound() {
		t.Fatalf("Update missing = %v", err)
	}
	if err := cases.Delete(ctx, "nope"); !errors.As(err, &se) || !se.NotFound() {
		t.Fatalf("Delete missing = %v", err)
	}
}

func TestSQLiteCreateCaseWithRecording(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	c, err := store.Cases().Create(ctx, collection.Payload{
		Fields: map[string]string{"source": "+15550100", "type": "Phone Call", "riskScore": "82"},
		Attachments: []collection.Attachment{
			{Field: "wavFile", Filename: "call.wav", Data: []byte("RIFF")},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == "" || c.Status != model.StatusNew || c.Severity != model.SeverityHigh {
		t.Fatalf("created %+v", c)
	}
	name, data, err := store.File(ctx, c.WavFileID)
	if err != nil || name != "call.wav" || string(data) != "RIFF" {
		t.Fatalf("File = %q %q %v", name, data, err)
	}
}

func TestSQLiteCreateRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	_, err := store.Cases().Create(ctx, collection.Payload{
		Fields:      map[string]string{"source": "x", "type": "Phone Call"},
		Attachments: []collection.Attachment{{Field: "wavFile", Filename: "call.mp3"}},
	})
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Field != "wavFile" {
		t.Fatalf("mp3 upload = %v", err)
	}

	_, err = store.Keywords().Create(ctx, collection.Payload{
		Fields: map[string]string{"word": "wire", "score": "high"},
	})
	var se *model.ScoreError
	if !errors.As(err, &se) {
		t.Fatalf("non-numeric score = %v", err)
	}

	if got, _ := store.Cases().List(ctx); len(got) != 0 {
		t.Errorf("rejected create left %d cases", len(got))
	}
	if got, _ := store.Keywords().List(ctx); len(got) != 0 {
		t.Errorf("rejected create left %d keywords", len(got))
	}
}

func TestSQLiteKeywordIDsNeverReused(t *testing.T) {
	ctx := context.Background()
	kw := openTestStore(t).Keywords()

	create := func(word string) model.Keyword {
		t.Helper()
		k, err := kw.Create(ctx, collection.Payload{Fields: map[string]string{"word": word, "category": "finance", "score": "7"}})
		if err != nil {
			t.Fatalf("Create %s: %v", word, err)
		}
		return k
	}
	a := create("wire")
	b := create("gift card")
	if err := kw.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	c := create("offshore")
	if c.ID == a.ID || c.ID == b.ID {
		t.Fatalf("ids %d %d %d: deleted id reused", a.ID, b.ID, c.ID)
	}

	updated, err := kw.Update(ctx, a.ID, collection.Patch{"score": 9})
	if err != nil || updated.Score != 9 || updated.Word != "wire" {
		t.Fatalf("Update = %+v, %v", updated, err)
	}
}

func TestSQLiteWatchlistDefaults(t *testing.T) {
	ctx := context.Background()
	w, err := openTestStore(t).Watchlist().Create(ctx, collection.Payload{
		Fields: map[string]string{"id": "U-7", "name": "J. Doe", "phoneNumber": "+15550123"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w.RiskLevel != model.RiskMedium || w.UserID != "U-7" || !w.NeverMentioned() {
		t.Fatalf("created %+v", w)
	}
}

func TestOpenSources(t *testing.T) {
	if _, err := ParseSourceType("ftp"); err == nil {
		t.Fatal("expected error for unknown source")
	}
	if st, _ := ParseSourceType(""); st != SourceTypeHTTP {
		t.Fatalf("default source = %q", st)
	}

	cols, err := Open(DataSource{Type: SourceTypeSQLite, Path: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer cols.Close()
	if cols.Store == nil || cols.Cases == nil || cols.Keywords == nil || cols.Watchlist == nil {
		t.Fatalf("incomplete collections: %+v", cols)
	}

	if _, err := Open(DataSource{Type: SourceTypeHTTP}); err == nil {
		t.Fatal("http source without URL should fail")
	}
	httpCols, err := Open(DataSource{Type: SourceTypeHTTP, URL: "http://localhost:8000"})
	if err != nil || httpCols.Store != nil {
		t.Fatalf("Open http = %+v, %v", httpCols, err)
	}
}
