package ui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/casedesk/pkg/model"
	"github.com/vanderheijden86/casedesk/pkg/table"
)

func TestValidateWavPath(t *testing.T) {
	dir := t.TempDir()
	wav := filepath.Join(dir, "call.WAV")
	if err := os.WriteFile(wav, []byte("RIFF"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
		notWav  bool
	}{
		{"empty is allowed", "", false, false},
		{"existing wav", wav, false, false},
		{"mp3 rejected", filepath.Join(dir, "call.mp3"), true, true},
		{"no extension", filepath.Join(dir, "call"), true, true},
		{"missing wav", filepath.Join(dir, "missing.wav"), true, false},
		{"directory", dir + "/sub.wav", true, false},
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.wav"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWavPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateWavPath(%q) = %v", tt.path, err)
			}
			if errors.Is(err, ErrNotWav) != tt.notWav {
				t.Errorf("ErrNotWav match = %v, want %v (%v)", !tt.notWav, tt.notWav, err)
			}
		})
	}
}

func TestCasePayload(t *testing.T) {
	wav := filepath.Join(t.TempDir(), "call.wav")
	if err := os.WriteFile(wav, []byte("RIFFdata"), 0644); err != nil {
		t.Fatal(err)
	}
	v := &formValues{Source: " +15550100 ", Type: "Phone Call", Risk: "42", WavPath: wav}
	p, err := v.casePayload()
	if err != nil {
		t.Fatalf("casePayload: %v", err)
	}
	if p.Fields["source"] != "+15550100" || p.Fields["riskScore"] != "42" {
		t.Errorf("fields = %v", p.Fields)
	}
	if _, ok := p.Fields["summary"]; ok {
		t.Error("empty summary should be omitted")
	}
	if len(p.Attachments) != 1 {
		t.Fatalf("attachments = %d", len(p.Attachments))
	}
	a := p.Attachments[0]
	if a.Field != "wavFile" || a.Filename != "call.wav" || a.ContentType != "audio/wav" || string(a.Data) != "RIFFdata" {
		t.Errorf("attachment = %+v", a)
	}

	noFile := &formValues{Source: "x", Type: "SMS"}
	if p, err := noFile.casePayload(); err != nil || p.HasAttachments() {
		t.Errorf("case without recording = %+v, %v", p, err)
	}
}

func TestCasePayloadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		v     formValues
		field string
	}{
		{"missing source", formValues{Type: "SMS"}, "source"},
		{"missing type", formValues{Source: "x", Type: " "}, "type"},
		{"risk not a number", formValues{Source: "x", Type: "SMS", Risk: "high"}, "riskScore"},
		{"risk out of range", formValues{Source: "x", Type: "SMS", Risk: "101"}, "riskScore"},
		{"mp3 recording", formValues{Source: "x", Type: "SMS", WavPath: "/tmp/call.mp3"}, "wavFile"},
		{"recording required", formValues{Source: "x", Type: "SMS", RecordingRequired: true}, "wavFile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.v.casePayload()
			var ve *table.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestCaseRecordingRequired(t *testing.T) {
	if err := requireWavPath("  "); !errors.Is(err, ErrNoRecording) {
		t.Errorf("requireWavPath(blank) = %v, want ErrNoRecording", err)
	}
	if err := requireWavPath("/tmp/call.mp3"); err == nil || errors.Is(err, ErrNoRecording) {
		t.Errorf("requireWavPath(mp3) = %v, want extension error", err)
	}

	v := &formValues{Source: "+15550100", Type: "Phone Call", RecordingRequired: true}
	_, err := v.casePayload()
	if !errors.Is(err, ErrNoRecording) {
		t.Fatalf("expected ErrNoRecording, got %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "call.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0o644); err != nil {
		t.Fatal(err)
	}
	v.WavPath = path
	p, err := v.casePayload()
	if err != nil || !p.HasAttachments() {
		t.Errorf("case with recording = %+v, %v", p, err)
	}
}

func TestWatchlistPayloadDefaultsRiskLevel(t *testing.T) {
	v := &formValues{UserID: "u7", Name: "Zed", Phone: "+15550700"}
	p, err := v.watchlistPayload()
	if err != nil {
		t.Fatalf("watchlistPayload: %v", err)
	}
	if p.Fields["riskLevel"] != "medium" || p.Fields["id"] != "u7" || p.Fields["phoneNumber"] != "+15550700" {
		t.Errorf("fields = %v", p.Fields)
	}

	_, err = (&formValues{UserID: "u7", Phone: "1"}).watchlistPayload()
	var ve *table.ValidationError
	if !errors.As(err, &ve) || ve.Field != "name" {
		t.Errorf("missing name: %v", err)
	}
}

func TestKeywordPayloadScoreValidation(t *testing.T) {
	p, err := (&formValues{Word: "urgent", Category: "pressure", Score: " 30 "}).keywordPayload()
	if err != nil || p.Fields["score"] != "30" {
		t.Fatalf("keywordPayload = %v, %v", p.Fields, err)
	}

	_, err = (&formValues{Word: "urgent", Score: "3.5"}).keywordPayload()
	var se *model.ScoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected ScoreError, got %v", err)
	}
	var ve *table.ValidationError
	if !errors.As(err, &ve) || ve.Field != "score" {
		t.Errorf("expected ValidationError on score, got %v", err)
	}
}

func TestKeywordPatchOnlyChangedFields(t *testing.T) {
	f := newKeywordForm(&model.Keyword{ID: 3, Word: "wire", Category: "fraud", Score: 50})
	if f.kind != formEditKeyword || f.keywordID != 3 {
		t.Fatalf("form = %+v", f)
	}
	if f.values.Score != "50" {
		t.Errorf("score not pre-filled: %q", f.values.Score)
	}

	patch, err := f.keywordPatch()
	if err != nil || len(patch) != 0 {
		t.Fatalf("unchanged patch = %v, %v", patch, err)
	}

	f.values.Word = "wire transfer"
	f.values.Score = "60"
	patch, err = f.keywordPatch()
	if err != nil {
		t.Fatal(err)
	}
	if len(patch) != 2 || patch["word"] != "wire transfer" || patch["score"] != 60 {
		t.Errorf("patch = %v", patch)
	}
}
