package ui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/vanderheijden86/casedesk/pkg/collection"
	"github.com/vanderheijden86/casedesk/pkg/model"
	"github.com/vanderheijden86/casedesk/pkg/table"
)

type formKind int

const (
	formAddCase formKind = iota
	formAddWatchlist
	formAddKeyword
	formEditKeyword
)

func (k formKind) String() string {
	switch k {
	case formAddCase:
		return "Add case"
	case formAddWatchlist:
		return "Add to watchlist"
	case formAddKeyword:
		return "Add keyword"
	case formEditKeyword:
		return "Edit keyword"
	default:
		return "Form"
	}
}

// formValues are bound to the huh fields by pointer, so an entryForm must
// not be copied once built.
type formValues struct {
	Source  string
	Type    string
	Risk    string
	Summary string
	WavPath string

	UserID    string
	Name      string
	Phone     string
	RiskLevel string

	Word     string
	Category string
	Score    string

	// RecordingRequired is set when the case service only accepts uploads.
	RecordingRequired bool
}

// entryForm is a huh form hosted inside the app: it receives every message
// while open, and its values are turned into a create payload or an update
// patch once completed.
type entryForm struct {
	kind      formKind
	form      *huh.Form
	values    *formValues
	keywordID int
	original  model.Keyword
}

// ErrNotWav rejects recordings that are not .wav files.
var ErrNotWav = errors.New("only .wav recordings are accepted")

// ErrNoRecording rejects a new case without a recording when the case
// service needs one.
var ErrNoRecording = errors.New("a .wav recording is required")

// maxRecordingSize caps uploaded recordings (50MB).
const maxRecordingSize = 50 << 20

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validateRiskScore(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("risk score %q is not a number", s)
	}
	if v < 0 || v > 100 {
		return fmt.Errorf("risk score must be between 0 and 100")
	}
	return nil
}

// validateWavPath accepts an empty path (no recording) or an existing
// regular file with a .wav extension.
func validateWavPath(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return ErrNotWav
	}
	info, err := os.Stat(expandPath(path))
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", filepath.Base(path), err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", filepath.Base(path))
	}
	if info.Size() > maxRecordingSize {
		return fmt.Errorf("%s is larger than 50MB", filepath.Base(path))
	}
	return nil
}

// requireWavPath is validateWavPath that also rejects an empty path.
func requireWavPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrNoRecording
	}
	return validateWavPath(path)
}

func validateScore(s string) error {
	_, err := model.ParseScore(s)
	return err
}

func expandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}

func newFormModel(groups ...*huh.Group) *huh.Form {
	return huh.NewForm(groups...).
		WithTheme(huh.ThemeDracula()).
		WithShowHelp(true).
		WithWidth(60)
}

func newCaseForm(recordingRequired bool) *entryForm {
	v := &formValues{Type: "Phone Call", RecordingRequired: recordingRequired}
	recording := huh.NewInput().Title("Recording (optional)").Placeholder("/path/to/call.wav").
		Value(&v.WavPath).Validate(validateWavPath)
	if recordingRequired {
		recording = huh.NewInput().Title("Recording").Placeholder("/path/to/call.wav").
			Value(&v.WavPath).Validate(requireWavPath)
	}
	form := newFormModel(
		huh.NewGroup(
			huh.NewInput().Title("Source").Description("Caller phone number").
				Value(&v.Source).Validate(required("source")),
			huh.NewInput().Title("Type").Value(&v.Type).Validate(required("type")),
			huh.NewInput().Title("Risk score (optional)").Placeholder("0-100").
				Value(&v.Risk).Validate(validateRiskScore),
			huh.NewText().Title("Summary (optional)").Lines(3).Value(&v.Summary),
			recording,
		),
	)
	return &entryForm{kind: formAddCase, form: form, values: v}
}

func newWatchlistForm() *entryForm {
	v := &formValues{RiskLevel: string(model.RiskMedium)}
	levels := make([]huh.Option[string], 0, 3)
	for _, l := range model.RiskLevels() {
		levels = append(levels, huh.NewOption(l, l))
	}
	form := newFormModel(
		huh.NewGroup(
			huh.NewInput().Title("User ID").Value(&v.UserID).Validate(required("user id")),
			huh.NewInput().Title("Name").Value(&v.Name).Validate(required("name")),
			huh.NewInput().Title("Phone number").Value(&v.Phone).Validate(required("phone number")),
			huh.NewSelect[string]().Title("Risk level").Options(levels...).Value(&v.RiskLevel),
		),
	)
	return &entryForm{kind: formAddWatchlist, form: form, values: v}
}

func newKeywordForm(existing *model.Keyword) *entryForm {
	v := &formValues{Category: "fraud"}
	kind := formAddKeyword
	ef := &entryForm{values: v}
	if existing != nil {
		kind = formEditKeyword
		v.Word, v.Category, v.Score = existing.Word, existing.Category, strconv.Itoa(existing.Score)
		ef.keywordID = existing.ID
		ef.original = *existing
	}
	ef.kind = kind
	ef.form = newFormModel(
		huh.NewGroup(
			huh.NewInput().Title("Word").Value(&v.Word).Validate(required("word")),
			huh.NewInput().Title("Category").Value(&v.Category),
			huh.NewInput().Title("Score").Placeholder("integer").Value(&v.Score).Validate(validateScore),
		),
	)
	return ef
}

func (f *entryForm) Init() tea.Cmd { return f.form.Init() }

func (f *entryForm) Update(msg tea.Msg) tea.Cmd {
	m, cmd := f.form.Update(msg)
	if hf, ok := m.(*huh.Form); ok {
		f.form = hf
	}
	return cmd
}

func (f *entryForm) Completed() bool { return f.form.State == huh.StateCompleted }
func (f *entryForm) Aborted() bool   { return f.form.State == huh.StateAborted }

func (f *entryForm) View() string {
	return FocusedPanelStyle.Padding(0, 1).Render(f.kind.String() + "\n\n" + f.form.View())
}

// casePayload builds the multipart create request. Inputs are validated
// again here so a payload is never built from bad values.
func (v *formValues) casePayload() (collection.Payload, error) {
	if err := required("source")(v.Source); err != nil {
		return collection.Payload{}, table.Invalid("source", err)
	}
	if err := required("type")(v.Type); err != nil {
		return collection.Payload{}, table.Invalid("type", err)
	}
	if err := validateRiskScore(v.Risk); err != nil {
		return collection.Payload{}, table.Invalid("riskScore", err)
	}
	p := collection.Payload{Fields: map[string]string{
		"source": strings.TrimSpace(v.Source),
		"type":   strings.TrimSpace(v.Type),
	}}
	if r := strings.TrimSpace(v.Risk); r != "" {
		p.Fields["riskScore"] = r
	}
	if s := strings.TrimSpace(v.Summary); s != "" {
		p.Fields["summary"] = s
	}

	path := strings.TrimSpace(v.WavPath)
	if path == "" {
		if v.RecordingRequired {
			return collection.Payload{}, table.Invalid("wavFile", ErrNoRecording)
		}
		return p, nil
	}
	if err := validateWavPath(path); err != nil {
		return collection.Payload{}, table.Invalid("wavFile", err)
	}
	data, err := os.ReadFile(expandPath(path))
	if err != nil {
		return collection.Payload{}, table.Invalid("wavFile", err)
	}
	p.Attachments = []collection.Attachment{{
		Field:       "wavFile",
		Filename:    filepath.Base(path),
		ContentType: "audio/wav",
		Data:        data,
	}}
	return p, nil
}

func (v *formValues) watchlistPayload() (collection.Payload, error) {
	for field, val := range map[string]string{"id": v.UserID, "name": v.Name, "phoneNumber": v.Phone} {
		if err := required(field)(val); err != nil {
			return collection.Payload{}, table.Invalid(field, err)
		}
	}
	level := v.RiskLevel
	if level == "" {
		level = string(model.RiskMedium)
	}
	return collection.Payload{Fields: map[string]string{
		"id":          strings.TrimSpace(v.UserID),
		"name":        strings.TrimSpace(v.Name),
		"phoneNumber": strings.TrimSpace(v.Phone),
		"riskLevel":   level,
	}}, nil
}

func (v *formValues) keywordPayload() (collection.Payload, error) {
	if err := required("word")(v.Word); err != nil {
		return collection.Payload{}, table.Invalid("word", err)
	}
	score, err := model.ParseScore(v.Score)
	if err != nil {
		return collection.Payload{}, table.Invalid("score", err)
	}
	return collection.Payload{Fields: map[string]string{
		"word":     strings.TrimSpace(v.Word),
		"category": strings.TrimSpace(v.Category),
		"score":    strconv.Itoa(score),
	}}, nil
}

// keywordPatch returns only the fields that changed. An empty patch means
// nothing to send.
func (f *entryForm) keywordPatch() (collection.Patch, error) {
	v := f.values
	if err := required("word")(v.Word); err != nil {
		return nil, table.Invalid("word", err)
	}
	score, err := model.ParseScore(v.Score)
	if err != nil {
		return nil, table.Invalid("score", err)
	}
	patch := collection.Patch{}
	if w := strings.TrimSpace(v.Word); w != f.original.Word {
		patch["word"] = w
	}
	if c := strings.TrimSpace(v.Category); c != f.original.Category {
		patch["category"] = c
	}
	if score != f.original.Score {
		patch["score"] = score
	}
	return patch, nil
}
