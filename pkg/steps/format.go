package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/systemstart/release-notes/pkg/api"
)

const (
	releaseNotesHeader  = "*Release Notes:*\n"
	defaultLineTemplate = "- PR #{{ .Number }}: {{ .Title }} (by @{{ .Author }}, merged {{ .MergedAt }})"
)

type formatStep struct {
	name string
	line *template.Template
}

// pullRequest mirrors one entry of the hosting API's pull request list.
// Pointer fields distinguish an absent or null field from a zero value.
type pullRequest struct {
	Number *int    `json:"number"`
	Title  *string `json:"title"`
	User   *struct {
		Login *string `json:"login"`
	} `json:"user"`
	MergedAt *string `json:"merged_at"`
}

// noteLine returns the template data for pr, or the name of the first
// required field pr lacks.
func (pr *pullRequest) noteLine() (NoteLine, string) {
	switch {
	case pr == nil:
		return NoteLine{}, "record"
	case pr.Number == nil:
		return NoteLine{}, "number"
	case pr.Title == nil:
		return NoteLine{}, "title"
	case pr.User == nil || pr.User.Login == nil:
		return NoteLine{}, "user.login"
	case pr.MergedAt == nil:
		return NoteLine{}, "merged_at"
	}
	return NoteLine{
		Number:   *pr.Number,
		Title:    *pr.Title,
		Author:   *pr.User.Login,
		MergedAt: *pr.MergedAt,
	}, ""
}

// NoteLine is the data available to a format step's line template.
type NoteLine struct {
	Number   int
	Title    string
	Author   string
	MergedAt string
}

// NewFormatStep creates a format-notes step. An empty line template selects
// the default "- PR #<number>: <title> (by @<author>, merged <timestamp>)".
func NewFormatStep(name string, cfg *api.FormatConfig) (Step, error) {
	text := defaultLineTemplate
	if cfg != nil && cfg.LineTemplate != "" {
		text = cfg.LineTemplate
	}
	tmpl, err := template.New(name).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing line template: %w", err)
	}
	return &formatStep{name: name, line: tmpl}, nil
}

func (s *formatStep) Name() string { return s.name }

func (s *formatStep) RequiredSecrets() []string { return nil }

func (s *formatStep) Run(_ context.Context, inputs api.Values) (api.Values, error) {
	raw, err := requireText(s.name, inputs, api.KeyReleaseNotes)
	if err != nil {
		return nil, err
	}

	notes, err := s.parse(raw)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(notes)+1)
	lines = append(lines, releaseNotesHeader)
	for _, note := range notes {
		line, err := s.render(note)
		if err != nil {
			return nil, fmt.Errorf("rendering PR #%d: %w", note.Number, err)
		}
		lines = append(lines, line)
	}

	slog.Info("formatted release notes", "step", s.name, "entries", len(notes))
	return api.Values{api.KeyReleaseNotes: strings.Join(lines, "\n")}, nil
}

// parse decodes raw into note lines. Every record must carry number, title,
// user.login and merged_at; a partial record fails the whole input.
func (s *formatStep) parse(raw string) ([]NoteLine, error) {
	if strings.TrimSpace(raw) == "null" {
		return nil, s.malformed(errors.New("expected a JSON array, got null"))
	}
	var prs []*pullRequest
	if err := json.Unmarshal([]byte(raw), &prs); err != nil {
		return nil, s.malformed(err)
	}

	notes := make([]NoteLine, 0, len(prs))
	for i, pr := range prs {
		note, missing := pr.noteLine()
		if missing != "" {
			return nil, s.malformed(fmt.Errorf("pull request %d: missing %s", i, missing))
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func (s *formatStep) malformed(err error) error {
	return &api.MalformedInputError{Step: s.name, Key: api.KeyReleaseNotes, Err: err}
}

func (s *formatStep) render(note NoteLine) (string, error) {
	var buf bytes.Buffer
	if err := s.line.Execute(&buf, note); err != nil {
		return "", err
	}
	return buf.String(), nil
}
