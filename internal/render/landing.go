// Package render rebuilds the static landing page that lists the most
// recent change records. The page is a pure projection of the change log:
// it carries no state of its own and is regenerated in full on every run.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pagewatch/pagewatch/internal/watch"
)

// Landing writes the listing page to a fixed path.
type Landing struct {
	path  string
	count int
}

// NewLanding returns a renderer that keeps the first count records.
func NewLanding(path string, count int) (*Landing, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("landing page path is required")
	}
	if count <= 0 {
		count = 50
	}
	return &Landing{path: path, count: count}, nil
}

var landingTmpl = template.Must(template.New("landing").Funcs(template.FuncMap{
	"day": func(t time.Time) string { return t.UTC().Format(time.DateOnly) },
}).Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Latest Changes</title>
</head>
<body>
<h1>Latest Changes</h1>
<ul>
{{- range .Records}}
<li>{{day .TS}} &ndash; <a href="{{.Path}}">{{.Title}}</a>{{if .Summary}} &mdash; {{.Summary}}{{end}}</li>
{{- end}}
</ul>
</body>
</html>
`))

// Rebuild regenerates the page from the newest-first record list. Titles
// and summaries come from fetched page content, so everything is escaped
// by the template engine.
func (l *Landing) Rebuild(records []watch.ChangeRecord) error {
	if len(records) > l.count {
		records = records[:l.count]
	}
	var buf bytes.Buffer
	if err := landingTmpl.Execute(&buf, struct {
		Records []watch.ChangeRecord
	}{Records: records}); err != nil {
		return fmt.Errorf("render landing page: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o750); err != nil {
		return &watch.PersistError{Op: "create dir", Path: filepath.Dir(l.path), Err: err}
	}
	if err := os.WriteFile(l.path, buf.Bytes(), 0o600); err != nil {
		return &watch.PersistError{Op: "write landing page", Path: l.path, Err: err}
	}
	return nil
}
