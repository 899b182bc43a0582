// Package diff renders human-readable deltas between two versions of a
// source and persists one HTML artifact per detected change.
package diff

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"github.com/pagewatch/pagewatch/internal/watch"
)

// contextLines is the number of unchanged lines kept around each hunk.
const contextLines = 2

// Archiver writes diff documents into dir and hands back hrefs relative to
// the landing page.
type Archiver struct {
	dir      string
	hrefBase string
	logger   *zap.Logger
}

// NewArchiver creates the diff artifact store rooted at dir. Links recorded
// in the change log are prefixed with the final path element of dir, which
// is where the landing page expects to find them.
func NewArchiver(dir string, logger *zap.Logger) (*Archiver, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("diff directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create diff dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Archiver{
		dir:      dir,
		hrefBase: filepath.Base(dir),
		logger:   logger,
	}, nil
}

// Archive computes a line-based delta between previous and current, renders
// it as a standalone side-by-side HTML page (previous in the left column,
// current in the right) and writes it under a name derived from the source
// and the run timestamp (second precision, collision-free for a serial
// pipeline). It returns the recorded href and the plain unified-diff text
// used for summarization.
func (a *Archiver) Archive(name string, ts time.Time, previous, current []byte) (string, string, error) {
	before := splitLines(previous)
	after := splitLines(current)
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        before,
		B:        after,
		FromFile: "previous",
		ToFile:   "current",
		Context:  contextLines,
	})
	if err != nil {
		return "", "", fmt.Errorf("compute diff for %s: %w", name, err)
	}

	stamp := ts.UTC().Format("20060102T150405")
	title := fmt.Sprintf("%s %s", name, stamp)
	page, err := renderPage(title, before, after)
	if err != nil {
		return "", "", fmt.Errorf("render diff for %s: %w", name, err)
	}

	filename := fmt.Sprintf("%s-%s.html", name, stamp)
	target := filepath.Join(a.dir, filename)
	if err := os.WriteFile(target, page, 0o600); err != nil {
		return "", "", &watch.PersistError{Op: "write diff", Path: target, Err: err}
	}
	a.logger.Debug("Diff archived", zap.String("source", name), zap.String("path", target))
	return path.Join(a.hrefBase, filename), text, nil
}

// splitLines keeps empty content empty so a first observation diffs as
// pure additions instead of one removed blank line.
func splitLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	return difflib.SplitLines(string(b))
}

var pageTmpl = template.Must(template.New("diff").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; table-layout: fixed; }
th { text-align: left; border-bottom: 1px solid #ccc; }
td { font-family: monospace; line-height: 1.4; vertical-align: top; white-space: pre-wrap; word-break: break-word; width: 50%; }
.add { background: #e6ffed; }
.del { background: #ffeef0; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<table>
<tr><th>previous</th><th>current</th></tr>
{{range .Rows}}<tr><td class="{{.LeftClass}}">{{.Left}}</td><td class="{{.RightClass}}">{{.Right}}</td></tr>
{{end}}</table>
</body>
</html>
`))

type pageData struct {
	Title string
	Rows  []diffRow
}

// diffRow is one line pair of the side-by-side table. An empty cell on one
// side means the line exists only in the other version.
type diffRow struct {
	LeftClass  string
	Left       string
	RightClass string
	Right      string
}

func renderPage(title string, before, after []string) ([]byte, error) {
	data := pageData{Title: title, Rows: pairRows(before, after)}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pairRows aligns the two versions line by line from the matcher opcodes:
// equal runs fill both columns, deletions only the left, insertions only
// the right, and replacements are zipped so changed lines face each other.
func pairRows(before, after []string) []diffRow {
	var rows []diffRow
	for _, op := range difflib.NewMatcher(before, after).GetOpCodes() {
		switch op.Tag {
		case 'e':
			for k := 0; op.I1+k < op.I2; k++ {
				rows = append(rows, diffRow{
					Left:  cell(before[op.I1+k]),
					Right: cell(after[op.J1+k]),
				})
			}
		case 'd':
			for i := op.I1; i < op.I2; i++ {
				rows = append(rows, diffRow{LeftClass: "del", Left: cell(before[i])})
			}
		case 'i':
			for j := op.J1; j < op.J2; j++ {
				rows = append(rows, diffRow{RightClass: "add", Right: cell(after[j])})
			}
		case 'r':
			for k := 0; op.I1+k < op.I2 || op.J1+k < op.J2; k++ {
				var row diffRow
				if op.I1+k < op.I2 {
					row.LeftClass = "del"
					row.Left = cell(before[op.I1+k])
				}
				if op.J1+k < op.J2 {
					row.RightClass = "add"
					row.Right = cell(after[op.J1+k])
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

func cell(line string) string {
	return strings.TrimRight(line, "\n")
}
