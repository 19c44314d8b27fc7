// Package diagfmt renders a diag.Bag against a source.FileSet: the
// donor's "path:line:col: severity CODE: message" style, plus a
// source-line preview, colorized with github.com/fatih/color when the
// destination is a terminal.
package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	codeColor    = color.New(color.FgHiBlack)
	pointerColor = color.New(color.FgCyan, color.Bold)
)

// Print writes every diagnostic in bag to w, in report order.
func Print(w io.Writer, bag *diag.Bag, fs *source.FileSet) {
	for _, d := range bag.Items() {
		printOne(w, d, fs)
	}
	if n := bag.Overflow(); n > 0 {
		fmt.Fprintf(w, "... %d further diagnostic(s) omitted\n", n)
	}
}

func printOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet) {
	f := fs.Get(d.Primary.File)
	path := "<unknown>"
	line, col := 1, 1
	if f != nil {
		path = f.Path
		line, col = f.Position(d.Primary.Start)
	}

	sevText := severityColor(d.Severity).Sprint(d.Severity.String())
	codeText := codeColor.Sprintf("%s%04d", d.Code.String(), int(d.Code)%1000)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, line, col, sevText, codeText, d.Message)

	if f != nil {
		printSourceLine(w, f, line, col, int(d.Primary.Len()))
	}
	for _, note := range d.Notes {
		nf := fs.Get(note.Span.File)
		nl := 0
		if nf != nil {
			nl, _ = nf.Position(note.Span.Start)
		}
		fmt.Fprintf(w, "  note: %s (line %d)\n", note.Msg, nl)
	}
}

func printSourceLine(w io.Writer, f *source.File, line, col, width int) {
	text := f.LineText(line)
	if text == "" {
		return
	}
	fmt.Fprintf(w, "  %s\n", text)
	if width < 1 {
		width = 1
	}
	pad := strings.Repeat(" ", col-1)
	fmt.Fprintf(w, "  %s%s\n", pad, pointerColor.Sprint(strings.Repeat("^", width)))
}

func severityColor(s diag.Severity) *color.Color {
	if s == diag.SevError {
		return errorColor
	}
	return warningColor
}

// jsonDiagnostic is the wire shape emitted by PrintJSON, one flat
// object per diagnostic instead of diag.Diagnostic's span-shaped
// fields, for tooling that wants file/line/column directly.
type jsonDiagnostic struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Path     string `json:"path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// PrintJSON writes bag as a JSON array, for editor/CI tooling that
// doesn't want to scrape the human-readable form.
func PrintJSON(w io.Writer, bag *diag.Bag, fs *source.FileSet) error {
	out := make([]jsonDiagnostic, 0, len(bag.Items()))
	for _, d := range bag.Items() {
		f := fs.Get(d.Primary.File)
		path := "<unknown>"
		line, col := 1, 1
		if f != nil {
			path = f.Path
			line, col = f.Position(d.Primary.Start)
		}
		out = append(out, jsonDiagnostic{
			Severity: d.Severity.String(),
			Code:     fmt.Sprintf("%s%04d", d.Code.String(), int(d.Code)%1000),
			Message:  d.Message,
			Path:     path,
			Line:     line,
			Column:   col,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
