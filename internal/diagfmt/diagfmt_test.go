package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/WriteNaN/buzz/internal/diag"
	"github.com/WriteNaN/buzz/internal/source"
)

func init() {
	// Diagnostics tests compare rendered text, so disable the color
	// escapes fatih/color would otherwise add (it auto-detects a TTY,
	// but `go test` output is a pipe; forcing this keeps the assertions
	// stable either way).
	color.NoColor = true
}

func TestPrintIncludesPathLineAndMessage(t *testing.T) {
	fs := source.NewFileSet()
	content := "int x = ;\n"
	fileID := fs.Add("main.bz", []byte(content))
	span := source.Span{File: fileID, Start: 8, End: 9}

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SynUnexpectedToken, span, "unexpected token"))

	var out bytes.Buffer
	Print(&out, bag, fs)

	text := out.String()
	if !strings.Contains(text, "main.bz:1:") {
		t.Fatalf("expected output to reference main.bz:1:, got %q", text)
	}
	if !strings.Contains(text, "unexpected token") {
		t.Fatalf("expected output to include the message, got %q", text)
	}
	if !strings.Contains(text, "int x = ;") {
		t.Fatalf("expected output to include the source line, got %q", text)
	}
}

func TestPrintJSONEmitsOneObjectPerDiagnostic(t *testing.T) {
	fs := source.NewFileSet()
	content := "int x = ;\n"
	fileID := fs.Add("main.bz", []byte(content))
	span := source.Span{File: fileID, Start: 8, End: 9}

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.SynUnexpectedToken, span, "unexpected token"))

	var out bytes.Buffer
	if err := PrintJSON(&out, bag, fs); err != nil {
		t.Fatalf("PrintJSON: %v", err)
	}

	var decoded []jsonDiagnostic
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v\n%s", err, out.String())
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(decoded))
	}
	if decoded[0].Path != "main.bz" || decoded[0].Message != "unexpected token" {
		t.Fatalf("unexpected decoded diagnostic: %+v", decoded[0])
	}
}
