package render

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

const testDOT = `digraph "T" {
	"a" [label="A"]
	"b" [label="B"]
	"a" -> "b" [label="uses"]
}
`

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", FormatPNG, false},
		{"PNG", FormatPNG, false},
		{" svg ", FormatSVG, false},
		{"jpeg", FormatJPG, false},
		{"pdf", FormatPDF, false},
		{"gv", FormatDOT, false},
		{"bmp", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("ParseFormat(%q) error = %v, want ErrUnsupportedFormat", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatContentType(t *testing.T) {
	if FormatPNG.ContentType() != "image/png" || FormatSVG.ContentType() != "image/svg+xml" {
		t.Error("unexpected content type")
	}
	if !FormatPNG.Binary() || FormatSVG.Binary() || FormatDOT.Binary() {
		t.Error("unexpected Binary() result")
	}
}

func TestNewEngine(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", EngineGraphviz, false},
		{"graphviz", EngineGraphviz, false},
		{"exec", EngineExec, false},
		{"dot", EngineExec, false},
		{"cairo", "", true},
	}
	for _, tt := range tests {
		eng, err := NewEngine(tt.name, "")
		if (err != nil) != tt.wantErr {
			t.Errorf("NewEngine(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, ErrUnknownEngine) {
				t.Errorf("NewEngine(%q) error = %v, want ErrUnknownEngine", tt.name, err)
			}
			continue
		}
		if eng.Name() != tt.want {
			t.Errorf("NewEngine(%q).Name() = %q, want %q", tt.name, eng.Name(), tt.want)
		}
	}
}

func TestGraphvizRenderSVG(t *testing.T) {
	out, err := NewGraphviz().Render(context.Background(), []byte(testDOT), FormatSVG)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Contains(out, []byte("<svg")) {
		t.Errorf("output is not SVG: %.80q", out)
	}
	if !bytes.Contains(out, []byte("uses")) {
		t.Error("edge label missing from SVG")
	}
}

func TestGraphvizRenderPNG(t *testing.T) {
	out, err := NewGraphviz().Render(context.Background(), []byte(testDOT), FormatPNG)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Errorf("output is not PNG: %.16q", out)
	}
}

func TestGraphvizRenderInvalidDOT(t *testing.T) {
	_, err := NewGraphviz().Render(context.Background(), []byte("digraph {"), FormatSVG)
	if err == nil {
		t.Fatal("expected error for invalid DOT")
	}
	if !errors.Is(err, ErrRender) {
		t.Errorf("error = %v, want ErrRender", err)
	}
}

func TestGraphvizRenderUnsupportedFormat(t *testing.T) {
	_, err := NewGraphviz().Render(context.Background(), []byte(testDOT), Format("bmp"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestDOTFormatMatchesExec(t *testing.T) {
	gv, err := graphvizFormat(FormatDOT)
	if err != nil {
		t.Fatal(err)
	}
	// Exec passes -T<format>, so both engines must request the same output.
	if string(gv) != string(FormatDOT) {
		t.Errorf("graphviz format for dot = %q, want %q", gv, FormatDOT)
	}
}

func TestExecMissingBinary(t *testing.T) {
	eng := NewExec(filepath.Join(t.TempDir(), "no-such-dot"))
	_, err := eng.Render(context.Background(), []byte(testDOT), FormatPNG)
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("error = %v, want ErrEngineUnavailable", err)
	}
}

// fakeDot writes a shell script that behaves like dot: it echoes its
// arguments followed by stdin, or fails when the input contains "FAIL".
func fakeDot(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script engine not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "dot")
	script := `#!/bin/sh
input=$(cat)
case "$input" in
  *FAIL*) echo "syntax error in line 1" >&2; exit 1 ;;
esac
echo "$@"
printf '%s' "$input"
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecRender(t *testing.T) {
	eng := NewExec(fakeDot(t))
	out, err := eng.Render(context.Background(), []byte(testDOT), FormatPNG)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	first, rest, _ := strings.Cut(string(out), "\n")
	if first != "-Kdot -Tpng" {
		t.Errorf("args = %q, want %q", first, "-Kdot -Tpng")
	}
	if !strings.Contains(rest, `"a" -> "b"`) {
		t.Errorf("DOT source was not piped to stdin: %q", rest)
	}
}

func TestExecRenderFailure(t *testing.T) {
	eng := NewExec(fakeDot(t))
	_, err := eng.Render(context.Background(), []byte("digraph { FAIL }"), FormatPNG)
	if !errors.Is(err, ErrRender) {
		t.Fatalf("error = %v, want ErrRender", err)
	}
	if !strings.Contains(err.Error(), "syntax error") {
		t.Errorf("stderr not included in error: %v", err)
	}
}

func TestExecRejectsUnknownFormat(t *testing.T) {
	eng := NewExec(fakeDot(t))
	if _, err := eng.Render(context.Background(), []byte(testDOT), Format("bmp")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}
