package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/snhsdiag/pkg/definition"
	"github.com/matzehuels/snhsdiag/pkg/diagram/analysis"
	"github.com/matzehuels/snhsdiag/pkg/diagram/builtin"
	errs "github.com/matzehuels/snhsdiag/pkg/errors"
	"github.com/matzehuels/snhsdiag/pkg/observability"
)

const pipelineTOML = `
name   = "pipeline"
output = "pipeline"
format = "svg"

[[nodes]]
id = "api"

[[nodes]]
id = "db"

[[edges]]
from  = "api"
to    = "db"
label = "SQL"
`

// isolate points config and cache lookups at fresh temp directories.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolate(t)
	t.Cleanup(observability.Reset)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "render", "dfd", "architecture", "--format", "dot", "--output-dir", dir)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, name := range []string{"1.dot", "2.dot"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("output dir has %d entries, want 2 (sources cleaned up)", len(entries))
	}

	if want := builtin.DataFlow().Message + "\n"; out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestRootCommandRendersBuiltins(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t)
	if err != nil {
		t.Fatalf("snhsdiag: %v", err)
	}

	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	if strings.Join(names, ",") != "1.png,2.png" {
		t.Errorf("working directory = %v, want [1.png 2.png]", names)
	}
	for _, name := range names {
		data, _ := os.ReadFile(name)
		if !bytes.HasPrefix(data, []byte("\x89PNG")) {
			t.Errorf("%s is not a PNG", name)
		}
	}

	if want := builtin.DataFlow().Message + "\n"; out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestRenderCommand_NoCleanupKeepsSource(t *testing.T) {
	dir := t.TempDir()
	if _, err := execute(t, "render", "2", "--format", "dot", "--output-dir", dir, "--no-cleanup"); err != nil {
		t.Fatalf("render: %v", err)
	}

	src, err := os.ReadFile(filepath.Join(dir, "2"))
	if err != nil {
		t.Fatalf("source not kept: %v", err)
	}
	if !bytes.HasPrefix(src, []byte("digraph ")) {
		t.Errorf("kept source does not look like DOT: %.40q", src)
	}
}

func TestRenderCommand_DefinitionFile(t *testing.T) {
	dir := t.TempDir()
	def := filepath.Join(t.TempDir(), "pipeline.toml")
	if err := os.WriteFile(def, []byte(pipelineTOML), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "render", "--file", def, "--format", "dot", "--output-dir", dir); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "pipeline.dot")); err != nil {
		t.Errorf("missing pipeline.dot: %v", err)
	}
}

func TestRenderCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errs.Code
	}{
		{"unknown diagram", []string{"render", "grades"}, errs.ErrCodeDiagramNotFound},
		{"invalid name", []string{"render", "../x"}, errs.ErrCodeInvalidInput},
		{"bad format", []string{"render", "dfd", "--format", "bmp"}, errs.ErrCodeInvalidFormat},
		{"bad engine", []string{"render", "dfd", "--engine", "cairo"}, errs.ErrCodeInvalidEngine},
		{"missing file", []string{"render", "--file", "nope.toml"}, errs.ErrCodeFileNotFound},
		{"watch without file", []string{"render", "dfd", "--watch"}, errs.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := execute(t, append(tt.args, "--output-dir", dir)...)
			if !errs.Is(err, tt.code) {
				t.Fatalf("err = %v, want code %s", err, tt.code)
			}
			if entries, _ := os.ReadDir(dir); len(entries) != 0 {
				t.Errorf("failed render left %d files behind", len(entries))
			}
		})
	}
}

func TestRenderCommand_EngineUnavailable(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "render", "dfd", "--engine", "exec", "--dot-path", filepath.Join(dir, "no-such-dot"), "--output-dir", dir, "--no-cache")
	if !errs.Is(err, errs.ErrCodeEngineUnavailable) {
		t.Fatalf("err = %v, want %s", err, errs.ErrCodeEngineUnavailable)
	}
	if _, err := os.Stat(filepath.Join(dir, "1.png")); !os.IsNotExist(err) {
		t.Errorf("1.png exists after failed render")
	}
}

func TestRenderWatch(t *testing.T) {
	isolate(t)
	t.Cleanup(observability.Reset)

	dir := t.TempDir()
	def := filepath.Join(t.TempDir(), "pipeline.toml")
	if err := os.WriteFile(def, []byte(pipelineTOML), 0644); err != nil {
		t.Fatal(err)
	}
	image := filepath.Join(dir, "pipeline.dot")

	c := New(io.Discard, LogInfo)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.runRender(ctx, nil, &renderOpts{
			files:     []string{def},
			format:    "dot",
			outputDir: dir,
			watch:     true,
			out:       io.Discard,
		})
	}()

	waitFor(t, func() bool { _, err := os.Stat(image); return err == nil })
	if err := os.Remove(image); err != nil {
		t.Fatal(err)
	}
	// Give the watcher time to register before changing the file.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(def, []byte(strings.Replace(pipelineTOML, `"SQL"`, `"JDBC"`, 1)), 0644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { _, err := os.Stat(image); return err == nil })

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("runRender returned %v, want context.Canceled", err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for condition")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestSourceCommand(t *testing.T) {
	out, err := execute(t, "source", "1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "digraph ") || !strings.Contains(out, "SNHS_DFD") {
		t.Errorf("unexpected source header: %.60q", out)
	}
	if got := strings.Count(out, " -> "); got != 30 {
		t.Errorf("source has %d edges, want 30", got)
	}
}

func TestInspectCommandJSON(t *testing.T) {
	out, err := execute(t, "inspect", "architecture", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var r analysis.Report
	if err := json.Unmarshal([]byte(out), &r); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if r.Nodes != 10 || r.Edges != 12 {
		t.Errorf("report counts = %d/%d, want 10/12", r.Nodes, r.Edges)
	}
}

func TestExportCommand(t *testing.T) {
	tests := []struct {
		args []string
		kind definition.Kind
	}{
		{[]string{"export", "dfd"}, definition.KindTOML},
		{[]string{"export", "architecture", "--as", "yaml"}, definition.KindYAML},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			out, err := execute(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			f, err := definition.Decode(strings.NewReader(out), tt.kind)
			if err != nil {
				t.Fatalf("exported definition does not decode: %v", err)
			}
			d, _ := builtin.Lookup(tt.args[1])
			if f.Name != d.Name || f.Output != d.Output {
				t.Errorf("exported name/output = %s/%s, want %s/%s", f.Name, f.Output, d.Name, d.Output)
			}
		})
	}
}

func TestExportKind(t *testing.T) {
	tests := []struct {
		as, output string
		want       definition.Kind
		wantErr    bool
	}{
		{"", "", definition.KindTOML, false},
		{"yml", "", definition.KindYAML, false},
		{"", "arch.yaml", definition.KindYAML, false},
		{"toml", "arch.yaml", definition.KindTOML, false},
		{"json", "", "", true},
		{"", "arch.txt", "", true},
	}

	for _, tt := range tests {
		got, err := exportKind(tt.as, tt.output)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("exportKind(%q, %q) = %q, %v", tt.as, tt.output, got, err)
		}
	}
}

func TestListCommand(t *testing.T) {
	out, err := execute(t, "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"dfd", "architecture", "1.png", "2.png", "30", "12"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q", want)
		}
	}
}

func TestConfigCommands(t *testing.T) {
	out, err := execute(t, "config", "show")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `engine = "graphviz"`) {
		t.Errorf("config show missing engine:\n%s", out)
	}

	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte("engine = \"exec\"\nunknown = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", cfg, "config", "show"); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("unknown config key: err = %v, want %s", err, errs.ErrCodeInvalidConfig)
	}
}

func TestCachePathCommand(t *testing.T) {
	isolate(t)
	t.Cleanup(observability.Reset)
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "path"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(out.String()), filepath.Join(cacheHome, "snhsdiag"); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestResolveTargets(t *testing.T) {
	defs, err := resolveTargets(nil, nil)
	if err != nil || len(defs) != 2 {
		t.Fatalf("resolveTargets() = %d defs, %v; want all builtins", len(defs), err)
	}

	defs, err = resolveTargets([]string{"1", "dfd", "arch"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(defs) != 2 || defs[0].Name != "dfd" || defs[1].Name != "architecture" {
		t.Errorf("aliases not deduplicated in order: %v", defs)
	}
}

func TestDiagramListModel(t *testing.T) {
	press := func(m tea.Model, keys ...string) tea.Model {
		for _, k := range keys {
			var msg tea.KeyMsg
			switch k {
			case "down":
				msg = tea.KeyMsg{Type: tea.KeyDown}
			case "enter":
				msg = tea.KeyMsg{Type: tea.KeyEnter}
			case "space":
				msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
			default:
				msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
			}
			m, _ = m.Update(msg)
		}
		return m
	}

	tests := []struct {
		name string
		keys []string
		want []string
	}{
		{"cursor item", []string{"down", "enter"}, []string{"architecture"}},
		{"toggled set", []string{"space", "down", "space", "enter"}, []string{"dfd", "architecture"}},
		{"all", []string{"a", "enter"}, []string{"dfd", "architecture"}},
		{"quit", []string{"q"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(NewDiagramListModel(builtin.All()), tt.keys...).(DiagramListModel)
			var got []string
			for _, d := range m.Selected {
				got = append(got, d.Name)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Selected = %v, want %v", got, tt.want)
			}
			if !strings.Contains(m.View(), "Select Diagrams") {
				t.Error("View() missing title")
			}
		})
	}
}

func TestLogHooks(t *testing.T) {
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	installHooks(newLogger(&buf, log.DebugLevel))
	ctx := context.Background()
	observability.Render().OnRenderStart(ctx, "SNHS_DFD", "png")
	observability.Cache().OnCacheHit(ctx, "file")
	observability.HTTP().OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)

	for _, want := range []string{"render start", "cache hit", "response"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	t.Setenv("SHELL", "/usr/bin/zsh")
	out, err := execute(t, "completion")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "#compdef snhsdiag") {
		t.Errorf("expected a zsh script from $SHELL, got %.60q", out)
	}

	t.Setenv("SHELL", "/bin/tcsh")
	if _, err := execute(t, "completion"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("undetectable shell: err = %v, want %s", err, errs.ErrCodeInvalidInput)
	}
	if out, err := execute(t, "completion", "bash"); err != nil || !strings.Contains(out, "snhsdiag") {
		t.Errorf("completion bash = %.60q, %v", out, err)
	}
}

func TestDetectShell(t *testing.T) {
	tests := map[string]string{
		"/bin/bash":           "bash",
		"/usr/local/bin/fish": "fish",
		"pwsh":                "powershell",
		"/bin/sh":             "",
		"":                    "",
	}
	for in, want := range tests {
		if got := detectShell(in); got != want {
			t.Errorf("detectShell(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReportError(t *testing.T) {
	tests := []struct {
		err  error
		hint string
	}{
		{errs.New(errs.ErrCodeEngineUnavailable, "dot not found"), "Install Graphviz"},
		{fmt.Errorf("render dfd: %w", errs.New(errs.ErrCodeDiagramNotFound, "x")), "snhsdiag list"},
		{errors.New("plain failure"), ""},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		ReportError(&buf, tt.err)
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		if !strings.Contains(lines[0], tt.err.Error()) {
			t.Errorf("first line = %q, want the error", lines[0])
		}
		if tt.hint == "" && len(lines) != 1 {
			t.Errorf("unexpected hint for %v: %q", tt.err, lines[1:])
		}
		if tt.hint != "" && (len(lines) != 2 || !strings.Contains(lines[1], tt.hint)) {
			t.Errorf("hint for %v = %q, want %q", tt.err, lines[1:], tt.hint)
		}
	}
}
