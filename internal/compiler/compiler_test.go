package compiler

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sable-lang/sable/internal/cli"
	"github.com/sable-lang/sable/internal/types"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newSession(t *testing.T, dir string, logs *bytes.Buffer) *Session {
	t.Helper()

	config := cli.DefaultConfig()
	config.Dir = dir
	config.Workers = 2

	return NewSession(config, cli.NewLoggerTo(logs, true, false))
}

func TestExpandSources(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"b.sb":         "",
		"a.sb":         "",
		"notes.txt":    "",
		"nested/c.sb":  "",
		"nested/d.txt": "",
	})

	files, err := ExpandSources([]string{dir, filepath.Join(dir, "a.sb"), filepath.Join(dir, "notes.txt")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.sb"),
		filepath.Join(dir, "b.sb"),
		filepath.Join(dir, "nested", "c.sb"),
		filepath.Join(dir, "notes.txt"),
	}

	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", files, want)
	}

	if _, err := ExpandSources([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCheckAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"geometry.sb": "struct Point { x: i32, y: i32 }\n",
		"main.sb":     "fn origin() -> Point { Point { x: 0, y: 0 } }\nconst O: Point = origin();\n",
	})

	var logs bytes.Buffer

	s := newSession(t, dir, &logs)

	result, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.OK || s.Diagnostics().HasErrors() {
		var out bytes.Buffer
		_ = s.Diagnostics().Render(&out, false)
		t.Fatalf("expected a clean crate, got:\n%s", out.String())
	}

	if len(result.Files) != 2 || len(result.Items) != 3 {
		t.Fatalf("unexpected result: %d files, %d items", len(result.Files), len(result.Items))
	}

	if _, ok := result.Ctx.ResolveNamedTy("", "Point"); !ok {
		t.Fatal("Point is not registered")
	}

	if !strings.Contains(logs.String(), "checking 2 file(s)") {
		t.Errorf("missing info log in %q", logs.String())
	}

	if !strings.Contains(logs.String(), s.ID()[:8]+": ") {
		t.Errorf("log lines are not tagged with the session id: %q", logs.String())
	}
}

func TestCheckReportsParseAndTypeErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"bad.sb":  "fn broken( {}\nstatic OK: i32 = 1;\n",
		"main.sb": "static X: i32 = missing;\n",
	})

	s := newSession(t, dir, &bytes.Buffer{})

	result, err := s.Check(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.OK {
		t.Fatal("expected failure")
	}

	diags := s.Diagnostics().Diagnostics()
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", len(diags))
	}

	if diags[0].File != filepath.Join(dir, "bad.sb") || diags[0].Code != "E0001" {
		t.Errorf("unexpected first diagnostic %+v", diags[0])
	}

	if diags[1].File != filepath.Join(dir, "main.sb") {
		t.Errorf("unexpected second diagnostic %+v", diags[1])
	}

	var failed int

	for _, r := range result.Items {
		if r.Err != nil {
			failed++

			re, ok := types.AsResolutionError(r.Err)
			if !ok || re.Kind != types.UnresolvedName {
				t.Errorf("unexpected error %v", r.Err)
			}
		}
	}

	if failed != 1 {
		t.Errorf("expected 1 failed item, got %d", failed)
	}

	var out bytes.Buffer
	if err := s.Diagnostics().Render(&out, false); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out.String(), "static X: i32 = missing;") {
		t.Errorf("snippet missing from output:\n%s", out.String())
	}
}

func TestCheckRerunResetsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"main.sb": "static X: i32 = missing;\n"})

	s := newSession(t, dir, &bytes.Buffer{})

	if _, err := s.Check(context.Background()); err != nil {
		t.Fatal(err)
	}

	writeFiles(t, dir, map[string]string{"main.sb": "static X: i32 = 1;\n"})

	result, err := s.Check(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !result.OK || s.Diagnostics().HasErrors() {
		t.Fatalf("diagnostics from the first run leaked: %+v", s.Diagnostics().Diagnostics())
	}
}

func TestCheckWithoutSources(t *testing.T) {
	s := newSession(t, t.TempDir(), &bytes.Buffer{})

	if _, err := s.Check(context.Background()); err == nil {
		t.Fatal("expected error for an empty crate directory")
	}
}

func TestParseFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.sb": "", "b.sb": ""})

	s := newSession(t, dir, &bytes.Buffer{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	files := []string{filepath.Join(dir, "a.sb"), filepath.Join(dir, "b.sb")}
	if _, err := s.ParseFiles(ctx, files); err == nil {
		t.Fatal("expected context error")
	}
}

func TestParseFilesKeepsOrder(t *testing.T) {
	dir := t.TempDir()

	files := make([]string, 20)
	contents := make(map[string]string)

	for i := range files {
		name := string(rune('a'+i)) + ".sb"
		files[i] = filepath.Join(dir, name)
		contents[name] = "static S: i32 = 1;\n"
	}

	writeFiles(t, dir, contents)

	s := newSession(t, dir, &bytes.Buffer{})

	parsed, err := s.ParseFiles(context.Background(), files)
	if err != nil {
		t.Fatal(err)
	}

	for i, pf := range parsed {
		if pf.Index != i || pf.Path != files[i] || len(pf.Crate.Items) != 1 {
			t.Fatalf("slot %d holds %+v", i, pf)
		}
	}
}

func TestInitCrate(t *testing.T) {
	dir := t.TempDir()

	config, err := InitCrate(dir, "demo")
	if err != nil {
		t.Fatalf("init: %v", err)
	}

	loaded, err := cli.LoadConfig(filepath.Join(dir, cli.ManifestName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Name != "demo" || loaded.Sources[0] != "src" {
		t.Fatalf("unexpected manifest %+v", loaded)
	}

	s := NewSession(config, cli.NewLoggerTo(&bytes.Buffer{}, false, false))

	result, err := s.Check(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !result.OK {
		var out bytes.Buffer
		_ = s.Diagnostics().Render(&out, false)
		t.Fatalf("starter crate does not check:\n%s", out.String())
	}

	if _, err := InitCrate(dir, "demo"); err == nil {
		t.Fatal("expected error when the manifest exists")
	}
}

func TestWatchRechecksOnChange(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"main.sb": "static X: i32 = missing;\n"})

	s := newSession(t, dir, &bytes.Buffer{})
	s.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := make(chan bool, 8)
	done := make(chan error, 1)

	go func() {
		done <- s.Watch(ctx, func(r *Result, err error) {
			results <- err == nil && r.OK
		})
	}()

	wait := func() bool {
		select {
		case ok := <-results:
			return ok
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for a check run")
		}

		return false
	}

	if wait() {
		t.Fatal("first run should fail")
	}

	writeFiles(t, dir, map[string]string{"main.sb": "static X: i32 = 1;\n"})

	if !wait() {
		t.Fatal("run after fixing the file should succeed")
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("watch returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestNamingWarnings(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"main.sb": "static max_size: i32 = 1;\nstruct my_point { }\nfn doThing() { }\nconst _OK: i32 = 2;\n",
	})

	s := newSession(t, dir, &bytes.Buffer{})

	result, err := s.Check(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !result.OK || s.Diagnostics().HasErrors() {
		t.Fatalf("naming warnings must not fail the run: %+v", s.Diagnostics().Diagnostics())
	}

	if s.Diagnostics().WarningCount() != 3 {
		t.Fatalf("expected 3 warnings, got %+v", s.Diagnostics().Diagnostics())
	}

	var out bytes.Buffer
	if err := s.Diagnostics().Render(&out, false); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"warning: static `max_size` should have an upper case name",
		"suggestion: convert the identifier to upper case: `MAX_SIZE`",
		"`MyPoint`",
		"`do_thing`",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("missing %q in:\n%s", want, out.String())
		}
	}
}

func TestCaseConversions(t *testing.T) {
	tests := []struct {
		name string
		conv func(string) string
		in   string
		want string
	}{
		{"upper snake", toUpperSnake, "maxSize", "MAX_SIZE"},
		{"upper snake keeps", toUpperSnake, "MAX_2", "MAX_2"},
		{"snake", toSnake, "doThing2", "do_thing2"},
		{"snake keeps underscore prefix", toSnake, "_unusedArg", "_unused_arg"},
		{"camel from snake", toCamel, "my_point", "MyPoint"},
		{"camel from lower", toCamel, "point", "Point"},
		{"camel keeps", toCamel, "HTTPServer", "HTTPServer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conv(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
