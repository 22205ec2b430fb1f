package main

// Notes:
// - isCommand / looksLikeMarkdown: we test command name matching and
//   markdown extension detection.
// - runMain: we test exit codes and output for every command, with a
//   bytes.Buffer environment. Conversions run for real in a temp dir.
// - runServe: we bind 127.0.0.1:0, wait for OnListen, hit /health and
//   /convert, then cancel the context and expect a clean shutdown.
// Tests that touch the environment (t.Setenv) are not parallel.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-md2docx/internal/storage"
)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

func testEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &Environment{
		Now:    func() time.Time { return time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC) },
		Stdout: &stdout,
		Stderr: &stderr,
	}, &stdout, &stderr
}

func writeMarkdown(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// TestIsCommand - Command name matching
// ---------------------------------------------------------------------------

func TestIsCommand(t *testing.T) {
	t.Parallel()
	tests := []struct {
		arg   string
		names []string
		want  bool
	}{
		{"serve", []string{"serve"}, true},
		{"--version", []string{"version", "--version"}, true},
		{"-h", []string{"help", "-h", "--help"}, true},
		{"Serve", []string{"serve"}, false},
		{"", []string{"serve"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			t.Parallel()
			if got := isCommand(tt.arg, tt.names...); got != tt.want {
				t.Errorf("isCommand(%q, %v) = %v, want %v", tt.arg, tt.names, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLooksLikeMarkdown - File extension detection
// ---------------------------------------------------------------------------

func TestLooksLikeMarkdown(t *testing.T) {
	t.Parallel()
	tests := []struct {
		arg  string
		want bool
	}{
		{"doc.md", true},
		{"DOC.MD", true},
		{"notes.markdown", true},
		{"dir/readme.md", true},
		{"doc.txt", false},
		{"md", false},
		{"serve", false},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			t.Parallel()
			if got := looksLikeMarkdown(tt.arg); got != tt.want {
				t.Errorf("looksLikeMarkdown(%q) = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolveOutputPath - Output path derivation
// ---------------------------------------------------------------------------

func TestResolveOutputPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		explicit string
		format   string
		want     string
	}{
		{"docx from md", "doc.md", "", "docx", "doc.docx"},
		{"html from markdown", "dir/notes.markdown", "", "html", "dir/notes.html"},
		{"explicit wins", "doc.md", "out/report.docx", "docx", "out/report.docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := resolveOutputPath(tt.input, tt.explicit, tt.format); got != tt.want {
				t.Errorf("resolveOutputPath(%q, %q, %q) = %q, want %q", tt.input, tt.explicit, tt.format, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Dispatch - Exit codes for commands that need no files
// ---------------------------------------------------------------------------

func TestRunMain_Dispatch(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no args", []string{"md2docx"}, ExitUsage, "", "Usage: md2docx"},
		{"version", []string{"md2docx", "version"}, ExitSuccess, "md2docx " + Version, ""},
		{"--version", []string{"md2docx", "--version"}, ExitSuccess, "md2docx " + Version, ""},
		{"help", []string{"md2docx", "help"}, ExitSuccess, "Commands:", ""},
		{"help convert", []string{"md2docx", "help", "convert"}, ExitSuccess, "md2docx convert <input.md>", ""},
		{"help serve", []string{"md2docx", "help", "serve"}, ExitSuccess, "POST /convert", ""},
		{"help unknown", []string{"md2docx", "help", "bogus"}, ExitSuccess, "", "Unknown command: bogus"},
		{"unknown command", []string{"md2docx", "bogus"}, ExitUsage, "", "unknown command"},
		{"convert without input", []string{"md2docx", "convert"}, ExitIO, "", "no input specified"},
		{"convert bad extension", []string{"md2docx", "convert", "doc.txt"}, ExitUsage, "", "extension"},
		{"convert unknown flag", []string{"md2docx", "convert", "--nope", "doc.md"}, ExitUsage, "", "invalid usage"},
		{"convert two inputs", []string{"md2docx", "convert", "a.md", "b.md"}, ExitUsage, "", "one input file"},
		{"convert bad format", []string{"md2docx", "convert", "-f", "pdf", "doc.md"}, ExitUsage, "", "unknown output format"},
		{"convert missing file", []string{"md2docx", "convert", "does-not-exist.md"}, ExitIO, "", "failed to read markdown"},
		{"shorthand missing file", []string{"md2docx", "does-not-exist.md"}, ExitIO, "", "failed to read markdown"},
		{"config not found", []string{"md2docx", "health", "--config", "/nonexistent/md2docx.yaml"}, ExitUsage, "", "config file not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env, stdout, stderr := testEnv()

			code := runMain(tt.args, env)
			if code != tt.wantCode {
				t.Errorf("runMain(%v) = %d, want %d\nstderr: %s", tt.args, code, tt.wantCode, stderr)
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want substring %q", stdout, tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want substring %q", stderr, tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Convert - Local conversions on disk
// ---------------------------------------------------------------------------

func TestRunMain_Convert(t *testing.T) {
	t.Parallel()

	t.Run("docx by default", func(t *testing.T) {
		t.Parallel()
		input := writeMarkdown(t, "doc.md", "# Title\n\nSome **bold** text.\n")
		env, _, stderr := testEnv()

		if code := runMain([]string{"md2docx", "convert", input}, env); code != ExitSuccess {
			t.Fatalf("exit code = %d, want 0\nstderr: %s", code, stderr)
		}

		out := strings.TrimSuffix(input, ".md") + ".docx"
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if !bytes.HasPrefix(data, []byte("PK")) {
			t.Errorf("output does not look like a zip package: % x", data[:min(4, len(data))])
		}
		if !strings.Contains(stderr.String(), "wrote "+out) {
			t.Errorf("stderr = %q, want report of %s", stderr, out)
		}
	})

	t.Run("html with explicit output", func(t *testing.T) {
		t.Parallel()
		input := writeMarkdown(t, "doc.md", "# Hello\n")
		out := filepath.Join(t.TempDir(), "page.html")
		env, _, stderr := testEnv()

		code := runMain([]string{"md2docx", "convert", "--format", "HTML", "-o", out, input}, env)
		if code != ExitSuccess {
			t.Fatalf("exit code = %d, want 0\nstderr: %s", code, stderr)
		}

		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if !strings.Contains(string(data), "<h1") || !strings.Contains(string(data), "Hello") {
			t.Errorf("html = %q, want an h1 heading", data)
		}
	})

	t.Run("shorthand quiet", func(t *testing.T) {
		t.Parallel()
		input := writeMarkdown(t, "notes.markdown", "- one\n- two\n")
		env, stdout, stderr := testEnv()

		if code := runMain([]string{"md2docx", input, "-q"}, env); code != ExitSuccess {
			t.Fatalf("exit code = %d, want 0\nstderr: %s", code, stderr)
		}
		if stdout.Len() != 0 || stderr.Len() != 0 {
			t.Errorf("quiet run produced output: stdout=%q stderr=%q", stdout, stderr)
		}
		if _, err := os.Stat(strings.TrimSuffix(input, ".markdown") + ".docx"); err != nil {
			t.Errorf("output missing: %v", err)
		}
	})

	t.Run("front matter printed", func(t *testing.T) {
		t.Parallel()
		input := writeMarkdown(t, "doc.md", "---\ntitle: Report\n---\n# Body\n")
		env, stdout, stderr := testEnv()

		code := runMain([]string{"md2docx", "convert", "--front-matter", "-f", "html", input}, env)
		if code != ExitSuccess {
			t.Fatalf("exit code = %d, want 0\nstderr: %s", code, stderr)
		}
		if !strings.Contains(stdout.String(), "title: Report") {
			t.Errorf("stdout = %q, want front matter", stdout)
		}
		html, err := os.ReadFile(strings.TrimSuffix(input, ".md") + ".html")
		if err != nil {
			t.Fatalf("reading output: %v", err)
		}
		if strings.Contains(string(html), "title:") {
			t.Errorf("front matter leaked into html: %q", html)
		}
	})

	t.Run("style preset", func(t *testing.T) {
		t.Parallel()
		input := writeMarkdown(t, "doc.md", "# Styled\n")
		env, _, stderr := testEnv()

		code := runMain([]string{"md2docx", "convert", "--style", "large", "--font-size", "12", input}, env)
		if code != ExitSuccess {
			t.Fatalf("exit code = %d, want 0\nstderr: %s", code, stderr)
		}
	})

	t.Run("unknown style preset", func(t *testing.T) {
		t.Parallel()
		input := writeMarkdown(t, "doc.md", "# Styled\n")
		env, _, stderr := testEnv()

		code := runMain([]string{"md2docx", "convert", "--style", "fancy", input}, env)
		if code != ExitUsage {
			t.Errorf("exit code = %d, want %d\nstderr: %s", code, ExitUsage, stderr)
		}
		if !strings.Contains(stderr.String(), "built-in presets") {
			t.Errorf("stderr = %q, want preset hint", stderr)
		}
	})

	t.Run("missing template", func(t *testing.T) {
		t.Parallel()
		input := writeMarkdown(t, "doc.md", "# Hi\n")
		env, _, stderr := testEnv()

		code := runMain([]string{"md2docx", "convert", "--template", "/nonexistent/t.docx", input}, env)
		if code != ExitIO {
			t.Errorf("exit code = %d, want %d\nstderr: %s", code, ExitIO, stderr)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunMain_Health - Health envelope
// ---------------------------------------------------------------------------

func TestRunMain_Health(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	env, stdout, stderr := testEnv()

	if code := runMain([]string{"md2docx", "health"}, env); code != ExitSuccess {
		t.Fatalf("exit code = %d, want 0\nstderr: %s", code, stderr)
	}

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Status      string `json:"status"`
			Environment string `json:"environment"`
		} `json:"data"`
		Timestamp string `json:"timestamp"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &body); err != nil {
		t.Fatalf("decoding %q: %v", stdout, err)
	}
	if !body.Success || body.Data.Status != "healthy" {
		t.Errorf("body = %+v, want success and status healthy", body)
	}
	if body.Data.Environment != "staging" {
		t.Errorf("environment = %q, want staging", body.Data.Environment)
	}
	if !strings.HasPrefix(body.Timestamp, "2026-03-14T15:09:26") {
		t.Errorf("timestamp = %q, want injected clock", body.Timestamp)
	}
}

// ---------------------------------------------------------------------------
// TestRunServe - Service lifecycle
// ---------------------------------------------------------------------------

func TestRunServe(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "local")
	t.Setenv("LOCAL_STORAGE_DIR", t.TempDir())

	env, _, _ := testEnv()
	addrc := make(chan net.Addr, 1)
	env.OnListen = func(addr net.Addr) { addrc <- addr }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- runServe(ctx, []string{"--listen", "127.0.0.1:0", "--log-level", "error"}, env)
	}()

	var base string
	select {
	case addr := <-addrc:
		base = "http://" + addr.String()
	case err := <-errc:
		t.Fatalf("runServe returned before listening: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for listener")
	}

	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Post(base+"/convert", "application/json",
		strings.NewReader(`{"content":"# Hi","output_format":"docx"}`))
	if err != nil {
		t.Fatalf("POST /convert: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("POST /convert status = %d, want 200\nbody: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `"download_url"`) {
		t.Errorf("body = %s, want download_url", body)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("runServe() = %v, want nil after cancel", err)
		}
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("timed out waiting for shutdown")
	}
}

func TestRunServe_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserving port: %v", err)
	}
	defer ln.Close()

	env, _, _ := testEnv()
	err = runServe(context.Background(), []string{"--listen", ln.Addr().String(), "--log-level", "error"}, env)
	if !errors.Is(err, ErrListen) {
		t.Fatalf("runServe() = %v, want ErrListen", err)
	}
	if got := exitCodeFor(err); got != ExitIO {
		t.Errorf("exitCodeFor = %d, want %d", got, ExitIO)
	}
}

func TestRunServe_BadFlag(t *testing.T) {
	t.Parallel()
	env, _, _ := testEnv()

	err := runServe(context.Background(), []string{"--bogus"}, env)
	if !errors.Is(err, ErrUsage) {
		t.Errorf("runServe() = %v, want ErrUsage", err)
	}
	if code := exitCodeFor(fmt.Errorf("wrapped: %w", err)); code != ExitUsage {
		t.Errorf("exitCodeFor = %d, want %d", code, ExitUsage)
	}
}

// ---------------------------------------------------------------------------
// TestProbeStorage - Startup storage check
// ---------------------------------------------------------------------------

func TestProbeStorage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := storage.NewLocalBackend(storage.Config{Backend: storage.BackendLocal, LocalDir: dir})
	if err != nil {
		t.Fatalf("NewLocalBackend() error = %v", err)
	}

	if err := probeStorage(context.Background(), store, 5*time.Minute); err != nil {
		t.Fatalf("probeStorage() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading store dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("probe left %d files behind", len(entries))
	}
}

func TestRunServe_CheckStorageFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STORAGE_BACKEND", "local")
	t.Setenv("LOCAL_STORAGE_DIR", filepath.Join(blocker, "artifacts"))

	env, _, _ := testEnv()
	err := runServe(context.Background(), []string{"--check-storage", "--listen", "127.0.0.1:0", "--log-level", "error"}, env)
	if !errors.Is(err, storage.ErrStorage) {
		t.Fatalf("runServe() = %v, want ErrStorage", err)
	}
	if got := exitCodeFor(err); got != ExitStorage {
		t.Errorf("exitCodeFor = %d, want %d", got, ExitStorage)
	}
	if !strings.Contains(err.Error(), "LOCAL_STORAGE_DIR") {
		t.Errorf("error = %q, want storage hint", err)
	}
}
