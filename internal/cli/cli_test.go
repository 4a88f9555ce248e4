package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"headerflow/internal/extractor"
)

func init() {
	color.NoColor = true
}

// --- parseHeaderFlags ---

func TestParseHeaderFlags(t *testing.T) {
	got, err := parseHeaderFlags([]string{"X-Token: abc", "Accept:text/html"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["X-Token"] != "abc" {
		t.Errorf("X-Token = %q, want abc", got["X-Token"])
	}
	if got["Accept"] != "text/html" {
		t.Errorf("Accept = %q, want text/html", got["Accept"])
	}
}

func TestParseHeaderFlags_Malformed(t *testing.T) {
	if _, err := parseHeaderFlags([]string{"no-colon-here"}); err == nil {
		t.Error("expected error for header without colon")
	}
	if _, err := parseHeaderFlags([]string{": value"}); err == nil {
		t.Error("expected error for header without name")
	}
}

func TestParseHeaderFlags_Empty(t *testing.T) {
	got, err := parseHeaderFlags(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil map, got %v", got)
	}
}

// --- output formatting ---

func TestPrintCapturesJSON(t *testing.T) {
	var buf bytes.Buffer
	captures := []extractor.Capture{
		{URL: "https://example.com", StatusCode: 200, Status: "success"},
	}
	if err := printCaptures(&buf, captures, "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded []extractor.Capture
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].URL != "https://example.com" {
		t.Errorf("unexpected decoded output: %+v", decoded)
	}
}

func TestPrintCapturesInline(t *testing.T) {
	var buf bytes.Buffer
	captures := []extractor.Capture{
		{
			URL:             "https://example.com",
			StatusCode:      200,
			Status:          "success",
			RequestHeaders:  map[string]string{"User-Agent": "test"},
			ResponseHeaders: map[string]string{"Content-Type": "text/html"},
		},
	}
	if err := printCaptures(&buf, captures, "inline"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"https://example.com", "status: 200", "User-Agent", "Content-Type"} {
		if !strings.Contains(out, want) {
			t.Errorf("inline output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintCapturesInline_Error(t *testing.T) {
	var buf bytes.Buffer
	captures := []extractor.Capture{
		{URL: "https://down.example", Error: "connection refused", Status: "error"},
	}
	if err := printCaptures(&buf, captures, "inline"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "error: connection refused") {
		t.Errorf("inline output missing error line:\n%s", buf.String())
	}
}

// --- commands end to end ---

func writeConfigFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	content := "output_dir: " + filepath.Join(dir, "out") + "\nauto_create_output_dir: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestCaptureCommand_JSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Served-By", "cli-test")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfgPath := writeConfigFile(t, t.TempDir())

	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"capture", server.URL, "--format", "json", "--config", cfgPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	var captures []extractor.Capture
	if err := json.Unmarshal(buf.Bytes(), &captures); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(captures) != 1 {
		t.Fatalf("expected 1 capture, got %d", len(captures))
	}
	if captures[0].StatusCode != 200 {
		t.Errorf("status code = %d, want 200", captures[0].StatusCode)
	}
	if captures[0].ResponseHeaders["X-Served-By"] != "cli-test" {
		t.Errorf("missing response header, got %v", captures[0].ResponseHeaders)
	}
}

func TestCaptureCommand_PrepareOnly(t *testing.T) {
	cfgPath := writeConfigFile(t, t.TempDir())

	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"capture", "example.com", "--prepare-only", "--format", "json", "--config", cfgPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("capture failed: %v", err)
	}

	var captures []extractor.Capture
	if err := json.Unmarshal(buf.Bytes(), &captures); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if captures[0].Status != "prepared" {
		t.Errorf("status = %q, want prepared", captures[0].Status)
	}
	if captures[0].URL != "https://example.com" {
		t.Errorf("URL = %q, want https scheme added", captures[0].URL)
	}
	if len(captures[0].RequestHeaders) == 0 {
		t.Error("expected prepared request headers")
	}
}

func TestCaptureCommand_BadFormat(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"capture", "example.com", "--format", "xml"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token": "abc123"}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	cfgPath := writeConfigFile(t, dir)

	seqPath := filepath.Join(dir, "seq.yaml")
	seq := "name: test\nsteps:\n  - name: login\n    url: " + server.URL + "\n    extract:\n      token: token\n"
	if err := os.WriteFile(seqPath, []byte(seq), 0o644); err != nil {
		t.Fatalf("writing sequence: %v", err)
	}

	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"run", seqPath, "--config", cfgPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("run failed: %v\n%s", err, buf.String())
	}

	out := buf.String()
	if !strings.Contains(out, "OK") || !strings.Contains(out, "login") {
		t.Errorf("summary missing step line:\n%s", out)
	}
	if !strings.Contains(out, "login.token = abc123") {
		t.Errorf("summary missing extracted value:\n%s", out)
	}
}

func TestRunCommand_SaveResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	cfgPath := writeConfigFile(t, dir)

	seqPath := filepath.Join(dir, "seq.yaml")
	seq := "name: test\nsteps:\n  - name: ping\n    url: " + server.URL + "\n"
	if err := os.WriteFile(seqPath, []byte(seq), 0o644); err != nil {
		t.Fatalf("writing sequence: %v", err)
	}

	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"run", seqPath, "--config", cfgPath, "--save", "-o", "results.json"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("run failed: %v\n%s", err, buf.String())
	}

	saved := filepath.Join(dir, "out", "results.json")
	if _, err := os.Stat(saved); err != nil {
		t.Fatalf("expected saved results at %s: %v", saved, err)
	}
}

func TestConfigCommand(t *testing.T) {
	cfgPath := writeConfigFile(t, t.TempDir())

	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"config", "--config", cfgPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if !strings.Contains(buf.String(), "default_timeout") {
		t.Errorf("config dump missing default_timeout:\n%s", buf.String())
	}
}
