package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"shotlist/internal/config"
)

func writeStub(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestCheckBinaries(t *testing.T) {
	present := filepath.Join(t.TempDir(), "present")
	writeStub(t, present, "echo 'present version 7.1'\necho second line\n")
	reqs := []Requirement{
		{Name: "Present", Command: present, VersionArgs: []string{"-version"}},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: "  "},
	}

	results := CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Version != "present version 7.1" {
		t.Fatalf("unexpected version %q", results[0].Version)
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func TestRequirementsFollowConfig(t *testing.T) {
	cfg := config.Default()
	cfg.FFprobe.Binary = "/opt/ffprobe"
	cfg.Classifier.ProbeDimensions = false

	reqs := Requirements(&cfg)
	if len(reqs) != 1 || reqs[0].Command != "/opt/ffprobe" {
		t.Fatalf("unexpected requirements %#v", reqs)
	}
	if !reqs[0].Optional {
		t.Fatal("ffprobe should be optional when probing is disabled")
	}
}

func TestCheckFFmpegForProbeSidecar(t *testing.T) {
	tmp := t.TempDir()
	probePath := filepath.Join(tmp, executableName("ffprobe"))
	ffmpegPath := filepath.Join(tmp, executableName("ffmpeg"))
	writeStub(t, probePath, "exit 0\n")
	writeStub(t, ffmpegPath, "echo 'ffmpeg version 7.0'\n")

	status := CheckFFmpegForProbe(context.Background(), probePath)
	if !status.Available {
		t.Fatalf("expected ffmpeg sidecar to be available, got detail %q", status.Detail)
	}
	if status.Command != ffmpegPath {
		t.Fatalf("expected ffmpeg command %q, got %q", ffmpegPath, status.Command)
	}
	if status.Version != "ffmpeg version 7.0" {
		t.Fatalf("unexpected version %q", status.Version)
	}
}

func TestCheckFFmpegForProbePathFallback(t *testing.T) {
	tmp := t.TempDir()
	probePath := filepath.Join(tmp, executableName("ffprobe"))
	writeStub(t, probePath, "exit 0\n")

	binDir := filepath.Join(tmp, "bin")
	ffmpegPath := filepath.Join(binDir, executableName("ffmpeg"))
	writeStub(t, ffmpegPath, "exit 0\n")
	t.Setenv("PATH", binDir)

	status := CheckFFmpegForProbe(context.Background(), probePath)
	if !status.Available {
		t.Fatalf("expected ffmpeg fallback to be available, got detail %q", status.Detail)
	}
	if status.Command != ffmpegPath {
		t.Fatalf("expected ffmpeg command %q, got %q", ffmpegPath, status.Command)
	}
}

func TestCheckFFmpegForProbeNotFound(t *testing.T) {
	t.Setenv("PATH", "")
	status := CheckFFmpegForProbe(context.Background(), filepath.Join(t.TempDir(), "ffprobe"))
	if status.Available {
		t.Fatal("expected ffmpeg resolution to fail")
	}
	if status.Detail == "" {
		t.Fatal("expected detail message when ffmpeg is unavailable")
	}
}
