package deps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpegForProbe reports the ffmpeg binary paired with the configured
// ffprobe. Builds usually ship both side by side, so an ffmpeg next to the
// resolved ffprobe wins over the one on PATH.
func CheckFFmpegForProbe(ctx context.Context, ffprobeCommand string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Encodes the checked selection downstream",
		Optional:    true,
	}

	probeBinary := strings.TrimSpace(ffprobeCommand)
	if probeBinary != "" {
		if resolved, err := exec.LookPath(probeBinary); err == nil {
			if abs, absErr := filepath.Abs(resolved); absErr == nil {
				resolved = abs
			}
			sidecar := filepath.Join(filepath.Dir(resolved), executableName("ffmpeg"))
			if info, statErr := os.Stat(sidecar); statErr == nil && !info.IsDir() {
				result.Command = sidecar
				result.Available = true
				result.Version = readVersion(ctx, sidecar, []string{"-version"})
				return result
			}
		}
	}

	path, err := exec.LookPath(executableName("ffmpeg"))
	if err != nil {
		result.Command = "ffmpeg"
		result.Detail = fmt.Sprintf("ffmpeg not found next to %q or on PATH", probeBinary)
		return result
	}
	result.Command = path
	result.Available = true
	result.Version = readVersion(ctx, path, []string{"-version"})
	return result
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
