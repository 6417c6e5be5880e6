package imageinfo_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"shotlist/internal/imageinfo"
	"shotlist/internal/probecache"
	"shotlist/internal/testsupport"
)

func TestInspectDecodesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shot", "plate.0001.PNG")
	testsupport.WritePNG(t, path, 64, 32)

	entry := imageinfo.NewInspector(imageinfo.Options{}).Inspect(context.Background(), path)
	if entry.FileName != "plate.0001.PNG" {
		t.Fatalf("unexpected file name %q", entry.FileName)
	}
	if entry.Format != "png" {
		t.Fatalf("expected lowercase format, got %q", entry.Format)
	}
	if entry.ImageSize != "64 x 32" {
		t.Fatalf("unexpected image size %q", entry.ImageSize)
	}
	if entry.FileSize == imageinfo.NotAvailable {
		t.Fatal("expected file size to be known")
	}
	if entry.Path != path {
		t.Fatalf("unexpected path %q", entry.Path)
	}
}

func TestInspectFallsBackToProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.0001.exr")
	testsupport.WriteFile(t, path, 2048)

	calls := 0
	probe := func(ctx context.Context, p string) (int, int, error) {
		calls++
		return 1920, 1080, nil
	}
	entry := imageinfo.NewInspector(imageinfo.Options{Probe: probe}).Inspect(context.Background(), path)
	if entry.ImageSize != "1920 x 1080" {
		t.Fatalf("unexpected image size %q", entry.ImageSize)
	}
	if entry.FileSize != "2.0 KiB" {
		t.Fatalf("unexpected file size %q", entry.FileSize)
	}
	if calls != 1 {
		t.Fatalf("expected one probe call, got %d", calls)
	}
}

func TestInspectDegradesToNotAvailable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.exr")
	testsupport.WriteFile(t, path, 10)

	probe := func(ctx context.Context, p string) (int, int, error) {
		return 0, 0, errors.New("no ffprobe")
	}
	entry := imageinfo.NewInspector(imageinfo.Options{Probe: probe}).Inspect(context.Background(), path)
	if entry.ImageSize != imageinfo.NotAvailable {
		t.Fatalf("expected N/A image size, got %q", entry.ImageSize)
	}
	if entry.FileSize != "10 B" {
		t.Fatalf("unexpected file size %q", entry.FileSize)
	}

	missing := imageinfo.NewInspector(imageinfo.Options{}).Inspect(context.Background(), filepath.Join(dir, "missing.png"))
	if missing.FileSize != imageinfo.NotAvailable || missing.ImageSize != imageinfo.NotAvailable {
		t.Fatalf("expected N/A for missing file, got %+v", missing)
	}
}

func TestInspectUsesProbeCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cache, err := probecache.Open(ctx, filepath.Join(dir, "probe.db"), nil)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })

	path := filepath.Join(dir, "a.0001.exr")
	testsupport.WriteFile(t, path, 64)

	calls := 0
	probe := func(ctx context.Context, p string) (int, int, error) {
		calls++
		return 100, 50, nil
	}
	inspector := imageinfo.NewInspector(imageinfo.Options{Probe: probe, Cache: cache})
	first := inspector.Inspect(ctx, path)
	second := inspector.Inspect(ctx, path)
	if first.ImageSize != "100 x 50" || second.ImageSize != "100 x 50" {
		t.Fatalf("unexpected sizes %q / %q", first.ImageSize, second.ImageSize)
	}
	if calls != 1 {
		t.Fatalf("expected cached second lookup, probe called %d times", calls)
	}
}

func TestFormatHelpers(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KiB"},
		{-1, imageinfo.NotAvailable},
	}
	for _, tc := range cases {
		if got := imageinfo.FileSize(tc.size); got != tc.want {
			t.Errorf("FileSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
	if got := imageinfo.ImageSize(0, 10); got != imageinfo.NotAvailable {
		t.Errorf("expected N/A for zero width, got %q", got)
	}
	if got := imageinfo.FormatOf("/x/y/Frame.0001.TIFF"); got != "tiff" {
		t.Errorf("unexpected format %q", got)
	}
}
