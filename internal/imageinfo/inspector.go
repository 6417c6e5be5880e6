package imageinfo

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"shotlist/internal/logging"
	"shotlist/internal/media/ffprobe"
	"shotlist/internal/probecache"
)

const (
	sourceDecoder = "decoder"
	sourceFFprobe = "ffprobe"
)

// ProbeFunc returns the pixel dimensions of path using an external tool.
type ProbeFunc func(ctx context.Context, path string) (int, int, error)

// Options configures an Inspector.
type Options struct {
	// Probe is the fallback for formats the decoders reject. Nil disables it.
	Probe  ProbeFunc
	Cache  *probecache.Cache
	Logger *slog.Logger
}

// Inspector builds entries for image files.
type Inspector struct {
	probe  ProbeFunc
	cache  *probecache.Cache
	logger *slog.Logger
}

// NewInspector constructs an Inspector.
func NewInspector(opts Options) *Inspector {
	return &Inspector{
		probe:  opts.Probe,
		cache:  opts.Cache,
		logger: logging.NewComponentLogger(opts.Logger, "imageinfo"),
	}
}

// FFprobeFunc adapts the ffprobe wrapper to a ProbeFunc.
func FFprobeFunc(binary string) ProbeFunc {
	return func(ctx context.Context, path string) (int, int, error) {
		return ffprobe.Dimensions(ctx, binary, path)
	}
}

// Inspect returns the entry for path. It never fails; unknown values are N/A.
func (i *Inspector) Inspect(ctx context.Context, path string) Entry {
	entry := Bare(path)

	info, err := os.Stat(path)
	if err != nil {
		i.logger.Debug("stat failed", logging.String(logging.FieldPath, path), logging.Error(err))
		return entry
	}
	entry.FileSize = FileSize(info.Size())

	width, height, ok := i.dimensions(ctx, path, info.Size(), info.ModTime())
	if ok {
		entry.ImageSize = ImageSize(width, height)
	}
	return entry
}

func (i *Inspector) dimensions(ctx context.Context, path string, size int64, modTime time.Time) (int, int, bool) {
	if cached, hit, err := i.cache.Lookup(ctx, path, size, modTime); err != nil {
		i.logger.Debug("probe cache lookup failed", logging.String(logging.FieldPath, path), logging.Error(err))
	} else if hit {
		return cached.Width, cached.Height, true
	}

	source := sourceDecoder
	width, height, err := DecodeDimensions(path)
	if err != nil && i.probe != nil {
		source = sourceFFprobe
		width, height, err = i.probe(ctx, path)
	}
	if err != nil {
		logging.WarnWithContext(i.logger, "image dimensions unavailable", "image_probe_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ffprobe or enable classifier.probe_dimensions"),
			logging.String(logging.FieldImpact, "image size shown as N/A"))
		return 0, 0, false
	}

	if storeErr := i.cache.Store(ctx, probecache.Entry{
		Path:      path,
		SizeBytes: size,
		ModTime:   modTime,
		Width:     width,
		Height:    height,
		Source:    source,
	}); storeErr != nil {
		i.logger.Debug("probe cache store failed", logging.String(logging.FieldPath, path), logging.Error(storeErr))
	}
	return width, height, true
}

// DecodeDimensions reads only the image header of path.
func DecodeDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// ImageSize formats pixel dimensions as "W x H".
func ImageSize(width, height int) string {
	if width <= 0 || height <= 0 {
		return NotAvailable
	}
	return fmt.Sprintf("%d x %d", width, height)
}

// FileSize formats a byte count with binary units.
func FileSize(size int64) string {
	if size < 0 {
		return NotAvailable
	}
	return humanize.IBytes(uint64(size))
}
