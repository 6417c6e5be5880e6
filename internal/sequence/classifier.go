package sequence

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"shotlist/internal/imageinfo"
	"shotlist/internal/logging"
)

// Inspector produces metadata for one image file.
type Inspector interface {
	Inspect(ctx context.Context, path string) imageinfo.Entry
}

// Result is the outcome of one classification pass.
type Result struct {
	Groups  Groups            `json:"groups" yaml:"groups"`
	Singles []imageinfo.Entry `json:"singles" yaml:"singles"`
}

// Paths returns every classified path, groups first.
func (r Result) Paths() []string {
	var paths []string
	for _, group := range r.Groups {
		paths = append(paths, group.Paths()...)
	}
	for _, single := range r.Singles {
		paths = append(paths, single.Path)
	}
	return paths
}

// Empty reports whether the pass found nothing.
func (r Result) Empty() bool {
	return len(r.Groups) == 0 && len(r.Singles) == 0
}

// Options configures a Classifier.
type Options struct {
	Formats []string
	// Inspector builds entries. Nil records paths without touching file contents.
	Inspector Inspector
	Workers   int
	Logger    *slog.Logger
}

// Classifier runs the full classification pipeline.
type Classifier struct {
	formats   FormatSet
	inspector Inspector
	workers   int
	logger    *slog.Logger
}

// NewClassifier constructs a Classifier.
func NewClassifier(opts Options) *Classifier {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Classifier{
		formats:   NewFormatSet(opts.Formats),
		inspector: opts.Inspector,
		workers:   workers,
		logger:    logging.NewComponentLogger(opts.Logger, "classifier"),
	}
}

// Classify resolves paths, descending into directories, and returns the
// grouped sequences and standalone images found. Empty input yields an empty
// result. Unreadable paths are skipped.
func (c *Classifier) Classify(ctx context.Context, paths []string) (Result, error) {
	visited := make(map[string]struct{})
	result, err := c.classify(ctx, paths, visited)
	if err != nil {
		return Result{}, err
	}
	c.logger.Debug("classified paths",
		logging.Int("inputs", len(paths)),
		logging.Int("groups", len(result.Groups)),
		logging.Int("singles", len(result.Singles)))
	return result, nil
}

func (c *Classifier) classify(ctx context.Context, paths []string, visited map[string]struct{}) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	var result Result
	if len(paths) == 0 {
		return result, nil
	}

	files, dirs := ResolvePaths(paths, c.formats, c.logger)
	sequencePaths, singlePaths := DetectSequences(files)

	sequenceEntries, err := c.inspectAll(ctx, sequencePaths)
	if err != nil {
		return Result{}, err
	}
	singleEntries, err := c.inspectAll(ctx, singlePaths)
	if err != nil {
		return Result{}, err
	}
	result.Groups = GroupSequences(sequenceEntries)
	result.Singles = singleEntries

	for _, dir := range dirs {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			real = dir
		}
		if _, seen := visited[real]; seen {
			c.logger.Debug("skipping directory already visited", logging.String(logging.FieldPath, dir))
			continue
		}
		visited[real] = struct{}{}

		children, err := listDir(dir)
		if err != nil {
			c.logger.Debug("skipping unreadable directory", logging.String(logging.FieldPath, dir), logging.Error(err))
			continue
		}
		child, err := c.classify(ctx, children, visited)
		if err != nil {
			return Result{}, err
		}
		result.Groups = result.Groups.Merge(child.Groups)
		result.Singles = append(result.Singles, child.Singles...)
	}
	return result, nil
}

func (c *Classifier) inspectAll(ctx context.Context, paths []string) ([]imageinfo.Entry, error) {
	entries := make([]imageinfo.Entry, len(paths))
	if len(paths) == 0 {
		return entries, nil
	}
	if c.inspector == nil {
		for i, path := range paths {
			entries[i] = imageinfo.Bare(path)
		}
		return entries, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entries[i] = c.inspector.Inspect(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func listDir(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	children := make([]string, len(dirEntries))
	for i, entry := range dirEntries {
		children[i] = filepath.Join(dir, entry.Name())
	}
	return children, nil
}
