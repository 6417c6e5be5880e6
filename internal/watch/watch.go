package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"shotlist/internal/logging"
	"shotlist/internal/selection"
	"shotlist/internal/sequence"
)

const defaultDebounce = 500 * time.Millisecond

// ErrLocked is returned when another watcher holds a directory's lock.
var ErrLocked = errors.New("another shotlist watcher is already watching this directory")

// Classifier turns raw paths into groups and singles.
type Classifier interface {
	Classify(ctx context.Context, paths []string) (sequence.Result, error)
}

// Batch describes one debounced insert.
type Batch struct {
	Paths      []string
	Added      []selection.NodeID
	Groups     int
	Singles    int
	Duplicates []string
	Err        error
}

// Options configures a Watcher.
type Options struct {
	Dirs       []string
	Classifier Classifier
	Tree       *selection.Tree
	Debounce   time.Duration
	LockDir    string
	// ScanExisting inserts the current contents of Dirs before watching.
	ScanExisting bool
	// OnBatch runs on the watcher goroutine after every flush.
	OnBatch func(Batch)
	Logger  *slog.Logger
}

// Watcher owns the tree while Run is active; callers must not touch the tree
// concurrently outside OnBatch.
type Watcher struct {
	dirs         []string
	classifier   Classifier
	tree         *selection.Tree
	debounce     time.Duration
	lockPaths    []string
	scanExisting bool
	onBatch      func(Batch)
	logger       *slog.Logger
}

// New validates opts and returns a Watcher.
func New(opts Options) (*Watcher, error) {
	if len(opts.Dirs) == 0 {
		return nil, errors.New("watch: at least one directory is required")
	}
	if opts.Classifier == nil || opts.Tree == nil {
		return nil, errors.New("watch: classifier and tree are required")
	}
	if opts.LockDir == "" {
		return nil, errors.New("watch: lock directory is required")
	}
	dirs := make([]string, 0, len(opts.Dirs))
	lockPaths := make([]string, 0, len(opts.Dirs))
	for _, dir := range opts.Dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("watch %s: not a directory", dir)
		}
		dirs = append(dirs, filepath.Clean(dir))
		lockPaths = append(lockPaths, LockPath(opts.LockDir, dir))
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		dirs:         dirs,
		classifier:   opts.Classifier,
		tree:         opts.Tree,
		debounce:     debounce,
		lockPaths:    lockPaths,
		scanExisting: opts.ScanExisting,
		onBatch:      opts.OnBatch,
		logger:       logging.NewComponentLogger(opts.Logger, "watch"),
	}, nil
}

// Dirs returns the watched root directories.
func (w *Watcher) Dirs() []string { return append([]string(nil), w.dirs...) }

// LockPath returns the lock file guarding dir inside lockDir.
func LockPath(lockDir, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}
	sum := sha256.Sum256([]byte(abs))
	return filepath.Join(lockDir, "watch-"+hex.EncodeToString(sum[:6])+".lock")
}

// Run watches until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	locks, err := w.acquireLocks()
	if err != nil {
		return err
	}
	defer w.releaseLocks(locks)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := w.addTree(fw, dir, nil); err != nil {
			return err
		}
	}
	w.logger.Info("watching directories",
		logging.Any("dirs", w.dirs),
		logging.Duration("debounce", w.debounce))

	if w.scanExisting {
		initial := make(map[string]fsnotify.Op, len(w.dirs))
		for _, dir := range w.dirs {
			initial[dir] = fsnotify.Create
		}
		w.flush(ctx, initial)
	}

	pending := make(map[string]fsnotify.Op)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped", logging.Int("pending", len(pending)))
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			w.track(fw, event, pending)
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "filesystem watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check directory permissions and inotify limits"))
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := maps.Clone(pending)
			clear(pending)
			w.flush(ctx, batch)
		}
	}
}

func (w *Watcher) acquireLocks() ([]*flock.Flock, error) {
	locks := make([]*flock.Flock, 0, len(w.lockPaths))
	for i, path := range w.lockPaths {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			w.releaseLocks(locks)
			return nil, fmt.Errorf("ensure lock directory: %w", err)
		}
		lock := flock.New(path)
		ok, err := lock.TryLock()
		if err != nil {
			w.releaseLocks(locks)
			return nil, fmt.Errorf("acquire lock %s: %w", path, err)
		}
		if !ok {
			w.releaseLocks(locks)
			return nil, fmt.Errorf("%s: %w", w.dirs[i], ErrLocked)
		}
		locks = append(locks, lock)
	}
	return locks, nil
}

func (w *Watcher) releaseLocks(locks []*flock.Flock) {
	for _, lock := range locks {
		if err := lock.Unlock(); err != nil {
			w.logger.Warn("failed to release watch lock",
				logging.String(logging.FieldPath, lock.Path()),
				logging.Error(err))
		}
	}
}

// track records a touched path and the operations seen for it. New
// directories are watched and their existing files queued, since events for
// them may predate the watch.
func (w *Watcher) track(fw *fsnotify.Watcher, event fsnotify.Event, pending map[string]fsnotify.Op) {
	path := event.Name
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if !info.IsDir() {
		pending[path] |= event.Op
		return
	}
	if err := w.addTree(fw, path, pending); err != nil {
		logging.WarnWithContext(w.logger, "failed to watch new directory", "watch_add_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err))
	}
}

// addTree watches root and every directory below it. When pending is non-nil
// the files found are queued.
func (w *Watcher) addTree(fw *fsnotify.Watcher, root string, pending map[string]fsnotify.Op) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if err := fw.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if pending != nil {
			pending[path] |= fsnotify.Create
		}
		return nil
	})
}

// flush classifies the touched paths and merges them into the tree. A listed
// path that was only rewritten is dropped silently; one that was created
// again is reported as a duplicate.
func (w *Watcher) flush(ctx context.Context, touched map[string]fsnotify.Op) {
	paths := slices.Sorted(maps.Keys(touched))
	batch := Batch{Paths: paths}
	fresh := make([]string, 0, len(paths))
	for _, path := range paths {
		if !w.tree.Contains(path) {
			fresh = append(fresh, path)
			continue
		}
		if touched[path].Has(fsnotify.Create) {
			batch.Duplicates = append(batch.Duplicates, path)
		}
	}
	if len(fresh) == 0 && len(batch.Duplicates) == 0 {
		return
	}

	if len(fresh) > 0 {
		result, err := w.classifier.Classify(ctx, fresh)
		switch {
		case err != nil:
			batch.Err = err
		case result.Empty():
		default:
			batch.Added, batch.Err = w.tree.Merge(result)
			if batch.Err == nil {
				batch.Groups = len(result.Groups)
				batch.Singles = len(result.Singles)
			}
		}
	}

	var dup *selection.DuplicatePathError
	if errors.As(batch.Err, &dup) {
		batch.Duplicates = append(batch.Duplicates, dup.Paths...)
	}
	if len(batch.Duplicates) > 0 {
		w.logger.Info("skipped paths already listed", logging.Int("count", len(batch.Duplicates)))
	}
	if batch.Err != nil {
		logging.WarnWithContext(w.logger, "watch batch not inserted", "watch_batch_failed",
			logging.Int("paths", len(paths)),
			logging.Error(batch.Err),
			logging.String(logging.FieldImpact, "new images were not added to the selection"))
	} else if len(batch.Added) > 0 {
		w.logger.Info("watch batch inserted",
			logging.Int("groups", batch.Groups),
			logging.Int("singles", batch.Singles))
	}
	if w.onBatch != nil {
		w.onBatch(batch)
	}
}
