package watch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"shotlist/internal/selection"
	"shotlist/internal/sequence"
	"shotlist/internal/testsupport"
	"shotlist/internal/watch"
)

type harness struct {
	watcher *watch.Watcher
	tree    *selection.Tree
	batches chan watch.Batch
	cancel  context.CancelFunc
	done    chan error
}

func startWatcher(t *testing.T, dir string, scanExisting bool) *harness {
	t.Helper()

	tree := selection.New(nil)
	batches := make(chan watch.Batch, 8)
	w, err := watch.New(watch.Options{
		Dirs:         []string{dir},
		Classifier:   sequence.NewClassifier(sequence.Options{Formats: []string{"png"}}),
		Tree:         tree,
		Debounce:     50 * time.Millisecond,
		LockDir:      filepath.Join(t.TempDir(), "locks"),
		ScanExisting: scanExisting,
		OnBatch:      func(b watch.Batch) { batches <- b },
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{watcher: w, tree: tree, batches: batches, cancel: cancel, done: make(chan error, 1)}
	go func() { h.done <- w.Run(ctx) }()
	t.Cleanup(h.stop)
	return h
}

func (h *harness) stop() {
	if h.cancel == nil {
		return
	}
	h.cancel()
	h.cancel = nil
	<-h.done
}

func (h *harness) next(t *testing.T) watch.Batch {
	t.Helper()
	select {
	case b := <-h.batches:
		return b
	case err := <-h.done:
		h.cancel()
		h.cancel = nil
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for batch")
	}
	return watch.Batch{}
}

// waitReady gives the watcher time to register its inotify watches.
func waitReady() { time.Sleep(100 * time.Millisecond) }

func TestWatcherInsertsMovedInDirectoryAsOneGroup(t *testing.T) {
	root := t.TempDir()
	watched := filepath.Join(root, "incoming")
	if err := os.MkdirAll(watched, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	h := startWatcher(t, watched, false)
	waitReady()

	staging := filepath.Join(root, "staging", "plate")
	testsupport.WriteFrames(t, staging, "plate.0001.png", "plate.0002.png", "plate.0003.png")
	if err := os.Rename(staging, filepath.Join(watched, "plate")); err != nil {
		t.Fatalf("rename: %v", err)
	}

	batch := h.next(t)
	if batch.Err != nil {
		t.Fatalf("unexpected batch error: %v", batch.Err)
	}
	if batch.Groups != 1 || batch.Singles != 0 || len(batch.Added) != 1 {
		t.Fatalf("unexpected batch %+v", batch)
	}
	h.stop()

	if h.tree.Len() != 4 {
		t.Fatalf("expected group with 3 frames, got %d nodes", h.tree.Len())
	}
	group, _ := h.tree.Node(batch.Added[0])
	if group.Key != "plate" || len(group.Children) != 3 {
		t.Fatalf("unexpected group %+v", group)
	}
}

func TestWatcherAppendsLaterFramesToListedGroup(t *testing.T) {
	watched := t.TempDir()
	shot := filepath.Join(watched, "plate")
	if err := os.MkdirAll(shot, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	h := startWatcher(t, watched, false)
	waitReady()

	testsupport.WriteFrames(t, shot, "plate.0001.png", "plate.0002.png")
	first := h.next(t)
	if first.Err != nil || len(first.Added) != 1 {
		t.Fatalf("unexpected first batch %+v", first)
	}

	testsupport.WriteFrames(t, shot, "plate.0003.png")
	second := h.next(t)
	if second.Err != nil {
		t.Fatalf("unexpected batch error: %v", second.Err)
	}
	if len(second.Added) != 1 || second.Added[0] != first.Added[0] {
		t.Fatalf("expected group %d to be extended, got %v", first.Added[0], second.Added)
	}
	h.stop()

	if roots := h.tree.Roots(); len(roots) != 1 {
		t.Fatalf("expected one group, got %d roots", len(roots))
	}
	group, _ := h.tree.Node(first.Added[0])
	if len(group.Children) != 3 || !group.Checked {
		t.Fatalf("unexpected group %+v", group)
	}
}

func TestWatcherIgnoresRewritesOfListedFiles(t *testing.T) {
	dir := t.TempDir()
	paths := testsupport.WriteFrames(t, dir, "poster.png")
	h := startWatcher(t, dir, true)

	initial := h.next(t)
	if initial.Err != nil || initial.Singles != 1 {
		t.Fatalf("unexpected initial batch %+v", initial)
	}
	waitReady()

	testsupport.WritePNG(t, paths[0], 8, 8)
	cover := filepath.Join(dir, "cover.png")
	testsupport.WritePNG(t, cover, 4, 4)
	batch := h.next(t)
	if batch.Err != nil || batch.Singles != 1 || len(batch.Added) != 1 {
		t.Fatalf("expected only the new file to be inserted: %+v", batch)
	}
	if len(batch.Duplicates) != 0 {
		t.Fatalf("rewrite should not be reported, got %v", batch.Duplicates)
	}

	testsupport.WritePNG(t, paths[0], 16, 16)
	select {
	case b := <-h.batches:
		t.Fatalf("rewrite alone should not produce a batch: %+v", b)
	case <-time.After(300 * time.Millisecond):
	}
	h.stop()
	if h.tree.Len() != 2 {
		t.Fatalf("expected two nodes, got %d", h.tree.Len())
	}
}

func TestWatcherReportsRecreatedFilesAsDuplicates(t *testing.T) {
	dir := t.TempDir()
	paths := testsupport.WriteFrames(t, dir, "poster.png")
	h := startWatcher(t, dir, true)

	if initial := h.next(t); initial.Err != nil || initial.Singles != 1 {
		t.Fatalf("unexpected initial batch %+v", initial)
	}
	waitReady()

	if err := os.Remove(paths[0]); err != nil {
		t.Fatalf("remove: %v", err)
	}
	testsupport.WritePNG(t, paths[0], 8, 8)
	batch := h.next(t)
	if len(batch.Added) != 0 {
		t.Fatalf("recreated file should not be inserted again: %+v", batch)
	}
	if len(batch.Duplicates) != 1 || batch.Duplicates[0] != paths[0] {
		t.Fatalf("expected duplicate report for %s, got %+v", paths[0], batch.Duplicates)
	}
	h.stop()
	if h.tree.Len() != 1 {
		t.Fatalf("expected one node, got %d", h.tree.Len())
	}
}

func TestWatcherRefusesSecondInstance(t *testing.T) {
	lockDir := t.TempDir()
	dir := t.TempDir()
	held := flock.New(watch.LockPath(lockDir, dir))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-acquire lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	w, err := watch.New(watch.Options{
		Dirs:       []string{t.TempDir(), dir},
		Classifier: sequence.NewClassifier(sequence.Options{Formats: []string{"png"}}),
		Tree:       selection.New(nil),
		LockDir:    lockDir,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := w.Run(context.Background()); !errors.Is(err, watch.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	// The first directory's lock must have been released on failure.
	other := flock.New(watch.LockPath(lockDir, w.Dirs()[0]))
	ok, err = other.TryLock()
	if err != nil || !ok {
		t.Fatalf("expected first lock to be free: ok=%v err=%v", ok, err)
	}
	_ = other.Unlock()
}

func TestNewValidatesOptions(t *testing.T) {
	classifier := sequence.NewClassifier(sequence.Options{Formats: []string{"png"}})
	tree := selection.New(nil)
	file := filepath.Join(t.TempDir(), "a.png")
	testsupport.WriteFile(t, file, 4)

	cases := []watch.Options{
		{Classifier: classifier, Tree: tree, LockDir: t.TempDir()},
		{Dirs: []string{t.TempDir()}, Tree: tree, LockDir: t.TempDir()},
		{Dirs: []string{t.TempDir()}, Classifier: classifier, Tree: tree},
		{Dirs: []string{file}, Classifier: classifier, Tree: tree, LockDir: t.TempDir()},
		{Dirs: []string{filepath.Join(t.TempDir(), "missing")}, Classifier: classifier, Tree: tree, LockDir: t.TempDir()},
	}
	for i, opts := range cases {
		if _, err := watch.New(opts); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
