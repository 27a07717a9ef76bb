package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/conceptnav/pkg/debug"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// Common errors.
var (
	ErrRootRemoved    = errors.New("watched directory was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Filter decides whether a change to a file matters. rel is slash-separated
// and relative to the watched root.
type Filter func(rel string) bool

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithOnChange sets the callback invoked after a debounced change.
func WithOnChange(fn func()) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// WithFilter restricts which files trigger a change.
func WithFilter(f Filter) WatcherOption {
	return func(w *Watcher) {
		if f != nil {
			w.filter = f
		}
	}
}

// WithExclude drops paths from watching entirely. Excluded directories are
// not watched or scanned, and no event under an excluded path counts as a
// change, removals included.
func WithExclude(f Filter) WatcherOption {
	return func(w *Watcher) {
		if f != nil {
			w.exclude = f
		}
	}
}

// signature summarises a tree for polling comparison.
type signature struct {
	files  int
	newest time.Time
	size   int64
}

func (s signature) equal(o signature) bool {
	return s.files == o.files && s.size == o.size && s.newest.Equal(o.newest)
}

// Watcher monitors a directory tree using fsnotify with polling fallback.
type Watcher struct {
	root             string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func()
	onError          func(error)
	filter           Filter
	exclude          Filter
	forcePoll        bool

	fsWatcher   *fsnotify.Watcher
	debouncer   *Debouncer
	useFallback bool
	last        signature
	rootGone    bool

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan struct{}
}

// NewWatcher creates a watcher for the directory tree at root.
func NewWatcher(root string, opts ...WatcherOption) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:             absRoot,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func() {},
		onError:          func(error) {},
		filter:           func(string) bool { return true },
		exclude:          func(string) bool { return false },
		changeCh:         make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.debouncer = NewDebouncer(w.debounceDuration)

	return w, nil
}

// Start begins watching. The root must exist and be a directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	info, err := os.Stat(w.root)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", w.root, ErrRootRemoved)
		}
		return fmt.Errorf("stat watch root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch root is not a directory: %s", w.root)
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.useFallback = w.forcePoll || envBool("CONCEPTNAV_FORCE_POLL") || envBool("CONCEPTNAV_FORCE_POLLING")
	w.rootGone = false
	w.last = w.scan()

	if !w.useFallback {
		fsw, err := fsnotify.NewWatcher()
		if err != nil {
			debug.Log("fsnotify unavailable, polling: %v", err)
			w.useFallback = true
		} else if err := w.addTree(fsw, w.root); err != nil {
			debug.Log("fsnotify add failed, polling: %v", err)
			fsw.Close()
			w.useFallback = true
		} else {
			w.fsWatcher = fsw
			go w.watchFsnotify(fsw)
		}
	}

	if w.useFallback {
		go w.watchPolling()
	}

	w.started = true
	return nil
}

// Stop stops watching. The Changed channel is left open.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}

	if w.cancel != nil {
		w.cancel()
	}

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}

	w.debouncer.Cancel()
	w.started = false
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.useFallback
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed returns a channel that receives after each debounced change.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// PollInterval returns the polling interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// rel returns the slash-separated path of p under the root.
func (w *Watcher) rel(p string) (string, bool) {
	r, err := filepath.Rel(w.root, p)
	if err != nil || r == "." || strings.HasPrefix(r, "..") {
		return "", false
	}
	return filepath.ToSlash(r), true
}

func hiddenDir(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".")
}

// addTree registers dir and every non-hidden directory below it.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && (hiddenDir(d.Name()) || w.excluded(p)) {
			return filepath.SkipDir
		}
		return fsw.Add(p)
	})
}

// watchFsnotify monitors using fsnotify events.
func (w *Watcher) watchFsnotify(fsw *fsnotify.Watcher) {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(fsw, event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Name == w.root && event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		w.onError(ErrRootRemoved)
		return
	}

	rel, ok := w.rel(event.Name)
	if !ok {
		return
	}
	for _, part := range strings.Split(rel, "/") {
		if hiddenDir(part) {
			return
		}
	}
	if w.exclude(rel) {
		return
	}

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(fsw, event.Name); err != nil {
				w.onError(fmt.Errorf("watch %s: %w", rel, err))
			}
			w.debouncer.Trigger(w.notifyChange)
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	// A removed path may have been a directory of content, so any removal
	// outside the excluded paths counts.
	if w.filter(rel) || event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		debug.Log("watch: %s %s", event.Op, rel)
		w.debouncer.Trigger(w.notifyChange)
	}
}

// excluded reports whether the absolute path p falls under an exclusion.
func (w *Watcher) excluded(p string) bool {
	rel, ok := w.rel(p)
	return ok && w.exclude(rel)
}

// scan computes the polling signature of the tree.
func (w *Watcher) scan() signature {
	var sig signature
	_ = filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != w.root && (hiddenDir(d.Name()) || w.excluded(p)) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, ok := w.rel(p)
		if !ok || !w.filter(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		sig.files++
		sig.size += info.Size()
		if info.ModTime().After(sig.newest) {
			sig.newest = info.ModTime()
		}
		return nil
	})
	return sig
}

// watchPolling monitors using periodic tree scans.
func (w *Watcher) watchPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			if _, err := os.Stat(w.root); err != nil {
				w.mu.Lock()
				report := !w.rootGone
				w.rootGone = true
				w.mu.Unlock()
				if report {
					if os.IsNotExist(err) {
						w.onError(ErrRootRemoved)
					} else {
						w.onError(err)
					}
				}
				continue
			}

			sig := w.scan()
			w.mu.Lock()
			w.rootGone = false
			changed := !sig.equal(w.last)
			w.last = sig
			w.mu.Unlock()

			if changed {
				w.debouncer.Trigger(w.notifyChange)
			}
		}
	}
}

// notifyChange invokes the onChange callback and signals the change channel.
func (w *Watcher) notifyChange() {
	w.mu.RLock()
	started := w.started
	w.mu.RUnlock()

	if !started {
		return
	}

	w.onChange()

	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
