package watcher

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pmaojo/hexalens/internal/hexalens/config"
)

// debounce batches bursts of filesystem events into one re-analysis.
const debounce = 500 * time.Millisecond

// Watcher monitors the analyzed tree and triggers a full re-analysis
// after Go sources change. The pipeline is a single batch pass, so there
// is no incremental mode; events are debounced instead.
type Watcher struct {
	watcher   *fsnotify.Watcher
	config    *config.Config
	reanalyze func()
	trigger   chan struct{}
	done      chan struct{}
}

// NewWatcher initializes a watcher over rootDir. reanalyze runs on the
// watcher goroutine after each debounced change burst.
func NewWatcher(rootDir string, cfg *config.Config, reanalyze func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:   fw,
		config:    cfg,
		reanalyze: reanalyze,
		trigger:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	if err := w.addRecursive(rootDir); err != nil {
		fw.Close()
		return nil, err
	}

	return w, nil
}

// Start begins the event loop in a separate goroutine.
func (w *Watcher) Start() {
	go w.loop()
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.handleEvent(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
				fire = timer.C
			} else {
				timer.Reset(debounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			log.Println("Change detected, re-running analysis")
			w.reanalyze()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Println("Watcher error:", err)
		case <-w.done:
			return
		}
	}
}

// handleEvent reports whether the event should schedule a re-analysis.
func (w *Watcher) handleEvent(event fsnotify.Event) bool {
	if w.shouldIgnore(event.Name) {
		return false
	}

	if event.Has(fsnotify.Create) {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() {
			w.addRecursive(event.Name)
			return false
		}
	}
	return strings.HasSuffix(event.Name, ".go") && !strings.HasSuffix(event.Name, "_test.go")
}

func (w *Watcher) addRecursive(path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if w.shouldIgnore(p) {
				return filepath.SkipDir
			}
			return w.watcher.Add(p)
		}
		return nil
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, excl := range w.config.ExcludedDirs {
		if base == excl || strings.Contains(path, string(filepath.Separator)+excl+string(filepath.Separator)) {
			return true
		}
	}
	if base == ".git" || base == ".hexalens" || strings.Contains(path, "/.hexalens/") {
		return true
	}
	return false
}
