package am

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/teranos/devize/errors"
	"github.com/teranos/devize/logger"
)

// DefaultDebounce coalesces bursts of writes (editors often write twice).
const DefaultDebounce = 300 * time.Millisecond

// ChangeCallback receives the watched files that changed since the last call
type ChangeCallback func(paths []string)

// Watcher watches files for changes and triggers debounced callbacks.
// It watches the parent directories so editors that save by rename are seen.
type Watcher struct {
	watcher        *fsnotify.Watcher
	paths          map[string]bool
	dirs           map[string]func(path string) bool
	callbacks      []ChangeCallback
	mu             sync.Mutex
	pending        map[string]bool
	debounceTimer  *time.Timer
	debouncePeriod time.Duration

	isOwnWrite      bool // Flag to prevent reload loops
	isOwnWriteMutex sync.Mutex

	done chan struct{}
}

// NewWatcher creates a watcher for the given files
func NewWatcher(paths ...string) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, errors.New("no files to watch")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		watcher:        fw,
		paths:          make(map[string]bool, len(paths)),
		dirs:           make(map[string]func(string) bool),
		pending:        make(map[string]bool),
		debouncePeriod: DefaultDebounce,
		done:           make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to resolve %s", p)
		}
		w.paths[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
	}

	return w, nil
}

// WatchDir also reports files in dir that match, including files created
// after the watch began. A nil match reports every file. Call before Start.
func (w *Watcher) WatchDir(dir string, match func(path string) bool) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", dir)
	}
	if err := w.watcher.Add(abs); err != nil {
		return errors.Wrapf(err, "failed to watch %s", abs)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dirs[abs] = match
	return nil
}

// watched reports whether an event on name concerns this watcher.
func (w *Watcher) watched(name string) bool {
	if w.paths[name] {
		return true
	}
	w.mu.Lock()
	match, ok := w.dirs[filepath.Dir(name)]
	w.mu.Unlock()
	return ok && (match == nil || match(name))
}

// SetDebounce changes the debounce period. Call before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debouncePeriod = d
}

// OnChange registers a callback to be called after watched files change
func (w *Watcher) OnChange(callback ChangeCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// MarkOwnWrite marks the next write as coming from us (prevents reload loops)
func (w *Watcher) MarkOwnWrite() {
	w.isOwnWriteMutex.Lock()
	defer w.isOwnWriteMutex.Unlock()
	w.isOwnWrite = true
}

// checkOwnWrite checks and clears the own-write flag
func (w *Watcher) checkOwnWrite() bool {
	w.isOwnWriteMutex.Lock()
	defer w.isOwnWriteMutex.Unlock()

	if w.isOwnWrite {
		w.isOwnWrite = false
		return true
	}
	return false
}

// Start begins watching for file changes
func (w *Watcher) Start() {
	go w.watchLoop()
}

// watchLoop monitors file system events
func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || isBackupFile(name) || !w.watched(name) {
				continue
			}

			if w.checkOwnWrite() {
				logger.Debugw("Watcher ignoring own write", logger.FieldFile, name)
				continue
			}

			logger.Infow("Watcher detected change",
				logger.FieldFile, name,
				"op", event.Op.String())
			w.schedule(name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Watcher error", logger.FieldError, err)

		case <-w.done:
			return
		}
	}
}

// schedule debounces rapid file changes and triggers callbacks
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debouncePeriod, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]bool)
	callbacks := make([]ChangeCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	sort.Strings(changed)
	for _, callback := range callbacks {
		callback(changed)
	}
}

// Stop stops watching for changes
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()

	select {
	case <-w.done:
	default:
		close(w.done)
	}
	return w.watcher.Close()
}

// isBackupFile checks if the file is a backup file (.back1, .back2, .back3)
func isBackupFile(path string) bool {
	switch filepath.Ext(path) {
	case ".back1", ".back2", ".back3":
		return true
	}
	return false
}

// ReloadCallback is called when config is reloaded
// Receives the new config and returns any error
type ReloadCallback func(*Config) error

// ConfigWatcher reloads the configuration when a config file changes
type ConfigWatcher struct {
	*Watcher
	configPath string
	mu         sync.RWMutex
	callbacks  []ReloadCallback
}

// globalWatcher holds the singleton config watcher instance
var (
	globalWatcher   *ConfigWatcher
	globalWatcherMu sync.Mutex
)

// NewConfigWatcher creates a new config file watcher
func NewConfigWatcher(configPath string) (*ConfigWatcher, error) {
	w, err := NewWatcher(configPath)
	if err != nil {
		return nil, err
	}
	cw := &ConfigWatcher{Watcher: w, configPath: configPath}
	w.OnChange(func([]string) {
		if err := cw.reload(); err != nil {
			logger.Errorw("Config reload failed", logger.FieldError, err)
		}
	})
	return cw, nil
}

// OnReload registers a callback to be called when config is reloaded
func (cw *ConfigWatcher) OnReload(callback ReloadCallback) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

// reload reloads the configuration and calls all callbacks
func (cw *ConfigWatcher) reload() error {
	Reset()

	newConfig, err := Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := newConfig.Validate(); err != nil {
		return errors.Wrap(err, "reloaded config is invalid")
	}

	logger.AMInfow("Config reloaded", logger.FieldFile, cw.configPath)

	cw.mu.RLock()
	callbacks := make([]ReloadCallback, len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mu.RUnlock()

	for _, callback := range callbacks {
		if err := callback(newConfig); err != nil {
			logger.Warnw("Config reload callback error", logger.FieldError, err)
			// Continue calling other callbacks even if one fails
		}
	}

	return nil
}

// SetGlobalWatcher sets the global watcher instance (used to prevent reload loops)
func SetGlobalWatcher(watcher *ConfigWatcher) {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	globalWatcher = watcher
}

// GetGlobalWatcher returns the global watcher instance
func GetGlobalWatcher() *ConfigWatcher {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	return globalWatcher
}
