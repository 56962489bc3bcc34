package am

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/wdlint/errors"
	"github.com/teranos/wdlint/logger"
)

// DefaultDebounce absorbs the burst of events a single save produces.
const DefaultDebounce = 500 * time.Millisecond

// FileWatcher watches one file and calls back after it settles. The parent
// directory is watched so editors that replace the file are still seen.
type FileWatcher struct {
	path            string
	watcher         *fsnotify.Watcher
	callbacks       []ChangeCallback
	mu              sync.RWMutex
	debounceTimer   *time.Timer
	debouncePeriod  time.Duration
	isOwnWrite      bool // Flag to prevent reload loops
	isOwnWriteMutex sync.Mutex
	done            chan struct{}
}

// ChangeCallback is called with the watched path after it changed
type ChangeCallback func(path string) error

// globalWatcher holds the watcher of the active config file, if any
var (
	globalWatcher   *FileWatcher
	globalWatcherMu sync.Mutex
)

// NewFileWatcher creates a watcher for path. debounce <= 0 uses DefaultDebounce.
func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", path)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{
		path:           abs,
		watcher:        watcher,
		debouncePeriod: debounce,
		done:           make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched
func (fw *FileWatcher) Path() string {
	return fw.path
}

// OnChange registers a callback to be called when the file changed
func (fw *FileWatcher) OnChange(callback ChangeCallback) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.callbacks = append(fw.callbacks, callback)
}

// MarkOwnWrite marks the next write as coming from us (prevents reload loops)
func (fw *FileWatcher) MarkOwnWrite() {
	fw.isOwnWriteMutex.Lock()
	defer fw.isOwnWriteMutex.Unlock()
	fw.isOwnWrite = true
}

// checkOwnWrite checks and clears the own-write flag
func (fw *FileWatcher) checkOwnWrite() bool {
	fw.isOwnWriteMutex.Lock()
	defer fw.isOwnWriteMutex.Unlock()
	if fw.isOwnWrite {
		fw.isOwnWrite = false
		return true
	}
	return false
}

// Start begins watching for changes
func (fw *FileWatcher) Start() {
	go fw.watchLoop()
}

func (fw *FileWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if !fw.relevant(event) {
				continue
			}
			if fw.checkOwnWrite() {
				logger.Debugw("File watcher ignoring own write",
					logger.FieldFile, event.Name)
				continue
			}
			logger.Debugw("File watcher detected change",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			fw.scheduleCallbacks()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("File watcher error",
				logger.FieldError, err)

		case <-fw.done:
			return
		}
	}
}

// relevant filters out other files in the directory, backups and chmods
func (fw *FileWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != fw.path || isBackupFile(event.Name) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// scheduleCallbacks debounces rapid file changes
func (fw *FileWatcher) scheduleCallbacks() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debouncePeriod, fw.fire)
}

func (fw *FileWatcher) fire() {
	fw.mu.RLock()
	callbacks := make([]ChangeCallback, len(fw.callbacks))
	copy(callbacks, fw.callbacks)
	fw.mu.RUnlock()

	for _, callback := range callbacks {
		if err := callback(fw.path); err != nil {
			// Continue calling other callbacks even if one fails
			logger.Warnw("File watcher callback error",
				logger.FieldFile, fw.path,
				logger.FieldError, err)
		}
	}
}

// Stop stops watching for changes
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.mu.Unlock()
	select {
	case <-fw.done:
	default:
		close(fw.done)
	}
	return fw.watcher.Close()
}

// isBackupFile checks if the file is a rotating backup (.back1, .back2, .back3)
func isBackupFile(path string) bool {
	ext := filepath.Ext(path)
	return strings.HasPrefix(ext, ".back") && len(ext) == len(".back1")
}

// SetGlobalWatcher sets the watcher of the active config file
func SetGlobalWatcher(watcher *FileWatcher) {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	globalWatcher = watcher
}

// GetGlobalWatcher returns the watcher of the active config file
func GetGlobalWatcher() *FileWatcher {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	return globalWatcher
}

// WatchConfig watches the project config and reloads it on change. The
// returned watcher is registered globally so SetValue does not trigger it.
func WatchConfig(onReload func(*Config) error) (*FileWatcher, error) {
	path := FindProjectConfig()
	if path == "" {
		return nil, errors.WithHint(errors.New("no am.toml found"), "run 'wdlint am init' to create one")
	}
	fw, err := NewFileWatcher(path, DefaultDebounce)
	if err != nil {
		return nil, err
	}
	fw.OnChange(func(string) error {
		Reset()
		cfg, err := Load()
		if err != nil {
			return errors.Wrap(err, "failed to reload config")
		}
		logger.Infow("Config reloaded", logger.FieldPath, path)
		return onReload(cfg)
	})
	SetGlobalWatcher(fw)
	fw.Start()
	return fw, nil
}
