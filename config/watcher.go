package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"trademantra/logger"
)

// Watcher reloads the config file on change and delivers the parsed
// result to a callback. fsnotify events are debounced; a mod-time poll
// backs up filesystems where watch events are unreliable.
type Watcher struct {
	configPath  string
	watcher     *fsnotify.Watcher
	onChange    func(*Config)
	mu          sync.Mutex
	isWatching  bool
	lastModTime time.Time
}

// NewWatcher creates a config watcher. onChange runs on each
// successful reload.
func NewWatcher(configPath string, onChange func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	var lastModTime time.Time
	if info, err := os.Stat(configPath); err == nil {
		lastModTime = info.ModTime()
	}

	return &Watcher{
		configPath:  configPath,
		watcher:     fw,
		onChange:    onChange,
		lastModTime: lastModTime,
	}, nil
}

// Start watches the config file's directory until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isWatching {
		return fmt.Errorf("config watcher already running")
	}

	configDir := filepath.Dir(w.configPath)
	if err := w.watcher.Add(configDir); err != nil {
		return fmt.Errorf("watch config directory: %w", err)
	}

	w.isWatching = true
	go w.watchLoop(ctx)

	logger.Info("config watcher started for %s", w.configPath)
	return nil
}

func (w *Watcher) watchLoop(ctx context.Context) {
	// poll ticker catches edits that fsnotify misses (NFS, some editors)
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	defer w.watcher.Close()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.configPath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			// editors often fire several writes per save
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(200*time.Millisecond, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error: %v", err)

		case <-ticker.C:
			info, err := os.Stat(w.configPath)
			if err != nil {
				continue
			}
			w.mu.Lock()
			changed := info.ModTime().After(w.lastModTime)
			w.mu.Unlock()
			if changed {
				w.reload()
			}
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.configPath)
	if err != nil {
		logger.Error("config reload failed, keeping previous config: %v", err)
		return
	}

	w.mu.Lock()
	if info, err := os.Stat(w.configPath); err == nil {
		w.lastModTime = info.ModTime()
	}
	w.mu.Unlock()

	logger.Info("config reloaded from %s", w.configPath)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
