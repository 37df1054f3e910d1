// Package watch re-runs a job whenever a watched workbook changes on disk,
// so a chart can be kept in sync with the spreadsheet it is drawn from.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchConfig holds the complete watcher configuration.
type WatchConfig struct {
	// Targets are workbook files or directories. A directory target matches
	// every workbook directly inside it.
	Targets    []string `json:"targets"`
	Extensions []string `json:"extensions"`
	Debounce   int      `json:"debounceMs"` // Milliseconds to wait before processing
	// Output is the file the handler writes, recorded for status display.
	Output string `json:"output,omitempty"`
}

// Event represents a file change that was detected and processed.
type Event struct {
	Time      time.Time `json:"time"`
	Path      string    `json:"path"`
	Operation string    `json:"operation"`
	Status    string    `json:"status"` // "processed", "error"
	Error     string    `json:"error,omitempty"`
}

// EventHandler is called once per debounced change to a matching file.
type EventHandler func(path string) error

// Watcher monitors workbook files and calls Handler when they change.
type Watcher struct {
	Config  WatchConfig
	Logger  *zap.Logger
	Handler EventHandler

	mu       sync.Mutex
	events   []Event
	started  time.Time
	files    map[string]bool
	dirs     map[string]bool
	watcher  *fsnotify.Watcher
	debounce map[string]*time.Timer
}

// Status represents the current watcher status.
type Status struct {
	Running    bool     `json:"running"`
	Targets    []string `json:"targets"`
	EventCount int      `json:"eventCount"`
	StartedAt  string   `json:"startedAt,omitempty"`
}

// DefaultExtensions are the workbook types watched when none are given.
var DefaultExtensions = []string{".xlsx", ".xlsm", ".xls"}

// New creates a new Watcher with the given configuration.
func New(config WatchConfig, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	if config.Debounce <= 0 {
		config.Debounce = 500
	}
	if len(config.Extensions) == 0 {
		config.Extensions = DefaultExtensions
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		Config:   config,
		Logger:   logger,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		watcher:  fsw,
		debounce: make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the configured targets. It blocks until the context
// is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, target := range w.Config.Targets {
		if err := w.add(target); err != nil {
			w.watcher.Close()
			return err
		}
	}

	w.mu.Lock()
	w.started = time.Now()
	w.mu.Unlock()
	w.Logger.Info("watching", zap.Strings("targets", w.Config.Targets), zap.Int("debounce_ms", w.Config.Debounce))

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("stopping watcher")
			w.stopTimers()
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watch error", zap.Error(err))
		}
	}
}

// add registers a target. Files are watched through their parent directory
// because spreadsheet programs save by replacing the file.
func (w *Watcher) add(target string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return fmt.Errorf("could not resolve %s: %w", target, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("could not watch %s — check that the path exists: %w", target, err)
	}

	dir := abs
	if info.IsDir() {
		w.dirs[abs] = true
	} else {
		w.files[abs] = true
		dir = filepath.Dir(abs)
	}
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("could not watch %s: %w", dir, err)
	}
	return nil
}

// matches reports whether a changed path belongs to a target.
func (w *Watcher) matches(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".~") {
		return false
	}
	if w.files[path] {
		return true
	}
	if !w.dirs[filepath.Dir(path)] {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.Config.Extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	path := event.Name
	if !w.matches(path) {
		return
	}

	w.Logger.Debug("change detected", zap.String("path", path), zap.String("op", event.Op.String()))

	// Debounce: saves arrive as bursts of events.
	w.mu.Lock()
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	op := event.Op.String()
	var timer *time.Timer
	timer = time.AfterFunc(time.Duration(w.Config.Debounce)*time.Millisecond, func() {
		w.processFile(path, op)
		w.clearTimer(path, timer)
	})
	w.debounce[path] = timer
	w.mu.Unlock()
}

func (w *Watcher) processFile(path, operation string) {
	// A rename away from the path leaves nothing to read.
	if _, err := os.Stat(path); err != nil {
		return
	}

	evt := Event{
		Time:      time.Now(),
		Path:      path,
		Operation: operation,
		Status:    "processed",
	}
	if w.Handler != nil {
		if err := w.Handler(path); err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			w.Logger.Error("could not process change", zap.String("path", path), zap.Error(err))
		} else {
			w.Logger.Info("processed", zap.String("path", path))
		}
	}

	w.mu.Lock()
	w.events = append(w.events, evt)
	w.mu.Unlock()
}

// clearTimer forgets the debounce timer for path unless a newer event has
// already replaced it.
func (w *Watcher) clearTimer(path string, fired *time.Timer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce[path] == fired {
		delete(w.debounce, path)
	}
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.debounce {
		t.Stop()
		delete(w.debounce, path)
	}
}

// GetStatus returns the current watcher status.
func (w *Watcher) GetStatus() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Status{
		Running:    !w.started.IsZero(),
		Targets:    w.Config.Targets,
		EventCount: len(w.events),
	}
	if !w.started.IsZero() {
		s.StartedAt = w.started.Format(time.RFC3339)
	}
	return s
}

// GetEvents returns all recorded events.
func (w *Watcher) GetEvents() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.events))
	copy(events, w.events)
	return events
}

const pidFile = "watch.pid"

// WritePIDFile writes the current process ID to the PID file in the given directory.
func WritePIDFile(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	path := filepath.Join(dir, pidFile)
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", os.Getpid())), 0644)
}

// ReadPIDFile reads the PID from the PID file.
func ReadPIDFile(dir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, pidFile))
	if err != nil {
		return 0, err
	}
	var pid int
	if _, err := fmt.Sscanf(string(data), "%d", &pid); err != nil {
		return 0, fmt.Errorf("invalid PID file: %w", err)
	}
	return pid, nil
}

// RemovePIDFile removes the PID file.
func RemovePIDFile(dir string) error {
	return os.Remove(filepath.Join(dir, pidFile))
}

// SaveConfig writes the watcher config to a JSON file.
func SaveConfig(dir string, config WatchConfig) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "watch-config.json"), data, 0644)
}

// LoadConfig reads the watcher config from a JSON file.
func LoadConfig(dir string) (*WatchConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, "watch-config.json"))
	if err != nil {
		return nil, err
	}
	var config WatchConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid watch config: %w", err)
	}
	return &config, nil
}
