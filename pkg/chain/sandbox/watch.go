package sandbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// EventType describes a sandbox change notification.
type EventType int

const (
	// EventObjectChanged means one object was created or mutated.
	EventObjectChanged EventType = iota

	// EventInvalidated means something changed that could not be attributed
	// to one object. Callers should refetch everything they show.
	EventInvalidated
)

// Event is emitted by Watch when objects on disk change.
type Event struct {
	Type     EventType
	ObjectID string
}

// Watch streams change events until ctx is cancelled. Writes from other
// processes sharing the same base path are seen too. The channel is closed
// once ctx is done.
func (c *Chain) Watch(ctx context.Context) (<-chan Event, error) {
	objects := filepath.Join(c.basePath, objectsBucket)
	if err := os.MkdirAll(objects, 0o755); err != nil {
		return nil, fmt.Errorf("sandbox: ensure objects dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("sandbox: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				c.logger.Warn("watcher close", zap.Error(err))
			}
		})
	}

	dirs, err := collectDirs(objects)
	if err != nil {
		closeWatcher()
		return nil, fmt.Errorf("sandbox: enumerate directories: %w", err)
	}
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			closeWatcher()
			return nil, fmt.Errorf("sandbox: watch %s: %w", dir, err)
		}
	}

	events := make(chan Event, 64)

	go func() {
		var sendMu sync.Mutex
		closed := false
		defer func() {
			sendMu.Lock()
			closed = true
			close(events)
			sendMu.Unlock()
		}()
		defer closeWatcher()

		send := func(ev Event) {
			sendMu.Lock()
			defer sendMu.Unlock()
			if closed {
				return
			}
			select {
			case events <- ev:
			default:
				// Consumer is behind; the next event triggers a refetch anyway.
			}
		}

		throttle := newEventThrottle(100 * time.Millisecond)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Debug("watcher error", zap.Error(err))
				throttle.Enqueue(Event{Type: EventInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op == fsnotify.Chmod {
					continue
				}
				id := c.objectForPath(evt.Name)
				if id == "" {
					throttle.Enqueue(Event{Type: EventInvalidated}, send)
					continue
				}
				throttle.Enqueue(Event{Type: EventObjectChanged, ObjectID: id}, send)
			}
		}
	}()

	return events, nil
}

func collectDirs(base string) ([]string, error) {
	dirs := []string{base}
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() && path != base {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs, err
}

// objectForPath maps a diskv file path back to its object id.
func (c *Chain) objectForPath(path string) string {
	rel, err := filepath.Rel(filepath.Join(c.basePath, objectsBucket), path)
	if err != nil || rel == "." || filepath.Dir(rel) != "." {
		return ""
	}
	if len(rel) < 2 || rel[:2] != "0x" {
		return ""
	}
	return rel
}

// eventThrottle coalesces bursts of writes into one event per object.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[EventType]map[string]struct{}
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[EventType]map[string]struct{}),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	if t.pending[ev.Type] == nil {
		t.pending[ev.Type] = make(map[string]struct{})
	}
	t.pending[ev.Type][ev.ObjectID] = struct{}{}

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[EventType]map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	if _, ok := pending[EventInvalidated]; ok {
		send(Event{Type: EventInvalidated})
		return
	}
	for id := range pending[EventObjectChanged] {
		send(Event{Type: EventObjectChanged, ObjectID: id})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
