package vault

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/PolarWolf314/notevault/internal/container"
)

// EventType is the kind of change Watch reports.
type EventType string

const (
	EventCreated  EventType = "created"
	EventModified EventType = "modified"
	EventRemoved  EventType = "removed"
)

// Event is a change to a vault file.
type Event struct {
	Type EventType
	Name string
}

// watchDelay is how long events for one vault are coalesced.
const watchDelay = 50 * time.Millisecond

// Watch reports changes to vault files in the store's directory until ctx is
// cancelled, then closes the channel. The directory is created if missing.
// Bursts of events for the same vault are coalesced and the latest wins.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	// Atomic saves land as a create on the target, so creates of names
	// already present are reported as modifications.
	known := make(map[string]bool)
	if entries, err := s.List(); err == nil {
		for _, entry := range entries {
			known[entry.Name] = true
		}
	}

	out := make(chan Event)
	d := newDebouncer(watchDelay, func(e Event) {
		select {
		case out <- e:
		case <-ctx.Done():
		}
	})

	go func() {
		defer close(out)
		defer d.stopAndWait()
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				e, ok := mapEvent(event)
				if !ok {
					continue
				}
				switch e.Type {
				case EventCreated:
					if known[e.Name] {
						e.Type = EventModified
					}
					known[e.Name] = true
				case EventRemoved:
					delete(known, e.Name)
				}
				d.add(e)
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return out, nil
}

func mapEvent(event fsnotify.Event) (Event, bool) {
	base := filepath.Base(event.Name)
	if !strings.HasSuffix(base, container.Extension) || strings.HasPrefix(base, ".") {
		return Event{}, false
	}
	name := strings.TrimSuffix(base, container.Extension)

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return Event{Type: EventRemoved, Name: name}, true
	case event.Has(fsnotify.Create):
		return Event{Type: EventCreated, Name: name}, true
	case event.Has(fsnotify.Write):
		return Event{Type: EventModified, Name: name}, true
	}
	return Event{}, false
}

// debouncer delivers at most one event per vault name per delay window.
type debouncer struct {
	delay time.Duration
	emit  func(Event)

	mu      sync.Mutex
	pending map[string]Event
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(delay time.Duration, emit func(Event)) *debouncer {
	return &debouncer{
		delay:   delay,
		emit:    emit,
		pending: make(map[string]Event),
		timers:  make(map[string]*time.Timer),
	}
}

func (d *debouncer) add(e Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	// A create followed by writes within the window is still a create.
	if prev, ok := d.pending[e.Name]; ok && prev.Type == EventCreated && e.Type == EventModified {
		e.Type = EventCreated
	}
	d.pending[e.Name] = e
	if _, ok := d.timers[e.Name]; ok {
		return
	}
	d.wg.Add(1)
	d.timers[e.Name] = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.fire(e.Name)
	})
}

func (d *debouncer) fire(name string) {
	d.mu.Lock()
	e, ok := d.pending[name]
	delete(d.pending, name)
	delete(d.timers, name)
	stopped := d.stopped
	d.mu.Unlock()

	if ok && !stopped {
		d.emit(e)
	}
}

// stopAndWait drops pending events and waits for in-flight deliveries.
func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	for name, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, name)
	}
	clear(d.pending)
	d.mu.Unlock()
	d.wg.Wait()
}
