package remote

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for local development and tests.
// Values are kept at the exact paths they were written to; subtree
// reads assemble the nested object on the fly, the same shape a remote
// backend would return.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string]json.RawMessage
	watchers map[string]*memWatcher
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:   make(map[string]json.RawMessage),
		watchers: make(map[string]*memWatcher),
	}
}

func (s *MemoryStore) Get(_ context.Context, path string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(path), nil
}

func (s *MemoryStore) Set(_ context.Context, path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A set replaces the whole subtree below the path.
	prefix := path + "/"
	for k := range s.values {
		if strings.HasPrefix(k, prefix) {
			delete(s.values, k)
		}
	}
	s.values[path] = raw
	s.notifyLocked(path)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, path)
	prefix := path + "/"
	for k := range s.values {
		if strings.HasPrefix(k, prefix) {
			delete(s.values, k)
		}
	}
	s.notifyLocked(path)
	return nil
}

func (s *MemoryStore) PushKey(_ context.Context, _ string) (string, error) {
	return newPushID(time.Now()), nil
}

func (s *MemoryStore) Watch(_ context.Context, path string) (Watcher, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := &memWatcher{
		store:  s,
		id:     uuid.NewString(),
		path:   path,
		events: make(chan Event, watchBuffer),
	}
	s.watchers[w.id] = w
	w.send(Event{Snapshot: s.snapshotLocked(path)})
	return w, nil
}

const watchBuffer = 16

// snapshotLocked materialises the value at path: the leaf written there,
// the subtree assembled from deeper leaves, or a descent into a leaf
// object written at an ancestor.
func (s *MemoryStore) snapshotLocked(path string) Snapshot {
	tree := map[string]any{}
	prefix := path + "/"
	for k, v := range s.values {
		if strings.HasPrefix(k, prefix) {
			insertPath(tree, strings.Split(k[len(prefix):], "/"), v)
		}
	}

	exact, haveExact := s.values[path]
	if len(tree) == 0 {
		if haveExact {
			return NewSnapshot(exact)
		}
		return s.descendLocked(path)
	}
	if haveExact {
		mergeLeafObject(tree, exact)
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return Snapshot{}
	}
	return NewSnapshot(raw)
}

// descendLocked resolves a path that points inside an object stored at
// an ancestor leaf.
func (s *MemoryStore) descendLocked(path string) Snapshot {
	for k, v := range s.values {
		if !strings.HasPrefix(path, k+"/") {
			continue
		}
		raw := v
		for _, seg := range strings.Split(path[len(k)+1:], "/") {
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(raw, &obj); err != nil {
				return Snapshot{}
			}
			child, ok := obj[seg]
			if !ok {
				return Snapshot{}
			}
			raw = child
		}
		return NewSnapshot(raw)
	}
	return Snapshot{}
}

func (s *MemoryStore) notifyLocked(path string) {
	for _, w := range s.watchers {
		if !related(w.path, path) {
			continue
		}
		w.send(Event{Snapshot: s.snapshotLocked(w.path)})
	}
}

// related reports whether a change at changed is visible from the
// subtree rooted at watched.
func related(watched, changed string) bool {
	return watched == changed ||
		strings.HasPrefix(changed, watched+"/") ||
		strings.HasPrefix(watched, changed+"/")
}

type memWatcher struct {
	store  *MemoryStore
	id     string
	path   string
	events chan Event
	once   sync.Once
}

func (w *memWatcher) Events() <-chan Event {
	return w.events
}

// send delivers without blocking, dropping the oldest buffered event
// when the consumer lags. Callers hold the store lock, which is what
// makes send and Close safe against each other.
func (w *memWatcher) send(ev Event) {
	for {
		select {
		case w.events <- ev:
			return
		default:
			select {
			case <-w.events:
			default:
			}
		}
	}
}

func (w *memWatcher) Close() error {
	w.once.Do(func() {
		w.store.mu.Lock()
		delete(w.store.watchers, w.id)
		close(w.events)
		w.store.mu.Unlock()
	})
	return nil
}
