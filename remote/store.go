// Package remote provides typed access to the hierarchical,
// path-addressed document store backing the storefront. Paths look like
// "users/{uid}/cart/{productName}"; values are JSON documents.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
)

// Store is the client contract every backend implements. Reads of an
// absent path yield a non-existent Snapshot, not an error.
type Store interface {
	// Get reads the value at path, including the whole subtree below it.
	Get(ctx context.Context, path string) (Snapshot, error)
	// Set writes v at path, replacing whatever was there.
	Set(ctx context.Context, path string, v any) error
	// Delete removes path and its entire subtree. Deleting an absent
	// path is not an error.
	Delete(ctx context.Context, path string) error
	// PushKey allocates a unique child key under path. Keys sort by
	// allocation time.
	PushKey(ctx context.Context, path string) (string, error)
	// Watch subscribes to the subtree at path. The watcher delivers the
	// current snapshot immediately, then a fresh full snapshot after
	// every change below path.
	Watch(ctx context.Context, path string) (Watcher, error)
}

// Watcher is a live subtree subscription. Events is closed after an
// error event or after Close; Close is safe to call more than once.
type Watcher interface {
	Events() <-chan Event
	Close() error
}

// Event is one notification from a Watcher. Either Snapshot or Err is
// meaningful, never both.
type Event struct {
	Snapshot Snapshot
	Err      error
}

var nullJSON = []byte("null")

// Snapshot is the raw JSON value read from a path.
type Snapshot struct {
	raw json.RawMessage
}

// NewSnapshot wraps raw JSON. A nil or literal-null payload is a
// non-existent snapshot.
func NewSnapshot(raw []byte) Snapshot {
	return Snapshot{raw: raw}
}

// Exists reports whether the path held a value.
func (s Snapshot) Exists() bool {
	return len(s.raw) > 0 && !bytes.Equal(s.raw, nullJSON)
}

// Unmarshal decodes the snapshot into v.
func (s Snapshot) Unmarshal(v any) error {
	if !s.Exists() {
		return nil
	}
	return json.Unmarshal(s.raw, v)
}

// Raw returns the underlying JSON.
func (s Snapshot) Raw() json.RawMessage {
	return s.raw
}

// Child is one direct child of an object snapshot.
type Child struct {
	Key      string
	Snapshot Snapshot
}

// Children returns the direct children of an object snapshot, sorted by
// key so materialisation is deterministic. Non-object snapshots have no
// children.
func (s Snapshot) Children() []Child {
	if !s.Exists() {
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(s.raw, &m); err != nil {
		return nil
	}
	children := make([]Child, 0, len(m))
	for k, v := range m {
		children = append(children, Child{Key: k, Snapshot: Snapshot{raw: v}})
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Key < children[j].Key })
	return children
}
