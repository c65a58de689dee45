package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetAbsent(t *testing.T) {
	s := NewMemoryStore()

	snap, err := s.Get(context.Background(), "users/u1/cart")
	require.NoError(t, err)
	assert.False(t, snap.Exists())
}

func TestMemoryStore_SubtreeAssembly(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "users/u1/cart/Jeans", map[string]any{"quantity": 2}))
	require.NoError(t, s.Set(ctx, "users/u1/cart/Vase", map[string]any{"quantity": 1}))

	snap, err := s.Get(ctx, "users/u1/cart")
	require.NoError(t, err)
	require.True(t, snap.Exists())

	children := snap.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "Jeans", children[0].Key)
	assert.Equal(t, "Vase", children[1].Key)
}

func TestMemoryStore_LeafAndSubtreeMerge(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Header object at the node, children below it.
	require.NoError(t, s.Set(ctx, "payments/transfer/p1", map[string]any{"userId": "u1"}))
	require.NoError(t, s.Set(ctx, "payments/transfer/p1/items/1", map[string]any{"total": 100}))

	snap, err := s.Get(ctx, "payments/transfer/p1")
	require.NoError(t, err)

	keys := []string{}
	for _, c := range snap.Children() {
		keys = append(keys, c.Key)
	}
	assert.Equal(t, []string{"items", "userId"}, keys)
}

func TestMemoryStore_DescendIntoLeafObject(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "users/u1", map[string]any{"name": "Asha", "point": 40}))

	snap, err := s.Get(ctx, "users/u1/name")
	require.NoError(t, err)
	name := ""
	require.NoError(t, snap.Unmarshal(&name))
	assert.Equal(t, "Asha", name)
}

func TestMemoryStore_DeleteSubtree(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "users/u1/cart/Jeans", map[string]any{"quantity": 1}))
	require.NoError(t, s.Set(ctx, "users/u1/cart/Vase", map[string]any{"quantity": 1}))
	require.NoError(t, s.Delete(ctx, "users/u1/cart"))

	snap, err := s.Get(ctx, "users/u1/cart")
	require.NoError(t, err)
	assert.False(t, snap.Exists())
}

func TestMemoryStore_DeleteAbsentIsNoError(t *testing.T) {
	s := NewMemoryStore()
	assert.NoError(t, s.Delete(context.Background(), "users/u1/cart/Ghost"))
}

func TestMemoryStore_SetReplacesSubtree(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "a/b/c", "deep"))
	require.NoError(t, s.Set(ctx, "a/b", "shallow"))

	snap, err := s.Get(ctx, "a/b")
	require.NoError(t, err)
	v := ""
	require.NoError(t, snap.Unmarshal(&v))
	assert.Equal(t, "shallow", v)
}

func TestMemoryStore_WatchDeliversInitialAndUpdates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	w, err := s.Watch(ctx, "users/u1/cart")
	require.NoError(t, err)
	defer w.Close()

	ev := recvEvent(t, w)
	require.NoError(t, ev.Err)
	assert.False(t, ev.Snapshot.Exists())

	require.NoError(t, s.Set(ctx, "users/u1/cart/Jeans", map[string]any{"quantity": 1}))

	ev = recvEvent(t, w)
	require.NoError(t, ev.Err)
	require.True(t, ev.Snapshot.Exists())
	assert.Len(t, ev.Snapshot.Children(), 1)
}

func TestMemoryStore_WatchSeesAncestorDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "users/u1/cart/Jeans", map[string]any{"quantity": 1}))

	w, err := s.Watch(ctx, "users/u1/cart")
	require.NoError(t, err)
	defer w.Close()
	recvEvent(t, w) // initial

	require.NoError(t, s.Delete(ctx, "users/u1"))

	ev := recvEvent(t, w)
	require.NoError(t, ev.Err)
	assert.False(t, ev.Snapshot.Exists())
}

func TestMemoryStore_WatchCloseIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	w, err := s.Watch(context.Background(), "users/u1/cart")
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())

	// Channel drains and closes.
	for range w.Events() {
	}
}

func TestMemoryStore_ClosedWatcherGetsNoEvents(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	w, err := s.Watch(ctx, "users/u1/cart")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// Mutating after close must not panic or deliver.
	require.NoError(t, s.Set(ctx, "users/u1/cart/Jeans", map[string]any{"quantity": 1}))

	n := 0
	for range w.Events() {
		n++
	}
	assert.LessOrEqual(t, n, 1, "at most the initial snapshot")
}

func recvEvent(t *testing.T, w Watcher) Event {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "events channel closed unexpectedly")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return Event{}
	}
}
