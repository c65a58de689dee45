package cart

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wastebank/storefront/models"
	"github.com/wastebank/storefront/remote"
)

// Subscription is a lazy, infinite sequence of cart snapshots. Items
// holds at most the latest snapshot; a slow consumer never blocks the
// listener, it just skips intermediate states. The channel closes when
// the subscription ends; Err tells an error ending apart from a
// cancelled or empty one.
//
// A Subscription is not restartable. Observe again for a new one.
type Subscription struct {
	items   chan []models.CartItem
	watcher remote.Watcher
	cancel  sync.Once

	mu  sync.Mutex
	err error
}

func newSubscription(w remote.Watcher) *Subscription {
	return &Subscription{
		items:   make(chan []models.CartItem, 1),
		watcher: w,
	}
}

// closedSubscription is the zero-element sequence handed out when no
// user is signed in.
func closedSubscription() *Subscription {
	s := &Subscription{items: make(chan []models.CartItem)}
	close(s.items)
	return s
}

// Items delivers full cart snapshots until the subscription ends.
func (s *Subscription) Items() <-chan []models.CartItem {
	return s.items
}

// Err reports why the sequence ended. It is meaningful only after Items
// has been closed; nil means a clean end (cancel, or never signed in).
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel releases the remote listener. It is safe to call any number of
// times, and safe to call while a notification is in flight; the
// listener is released exactly once on every exit path.
func (s *Subscription) Cancel() {
	s.cancel.Do(func() {
		if s.watcher != nil {
			_ = s.watcher.Close()
		}
	})
}

func (s *Subscription) run(log *zap.Logger) {
	defer close(s.items)
	defer s.Cancel()

	for ev := range s.watcher.Events() {
		if ev.Err != nil {
			s.mu.Lock()
			s.err = ev.Err
			s.mu.Unlock()
			log.Warn("cart subscription failed", zap.Error(ev.Err))
			return
		}
		s.publish(materialize(ev.Snapshot))
	}
}

// publish replaces any undelivered snapshot with the latest one.
func (s *Subscription) publish(items []models.CartItem) {
	for {
		select {
		case s.items <- items:
			return
		default:
			select {
			case <-s.items:
			default:
			}
		}
	}
}
