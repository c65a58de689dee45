// Package cart keeps a live, observable reflection of one user's cart
// subtree and mediates every mutation to it.
package cart

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/wastebank/storefront/apperrors"
	"github.com/wastebank/storefront/logger"
	"github.com/wastebank/storefront/models"
	"github.com/wastebank/storefront/remote"
	"github.com/wastebank/storefront/session"
)

type Syncer struct {
	store   remote.Store
	session session.Session
	log     *zap.Logger
}

// NewSyncer builds a Syncer. A nil log falls back to the package-global
// logger.
func NewSyncer(store remote.Store, sess session.Session, log *zap.Logger) *Syncer {
	if log == nil {
		log = logger.Log
	}
	return &Syncer{store: store, session: sess, log: log}
}

func cartPath(uid string) string {
	return "users/" + uid + "/cart"
}

// AddToCart increments the stored quantity for the product by one and
// rewrites the full record with a recomputed total. This is a
// read-modify-write on a single key; a second client racing on the same
// key wins or loses whole writes (last write wins), which matches the
// store's single-document atomicity.
func (s *Syncer) AddToCart(ctx context.Context, p models.Product) error {
	uid, err := s.session.UserID(ctx)
	if err != nil {
		return err
	}

	itemPath := cartPath(uid) + "/" + p.Name
	snap, err := s.store.Get(ctx, itemPath)
	if err != nil {
		return err
	}

	quantity := 0
	if snap.Exists() {
		var current models.CartItem
		if err := snap.Unmarshal(&current); err == nil {
			quantity = current.Quantity
		}
	}
	quantity++

	item := models.ItemFromProduct(p, quantity)
	if err := s.store.Set(ctx, itemPath, item); err != nil {
		return err
	}
	s.log.Debug("cart item written",
		zap.String("uid", uid),
		zap.String("product", p.Name),
		zap.Int("quantity", quantity))
	return nil
}

// RemoveFromCart deletes the cart entry for the product. Removing an
// absent entry succeeds.
func (s *Syncer) RemoveFromCart(ctx context.Context, productName string) error {
	uid, err := s.session.UserID(ctx)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, cartPath(uid)+"/"+productName)
}

// Observe subscribes to the user's cart subtree and returns a
// subscription that delivers the complete re-materialised cart after
// every change. With no signed-in user the subscription is already
// closed and empty; that is not an error.
func (s *Syncer) Observe(ctx context.Context) (*Subscription, error) {
	uid, err := s.session.UserID(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotAuthenticated) {
			return closedSubscription(), nil
		}
		return nil, err
	}

	watcher, err := s.store.Watch(ctx, cartPath(uid))
	if err != nil {
		return nil, err
	}

	sub := newSubscription(watcher)
	go sub.run(s.log)
	return sub, nil
}

// materialize maps a subtree snapshot to the full cart contents.
// Malformed children are skipped rather than failing the whole read.
func materialize(snap remote.Snapshot) []models.CartItem {
	children := snap.Children()
	items := make([]models.CartItem, 0, len(children))
	for _, child := range children {
		var item models.CartItem
		if err := child.Snapshot.Unmarshal(&item); err != nil || item.Name == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}
