// Package payment turns a cart snapshot into a durable payment record.
//
// The store has no multi-document transaction, so the commit is a fixed
// sequence of independent writes: header first, then line items, then
// the cart clear. The header write is the durability checkpoint; a
// failure after it leaves a payment with a subset of its items on the
// store and the cart untouched. Nothing is rolled back — a retry
// allocates a fresh payment id. Operators reconcile headers with
// missing items out of band.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wastebank/storefront/apperrors"
	"github.com/wastebank/storefront/logger"
	"github.com/wastebank/storefront/models"
	"github.com/wastebank/storefront/remote"
	"github.com/wastebank/storefront/session"
)

const (
	dateLayout = "02/01/2006"
	hourLayout = "15:04"
)

type Committer struct {
	store   remote.Store
	session session.Session
	log     *zap.Logger

	// now is a hook for tests; Pay captures a single instant from it.
	now func() time.Time
}

// NewCommitter builds a Committer. A nil log falls back to the
// package-global logger.
func NewCommitter(store remote.Store, sess session.Session, log *zap.Logger) *Committer {
	if log == nil {
		log = logger.Log
	}
	return &Committer{
		store:   store,
		session: sess,
		log:     log,
		now:     time.Now,
	}
}

// Pay commits the given cart snapshot as a payment under
// payments/{method} and clears the user's cart. A missing method is
// rejected as ErrInvalidInput and an empty snapshot as ErrPaymentFailed
// before any step runs. Steps run strictly in order; the first failure
// aborts the rest and surfaces as ErrPaymentFailed (or
// ErrNotAuthenticated / ErrIDAllocation for the two named
// preconditions). Success means the cart is empty and the full payment
// exists.
func (c *Committer) Pay(ctx context.Context, method string, items []models.CartItem) (*models.Payment, error) {
	if method == "" {
		return nil, apperrors.ErrInvalidInput.With(errors.New("payment method is required"))
	}
	if len(items) == 0 {
		return nil, apperrors.ErrPaymentFailed.With(errors.New("cart is empty"))
	}

	uid, err := c.session.UserID(ctx)
	if err != nil {
		return nil, err
	}

	userName, err := c.userName(ctx, uid)
	if err != nil {
		return nil, apperrors.ErrPaymentFailed.With(err)
	}

	paymentID, err := c.store.PushKey(ctx, "payments/"+method)
	if err != nil {
		return nil, apperrors.ErrIDAllocation.With(err)
	}

	// One instant for both strings, so date and hour never disagree.
	ts := c.now()

	header := models.Payment{
		PaymentID:     paymentID,
		PaymentMethod: method,
		UserID:        uid,
		UserName:      userName,
		Date:          ts.Format(dateLayout),
		Hour:          ts.Format(hourLayout),
	}

	base := "payments/" + method + "/" + paymentID
	if err := c.store.Set(ctx, base, header); err != nil {
		return nil, apperrors.ErrPaymentFailed.With(err)
	}

	// Line items are keyed from 1 in snapshot order. Independent
	// writes: a failure here strands the header with a subset of its
	// items, and the cart below stays as it was.
	committed := make([]models.CartItem, 0, len(items))
	for i, item := range items {
		item.Total = item.Price * item.Quantity
		itemPath := fmt.Sprintf("%s/items/%d", base, i+1)
		if err := c.store.Set(ctx, itemPath, item); err != nil {
			c.log.Error("payment item write failed",
				zap.String("payment_id", paymentID),
				zap.Int("index", i+1),
				zap.Error(err))
			return nil, apperrors.ErrPaymentFailed.With(err)
		}
		committed = append(committed, item)
	}

	if err := c.store.Delete(ctx, "users/"+uid+"/cart"); err != nil {
		return nil, apperrors.ErrPaymentFailed.With(err)
	}

	c.log.Info("payment committed",
		zap.String("payment_id", paymentID),
		zap.String("method", method),
		zap.String("uid", uid),
		zap.Int("items", len(committed)))

	result := header
	result.Items = committed
	return &result, nil
}

// userName reads the user's display name. A missing name is substituted
// with a placeholder rather than blocking the payment; only a failed
// read is an error.
func (c *Committer) userName(ctx context.Context, uid string) (string, error) {
	snap, err := c.store.Get(ctx, "users/"+uid+"/name")
	if err != nil {
		return "", err
	}
	name := ""
	if err := snap.Unmarshal(&name); err != nil || name == "" {
		return "Unknown", nil
	}
	return name, nil
}
