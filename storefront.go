// Package storefront wires the library together: configuration in, a
// ready set of components out. Applications that need a different
// composition can use the sub-packages directly.
package storefront

import (
	"context"

	"github.com/wastebank/storefront/cart"
	"github.com/wastebank/storefront/catalog"
	"github.com/wastebank/storefront/config"
	"github.com/wastebank/storefront/logger"
	"github.com/wastebank/storefront/payment"
	"github.com/wastebank/storefront/profile"
	"github.com/wastebank/storefront/remote"
	"github.com/wastebank/storefront/session"
)

// Client bundles the library's components over one store and one
// session.
type Client struct {
	Cart     *cart.Syncer
	Payments *payment.Committer
	Catalog  *catalog.Reader
	Profile  *profile.Service
	Store    remote.Store
}

// New initialises logging from the environment, picks the store backend
// from the configuration and wires every component over it.
func New(ctx context.Context, cfg config.Config, sess session.Session) (*Client, error) {
	logger.Initialize(cfg.Env)

	store, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewWithStore(store, sess), nil
}

// NewStore selects the backend: Firebase when a database URL is
// configured, Redis otherwise.
func NewStore(ctx context.Context, cfg config.Config) (remote.Store, error) {
	if cfg.FirebaseDatabaseURL != "" {
		app, err := remote.NewApp(ctx, cfg.FirebaseDatabaseURL, cfg.FirebaseCredentialsFile)
		if err != nil {
			return nil, err
		}
		return remote.NewFirebaseStore(ctx, app, cfg.FirebaseDatabaseURL, cfg.FirebaseCredentialsFile)
	}
	return remote.NewRedisStore(cfg.RedisURL)
}

// NewWithStore wires the components over an already-built store, e.g.
// the in-memory backend in tests.
func NewWithStore(store remote.Store, sess session.Session) *Client {
	return &Client{
		Cart:     cart.NewSyncer(store, sess, nil),
		Payments: payment.NewCommitter(store, sess, nil),
		Catalog:  catalog.NewReader(store, nil),
		Profile:  profile.NewService(store, sess, nil),
		Store:    store,
	}
}
