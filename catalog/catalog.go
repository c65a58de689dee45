// Package catalog reads the product collection. The catalog is a
// one-shot lookup; nothing here subscribes to changes.
package catalog

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/wastebank/storefront/logger"
	"github.com/wastebank/storefront/models"
	"github.com/wastebank/storefront/remote"
)

const productsPath = "product"

type Reader struct {
	store remote.Store
	log   *zap.Logger
}

// NewReader builds a Reader. A nil log falls back to the package-global
// logger.
func NewReader(store remote.Store, log *zap.Logger) *Reader {
	if log == nil {
		log = logger.Log
	}
	return &Reader{store: store, log: log}
}

// ListProducts fetches the whole catalog. A failed fetch degrades to an
// empty list; the UI treats that the same as an empty catalog.
// Malformed entries are skipped, not fatal.
func (r *Reader) ListProducts(ctx context.Context) []models.Product {
	snap, err := r.store.Get(ctx, productsPath)
	if err != nil {
		r.log.Warn("catalog fetch failed", zap.Error(err))
		return []models.Product{}
	}

	children := snap.Children()
	products := make([]models.Product, 0, len(children))
	for _, child := range children {
		var p models.Product
		if err := child.Snapshot.Unmarshal(&p); err != nil || p.Name == "" {
			r.log.Debug("skipping malformed product", zap.String("key", child.Key))
			continue
		}
		products = append(products, p)
	}
	return products
}

// GetProductByName looks a product up by its name, the catalog's
// identity key.
func (r *Reader) GetProductByName(ctx context.Context, name string) (models.Product, bool) {
	for _, p := range r.ListProducts(ctx) {
		if p.Name == name {
			return p, true
		}
	}
	return models.Product{}, false
}

// AddProduct publishes a product under a generated key. Used by the
// admin side of the app.
func (r *Reader) AddProduct(ctx context.Context, p models.Product) error {
	if p.Name == "" {
		return errors.New("product name is required")
	}
	key, err := r.store.PushKey(ctx, productsPath)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, productsPath+"/"+key, p); err != nil {
		return err
	}
	r.log.Info("product added", zap.String("name", p.Name), zap.String("key", key))
	return nil
}
