package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wastebank/storefront/apperrors"
	"github.com/wastebank/storefront/catalog"
	"github.com/wastebank/storefront/models"
	"github.com/wastebank/storefront/remote"
)

type failingGetStore struct {
	remote.Store
	err error
}

func (f *failingGetStore) Get(context.Context, string) (remote.Snapshot, error) {
	return remote.Snapshot{}, f.err
}

func newTestReader(store remote.Store) *catalog.Reader {
	log, _ := zap.NewDevelopment()
	return catalog.NewReader(store, log)
}

func seedCatalog(t *testing.T, store remote.Store) {
	t.Helper()
	ctx := context.Background()
	reader := newTestReader(store)
	require.NoError(t, reader.AddProduct(ctx, models.Product{
		Name: "Jeans Totebag", Category: models.CategoryFashion, Price: 25000, Image: "img/jeans.png",
	}))
	require.NoError(t, reader.AddProduct(ctx, models.Product{
		Name: "Bottle Vase", Category: models.CategoryVase, Price: 15000, Image: "img/vase.png",
	}))
}

func TestListProducts(t *testing.T) {
	store := remote.NewMemoryStore()
	seedCatalog(t, store)

	products := newTestReader(store).ListProducts(context.Background())
	require.Len(t, products, 2)

	names := []string{products[0].Name, products[1].Name}
	assert.ElementsMatch(t, []string{"Jeans Totebag", "Bottle Vase"}, names)
}

func TestListProducts_SkipsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	store := remote.NewMemoryStore()
	seedCatalog(t, store)
	require.NoError(t, store.Set(ctx, "product/broken", "not a product"))

	products := newTestReader(store).ListProducts(ctx)
	assert.Len(t, products, 2)
}

func TestListProducts_FetchFailureDegradesToEmpty(t *testing.T) {
	store := &failingGetStore{err: apperrors.ErrTransport.With(errors.New("down"))}

	products := newTestReader(store).ListProducts(context.Background())
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestGetProductByName(t *testing.T) {
	store := remote.NewMemoryStore()
	seedCatalog(t, store)
	reader := newTestReader(store)

	p, ok := reader.GetProductByName(context.Background(), "Bottle Vase")
	require.True(t, ok)
	assert.Equal(t, 15000, p.Price)
	assert.Equal(t, models.CategoryVase, p.Category)

	_, ok = reader.GetProductByName(context.Background(), "No Such Product")
	assert.False(t, ok)
}

func TestAddProduct_RequiresName(t *testing.T) {
	reader := newTestReader(remote.NewMemoryStore())
	err := reader.AddProduct(context.Background(), models.Product{Price: 100})
	assert.Error(t, err)
}
