package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestItemFromProduct_RecomputesTotal(t *testing.T) {
	p := Product{Name: "Jeans Totebag", Category: CategoryFashion, Price: 25000, Image: "img"}

	item := ItemFromProduct(p, 3)
	assert.Equal(t, 3, item.Quantity)
	assert.Equal(t, 75000, item.Total)
	assert.Equal(t, p.Name, item.Name)
}

func TestPayment_Amount(t *testing.T) {
	p := Payment{Items: []CartItem{{Total: 50000}, {Total: 15000}}}
	assert.Equal(t, 65000, p.Amount())
}
