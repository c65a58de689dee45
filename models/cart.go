package models

// CartItem is one line of a user's cart, stored at
// users/{uid}/cart/{productName}. Total is always recomputed as
// Price * Quantity before a write; a stored record never disagrees
// with its own product.
type CartItem struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Price    int      `json:"price"`
	Quantity int      `json:"quantity"`
	Image    string   `json:"image"`
	Total    int      `json:"total"`
}

// ItemFromProduct builds the cart record for a product at the given
// quantity, recomputing the total.
func ItemFromProduct(p Product, quantity int) CartItem {
	return CartItem{
		Name:     p.Name,
		Category: p.Category,
		Price:    p.Price,
		Quantity: quantity,
		Image:    p.Image,
		Total:    p.Price * quantity,
	}
}
