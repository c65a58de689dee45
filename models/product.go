package models

// Category partitions the catalog. Values mirror what the store holds,
// so they are plain strings rather than iota constants.
type Category = string

const (
	CategoryFashion Category = "Fashion"
	CategoryVase    Category = "Vase"
	CategoryCraft   Category = "Craft"
)

// Product is a catalog entry. Identity is the product name, which is
// unique within the catalog; records are immutable once read.
type Product struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Price    int      `json:"price"` // rupiah, minor units not used
	Image    string   `json:"image"`
}
