package domain

import "math"

// Category is a catalog category.
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}

// Product is a read-only snapshot of a catalog product.
type Product struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Slug        string   `json:"slug"`
	Price       int64    `json:"price"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
	Category    Category `json:"category"`
}

// Image returns the product's primary image, or "" when it has none.
func (p *Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// LineItem builds a cart line for the chosen variant with quantity 1.
func (p *Product) LineItem(size int, color string) CartLineItem {
	return CartLineItem{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.Image(),
		Color:     color,
		Size:      size,
		Quantity:  1,
	}
}

// WishlistEntry builds a wishlist entry for the product.
func (p *Product) WishlistEntry() WishlistEntry {
	return WishlistEntry{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.Image(),
	}
}

// ToCents converts a decimal price in currency units to cents, rounding half
// away from zero.
func ToCents(price float64) int64 {
	return int64(math.Round(price * 100))
}
