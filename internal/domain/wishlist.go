package domain

// WishlistEntry is a saved product. Unlike a cart line it carries no variant
// and no quantity; ProductID alone is the key.
type WishlistEntry struct {
	ProductID int    `json:"id" validate:"gt=0"`
	Title     string `json:"title" validate:"required"`
	Price     int64  `json:"price" validate:"gte=0"`
	Image     string `json:"image"`
}

// Wishlist is the ordered set of saved products for one session.
type Wishlist struct {
	Entries []WishlistEntry `json:"entries"`
}

// Count returns the number of saved products.
func (w *Wishlist) Count() int {
	return len(w.Entries)
}

// IndexOf returns the index of the entry for productID, or -1.
func (w *Wishlist) IndexOf(productID int) int {
	for i := range w.Entries {
		if w.Entries[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Contains reports whether productID is saved.
func (w *Wishlist) Contains(productID int) bool {
	return w.IndexOf(productID) >= 0
}
