package domain

// LineKey identifies one cart line: the same product in a different size or
// color is a separate line.
type LineKey struct {
	ProductID int    `json:"id"`
	Size      int    `json:"size"`
	Color     string `json:"color"`
}

// CartLineItem is one row of the cart. Title, Price and Image are a snapshot
// of the catalog taken when the line was first added and are never re-synced.
type CartLineItem struct {
	ProductID int    `json:"id" validate:"gt=0"`
	Title     string `json:"title" validate:"required"`
	Price     int64  `json:"price" validate:"gte=0"`
	Image     string `json:"image"`
	Color     string `json:"color" validate:"required"`
	Size      int    `json:"size" validate:"gt=0"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

// Key returns the line's identity.
func (i CartLineItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

// LineTotal returns Price * Quantity in cents.
func (i CartLineItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

// Cart is the ordered collection of line items for one session.
type Cart struct {
	Items []CartLineItem `json:"items"`
}

// ItemCount returns the sum of quantities across all lines.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Subtotal returns the sum of line totals in cents.
func (c *Cart) Subtotal() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

// FindItemIndex returns the index of the line matching key, or -1.
func (c *Cart) FindItemIndex(key LineKey) int {
	for i := range c.Items {
		if c.Items[i].Key() == key {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
