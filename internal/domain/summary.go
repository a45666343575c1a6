package domain

// DefaultDeliveryFeeCents is the flat delivery charge (6.99).
const DefaultDeliveryFeeCents int64 = 699

// OrderSummary is the checkout panel shown next to the cart.
type OrderSummary struct {
	ItemCount   int   `json:"item_count"`
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Total       int64 `json:"total"`
}

// NewOrderSummary derives the summary for cart. An empty cart is charged no
// delivery fee.
func NewOrderSummary(cart *Cart, deliveryFee int64) OrderSummary {
	s := OrderSummary{
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
	}
	if !cart.IsEmpty() {
		s.DeliveryFee = deliveryFee
	}
	s.Total = s.Subtotal + s.DeliveryFee
	return s
}
