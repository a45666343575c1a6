package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/masumislambadsha/zavisoft/internal/domain"
	pkgkafka "github.com/masumislambadsha/zavisoft/pkg/kafka"
)

// Event types and their topics.
const (
	TypeCartUpdated     = "cart.updated"
	TypeCartCleared     = "cart.cleared"
	TypeWishlistUpdated = "wishlist.updated"
)

var (
	TopicCartUpdated     = pkgkafka.Topic("cart", "updated")
	TopicCartCleared     = pkgkafka.Topic("cart", "cleared")
	TopicWishlistUpdated = pkgkafka.Topic("wishlist", "updated")
)

// Aggregate types.
const (
	AggregateTypeCart     = "cart"
	AggregateTypeWishlist = "wishlist"
)

// SourceStorefront identifies events originating from this service.
const SourceStorefront = "storefront"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	SessionID string         `json:"session_id"`
	Action    string         `json:"action"`
	Items     []CartItemData `json:"items"`
	ItemCount int            `json:"item_count"`
	Subtotal  int64          `json:"subtotal"`
}

// CartItemData is the line payload within cart events.
type CartItemData struct {
	ProductID int    `json:"product_id"`
	Size      int    `json:"size"`
	Color     string `json:"color"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// CartClearedData is the payload for a cart.cleared event.
type CartClearedData struct {
	SessionID string `json:"session_id"`
}

// WishlistUpdatedData is the payload for a wishlist.updated event.
type WishlistUpdatedData struct {
	SessionID  string `json:"session_id"`
	Action     string `json:"action"`
	ProductID  int    `json:"product_id,omitempty"`
	ProductIDs []int  `json:"product_ids"`
	Count      int    `json:"count"`
}

// Producer publishes storefront domain events.
type Producer struct {
	publisher pkgkafka.Publisher
	logger    *slog.Logger
}

// NewProducer creates a producer over publisher. Use pkgkafka.NopPublisher
// when Kafka is disabled.
func NewProducer(publisher pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{publisher: publisher, logger: logger}
}

// PublishCartUpdated publishes the full cart after a mutation.
func (p *Producer) PublishCartUpdated(ctx context.Context, sessionID, action string, cart *domain.Cart) error {
	items := make([]CartItemData, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = CartItemData{
			ProductID: item.ProductID,
			Size:      item.Size,
			Color:     item.Color,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	data := CartUpdatedData{
		SessionID: sessionID,
		Action:    action,
		Items:     items,
		ItemCount: cart.ItemCount(),
		Subtotal:  cart.Subtotal(),
	}
	if err := p.publish(ctx, TopicCartUpdated, TypeCartUpdated, AggregateTypeCart, sessionID, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.String("session_id", sessionID),
		slog.String("action", action),
		slog.Int("item_count", data.ItemCount),
	)
	return nil
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Producer) PublishCartCleared(ctx context.Context, sessionID string) error {
	return p.publish(ctx, TopicCartCleared, TypeCartCleared, AggregateTypeCart, sessionID, CartClearedData{SessionID: sessionID})
}

// PublishWishlistUpdated publishes the wishlist after an add or remove of
// productID. A clear carries no product id.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, sessionID, action string, productID int, entries []domain.WishlistEntry) error {
	ids := make([]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ProductID
	}

	data := WishlistUpdatedData{
		SessionID:  sessionID,
		Action:     action,
		ProductID:  productID,
		ProductIDs: ids,
		Count:      len(entries),
	}
	return p.publish(ctx, TopicWishlistUpdated, TypeWishlistUpdated, AggregateTypeWishlist, sessionID, data)
}

func (p *Producer) publish(ctx context.Context, topic, eventType, aggregateType, sessionID string, data any) error {
	evt, err := pkgkafka.NewEvent(ctx, eventType, aggregateType, sessionID, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if err := p.publisher.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}
