package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/masumislambadsha/zavisoft/pkg/logger"
)

type cartPayload struct {
	ItemCount int   `json:"item_count"`
	Subtotal  int64 `json:"subtotal"`
}

// --- Event ---

func TestNewEvent_Fields(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-42")
	data := cartPayload{ItemCount: 2, Subtotal: 9000}

	event, err := NewEvent(ctx, "cart.updated", "session", "sess-1", "storefront", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "cart.updated", event.EventType)
	assert.Equal(t, "sess-1", event.AggregateID)
	assert.Equal(t, "session", event.AggregateType)
	assert.Equal(t, "storefront", event.Source)
	assert.Equal(t, "corr-42", event.CorrelationID)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got cartPayload
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, data, got)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent(context.Background(), "cart.updated", "session", "s", "storefront", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cart.updated")
}

func TestEvent_MarshalUnmarshal(t *testing.T) {
	original, err := NewEvent(context.Background(), "wishlist.updated", "session", "s-9", "storefront", map[string]int{"count": 3})
	require.NoError(t, err)
	original.WithMetadata("product_id", "3")

	raw, err := original.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, "3", restored.Metadata["product_id"])
	assert.Empty(t, restored.CorrelationID)
	assert.JSONEq(t, string(original.Data), string(restored.Data))
}

func TestUnmarshalEvent_InvalidJSON(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{broken`))
	require.Error(t, err)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "storefront.cart.updated", Topic("cart", "updated"))
	assert.Equal(t, "storefront.wishlist.updated", Topic("wishlist", "updated"))
}

// --- Producer ---

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"broker1:9092"})
	assert.Equal(t, []string{"broker1:9092"}, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 5*time.Second, cfg.WriteTimeout)
	assert.False(t, cfg.Async)
}

func TestNewProducer_CloseWithoutBroker(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:19092"}), nil)
	require.NotNil(t, p)
	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestBuildMessage_HeadersAndKey(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(logger.WithCorrelationID(context.Background(), "corr-1"), sc)

	event, err := NewEvent(ctx, "cart.cleared", "session", "sess-7", "storefront", struct{}{})
	require.NoError(t, err)

	msg, err := buildMessage(ctx, Topic("cart", "cleared"), event)
	require.NoError(t, err)

	assert.Equal(t, "storefront.cart.cleared", msg.Topic)
	assert.Equal(t, []byte("sess-7"), msg.Key)

	carrier := NewHeaderCarrier(&msg.Headers)
	assert.Equal(t, "cart.cleared", carrier.Get("event_type"))
	assert.Equal(t, "corr-1", carrier.Get("correlation_id"))
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", carrier.Get("traceparent"))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), "any", &Event{}))
	assert.NoError(t, p.Close())
}

// --- HeaderCarrier ---

func TestHeaderCarrier_SetGetKeys(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("v1")}}
	c := NewHeaderCarrier(&headers)

	assert.Equal(t, "v1", c.Get("existing"))
	assert.Equal(t, "", c.Get("missing"))

	c.Set("existing", "v2")
	c.Set("new", "v3")
	assert.Equal(t, "v2", c.Get("existing"))
	assert.Equal(t, "v3", c.Get("new"))
	assert.ElementsMatch(t, []string{"existing", "new"}, c.Keys())
	assert.Len(t, headers, 2)
}
