package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/taldoflemis/forno/pacchetto/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OrderPublisher announces orders that were already persisted.
type OrderPublisher interface {
	PubOrderPlaced(ctx context.Context, event OrderPlacedEvent) error
}

type NATSOrderPublisher struct {
	nc      *nats.Conn
	subject string
}

var _ OrderPublisher = (*NATSOrderPublisher)(nil)

func NewNATSOrderPublisher(nc *nats.Conn, subject string) *NATSOrderPublisher {
	return &NATSOrderPublisher{
		nc:      nc,
		subject: subject,
	}
}

// PubOrderPlaced implements OrderPublisher.
func (n *NATSOrderPublisher) PubOrderPlaced(ctx context.Context, event OrderPlacedEvent) error {
	ctx, span := tracer.Start(ctx, "NATSOrderPublisher.PubOrderPlaced", trace.WithAttributes(
		attribute.String("forno.orderid", event.OrderID),
		attribute.String("messaging.destination", n.subject),
	))
	defer span.End()

	msg := &nats.Msg{
		Subject: n.subject,
		Header:  nats.Header{},
	}
	telemetry.InjectContextToNatsMsg(ctx, msg)

	data, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal order placed event", slog.Any("err", err))
		span.SetStatus(codes.Error, "failed to marshal order")
		span.RecordError(err)
		return err
	}
	msg.Data = data

	if err := n.nc.PublishMsg(msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish order placed event", slog.String("subject", n.subject), slog.Any("err", err))
		span.SetStatus(codes.Error, "failed to publish order")
		span.RecordError(err)
		return err
	}

	slog.InfoContext(ctx, "published order placed event", slog.String("order-id", event.OrderID))
	return nil
}

// NoopOrderPublisher is used when NATS is disabled.
type NoopOrderPublisher struct{}

var _ OrderPublisher = NoopOrderPublisher{}

func (NoopOrderPublisher) PubOrderPlaced(context.Context, OrderPlacedEvent) error {
	return nil
}
