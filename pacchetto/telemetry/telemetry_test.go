package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func TestFormatErrorAttr(t *testing.T) {
	plain := slog.String("order-id", "42")
	assert.True(t, plain.Equal(formatErrorAttr(plain)))

	grouped := formatErrorAttr(slog.Any("err", errors.New("boom")))
	require.Equal(t, slog.KindGroup, grouped.Value.Kind())
	assert.Equal(t, "err", grouped.Key)

	fields := map[string]string{}
	for _, a := range grouped.Value.Group() {
		fields[a.Key] = a.Value.String()
	}
	assert.Equal(t, map[string]string{"message": "boom", "type": "*errors.errorString"}, fields)
}

func TestErrorFormattingMiddleware(t *testing.T) {
	record := slog.NewRecord(time.Now(), slog.LevelError, "failed", 0)
	record.AddAttrs(slog.Any("err", errors.New("boom")), slog.Int("attempt", 1))

	var got slog.Record
	err := errorFormattingMiddleware(context.Background(), record, func(_ context.Context, r slog.Record) error {
		got = r
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "failed", got.Message)
	kinds := map[string]slog.Kind{}
	got.Attrs(func(a slog.Attr) bool {
		kinds[a.Key] = a.Value.Kind()
		return true
	})
	assert.Equal(t, map[string]slog.Kind{"err": slog.KindGroup, "attempt": slog.KindInt64}, kinds)
}

func TestNatsMsgCarriesTraceContext(t *testing.T) {
	previous := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(newPropagator())
	t.Cleanup(func() { otel.SetTextMapPropagator(previous) })

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	msg := &nats.Msg{Subject: "orders.placed"}
	InjectContextToNatsMsg(ctx, msg)

	assert.NotEmpty(t, msg.Header.Get("Traceparent"))
	extracted := trace.SpanContextFromContext(GetContextFromNatsMsg(context.Background(), msg))
	assert.Equal(t, traceID, extracted.TraceID())
	assert.Equal(t, spanID, extracted.SpanID())
}
