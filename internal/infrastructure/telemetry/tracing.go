package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of the sync and lookup spans
const TracerName = "github.com/wms/backend"

// Span attribute keys
const (
	AttrItemID     = attribute.Key("wms.item_id")
	AttrBatch      = attribute.Key("wms.batch")
	AttrBatchSize  = attribute.Key("wms.batch_size")
	AttrLiveOrders = attribute.Key("wms.live_orders")
	AttrNewOrders  = attribute.Key("wms.new_orders")
	AttrPruned     = attribute.Key("wms.pruned")
)

// StartServiceSpan starts an internal span named "{service}.{operation}" on the
// global tracer provider, so it is a no-op until a provider is installed.
func StartServiceSpan(ctx context.Context, service, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError records err on span and marks the span failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
