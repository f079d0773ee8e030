package kwire

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pior/kwire/api"
)

const tracerName = "github.com/pior/kwire"

func newTracer(provider trace.TracerProvider) trace.Tracer {
	if provider == nil {
		return otel.Tracer(tracerName)
	}
	return provider.Tracer(tracerName)
}

// startSpan opens a client span named after the api, e.g. "kafka.Metadata".
func (c *Client) startSpan(ctx context.Context, addr string, req api.Request) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "kafka."+req.Key().String(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("server.address", addr),
			attribute.Int("kafka.api_key", int(req.Key())),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var verr *VersionError
		if errors.As(err, &verr) {
			span.SetAttributes(attribute.String("kafka.client_versions", verr.Client.String()))
		}
	}
	span.End()
}
