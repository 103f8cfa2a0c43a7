package llm

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/sprout-backend/internal/observability"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

type traced struct {
	next    Generator
	tracer  trace.Tracer
	log     *logger.Logger
	metrics *observability.Metrics
}

// Traced wraps g so every call gets a span, a log line and, when m is non-nil,
// request/latency metrics.
func Traced(g Generator, log *logger.Logger, m *observability.Metrics) Generator {
	return &traced{
		next:    g,
		tracer:  otel.Tracer("sprout/llm"),
		log:     log.With("component", "llm", "provider", g.Provider()),
		metrics: m,
	}
}

func (t *traced) Provider() string { return t.next.Provider() }

func (t *traced) Generate(ctx context.Context, req Request) (string, error) {
	ctx, span := t.tracer.Start(ctx, "llm.generate", trace.WithAttributes(
		attribute.String("llm.provider", t.next.Provider()),
		attribute.String("llm.kind", req.Kind),
		attribute.Int("llm.images", len(req.Images)),
		attribute.Bool("llm.json", req.JSON),
	))
	defer span.End()

	start := time.Now()
	out, err := t.next.Generate(ctx, req)
	t.metrics.ObserveLLM(t.next.Provider(), req.Kind, status(err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.log.Warn("generation failed", "kind", req.Kind, "error", err)
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.response_chars", len(out)))
	t.log.Debug("generation complete", "kind", req.Kind, "response_chars", len(out))
	return out, nil
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUpstreamAuth):
		return "auth_error"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
