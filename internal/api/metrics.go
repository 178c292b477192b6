package api

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"jumpbot/internal/logger"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jumpbot_api_queries_total",
		Help: "Routing queries served over HTTP by kind and outcome",
	}, []string{"kind", "outcome"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jumpbot_api_query_duration_seconds",
		Help:    "Time spent answering routing queries",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	}, []string{"kind"})
)

var tracer = otel.Tracer("jumpbot/api")

// observe runs one query inside a span, then counts, times and records it.
// fn returns the result to encode and its one-word outcome.
func (s *Server) observe(ctx context.Context, kind string, input interface{}, fn func(context.Context) (interface{}, string)) interface{} {
	ctx, span := tracer.Start(ctx, "api."+kind, trace.WithAttributes(attribute.String("jumpbot.kind", kind)))
	defer span.End()

	start := time.Now()
	result, outcome := fn(ctx)
	took := time.Since(start)

	span.SetAttributes(attribute.String("jumpbot.outcome", outcome))
	queriesTotal.WithLabelValues(kind, outcome).Inc()
	queryDuration.WithLabelValues(kind).Observe(took.Seconds())
	logger.Debug("API", fmt.Sprintf("%s -> %s in %v", kind, outcome, took))

	if s.historyEnabled() {
		if _, err := s.db.InsertQuery(kind, input, outcome, took); err != nil {
			logger.Warn("API", fmt.Sprintf("record %s query: %v", kind, err))
		}
	}
	return result
}
