package cleanup

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for clean up runs.
var (
	tracer = otel.Tracer("gocleanup.cleanup")
	meter  = otel.Meter("gocleanup.cleanup")
)

// Metrics for clean up runs.
var (
	passTotal     metric.Int64Counter
	deferralTotal metric.Int64Counter
	batchTotal    metric.Int64Counter
	batchDocs     metric.Int64Histogram
	fixTotal      metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		passTotal, err = meter.Int64Counter(
			"cleanup_passes_total",
			metric.WithDescription("Total number of fixpoint passes"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		deferralTotal, err = meter.Int64Counter(
			"cleanup_deferrals_total",
			metric.WithDescription("Rules deferred to a later pass because their edits conflicted"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		batchTotal, err = meter.Int64Counter(
			"cleanup_parse_batches_total",
			metric.WithDescription("Total number of parse batches"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		batchDocs, err = meter.Int64Histogram(
			"cleanup_parse_batch_documents",
			metric.WithDescription("Documents per parse batch"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		fixTotal, err = meter.Int64Counter(
			"cleanup_fixes_merged_total",
			metric.WithDescription("Fixes merged into a document solution"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordPass(ctx context.Context, project string) {
	if err := initMetrics(); err != nil {
		return
	}
	passTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("project", project)))
}

func recordDeferral(ctx context.Context, ruleID string) {
	if err := initMetrics(); err != nil {
		return
	}
	deferralTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", ruleID)))
}

func recordBatch(ctx context.Context, size int) {
	if err := initMetrics(); err != nil {
		return
	}
	batchTotal.Add(ctx, 1)
	batchDocs.Record(ctx, int64(size))
}

func recordFix(ctx context.Context, ruleID string) {
	if err := initMetrics(); err != nil {
		return
	}
	fixTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("rule", ruleID)))
}

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
