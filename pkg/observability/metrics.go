package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal    = "papacore.build.files.total"
	metricFailuresTotal = "papacore.build.failures.total"
	metricFileDuration  = "papacore.build.file.duration.seconds"
	metricOutputBytes   = "papacore.build.output.bytes"

	attrKind   = "kind"
	attrStatus = "status"

	// StatusOK marks a file that transformed cleanly.
	StatusOK = "ok"
	// StatusError marks a file that failed to transform.
	StatusError = "error"
)

// fileDurationBuckets covers 100µs to 5s; single-file transforms are fast
// and only pathological inputs reach the upper buckets.
var fileDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5}

// BuildMetrics holds the OTel instruments recorded by the build orchestrator.
type BuildMetrics struct {
	filesTotal    metric.Int64Counter
	failuresTotal metric.Int64Counter
	fileDuration  metric.Float64Histogram
	outputBytes   metric.Int64Counter
}

// NewBuildMetrics creates build instruments from the given meter.
func NewBuildMetrics(mt metric.Meter) (*BuildMetrics, error) {
	files, err := mt.Int64Counter(metricFilesTotal,
		metric.WithDescription("Source files processed"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFilesTotal, err)
	}

	failures, err := mt.Int64Counter(metricFailuresTotal,
		metric.WithDescription("Source files that failed to transform"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFailuresTotal, err)
	}

	duration, err := mt.Float64Histogram(metricFileDuration,
		metric.WithDescription("Per-file transform duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(fileDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFileDuration, err)
	}

	output, err := mt.Int64Counter(metricOutputBytes,
		metric.WithDescription("Bytes written to the output directory"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricOutputBytes, err)
	}

	return &BuildMetrics{
		filesTotal:    files,
		failuresTotal: failures,
		fileDuration:  duration,
		outputBytes:   output,
	}, nil
}

// RecordFile records one processed file. kind is "module" or "story".
func (bm *BuildMetrics) RecordFile(ctx context.Context, kind, status string, duration time.Duration, written int) {
	attrs := metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrStatus, status),
	)

	bm.filesTotal.Add(ctx, 1, attrs)
	bm.fileDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		bm.failuresTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, kind)))

		return
	}

	if written > 0 {
		bm.outputBytes.Add(ctx, int64(written))
	}
}
