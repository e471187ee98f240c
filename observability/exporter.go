package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xrank/lib/infra"
)

type ShutdownCallback func(ctx context.Context) error

// NewConsoleMetricsExporter installs a global meter provider that
// writes the metrics as JSON to w (stderr if nil) every interval.
// The returned callback flushes the last collection and shuts the
// provider down.
func NewConsoleMetricsExporter(w io.Writer, interval, timeout time.Duration, opts ...stdoutmetric.Option) (ShutdownCallback, error) {
	if w == nil {
		w = os.Stderr
	}
	opts = append([]stdoutmetric.Option{stdoutmetric.WithWriter(w)}, opts...)
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "create stdout metrics exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return func(ctx context.Context) error {
		return infra.WrapErrorStack(mp.Shutdown(ctx))
	}, nil
}
