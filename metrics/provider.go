package metrics

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// Exporter names accepted by NewProvider
const (
	ExporterNone   = "none"
	ExporterLog    = "log"
	ExporterStdout = "stdout"
)

// Provider owns the SDK MeterProvider behind an OTel sink. Shutdown flushes
// whatever was recorded, so a one-shot run reports its final counts.
type Provider struct {
	mp       *sdkmetric.MeterProvider
	manual   *sdkmetric.ManualReader
	logger   zerolog.Logger
	exporter string
}

// ProviderOption configures a Provider
type ProviderOption func(*providerOptions)

type providerOptions struct {
	writer io.Writer
}

// WithWriter sets where the stdout exporter writes. Defaults to os.Stdout.
func WithWriter(w io.Writer) ProviderOption {
	return func(o *providerOptions) {
		o.writer = w
	}
}

// NewProvider builds a MeterProvider for the named exporter:
//   - "log" collects on Shutdown and logs one line per queue
//   - "stdout" exports OTel JSON on Shutdown
//   - "none" records into an SDK with no reader
func NewProvider(exporter string, logger zerolog.Logger, opts ...ProviderOption) (*Provider, error) {
	o := providerOptions{writer: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Provider{logger: logger, exporter: exporter}

	switch exporter {
	case ExporterNone:
		p.mp = sdkmetric.NewMeterProvider()
	case ExporterLog:
		p.manual = sdkmetric.NewManualReader()
		p.mp = sdkmetric.NewMeterProvider(sdkmetric.WithReader(p.manual))
	case ExporterStdout:
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(o.writer))
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		p.mp = sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
	default:
		return nil, fmt.Errorf("unknown metrics exporter %q", exporter)
	}

	return p, nil
}

// Sink returns a gorkrepair.Metrics recording into this provider
func (p *Provider) Sink() *OTel {
	return NewOTelWithMeter(p.mp.Meter(meterName))
}

// Shutdown flushes recorded metrics and releases the provider
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.manual != nil {
		var rm metricdata.ResourceMetrics
		if err := p.manual.Collect(ctx, &rm); err != nil {
			p.logger.Warn().Err(err).Msg("Failed to collect repair metrics")
		} else {
			p.logRepushes(rm)
		}
	}
	return p.mp.Shutdown(ctx)
}

func (p *Provider) logRepushes(rm metricdata.ResourceMetrics) {
	counts := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != RepushCounterName {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				queue, _ := dp.Attributes.Value("queue")
				counts[queue.AsString()] += dp.Value
			}
		}
	}

	queues := make([]string, 0, len(counts))
	for q := range counts {
		queues = append(queues, q)
	}
	sort.Strings(queues)

	for _, q := range queues {
		p.logger.Info().
			Str("metric", RepushCounterName).
			Str("queue", q).
			Int64("value", counts[q]).
			Msg("Repair metric")
	}
}
