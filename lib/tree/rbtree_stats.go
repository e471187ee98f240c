package tree

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	OrderedMapStatsName = "xrank/omap"
)

// The nil stats is the disabled stats.
type omapStats struct {
	size          metric.Int64UpDownCounter
	insertCount   metric.Int64Counter
	rejectedCount metric.Int64Counter
	popCount      metric.Int64Counter
	missedCount   metric.Int64Counter
	rotateCount   metric.Int64Counter
}

func (stats *omapStats) RecordSize(delta int64) {
	if stats == nil || delta == 0 {
		return
	}
	stats.size.Add(context.Background(), delta)
}

func (stats *omapStats) IncreaseInsertCount() {
	if stats == nil {
		return
	}
	stats.insertCount.Add(context.Background(), 1)
	stats.size.Add(context.Background(), 1)
}

func (stats *omapStats) IncreaseInsertRejectedCount() {
	if stats == nil {
		return
	}
	stats.rejectedCount.Add(context.Background(), 1)
}

func (stats *omapStats) IncreasePopCount() {
	if stats == nil {
		return
	}
	stats.popCount.Add(context.Background(), 1)
	stats.size.Add(context.Background(), -1)
}

func (stats *omapStats) IncreasePopMissedCount() {
	if stats == nil {
		return
	}
	stats.missedCount.Add(context.Background(), 1)
}

func (stats *omapStats) IncreaseRotateCount() {
	if stats == nil {
		return
	}
	stats.rotateCount.Add(context.Background(), 1)
}

func newOmapStats(name string) *omapStats {
	meterName := fmt.Sprintf("%s/%s", OrderedMapStatsName, name)
	meter := otel.Meter(meterName)
	return &omapStats{
		size: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"omap.size",
			metric.WithDescription("The number of keys in the ordered map."),
		)),
		insertCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"omap.insert.count",
			metric.WithDescription("The number of keys inserted."),
		)),
		rejectedCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"omap.insert.rejected",
			metric.WithDescription("The number of inserts rejected by duplicate keys."),
		)),
		popCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"omap.pop.count",
			metric.WithDescription("The number of keys popped."),
		)),
		missedCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"omap.pop.missed",
			metric.WithDescription("The number of pops on absent keys."),
		)),
		rotateCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"omap.rotate.count",
			metric.WithDescription("The number of rotations by rebalancing."),
		)),
	}
}
