package tree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestOrderedMapStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	defer func() {
		_ = mp.Shutdown(context.Background())
	}()

	tree := NewOrderedMap[int, int](WithOrderedMapStats[int, int]("test"))
	for i := 0; i < 16; i++ {
		require.True(t, tree.Insert(i, i))
	}
	require.False(t, tree.Insert(3, 3))
	require.True(t, tree.Pop(3))
	require.False(t, tree.Pop(3))

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))

	values := make(map[string]int64, 8)
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != OrderedMapStatsName+"/test" {
			continue
		}
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				values[m.Name] += dp.Value
			}
		}
	}
	require.Equal(t, int64(16), values["omap.insert.count"])
	require.Equal(t, int64(1), values["omap.insert.rejected"])
	require.Equal(t, int64(1), values["omap.pop.count"])
	require.Equal(t, int64(1), values["omap.pop.missed"])
	require.Equal(t, int64(15), values["omap.size"])
	require.Greater(t, values["omap.rotate.count"], int64(0))

	tree.Clear()
	rm = metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sm.Scope.Name == OrderedMapStatsName+"/test" && m.Name == "omap.size" {
				require.Equal(t, int64(0), m.Data.(metricdata.Sum[int64]).DataPoints[0].Value)
			}
		}
	}
}

func collectOmapStats(t *testing.T, reader sdkmetric.Reader, name string) map[string]int64 {
	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))

	values := make(map[string]int64, 8)
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != OrderedMapStatsName+"/"+name {
			continue
		}
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				values[m.Name] += dp.Value
			}
		}
	}
	return values
}

func TestOrderedMapStats_Clone(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	defer func() {
		_ = mp.Shutdown(context.Background())
	}()

	tree := NewOrderedMap[int, int](WithOrderedMapStats[int, int]("clone"))
	for i := 0; i < 8; i++ {
		require.True(t, tree.Insert(i, i))
	}
	dup := tree.Clone()
	require.True(t, dup.Insert(100, 100))
	require.True(t, dup.Pop(0))
	require.False(t, dup.Pop(0))

	values := collectOmapStats(t, reader, "clone")
	require.Equal(t, int64(9), values["omap.insert.count"])
	require.Equal(t, int64(1), values["omap.pop.count"])
	require.Equal(t, int64(1), values["omap.pop.missed"])
	require.Equal(t, int64(8+8), values["omap.size"])

	dup.Clear()
	require.Equal(t, int64(8), collectOmapStats(t, reader, "clone")["omap.size"])

	plain := NewOrderedMap[int, int]()
	require.True(t, plain.Insert(1, 1))
	require.Equal(t, int64(1), plain.Clone().Len())
}

func TestOrderedMapStats_Disabled(t *testing.T) {
	var stats *omapStats
	stats.IncreaseInsertCount()
	stats.IncreaseInsertRejectedCount()
	stats.IncreasePopCount()
	stats.IncreasePopMissedCount()
	stats.IncreaseRotateCount()
	stats.RecordSize(10)
}
