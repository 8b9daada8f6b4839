package spindle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimings_Add(t *testing.T) {
	var timings Timings

	timings = timings.Add(10 * time.Millisecond)
	require.Equal(t, 1, timings.Count)
	require.Equal(t, 10*time.Millisecond, timings.MovingAverage)

	timings = timings.Add(30 * time.Millisecond)
	require.Equal(t, 2, timings.Count)
	require.Equal(t, 10*time.Millisecond, timings.Min)
	require.Equal(t, 30*time.Millisecond, timings.Max)
	require.Equal(t, 30*time.Millisecond, timings.Latest)
	require.Equal(t, 11*time.Millisecond, timings.MovingAverage)
}

func TestTimingStats_SystemOrder(t *testing.T) {
	var stats TimingStats

	stats.AddSystem(StageUpdate, "b", time.Millisecond)
	stats.AddSystem(StageUpdate, "a", time.Millisecond)
	stats.AddSystem(StageUpdate, "b", time.Millisecond)
	stats.AddStage(StageUpdate, 2*time.Millisecond)

	require.Equal(t, []SystemKey{
		{Stage: StageUpdate, Name: "b"},
		{Stage: StageUpdate, Name: "a"},
	}, stats.SystemOrder)

	require.Equal(t, 2, stats.BySystem[SystemKey{Stage: StageUpdate, Name: "b"}].Count)
	require.Equal(t, 1, stats.ByStage[StageUpdate].Count)
}
