package spindle

import (
	"time"
)

type Timings struct {
	Count         int
	Latest        time.Duration
	MovingAverage time.Duration
	Min, Max      time.Duration
}

func (t Timings) Add(d time.Duration) Timings {
	t.Latest = d

	if t.Count == 0 {
		t.Min = d
		t.Max = d
		t.MovingAverage = d
	} else {
		t.Min = min(t.Min, d)
		t.Max = max(t.Max, d)
		t.MovingAverage = (95*t.MovingAverage + 5*d) / 100
	}

	t.Count += 1

	return t
}

// SystemKey identifies a system within TimingStats.
type SystemKey struct {
	Stage Stage
	Name  string
}

// TimingStats collects run times of stages and systems. While a TimingStats
// resource exists in a World, the World measures every system it runs.
type TimingStats struct {
	ByStage map[Stage]Timings

	BySystem    map[SystemKey]Timings
	SystemOrder []SystemKey
}

func NewTimingStats() TimingStats {
	return TimingStats{
		ByStage:  map[Stage]Timings{},
		BySystem: map[SystemKey]Timings{},
	}
}

func (t *TimingStats) AddStage(stage Stage, d time.Duration) {
	if t.ByStage == nil {
		t.ByStage = map[Stage]Timings{}
	}

	t.ByStage[stage] = t.ByStage[stage].Add(d)
}

func (t *TimingStats) AddSystem(stage Stage, name string, d time.Duration) {
	if t.BySystem == nil {
		t.BySystem = map[SystemKey]Timings{}
	}

	key := SystemKey{Stage: stage, Name: name}
	if _, ok := t.BySystem[key]; !ok {
		t.SystemOrder = append(t.SystemOrder, key)
	}

	t.BySystem[key] = t.BySystem[key].Add(d)
}
