package growth

import (
	"math/rand"
)

const (
	minCloudStretches = 1
	maxCloudStretches = 3
	minCloudReduction = 0.3
	maxCloudReduction = 0.6
)

// CloudSchedule assigns a light reduction to every week of a run. A zero entry
// is a clear week. The schedule is drawn once per run so that repeated queries
// for the same week always agree.
type CloudSchedule struct {
	reductions []float64
}

// NewCloudSchedule draws between one and three stretches of one or two cloudy
// weeks. Stretches may overlap; each cloudy week gets its own reduction in
// [0.3, 0.6).
func NewCloudSchedule(weeks int, rng *rand.Rand) CloudSchedule {
	if weeks <= 0 {
		return CloudSchedule{}
	}

	cs := CloudSchedule{reductions: make([]float64, weeks)}

	maxStart := weeks - 2
	if maxStart < 0 {
		maxStart = 0
	}

	stretches := minCloudStretches + rng.Intn(maxCloudStretches-minCloudStretches+1)
	for i := 0; i < stretches; i++ {
		start := rng.Intn(maxStart + 1)
		length := 1 + rng.Intn(2)
		for w := start; w < start+length && w < weeks; w++ {
			if cs.reductions[w] == 0 {
				cs.reductions[w] = minCloudReduction + rng.Float64()*(maxCloudReduction-minCloudReduction)
			}
		}
	}

	return cs
}

// ClearSchedule returns a schedule of the given length with no cloudy weeks.
func ClearSchedule(weeks int) CloudSchedule {
	if weeks <= 0 {
		return CloudSchedule{}
	}
	return CloudSchedule{reductions: make([]float64, weeks)}
}

// ScheduleFromReductions builds a schedule from explicit per-week reductions.
// Values are clamped to [0, 1).
func ScheduleFromReductions(reductions []float64) CloudSchedule {
	cs := CloudSchedule{reductions: make([]float64, len(reductions))}
	for i, r := range reductions {
		cs.reductions[i] = clampFloat(r, 0, 0.99)
	}
	return cs
}

// Weeks returns the number of weeks covered by the schedule.
func (cs CloudSchedule) Weeks() int {
	return len(cs.reductions)
}

// Reduction returns the light reduction for week, or zero for clear and
// out-of-range weeks.
func (cs CloudSchedule) Reduction(week int) float64 {
	if week < 0 || week >= len(cs.reductions) {
		return 0
	}
	return cs.reductions[week]
}

// IsCloudy reports whether week has a non-zero light reduction.
func (cs CloudSchedule) IsCloudy(week int) bool {
	return cs.Reduction(week) > 0
}

// CloudyWeeks returns, in order, the indexes of the cloudy weeks.
func (cs CloudSchedule) CloudyWeeks() []int {
	var weeks []int
	for w, r := range cs.reductions {
		if r > 0 {
			weeks = append(weeks, w)
		}
	}
	return weeks
}
