package growth

import (
	"math"
	"math/rand"

	"github.com/dustin/go-humanize"
	"gonum.org/v1/gonum/floats"
)

const (
	MinMass = 120
	MaxMass = 2200

	massBase     = 120
	massScale    = 30
	massExponent = 1.05

	minNoise = 0.9
	maxNoise = 1.1

	minVisualScale = 0.5
	maxVisualScale = 1.5
)

// Accumulate sums a series of weekly growth contributions.
func Accumulate(weekly []float64) float64 {
	return floats.Sum(weekly)
}

// Integrate returns the weekly contributions for weeks [from, to) with fixed
// inputs against the given cloud schedule.
func Integrate(in Inputs, soil float64, from, to int, schedule CloudSchedule) []float64 {
	if from < 0 {
		from = 0
	}
	if to <= from {
		return nil
	}

	weekly := make([]float64, 0, to-from)
	for w := from; w < to; w++ {
		weekly = append(weekly, WeeklyGrowth(in, soil, w, schedule.Reduction(w)))
	}
	return weekly
}

// Project returns acc plus the growth that weeks [from, total) would add if the
// current inputs held for the rest of the run. It does not change acc.
func Project(acc float64, in Inputs, soil float64, from, total int, schedule CloudSchedule) float64 {
	return acc + Accumulate(Integrate(in, soil, from, total, schedule))
}

// DrawNoise returns a finalization noise factor in [0.9, 1.1).
func DrawNoise(rng *rand.Rand) float64 {
	return minNoise + rng.Float64()*(maxNoise-minNoise)
}

// Mass converts accumulated growth into a fruit mass in grams, clamped to
// [MinMass, MaxMass].
func Mass(acc, noise float64) int {
	if acc < 0 {
		acc = 0
	}
	m := math.Round(massBase + massScale*math.Pow(acc, massExponent)*noise)
	return int(clampFloat(m, MinMass, MaxMass))
}

// VisualScale maps a mass onto the fruit drawing scale.
func VisualScale(mass int) float64 {
	frac := float64(mass-MinMass) / float64(MaxMass-MinMass)
	frac = clampFloat(frac, 0, 1)
	return minVisualScale + frac*(maxVisualScale-minVisualScale)
}

// FormatMass renders a mass for display, e.g. "1,868 g".
func FormatMass(mass int) string {
	return humanize.Comma(int64(mass)) + " g"
}
