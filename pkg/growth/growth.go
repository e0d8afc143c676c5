// Package growth implements the weekly plant growth model: per-week growth from
// temperature, supplemental light, CO2 enrichment, soil quality and season, and
// the transform from accumulated growth to a harvested fruit mass.
package growth

import (
	"math"
)

const (
	// WeeksPerMonth is the number of simulated weeks in a simulated month.
	WeeksPerMonth = 4

	MinTemperature     = 10
	MaxTemperature     = 35
	OptimalTemperature = 24

	// MinTemperatureFactor is the floor applied to the temperature response.
	MinTemperatureFactor = 0.05

	MaxLights = 3
	MaxCO2    = 3

	MinSoil = 0.85
	MaxSoil = 1.15
)

// Light and CO2 responses saturate at two units.
var (
	lightTable = [MaxLights + 1]float64{1.0, 1.3, 1.6, 1.6}
	co2Table   = [MaxCO2 + 1]float64{1.0, 1.15, 1.25, 1.25}
)

// Inputs holds the live greenhouse controls that feed a week of growth.
type Inputs struct {
	Temperature int `json:"temperature"`
	Lights      int `json:"lights"`
	CO2         int `json:"co2"`
}

// Clamped returns a copy of the inputs forced into their valid ranges.
func (in Inputs) Clamped() Inputs {
	return Inputs{
		Temperature: clampInt(in.Temperature, MinTemperature, MaxTemperature),
		Lights:      clampInt(in.Lights, 0, MaxLights),
		CO2:         clampInt(in.CO2, 0, MaxCO2),
	}
}

// TotalWeeks returns the number of simulated weeks in a run of the given length.
func TotalWeeks(months int) int {
	if months < 1 {
		months = 1
	}
	return months * WeeksPerMonth
}

// MonthOf returns the zero-based simulated month that contains week.
func MonthOf(week int) int {
	if week < 0 {
		return 0
	}
	return week / WeeksPerMonth
}

// SeasonalMultiplier is a gentle six-month seasonal swing around 0.95.
func SeasonalMultiplier(week int) float64 {
	month := float64(MonthOf(week))
	return 0.95 + 0.05*math.Sin(2*math.Pi*month/6)
}

// TemperatureFactor is a triangular response peaking at 24°C. It ramps linearly
// from 10°C up to 24°C and back down to 35°C and never drops below 0.05.
func TemperatureFactor(temp int) float64 {
	t := float64(clampInt(temp, MinTemperature, MaxTemperature))

	var f float64
	if t <= OptimalTemperature {
		f = (t - MinTemperature) / (OptimalTemperature - MinTemperature)
	} else {
		f = (MaxTemperature - t) / (MaxTemperature - OptimalTemperature)
	}

	return clampFloat(f, MinTemperatureFactor, 1)
}

// LightFactor returns the supplemental light multiplier, dimmed by the cloud
// reduction of a cloudy week.
func LightFactor(lights int, cloudReduction float64) float64 {
	f := lightTable[clampInt(lights, 0, MaxLights)]
	if cloudReduction > 0 {
		f *= 1 - clampFloat(cloudReduction, 0, 1)
	}
	return f
}

// CO2Factor returns the CO2 enrichment multiplier for the given fan count.
func CO2Factor(fans int) float64 {
	return co2Table[clampInt(fans, 0, MaxCO2)]
}

// ClampSoil forces a soil factor into [MinSoil, MaxSoil].
func ClampSoil(soil float64) float64 {
	return clampFloat(soil, MinSoil, MaxSoil)
}

// WeeklyGrowth returns the growth contributed by a single week. The result is
// never negative; out-of-range inputs are clamped rather than rejected.
func WeeklyGrowth(in Inputs, soil float64, week int, cloudReduction float64) float64 {
	g := SeasonalMultiplier(week) *
		TemperatureFactor(in.Temperature) *
		LightFactor(in.Lights, cloudReduction) *
		CO2Factor(in.CO2) *
		ClampSoil(soil)

	return math.Max(0, g)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
