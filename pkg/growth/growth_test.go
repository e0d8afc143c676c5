package growth

import (
	"math"
	"math/rand"
	"testing"
)

func TestTemperatureFactor(t *testing.T) {
	tests := []struct {
		name     string
		temp     int
		expected float64
	}{
		{name: "optimum", temp: 24, expected: 1.0},
		{name: "lower bound floors", temp: 10, expected: MinTemperatureFactor},
		{name: "below range clamps to floor", temp: -5, expected: MinTemperatureFactor},
		{name: "upper bound floors", temp: 35, expected: MinTemperatureFactor},
		{name: "above range clamps to floor", temp: 50, expected: MinTemperatureFactor},
		{name: "halfway up the ramp", temp: 17, expected: 0.5},
		{name: "cool side", temp: 20, expected: 10.0 / 14.0},
		{name: "warm side", temp: 30, expected: 5.0 / 11.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TemperatureFactor(tt.temp)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("TemperatureFactor(%d) = %.4f, expected %.4f", tt.temp, got, tt.expected)
			}
		})
	}
}

func TestTemperatureFactorMonotonicAwayFromOptimum(t *testing.T) {
	prev := TemperatureFactor(OptimalTemperature)
	for temp := OptimalTemperature - 1; temp >= MinTemperature; temp-- {
		f := TemperatureFactor(temp)
		if f > prev {
			t.Errorf("factor rose moving down to %d°C: %.4f > %.4f", temp, f, prev)
		}
		prev = f
	}

	prev = TemperatureFactor(OptimalTemperature)
	for temp := OptimalTemperature + 1; temp <= MaxTemperature; temp++ {
		f := TemperatureFactor(temp)
		if f > prev {
			t.Errorf("factor rose moving up to %d°C: %.4f > %.4f", temp, f, prev)
		}
		prev = f
	}

	for temp := MinTemperature; temp <= MaxTemperature; temp++ {
		if temp != OptimalTemperature && TemperatureFactor(temp) >= 1 {
			t.Errorf("TemperatureFactor(%d) reached the optimum", temp)
		}
	}
}

func TestLightAndCO2Saturation(t *testing.T) {
	for units := 1; units <= 3; units++ {
		if LightFactor(units, 0) < LightFactor(units-1, 0) {
			t.Errorf("light factor decreased at %d units", units)
		}
		if CO2Factor(units) < CO2Factor(units-1) {
			t.Errorf("CO2 factor decreased at %d fans", units)
		}
	}

	if LightFactor(2, 0) != LightFactor(3, 0) {
		t.Errorf("light factor not saturated: %.2f vs %.2f", LightFactor(2, 0), LightFactor(3, 0))
	}
	if CO2Factor(2) != CO2Factor(3) {
		t.Errorf("CO2 factor not saturated: %.2f vs %.2f", CO2Factor(2), CO2Factor(3))
	}

	if LightFactor(9, 0) != LightFactor(3, 0) || LightFactor(-2, 0) != LightFactor(0, 0) {
		t.Error("out-of-range light counts were not clamped")
	}
	if CO2Factor(9) != CO2Factor(3) || CO2Factor(-1) != CO2Factor(0) {
		t.Error("out-of-range CO2 counts were not clamped")
	}
}

func TestCloudReductionDimsLight(t *testing.T) {
	for lights := 0; lights <= MaxLights; lights++ {
		clear := LightFactor(lights, 0)
		cloudy := LightFactor(lights, 0.4)
		if cloudy >= clear {
			t.Errorf("lights=%d: cloudy factor %.3f not below clear %.3f", lights, cloudy, clear)
		}
		if math.Abs(cloudy-clear*0.6) > 1e-9 {
			t.Errorf("lights=%d: cloudy factor %.3f, expected %.3f", lights, cloudy, clear*0.6)
		}
	}
}

func TestSeasonalMultiplier(t *testing.T) {
	if got := SeasonalMultiplier(0); math.Abs(got-0.95) > 1e-9 {
		t.Errorf("month 0 multiplier = %.4f, expected 0.95", got)
	}

	// Weeks inside the same month share a multiplier.
	for w := 4; w < 8; w++ {
		if SeasonalMultiplier(w) != SeasonalMultiplier(4) {
			t.Errorf("week %d multiplier differs from week 4", w)
		}
	}

	var sum float64
	for w := 0; w < 24; w++ {
		sum += SeasonalMultiplier(w)
	}
	if math.Abs(sum/24-0.95) > 1e-9 {
		t.Errorf("six-month mean multiplier = %.4f, expected 0.95", sum/24)
	}
}

func TestWeeklyGrowthNonNegative(t *testing.T) {
	for temp := 0; temp <= 40; temp += 2 {
		for lights := -1; lights <= 4; lights++ {
			for co2 := -1; co2 <= 4; co2++ {
				for week := 0; week < 24; week++ {
					in := Inputs{Temperature: temp, Lights: lights, CO2: co2}
					for _, r := range []float64{0, 0.3, 0.59} {
						if g := WeeklyGrowth(in, 1.0, week, r); g < 0 {
							t.Fatalf("WeeklyGrowth(%+v, week %d, cloud %.2f) = %.4f", in, week, r, g)
						}
					}
				}
			}
		}
	}
}

func TestWeeklyGrowthProduct(t *testing.T) {
	in := Inputs{Temperature: 24, Lights: 2, CO2: 2}
	got := WeeklyGrowth(in, 1.1, 5, 0)
	expected := SeasonalMultiplier(5) * 1.0 * 1.6 * 1.25 * 1.1
	if math.Abs(got-expected) > 1e-9 {
		t.Errorf("WeeklyGrowth = %.6f, expected %.6f", got, expected)
	}

	// Soil outside its domain is clamped.
	if WeeklyGrowth(in, 5, 5, 0) != WeeklyGrowth(in, MaxSoil, 5, 0) {
		t.Error("soil factor was not clamped")
	}
}

func TestAccumulate(t *testing.T) {
	tests := []struct {
		name   string
		weekly []float64
		want   float64
	}{
		{name: "nil", weekly: nil, want: 0},
		{name: "empty", weekly: []float64{}, want: 0},
		{name: "single week", weekly: []float64{0.75}, want: 0.75},
		{name: "several weeks", weekly: []float64{0.5, 1.25, 0.25}, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accumulate(tt.weekly); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Accumulate = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestAccumulateSplitMatchesWhole(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	schedule := NewCloudSchedule(24, rng)
	in := Inputs{Temperature: 21, Lights: 1, CO2: 2}

	whole := Accumulate(Integrate(in, 0.97, 0, 24, schedule))
	for k := 0; k <= 24; k++ {
		split := Accumulate(Integrate(in, 0.97, 0, k, schedule)) + Accumulate(Integrate(in, 0.97, k, 24, schedule))
		if math.Abs(split-whole) > 1e-9 {
			t.Errorf("split at %d: %.6f, expected %.6f", k, split, whole)
		}
	}
}

func TestProjectDoesNotMutate(t *testing.T) {
	schedule := ClearSchedule(24)
	in := Inputs{Temperature: 24, Lights: 2, CO2: 2}
	acc := Accumulate(Integrate(in, 1, 0, 10, schedule))

	projected := Project(acc, in, 1, 10, 24, schedule)
	whole := Accumulate(Integrate(in, 1, 0, 24, schedule))
	if math.Abs(projected-whole) > 1e-9 {
		t.Errorf("projection %.4f, expected %.4f", projected, whole)
	}
	if Project(acc, in, 1, 24, 24, schedule) != acc {
		t.Error("projection past the last week changed the accumulator")
	}
}

func TestMassBounds(t *testing.T) {
	tests := []struct {
		name  string
		acc   float64
		noise float64
		want  int
	}{
		{name: "zero growth", acc: 0, noise: 1.0, want: MinMass},
		{name: "negative growth", acc: -4, noise: 1.0, want: MinMass},
		{name: "huge growth", acc: 500, noise: 1.1, want: MaxMass},
		{name: "unit growth", acc: 1, noise: 1.0, want: 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mass(tt.acc, tt.noise); got != tt.want {
				t.Errorf("Mass(%.2f, %.2f) = %d, expected %d", tt.acc, tt.noise, got, tt.want)
			}
		})
	}

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		acc := rng.Float64() * 200
		m := Mass(acc, DrawNoise(rng))
		if m < MinMass || m > MaxMass {
			t.Fatalf("Mass(%.2f) = %d out of range", acc, m)
		}
	}
}

func TestDrawNoiseRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		n := DrawNoise(rng)
		if n < 0.9 || n >= 1.1 {
			t.Fatalf("noise %.4f outside [0.9, 1.1)", n)
		}
	}
}

func TestOptimalScenario(t *testing.T) {
	in := Inputs{Temperature: 24, Lights: 2, CO2: 2}
	acc := Accumulate(Integrate(in, 1.0, 0, 24, ClearSchedule(24)))

	// Seasonal swing averages to 0.95 over six full months.
	expected := 24 * 0.95 * 1.0 * 1.6 * 1.25 * 1.0
	if math.Abs(acc-expected) > 1e-9 {
		t.Fatalf("accumulator = %.4f, expected %.4f", acc, expected)
	}

	low := Mass(acc, 0.9)
	high := Mass(acc, 1.1)
	if low < 1500 || high > MaxMass {
		t.Errorf("noise band [%d, %d] not near the top of the range", low, high)
	}

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		m := Mass(acc, DrawNoise(rng))
		if m < low || m > high {
			t.Errorf("mass %d outside noise band [%d, %d]", m, low, high)
		}
	}
}

func TestStarvedScenario(t *testing.T) {
	in := Inputs{Temperature: 10, Lights: 0, CO2: 0}
	if TemperatureFactor(in.Temperature) != MinTemperatureFactor {
		t.Errorf("temperature factor = %.3f, expected floor", TemperatureFactor(in.Temperature))
	}
	if LightFactor(in.Lights, 0) != 1.0 {
		t.Errorf("light factor = %.3f, expected 1.0", LightFactor(in.Lights, 0))
	}

	acc := Accumulate(Integrate(in, 1.0, 0, 24, ClearSchedule(24)))
	for _, noise := range []float64{0.9, 1.0, 1.0999} {
		if m := Mass(acc, noise); m < MinMass || m > 160 {
			t.Errorf("mass %d with noise %.2f not near the floor", m, noise)
		}
	}
}

func TestInputsClamped(t *testing.T) {
	got := Inputs{Temperature: 40, Lights: 7, CO2: -3}.Clamped()
	want := Inputs{Temperature: MaxTemperature, Lights: MaxLights, CO2: 0}
	if got != want {
		t.Errorf("Clamped() = %+v, expected %+v", got, want)
	}
}

func TestVisualScaleAndFormat(t *testing.T) {
	if VisualScale(MinMass) != 0.5 || VisualScale(MaxMass) != 1.5 {
		t.Errorf("visual scale endpoints = %.2f, %.2f", VisualScale(MinMass), VisualScale(MaxMass))
	}
	if got := FormatMass(1868); got != "1,868 g" {
		t.Errorf("FormatMass(1868) = %q", got)
	}
	if got := FormatMass(120); got != "120 g" {
		t.Errorf("FormatMass(120) = %q", got)
	}
}
