// Package animation derives the plant drawing parameters from run progress.
// Everything here is a pure function of progress; the only growth input is the
// fruit size target supplied by the caller.
package animation

import "math"

const (
	// MinStem is the stem height fraction of a plant at rest.
	MinStem = 0.12

	LeafCount      = 6
	firstLeafAt    = 0.05
	leafSpacing    = 0.08
	fadeSpan       = 0.08
	minLeafScale   = 0.4
	FruitCount     = 3
	firstFruitAt   = 0.55
	fruitSpacing   = 0.07
	fruitRampStart = 0.55
)

// Pose describes how the renderer should draw one plant.
type Pose struct {
	StemHeight   float64   `json:"stem_height"`
	LeafOpacity  []float64 `json:"leaf_opacity"`
	LeafScale    []float64 `json:"leaf_scale"`
	FruitOpacity []float64 `json:"fruit_opacity"`
	FruitScale   []float64 `json:"fruit_scale"`
}

// Rest returns the pose of a plant before a run starts.
func Rest() Pose {
	return Interpolate(0, 0)
}

// Interpolate returns the pose for the given progress in [0,1]. fruitTarget
// is the full-grown fruit scale the fruit ramps towards.
func Interpolate(progress, fruitTarget float64) Pose {
	p := clamp01(progress)

	pose := Pose{
		StemHeight:   MinStem + (1-MinStem)*p,
		LeafOpacity:  make([]float64, LeafCount),
		LeafScale:    make([]float64, LeafCount),
		FruitOpacity: make([]float64, FruitCount),
		FruitScale:   make([]float64, FruitCount),
	}

	for i := 0; i < LeafCount; i++ {
		o := FadeIn(p, LeafThreshold(i))
		pose.LeafOpacity[i] = o
		pose.LeafScale[i] = minLeafScale + (1-minLeafScale)*o
	}

	ramp := FruitRamp(p)
	for i := 0; i < FruitCount; i++ {
		o := FadeIn(p, FruitThreshold(i))
		pose.FruitOpacity[i] = o
		if o > 0 {
			pose.FruitScale[i] = ramp * fruitTarget
		}
	}

	return pose
}

// LeafThreshold is the progress at which leaf i starts to appear.
func LeafThreshold(i int) float64 {
	return firstLeafAt + float64(i)*leafSpacing
}

// FruitThreshold is the progress at which fruit i starts to appear.
func FruitThreshold(i int) float64 {
	return firstFruitAt + float64(i)*fruitSpacing
}

// FadeIn ramps linearly from 0 to 1 over fadeSpan once progress passes
// threshold.
func FadeIn(progress, threshold float64) float64 {
	if progress <= threshold {
		return 0
	}
	return clamp01((progress - threshold) / fadeSpan)
}

// FruitRamp is the eased fruit growth curve, 0 before fruit set and 1 at
// harvest.
func FruitRamp(progress float64) float64 {
	if progress <= fruitRampStart {
		return 0
	}
	return EaseOutCubic((progress - fruitRampStart) / (1 - fruitRampStart))
}

// EaseOutCubic eases t in [0,1], fast at the start and slow at the end.
func EaseOutCubic(t float64) float64 {
	t = clamp01(t)
	u := 1 - t
	return 1 - u*u*u
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
