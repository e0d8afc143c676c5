package simulation

import (
	"math/rand"

	"github.com/chrissnell/greenhouse/pkg/growth"
)

// GreenhouseSpec configures one greenhouse instance.
type GreenhouseSpec struct {
	Name     string
	Defaults growth.Inputs
}

// RunState is the per-greenhouse progress of the current run.
type RunState struct {
	// Accumulated is the growth of every integrated week. It only grows
	// during a run.
	Accumulated float64
	// LastWeek is the index of the last integrated week, -1 before the first.
	LastWeek int
	// FruitTarget is the fruit scale the animation grows towards, projected
	// from the live controls while running and fixed once harvested.
	FruitTarget float64
	Mass        int
	Finalized   bool
}

// Greenhouse is one simulated instance: fixed soil, live controls and the
// weather and progress of the current run.
type Greenhouse struct {
	Name     string
	Soil     float64
	Controls *Controls

	schedule growth.CloudSchedule
	run      RunState
}

func newGreenhouse(spec GreenhouseSpec, controls *Controls, rng *rand.Rand) *Greenhouse {
	if controls == nil {
		controls = NewControls(spec.Defaults)
	}
	return &Greenhouse{
		Name:     spec.Name,
		Soil:     drawSoil(rng),
		Controls: controls,
		run:      RunState{LastWeek: -1},
	}
}

func drawSoil(rng *rand.Rand) float64 {
	return growth.MinSoil + rng.Float64()*(growth.MaxSoil-growth.MinSoil)
}

// begin prepares the greenhouse for a fresh run.
func (g *Greenhouse) begin(totalWeeks int, rng *rand.Rand) {
	g.schedule = growth.NewCloudSchedule(totalWeeks, rng)
	g.run = RunState{LastWeek: -1}
	g.run.FruitTarget = g.projectedScale(totalWeeks)
}

// integrate folds every week before completed into the accumulator using the
// current control values. Weeks already integrated are never revisited.
func (g *Greenhouse) integrate(completed int) []float64 {
	from := g.run.LastWeek + 1
	if completed <= from {
		return nil
	}

	weekly := growth.Integrate(g.Controls.Inputs(), g.Soil, from, completed, g.schedule)
	g.run.Accumulated += growth.Accumulate(weekly)
	g.run.LastWeek = completed - 1
	return weekly
}

// projectedScale estimates the harvest fruit scale assuming the current
// controls hold for the rest of the run.
func (g *Greenhouse) projectedScale(totalWeeks int) float64 {
	acc := growth.Project(g.run.Accumulated, g.Controls.Inputs(), g.Soil, g.run.LastWeek+1, totalWeeks, g.schedule)
	return growth.VisualScale(growth.Mass(acc, 1))
}

func (g *Greenhouse) finalize(rng *rand.Rand) {
	if g.run.Finalized {
		return
	}
	g.run.Mass = growth.Mass(g.run.Accumulated, growth.DrawNoise(rng))
	g.run.FruitTarget = growth.VisualScale(g.run.Mass)
	g.run.Finalized = true
}

// Schedule returns the cloud schedule of the current run.
func (g *Greenhouse) Schedule() growth.CloudSchedule {
	return g.schedule
}

// Run returns a copy of the current run state.
func (g *Greenhouse) Run() RunState {
	return g.run
}
