// growth-sim runs whole growth seasons without the web page and prints the
// weekly trace and harvest masses.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chrissnell/greenhouse/internal/simulation"
	"github.com/chrissnell/greenhouse/pkg/growth"
)

const greenhouseName = "sim"

type options struct {
	months int
	inputs growth.Inputs
	seed   int64
	trials int
}

type weekTrace struct {
	Week        int
	Month       int
	Reduction   float64
	Growth      float64
	Accumulated float64
}

type trialResult struct {
	Soil  float64
	Mass  int
	Trace []weekTrace
}

type summary struct {
	Mean, StdDev, Min, Median, Max float64
}

func main() {
	var opts options
	flag.IntVar(&opts.months, "months", 6, "Length of the season in months")
	flag.IntVar(&opts.inputs.Temperature, "temperature", 22, "Temperature in °C (10-35)")
	flag.IntVar(&opts.inputs.Lights, "lights", 1, "Number of grow lights (0-3)")
	flag.IntVar(&opts.inputs.CO2, "co2", 1, "Number of CO2 fans (0-3)")
	flag.Int64Var(&opts.seed, "seed", time.Now().UnixNano(), "Random seed")
	flag.IntVar(&opts.trials, "trials", 1, "Number of seasons to simulate")
	flag.Parse()

	if opts.months < 1 || opts.trials < 1 {
		fmt.Fprintf(os.Stderr, "Error: -months and -trials must be at least 1\n")
		os.Exit(1)
	}

	results := simulate(opts)

	in := opts.inputs.Clamped()
	fmt.Printf("Greenhouse season: %d months, %d°C, %d lights, %d CO2 fans (seed %d)\n\n",
		opts.months, in.Temperature, in.Lights, in.CO2, opts.seed)

	first := results[0]
	fmt.Printf("Soil quality %.3f\n", first.Soil)
	fmt.Printf("%5s %6s %7s %8s %12s\n", "week", "month", "cloud", "growth", "accumulated")
	for _, w := range first.Trace {
		cloud := "-"
		if w.Reduction > 0 {
			cloud = fmt.Sprintf("%.0f%%", w.Reduction*100)
		}
		fmt.Printf("%5d %6d %7s %8.2f %12.2f\n", w.Week, w.Month, cloud, w.Growth, w.Accumulated)
	}
	fmt.Printf("\nHarvest: %s\n", growth.FormatMass(first.Mass))

	if len(results) > 1 {
		s := summarize(results)
		fmt.Printf("\n%d seasons: mean %s ± %.0f g, min %s, median %s, max %s\n",
			len(results),
			growth.FormatMass(int(s.Mean+0.5)), s.StdDev,
			growth.FormatMass(int(s.Min)), growth.FormatMass(int(s.Median+0.5)), growth.FormatMass(int(s.Max)))
	}
}

// simulate runs opts.trials seasons back to back on one session driven by a
// fake clock, redrawing soil between seasons.
func simulate(opts options) []trialResult {
	clock := simulation.NewFakeClock(time.Unix(0, 0))
	weeks := growth.TotalWeeks(opts.months)

	session := simulation.NewSession(simulation.Config{
		Months:       opts.months,
		Duration:     time.Duration(weeks) * time.Second,
		TickInterval: time.Second,
		Greenhouses: []simulation.GreenhouseSpec{
			{Name: greenhouseName, Defaults: opts.inputs},
		},
	}, simulation.WithClock(clock), simulation.WithRand(rand.New(rand.NewSource(opts.seed))))

	results := make([]trialResult, 0, opts.trials)
	for i := 0; i < opts.trials; i++ {
		if i > 0 {
			session.Reset()
		}
		results = append(results, runSeason(session, clock))
	}
	return results
}

func runSeason(session *simulation.Session, clock *simulation.FakeClock) trialResult {
	session.Start()

	g, _ := session.Greenhouse(greenhouseName)
	schedule := g.Schedule()
	weeks := session.TotalWeeks()
	week := session.Config().Duration / time.Duration(weeks)

	res := trialResult{Soil: g.Soil, Trace: make([]weekTrace, 0, weeks)}
	prev := 0.0
	for w := 0; w < weeks; w++ {
		clock.Advance(week)
		f := session.Step()
		acc := f.Greenhouses[0].Accumulated

		res.Trace = append(res.Trace, weekTrace{
			Week:        w + 1,
			Month:       growth.MonthOf(w) + 1,
			Reduction:   schedule.Reduction(w),
			Growth:      acc - prev,
			Accumulated: acc,
		})
		prev = acc
	}

	res.Mass = session.Frame().Greenhouses[0].Mass
	return res
}

func summarize(results []trialResult) summary {
	masses := make([]float64, len(results))
	for i, r := range results {
		masses[i] = float64(r.Mass)
	}
	sort.Float64s(masses)

	mean, std := stat.MeanStdDev(masses, nil)
	return summary{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(masses),
		Median: stat.Quantile(0.5, stat.Empirical, masses, nil),
		Max:    floats.Max(masses),
	}
}
