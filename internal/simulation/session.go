// Package simulation drives greenhouse growth runs. A Session owns the
// greenhouses and the Idle → Running → Harvested state machine; Tick maps an
// elapsed time onto progress, integrates newly completed weeks and returns the
// Frame the renderer draws.
package simulation

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrissnell/greenhouse/pkg/growth"
)

// State is the lifecycle state of a Session.
type State int

const (
	Idle State = iota
	Running
	Harvested
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Harvested:
		return "harvested"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	DefaultMonths        = 6
	DefaultDuration      = 30 * time.Second
	DefaultTickInterval  = 100 * time.Millisecond
	DefaultRevealStagger = 350 * time.Millisecond
)

// Config describes the runs a Session performs.
type Config struct {
	Months        int
	Duration      time.Duration
	TickInterval  time.Duration
	RevealStagger time.Duration
	Greenhouses   []GreenhouseSpec
}

// DefaultGreenhouses returns the two side-by-side greenhouses used when none
// are configured.
func DefaultGreenhouses() []GreenhouseSpec {
	return []GreenhouseSpec{
		{Name: "A", Defaults: growth.Inputs{Temperature: 22, Lights: 1, CO2: 1}},
		{Name: "B", Defaults: growth.Inputs{Temperature: 18, Lights: 0, CO2: 0}},
	}
}

func (c Config) withDefaults() Config {
	if c.Months <= 0 {
		c.Months = DefaultMonths
	}
	if c.Duration <= 0 {
		c.Duration = DefaultDuration
	}
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.RevealStagger < 0 {
		c.RevealStagger = 0
	}
	if len(c.Greenhouses) == 0 {
		c.Greenhouses = DefaultGreenhouses()
	}
	return c
}

// Option customises a Session.
type Option func(*Session)

// WithClock replaces the wall clock used by Step.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithRand replaces the random source used for soil, clouds and noise.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is one greenhouse simulation. All methods are safe for concurrent
// use; every tick and transition runs to completion under a single lock.
type Session struct {
	mu sync.Mutex

	cfg        Config
	totalWeeks int
	clock      Clock
	rng        *rand.Rand
	logger     *zap.SugaredLogger

	state       State
	runID       string
	startedAt   time.Time
	elapsed     time.Duration
	greenhouses []*Greenhouse
	last        Frame
}

// NewSession builds an idle session with freshly drawn greenhouses.
func NewSession(cfg Config, opts ...Option) *Session {
	s := &Session{
		cfg:    cfg.withDefaults(),
		clock:  RealClock{},
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s.totalWeeks = growth.TotalWeeks(s.cfg.Months)
	s.greenhouses = make([]*Greenhouse, len(s.cfg.Greenhouses))
	for i, spec := range s.cfg.Greenhouses {
		s.greenhouses[i] = newGreenhouse(spec, nil, s.rng)
	}
	s.last = s.frameLocked()

	return s
}

// Config returns the effective configuration.
func (s *Session) Config() Config {
	return s.cfg
}

// TotalWeeks returns the number of weeks in a run.
func (s *Session) TotalWeeks() int {
	return s.totalWeeks
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins a new run. It is a no-op returning false while a run is
// already in progress.
func (s *Session) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Running {
		return false
	}

	s.state = Running
	s.runID = uuid.NewString()
	s.startedAt = s.clock.Now()
	s.elapsed = 0
	for _, g := range s.greenhouses {
		g.begin(s.totalWeeks, s.rng)
	}
	s.last = s.frameLocked()

	s.logger.Infow("growth run started",
		"run_id", s.runID,
		"weeks", s.totalWeeks,
		"duration", s.cfg.Duration,
		"greenhouses", len(s.greenhouses),
	)
	for _, g := range s.greenhouses {
		s.logger.Debugw("cloud schedule drawn", "run_id", s.runID, "greenhouse", g.Name, "cloudy_weeks", g.schedule.CloudyWeeks())
	}

	return true
}

// Reset abandons any run and rebuilds every greenhouse with a fresh soil
// factor. Live controls are kept. Reset always succeeds.
func (s *Session) Reset() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	s.state = Idle
	s.runID = ""
	s.startedAt = time.Time{}
	s.elapsed = 0
	for i, spec := range s.cfg.Greenhouses {
		s.greenhouses[i] = newGreenhouse(spec, s.greenhouses[i].Controls, s.rng)
	}
	s.last = s.frameLocked()

	s.logger.Infow("session reset", "previous_state", prev.String())
	return s.last
}

// Step ticks the session with the time elapsed on its clock since Start.
func (s *Session) Step() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Idle {
		return s.last
	}
	return s.tickLocked(s.clock.Now().Sub(s.startedAt))
}

// Tick advances the run to the given elapsed time since Start and returns the
// resulting frame. It can be called with arbitrary elapsed values; weeks that
// were already integrated are not recomputed. While Idle it returns the rest
// frame.
func (s *Session) Tick(elapsed time.Duration) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Idle {
		return s.last
	}
	return s.tickLocked(elapsed)
}

func (s *Session) tickLocked(elapsed time.Duration) Frame {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > s.elapsed {
		s.elapsed = elapsed
	}

	if s.state == Running {
		progress := s.progressLocked()
		completed := s.completedWeeksLocked()

		for _, g := range s.greenhouses {
			weekly := g.integrate(completed)
			if len(weekly) > 0 {
				s.logger.Debugw("weeks integrated",
					"greenhouse", g.Name,
					"through_week", g.run.LastWeek,
					"accumulated", g.run.Accumulated,
				)
			}
			g.run.FruitTarget = g.projectedScale(s.totalWeeks)
		}

		if progress >= 1 {
			s.harvestLocked()
		}
	}

	s.last = s.frameLocked()
	return s.last
}

func (s *Session) harvestLocked() {
	for _, g := range s.greenhouses {
		g.finalize(s.rng)
		s.logger.Infow("greenhouse harvested",
			"run_id", s.runID,
			"greenhouse", g.Name,
			"accumulated", g.run.Accumulated,
			"mass_g", g.run.Mass,
		)
	}
	s.state = Harvested
}

// progressLocked maps elapsed time onto [0,1].
func (s *Session) progressLocked() float64 {
	switch s.state {
	case Idle:
		return 0
	case Harvested:
		return 1
	}
	return math.Min(1, float64(s.elapsed)/float64(s.cfg.Duration))
}

// completedWeeksLocked is floor(progress × totalWeeks), computed on integer
// nanoseconds so that week boundaries land exactly.
func (s *Session) completedWeeksLocked() int {
	switch {
	case s.state == Idle:
		return 0
	case s.state == Harvested, s.elapsed >= s.cfg.Duration:
		return s.totalWeeks
	}
	return int(int64(s.elapsed) * int64(s.totalWeeks) / int64(s.cfg.Duration))
}

func (s *Session) currentWeekLocked() int {
	w := s.completedWeeksLocked()
	if w > s.totalWeeks-1 {
		w = s.totalWeeks - 1
	}
	return w
}

// revealedLocked reports whether greenhouse i's mass may be shown. Masses are
// revealed one after another after harvest.
func (s *Session) revealedLocked(i int) bool {
	if s.state != Harvested {
		return false
	}
	return s.elapsed >= s.cfg.Duration+time.Duration(i)*s.cfg.RevealStagger
}

// RevealComplete reports whether every greenhouse's mass has been revealed.
func (s *Session) RevealComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revealedLocked(len(s.greenhouses) - 1)
}

// Frame returns the most recently computed frame.
func (s *Session) Frame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Controls returns the live controls of the named greenhouse.
func (s *Session) Controls(name string) (*Controls, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.greenhouses {
		if g.Name == name {
			return g.Controls, true
		}
	}
	return nil, false
}

// Greenhouse returns a snapshot of the named greenhouse.
func (s *Session) Greenhouse(name string) (Greenhouse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.greenhouses {
		if g.Name == name {
			return *g, true
		}
	}
	return Greenhouse{}, false
}

// GreenhouseNames lists the greenhouses in display order.
func (s *Session) GreenhouseNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(s.greenhouses))
	for i, g := range s.greenhouses {
		names[i] = g.Name
	}
	return names
}
