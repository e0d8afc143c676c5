package simulation

import (
	"fmt"

	"github.com/chrissnell/greenhouse/pkg/animation"
	"github.com/chrissnell/greenhouse/pkg/growth"
)

const (
	PhaseIdle    = "Idle"
	PhaseHarvest = "Harvest ready"
)

// Frame is everything the renderer needs to draw one moment of a run.
type Frame struct {
	State       string            `json:"state"`
	RunID       string            `json:"run_id,omitempty"`
	Progress    float64           `json:"progress"`
	Week        int               `json:"week"`
	TotalWeeks  int               `json:"total_weeks"`
	Phase       string            `json:"phase"`
	Greenhouses []GreenhouseFrame `json:"greenhouses"`
}

// GreenhouseFrame is the per-greenhouse part of a Frame.
type GreenhouseFrame struct {
	Name        string         `json:"name"`
	Controls    growth.Inputs  `json:"controls"`
	Soil        float64        `json:"soil"`
	Cloudy      bool           `json:"cloudy"`
	Accumulated float64        `json:"accumulated"`
	LastWeek    int            `json:"last_week"`
	FruitTarget float64        `json:"fruit_target"`
	Pose        animation.Pose `json:"pose"`
	Revealed    bool           `json:"revealed"`
	Mass        int            `json:"mass,omitempty"`
	MassLabel   string         `json:"mass_label,omitempty"`
}

// PhaseLabel returns the progress indicator text for a state and week.
func PhaseLabel(state State, week, months int) string {
	switch state {
	case Running:
		return fmt.Sprintf("Growing… Month %d of %d", growth.MonthOf(week)+1, months)
	case Harvested:
		return PhaseHarvest
	default:
		return PhaseIdle
	}
}

func (s *Session) frameLocked() Frame {
	progress := s.progressLocked()
	week := 0
	if s.state != Idle {
		week = s.currentWeekLocked()
	}

	f := Frame{
		State:       s.state.String(),
		RunID:       s.runID,
		Progress:    progress,
		Week:        week,
		TotalWeeks:  s.totalWeeks,
		Phase:       PhaseLabel(s.state, week, s.cfg.Months),
		Greenhouses: make([]GreenhouseFrame, len(s.greenhouses)),
	}

	for i, g := range s.greenhouses {
		gf := GreenhouseFrame{
			Name:        g.Name,
			Controls:    g.Controls.Inputs(),
			Soil:        g.Soil,
			Accumulated: g.run.Accumulated,
			LastWeek:    g.run.LastWeek,
		}

		if s.state == Idle {
			gf.Pose = animation.Rest()
		} else {
			gf.Cloudy = g.schedule.IsCloudy(week)
			gf.FruitTarget = g.run.FruitTarget
			gf.Pose = animation.Interpolate(progress, g.run.FruitTarget)
		}

		if s.revealedLocked(i) {
			gf.Revealed = true
			gf.Mass = g.run.Mass
			gf.MassLabel = growth.FormatMass(g.run.Mass)
		}

		f.Greenhouses[i] = gf
	}

	return f
}
