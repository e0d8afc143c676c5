package restserver

import (
	"encoding/json"
	htmltemplate "html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chrissnell/greenhouse/internal/constants"
	"github.com/chrissnell/greenhouse/internal/log"
	"github.com/chrissnell/greenhouse/internal/simulation"
	"github.com/chrissnell/greenhouse/pkg/growth"
	"github.com/chrissnell/greenhouse/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// StartResponse is returned by POST /api/start.
type StartResponse struct {
	Started bool             `json:"started"`
	Frame   simulation.Frame `json:"frame"`
}

// GreenhouseInfo describes one greenhouse outside of a run.
type GreenhouseInfo struct {
	Name       string        `json:"name"`
	Controls   growth.Inputs `json:"controls"`
	Soil       float64       `json:"soil"`
	CloudWeeks []int         `json:"cloud_weeks"`
}

// VersionResponse is returned by GET /api/version.
type VersionResponse struct {
	Version string `json:"version"`
}

func (h *Handlers) session() *simulation.Session {
	return h.controller.runner.Session()
}

func (h *Handlers) write(w http.ResponseWriter, req *http.Request, status int, data any) {
	if err := h.formatter.WriteResponse(w, req, status, data); err != nil {
		log.Errorf("error encoding response for %s: %v", req.URL.Path, err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, status int, msg string) {
	if err := h.formatter.WriteError(w, req, status, msg); err != nil {
		log.Errorf("error encoding error response for %s: %v", req.URL.Path, err)
	}
}

// GetFrame returns the most recent frame of the run.
func (h *Handlers) GetFrame(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, http.StatusOK, h.controller.runner.Latest())
}

// StartRun starts a run. Starting while a run is in progress changes nothing
// and reports started=false.
func (h *Handlers) StartRun(w http.ResponseWriter, req *http.Request) {
	started := h.controller.runner.Start(h.controller.ctx)
	if started {
		h.controller.metrics.runsStarted.Inc()
	}
	h.write(w, req, http.StatusOK, StartResponse{
		Started: started,
		Frame:   h.session().Frame(),
	})
}

// ResetRun abandons any run and returns the idle frame.
func (h *Handlers) ResetRun(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, http.StatusOK, h.controller.runner.Reset())
}

// GetGreenhouses lists every greenhouse with its live controls and soil.
func (h *Handlers) GetGreenhouses(w http.ResponseWriter, req *http.Request) {
	s := h.session()
	names := s.GreenhouseNames()

	infos := make([]GreenhouseInfo, 0, len(names))
	for _, name := range names {
		g, ok := s.Greenhouse(name)
		if !ok {
			continue
		}
		infos = append(infos, GreenhouseInfo{
			Name:       g.Name,
			Controls:   g.Controls.Inputs(),
			Soil:       g.Soil,
			CloudWeeks: g.Schedule().CloudyWeeks(),
		})
	}

	h.write(w, req, http.StatusOK, infos)
}

// UpdateControls applies a partial change to one greenhouse's controls. Values
// out of range are clamped, and the change takes effect from the next tick.
func (h *Handlers) UpdateControls(w http.ResponseWriter, req *http.Request) {
	name := mux.Vars(req)["name"]

	controls, ok := h.session().Controls(name)
	if !ok {
		h.writeError(w, req, http.StatusNotFound, "unknown greenhouse: "+name)
		return
	}

	var update simulation.ControlsUpdate
	if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
		log.Warnf("rejected controls update for greenhouse %s: %v", name, err)
		h.writeError(w, req, http.StatusBadRequest, "invalid controls body: "+err.Error())
		return
	}

	in := controls.Apply(update)
	log.Debugw("controls updated", "greenhouse", name, "temperature", in.Temperature, "lights", in.Lights, "co2", in.CO2)

	h.write(w, req, http.StatusOK, in)
}

// GetVersion returns the server version.
func (h *Handlers) GetVersion(w http.ResponseWriter, req *http.Request) {
	h.write(w, req, http.StatusOK, VersionResponse{Version: constants.Version})
}

// ServeIndex renders the page that draws the greenhouses.
func (h *Handlers) ServeIndex(w http.ResponseWriter, req *http.Request) {
	view, err := htmltemplate.New("index.html.tmpl").ParseFS(h.controller.FS, "index.html.tmpl")
	if err != nil {
		log.Errorf("error parsing index template: %v", err)
		http.Error(w, "page not found", http.StatusNotFound)
		return
	}

	cfg := h.session().Config()
	templateData := struct {
		Version      string
		Months       int
		PollInterval int64
	}{
		Version:      constants.Version,
		Months:       cfg.Months,
		PollInterval: cfg.TickInterval.Milliseconds(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Execute(w, templateData); err != nil {
		log.Errorf("error executing index template: %v", err)
	}
}
