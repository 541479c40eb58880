package light

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/saaga0h/natlight/internal/colortemp"
	"github.com/saaga0h/natlight/internal/schedule"
)

// ColourResponse is the JSON view of a published colour
type ColourResponse struct {
	CommandID string         `json:"command_id,omitempty"`
	Kelvin    float64        `json:"kelvin"`
	Phase     schedule.Phase `json:"phase"`
	Hex       string         `json:"hex"`
	RGB       colortemp.RGB  `json:"rgb"`
	HSV       colortemp.HSV  `json:"hsv"`
	Sunrise   string         `json:"sunrise"`
	Sunset    string         `json:"sunset"`
	Timestamp string         `json:"timestamp"`
}

// LightResponse is returned by GET /api/light
type LightResponse struct {
	Location  string            `json:"location"`
	Published *ColourResponse   `json:"published,omitempty"`
	Snapshot  map[string]string `json:"snapshot,omitempty"`
}

func newColourResponse(output *Output, id string) *ColourResponse {
	return &ColourResponse{
		CommandID: id,
		Kelvin:    output.Kelvin,
		Phase:     output.Phase,
		Hex:       output.Hex(),
		RGB:       output.Driver,
		HSV:       output.HSV,
		Sunrise:   output.Sunrise.String(),
		Sunset:    output.Sunset.String(),
		Timestamp: output.Time.Format(time.RFC3339),
	}
}

// RegisterRoutes adds the light API to mux:
//
//	GET  /api/light          last published colour and the Redis snapshot
//	POST /api/light/publish  publish the current colour now
func (a *Agent) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/light", a.handleGetLight)
	mux.HandleFunc("POST /api/light/publish", a.handlePublish)
}

func (a *Agent) handleGetLight(w http.ResponseWriter, r *http.Request) {
	response := LightResponse{Location: a.location}

	if output, id, ok := a.LastPublished(); ok {
		response.Published = newColourResponse(output, id)
	}

	snapshot, err := a.Snapshot(r.Context())
	if err != nil {
		a.logger.Warn("Failed to read colour snapshot", "location", a.location, "error", err)
	} else if len(snapshot) > 0 {
		response.Snapshot = snapshot
	}

	a.writeJSON(w, http.StatusOK, response)
}

func (a *Agent) handlePublish(w http.ResponseWriter, r *http.Request) {
	cfg := a.cfg.Load()
	minInterval := time.Duration(cfg.MinPublishIntervalMs) * time.Millisecond
	if !a.rateLimiter.ShouldPublish(a.location, minInterval) {
		http.Error(w, "Publish rate limited, try again later", http.StatusTooManyRequests)
		return
	}

	output, err := a.ForcePublish(r.Context())
	switch {
	case errors.Is(err, ErrManualOverride):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	_, id, _ := a.LastPublished()
	a.writeJSON(w, http.StatusOK, newColourResponse(output, id))
}

func (a *Agent) writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("Failed to encode API response", "error", err)
	}
}
