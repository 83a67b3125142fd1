package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"aitrip_ai/internal/app"
)

type ServiceInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type Handlers struct {
	Recs  *app.RecommendationService
	Ready *app.ReadinessService // optional
	Info  ServiceInfo
}

type problem struct {
	Type   string       `json:"type"`
	Title  string       `json:"title"`
	Status int          `json:"status"`
	Detail string       `json:"detail,omitempty"`
	Errors []fieldError `json:"errors,omitempty"`
}

// MountHandlers registers the service routes and the versioned API under apiBase.
func (s *Server) MountHandlers(h *Handlers, apiBase string) {
	s.mux.Get("/", h.info)
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/readyz", h.ready)
	s.MountAPI(apiBase, h.RecommendationRoutes())
}

func (h *Handlers) RecommendationRoutes() RouteGroup {
	return RouteGroup{
		Prefix: "/recommendations",
		Tag:    "recommendations",
		Routes: func(r chi.Router) {
			r.Post("/", h.generateRecommendations)
			r.Get("/popular", h.popularDestinations)
		},
	}
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal response failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write response body failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

func (h *Handlers) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Info)
}

func (h *Handlers) ready(w http.ResponseWriter, r *http.Request) {
	if h.Ready == nil {
		writeJSON(w, http.StatusOK, app.Readiness{Status: "ok", Checks: map[string]app.CheckResult{}})
		return
	}
	out, ok := h.Ready.Ready(r.Context())
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, out)
}

func (h *Handlers) generateRecommendations(w http.ResponseWriter, r *http.Request) {
	var body recommendationBody
	if p := decodeBody(w, r, &body); p != nil {
		writeProblemBody(w, *p)
		return
	}
	req, p := body.request()
	if p != nil {
		writeProblemBody(w, *p)
		return
	}

	resp, err := h.Recs.Generate(r.Context(), req)
	if err != nil {
		log.Error().Err(err).Msg("generate recommendations failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not generate recommendations")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) popularDestinations(w http.ResponseWriter, r *http.Request) {
	out, err := h.Recs.Popular(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list popular destinations failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not list destinations")
		return
	}

	etag, body, err := calcETagAndBody(out)
	if err != nil {
		log.Error().Err(err).Msg("marshal popular destinations failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write popular destinations body")
	}
}
