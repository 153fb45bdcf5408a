package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/UnknownOlympus/proximity/internal/metrics"
	"github.com/UnknownOlympus/proximity/internal/models"
)

const maxBodyBytes = 1 << 20

// BusinessService is the application surface the API exposes.
type BusinessService interface {
	Create(ctx context.Context, id string, in models.BusinessInput) (*models.Business, error)
	Get(ctx context.Context, id string) (*models.Business, error)
	Update(ctx context.Context, id string, in models.BusinessInput) (*models.Business, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, center models.Point, radius string) ([]models.Business, error)
}

// ReadinessProbe reports whether startup initialization has finished.
type ReadinessProbe interface {
	Ready() bool
}

// Handler serves the business directory API.
type Handler struct {
	svc   BusinessService
	ready ReadinessProbe
	log   *slog.Logger
}

// NewRouter builds the API handler with its middleware chain.
func NewRouter(svc BusinessService, ready ReadinessProbe, log *slog.Logger, m *metrics.Metrics) http.Handler {
	h := &Handler{svc: svc, ready: ready, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/businesses", h.create)
	mux.HandleFunc("GET /api/businesses/{id}", h.get)
	mux.HandleFunc("PUT /api/businesses/{id}", h.update)
	mux.HandleFunc("DELETE /api/businesses/{id}", h.delete)
	mux.HandleFunc("GET /api/search", h.search)
	mux.HandleFunc("GET /api/health", h.health)
	mux.HandleFunc("GET /api/ready", h.readiness)

	return Stack(mux, log, m)
}

// Stack wraps h with the API middleware. Recover sits innermost so that a panicking request
// is still logged and counted as a 500.
func Stack(h http.Handler, log *slog.Logger, m *metrics.Metrics) http.Handler {
	return Chain(h,
		CorrelationID(),
		Logging(log),
		Metrics(m),
		Recover(log),
	)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.BusinessID == "" {
		writeMessage(w, http.StatusBadRequest, msgMissingID)
		return
	}
	in, err := req.input()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgPartialCoords)
		return
	}

	created, err := h.svc.Create(r.Context(), req.BusinessID, in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	w.Header().Set("Location", "/api/businesses/"+url.PathEscape(created.ID))
	writeJSON(w, http.StatusCreated, toResponse(*created))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	business, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(*business))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if req.BusinessID != "" && req.BusinessID != id {
		writeMessage(w, http.StatusBadRequest, msgMismatchedID)
		return
	}
	in, err := req.input()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgPartialCoords)
		return
	}

	updated, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(*updated))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	lonParam := query.Get("longitude")
	if lonParam == "" {
		// older clients spell it this way
		lonParam = query.Get("longtitude")
	}

	lat, errLat := strconv.ParseFloat(query.Get("latitude"), 64)
	lon, errLon := strconv.ParseFloat(lonParam, 64)
	if errLat != nil || errLon != nil {
		writeMessage(w, http.StatusBadRequest, msgQueryCoords)
		return
	}

	found, err := h.svc.Search(r.Context(), models.Point{Latitude: lat, Longitude: lon}, query.Get("radius"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponses(found))
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("healthy"))
}

func (h *Handler) readiness(w http.ResponseWriter, _ *http.Request) {
	status, body := http.StatusOK, "ready"
	if !h.ready.Ready() {
		status, body = http.StatusServiceUnavailable, "initializing"
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (businessRequest, bool) {
	var req businessRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.log.DebugContext(r.Context(), "Rejected request body", "error", err)
		writeMessage(w, http.StatusBadRequest, msgMalformedBody)
		return req, false
	}

	return req, true
}
