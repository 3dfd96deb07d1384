package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bryanwahyu/artfeedback/internal/application/artworks"
	"github.com/bryanwahyu/artfeedback/internal/domain/artwork"
	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
	"github.com/bryanwahyu/artfeedback/internal/middleware"
	"github.com/bryanwahyu/artfeedback/internal/platform/logger"
)

const maxSaveBody = 2 << 20

// DataOptions configures the data service router.
type DataOptions struct {
	Log      *logger.Logger
	APIKeys  map[string]string
	Checkers map[string]middleware.HealthChecker
}

type DataRouter struct {
	svc *artworks.Service
	log *logger.Logger
}

// NewDataRouter builds the persistence API used by the feedback service.
func NewDataRouter(svc *artworks.Service, opts DataOptions) http.Handler {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	r := &DataRouter{svc: svc, log: opts.Log}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.LoggingMiddleware(opts.Log))
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyses", wrap(r.log, r.handleSave))
		rt.Get("/users/{userID}/artworks", wrap(r.log, r.handleUserArtworks))
		rt.Get("/artworks/{id}/analyses", wrap(r.log, r.handleArtworkAnalyses))
	})
	return mux
}

// POST /v1/analyses
func (r *DataRouter) handleSave(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxSaveBody)
	var body artwork.SaveRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return decodeError(err)
	}
	rec, err := r.svc.Save(req.Context(), body)
	if err != nil {
		return err
	}
	r.log.Info("analysis stored",
		"client", middleware.GetClientFromContext(req.Context()),
		"artwork_id", rec.ArtworkID,
		"analysis_id", rec.AnalysisID,
	)
	return writeJSON(w, http.StatusCreated, rec)
}

// GET /v1/users/{userID}/artworks?limit=
func (r *DataRouter) handleUserArtworks(w http.ResponseWriter, req *http.Request) error {
	userID := chi.URLParam(req, "userID")
	if err := middleware.ValidateUserID(userID); err != nil {
		return critique.Invalid("user_id", "%v", err)
	}
	items, err := r.svc.ArtworksForUser(req.Context(), userID, limitParam(req))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GET /v1/artworks/{id}/analyses?limit=
func (r *DataRouter) handleArtworkAnalyses(w http.ResponseWriter, req *http.Request) error {
	items, err := r.svc.AnalysesForArtwork(req.Context(), chi.URLParam(req, "id"), limitParam(req))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func limitParam(req *http.Request) int {
	n, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	return middleware.ValidateLimit(n)
}
