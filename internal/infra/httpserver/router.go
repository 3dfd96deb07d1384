package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/artfeedback/internal/application/analysis"
	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
	"github.com/bryanwahyu/artfeedback/internal/infra/imaging"
	"github.com/bryanwahyu/artfeedback/internal/middleware"
	"github.com/bryanwahyu/artfeedback/internal/platform/logger"
)

const (
	maxPromptRunes = 2000
	maxTitleRunes  = 255
)

// Options carries the ambient pieces of the public API.
type Options struct {
	Log            *logger.Logger
	Metrics        *middleware.Metrics
	Limiter        *middleware.RateLimiter
	JWTSecret      string
	JWTIssuer      string
	AllowedOrigins []string
	MaxUploadBytes int64
	Imaging        imaging.Processor
	Checkers       map[string]middleware.HealthChecker
	Ready          *atomic.Bool
}

type Router struct {
	svc       *analysis.Service
	images    imaging.Processor
	maxUpload int64
	log       *logger.Logger
}

// NewRouter builds the public REST API.
func NewRouter(svc *analysis.Service, opts Options) http.Handler {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	if opts.Metrics == nil {
		opts.Metrics = middleware.NewMetrics()
	}
	if opts.Ready == nil {
		opts.Ready = new(atomic.Bool)
		opts.Ready.Store(true)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	r := &Router{svc: svc, images: opts.Imaging, maxUpload: opts.MaxUploadBytes, log: opts.Log}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Identity(opts.JWTSecret, opts.JWTIssuer, opts.Log))
	mux.Use(middleware.LoggingMiddleware(opts.Log))
	mux.Use(opts.Metrics.Middleware)

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/ready", middleware.ReadinessHandler(opts.Ready))
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", opts.Metrics.Handler)

	mux.Route("/api/v1", func(rt chi.Router) {
		rt.Group(func(g chi.Router) {
			if opts.Limiter != nil {
				g.Use(opts.Limiter.Middleware)
			}
			g.Post("/analyze", wrap(r.log, r.handleAnalyze))
		})
		rt.Get("/styles", wrap(r.log, r.handleStyles))
		rt.Get("/resources", wrap(r.log, r.handleResources))

		rt.Group(func(g chi.Router) {
			g.Use(middleware.RequireIdentity)
			g.Get("/artworks", wrap(r.log, r.handleArtworks))
			g.Get("/artworks/{id}/analyses", wrap(r.log, r.handleAnalyses))
		})
	})

	return mux
}

// analyzeForm is the JSON alternative to a multipart upload.
type analyzeForm struct {
	ImageURL    string `json:"image_url"`
	ImageBase64 string `json:"image_base64"`
	Category    string `json:"category"`
	Prompt      string `json:"prompt"`
	Language    string `json:"language"`
	Title       string `json:"title"`
}

type analyzeResponse struct {
	*analysis.Outcome
	Warning string `json:"warning,omitempty"`
}

// POST /api/v1/analyze
// multipart/form-data: image (file) | image_url, category, prompt, language, title
// application/json: analyzeForm
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)

	var (
		form analyzeForm
		raw  []byte
	)
	ct, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	switch ct {
	case "application/json":
		if err := json.NewDecoder(req.Body).Decode(&form); err != nil {
			return decodeError(err)
		}
		if form.ImageBase64 != "" {
			b, err := imaging.DecodeBase64MaybeDataURL(form.ImageBase64)
			if err != nil {
				return err
			}
			raw = b
		}
	case "multipart/form-data", "application/x-www-form-urlencoded":
		if err := req.ParseMultipartForm(r.maxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return asUploadError(err)
		}
		if req.MultipartForm != nil {
			defer req.MultipartForm.RemoveAll()
		}
		form = analyzeForm{
			ImageURL: req.FormValue("image_url"),
			Category: req.FormValue("category"),
			Prompt:   req.FormValue("prompt"),
			Language: req.FormValue("language"),
			Title:    req.FormValue("title"),
		}
		b, err := readUpload(req)
		if err != nil {
			return err
		}
		raw = b
	default:
		return critique.Invalid("content_type", "expected multipart/form-data or application/json, got %q", ct)
	}

	areq, err := r.buildRequest(form, raw)
	if err != nil {
		return err
	}
	areq.UserID = middleware.UserFromContext(req.Context())

	out, err := r.svc.Analyze(req.Context(), areq)
	if err != nil {
		return err
	}
	resp := analyzeResponse{Outcome: out}
	if out.Persistence.Temporary {
		resp.Warning = "analysis could not be saved; this result is temporary"
	}
	return writeJSON(w, http.StatusOK, resp)
}

func (r *Router) buildRequest(form analyzeForm, raw []byte) (critique.AnalysisRequest, error) {
	var areq critique.AnalysisRequest

	cat, ok := critique.ParseCategory(form.Category)
	if !ok {
		cat = critique.Category(strings.TrimSpace(form.Category))
	}
	areq.Category = cat
	areq.Language = strings.TrimSpace(form.Language)
	if err := middleware.ValidateLanguage(areq.Language); err != nil {
		return areq, critique.Invalid("language", "%v", err)
	}
	areq.Prompt = middleware.TruncateRunes(middleware.SanitizeString(form.Prompt), maxPromptRunes)
	areq.Title = middleware.TruncateRunes(middleware.SanitizeString(form.Title), maxTitleRunes)

	switch {
	case len(raw) > 0:
		res, err := r.images.Process(raw)
		if err != nil {
			return areq, err
		}
		areq.Image = critique.ImageInput{Data: res.Data, MIMEType: res.MIMEType}
		areq.ImageHash = res.Hash
	case strings.TrimSpace(form.ImageURL) != "":
		u := strings.TrimSpace(form.ImageURL)
		if err := middleware.ValidateURL(u); err != nil {
			return areq, critique.Invalid("image_url", "%v", err)
		}
		areq.Image = critique.ImageInput{URL: u}
		areq.ImageHash = imaging.Hash([]byte(u))
	}
	return areq, nil
}

func readUpload(req *http.Request) ([]byte, error) {
	if req.MultipartForm == nil {
		return nil, nil
	}
	f, hdr, err := req.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, asUploadError(err)
	}
	defer f.Close()

	if ct := hdr.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		if err := middleware.ValidateImageContentType(ct); err != nil {
			return nil, critique.Invalid("image", "%v", err)
		}
	}
	return io.ReadAll(f)
}

func decodeError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return err
	}
	return critique.Invalid("body", "malformed JSON: %v", err)
}

func asUploadError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return err
	}
	return critique.Invalid("image", "cannot read upload: %v", err)
}

// GET /api/v1/styles
func (r *Router) handleStyles(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{
		"families": r.svc.Analyzer.Taxonomy.Families(),
		"fallback": critique.FallbackStyle,
	})
}

// GET /api/v1/resources?category=
func (r *Router) handleResources(w http.ResponseWriter, req *http.Request) error {
	cat, ok := critique.ParseCategory(req.URL.Query().Get("category"))
	if !ok {
		return critique.Invalid("category", "%q is not a known category", req.URL.Query().Get("category"))
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"category":  cat,
		"resources": r.svc.Analyzer.Catalog.Recommend(cat, ""),
	})
}

// GET /api/v1/artworks
func (r *Router) handleArtworks(w http.ResponseWriter, req *http.Request) error {
	items, err := r.svc.ListArtworks(req.Context(), middleware.UserFromContext(req.Context()))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// GET /api/v1/artworks/{id}/analyses
func (r *Router) handleAnalyses(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateID(id); err != nil {
		return critique.Invalid("id", "%v", err)
	}
	items, err := r.svc.ListAnalyses(req.Context(), middleware.UserFromContext(req.Context()), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
