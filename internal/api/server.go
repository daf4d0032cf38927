package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/rs/cors"

	"github.com/wishlens/pricepeek/internal/config"
	"github.com/wishlens/pricepeek/internal/extract"
	"github.com/wishlens/pricepeek/internal/types"
)

// Server exposes the extraction engine over HTTP for the wishlist frontend.
type Server struct {
	mux       *http.ServeMux
	cfg       *config.ServerConfig
	logger    *slog.Logger
	extractor *extract.Extractor
	httpSrv   *http.Server
}

// extractRequest is the POST /api/extract payload.
type extractRequest struct {
	URL string `json:"url"`
}

// extractResponse mirrors what the wishlist preview consumes. ImageURL and
// Price are null when absent.
type extractResponse struct {
	Title     string  `json:"title"`
	ImageURL  *string `json:"imageUrl"`
	Price     *string `json:"price"`
	SourceURL string  `json:"sourceUrl"`
}

// NewServer creates the API server.
func NewServer(cfg *config.ServerConfig, extractor *extract.Extractor, logger *slog.Logger) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		cfg:       cfg,
		logger:    logger.With("component", "api_server"),
		extractor: extractor,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/extract", s.handleExtract)
}

// Handler returns the full middleware stack: CORS for the browser frontend
// and a per-IP rate limit on top of the routes.
func (s *Server) Handler() http.Handler {
	lmt := tollbooth.NewLimiter(s.cfg.RateLimit, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Hour,
	})
	lmt.SetIPLookups([]string{"X-Forwarded-For", "RemoteAddr", "X-Real-IP"})

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return c.Handler(tollbooth.LimitHandler(lmt, s.mux))
}

// Start begins serving and blocks until the listener fails or Shutdown is
// called.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

// handleExtract runs one extraction. Validation failures surface as 400;
// anything the engine throws after validation (fetch failure included)
// degrades to a 200 with a URL-derived fallback body so wishlist previews
// stay usable even for broken or hostile sites.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"url\": \"...\"}"})
		return
	}

	meta, err := s.extractor.ProductData(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, types.ErrInvalidURL) {
			s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.logger.Warn("extraction degraded to fallback", "url", req.URL, "error", err)
		s.jsonResponse(w, http.StatusOK, extractResponse{
			Title:     extract.URLTitle(req.URL),
			SourceURL: req.URL,
		})
		return
	}

	resp := extractResponse{
		Title:     meta.Title,
		Price:     meta.Price,
		SourceURL: meta.SourceURL,
	}
	if meta.Image != "" {
		resp.ImageURL = &meta.Image
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response", "error", err)
	}
}
