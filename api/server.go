// Package api exposes the manifest normalization pipeline over HTTP: one
// endpoint to normalize an uploaded manifest, one to browse the batch
// registry, plus the usual health plumbing.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"manifest-pipeline/db/postgres"
	"manifest-pipeline/internal/decode"
	"manifest-pipeline/internal/mapping"
	"manifest-pipeline/internal/pipeline"
	"manifest-pipeline/internal/unify"
	"manifest-pipeline/pkg/platform"
	"manifest-pipeline/pkg/schema"
)

// Config holds server configuration.
type Config struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestSize int64
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		MaxRequestSize: 25 * 1024 * 1024, // 25MB: XLSX manifests get big
	}
}

// Server is the HTTP API server. The registry is optional; without it
// batches are normalized but not recorded.
type Server struct {
	config   *Config
	registry *postgres.Registry
	mappings *mapping.Registry
}

// NewServer creates an API server.
func NewServer(config *Config, registry *postgres.Registry) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	return &Server{
		config:   config,
		registry: registry,
		mappings: mapping.NewRegistry(),
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.WriteTimeout()))

	r.Get("/health", s.handleHealth)
	r.Get("/health/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(platform.BasicAuthMiddleware)
		r.Post("/normalize", s.handleNormalize)
		r.Get("/batches", s.handleListBatches)
		r.Get("/sites", s.handleListSites)
	})
	return r
}

// Start runs the server until the listener fails.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	log.Info().Int("port", s.config.Port).Msg("manifest API server starting")
	return srv.ListenAndServe()
}

func (s *Server) WriteTimeout() time.Duration {
	if s.config.WriteTimeout <= 0 {
		return 60 * time.Second
	}
	return s.config.WriteTimeout
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "manifest-api",
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.registry != nil {
		ctx, cancel := contextWithTimeout(r, 5*time.Second)
		defer cancel()
		if err := s.registry.Ping(ctx); err != nil {
			s.jsonError(w, http.StatusServiceUnavailable, "batch registry not ready")
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleNormalize accepts raw manifest bytes and returns the canonical CSV.
// Query parameters: site (required), filename, format (csv|xlsx; inferred
// from filename when absent), auction_url, bid_price, shipping_fee.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	siteTag := q.Get("site")
	if siteTag == "" {
		s.jsonError(w, http.StatusBadRequest, "site query parameter is required")
		return
	}
	filename := q.Get("filename")
	if filename == "" {
		filename = "manifest.csv"
	}

	format := decode.Format(q.Get("format"))
	if format == "" {
		detected, err := decode.DetectFormat(filename)
		if err != nil {
			s.jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = detected
	}

	meta := schema.BatchMetadata{AuctionURL: q.Get("auction_url")}
	var err error
	if meta.BidPrice, err = parseOptionalPrice(q.Get("bid_price")); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid bid_price")
		return
	}
	if meta.ShippingFee, err = parseOptionalPrice(q.Get("shipping_fee")); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid shipping_fee")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxRequestSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.jsonError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	table, err := decode.Decode(data, format, siteTag, filename)
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := pipeline.Run(table, meta, s.mappings)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}

	batchID := uuid.New()
	if s.registry != nil {
		ctx, cancel := contextWithTimeout(r, 5*time.Second)
		defer cancel()
		err := s.registry.Record(ctx, batchID, outcome.Report, meta,
			unify.FormatPrice(meta.BidPrice), unify.FormatPrice(meta.ShippingFee))
		if err != nil {
			// Registry failures must not lose the normalization result.
			log.Error().Err(err).Str("batch_id", batchID.String()).Msg("failed to record batch")
		}
	}

	log.Info().
		Str("batch_id", batchID.String()).
		Str("site", siteTag).
		Str("filename", filename).
		Int("source_rows", outcome.Report.SourceRows).
		Int("output_rows", outcome.Report.OutputRows).
		Int("dropped_rows", outcome.Report.DroppedRows).
		Int("placeholder_rows", outcome.Report.PlaceholderRows).
		Msg("manifest normalized")

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("X-Batch-Id", batchID.String())
	w.Header().Set("X-Source-Rows", strconv.Itoa(outcome.Report.SourceRows))
	w.Header().Set("X-Output-Rows", strconv.Itoa(outcome.Report.OutputRows))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, outcome.CSV)
}

func (s *Server) handleListBatches(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		s.jsonError(w, http.StatusNotImplemented, "batch registry not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ctx, cancel := contextWithTimeout(r, 10*time.Second)
	defer cancel()
	records, err := s.registry.List(ctx, limit)
	if err != nil {
		s.jsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, records)
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	type site struct {
		Tag            string `json:"tag"`
		RecoveryParser bool   `json:"recovery_parser"`
	}
	tags := s.mappings.Tags()
	out := make([]site, 0, len(tags))
	for _, tag := range tags {
		out = append(out, site{Tag: tag, RecoveryParser: s.mappings.UsesRecoveryParser(tag)})
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

func contextWithTimeout(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), d)
}

func parseOptionalPrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
