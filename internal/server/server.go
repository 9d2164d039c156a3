// Package server provides the HTTP REST API for the competency model chatbot.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonathan/competency-model/internal/analysis"
	"github.com/jonathan/competency-model/internal/catalog"
	"github.com/jonathan/competency-model/internal/competency"
	"github.com/jonathan/competency-model/internal/config"
	"github.com/jonathan/competency-model/internal/db"
	"github.com/jonathan/competency-model/internal/embedding"
	"github.com/jonathan/competency-model/internal/search"
	"github.com/jonathan/competency-model/internal/server/ratelimit"
	"github.com/jonathan/competency-model/internal/vecindex"
)

// Analyzer runs the job analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, jobTitle string) (*analysis.Analysis, error)
}

// JobSearcher finds occupations similar to a query.
type JobSearcher interface {
	Search(ctx context.Context, query string, k int) ([]search.JobMatch, error)
}

// CompetencyFetcher returns an occupation's grouped competencies.
type CompetencyFetcher interface {
	FetchCompetencies(ctx context.Context, onetSocCode string) (competency.Grouped, error)
}

// CatalogBuilder populates the vector index from the catalog.
type CatalogBuilder interface {
	Build(ctx context.Context) (int, error)
}

// IngestRunLister lists recent spreadsheet ingest runs.
type IngestRunLister interface {
	ListIngestRuns(ctx context.Context, limit int) ([]db.IngestRun, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	provider    embedding.Provider
	rateLimiter *ratelimit.Limiter

	searcher   JobSearcher
	fetcher    CompetencyFetcher
	analyzer   Analyzer
	builder    CatalogBuilder
	ingestRuns IngestRunLister

	searchTopK int
}

// New creates a server and wires its collaborators: the catalog
// database, the pgvector index and the Gemini embedding provider.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}

	index := vecindex.NewPostgres(database.Pool(), cfg.Dimension)
	if err := index.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, err
	}

	provider, err := embedding.NewGeminiProvider(ctx, cfg.APIKey, cfg.EmbeddingModel, cfg.Dimension)
	if err != nil {
		database.Close()
		return nil, err
	}

	searcher := search.NewSearcher(provider, index)
	fetcher := competency.NewAggregator(database)
	analyzer := analysis.NewAnalyzer(searcher, fetcher, cfg.AnalyzeTopK, cfg.FilterTopN)
	builder := catalog.NewBuilder(database, provider, index, cfg.TextTopK, cfg.UpsertBatchSize)

	s := newServer(searcher, fetcher, analyzer, builder, database, cfg.SearchTopK)
	s.db = database
	s.provider = provider
	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // catalog builds embed every occupation
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// newServer assembles a server from already-constructed collaborators.
// Tests use it directly with fakes.
func newServer(searcher JobSearcher, fetcher CompetencyFetcher, analyzer Analyzer,
	builder CatalogBuilder, ingestRuns IngestRunLister, searchTopK int) *Server {
	if searchTopK <= 0 {
		searchTopK = config.DefaultSearchTopK
	}
	return &Server{
		searcher:   searcher,
		fetcher:    fetcher,
		analyzer:   analyzer,
		builder:    builder,
		ingestRuns: ingestRuns,
		searchTopK: searchTopK,
		// Default limits only; New replaces this with the env-driven config.
		rateLimiter: ratelimit.NewLimiter(nil),
	}
}

// Handler builds the route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/analyze-job", s.handleAnalyzeJob)
	mux.HandleFunc("POST /api/search-jobs", s.handleSearchJobs)
	mux.HandleFunc("GET /api/job-competencies/{onet_soc_code}", s.handleJobCompetencies)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/initialize-vectors", s.handleInitializeVectors)
	mux.HandleFunc("GET /api/ingest-runs", s.handleIngestRuns)
	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			log.Printf("Error closing embedding provider: %v", err)
		}
	}
	if s.db != nil {
		s.db.Close()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients that exceed their endpoint's request budget
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientAddr(r), r.URL.Path, r.Method)

		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientAddr identifies the client by IP from RemoteAddr ("IP:port").
func clientAddr(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetAt.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		retryAfter := int(info.RetryAfter.Seconds())
		response["retry_after"] = retryAfter
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetAt.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Competency Model Chatbot API is running",
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// successResponse wraps data in the API's success envelope
func (s *Server) successResponse(w http.ResponseWriter, data any) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
