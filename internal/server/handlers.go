package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// handleAnalyzeJob analyzes a job role and returns its competency framework
func (s *Server) handleAnalyzeJob(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	req.JobTitle = strings.TrimSpace(req.JobTitle)
	if err := req.Validate(); err != nil {
		verr := &ErrValidation{Field: "job_title", Message: "job_title is required"}
		s.errorResponse(w, HTTPStatus(verr), verr.Message)
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req.JobTitle)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Analysis failed: "+err.Error())
		return
	}

	s.successResponse(w, result)
}

// handleSearchJobs searches for occupations similar to a query
func (s *Server) handleSearchJobs(w http.ResponseWriter, r *http.Request) {
	var req SearchJobsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	req.Query = strings.TrimSpace(req.Query)
	if err := req.Validate(); err != nil {
		verr := &ErrValidation{Field: "query", Message: "query is required"}
		s.errorResponse(w, HTTPStatus(verr), verr.Message)
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = s.searchTopK
	}

	jobs, err := s.searcher.Search(r.Context(), req.Query, topK)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Search failed: "+err.Error())
		return
	}

	s.successResponse(w, map[string]any{
		"query":        req.Query,
		"similar_jobs": jobs,
	})
}

// handleJobCompetencies returns the grouped, unfiltered competencies
// for one occupation code
func (s *Server) handleJobCompetencies(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.PathValue("onet_soc_code"))
	if code == "" {
		verr := &ErrValidation{Field: "onet_soc_code", Message: "onet_soc_code is required"}
		s.errorResponse(w, HTTPStatus(verr), verr.Message)
		return
	}

	competencies, err := s.fetcher.FetchCompetencies(r.Context(), code)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Failed to fetch competencies: "+err.Error())
		return
	}

	s.successResponse(w, map[string]any{
		"onet_soc_code": code,
		"competencies":  competencies,
	})
}

// handleInitializeVectors rebuilds the vector index from the catalog
func (s *Server) handleInitializeVectors(w http.ResponseWriter, r *http.Request) {
	count, err := s.builder.Build(r.Context())
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Vector build failed: "+err.Error())
		return
	}

	s.successResponse(w, map[string]any{
		"message": fmt.Sprintf("Successfully created %d job competency vectors", count),
		"count":   count,
	})
}

// handleIngestRuns lists recent spreadsheet ingest runs
func (s *Server) handleIngestRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 200)

	runs, err := s.ingestRuns.ListIngestRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Database error: "+err.Error())
		return
	}

	s.successResponse(w, map[string]any{
		"ingest_runs": runs,
		"limit":       limit,
	})
}

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}
