package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/competency-model/internal/search"
)

// jobTitleKeywords marks messages that read like a job title and get
// the full analysis treatment instead of a plain similarity search.
var jobTitleKeywords = []string{
	"engineer", "manager", "analyst", "developer",
	"specialist", "coordinator", "director",
}

const chatSearchTopK = 3

// handleChat is the conversational interface: job-title-like messages
// get a competency analysis, everything else a similarity search.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	req.Message = strings.TrimSpace(req.Message)
	if err := req.Validate(); err != nil {
		verr := &ErrValidation{Field: "message", Message: "message is required"}
		s.errorResponse(w, HTTPStatus(verr), verr.Message)
		return
	}

	if looksLikeJobTitle(req.Message) {
		s.chatAnalysis(w, r, req.Message)
		return
	}
	s.chatSearch(w, r, req.Message)
}

func looksLikeJobTitle(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range jobTitleKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (s *Server) chatAnalysis(w http.ResponseWriter, r *http.Request, message string) {
	result, err := s.analyzer.Analyze(r.Context(), message)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Analysis failed: "+err.Error())
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "I found information about %s. Here's the competency analysis:\n\n", message)
	if result.JobAnalysis != nil {
		best := result.JobAnalysis.BestMatch
		fmt.Fprintf(&sb, "Best match: %s (similarity: %.2f)\n\n", best.Title, best.Score)
	}
	if len(result.Recommendations) > 0 {
		sb.WriteString("Key recommendations:\n")
		for i, rec := range result.Recommendations {
			if i == 3 {
				break
			}
			fmt.Fprintf(&sb, "%d. %s\n", i+1, rec)
		}
	}

	s.successResponse(w, map[string]any{
		"response": sb.String(),
		"analysis": result,
		"type":     "job_analysis",
	})
}

func (s *Server) chatSearch(w http.ResponseWriter, r *http.Request, message string) {
	jobs, err := s.searcher.Search(r.Context(), message, chatSearchTopK)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), "Search failed: "+err.Error())
		return
	}

	s.successResponse(w, map[string]any{
		"response":     chatSearchText(message, jobs),
		"similar_jobs": jobs,
		"type":         "search",
	})
}

func chatSearchText(message string, jobs []search.JobMatch) string {
	if len(jobs) == 0 {
		return fmt.Sprintf("I couldn't find any jobs directly related to %s. "+
			"Try being more specific or use job titles like 'Software Engineer' or 'Data Analyst'.", message)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "I found %d jobs related to %s:\n\n", len(jobs), message)
	for i, job := range jobs {
		fmt.Fprintf(&sb, "%d. %s (similarity: %.2f)\n", i+1, job.Title, job.Score)
	}
	sb.WriteString("\nWould you like me to analyze any of these roles in detail?")
	return sb.String()
}
