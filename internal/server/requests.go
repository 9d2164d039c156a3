package server

import "github.com/go-playground/validator/v10"

// AnalyzeJobRequest is the body of POST /api/analyze-job.
type AnalyzeJobRequest struct {
	JobTitle string `json:"job_title" validate:"required,min=1"`
}

// SearchJobsRequest is the body of POST /api/search-jobs. TopK is
// optional; the server's configured default applies when it is zero.
type SearchJobsRequest struct {
	Query string `json:"query" validate:"required,min=1"`
	TopK  int    `json:"top_k" validate:"omitempty,min=1,max=50"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message" validate:"required,min=1"`
}

// Validate validates the AnalyzeJobRequest using the validator.
func (r *AnalyzeJobRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SearchJobsRequest using the validator.
func (r *SearchJobsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ChatRequest using the validator.
func (r *ChatRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
