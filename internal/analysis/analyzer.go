// Package analysis turns a free-text job title into a competency
// framework: ranked recommendations, a readable summary and a
// renderable diagram.
package analysis

import (
	"context"

	"github.com/jonathan/competency-model/internal/competency"
	"github.com/jonathan/competency-model/internal/search"
)

// Element types and scales the presentation layer reports on.
const (
	typeSkill       = "Skill"
	typeAbility     = "Ability"
	scaleImportance = "Importance"
	scaleLevel      = "Level"
)

// noMatchMessage is the terminal, non-error outcome for queries that
// resemble nothing in the catalog.
const noMatchMessage = "No similar jobs found"

// JobSearcher finds occupations similar to a query.
type JobSearcher interface {
	Search(ctx context.Context, query string, k int) ([]search.JobMatch, error)
}

// CompetencyFetcher returns an occupation's grouped competencies.
type CompetencyFetcher interface {
	FetchCompetencies(ctx context.Context, onetSocCode string) (competency.Grouped, error)
}

// Analyzer runs the analysis pipeline: search, aggregate, filter, present.
type Analyzer struct {
	searcher JobSearcher
	fetcher  CompetencyFetcher
	topK     int // similar jobs retrieved per analysis
	topN     int // entries kept per scale in the framework
}

// NewAnalyzer creates an analyzer. topK and topN fall back to 3 when
// non-positive.
func NewAnalyzer(searcher JobSearcher, fetcher CompetencyFetcher, topK, topN int) *Analyzer {
	if topK <= 0 {
		topK = 3
	}
	if topN <= 0 {
		topN = 3
	}
	return &Analyzer{searcher: searcher, fetcher: fetcher, topK: topK, topN: topN}
}

// JobAnalysis describes the search outcome behind an analysis.
type JobAnalysis struct {
	Query       string            `json:"query"`
	BestMatch   search.JobMatch   `json:"best_match"`
	SimilarJobs []search.JobMatch `json:"similar_jobs"`
}

// Analysis is the full competency framework for one query. When no
// similar job exists, Error is set and every other field is empty.
type Analysis struct {
	Error                     string             `json:"error,omitempty"`
	JobAnalysis               *JobAnalysis       `json:"job_analysis,omitempty"`
	CompetencyFramework       competency.Grouped `json:"competency_framework,omitempty"`
	Recommendations           []string           `json:"recommendations,omitempty"`
	FormattedFrameworkSummary string             `json:"formatted_framework_summary,omitempty"`
	StructuralDiagram         *Diagram           `json:"structural_diagram,omitempty"`
}

// Analyze maps a job title to its competency framework. Collaborator
// errors propagate unchanged; an empty search result is a valid
// outcome, not an error.
func (a *Analyzer) Analyze(ctx context.Context, jobTitle string) (*Analysis, error) {
	matches, err := a.searcher.Search(ctx, jobTitle, a.topK)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &Analysis{Error: noMatchMessage}, nil
	}

	best := matches[0]
	grouped, err := a.fetcher.FetchCompetencies(ctx, best.OnetSocCode)
	if err != nil {
		return nil, err
	}

	framework := grouped.FilterTop(a.topN)

	return &Analysis{
		JobAnalysis: &JobAnalysis{
			Query:       jobTitle,
			BestMatch:   best,
			SimilarJobs: matches,
		},
		CompetencyFramework:       framework,
		Recommendations:           Recommendations(framework),
		FormattedFrameworkSummary: FormatSummary(framework),
		StructuralDiagram:         BuildDiagram(best.Title, framework),
	}, nil
}
