package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/competency-model/internal/competency"
	"github.com/jonathan/competency-model/internal/search"
)

type fakeSearcher struct {
	matches []search.JobMatch
	err     error
	lastK   int
}

func (f *fakeSearcher) Search(_ context.Context, _ string, k int) ([]search.JobMatch, error) {
	f.lastK = k
	return f.matches, f.err
}

type fakeFetcher struct {
	grouped  competency.Grouped
	err      error
	lastCode string
}

func (f *fakeFetcher) FetchCompetencies(_ context.Context, code string) (competency.Grouped, error) {
	f.lastCode = code
	return f.grouped, f.err
}

func developerMatches() []search.JobMatch {
	return []search.JobMatch{
		{JobID: "job_15-1252.00", Score: 0.91, Title: "Software Developers", OnetSocCode: "15-1252.00", CompetencyCount: 70},
		{JobID: "job_15-1211.00", Score: 0.84, Title: "Computer Systems Analysts", OnetSocCode: "15-1211.00", CompetencyCount: 68},
	}
}

func TestAnalyze_FullPipeline(t *testing.T) {
	g := make(competency.Grouped)
	for _, v := range []float64{4.5, 4.2, 4.0, 3.8} {
		g.Add("Skill", "Importance", competency.Entry{ElementName: "S", DataValue: value(v)})
	}
	g.Add("Ability", "Importance", competency.Entry{ElementName: "Oral Comprehension", DataValue: value(4.2)})

	searcher := &fakeSearcher{matches: developerMatches()}
	fetcher := &fakeFetcher{grouped: g}
	analyzer := NewAnalyzer(searcher, fetcher, 3, 3)

	result, err := analyzer.Analyze(context.Background(), "software developer")
	require.NoError(t, err)

	assert.Empty(t, result.Error)
	assert.Equal(t, 3, searcher.lastK)
	assert.Equal(t, "15-1252.00", fetcher.lastCode)

	require.NotNil(t, result.JobAnalysis)
	assert.Equal(t, "software developer", result.JobAnalysis.Query)
	assert.Equal(t, "job_15-1252.00", result.JobAnalysis.BestMatch.JobID)
	assert.Len(t, result.JobAnalysis.SimilarJobs, 2)

	// framework filtered to top 3 per scale
	assert.Len(t, result.CompetencyFramework["Skill"]["Importance"], 3)

	assert.NotEmpty(t, result.Recommendations)
	assert.NotEmpty(t, result.FormattedFrameworkSummary)
	require.NotNil(t, result.StructuralDiagram)
	assert.Equal(t, "Software Developers", result.StructuralDiagram.Nodes[0].Label)
}

func TestAnalyze_NoMatchesIsTerminalValue(t *testing.T) {
	analyzer := NewAnalyzer(&fakeSearcher{}, &fakeFetcher{}, 3, 3)

	result, err := analyzer.Analyze(context.Background(), "underwater basket weaver")
	require.NoError(t, err)

	assert.Equal(t, "No similar jobs found", result.Error)
	assert.Nil(t, result.JobAnalysis)
	assert.Nil(t, result.CompetencyFramework)
	assert.Nil(t, result.Recommendations)
	assert.Empty(t, result.FormattedFrameworkSummary)
	assert.Nil(t, result.StructuralDiagram)
}

func TestAnalyze_SearchErrorPropagates(t *testing.T) {
	searchErr := errors.New("index unavailable")
	analyzer := NewAnalyzer(&fakeSearcher{err: searchErr}, &fakeFetcher{}, 3, 3)

	_, err := analyzer.Analyze(context.Background(), "software developer")
	assert.ErrorIs(t, err, searchErr)
}

func TestAnalyze_FetchErrorPropagates(t *testing.T) {
	fetchErr := errors.New("connection refused")
	analyzer := NewAnalyzer(&fakeSearcher{matches: developerMatches()}, &fakeFetcher{err: fetchErr}, 3, 3)

	_, err := analyzer.Analyze(context.Background(), "software developer")
	assert.ErrorIs(t, err, fetchErr)
}
