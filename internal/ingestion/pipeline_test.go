package ingestion

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jonathan/competency-model/internal/db"
)

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func TestReadWorkbook_NormalizedHeadersAndRowLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "occupations.xlsx")
	writeWorkbook(t, path, [][]any{
		{"O*NET-SOC Code", "Title", "Description"},
		{"15-1252.00", "Software Developers", "Develop applications"},
		{"15-1211.00", "Computer Systems Analysts", "Analyze systems"},
	})

	rows, err := ReadWorkbook(path, 1)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.Equal(t, "15-1252.00", rows[0]["onet_soc_code"])
	assert.Equal(t, "Software Developers", rows[0]["title"])
}

type fakeCatalogStore struct {
	records    []db.CompetencyRecord
	truncated  bool
	runStatus  string
	runCount   int
	schemaDone bool
}

func (f *fakeCatalogStore) EnsureSchema(_ context.Context) error {
	f.schemaDone = true
	return nil
}

func (f *fakeCatalogStore) TruncateCompetencies(_ context.Context) error {
	f.truncated = true
	return nil
}

func (f *fakeCatalogStore) InsertRecords(_ context.Context, records []db.CompetencyRecord) (int64, error) {
	f.records = append(f.records, records...)
	return int64(len(records)), nil
}

func (f *fakeCatalogStore) CreateIngestRun(_ context.Context, _ string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (f *fakeCatalogStore) CompleteIngestRun(_ context.Context, _ uuid.UUID, status string, rowCount int) error {
	f.runStatus = status
	f.runCount = rowCount
	return nil
}

func TestPipelineRun_LoadsJoinedRecords(t *testing.T) {
	dir := t.TempDir()

	occupations := filepath.Join(dir, "occupations.xlsx")
	writeWorkbook(t, occupations, [][]any{
		{"O*NET-SOC Code", "Title", "Description"},
		{"15-1252.00", "Software Developers", "Develop applications"},
	})

	surveyHeader := []any{"O*NET-SOC Code", "Element ID", "Element Name", "Scale ID", "Scale Name", "Data Value"}
	skills := filepath.Join(dir, "skills.xlsx")
	writeWorkbook(t, skills, [][]any{
		surveyHeader,
		{"15-1252.00", "2.B.3.b", "Programming", "IM", "Importance", "4.5"},
		{"15-1252.00", "2.B.3.b", "Programming", "LV", "Level", "bad"},
	})
	abilities := filepath.Join(dir, "abilities.xlsx")
	writeWorkbook(t, abilities, [][]any{
		surveyHeader,
		{"15-1252.00", "1.A.1.a", "Oral Comprehension", "IM", "Importance", "4.2"},
	})

	store := &fakeCatalogStore{}
	pipeline := NewPipeline(store, Options{
		OccupationPath: occupations,
		SkillsPath:     skills,
		AbilitiesPath:  abilities,
	})

	count, err := pipeline.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, count)
	assert.True(t, store.schemaDone)
	assert.True(t, store.truncated)
	assert.Equal(t, "completed", store.runStatus)
	assert.Equal(t, 2, store.runCount)

	require.Len(t, store.records, 2)
	assert.Equal(t, "Skill", store.records[0].ElementType)
	assert.Equal(t, "Ability", store.records[1].ElementType)
	assert.Equal(t, "Software Developers", store.records[1].Title)
}
