package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/competency-model/internal/db"
	"github.com/jonathan/competency-model/internal/vecindex"
)

type fakeStore struct {
	rows []db.CompetencyRow
	err  error
}

func (f *fakeStore) AllRowsWithValue(_ context.Context) ([]db.CompetencyRow, error) {
	return f.rows, f.err
}

type fakeProvider struct {
	texts []string
	err   error
}

func (f *fakeProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.texts = append(f.texts, texts...)
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(len(texts[i])), 1}
	}
	return vectors, nil
}

func (f *fakeProvider) Dimension() int {
	return 2
}

func (f *fakeProvider) Close() error {
	return nil
}

type fakeIndex struct {
	batches [][]vecindex.Entry
	err     error
}

func (f *fakeIndex) Upsert(_ context.Context, entries []vecindex.Entry) error {
	if f.err != nil {
		return f.err
	}
	batch := make([]vecindex.Entry, len(entries))
	copy(batch, entries)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeIndex) Query(_ context.Context, _ []float32, _ int) ([]vecindex.Match, error) {
	return nil, nil
}

func raw(v string) *string {
	return &v
}

func developerRows() []db.CompetencyRow {
	return []db.CompetencyRow{
		{OnetSocCode: "15-1252.00", Title: "Software Developers", Description: "Develop applications",
			ElementName: "Programming", ElementType: "Skill", ScaleName: "Importance", DataValue: raw("4.5")},
		{OnetSocCode: "15-1252.00", Title: "Software Developers", Description: "Develop applications",
			ElementName: "Oral Comprehension", ElementType: "Ability", ScaleName: "Importance", DataValue: raw("4.2")},
		{OnetSocCode: "15-1252.00", Title: "Software Developers", Description: "Develop applications",
			ElementName: "Critical Thinking", ElementType: "Skill", ScaleName: "Importance", DataValue: raw("4.1")},
	}
}

func TestBuild_ComposesEmbeddingText(t *testing.T) {
	provider := &fakeProvider{}
	index := &fakeIndex{}
	builder := NewBuilder(&fakeStore{rows: developerRows()}, provider, index, 5, 100)

	count, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.Len(t, provider.texts, 1)
	assert.Equal(t,
		"Job Title: Software Developers. Description: Develop applications. "+
			"Key Skills: Programming (Importance): 4.5; Critical Thinking (Importance): 4.1. "+
			"Key Abilities: Oral Comprehension (Importance): 4.2",
		provider.texts[0])
}

func TestBuild_UpsertsMetadata(t *testing.T) {
	index := &fakeIndex{}
	builder := NewBuilder(&fakeStore{rows: developerRows()}, &fakeProvider{}, index, 5, 100)

	_, err := builder.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, index.batches, 1)
	require.Len(t, index.batches[0], 1)
	entry := index.batches[0][0]
	assert.Equal(t, "job_15-1252.00", entry.ID)
	assert.Equal(t, "15-1252.00", entry.Metadata["onet_soc_code"])
	assert.Equal(t, "Software Developers", entry.Metadata["title"])
	assert.Equal(t, 3, entry.Metadata["competency_count"])
	assert.NotEmpty(t, entry.Metadata["text"])
}

func TestBuild_TextTopKLimitsPerType(t *testing.T) {
	var rows []db.CompetencyRow
	for _, v := range []string{"4.9", "4.7", "4.5", "4.3"} {
		rows = append(rows, db.CompetencyRow{
			OnetSocCode: "15-1252.00", Title: "Software Developers",
			ElementName: "Skill " + v, ElementType: "Skill", ScaleName: "Importance", DataValue: raw(v),
		})
	}
	provider := &fakeProvider{}
	builder := NewBuilder(&fakeStore{rows: rows}, provider, &fakeIndex{}, 2, 100)

	_, err := builder.Build(context.Background())
	require.NoError(t, err)

	require.Len(t, provider.texts, 1)
	assert.Contains(t, provider.texts[0], "Skill 4.9")
	assert.Contains(t, provider.texts[0], "Skill 4.7")
	assert.NotContains(t, provider.texts[0], "Skill 4.5")
}

func TestBuild_BatchesUpserts(t *testing.T) {
	var rows []db.CompetencyRow
	for i := 0; i < 5; i++ {
		rows = append(rows, db.CompetencyRow{
			OnetSocCode: string(rune('A' + i)), Title: "T",
			ElementName: "E", ElementType: "Skill", ScaleName: "Importance", DataValue: raw("4.0"),
		})
	}
	index := &fakeIndex{}
	builder := NewBuilder(&fakeStore{rows: rows}, &fakeProvider{}, index, 5, 2)

	count, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	require.Len(t, index.batches, 3)
	assert.Len(t, index.batches[0], 2)
	assert.Len(t, index.batches[2], 1)
}

func TestBuild_EmptyCatalog(t *testing.T) {
	builder := NewBuilder(&fakeStore{}, &fakeProvider{}, &fakeIndex{}, 5, 100)

	count, err := builder.Build(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBuild_CollaboratorErrorsAbort(t *testing.T) {
	storeErr := errors.New("catalog down")
	builder := NewBuilder(&fakeStore{err: storeErr}, &fakeProvider{}, &fakeIndex{}, 5, 100)
	_, err := builder.Build(context.Background())
	assert.ErrorIs(t, err, storeErr)

	embedErr := errors.New("quota exceeded")
	builder = NewBuilder(&fakeStore{rows: developerRows()}, &fakeProvider{err: embedErr}, &fakeIndex{}, 5, 100)
	_, err = builder.Build(context.Background())
	assert.ErrorIs(t, err, embedErr)

	upsertErr := errors.New("index down")
	builder = NewBuilder(&fakeStore{rows: developerRows()}, &fakeProvider{}, &fakeIndex{err: upsertErr}, 5, 100)
	_, err = builder.Build(context.Background())
	assert.ErrorIs(t, err, upsertErr)
}
