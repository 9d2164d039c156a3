package ingestion

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/competency-model/internal/db"
)

// CatalogStore is the database surface the ETL writes through.
type CatalogStore interface {
	EnsureSchema(ctx context.Context) error
	TruncateCompetencies(ctx context.Context) error
	InsertRecords(ctx context.Context, records []db.CompetencyRecord) (int64, error)
	CreateIngestRun(ctx context.Context, source string) (uuid.UUID, error)
	CompleteIngestRun(ctx context.Context, runID uuid.UUID, status string, rowCount int) error
}

// Options configures one ETL run.
type Options struct {
	OccupationPath string
	SkillsPath     string
	AbilitiesPath  string
	RowLimit       int // data rows read per workbook; 0 means all
}

// Pipeline extracts the occupation, skills and abilities workbooks,
// joins them and loads the catalog with truncate-and-reload semantics.
type Pipeline struct {
	store CatalogStore
	opts  Options
}

// NewPipeline creates an ETL pipeline writing through the given store.
func NewPipeline(store CatalogStore, opts Options) *Pipeline {
	return &Pipeline{store: store, opts: opts}
}

// Run executes the ETL and returns the number of records loaded.
func (p *Pipeline) Run(ctx context.Context) (int, error) {
	var occupationRows, skillRows, abilityRows []Row

	var g errgroup.Group
	g.Go(func() (err error) {
		occupationRows, err = ReadWorkbook(p.opts.OccupationPath, p.opts.RowLimit)
		return err
	})
	g.Go(func() (err error) {
		skillRows, err = ReadWorkbook(p.opts.SkillsPath, p.opts.RowLimit)
		return err
	})
	g.Go(func() (err error) {
		abilityRows, err = ReadWorkbook(p.opts.AbilitiesPath, p.opts.RowLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	occupations := ParseOccupations(occupationRows)
	records := ParseSurveyRows(skillRows, "Skill", occupations)
	records = append(records, ParseSurveyRows(abilityRows, "Ability", occupations)...)
	log.Printf("Parsed %d occupations, %d survey records", len(occupations), len(records))

	if err := p.store.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	runID, err := p.store.CreateIngestRun(ctx, p.opts.OccupationPath)
	if err != nil {
		return 0, err
	}

	if err := p.load(ctx, records); err != nil {
		if completeErr := p.store.CompleteIngestRun(ctx, runID, "failed", 0); completeErr != nil {
			log.Printf("failed to mark ingest run %s failed: %v", runID, completeErr)
		}
		return 0, err
	}

	if err := p.store.CompleteIngestRun(ctx, runID, "completed", len(records)); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (p *Pipeline) load(ctx context.Context, records []db.CompetencyRecord) error {
	if err := p.store.TruncateCompetencies(ctx); err != nil {
		return err
	}
	count, err := p.store.InsertRecords(ctx, records)
	if err != nil {
		return err
	}
	if count != int64(len(records)) {
		return fmt.Errorf("loaded %d of %d records", count, len(records))
	}
	return nil
}
