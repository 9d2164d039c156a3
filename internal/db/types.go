package db

import (
	"time"

	"github.com/google/uuid"
)

// CompetencyRow is the read-side projection of a survey observation,
// as consumed by the catalog builder and the competency aggregator.
// DataValue carries the numeric text verbatim (nil when the column is
// NULL); conversion to a float is the consumer's responsibility so
// that a malformed value surfaces as an explicit error instead of a
// silent zero.
type CompetencyRow struct {
	OnetSocCode string
	Title       string
	Description string
	ElementID   string
	ElementName string
	ElementType string // "Skill" or "Ability"
	ScaleID     string
	ScaleName   string // e.g. "Importance", "Level"
	DataValue   *string
}

// CompetencyRecord is the write-side record produced by ingestion,
// one per occupation x element x scale observation.
type CompetencyRecord struct {
	OnetSocCode       string
	Title             string
	Description       string
	ElementID         string
	ElementName       string
	ElementType       string
	ScaleID           string
	ScaleName         string
	DataValue         float64
	N                 *int
	StandardError     *float64
	LowerCIBound      *float64
	UpperCIBound      *float64
	RecommendSuppress string
	NotRelevant       string
	Date              *time.Time
	DomainSource      string
}

// IngestRun records one execution of the spreadsheet ETL.
type IngestRun struct {
	ID          uuid.UUID  `json:"id"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	RowCount    int        `json:"row_count"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
