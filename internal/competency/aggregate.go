package competency

import (
	"context"
	"strconv"

	"github.com/jonathan/competency-model/internal/db"
)

// RowSource fetches raw survey rows for one occupation.
type RowSource interface {
	RowsForOccupation(ctx context.Context, onetSocCode string) ([]db.CompetencyRow, error)
}

// Aggregator builds grouped competency structures from catalog rows.
type Aggregator struct {
	source RowSource
}

// NewAggregator creates an aggregator reading from the given source.
func NewAggregator(source RowSource) *Aggregator {
	return &Aggregator{source: source}
}

// FetchCompetencies returns the occupation's competencies grouped by
// element type then scale, each list sorted descending by value.
// An unknown occupation yields an empty structure, not an error.
func (a *Aggregator) FetchCompetencies(ctx context.Context, onetSocCode string) (Grouped, error) {
	rows, err := a.source.RowsForOccupation(ctx, onetSocCode)
	if err != nil {
		return nil, err
	}
	return Group(rows)
}

// Group builds the two-level structure from raw rows. Rows arrive
// value-descending from the catalog, but each list is re-sorted
// explicitly rather than trusting the query ordering.
func Group(rows []db.CompetencyRow) (Grouped, error) {
	grouped := make(Grouped)
	for _, row := range rows {
		value, err := ParseValue(row)
		if err != nil {
			return nil, err
		}
		grouped.Add(row.ElementType, row.ScaleName, Entry{
			ElementName: row.ElementName,
			DataValue:   value,
			ElementID:   row.ElementID,
			ScaleID:     row.ScaleID,
		})
	}
	grouped.SortDescending()
	return grouped, nil
}

// ParseValue converts a row's raw value to a float. A missing value
// is nil; a malformed one is a ConversionError.
func ParseValue(row db.CompetencyRow) (*float64, error) {
	if row.DataValue == nil {
		return nil, nil
	}
	v, err := strconv.ParseFloat(*row.DataValue, 64)
	if err != nil {
		return nil, &ConversionError{
			OnetSocCode: row.OnetSocCode,
			ElementName: row.ElementName,
			Value:       *row.DataValue,
		}
	}
	return &v, nil
}
