package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const rowColumns = `onet_soc_code, COALESCE(title, ''), COALESCE(description, ''),
	COALESCE(element_id, ''), COALESCE(element_name, ''), COALESCE(element_type, ''),
	COALESCE(scale_id, ''), COALESCE(scale_name, ''), data_value::text`

// AllRowsWithValue returns every survey row with a non-null numeric
// value, ordered by occupation code then descending value. This is
// the catalog builder's input ordering: rows for one occupation are
// contiguous and value-descending.
func (db *DB) AllRowsWithValue(ctx context.Context) ([]CompetencyRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+rowColumns+`
		 FROM job_competencies
		 WHERE data_value IS NOT NULL
		 ORDER BY onet_soc_code, data_value DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query competency rows: %w", err)
	}
	defer rows.Close()

	return scanCompetencyRows(rows)
}

// RowsForOccupation returns all survey rows for one occupation,
// ordered by element type, scale name, then descending value.
func (db *DB) RowsForOccupation(ctx context.Context, onetSocCode string) ([]CompetencyRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+rowColumns+`
		 FROM job_competencies
		 WHERE onet_soc_code = $1
		 ORDER BY element_type, scale_name, data_value DESC NULLS LAST`,
		onetSocCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows for %s: %w", onetSocCode, err)
	}
	defer rows.Close()

	return scanCompetencyRows(rows)
}

func scanCompetencyRows(rows pgx.Rows) ([]CompetencyRow, error) {
	var out []CompetencyRow
	for rows.Next() {
		var r CompetencyRow
		if err := rows.Scan(&r.OnetSocCode, &r.Title, &r.Description,
			&r.ElementID, &r.ElementName, &r.ElementType,
			&r.ScaleID, &r.ScaleName, &r.DataValue); err != nil {
			return nil, fmt.Errorf("failed to scan competency row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read competency rows: %w", err)
	}
	return out, nil
}

// TruncateCompetencies clears the catalog table ahead of a fresh load.
func (db *DB) TruncateCompetencies(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, `TRUNCATE TABLE job_competencies`); err != nil {
		return fmt.Errorf("failed to truncate job_competencies: %w", err)
	}
	return nil
}

// InsertRecords bulk-loads survey records via COPY.
func (db *DB) InsertRecords(ctx context.Context, records []CompetencyRecord) (int64, error) {
	columns := []string{
		"onet_soc_code", "title", "description",
		"element_id", "element_name", "element_type",
		"scale_id", "scale_name", "data_value",
		"n", "standard_error", "lower_ci_bound", "upper_ci_bound",
		"recommend_suppress", "not_relevant", "date", "domain_source",
	}

	count, err := db.pool.CopyFrom(ctx,
		pgx.Identifier{"job_competencies"},
		columns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{
				r.OnetSocCode, r.Title, r.Description,
				r.ElementID, r.ElementName, r.ElementType,
				r.ScaleID, r.ScaleName, r.DataValue,
				r.N, r.StandardError, r.LowerCIBound, r.UpperCIBound,
				r.RecommendSuppress, r.NotRelevant, r.Date, r.DomainSource,
			}, nil
		}))
	if err != nil {
		return 0, fmt.Errorf("failed to copy competency records: %w", err)
	}
	return count, nil
}
