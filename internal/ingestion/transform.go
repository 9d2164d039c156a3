package ingestion

import (
	"strconv"
	"time"

	"github.com/jonathan/competency-model/internal/db"
)

// OccupationMeta is an occupation's title and description from the
// occupation data workbook.
type OccupationMeta struct {
	Title       string
	Description string
}

// ParseOccupations builds the code-to-metadata lookup, deduplicating
// by SOC code and defaulting missing descriptions to empty.
func ParseOccupations(rows []Row) map[string]OccupationMeta {
	occupations := make(map[string]OccupationMeta)
	for _, row := range rows {
		code := row["onet_soc_code"]
		if code == "" {
			continue
		}
		if _, seen := occupations[code]; seen {
			continue
		}
		occupations[code] = OccupationMeta{
			Title:       row["title"],
			Description: row["description"],
		}
	}
	return occupations
}

// ParseSurveyRows converts survey workbook rows to catalog records,
// tagging each with the element type of the source workbook. Rows
// whose data value does not parse as a number are dropped, matching
// the upstream invariant that every stored row carries a numeric
// value. Rows without occupation metadata are dropped too.
func ParseSurveyRows(rows []Row, elementType string, occupations map[string]OccupationMeta) []db.CompetencyRecord {
	var records []db.CompetencyRecord
	for _, row := range rows {
		code := row["onet_soc_code"]
		meta, ok := occupations[code]
		if !ok {
			continue
		}

		value, err := strconv.ParseFloat(row["data_value"], 64)
		if err != nil {
			continue
		}

		notRelevant := row["not_relevant"]
		if notRelevant == "" {
			notRelevant = "N"
		}

		records = append(records, db.CompetencyRecord{
			OnetSocCode:       code,
			Title:             meta.Title,
			Description:       meta.Description,
			ElementID:         row["element_id"],
			ElementName:       row["element_name"],
			ElementType:       elementType,
			ScaleID:           row["scale_id"],
			ScaleName:         row["scale_name"],
			DataValue:         value,
			N:                 parseOptionalInt(row["n"]),
			StandardError:     parseOptionalFloat(row["standard_error"]),
			LowerCIBound:      parseOptionalFloat(row["lower_ci_bound"]),
			UpperCIBound:      parseOptionalFloat(row["upper_ci_bound"]),
			RecommendSuppress: row["recommend_suppress"],
			NotRelevant:       notRelevant,
			Date:              parseSurveyDate(row["date"]),
			DomainSource:      row["domain_source"],
		})
	}
	return records
}

func parseOptionalInt(s string) *int {
	if s == "" {
		return nil
	}
	// Survey exports sometimes render counts as "26.0"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n := int(f)
	return &n
}

func parseOptionalFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// parseSurveyDate parses the O*NET "MM/YYYY" date column.
func parseSurveyDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("01/2006", s)
	if err != nil {
		return nil
	}
	return &t
}
