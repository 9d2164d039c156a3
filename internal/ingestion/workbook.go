// Package ingestion loads O*NET survey spreadsheets into the
// competency catalog.
package ingestion

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one spreadsheet row keyed by normalized column name.
type Row map[string]string

// ReadWorkbook reads the first sheet of an xlsx workbook into rows
// keyed by normalized header names. rowLimit caps the number of data
// rows read; zero means all.
func ReadWorkbook(path string, rowLimit int) ([]Row, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s of %s: %w", sheet, path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("workbook %s has no header row", path)
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = NormalizeHeader(h)
	}

	var rows []Row
	for _, cells := range raw[1:] {
		if rowLimit > 0 && len(rows) >= rowLimit {
			break
		}
		row := make(Row, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(cells) {
				row[header] = strings.TrimSpace(cells[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// NormalizeHeader maps a spreadsheet column title to a snake_case
// catalog column name. The SOC code column appears under several
// spellings across O*NET releases.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	switch h {
	case "o*net-soc_code", "onet-soc_code", "o_net-soc_code":
		return "onet_soc_code"
	}
	return h
}
