// Package catalog builds the occupation vector catalog from raw
// survey rows.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jonathan/competency-model/internal/competency"
	"github.com/jonathan/competency-model/internal/db"
	"github.com/jonathan/competency-model/internal/embedding"
	"github.com/jonathan/competency-model/internal/vecindex"
)

// RowLister fetches every survey row carrying a numeric value.
type RowLister interface {
	AllRowsWithValue(ctx context.Context) ([]db.CompetencyRow, error)
}

// Builder composes per-occupation embedding texts and upserts them
// into the nearest-neighbor index.
type Builder struct {
	store     RowLister
	provider  embedding.Provider
	index     vecindex.Index
	textTopK  int // skills/abilities folded into each embedding text
	batchSize int // entries per index upsert call
}

// NewBuilder creates a catalog builder. textTopK and batchSize fall
// back to 5 and 100 when non-positive.
func NewBuilder(store RowLister, provider embedding.Provider, index vecindex.Index, textTopK, batchSize int) *Builder {
	if textTopK <= 0 {
		textTopK = 5
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Builder{
		store:     store,
		provider:  provider,
		index:     index,
		textTopK:  textTopK,
		batchSize: batchSize,
	}
}

type occupation struct {
	code        string
	title       string
	description string
	rows        []row
}

type row struct {
	elementName string
	elementType string
	scaleName   string
	value       float64
}

// Build reads the catalog, embeds one composite text per occupation
// and upserts the vectors. It returns the number of occupations
// indexed. Upserts are batched; a failure mid-build leaves the index
// partially updated, and re-running is the recovery path since
// upserts overwrite by occupation ID.
func (b *Builder) Build(ctx context.Context) (int, error) {
	raw, err := b.store.AllRowsWithValue(ctx)
	if err != nil {
		return 0, err
	}

	occupations, err := groupByOccupation(raw)
	if err != nil {
		return 0, err
	}
	if len(occupations) == 0 {
		return 0, nil
	}

	texts := make([]string, len(occupations))
	for i, occ := range occupations {
		texts[i] = b.embeddingText(occ)
	}

	vectors, err := b.provider.Embed(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(texts), len(vectors))
	}

	entries := make([]vecindex.Entry, len(occupations))
	for i, occ := range occupations {
		entries[i] = vecindex.Entry{
			ID:     "job_" + occ.code,
			Vector: vectors[i],
			Metadata: map[string]any{
				"onet_soc_code":    occ.code,
				"title":            occ.title,
				"description":      occ.description,
				"competency_count": len(occ.rows),
				"text":             texts[i],
			},
		}
	}

	for start := 0; start < len(entries); start += b.batchSize {
		end := start + b.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := b.index.Upsert(ctx, entries[start:end]); err != nil {
			return 0, err
		}
	}

	return len(entries), nil
}

// groupByOccupation groups rows by occupation code, preserving the
// catalog's code order. Title and description come from the group's
// first row; all rows of a group share the same occupation metadata.
func groupByOccupation(raw []db.CompetencyRow) ([]occupation, error) {
	byCode := make(map[string]*occupation)
	var order []string

	for _, r := range raw {
		value, err := competency.ParseValue(r)
		if err != nil {
			return nil, err
		}
		if value == nil {
			// AllRowsWithValue filters nulls; guard anyway.
			continue
		}

		occ, ok := byCode[r.OnetSocCode]
		if !ok {
			occ = &occupation{
				code:        r.OnetSocCode,
				title:       r.Title,
				description: r.Description,
			}
			byCode[r.OnetSocCode] = occ
			order = append(order, r.OnetSocCode)
		}
		occ.rows = append(occ.rows, row{
			elementName: r.ElementName,
			elementType: r.ElementType,
			scaleName:   r.ScaleName,
			value:       *value,
		})
	}

	occupations := make([]occupation, 0, len(order))
	for _, code := range order {
		occupations = append(occupations, *byCode[code])
	}
	return occupations, nil
}

// embeddingText composes the similarity-search text for one occupation
// from its title, description and highest-value skills and abilities.
func (b *Builder) embeddingText(occ occupation) string {
	skills := topByType(occ.rows, "Skill", b.textTopK)
	abilities := topByType(occ.rows, "Ability", b.textTopK)
	return fmt.Sprintf("Job Title: %s. Description: %s. Key Skills: %s. Key Abilities: %s",
		occ.title, occ.description, renderRows(skills), renderRows(abilities))
}

// topByType selects the k highest-value rows of one element type. The
// input arrives value-descending per occupation, but the selection
// sorts explicitly after filtering by type.
func topByType(rows []row, elementType string, k int) []row {
	var filtered []row
	for _, r := range rows {
		if r.elementType == elementType {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].value > filtered[j].value
	})
	if len(filtered) > k {
		filtered = filtered[:k]
	}
	return filtered
}

func renderRows(rows []row) string {
	parts := make([]string, len(rows))
	for i, r := range rows {
		parts[i] = fmt.Sprintf("%s (%s): %s",
			r.elementName, r.scaleName, strconv.FormatFloat(r.value, 'g', -1, 64))
	}
	return strings.Join(parts, "; ")
}
