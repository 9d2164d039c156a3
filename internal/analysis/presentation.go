package analysis

import (
	"fmt"
	"strings"

	"github.com/jonathan/competency-model/internal/competency"
)

const (
	recommendationHeader   = "Focus development on these core competencies:"
	recommendationFallback = "No importance-rated competencies are available for this role."
	maxPerCategory         = 3
)

// Recommendations derives development advice from a filtered
// framework: a header, then up to three Skill/Importance lines and up
// to three Ability/Importance lines. When neither element type has an
// Importance scale, the single fallback string is returned instead.
// The result never exceeds seven strings.
func Recommendations(framework competency.Grouped) []string {
	skills := rankedLines("Skill", framework[typeSkill][scaleImportance])
	abilities := rankedLines("Ability", framework[typeAbility][scaleImportance])

	if len(skills) == 0 && len(abilities) == 0 {
		return []string{recommendationFallback}
	}

	out := make([]string, 0, 1+len(skills)+len(abilities))
	out = append(out, recommendationHeader)
	out = append(out, skills...)
	out = append(out, abilities...)
	return out
}

// rankedLines renders up to three "{label} {rank}: {name} (Importance: {v})"
// lines, skipping entries that carry no value.
func rankedLines(label string, entries []competency.Entry) []string {
	var lines []string
	for _, e := range entries {
		if e.DataValue == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %d: %s (Importance: %.1f)",
			label, len(lines)+1, e.ElementName, *e.DataValue))
		if len(lines) == maxPerCategory {
			break
		}
	}
	return lines
}

// FormatSummary renders the framework as deterministic multi-line
// text: a SKILLS section then an ABILITIES section (each only if
// present), with IMPORTANCE and LEVEL subsections (each only if
// present) listing up to three ranked entries. Entries without a
// value render as "N/A".
func FormatSummary(framework competency.Grouped) string {
	var sb strings.Builder
	writeSection(&sb, "SKILLS", framework[typeSkill])
	writeSection(&sb, "ABILITIES", framework[typeAbility])
	return strings.TrimRight(sb.String(), "\n")
}

func writeSection(sb *strings.Builder, heading string, scales map[string][]competency.Entry) {
	if len(scales) == 0 {
		return
	}
	sb.WriteString(heading)
	sb.WriteString("\n")
	writeSubsection(sb, "IMPORTANCE", scales[scaleImportance])
	writeSubsection(sb, "LEVEL", scales[scaleLevel])
}

func writeSubsection(sb *strings.Builder, heading string, entries []competency.Entry) {
	if len(entries) == 0 {
		return
	}
	sb.WriteString("  ")
	sb.WriteString(heading)
	sb.WriteString("\n")
	for i, e := range entries {
		if i == maxPerCategory {
			break
		}
		fmt.Fprintf(sb, "    %d. %s (%s)\n", i+1, e.ElementName, formatValue(e.DataValue))
	}
}

func formatValue(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *v)
}
