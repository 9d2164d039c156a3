package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/competency-model/internal/competency"
)

func diagramFramework() competency.Grouped {
	g := make(competency.Grouped)
	g.Add("Skill", "Importance", competency.Entry{ElementName: "Programming", DataValue: value(4.5)})
	g.Add("Skill", "Importance", competency.Entry{ElementName: "Critical Thinking", DataValue: value(4.1)})
	g.Add("Skill", "Level", competency.Entry{ElementName: "Programming", DataValue: value(6.2)})
	g.Add("Ability", "Importance", competency.Entry{ElementName: "Oral Comprehension", DataValue: value(4.2)})
	return g
}

func TestBuildDiagram_IsATree(t *testing.T) {
	d := BuildDiagram("Software Developer", diagramFramework())

	// edge count = node count - 1
	assert.Len(t, d.Edges, len(d.Nodes)-1)

	// exactly one root, every other node has exactly one inbound edge
	inbound := make(map[string]int)
	for _, n := range d.Nodes {
		inbound[n.ID] = 0
	}
	for _, e := range d.Edges {
		_, fromKnown := inbound[e.From]
		require.True(t, fromKnown, "edge from unknown node %s", e.From)
		inbound[e.To]++
	}
	for _, n := range d.Nodes {
		if n.Type == "job_root" {
			assert.Equal(t, 0, inbound[n.ID])
			continue
		}
		assert.Equal(t, 1, inbound[n.ID], "node %s", n.ID)
	}
}

func TestBuildDiagram_LevelsAndTypes(t *testing.T) {
	d := BuildDiagram("Software Developer", diagramFramework())

	byType := make(map[string][]Node)
	for _, n := range d.Nodes {
		byType[n.Type] = append(byType[n.Type], n)
	}

	require.Len(t, byType["job_root"], 1)
	assert.Equal(t, "Software Developer", byType["job_root"][0].Label)
	assert.Equal(t, 0, byType["job_root"][0].Level)

	assert.Len(t, byType["element_type"], 2)
	assert.Len(t, byType["scale"], 3)
	assert.Len(t, byType["competency"], 4)

	for _, n := range byType["scale"] {
		assert.Equal(t, 2, n.Level)
		assert.NotEmpty(t, n.Group)
	}
	for _, n := range byType["competency"] {
		assert.Equal(t, 3, n.Level)
		assert.NotNil(t, n.Importance)
	}
}

func TestBuildDiagram_CompetencyEdgeWeights(t *testing.T) {
	g := make(competency.Grouped)
	g.Add("Skill", "Importance", competency.Entry{ElementName: "Programming", DataValue: value(4.5)})
	g.Add("Skill", "Importance", competency.Entry{ElementName: "Unrated"})

	d := BuildDiagram("Software Developer", g)

	weights := make(map[string]float64)
	for _, e := range d.Edges {
		weights[e.To] = e.Weight
	}
	assert.InDelta(t, 4.5, weights["comp_0_0_0"], 0.001)
	assert.Zero(t, weights["comp_0_0_1"])
}

func TestBuildDiagram_Categories(t *testing.T) {
	d := BuildDiagram("Software Developer", diagramFramework())

	// element types first, then one entry per (type, scale) pair
	assert.Equal(t, []string{
		"Ability", "Skill",
		"Ability - Importance",
		"Skill - Importance", "Skill - Level",
	}, d.Categories)

	typeCount := 2
	pairCount := 3
	assert.Len(t, d.Categories, typeCount+pairCount)
}

func TestBuildDiagram_EmptyFramework(t *testing.T) {
	d := BuildDiagram("Anything", make(competency.Grouped))

	require.Len(t, d.Nodes, 1)
	assert.Empty(t, d.Edges)
	assert.Empty(t, d.Categories)
}
