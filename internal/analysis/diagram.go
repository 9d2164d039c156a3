package analysis

import (
	"fmt"

	"github.com/jonathan/competency-model/internal/competency"
)

// Node is one vertex of the structural diagram. Importance is set on
// competency nodes; Group names the owning element type on scale nodes.
type Node struct {
	ID         string   `json:"id"`
	Label      string   `json:"label"`
	Type       string   `json:"type"` // job_root, element_type, scale, competency
	Level      int      `json:"level"`
	Importance *float64 `json:"importance,omitempty"`
	Group      string   `json:"group,omitempty"`
}

// Edge is a directed parent-to-child connection.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// Diagram is a rendering-ready tree of the framework: one root, one
// node per element type, scale and competency, and one inbound edge
// per non-root node. Categories flattens the hierarchy for legends:
// element types first, then "{type} - {scale}" pairs.
type Diagram struct {
	Nodes      []Node   `json:"nodes"`
	Edges      []Edge   `json:"edges"`
	Categories []string `json:"categories"`
}

const rootID = "job_root"

// BuildDiagram walks the framework once and emits the 4-level tree.
func BuildDiagram(jobTitle string, framework competency.Grouped) *Diagram {
	d := &Diagram{
		Nodes:      []Node{{ID: rootID, Label: jobTitle, Type: "job_root", Level: 0}},
		Edges:      []Edge{},
		Categories: []string{},
	}

	elementTypes := framework.ElementTypes()
	d.Categories = append(d.Categories, elementTypes...)

	for i, elementType := range elementTypes {
		typeID := fmt.Sprintf("type_%d", i)
		d.Nodes = append(d.Nodes, Node{
			ID:    typeID,
			Label: elementType,
			Type:  "element_type",
			Level: 1,
		})
		d.Edges = append(d.Edges, Edge{From: rootID, To: typeID, Weight: 1})

		for j, scaleName := range framework.ScaleNames(elementType) {
			scaleID := fmt.Sprintf("scale_%d_%d", i, j)
			d.Nodes = append(d.Nodes, Node{
				ID:    scaleID,
				Label: scaleName,
				Type:  "scale",
				Level: 2,
				Group: elementType,
			})
			d.Edges = append(d.Edges, Edge{From: typeID, To: scaleID, Weight: 1})
			d.Categories = append(d.Categories, fmt.Sprintf("%s - %s", elementType, scaleName))

			for k, entry := range framework[elementType][scaleName] {
				compID := fmt.Sprintf("comp_%d_%d_%d", i, j, k)
				d.Nodes = append(d.Nodes, Node{
					ID:         compID,
					Label:      entry.ElementName,
					Type:       "competency",
					Level:      3,
					Importance: entry.DataValue,
				})
				weight := 0.0
				if entry.DataValue != nil {
					weight = *entry.DataValue
				}
				d.Edges = append(d.Edges, Edge{From: scaleID, To: compID, Weight: weight})
			}
		}
	}

	return d
}
