package models

const (
	CategoryRoot       = "root"
	CategoryConcept    = "concept"
	CategoryExample    = "example"
	CategoryDefinition = "definition"
)

// MindMapNode is a single concept. Category is usually one of the Category*
// constants, but unrecognized values are kept as-is.
type MindMapNode struct {
	ID          string        `json:"id"`
	Label       string        `json:"label"`
	Category    string        `json:"category"`
	Tooltip     string        `json:"tooltip"`
	Level       int           `json:"level"`
	Connections []MindMapEdge `json:"connections"`
}
