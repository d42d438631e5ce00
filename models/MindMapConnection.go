package models

// MindMapEdge is an outgoing connection from the node that holds it.
// Target is not required to exist in the same map.
type MindMapEdge struct {
	Target       string `json:"target"`
	Relationship string `json:"relationship"` // e.g. "relates to"
}
