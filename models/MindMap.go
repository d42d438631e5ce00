package models

// MindMap is a generated concept graph ready for rendering.
//
// Node ids are expected to be unique but this is not enforced: nodes are only
// ever appended, so a source that repeats an id produces duplicate entries.
type MindMap struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	RootNodeID  string        `json:"rootNodeId,omitempty"`
	Nodes       []MindMapNode `json:"nodes"`
}

// Stats summarizes the shape of a mind map for logs and responses.
type Stats struct {
	Nodes      int            `json:"nodes"`
	Edges      int            `json:"edges"`
	Categories map[string]int `json:"categories"`
}

func NewMindMap(title, description string) *MindMap {
	return &MindMap{
		Title:       title,
		Description: description,
		Nodes:       []MindMapNode{},
	}
}

func (m *MindMap) AddNode(node MindMapNode) {
	if node.Connections == nil {
		node.Connections = []MindMapEdge{}
	}
	m.Nodes = append(m.Nodes, node)
}

// NodeByID returns the first node with the given id, or nil.
func (m *MindMap) NodeByID(id string) *MindMapNode {
	for i := range m.Nodes {
		if m.Nodes[i].ID == id {
			return &m.Nodes[i]
		}
	}
	return nil
}

// ConnectNodes appends an edge to the source node. It reports false when no
// node with sourceID exists; the target is not checked.
func (m *MindMap) ConnectNodes(sourceID, targetID, relationship string) bool {
	source := m.NodeByID(sourceID)
	if source == nil {
		return false
	}
	source.Connections = append(source.Connections, MindMapEdge{
		Target:       targetID,
		Relationship: relationship,
	})
	return true
}

func (m *MindMap) Stats() Stats {
	s := Stats{Categories: map[string]int{}}
	for _, n := range m.Nodes {
		s.Nodes++
		s.Edges += len(n.Connections)
		s.Categories[n.Category]++
	}
	return s
}
