package models

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// SavedMindMap is a generated mind map persisted for a user
type SavedMindMap struct {
	gorm.Model
	PublicID    string `gorm:"size:100;uniqueIndex"`
	UserID      uint   `gorm:"not null;index"`
	User        User   `gorm:"foreignKey:UserID" json:"-"`
	Title       string `gorm:"not null;size:200"`
	Description string `gorm:"size:1000"`
	RootNodeID  string `gorm:"size:200"`
	Source      string `gorm:"size:20"`
	IsPublic    bool   `gorm:"default:false"`

	// Nodes and their connections, stored as the MindMap JSON document
	Graph datatypes.JSON `json:"-"`
}

func NewSavedMindMap(m *MindMap, source string) (*SavedMindMap, error) {
	graph, err := json.Marshal(m.Nodes)
	if err != nil {
		return nil, fmt.Errorf("encode mind map nodes: %w", err)
	}
	return &SavedMindMap{
		Title:       m.Title,
		Description: m.Description,
		RootNodeID:  m.RootNodeID,
		Source:      source,
		Graph:       datatypes.JSON(graph),
	}, nil
}

func (s *SavedMindMap) ToMindMap() (*MindMap, error) {
	m := NewMindMap(s.Title, s.Description)
	m.RootNodeID = s.RootNodeID
	if len(s.Graph) > 0 {
		if err := json.Unmarshal(s.Graph, &m.Nodes); err != nil {
			return nil, fmt.Errorf("decode mind map %s: %w", s.PublicID, err)
		}
	}
	return m, nil
}
