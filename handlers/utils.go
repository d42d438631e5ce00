package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/andrewpaige1/mindmap-api/auth"
	"github.com/andrewpaige1/mindmap-api/extract"
	"github.com/andrewpaige1/mindmap-api/logger"
	"github.com/andrewpaige1/mindmap-api/mindmap"
	"github.com/andrewpaige1/mindmap-api/models"
	"github.com/andrewpaige1/mindmap-api/utils"
)

// SourceHeader tells clients whether the map came from the model or the local fallback.
const SourceHeader = "X-MindMap-Source"

type DBHandler struct {
	*gorm.DB
	Generator      *mindmap.Generator
	Extractor      *extract.Extractor
	Share          *auth.ShareSigner
	Log            *logger.Logger
	MaxUploadBytes int64
}

// MindMapResponse is a saved mind map as returned to clients.
type MindMapResponse struct {
	ID string `json:"id"`
	*models.MindMap
	Source    string `json:"source"`
	IsPublic  bool   `json:"isPublic"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func (db *DBHandler) toResponse(saved *models.SavedMindMap) (MindMapResponse, error) {
	m, err := saved.ToMindMap()
	if err != nil {
		return MindMapResponse{}, err
	}
	return MindMapResponse{
		ID:        saved.PublicID,
		MindMap:   m,
		Source:    saved.Source,
		IsPublic:  saved.IsPublic,
		CreatedAt: saved.CreatedAt.Format(time.RFC3339),
		UpdatedAt: saved.UpdatedAt.Format(time.RFC3339),
	}, nil
}

func writeGenerated(w http.ResponseWriter, res mindmap.Result) {
	w.Header().Set(SourceHeader, res.Source)
	utils.WriteJSON(w, http.StatusOK, res.MindMap)
}

func decodeBody(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(v)
}
