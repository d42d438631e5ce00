package handlers

import (
	"net/http"

	"github.com/andrewpaige1/mindmap-api/middleware"
	"github.com/andrewpaige1/mindmap-api/models"
	"github.com/andrewpaige1/mindmap-api/utils"
)

type userResponse struct {
	Nickname     string `json:"nickname"`
	MindMapCount int64  `json:"mindMapCount"`
}

// GET /api/users/me
func (db *DBHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", "No user found")
		return
	}

	var count int64
	if err := db.Model(&models.SavedMindMap{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to count mind maps")
		return
	}
	utils.WriteJSON(w, http.StatusOK, userResponse{Nickname: user.Nickname, MindMapCount: count})
}
