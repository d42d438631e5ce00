package handlers

import (
	"errors"
	"net/http"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"

	"github.com/andrewpaige1/mindmap-api/middleware"
	"github.com/andrewpaige1/mindmap-api/mindmap"
	"github.com/andrewpaige1/mindmap-api/models"
	"github.com/andrewpaige1/mindmap-api/utils"
)

// saveGenerated persists a generated map for the caller and writes it with 201.
func (db *DBHandler) saveGenerated(w http.ResponseWriter, r *http.Request, res mindmap.Result) {
	auth0ID, ok := utils.GetAuth0ID(r)
	if !ok || auth0ID == "" {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", "Saving a mind map requires a signed in user")
		return
	}

	var user models.User
	if err := db.Where(models.User{Auth0ID: auth0ID}).FirstOrCreate(&user).Error; err != nil {
		db.Log.Error("failed to load user", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to load user")
		return
	}

	saved, err := models.NewSavedMindMap(res.MindMap, res.Source)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	publicID, err := gonanoid.New()
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to generate public_id")
		return
	}
	saved.PublicID = publicID
	saved.UserID = user.ID

	if err := db.Create(saved).Error; err != nil {
		db.Log.Error("failed to save mind map", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to save mind map")
		return
	}

	response, err := db.toResponse(saved)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	w.Header().Set(SourceHeader, res.Source)
	utils.WriteJSON(w, http.StatusCreated, response)
}

func (db *DBHandler) findMindMap(publicID string) (*models.SavedMindMap, error) {
	var saved models.SavedMindMap
	if err := db.Preload("User").Where("public_id = ?", publicID).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// loadOwned fetches the map named in the path and checks the caller owns it.
// It writes the error response itself and returns nil when the request should stop.
func (db *DBHandler) loadOwned(w http.ResponseWriter, r *http.Request) *models.SavedMindMap {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", "No user found")
		return nil
	}
	mindMapID := r.PathValue("mindMapID")
	if mindMapID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Bad request", "MindMap ID is required")
		return nil
	}
	saved, err := db.findMindMap(mindMapID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, http.StatusNotFound, "Not found", "MindMap not found")
		} else {
			utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to fetch mind map")
		}
		return nil
	}
	if saved.UserID != user.ID {
		utils.WriteError(w, http.StatusForbidden, "Forbidden", "You do not own this mind map")
		return nil
	}
	return saved
}

func (db *DBHandler) writeList(w http.ResponseWriter, saved []models.SavedMindMap) {
	result := make([]MindMapResponse, 0, len(saved))
	for i := range saved {
		resp, err := db.toResponse(&saved[i])
		if err != nil {
			db.Log.Error("skipping unreadable mind map", "public_id", saved[i].PublicID, "error", err)
			continue
		}
		result = append(result, resp)
	}
	utils.WriteJSON(w, http.StatusOK, result)
}

// GET /api/mindmaps
func (db *DBHandler) GetMindMapsForCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", "No user found")
		return
	}

	var saved []models.SavedMindMap
	if err := db.Where("user_id = ?", user.ID).Order("created_at desc").Find(&saved).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to fetch mind maps")
		return
	}
	db.writeList(w, saved)
}

// GET /api/users/{nickname}/mindmaps
func (db *DBHandler) GetMindMapsForUser(w http.ResponseWriter, r *http.Request) {
	nickname := r.PathValue("nickname")
	if nickname == "" {
		utils.WriteError(w, http.StatusBadRequest, "Bad request", "Nickname is required")
		return
	}

	var user models.User
	if err := db.Where("nickname = ?", nickname).First(&user).Error; err != nil {
		utils.WriteError(w, http.StatusNotFound, "Not found", "User not found")
		return
	}

	auth0ID, ok := utils.GetAuth0ID(r)
	query := db.Where("user_id = ?", user.ID)
	if !(ok && user.Auth0ID == auth0ID) {
		// Only show public mindmaps if not owner
		query = query.Where("is_public = ?", true)
	}

	var saved []models.SavedMindMap
	if err := query.Order("created_at desc").Find(&saved).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to fetch mind maps")
		return
	}
	db.writeList(w, saved)
}

// GET /api/mindmaps/{mindMapID}
func (db *DBHandler) GetMindMapByID(w http.ResponseWriter, r *http.Request) {
	mindMapID := r.PathValue("mindMapID")
	if mindMapID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Bad request", "MindMap ID is required")
		return
	}
	saved, err := db.findMindMap(mindMapID)
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Not found", "MindMap not found")
		return
	}

	if !saved.IsPublic {
		// Private: check authentication and ownership
		auth0ID, ok := utils.GetAuth0ID(r)
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", "This mind map is private")
			return
		}
		if saved.User.Auth0ID != auth0ID {
			utils.WriteError(w, http.StatusForbidden, "Forbidden", "This mind map is private")
			return
		}
	}

	response, err := db.toResponse(saved)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, response)
}

// PUT /api/mindmaps/{mindMapID}
func (db *DBHandler) UpdateMindMapByID(w http.ResponseWriter, r *http.Request) {
	saved := db.loadOwned(w, r)
	if saved == nil {
		return
	}

	var req struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		IsPublic    *bool   `json:"isPublic,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Title != nil && *req.Title == "" {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", "title cannot be empty")
		return
	}

	updated := false
	if req.Title != nil && saved.Title != *req.Title {
		saved.Title = *req.Title
		updated = true
	}
	if req.Description != nil && saved.Description != *req.Description {
		saved.Description = *req.Description
		updated = true
	}
	if req.IsPublic != nil && saved.IsPublic != *req.IsPublic {
		saved.IsPublic = *req.IsPublic
		updated = true
	}
	if updated {
		if err := db.Save(saved).Error; err != nil {
			utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to update mind map")
			return
		}
	}

	response, err := db.toResponse(saved)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, response)
}

// DELETE /api/mindmaps/{mindMapID}
func (db *DBHandler) DeleteMindMapByID(w http.ResponseWriter, r *http.Request) {
	saved := db.loadOwned(w, r)
	if saved == nil {
		return
	}
	if err := db.Delete(saved).Error; err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to delete mind map")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
