package handlers

import (
	"net/http"

	"github.com/andrewpaige1/mindmap-api/utils"
)

// POST /api/mindmaps/{mindMapID}/share
func (db *DBHandler) CreateShareLink(w http.ResponseWriter, r *http.Request) {
	if db.Share == nil {
		utils.WriteError(w, http.StatusNotImplemented, "Sharing disabled", "Share links are not configured")
		return
	}
	saved := db.loadOwned(w, r)
	if saved == nil {
		return
	}

	token, err := db.Share.CreateToken(saved.PublicID)
	if err != nil {
		db.Log.Error("failed to sign share token", "public_id", saved.PublicID, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", "Failed to generate token")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GET /api/shared/{token}
func (db *DBHandler) GetSharedMindMap(w http.ResponseWriter, r *http.Request) {
	if db.Share == nil {
		utils.WriteError(w, http.StatusNotImplemented, "Sharing disabled", "Share links are not configured")
		return
	}
	publicID, err := db.Share.VerifyToken(r.PathValue("token"))
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", "Invalid or expired share link")
		return
	}

	saved, err := db.findMindMap(publicID)
	if err != nil {
		utils.WriteError(w, http.StatusNotFound, "Not found", "MindMap not found")
		return
	}
	response, err := db.toResponse(saved)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Internal error", err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, response)
}
