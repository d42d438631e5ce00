package handlers

import (
	"net/http"
	"time"

	"github.com/andrewpaige1/mindmap-api/utils"
)

const (
	serviceName    = "Mind Map Generator"
	serviceVersion = "1.0.0"
)

// GET /api/mindmap/health
func (db *DBHandler) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "UP",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   serviceName,
		"version":   serviceVersion,
	})
}

// GET /api/mindmap/status
func (db *DBHandler) Status(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, "Mind Map API is running!")
}
