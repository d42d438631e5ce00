package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/andrewpaige1/mindmap-api/extract"
	"github.com/andrewpaige1/mindmap-api/utils"
)

type generateRequest struct {
	Text string `json:"text"`
}

// POST /api/mindmap/generate
func (db *DBHandler) GenerateMindMap(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body", "text is required")
		return
	}
	save := r.URL.Query().Get("save") == "true"
	if _, ok := utils.GetAuth0ID(r); save && !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized", "Saving a mind map requires a signed in user")
		return
	}

	res := db.Generator.Generate(r.Context(), req.Text)
	db.Log.Info("generated mind map", "source", res.Source, "nodes", len(res.MindMap.Nodes), "save", save)
	if save {
		db.saveGenerated(w, r, res)
		return
	}
	writeGenerated(w, res)
}

// POST /api/mindmap/upload
func (db *DBHandler) UploadMindMap(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, db.MaxUploadBytes)
	if err := r.ParseMultipartForm(db.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteError(w, http.StatusRequestEntityTooLarge, "File size exceeds the maximum limit",
				"Please upload a smaller file")
			return
		}
		utils.WriteError(w, http.StatusBadRequest, "Invalid upload", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid upload", "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid upload", "could not read file")
		return
	}

	text, err := db.Extractor.Extract(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		db.Log.Warn("failed to extract text", "file", header.Filename, "size", len(data), "error", err)
		status := http.StatusBadRequest
		if errors.Is(err, extract.ErrUnsupportedType) {
			status = http.StatusUnsupportedMediaType
		}
		utils.WriteError(w, status, "Invalid file format", err.Error())
		return
	}

	res := db.Generator.Generate(r.Context(), text)
	db.Log.Info("generated mind map from file", "file", header.Filename, "source", res.Source, "nodes", len(res.MindMap.Nodes))
	writeGenerated(w, res)
}
