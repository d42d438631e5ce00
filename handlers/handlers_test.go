package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/andrewpaige1/mindmap-api/auth"
	"github.com/andrewpaige1/mindmap-api/config"
	"github.com/andrewpaige1/mindmap-api/extract"
	"github.com/andrewpaige1/mindmap-api/llm"
	"github.com/andrewpaige1/mindmap-api/logger"
	"github.com/andrewpaige1/mindmap-api/middleware"
	"github.com/andrewpaige1/mindmap-api/mindmap"
	"github.com/andrewpaige1/mindmap-api/models"
	"github.com/andrewpaige1/mindmap-api/utils"
)

const completion = `Here you go:
{"title":"Photosynthesis","description":"How plants eat","nodes":[
  {"id":"root","label":"Photosynthesis","category":"root","level":0,
   "connections":[{"target":"light","relationship":"needs"}]},
  {"id":"light","label":"Light","category":"concept","level":1}
]}`

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return db
}

func newTestHandler(t *testing.T, provider llm.Provider) *DBHandler {
	t.Helper()
	signer, err := auth.NewShareSigner("test-secret", time.Hour)
	require.NoError(t, err)
	log := logger.NewNop()
	return &DBHandler{
		DB:             openTestDB(t),
		Generator:      mindmap.NewGenerator(provider, log),
		Extractor:      extract.New(nil),
		Share:          signer,
		Log:            log,
		MaxUploadBytes: 1 << 20,
	}
}

func seedMindMap(t *testing.T, h *DBHandler, auth0ID, publicID string, public bool) (*models.User, *models.SavedMindMap) {
	t.Helper()
	user := &models.User{Auth0ID: auth0ID, Nickname: auth0ID + "-nick"}
	require.NoError(t, h.Create(user).Error)

	m := models.NewMindMap("Seeded", "seeded map")
	m.RootNodeID = "r"
	m.AddNode(models.MindMapNode{ID: "r", Label: "Root", Category: models.CategoryRoot})
	saved, err := models.NewSavedMindMap(m, models.SourceFallback)
	require.NoError(t, err)
	saved.PublicID = publicID
	saved.UserID = user.ID
	saved.IsPublic = public
	require.NoError(t, h.Create(saved).Error)
	return user, saved
}

func asUser(r *http.Request, user *models.User) *http.Request {
	ctx := utils.WithAuth0Subject(r.Context(), user.Auth0ID)
	return r.WithContext(middleware.WithUser(ctx, user))
}

func decodeMindMap(t *testing.T, rec *httptest.ResponseRecorder) models.MindMap {
	t.Helper()
	var m models.MindMap
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&m))
	return m
}

func TestGenerateMindMapFromModel(t *testing.T) {
	h := newTestHandler(t, llm.NewStatic(completion))

	req := httptest.NewRequest(http.MethodPost, "/api/mindmap/generate", strings.NewReader(`{"text":"plants"}`))
	rec := httptest.NewRecorder()
	h.GenerateMindMap(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SourceLLM, rec.Header().Get(SourceHeader))
	m := decodeMindMap(t, rec)
	assert.Equal(t, "Photosynthesis", m.Title)
	assert.Equal(t, "root", m.RootNodeID)
	require.Len(t, m.Nodes, 2)
	assert.Equal(t, "needs", m.Nodes[0].Connections[0].Relationship)
}

func TestGenerateMindMapFallsBack(t *testing.T) {
	h := newTestHandler(t, llm.Offline())

	body := `{"text":"Cells\nCells are the basic unit of life. They divide."}`
	req := httptest.NewRequest(http.MethodPost, "/api/mindmap/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.GenerateMindMap(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SourceFallback, rec.Header().Get(SourceHeader))
	m := decodeMindMap(t, rec)
	assert.Equal(t, mindmap.FallbackTitle, m.Title)
	require.NotEmpty(t, m.Nodes)
	assert.Equal(t, "Cells", m.Nodes[0].Label)
}

func TestGenerateMindMapRejectsBadBodies(t *testing.T) {
	for _, body := range []string{``, `{`, `{"text":"   "}`} {
		provider := llm.NewStatic(completion)
		h := newTestHandler(t, provider)

		req := httptest.NewRequest(http.MethodPost, "/api/mindmap/generate", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.GenerateMindMap(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Zero(t, provider.Calls())

		var e utils.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
		assert.Equal(t, http.StatusBadRequest, e.Status)
	}
}

func TestGenerateAndSave(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		provider := llm.NewStatic(completion)
		h := newTestHandler(t, provider)

		req := httptest.NewRequest(http.MethodPost, "/api/mindmap/generate?save=true", strings.NewReader(`{"text":"x"}`))
		rec := httptest.NewRecorder()
		h.GenerateMindMap(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Zero(t, provider.Calls())
	})

	t.Run("signed in", func(t *testing.T) {
		h := newTestHandler(t, llm.NewStatic(completion))

		req := httptest.NewRequest(http.MethodPost, "/api/mindmap/generate?save=true", strings.NewReader(`{"text":"x"}`))
		req = req.WithContext(utils.WithAuth0Subject(req.Context(), "auth0|new"))
		rec := httptest.NewRecorder()
		h.GenerateMindMap(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp MindMapResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, models.SourceLLM, resp.Source)
		assert.False(t, resp.IsPublic)

		var saved models.SavedMindMap
		require.NoError(t, h.Preload("User").Where("public_id = ?", resp.ID).First(&saved).Error)
		assert.Equal(t, "auth0|new", saved.User.Auth0ID)
		m, err := saved.ToMindMap()
		require.NoError(t, err)
		assert.Len(t, m.Nodes, 2)
	})
}

func multipartUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/mindmap/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadMindMap(t *testing.T) {
	h := newTestHandler(t, llm.Offline())

	rec := httptest.NewRecorder()
	h.UploadMindMap(rec, multipartUpload(t, "notes.txt", []byte("Gravity\nMass attracts mass. Example: apples fall.")))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SourceFallback, rec.Header().Get(SourceHeader))
	m := decodeMindMap(t, rec)
	assert.Equal(t, "Gravity", m.Nodes[0].Label)
}

func TestUploadMindMapErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		limit    int64
		want     int
	}{
		{"too large", "big.txt", bytes.Repeat([]byte("a"), 8<<10), 1 << 10, http.StatusRequestEntityTooLarge},
		{"binary", "blob.bin", []byte{0x00, 0x01, 0x02, 0xfe, 0x00}, 1 << 20, http.StatusUnsupportedMediaType},
		{"empty", "empty.txt", nil, 1 << 20, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, llm.Offline())
			h.MaxUploadBytes = tt.limit

			rec := httptest.NewRecorder()
			h.UploadMindMap(rec, multipartUpload(t, tt.filename, tt.content))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestGetMindMapByIDVisibility(t *testing.T) {
	h := newTestHandler(t, llm.Offline())
	owner, private := seedMindMap(t, h, "auth0|owner", "priv", false)
	other := &models.User{Auth0ID: "auth0|other"}
	require.NoError(t, h.Create(other).Error)

	get := func(r *http.Request) *httptest.ResponseRecorder {
		r.SetPathValue("mindMapID", private.PublicID)
		rec := httptest.NewRecorder()
		h.GetMindMapByID(rec, r)
		return rec
	}
	newReq := func() *http.Request {
		return httptest.NewRequest(http.MethodGet, "/api/mindmaps/"+private.PublicID, nil)
	}

	assert.Equal(t, http.StatusUnauthorized, get(newReq()).Code)
	assert.Equal(t, http.StatusForbidden, get(asUser(newReq(), other)).Code)

	rec := get(asUser(newReq(), owner))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp MindMapResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "priv", resp.ID)
	assert.Equal(t, "Seeded", resp.Title)
	assert.Equal(t, "r", resp.RootNodeID)

	require.NoError(t, h.Model(private).Update("is_public", true).Error)
	assert.Equal(t, http.StatusOK, get(newReq()).Code)

	missing := httptest.NewRequest(http.MethodGet, "/api/mindmaps/nope", nil)
	missing.SetPathValue("mindMapID", "nope")
	rec = httptest.NewRecorder()
	h.GetMindMapByID(rec, missing)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMindMaps(t *testing.T) {
	h := newTestHandler(t, llm.Offline())
	owner, _ := seedMindMap(t, h, "auth0|a", "one", false)

	m := models.NewMindMap("Public", "")
	saved, err := models.NewSavedMindMap(m, models.SourceLLM)
	require.NoError(t, err)
	saved.PublicID = "two"
	saved.UserID = owner.ID
	saved.IsPublic = true
	require.NoError(t, h.Create(saved).Error)

	rec := httptest.NewRecorder()
	h.GetMindMapsForCurrentUser(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/mindmaps", nil), owner))
	require.Equal(t, http.StatusOK, rec.Code)
	var mine []MindMapResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&mine))
	assert.Len(t, mine, 2)

	req := httptest.NewRequest(http.MethodGet, "/api/users/"+owner.Nickname+"/mindmaps", nil)
	req.SetPathValue("nickname", owner.Nickname)
	rec = httptest.NewRecorder()
	h.GetMindMapsForUser(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var public []MindMapResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&public))
	require.Len(t, public, 1)
	assert.Equal(t, "two", public[0].ID)

	rec = httptest.NewRecorder()
	h.GetMindMapsForCurrentUser(rec, httptest.NewRequest(http.MethodGet, "/api/mindmaps", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateMindMapByID(t *testing.T) {
	h := newTestHandler(t, llm.Offline())
	owner, saved := seedMindMap(t, h, "auth0|owner", "upd", false)
	other := &models.User{Auth0ID: "auth0|other"}
	require.NoError(t, h.Create(other).Error)

	put := func(user *models.User, body string) *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPut, "/api/mindmaps/upd", strings.NewReader(body))
		r.SetPathValue("mindMapID", saved.PublicID)
		rec := httptest.NewRecorder()
		h.UpdateMindMapByID(rec, asUser(r, user))
		return rec
	}

	assert.Equal(t, http.StatusForbidden, put(other, `{"title":"Hijacked"}`).Code)
	assert.Equal(t, http.StatusBadRequest, put(owner, `{"title":""}`).Code)

	rec := put(owner, `{"title":"Renamed","isPublic":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp MindMapResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Renamed", resp.Title)
	assert.True(t, resp.IsPublic)
	assert.Equal(t, "seeded map", resp.Description)
	assert.Len(t, resp.Nodes, 1)
}

func TestDeleteMindMapByID(t *testing.T) {
	h := newTestHandler(t, llm.Offline())
	owner, saved := seedMindMap(t, h, "auth0|owner", "del", false)

	r := httptest.NewRequest(http.MethodDelete, "/api/mindmaps/del", nil)
	r.SetPathValue("mindMapID", saved.PublicID)
	rec := httptest.NewRecorder()
	h.DeleteMindMapByID(rec, asUser(r, owner))
	require.Equal(t, http.StatusNoContent, rec.Code)

	var count int64
	require.NoError(t, h.Model(&models.SavedMindMap{}).Where("public_id = ?", "del").Count(&count).Error)
	assert.Zero(t, count)
}

func TestShareLinkRoundTrip(t *testing.T) {
	h := newTestHandler(t, llm.Offline())
	owner, saved := seedMindMap(t, h, "auth0|owner", "shared", false)

	r := httptest.NewRequest(http.MethodPost, "/api/mindmaps/shared/share", nil)
	r.SetPathValue("mindMapID", saved.PublicID)
	rec := httptest.NewRecorder()
	h.CreateShareLink(rec, asUser(r, owner))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	token := body["token"]
	require.NotEmpty(t, token)

	r = httptest.NewRequest(http.MethodGet, "/api/shared/"+token, nil)
	r.SetPathValue("token", token)
	rec = httptest.NewRecorder()
	h.GetSharedMindMap(rec, r)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp MindMapResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "shared", resp.ID)

	r = httptest.NewRequest(http.MethodGet, "/api/shared/garbage", nil)
	r.SetPathValue("token", "garbage")
	rec = httptest.NewRecorder()
	h.GetSharedMindMap(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestShareDisabled(t *testing.T) {
	h := newTestHandler(t, llm.Offline())
	h.Share = nil

	r := httptest.NewRequest(http.MethodGet, "/api/shared/x", nil)
	r.SetPathValue("token", "x")
	rec := httptest.NewRecorder()
	h.GetSharedMindMap(rec, r)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestHealthAndStatus(t *testing.T) {
	h := &DBHandler{}

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/api/mindmap/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "UP", health["status"])
	assert.Equal(t, "Mind Map Generator", health["service"])
	assert.Equal(t, "1.0.0", health["version"])
	assert.NotEmpty(t, health["timestamp"])

	rec = httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/mindmap/status", nil))
	var status string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&status))
	assert.Equal(t, "Mind Map API is running!", status)
}

func TestGetCurrentUser(t *testing.T) {
	h := newTestHandler(t, llm.Offline())
	owner, _ := seedMindMap(t, h, "auth0|me", "mine", false)

	rec := httptest.NewRecorder()
	h.GetCurrentUser(rec, asUser(httptest.NewRequest(http.MethodGet, "/api/users/me", nil), owner))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp userResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "auth0|me-nick", resp.Nickname)
	assert.EqualValues(t, 1, resp.MindMapCount)
}
