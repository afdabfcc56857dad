package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameday/publisher/internal/auth"
	"gameday/publisher/internal/database"
	"gameday/publisher/internal/feed"
	"gameday/publisher/internal/server"
	"gameday/publisher/internal/server/api"
	"gameday/publisher/internal/store"
)

const (
	testUser = "admin"
	testPass = "hunter2-but-longer"
)

type adminEnv struct {
	t          *testing.T
	ts         *httptest.Server
	client     *http.Client
	csrf       string
	outputPath string
}

func newAdminEnv(t *testing.T) *adminEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := database.NewDB(database.NewConfig(filepath.Join(dir, "gameday.db")))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	outputPath := filepath.Join(dir, "public", "current.json")
	gen := feed.NewGenerator(st, outputPath)
	sessions := auth.NewManager(2*time.Hour, 5*time.Minute)
	creds := auth.Credentials{User: testUser, Pass: testPass}

	ts := httptest.NewServer(server.NewRouter(st, sessions, creds, gen))
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &adminEnv{
		t:          t,
		ts:         ts,
		client:     &http.Client{Jar: jar},
		outputPath: outputPath,
	}
}

// do sends a JSON request through the cookie-jar client. The CSRF token,
// once captured by login, rides along on every call; mutating handlers
// reject its absence, reads ignore it.
func (e *adminEnv) do(method, path string, body any) (*http.Response, map[string]any) {
	e.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, e.ts.URL+path, &buf)
	require.NoError(e.t, err)
	req.Header.Set("Content-Type", "application/json")
	if e.csrf != "" {
		req.Header.Set(api.CSRFHeader, e.csrf)
	}

	resp, err := e.client.Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (e *adminEnv) login(t *testing.T) {
	t.Helper()

	resp, body := e.do(http.MethodPost, "/admin/login",
		map[string]string{"username": testUser, "password": testPass})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	csrf, _ := body["csrf_token"].(string)
	require.NotEmpty(t, csrf)
	e.csrf = csrf
}

func (e *adminEnv) createGame(t *testing.T, title string) int64 {
	t.Helper()

	resp, body := e.do(http.MethodPost, "/admin/games", map[string]any{
		"title":     title,
		"home_team": "Devils",
		"away_team": "Rangers",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id, ok := body["id"].(float64)
	require.True(t, ok, "create response missing id: %v", body)
	return int64(id)
}

func (e *adminEnv) readSnapshot(t *testing.T) map[string]any {
	t.Helper()

	raw, err := os.ReadFile(e.outputPath)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func TestAuthenticationRequired(t *testing.T) {
	env := newAdminEnv(t)

	resp, body := env.do(http.MethodGet, "/admin/games", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Authentication required", body["error"])
}

func TestLogin(t *testing.T) {
	env := newAdminEnv(t)

	resp, body := env.do(http.MethodPost, "/admin/login",
		map[string]string{"username": testUser, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid username or password.", body["error"])

	resp, body = env.do(http.MethodPost, "/admin/login",
		map[string]string{"username": testUser, "password": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Please enter both username and password.", body["error"])

	env.login(t)

	resp, _ = env.do(http.MethodGet, "/admin/games", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCSRFRequiredOnMutations(t *testing.T) {
	env := newAdminEnv(t)
	env.login(t)

	goodToken := env.csrf

	// Reads pass without the token.
	env.csrf = ""
	resp, _ := env.do(http.MethodGet, "/admin/games", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Mutations do not.
	resp, body := env.do(http.MethodPost, "/admin/games", map[string]any{
		"title": "x", "home_team": "h", "away_team": "a",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Invalid security token. Please try again.", body["error"])

	env.csrf = "not-the-token"
	resp, _ = env.do(http.MethodPost, "/admin/games", map[string]any{
		"title": "x", "home_team": "h", "away_team": "a",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	env.csrf = goodToken
	resp, _ = env.do(http.MethodPost, "/admin/games", map[string]any{
		"title": "x", "home_team": "h", "away_team": "a",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestLogoutEndsSession(t *testing.T) {
	env := newAdminEnv(t)
	env.login(t)

	resp, _ := env.do(http.MethodPost, "/admin/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(http.MethodGet, "/admin/games", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestGoalFlow walks the full publishing path: a game goes live, a raw
// HTML update is sanitized on ingestion, and a generation run publishes
// the cleaned content to the snapshot file.
func TestGoalFlow(t *testing.T) {
	env := newAdminEnv(t)
	env.login(t)

	gameID := env.createGame(t, "Devils vs Rangers")
	idPath := "/admin/games/" + jsonNumber(gameID)

	resp, _ := env.do(http.MethodPost, idPath+"/live", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, created := env.do(http.MethodPost, idPath+"/updates", map[string]string{
		"type":    "html",
		"content": "<b>Goal!</b>",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Goal!", created["content"], "bold tag is not allowlisted; text survives")

	resp, genBody := env.do(http.MethodPost, "/admin/generate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, genBody["ok"])
	assert.Equal(t, "live", genBody["status"])

	doc := env.readSnapshot(t)
	game, ok := doc["game"].(map[string]any)
	require.True(t, ok, "snapshot missing game object: %v", doc)
	assert.Equal(t, "Devils vs Rangers", game["title"])

	score, ok := game["score"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 0, score["home"])
	assert.EqualValues(t, 0, score["away"])

	updates, ok := doc["updates"].([]any)
	require.True(t, ok)
	require.Len(t, updates, 1)
	entry := updates[0].(map[string]any)
	assert.Equal(t, "html", entry["type"])
	assert.Equal(t, "Goal!", entry["html"])
	assert.NotEmpty(t, entry["relative_time"])
}

func TestAddUpdateRejectsUnsafeInput(t *testing.T) {
	env := newAdminEnv(t)
	env.login(t)

	gameID := env.createGame(t, "Devils vs Rangers")
	path := "/admin/games/" + jsonNumber(gameID) + "/updates"

	// Script tags are unwrapped to inert text, not rejected.
	resp, body := env.do(http.MethodPost, path, map[string]string{
		"type":    "html",
		"content": "<script>alert(1)</script>",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alert(1)", body["content"])

	// Input that sanitizes to nothing is a validation failure.
	resp, body = env.do(http.MethodPost, path, map[string]string{
		"type":    "html",
		"content": "<!-- nothing visible -->",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "HTML content is invalid or too long (max 1000 characters).", body["error"])

	resp, body = env.do(http.MethodPost, path, map[string]string{
		"type": "nhl_goal",
		"url":  "https://evilnhl.com/video/123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid NHL URL. Must be HTTPS and from nhl.com domain.", body["error"])

	resp, body = env.do(http.MethodPost, path, map[string]string{
		"type": "youtube",
		"url":  "http://www.youtube.com/watch?v=abc123",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid YouTube URL. Must be HTTPS and from an allowed YouTube domain.", body["error"])

	resp, body = env.do(http.MethodPost, path, map[string]string{
		"type": "telegram",
		"url":  "https://example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid update type.", body["error"])
}

func TestUnsetLiveConflict(t *testing.T) {
	env := newAdminEnv(t)
	env.login(t)

	gameID := env.createGame(t, "Devils vs Rangers")
	path := "/admin/games/" + jsonNumber(gameID) + "/live"

	resp, body := env.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Game is not currently live.", body["error"])

	resp, _ = env.do(http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerateWithNoLiveGame(t *testing.T) {
	env := newAdminEnv(t)
	env.login(t)

	resp, body := env.do(http.MethodPost, "/admin/generate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no_live_game", body["status"])

	doc := env.readSnapshot(t)
	assert.Equal(t, "no_live_game", doc["status"])
	assert.Equal(t, "no-store", doc["cache_control"])
	_, hasGame := doc["game"]
	assert.False(t, hasGame)
}

func jsonNumber(id int64) string {
	return strconv.FormatInt(id, 10)
}
