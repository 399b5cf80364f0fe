package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evermem/evermem-go/pkg/companion"
	"github.com/evermem/evermem-go/pkg/core"
)

func setupServerTest(t *testing.T) (*Server, func()) {
	gin.SetMode(gin.TestMode)

	cfg := &core.Config{
		Blob: core.BlobConfig{
			Provider: "fs",
			Config:   map[string]interface{}{"root": t.TempDir()},
		},
		LLM: core.LLMConfig{
			Provider: "openai",
			APIKey:   "sk-test",
			Model:    "gpt-4o-mini",
		},
		Server: core.ServerConfig{Host: "127.0.0.1", Port: 0},
	}

	client, err := companion.NewClient(cfg)
	require.NoError(t, err)

	srv, err := New(client, cfg.Server, nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = client.Close()
	}
	return srv, cleanup
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	srv, cleanup := setupServerTest(t)
	defer cleanup()

	w := doJSON(t, srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestServer_ProfileLifecycle(t *testing.T) {
	srv, cleanup := setupServerTest(t)
	defer cleanup()

	w := doJSON(t, srv, http.MethodPost, "/profiles", `{"name":"Asha","relation":"Mother"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "asha_mother", created.ID)

	// Duplicate creation conflicts.
	w = doJSON(t, srv, http.MethodPost, "/profiles", `{"name":"Asha","relation":"Mother"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/profiles", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "asha_mother")

	w = doJSON(t, srv, http.MethodDelete, "/profiles/asha_mother", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodDelete, "/profiles/asha_mother", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CreateProfileValidation(t *testing.T) {
	srv, cleanup := setupServerTest(t)
	defer cleanup()

	w := doJSON(t, srv, http.MethodPost, "/profiles", `{"name":"Asha"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/profiles", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_SaveUserFact(t *testing.T) {
	srv, cleanup := setupServerTest(t)
	defer cleanup()

	w := doJSON(t, srv, http.MethodPost, "/save-user-fact",
		`{"profile_id":"asha_mother","key":"favorite_food","value":"dosa"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/save-user-fact", `{"profile_id":"asha_mother"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_ConversationEndpoints(t *testing.T) {
	srv, cleanup := setupServerTest(t)
	defer cleanup()

	w := doJSON(t, srv, http.MethodGet, "/conversation/asha_mother", "")
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Conversation []struct {
			Role string `json:"role"`
		} `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Empty(t, payload.Conversation)

	w = doJSON(t, srv, http.MethodDelete, "/conversation/asha_mother", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_ListMemoriesEmpty(t *testing.T) {
	srv, cleanup := setupServerTest(t)
	defer cleanup()

	w := doJSON(t, srv, http.MethodGet, "/memories/asha_mother", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/latest-memory-summary/asha_mother", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No past memories found.")
}

func TestServer_AskValidation(t *testing.T) {
	srv, cleanup := setupServerTest(t)
	defer cleanup()

	w := doJSON(t, srv, http.MethodPost, "/ask", `{"profile_id":"asha_mother"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Exit phrases short-circuit before the model, so this runs without any
// upstream provider.
func TestServer_AskExitPhrase(t *testing.T) {
	srv, cleanup := setupServerTest(t)
	defer cleanup()

	w := doJSON(t, srv, http.MethodPost, "/ask", `{"profile_id":"asha_mother","message":"goodbye"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Reply string `json:"reply"`
		Ended bool   `json:"ended"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.True(t, payload.Ended)
	assert.Equal(t, "Goodbye for now.", payload.Reply)
}

func TestServer_VoiceChatUnavailableWithoutSpeech(t *testing.T) {
	srv, cleanup := setupServerTest(t)
	defer cleanup()

	w := doJSON(t, srv, http.MethodPost, "/voice-chat-once", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAssistantManager_StopWithoutStart(t *testing.T) {
	manager := NewAssistantManager("evermem-voice")
	assert.False(t, manager.Running())
	assert.NoError(t, manager.Stop())
}
