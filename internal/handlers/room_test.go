// internal/handlers/room_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jason-s-yu/babo/internal/memstore"
	"github.com/jason-s-yu/babo/internal/models"
	"github.com/jason-s-yu/babo/internal/room"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWords struct{}

func (stubWords) Resolve(context.Context, string) models.WordPair {
	return models.WordPair{Category: "동물", WordA: "호랑이", WordB: "사자"}
}

func (stubWords) Categories() []string { return []string{"동물", "음식"} }

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := room.NewService(memstore.New(), stubWords{}, nil, logger)
	mux := http.NewServeMux()
	Register(mux, NewRoomServer(svc, stubWords{}, logger))
	return mux
}

func do(t *testing.T, mux http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set(SessionHeader, token)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// createRoom opens a room hosted by 민수 and seats 지영.
func createRoom(t *testing.T, mux http.Handler) string {
	t.Helper()
	w := do(t, mux, http.MethodPost, "/rooms", "", map[string]string{"nickname": "민수", "session_token": "tok-host"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[createRoomResponse](t, w)
	require.Len(t, created.Code, 4)
	require.NotEmpty(t, created.PlayerID)

	w = do(t, mux, http.MethodPost, "/rooms/"+created.Code+"/join", "", map[string]string{"nickname": "지영", "session_token": "tok-guest"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return created.Code
}

func TestRoomLifecycleOverHTTP(t *testing.T) {
	mux := newTestMux(t)
	code := createRoom(t, mux)

	w := do(t, mux, http.MethodGet, "/rooms/"+code+"/state", "tok-guest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[models.RoomState](t, w)
	assert.Equal(t, models.StatusWaiting, state.Status)
	assert.Equal(t, "지영", state.Me.Nickname)
	assert.Len(t, state.Players, 2)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

	w = do(t, mux, http.MethodPost, "/rooms/"+code+"/start", "tok-host", startRequest{FoolCount: 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, mux, http.MethodGet, "/rooms/"+code+"/state", "tok-guest", nil)
	state = decode[models.RoomState](t, w)
	assert.Equal(t, models.StatusPlaying, state.Status)
	require.NotNil(t, state.Me.AssignedTopic)
	assert.Contains(t, []string{"호랑이", "사자"}, *state.Me.AssignedTopic)
	assert.NotContains(t, w.Body.String(), "tok-host")

	w = do(t, mux, http.MethodPost, "/rooms/"+code+"/reset", "tok-host", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, mux, http.MethodPost, "/rooms/"+code+"/leave", "tok-host", nil)
	require.Equal(t, http.StatusOK, w.Code)
	left := decode[leaveResponse](t, w)
	assert.False(t, left.RoomDeleted)
	require.NotNil(t, left.NewHostID)

	w = do(t, mux, http.MethodPost, "/rooms/"+code+"/leave", "tok-guest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[leaveResponse](t, w).RoomDeleted)

	w = do(t, mux, http.MethodGet, "/rooms/"+code+"/state", "tok-guest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "room_not_found", decode[errorResponse](t, w).Code)
}

func TestErrorMapping(t *testing.T) {
	mux := newTestMux(t)
	code := createRoom(t, mux)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"bad nickname", http.MethodPost, "/rooms", "", map[string]string{"nickname": "", "session_token": "x"}, http.StatusBadRequest, "invalid_nickname"},
		{"bad code", http.MethodPost, "/rooms/12/join", "", map[string]string{"nickname": "a", "session_token": "x"}, http.StatusBadRequest, "invalid_room_code"},
		{"unknown room", http.MethodPost, "/rooms/9999/join", "", map[string]string{"nickname": "a", "session_token": "x"}, http.StatusNotFound, "room_not_found"},
		{"nickname taken", http.MethodPost, "/rooms/" + code + "/join", "", map[string]string{"nickname": "민수", "session_token": "x"}, http.StatusConflict, "nickname_taken"},
		{"fool count", http.MethodPost, "/rooms/" + code + "/start", "tok-host", startRequest{FoolCount: 2}, http.StatusBadRequest, "invalid_fool_count"},
		{"not host", http.MethodPost, "/rooms/" + code + "/start", "tok-guest", startRequest{FoolCount: 1}, http.StatusForbidden, "not_host"},
		{"stranger", http.MethodGet, "/rooms/" + code + "/state", "tok-nobody", nil, http.StatusNotFound, "player_not_found"},
		{"no session", http.MethodGet, "/rooms/" + code + "/state", "", nil, http.StatusBadRequest, "invalid_session"},
		{"kick self", http.MethodPost, "/rooms/" + code + "/kick", "tok-host", kickRequest{Nickname: "민수"}, http.StatusBadRequest, "cannot_kick_self"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, mux, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, decode[errorResponse](t, w).Code)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	mux := newTestMux(t)
	req := httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewBufferString("{nope"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decode[errorResponse](t, w).Code)
}

func TestJoinWhilePlayingConflicts(t *testing.T) {
	mux := newTestMux(t)
	code := createRoom(t, mux)
	require.Equal(t, http.StatusOK, do(t, mux, http.MethodPost, "/rooms/"+code+"/start", "tok-host", startRequest{FoolCount: 1}).Code)

	w := do(t, mux, http.MethodPost, "/rooms/"+code+"/join", "", map[string]string{"nickname": "철수", "session_token": "tok-3"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "game_in_progress", decode[errorResponse](t, w).Code)
}

func TestKickAndRoster(t *testing.T) {
	mux := newTestMux(t)
	code := createRoom(t, mux)

	w := do(t, mux, http.MethodGet, "/rooms/"+code+"/players", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[rosterResponse](t, w).Players, 2)

	w = do(t, mux, http.MethodPost, "/rooms/"+code+"/kick", "tok-host", kickRequest{Nickname: "지영"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, mux, http.MethodGet, "/rooms/"+code+"/state", "tok-guest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "player_not_found", decode[errorResponse](t, w).Code)
}

func TestCategoriesAndHealth(t *testing.T) {
	mux := newTestMux(t)

	w := do(t, mux, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"동물", "음식"}, decode[categoriesResponse](t, w).Categories)

	w = do(t, mux, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())

	w = do(t, mux, http.MethodGet, "/rooms", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRoomQR(t *testing.T) {
	mux := newTestMux(t)
	code := createRoom(t, mux)

	w := do(t, mux, http.MethodGet, "/rooms/"+code+"/qr", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = do(t, mux, http.MethodGet, "/rooms/9999/qr", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
