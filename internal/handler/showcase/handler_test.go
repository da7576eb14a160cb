package showcase

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikajoshi/portfolio/backend/internal/animation/showcase"
	"github.com/avikajoshi/portfolio/backend/internal/model/project"
)

func setupRouter() *chi.Mux {
	r := chi.NewRouter()
	New(project.NewMemoryStore(project.Seed()), 5*time.Millisecond, nil, nil).RegisterRoutes(r)
	return r
}

func TestListProjects(t *testing.T) {
	resp := httptest.NewRecorder()
	setupRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/projects", nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Projects []projectView `json:"projects"`
		Links    []project.Link `json:"links"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Projects, 6)
	assert.Equal(t, "#00d9ff", body.Projects[0].Hex)
	assert.NotEmpty(t, body.Links)
}

func TestGetProject(t *testing.T) {
	r := setupRouter()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/projects/4", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "SmartCV")

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/projects/42", nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/projects/abc", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPick(t *testing.T) {
	r := setupRouter()
	first := project.Seed()[0]
	x, y := showcase.DefaultCamera().Project(mgl64.Vec3(first.Position))

	payload, _ := json.Marshal(pickRequest{X: x, Y: y, Click: true})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/showcase/pick", strings.NewReader(string(payload))))
	require.Equal(t, http.StatusOK, resp.Code)

	var got pickResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, first.ID, got.Hovered)
	assert.Equal(t, first.ID, got.Selected)
	require.NotNil(t, got.Project)
	assert.Equal(t, "AIRA Platform", got.Project.Title)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/showcase/pick", strings.NewReader(`{"x":3,"y":0}`)))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestShowcaseWebSocket(t *testing.T) {
	srv := httptest.NewServer(setupRouter())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/showcase/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	read := func() outgoingMessage {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var m struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, conn.ReadJSON(&m))
		return outgoingMessage{Type: m.Type, Data: m.Data}
	}

	assert.Equal(t, "frame", read().Type)
	require.NoError(t, conn.WriteJSON(inboundMessage{Type: "toggle", ID: 3}))

	for i := 0; i < 100; i++ {
		m := read()
		if m.Type != "select" {
			continue
		}
		var p projectView
		require.NoError(t, json.Unmarshal(m.Data.(json.RawMessage), &p))
		assert.Equal(t, 3, p.ID)
		return
	}
	t.Fatal("no select message received")
}
