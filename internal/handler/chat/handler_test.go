package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikajoshi/portfolio/backend/internal/model/chat"
	"github.com/avikajoshi/portfolio/backend/internal/model/knowledge"
	"github.com/avikajoshi/portfolio/backend/internal/service/action"
	chatservice "github.com/avikajoshi/portfolio/backend/internal/service/chat"
	"github.com/avikajoshi/portfolio/backend/internal/service/responder"
	"github.com/avikajoshi/portfolio/backend/internal/service/transcript"
)

func setupRouter(t *testing.T) (*chi.Mux, *chatservice.Service) {
	t.Helper()
	kb := knowledge.NewMemoryStore(nil)
	rsp, err := responder.New(context.Background(), kb)
	require.NoError(t, err)
	chatSvc := chatservice.NewService(rsp, chatservice.Options{
		TypingDelay:   10 * time.Millisecond,
		GreetingDelay: time.Hour,
	})
	t.Cleanup(chatSvc.Shutdown)

	handler := New(chatSvc, action.NewResolver(kb.Personal(), nil), Options{HashSalt: "test"})
	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createSession(t *testing.T, r http.Handler) string {
	t.Helper()
	resp := do(r, http.MethodPost, "/session", "")
	require.Equal(t, http.StatusCreated, resp.Code)

	var body sessionResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotEmpty(t, body.Session.ID)
	assert.True(t, body.State.Open)
	assert.Equal(t, body.Session.ID, resp.Header().Get(SessionHeader))

	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	return body.Session.ID
}

func TestCreateSession(t *testing.T) {
	r, _ := setupRouter(t)
	createSession(t, r)
}

func TestCreateSessionResumesFromCookie(t *testing.T) {
	r, _ := setupRouter(t)
	id := createSession(t, r)

	req := httptest.NewRequest(http.MethodPost, "/session", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: id})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, id, resp.Header().Get(SessionHeader))
}

func TestCreateSessionResumesFromHeader(t *testing.T) {
	r, _ := setupRouter(t)
	id := createSession(t, r)

	req := httptest.NewRequest(http.MethodPost, "/session", nil)
	req.Header.Set(SessionHeader, id)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, id, resp.Header().Get(SessionHeader))

	req = httptest.NewRequest(http.MethodPost, "/session", nil)
	req.Header.Set(SessionHeader, "unknown")
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.NotEqual(t, "unknown", resp.Header().Get(SessionHeader))
}

func TestSubmitMessageFlow(t *testing.T) {
	r, svc := setupRouter(t)
	id := createSession(t, r)

	resp := do(r, http.MethodPost, "/session/"+id+"/messages", `{"text":"Tell me about her projects"}`)
	require.Equal(t, http.StatusAccepted, resp.Code)

	var state chat.State
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &state))
	assert.Equal(t, chat.PhaseResponding, state.Phase)

	resp = do(r, http.MethodPost, "/session/"+id+"/quick-reply", `{"label":"AIRA Platform"}`)
	assert.Equal(t, http.StatusConflict, resp.Code)

	require.Eventually(t, func() bool {
		st, err := svc.State(context.Background(), id)
		return err == nil && st.InputEnabled()
	}, time.Second, 5*time.Millisecond)

	resp = do(r, http.MethodGet, "/session/"+id, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &state))
	require.Len(t, state.Messages, 2)
	assert.True(t, state.Context.HasSeenProjects)
}

func TestSubmitValidation(t *testing.T) {
	r, _ := setupRouter(t)
	id := createSession(t, r)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/session/"+id+"/messages", `{"text":"   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/session/"+id+"/messages", `not json`).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/session/missing/messages", `{"text":"hi"}`).Code)
}

func TestOpenCloseAndDelete(t *testing.T) {
	r, _ := setupRouter(t)
	id := createSession(t, r)

	var state chat.State
	resp := do(r, http.MethodPost, "/session/"+id+"/close", "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &state))
	assert.False(t, state.Open)

	resp = do(r, http.MethodPost, "/session/"+id+"/open", "")
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &state))
	assert.True(t, state.Open)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/session/"+id, "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/session/"+id, "").Code)
}

func TestExport(t *testing.T) {
	r, svc := setupRouter(t)
	id := createSession(t, r)

	do(r, http.MethodPost, "/session/"+id+"/messages", `{"text":"Contact Info"}`)
	require.Eventually(t, func() bool {
		st, _ := svc.State(context.Background(), id)
		return len(st.Messages) == 2
	}, time.Second, 5*time.Millisecond)

	resp := do(r, http.MethodGet, "/session/"+id+"/export", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, transcript.ContentType, resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), transcript.Filename)
	assert.True(t, strings.HasPrefix(resp.Body.String(), "VISITOR: Contact Info\n\nASSISTANT: "))
}

func TestEventsStream(t *testing.T) {
	r, _ := setupRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()
	id := createSession(t, r)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/session/"+id+"/events", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	nextEvent := func() string {
		for scanner.Scan() {
			if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
				return name
			}
		}
		return ""
	}

	require.Equal(t, "state", nextEvent())
	submit := do(r, http.MethodPost, "/session/"+id+"/messages", `{"text":"skills"}`)
	require.Equal(t, http.StatusAccepted, submit.Code)
	assert.Equal(t, "typing", nextEvent())
	assert.Equal(t, "message", nextEvent())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(chatservice.ErrSessionNotFound))
	assert.Equal(t, http.StatusConflict, StatusFor(chat.ErrResponding))
	assert.Equal(t, http.StatusBadRequest, StatusFor(chat.ErrEmptyMessage))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(chatservice.ErrServiceClosed))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(assert.AnError))
}
