package action

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikajoshi/portfolio/backend/internal/model/knowledge"
	"github.com/avikajoshi/portfolio/backend/internal/service/action"
)

func TestResolveAction(t *testing.T) {
	r := chi.NewRouter()
	New(action.NewResolver(knowledge.NewMemoryStore(nil).Personal(), nil)).RegisterRoutes(r)

	cases := map[string]action.Effect{
		"linkedin":      {Action: "linkedin", Kind: action.KindOpen, Value: "https://linkedin.com/in/avikajoshi", Implemented: true},
		"schedule_call": {Action: "schedule_call", Kind: action.KindScroll, Value: action.SectionContact, Implemented: true},
		"teleport":      {Action: "teleport", Kind: action.KindNotice, Notice: action.ComingSoon},
	}
	for id, want := range cases {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/actions/"+id, nil))
		require.Equal(t, http.StatusOK, resp.Code)

		var got action.Effect
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
		assert.Equal(t, want, got, id)
	}
}
