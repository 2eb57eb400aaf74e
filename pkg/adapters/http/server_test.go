package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pathwayhttp "github.com/evocall/pathway/pkg/adapters/http"
	"github.com/evocall/pathway/internal/runtime"
	"github.com/evocall/pathway/internal/testutils"
	"github.com/evocall/pathway/pkg/adapters/memory"
	"github.com/evocall/pathway/pkg/domain"
	"github.com/evocall/pathway/pkg/session"
)

func newHandler(t *testing.T, model *testutils.ScriptedModel) http.Handler {
	t.Helper()
	loader, err := memory.NewLoader(&domain.Pathway{
		ID: "support",
		Nodes: []domain.Node{
			{ID: "greet", Kind: domain.KindConversation, Start: true, Conversation: &domain.ConversationConfig{
				Prompt:   "Help the caller.",
				Greeting: "Hello!",
			}},
			{ID: "bye", Kind: domain.KindEndCall, EndCall: &domain.EndCallConfig{Farewell: "Bye!"}},
		},
		Edges: []domain.Edge{
			{Source: "greet", Target: "bye", Condition: domain.Condition{Kind: domain.ConditionAI, Prompt: "the caller is done"}},
		},
	})
	require.NoError(t, err)

	manager := session.NewManager(runtime.NewEngine(model), loader)
	return pathwayhttp.NewHandler(manager)
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func startSession(t *testing.T, handler http.Handler) pathwayhttp.TurnResponse {
	t.Helper()
	rec := postJSON(t, handler, "/pathways/support/sessions", pathwayhttp.StartSessionRequest{UserID: "user-1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp pathwayhttp.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp
}

func TestStartSession(t *testing.T) {
	handler := newHandler(t, testutils.NewScriptedModel())

	resp := startSession(t, handler)
	require.Len(t, resp.Effects, 1)
	assert.Equal(t, domain.EffectSpeak, resp.Effects[0].Kind)
	assert.Equal(t, "Hello!", resp.Effects[0].Text)
}

func TestStartSessionUnknownPathway(t *testing.T) {
	handler := newHandler(t, testutils.NewScriptedModel())

	rec := postJSON(t, handler, "/pathways/missing/sessions", pathwayhttp.StartSessionRequest{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTurnRoundTrip(t *testing.T) {
	handler := newHandler(t, testutils.NewScriptedModel(
		testutils.ScriptEntry{Reply: "Sure."},
	))
	sess := startSession(t, handler)

	rec := postJSON(t, handler, "/sessions/"+sess.SessionID+"/turns", pathwayhttp.TurnRequest{Utterance: "hi"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp pathwayhttp.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Effects, 1)
	assert.Equal(t, "Sure.", resp.Effects[0].Text)
}

func TestTurnUnknownSession(t *testing.T) {
	handler := newHandler(t, testutils.NewScriptedModel())

	rec := postJSON(t, handler, "/sessions/nope/turns", pathwayhttp.TurnRequest{Utterance: "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTurnAfterCallEnded(t *testing.T) {
	handler := newHandler(t, testutils.NewScriptedModel(
		testutils.ScriptEntry{Reply: "Goodbye then.", Invoked: []string{"the_caller_is_done"}},
	))
	sess := startSession(t, handler)

	rec := postJSON(t, handler, "/sessions/"+sess.SessionID+"/turns", pathwayhttp.TurnRequest{Utterance: "that's all"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp pathwayhttp.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	last := resp.Effects[len(resp.Effects)-1]
	assert.Equal(t, domain.EffectTerminate, last.Kind)

	// Further turns on an ended call conflict.
	rec = postJSON(t, handler, "/sessions/"+sess.SessionID+"/turns", pathwayhttp.TurnRequest{Utterance: "wait"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetAndDeleteSession(t *testing.T) {
	handler := newHandler(t, testutils.NewScriptedModel())
	sess := startSession(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+sess.SessionID, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var state domain.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "greet", state.CurrentNodeID)
	assert.Equal(t, domain.StatusActive, state.Status)

	req = httptest.NewRequest(http.MethodDelete, "/sessions/"+sess.SessionID, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/sessions/"+sess.SessionID, nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSessions(t *testing.T) {
	handler := newHandler(t, testutils.NewScriptedModel())
	sess := startSession(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{sess.SessionID}, resp["sessions"])
}
