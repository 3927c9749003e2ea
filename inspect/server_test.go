package inspect

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/hexskirmish/command"
	"github.com/milk9111/hexskirmish/hex"
	"github.com/milk9111/hexskirmish/prefabs"
	"github.com/milk9111/hexskirmish/scenario"
	"github.com/milk9111/hexskirmish/script"
)

func newDuel(t *testing.T, opts ...scenario.Option) *scenario.Session {
	t.Helper()
	spec, err := prefabs.LoadScenario("duel.yaml")
	require.NoError(t, err)
	s, err := scenario.New(spec, opts...)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&v), w.Body.String())
	return v
}

func TestStepAndUndoOverHTTP(t *testing.T) {
	srv := New(newDuel(t))

	w := do(t, srv, http.MethodPost, "/api/enqueue", `[{"kind":"attack","figure":"a","target":"b","value":2}]`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[StepResult](t, w)
	require.Len(t, res.State.Pending, 1)

	w = do(t, srv, http.MethodPost, "/api/step?all=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[StepResult](t, w)
	assert.Equal(t, 4, res.Ran)
	assert.Equal(t, 9, res.State.Figures[1].Health)

	w = do(t, srv, http.MethodPost, "/api/undo", "")
	res = decode[StepResult](t, w)
	assert.Equal(t, 1, res.Ran)

	w = do(t, srv, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]scenario.CommandView](t, w)
	require.Len(t, history, 3)
	assert.Equal(t, command.KindApplyAttack, history[0].Kind)

	w = do(t, srv, http.MethodGet, "/api/figures/b", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 12, decode[scenario.FigureView](t, w).Health)

	w = do(t, srv, http.MethodPost, "/api/step", "")
	res = decode[StepResult](t, w)
	assert.Equal(t, 1, res.Ran)
	assert.Equal(t, 9, res.State.Figures[1].Health)

	w = do(t, srv, http.MethodPost, "/api/step", "")
	assert.Equal(t, 0, decode[StepResult](t, w).Ran)
}

func TestBadRequests(t *testing.T) {
	srv := New(newDuel(t))

	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodGet, "/api/figures/ghost", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/enqueue", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/enqueue", `[{"kind":"attack","figure":"a","target":"ghost"}]`).Code)
	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/script", "").Code)
	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/draw", `{"column":"plus"}`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, srv, http.MethodGet, "/api/step", "").Code)

	w := do(t, srv, http.MethodGet, "/api/state", "")
	assert.Empty(t, decode[scenario.Snapshot](t, w).Pending)
}

func TestFailedStepDoesNotWedgeQueue(t *testing.T) {
	s := newDuel(t)
	a, _ := s.Figure("a")
	s.Enqueue(command.Move(a, hex.Coord{Q: 1}), command.Heal(a, a, 1))
	srv := New(s)

	w := do(t, srv, http.MethodPost, "/api/step", "")
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = do(t, srv, http.MethodPost, "/api/step", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[StepResult](t, w)
	assert.Equal(t, 1, res.Ran)
	assert.Empty(t, res.State.Pending)
}

func TestScriptAndRoundRoutes(t *testing.T) {
	p, err := script.Load("monsters.tengo")
	require.NoError(t, err)
	srv := New(newDuel(t), WithProducer(p))

	w := do(t, srv, http.MethodPost, "/api/script", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[StepResult](t, w)
	require.Len(t, res.State.Pending, 1)
	assert.Equal(t, "b attacks a for 2", res.State.Pending[0].Text)

	w = do(t, srv, http.MethodPost, "/api/round/advance", "")
	res = decode[StepResult](t, w)
	assert.Equal(t, scenario.PhaseStartOfRound, res.State.Phase)
	assert.Equal(t, 1, res.State.Round)
}

func TestDrawFeedsPendingRoll(t *testing.T) {
	prompt := &command.PromptColumn{}
	srv := New(newDuel(t, scenario.WithRules(command.Rules{Draw: prompt})), WithPrompt(prompt))

	do(t, srv, http.MethodPost, "/api/enqueue", `[{"kind":"attack","figure":"a","target":"b","value":2}]`)
	res := decode[StepResult](t, do(t, srv, http.MethodPost, "/api/step?all=true", ""))
	assert.Equal(t, 1, res.Ran)

	assert.Equal(t, http.StatusBadRequest, do(t, srv, http.MethodPost, "/api/draw", `{"column":"sideways"}`).Code)
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/draw", `{"column":"plus"}`).Code)

	res = decode[StepResult](t, do(t, srv, http.MethodPost, "/api/step?all=true", ""))
	assert.Equal(t, 3, res.Ran)
	// 2 + poison + row 0 plus column
	assert.Equal(t, 8, res.State.Figures[1].Health)
}

func TestWebsocketReceivesSnapshots(t *testing.T) {
	srv := New(newDuel(t))
	ts := httptest.NewServer(srv)
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))

	var snap scenario.Snapshot
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, "duel", snap.Scenario)

	resp, err := http.Post(ts.URL+"/api/enqueue", "application/json",
		strings.NewReader(`[{"kind":"add_condition","figure":"a","condition":"wound"}]`))
	require.NoError(t, err)
	resp.Body.Close()

	require.NoError(t, conn.ReadJSON(&snap))
	require.Len(t, snap.Pending, 1)
	assert.Equal(t, "a gains wound", snap.Pending[0].Text)
}

func TestReplaceSwapsSession(t *testing.T) {
	srv := New(newDuel(t))
	do(t, srv, http.MethodPost, "/api/enqueue", `[{"kind":"add_condition","figure":"a","condition":"wound"}]`)
	require.Len(t, decode[scenario.Snapshot](t, do(t, srv, http.MethodGet, "/api/state", "")).Pending, 1)

	prompt := &command.PromptColumn{}
	srv.Replace(newDuel(t), nil, prompt)
	assert.Empty(t, decode[scenario.Snapshot](t, do(t, srv, http.MethodGet, "/api/state", "")).Pending)
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/api/draw", `{"column":"minus"}`).Code)
	assert.False(t, prompt.Waiting())
}
