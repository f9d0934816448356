package httpapi

import (
	"bytes"
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/DoyleJ11/algo-battle-backend/internal/catalog"
	"github.com/DoyleJ11/algo-battle-backend/internal/engine"
	"github.com/DoyleJ11/algo-battle-backend/internal/hub"
	"github.com/DoyleJ11/algo-battle-backend/internal/lobby"
	"github.com/DoyleJ11/algo-battle-backend/internal/types"
	"github.com/DoyleJ11/algo-battle-backend/internal/typing"
	pkgtypes "github.com/DoyleJ11/algo-battle-backend/pkg/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return newPacedTestServer(t, lobby.Pacing{})
}

func newPacedTestServer(t *testing.T, pacing lobby.Pacing) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	roster, err := catalog.Default()
	require.NoError(t, err)

	h := hub.NewHub(ctx, func(code string) lobby.Options {
		return lobby.Options{
			Rules:  engine.Rules{TurnTimerSec: 30},
			Pacing: pacing,
			Source: rand.New(rand.NewPCG(3, 5)),
		}
	}, zap.NewNop())

	srv := httptest.NewServer(SetupRoutes(Deps{
		Hub:      h,
		Catalog:  catalog.Static(roster),
		Validate: validator.New(validator.WithRequiredStructEnabled()),
		Logger:   zap.NewNop(),
	}, nil))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) (int, []byte) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, buf.Bytes()
}

func createBattle(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	status, body := do(t, http.MethodPost, srv.URL+"/battles", nil)
	require.Equal(t, http.StatusCreated, status)
	var out createBattleResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Len(t, out.Code, codeLength)
	return out.Code
}

func snapshotOf(t *testing.T, body []byte) pkgtypes.Snapshot {
	t.Helper()
	var snap pkgtypes.Snapshot
	require.NoError(t, json.Unmarshal(body, &snap))
	return snap
}

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode()
	require.NoError(t, err)
	assert.Len(t, code, codeLength)
	assert.Equal(t, strings.ToUpper(code), code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	status, _ := do(t, http.MethodGet, srv.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestBattle_DraftFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	code := createBattle(t, srv)
	base := srv.URL + "/battles/" + code

	status, body := do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	snap := snapshotOf(t, body)
	assert.Equal(t, code, snap.LobbyCode)
	assert.Equal(t, "draft", snap.Phase)
	assert.Equal(t, 0, snap.Version)

	status, body = do(t, http.MethodPost, base+"/draft", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	snap = snapshotOf(t, body)
	require.Len(t, snap.Pool, engine.PoolSize)
	assert.Equal(t, "player", snap.DraftTurn)

	status, body = do(t, http.MethodPost, base+"/picks", map[string]string{"algorithm_id": snap.Pool[0].ID})
	require.Equal(t, http.StatusOK, status, string(body))
	snap = snapshotOf(t, body)
	require.Len(t, snap.Player.Members, 1)

	require.Eventually(t, func() bool {
		_, body := do(t, http.MethodGet, base, nil)
		return len(snapshotOf(t, body).Opponent.Members) == 1
	}, time.Second, 10*time.Millisecond, "AI should answer the pick")
}

func TestBattle_ErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	code := createBattle(t, srv)
	base := srv.URL + "/battles/" + code

	status, _ := do(t, http.MethodPost, base+"/actions", map[string]string{"action": "attack"})
	assert.Equal(t, http.StatusConflict, status, "actions are not accepted during the draft")

	status, _ = do(t, http.MethodPost, base+"/draft", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, http.MethodPost, base+"/picks", map[string]string{"algorithm_id": "bogo-sort"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = do(t, http.MethodPost, base+"/picks", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodPost, base+"/actions", map[string]string{"action": "switch"})
	assert.Equal(t, http.StatusBadRequest, status, "switch without a target")

	status, _ = do(t, http.MethodPost, base+"/challenge", map[string]float64{})
	assert.Equal(t, http.StatusBadRequest, status, "accuracy is required")

	status, _ = do(t, http.MethodPost, base+"/challenge", map[string]float64{"accuracy": 140})
	assert.Equal(t, http.StatusConflict, status, "out-of-range accuracy reaches the engine")

	status, _ = do(t, http.MethodPost, base+"/challenge", map[string]float64{"accuracy": 50})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = do(t, http.MethodGet, srv.URL+"/battles/NOPE00", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBattle_ResetAndDelete(t *testing.T) {
	srv := newTestServer(t)
	code := createBattle(t, srv)
	base := srv.URL + "/battles/" + code

	status, _ := do(t, http.MethodPost, base+"/draft", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := do(t, http.MethodPost, base+"/reset", nil)
	require.Equal(t, http.StatusOK, status)
	snap := snapshotOf(t, body)
	assert.Equal(t, "draft", snap.Phase)
	assert.Empty(t, snap.Pool)
	assert.Equal(t, 2, snap.Version)

	status, body = do(t, http.MethodGet, srv.URL+"/battles", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), code)

	status, _ = do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListAlgorithms(t *testing.T) {
	srv := newTestServer(t)
	status, body := do(t, http.MethodGet, srv.URL+"/algorithms", nil)
	require.Equal(t, http.StatusOK, status)

	var algos []pkgtypes.Algorithm
	require.NoError(t, json.Unmarshal(body, &algos))
	assert.GreaterOrEqual(t, len(algos), 12)
}

func TestTypingEndpoints(t *testing.T) {
	srv := newTestServer(t)

	status, body := do(t, http.MethodGet, srv.URL+"/typing/passage?words=5", nil)
	require.Equal(t, http.StatusOK, status)
	var p struct {
		Passage string `json:"passage"`
	}
	require.NoError(t, json.Unmarshal(body, &p))
	assert.Len(t, strings.Fields(p.Passage), 5)

	status, _ = do(t, http.MethodGet, srv.URL+"/typing/passage?words=0", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, http.MethodPost, srv.URL+"/typing/score", map[string]any{
		"reference":  "abcd",
		"typed":      "abzz",
		"elapsed_ms": 30000,
	})
	require.Equal(t, http.StatusOK, status)
	var st typing.Stats
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, 2, st.Correct)
	assert.InDelta(t, 50.0, st.Accuracy, 1e-9)
	assert.InDelta(t, 0.8, st.WPM, 1e-9)
}

func readServerMessage(t *testing.T, conn *websocket.Conn) types.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg types.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func writeClientMessage(t *testing.T, conn *websocket.Conn, msg types.ClientMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func TestWebsocket_SnapshotsAndErrors(t *testing.T) {
	srv := newTestServer(t)
	code := createBattle(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws?code="+code, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	first := readServerMessage(t, conn)
	require.Equal(t, pkgtypes.MsgStateSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, 0, first.Snapshot.Version)

	writeClientMessage(t, conn, types.ClientMessage{Type: pkgtypes.MsgInitDraft})
	next := readServerMessage(t, conn)
	require.Equal(t, pkgtypes.MsgStateSnapshot, next.Type)
	assert.Equal(t, 1, next.Snapshot.Version)
	assert.Len(t, next.Snapshot.Pool, engine.PoolSize)

	writeClientMessage(t, conn, types.ClientMessage{Type: "Surrender"})
	bad := readServerMessage(t, conn)
	assert.Equal(t, pkgtypes.MsgError, bad.Type)

	writeClientMessage(t, conn, types.ClientMessage{Type: pkgtypes.MsgSubmitAction, Action: "attack"})
	rejected := readServerMessage(t, conn)
	assert.Equal(t, pkgtypes.MsgError, rejected.Type)
	assert.Contains(t, rejected.Error, engine.ErrWrongPhase.Error())
}

func TestWebsocket_UnknownLobby(t *testing.T) {
	srv := newTestServer(t)
	status, _ := do(t, http.MethodGet, srv.URL+"/ws?code=NOPE00", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

// draftToBattle drafts three pairs over HTTP and waits for the first action-select.
func draftToBattle(t *testing.T, base string) pkgtypes.Snapshot {
	t.Helper()
	status, body := do(t, http.MethodPost, base+"/draft", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	snap := snapshotOf(t, body)

	for pick := 0; pick < engine.TeamSize; pick++ {
		status, body = do(t, http.MethodPost, base+"/picks", map[string]string{"algorithm_id": snap.Pool[0].ID})
		require.Equal(t, http.StatusOK, status, string(body))
		require.Eventually(t, func() bool {
			_, body := do(t, http.MethodGet, base, nil)
			snap = snapshotOf(t, body)
			return len(snap.Opponent.Members) == pick+1
		}, time.Second, 5*time.Millisecond)
	}

	require.Eventually(t, func() bool {
		_, body := do(t, http.MethodGet, base, nil)
		snap = snapshotOf(t, body)
		return snap.Phase == "action-select"
	}, time.Second, 5*time.Millisecond)
	return snap
}

func TestBattle_OutOfRangeAccuracyIsClamped(t *testing.T) {
	// Hold the resolve phase so the response shows it before EndTurn runs.
	srv := newPacedTestServer(t, lobby.Pacing{ResolveDelay: time.Minute})
	code := createBattle(t, srv)
	base := srv.URL + "/battles/" + code

	before := draftToBattle(t, base)

	status, body := do(t, http.MethodPost, base+"/actions", map[string]string{"action": "attack"})
	require.Equal(t, http.StatusOK, status, string(body))
	require.Equal(t, "code-challenge", snapshotOf(t, body).Phase)

	status, body = do(t, http.MethodPost, base+"/challenge", map[string]float64{"accuracy": 140})
	require.Equal(t, http.StatusOK, status, string(body))
	snap := snapshotOf(t, body)
	assert.Equal(t, "resolve", snap.Phase)
	assert.Greater(t, len(snap.BattleLog), len(before.BattleLog), "the turn resolved")
}
