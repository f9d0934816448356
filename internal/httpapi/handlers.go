package httpapi

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	mrand "math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/DoyleJ11/algo-battle-backend/internal/catalog"
	"github.com/DoyleJ11/algo-battle-backend/internal/engine"
	"github.com/DoyleJ11/algo-battle-backend/internal/hub"
	"github.com/DoyleJ11/algo-battle-backend/internal/lobby"
	"github.com/DoyleJ11/algo-battle-backend/internal/typing"
	pkgtypes "github.com/DoyleJ11/algo-battle-backend/pkg/types"
)

const (
	codeLength       = 6
	maxCodeAttempts  = 16
	defaultPassage   = 30
	maxPassage       = 200
	lobbyCallTimeout = 2 * time.Second
)

var errLobbyNotFound = errors.New("lobby not found")

type Deps struct {
	Hub      *hub.Hub
	Catalog  catalog.Provider
	Validate *validator.Validate
	Logger   *zap.Logger
	// Words feeds the typing passage generator. Empty uses typing.DefaultWords.
	Words []string
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, codeLength)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createBattleResponse struct {
	Code string `json:"code"`
}

func CreateBattle(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var code string
		for attempt := 0; code == "" && attempt < maxCodeAttempts; attempt++ {
			c, err := GenerateCode()
			if err != nil {
				writeError(w, http.StatusInternalServerError, "failed to generate code")
				return
			}
			reply := make(chan *lobby.Lobby, 1)
			d.Hub.Inbox() <- hub.GetLobby{Code: c, Reply: reply}
			if <-reply == nil {
				code = c
				break
			}
			d.Logger.Debug("collision on code, regenerating", zap.String("code", c))
		}
		if code == "" {
			writeError(w, http.StatusServiceUnavailable, "no free lobby code")
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		d.Hub.Inbox() <- hub.EnsureLobby{Code: code, Reply: reply}
		if <-reply == nil {
			writeError(w, http.StatusInternalServerError, "failed to create lobby")
			return
		}
		writeJSON(w, http.StatusCreated, createBattleResponse{Code: code})
	}
}

func ListBattles(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan []string, 1)
		d.Hub.Inbox() <- hub.ListLobbies{Reply: reply}
		writeJSON(w, http.StatusOK, struct {
			Codes []string `json:"codes"`
		}{Codes: <-reply})
	}
}

func GetBattle(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, ok := findLobby(w, r, d)
		if !ok {
			return
		}
		writeSnapshot(w, r, lb)
	}
}

func DeleteBattle(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan bool, 1)
		d.Hub.Inbox() <- hub.RemoveLobby{Code: chi.URLParam(r, "code"), Reply: reply}
		if !<-reply {
			writeError(w, http.StatusNotFound, errLobbyNotFound.Error())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func InitDraft(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, ok := findLobby(w, r, d)
		if !ok {
			return
		}
		pool, err := d.Catalog.Templates(r.Context())
		if err != nil {
			d.Logger.Error("loading catalog", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "catalog unavailable")
			return
		}
		apply(w, r, lb, engine.Command{Type: engine.CmdInitDraft, Pool: pool})
	}
}

type pickRequest struct {
	AlgorithmID string `json:"algorithm_id" validate:"required,max=64"`
}

func DraftPick(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, ok := findLobby(w, r, d)
		if !ok {
			return
		}
		var req pickRequest
		if !decode(w, r, d.Validate, &req) {
			return
		}
		apply(w, r, lb, engine.Command{Type: engine.CmdDraftPick, Side: engine.SidePlayer, AlgorithmID: req.AlgorithmID})
	}
}

type actionRequest struct {
	Action string `json:"action" validate:"required,oneof=attack switch boost defend"`
	Target string `json:"target" validate:"required_if=Action switch,max=64"`
}

func SubmitAction(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, ok := findLobby(w, r, d)
		if !ok {
			return
		}
		var req actionRequest
		if !decode(w, r, d.Validate, &req) {
			return
		}
		action, err := engine.ParseAction(req.Action, req.Target)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		apply(w, r, lb, engine.Command{Type: engine.CmdSubmitAction, Side: engine.SidePlayer, Action: action})
	}
}

type challengeRequest struct {
	Accuracy *float64 `json:"accuracy" validate:"required"`
}

func ChallengeResult(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, ok := findLobby(w, r, d)
		if !ok {
			return
		}
		var req challengeRequest
		if !decode(w, r, d.Validate, &req) {
			return
		}
		apply(w, r, lb, engine.Command{Type: engine.CmdChallengeResult, Side: engine.SidePlayer, Accuracy: *req.Accuracy})
	}
}

func ResetBattle(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, ok := findLobby(w, r, d)
		if !ok {
			return
		}
		apply(w, r, lb, engine.Command{Type: engine.CmdReset})
	}
}

func ListAlgorithms(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates, err := d.Catalog.Templates(r.Context())
		if err != nil {
			d.Logger.Error("loading catalog", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "catalog unavailable")
			return
		}
		out := make([]pkgtypes.Algorithm, 0, len(templates))
		for _, t := range templates {
			out = append(out, pkgtypes.NewAlgorithm(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return mrand.IntN(n) }

func TypingPassage(d Deps) http.HandlerFunc {
	words := d.Words
	if len(words) == 0 {
		words = typing.DefaultWords
	}
	return func(w http.ResponseWriter, r *http.Request) {
		n := defaultPassage
		if raw := r.URL.Query().Get("words"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 1 || v > maxPassage {
				writeError(w, http.StatusBadRequest, "words must be between 1 and "+strconv.Itoa(maxPassage))
				return
			}
			n = v
		}
		writeJSON(w, http.StatusOK, struct {
			Passage string `json:"passage"`
		}{Passage: typing.NewPassage(globalRand{}, words, n)})
	}
}

type scoreRequest struct {
	Reference string `json:"reference" validate:"required"`
	Typed     string `json:"typed"`
	ElapsedMS int64  `json:"elapsed_ms" validate:"gte=0"`
}

func TypingScore(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req scoreRequest
		if !decode(w, r, d.Validate, &req) {
			return
		}
		writeJSON(w, http.StatusOK, typing.Score(req.Reference, req.Typed, time.Duration(req.ElapsedMS)*time.Millisecond))
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func findLobby(w http.ResponseWriter, r *http.Request, d Deps) (*lobby.Lobby, bool) {
	reply := make(chan *lobby.Lobby, 1)
	d.Hub.Inbox() <- hub.GetLobby{Code: chi.URLParam(r, "code"), Reply: reply}
	lb := <-reply
	if lb == nil {
		writeError(w, http.StatusNotFound, errLobbyNotFound.Error())
		return nil, false
	}
	return lb, true
}

// apply submits cmd and answers with the resulting snapshot.
func apply(w http.ResponseWriter, r *http.Request, lb *lobby.Lobby, cmd engine.Command) {
	ctx, cancel := context.WithTimeout(r.Context(), lobbyCallTimeout)
	defer cancel()
	if err := lb.Submit(ctx, cmd); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeSnapshot(w, r, lb)
}

func writeSnapshot(w http.ResponseWriter, r *http.Request, lb *lobby.Lobby) {
	ctx, cancel := context.WithTimeout(r.Context(), lobbyCallTimeout)
	defer cancel()
	v, err := lb.View(ctx)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pkgtypes.NewSnapshot(lb.ID(), v.Version, v.State))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrWrongTurn),
		errors.Is(err, engine.ErrWrongPhase),
		errors.Is(err, engine.ErrActionPending):
		return http.StatusConflict
	case errors.Is(err, engine.ErrIllegalPick),
		errors.Is(err, engine.ErrTeamFull),
		errors.Is(err, engine.ErrIllegalAction),
		errors.Is(err, engine.ErrIllegalSwitch),
		errors.Is(err, engine.ErrInsufficientPool):
		return http.StatusUnprocessableEntity
	case errors.Is(err, lobby.ErrClosed):
		return http.StatusGone
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return false
	}
	if err := v.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, struct {
		Error string `json:"error"`
	}{Error: msg})
}
