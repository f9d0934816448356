package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/DoyleJ11/algo-battle-backend/internal/catalog"
	"github.com/DoyleJ11/algo-battle-backend/internal/engine"
	"github.com/DoyleJ11/algo-battle-backend/internal/hub"
	"github.com/DoyleJ11/algo-battle-backend/internal/lobby"
	"github.com/DoyleJ11/algo-battle-backend/internal/types"
	pkgtypes "github.com/DoyleJ11/algo-battle-backend/pkg/types"
)

const (
	readIdleTimeout = 2 * time.Minute
	writeTimeout    = 3 * time.Second
	replyTimeout    = 2 * time.Second
)

type Deps struct {
	Hub            *hub.Hub
	Catalog        catalog.Provider
	Validate       *validator.Validate
	Logger         *zap.Logger
	OriginPatterns []string
}

func Handler(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		d.Hub.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "lobby not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: d.OriginPatterns})
		if err != nil {
			d.Logger.Warn("websocket accept failed", zap.String("lobby", code), zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan lobby.Snapshot, 8)
		clientID := uuid.NewString()
		log := d.Logger.With(zap.String("lobby", code), zap.String("client", clientID))

		if !lb.Join(clientID, out) {
			conn.Close(websocket.StatusGoingAway, "lobby closed")
			return
		}
		defer func() {
			select {
			case lb.Inbox() <- lobby.Leave{ClientID: clientID}:
			case <-lb.Done():
			}
		}()
		log.Info("client joined")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			// Lobby dropped us or shut down.
			defer conn.Close(websocket.StatusGoingAway, "lobby closed")
			for {
				select {
				case snap, ok := <-out:
					if !ok {
						return
					}
					dto := pkgtypes.NewSnapshot(code, snap.Version, snap.State)
					writeMessage(writeCtx, conn, types.ServerMessage{Type: pkgtypes.MsgStateSnapshot, Snapshot: &dto})
				case <-lb.Done():
					return
				case <-writeCtx.Done():
					return
				}
			}
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(r.Context(), readIdleTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Info("client left")
				default:
					log.Debug("read ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}
			if err := d.Validate.Struct(cm); err != nil {
				writeError(r.Context(), conn, err.Error())
				continue
			}

			cmd, err := toEngineCommand(r.Context(), cm, d.Catalog)
			if err != nil {
				writeError(r.Context(), conn, err.Error())
				continue
			}

			ctx, cancel = context.WithTimeout(r.Context(), replyTimeout)
			err = lb.Submit(ctx, cmd)
			cancel()
			if err != nil {
				writeError(r.Context(), conn, err.Error())
			}
		}
	}
}

func toEngineCommand(ctx context.Context, m types.ClientMessage, cat catalog.Provider) (engine.Command, error) {
	cmd, err := m.Command()
	if err != nil {
		return engine.Command{}, err
	}
	if cmd.Type == engine.CmdInitDraft {
		cmd.Pool, err = cat.Templates(ctx)
		if err != nil {
			return engine.Command{}, err
		}
	}
	return cmd, nil
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(ctx, websocket.MessageText, payload)
}

func writeError(ctx context.Context, conn *websocket.Conn, msg string) {
	writeMessage(ctx, conn, types.ServerMessage{Type: pkgtypes.MsgError, Error: msg})
}
