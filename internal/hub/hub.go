package hub

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/DoyleJ11/algo-battle-backend/internal/lobby"
)

type HubMsg interface{ isHubMsg() }

type CreateLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

// EnsureLobby returns the lobby for Code, creating it on first use.
type EnsureLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

// RemoveLobby shuts the lobby down and forgets it. Reply is optional.
type RemoveLobby struct {
	Code  string
	Reply chan bool
}

type ListLobbies struct {
	Reply chan []string
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (EnsureLobby) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ListLobbies) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

// LobbyOptions builds the options for a new lobby keyed by its code.
type LobbyOptions func(code string) lobby.Options

type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	newOpts LobbyOptions
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, newOpts LobbyOptions, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		newOpts: newOpts,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed once the hub has shut down.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				msg.Reply <- h.ensure(msg.Code)

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // May be nil

			case EnsureLobby:
				msg.Reply <- h.ensure(msg.Code)

			case RemoveLobby:
				lb, ok := h.lobbies[msg.Code]
				if ok {
					lb.Inbox() <- lobby.Shutdown{}
					delete(h.lobbies, msg.Code)
					h.logger.Info("lobby removed", zap.String("lobby", msg.Code))
				}
				if msg.Reply != nil {
					msg.Reply <- ok
				}

			case ListLobbies:
				codes := make([]string, 0, len(h.lobbies))
				for code := range h.lobbies {
					codes = append(codes, code)
				}
				slices.Sort(codes)
				msg.Reply <- codes

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) ensure(code string) *lobby.Lobby {
	if lb := h.lobbies[code]; lb != nil {
		return lb
	}
	opts := lobby.Options{ID: code}
	if h.newOpts != nil {
		opts = h.newOpts(code)
		opts.ID = code
	}
	lb := lobby.NewLobby(h.ctx, opts)
	h.lobbies[code] = lb
	h.logger.Info("lobby created", zap.String("lobby", code))
	return lb
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		lb.Inbox() <- lobby.Shutdown{}
	}
	clear(h.lobbies)
	h.cancel()
}
