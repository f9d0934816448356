package lobby

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/algo-battle-backend/internal/engine"
)

type Msg interface{ isLobbyMsg() }

// FromClient carries one inbound command. Reply, when set, receives the engine's verdict.
type FromClient struct {
	Cmd   engine.Command
	Reply chan error
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// Export fields
type Snapshot struct {
	Version int
	State   engine.State
}

type View struct {
	Version    int
	NumClients int
	Epoch      uint64
	State      engine.State
}

// Pacing holds the UI delays between engine steps. TickInterval drives the turn countdown; zero disables it.
type Pacing struct {
	DraftPickDelay   time.Duration
	BattleStartDelay time.Duration
	ResolveDelay     time.Duration
	TickInterval     time.Duration
}

type Options struct {
	ID     string
	Rules  engine.Rules
	Pacing Pacing
	Source engine.Source
	Logger *zap.Logger
}

type Lobby struct {
	id      string
	inbox   chan Msg
	state   engine.State
	version int
	epoch   uint64
	clients map[string]chan Snapshot
	sched   *Scheduler
	src     engine.Source
	pacing  Pacing
	logger  *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewLobby(parent context.Context, opts Options) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	l := &Lobby{
		id:      opts.ID,
		inbox:   make(chan Msg, 64), // Small buffer
		state:   engine.NewState(opts.Rules),
		clients: make(map[string]chan Snapshot),
		src:     opts.Source,
		pacing:  opts.Pacing,
		logger:  logger.With(zap.String("lobby", opts.ID)),
		ctx:     ctx,
		cancel:  cancel,
	}
	l.sched = NewScheduler(func(c Continuation) {
		select {
		case l.inbox <- c:
		case <-l.ctx.Done():
		}
	})

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	var tick <-chan time.Time
	if l.pacing.TickInterval > 0 {
		ticker := time.NewTicker(l.pacing.TickInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case <-tick:
			_ = l.apply(engine.Command{Type: engine.CmdTick})

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: l.version, State: l.state}

			case Leave:
				if ch, ok := l.clients[msg.ClientID]; ok {
					close(ch)
					delete(l.clients, msg.ClientID)
				}

			case FromClient:
				err := l.apply(msg.Cmd)
				if msg.Reply != nil {
					msg.Reply <- err
				}

			case Continuation:
				if msg.Epoch != l.epoch {
					l.logger.Debug("dropping stale continuation",
						zap.String("command", string(msg.Cmd.Type)),
						zap.Uint64("epoch", msg.Epoch),
						zap.Uint64("current_epoch", l.epoch))
					break
				}
				_ = l.apply(msg.Cmd)

			case GetState:
				msg.Reply <- View{
					Version:    l.version,
					NumClients: len(l.clients),
					Epoch:      l.epoch,
					State:      l.state,
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

// apply runs one command through the engine. Rejections leave state and version alone.
func (l *Lobby) apply(cmd engine.Command) error {
	events, newState, err := engine.Apply(l.state, cmd, l.src)
	if err != nil {
		l.logger.Warn("command rejected",
			zap.String("command", string(cmd.Type)),
			zap.String("phase", string(l.state.Phase)),
			zap.Error(err))
		return err
	}

	if cmd.Type == engine.CmdReset {
		l.epoch++
		l.sched.CancelAll()
	}
	if newState.Phase != l.state.Phase {
		l.logger.Debug("phase changed",
			zap.String("from", string(l.state.Phase)),
			zap.String("to", string(newState.Phase)),
			zap.Int("turn", newState.Turn))
	}

	l.state = newState
	if len(events) == 0 {
		return nil
	}
	l.version++
	l.schedule(events)
	l.broadcast(Snapshot{Version: l.version, State: l.state})
	return nil
}

func (l *Lobby) schedule(events []engine.Event) {
	for _, e := range events {
		switch e.Type {
		case engine.EvtCombatantDrafted:
			if e.Side == engine.SidePlayer {
				l.sched.After(l.pacing.DraftPickDelay, Continuation{Epoch: l.epoch, Cmd: engine.Command{Type: engine.CmdAIDraftPick}})
			}
		case engine.EvtDraftCompleted:
			l.sched.After(l.pacing.BattleStartDelay, Continuation{Epoch: l.epoch, Cmd: engine.Command{Type: engine.CmdStartBattle}})
		case engine.EvtTurnResolved:
			l.sched.After(l.pacing.ResolveDelay, Continuation{Epoch: l.epoch, Cmd: engine.Command{Type: engine.CmdEndTurn}})
		case engine.EvtBattleEnded:
			l.logger.Info("battle finished", zap.String("winner", string(e.Side)), zap.Int("turn", l.state.Turn))
		}
	}
}

func (l *Lobby) shutdown() {
	l.sched.CancelAll()
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		select {
		case ch <- snap:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(l.clients, id)
		}
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

func (l *Lobby) ID() string { return l.id }

// Done is closed once the lobby has shut down.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }

var ErrClosed = errors.New("lobby closed")

// Join registers out for snapshots. It reports false if the lobby has already shut down,
// in which case out is never written to or closed.
func (l *Lobby) Join(clientID string, out chan Snapshot) bool {
	select {
	case <-l.ctx.Done():
		return false
	default:
	}
	select {
	case l.inbox <- Join{ClientID: clientID, Outbox: out}:
		return true
	case <-l.ctx.Done():
		return false
	}
}

// Submit hands cmd to the lobby and waits for the engine's verdict.
func (l *Lobby) Submit(ctx context.Context, cmd engine.Command) error {
	reply := make(chan error, 1)
	select {
	case l.inbox <- FromClient{Cmd: cmd, Reply: reply}:
	case <-l.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-l.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// View returns the current version and state.
func (l *Lobby) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case l.inbox <- GetState{Reply: reply}:
	case <-l.ctx.Done():
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}

	select {
	case v := <-reply:
		return v, nil
	case <-l.ctx.Done():
		return View{}, ErrClosed
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}
