package lobby

import (
	"sync"
	"time"

	"github.com/DoyleJ11/algo-battle-backend/internal/engine"
)

// Continuation is a delayed engine command. It is only applied if Epoch still matches the lobby's epoch.
type Continuation struct {
	Epoch uint64
	Cmd   engine.Command
}

func (Continuation) isLobbyMsg() {}

// Scheduler fires continuations after a delay. Timers are tracked so a reset or shutdown can stop them.
type Scheduler struct {
	mu      sync.Mutex
	nextID  uint64
	timers  map[uint64]*time.Timer
	deliver func(Continuation)
}

func NewScheduler(deliver func(Continuation)) *Scheduler {
	return &Scheduler{
		timers:  make(map[uint64]*time.Timer),
		deliver: deliver,
	}
}

func (s *Scheduler) After(d time.Duration, c Continuation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.timers[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[id]
		delete(s.timers, id)
		s.mu.Unlock()
		if live {
			s.deliver(c)
		}
	})
}

// CancelAll stops every pending timer. A callback already past its live check may still deliver;
// the lobby drops it by epoch.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
