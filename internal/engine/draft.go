package engine

import (
	"fmt"
	"slices"
)

const (
	TeamSize = 3
	PoolSize = 9
)

func (s *State) initDraft(all []Template, src Source) ([]Event, error) {
	if s.Phase != PhaseDraft {
		return nil, ErrWrongPhase
	}
	if len(all) < 2*TeamSize {
		return nil, fmt.Errorf("%w: need %d algorithms, got %d", ErrInsufficientPool, 2*TeamSize, len(all))
	}

	pool := slices.Clone(all)
	for i := len(pool) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	if len(pool) > PoolSize {
		pool = pool[:PoolSize]
	}

	s.Pool = pool
	s.Teams = map[Side][]Combatant{SidePlayer: {}, SideOpponent: {}}
	s.Active = map[Side]int{SidePlayer: 0, SideOpponent: 0}
	s.DraftTurn = SidePlayer
	return []Event{{Type: EvtDraftStarted}}, nil
}

func (s *State) draftPick(side Side, id string) ([]Event, error) {
	if s.Phase != PhaseDraft {
		return nil, ErrWrongPhase
	}
	if side != s.DraftTurn {
		return nil, ErrWrongTurn
	}
	if len(s.Teams[side]) >= TeamSize {
		return nil, ErrTeamFull
	}
	i := slices.IndexFunc(s.Pool, func(t Template) bool { return t.ID == id })
	if i < 0 {
		return nil, ErrIllegalPick
	}

	s.Teams[side] = append(s.Teams[side], NewCombatant(s.Pool[i]))
	s.Pool = slices.Delete(s.Pool, i, i+1)
	s.DraftTurn = side.Opposite()

	events := []Event{
		{Type: EvtCombatantDrafted, Side: side, AlgorithmID: id},
		{Type: EvtDraftTurnPassed, Side: s.DraftTurn},
	}
	if s.DraftComplete() {
		events = append(events, Event{Type: EvtDraftCompleted})
	}
	return events, nil
}

func (s *State) aiDraftPick(src Source) ([]Event, error) {
	if s.Phase != PhaseDraft {
		return nil, ErrWrongPhase
	}
	if s.DraftTurn != SideOpponent {
		return nil, ErrWrongTurn
	}
	id, ok := chooseRandomLegal(*s, src)
	if !ok {
		return nil, ErrInsufficientPool
	}
	return s.draftPick(SideOpponent, id)
}

func (s State) DraftComplete() bool {
	return len(s.Teams[SidePlayer]) == TeamSize && len(s.Teams[SideOpponent]) == TeamSize
}

func (s *State) startBattle() ([]Event, error) {
	if s.Phase != PhaseDraft {
		return nil, ErrWrongPhase
	}
	if !s.DraftComplete() {
		return nil, fmt.Errorf("%w: teams incomplete", ErrInsufficientPool)
	}
	if err := s.transition(transStartBattle); err != nil {
		return nil, err
	}
	s.Active = map[Side]int{SidePlayer: 0, SideOpponent: 0}
	s.Pending = map[Side]Action{}
	s.Turn = 1
	s.TimeLeft = s.Rules.TurnTimerSec
	s.Log = s.Log.Append("Battle Start!")
	return []Event{{Type: EvtBattleStarted}}, nil
}
