package engine

import (
	"maps"
	"slices"
)

const DefaultTurnTimerSec = 30

func NewState(rules Rules) State {
	if rules.TurnTimerSec <= 0 {
		rules.TurnTimerSec = DefaultTurnTimerSec
	}
	return State{
		Phase:     PhaseDraft,
		Pool:      []Template{},
		DraftTurn: SidePlayer,
		Teams:     map[Side][]Combatant{SidePlayer: {}, SideOpponent: {}},
		Active:    map[Side]int{SidePlayer: 0, SideOpponent: 0},
		Pending:   map[Side]Action{},
		Log:       BattleLog{},
		Rules:     rules,
	}
}

// Clone deep-copies every slice and map so the copy can be mutated freely.
func (s State) Clone() State {
	c := s
	c.Pool = slices.Clone(s.Pool)
	c.Teams = make(map[Side][]Combatant, len(s.Teams))
	for side, team := range s.Teams {
		c.Teams[side] = slices.Clone(team)
	}
	c.Active = maps.Clone(s.Active)
	if c.Active == nil {
		c.Active = map[Side]int{}
	}
	c.Pending = maps.Clone(s.Pending)
	if c.Pending == nil {
		c.Pending = map[Side]Action{}
	}
	c.Log = slices.Clone(s.Log)
	return c
}

// ActiveCombatant returns a pointer into the state's own team slice.
func (s *State) ActiveCombatant(side Side) *Combatant {
	team := s.Teams[side]
	i, ok := s.Active[side]
	if !ok || i < 0 || i >= len(team) {
		return nil
	}
	return &team[i]
}

func (s State) teamIndex(side Side, id string) (int, bool) {
	for i, c := range s.Teams[side] {
		if c.ID == id {
			return i, true
		}
	}
	return -1, false
}

// firstAliveTeammate finds the first non-fainted member other than the active one.
func (s State) firstAliveTeammate(side Side) (int, bool) {
	active := s.Active[side]
	for i, c := range s.Teams[side] {
		if i != active && !c.Fainted() {
			return i, true
		}
	}
	return -1, false
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

var chooseRandomLegal = func(s State, src Source) (string, bool) {
	if len(s.Pool) == 0 {
		return "", false
	}
	return s.Pool[src.IntN(len(s.Pool))].ID, true
}
