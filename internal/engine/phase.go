package engine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
)

const (
	transStartBattle   = "start-battle"
	transOpenChallenge = "open-challenge"
	transResolve       = "resolve"
	transNextTurn      = "next-turn"
	transFinish        = "finish"
)

// phaseEvents is the full transition table. Reset is not listed: it rebuilds the state instead.
var phaseEvents = fsm.Events{
	{Name: transStartBattle, Src: []string{string(PhaseDraft)}, Dst: string(PhaseActionSelect)},
	{Name: transOpenChallenge, Src: []string{string(PhaseActionSelect)}, Dst: string(PhaseCodeChallenge)},
	{Name: transResolve, Src: []string{string(PhaseActionSelect), string(PhaseCodeChallenge)}, Dst: string(PhaseResolve)},
	{Name: transNextTurn, Src: []string{string(PhaseResolve)}, Dst: string(PhaseActionSelect)},
	{Name: transFinish, Src: []string{string(PhaseResolve)}, Dst: string(PhaseResult)},
}

func (s *State) transition(name string) error {
	m := fsm.NewFSM(string(s.Phase), phaseEvents, fsm.Callbacks{})
	if err := m.Event(context.Background(), name); err != nil {
		return fmt.Errorf("%w: %s from %s", ErrWrongPhase, name, s.Phase)
	}
	s.Phase = Phase(m.Current())
	return nil
}
