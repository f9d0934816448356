package engine

import "fmt"

func (s *State) submitAction(a Action, src Source) ([]Event, error) {
	if s.Pending[SidePlayer] != nil {
		return nil, ErrActionPending
	}
	if s.Phase != PhaseActionSelect {
		return nil, ErrWrongPhase
	}
	if a == nil {
		return nil, ErrIllegalAction
	}
	if sw, ok := a.(SwitchAction); ok {
		if err := s.checkSwitch(SidePlayer, sw.Target); err != nil {
			return nil, err
		}
	}

	opp := ChooseAction(*s, src)
	s.Pending[SidePlayer] = a
	s.Pending[SideOpponent] = opp
	events := []Event{
		{Type: EvtActionSubmitted, Side: SidePlayer, Action: a.Kind()},
		{Type: EvtActionSubmitted, Side: SideOpponent, Action: opp.Kind()},
	}

	if a.Kind() == ActionAttack {
		if err := s.transition(transOpenChallenge); err != nil {
			return nil, err
		}
		return append(events, Event{Type: EvtChallengeStarted, Side: SidePlayer}), nil
	}
	return append(events, s.resolve(100, src)...), nil
}

func (s *State) challengeResult(accuracy float64, src Source) ([]Event, error) {
	if s.Phase != PhaseCodeChallenge {
		return nil, ErrWrongPhase
	}
	return s.resolve(ClampAccuracy(accuracy), src), nil
}

// resolve runs both pending actions in turn order. The lobby schedules EndTurn afterwards.
func (s *State) resolve(playerAccuracy float64, src Source) []Event {
	// Both callers have already checked the phase, so the transition cannot fail.
	_ = s.transition(transResolve)

	player, opponent := s.Pending[SidePlayer], s.Pending[SideOpponent]
	actions := map[Side]Action{SidePlayer: player, SideOpponent: opponent}
	for _, side := range TurnOrder(*s, player, opponent) {
		s.execute(side, actions[side], playerAccuracy, src)
	}
	s.Pending = map[Side]Action{}
	return []Event{{Type: EvtTurnResolved}}
}

func (s *State) execute(side Side, a Action, playerAccuracy float64, src Source) {
	actor := s.ActiveCombatant(side)
	if actor == nil || a == nil {
		return
	}
	if actor.Fainted() {
		s.Log = s.Log.Append(fmt.Sprintf("%s can't act!", actor.Name))
		return
	}

	switch act := a.(type) {
	case AttackAction:
		defender := s.ActiveCombatant(side.Opposite())
		if defender == nil || defender.Fainted() {
			return
		}
		accuracy := playerAccuracy
		if side == SideOpponent {
			accuracy = aiAccuracy(src)
		}
		_, msg := strike(actor, defender, accuracy)
		s.Log = s.Log.Append(msg)

	case SwitchAction:
		if s.checkSwitch(side, act.Target) != nil {
			return
		}
		i, _ := s.teamIndex(side, act.Target)
		s.Active[side] = i
		s.Log = s.Log.Append(fmt.Sprintf("%s switched %s out for %s!", side, actor.Name, s.Teams[side][i].Name))

	case BoostAction:
		actor.Boost()
		s.Log = s.Log.Append(fmt.Sprintf("%s boosted its stats!", actor.Name))

	case DefendAction:
		actor.Defending = true
		s.Log = s.Log.Append(fmt.Sprintf("%s is defending!", actor.Name))
	}
}

func (s State) checkSwitch(side Side, target string) error {
	i, ok := s.teamIndex(side, target)
	if !ok {
		return fmt.Errorf("%w: %q is not on the team", ErrIllegalSwitch, target)
	}
	if i == s.Active[side] {
		return fmt.Errorf("%w: %q is already active", ErrIllegalSwitch, target)
	}
	if s.Teams[side][i].Fainted() {
		return fmt.Errorf("%w: %q has fainted", ErrIllegalSwitch, target)
	}
	return nil
}

// endTurn is the knockout check after the resolve pause. A fainted active combatant is replaced by
// the first living teammate; a side with nobody left loses.
func (s *State) endTurn() ([]Event, error) {
	if s.Phase != PhaseResolve {
		return nil, ErrWrongPhase
	}

	var events []Event
	for _, side := range []Side{SidePlayer, SideOpponent} {
		active := s.ActiveCombatant(side)
		if active == nil || !active.Fainted() {
			continue
		}
		i, ok := s.firstAliveTeammate(side)
		if !ok {
			if err := s.transition(transFinish); err != nil {
				return nil, err
			}
			s.Winner = side.Opposite()
			s.TimeLeft = 0
			s.Log = s.Log.Append(fmt.Sprintf("%s was defeated! The %s wins!", active.Name, s.Winner))
			return append(events, Event{Type: EvtBattleEnded, Side: s.Winner}), nil
		}
		s.Active[side] = i
		next := s.Teams[side][i]
		s.Log = s.Log.Append(fmt.Sprintf("%s was defeated! %s steps in.", active.Name, next.Name))
		events = append(events, Event{Type: EvtForcedSwitch, Side: side, AlgorithmID: next.ID})
	}

	if err := s.transition(transNextTurn); err != nil {
		return nil, err
	}
	s.Turn++
	s.TimeLeft = s.Rules.TurnTimerSec
	return append(events, Event{Type: EvtTurnAdvanced}), nil
}

// tick counts the shared timer down. On expiry the player defends, or scores zero on a pending challenge.
// Outside the timed phases it does nothing.
func (s *State) tick(src Source) ([]Event, error) {
	if s.Phase != PhaseActionSelect && s.Phase != PhaseCodeChallenge {
		return nil, nil
	}
	if s.TimeLeft > 0 {
		s.TimeLeft--
	}
	if s.TimeLeft > 0 {
		return []Event{{Type: EvtTimerTicked}}, nil
	}

	events := []Event{{Type: EvtTimerExpired, Side: SidePlayer}}
	var (
		more []Event
		err  error
	)
	if s.Phase == PhaseActionSelect {
		more, err = s.submitAction(DefendAction{}, src)
	} else {
		more, err = s.challengeResult(0, src)
	}
	if err != nil {
		return nil, err
	}
	return append(events, more...), nil
}
