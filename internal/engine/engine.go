package engine

import "errors"

var ErrWrongTurn = errors.New("invalid turn")
var ErrWrongPhase = errors.New("command not allowed in current phase")
var ErrIllegalPick = errors.New("illegal algorithm")
var ErrTeamFull = errors.New("team already full")
var ErrInsufficientPool = errors.New("insufficient pool")
var ErrActionPending = errors.New("action already pending for this turn")
var ErrIllegalAction = errors.New("illegal action")
var ErrIllegalSwitch = errors.New("illegal switch target")
var ErrUnsupportedCommand = errors.New("unsupported command")

// Source is the randomness the engine draws from. *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

type Side string

const (
	SidePlayer   Side = "player"
	SideOpponent Side = "opponent"
)

func (s Side) Opposite() Side {
	if s == SidePlayer {
		return SideOpponent
	}
	return SidePlayer
}

type Phase string

const (
	PhaseDraft         Phase = "draft"
	PhaseActionSelect  Phase = "action-select"
	PhaseCodeChallenge Phase = "code-challenge"
	PhaseResolve       Phase = "resolve"
	PhaseResult        Phase = "result"
)

type State struct {
	Phase     Phase
	Pool      []Template
	DraftTurn Side
	Teams     map[Side][]Combatant
	Active    map[Side]int
	// Pending holds the actions chosen for the current turn until it resolves.
	Pending  map[Side]Action
	Turn     int
	TimeLeft int
	Log      BattleLog
	Winner   Side
	Rules    Rules
}

type Rules struct {
	TurnTimerSec int
}

type CommandType string

const (
	CmdInitDraft       CommandType = "InitDraft"
	CmdDraftPick       CommandType = "DraftPick"
	CmdAIDraftPick     CommandType = "AIDraftPick"
	CmdStartBattle     CommandType = "StartBattle"
	CmdSubmitAction    CommandType = "SubmitAction"
	CmdChallengeResult CommandType = "ChallengeResult"
	CmdEndTurn         CommandType = "EndTurn"
	CmdTick            CommandType = "Tick"
	CmdReset           CommandType = "Reset"
)

/*
	CmdInitDraft       -> EvtDraftStarted
	CmdDraftPick       -> EvtCombatantDrafted -> EvtDraftTurnPassed
	CmdAIDraftPick     -> EvtCombatantDrafted -> EvtDraftTurnPassed (-> EvtDraftCompleted)
	CmdStartBattle     -> EvtBattleStarted
	CmdSubmitAction    -> EvtActionSubmitted x2 -> EvtChallengeStarted | EvtTurnResolved
	CmdChallengeResult -> EvtTurnResolved
	CmdEndTurn         -> (EvtForcedSwitch) -> EvtTurnAdvanced | EvtBattleEnded
	CmdTick            -> EvtTimerTicked | EvtTimerExpired -> submit/challenge events
	CmdReset           -> EvtReset
*/

type Command struct {
	Type        CommandType
	Side        Side
	AlgorithmID string
	Action      Action
	Accuracy    float64
	Pool        []Template
}

type EventType string

const (
	EvtDraftStarted     EventType = "DraftStarted"
	EvtCombatantDrafted EventType = "CombatantDrafted"
	EvtDraftTurnPassed  EventType = "DraftTurnPassed"
	EvtDraftCompleted   EventType = "DraftCompleted"
	EvtBattleStarted    EventType = "BattleStarted"
	EvtActionSubmitted  EventType = "ActionSubmitted"
	EvtChallengeStarted EventType = "ChallengeStarted"
	EvtTurnResolved     EventType = "TurnResolved"
	EvtForcedSwitch     EventType = "ForcedSwitch"
	EvtTurnAdvanced     EventType = "TurnAdvanced"
	EvtBattleEnded      EventType = "BattleEnded"
	EvtTimerTicked      EventType = "TimerTicked"
	EvtTimerExpired     EventType = "TimerExpired"
	EvtReset            EventType = "Reset"
)

type Event struct {
	Type        EventType
	Side        Side
	AlgorithmID string
	Action      ActionKind
}

// Apply runs cmd against a copy of s. On error the original state is returned untouched.
func Apply(s State, cmd Command, src Source) ([]Event, State, error) {
	if cmd.Type == CmdReset {
		return []Event{{Type: EvtReset}}, NewState(s.Rules), nil
	}

	next := s.Clone()
	var (
		events []Event
		err    error
	)

	switch cmd.Type {
	case CmdInitDraft:
		events, err = next.initDraft(cmd.Pool, src)
	case CmdDraftPick:
		events, err = next.draftPick(cmd.Side, cmd.AlgorithmID)
	case CmdAIDraftPick:
		events, err = next.aiDraftPick(src)
	case CmdStartBattle:
		events, err = next.startBattle()
	case CmdSubmitAction:
		events, err = next.submitAction(cmd.Action, src)
	case CmdChallengeResult:
		events, err = next.challengeResult(cmd.Accuracy, src)
	case CmdEndTurn:
		events, err = next.endTurn()
	case CmdTick:
		events, err = next.tick(src)
	default:
		err = ErrUnsupportedCommand
	}

	if err != nil {
		return nil, s, err
	}
	return events, next, nil
}
