package types

import (
	"errors"
	"fmt"

	"github.com/DoyleJ11/algo-battle-backend/internal/engine"
	pkgtypes "github.com/DoyleJ11/algo-battle-backend/pkg/types"
)

// ClientMessage is one inbound websocket frame. Which fields matter depends on Type.
type ClientMessage struct {
	Type        string   `json:"type" validate:"required,oneof=InitDraft DraftPick SubmitAction ChallengeResult Reset"`
	AlgorithmID string   `json:"algorithm_id,omitempty" validate:"omitempty,max=64"`
	Action      string   `json:"action,omitempty" validate:"omitempty,oneof=attack switch boost defend"`
	Target      string   `json:"target,omitempty" validate:"omitempty,max=64"`
	Accuracy    *float64 `json:"accuracy,omitempty" validate:"omitempty"`
}

type ServerMessage struct {
	Type     string             `json:"type"` // "StateSnapshot" | "Error"
	Snapshot *pkgtypes.Snapshot `json:"snapshot,omitempty"`
	Error    string             `json:"error,omitempty"`
}

var ErrBadMessage = errors.New("bad message")

// Command maps a validated client message onto an engine command for the human side.
// InitDraft leaves Pool empty; the caller fills it from the catalog.
func (m ClientMessage) Command() (engine.Command, error) {
	switch m.Type {
	case pkgtypes.MsgInitDraft:
		return engine.Command{Type: engine.CmdInitDraft}, nil
	case pkgtypes.MsgDraftPick:
		if m.AlgorithmID == "" {
			return engine.Command{}, fmt.Errorf("%w: algorithm_id required", ErrBadMessage)
		}
		return engine.Command{Type: engine.CmdDraftPick, Side: engine.SidePlayer, AlgorithmID: m.AlgorithmID}, nil
	case pkgtypes.MsgSubmitAction:
		action, err := engine.ParseAction(m.Action, m.Target)
		if err != nil {
			return engine.Command{}, err
		}
		return engine.Command{Type: engine.CmdSubmitAction, Side: engine.SidePlayer, Action: action}, nil
	case pkgtypes.MsgChallengeResult:
		if m.Accuracy == nil {
			return engine.Command{}, fmt.Errorf("%w: accuracy required", ErrBadMessage)
		}
		return engine.Command{Type: engine.CmdChallengeResult, Side: engine.SidePlayer, Accuracy: *m.Accuracy}, nil
	case pkgtypes.MsgReset:
		return engine.Command{Type: engine.CmdReset}, nil
	default:
		return engine.Command{}, fmt.Errorf("%w: unknown type %q", ErrBadMessage, m.Type)
	}
}
