package engine

import "fmt"

type ActionKind string

const (
	ActionAttack ActionKind = "attack"
	ActionSwitch ActionKind = "switch"
	ActionBoost  ActionKind = "boost"
	ActionDefend ActionKind = "defend"
)

// Action is one side's choice for a turn. Only SwitchAction carries data.
type Action interface {
	Kind() ActionKind
	isAction()
}

type AttackAction struct{}

type SwitchAction struct {
	Target string
}

type BoostAction struct{}

type DefendAction struct{}

func (AttackAction) Kind() ActionKind { return ActionAttack }
func (SwitchAction) Kind() ActionKind { return ActionSwitch }
func (BoostAction) Kind() ActionKind  { return ActionBoost }
func (DefendAction) Kind() ActionKind { return ActionDefend }

func (AttackAction) isAction() {}
func (SwitchAction) isAction() {}
func (BoostAction) isAction()  {}
func (DefendAction) isAction() {}

// Priority ranks action kinds: switch before boost/defend before attack.
func Priority(a Action) int {
	switch a.Kind() {
	case ActionSwitch:
		return 3
	case ActionBoost, ActionDefend:
		return 2
	case ActionAttack:
		return 1
	default:
		return 0
	}
}

// ParseAction builds an Action from its wire form. target is only read for switches.
func ParseAction(kind string, target string) (Action, error) {
	switch ActionKind(kind) {
	case ActionAttack:
		return AttackAction{}, nil
	case ActionSwitch:
		if target == "" {
			return nil, fmt.Errorf("%w: switch needs a target", ErrIllegalAction)
		}
		return SwitchAction{Target: target}, nil
	case ActionBoost:
		return BoostAction{}, nil
	case ActionDefend:
		return DefendAction{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrIllegalAction, kind)
	}
}
