package engine

const (
	aiLowHPRatio     = 0.3
	aiSwitchChance   = 0.5
	aiBoostChance    = 0.10
	aiDefendChance   = 0.20
	aiBaseAccuracy   = 85
	aiAccuracySpread = 10
)

// ChooseAction is the opponent's policy. It is stateless: the same state and draws give the same action.
//
// A badly hurt active combatant is swapped for the first living teammate half the time.
// Otherwise one draw picks boost (10%), defend (10%) or attack.
func ChooseAction(s State, src Source) Action {
	if active := s.ActiveCombatant(SideOpponent); active != nil &&
		float64(active.CurrentHP) < aiLowHPRatio*float64(active.MaxHP) {
		if i, ok := s.firstAliveTeammate(SideOpponent); ok && src.Float64() < aiSwitchChance {
			return SwitchAction{Target: s.Teams[SideOpponent][i].ID}
		}
	}

	r := src.Float64()
	switch {
	case r < aiBoostChance:
		return BoostAction{}
	case r < aiDefendChance:
		return DefendAction{}
	default:
		return AttackAction{}
	}
}

func aiAccuracy(src Source) float64 {
	return aiBaseAccuracy + src.Float64()*aiAccuracySpread
}
