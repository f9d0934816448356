package engine

// TurnOrder returns both sides in execution order for the pending actions.
// Higher priority acts first, then higher base speed. Speed boosts are not consulted.
// A full tie goes to the player.
func TurnOrder(s State, player, opponent Action) []Side {
	pp, op := Priority(player), Priority(opponent)
	if op > pp {
		return []Side{SideOpponent, SidePlayer}
	}
	if pp == op {
		var pSpeed, oSpeed int
		if c := s.ActiveCombatant(SidePlayer); c != nil {
			pSpeed = c.Stats.Speed
		}
		if c := s.ActiveCombatant(SideOpponent); c != nil {
			oSpeed = c.Stats.Speed
		}
		if oSpeed > pSpeed {
			return []Side{SideOpponent, SidePlayer}
		}
	}
	return []Side{SidePlayer, SideOpponent}
}
