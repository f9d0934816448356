package engine

import (
	"fmt"
	"math"
)

// TimePenalty is a placeholder multiplier for code-challenge solve time. It is not derived yet.
const TimePenalty = 1.0

// AttackBoostStep is the flat attack added per attack boost stage.
const AttackBoostStep = 10

type Damage struct {
	Base           int
	Multiplier     float64
	AccuracyFactor float64
	Raw            int
	Final          int
	Guarded        bool
}

func (d Damage) SuperEffective() bool { return d.Multiplier > 1.5 }

func (d Damage) NotVeryEffective() bool { return d.Multiplier < 0.75 }

// ClampAccuracy bounds a code-challenge score to [0, 100].
func ClampAccuracy(accuracy float64) float64 {
	if math.IsNaN(accuracy) {
		return 0
	}
	return math.Min(math.Max(accuracy, 0), 100)
}

// CalculateDamage computes the hit attacker would land on defender without touching either.
// Lower accuracy raises the factor above 1, so a sloppier solve hits harder.
func CalculateDamage(attacker, defender Combatant, accuracy float64) Damage {
	d := Damage{
		Base:           attacker.Stats.Attack + attacker.Boosts.Attack*AttackBoostStep,
		Multiplier:     Effectiveness(attacker.Type, defender.Type),
		AccuracyFactor: 2 - ClampAccuracy(accuracy)/100,
	}
	d.Raw = int(math.Floor(float64(d.Base) * d.Multiplier * TimePenalty * d.AccuracyFactor))
	d.Final = d.Raw
	if defender.Defending {
		d.Final = int(math.Floor(float64(d.Raw) * 0.5))
		d.Guarded = true
	}
	return d
}

// strike applies one attack to defender, consuming its defend stance, and returns the log line.
func strike(attacker *Combatant, defender *Combatant, accuracy float64) (Damage, string) {
	d := CalculateDamage(*attacker, *defender, accuracy)
	if d.Guarded {
		defender.Defending = false
	}
	defender.TakeDamage(d.Final)

	msg := fmt.Sprintf("%s dealt %d damage to %s!", attacker.Name, d.Final, defender.Name)
	switch {
	case d.SuperEffective():
		msg += " Super effective!"
	case d.NotVeryEffective():
		msg += " Not very effective..."
	}
	return d, msg
}
