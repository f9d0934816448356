package engine

type Type string

const (
	TypeSorting   Type = "SORTING"
	TypeSearching Type = "SEARCHING"
	TypeGraph     Type = "GRAPH"
)

func (t Type) Valid() bool {
	switch t {
	case TypeSorting, TypeSearching, TypeGraph:
		return true
	}
	return false
}

type Stats struct {
	HP      int `json:"hp"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
}

// MaxBoostStage is the highest stage any single boost dimension can reach.
const MaxBoostStage = 6

type Boosts struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
}

// Template is a pool entry. Drafting one produces a Combatant.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        Type   `json:"type"`
	Stats       Stats  `json:"stats"`
	Description string `json:"description,omitempty"`
}

type Combatant struct {
	ID        string
	Name      string
	Type      Type
	Stats     Stats
	CurrentHP int
	MaxHP     int
	Boosts    Boosts
	Defending bool
}

func NewCombatant(t Template) Combatant {
	return Combatant{
		ID:        t.ID,
		Name:      t.Name,
		Type:      t.Type,
		Stats:     t.Stats,
		CurrentHP: t.Stats.HP,
		MaxHP:     t.Stats.HP,
	}
}

// Fainted combatants stay on their team but can no longer act or be switched in.
func (c Combatant) Fainted() bool {
	return c.CurrentHP == 0
}

// Boost raises every stage by one, capped at MaxBoostStage.
func (c *Combatant) Boost() {
	c.Boosts.Attack = clampStage(c.Boosts.Attack + 1)
	c.Boosts.Defense = clampStage(c.Boosts.Defense + 1)
	c.Boosts.Speed = clampStage(c.Boosts.Speed + 1)
}

// TakeDamage lowers CurrentHP by amount, never below zero, and returns the HP actually lost.
func (c *Combatant) TakeDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	before := c.CurrentHP
	c.CurrentHP = max(0, c.CurrentHP-amount)
	return before - c.CurrentHP
}

func clampStage(v int) int {
	return min(max(v, 0), MaxBoostStage)
}
