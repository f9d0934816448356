package types

import "github.com/DoyleJ11/algo-battle-backend/internal/engine"

// Algorithm is a draftable template as the UI sees it.
type Algorithm struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	HP          int    `json:"hp"`
	Attack      int    `json:"attack"`
	Defense     int    `json:"defense"`
	Speed       int    `json:"speed"`
	Description string `json:"description,omitempty"`
}

type Combatant struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Type      string        `json:"type"`
	CurrentHP int           `json:"current_hp"`
	MaxHP     int           `json:"max_hp"`
	Attack    int           `json:"attack"`
	Defense   int           `json:"defense"`
	Speed     int           `json:"speed"`
	Boosts    engine.Boosts `json:"boosts"`
	Defending bool          `json:"defending"`
	Fainted   bool          `json:"fainted"`
}

type Team struct {
	Members []Combatant `json:"members"`
	Active  int         `json:"active"`
}

// Snapshot is the read-only view pushed to clients after every accepted command.
type Snapshot struct {
	Version   int         `json:"version"`
	LobbyCode string      `json:"lobby_code"`
	Phase     string      `json:"phase"`
	Pool      []Algorithm `json:"pool"`
	DraftTurn string      `json:"draft_turn,omitempty"`
	Player    Team        `json:"player"`
	Opponent  Team        `json:"opponent"`
	Turn      int         `json:"turn"`
	TimeLeft  int         `json:"time_left"`
	BattleLog []string    `json:"battle_log"`
	Winner    string      `json:"winner,omitempty"`
}

func NewAlgorithm(t engine.Template) Algorithm {
	return Algorithm{
		ID:          t.ID,
		Name:        t.Name,
		Type:        string(t.Type),
		HP:          t.Stats.HP,
		Attack:      t.Stats.Attack,
		Defense:     t.Stats.Defense,
		Speed:       t.Stats.Speed,
		Description: t.Description,
	}
}

func NewSnapshot(code string, version int, s engine.State) Snapshot {
	snap := Snapshot{
		Version:   version,
		LobbyCode: code,
		Phase:     string(s.Phase),
		Pool:      make([]Algorithm, 0, len(s.Pool)),
		Player:    newTeam(s, engine.SidePlayer),
		Opponent:  newTeam(s, engine.SideOpponent),
		Turn:      s.Turn,
		TimeLeft:  s.TimeLeft,
		BattleLog: append([]string{}, s.Log...),
		Winner:    string(s.Winner),
	}
	for _, t := range s.Pool {
		snap.Pool = append(snap.Pool, NewAlgorithm(t))
	}
	if s.Phase == engine.PhaseDraft && !s.DraftComplete() {
		snap.DraftTurn = string(s.DraftTurn)
	}
	return snap
}

func newTeam(s engine.State, side engine.Side) Team {
	team := Team{Members: make([]Combatant, 0, len(s.Teams[side])), Active: s.Active[side]}
	for _, c := range s.Teams[side] {
		team.Members = append(team.Members, Combatant{
			ID:        c.ID,
			Name:      c.Name,
			Type:      string(c.Type),
			CurrentHP: c.CurrentHP,
			MaxHP:     c.MaxHP,
			Attack:    c.Stats.Attack,
			Defense:   c.Stats.Defense,
			Speed:     c.Stats.Speed,
			Boosts:    c.Boosts,
			Defending: c.Defending,
			Fainted:   c.Fainted(),
		})
	}
	return team
}
