package engine

import "slices"

const MaxLogEntries = 6

// BattleLog keeps only the most recent MaxLogEntries messages, oldest first.
type BattleLog []string

func (l BattleLog) Append(entries ...string) BattleLog {
	out := append(slices.Clone(l), entries...)
	if n := len(out) - MaxLogEntries; n > 0 {
		out = out[n:]
	}
	return out
}

func (l BattleLog) Last() string {
	if len(l) == 0 {
		return ""
	}
	return l[len(l)-1]
}
