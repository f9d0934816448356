package engine

import "testing"

// scriptedSource replays fixed draws so AI choices and accuracy rolls are predictable.
// Once the script runs out Float64 returns 0.99 (an attack with high accuracy) and IntN returns 0.
type scriptedSource struct {
	floats []float64
	ints   []int
}

func (s *scriptedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func (s *scriptedSource) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func script(floats ...float64) *scriptedSource {
	return &scriptedSource{floats: floats}
}

var (
	quickSort    = Template{ID: "quick-sort", Name: "Quick Sort", Type: TypeSorting, Stats: Stats{HP: 100, Attack: 50, Defense: 30, Speed: 80}}
	mergeSort    = Template{ID: "merge-sort", Name: "Merge Sort", Type: TypeSorting, Stats: Stats{HP: 120, Attack: 45, Defense: 40, Speed: 60}}
	heapSort     = Template{ID: "heap-sort", Name: "Heap Sort", Type: TypeSorting, Stats: Stats{HP: 110, Attack: 48, Defense: 35, Speed: 55}}
	binarySearch = Template{ID: "binary-search", Name: "Binary Search", Type: TypeSearching, Stats: Stats{HP: 90, Attack: 55, Defense: 25, Speed: 90}}
	linearSearch = Template{ID: "linear-search", Name: "Linear Search", Type: TypeSearching, Stats: Stats{HP: 130, Attack: 40, Defense: 45, Speed: 40}}
	jumpSearch   = Template{ID: "jump-search", Name: "Jump Search", Type: TypeSearching, Stats: Stats{HP: 100, Attack: 47, Defense: 35, Speed: 70}}
	dijkstra     = Template{ID: "dijkstra", Name: "Dijkstra", Type: TypeGraph, Stats: Stats{HP: 115, Attack: 52, Defense: 38, Speed: 65}}
	bfs          = Template{ID: "bfs", Name: "BFS", Type: TypeGraph, Stats: Stats{HP: 105, Attack: 46, Defense: 32, Speed: 75}}
	dfs          = Template{ID: "dfs", Name: "DFS", Type: TypeGraph, Stats: Stats{HP: 95, Attack: 50, Defense: 30, Speed: 85}}
	aStar        = Template{ID: "a-star", Name: "A*", Type: TypeGraph, Stats: Stats{HP: 120, Attack: 54, Defense: 40, Speed: 50}}
)

func testPool() []Template {
	return []Template{quickSort, mergeSort, heapSort, binarySearch, linearSearch, jumpSearch, dijkstra, bfs, dfs, aStar}
}

// battleState skips the draft and returns a state waiting for the player's first action.
func battleState(t *testing.T, player, opponent []Template) State {
	t.Helper()
	s := NewState(Rules{TurnTimerSec: 30})
	for _, tpl := range player {
		s.Teams[SidePlayer] = append(s.Teams[SidePlayer], NewCombatant(tpl))
	}
	for _, tpl := range opponent {
		s.Teams[SideOpponent] = append(s.Teams[SideOpponent], NewCombatant(tpl))
	}
	s.Phase = PhaseActionSelect
	s.Turn = 1
	s.TimeLeft = 30
	return s
}

func mustApply(t *testing.T, s State, cmd Command, src Source) ([]Event, State) {
	t.Helper()
	events, next, err := Apply(s, cmd, src)
	if err != nil {
		t.Fatalf("%s: unexpected err %v", cmd.Type, err)
	}
	return events, next
}
