// Package typing scores the typing duel.
package typing

import (
	"strings"
	"time"
)

// Source is the slice of math/rand/v2 the passage generator needs.
type Source interface {
	IntN(n int) int
}

var DefaultWords = []string{
	"func", "return", "pivot", "partition", "heap", "queue", "stack", "node",
	"edge", "vertex", "visited", "append", "slice", "index", "length", "swap",
	"merge", "left", "right", "middle", "target", "found", "range", "break",
	"continue", "struct", "pointer", "channel", "select", "defer", "graph", "path",
}

// NewPassage joins n words from list with single spaces. The same word never appears twice in a row.
func NewPassage(src Source, list []string, n int) string {
	if n <= 0 || len(list) == 0 {
		return ""
	}
	words := make([]string, 0, n)
	prev := -1
	for range n {
		i := nextIndex(src, len(list), prev)
		prev = i
		words = append(words, list[i])
	}
	return strings.Join(words, " ")
}

// nextIndex draws from [0,size) skipping prev.
func nextIndex(src Source, size, prev int) int {
	if size == 1 || prev < 0 {
		return src.IntN(size)
	}
	i := src.IntN(size - 1)
	if i >= prev {
		i++
	}
	return i
}

type Stats struct {
	Correct  int     `json:"correct"`
	Typed    int     `json:"typed"`
	Accuracy float64 `json:"accuracy"`
	WPM      float64 `json:"wpm"`
}

// Score compares typed against reference rune by rune at the same position.
// Accuracy is Correct over runes typed, as a percentage; WPM counts five correct runes as a word.
func Score(reference, typed string, elapsed time.Duration) Stats {
	ref := []rune(reference)
	got := []rune(typed)

	st := Stats{Typed: len(got)}
	for i, r := range got {
		if i < len(ref) && ref[i] == r {
			st.Correct++
		}
	}
	if st.Typed > 0 {
		st.Accuracy = float64(st.Correct) / float64(st.Typed) * 100
	}
	if minutes := elapsed.Minutes(); minutes > 0 {
		st.WPM = float64(st.Correct) / 5 / minutes
	}
	return st
}
