package clause

import (
	"strconv"
	"strings"
)

// Numberer produces section numbers. It keeps one label component per
// nesting depth plus a letter counter for top-level annexes; a clause's
// number depends only on what has been entered before it, never on
// later siblings.
type Numberer struct {
	labels []string
	annex  int
}

// NextOrdinary numbers an ordinary clause at the given depth: the
// counter at that depth advances and every deeper counter resets, so
// sibling subtrees restart their own numbering and a shallower sibling
// never inherits a stale deeper component.
func (n *Numberer) NextOrdinary(depth int) string {
	for len(n.labels) <= depth {
		n.labels = append(n.labels, "0")
	}
	next, _ := strconv.Atoi(n.labels[depth])
	n.labels[depth] = strconv.Itoa(next + 1)
	n.labels = n.labels[:depth+1]
	return strings.Join(n.labels, ".")
}

// NextAnnex numbers a top-level annex: the letter counter advances and
// all numeric counters reset. Clauses nested beneath it number
// numerically, seeded by the letter ("A.1", "A.1.1").
func (n *Numberer) NextAnnex() string {
	n.annex++
	n.labels = []string{annexLetter(n.annex)}
	return n.labels[0]
}

// annexLetter converts a 1-based annex ordinal to its letter: A..Z,
// then AA, AB, … (bijective base 26).
func annexLetter(i int) string {
	var b []byte
	for i > 0 {
		i--
		b = append([]byte{byte('A' + i%26)}, b...)
		i /= 26
	}
	return string(b)
}
