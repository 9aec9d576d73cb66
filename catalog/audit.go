package catalog

// colorAudit counts color flips between consecutive post-mutation states of
// the tree. Only ids present in both states are compared, so inserting or
// removing an id is not itself a flip.
type colorAudit struct {
	snapshot map[int]Color
	flips    int
}

// observe diffs the current coloring against the previous snapshot, adds
// the differences to the running total and replaces the snapshot. It
// returns the number of flips found.
func (a *colorAudit) observe(t *RBTree) int {
	next := make(map[int]Color, t.Size())
	t.forEachAscending(func(n *node) bool {
		next[n.rec.id] = n.color
		return true
	})

	flipped := 0
	for id, was := range a.snapshot {
		if now, ok := next[id]; ok && now != was {
			flipped++
		}
	}
	a.flips += flipped
	a.snapshot = next
	return flipped
}

func (a *colorAudit) count() int { return a.flips }
