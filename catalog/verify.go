package catalog

// verify walks the whole tree and returns the first violated red-black or
// linkage invariant, wrapped in ErrInvalidTopology.
//
// Checked: root is black and has no parent, every child points back at its
// parent, no red node has a red child, every path to a nil child crosses
// the same number of black nodes, keys strictly ascend in order, no
// deletion sentinel is left behind and size matches the node count.
func (t *RBTree) verify() error {
	if t.root == nil {
		if t.size != 0 {
			return topologyError("empty tree reports size %d", t.size)
		}
		return nil
	}
	if t.root.parent != nil {
		return topologyError("root %d has a parent", t.root.rec.id)
	}
	if t.root.color != black {
		return topologyError("root %d is red", t.root.rec.id)
	}

	count := 0
	var last *node
	var check func(n *node) (int, error)
	check = func(n *node) (int, error) {
		if n == nil {
			return 0, nil
		}
		if n.sentinel {
			if n.parent == nil {
				return 0, topologyError("sentinel left in tree at the root")
			}
			return 0, topologyError("sentinel left in tree under %d", n.parent.rec.id)
		}
		for _, c := range [2]*node{n.left, n.right} {
			if c == nil {
				continue
			}
			if c.parent != n {
				return 0, topologyError("node %d does not point back at parent %d", c.rec.id, n.rec.id)
			}
			if n.color == red && c.color == red {
				return 0, topologyError("red node %d has red child %d", n.rec.id, c.rec.id)
			}
		}

		lh, err := check(n.left)
		if err != nil {
			return 0, err
		}
		if last != nil && last.rec.id >= n.rec.id {
			return 0, topologyError("key %d follows %d in order", n.rec.id, last.rec.id)
		}
		last = n
		count++
		rh, err := check(n.right)
		if err != nil {
			return 0, err
		}
		if lh != rh {
			return 0, topologyError("black height differs under %d: left %d, right %d", n.rec.id, lh, rh)
		}
		if n.color == black {
			lh++
		}
		return lh, nil
	}

	if _, err := check(t.root); err != nil {
		return err
	}
	if count != t.size {
		return topologyError("tree holds %d nodes but reports size %d", count, t.size)
	}
	return nil
}
