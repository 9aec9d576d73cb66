package catalog

// Red–Black Tree of book records.
// - Absent children are nil and count as black.
// - Deleting a black leaf hangs a temporary black sentinel in its slot for
//   the duration of the fixup, then detaches it.
// - Two-child deletion copies the in-order predecessor's record onto the
//   target and physically removes the predecessor.
// - Single-writer; the caller serialises access.

type Color uint8

const (
	red   Color = 0
	black Color = 1
)

func (c Color) String() string {
	if c == red {
		return "RED"
	}
	return "BLACK"
}

type node struct {
	rec      record
	color    Color
	left     *node
	right    *node
	parent   *node
	sentinel bool // placeholder used only while a deletion is being fixed up
}

func isRed(n *node) bool { return n != nil && n.color == red }

type RBTree struct {
	root *node
	size int
}

func newRBTree() *RBTree { return &RBTree{} }

// Size returns number of records currently present.
func (t *RBTree) Size() int { return t.size }

/*************** Search & traversal ***************/

func (t *RBTree) searchNode(id int) *node {
	n := t.root
	for n != nil {
		switch {
		case id < n.rec.id:
			n = n.left
		case id > n.rec.id:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

func maxNode(n *node) *node {
	for n.right != nil {
		n = n.right
	}
	return n
}

// forEachAscending applies fn in key order. If fn returns false, iteration
// stops early.
func (t *RBTree) forEachAscending(fn func(*node) bool) {
	walkAscending(t.root, fn)
}

func walkAscending(n *node, fn func(*node) bool) bool {
	if n == nil {
		return true
	}
	return walkAscending(n.left, fn) && fn(n) && walkAscending(n.right, fn)
}

// rangeScan visits nodes with lo <= key <= hi in key order, skipping
// subtrees that lie entirely outside the range.
func (t *RBTree) rangeScan(lo, hi int, fn func(*node)) {
	var walk func(n *node)
	walk = func(n *node) {
		if n == nil {
			return
		}
		if lo < n.rec.id {
			walk(n.left)
		}
		if lo <= n.rec.id && n.rec.id <= hi {
			fn(n)
		}
		if n.rec.id < hi {
			walk(n.right)
		}
	}
	walk(t.root)
}

/*************** Insert & delete ***************/

// insert links a new red leaf carrying rec and rebalances. It returns nil
// when rec.id is already present.
func (t *RBTree) insert(rec record) *node {
	var parent *node
	n := t.root
	for n != nil {
		parent = n
		switch {
		case rec.id < n.rec.id:
			n = n.left
		case rec.id > n.rec.id:
			n = n.right
		default:
			return nil
		}
	}

	z := &node{rec: rec, color: red, parent: parent}
	switch {
	case parent == nil:
		t.root = z
	case rec.id < parent.rec.id:
		parent.left = z
	default:
		parent.right = z
	}
	t.insertFixup(z)
	t.size++
	return z
}

// delete removes the record held by z.
func (t *RBTree) delete(z *node) {
	if z.left != nil && z.right != nil {
		pred := maxNode(z.left)
		z.rec = pred.rec
		z = pred
	}

	removedColor := z.color
	moved := t.spliceOut(z)
	t.size--

	if removedColor == red {
		return
	}
	if isRed(moved) {
		// A black node with one child always has a red child; blackening it
		// restores the black height.
		moved.color = black
		return
	}

	t.deleteFixup(moved)
	if moved.sentinel {
		t.replaceChild(moved.parent, moved, nil)
	}
}

// spliceOut unlinks z, which has at most one child, and returns whatever
// took its slot: the child, a black sentinel when z was a black leaf, or nil
// when z was a red leaf.
func (t *RBTree) spliceOut(z *node) *node {
	var child *node
	switch {
	case z.left != nil:
		child = z.left
	case z.right != nil:
		child = z.right
	case z.color == black:
		child = &node{color: black, sentinel: true}
	}
	t.replaceChild(z.parent, z, child)
	z.parent, z.left, z.right = nil, nil, nil
	return child
}

/******************** Rotations & Fixups ********************/

// replaceChild puts child where old hangs below parent (or at the root).
func (t *RBTree) replaceChild(parent, old, child *node) {
	switch {
	case parent == nil:
		if t.root != old {
			panic(topologyError("node %d has no parent but is not the root", old.rec.id))
		}
		t.root = child
	case parent.left == old:
		parent.left = child
	case parent.right == old:
		parent.right = child
	default:
		panic(topologyError("node %d is not a child of its parent %d", old.rec.id, parent.rec.id))
	}
	if child != nil {
		child.parent = parent
	}
}

func (t *RBTree) leftRotate(x *node) {
	parent := x.parent
	y := x.right
	if y == nil {
		panic(topologyError("left rotation at %d without a right child", x.rec.id))
	}
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.left = x
	x.parent = y
	t.replaceChild(parent, x, y)
}

func (t *RBTree) rightRotate(y *node) {
	parent := y.parent
	x := y.left
	if x == nil {
		panic(topologyError("right rotation at %d without a left child", y.rec.id))
	}
	y.left = x.right
	if x.right != nil {
		x.right.parent = y
	}
	x.right = y
	y.parent = x
	t.replaceChild(parent, y, x)
}

// otherChild returns the child of n's parent that is not n.
func otherChild(n *node) *node {
	p := n.parent
	if p == nil {
		panic(topologyError("node %d is detached", n.rec.id))
	}
	switch n {
	case p.left:
		return p.right
	case p.right:
		return p.left
	}
	panic(topologyError("node %d is not a child of its parent %d", n.rec.id, p.rec.id))
}

func (t *RBTree) insertFixup(z *node) {
	parent := z.parent
	if parent == nil {
		z.color = black
		return
	}
	if parent.color == black {
		return
	}

	grandparent := parent.parent
	if grandparent == nil {
		parent.color = black
		return
	}

	if uncle := otherChild(parent); isRed(uncle) {
		parent.color = black
		uncle.color = black
		grandparent.color = red
		t.insertFixup(grandparent)
		return
	}

	if parent == grandparent.left {
		if z == parent.right {
			// inner grandchild: turn it into the outer case
			t.leftRotate(parent)
			parent = z
		}
		t.rightRotate(grandparent)
	} else {
		if z == parent.left {
			t.rightRotate(parent)
			parent = z
		}
		t.leftRotate(grandparent)
	}
	parent.color = black
	grandparent.color = red
}

// deleteFixup removes the extra black carried by n, which is black and may
// be the sentinel.
func (t *RBTree) deleteFixup(n *node) {
	if n == t.root {
		return
	}

	sibling := t.siblingOf(n)
	if sibling.color == red {
		sibling.color = black
		n.parent.color = red
		if n == n.parent.left {
			t.leftRotate(n.parent)
		} else {
			t.rightRotate(n.parent)
		}
		sibling = t.siblingOf(n)
	}

	if !isRed(sibling.left) && !isRed(sibling.right) {
		sibling.color = red
		if n.parent.color == red {
			n.parent.color = black
			return
		}
		t.deleteFixup(n.parent)
		return
	}

	t.fixBlackSiblingWithRedChild(n, sibling)
}

func (t *RBTree) siblingOf(n *node) *node {
	s := otherChild(n)
	if s == nil {
		// n carries a black on its side, so the other side must hold one too.
		panic(topologyError("double-black node under %d has no sibling", n.parent.rec.id))
	}
	return s
}

func (t *RBTree) fixBlackSiblingWithRedChild(n, sibling *node) {
	nIsLeft := n == n.parent.left

	// Make the far child red.
	if nIsLeft && !isRed(sibling.right) {
		sibling.left.color = black
		sibling.color = red
		t.rightRotate(sibling)
		sibling = n.parent.right
	} else if !nIsLeft && !isRed(sibling.left) {
		sibling.right.color = black
		sibling.color = red
		t.leftRotate(sibling)
		sibling = n.parent.left
	}

	sibling.color = n.parent.color
	n.parent.color = black
	if nIsLeft {
		sibling.right.color = black
		t.leftRotate(n.parent)
	} else {
		sibling.left.color = black
		t.rightRotate(n.parent)
	}
}
