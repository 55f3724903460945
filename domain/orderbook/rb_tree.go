package orderbook

// rbColor is red or black.
type rbColor bool

const (
	red   rbColor = false
	black rbColor = true
)

// rbNode is one price-level slot in the ladder, keyed on the float64
// price (a standard CLRS red-black tree: real rotations and insert/delete
// fixups, not a stub).
type rbNode struct {
	key    float64
	level  *PriceLevel
	color  rbColor
	left   *rbNode
	right  *rbNode
	parent *rbNode
}

// RBTree is an ordered map from price to *PriceLevel, used once per side
// of the book (bids descending, asks ascending — the ladder decides which
// end it treats as "best"). A nil *RBTree is not valid; use NewRBTree.
type RBTree struct {
	root *rbNode
	size int
}

func NewRBTree() *RBTree {
	return &RBTree{}
}

func (t *RBTree) Len() int { return t.size }

// ---- public API ----

// GetOrCreate returns the level at price, creating an empty one first if
// none is resting there yet.
func (t *RBTree) GetOrCreate(price float64) *PriceLevel {
	var parent *rbNode
	n := t.root
	for n != nil {
		parent = n
		switch {
		case price < n.key:
			n = n.left
		case price > n.key:
			n = n.right
		default:
			return n.level
		}
	}

	node := &rbNode{key: price, level: newPriceLevel(), color: red, parent: parent}
	switch {
	case parent == nil:
		t.root = node
	case price < parent.key:
		parent.left = node
	default:
		parent.right = node
	}
	t.size++
	t.insertFixup(node)
	return node.level
}

// Find returns the level at price, or nil if the ladder has none there.
func (t *RBTree) Find(price float64) *PriceLevel {
	n := t.find(price)
	if n == nil {
		return nil
	}
	return n.level
}

// Delete removes the level at price entirely. Callers must only call this
// once the level is empty: an empty level must never linger in the
// ladder.
func (t *RBTree) Delete(price float64) {
	n := t.find(price)
	if n == nil {
		return
	}
	t.deleteNode(n)
	t.size--
}

// BestMinPrice returns the lowest-priced level in the tree along with
// its key, since a ladder needs the price itself to report best
// bid/ask, not just the level.
func (t *RBTree) BestMinPrice() (float64, *PriceLevel, bool) {
	n := t.min(t.root)
	if n == nil {
		return 0, nil, false
	}
	return n.key, n.level, true
}

// BestMaxPrice returns the highest-priced level in the tree along with
// its key.
func (t *RBTree) BestMaxPrice() (float64, *PriceLevel, bool) {
	n := t.max(t.root)
	if n == nil {
		return 0, nil, false
	}
	return n.key, n.level, true
}

// ---- walkers ----

func (t *RBTree) walkAsc(fn func(price float64, lvl *PriceLevel)) {
	for n := t.min(t.root); n != nil; n = t.next(n) {
		fn(n.key, n.level)
	}
}

func (t *RBTree) walkDesc(fn func(price float64, lvl *PriceLevel)) {
	for n := t.max(t.root); n != nil; n = t.prev(n) {
		fn(n.key, n.level)
	}
}

// ---- internal helpers ----

func (t *RBTree) find(price float64) *rbNode {
	n := t.root
	for n != nil {
		switch {
		case price < n.key:
			n = n.left
		case price > n.key:
			n = n.right
		default:
			return n
		}
	}
	return nil
}

func (t *RBTree) min(n *rbNode) *rbNode {
	if n == nil {
		return nil
	}
	for n.left != nil {
		n = n.left
	}
	return n
}

func (t *RBTree) max(n *rbNode) *rbNode {
	if n == nil {
		return nil
	}
	for n.right != nil {
		n = n.right
	}
	return n
}

func (t *RBTree) next(n *rbNode) *rbNode {
	if n.right != nil {
		return t.min(n.right)
	}
	p := n.parent
	for p != nil && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (t *RBTree) prev(n *rbNode) *rbNode {
	if n.left != nil {
		return t.max(n.left)
	}
	p := n.parent
	for p != nil && n == p.left {
		n = p
		p = p.parent
	}
	return p
}

func (t *RBTree) rotateLeft(x *rbNode) {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == nil:
		t.root = y
	case x == x.parent.left:
		x.parent.left = y
	default:
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *RBTree) rotateRight(x *rbNode) {
	y := x.left
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == nil:
		t.root = y
	case x == x.parent.right:
		x.parent.right = y
	default:
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

func (t *RBTree) insertFixup(z *rbNode) {
	for z.parent != nil && z.parent.color == red {
		gp := z.parent.parent
		if gp == nil {
			break
		}
		if z.parent == gp.left {
			uncle := gp.right
			if uncle != nil && uncle.color == red {
				z.parent.color = black
				uncle.color = black
				gp.color = red
				z = gp
				continue
			}
			if z == z.parent.right {
				z = z.parent
				t.rotateLeft(z)
			}
			z.parent.color = black
			gp.color = red
			t.rotateRight(gp)
		} else {
			uncle := gp.left
			if uncle != nil && uncle.color == red {
				z.parent.color = black
				uncle.color = black
				gp.color = red
				z = gp
				continue
			}
			if z == z.parent.left {
				z = z.parent
				t.rotateRight(z)
			}
			z.parent.color = black
			gp.color = red
			t.rotateLeft(gp)
		}
	}
	t.root.color = black
}

func (t *RBTree) transplant(u, v *rbNode) {
	switch {
	case u.parent == nil:
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	if v != nil {
		v.parent = u.parent
	}
}

func (t *RBTree) deleteNode(z *rbNode) {
	y := z
	yOriginalColor := y.color
	var x *rbNode
	var xParent *rbNode

	switch {
	case z.left == nil:
		x = z.right
		xParent = z.parent
		t.transplant(z, z.right)
	case z.right == nil:
		x = z.left
		xParent = z.parent
		t.transplant(z, z.left)
	default:
		y = t.min(z.right)
		yOriginalColor = y.color
		x = y.right
		if y.parent == z {
			xParent = y
		} else {
			xParent = y.parent
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}

	if yOriginalColor == black {
		t.deleteFixup(x, xParent)
	}
}

// deleteFixup rebalances after a black node was spliced out. x may be nil
// (the removed node's missing child), so the parent is threaded through
// explicitly instead of read off x.parent.
func (t *RBTree) deleteFixup(x, parent *rbNode) {
	for x != t.root && (x == nil || x.color == black) {
		if parent == nil {
			break
		}
		if x == parent.left {
			w := parent.right
			if w != nil && w.color == red {
				w.color = black
				parent.color = red
				t.rotateLeft(parent)
				w = parent.right
			}
			if w == nil || ((w.left == nil || w.left.color == black) && (w.right == nil || w.right.color == black)) {
				if w != nil {
					w.color = red
				}
				x = parent
				parent = x.parent
				continue
			}
			if w.right == nil || w.right.color == black {
				if w.left != nil {
					w.left.color = black
				}
				w.color = red
				t.rotateRight(w)
				w = parent.right
			}
			w.color = parent.color
			parent.color = black
			if w.right != nil {
				w.right.color = black
			}
			t.rotateLeft(parent)
			x = t.root
			parent = nil
		} else {
			w := parent.left
			if w != nil && w.color == red {
				w.color = black
				parent.color = red
				t.rotateRight(parent)
				w = parent.left
			}
			if w == nil || ((w.left == nil || w.left.color == black) && (w.right == nil || w.right.color == black)) {
				if w != nil {
					w.color = red
				}
				x = parent
				parent = x.parent
				continue
			}
			if w.left == nil || w.left.color == black {
				if w.right != nil {
					w.right.color = black
				}
				w.color = red
				t.rotateLeft(w)
				w = parent.left
			}
			w.color = parent.color
			parent.color = black
			if w.left != nil {
				w.left.color = black
			}
			t.rotateRight(parent)
			x = t.root
			parent = nil
		}
	}
	if x != nil {
		x.color = black
	}
}
