// ABOUTME: B+ tree core operations over the node arena
// ABOUTME: Insert with splits, delete with borrow/merge, point and range reads

package btree

// BPlusTree is an ordered map from int64 keys to int64 payloads. Leaves hold
// one payload per key and form a singly linked chain in key order; internal
// nodes hold separators and child handles. In non-unique mode duplicate keys
// coexist across the leaf chain.
type BPlusTree struct {
	cfg    Config
	arena  []node
	free   []handle
	root   handle
	length int
	height int
}

// New creates an empty tree. The root starts as an empty leaf.
func New(cfg Config) (*BPlusTree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &BPlusTree{cfg: cfg, root: nilHandle}
	t.root = t.alloc(true)
	return t, nil
}

// Len returns the number of stored entries.
func (t *BPlusTree) Len() int {
	return t.length
}

// Height returns the number of internal levels above the leaves.
func (t *BPlusTree) Height() int {
	return t.height
}

// Unique reports whether the tree rejects duplicate keys.
func (t *BPlusTree) Unique() bool {
	return t.cfg.Unique
}

// Insert places (key, value) in the correct leaf, splitting upward as
// needed. In unique mode inserting an existing key fails with
// ErrDuplicateKey.
func (t *BPlusTree) Insert(key, value int64) error {
	h := t.descendInsert(key)
	n := t.at(h)
	i := t.findKeyIndex(n.keys, key)
	if t.cfg.Unique && i < len(n.keys) && n.keys[i] == key {
		return ErrDuplicateKey
	}

	n.keys = insertAt(n.keys, i, key)
	n.vals = insertAt(n.vals, i, value)
	t.length++

	if t.occupancy(h) == overfull {
		t.splitLeaf(h)
	}
	return t.debugCheck()
}

// splitLeaf moves the upper t keys of an overfull leaf into a new right
// sibling, splices it into the leaf chain, and pushes the new leaf's first
// key up as the separator.
func (t *BPlusTree) splitLeaf(h handle) {
	right := t.alloc(true)
	td := t.cfg.MinimumDegree
	n := t.at(h)
	rn := t.at(right)

	rn.keys = append(rn.keys, n.keys[td:]...)
	rn.vals = append(rn.vals, n.vals[td:]...)
	n.keys = n.keys[:td]
	n.vals = n.vals[:td]

	rn.next = n.next
	n.next = right

	t.insertIntoParent(h, rn.keys[0], right)
}

// splitInternal promotes keys[t] of an overfull internal node: t keys stay
// left, t-1 keys move right, children split at index t+1.
func (t *BPlusTree) splitInternal(h handle) {
	right := t.alloc(false)
	td := t.cfg.MinimumDegree
	n := t.at(h)
	rn := t.at(right)

	promote := n.keys[td]
	rn.keys = append(rn.keys, n.keys[td+1:]...)
	rn.children = append(rn.children, n.children[td+1:]...)
	n.keys = n.keys[:td]
	n.children = n.children[:td+1]

	for _, c := range rn.children {
		t.at(c).parent = right
	}

	t.insertIntoParent(h, promote, right)
}

// insertIntoParent links a freshly split-off right sibling next to its left
// origin, growing a new root when the split reached the top.
func (t *BPlusTree) insertIntoParent(left handle, sep int64, right handle) {
	p := t.at(left).parent
	if p == nilHandle {
		root := t.alloc(false)
		rn := t.at(root)
		rn.keys = append(rn.keys, sep)
		rn.children = append(rn.children, left, right)
		t.at(left).parent = root
		t.at(right).parent = root
		t.root = root
		t.height++
		return
	}

	pn := t.at(p)
	i := t.childIndex(p, left)
	pn.keys = insertAt(pn.keys, i, sep)
	pn.children = insertAt(pn.children, i+1, right)
	t.at(right).parent = p

	if t.occupancy(p) == overfull {
		t.splitInternal(p)
	}
}

// scanRange walks entries with keys in [lo, hi] in ascending order along the
// leaf chain. The callback returning false stops the scan.
func (t *BPlusTree) scanRange(lo, hi int64, fn func(key, value int64) bool) {
	h := t.descendLookup(lo)
	pos := t.findKeyIndex(t.at(h).keys, lo)
	for h != nilHandle {
		n := t.at(h)
		for ; pos < len(n.keys); pos++ {
			if n.keys[pos] > hi {
				return
			}
			if n.keys[pos] < lo {
				continue
			}
			if !fn(n.keys[pos], n.vals[pos]) {
				return
			}
		}
		h = n.next
		pos = 0
	}
}

// Get returns every value stored under key, in leaf-chain order. A unique
// tree yields at most one value.
func (t *BPlusTree) Get(key int64) []int64 {
	var out []int64
	t.scanRange(key, key, func(_, v int64) bool {
		out = append(out, v)
		return true
	})
	return out
}

// GetRange returns every value whose key lies in [lo, hi], ascending by
// key. Since keys span the whole int64 domain, an unbounded side is
// expressed with math.MinInt64 or math.MaxInt64.
func (t *BPlusTree) GetRange(lo, hi int64) []int64 {
	var out []int64
	t.scanRange(lo, hi, func(_, v int64) bool {
		out = append(out, v)
		return true
	})
	return out
}

// Contains reports whether key is present.
func (t *BPlusTree) Contains(key int64) bool {
	found := false
	t.scanRange(key, key, func(_, _ int64) bool {
		found = true
		return false
	})
	return found
}

// Min returns the smallest (key, value) entry.
func (t *BPlusTree) Min() (key, value int64, ok bool) {
	if t.length == 0 {
		return 0, 0, false
	}
	n := t.at(t.leftmostLeaf())
	return n.keys[0], n.vals[0], true
}

// Max returns the largest (key, value) entry.
func (t *BPlusTree) Max() (key, value int64, ok bool) {
	if t.length == 0 {
		return 0, 0, false
	}
	n := t.at(t.rightmostLeaf())
	last := len(n.keys) - 1
	return n.keys[last], n.vals[last], true
}

// Delete removes the sole entry under key. Non-unique trees need the value
// discriminator of DeleteValue.
func (t *BPlusTree) Delete(key int64) error {
	if !t.cfg.Unique {
		return ErrValueRequired
	}
	return t.remove(key, 0, false)
}

// DeleteValue removes the entry matching both key and value.
func (t *BPlusTree) DeleteValue(key, value int64) error {
	return t.remove(key, value, true)
}

func (t *BPlusTree) remove(key, value int64, matchValue bool) error {
	h := t.descendLookup(key)
	pos := t.findKeyIndex(t.at(h).keys, key)
	for h != nilHandle {
		n := t.at(h)
		for ; pos < len(n.keys); pos++ {
			if n.keys[pos] > key {
				return ErrKeyNotFound
			}
			if n.keys[pos] < key {
				continue
			}
			if matchValue && n.vals[pos] != value {
				continue
			}
			n.keys = removeAt(n.keys, pos)
			n.vals = removeAt(n.vals, pos)
			t.length--
			t.rebalance(h)
			return t.debugCheck()
		}
		h = n.next
		pos = 0
	}
	return ErrKeyNotFound
}

// rebalance restores the occupancy bound after a removal: borrow from the
// left sibling first, then the right, and merge when neither can spare. An
// emptied internal root collapses into its remaining child; an emptied leaf
// root stays as the empty tree.
func (t *BPlusTree) rebalance(h handle) {
	n := t.at(h)
	if h == t.root {
		if !n.leaf && len(n.keys) == 0 {
			child := n.children[0]
			t.at(child).parent = nilHandle
			t.root = child
			t.height--
			t.reclaim(h)
		}
		return
	}
	if len(n.keys) >= t.cfg.MinimumDegree-1 {
		return
	}

	p := n.parent
	pn := t.at(p)
	i := t.childIndex(p, h)

	if i > 0 {
		left := pn.children[i-1]
		if len(t.at(left).keys) >= t.cfg.MinimumDegree {
			t.borrowLeft(p, i, left, h)
			return
		}
	}
	if i < len(pn.children)-1 {
		right := pn.children[i+1]
		if len(t.at(right).keys) >= t.cfg.MinimumDegree {
			t.borrowRight(p, i, h, right)
			return
		}
	}

	if i > 0 {
		t.merge(p, i-1, pn.children[i-1], h)
	} else {
		t.merge(p, i, h, pn.children[i+1])
	}
}

// borrowLeft moves the left sibling's last entry across and refreshes the
// separator between the two.
func (t *BPlusTree) borrowLeft(p handle, i int, left, h handle) {
	ln, n, pn := t.at(left), t.at(h), t.at(p)
	last := len(ln.keys) - 1
	if n.leaf {
		n.keys = insertAt(n.keys, 0, ln.keys[last])
		n.vals = insertAt(n.vals, 0, ln.vals[last])
		ln.keys = ln.keys[:last]
		ln.vals = ln.vals[:last]
		pn.keys[i-1] = n.keys[0]
	} else {
		n.keys = insertAt(n.keys, 0, pn.keys[i-1])
		pn.keys[i-1] = ln.keys[last]
		ln.keys = ln.keys[:last]
		c := ln.children[len(ln.children)-1]
		ln.children = ln.children[:len(ln.children)-1]
		n.children = insertAt(n.children, 0, c)
		t.at(c).parent = h
	}
}

// borrowRight moves the right sibling's first entry across and refreshes
// the separator between the two.
func (t *BPlusTree) borrowRight(p handle, i int, h, right handle) {
	n, rn, pn := t.at(h), t.at(right), t.at(p)
	if n.leaf {
		n.keys = append(n.keys, rn.keys[0])
		n.vals = append(n.vals, rn.vals[0])
		rn.keys = removeAt(rn.keys, 0)
		rn.vals = removeAt(rn.vals, 0)
		pn.keys[i] = rn.keys[0]
	} else {
		n.keys = append(n.keys, pn.keys[i])
		pn.keys[i] = rn.keys[0]
		rn.keys = removeAt(rn.keys, 0)
		c := rn.children[0]
		rn.children = removeAt(rn.children, 0)
		n.children = append(n.children, c)
		t.at(c).parent = h
	}
}

// merge folds the right node into the left. Leaf merges concatenate entries
// and inherit the right sibling's leaf link; internal merges pull the parent
// separator down between the two key arrays. The parent loses one key and
// one child and rebalances in turn.
func (t *BPlusTree) merge(p handle, sepIdx int, left, right handle) {
	ln, rn, pn := t.at(left), t.at(right), t.at(p)
	if ln.leaf {
		ln.keys = append(ln.keys, rn.keys...)
		ln.vals = append(ln.vals, rn.vals...)
		ln.next = rn.next
	} else {
		ln.keys = append(ln.keys, pn.keys[sepIdx])
		ln.keys = append(ln.keys, rn.keys...)
		for _, c := range rn.children {
			t.at(c).parent = left
		}
		ln.children = append(ln.children, rn.children...)
	}
	pn.keys = removeAt(pn.keys, sepIdx)
	pn.children = removeAt(pn.children, sepIdx+1)
	t.reclaim(right)
	t.rebalance(p)
}

func (t *BPlusTree) debugCheck() error {
	if t.cfg.DebugMode && !t.IsMaintained() {
		return ErrIntegrity
	}
	return nil
}
