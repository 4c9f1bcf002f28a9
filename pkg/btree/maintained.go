// ABOUTME: Structural invariant verification for debug mode
// ABOUTME: Checks occupancy, ordering, parent links, depth, and the leaf chain

package btree

// IsMaintained verifies every structural invariant of the tree: node
// occupancy within [t-1, 2t-1] (root exempt from the lower bound), keys
// non-decreasing within each node, one payload per leaf key, k+1 children
// per k internal keys, consistent parent back-pointers, all leaves at the
// same depth, subtree key ranges consistent with separators, and a leaf
// chain whose traversal length equals Len().
func (t *BPlusTree) IsMaintained() bool {
	s, ok := t.checkSubtree(t.root, true)
	if !ok {
		return false
	}
	if s.count != t.length {
		return false
	}
	return t.checkLeafChain()
}

// subtreeStats carries the facts a parent needs about a verified subtree.
type subtreeStats struct {
	depth    int
	min, max int64
	count    int
	leaves   int
}

func (t *BPlusTree) checkSubtree(h handle, isRoot bool) (subtreeStats, bool) {
	n := t.at(h)
	if !n.live {
		return subtreeStats{}, false
	}

	if !isRoot && len(n.keys) < t.cfg.MinimumDegree-1 {
		return subtreeStats{}, false
	}
	if len(n.keys) > 2*t.cfg.MinimumDegree-1 {
		return subtreeStats{}, false
	}
	for i := 1; i < len(n.keys); i++ {
		if n.keys[i-1] > n.keys[i] {
			return subtreeStats{}, false
		}
	}

	if n.leaf {
		if len(n.vals) != len(n.keys) {
			return subtreeStats{}, false
		}
		if len(n.children) != 0 {
			return subtreeStats{}, false
		}
		s := subtreeStats{count: len(n.keys), leaves: 1}
		if len(n.keys) > 0 {
			s.min = n.keys[0]
			s.max = n.keys[len(n.keys)-1]
		}
		return s, true
	}

	if len(n.children) != len(n.keys)+1 {
		return subtreeStats{}, false
	}

	var out subtreeStats
	for i, c := range n.children {
		if t.at(c).parent != h {
			return subtreeStats{}, false
		}
		cs, ok := t.checkSubtree(c, false)
		if !ok {
			return subtreeStats{}, false
		}
		// Duplicates may straddle a separator, so the left subtree may
		// reach up to the separator and the right starts at or above it.
		if i > 0 && cs.min < n.keys[i-1] {
			return subtreeStats{}, false
		}
		if i < len(n.keys) && cs.max > n.keys[i] {
			return subtreeStats{}, false
		}
		if i == 0 {
			out = cs
			out.depth = cs.depth + 1
		} else {
			if cs.depth+1 != out.depth {
				return subtreeStats{}, false
			}
			out.max = cs.max
			out.count += cs.count
			out.leaves += cs.leaves
		}
	}
	return out, true
}

// checkLeafChain walks the next links from the leftmost leaf and verifies
// the chain covers every entry in non-decreasing key order.
func (t *BPlusTree) checkLeafChain() bool {
	h := t.leftmostLeaf()
	count := 0
	leaves := 0
	var prev int64
	first := true
	for h != nilHandle {
		n := t.at(h)
		if !n.leaf || !n.live {
			return false
		}
		for _, k := range n.keys {
			if !first && k < prev {
				return false
			}
			prev = k
			first = false
			count++
		}
		leaves++
		h = n.next
		if leaves > len(t.arena) {
			return false // cycle
		}
	}
	return count == t.length
}
