// ABOUTME: Unbalanced binary search tree index backend
// ABOUTME: Alternate ordered structure, in-order traversal for ranges

package index

import "github.com/nainya/columnstore/pkg/btree"

// bstNode buckets every RID stored under one key.
type bstNode struct {
	key         int64
	rids        []int64
	left, right *bstNode
}

// bsTree is an unbalanced binary search tree. It serves as the alternate
// ordered backend; degenerate shapes are possible on sorted input.
type bsTree struct {
	root   *bstNode
	length int
}

func newBSTree() *bsTree {
	return &bsTree{}
}

func (t *bsTree) Insert(key, rid int64) error {
	t.length++
	if t.root == nil {
		t.root = &bstNode{key: key, rids: []int64{rid}}
		return nil
	}
	node := t.root
	for {
		switch {
		case key == node.key:
			node.rids = append(node.rids, rid)
			return nil
		case key < node.key:
			if node.left == nil {
				node.left = &bstNode{key: key, rids: []int64{rid}}
				return nil
			}
			node = node.left
		default:
			if node.right == nil {
				node.right = &bstNode{key: key, rids: []int64{rid}}
				return nil
			}
			node = node.right
		}
	}
}

func (t *bsTree) find(key int64) *bstNode {
	node := t.root
	for node != nil && node.key != key {
		if key < node.key {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node
}

func (t *bsTree) Get(key int64) []int64 {
	node := t.find(key)
	if node == nil {
		return nil
	}
	out := make([]int64, len(node.rids))
	copy(out, node.rids)
	return out
}

func (t *bsTree) GetRange(lo, hi int64) []int64 {
	var out []int64
	var walk func(n *bstNode)
	walk = func(n *bstNode) {
		if n == nil {
			return
		}
		if n.key > lo {
			walk(n.left)
		}
		if n.key >= lo && n.key <= hi {
			out = append(out, n.rids...)
		}
		if n.key < hi {
			walk(n.right)
		}
	}
	walk(t.root)
	return out
}

// Remove deletes one (key, rid) entry. A node emptied of RIDs is unlinked
// by the CLRS transplant.
func (t *bsTree) Remove(key, rid int64) error {
	var parent *bstNode
	node := t.root
	for node != nil && node.key != key {
		parent = node
		if key < node.key {
			node = node.left
		} else {
			node = node.right
		}
	}
	if node == nil {
		return btree.ErrKeyNotFound
	}

	found := false
	for i, r := range node.rids {
		if r == rid {
			node.rids = append(node.rids[:i], node.rids[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return btree.ErrKeyNotFound
	}
	t.length--

	if len(node.rids) > 0 {
		return nil
	}

	switch {
	case node.left == nil:
		t.transplant(parent, node, node.right)
	case node.right == nil:
		t.transplant(parent, node, node.left)
	default:
		// Successor: minimum of the right subtree.
		succParent := node
		succ := node.right
		for succ.left != nil {
			succParent = succ
			succ = succ.left
		}
		node.key = succ.key
		node.rids = succ.rids
		t.transplant(succParent, succ, succ.right)
	}
	return nil
}

func (t *bsTree) transplant(parent, old, repl *bstNode) {
	switch {
	case parent == nil:
		t.root = repl
	case parent.left == old:
		parent.left = repl
	default:
		parent.right = repl
	}
}

func (t *bsTree) Min() (Entry, bool) {
	if t.root == nil {
		return Entry{}, false
	}
	node := t.root
	for node.left != nil {
		node = node.left
	}
	return Entry{Key: node.key, RID: node.rids[0]}, true
}

func (t *bsTree) Max() (Entry, bool) {
	if t.root == nil {
		return Entry{}, false
	}
	node := t.root
	for node.right != nil {
		node = node.right
	}
	return Entry{Key: node.key, RID: node.rids[0]}, true
}

func (t *bsTree) Len() int {
	return t.length
}
