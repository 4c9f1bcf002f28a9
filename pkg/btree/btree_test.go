// ABOUTME: Tests for B+ tree insert, delete, and range operations
// ABOUTME: Includes exact shape checks and randomized reference comparisons

package btree

import (
	"errors"
	"math/rand"
	"sort"
	"testing"
)

func newTree(t *testing.T, degree int, unique bool) *BPlusTree {
	t.Helper()
	tree, err := New(Config{
		MinimumDegree:   degree,
		Unique:          unique,
		SearchThreshold: DefaultSearchThreshold,
		DebugMode:       true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tree
}

func TestInsertGet(t *testing.T) {
	tree := newTree(t, 2, true)

	for _, k := range []int64{5, 3, 8, 1, 9, 7, 2} {
		if err := tree.Insert(k, k*10); err != nil {
			t.Fatalf("Insert(%d): %v", k, err)
		}
	}

	for _, k := range []int64{5, 3, 8, 1, 9, 7, 2} {
		got := tree.Get(k)
		if len(got) != 1 || got[0] != k*10 {
			t.Errorf("Get(%d) = %v, want [%d]", k, got, k*10)
		}
	}
	if got := tree.Get(4); len(got) != 0 {
		t.Errorf("Get(4) = %v, want empty", got)
	}
	if tree.Len() != 7 {
		t.Errorf("Len() = %d, want 7", tree.Len())
	}
}

func TestUniqueDuplicateKey(t *testing.T) {
	tree := newTree(t, 2, true)

	if err := tree.Insert(1, 10); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tree.Insert(1, 20); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate Insert = %v, want ErrDuplicateKey", err)
	}
	if tree.Len() != 1 {
		t.Errorf("Len() = %d after rejected insert, want 1", tree.Len())
	}
}

// TestTreeShape inserts (i, i) for i in 1..10 into a non-unique degree-2
// tree and verifies the exact resulting structure.
func TestTreeShape(t *testing.T) {
	tree := newTree(t, 2, false)

	for i := int64(1); i <= 10; i++ {
		if err := tree.Insert(i, i); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	root := tree.at(tree.root)
	if root.leaf || len(root.keys) != 1 || root.keys[0] != 7 {
		t.Fatalf("root keys = %v, want [7]", root.keys)
	}

	left := tree.at(root.children[0])
	if left.leaf || len(left.keys) != 2 || left.keys[0] != 3 || left.keys[1] != 5 {
		t.Fatalf("left internal keys = %v, want [3 5]", left.keys)
	}
	right := tree.at(root.children[1])
	if right.leaf || len(right.keys) != 1 || right.keys[0] != 9 {
		t.Fatalf("right internal keys = %v, want [9]", right.keys)
	}

	wantLeaves := [][]int64{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}}
	h := tree.leftmostLeaf()
	for i, want := range wantLeaves {
		if h == nilHandle {
			t.Fatalf("leaf chain ended at leaf %d", i)
		}
		n := tree.at(h)
		if len(n.keys) != len(want) {
			t.Fatalf("leaf %d keys = %v, want %v", i, n.keys, want)
		}
		for j := range want {
			if n.keys[j] != want[j] {
				t.Fatalf("leaf %d keys = %v, want %v", i, n.keys, want)
			}
		}
		h = n.next
	}
	if h != nilHandle {
		t.Error("leaf chain has extra leaves")
	}

	items := tree.Items()
	if len(items) != 10 {
		t.Fatalf("Items() returned %d entries, want 10", len(items))
	}
	for i, item := range items {
		if item.Key != int64(i+1) {
			t.Errorf("Items()[%d].Key = %d, want %d", i, item.Key, i+1)
		}
	}

	if !tree.IsMaintained() {
		t.Error("IsMaintained() = false")
	}
}

// TestInsertDeleteCycle inserts 0..27 into a unique degree-2 tree and
// removes them in reverse, checking the invariants after every step.
func TestInsertDeleteCycle(t *testing.T) {
	tree := newTree(t, 2, true)

	for i := int64(0); i < 28; i++ {
		if err := tree.Insert(i, i); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
		if !tree.IsMaintained() {
			t.Fatalf("IsMaintained() = false after Insert(%d)", i)
		}
	}

	for i := int64(27); i >= 0; i-- {
		if err := tree.Delete(i); err != nil {
			t.Fatalf("Delete(%d): %v", i, err)
		}
		if !tree.IsMaintained() {
			t.Fatalf("IsMaintained() = false after Delete(%d)", i)
		}
	}

	if tree.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tree.Len())
	}
	root := tree.at(tree.root)
	if !root.leaf || len(root.keys) != 0 {
		t.Errorf("root is not an empty leaf: leaf=%v keys=%v", root.leaf, root.keys)
	}
	if tree.Height() != 0 {
		t.Errorf("Height() = %d, want 0", tree.Height())
	}
}

func TestDeleteForward(t *testing.T) {
	tree := newTree(t, 2, true)

	for i := int64(0); i < 28; i++ {
		if err := tree.Insert(i, i); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	for i := int64(0); i < 28; i++ {
		if err := tree.Delete(i); err != nil {
			t.Fatalf("Delete(%d): %v", i, err)
		}
		if !tree.IsMaintained() {
			t.Fatalf("IsMaintained() = false after Delete(%d)", i)
		}
	}
	if tree.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tree.Len())
	}
}

func TestDeleteNotFound(t *testing.T) {
	tree := newTree(t, 2, true)

	if err := tree.Delete(1); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Delete on empty tree = %v, want ErrKeyNotFound", err)
	}
	if err := tree.Insert(1, 1); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tree.Delete(2); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Delete(2) = %v, want ErrKeyNotFound", err)
	}
}

func TestDeleteValueNonUnique(t *testing.T) {
	tree := newTree(t, 2, false)

	if err := tree.Delete(1); !errors.Is(err, ErrValueRequired) {
		t.Errorf("Delete on non-unique tree = %v, want ErrValueRequired", err)
	}

	for v := int64(0); v < 5; v++ {
		if err := tree.Insert(7, v); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if err := tree.DeleteValue(7, 3); err != nil {
		t.Fatalf("DeleteValue(7, 3): %v", err)
	}
	got := tree.Get(7)
	if len(got) != 4 {
		t.Fatalf("Get(7) = %v, want 4 values", got)
	}
	for _, v := range got {
		if v == 3 {
			t.Errorf("value 3 still present after DeleteValue")
		}
	}
	if err := tree.DeleteValue(7, 99); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("DeleteValue of absent value = %v, want ErrKeyNotFound", err)
	}
}

func TestDuplicatesAcrossLeaves(t *testing.T) {
	tree := newTree(t, 2, false)

	// Enough duplicates of one key to span several leaves.
	for v := int64(0); v < 12; v++ {
		if err := tree.Insert(5, v); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if err := tree.Insert(1, 100); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := tree.Insert(9, 900); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got := tree.Get(5)
	if len(got) != 12 {
		t.Errorf("Get(5) returned %d values, want 12", len(got))
	}
	if !tree.IsMaintained() {
		t.Error("IsMaintained() = false")
	}
}

func TestGetRange(t *testing.T) {
	tree := newTree(t, 2, false)

	for i := int64(1); i <= 20; i++ {
		if err := tree.Insert(i, i*100); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	tests := []struct {
		lo, hi int64
		want   int
	}{
		{5, 10, 6},
		{1, 20, 20},
		{-100, 3, 3},
		{18, 100, 3},
		{21, 30, 0},
		{7, 7, 1},
		{10, 5, 0},
	}
	for _, tt := range tests {
		got := tree.GetRange(tt.lo, tt.hi)
		if len(got) != tt.want {
			t.Errorf("GetRange(%d, %d) returned %d values, want %d", tt.lo, tt.hi, len(got), tt.want)
			continue
		}
		for i := 1; i < len(got); i++ {
			if got[i-1] >= got[i] {
				t.Errorf("GetRange(%d, %d) out of order: %v", tt.lo, tt.hi, got)
				break
			}
		}
	}
}

func TestMinMax(t *testing.T) {
	tree := newTree(t, 2, true)

	if _, _, ok := tree.Min(); ok {
		t.Error("Min() on empty tree reported ok")
	}
	if _, _, ok := tree.Max(); ok {
		t.Error("Max() on empty tree reported ok")
	}

	for _, k := range []int64{4, -2, 19, 0, 7} {
		if err := tree.Insert(k, k*2); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	if k, v, ok := tree.Min(); !ok || k != -2 || v != -4 {
		t.Errorf("Min() = (%d, %d, %v), want (-2, -4, true)", k, v, ok)
	}
	if k, v, ok := tree.Max(); !ok || k != 19 || v != 38 {
		t.Errorf("Max() = (%d, %d, %v), want (19, 38, true)", k, v, ok)
	}
}

// TestRandomizedAgainstReference drives the tree with a deterministic
// random workload and cross-checks every state against a reference map.
func TestRandomizedAgainstReference(t *testing.T) {
	for _, degree := range []int{2, 3, 5} {
		tree := newTree(t, degree, true)
		ref := map[int64]int64{}
		rng := rand.New(rand.NewSource(42))

		for step := 0; step < 2000; step++ {
			k := int64(rng.Intn(300))
			if rng.Intn(3) > 0 {
				v := int64(rng.Intn(10000))
				err := tree.Insert(k, v)
				if _, exists := ref[k]; exists {
					if !errors.Is(err, ErrDuplicateKey) {
						t.Fatalf("degree %d step %d: Insert(%d) = %v, want ErrDuplicateKey", degree, step, k, err)
					}
				} else {
					if err != nil {
						t.Fatalf("degree %d step %d: Insert(%d): %v", degree, step, k, err)
					}
					ref[k] = v
				}
			} else {
				err := tree.Delete(k)
				if _, exists := ref[k]; exists {
					if err != nil {
						t.Fatalf("degree %d step %d: Delete(%d): %v", degree, step, k, err)
					}
					delete(ref, k)
				} else if !errors.Is(err, ErrKeyNotFound) {
					t.Fatalf("degree %d step %d: Delete(%d) = %v, want ErrKeyNotFound", degree, step, k, err)
				}
			}

			if step%97 == 0 && !tree.IsMaintained() {
				t.Fatalf("degree %d step %d: IsMaintained() = false", degree, step)
			}
		}

		if tree.Len() != len(ref) {
			t.Fatalf("degree %d: Len() = %d, want %d", degree, tree.Len(), len(ref))
		}

		wantKeys := make([]int64, 0, len(ref))
		for k := range ref {
			wantKeys = append(wantKeys, k)
		}
		sort.Slice(wantKeys, func(i, j int) bool { return wantKeys[i] < wantKeys[j] })

		gotKeys := tree.Keys()
		if len(gotKeys) != len(wantKeys) {
			t.Fatalf("degree %d: Keys() length %d, want %d", degree, len(gotKeys), len(wantKeys))
		}
		for i := range wantKeys {
			if gotKeys[i] != wantKeys[i] {
				t.Fatalf("degree %d: Keys()[%d] = %d, want %d", degree, i, gotKeys[i], wantKeys[i])
			}
			got := tree.Get(wantKeys[i])
			if len(got) != 1 || got[0] != ref[wantKeys[i]] {
				t.Fatalf("degree %d: Get(%d) = %v, want [%d]", degree, wantKeys[i], got, ref[wantKeys[i]])
			}
		}
	}
}

func TestContains(t *testing.T) {
	tree := newTree(t, 2, true)

	if tree.Contains(1) {
		t.Error("Contains(1) = true on empty tree")
	}
	if err := tree.Insert(1, 10); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if !tree.Contains(1) {
		t.Error("Contains(1) = false")
	}
	if tree.Contains(2) {
		t.Error("Contains(2) = true")
	}
}
