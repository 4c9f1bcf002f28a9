// Package index maintains per-column secondary indices over a table's page
// directory, with pluggable ordered and unordered backends and a lazy
// maintenance pool for buffered insertions.
package index

import (
	"errors"
	"fmt"

	"github.com/nainya/columnstore/pkg/btree"
)

var (
	// ErrIndexExists indicates index creation on an occupied column slot
	ErrIndexExists = errors.New("index: column already indexed")

	// ErrNoIndex indicates an operation that requires an index on a column
	// without one
	ErrNoIndex = errors.New("index: column not indexed")
)

// Entry is one (key, rid) pair held by a backend or buffered in the
// maintenance pool.
type Entry struct {
	Key int64
	RID int64
}

// Backend is the capability set shared by every index structure. Keys are
// column values, payloads are base record IDs; duplicates are allowed since
// secondary columns are not unique.
type Backend interface {
	Insert(key, rid int64) error
	// Get returns the RIDs stored under key, in unspecified order.
	Get(key int64) []int64
	// Remove deletes the (key, rid) entry.
	Remove(key, rid int64) error
	Min() (Entry, bool)
	Max() (Entry, bool)
	Len() int
}

// OrderedBackend additionally supports range lookups in ascending key order.
type OrderedBackend interface {
	Backend
	GetRange(lo, hi int64) []int64
}

// BackendKind selects an index structure.
type BackendKind int

const (
	// KindBPlusTree is the ordered default.
	KindBPlusTree BackendKind = iota
	// KindBSTree is the alternate ordered structure.
	KindBSTree
	// KindHashMap is the unordered default.
	KindHashMap
)

// Config selects the backends used for ordered and unordered slots.
type Config struct {
	Ordered   BackendKind
	Unordered BackendKind
	Tree      btree.Config
}

// DefaultConfig indexes ordered slots with a B+ tree and unordered slots
// with a hash map.
func DefaultConfig() Config {
	return Config{
		Ordered:   KindBPlusTree,
		Unordered: KindHashMap,
		Tree:      btree.DefaultConfig(),
	}
}

// newBackend constructs a backend of the given kind.
func (c Config) newBackend(kind BackendKind) (Backend, error) {
	switch kind {
	case KindBPlusTree:
		cfg := c.Tree
		cfg.Unique = false
		t, err := btree.New(cfg)
		if err != nil {
			return nil, err
		}
		return &treeBackend{tree: t}, nil
	case KindBSTree:
		return newBSTree(), nil
	case KindHashMap:
		return newHashMap(), nil
	default:
		return nil, fmt.Errorf("index: unknown backend kind %d", kind)
	}
}

// treeBackend adapts the B+ tree to the backend contract.
type treeBackend struct {
	tree *btree.BPlusTree
}

func (b *treeBackend) Insert(key, rid int64) error {
	return b.tree.Insert(key, rid)
}

func (b *treeBackend) Get(key int64) []int64 {
	return b.tree.Get(key)
}

func (b *treeBackend) GetRange(lo, hi int64) []int64 {
	return b.tree.GetRange(lo, hi)
}

func (b *treeBackend) Remove(key, rid int64) error {
	return b.tree.DeleteValue(key, rid)
}

func (b *treeBackend) Min() (Entry, bool) {
	k, v, ok := b.tree.Min()
	return Entry{Key: k, RID: v}, ok
}

func (b *treeBackend) Max() (Entry, bool) {
	k, v, ok := b.tree.Max()
	return Entry{Key: k, RID: v}, ok
}

func (b *treeBackend) Len() int {
	return b.tree.Len()
}
