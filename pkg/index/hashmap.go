// ABOUTME: Unordered hash map index backend
// ABOUTME: Buckets RIDs per key, full scan for min/max

package index

import "github.com/nainya/columnstore/pkg/btree"

// hashMap is the unordered backend: a map from column value to the RIDs
// holding it. Point lookups are O(1); min/max scan every key.
type hashMap struct {
	buckets map[int64][]int64
	length  int
}

func newHashMap() *hashMap {
	return &hashMap{buckets: make(map[int64][]int64)}
}

func (m *hashMap) Insert(key, rid int64) error {
	m.buckets[key] = append(m.buckets[key], rid)
	m.length++
	return nil
}

func (m *hashMap) Get(key int64) []int64 {
	bucket := m.buckets[key]
	out := make([]int64, len(bucket))
	copy(out, bucket)
	return out
}

func (m *hashMap) Remove(key, rid int64) error {
	bucket, ok := m.buckets[key]
	if !ok {
		return btree.ErrKeyNotFound
	}
	for i, r := range bucket {
		if r == rid {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			if len(bucket) == 0 {
				delete(m.buckets, key)
			} else {
				m.buckets[key] = bucket
			}
			m.length--
			return nil
		}
	}
	return btree.ErrKeyNotFound
}

func (m *hashMap) Min() (Entry, bool) {
	if m.length == 0 {
		return Entry{}, false
	}
	first := true
	var min int64
	for k := range m.buckets {
		if first || k < min {
			min = k
			first = false
		}
	}
	return Entry{Key: min, RID: m.buckets[min][0]}, true
}

func (m *hashMap) Max() (Entry, bool) {
	if m.length == 0 {
		return Entry{}, false
	}
	first := true
	var max int64
	for k := range m.buckets {
		if first || k > max {
			max = k
			first = false
		}
	}
	return Entry{Key: max, RID: m.buckets[max][0]}, true
}

func (m *hashMap) Len() int {
	return m.length
}
