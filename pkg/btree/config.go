// ABOUTME: B+ tree tuning parameters
// ABOUTME: Minimum degree, uniqueness, and the search algorithm threshold

package btree

import "fmt"

const (
	// DefaultMinimumDegree suits insert-heavy workloads. Scan-heavy tables
	// profit from 256-512.
	DefaultMinimumDegree = 128

	// DefaultSearchThreshold is the node size below which linear scan beats
	// binary search.
	DefaultSearchThreshold = 8
)

// Config holds the tree parameters.
type Config struct {
	// MinimumDegree t bounds node occupancy: every non-root node holds
	// between t-1 and 2t-1 keys.
	MinimumDegree int

	// Unique rejects duplicate keys on insert.
	Unique bool

	// SearchThreshold switches in-node key search from linear scan to
	// binary search once a node holds at least this many keys.
	SearchThreshold int

	// DebugMode re-verifies the structural invariants after every mutation
	// and surfaces ErrIntegrity on violation.
	DebugMode bool
}

// DefaultConfig returns a non-unique tree configuration with the standard
// degree and threshold.
func DefaultConfig() Config {
	return Config{
		MinimumDegree:   DefaultMinimumDegree,
		SearchThreshold: DefaultSearchThreshold,
	}
}

// Validate checks the parameters.
func (c Config) Validate() error {
	if c.MinimumDegree < 2 {
		return fmt.Errorf("btree: minimum degree %d below 2", c.MinimumDegree)
	}
	if c.SearchThreshold < 0 {
		return fmt.Errorf("btree: negative search threshold %d", c.SearchThreshold)
	}
	return nil
}
