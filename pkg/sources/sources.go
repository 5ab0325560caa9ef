// Package sources defines the data providers that contribute raw racing
// records and the fixed authority ranking used to resolve conflicts between
// them. Higher priority wins; sources not listed in the table score zero.
//
// The package also provides deterministic ordering of a source-to-records
// mapping. Merge runs must process sources in descending priority order with
// a stable tie-break, so callers are expected to iterate via ByPriority
// rather than ranging over the map directly.
package sources

import "sort"

// ID represents the identifier of a data source.
type ID string

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// Known source IDs.
const (
	// Ergast is the historical results archive, the most comprehensive
	// source for past seasons.
	Ergast ID = "ergast"

	// FIA covers official FIA documents (entry lists, classifications).
	FIA ID = "fia"

	// OpenF1 is the live telemetry API.
	OpenF1 ID = "openf1"

	// FastF1 provides official timing data.
	FastF1 ID = "fastf1"

	// F1Com is the official website.
	F1Com ID = "f1com"

	// StatsF1 is a third-party statistics site.
	StatsF1 ID = "statsf1"

	// Wikipedia is used for cross-reference only.
	Wikipedia ID = "wikipedia"
)

// IDs returns all known source IDs.
func IDs() []ID {
	return []ID{Ergast, FIA, OpenF1, FastF1, F1Com, StatsF1, Wikipedia}
}

// priorities is the fixed authority table. Unlisted sources score 0.
var priorities = map[ID]int{
	Ergast:    10,
	FIA:       9,
	OpenF1:    8,
	FastF1:    8,
	F1Com:     7,
	StatsF1:   6,
	Wikipedia: 3,
}

// Priority returns the authority score for a source. Higher is more
// authoritative; an unknown source scores 0.
func Priority(id ID) int {
	return priorities[id]
}

// PriorityFunc is the signature for authority lookups, allowing the default
// table to be swapped out per merge run.
type PriorityFunc func(ID) int

// ByPriority returns the keys of a source-keyed map ordered by descending
// priority, with ties broken by source name ascending. The ordering is total,
// so repeated calls over the same map always yield the same sequence.
func ByPriority[V any](bySource map[ID]V, priority PriorityFunc) []ID {
	if priority == nil {
		priority = Priority
	}
	ids := make([]ID, 0, len(bySource))
	for id := range bySource {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		pi, pj := priority(ids[i]), priority(ids[j])
		if pi != pj {
			return pi > pj
		}
		return ids[i] < ids[j]
	})
	return ids
}
