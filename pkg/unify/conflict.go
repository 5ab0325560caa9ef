package unify

import (
	"sort"

	"github.com/pitwall/gridsync/pkg/sources"
)

// Conflict is an ephemeral comparison of one candidate value for a logical
// field, tagged with the priority of the source that contributed it.
type Conflict struct {
	Value    any
	Source   sources.ID
	Priority int
}

// resolve picks the highest-priority non-empty value. Ties on equal priority
// are stable on input order, so callers must supply candidates in a
// deterministic order.
func resolve(candidates []Conflict) (Conflict, bool) {
	kept := make([]Conflict, 0, len(candidates))
	for _, c := range candidates {
		if isEmpty(c.Value) {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return Conflict{}, false
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Priority > kept[j].Priority
	})
	return kept[0], true
}

// ResolveConflict resolves a set of conflicting values using source
// priorities supplied in the same order. Empty and missing values are
// dropped; the value from the highest-priority source wins, with ties stable
// on input order. Returns nil if no non-empty value exists.
func ResolveConflict(values []any, priorities []int) any {
	candidates := make([]Conflict, 0, len(values))
	for i, v := range values {
		priority := 0
		if i < len(priorities) {
			priority = priorities[i]
		}
		candidates = append(candidates, Conflict{Value: v, Priority: priority})
	}

	winner, ok := resolve(candidates)
	if !ok {
		return nil
	}
	return winner.Value
}

// isEmpty reports whether a raw field value counts as missing.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}
	return false
}
