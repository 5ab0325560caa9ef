// Package match decides whether a newly-seen driver record refers to the same
// real-world driver as one already present in the growing unified set.
//
// Identity is resolved in three steps: an exact 3-letter code match
// short-circuits everything, a shared car number is accepted only when the
// names also agree (numbers get reused across eras), and otherwise the
// best-scoring normalized-name similarity wins if it clears the threshold.
// Near-threshold ambiguity is resolved as "no match": duplicate unified
// entities are preferred over wrongly merged identities, because unified ids
// are later used for foreign-key linkage.
package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pitwall/gridsync/pkg/dataset"
	"github.com/pitwall/gridsync/pkg/logging"
	"github.com/pitwall/gridsync/pkg/normalize"
	"github.com/pitwall/gridsync/pkg/record"
	"github.com/pitwall/gridsync/pkg/sources"
)

// DefaultThreshold is the minimum name similarity accepted as an identity
// match when no exact key decides first.
const DefaultThreshold = 0.85

// Matcher matches driver records across data sources.
type Matcher struct {
	scorer    Scorer
	threshold float64
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithScorer sets the similarity scorer.
func WithScorer(scorer Scorer) Option {
	return func(m *Matcher) {
		if scorer != nil {
			m.scorer = scorer
		}
	}
}

// WithThreshold sets the minimum similarity score for a fuzzy match.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) {
		m.threshold = threshold
	}
}

// New creates a Matcher with the default sequence scorer and threshold.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		scorer:    SequenceScorer{},
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Threshold returns the configured similarity threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// suffixPattern strips generational suffixes that vary across sources.
var suffixPattern = regexp.MustCompile(`\s+(jr|sr|ii|iii|iv)$`)

// matchKey normalizes a name for identity comparison: lower-cased, whitespace
// collapsed, generational suffixes stripped, diacritics folded.
func matchKey(name string) string {
	key := strings.ToLower(name)
	key = strings.Join(strings.Fields(key), " ")
	key = suffixPattern.ReplaceAllString(key, "")
	return strings.TrimSpace(foldDiacritics(key))
}

// Similarity scores two driver names in [0, 1]. Equal normalized names score
// 1.0. When one normalized name contains the other (nicknames, initials) the
// score is raised to at least 0.9.
func (m *Matcher) Similarity(a, b string) float64 {
	ka, kb := matchKey(a), matchKey(b)

	if ka == kb {
		return 1.0
	}

	score := m.scorer.Similarity(ka, kb)

	if ka != "" && kb != "" && (strings.Contains(ka, kb) || strings.Contains(kb, ka)) {
		score = max(score, 0.9)
	}

	return score
}

// Match decides whether rec refers to one of the existing unified drivers.
// An exact code match takes precedence over fuzzy matching; a shared car
// number is accepted only if the names also clear the threshold.
func (m *Matcher) Match(rec record.Record, existing []*dataset.Driver) (*dataset.Driver, bool) {
	name := rec.String(record.DriverNameKeys...)
	if name == "" {
		return nil, false
	}

	if code, ok := normalize.DriverCode(rec.String(record.DriverCodeKeys...)); ok {
		for _, driver := range existing {
			if driver.Code != "" && driver.Code == code {
				return driver, true
			}
		}
	}

	if number, ok := rec.Int(record.DriverNumberKeys...); ok {
		for _, driver := range existing {
			if driver.Number == nil || *driver.Number != number {
				continue
			}
			// Numbers get reused across eras; require the names to agree.
			if m.Similarity(name, driver.FullName) >= m.threshold {
				return driver, true
			}
		}
	}

	var best *dataset.Driver
	bestScore := 0.0
	for _, driver := range existing {
		if driver.FullName == "" {
			continue
		}
		score := m.Similarity(name, driver.FullName)
		if score > bestScore && score >= m.threshold {
			bestScore = score
			best = driver
		}
	}

	if best != nil {
		logging.Debug().
			Str("name", name).
			Int("driver_id", best.ID).
			Float64("similarity", bestScore).
			Msg("Matched driver to existing unified driver")
		return best, true
	}

	return nil, false
}

// UnifyDrivers builds the unified driver list from per-source records,
// processing sources in the supplied order. Records that match an existing
// unified driver contribute their source-specific id and fill a still-empty
// full name; the rest seed new entities with dense ids in creation order.
func (m *Matcher) UnifyDrivers(order []sources.ID, bySource map[sources.ID][]record.Record) []*dataset.Driver {
	var unified []*dataset.Driver

	for _, src := range order {
		for _, rec := range bySource[src] {
			name := rec.String(record.DriverNameKeys...)
			if name == "" {
				logging.Debug().Str("source", src.String()).Msg("Skipping driver record without a name")
				continue
			}

			if driver, ok := m.Match(rec, unified); ok {
				if id := rec.String(record.DriverIDKeys...); id != "" {
					driver.SourceIDs[src] = id
				}
				if driver.FullName == "" {
					driver.FullName = name
				}
				continue
			}

			unified = append(unified, m.newDriver(rec, src, name, len(unified)+1))
		}
	}

	logging.Debug().Int("count", len(unified)).Msg("Created unified drivers")
	return unified
}

// newDriver seeds a unified driver from its first-seen record.
func (m *Matcher) newDriver(rec record.Record, src sources.ID, name string, id int) *dataset.Driver {
	forename, surname := SplitName(name)

	driver := &dataset.Driver{
		ID:          id,
		Ref:         rec.String(record.DriverRefKeys...),
		Forename:    forename,
		Surname:     surname,
		FullName:    name,
		Nationality: rec.String(record.NationalityKeys...),
		SourceIDs:   make(map[sources.ID]string),
	}
	if driver.Ref == "" {
		driver.Ref = fmt.Sprintf("driver_%d", id)
	}
	if code, ok := normalize.DriverCode(rec.String(record.DriverCodeKeys...)); ok {
		driver.Code = code
	}
	if number, ok := rec.Int(record.DriverNumberKeys...); ok {
		driver.Number = &number
	}
	if dob, ok := rec.Value(record.DriverDOBKeys...); ok {
		driver.DateOfBirth = normalize.Timestamp(dob, nil)
	}
	if sourceID := rec.String(record.DriverIDKeys...); sourceID != "" {
		driver.SourceIDs[src] = sourceID
	}

	return driver
}

// SplitName splits a full name into forename and surname: the last
// whitespace-delimited token is the surname, the remainder the forename.
// Single-token names become surname-only.
func SplitName(fullName string) (forename, surname string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}
