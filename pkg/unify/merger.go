// Package unify builds the canonical cross-source collections: it applies
// the matcher and normalizer to attach each raw record to an existing unified
// entity or seed a new one, and resolves field-level conflicts by source
// priority.
//
// All four merge operations process sources in descending priority order with
// a stable tie-break, so a run is a pure function of its inputs: the same
// batch merged with the same priority table yields identical collections and
// identical id assignments.
package unify

import (
	"fmt"
	"strconv"

	"github.com/pitwall/gridsync/pkg/dataset"
	"github.com/pitwall/gridsync/pkg/logging"
	"github.com/pitwall/gridsync/pkg/match"
	"github.com/pitwall/gridsync/pkg/normalize"
	"github.com/pitwall/gridsync/pkg/provenance"
	"github.com/pitwall/gridsync/pkg/record"
	"github.com/pitwall/gridsync/pkg/sources"
)

// Merger reconciles per-source record collections into unified entities.
type Merger struct {
	matcher  *match.Matcher
	priority sources.PriorityFunc
	tracker  provenance.Tracker
}

// Option configures a Merger.
type Option func(*Merger)

// WithMatcher sets the driver matcher.
func WithMatcher(m *match.Matcher) Option {
	return func(merger *Merger) {
		if m != nil {
			merger.matcher = m
		}
	}
}

// WithPriorityFunc overrides the default source authority table.
func WithPriorityFunc(priority sources.PriorityFunc) Option {
	return func(merger *Merger) {
		if priority != nil {
			merger.priority = priority
		}
	}
}

// WithTracker enables field-level provenance tracking.
func WithTracker(tracker provenance.Tracker) Option {
	return func(merger *Merger) {
		if tracker != nil {
			merger.tracker = tracker
		}
	}
}

// New creates a Merger with the default matcher, the fixed source priority
// table, and provenance tracking disabled.
func New(opts ...Option) *Merger {
	m := &Merger{
		matcher:  match.New(),
		priority: sources.Priority,
		tracker:  provenance.NewTracker(false),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Matcher returns the configured driver matcher.
func (m *Merger) Matcher() *match.Matcher {
	return m.matcher
}

// Drivers merges driver records from multiple sources into unified drivers,
// delegating identity decisions to the matcher.
func (m *Merger) Drivers(bySource map[sources.ID][]record.Record) []*dataset.Driver {
	order := sources.ByPriority(bySource, m.priority)
	drivers := m.matcher.UnifyDrivers(order, bySource)
	logging.Debug().Int("count", len(drivers)).Msg("Merged drivers")
	return drivers
}

// Constructors merges constructor records. Identity is the normalized
// constructor name, matched exactly; the first (highest-priority) occurrence
// creates the entity, later occurrences add their source id and fill a
// still-empty nationality.
func (m *Merger) Constructors(bySource map[sources.ID][]record.Record) []*dataset.Constructor {
	var unified []*dataset.Constructor
	seen := make(map[string]*dataset.Constructor)

	for _, src := range sources.ByPriority(bySource, m.priority) {
		for _, rec := range bySource[src] {
			name := rec.String(record.ConstructorNameKeys...)
			normalized := normalize.Name(name)
			if normalized == "" {
				logging.Debug().Str("source", src.String()).Msg("Skipping constructor record without a name")
				continue
			}

			if existing, ok := seen[normalized]; ok {
				if id := rec.String(record.ConstructorIDKeys...); id != "" {
					existing.SourceIDs[src] = id
				}
				if existing.Nationality == "" {
					if nationality := rec.String(record.NationalityKeys...); nationality != "" {
						existing.Nationality = nationality
						m.track("constructor", strconv.Itoa(existing.ID), "nationality", nationality, src, "filled empty field")
					}
				}
				continue
			}

			constructor := &dataset.Constructor{
				ID:          len(unified) + 1,
				Ref:         rec.String(record.ConstructorRefKeys...),
				Name:        name,
				Nationality: rec.String(record.NationalityKeys...),
				SourceIDs:   make(map[sources.ID]string),
			}
			if constructor.Ref == "" {
				constructor.Ref = fmt.Sprintf("constructor_%d", constructor.ID)
			}
			if id := rec.String(record.ConstructorIDKeys...); id != "" {
				constructor.SourceIDs[src] = id
			}

			unified = append(unified, constructor)
			seen[normalized] = constructor
		}
	}

	logging.Debug().Int("count", len(unified)).Msg("Merged constructors")
	return unified
}

type raceKey struct {
	year  int
	round int
}

// Races merges race records keyed by the (year, round) natural key. The first
// occurrence creates the entity; later occurrences fill a still-empty name or
// date and always record their own source-specific race id.
func (m *Merger) Races(bySource map[sources.ID][]record.Record) []*dataset.Race {
	var unified []*dataset.Race
	seen := make(map[raceKey]*dataset.Race)

	for _, src := range sources.ByPriority(bySource, m.priority) {
		for _, rec := range bySource[src] {
			year, okYear := rec.Int(record.RaceYearKeys...)
			round, okRound := rec.Int(record.RaceRoundKeys...)
			if !okYear || !okRound {
				logging.Debug().Str("source", src.String()).Msg("Skipping race record without (year, round)")
				continue
			}

			key := raceKey{year: year, round: round}
			if existing, ok := seen[key]; ok {
				if existing.Name == "" {
					if name := rec.String(record.RaceNameKeys...); name != "" {
						existing.Name = name
						m.track("race", strconv.Itoa(existing.ID), "name", name, src, "filled empty field")
					}
				}
				if existing.Date == nil {
					if date, ok := rec.Value(record.RaceDateKeys...); ok {
						existing.Date = normalize.Timestamp(date, nil)
					}
				}
				if id := rec.String(record.RaceIDKeys...); id != "" {
					existing.SourceIDs[src] = id
				}
				continue
			}

			race := &dataset.Race{
				ID:         len(unified) + 1,
				Year:       year,
				Round:      round,
				Name:       rec.String(record.RaceNameKeys...),
				CircuitRef: rec.String(record.RaceCircuitKeys...),
				SourceIDs:  make(map[sources.ID]string),
			}
			if date, ok := rec.Value(record.RaceDateKeys...); ok {
				race.Date = normalize.Timestamp(date, nil)
			}
			if id := rec.String(record.RaceIDKeys...); id != "" {
				race.SourceIDs[src] = id
			}

			unified = append(unified, race)
			seen[key] = race
		}
	}

	logging.Debug().Int("count", len(unified)).Msg("Merged races")
	return unified
}

// contribution is one source's result record for a driver.
type contribution struct {
	rec record.Record
	src sources.ID
}

// Results merges per-source classification rows for one race into one row
// per driver. A single-source row is copied through the normalizer and tagged
// with its source; conflicting rows are resolved field by field via source
// priority, with status normalized after resolution.
func (m *Merger) Results(bySource map[sources.ID][]record.Record, raceID int) []*dataset.Result {
	byDriver := make(map[string][]contribution)
	var driverOrder []string

	for _, src := range sources.ByPriority(bySource, m.priority) {
		for _, rec := range bySource[src] {
			driverID := rec.String(record.ResultDriverKeys...)
			if driverID == "" {
				logging.Debug().Str("source", src.String()).Int("race_id", raceID).Msg("Skipping result record without a driver id")
				continue
			}
			if _, ok := byDriver[driverID]; !ok {
				driverOrder = append(driverOrder, driverID)
			}
			byDriver[driverID] = append(byDriver[driverID], contribution{rec: rec, src: src})
		}
	}

	results := make([]*dataset.Result, 0, len(driverOrder))
	for _, driverID := range driverOrder {
		contribs := byDriver[driverID]
		if len(contribs) == 1 {
			results = append(results, m.singleSourceResult(raceID, driverID, contribs[0]))
			continue
		}
		results = append(results, m.multiSourceResult(raceID, driverID, contribs))
	}

	logging.Debug().Int("count", len(results)).Int("race_id", raceID).Msg("Merged results")
	return results
}

// singleSourceResult copies the only contribution through the normalizer.
func (m *Merger) singleSourceResult(raceID int, driverID string, c contribution) *dataset.Result {
	result := &dataset.Result{
		RaceID:   raceID,
		DriverID: driverID,
		Status:   normalize.Status(c.rec.String(record.ResultStatusKeys...)),
		Sources:  []sources.ID{c.src},
	}
	if position, ok := c.rec.Value(record.ResultPositionKeys...); ok {
		if p, ok := normalize.Position(position); ok {
			result.Position = &p
		}
	}
	if points, ok := c.rec.Float(record.ResultPointsKeys...); ok {
		result.Points = &points
	}
	if laps, ok := c.rec.Value(record.ResultLapsKeys...); ok {
		if l, ok := normalize.LapNumber(laps, c.src); ok {
			result.Laps = &l
		}
	}
	result.Time = resultTime(c.rec.String(record.ResultTimeKeys...))
	return result
}

// multiSourceResult resolves each field independently by source priority.
func (m *Merger) multiSourceResult(raceID int, driverID string, contribs []contribution) *dataset.Result {
	result := &dataset.Result{
		RaceID:   raceID,
		DriverID: driverID,
		Sources:  make([]sources.ID, 0, len(contribs)),
	}
	for _, c := range contribs {
		result.Sources = append(result.Sources, c.src)
	}

	entityID := fmt.Sprintf("%d/%s", raceID, driverID)

	if winner, ok := m.resolveField(contribs, record.ResultPositionKeys, entityID, "position"); ok {
		if p, ok := normalize.Position(winner.Value); ok {
			result.Position = &p
		}
	}
	if winner, ok := m.resolveField(contribs, record.ResultPointsKeys, entityID, "points"); ok {
		if points, ok := toFloat(winner.Value); ok {
			result.Points = &points
		}
	}
	if winner, ok := m.resolveField(contribs, record.ResultStatusKeys, entityID, "status"); ok {
		result.Status = normalize.Status(fmt.Sprint(winner.Value))
	} else {
		result.Status = normalize.Status("")
	}
	if winner, ok := m.resolveField(contribs, record.ResultLapsKeys, entityID, "laps"); ok {
		if l, ok := normalize.LapNumber(winner.Value, winner.Source); ok {
			result.Laps = &l
		}
	}
	if winner, ok := m.resolveField(contribs, record.ResultTimeKeys, entityID, "time"); ok {
		result.Time = resultTime(fmt.Sprint(winner.Value))
	}

	return result
}

// resolveField collects each contribution's raw value for the aliased field
// and resolves the conflict by source priority.
func (m *Merger) resolveField(contribs []contribution, keys []string, entityID, field string) (Conflict, bool) {
	candidates := make([]Conflict, 0, len(contribs))
	for _, c := range contribs {
		value, _ := c.rec.Value(keys...)
		candidates = append(candidates, Conflict{
			Value:    value,
			Source:   c.src,
			Priority: m.priority(c.src),
		})
	}

	winner, ok := resolve(candidates)
	if !ok {
		return Conflict{}, false
	}

	m.track("result", entityID, field, winner.Value, winner.Source, fmt.Sprintf("selected by source priority (%d)", winner.Priority))
	return winner, true
}

// resultTime accepts a normalized time string, falling back to the trimmed
// raw value for gaps and lapped-car notations that carry no clock form.
func resultTime(raw string) string {
	if normalized, ok := normalize.TimeString(raw); ok {
		return normalized
	}
	return raw
}

// track records provenance for a resolved field if tracking is enabled.
func (m *Merger) track(entityType, entityID, field string, value any, src sources.ID, reason string) {
	m.tracker.Track(entityType, entityID, field, provenance.Provenance{
		Source:   src,
		Field:    field,
		Value:    value,
		Priority: m.priority(src),
		Reason:   reason,
	})
}

// toFloat coerces a resolved raw value to a float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
