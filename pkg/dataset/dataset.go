// Package dataset defines the canonical entities produced by a merge run:
// one driver, constructor, race, and classification row per real-world
// entity, each carrying the per-source foreign keys that contributed to it.
//
// Entity IDs are dense integers assigned in creation order within a run and
// are immutable once assigned. Lower-priority sources arriving later may only
// add or fill fields, never remove existing ones.
package dataset

import (
	"github.com/agentstation/utc"

	"github.com/pitwall/gridsync/pkg/sources"
)

// Driver is the unified identity for one real-world driver.
type Driver struct {
	ID          int       `json:"driver_id" yaml:"driver_id"`
	Ref         string    `json:"driver_ref" yaml:"driver_ref"`
	Forename    string    `json:"forename" yaml:"forename"`
	Surname     string    `json:"surname" yaml:"surname"`
	FullName    string    `json:"full_name" yaml:"full_name"`
	Code        string    `json:"code,omitempty" yaml:"code,omitempty"`
	Number      *int      `json:"number,omitempty" yaml:"number,omitempty"`
	Nationality string    `json:"nationality,omitempty" yaml:"nationality,omitempty"`
	DateOfBirth *utc.Time `json:"date_of_birth,omitempty" yaml:"date_of_birth,omitempty"`

	// SourceIDs maps each contributing source to its own identifier for this
	// driver, for foreign-key traceability back to the raw data.
	SourceIDs map[sources.ID]string `json:"source_ids,omitempty" yaml:"source_ids,omitempty"`
}

// Constructor is the unified identity for one real-world constructor,
// keyed by normalized name.
type Constructor struct {
	ID          int    `json:"constructor_id" yaml:"constructor_id"`
	Ref         string `json:"constructor_ref" yaml:"constructor_ref"`
	Name        string `json:"name" yaml:"name"`
	Nationality string `json:"nationality,omitempty" yaml:"nationality,omitempty"`

	SourceIDs map[sources.ID]string `json:"source_ids,omitempty" yaml:"source_ids,omitempty"`
}

// Race is the unified identity for one event, keyed by the (year, round)
// natural key.
type Race struct {
	ID         int       `json:"race_id" yaml:"race_id"`
	Year       int       `json:"year" yaml:"year"`
	Round      int       `json:"round" yaml:"round"`
	Name       string    `json:"name,omitempty" yaml:"name,omitempty"`
	Date       *utc.Time `json:"date,omitempty" yaml:"date,omitempty"`
	CircuitRef string    `json:"circuit_ref,omitempty" yaml:"circuit_ref,omitempty"`

	SourceIDs map[sources.ID]string `json:"source_ids,omitempty" yaml:"source_ids,omitempty"`
}

// Result is one merged classification row per (race, driver) pair. Sources
// lists every source that reported the row; a single-source result carries
// exactly one entry.
type Result struct {
	RaceID   int          `json:"race_id" yaml:"race_id"`
	DriverID string       `json:"driver_id" yaml:"driver_id"`
	Position *int         `json:"position,omitempty" yaml:"position,omitempty"`
	Points   *float64     `json:"points,omitempty" yaml:"points,omitempty"`
	Status   string       `json:"status" yaml:"status"`
	Laps     *int         `json:"laps,omitempty" yaml:"laps,omitempty"`
	Time     string       `json:"time,omitempty" yaml:"time,omitempty"`
	Sources  []sources.ID `json:"sources" yaml:"sources"`
}

// Dataset holds the unified collections produced by one merge run, in
// creation order.
type Dataset struct {
	Drivers      []*Driver      `json:"drivers" yaml:"drivers"`
	Constructors []*Constructor `json:"constructors" yaml:"constructors"`
	Races        []*Race        `json:"races" yaml:"races"`
	Results      []*Result      `json:"results" yaml:"results"`
}

// DriverBySourceID returns the unified driver that recorded the given
// source-specific identifier, if any.
func (d *Dataset) DriverBySourceID(source sources.ID, id string) (*Driver, bool) {
	for _, driver := range d.Drivers {
		if driver.SourceIDs[source] == id && id != "" {
			return driver, true
		}
	}
	return nil, false
}

// RaceByKey returns the unified race with the given (year, round) natural
// key, if any.
func (d *Dataset) RaceByKey(year, round int) (*Race, bool) {
	for _, race := range d.Races {
		if race.Year == year && race.Round == round {
			return race, true
		}
	}
	return nil, false
}
