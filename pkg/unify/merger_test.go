package unify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitwall/gridsync/pkg/provenance"
	"github.com/pitwall/gridsync/pkg/record"
	"github.com/pitwall/gridsync/pkg/sources"
)

func TestMergeDrivers(t *testing.T) {
	m := New()

	bySource := map[sources.ID][]record.Record{
		sources.Ergast: {
			{"name": "Max Verstappen", "code": "VER", "number": 33, "id": "max_verstappen"},
			{"name": "Sergio Perez", "code": "PER", "number": 11, "id": "perez"},
		},
		sources.OpenF1: {
			{"full_name": "Max VERSTAPPEN", "driver_number": 33, "id": "1"},
			{"full_name": "Lando NORRIS", "driver_number": 4, "id": "4"},
		},
	}

	drivers := m.Drivers(bySource)
	require.Len(t, drivers, 3)

	verstappen := drivers[0]
	assert.Equal(t, "Max Verstappen", verstappen.FullName)
	assert.Equal(t, "max_verstappen", verstappen.SourceIDs[sources.Ergast])
	assert.Equal(t, "1", verstappen.SourceIDs[sources.OpenF1])

	assert.Equal(t, "Sergio Perez", drivers[1].FullName)
	assert.Equal(t, "Lando NORRIS", drivers[2].FullName)
}

func TestMergeConstructors(t *testing.T) {
	m := New()

	t.Run("same name across sources merges", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"name": "Ferrari", "constructorId": "ferrari"},
			},
			sources.StatsF1: {
				{"name": "FERRARI", "constructor_id": "6", "nationality": "Italian"},
			},
		}

		constructors := m.Constructors(bySource)
		require.Len(t, constructors, 1)

		c := constructors[0]
		assert.Equal(t, 1, c.ID)
		assert.Equal(t, "Ferrari", c.Name)
		assert.Equal(t, "Italian", c.Nationality)
		assert.Equal(t, "ferrari", c.SourceIDs[sources.Ergast])
		assert.Equal(t, "6", c.SourceIDs[sources.StatsF1])
	})

	t.Run("higher priority nationality kept", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"name": "Ferrari", "nationality": "Italian"},
			},
			sources.StatsF1: {
				{"name": "Ferrari", "nationality": "Italy"},
			},
		}

		constructors := m.Constructors(bySource)
		require.Len(t, constructors, 1)
		assert.Equal(t, "Italian", constructors[0].Nationality)
	})

	t.Run("distinct names stay distinct", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"name": "Ferrari"},
				{"name": "McLaren"},
			},
		}

		constructors := m.Constructors(bySource)
		require.Len(t, constructors, 2)
		assert.Equal(t, 1, constructors[0].ID)
		assert.Equal(t, 2, constructors[1].ID)
	})

	t.Run("nameless records skipped", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {{"nationality": "Italian"}},
		}
		assert.Empty(t, m.Constructors(bySource))
	})

	t.Run("missing ref gets a synthetic one", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {{"name": "Ferrari"}},
		}
		constructors := m.Constructors(bySource)
		require.Len(t, constructors, 1)
		assert.Equal(t, "constructor_1", constructors[0].Ref)
	})
}

func TestMergeRaces(t *testing.T) {
	m := New()

	t.Run("natural key merges across sources", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"season": 2023, "round": 1, "raceName": "Bahrain Grand Prix", "raceId": "1098", "date": "2023-03-05"},
			},
			sources.StatsF1: {
				{"year": 2023, "round": 1, "name": "Sakhir", "race_id": "s-2023-1"},
			},
		}

		races := m.Races(bySource)
		require.Len(t, races, 1)

		race := races[0]
		assert.Equal(t, 1, race.ID)
		assert.Equal(t, 2023, race.Year)
		assert.Equal(t, 1, race.Round)
		assert.Equal(t, "Bahrain Grand Prix", race.Name)
		assert.Equal(t, "1098", race.SourceIDs[sources.Ergast])
		assert.Equal(t, "s-2023-1", race.SourceIDs[sources.StatsF1])
		require.NotNil(t, race.Date)
		assert.Equal(t, time.Date(2023, 3, 5, 0, 0, 0, 0, time.UTC), race.Date.Time)
	})

	t.Run("lower priority fills missing name and date", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"season": 2023, "round": 2},
			},
			sources.StatsF1: {
				{"year": 2023, "round": 2, "name": "Saudi Arabian Grand Prix", "date": "2023-03-19"},
			},
		}

		races := m.Races(bySource)
		require.Len(t, races, 1)
		assert.Equal(t, "Saudi Arabian Grand Prix", races[0].Name)
		require.NotNil(t, races[0].Date)
	})

	t.Run("different rounds stay distinct", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"season": 2023, "round": 1, "raceName": "Bahrain Grand Prix"},
				{"season": 2023, "round": 2, "raceName": "Saudi Arabian Grand Prix"},
			},
		}

		races := m.Races(bySource)
		require.Len(t, races, 2)
	})

	t.Run("records without the natural key skipped", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"raceName": "Mystery Race"},
				{"season": 2023, "raceName": "No Round"},
			},
		}
		assert.Empty(t, m.Races(bySource))
	})
}

func TestMergeResults(t *testing.T) {
	m := New()

	t.Run("single source copied through", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"driver_id": "1", "position": 1, "points": 25.0, "status": "Finished", "laps": 57, "time": "1:33:56.736"},
			},
		}

		results := m.Results(bySource, 7)
		require.Len(t, results, 1)

		r := results[0]
		assert.Equal(t, 7, r.RaceID)
		assert.Equal(t, "1", r.DriverID)
		require.NotNil(t, r.Position)
		assert.Equal(t, 1, *r.Position)
		require.NotNil(t, r.Points)
		assert.Equal(t, 25.0, *r.Points)
		assert.Equal(t, "Finished", r.Status)
		require.NotNil(t, r.Laps)
		assert.Equal(t, 57, *r.Laps)
		assert.Equal(t, "1:33:56.736", r.Time)
		assert.Equal(t, []sources.ID{sources.Ergast}, r.Sources)
	})

	t.Run("conflicting fields resolved by priority", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"driver_id": "1", "position": 2, "status": "Finished"},
			},
			sources.StatsF1: {
				{"driver_id": "1", "position": 1, "status": "R", "laps": 57},
			},
		}

		results := m.Results(bySource, 1)
		require.Len(t, results, 1)

		r := results[0]
		require.NotNil(t, r.Position)
		assert.Equal(t, 2, *r.Position)
		assert.Equal(t, "Finished", r.Status)
		// Laps only exist in the lower-priority source; each field resolves
		// independently.
		require.NotNil(t, r.Laps)
		assert.Equal(t, 57, *r.Laps)
		assert.Equal(t, []sources.ID{sources.Ergast, sources.StatsF1}, r.Sources)
	})

	t.Run("resolved status is normalized", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"driver_id": "1", "status": "Retired"},
			},
			sources.StatsF1: {
				{"driver_id": "1", "status": "Finished"},
			},
		}

		results := m.Results(bySource, 1)
		require.Len(t, results, 1)
		assert.Equal(t, "DNF", results[0].Status)
	})

	t.Run("missing status everywhere becomes unknown", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast:  {{"driver_id": "1", "position": 4}},
			sources.StatsF1: {{"driver_id": "1", "position": 4}},
		}

		results := m.Results(bySource, 1)
		require.Len(t, results, 1)
		assert.Equal(t, "Unknown", results[0].Status)
	})

	t.Run("gap notation kept raw", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"driver_id": "2", "time": "+1 Lap", "status": "Finished"},
			},
		}

		results := m.Results(bySource, 1)
		require.Len(t, results, 1)
		assert.Equal(t, "+1 Lap", results[0].Time)
	})

	t.Run("driver order is first seen by priority", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"driver_id": "1", "position": 1},
				{"driver_id": "44", "position": 2},
			},
			sources.StatsF1: {
				{"driver_id": "16", "position": 3},
				{"driver_id": "1", "position": 1},
			},
		}

		results := m.Results(bySource, 1)
		require.Len(t, results, 3)
		assert.Equal(t, "1", results[0].DriverID)
		assert.Equal(t, "44", results[1].DriverID)
		assert.Equal(t, "16", results[2].DriverID)
	})

	t.Run("records without a driver id skipped", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {{"position": 1}},
		}
		assert.Empty(t, m.Results(bySource, 1))
	})
}

func TestMergeIdempotent(t *testing.T) {
	bySource := map[sources.ID][]record.Record{
		sources.Ergast: {
			{"name": "Max Verstappen", "code": "VER", "number": 33, "id": "max_verstappen"},
			{"name": "Lewis Hamilton", "code": "HAM", "number": 44, "id": "hamilton"},
		},
		sources.OpenF1: {
			{"full_name": "Max VERSTAPPEN", "driver_number": 33, "id": "1"},
		},
		sources.FastF1: {
			{"full_name": "Lewis Hamilton", "driver_number": 44, "id": "44"},
		},
	}

	first := New().Drivers(bySource)
	for i := 0; i < 5; i++ {
		again := New().Drivers(bySource)
		require.Len(t, again, len(first))
		for j := range first {
			assert.Equal(t, first[j].ID, again[j].ID)
			assert.Equal(t, first[j].FullName, again[j].FullName)
			assert.Equal(t, first[j].SourceIDs, again[j].SourceIDs)
		}
	}
}

func TestMergeWithPriorityOverride(t *testing.T) {
	// Invert the table so statsf1 outranks ergast.
	inverted := func(id sources.ID) int {
		if id == sources.StatsF1 {
			return 20
		}
		return sources.Priority(id)
	}
	m := New(WithPriorityFunc(inverted))

	bySource := map[sources.ID][]record.Record{
		sources.Ergast: {
			{"driver_id": "1", "position": 2},
		},
		sources.StatsF1: {
			{"driver_id": "1", "position": 1},
		},
	}

	results := m.Results(bySource, 1)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Position)
	assert.Equal(t, 1, *results[0].Position)
}

func TestMergeTracksProvenance(t *testing.T) {
	tracker := provenance.NewTracker(true)
	m := New(WithTracker(tracker))

	bySource := map[sources.ID][]record.Record{
		sources.Ergast: {
			{"driver_id": "1", "position": 2},
		},
		sources.StatsF1: {
			{"driver_id": "1", "position": 1},
		},
	}

	results := m.Results(bySource, 3)
	require.Len(t, results, 1)

	entries := tracker.FindByField("result", "3/1", "position")
	require.Len(t, entries, 1)
	assert.Equal(t, sources.Ergast, entries[0].Source)
	assert.Equal(t, 10, entries[0].Priority)
}
