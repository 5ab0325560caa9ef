package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitwall/gridsync/pkg/dataset"
	"github.com/pitwall/gridsync/pkg/record"
	"github.com/pitwall/gridsync/pkg/sources"
)

func intPtr(n int) *int { return &n }

func TestSimilarity(t *testing.T) {
	m := New()

	t.Run("identical after normalization", func(t *testing.T) {
		assert.Equal(t, 1.0, m.Similarity("Max Verstappen", "Max VERSTAPPEN"))
		assert.Equal(t, 1.0, m.Similarity("  Max   Verstappen ", "Max Verstappen"))
	})

	t.Run("generational suffix stripped", func(t *testing.T) {
		assert.Equal(t, 1.0, m.Similarity("Carlos Sainz Jr", "Carlos Sainz"))
		assert.Equal(t, 1.0, m.Similarity("Carlos Sainz JR", "carlos sainz"))
	})

	t.Run("diacritics folded", func(t *testing.T) {
		assert.Equal(t, 1.0, m.Similarity("Sergio Pérez", "Sergio Perez"))
		assert.Equal(t, 1.0, m.Similarity("Kimi Räikkönen", "Kimi Raikkonen"))
	})

	t.Run("substring containment boosted", func(t *testing.T) {
		assert.GreaterOrEqual(t, m.Similarity("Max Verstappen", "Verstappen"), 0.9)
		assert.GreaterOrEqual(t, m.Similarity("Hamilton", "Lewis Hamilton"), 0.9)
	})

	t.Run("different names score low", func(t *testing.T) {
		assert.Less(t, m.Similarity("Lewis Hamilton", "Max Verstappen"), DefaultThreshold)
		assert.Less(t, m.Similarity("Charles Leclerc", "Lando Norris"), DefaultThreshold)
	})
}

func TestMatch(t *testing.T) {
	m := New()

	existing := []*dataset.Driver{
		{ID: 1, FullName: "Max Verstappen", Code: "VER", Number: intPtr(33), SourceIDs: map[sources.ID]string{}},
		{ID: 2, FullName: "Sergio Perez", Code: "PER", Number: intPtr(11), SourceIDs: map[sources.ID]string{}},
	}

	t.Run("exact code wins regardless of name", func(t *testing.T) {
		got, ok := m.Match(record.Record{"name": "M. Verstappen II", "code": "VER"}, existing)
		require.True(t, ok)
		assert.Equal(t, 1, got.ID)
	})

	t.Run("number match requires name agreement", func(t *testing.T) {
		got, ok := m.Match(record.Record{"name": "Max VERSTAPPEN", "driver_number": 33}, existing)
		require.True(t, ok)
		assert.Equal(t, 1, got.ID)

		_, ok = m.Match(record.Record{"name": "Somebody Else", "driver_number": 33}, existing)
		assert.False(t, ok)
	})

	t.Run("fuzzy name above threshold", func(t *testing.T) {
		got, ok := m.Match(record.Record{"full_name": "Verstappen"}, existing)
		require.True(t, ok)
		assert.Equal(t, 1, got.ID)
	})

	t.Run("no match below threshold", func(t *testing.T) {
		_, ok := m.Match(record.Record{"name": "Lando Norris"}, existing)
		assert.False(t, ok)
	})

	t.Run("nameless record never matches", func(t *testing.T) {
		_, ok := m.Match(record.Record{"code": "VER"}, existing)
		assert.False(t, ok)
	})
}

func TestMatchThresholdOption(t *testing.T) {
	strict := New(WithThreshold(0.99))
	assert.Equal(t, 0.99, strict.Threshold())

	existing := []*dataset.Driver{
		{ID: 1, FullName: "Max Verstappen", SourceIDs: map[sources.ID]string{}},
	}

	// Containment boosts to 0.9, below the strict threshold.
	_, ok := strict.Match(record.Record{"name": "Verstappen"}, existing)
	assert.False(t, ok)

	lenient := New(WithThreshold(0.9))
	_, ok = lenient.Match(record.Record{"name": "Verstappen"}, existing)
	assert.True(t, ok)
}

func TestUnifyDrivers(t *testing.T) {
	m := New()

	t.Run("same driver across two sources", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"name": "Max Verstappen", "code": "VER", "number": 33, "id": "max_verstappen", "dateOfBirth": "1997-09-30"},
			},
			sources.OpenF1: {
				{"full_name": "Max VERSTAPPEN", "driver_number": 33, "id": 1.0},
			},
		}

		drivers := m.UnifyDrivers(sources.ByPriority(bySource, nil), bySource)
		require.Len(t, drivers, 1)

		d := drivers[0]
		assert.Equal(t, 1, d.ID)
		assert.Equal(t, "Max", d.Forename)
		assert.Equal(t, "Verstappen", d.Surname)
		assert.Equal(t, "Max Verstappen", d.FullName)
		assert.Equal(t, "VER", d.Code)
		require.NotNil(t, d.Number)
		assert.Equal(t, 33, *d.Number)
		require.NotNil(t, d.DateOfBirth)
		assert.Equal(t, "max_verstappen", d.SourceIDs[sources.Ergast])
		assert.Equal(t, "1", d.SourceIDs[sources.OpenF1])
	})

	t.Run("distinct drivers stay distinct", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"name": "Max Verstappen", "id": "max_verstappen"},
				{"name": "Lewis Hamilton", "id": "hamilton"},
			},
		}

		drivers := m.UnifyDrivers(sources.ByPriority(bySource, nil), bySource)
		require.Len(t, drivers, 2)
		assert.Equal(t, 1, drivers[0].ID)
		assert.Equal(t, 2, drivers[1].ID)
	})

	t.Run("ids are dense in creation order", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"name": "Alpha One"},
				{"name": "Beta Two"},
			},
			sources.StatsF1: {
				{"name": "Gamma Three"},
			},
		}

		drivers := m.UnifyDrivers(sources.ByPriority(bySource, nil), bySource)
		require.Len(t, drivers, 3)
		for i, d := range drivers {
			assert.Equal(t, i+1, d.ID)
		}
		// ergast (priority 10) records seed before statsf1 (priority 6).
		assert.Equal(t, "Alpha One", drivers[0].FullName)
		assert.Equal(t, "Beta Two", drivers[1].FullName)
		assert.Equal(t, "Gamma Three", drivers[2].FullName)
	})

	t.Run("nameless records skipped", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.Ergast: {
				{"code": "VER", "number": 33},
				{"name": "Max Verstappen"},
			},
		}

		drivers := m.UnifyDrivers(sources.ByPriority(bySource, nil), bySource)
		require.Len(t, drivers, 1)
	})

	t.Run("missing ref gets a synthetic one", func(t *testing.T) {
		bySource := map[sources.ID][]record.Record{
			sources.OpenF1: {{"full_name": "Oscar Piastri"}},
		}

		drivers := m.UnifyDrivers(sources.ByPriority(bySource, nil), bySource)
		require.Len(t, drivers, 1)
		assert.Equal(t, "driver_1", drivers[0].Ref)
	})
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		forename string
		surname  string
	}{
		{"two tokens", "Max Verstappen", "Max", "Verstappen"},
		{"three tokens", "Jean Eric Vergne", "Jean Eric", "Vergne"},
		{"single token", "Verstappen", "", "Verstappen"},
		{"empty", "", "", ""},
		{"extra whitespace", "  Max   Verstappen ", "Max", "Verstappen"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forename, surname := SplitName(tt.input)
			assert.Equal(t, tt.forename, forename)
			assert.Equal(t, tt.surname, surname)
		})
	}
}
