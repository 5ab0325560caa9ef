package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriority(t *testing.T) {
	tests := []struct {
		id   ID
		want int
	}{
		{Ergast, 10},
		{FIA, 9},
		{OpenF1, 8},
		{FastF1, 8},
		{F1Com, 7},
		{StatsF1, 6},
		{Wikipedia, 3},
		{ID("somewhere-new"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.id.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, Priority(tt.id))
		})
	}
}

func TestByPriority(t *testing.T) {
	bySource := map[ID][]string{
		StatsF1:   nil,
		Ergast:    nil,
		OpenF1:    nil,
		FastF1:    nil,
		FIA:       nil,
		Wikipedia: nil,
	}

	want := []ID{Ergast, FIA, FastF1, OpenF1, StatsF1, Wikipedia}
	assert.Equal(t, want, ByPriority(bySource, nil))
}

func TestByPriorityTieBreak(t *testing.T) {
	// OpenF1 and FastF1 share priority 8; the name ascending tie-break puts
	// fastf1 first.
	bySource := map[ID]int{OpenF1: 0, FastF1: 0}
	assert.Equal(t, []ID{FastF1, OpenF1}, ByPriority(bySource, nil))
}

func TestByPriorityCustomFunc(t *testing.T) {
	bySource := map[ID]int{Ergast: 0, Wikipedia: 0}

	inverted := func(id ID) int {
		if id == Wikipedia {
			return 99
		}
		return Priority(id)
	}
	assert.Equal(t, []ID{Wikipedia, Ergast}, ByPriority(bySource, inverted))
}

func TestByPriorityDeterministic(t *testing.T) {
	bySource := make(map[ID]struct{})
	for _, id := range IDs() {
		bySource[id] = struct{}{}
	}

	first := ByPriority(bySource, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ByPriority(bySource, nil))
	}
}
