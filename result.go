package gridsync

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/pitwall/gridsync/pkg/dataset"
	"github.com/pitwall/gridsync/pkg/provenance"
	"github.com/pitwall/gridsync/pkg/sources"
)

// Result represents the outcome of one merge run.
type Result struct {
	// Dataset holds the unified collections in creation order.
	Dataset *dataset.Dataset

	// Provenance records which source won each resolved field, when
	// tracking is enabled.
	Provenance provenance.Map

	// Metadata describes the run itself.
	Metadata Metadata
}

// Metadata contains metadata about a merge run.
type Metadata struct {
	StartTime utc.Time
	EndTime   utc.Time
	Duration  time.Duration

	// Sources that contributed records, ordered by descending priority.
	Sources []sources.ID

	// Stats of the run.
	Stats Stats
}

// Stats counts the unified entities produced by a run.
type Stats struct {
	Drivers      int
	Constructors int
	Races        int
	Results      int
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("Merged %d drivers, %d constructors, %d races, %d results from %d sources in %s",
		r.Metadata.Stats.Drivers,
		r.Metadata.Stats.Constructors,
		r.Metadata.Stats.Races,
		r.Metadata.Stats.Results,
		len(r.Metadata.Sources),
		r.Metadata.Duration.Round(time.Millisecond),
	)
}
