// Package gridsync reconciles racing-event records independently produced by
// several disjoint data providers into one canonical dataset: a single
// driver, constructor, and race identity per real-world entity, with
// field-level conflicts resolved by source authority.
//
// The engine is a pure, synchronous batch transform over fully-materialized
// inputs. It owns no shared state across calls: each Merge invocation builds
// its own unified collections, so reprocessing the same batch with the same
// priority table yields identical collections and identical id assignments.
//
// Example usage:
//
//	client, err := gridsync.New(gridsync.WithThreshold(0.9))
//	if err != nil {
//	    return err
//	}
//	result, err := client.Merge(ctx, batch)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Summary())
package gridsync

import (
	"context"

	"github.com/agentstation/utc"

	"github.com/pitwall/gridsync/pkg/dataset"
	"github.com/pitwall/gridsync/pkg/errors"
	"github.com/pitwall/gridsync/pkg/logging"
	"github.com/pitwall/gridsync/pkg/match"
	"github.com/pitwall/gridsync/pkg/provenance"
	"github.com/pitwall/gridsync/pkg/record"
	"github.com/pitwall/gridsync/pkg/sources"
	"github.com/pitwall/gridsync/pkg/unify"
)

// Batch holds the per-source raw records for one merge run, one mapping per
// entity type. Producing these records (fetching, scraping, caching) is the
// caller's concern; the engine only reconciles them.
type Batch struct {
	Drivers      map[sources.ID][]record.Record
	Constructors map[sources.ID][]record.Record
	Races        map[sources.ID][]record.Record
	Results      map[sources.ID][]record.Record
}

// NewBatch creates an empty batch with all mappings initialized.
func NewBatch() *Batch {
	return &Batch{
		Drivers:      make(map[sources.ID][]record.Record),
		Constructors: make(map[sources.ID][]record.Record),
		Races:        make(map[sources.ID][]record.Record),
		Results:      make(map[sources.ID][]record.Record),
	}
}

// Sources returns the union of source IDs contributing to the batch, ordered
// by descending priority.
func (b *Batch) Sources(priority sources.PriorityFunc) []sources.ID {
	union := make(map[sources.ID]struct{})
	for _, bySource := range []map[sources.ID][]record.Record{b.Drivers, b.Constructors, b.Races, b.Results} {
		for id := range bySource {
			union[id] = struct{}{}
		}
	}
	return sources.ByPriority(union, priority)
}

// Client runs the full per-entity-type reconciliation over a batch.
type Client struct {
	config  *config
	merger  *unify.Merger
	tracker provenance.Tracker
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	tracker := provenance.NewTracker(cfg.tracking)
	matcher := match.New(
		match.WithScorer(cfg.scorer),
		match.WithThreshold(cfg.threshold),
	)
	merger := unify.New(
		unify.WithMatcher(matcher),
		unify.WithPriorityFunc(cfg.priority),
		unify.WithTracker(tracker),
	)

	return &Client{
		config:  cfg,
		merger:  merger,
		tracker: tracker,
	}, nil
}

// Merge reconciles a batch into unified collections: drivers first, then
// constructors, races, and finally per-race results linked back to the
// unified races. Malformed records are skipped, never fatal; the only error
// is a nil batch.
func (c *Client) Merge(ctx context.Context, batch *Batch) (*Result, error) {
	if batch == nil {
		return nil, &errors.ValidationError{Field: "batch", Message: "cannot be nil"}
	}

	logger := logging.FromContext(ctx)
	start := utc.Now()
	c.tracker.Clear()

	ds := &dataset.Dataset{
		Drivers:      c.merger.Drivers(batch.Drivers),
		Constructors: c.merger.Constructors(batch.Constructors),
		Races:        c.merger.Races(batch.Races),
	}

	for _, race := range ds.Races {
		perRace := c.partitionResults(race, batch.Results)
		if len(perRace) == 0 {
			continue
		}
		ds.Results = append(ds.Results, c.merger.Results(perRace, race.ID)...)
	}

	end := utc.Now()
	result := &Result{
		Dataset:    ds,
		Provenance: c.tracker.Map(),
		Metadata: Metadata{
			StartTime: start,
			EndTime:   end,
			Duration:  end.Sub(start),
			Sources:   batch.Sources(c.config.priority),
			Stats: Stats{
				Drivers:      len(ds.Drivers),
				Constructors: len(ds.Constructors),
				Races:        len(ds.Races),
				Results:      len(ds.Results),
			},
		},
	}

	logger.Info().
		Int("drivers", result.Metadata.Stats.Drivers).
		Int("constructors", result.Metadata.Stats.Constructors).
		Int("races", result.Metadata.Stats.Races).
		Int("results", result.Metadata.Stats.Results).
		Dur("duration", result.Metadata.Duration).
		Msg("Merge completed")

	return result, nil
}

// partitionResults selects the result records belonging to one unified race:
// by the contributing source's own race id when the record carries one,
// falling back to the (year, round) natural key. Records linked to neither
// are left for other races or skipped.
func (c *Client) partitionResults(race *dataset.Race, bySource map[sources.ID][]record.Record) map[sources.ID][]record.Record {
	perRace := make(map[sources.ID][]record.Record)

	for src, recs := range bySource {
		for _, rec := range recs {
			if !c.belongsToRace(race, src, rec) {
				continue
			}
			perRace[src] = append(perRace[src], rec)
		}
	}

	return perRace
}

func (c *Client) belongsToRace(race *dataset.Race, src sources.ID, rec record.Record) bool {
	if raceID := rec.String(record.ResultRaceKeys...); raceID != "" {
		return race.SourceIDs[src] == raceID
	}
	year, okYear := rec.Int(record.RaceYearKeys...)
	round, okRound := rec.Int(record.RaceRoundKeys...)
	if okYear && okRound {
		return race.Year == year && race.Round == round
	}
	return false
}
