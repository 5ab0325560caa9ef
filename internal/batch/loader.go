// Package batch loads already-fetched per-source record files into a merge
// batch. It is the boundary between the fetching collaborators and the
// engine: no network access, no caching, just decoding.
//
// A batch directory holds one subdirectory per entity type, each containing
// one file per source named after its source ID:
//
//	<dir>/drivers/ergast.yaml
//	<dir>/drivers/openf1.json
//	<dir>/races/ergast.yaml
//	...
//
// Each file decodes to a list of loosely-typed field mappings.
package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/pitwall/gridsync"
	"github.com/pitwall/gridsync/pkg/errors"
	"github.com/pitwall/gridsync/pkg/logging"
	"github.com/pitwall/gridsync/pkg/record"
	"github.com/pitwall/gridsync/pkg/sources"
)

// Entity subdirectory names.
const (
	driversDir      = "drivers"
	constructorsDir = "constructors"
	racesDir        = "races"
	resultsDir      = "results"
)

// Load reads a batch directory into a merge batch. Missing entity
// subdirectories are fine; files with unknown extensions are skipped.
func Load(dir string) (*gridsync.Batch, error) {
	b := gridsync.NewBatch()

	for _, entity := range []struct {
		name string
		dest map[sources.ID][]record.Record
	}{
		{driversDir, b.Drivers},
		{constructorsDir, b.Constructors},
		{racesDir, b.Races},
		{resultsDir, b.Results},
	} {
		if err := loadEntity(filepath.Join(dir, entity.name), entity.dest); err != nil {
			return nil, err
		}
	}

	return b, nil
}

// loadEntity reads every per-source file in one entity subdirectory.
func loadEntity(dir string, dest map[sources.ID][]record.Record) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return &errors.BatchError{Path: dir, Err: err}
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			logging.Debug().Str("file", entry.Name()).Msg("Skipping batch file with unknown extension")
			continue
		}

		source := sources.ID(strings.TrimSuffix(entry.Name(), ext))
		path := filepath.Join(dir, entry.Name())

		records, err := loadFile(path, ext)
		if err != nil {
			return &errors.BatchError{Source: source.String(), Path: path, Err: err}
		}

		dest[source] = append(dest[source], records...)
	}

	return nil
}

// loadFile decodes one per-source record file.
func loadFile(path, ext string) ([]record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []record.Record
	if ext == ".json" {
		err = json.Unmarshal(data, &records)
	} else {
		err = yaml.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, err
	}

	return records, nil
}
