// Package provenance provides field-level tracking of which source won each
// resolved field during a merge run, and why. Tracking is optional and off by
// default; a disabled tracker records nothing.
package provenance

import (
	"fmt"

	"github.com/agentstation/utc"

	"github.com/pitwall/gridsync/pkg/sources"
)

// Provenance records the origin of one resolved field value.
type Provenance struct {
	Source    sources.ID `json:"source" yaml:"source"`
	Field     string     `json:"field" yaml:"field"`
	Value     any        `json:"value" yaml:"value"`
	Priority  int        `json:"priority" yaml:"priority"`
	Reason    string     `json:"reason" yaml:"reason"`
	Timestamp utc.Time   `json:"timestamp" yaml:"timestamp"`
}

// Map tracks provenance for multiple entities, keyed by
// "entityType:entityID:field".
type Map map[string][]Provenance

// Key builds the map key for an entity field.
func Key(entityType, entityID, field string) string {
	return fmt.Sprintf("%s:%s:%s", entityType, entityID, field)
}

// Tracker manages provenance tracking during a merge run.
type Tracker interface {
	// Track records provenance for a field.
	Track(entityType, entityID, field string, p Provenance)

	// FindByField retrieves provenance for a specific field.
	FindByField(entityType, entityID, field string) []Provenance

	// Map returns the complete provenance map.
	Map() Map

	// Clear removes all provenance data.
	Clear()
}

// tracker is the default implementation.
type tracker struct {
	provenance Map
	enabled    bool
}

// NewTracker creates a new provenance tracker.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
	}
}

// Track records provenance for a field.
func (t *tracker) Track(entityType, entityID, field string, p Provenance) {
	if !t.enabled {
		return
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = utc.Now()
	}
	key := Key(entityType, entityID, field)
	t.provenance[key] = append(t.provenance[key], p)
}

// FindByField retrieves provenance for a specific field.
func (t *tracker) FindByField(entityType, entityID, field string) []Provenance {
	return t.provenance[Key(entityType, entityID, field)]
}

// Map returns the complete provenance map.
func (t *tracker) Map() Map {
	return t.provenance
}

// Clear removes all provenance data.
func (t *tracker) Clear() {
	t.provenance = make(Map)
}
