package xr

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/tailscale/hujson"

	"github.com/banshee-data/roomscan/internal/fsutil"
)

// maxFixtureSize caps fixture files read by LoadFixture.
const maxFixtureSize = 1 << 20

// Fixture describes a simulated runtime. Identifiers are written as 32 hex
// characters (dashes optional); an empty string means absent.
type Fixture struct {
	SystemID              SystemID `json:"system_id"`
	Session               Session  `json:"session"`
	ReferenceSpace        Space    `json:"reference_space"`
	SupportsSpatialEntity *bool    `json:"supports_spatial_entity,omitempty"`
	Extensions            struct {
		Scene              *bool `json:"scene,omitempty"`
		SpatialEntity      *bool `json:"spatial_entity,omitempty"`
		SpatialEntityQuery *bool `json:"spatial_entity_query,omitempty"`
	} `json:"extensions"`
	StrictCapacity    bool            `json:"strict_capacity,omitempty"`
	PendingRetrievals int             `json:"pending_retrievals,omitempty"`
	Anchors           []FixtureAnchor `json:"anchors"`
}

// FixtureAnchor is one anchor in a Fixture.
type FixtureAnchor struct {
	Space      Space        `json:"space"`
	UUID       string       `json:"uuid"`
	Components []string     `json:"components,omitempty"`
	Room       *FixtureRoom `json:"room,omitempty"`
}

// FixtureRoom is the room layout of a FixtureAnchor.
type FixtureRoom struct {
	Floor   string   `json:"floor,omitempty"`
	Ceiling string   `json:"ceiling,omitempty"`
	Walls   []string `json:"walls,omitempty"`
}

// LoadFixture reads a JSON fixture file. Comments and trailing commas are
// accepted.
func LoadFixture(path string) (*Fixture, error) {
	data, err := fsutil.ReadFileLimit(fsutil.OSFileSystem{}, path, maxFixtureSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixture: %w", err)
	}
	return ParseFixture(data)
}

// ParseFixture parses fixture bytes.
func ParseFixture(data []byte) (*Fixture, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(std, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture JSON: %w", err)
	}
	return &f, nil
}

// Runtime builds a TestableRuntime from the fixture. Missing extension and
// capability flags default to true; zero system and session handles
// default to 1.
func (f *Fixture) Runtime() (*TestableRuntime, error) {
	r := NewTestableRuntime()
	if f.SystemID != 0 {
		r.System = f.SystemID
	}
	if f.Session != 0 {
		r.Session = f.Session
	}
	r.HasScene = boolOr(f.Extensions.Scene, true)
	r.HasSpatialEntity = boolOr(f.Extensions.SpatialEntity, true)
	r.HasSpatialEntityQuery = boolOr(f.Extensions.SpatialEntityQuery, true)
	r.SupportsSpatialEntity = boolOr(f.SupportsSpatialEntity, true)
	r.StrictCapacity = f.StrictCapacity
	r.PendingRetrievals = f.PendingRetrievals

	for i, fa := range f.Anchors {
		id, err := parseFixtureUUID(fa.UUID)
		if err != nil {
			return nil, fmt.Errorf("anchor %d: uuid: %w", i, err)
		}
		a := Anchor{Space: fa.Space, UUID: id}
		for _, name := range fa.Components {
			c, err := ParseComponentType(name)
			if err != nil {
				return nil, fmt.Errorf("anchor %d: %w", i, err)
			}
			a.Components = append(a.Components, c)
		}
		if fa.Room != nil {
			room, err := fa.Room.room()
			if err != nil {
				return nil, fmt.Errorf("anchor %d: %w", i, err)
			}
			a.Room = room
		}
		r.AddAnchor(a)
	}
	return r, nil
}

func (fr *FixtureRoom) room() (*Room, error) {
	floor, err := parseFixtureUUID(fr.Floor)
	if err != nil {
		return nil, fmt.Errorf("floor: %w", err)
	}
	ceiling, err := parseFixtureUUID(fr.Ceiling)
	if err != nil {
		return nil, fmt.Errorf("ceiling: %w", err)
	}
	room := &Room{Floor: floor, Ceiling: ceiling}
	for i, w := range fr.Walls {
		id, err := parseFixtureUUID(w)
		if err != nil {
			return nil, fmt.Errorf("wall %d: %w", i, err)
		}
		room.Walls = append(room.Walls, id)
	}
	return room, nil
}

func parseFixtureUUID(s string) (UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
