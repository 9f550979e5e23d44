package scene

import (
	"fmt"
	"sort"

	"github.com/banshee-data/roomscan/internal/xr"
)

// Anchor is one resolved spatial anchor.
type Anchor struct {
	UUID       string      `json:"uuid,omitempty"`
	Space      xr.Space    `json:"space"`
	RoomLayout *RoomLayout `json:"room_layout,omitempty"`
}

// Resolution is everything resolved from one set of query results.
type Resolution struct {
	Anchors []Anchor `json:"anchors"`
	// Surfaces holds the canonical floor and ceiling identifiers seen.
	Surfaces map[string]struct{} `json:"-"`
	// Walls lists wall identifiers in the order the runtime returned them,
	// room by room.
	Walls []string `json:"walls"`
}

// Room returns the first resolved room layout, or nil.
func (r *Resolution) Room() *RoomLayout {
	for _, a := range r.Anchors {
		if a.RoomLayout != nil {
			return a.RoomLayout
		}
	}
	return nil
}

// SurfaceIDs returns Surfaces sorted.
func (r *Resolution) SurfaceIDs() []string {
	ids := make([]string, 0, len(r.Surfaces))
	for id := range r.Surfaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Resolver turns raw query results into typed anchors.
type Resolver struct {
	Scene         xr.SceneExt
	SpatialEntity xr.SpatialEntityExt
	Session       xr.Session
	// ReferenceSpace stands in for records that carry a null space handle.
	ReferenceSpace xr.Space
	Options        RetrieveOptions
}

// Resolve inspects every record and fetches the room layout of those that
// carry the room layout component.
func (r *Resolver) Resolve(records []xr.SpaceQueryResult) (*Resolution, error) {
	if r.SpatialEntity == nil {
		return nil, missingTable("spatial entity")
	}

	out := &Resolution{
		Anchors:  make([]Anchor, 0, len(records)),
		Surfaces: make(map[string]struct{}),
		Walls:    []string{},
	}
	for _, rec := range records {
		anchor := Anchor{UUID: canonicalOrAbsent(rec.UUID), Space: rec.Space}

		space := rec.Space
		if space == xr.NullSpace {
			space = r.ReferenceSpace
		}
		isRoom, err := r.hasRoomLayout(space)
		if err != nil {
			return nil, err
		}
		if isRoom {
			room, err := RetrieveRoomLayout(r.Scene, r.Session, space, r.Options)
			if err != nil {
				return nil, fmt.Errorf("room layout of space %d: %w", space, err)
			}
			anchor.RoomLayout = room
			if room.HasFloor() {
				out.Surfaces[room.Floor] = struct{}{}
				logf("floor uuid: %s", room.Floor)
			} else {
				logf("no floor uuid found for space %d", space)
			}
			if room.HasCeiling() {
				out.Surfaces[room.Ceiling] = struct{}{}
			}
			out.Walls = append(out.Walls, room.Walls...)
		}
		out.Anchors = append(out.Anchors, anchor)
	}
	return out, nil
}

func (r *Resolver) hasRoomLayout(space xr.Space) (bool, error) {
	status := &xr.SpaceComponentStatus{Type: xr.TypeSpaceComponentStatusFB}
	res := r.SpatialEntity.GetSpaceComponentStatus(space, xr.ComponentTypeRoomLayout, status)
	if res == xr.ErrorSpaceComponentNotSupportedFB {
		return false, nil
	}
	if err := check(xr.CallGetSpaceComponentStatus, res); err != nil {
		return false, fmt.Errorf("component status of space %d: %w", space, err)
	}
	return status.Enabled, nil
}
