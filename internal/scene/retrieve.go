package scene

import (
	"fmt"

	"github.com/banshee-data/roomscan/internal/xr"
)

// FillFunc performs one runtime call under the count-then-fill convention.
// A call with capacity 0 and a nil buf only asks for the count. Otherwise
// buf holds exactly capacity elements and the runtime writes into it. The
// returned count is the runtime's count output.
type FillFunc[T any] func(capacity uint32, buf []T) (count uint32, res xr.Result)

// RetrieveOptions tunes Retrieve.
type RetrieveOptions struct {
	// RetryOnGrowth repeats the sizing and fill pair once when the fill call
	// reports ErrorSizeInsufficient because the record set grew between the
	// two calls. Without it that status is returned as a NativeCallError.
	RetryOnGrowth bool

	// OnSized and OnFilled, when set, observe the sizing call's count and
	// the number of records kept after the fill call.
	OnSized  func(count uint32)
	OnFilled func(count uint32)
}

// Retrieve runs the count-then-fill protocol through fill:
//
//  1. sizing call with capacity 0 and no storage
//  2. allocate exactly the reported count; a count of 0 ends here with an
//     empty result and no second call
//  3. fill call with that capacity
//  4. reject a fill count above the capacity as ErrProtocolViolation
//
// A runtime that copies fewer records than it was given room for (for
// example because the set shrank, or because it truncates to capacity when
// the set grew) is accepted and the result is cut to the reported count.
func Retrieve[T any](call string, fill FillFunc[T], opts RetrieveOptions) ([]T, error) {
	attempts := 1
	if opts.RetryOnGrowth {
		attempts = 2
	}

	for attempt := 1; ; attempt++ {
		capacity, res := fill(0, nil)
		if err := check(call, res); err != nil {
			return nil, err
		}
		if opts.OnSized != nil {
			opts.OnSized(capacity)
		}
		if capacity == 0 {
			if opts.OnFilled != nil {
				opts.OnFilled(0)
			}
			return []T{}, nil
		}

		buf := make([]T, capacity)
		written, res := fill(capacity, buf)
		if res == xr.ErrorSizeInsufficient && attempt < attempts {
			logf("%s: record count grew from %d to %d between sizing and fill, retrying", call, capacity, written)
			continue
		}
		if err := check(call, res); err != nil {
			return nil, err
		}
		if written > capacity {
			return nil, fmt.Errorf("%w: %s reported %d records for capacity %d", ErrProtocolViolation, call, written, capacity)
		}
		if opts.OnFilled != nil {
			opts.OnFilled(written)
		}
		return buf[:written], nil
	}
}

// RetrieveQueryResults collects the results of a submitted space query.
func RetrieveQueryResults(q xr.SpatialEntityQueryExt, session xr.Session, requestID xr.AsyncRequestID, opts RetrieveOptions) ([]xr.SpaceQueryResult, error) {
	if q == nil {
		return nil, missingTable("spatial entity query")
	}
	return Retrieve[xr.SpaceQueryResult](xr.CallRetrieveSpaceQueryResults, func(capacity uint32, buf []xr.SpaceQueryResult) (uint32, xr.Result) {
		results := xr.SpaceQueryResults{
			Type:                xr.TypeSpaceQueryResultsFB,
			ResultCapacityInput: capacity,
			Results:             buf,
		}
		res := q.RetrieveSpaceQueryResults(session, requestID, &results)
		return results.ResultCountOutput, res
	}, opts)
}

// RoomLayout is a resolved room. Identifiers are canonical strings; an
// empty Floor or Ceiling means the runtime reported none.
type RoomLayout struct {
	Floor   string   `json:"floor,omitempty"`
	Ceiling string   `json:"ceiling,omitempty"`
	Walls   []string `json:"walls"`
}

// HasFloor reports whether a floor identifier is present.
func (r *RoomLayout) HasFloor() bool { return r.Floor != "" }

// HasCeiling reports whether a ceiling identifier is present.
func (r *RoomLayout) HasCeiling() bool { return r.Ceiling != "" }

// RetrieveRoomLayout fetches the room layout of space. The wall array is
// sized with the same count-then-fill protocol as query results; floor and
// ceiling come from the last successful call.
func RetrieveRoomLayout(s xr.SceneExt, session xr.Session, space xr.Space, opts RetrieveOptions) (*RoomLayout, error) {
	if s == nil {
		return nil, missingTable("scene")
	}
	var floor, ceiling xr.UUID
	walls, err := Retrieve[xr.UUID](xr.CallGetSpaceRoomLayout, func(capacity uint32, buf []xr.UUID) (uint32, xr.Result) {
		layout := xr.RoomLayout{
			Type:                  xr.TypeRoomLayoutFB,
			WallUUIDCapacityInput: capacity,
			WallUUIDs:             buf,
		}
		res := s.GetSpaceRoomLayout(session, space, &layout)
		if res.Succeeded() {
			floor, ceiling = layout.FloorUUID, layout.CeilingUUID
		}
		return layout.WallUUIDCountOutput, res
	}, opts)
	if err != nil {
		return nil, err
	}

	room := &RoomLayout{
		Floor:   canonicalOrAbsent(floor),
		Ceiling: canonicalOrAbsent(ceiling),
		Walls:   make([]string, len(walls)),
	}
	for i, w := range walls {
		room.Walls[i] = Canonicalize(w)
	}
	return room, nil
}
