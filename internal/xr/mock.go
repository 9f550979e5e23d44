package xr

import "sync"

// Call is one recorded runtime call.
type Call struct {
	Name     string
	Capacity uint32
}

// Room is the layout TestableRuntime reports for a space.
type Room struct {
	Floor   UUID
	Ceiling UUID
	Walls   []UUID
}

// Anchor is a persisted spatial entity known to TestableRuntime.
type Anchor struct {
	Space      Space
	UUID       UUID
	Components []ComponentType
	Room       *Room
}

// TestableRuntime is an in-memory Connection implementing every extension
// table, with fine-grained control over capability reporting, sizing
// behaviour and injected failures. It records each call it receives.
type TestableRuntime struct {
	mu sync.Mutex

	// System is the only system id the runtime accepts.
	System SystemID
	// Session is the only session handle the runtime accepts.
	Session Session

	// HasScene, HasSpatialEntity and HasSpatialEntityQuery control which
	// extension tables Extensions reports.
	HasScene              bool
	HasSpatialEntity      bool
	HasSpatialEntityQuery bool

	// SupportsSpatialEntity is written into a chained
	// SystemSpatialEntityProperties.
	SupportsSpatialEntity bool

	// Anchors are returned, in order, by every query.
	Anchors []Anchor

	// Errors forces the named call to return the given result.
	Errors map[string]Result
	// PendingRetrievals makes the next N result retrievals report
	// ErrorSpaceComponentStatusPendingFB.
	PendingRetrievals int

	// GrowAfterSizing is appended to a request's results (or a room's walls
	// for GrowWallsAfterSizing) right after the first sizing call, as if
	// the runtime discovered more entities between the two calls.
	GrowAfterSizing      []SpaceQueryResult
	GrowWallsAfterSizing []UUID

	// StrictCapacity makes a fill call with too little capacity fail with
	// ErrorSizeInsufficient. Otherwise the runtime copies as many records
	// as fit and reports that count.
	StrictCapacity bool

	// OverReport and OverReportWalls are added to the count written by fill
	// calls, simulating a runtime that violates the capacity contract.
	OverReport      uint32
	OverReportWalls uint32

	// Calls records every call in order.
	Calls []Call

	nextRequest AsyncRequestID
	requests    map[AsyncRequestID][]SpaceQueryResult
	grown       bool
	wallsGrown  bool
}

// NewTestableRuntime returns a runtime with all extensions present, spatial
// entities supported, and system and session handles set to 1.
func NewTestableRuntime() *TestableRuntime {
	return &TestableRuntime{
		System:                1,
		Session:               1,
		HasScene:              true,
		HasSpatialEntity:      true,
		HasSpatialEntityQuery: true,
		SupportsSpatialEntity: true,
		Errors:                make(map[string]Result),
		requests:              make(map[AsyncRequestID][]SpaceQueryResult),
	}
}

// AddAnchor registers an anchor. Anchors with a room get the room layout
// component if it is not already listed.
func (r *TestableRuntime) AddAnchor(a Anchor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.Room != nil && !hasComponent(a.Components, ComponentTypeRoomLayout) {
		a.Components = append(a.Components, ComponentTypeRoomLayout)
	}
	r.Anchors = append(r.Anchors, a)
}

func hasComponent(components []ComponentType, c ComponentType) bool {
	for _, have := range components {
		if have == c {
			return true
		}
	}
	return false
}

// CallCount returns how many times the named call was made.
func (r *TestableRuntime) CallCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// CallsNamed returns the recorded calls with the given name.
func (r *TestableRuntime) CallsNamed(name string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// record appends a call and returns any forced result for it.
func (r *TestableRuntime) record(name string, capacity uint32) (Result, bool) {
	r.Calls = append(r.Calls, Call{Name: name, Capacity: capacity})
	res, ok := r.Errors[name]
	return res, ok
}

func (r *TestableRuntime) Extensions() Extensions {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ext Extensions
	if r.HasScene {
		ext.Scene = r
	}
	if r.HasSpatialEntity {
		ext.SpatialEntity = r
	}
	if r.HasSpatialEntityQuery {
		ext.SpatialEntityQuery = r
	}
	return ext
}

func (r *TestableRuntime) GetSystemProperties(system SystemID, props *SystemProperties) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.record(CallGetSystemProperties, 0); ok {
		return res
	}
	if props == nil || props.Type != TypeSystemProperties {
		return ErrorValidationFailure
	}
	if system != r.System {
		return ErrorSystemInvalid
	}
	props.SystemID = system
	props.SystemName = "testable runtime"
	for next := props.Next; next != nil; {
		switch p := next.(type) {
		case *SystemSpatialEntityProperties:
			if p.Type != TypeSystemSpatialEntityPropertiesFB {
				return ErrorValidationFailure
			}
			p.SupportsSpatialEntity = r.SupportsSpatialEntity
			next = p.Next
		default:
			next = nil
		}
	}
	return Success
}

func (r *TestableRuntime) GetSpaceComponentStatus(space Space, component ComponentType, status *SpaceComponentStatus) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.record(CallGetSpaceComponentStatus, 0); ok {
		return res
	}
	if status == nil || status.Type != TypeSpaceComponentStatusFB {
		return ErrorValidationFailure
	}
	a := r.anchor(space)
	if a == nil {
		return ErrorHandleInvalid
	}
	status.Enabled = hasComponent(a.Components, component)
	status.ChangePending = false
	return Success
}

func (r *TestableRuntime) QuerySpaces(session Session, info *SpaceQueryInfo, requestID *AsyncRequestID) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := r.record(CallQuerySpaces, 0); ok {
		return res
	}
	if session != r.Session {
		return ErrorHandleInvalid
	}
	if info == nil || requestID == nil || info.Type != TypeSpaceQueryInfoFB {
		return ErrorValidationFailure
	}
	if ValidateFilterChain(info.Filter) != nil || ValidateFilterChain(info.ExcludeFilter) != nil {
		return ErrorValidationFailure
	}
	results := make([]SpaceQueryResult, 0, len(r.Anchors))
	for _, a := range r.Anchors {
		if info.MaxResultCount > 0 && uint32(len(results)) >= info.MaxResultCount {
			break
		}
		results = append(results, SpaceQueryResult{Space: a.Space, UUID: a.UUID})
	}
	if r.requests == nil {
		r.requests = make(map[AsyncRequestID][]SpaceQueryResult)
	}
	r.nextRequest++
	r.requests[r.nextRequest] = results
	*requestID = r.nextRequest
	return Success
}

func (r *TestableRuntime) RetrieveSpaceQueryResults(session Session, requestID AsyncRequestID, results *SpaceQueryResults) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if results == nil {
		return ErrorValidationFailure
	}
	if res, ok := r.record(CallRetrieveSpaceQueryResults, results.ResultCapacityInput); ok {
		return res
	}
	if r.PendingRetrievals > 0 {
		r.PendingRetrievals--
		return ErrorSpaceComponentStatusPendingFB
	}
	if session != r.Session {
		return ErrorHandleInvalid
	}
	if results.Type != TypeSpaceQueryResultsFB {
		return ErrorValidationFailure
	}
	stored, ok := r.requests[requestID]
	if !ok {
		return ErrorValidationFailure
	}
	count, res := fillBuffer(stored, results.ResultCapacityInput, results.Results, r.StrictCapacity, r.OverReport)
	results.ResultCountOutput = count
	if results.ResultCapacityInput == 0 && !r.grown && len(r.GrowAfterSizing) > 0 {
		r.grown = true
		r.requests[requestID] = append(stored, r.GrowAfterSizing...)
	}
	return res
}

func (r *TestableRuntime) GetSpaceRoomLayout(session Session, space Space, layout *RoomLayout) Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if layout == nil {
		return ErrorValidationFailure
	}
	if res, ok := r.record(CallGetSpaceRoomLayout, layout.WallUUIDCapacityInput); ok {
		return res
	}
	if session != r.Session {
		return ErrorHandleInvalid
	}
	if layout.Type != TypeRoomLayoutFB {
		return ErrorValidationFailure
	}
	a := r.anchor(space)
	if a == nil {
		return ErrorHandleInvalid
	}
	if a.Room == nil {
		return ErrorSpaceComponentNotEnabledFB
	}
	layout.FloorUUID = a.Room.Floor
	layout.CeilingUUID = a.Room.Ceiling
	count, res := fillBuffer(a.Room.Walls, layout.WallUUIDCapacityInput, layout.WallUUIDs, r.StrictCapacity, r.OverReportWalls)
	layout.WallUUIDCountOutput = count
	if layout.WallUUIDCapacityInput == 0 && !r.wallsGrown && len(r.GrowWallsAfterSizing) > 0 {
		r.wallsGrown = true
		a.Room.Walls = append(a.Room.Walls, r.GrowWallsAfterSizing...)
	}
	return res
}

func (r *TestableRuntime) anchor(space Space) *Anchor {
	for i := range r.Anchors {
		if r.Anchors[i].Space == space {
			return &r.Anchors[i]
		}
	}
	return nil
}

// fillBuffer applies the runtime side of the count-then-fill convention.
func fillBuffer[T any](src []T, capacity uint32, dst []T, strict bool, overReport uint32) (uint32, Result) {
	n := uint32(len(src))
	if capacity == 0 {
		return n, Success
	}
	if uint32(len(dst)) < capacity {
		return 0, ErrorValidationFailure
	}
	if capacity < n {
		if strict {
			return n, ErrorSizeInsufficient
		}
		n = capacity
	}
	copy(dst, src[:n])
	return n + overReport, Success
}
