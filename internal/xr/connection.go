package xr

// Names of the runtime entry points, used in errors, logs and call records.
const (
	CallGetSystemProperties       = "xrGetSystemProperties"
	CallGetSpaceComponentStatus   = "xrGetSpaceComponentStatusFB"
	CallQuerySpaces               = "xrQuerySpacesFB"
	CallRetrieveSpaceQueryResults = "xrRetrieveSpaceQueryResultsFB"
	CallGetSpaceRoomLayout        = "xrGetSpaceRoomLayoutFB"
)

// Connection is a live runtime instance owned by the host. Implementations
// must not retain any buffer passed to them after a call returns.
type Connection interface {
	// GetSystemProperties fills props, including any structures chained
	// through props.Next that the runtime recognises.
	GetSystemProperties(system SystemID, props *SystemProperties) Result
	// Extensions returns the extension tables loaded on this instance. A nil
	// field means the extension was not enabled.
	Extensions() Extensions
}

// Extensions holds the optional extension tables of a Connection.
type Extensions struct {
	Scene              SceneExt
	SpatialEntity      SpatialEntityExt
	SpatialEntityQuery SpatialEntityQueryExt
}

// SceneExt is the scene extension table.
type SceneExt interface {
	// GetSpaceRoomLayout uses the count-then-fill convention for the wall
	// array in layout.
	GetSpaceRoomLayout(session Session, space Space, layout *RoomLayout) Result
}

// SpatialEntityExt is the spatial entity extension table.
type SpatialEntityExt interface {
	GetSpaceComponentStatus(space Space, component ComponentType, status *SpaceComponentStatus) Result
}

// SpatialEntityQueryExt is the spatial entity query extension table.
type SpatialEntityQueryExt interface {
	// QuerySpaces submits a query and returns without waiting for it.
	QuerySpaces(session Session, info *SpaceQueryInfo, requestID *AsyncRequestID) Result
	// RetrieveSpaceQueryResults uses the count-then-fill convention on
	// results.
	RetrieveSpaceQueryResults(session Session, requestID AsyncRequestID, results *SpaceQueryResults) Result
}
