// Package xr describes the native mixed-reality runtime boundary used for
// spatial entity discovery: opaque handles, status codes, structure tags and
// the call payloads exchanged with the runtime's extension tables.
//
// Nothing in this package talks to real hardware. A binding to a concrete
// runtime implements Connection; TestableRuntime is an in-memory
// implementation used by tests and by the CLI's fixture mode.
package xr

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Opaque runtime handles. The zero value of each is the null handle.
type (
	SystemID       uint64
	Session        uint64
	Space          uint64
	AsyncRequestID uint64
)

// NullSpace is the null space handle.
const NullSpace Space = 0

// UUIDSize is the width of a spatial entity identifier in bytes.
const UUIDSize = 16

// UUID is a spatial entity identifier. The all-zero value (uuid.Nil) means
// the identifier is absent.
type UUID = uuid.UUID

// StructureType tags every payload handed across the runtime boundary.
type StructureType int32

const (
	TypeUnknown                          StructureType = 0
	TypeSystemProperties                 StructureType = 13
	TypeSpaceComponentStatusFB           StructureType = 1000113001
	TypeSystemSpatialEntityPropertiesFB  StructureType = 1000113004
	TypeSpaceQueryInfoFB                 StructureType = 1000156001
	TypeSpaceQueryResultsFB              StructureType = 1000156002
	TypeSpaceStorageLocationFilterInfoFB StructureType = 1000156003
	TypeSpaceFilterInfoFB                StructureType = 1000156050
	TypeSpaceComponentFilterInfoFB       StructureType = 1000156052
	TypeRoomLayoutFB                     StructureType = 1000175002
)

var structureTypeNames = map[StructureType]string{
	TypeUnknown:                          "XR_TYPE_UNKNOWN",
	TypeSystemProperties:                 "XR_TYPE_SYSTEM_PROPERTIES",
	TypeSpaceComponentStatusFB:           "XR_TYPE_SPACE_COMPONENT_STATUS_FB",
	TypeSystemSpatialEntityPropertiesFB:  "XR_TYPE_SYSTEM_SPATIAL_ENTITY_PROPERTIES_FB",
	TypeSpaceQueryInfoFB:                 "XR_TYPE_SPACE_QUERY_INFO_FB",
	TypeSpaceQueryResultsFB:              "XR_TYPE_SPACE_QUERY_RESULTS_FB",
	TypeSpaceStorageLocationFilterInfoFB: "XR_TYPE_SPACE_STORAGE_LOCATION_FILTER_INFO_FB",
	TypeSpaceFilterInfoFB:                "XR_TYPE_SPACE_FILTER_INFO_FB",
	TypeSpaceComponentFilterInfoFB:       "XR_TYPE_SPACE_COMPONENT_FILTER_INFO_FB",
	TypeRoomLayoutFB:                     "XR_TYPE_ROOM_LAYOUT_FB",
}

func (t StructureType) String() string {
	if name, ok := structureTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("XR_TYPE_%d", int32(t))
}

// ComponentType identifies a component a spatial entity may carry.
type ComponentType int32

const (
	ComponentTypeLocatable ComponentType = iota
	ComponentTypeStorable
	ComponentTypeSharable
	ComponentTypeBounded2D
	ComponentTypeBounded3D
	ComponentTypeSemanticLabels
	ComponentTypeRoomLayout
	ComponentTypeSpaceContainer
)

var componentTypeNames = []string{
	"locatable",
	"storable",
	"sharable",
	"bounded_2d",
	"bounded_3d",
	"semantic_labels",
	"room_layout",
	"space_container",
}

func (c ComponentType) String() string {
	if c >= 0 && int(c) < len(componentTypeNames) {
		return componentTypeNames[c]
	}
	return fmt.Sprintf("component(%d)", int32(c))
}

// ParseComponentType accepts the lower-case names printed by String.
func ParseComponentType(s string) (ComponentType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range componentTypeNames {
		if n == name {
			return ComponentType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown component type %q", s)
}

// StorageLocation selects where persisted spatial entities are looked up.
type StorageLocation int32

const (
	StorageLocationInvalid StorageLocation = iota
	StorageLocationLocal
	StorageLocationCloud
)

func (l StorageLocation) String() string {
	switch l {
	case StorageLocationLocal:
		return "local"
	case StorageLocationCloud:
		return "cloud"
	default:
		return "invalid"
	}
}

// ParseStorageLocation accepts "local" or "cloud", case-insensitively.
func ParseStorageLocation(s string) (StorageLocation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "local":
		return StorageLocationLocal, nil
	case "cloud":
		return StorageLocationCloud, nil
	default:
		return StorageLocationInvalid, fmt.Errorf("unsupported storage location %q: expected local or cloud", s)
	}
}

// QueryAction is the action a space query performs.
type QueryAction int32

// QueryActionLoad loads matching persisted entities.
const QueryActionLoad QueryAction = 0

// OutStructure is a link in a chain of structures the runtime writes into.
type OutStructure interface {
	OutType() StructureType
}

// SystemProperties receives properties of a system. Extension structures
// are chained through Next.
type SystemProperties struct {
	Type       StructureType
	Next       OutStructure
	SystemID   SystemID
	VendorID   uint32
	SystemName string
}

// SystemSpatialEntityProperties reports spatial entity capability when
// chained into SystemProperties.
type SystemSpatialEntityProperties struct {
	Type                  StructureType
	Next                  OutStructure
	SupportsSpatialEntity bool
}

func (p *SystemSpatialEntityProperties) OutType() StructureType { return p.Type }

// SpaceQueryInfo describes one space query.
type SpaceQueryInfo struct {
	Type           StructureType
	QueryAction    QueryAction
	MaxResultCount uint32
	Timeout        time.Duration
	Filter         SpaceFilterNode
	ExcludeFilter  SpaceFilterNode
}

// SpaceQueryResult is one record produced by a completed space query.
type SpaceQueryResult struct {
	Space Space
	UUID  UUID
}

// SpaceQueryResults is the caller-owned buffer for query results. A zero
// ResultCapacityInput asks the runtime for the count only.
type SpaceQueryResults struct {
	Type                StructureType
	ResultCapacityInput uint32
	ResultCountOutput   uint32
	Results             []SpaceQueryResult
}

// SpaceComponentStatus reports whether a component is enabled on a space.
type SpaceComponentStatus struct {
	Type          StructureType
	Enabled       bool
	ChangePending bool
}

// RoomLayout is the caller-owned buffer for a room layout. The wall array
// follows the same count-then-fill convention as SpaceQueryResults.
type RoomLayout struct {
	Type                  StructureType
	FloorUUID             UUID
	CeilingUUID           UUID
	WallUUIDCapacityInput uint32
	WallUUIDCountOutput   uint32
	WallUUIDs             []UUID
}
