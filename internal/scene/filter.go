package scene

import "github.com/banshee-data/roomscan/internal/xr"

// NewRoomLayoutFilter builds the filter chain for room layout anchors stored
// at location:
//
//	SpaceFilterInfo -> SpaceComponentFilterInfo(room layout) -> SpaceStorageLocationFilterInfo
//
// Each call returns a fresh chain. Further filters are appended as new links
// after the storage location node.
func NewRoomLayoutFilter(location xr.StorageLocation) *xr.SpaceFilterInfo {
	storage := &xr.SpaceStorageLocationFilterInfo{
		FilterHeader: xr.FilterHeader{Type: xr.TypeSpaceStorageLocationFilterInfoFB},
		Location:     location,
	}
	component := &xr.SpaceComponentFilterInfo{
		FilterHeader:  xr.FilterHeader{Type: xr.TypeSpaceComponentFilterInfoFB, Next: storage},
		ComponentType: xr.ComponentTypeRoomLayout,
	}
	return &xr.SpaceFilterInfo{
		FilterHeader: xr.FilterHeader{Type: xr.TypeSpaceFilterInfoFB, Next: component},
	}
}
