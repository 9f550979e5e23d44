package scene

import "github.com/banshee-data/roomscan/internal/xr"

// SupportsScene reports whether the runtime behind conn supports spatial
// entities on system. Missing scene or spatial entity extensions are a
// normal "unsupported" answer, not an error. The probe has no side effects
// beyond one system properties call and is safe to repeat.
func SupportsScene(conn xr.Connection, system xr.SystemID) (bool, error) {
	ext := conn.Extensions()
	if ext.Scene == nil || ext.SpatialEntity == nil {
		logf("scene understanding extensions not loaded, scene understanding unavailable")
		return false, nil
	}

	spatial := &xr.SystemSpatialEntityProperties{Type: xr.TypeSystemSpatialEntityPropertiesFB}
	props := &xr.SystemProperties{Type: xr.TypeSystemProperties, Next: spatial}
	if err := check(xr.CallGetSystemProperties, conn.GetSystemProperties(system, props)); err != nil {
		return false, err
	}

	logf("system %d (%s) supports spatial entity: %v", system, props.SystemName, spatial.SupportsSpatialEntity)
	return spatial.SupportsSpatialEntity, nil
}
