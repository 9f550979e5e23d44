package xr

// Disabled is a Connection with no extensions loaded, used when no runtime
// is attached. Every system property query fails with
// ErrorSystemInvalid, and capability probes against it report the feature
// as unsupported.
type Disabled struct{}

func (Disabled) GetSystemProperties(SystemID, *SystemProperties) Result {
	return ErrorSystemInvalid
}

func (Disabled) Extensions() Extensions { return Extensions{} }
