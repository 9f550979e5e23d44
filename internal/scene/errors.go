package scene

import (
	"errors"
	"fmt"

	"github.com/banshee-data/roomscan/internal/xr"
)

var (
	// ErrProtocolViolation is returned when a fill call reports more records
	// than the capacity it was given. It is not retryable.
	ErrProtocolViolation = errors.New("runtime wrote more records than the buffer capacity")
	// ErrMissingFeatureTable is returned when an extension table the probe
	// vouched for is absent when the pipeline needs it.
	ErrMissingFeatureTable = errors.New("required extension table not loaded")
)

// NativeCallError carries the status code of a failed runtime call.
type NativeCallError struct {
	Call string
	Code xr.Result
}

func (e *NativeCallError) Error() string {
	return fmt.Sprintf("%s failed: %s (%d)", e.Call, e.Code, int32(e.Code))
}

// check converts a runtime status into an error. Success codes, including
// qualified ones, are not errors.
func check(call string, res xr.Result) error {
	if res.Failed() {
		return &NativeCallError{Call: call, Code: res}
	}
	return nil
}

// NativeCode returns the runtime status carried by err, if any.
func NativeCode(err error) (xr.Result, bool) {
	var nce *NativeCallError
	if errors.As(err, &nce) {
		return nce.Code, true
	}
	return xr.Success, false
}

func missingTable(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingFeatureTable, name)
}
