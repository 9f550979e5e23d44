package xr

import "fmt"

// Result is a status code returned by every runtime call. Negative values
// are failures; zero and positive values are successes.
type Result int32

const (
	Success                             Result = 0
	TimeoutExpired                      Result = 1
	ErrorValidationFailure              Result = -1
	ErrorRuntimeFailure                 Result = -2
	ErrorOutOfMemory                    Result = -3
	ErrorFunctionUnsupported            Result = -7
	ErrorFeatureUnsupported             Result = -8
	ErrorExtensionNotPresent            Result = -9
	ErrorLimitReached                   Result = -10
	ErrorSizeInsufficient               Result = -11
	ErrorHandleInvalid                  Result = -12
	ErrorInstanceLost                   Result = -13
	ErrorSessionNotRunning              Result = -16
	ErrorSessionLost                    Result = -17
	ErrorSystemInvalid                  Result = -18
	ErrorSpaceComponentNotSupportedFB   Result = -1000113000
	ErrorSpaceComponentNotEnabledFB     Result = -1000113001
	ErrorSpaceComponentStatusPendingFB  Result = -1000113002
	ErrorSpaceComponentStatusAlreadySet Result = -1000113003
)

var resultNames = map[Result]string{
	Success:                             "XR_SUCCESS",
	TimeoutExpired:                      "XR_TIMEOUT_EXPIRED",
	ErrorValidationFailure:              "XR_ERROR_VALIDATION_FAILURE",
	ErrorRuntimeFailure:                 "XR_ERROR_RUNTIME_FAILURE",
	ErrorOutOfMemory:                    "XR_ERROR_OUT_OF_MEMORY",
	ErrorFunctionUnsupported:            "XR_ERROR_FUNCTION_UNSUPPORTED",
	ErrorFeatureUnsupported:             "XR_ERROR_FEATURE_UNSUPPORTED",
	ErrorExtensionNotPresent:            "XR_ERROR_EXTENSION_NOT_PRESENT",
	ErrorLimitReached:                   "XR_ERROR_LIMIT_REACHED",
	ErrorSizeInsufficient:               "XR_ERROR_SIZE_INSUFFICIENT",
	ErrorHandleInvalid:                  "XR_ERROR_HANDLE_INVALID",
	ErrorInstanceLost:                   "XR_ERROR_INSTANCE_LOST",
	ErrorSessionNotRunning:              "XR_ERROR_SESSION_NOT_RUNNING",
	ErrorSessionLost:                    "XR_ERROR_SESSION_LOST",
	ErrorSystemInvalid:                  "XR_ERROR_SYSTEM_INVALID",
	ErrorSpaceComponentNotSupportedFB:   "XR_ERROR_SPACE_COMPONENT_NOT_SUPPORTED_FB",
	ErrorSpaceComponentNotEnabledFB:     "XR_ERROR_SPACE_COMPONENT_NOT_ENABLED_FB",
	ErrorSpaceComponentStatusPendingFB:  "XR_ERROR_SPACE_COMPONENT_STATUS_PENDING_FB",
	ErrorSpaceComponentStatusAlreadySet: "XR_ERROR_SPACE_COMPONENT_STATUS_ALREADY_SET_FB",
}

// Failed reports whether r is a failure code.
func (r Result) Failed() bool { return r < 0 }

// Succeeded reports whether r is a success code.
func (r Result) Succeeded() bool { return r >= 0 }

func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	if r < 0 {
		return fmt.Sprintf("XR_ERROR(%d)", int32(r))
	}
	return fmt.Sprintf("XR_RESULT(%d)", int32(r))
}
