package xr

import "testing"

func TestResult_FailedSucceeded(t *testing.T) {
	tests := []struct {
		res       Result
		failed    bool
		succeeded bool
	}{
		{Success, false, true},
		{TimeoutExpired, false, true},
		{ErrorValidationFailure, true, false},
		{ErrorSizeInsufficient, true, false},
		{ErrorSpaceComponentStatusPendingFB, true, false},
	}
	for _, tc := range tests {
		if got := tc.res.Failed(); got != tc.failed {
			t.Errorf("%s.Failed() = %v, want %v", tc.res, got, tc.failed)
		}
		if got := tc.res.Succeeded(); got != tc.succeeded {
			t.Errorf("%s.Succeeded() = %v, want %v", tc.res, got, tc.succeeded)
		}
	}
}

func TestResult_String(t *testing.T) {
	tests := []struct {
		res  Result
		want string
	}{
		{Success, "XR_SUCCESS"},
		{ErrorSizeInsufficient, "XR_ERROR_SIZE_INSUFFICIENT"},
		{Result(-4242), "XR_ERROR(-4242)"},
		{Result(77), "XR_RESULT(77)"},
	}
	for _, tc := range tests {
		if got := tc.res.String(); got != tc.want {
			t.Errorf("Result(%d).String() = %q, want %q", int32(tc.res), got, tc.want)
		}
	}
}

func TestParseStorageLocation(t *testing.T) {
	tests := []struct {
		in      string
		want    StorageLocation
		wantErr bool
	}{
		{"local", StorageLocationLocal, false},
		{" CLOUD ", StorageLocationCloud, false},
		{"", StorageLocationInvalid, true},
		{"remote", StorageLocationInvalid, true},
	}
	for _, tc := range tests {
		got, err := ParseStorageLocation(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseStorageLocation(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Errorf("ParseStorageLocation(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseComponentType(t *testing.T) {
	for c := ComponentTypeLocatable; c <= ComponentTypeSpaceContainer; c++ {
		got, err := ParseComponentType(c.String())
		if err != nil {
			t.Fatalf("ParseComponentType(%q): %v", c.String(), err)
		}
		if got != c {
			t.Errorf("ParseComponentType(%q) = %v, want %v", c.String(), got, c)
		}
	}
	if _, err := ParseComponentType("door"); err == nil {
		t.Error("expected error for unknown component type")
	}
}
