package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	base := New(CodeInvalidCredentials, "invalid email or password")
	other := New(CodeInvalidCredentials, "different message, same code")

	if !errors.Is(other, base) {
		t.Fatal("expected errors with the same code to match")
	}
	if errors.Is(New(CodeNotFound, "missing"), base) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk io failure")
	wrapped := Wrap(CodeStorageFailure, "update user record", cause)

	if !errors.Is(wrapped, cause) {
		t.Fatal("expected wrapped error to match its cause")
	}
	if wrapped.Error() != "update user record" {
		t.Fatalf("unexpected message %q", wrapped.Error())
	}
}

func TestGetCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeBiometricUnavailable, "no sensor"))
	if got := GetCode(err); got != CodeBiometricUnavailable {
		t.Fatalf("expected code %v, got %v", CodeBiometricUnavailable, got)
	}
	if got := GetCode(errors.New("plain")); got != CodeUnknown {
		t.Fatalf("expected unknown code, got %v", got)
	}
}

func TestCodeGuidance(t *testing.T) {
	tests := []struct {
		code Code
		want Guidance
	}{
		{CodeInvalidInput, GuidanceRetry},
		{CodeDuplicateUser, GuidanceRetry},
		{CodeInvalidCredentials, GuidanceRetry},
		{CodeBiometricVerificationFailed, GuidanceRetry},
		{CodeBiometricUnavailable, GuidanceFixSettings},
		{CodeBiometricNotEnabled, GuidanceFixSettings},
		{CodeSecureContextRequired, GuidanceFixSettings},
		{CodeStorageFailure, GuidanceContactSupport},
		{CodeUnknown, GuidanceContactSupport},
	}
	for _, tc := range tests {
		if got := tc.code.Guidance(); got != tc.want {
			t.Fatalf("code %v: expected guidance %q, got %q", tc.code, tc.want, got)
		}
	}
}
