// Package biometric unifies heterogeneous device verification mechanisms
// behind one contract.
//
// Three variants answer the same yes/no question, "was the present human
// verified by the device owner's enrolled biometric": an external helper
// process speaking a line protocol, a native system prompt, and a WebAuthn
// platform authenticator. The auth core consumes only the uniform contract
// and never branches on platform identity.
package biometric

import (
	"context"
	"time"

	apperrors "github.com/mlenz/credenza/internal/platform/errors"
)

// DefaultTimeout bounds one verification ceremony, including the time a
// human spends at the OS prompt.
const DefaultTimeout = 60 * time.Second

// Method tags identify which verifier variant produced a result.
const (
	MethodHelper   = "helper-process"
	MethodPrompt   = "system-prompt"
	MethodPlatform = "platform-authenticator"
)

var (
	// ErrUnavailable indicates the device cannot perform biometric checks
	// at all. Not retryable without changing device settings.
	ErrUnavailable = apperrors.New(apperrors.CodeBiometricUnavailable, "biometric verification is not available on this device")
	// ErrSecureContextRequired indicates the execution context does not
	// meet the platform authenticator's security preconditions.
	ErrSecureContextRequired = apperrors.New(apperrors.CodeSecureContextRequired, "platform authenticator requires a secure context")
)

// Request describes one verification ceremony.
type Request struct {
	// Account is the normalized account identifier the ceremony is for.
	// The platform-authenticator variant keys its local credential by it;
	// the other variants ignore it.
	Account string
	// Reason is the human-readable intent shown at the OS prompt.
	Reason string
}

// Result is the outcome of one verification ceremony. It is ephemeral and
// never persisted.
type Result struct {
	Verified bool
	Reason   string
	Method   string
}

// Verifier performs one device verification ceremony per call.
//
// Implementations enforce their own timeout and never retry internally;
// retries are a caller concern. A cancelled or denied prompt is a
// Result{Verified: false}, not an error; errors are reserved for
// conditions where the ceremony could not run at all.
type Verifier interface {
	RequestVerification(ctx context.Context, req Request) (Result, error)
}
