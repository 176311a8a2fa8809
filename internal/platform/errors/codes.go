// Package errors provides structured error handling with machine-readable codes.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Input and credential errors
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeDuplicateUser      Code = "DUPLICATE_USER"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeNotAuthenticated   Code = "NOT_AUTHENTICATED"

	// Biometric errors
	CodeBiometricUnavailable        Code = "BIOMETRIC_UNAVAILABLE"
	CodeBiometricNotEnabled         Code = "BIOMETRIC_NOT_ENABLED"
	CodeBiometricVerificationFailed Code = "BIOMETRIC_VERIFICATION_FAILED"
	CodeSecureContextRequired       Code = "SECURE_CONTEXT_REQUIRED"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorageFailure Code = "STORAGE_FAILURE"
)

// Guidance describes what a user can do about a failure.
type Guidance string

const (
	// GuidanceRetry means the operation can be retried, possibly with corrected input.
	GuidanceRetry Guidance = "try again"
	// GuidanceFixSettings means device or account settings must change before retrying.
	GuidanceFixSettings Guidance = "fix settings"
	// GuidanceContactSupport means the failure is not user-recoverable.
	GuidanceContactSupport Guidance = "contact support"
)

// Guidance maps a code to the action a user should take.
func (c Code) Guidance() Guidance {
	switch c {
	// Recoverable by retrying, possibly with different input
	case CodeInvalidInput,
		CodeDuplicateUser,
		CodeInvalidCredentials,
		CodeNotAuthenticated,
		CodeBiometricVerificationFailed:
		return GuidanceRetry

	// Recoverable only by changing device or account state
	case CodeBiometricUnavailable,
		CodeBiometricNotEnabled,
		CodeSecureContextRequired:
		return GuidanceFixSettings

	default:
		return GuidanceContactSupport
	}
}
