package biometric

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Helper stdout protocol tokens. Anything else is fail-closed.
const (
	helperVerified    = "VERIFIED"
	helperUnavailable = "UNAVAILABLE"
	helperCanceled    = "CANCELED"
	helperError       = "ERROR"
)

// HelperVerifier runs an external helper process that performs the OS
// biometric check out-of-process (the Windows Hello model).
//
// The helper reports its outcome as a single line on stdout: VERIFIED,
// UNAVAILABLE[: detail], CANCELED, or ERROR[: detail]. Unrecognized output,
// a non-zero exit, or a timeout is never interpreted as success.
type HelperVerifier struct {
	command string
	args    []string
	timeout time.Duration

	// runCommand is swapped in tests to avoid spawning real processes.
	runCommand func(ctx context.Context, command string, args ...string) ([]byte, error)
}

// NewHelperVerifier creates a verifier that spawns the given helper command.
func NewHelperVerifier(command string, args ...string) (*HelperVerifier, error) {
	if strings.TrimSpace(command) == "" {
		return nil, fmt.Errorf("helper command is required")
	}
	return &HelperVerifier{
		command:    command,
		args:       args,
		timeout:    DefaultTimeout,
		runCommand: runHelperCommand,
	}, nil
}

// WithTimeout overrides the ceremony timeout.
func (v *HelperVerifier) WithTimeout(timeout time.Duration) *HelperVerifier {
	if timeout > 0 {
		v.timeout = timeout
	}
	return v
}

// RequestVerification spawns the helper once and maps its output to the
// verification contract.
func (v *HelperVerifier) RequestVerification(ctx context.Context, req Request) (Result, error) {
	if v == nil || v.command == "" {
		return Result{}, fmt.Errorf("helper verifier is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	args := append(append([]string{}, v.args...), req.Reason)
	output, runErr := v.runCommand(ctx, v.command, args...)

	// The first stdout line is authoritative even when the process exited
	// non-zero: a helper that printed CANCELED and exited 1 still means
	// the user cancelled.
	line := firstLine(output)
	switch {
	case line == helperVerified:
		return Result{Verified: true, Method: MethodHelper}, nil

	case strings.HasPrefix(line, helperUnavailable):
		detail := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, helperUnavailable), ":"))
		if detail == "" {
			return Result{}, ErrUnavailable
		}
		return Result{}, fmt.Errorf("%w: %s", ErrUnavailable, detail)

	case line == helperCanceled:
		return Result{Verified: false, Reason: "user cancelled verification", Method: MethodHelper}, nil

	case strings.HasPrefix(line, helperError):
		detail := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, helperError), ":"))
		if detail == "" {
			detail = "helper reported an error"
		}
		return Result{}, fmt.Errorf("biometric helper: %s", detail)
	}

	// Fail closed: timeout, non-zero exit, or unrecognized output.
	reason := "verification failed"
	if ctx.Err() != nil {
		reason = "verification timed out"
	} else if runErr == nil && line != "" {
		reason = line
	}
	return Result{Verified: false, Reason: reason, Method: MethodHelper}, nil
}

func runHelperCommand(ctx context.Context, command string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, command, args...).Output()
}

func firstLine(output []byte) string {
	text := strings.TrimSpace(string(output))
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
