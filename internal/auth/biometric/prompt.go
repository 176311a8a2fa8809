package biometric

import (
	"context"
	"fmt"
	"time"
)

// PromptVerifier drives a native system verification prompt (the Touch ID
// model): a synchronous capability check first, then a single prompt.
type PromptVerifier struct {
	canPrompt func() bool
	prompt    func(ctx context.Context, reason string) (bool, error)
	timeout   time.Duration
}

// NewPromptVerifier creates a verifier over native prompt primitives.
//
// canPrompt reports whether the device can show a biometric prompt at all;
// prompt blocks until the user responds, the OS denies, or ctx ends.
func NewPromptVerifier(canPrompt func() bool, prompt func(ctx context.Context, reason string) (bool, error)) (*PromptVerifier, error) {
	if canPrompt == nil {
		return nil, fmt.Errorf("capability check is required")
	}
	if prompt == nil {
		return nil, fmt.Errorf("prompt function is required")
	}
	return &PromptVerifier{
		canPrompt: canPrompt,
		prompt:    prompt,
		timeout:   DefaultTimeout,
	}, nil
}

// WithTimeout overrides the ceremony timeout.
func (v *PromptVerifier) WithTimeout(timeout time.Duration) *PromptVerifier {
	if timeout > 0 {
		v.timeout = timeout
	}
	return v
}

// RequestVerification checks capability, then issues one prompt. Dismissal
// and OS-level denial surface as an unverified result, never as an error.
func (v *PromptVerifier) RequestVerification(ctx context.Context, req Request) (Result, error) {
	if v == nil || v.prompt == nil {
		return Result{}, fmt.Errorf("prompt verifier is not configured")
	}

	// Checked before prompting so an unconfigured device never shows UI.
	if !v.canPrompt() {
		return Result{}, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	ok, err := v.prompt(ctx, req.Reason)
	if err != nil {
		reason := "verification failed"
		if ctx.Err() != nil {
			reason = "verification timed out"
		}
		return Result{Verified: false, Reason: reason, Method: MethodPrompt}, nil
	}
	if !ok {
		return Result{Verified: false, Reason: "user dismissed verification", Method: MethodPrompt}, nil
	}
	return Result{Verified: true, Method: MethodPrompt}, nil
}
