package biometric

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPromptVerified(t *testing.T) {
	verifier, err := NewPromptVerifier(
		func() bool { return true },
		func(ctx context.Context, reason string) (bool, error) { return true, nil },
	)
	if err != nil {
		t.Fatalf("new prompt verifier: %v", err)
	}

	result, err := verifier.RequestVerification(context.Background(), Request{Reason: "sign in"})
	if err != nil {
		t.Fatalf("request verification: %v", err)
	}
	if !result.Verified {
		t.Fatal("expected verified result")
	}
	if result.Method != MethodPrompt {
		t.Fatalf("expected prompt method tag, got %q", result.Method)
	}
}

func TestPromptUnavailableSkipsPrompt(t *testing.T) {
	prompted := false
	verifier, err := NewPromptVerifier(
		func() bool { return false },
		func(ctx context.Context, reason string) (bool, error) {
			prompted = true
			return true, nil
		},
	)
	if err != nil {
		t.Fatalf("new prompt verifier: %v", err)
	}

	_, err = verifier.RequestVerification(context.Background(), Request{Reason: "sign in"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if prompted {
		t.Fatal("expected no prompt when capability check fails")
	}
}

func TestPromptDismissal(t *testing.T) {
	verifier, err := NewPromptVerifier(
		func() bool { return true },
		func(ctx context.Context, reason string) (bool, error) { return false, nil },
	)
	if err != nil {
		t.Fatalf("new prompt verifier: %v", err)
	}

	result, err := verifier.RequestVerification(context.Background(), Request{Reason: "sign in"})
	if err != nil {
		t.Fatalf("dismissal must not surface as an error: %v", err)
	}
	if result.Verified {
		t.Fatal("expected unverified result")
	}
}

func TestPromptOSError(t *testing.T) {
	verifier, err := NewPromptVerifier(
		func() bool { return true },
		func(ctx context.Context, reason string) (bool, error) {
			return false, errors.New("os denied the prompt")
		},
	)
	if err != nil {
		t.Fatalf("new prompt verifier: %v", err)
	}

	result, err := verifier.RequestVerification(context.Background(), Request{Reason: "sign in"})
	if err != nil {
		t.Fatalf("os denial must not surface as an error: %v", err)
	}
	if result.Verified {
		t.Fatal("expected unverified result")
	}
}

func TestPromptTimeout(t *testing.T) {
	verifier, err := NewPromptVerifier(
		func() bool { return true },
		func(ctx context.Context, reason string) (bool, error) {
			<-ctx.Done()
			return false, ctx.Err()
		},
	)
	if err != nil {
		t.Fatalf("new prompt verifier: %v", err)
	}
	verifier.WithTimeout(10 * time.Millisecond)

	result, err := verifier.RequestVerification(context.Background(), Request{Reason: "sign in"})
	if err != nil {
		t.Fatalf("request verification: %v", err)
	}
	if result.Verified {
		t.Fatal("expected timeout to fail closed")
	}
	if result.Reason != "verification timed out" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestNewPromptVerifierRequiresFuncs(t *testing.T) {
	prompt := func(ctx context.Context, reason string) (bool, error) { return true, nil }
	if _, err := NewPromptVerifier(nil, prompt); err == nil {
		t.Fatal("expected error for missing capability check")
	}
	if _, err := NewPromptVerifier(func() bool { return true }, nil); err == nil {
		t.Fatal("expected error for missing prompt function")
	}
}
