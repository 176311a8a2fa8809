package biometric

import (
	"context"
	"fmt"
	"runtime"

	"github.com/mlenz/credenza/internal/auth/storage"
)

// Kind names a verifier variant for explicit selection.
type Kind string

const (
	KindHelper   Kind = "helper"
	KindPrompt   Kind = "prompt"
	KindPlatform Kind = "platform"
)

// SelectorConfig describes how to build the process-wide verifier.
type SelectorConfig struct {
	// Kind forces a variant; empty selects by operating system.
	Kind Kind
	// GOOS overrides the detected operating system. Empty means runtime.GOOS.
	GOOS string

	// HelperCommand and HelperArgs configure the external-process variant.
	HelperCommand string
	HelperArgs    []string

	// CanPrompt and Prompt configure the system-prompt variant.
	CanPrompt func() bool
	Prompt    func(ctx context.Context, reason string) (bool, error)

	// Platform configures the WebAuthn variant.
	Platform      PlatformConfig
	PasskeyStore  storage.PasskeyStore
	Authenticator Authenticator
}

// Select builds the single verifier this process will use.
//
// Selection happens once at startup: windows gets the helper process,
// darwin gets the system prompt, and everything else gets the platform
// authenticator. The rest of the program only sees the Verifier contract.
func Select(cfg SelectorConfig) (Verifier, error) {
	kind := cfg.Kind
	if kind == "" {
		goos := cfg.GOOS
		if goos == "" {
			goos = runtime.GOOS
		}
		switch goos {
		case "windows":
			kind = KindHelper
		case "darwin":
			kind = KindPrompt
		default:
			kind = KindPlatform
		}
	}

	switch kind {
	case KindHelper:
		return NewHelperVerifier(cfg.HelperCommand, cfg.HelperArgs...)
	case KindPrompt:
		return NewPromptVerifier(cfg.CanPrompt, cfg.Prompt)
	case KindPlatform:
		return NewPlatformVerifier(cfg.Platform, cfg.PasskeyStore, cfg.Authenticator)
	default:
		return nil, fmt.Errorf("unknown verifier kind %q", kind)
	}
}
