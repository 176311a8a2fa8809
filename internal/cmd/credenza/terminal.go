package credenza

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-webauthn/webauthn/protocol"
	"golang.org/x/term"
)

// terminalCanPrompt reports whether a confirmation dialog can be shown:
// the terminal build needs an interactive stdin.
func terminalCanPrompt() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// terminalPrompt stands in for the native confirmation dialog. Any answer
// other than an explicit yes reads as a dismissal.
func terminalPrompt(ctx context.Context, reason string) (bool, error) {
	fmt.Fprintf(os.Stdout, "%s [y/N]: ", reason)

	answers := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			answers <- scanner.Text()
			return
		}
		answers <- ""
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case answer := <-answers:
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

// noBridgeAuthenticator is the platform-authenticator bridge for builds
// without an embedded webview. Every ceremony aborts, which the verifier
// reports as an unverified result.
type noBridgeAuthenticator struct{}

func (noBridgeAuthenticator) CreateCredential(ctx context.Context, options *protocol.CredentialCreation) ([]byte, error) {
	return nil, fmt.Errorf("no platform authenticator bridge in this build")
}

func (noBridgeAuthenticator) GetAssertion(ctx context.Context, options *protocol.CredentialAssertion) ([]byte, error) {
	return nil, fmt.Errorf("no platform authenticator bridge in this build")
}
