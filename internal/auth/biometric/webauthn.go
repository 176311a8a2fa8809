package biometric

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/mlenz/credenza/internal/auth/storage"
	apperrors "github.com/mlenz/credenza/internal/platform/errors"
)

// PlatformConfig controls WebAuthn relying party settings for the platform
// authenticator variant.
type PlatformConfig struct {
	RPDisplayName string
	RPID          string
	RPOrigins     []string
	Timeout       time.Duration
}

// Authenticator executes WebAuthn ceremonies against the device's platform
// authenticator. Production wiring bridges to the embedded webview's
// credential API; tests substitute a fake.
type Authenticator interface {
	// CreateCredential runs the credential creation ceremony and returns
	// the authenticator's attestation response JSON.
	CreateCredential(ctx context.Context, options *protocol.CredentialCreation) ([]byte, error)
	// GetAssertion runs the assertion ceremony and returns the
	// authenticator's assertion response JSON.
	GetAssertion(ctx context.Context, options *protocol.CredentialAssertion) ([]byte, error)
}

type webauthnProvider interface {
	BeginRegistration(user webauthn.User, opts ...webauthn.RegistrationOption) (*protocol.CredentialCreation, *webauthn.SessionData, error)
	CreateCredential(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialCreationData) (*webauthn.Credential, error)
	BeginLogin(user webauthn.User, opts ...webauthn.LoginOption) (*protocol.CredentialAssertion, *webauthn.SessionData, error)
	ValidateLogin(user webauthn.User, session webauthn.SessionData, response *protocol.ParsedCredentialAssertionData) (*webauthn.Credential, error)
}

type responseParser interface {
	ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error)
	ParseCredentialRequestResponseBytes(data []byte) (*protocol.ParsedCredentialAssertionData, error)
}

type defaultResponseParser struct{}

func (defaultResponseParser) ParseCredentialCreationResponseBytes(data []byte) (*protocol.ParsedCredentialCreationData, error) {
	return protocol.ParseCredentialCreationResponseBytes(data)
}

func (defaultResponseParser) ParseCredentialRequestResponseBytes(data []byte) (*protocol.ParsedCredentialAssertionData, error) {
	return protocol.ParseCredentialRequestResponseBytes(data)
}

// PlatformVerifier verifies presence through a WebAuthn platform
// authenticator (the passkey model).
//
// The first ceremony for an account creates a device-bound key pair and
// stores only the returned credential locally; later ceremonies assert
// against it. That stored credential is verifier-internal enrollment state,
// equivalent to the OS-side enrollment the other variants rely on. The
// account-level biometric flag and keychain record stay owned by the auth
// core.
type PlatformVerifier struct {
	provider      webauthnProvider
	parser        responseParser
	authenticator Authenticator
	store         storage.PasskeyStore
	secureContext bool
	timeout       time.Duration
	now           func() time.Time
}

// NewPlatformVerifier builds the WebAuthn variant from relying party
// configuration, local credential persistence, and a ceremony bridge.
func NewPlatformVerifier(cfg PlatformConfig, store storage.PasskeyStore, authenticator Authenticator) (*PlatformVerifier, error) {
	if store == nil {
		return nil, fmt.Errorf("passkey store is required")
	}
	if authenticator == nil {
		return nil, fmt.Errorf("authenticator is required")
	}

	webAuthn, err := webauthn.New(&webauthn.Config{
		RPDisplayName: cfg.RPDisplayName,
		RPID:          cfg.RPID,
		RPOrigins:     cfg.RPOrigins,
	})
	if err != nil {
		return nil, fmt.Errorf("configure webauthn: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &PlatformVerifier{
		provider:      webAuthn,
		parser:        defaultResponseParser{},
		authenticator: authenticator,
		store:         store,
		secureContext: originsAreSecure(cfg.RPOrigins),
		timeout:       timeout,
		now:           time.Now,
	}, nil
}

// RequestVerification runs one WebAuthn ceremony for the requested account:
// credential creation on first use, assertion afterwards.
func (v *PlatformVerifier) RequestVerification(ctx context.Context, req Request) (Result, error) {
	if v == nil || v.provider == nil {
		return Result{}, fmt.Errorf("platform verifier is not configured")
	}
	account := strings.TrimSpace(req.Account)
	if account == "" {
		return Result{}, fmt.Errorf("account is required")
	}
	if !v.secureContext {
		return Result{}, ErrSecureContextRequired
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	stored, err := v.store.ListPasskeyCredentials(ctx, account)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeStorageFailure, "list platform credentials", err)
	}
	credentials, err := decodeStoredCredentials(stored)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeStorageFailure, "decode platform credentials", err)
	}

	ceremonyUser := &platformUser{account: account, credentials: credentials}
	if len(credentials) == 0 {
		return v.createCeremony(ctx, ceremonyUser)
	}
	return v.assertCeremony(ctx, ceremonyUser)
}

func (v *PlatformVerifier) createCeremony(ctx context.Context, ceremonyUser *platformUser) (Result, error) {
	creation, session, err := v.provider.BeginRegistration(ceremonyUser,
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			AuthenticatorAttachment: protocol.Platform,
			UserVerification:        protocol.VerificationRequired,
		}),
	)
	if err != nil {
		return Result{}, fmt.Errorf("begin credential creation: %w", err)
	}

	response, err := v.authenticator.CreateCredential(ctx, creation)
	if err != nil {
		return v.abortedResult(ctx), nil
	}

	parsed, err := v.parser.ParseCredentialCreationResponseBytes(response)
	if err != nil {
		return Result{Verified: false, Reason: "credential response was malformed", Method: MethodPlatform}, nil
	}

	credential, err := v.provider.CreateCredential(ceremonyUser, *session, parsed)
	if err != nil {
		return Result{Verified: false, Reason: "credential validation failed", Method: MethodPlatform}, nil
	}

	if err := v.storeCredential(ctx, ceremonyUser.account, *credential, false); err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeStorageFailure, "store platform credential", err)
	}
	return Result{Verified: true, Method: MethodPlatform}, nil
}

func (v *PlatformVerifier) assertCeremony(ctx context.Context, ceremonyUser *platformUser) (Result, error) {
	assertion, session, err := v.provider.BeginLogin(ceremonyUser,
		webauthn.WithUserVerification(protocol.VerificationRequired),
	)
	if err != nil {
		return Result{}, fmt.Errorf("begin assertion: %w", err)
	}

	response, err := v.authenticator.GetAssertion(ctx, assertion)
	if err != nil {
		return v.abortedResult(ctx), nil
	}

	parsed, err := v.parser.ParseCredentialRequestResponseBytes(response)
	if err != nil {
		return Result{Verified: false, Reason: "assertion response was malformed", Method: MethodPlatform}, nil
	}

	credential, err := v.provider.ValidateLogin(ceremonyUser, *session, parsed)
	if err != nil {
		return Result{Verified: false, Reason: "assertion validation failed", Method: MethodPlatform}, nil
	}

	if err := v.storeCredential(ctx, ceremonyUser.account, *credential, true); err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeStorageFailure, "update platform credential", err)
	}
	return Result{Verified: true, Method: MethodPlatform}, nil
}

// abortedResult maps a ceremony abort (user cancelled the native UI, no
// authenticator present, timeout) to an unverified result.
func (v *PlatformVerifier) abortedResult(ctx context.Context) Result {
	reason := "ceremony was aborted"
	if ctx.Err() != nil {
		reason = "verification timed out"
	}
	return Result{Verified: false, Reason: reason, Method: MethodPlatform}
}

func (v *PlatformVerifier) storeCredential(ctx context.Context, account string, credential webauthn.Credential, used bool) error {
	encoded, err := json.Marshal(credential)
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	now := v.now().UTC()
	record := storage.PasskeyCredential{
		CredentialID:   encodeCredentialID(credential.ID),
		Account:        account,
		CredentialJSON: string(encoded),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if used {
		record.LastUsedAt = &now
	}
	return v.store.PutPasskeyCredential(ctx, record)
}

// platformUser adapts an account to the webauthn.User contract.
type platformUser struct {
	account     string
	credentials []webauthn.Credential
}

func (u *platformUser) WebAuthnID() []byte {
	return []byte(u.account)
}

func (u *platformUser) WebAuthnName() string {
	return u.account
}

func (u *platformUser) WebAuthnDisplayName() string {
	return u.account
}

func (u *platformUser) WebAuthnIcon() string {
	return ""
}

func (u *platformUser) WebAuthnCredentials() []webauthn.Credential {
	return u.credentials
}

func decodeStoredCredentials(records []storage.PasskeyCredential) ([]webauthn.Credential, error) {
	if len(records) == 0 {
		return nil, nil
	}
	credentials := make([]webauthn.Credential, 0, len(records))
	for _, record := range records {
		var credential webauthn.Credential
		if err := json.Unmarshal([]byte(record.CredentialJSON), &credential); err != nil {
			return nil, fmt.Errorf("decode credential %s: %w", record.CredentialID, err)
		}
		credentials = append(credentials, credential)
	}
	return credentials, nil
}

func encodeCredentialID(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// originsAreSecure reports whether every relying party origin satisfies the
// secure context requirement: https, an app-local scheme, or localhost.
func originsAreSecure(origins []string) bool {
	if len(origins) == 0 {
		return false
	}
	for _, origin := range origins {
		parsed, err := url.Parse(origin)
		if err != nil {
			return false
		}
		switch parsed.Scheme {
		case "https", "app":
			continue
		case "http":
			host := parsed.Hostname()
			if host == "localhost" || host == "127.0.0.1" || host == "::1" {
				continue
			}
			return false
		default:
			return false
		}
	}
	return true
}
