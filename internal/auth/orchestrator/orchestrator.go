// Package orchestrator coordinates registration, password login, and
// biometric enrollment and login across the user directory, the OS
// keychain, and the device verifier.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mlenz/credenza/internal/auth/biometric"
	"github.com/mlenz/credenza/internal/auth/enroll"
	"github.com/mlenz/credenza/internal/auth/session"
	"github.com/mlenz/credenza/internal/auth/storage"
	"github.com/mlenz/credenza/internal/auth/user"
	apperrors "github.com/mlenz/credenza/internal/platform/errors"
)

const (
	enrollReason = "confirm your identity to enable biometric sign-in"
	loginReason  = "sign in to your account"
)

var (
	// ErrNotAuthenticated indicates an operation that requires an active
	// session was called without one.
	ErrNotAuthenticated = apperrors.New(apperrors.CodeNotAuthenticated, "sign in before enabling biometrics")
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password so login failures do not reveal which accounts exist.
	ErrInvalidCredentials = apperrors.New(apperrors.CodeInvalidCredentials, "email or password is incorrect")
	// ErrBiometricNotEnabled indicates biometric login was attempted for
	// an account that never completed enrollment.
	ErrBiometricNotEnabled = apperrors.New(apperrors.CodeBiometricNotEnabled, "biometric sign-in is not enabled for this account")
)

// Config carries the orchestrator's dependencies.
type Config struct {
	Users       storage.UserStore
	Credentials storage.CredentialStore
	Verifier    biometric.Verifier
	Minter      *enroll.Minter
	Sessions    *session.Holder
	// Service is the keychain service name enrollment records live under.
	Service string
	Logger  *log.Logger
}

// Orchestrator is the auth core. All state transitions flow through it:
// the stores and the verifier never talk to each other directly.
type Orchestrator struct {
	users       storage.UserStore
	credentials storage.CredentialStore
	verifier    biometric.Verifier
	minter      *enroll.Minter
	sessions    *session.Holder
	service     string
	logger      *log.Logger
}

// New validates dependencies and builds an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.Users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if cfg.Credentials == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	if cfg.Verifier == nil {
		return nil, fmt.Errorf("verifier is required")
	}
	if cfg.Minter == nil {
		return nil, fmt.Errorf("token minter is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session holder is required")
	}
	if strings.TrimSpace(cfg.Service) == "" {
		return nil, fmt.Errorf("keychain service name is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		users:       cfg.Users,
		credentials: cfg.Credentials,
		verifier:    cfg.Verifier,
		minter:      cfg.Minter,
		sessions:    cfg.Sessions,
		service:     cfg.Service,
		logger:      logger,
	}, nil
}

// Register creates a new account and signs it in.
//
// Email uniqueness is decided by the user store's constraint, not by a
// lookup here, so two concurrent registrations for the same email cannot
// both succeed.
func (o *Orchestrator) Register(ctx context.Context, email, password string) (user.User, error) {
	attempt := o.sessions.StartAttempt()

	newUser, err := user.CreateUser(user.CreateUserInput{Email: email, Password: password}, nil, nil)
	if err != nil {
		return user.User{}, err
	}

	if err := o.users.CreateUser(ctx, newUser); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return user.User{}, err
		}
		return user.User{}, apperrors.Wrap(apperrors.CodeStorageFailure, "create user", err)
	}

	o.sessions.Complete(attempt, session.Session{UserID: newUser.ID, Email: newUser.Email})
	o.logger.Printf("registered user %s", newUser.ID)
	return newUser, nil
}

// Login verifies an email and password pair and signs the account in.
func (o *Orchestrator) Login(ctx context.Context, email, password string) (user.User, error) {
	attempt := o.sessions.StartAttempt()

	found, err := o.users.GetUserByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, apperrors.Wrap(apperrors.CodeStorageFailure, "look up user", err)
	}
	if !user.VerifyPassword(found.PasswordHash, password) {
		return user.User{}, ErrInvalidCredentials
	}

	o.sessions.Complete(attempt, session.Session{UserID: found.ID, Email: found.Email})
	o.logger.Printf("user %s signed in", found.ID)
	return found, nil
}

// EnableBiometric runs an enrollment ceremony for the signed-in account.
//
// On a verified ceremony it mints an enrollment token, writes the keychain
// record, then flips the directory flag. The two writes succeed or fail
// together: if the flag update fails the keychain record is deleted again
// and the operation reports a storage failure.
func (o *Orchestrator) EnableBiometric(ctx context.Context) error {
	current, ok := o.sessions.Current()
	if !ok {
		return ErrNotAuthenticated
	}

	result, err := o.verifier.RequestVerification(ctx, biometric.Request{
		Account: current.Email,
		Reason:  enrollReason,
	})
	if err != nil {
		return verifierError(err)
	}
	if !result.Verified {
		return verificationFailed(result)
	}

	token, err := o.minter.Mint(current.UserID, current.Email)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeUnknown, "mint enrollment token", err)
	}
	if err := o.credentials.Set(o.service, current.Email, token); err != nil {
		return apperrors.Wrap(apperrors.CodeStorageFailure, "store enrollment record", err)
	}
	if err := o.users.SetBiometricEnabled(ctx, current.UserID, true); err != nil {
		if deleteErr := o.credentials.Delete(o.service, current.Email); deleteErr != nil {
			o.logger.Printf("roll back enrollment record for %s: %v", current.UserID, deleteErr)
		}
		return apperrors.Wrap(apperrors.CodeStorageFailure, "enable biometric flag", err)
	}

	o.logger.Printf("biometric enrollment completed for user %s", current.UserID)
	return nil
}

// AuthenticateBiometric signs an enrolled account in through a device
// verification ceremony.
func (o *Orchestrator) AuthenticateBiometric(ctx context.Context, email string) (session.Session, error) {
	attempt := o.sessions.StartAttempt()

	found, err := o.users.GetUserByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return session.Session{}, ErrBiometricNotEnabled
		}
		return session.Session{}, apperrors.Wrap(apperrors.CodeStorageFailure, "look up user", err)
	}
	if !found.BiometricEnabled {
		return session.Session{}, ErrBiometricNotEnabled
	}

	result, err := o.verifier.RequestVerification(ctx, biometric.Request{
		Account: found.Email,
		Reason:  loginReason,
	})
	if err != nil {
		return session.Session{}, verifierError(err)
	}
	if !result.Verified {
		return session.Session{}, verificationFailed(result)
	}

	signedIn := session.Session{UserID: found.ID, Email: found.Email}
	o.sessions.Complete(attempt, signedIn)
	o.logger.Printf("user %s signed in via %s", found.ID, result.Method)
	return signedIn, nil
}

// Logout clears the active session. Calling it without one is a no-op.
func (o *Orchestrator) Logout() {
	o.sessions.Clear()
}

// CurrentSession returns the signed-in identity, if any.
func (o *Orchestrator) CurrentSession() (session.Session, bool) {
	return o.sessions.Current()
}

// CheckBiometricAvailable reports whether an enrollment record exists for
// the email. It exists for UI affordances and never gates the login path.
func (o *Orchestrator) CheckBiometricAvailable(ctx context.Context, email string) bool {
	_, err := o.credentials.Get(o.service, user.NormalizeEmail(email))
	return err == nil
}

// verifierError keeps coded verifier errors intact and tags anything else
// as unknown.
func verifierError(err error) error {
	if apperrors.GetCode(err) != apperrors.CodeUnknown {
		return err
	}
	return apperrors.Wrap(apperrors.CodeUnknown, "biometric verification", err)
}

func verificationFailed(result biometric.Result) error {
	message := "biometric verification failed"
	if result.Reason != "" {
		message = result.Reason
	}
	return apperrors.WithMetadata(apperrors.CodeBiometricVerificationFailed, message, map[string]string{
		"method": result.Method,
	})
}
