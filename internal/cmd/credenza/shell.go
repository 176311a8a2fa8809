package credenza

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mlenz/credenza/internal/auth/orchestrator"
	apperrors "github.com/mlenz/credenza/internal/platform/errors"
	"golang.org/x/term"
)

// Shell is the line-oriented front-end over the auth core.
type Shell struct {
	core *orchestrator.Orchestrator
	in   *bufio.Scanner
	out  io.Writer

	// readPassword reads a secret without echo. Tests substitute it.
	readPassword func(label string) (string, error)
}

// NewShell builds a shell reading commands from in and writing to out.
func NewShell(in io.Reader, out io.Writer, core *orchestrator.Orchestrator) *Shell {
	s := &Shell{
		core: core,
		in:   bufio.NewScanner(in),
		out:  out,
	}
	s.readPassword = s.defaultReadPassword
	return s
}

// Run serves commands until the input ends, the user quits, or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "credenza interactive shell. Type help for commands.")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(s.out, "credenza> ")
		if !s.in.Scan() {
			return s.in.Err()
		}
		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		command, args := fields[0], fields[1:]
		if command == "quit" || command == "exit" {
			return nil
		}
		s.dispatch(ctx, command, args)
	}
}

func (s *Shell) dispatch(ctx context.Context, command string, args []string) {
	switch command {
	case "register":
		s.register(ctx, args)
	case "login":
		s.login(ctx, args)
	case "logout":
		s.core.Logout()
		fmt.Fprintln(s.out, "signed out")
	case "enable-bio":
		s.enableBiometric(ctx)
	case "bio-login":
		s.biometricLogin(ctx, args)
	case "bio-check":
		s.biometricCheck(ctx, args)
	case "whoami":
		s.whoami()
	case "help":
		s.help()
	default:
		fmt.Fprintf(s.out, "unknown command %q. Type help for commands.\n", command)
	}
}

func (s *Shell) register(ctx context.Context, args []string) {
	email, err := s.argOrPrompt(args, "email: ")
	if err != nil {
		s.printError(err)
		return
	}
	password, err := s.readPassword("password: ")
	if err != nil {
		s.printError(err)
		return
	}

	u, err := s.core.Register(ctx, email, password)
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "registered and signed in as %s\n", u.Email)
}

func (s *Shell) login(ctx context.Context, args []string) {
	email, err := s.argOrPrompt(args, "email: ")
	if err != nil {
		s.printError(err)
		return
	}
	password, err := s.readPassword("password: ")
	if err != nil {
		s.printError(err)
		return
	}

	u, err := s.core.Login(ctx, email, password)
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "signed in as %s\n", u.Email)
}

func (s *Shell) enableBiometric(ctx context.Context) {
	if err := s.core.EnableBiometric(ctx); err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintln(s.out, "biometric sign-in enabled")
}

func (s *Shell) biometricLogin(ctx context.Context, args []string) {
	email, err := s.argOrPrompt(args, "email: ")
	if err != nil {
		s.printError(err)
		return
	}

	signedIn, err := s.core.AuthenticateBiometric(ctx, email)
	if err != nil {
		s.printError(err)
		return
	}
	fmt.Fprintf(s.out, "signed in as %s\n", signedIn.Email)
}

func (s *Shell) biometricCheck(ctx context.Context, args []string) {
	email, err := s.argOrPrompt(args, "email: ")
	if err != nil {
		s.printError(err)
		return
	}

	if s.core.CheckBiometricAvailable(ctx, email) {
		fmt.Fprintf(s.out, "biometric sign-in is set up for %s\n", email)
		return
	}
	fmt.Fprintf(s.out, "no biometric enrollment for %s\n", email)
}

func (s *Shell) whoami() {
	current, ok := s.core.CurrentSession()
	if !ok {
		fmt.Fprintln(s.out, "not signed in")
		return
	}
	fmt.Fprintf(s.out, "%s (%s)\n", current.Email, current.UserID)
}

func (s *Shell) help() {
	fmt.Fprint(s.out, `commands:
  register [email]   create an account and sign in
  login [email]      sign in with a password
  bio-login [email]  sign in with biometrics
  enable-bio         enable biometric sign-in for the current account
  bio-check [email]  check whether biometric sign-in is set up
  whoami             show the current session
  logout             sign out
  quit               exit
`)
}

// argOrPrompt takes the first argument when present and prompts otherwise.
func (s *Shell) argOrPrompt(args []string, label string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) defaultReadPassword(label string) (string, error) {
	fmt.Fprint(s.out, label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(s.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}
	// Piped input, used by scripts.
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.in.Text(), nil
}

func (s *Shell) printError(err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		fmt.Fprintf(s.out, "error: %s (%s)\n", appErr.Message, appErr.Code.Guidance())
		return
	}
	fmt.Fprintf(s.out, "error: %v\n", err)
}
