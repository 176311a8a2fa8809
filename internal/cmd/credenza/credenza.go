// Package credenza wires the auth core into the interactive terminal
// front-end.
package credenza

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/mlenz/credenza/internal/auth/biometric"
	"github.com/mlenz/credenza/internal/auth/enroll"
	"github.com/mlenz/credenza/internal/auth/keychain"
	"github.com/mlenz/credenza/internal/auth/orchestrator"
	"github.com/mlenz/credenza/internal/auth/session"
	"github.com/mlenz/credenza/internal/auth/storage/sqlite"
	"github.com/mlenz/credenza/internal/platform/config"
)

// Config holds credenza command configuration.
type Config struct {
	DBPath        string        `env:"CREDENZA_DB_PATH" envDefault:"credenza.db"`
	Service       string        `env:"CREDENZA_KEYCHAIN_SERVICE" envDefault:"credenza"`
	Verifier      string        `env:"CREDENZA_VERIFIER"`
	HelperCommand string        `env:"CREDENZA_HELPER_COMMAND"`
	RPDisplayName string        `env:"CREDENZA_RP_DISPLAY_NAME" envDefault:"Credenza"`
	RPID          string        `env:"CREDENZA_RP_ID" envDefault:"localhost"`
	RPOrigins     []string      `env:"CREDENZA_RP_ORIGINS" envSeparator:"," envDefault:"http://localhost:8086"`
	PromptTimeout time.Duration `env:"CREDENZA_PROMPT_TIMEOUT" envDefault:"60s"`
}

// ParseConfig parses environment variables and flags into a Config. Flags
// win over environment values.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	origins := strings.Join(cfg.RPOrigins, ",")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the local account database")
	fs.StringVar(&cfg.Service, "service", cfg.Service, "Keychain service name for enrollment records")
	fs.StringVar(&cfg.Verifier, "verifier", cfg.Verifier, "Force a verifier variant (helper, prompt, platform)")
	fs.StringVar(&cfg.HelperCommand, "helper-command", cfg.HelperCommand, "Biometric helper executable for the helper variant")
	fs.StringVar(&cfg.RPID, "rp-id", cfg.RPID, "WebAuthn relying party id")
	fs.StringVar(&origins, "rp-origins", origins, "Comma-separated WebAuthn relying party origins")
	fs.DurationVar(&cfg.PromptTimeout, "prompt-timeout", cfg.PromptTimeout, "Upper bound for one verification ceremony")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.RPOrigins = splitOrigins(origins)
	return cfg, nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// Run builds the auth core from cfg and serves the interactive shell until
// the context ends or the user quits.
func Run(ctx context.Context, cfg Config) error {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open account database: %w", err)
	}
	defer store.Close()

	credentials := keychain.New()

	minter, err := enroll.LoadMinter(credentials, cfg.Service, nil)
	if err != nil {
		return fmt.Errorf("load enrollment minter: %w", err)
	}

	verifier, err := buildVerifier(cfg, store)
	if err != nil {
		return fmt.Errorf("build verifier: %w", err)
	}

	core, err := orchestrator.New(orchestrator.Config{
		Users:       store,
		Credentials: credentials,
		Verifier:    verifier,
		Minter:      minter,
		Sessions:    session.NewHolder(),
		Service:     cfg.Service,
		Logger:      log.Default(),
	})
	if err != nil {
		return fmt.Errorf("build auth core: %w", err)
	}

	return NewShell(os.Stdin, os.Stdout, core).Run(ctx)
}

func buildVerifier(cfg Config, passkeys *sqlite.Store) (biometric.Verifier, error) {
	return biometric.Select(biometric.SelectorConfig{
		Kind:          biometric.Kind(cfg.Verifier),
		HelperCommand: cfg.HelperCommand,
		CanPrompt:     terminalCanPrompt,
		Prompt:        terminalPrompt,
		Platform: biometric.PlatformConfig{
			RPDisplayName: cfg.RPDisplayName,
			RPID:          cfg.RPID,
			RPOrigins:     cfg.RPOrigins,
			Timeout:       cfg.PromptTimeout,
		},
		PasskeyStore:  passkeys,
		Authenticator: noBridgeAuthenticator{},
	})
}
