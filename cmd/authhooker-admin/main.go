package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/javaDevJT/auth-hooker/config"
	"github.com/javaDevJT/auth-hooker/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	needsConfig bool
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

const defaultCommandTimeout = 5 * time.Minute

func main() {
	logger := bootstrap.InitLogger(slog.LevelInfo)

	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		writef(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage(os.Stderr)
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cmdCtx := &commandContext{Ctx: context.Background(), Logger: logger, Out: os.Stdout}
	if cmd.needsConfig {
		cfg, err := bootstrap.LoadConfig()
		if err != nil {
			logger.Error("load config", "error", err)
			os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
		}
		cmdCtx.Config = cfg
	}

	if err := cmd.run(cmdCtx, os.Args[2:]); err != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"generate-key": {
			name:        "generate-key",
			description: "Print a fresh base64 SECRETS_ENCRYPTION_KEY",
			run:         runGenerateKey,
		},
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			needsConfig: true,
			run:         runMigrations,
		},
		"create-provider": {
			name:        "create-provider",
			description: "Register a tenant identity provider",
			needsConfig: true,
			run:         runCreateProvider,
		},
		"add-mapping": {
			name:        "add-mapping",
			description: "Add a claim mapping to a provider",
			needsConfig: true,
			run:         runAddMapping,
		},
		"list-mappings": {
			name:        "list-mappings",
			description: "List a provider's claim mappings by priority",
			needsConfig: true,
			run:         runListMappings,
		},
		"delete-mapping": {
			name:        "delete-mapping",
			description: "Soft-delete a claim mapping",
			needsConfig: true,
			run:         runDeleteMapping,
		},
		"sweep": {
			name:        "sweep",
			description: "Run one sweep pass over Postgres verification sessions",
			needsConfig: true,
			run:         runSweep,
		},
	}
}

func printUsage(w io.Writer) {
	writef(w, "Usage: authhooker-admin <command> [flags]\n\nAvailable commands:\n")
	names := make([]string, 0, len(commands()))
	for name := range commands() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writef(w, "  %-18s %s\n", name, commands()[name].description)
	}
}

func writef(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// withDB connects to Postgres for the duration of fn under a signal-aware timeout.
func withDB(cmdCtx *commandContext, fn func(ctx context.Context, db *sql.DB) error) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultCommandTimeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{DBConfig: cmdCtx.Config.Postgres, Logger: cmdCtx.Logger})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()
	return fn(ctx, db)
}
