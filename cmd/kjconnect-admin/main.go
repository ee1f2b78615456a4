package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/kjsce/kj-connect/config"
	"github.com/kjsce/kj-connect/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// errUsage marks failures that should print usage and exit 2.
var errUsage = errors.New("usage")

func main() {
	cfg, err := bootstrap.LoadConfig()
	// Logs go to stderr so stdout stays scriptable.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	code := run(cmdCtx, os.Args[1:])
	stop()
	os.Exit(code) //nolint:forbidigo // CLI propagates the command's exit status
}

// run dispatches args[0] and returns the process exit status.
func run(cmdCtx *commandContext, args []string) int {
	if len(args) < 1 {
		if err := printUsage(cmdCtx.Stdout); err != nil {
			cmdCtx.Logger.Error("print usage failed", "error", err)
		}
		return 2
	}

	cmdName := args[0]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(cmdCtx.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			cmdCtx.Logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(cmdCtx.Stderr); err != nil {
			cmdCtx.Logger.Error("print usage failed", "error", err)
		}
		return 2
	}

	if err := cmd.run(cmdCtx, args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		if werr := writef(cmdCtx.Stderr, "%s: %v\n", cmdName, err); werr != nil {
			cmdCtx.Logger.Error("print command error failed", "error", werr)
		}
		return 1
	}
	return 0
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Log in with -email and -password and keep the session in the state file",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Clear the stored session",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show the logged-in identity",
			run:         runWhoAmI,
		},
		"check": {
			name:        "check",
			description: "Evaluate the route guard for -path with the stored identity",
			run:         runCheck,
		},
		"accounts": {
			name:        "accounts",
			description: "List the credential table without secrets",
			run:         runAccounts,
		},
		"hash-secret": {
			name:        "hash-secret",
			description: `Print a bcrypt hash for a credentials file entry (mark the entry "hashed": true)`,
			run:         runHashSecret,
		},
		"migrate": {
			name:        "migrate",
			description: "Apply catalog migrations to Postgres",
			run:         runMigrations,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: kjconnect-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-14s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
