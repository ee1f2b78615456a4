package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kjsce/kj-connect/internal/adapters/filestore"
	"github.com/kjsce/kj-connect/internal/bootstrap"
	"github.com/kjsce/kj-connect/internal/domain/notify"
	"github.com/kjsce/kj-connect/internal/ports"
	"github.com/kjsce/kj-connect/internal/service"
)

var errDenied = errors.New("access denied")

// writerNotifier prints notifications as they arrive; the CLI has no page to defer them to.
type writerNotifier struct {
	w io.Writer
}

var _ ports.Notifier = writerNotifier{}

func (n writerNotifier) Notify(_ context.Context, msg notify.Notification) {
	_, _ = fmt.Fprintf(n.w, "[%s] %s\n", msg.Severity, msg.Message)
}

// openSession restores the CLI's session manager from the state file.
func openSession(cmdCtx *commandContext) (*service.SessionManager, error) {
	table, err := bootstrap.BuildCredentialTable(cmdCtx.Config.Auth)
	if err != nil {
		return nil, err
	}
	store, err := filestore.New(cmdCtx.Config.CLI.StateFile, filestore.WithLogger(cmdCtx.Logger))
	if err != nil {
		return nil, err
	}
	manager := service.NewSessionManager(service.SessionManagerOptions{
		Validator: table,
		Store:     store,
		Notifier:  writerNotifier{w: cmdCtx.Stderr},
		Key:       cmdCtx.Config.Session.Key,
		Logger:    cmdCtx.Logger,
	})
	manager.Initialize(cmdCtx.Ctx)
	return manager, nil
}

func newFlagSet(cmdCtx *commandContext, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cmdCtx.Stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	return nil
}

type loginOptions struct {
	Email    string
	Password string
}

func parseLoginFlags(cmdCtx *commandContext, args []string) (loginOptions, error) {
	fs := newFlagSet(cmdCtx, "login")
	var opts loginOptions
	fs.StringVar(&opts.Email, "email", "", "Account email")
	fs.StringVar(&opts.Password, "password", "", "Account password; read from stdin when empty")
	if err := parseFlags(fs, args); err != nil {
		return loginOptions{}, err
	}
	if opts.Email == "" {
		return loginOptions{}, errors.New("-email is required")
	}
	if opts.Password == "" {
		line, err := bufio.NewReader(cmdCtx.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return loginOptions{}, fmt.Errorf("read password: %w", err)
		}
		opts.Password = strings.TrimRight(line, "\r\n")
	}
	return opts, nil
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(cmdCtx, args)
	if err != nil {
		return err
	}
	manager, err := openSession(cmdCtx)
	if err != nil {
		return err
	}
	if !manager.Login(cmdCtx.Ctx, opts.Email, opts.Password) {
		return errors.New("login failed")
	}
	return printIdentity(cmdCtx, manager)
}

func runLogout(cmdCtx *commandContext, args []string) error {
	if err := parseFlags(newFlagSet(cmdCtx, "logout"), args); err != nil {
		return err
	}
	manager, err := openSession(cmdCtx)
	if err != nil {
		return err
	}
	manager.Logout(cmdCtx.Ctx)
	return nil
}

func runWhoAmI(cmdCtx *commandContext, args []string) error {
	if err := parseFlags(newFlagSet(cmdCtx, "whoami"), args); err != nil {
		return err
	}
	manager, err := openSession(cmdCtx)
	if err != nil {
		return err
	}
	return printIdentity(cmdCtx, manager)
}

func printIdentity(cmdCtx *commandContext, manager *service.SessionManager) error {
	identity, ok := manager.Current()
	if !ok {
		return writef(cmdCtx.Stdout, "not logged in\n")
	}
	return writef(cmdCtx.Stdout, "%s <%s> (%s)\n", identity.Name, identity.Email, identity.Role.Label())
}

func runCheck(cmdCtx *commandContext, args []string) error {
	fs := newFlagSet(cmdCtx, "check")
	path := fs.String("path", "", "Route to evaluate, e.g. /post-event")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("-path is required")
	}

	policy, protected := service.PolicyFor(*path)
	if !protected {
		return writef(cmdCtx.Stdout, "%s: public\n", *path)
	}
	manager, err := openSession(cmdCtx)
	if err != nil {
		return err
	}
	guard := service.NewRouteGuard(service.RouteGuardOptions{
		LoginPath: cmdCtx.Config.Auth.LoginPath,
		HomePath:  cmdCtx.Config.Auth.HomePath,
	})
	identity, ok := manager.Current()
	decision := guard.Evaluate(identity, ok, policy)
	if decision.Allowed() {
		return writef(cmdCtx.Stdout, "%s: allow\n", *path)
	}
	if err := writef(cmdCtx.Stdout, "%s: %s -> %s (%s)\n", *path, decision.Outcome, decision.Redirect, decision.Message); err != nil {
		return err
	}
	return errDenied
}

func runAccounts(cmdCtx *commandContext, args []string) error {
	if err := parseFlags(newFlagSet(cmdCtx, "accounts"), args); err != nil {
		return err
	}
	table, err := bootstrap.BuildCredentialTable(cmdCtx.Config.Auth)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmdCtx.Stdout, 0, 0, 2, ' ', 0)
	if err := writef(tw, "ID\tNAME\tEMAIL\tROLE\n"); err != nil {
		return err
	}
	for _, a := range table.Accounts() {
		if err := writef(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Email, a.Role.Label()); err != nil {
			return err
		}
	}
	return tw.Flush()
}
