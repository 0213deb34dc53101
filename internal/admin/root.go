// Package admin implements accountctl, the operator tool that manages
// accounts directly against the database, or through a running server
// when --server is given.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/models"
)

type cliApp struct {
	open       Opener
	configPath string
	dsn        string
	server     string
	user       string
}

// Execute runs accountctl with the given arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := NewRootCmd(OpenServices)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// NewRootCmd builds the command tree; open connects the services.
func NewRootCmd(open Opener) *cobra.Command {
	a := &cliApp{open: open}

	cmd := &cobra.Command{
		Use:   "accountctl",
		Short: "Manage accounts of the account server",
		Long: `accountctl manages accounts directly in the account database: create,
inspect, disable or delete accounts and run the inactivity sweep by hand.

With --server the account commands go through the server HTTP API instead,
authenticating as --user.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "JSON config file shared with the server")
	cmd.PersistentFlags().StringVar(&a.dsn, "dsn", "", "database DSN (overrides config and "+config.EnvDatabaseDSN+")")
	cmd.PersistentFlags().StringVar(&a.server, "server", "", "server base URL, e.g. http://localhost:8080 (skips the database)")
	cmd.PersistentFlags().StringVar(&a.user, "user", "", "login used with --server; the password is prompted")

	cmd.AddCommand(a.newCreateCmd())
	cmd.AddCommand(a.newGetCmd())
	cmd.AddCommand(a.newListCmd())
	cmd.AddCommand(a.newDisableCmd())
	cmd.AddCommand(a.newEnableCmd())
	cmd.AddCommand(a.newDeleteCmd())
	cmd.AddCommand(a.newSweepCmd())

	return cmd
}

func (a *cliApp) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(a.configPath)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if a.dsn != "" {
		cfg.DatabaseDSN = a.dsn
	}
	return cfg, nil
}

func (a *cliApp) openRemote(ctx context.Context, cmd *cobra.Command) (*Services, func() error, error) {
	if a.user == "" {
		return nil, nil, errors.New("--user is required with --server")
	}

	pw, err := getPassword(fmt.Sprintf("Password for %s", a.user), cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read password: %w", err)
	}
	defer common.WipeByteArray(pw)

	return OpenRemote(ctx, a.server, a.user, pw)
}

// withServices opens the services for the duration of fn.
func (a *cliApp) withServices(cmd *cobra.Command, adjust func(*config.Config), fn func(ctx context.Context, s *Services) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		s       *Services
		closeFn func() error
	)
	if a.server != "" {
		s, closeFn, err = a.openRemote(ctx, cmd)
	} else {
		var cfg *config.Config
		if cfg, err = a.loadConfig(); err != nil {
			return err
		}
		if adjust != nil {
			adjust(cfg)
		}
		s, closeFn, err = a.open(ctx, cfg)
	}
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(ctx, s)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid account id %q", arg)
	}
	return id, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAccount(w io.Writer, acc *models.Account) {
	fmt.Fprintf(w, "ID:          %d\n", acc.ID)
	fmt.Fprintf(w, "Login:       %s\n", acc.Login)
	fmt.Fprintf(w, "Email:       %s\n", acc.Email)
	fmt.Fprintf(w, "Enabled:     %t\n", acc.Enabled)
	fmt.Fprintf(w, "Created:     %s\n", acc.CreatedAt.Format(time.RFC3339))
	if acc.DeactivatedAt != nil {
		fmt.Fprintf(w, "Deactivated: %s\n", acc.DeactivatedAt.Format(time.RFC3339))
	}
}

func printTable(w io.Writer, page *models.Page) {
	fmt.Fprintf(w, "%-8s %-24s %-32s %-8s\n", "ID", "LOGIN", "EMAIL", "ENABLED")
	fmt.Fprintf(w, "%-8s %-24s %-32s %-8s\n", "--", "-----", "-----", "-------")
	for _, acc := range page.Items {
		fmt.Fprintf(w, "%-8d %-24s %-32s %-8t\n", acc.ID, acc.Login, acc.Email, acc.Enabled)
	}
	fmt.Fprintf(w, "\n%d of %d accounts\n", len(page.Items), page.TotalCount)
}
