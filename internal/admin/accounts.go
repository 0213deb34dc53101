package admin

import (
	"bufio"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/models"
)

func (a *cliApp) newCreateCmd() *cobra.Command {
	var login, email string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create an account",
		Example: `  accountctl create --login alice --email alice@example.com  # prompts for password`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := getNewPassword(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			return a.withServices(cmd, nil, func(ctx context.Context, s *Services) error {
				acc, err := s.Accounts.Create(ctx, &models.Account{Login: login, Email: email, Secret: string(pw)})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created account %q (id %d)\n", acc.Login, acc.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&login, "login", "", "account login (required)")
	cmd.Flags().StringVar(&email, "email", "", "account email (required)")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func (a *cliApp) newGetCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withServices(cmd, nil, func(ctx context.Context, s *Services) error {
				acc, err := s.Accounts.GetByID(ctx, id)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), acc)
				}
				printAccount(cmd.OutOrStdout(), acc)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func (a *cliApp) newListCmd() *cobra.Command {
	var (
		page, size int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List accounts page by page",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withServices(cmd, nil, func(ctx context.Context, s *Services) error {
				p, err := s.Accounts.ListPage(ctx, page, size)
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), p)
				}
				printTable(cmd.OutOrStdout(), p)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&size, "size", 10, "page size, at most 100")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func (a *cliApp) newDisableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disable <id>",
		Short: "Disable (soft-delete) an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withServices(cmd, nil, func(ctx context.Context, s *Services) error {
				acc, err := s.Accounts.SoftDelete(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Disabled account %q (id %d)\n", acc.Login, acc.ID)
				return nil
			})
		},
	}
}

func (a *cliApp) newEnableCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "enable <id>",
		Short: "Re-enable a disabled account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withServices(cmd, nil, func(ctx context.Context, s *Services) error {
				acc, err := s.Accounts.GetByID(ctx, id)
				if err != nil {
					return err
				}
				acc.Enabled = true
				if acc, err = s.Accounts.Update(ctx, acc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Enabled account %q (id %d)\n", acc.Login, acc.ID)
				return nil
			})
		},
	}
}

func (a *cliApp) newDeleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account permanently",
		Long:  "Delete removes the account row for good and frees its login. Prefer disable.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withServices(cmd, nil, func(ctx context.Context, s *Services) error {
				acc, err := s.Accounts.GetByID(ctx, id)
				if err != nil {
					return err
				}

				if !yes {
					answer, err := getSimpleText(bufio.NewReader(cmd.InOrStdin()),
						fmt.Sprintf("Type %q to delete account %d", acc.Login, acc.ID), cmd.ErrOrStderr())
					if err != nil {
						return err
					}
					if answer != acc.Login {
						return fmt.Errorf("aborted")
					}
				}

				deleted, err := s.Accounts.HardDelete(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %q (id %d)\n", deleted.Login, deleted.ID)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func (a *cliApp) newSweepCmd() *cobra.Command {
	var threshold time.Duration

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Disable accounts older than the inactivity threshold once",
		RunE: func(cmd *cobra.Command, args []string) error {
			adjust := func(cfg *config.Config) {
				if threshold > 0 {
					cfg.InactivityThreshold = threshold
				}
			}
			return a.withServices(cmd, adjust, func(ctx context.Context, s *Services) error {
				n, err := s.Sweeper.SweepOnce(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Disabled %d account(s)\n", n)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&threshold, "threshold", 0, "override the inactivity threshold, e.g. 720h")
	return cmd
}
