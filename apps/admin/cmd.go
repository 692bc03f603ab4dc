package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	echoapi "github.com/trezcool/montree/apps/api/echo"
	"github.com/trezcool/montree/core"
	"github.com/trezcool/montree/core/curriculum"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf   *core.Config
	db     *sql.DB
	curSvc *curriculum.Service
	out    io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "admin",
		Short: "Montree administration commands",
		Long: `Admin commands run against the configured database.

Examples:
  admin migrate up                                  # Apply pending migrations
  admin seed --scope class-1 --file catalog.yaml    # Load a curriculum catalog
  admin reconcile --scope class-1                   # Link unresolved assignments
  admin backfill --scope class-1                    # Re-derive progress of linked assignments
  admin token --subject classroom-app --scope '*'   # Issue an API token`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Usage()
			return errHelp
		},
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)

	root.AddCommand(
		cli.migrateCmd(),
		cli.seedCmd(),
		cli.reconcileCmd(),
		cli.backfillCmd(),
		cli.tokenCmd(),
	)
	return root
}

// run executes os.Args-like args: the program name comes first.
func (cli *commandLine) run(args []string) error {
	if cli.out == nil {
		cli.out = os.Stdout
	}
	root := cli.rootCmd()
	if len(args) > 1 {
		root.SetArgs(args[1:])
	} else {
		root.SetArgs([]string{})
	}
	return root.Execute()
}

func (cli *commandLine) reconcileCmd() *cobra.Command {
	var scopeID string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Link the unresolved assignments of a scope and merge their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := cli.curSvc.Reconcile(cmd.Context(), scopeID)
			if err != nil {
				var mwe *curriculum.MergeWriteError
				if errors.As(err, &mwe) {
					_ = cli.print(sum)
				}
				return err
			}
			return cli.print(sum)
		},
	}
	cmd.Flags().StringVar(&scopeID, "scope", "", "The scope (classroom) to reconcile")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}

func (cli *commandLine) backfillCmd() *cobra.Command {
	var scopeID string
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Re-derive and merge the progress of every linked assignment of a scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := cli.curSvc.Backfill(cmd.Context(), scopeID)
			if err != nil {
				return err
			}
			return cli.print(sum)
		},
	}
	cmd.Flags().StringVar(&scopeID, "scope", "", "The scope (classroom) to backfill")
	_ = cmd.MarkFlagRequired("scope")
	return cmd
}

func (cli *commandLine) tokenCmd() *cobra.Command {
	var (
		subject string
		scopes  []string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(scopes) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			claims := echoapi.NewClaims(cli.conf.AppName, subject, ttl, scopes...)
			token, err := echoapi.GenerateToken(claims, cli.conf.SecretKey)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cli.out, token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "The service the token is issued to")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "A scope the token grants, '*' for all (repeatable)")
	cmd.Flags().DurationVar(&ttl, "ttl", cli.conf.TokenTTL, "How long the token is valid")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func (cli *commandLine) print(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
