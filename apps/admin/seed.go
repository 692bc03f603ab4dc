package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/montree/core/curriculum"
)

func (cli *commandLine) seedCmd() *cobra.Command {
	var scopeID, path string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a YAML curriculum catalog into a scope",
		Long: `Seed activates the areas listed in the file and appends their works in order.
Works already in the catalog are skipped, so seeding twice is harmless.

File format:
  areas:
    mathematics:
      - Number Rods
      - name: Spindle Box
        alt_name: Boîte à fuseaux`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.seed(cmd, scopeID, path)
		},
	}
	cmd.Flags().StringVar(&scopeID, "scope", "", "The scope (classroom) to seed")
	cmd.Flags().StringVar(&path, "file", "", "Path of the YAML catalog")
	_ = cmd.MarkFlagRequired("scope")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (cli *commandLine) seed(cmd *cobra.Command, scopeID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening catalog")
	}
	defer func() { _ = f.Close() }()

	seed, err := curriculum.ParseCatalogSeed(f)
	if err != nil {
		return err
	}
	sum, err := cli.curSvc.Seed(cmd.Context(), scopeID, seed)
	if err != nil {
		return errors.Wrap(err, "seeding catalog")
	}
	return cli.print(sum)
}
