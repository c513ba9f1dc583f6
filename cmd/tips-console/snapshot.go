package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Cheertaboi/tips-console/internal/fixture"
)

func snapshotCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write the configured source as a fixture file",
		Long: `Load every collection from the configured source and write it as a YAML
fixture, e.g. to run the console against a copy of production data without
a database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			f := fixture.File{
				Tips:          a.store.Tips(),
				Packages:      a.store.Packages(),
				Accounts:      a.store.Accounts(),
				Transactions:  a.store.Transactions(),
				Tickets:       a.store.Tickets(),
				Notifications: a.store.Notifications(),
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create snapshot file: %w", err)
				}
				defer file.Close()
				w = file
			}
			if err := fixture.Write(w, f); err != nil {
				return err
			}
			log.Info("snapshot written", "file", out, "tips", len(f.Tips), "packages", len(f.Packages))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "-", `output file, "-" for stdout`)
	return cmd
}
