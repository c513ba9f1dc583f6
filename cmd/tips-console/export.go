package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Cheertaboi/tips-console/internal/export"
	"github.com/Cheertaboi/tips-console/internal/query"
)

func exportCmd() *cobra.Command {
	var (
		search  string
		filters []string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "export <entity>",
		Short: "Export a filtered collection as CSV",
		Long: `Export every record of a collection (tips, packages, accounts,
transactions, tickets or notifications) matching the search term and
filters as CSV. Filters are dimension=value pairs.`,
		Example: `  tips-console export tips --search arsenal --filter risk=low
  tips-console export accounts --filter plan=vip --out -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity := args[0]

			q := query.New().WithSearch(search)
			for _, f := range filters {
				dim, value, ok := strings.Cut(f, "=")
				if !ok || dim == "" {
					return fmt.Errorf("invalid filter %q, want dimension=value", f)
				}
				q = q.WithFilter(dim, value)
			}

			a, err := openApp(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			ls, err := newListers(a.store, cfg.Pagination, log)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out == "" {
				out = export.Filename(entity, time.Now())
			}
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}

			n, err := ls.exportTo(w, entity, q)
			if err != nil {
				return err
			}
			log.Info("export written", "entity", entity, "records", n, "file", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive search term")
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "dimension=value filter (repeatable)")
	cmd.Flags().StringVarP(&out, "out", "o", "", `output file, "-" for stdout (default: <entity>-<timestamp>.csv)`)
	return cmd
}
