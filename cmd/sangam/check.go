package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erazemk/sangam/internal/service"
)

func newCheckCmd(a *app) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify that every slide and announcement order is 1..N",
		Long: `Check walks every slideshow and announcement page and verifies that the
orders of their items are exactly 1..N. With --repair, broken scopes are
renumbered keeping the relative order of their items.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			path := a.cfg.Storage.SQLitePath
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("database %s: %w", path, err)
			}

			database, err := openDatabase(path)
			if err != nil {
				return err
			}
			defer database.Close()

			content, closeContent, err := openContent(ctx, a.cfg, database)
			if err != nil {
				return err
			}
			defer closeContent()

			reports, err := service.CheckContent(ctx, content, repair)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tSCOPE\tITEMS\tSTATE")
			broken := 0
			for _, r := range reports {
				state := "ok"
				switch {
				case r.Broken && repair:
					state = fmt.Sprintf("repaired (%d renumbered)", r.Repaired)
				case r.Broken:
					state = "BROKEN"
					broken++
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", r.Kind, r.Scope, r.Items, state)
			}
			tw.Flush()

			if broken > 0 {
				return fmt.Errorf("%d scope(s) broken, run with --repair", broken)
			}
			fmt.Fprintf(out, "%d scope(s) checked\n", len(reports))
			return nil
		},
	}

	cmd.Flags().BoolVar(&repair, "repair", false, "renumber broken scopes")
	return cmd
}
