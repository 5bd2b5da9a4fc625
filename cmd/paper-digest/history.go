// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-digest/internal/config"
	"github.com/pdiddy/paper-digest/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent pipeline runs",
	Long: `History prints the most recent runs recorded in the history database
(history_db). With --papers, the titles included in each digest are listed
below the table. With --yaml, each run is printed with its per-paper
evaluations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgFile, _ := cmd.Flags().GetString("config")
		if err := config.Read(viper.GetViper(), cfgFile); err != nil {
			return err
		}

		dbPath, _ := cmd.Flags().GetString("db")
		if dbPath == "" {
			dbPath = viper.GetString("history_db")
		}
		if dbPath == "" {
			return errors.New("no history database configured (history_db or --db)")
		}

		limit, _ := cmd.Flags().GetInt("limit")
		asYAML, _ := cmd.Flags().GetBool("yaml")

		store, err := history.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		if asYAML {
			return store.ExportYAML(cmd.Context(), cmd.OutOrStdout(), limit)
		}

		runs, err := store.Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if papers, _ := cmd.Flags().GetBool("papers"); papers {
			for i := range runs {
				if runs[i].Evaluations, err = store.Evaluations(cmd.Context(), runs[i].ID); err != nil {
					return err
				}
			}
		}
		return printRuns(cmd, runs)
	},
}

func printRuns(cmd *cobra.Command, runs []history.Run) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tOUTCOME\tRETRIEVED\tRELEVANT\tDIGEST\tNOTIFIED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%t\n",
			r.ID, r.Started.Local().Format(time.DateTime), r.Outcome, r.Retrieved, r.Relevant, r.Fragments, r.Notified)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range runs {
		titles := history.IncludedTitles(r.Evaluations)
		if len(titles) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s:\n", r.ID)
		for _, title := range titles {
			fmt.Fprintf(out, "  - %s\n", title)
		}
	}
	return nil
}

func init() {
	historyCmd.Flags().String("db", "", "history database (default: history_db from config)")
	historyCmd.Flags().Int("limit", 10, "number of runs to show")
	historyCmd.Flags().Bool("papers", false, "list the papers included in each digest")
	historyCmd.Flags().Bool("yaml", false, "print runs with evaluations as YAML")

	rootCmd.AddCommand(historyCmd)
}
