package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-fetch/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded download outcomes",
	Long: `History lists outcomes recorded by "fetch --ledger". Without --run it
shows the most recent entries across all runs.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("ledger", "", "SQLite ledger database (default: the ledger config key)")
	historyCmd.Flags().Int("limit", 20, "number of recent entries to show")
	historyCmd.Flags().String("run", "", "show every entry of one run")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("ledger")
	if path == "" {
		path = viper.GetString("ledger")
	}
	if path == "" {
		return fmt.Errorf("no ledger configured; pass --ledger or set ledger in the config file")
	}

	store, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	var entries []ledger.Entry
	runID, _ := cmd.Flags().GetString("run")
	if runID != "" {
		entries, err = store.Run(cmd.Context(), runID)
	} else {
		limit, _ := cmd.Flags().GetInt("limit")
		entries, err = store.Recent(cmd.Context(), limit)
	}
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTATUS\tDOI\tREFERENCE\tDETAIL")
	for _, e := range entries {
		detail := e.Path
		if e.Error != "" {
			detail = e.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.At.Local().Format("2006-01-02 15:04"), e.Status, e.DOI, truncate(e.Reference, 48), detail)
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
