package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-fetch/internal/acquire"
	"github.com/pdiddy/paper-fetch/internal/ledger"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [references...]",
	Short: "Download papers from titles, DOIs, or URLs",
	Long: `Fetch processes each reference in order. URLs and DOIs are read directly;
anything else is treated as a title and resolved through CrossRef. The DOI is
looked up on the mirror, the embedded PDF link is scraped from the viewer
page, and the PDF is written to the output directory. Existing files are
skipped.

References can also be read from a file (--file): a .yaml file with a
"references" list, or a text file with one reference per line.`,
	Example: `  paper-fetch fetch 10.1038/nature12373 "https://doi.org/10.1016/j.cell.2020.01.001"
  paper-fetch fetch --file reading-list.txt --output-dir papers --metadata`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringP("file", "f", "", "read references from a file")
	fetchCmd.Flags().StringP("output-dir", "o", "", "directory for downloaded PDFs (default downloaded_papers)")
	fetchCmd.Flags().String("mirror", "", "mirror base URL the DOI is appended to")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Bool("metadata", false, "write a CrossRef metadata YAML next to each PDF")
	fetchCmd.Flags().Bool("verify", false, "reject downloads that are not readable PDFs")
	fetchCmd.Flags().String("ledger", "", "record outcomes in this SQLite database")
	fetchCmd.Flags().Bool("strict", false, "exit non-zero when any reference fails")

	viper.BindPFlag("output_dir", fetchCmd.Flags().Lookup("output-dir"))
	viper.BindPFlag("mirror_base", fetchCmd.Flags().Lookup("mirror"))
	viper.BindPFlag("timeout", fetchCmd.Flags().Lookup("timeout"))
	viper.BindPFlag("write_metadata", fetchCmd.Flags().Lookup("metadata"))
	viper.BindPFlag("verify_pdf", fetchCmd.Flags().Lookup("verify"))
	viper.BindPFlag("ledger", fetchCmd.Flags().Lookup("ledger"))

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	refs := append([]string(nil), args...)
	cfg := fetchConfig()

	if path, _ := cmd.Flags().GetString("file"); path != "" {
		list, err := acquire.LoadReferences(path)
		if err != nil {
			return err
		}
		refs = append(refs, list.References...)
		if list.OutputDir != "" && !cmd.Flags().Changed("output-dir") {
			cfg.OutputDir = list.OutputDir
		}
	}
	if len(refs) == 0 {
		return fmt.Errorf("provide one or more paper references (titles, DOIs, or URLs) or --file")
	}

	opts := []acquire.Option{
		acquire.WithLogger(logger),
		acquire.WithOutput(cmd.OutOrStdout()),
	}
	if path := viper.GetString("ledger"); path != "" {
		store, err := ledger.Open(path)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, acquire.WithRecorder(store))
		fmt.Fprintf(cmd.ErrOrStderr(), "Recording run %s in %s\n", store.RunID(), path)
	}

	fetcher := acquire.New(nil, cfg, opts...)
	result := fetcher.DownloadPapers(cmd.Context(), refs, cfg.OutputDir)

	if strict, _ := cmd.Flags().GetBool("strict"); strict && result.HasFailures() {
		return fmt.Errorf("%d of %d reference(s) produced no PDF", result.Total()-result.Downloaded-result.Skipped, result.Total())
	}
	return nil
}
