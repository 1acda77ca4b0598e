package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fundsight/pedocs/internal/pipeline"
)

var (
	processFundID     string
	processInvestorID string
	processJSON       bool
)

var processCmd = &cobra.Command{
	Use:   "process <path>",
	Short: "Process a document file or directory",
	Long:  "Runs each file through classification, extraction, validation, and storage. Files already processed (by content hash) are skipped.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		proc, engine, err := initProcessor(st)
		if err != nil {
			return err
		}
		proc.SetIdentity(processFundID, processInvestorID)

		outcomes, err := proc.ProcessPath(ctx, args[0])
		if err != nil {
			return err
		}

		if processJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(outcomes); err != nil {
				return err
			}
		} else {
			formatOutcomes(os.Stdout, outcomes)
		}

		engine.Usage().LogCost(cfg.Anthropic.Model, "process")
		return nil
	},
}

func formatOutcomes(w *os.File, outcomes []pipeline.Outcome) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATE\tTYPE\tCONFIDENCE\tSTORED\tPATH\tDOC ID")
	for _, o := range outcomes {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%t\t%s\t%s\n",
			o.State, o.DocType, o.OverallConfidence, o.Stored, o.Path, o.DocID)
		for _, iss := range o.Issues {
			fmt.Fprintf(tw, "\t%s\t%s\t\t\t\n", iss.Severity, iss.Message)
		}
		if o.Err != "" {
			fmt.Fprintf(tw, "\terror\t%s\t\t\t\n", o.Err)
		}
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	processCmd.Flags().StringVar(&processFundID, "fund", "", "fund ID to attribute extracted facts to")
	processCmd.Flags().StringVar(&processInvestorID, "investor", "", "investor ID to attribute extracted facts to")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "emit outcomes as JSON")
	rootCmd.AddCommand(processCmd)
}
