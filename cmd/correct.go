package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var correctLimit int

var correctCmd = &cobra.Command{
	Use:   "correct [doc-id field value]",
	Short: "Review and correct flagged documents",
	Long:  "With no arguments, lists documents flagged for review. With <doc-id> <field> <value>, applies a manual correction and re-runs validation and storage for that document.",
	Args:  cobra.MatchAll(cobra.MinimumNArgs(0), cobra.MaximumNArgs(3)),
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

		if len(args) == 0 {
			recs, err := st.ListFlagged(ctx, correctLimit)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(os.Stderr, "No documents awaiting review.")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DOC ID\tTYPE\tCONFIDENCE\tFILENAME\tISSUES")
			for _, r := range recs {
				issues := ""
				if r.Validation != nil {
					for _, e := range r.Validation.Errors {
						if issues != "" {
							issues += ","
						}
						issues += e.Code
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n",
					r.Meta.DocID, r.Meta.DocType, r.OverallConfidence, r.Meta.Filename, issues)
			}
			return tw.Flush()
		}

		if len(args) != 3 {
			return fmt.Errorf("correct takes either no arguments or exactly <doc-id> <field> <value>")
		}

		proc, _, err := initProcessor(st)
		if err != nil {
			return err
		}

		out, err := proc.Correct(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s (overall %.2f, stored %t)\n",
			out.DocID, out.State, out.OverallConfidence, out.Stored)
		return nil
	},
}

func init() {
	correctCmd.Flags().IntVar(&correctLimit, "limit", 20, "maximum flagged documents to list")
	rootCmd.AddCommand(correctCmd)
}
