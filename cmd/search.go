package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	searchK    int
	searchType string
	searchFund string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Semantic search over indexed documents",
	Long:  "Searches the embedded vector index populated during processing. Requires vector.enabled.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if !cfg.Vector.Enabled {
			return eris.New("vector index is disabled (set PEDOCS_VECTOR_ENABLED=true)")
		}
		index, err := initVector()
		if err != nil {
			return err
		}

		filters := map[string]string{}
		if searchType != "" {
			filters["doc_type"] = searchType
		}
		if searchFund != "" {
			filters["fund_id"] = searchFund
		}

		results, err := index.Search(ctx, strings.Join(args, " "), searchK, filters)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(os.Stderr, "No matches.")
			return nil
		}

		for i, r := range results {
			fmt.Printf("%d. [%.3f] %s (%s)\n", i+1, r.Score, r.Metadata["filename"], r.Metadata["doc_type"])
			snippet := r.Content
			if len(snippet) > 240 {
				snippet = snippet[:240] + "..."
			}
			fmt.Printf("   %s\n\n", snippet)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchK, "k", 5, "number of results")
	searchCmd.Flags().StringVar(&searchType, "type", "", "filter by document type")
	searchCmd.Flags().StringVar(&searchFund, "fund", "", "filter by fund ID")
	rootCmd.AddCommand(searchCmd)
}
