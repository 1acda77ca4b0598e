package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fundsight/pedocs/internal/model"
	"github.com/fundsight/pedocs/internal/store"
)

var (
	jobsStatus string
	jobsLimit  int
	jobsReset  bool
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect the processing ledger",
	Long:  "Lists ledger entries, one per ingested file. --reset requeues FLAGGED and ERROR jobs so the next process run retries them.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if jobsReset {
			n, err := st.ResetJobs(ctx, []model.JobStatus{model.JobFlagged, model.JobError})
			if err != nil {
				return err
			}
			fmt.Printf("Requeued %d jobs.\n", n)
			return nil
		}

		jobs, err := st.ListJobs(ctx, store.JobFilter{
			Status: model.JobStatus(jobsStatus),
			Limit:  jobsLimit,
		})
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Fprintln(os.Stderr, "No jobs found.")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STATUS\tUPDATED\tPATH\tDOC ID\tMESSAGE")
		for _, j := range jobs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				j.Status, j.UpdatedAt.Format("2006-01-02 15:04"), j.Path, j.DocID, j.Message)
		}
		return tw.Flush()
	},
}

func init() {
	jobsCmd.Flags().StringVar(&jobsStatus, "status", "", "filter by status (QUEUED, RUNNING, DONE, SKIPPED, FLAGGED, ERROR)")
	jobsCmd.Flags().IntVar(&jobsLimit, "limit", 50, "maximum jobs to list")
	jobsCmd.Flags().BoolVar(&jobsReset, "reset", false, "requeue flagged and errored jobs")
	rootCmd.AddCommand(jobsCmd)
}
