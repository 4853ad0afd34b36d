package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/idea-research/internal/model"
	"github.com/sells-group/idea-research/internal/monitoring"
	"github.com/sells-group/idea-research/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect research run history",
	Long:  "Commands for listing, viewing, and summarizing research runs.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List research runs",
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

		state, _ := cmd.Flags().GetString("state")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		runs, err := st.ListRuns(ctx, store.RunFilter{
			State:  model.PipelineState(state),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
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

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		format, _ := cmd.Flags().GetString("format")
		return writeRun(os.Stdout, run, format)
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate run statistics",
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

		lookback, _ := cmd.Flags().GetInt("lookback")
		collector := monitoring.NewCollector(st, monitoring.WithStallAfter(cfg.Monitoring.StallAfter()))
		snap, err := collector.Collect(ctx, lookback)
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		formatRunStats(os.Stdout, snap)
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("state", "", "filter by pipeline state (scraping, complete, failed, ...)")
	runsListCmd.Flags().Int("limit", 50, "max number of runs to display")
	runsListCmd.Flags().Int("offset", 0, "number of runs to skip")

	runsShowCmd.Flags().String("format", "json", "output format: json or yaml")

	runsStatsCmd.Flags().Int("lookback", 24, "window in hours (0 for all runs)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

// writeRun encodes run to out as JSON or YAML.
func writeRun(out io.Writer, run *model.Run, format string) error {
	switch format {
	case "json", "":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(run), "encode run")
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(run); err != nil {
			return eris.Wrap(err, "encode run")
		}
		return eris.Wrap(enc.Close(), "encode run")
	default:
		return eris.Errorf("unknown format %q", format)
	}
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tIDEA\tSTATE\tPROGRESS\tRATING\tPARTIAL\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t----\t-----\t--------\t------\t-------\t-------\t--------")

	for _, r := range runs {
		dur := r.UpdatedAt.Sub(r.CreatedAt).Round(time.Second).String()

		name := r.Idea.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}

		rating, partial := "", ""
		if r.Result != nil {
			if r.Result.Assessment != nil {
				rating = r.Result.Assessment.Rating
			}
			if r.Result.Partial {
				partial = "yes"
			}
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			name,
			r.State,
			r.Progress,
			rating,
			partial,
			r.CreatedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// formatRunStats writes aggregate stats to w.
func formatRunStats(out io.Writer, s *monitoring.MetricsSnapshot) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total runs:\t%d\n", s.RunsTotal)
	_, _ = fmt.Fprintf(w, "Complete:\t%d\n", s.RunsComplete)
	_, _ = fmt.Fprintf(w, "  Partial:\t%d\n", s.RunsPartial)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", s.RunsFailed)
	_, _ = fmt.Fprintf(w, "In progress:\t%d\n", s.RunsInProgress)
	if s.RunsStalled > 0 {
		_, _ = fmt.Fprintf(w, "  Stalled:\t%d\n", s.RunsStalled)
	}
	_, _ = fmt.Fprintf(w, "Failure rate:\t%.1f%%\n", s.FailRate*100)
	if s.AvgScore > 0 {
		_, _ = fmt.Fprintf(w, "Avg score:\t%.2f\n", s.AvgScore)
	}
	if s.AvgDurationMs > 0 {
		_, _ = fmt.Fprintf(w, "Avg duration:\t%.1fs\n", float64(s.AvgDurationMs)/1000)
	}
	ratings := make([]string, 0, len(s.Ratings))
	for r := range s.Ratings {
		ratings = append(ratings, r)
	}
	sort.Strings(ratings)
	if len(ratings) > 0 {
		_, _ = fmt.Fprintln(w, "Ratings:")
	}
	for _, r := range ratings {
		_, _ = fmt.Fprintf(w, "  %s:\t%d\n", r, s.Ratings[r])
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
