package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/user/trimcrop-cli/db"
	"github.com/user/trimcrop-cli/pkg/export"
	"github.com/user/trimcrop-cli/pkg/timeutil"
	"github.com/user/trimcrop-cli/submit"
)

var submissionsCmd = &cobra.Command{
	Use:     "submissions",
	Aliases: []string{"subs"},
	Short:   "Manage queued submissions",
	Long:    `List, inspect, export and submit the selections finalized in the editor.`,
}

var submissionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submissions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		e, err := openEnv("submissions")
		if err != nil {
			return err
		}
		defer e.Close()

		subs, err := db.SelectSubmissions(e.db, status)
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			fmt.Println("No submissions.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tStatus\tStart\tEnd\tLength\tRatio\tTitle")
		fmt.Fprintln(w, "--\t------\t-----\t---\t------\t-----\t-----")
		for _, s := range subs {
			title := s.Title
			if len(title) > 40 {
				title = title[:37] + "..."
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", s.ID, s.Status,
				timeutil.FormatTime(s.StartTime), timeutil.FormatTime(s.EndTime),
				timeutil.FormatTime(s.EndTime-s.StartTime), s.AspectRatio, title)
		}
		w.Flush()
		fmt.Printf("\nTotal: %d submission(s)\n", len(subs))
		return nil
	},
}

var submissionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one submission as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv("submissions")
		if err != nil {
			return err
		}
		defer e.Close()

		s, err := db.SelectSubmissionByID(e.db, id)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(submit.NewJob(*s), "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		if s.Error != "" {
			fmt.Fprintf(os.Stderr, "Last error: %s\n", s.Error)
		}
		return nil
	},
}

var submissionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv("submissions")
		if err != nil {
			return err
		}
		defer e.Close()

		if err := db.DeleteSubmission(e.db, id); err != nil {
			return err
		}
		fmt.Printf("Deleted submission #%d\n", id)
		return nil
	},
}

var submissionsMarkCmd = &cobra.Command{
	Use:   "mark <id> <pending|submitted|failed>",
	Short: "Change a submission's status",
	Long:  `Change a submission's status. Marking a failed submission pending queues it again.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		e, err := openEnv("submissions")
		if err != nil {
			return err
		}
		defer e.Close()

		if err := db.UpdateSubmissionStatus(e.db, id, args[1]); err != nil {
			return err
		}
		fmt.Printf("Submission #%d is now %s\n", id, args[1])
		return nil
	},
}

var submissionsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a report of submissions",
	Long: `Write a report of submissions as json, csv, md, html or pdf.

Without --out the report goes to stdout (except pdf, which is written to a
timestamped file in the current directory).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		formatName, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		if formatName == "" && out != "" {
			formatName = strings.TrimPrefix(filepath.Ext(out), ".")
		}
		if formatName == "" {
			formatName = string(export.FormatJSON)
		}
		format, err := export.ParseFormat(formatName)
		if err != nil {
			return err
		}

		e, err := openEnv("export")
		if err != nil {
			return err
		}
		defer e.Close()

		subs, err := db.SelectSubmissions(e.db, status)
		if err != nil {
			return err
		}

		if out == "" && format != export.FormatPDF {
			return export.Write(os.Stdout, subs, format)
		}
		if out == "" {
			out = export.BuildReportPath(".", status, time.Now(), format)
		}
		if err := export.WriteFile(out, subs, format); err != nil {
			return err
		}
		fmt.Printf("Wrote %d submission(s) to %s\n", len(subs), out)
		return nil
	},
}

var submissionsSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Send pending submissions to the job command",
	Long: `Run the configured submit command once per pending submission, with the
submission's JSON on stdin. A zero exit marks it submitted; anything else marks
it failed with the command's output. With --watch, keep running and submit new
selections as they are queued.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		e, err := openEnv("submit")
		if err != nil {
			return err
		}
		defer e.Close()

		p := &submit.Processor{
			DB:       e.db,
			Command:  e.cfg.Submit.Command,
			Interval: e.cfg.Submit.PollInterval,
			Logger:   e.logger,
		}
		if len(p.Command) == 0 {
			return fmt.Errorf("%w: set submit.command in %s", submit.ErrNoCommand, resolvedConfigPath())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		if watch {
			fmt.Println("Submitting queued selections. Press Ctrl+C to stop.")
			p.Start(ctx)
			<-ctx.Done()
			return nil
		}

		submitted, failed, err := p.Drain(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		fmt.Printf("Submitted %d, failed %d\n", submitted, failed)
		if failed > 0 {
			fmt.Println("See 'trimcrop submissions list --status failed' for details.")
		}
		return nil
	},
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid submission id %q", s)
	}
	return id, nil
}

func init() {
	submissionsListCmd.Flags().StringP("status", "s", "", "only show this status (pending, submitted, failed)")
	submissionsExportCmd.Flags().StringP("status", "s", "", "only export this status")
	submissionsExportCmd.Flags().StringP("format", "f", "", "report format (json, csv, md, html, pdf); defaults to the --out extension")
	submissionsExportCmd.Flags().StringP("out", "o", "", "output file")
	submissionsSubmitCmd.Flags().BoolP("watch", "w", false, "keep submitting as new selections are queued")

	submissionsCmd.AddCommand(submissionsListCmd)
	submissionsCmd.AddCommand(submissionsShowCmd)
	submissionsCmd.AddCommand(submissionsDeleteCmd)
	submissionsCmd.AddCommand(submissionsMarkCmd)
	submissionsCmd.AddCommand(submissionsExportCmd)
	submissionsCmd.AddCommand(submissionsSubmitCmd)
	rootCmd.AddCommand(submissionsCmd)
}
