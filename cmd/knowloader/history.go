package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/knowloader/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent download runs",
	Long: `History lists the most recent download runs recorded by the download
command, newest first. With --items, each run's files are listed too.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	historyCmd.Flags().Bool("items", false, "also list the files of each run")
	historyCmd.Flags().String("history-dir", "", "directory holding history.db (default ~/.config/knowloader)")
	viper.BindPFlag("history_dir", historyCmd.Flags().Lookup("history-dir"))

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	withItems, _ := cmd.Flags().GetBool("items")

	dir := viper.GetString("history_dir")
	if dir == "" {
		d, err := configDir()
		if err != nil {
			return err
		}
		dir = d
	}
	store, err := history.Open(dir)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No downloads recorded.")
		return nil
	}

	for _, r := range runs {
		if withItems {
			items, err := store.Items(cmd.Context(), r.ID)
			if err != nil {
				return err
			}
			r.Items = items
		}
		writeRun(cmd.OutOrStdout(), r)
	}
	return nil
}

func writeRun(w io.Writer, r history.Run) {
	status := "ok"
	if r.Error != "" {
		status = r.Error
	}
	title := r.Title
	if title == "" {
		title = r.SourceURL
	}
	fmt.Fprintf(w, "#%d  %s  [%s]  %s\n", r.ID, humanize.Time(r.StartedAt), r.Strategy, title)
	fmt.Fprintf(w, "    %d downloaded, %d skipped, %d failed of %d -> %s (%s)\n",
		r.Downloaded, r.Skipped, r.Failed, r.Requested, r.OutputDir, status)

	if len(r.Items) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, it := range r.Items {
		detail := humanize.Bytes(uint64(it.Bytes))
		if it.Error != "" {
			detail = it.Error
		}
		fmt.Fprintf(tw, "    %d\t%s\t%s\t%s\n", it.Position, it.Status, it.Name, detail)
	}
	tw.Flush()
}
