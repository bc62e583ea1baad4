package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/knowloader/internal/history"
	"github.com/pdiddy/knowloader/internal/httputil"
	"github.com/pdiddy/knowloader/internal/knows"
	"github.com/pdiddy/knowloader/internal/settings"
	"github.com/pdiddy/knowloader/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "knowloader/0.2"
)

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Download the PDFs of a know into a directory",
	Long: `Download resolves a Knowunity know URL to its PDF parts and writes them
to the output directory. Without a URL argument it prompts for one.

The api strategy (default) reads the know's title and parts from the
Knowunity API and names files "<title>.pdf" or "<title>_<n>.pdf". The
scrape strategy collects the PDF links embedded in the page, names files
after the link, and skips files that already exist.

The output directory defaults to the last one used successfully.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDownload,
}

func init() {
	f := downloadCmd.Flags()
	f.StringP("output", "o", "", "output directory (must exist)")
	f.String("strategy", "api", "resolution strategy: api or scrape")
	f.Duration("timeout", defaultTimeout, "per-request HTTP timeout")
	f.String("user-agent", defaultUserAgent, "User-Agent header for all requests")
	f.String("api-base", "", "override the metadata API base URL")
	f.String("content-base", "", "override the content host base URL used by scrape")
	f.Bool("no-history", false, "do not record this run in the download history")

	viper.BindPFlag("output", f.Lookup("output"))
	viper.BindPFlag("strategy", f.Lookup("strategy"))
	viper.BindPFlag("timeout", f.Lookup("timeout"))
	viper.BindPFlag("user_agent", f.Lookup("user-agent"))
	viper.BindPFlag("api_base", f.Lookup("api-base"))
	viper.BindPFlag("content_base", f.Lookup("content-base"))
	viper.BindPFlag("no_history", f.Lookup("no-history"))

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := log.FromContext(ctx)

	source, err := readSource(args, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	strategy, err := knows.ParseStrategy(viper.GetString("strategy"))
	if err != nil {
		return err
	}

	settingsPath, err := settings.DefaultPath()
	if err != nil {
		return err
	}
	saved, err := settings.Load(settingsPath)
	if err != nil {
		logger.Warn("ignoring settings", "err", err)
	}

	cfg := downloadConfig(saved)
	client := httputil.NewClient(cfg.Timeout)
	pipeline, err := knows.NewPipeline(client, cfg.HTTPConfig, cfg.ProviderConfig)
	if err != nil {
		return err
	}

	req := knows.Request{SourceURL: source, OutputDir: cfg.OutputDir, Strategy: strategy}
	started := time.Now()
	out, runErr := pipeline.Run(ctx, req)

	for _, item := range out.Batch.Items {
		switch {
		case item.Failed():
			logger.Debug("failed", "file", item.Name, "url", item.URL, "err", item.Err)
		case item.Skipped:
			logger.Debug("skipped", "file", item.Name)
		default:
			logger.Debug("downloaded", "file", item.Name, "size", humanize.Bytes(uint64(item.Bytes)))
		}
	}
	if runErr != nil {
		logger.Debug("run failed", "err", runErr)
	}

	recordHistory(cmd, started, req, out, runErr)

	if runErr != nil {
		return errors.New(describe(runErr))
	}

	if abs, err := filepath.Abs(cfg.OutputDir); err == nil {
		saved.LastOutputDir = abs
	}
	if err := settings.Save(settingsPath, saved); err != nil {
		logger.Warn("could not save settings", "err", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), summary(out, cfg.OutputDir))
	return nil
}

// downloadConfig assembles the run configuration from viper, falling
// back to the saved output directory.
func downloadConfig(saved settings.Settings) types.DownloadConfig {
	cfg := types.DownloadConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		ProviderConfig: types.DefaultProviderConfig(),
		OutputDir:      viper.GetString("output"),
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if v := viper.GetString("api_base"); v != "" {
		cfg.APIBase = v
	}
	if v := viper.GetString("content_base"); v != "" {
		cfg.ContentBase = v
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = saved.LastOutputDir
	}
	return cfg
}

// readSource returns the URL argument, or prompts for one on in.
func readSource(args []string, in io.Reader, prompt io.Writer) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}
	fmt.Fprint(prompt, "URL: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading URL: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func recordHistory(cmd *cobra.Command, started time.Time, req knows.Request, out knows.Outcome, runErr error) {
	if viper.GetBool("no_history") {
		return
	}
	logger := log.FromContext(cmd.Context())

	dir := viper.GetString("history_dir")
	if dir == "" {
		d, err := configDir()
		if err != nil {
			logger.Warn("history disabled", "err", err)
			return
		}
		dir = d
	}
	store, err := history.Open(dir)
	if err != nil {
		logger.Warn("history disabled", "err", err)
		return
	}
	defer store.Close()

	// An interrupted run is still recorded.
	ctx := context.WithoutCancel(cmd.Context())
	if _, err := store.Record(ctx, history.NewRun(started, req, out, runErr)); err != nil {
		logger.Warn("could not record history", "err", err)
	}
}

// describe maps a pipeline error to the single status line shown to the
// user.
func describe(err error) string {
	var incomplete *knows.BatchIncompleteError
	switch {
	case errors.As(err, &incomplete):
		return fmt.Sprintf("download incomplete: %d of %d files failed", incomplete.Failed, incomplete.Total)
	case errors.Is(err, knows.ErrPrecondition):
		return err.Error()
	case errors.Is(err, knows.ErrInvalidReference):
		return "invalid URL"
	case errors.Is(err, knows.ErrMetadataUnavailable):
		return "failed to retrieve know data"
	default:
		return err.Error()
	}
}

func summary(out knows.Outcome, dir string) string {
	b := out.Batch
	msg := fmt.Sprintf("Download complete: %d downloaded", b.Downloaded)
	if b.Skipped > 0 {
		msg += fmt.Sprintf(", %d already present", b.Skipped)
	}
	return fmt.Sprintf("%s (%s) in %s", msg, humanize.Bytes(uint64(b.Bytes())), dir)
}
