package cmd

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/api"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/config"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/output"
	"github.com/sozialwelten/MastodonInstanceAnalyzer/internal/report"
)

var (
	reportToken         string
	reportOffline       bool
	reportNoCache       bool
	reportPageLimit     int
	reportTimelineLimit int
)

// reportCmd is the explicit form of the root invocation.
var reportCmd = &cobra.Command{
	Use:   "report <instance-url>",
	Short: "Generate an instance analysis report",
	Long: `Generate the full analysis report for a Mastodon instance.

Equivalent to invoking mastostat with the instance URL directly.

Examples:
  mastostat report https://mastodon.social
  mastostat report https://example.social --token $TOKEN --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addReportFlags(rootCmd.Flags())
	addReportFlags(reportCmd.Flags())
}

func addReportFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&reportToken, "token", "t", "", "Bearer token (admin scope unlocks account statistics)")
	fs.BoolVar(&reportOffline, "offline", false, "Render from cached snapshots instead of the network")
	fs.BoolVar(&reportNoCache, "no-cache", false, "Do not record fetched responses in the snapshot cache")
	fs.IntVar(&reportPageLimit, "page-limit", 0, "Account roster page size (default from config)")
	fs.IntVar(&reportTimelineLimit, "timeline-limit", 0, "Timeline sample size (default from config)")
}

// runReport is the root command: fetch everything, aggregate, render.
// Unreachable endpoints degrade their report sections and are logged to
// stderr; only invalid arguments or output file failures produce a non-zero
// exit.
func runReport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	instanceURL := args[0]

	log := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	format := outputFormat
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	token := reportToken
	if token == "" {
		token = cfg.API.Token
	}

	snapshots := openSnapshotCache(cfg, log)
	if reportNoCache && !reportOffline {
		if snapshots != nil {
			snapshots.Close()
		}
		snapshots = nil
	}
	if snapshots != nil {
		defer snapshots.Close()
	}

	client := api.NewClient(instanceURL, api.Options{
		Token:     token,
		Timeout:   time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		Logger:    log,
		Snapshots: snapshotStore(snapshots),
		Offline:   reportOffline,
	})

	gatherer := report.NewGatherer(client, log)
	gatherer.SetPageLimit(firstPositive(reportPageLimit, cfg.API.PageLimit))
	gatherer.SetTimelineLimit(firstPositive(reportTimelineLimit, cfg.API.TimelineLimit))

	result := gatherer.Gather(context.Background())

	w, closeOutput, err := output.Destination(outputPath)
	if err != nil {
		return err
	}

	return writeReport(w, closeOutput, f, result)
}

// writeReport renders the report to the destination in the selected format.
// A close failure on a file destination is a write failure and surfaces to
// the caller.
func writeReport(w io.Writer, closeOutput func() error, f output.Format, result *report.Report) error {
	var err error
	switch f {
	case output.FormatJSON:
		err = output.WriteJSON(w, result)
	default:
		err = output.WriteString(w, report.Text(result))
	}

	if cerr := closeOutput(); err == nil {
		err = cerr
	}
	return err
}

// firstPositive returns the first positive value, falling back to the last.
func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return values[len(values)-1]
}
