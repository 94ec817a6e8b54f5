package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bft-labs/jointreplay"
	"github.com/bft-labs/jointreplay/internal/adapters/fs"
	"github.com/bft-labs/jointreplay/internal/app"
	"github.com/bft-labs/jointreplay/internal/ports"
)

func (c *cli) infoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print timeline summary and the per-part DOF table",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open()
			if err != nil {
				return err
			}
			defer r.Close()

			info := r.Info()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:         %s\n", c.cfg.DataFile)
			fmt.Fprintf(out, "Entries:      %d (downsample %d)\n", info.TotalEntries, r.Timeline().DownsampleFactor())
			fmt.Fprintf(out, "Sequence ids: %d .. %d\n", info.MinSequenceID, info.MaxSequenceID)
			fmt.Fprintf(out, "Duration:     %.3fs\n", info.DurationSeconds)
			fmt.Fprintf(out, "Cadence:      %s per frame\n", r.Controller().Interval())

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\nPART\tDOF\tURDF")
			for _, part := range r.Timeline().PartNames() {
				urdf := "-"
				if pm, ok := r.Mapper().Lookup(part); ok {
					urdf = pm.URDF
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\n", part, r.Timeline().PartDOF(part), urdf)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check recorded parts against the mapping table",
		Long:  "Check recorded parts against the mapping table. Findings are reported but never fail the command.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.open()
			if err != nil {
				return err
			}
			defer r.Close()

			report := r.Validate()
			out := cmd.OutOrStdout()
			if report.OK() {
				fmt.Fprintln(out, "all recorded parts match the mapping table")
				return nil
			}
			for _, f := range report.Findings() {
				fmt.Fprintf(out, "%-13s %s\n", f.Kind, f)
			}
			return nil
		},
	}
}

func (c *cli) analyzeCommand() *cobra.Command {
	var (
		threshold float64
		outPath   string
		compare   string
		top       int
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Report per-joint movement statistics",
		Long: "Report per-joint movement statistics. Analysis runs at full resolution " +
			"unless --downsample is given explicitly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			downsample := 1
			if c.changed["downsample"] {
				downsample = c.cfg.Downsample
			}

			r, err := c.openWith(c.cfg.DataFile, downsample)
			if err != nil {
				return err
			}
			defer r.Close()
			report := r.Analyze(threshold)

			var cmp *app.Comparison
			if compare != "" {
				other, err := c.openWith(compare, downsample)
				if err != nil {
					return err
				}
				defer other.Close()
				result := report.Compare(other.Analyze(threshold))
				cmp = &result
			}

			asJSON := strings.EqualFold(filepath.Ext(outPath), ".json")
			data, err := renderAnalysis(report, cmp, top, asJSON)
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			var w ports.ReportWriter = fs.NewReportFile(outPath)
			if err := w.Write(cmd.Context(), data); err != nil {
				return err
			}
			c.log.Info().Str("path", outPath).Msg("report saved")
			return nil
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", app.DefaultMovementThreshold, "range in radians above which a joint counts as active")
	cmd.Flags().StringVar(&outPath, "out", "", "write the report to this file (.json for JSON)")
	cmd.Flags().StringVar(&compare, "compare", "", "second data file to compare part structure with")
	cmd.Flags().IntVar(&top, "top", 5, "number of most active joints to list")
	return cmd
}

// analysisOutput is the JSON shape of analyze: the report plus the optional
// comparison in one document.
type analysisOutput struct {
	jointreplay.AnalysisReport
	MostActive []app.ActiveJoint `json:"most_active"`
	Comparison *app.Comparison   `json:"comparison,omitempty"`
}

func renderAnalysis(report jointreplay.AnalysisReport, cmp *app.Comparison, top int, asJSON bool) ([]byte, error) {
	if asJSON {
		data, err := json.MarshalIndent(analysisOutput{
			AnalysisReport: report,
			MostActive:     report.MostActive(top),
			Comparison:     cmp,
		}, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}

	var sb strings.Builder
	if err := report.WriteText(&sb); err != nil {
		return nil, err
	}
	writeMostActive(&sb, report, top)
	if cmp != nil {
		writeComparison(&sb, *cmp)
	}
	return []byte(sb.String()), nil
}

func writeMostActive(sb *strings.Builder, report jointreplay.AnalysisReport, n int) {
	active := report.MostActive(n)
	if len(active) == 0 {
		return
	}
	fmt.Fprintln(sb, "\nMOST ACTIVE JOINTS")
	for i, j := range active {
		fmt.Fprintf(sb, "   %d. %s.%s: %.4f rad total movement\n", i+1, j.Part, j.Joint, j.TotalMovement)
	}
}

func writeComparison(sb *strings.Builder, cmp app.Comparison) {
	fmt.Fprintf(sb, "\nCOMPARISON %s vs %s\n", cmp.Left, cmp.Right)
	if len(cmp.Differences) == 0 {
		fmt.Fprintln(sb, "   files have identical structure")
		return
	}
	for _, d := range cmp.Differences {
		fmt.Fprintf(sb, "   %s: %s - left: %d, right: %d\n", d.Part, d.Kind, d.Left, d.Right)
	}
}

func (c *cli) playCommand() *cobra.Command {
	var fromSequence int64

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the timeline headless, logging every frame at debug level",
		RunE: func(cmd *cobra.Command, args []string) error {
			finished := make(chan struct{}, 1)

			r, err := c.open(
				jointreplay.WithUpdateHandler(func(f jointreplay.Frame) {
					c.log.Debug().
						Int("index", f.Index).
						Int64("sequence_id", f.SequenceID).
						Interface("joints", f.Joints).
						Msg("frame")
				}),
				jointreplay.WithStateHandler(func(prev, cur jointreplay.State, reason string) {
					if cur == jointreplay.StatePaused && reason == app.ReasonEndOfTimeline {
						select {
						case finished <- struct{}{}:
						default:
						}
					}
				}),
			)
			if err != nil {
				return err
			}
			defer r.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := r.Start(ctx); err != nil {
				return err
			}
			if cmd.Flags().Changed("from-sequence") {
				if err := r.Controller().GotoSequenceID(fromSequence); err != nil {
					return err
				}
			}
			if err := r.Controller().Play(); err != nil {
				return err
			}

			select {
			case <-finished:
				c.log.Info().Msg("playback finished")
			case <-ctx.Done():
				c.log.Info().Msg("received signal, stopping...")
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&fromSequence, "from-sequence", 0, "start playback at this sequence id")
	return cmd
}
