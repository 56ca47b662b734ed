package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gosigtest/adapters/report"
	"gosigtest/adapters/schedulefile"
	"gosigtest/adapters/tracefile"
	"gosigtest/app"
	"gosigtest/domain/core"
	"gosigtest/domain/system"
)

// descriptorFlags binds the flags that describe one system.
type descriptorFlags struct {
	nick, disp, path, testCorpus, trainCorpus string
	opts                                      []string
}

func (f *descriptorFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nick, "nick", "", "Short system name (default: guess file name)")
	cmd.Flags().StringVar(&f.disp, "disp", "", "Display name")
	cmd.Flags().StringVar(&f.path, "path", "", "Experiment path, dot or slash separated (default: nick)")
	cmd.Flags().StringVar(&f.testCorpus, "test-corpus", "", "Test corpus name")
	cmd.Flags().StringVar(&f.trainCorpus, "train-corpus", "", "Training corpus name")
	cmd.Flags().StringArrayVar(&f.opts, "opt", nil, "System option key=value (repeatable)")
}

func (f *descriptorFlags) descriptor(gold, guess string) (system.Descriptor, error) {
	opts, err := system.ParseOpts(f.opts)
	if err != nil {
		return system.Descriptor{}, err
	}
	nick := f.nick
	if nick == "" {
		nick = strings.TrimSuffix(filepath.Base(guess), filepath.Ext(guess))
	}
	path := system.ParsePath(f.path)
	if path == nil {
		path = []string{nick}
	}
	return system.Descriptor{
		Path:        path,
		Nick:        nick,
		Disp:        f.disp,
		Gold:        gold,
		TestCorpus:  f.testCorpus,
		TrainCorpus: f.trainCorpus,
		Opts:        opts,
	}, nil
}

func seedFlag(cmd *cobra.Command, e *env, seed int64) *int64 {
	if cmd.Flags().Changed("seed") {
		return &seed
	}
	return e.cfg().Bootstrap.Seed
}

func iterationsFlag(cmd *cobra.Command, e *env, n int) int {
	if cmd.Flags().Changed("iterations") {
		return n
	}
	return e.cfg().Bootstrap.Iterations
}

func thresholdFlag(cmd *cobra.Command, e *env, t float64) float64 {
	if cmd.Flags().Changed("threshold") {
		return t
	}
	return e.cfg().Significance.Threshold
}

// comparisonID maps the --id flag to a comparison; empty selects the latest.
func comparisonID(id string) (core.ComparisonID, error) {
	if id == "" {
		return "", nil
	}
	return core.ParseComparisonID(id)
}

func newCreateScheduleCmd(e *env) *cobra.Command {
	var (
		iterations int
		seed       int64
	)
	cmd := &cobra.Command{
		Use:   "create-schedule <gold> <schedule-out>",
		Short: "Draw a bootstrap schedule sized to the gold file",
		Long: `Draw a bootstrap schedule: one resample of line indices per iteration,
sized to the number of lines of the gold file. Every system of a comparison
must be resampled with the same schedule.

Example: sigtest create-schedule test.key sched.ndjson --iterations 1000 --seed 42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.service(cmd.Context(), false, false)
			if err != nil {
				return err
			}
			sched, err := svc.CreateSchedule(cmd.Context(), args[0], iterationsFlag(cmd, e, iterations), seedFlag(cmd, e, seed))
			if err != nil {
				return err
			}
			if err := schedulefile.Save(args[1], sched); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sched.Hash())
			return nil
		},
	}
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Number of resamples (default from configuration)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for a reproducible schedule")
	return cmd
}

func newResampleCmd(e *env) *cobra.Command {
	var flags descriptorFlags
	cmd := &cobra.Command{
		Use:   "resample <schedule> <gold> <guess> <trace-out>",
		Short: "Score one system on the original corpus and every resample",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			sched, err := schedulefile.Load(args[0])
			if err != nil {
				return err
			}
			d, err := flags.descriptor(args[1], args[2])
			if err != nil {
				return err
			}
			svc, err := e.service(cmd.Context(), true, false)
			if err != nil {
				return err
			}
			rec, err := svc.ResampleSystem(cmd.Context(), d, args[1], args[2], sched)
			if err != nil {
				return err
			}
			return tracefile.Write(args[3], rec)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newCompareCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "compare-resampled <trace>...",
		Short: "Test every pair of resampled systems and store the matrix",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traces, err := tracefile.ReadAll(args)
			if err != nil {
				return err
			}
			svc, err := e.service(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			rec, err := svc.CompareTraces(cmd.Context(), traces)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.ID)
			return nil
		},
	}
}

func newRunCmd(e *env) *cobra.Command {
	var (
		iterations int
		seed       int64
		parallel   int
		traceDir   string
	)
	cmd := &cobra.Command{
		Use:   "run <gold> <guess>...",
		Short: "Schedule, resample and compare several systems in one go",
		Long: `Run the whole pipeline: draw one schedule for the gold file, resample
every guess file against it (up to --parallel at once), and store the
comparison. System nicks are taken from the guess file names.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.service(cmd.Context(), true, true)
			if err != nil {
				return err
			}
			exp := app.Experiment{
				Gold:       args[0],
				Iterations: iterationsFlag(cmd, e, iterations),
				Seed:       seedFlag(cmd, e, seed),
			}
			var none descriptorFlags
			for _, guess := range args[1:] {
				d, err := none.descriptor(args[0], guess)
				if err != nil {
					return err
				}
				exp.Systems = append(exp.Systems, app.SystemRun{System: d, Guess: guess})
			}

			res, err := app.NewStageRunner(svc, parallel).Run(cmd.Context(), exp)
			if err != nil {
				return err
			}
			if traceDir != "" {
				for i, name := range traceFileNames(res.Traces) {
					if err := tracefile.Write(filepath.Join(traceDir, name), res.Traces[i]); err != nil {
						return err
					}
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Comparison.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Number of resamples (default from configuration)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for a reproducible schedule")
	cmd.Flags().IntVar(&parallel, "parallel", 1, "Systems resampled concurrently")
	cmd.Flags().StringVar(&traceDir, "trace-dir", "", "Also write each trace to this directory")
	return cmd
}

// traceFileNames names one trace file per record after its nick. A nick
// seen before gets a numeric suffix so no trace overwrites another.
func traceFileNames(recs []*tracefile.Record) []string {
	names := make([]string, len(recs))
	used := make(map[string]bool, len(recs))
	for i, rec := range recs {
		name := rec.System.Nick + ".json"
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d.json", rec.System.Nick, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func newHasseCmd(e *env) *cobra.Command {
	var (
		id        string
		threshold float64
		out       string
	)
	cmd := &cobra.Command{
		Use:   "hasse",
		Short: "Render the Hasse diagram of significant differences as DOT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := comparisonID(id)
			if err != nil {
				return err
			}
			svc, err := e.service(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			res, err := svc.Hasse(cmd.Context(), cid, thresholdFlag(cmd, e, threshold))
			if err != nil {
				return err
			}
			nodes := make([]report.Node, len(res.Comparison.Systems))
			for i, d := range res.Comparison.Systems {
				nodes[i] = report.Node{Label: d.Label(), Score: res.Comparison.OrigScores[i]}
			}

			if out == "" {
				return report.WriteHasseDOT(cmd.OutOrStdout(), res.Reduction.Graph, nodes)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.WriteHasseDOT(f, res.Reduction.Graph, nodes); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Comparison id (default: latest)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Significance threshold (default from configuration)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write DOT to this file instead of stdout")
	return cmd
}

func newCLDCmd(e *env) *cobra.Command {
	var (
		id        string
		threshold float64
		xlsx      string
		html      string
		list      bool
	)
	cmd := &cobra.Command{
		Use:   "cld",
		Short: "Compute the compact letter display of a comparison",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := comparisonID(id)
			if err != nil {
				return err
			}
			svc, err := e.service(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			if list {
				recs, err := svc.Labelings(cmd.Context(), cid)
				if err != nil {
					return err
				}
				for _, rec := range recs {
					md, err := report.LabelingMarkdown(rec)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s (threshold %g, %s)\n\n%s\n", rec.ID, rec.Threshold, rec.CreatedAt, md)
				}
				return nil
			}
			rec, err := svc.CompactLetters(cmd.Context(), cid, thresholdFlag(cmd, e, threshold))
			if err != nil {
				return err
			}
			if xlsx != "" {
				if err := report.WriteLabelingXLSX(xlsx, rec); err != nil {
					return err
				}
			}
			if html != "" {
				page, err := report.LabelingHTML(rec)
				if err != nil {
					return err
				}
				if err := os.WriteFile(html, page, 0o644); err != nil {
					return err
				}
			}
			md, err := report.LabelingMarkdown(rec)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Comparison id (default: latest)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Significance threshold (default from configuration)")
	cmd.Flags().StringVar(&xlsx, "xlsx", "", "Also write the table as a spreadsheet")
	cmd.Flags().StringVar(&html, "html", "", "Also write the table as HTML")
	cmd.Flags().BoolVar(&list, "list", false, "Print the letter displays already stored for the comparison instead")
	return cmd
}

func newNearBestCmd(e *env) *cobra.Command {
	var (
		id        string
		threshold float64
		margin    float64
	)
	cmd := &cobra.Command{
		Use:   "nsd-from-best",
		Short: "List the best systems and those not significantly different from them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("margin") {
				margin = e.cfg().Significance.Margin
			}
			cid, err := comparisonID(id)
			if err != nil {
				return err
			}
			svc, err := e.service(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			rec, err := svc.NearBest(cmd.Context(), cid, thresholdFlag(cmd, e, threshold), margin)
			if err != nil {
				return err
			}
			return writeJSON(cmd, rec)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Comparison id (default: latest)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Significance threshold (default from configuration)")
	cmd.Flags().Float64Var(&margin, "margin", 0, "Score margin for the best set (default from configuration)")
	return cmd
}

func newIntersectCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "intersect-nsds",
		Short: "Count how often each system is near-best across stored results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := e.service(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			counts, err := svc.IntersectHighlights(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, c := range counts {
				fmt.Fprintf(w, "%d\t%s\t%s\n", c.Count, c.System.Label(), c.System.Key())
			}
			return nil
		},
	}
}

func newSweepCmd(e *env) *cobra.Command {
	var (
		id         string
		thresholds []float64
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Summarize a comparison at several significance thresholds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := comparisonID(id)
			if err != nil {
				return err
			}
			svc, err := e.service(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			points, err := svc.SweepThresholds(cmd.Context(), cid, thresholds)
			if err != nil {
				return err
			}
			return writeJSON(cmd, points)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Comparison id (default: latest)")
	cmd.Flags().Float64SliceVar(&thresholds, "thresholds", []float64{0.001, 0.01, 0.05, 0.1}, "Thresholds to evaluate")
	return cmd
}

func newDumpCmd(e *env) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the stored p-value matrix, scores and systems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := comparisonID(id)
			if err != nil {
				return err
			}
			svc, err := e.service(cmd.Context(), false, true)
			if err != nil {
				return err
			}
			return svc.Dump(cmd.Context(), cid, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Comparison id (default: latest)")
	return cmd
}

func newDescribeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <trace>...",
		Short: "Print the resampled score distribution of each trace",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traces, err := tracefile.ReadAll(args)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, rec := range traces {
				s := rec.Summary
				if s == nil {
					fmt.Fprintf(w, "%s\toriginal=%.4f\n", rec.System.Label(), rec.Original)
					continue
				}
				fmt.Fprintf(w, "%s\toriginal=%.4f\tmean=%.4f\tsd=%.4f\t%.0f%% [%.4f, %.4f]\n",
					rec.System.Label(), rec.Original, s.Mean, s.StdDev, s.Confidence*100, s.CILow, s.CIHigh)
			}
			return nil
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
