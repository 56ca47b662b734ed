package app

import (
	"context"
	"fmt"
	"io"

	"gosigtest/adapters/tracefile"
	"gosigtest/domain/bootstrap"
	"gosigtest/domain/cld"
	"gosigtest/domain/core"
	"gosigtest/domain/pairwise"
	"gosigtest/domain/results"
	"gosigtest/domain/schedule"
	"gosigtest/domain/siggraph"
	"gosigtest/domain/system"
	"gosigtest/internal"
	"gosigtest/internal/errors"
	"gosigtest/ports"
	"gosigtest/ports/store"
)

// SignificanceService runs the significance workflow: draw a schedule,
// resample each system against it, compare the traces, and derive the
// Hasse diagram, letter display and near-best set from a stored comparison.
type SignificanceService struct {
	generator    *schedule.Generator
	bootstrapper *bootstrap.Bootstrapper
	store        store.ResultStore
	builderOpts  []pairwise.BuilderOption
	logger       *internal.Logger
}

// ServiceOption configures a SignificanceService.
type ServiceOption func(*SignificanceService)

// WithLogger replaces the default logger.
func WithLogger(l *internal.Logger) ServiceOption {
	return func(s *SignificanceService) { s.logger = l }
}

// WithMatrixOptions passes options to the comparison matrix builder.
func WithMatrixOptions(opts ...pairwise.BuilderOption) ServiceOption {
	return func(s *SignificanceService) { s.builderOpts = append(s.builderOpts, opts...) }
}

// WithBootstrapper replaces the bootstrapper built from the scorer.
func WithBootstrapper(b *bootstrap.Bootstrapper) ServiceOption {
	return func(s *SignificanceService) { s.bootstrapper = b }
}

// NewSignificanceService creates the service. scorer may be nil when the
// caller never resamples; rs may be nil when nothing is persisted.
func NewSignificanceService(rng ports.RNGPort, scorer ports.Scorer, rs store.ResultStore, opts ...ServiceOption) *SignificanceService {
	s := &SignificanceService{
		generator: schedule.NewGenerator(rng),
		store:     rs,
		logger:    internal.DefaultLogger.WithPrefix("sigtest"),
	}
	if scorer != nil {
		s.bootstrapper = bootstrap.NewBootstrapper(scorer)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSchedule draws a schedule sized to the gold file's line count.
func (s *SignificanceService) CreateSchedule(ctx context.Context, goldPath string, iterations int, seed *int64) (schedule.Schedule, error) {
	size, err := bootstrap.CorpusSize(goldPath)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	sched, err := s.generator.Create(ctx, size, iterations, seed)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	s.logger.Info("created schedule of %d resamples over %d lines (hash %s)", sched.Len(), size, sched.Hash().Short())
	return sched, nil
}

// ResampleSystem scores one system on the original corpus and on every
// resample of sched. A scorer failure aborts this system only.
func (s *SignificanceService) ResampleSystem(ctx context.Context, d system.Descriptor, goldPath, guessPath string, sched schedule.Schedule) (*tracefile.Record, error) {
	if s.bootstrapper == nil {
		return nil, errors.ConfigInvalid("no scorer configured")
	}
	if err := d.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeValidationError, err)
	}
	if err := sched.Validate(); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	s.logger.Debug("resampling %s over %d iterations", d.Label(), sched.Len())
	trace, err := s.bootstrapper.Resample(ctx, goldPath, guessPath, sched)
	if err != nil {
		if core.IsScorerError(err) {
			return nil, errors.ScorerError(d.Label(), err)
		}
		if core.IsContractError(err) {
			return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("resampling %s: %w", d.Label(), err))
		}
		return nil, errors.Wrapf(err, "resampling %s", d.Label())
	}

	rec, err := tracefile.NewRecord(d, sched.Hash(), trace)
	if err != nil {
		return nil, errors.Wrapf(err, "summarizing %s", d.Label())
	}
	s.logger.Info("%s: original %.4f, resampled mean %.4f [%.4f, %.4f]",
		d.Label(), trace.Original, rec.Summary.Mean, rec.Summary.CILow, rec.Summary.CIHigh)
	return rec, nil
}

// CompareTraces builds the comparison matrix over traces (system index
// order = slice order) and stores the resulting record.
func (s *SignificanceService) CompareTraces(ctx context.Context, traces []*tracefile.Record) (*results.ComparisonRecord, error) {
	if len(traces) == 0 {
		return nil, errors.InvalidInput("at least one trace is required")
	}
	hash := traces[0].ScheduleHash
	scoreTraces := make([]bootstrap.ScoreTrace, len(traces))
	scores := make([]float64, len(traces))
	systems := make([]system.Descriptor, len(traces))
	for i, t := range traces {
		if t.ScheduleHash != hash {
			return nil, errors.WithCode(errors.CodeInvalidInput,
				fmt.Errorf("%w: %s uses %s, %s uses %s", core.ErrScheduleMismatch,
					t.System.Label(), t.ScheduleHash, traces[0].System.Label(), hash))
		}
		scoreTraces[i] = t.Trace()
		scores[i] = t.Original
		systems[i] = t.System
	}

	opts := append([]pairwise.BuilderOption{
		pairwise.WithProgress(func(done, total int) {
			s.logger.Trace("compared %d/%d pairs", done, total)
		}),
	}, s.builderOpts...)
	m, err := pairwise.NewMatrixBuilder(opts...).Build(ctx, scoreTraces)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	rec := results.NewComparisonRecord(m, scores, systems)
	rec.ScheduleHash = hash
	rec.Iterations = scoreTraces[0].Len()
	if err := s.save(func() error { return s.store.SaveComparison(ctx, rec) }, "save comparison"); err != nil {
		return nil, err
	}
	s.logger.Info("compared %d systems (%d pairs) as %s", m.Systems(), m.Pairs(), rec.ID)
	return rec, nil
}

func (s *SignificanceService) save(fn func() error, op string) error {
	if s.store == nil {
		return nil
	}
	if err := fn(); err != nil {
		return errors.StoreError(op, err)
	}
	return nil
}

// Comparison loads a stored comparison; an empty id selects the latest.
func (s *SignificanceService) Comparison(ctx context.Context, id core.ComparisonID) (*results.ComparisonRecord, error) {
	if s.store == nil {
		return nil, errors.ConfigInvalid("no result store configured")
	}
	var (
		rec *results.ComparisonRecord
		err error
	)
	if id == "" {
		rec, err = s.store.LatestComparison(ctx)
	} else {
		rec, err = s.store.GetComparison(ctx, id)
	}
	if core.IsNotFoundError(err) {
		return nil, errors.WithCode(errors.CodeNotFound, err)
	}
	if err != nil {
		return nil, errors.StoreError("load comparison", err)
	}
	return rec, nil
}

// HasseResult is a reduced significance digraph with its source comparison.
type HasseResult struct {
	Comparison *results.ComparisonRecord
	Threshold  float64
	Reduction  siggraph.Reduction
}

// Hasse reduces the significance digraph of a comparison. A cyclic digraph
// is logged as a warning and the best-effort reduction is still returned.
func (s *SignificanceService) Hasse(ctx context.Context, id core.ComparisonID, threshold float64) (*HasseResult, error) {
	rec, err := s.Comparison(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.HasseOf(rec, threshold)
}

// HasseOf is Hasse for a comparison already in hand.
func (s *SignificanceService) HasseOf(rec *results.ComparisonRecord, threshold float64) (*HasseResult, error) {
	dg, err := siggraph.BuildDigraph(rec.Matrix, threshold)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	red := siggraph.TransitiveReduce(dg)
	if warn := red.Warning(); warn != nil {
		s.logger.Warn("comparison %s: %v", rec.ID, warn)
	}
	return &HasseResult{Comparison: rec, Threshold: threshold, Reduction: red}, nil
}

// CompactLetters computes and stores the letter display of a comparison.
func (s *SignificanceService) CompactLetters(ctx context.Context, id core.ComparisonID, threshold float64) (*results.LabelingRecord, error) {
	rec, err := s.Comparison(ctx, id)
	if err != nil {
		return nil, err
	}
	eq, err := siggraph.BuildEquivalenceGraph(rec.Matrix, threshold)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	labeling := cld.Build(eq)
	for c, clique := range labeling.Cliques {
		s.logger.Debug("%s: %v", cld.NumToLetters(c), clique)
	}

	out := &results.LabelingRecord{
		ID:           core.NewRecordID(),
		Kind:         core.RecordLabeling,
		CreatedAt:    core.Now(),
		ComparisonID: rec.ID,
		Threshold:    threshold,
		Letters:      labeling.Letters,
		OrigScores:   rec.OrigScores,
		Systems:      rec.Systems,
	}
	if err := s.save(func() error { return s.store.SaveLabeling(ctx, out) }, "save labeling"); err != nil {
		return nil, err
	}
	return out, nil
}

// Labelings returns the stored letter displays of a comparison, oldest
// first; an empty id selects the latest comparison.
func (s *SignificanceService) Labelings(ctx context.Context, id core.ComparisonID) ([]*results.LabelingRecord, error) {
	rec, err := s.Comparison(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.store.ListLabelings(ctx, rec.ID)
	if err != nil {
		return nil, errors.StoreError("list labelings", err)
	}
	return out, nil
}

// NearBest computes and stores the best and near-best systems of a comparison.
func (s *SignificanceService) NearBest(ctx context.Context, id core.ComparisonID, threshold, margin float64) (*results.HighlightRecord, error) {
	rec, err := s.Comparison(ctx, id)
	if err != nil {
		return nil, err
	}
	eq, err := siggraph.BuildEquivalenceGraph(rec.Matrix, threshold)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	best, expanded, err := cld.NearBest(rec.OrigScores, eq, margin)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}
	s.logger.Info("best: %v, not significantly different from best: %v", best, expanded)

	out := &results.HighlightRecord{
		ID:           core.NewRecordID(),
		Kind:         core.RecordHighlight,
		CreatedAt:    core.Now(),
		ComparisonID: rec.ID,
		Threshold:    threshold,
		Margin:       margin,
		Best:         pick(rec.Systems, best),
		Expanded:     pick(rec.Systems, expanded),
	}
	if err := s.save(func() error { return s.store.SaveHighlight(ctx, out) }, "save highlight"); err != nil {
		return nil, err
	}
	return out, nil
}

func pick(systems []system.Descriptor, idx []int) []system.Descriptor {
	out := make([]system.Descriptor, len(idx))
	for i, j := range idx {
		out[i] = systems[j]
	}
	return out
}

// IntersectHighlights counts how often each system (ignoring corpus) is
// near-best across all stored highlight records.
func (s *SignificanceService) IntersectHighlights(ctx context.Context) ([]cld.HighlightCount, error) {
	if s.store == nil {
		return nil, errors.ConfigInvalid("no result store configured")
	}
	recs, err := s.store.ListHighlights(ctx)
	if err != nil {
		return nil, errors.StoreError("list highlights", err)
	}
	sets := make([][]system.Descriptor, len(recs))
	for i, r := range recs {
		sets[i] = r.Expanded
	}
	return cld.IntersectHighlights(sets), nil
}

// Dump writes every verdict, the original scores and the descriptors.
func (s *SignificanceService) Dump(ctx context.Context, id core.ComparisonID, w io.Writer) error {
	rec, err := s.Comparison(ctx, id)
	if err != nil {
		return err
	}
	return DumpComparison(w, rec)
}

// DumpComparison writes rec in the plain text dump format.
func DumpComparison(w io.Writer, rec *results.ComparisonRecord) error {
	var werr error
	printf := func(format string, args ...any) {
		if werr == nil {
			_, werr = fmt.Fprintf(w, format, args...)
		}
	}
	printf("** comparison %s **\n", rec.ID)
	printf("** pvalmat **\n")
	rec.Matrix.Each(func(i, j int, v pairwise.Verdict) {
		printf("%d %d %t: %g\n", i, j, v.BBigger, v.PValue)
	})
	printf("** orig_scores **\n")
	printf("%v\n", rec.OrigScores)
	printf("** docs **\n")
	for i, d := range rec.Systems {
		printf("%d: %s (%s)\n", i, d.Label(), d.Key())
	}
	return werr
}
