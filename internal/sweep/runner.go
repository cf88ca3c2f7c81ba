// Package sweep drives external mining executables across a support
// threshold grid, measures their wall-clock runtime, classifies every
// invocation as ok, empty or failed, and stops at the first hard failure.
package sweep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/dbsmedya/minebench/internal/logger"
	"github.com/dbsmedya/minebench/internal/results"
)

// Algorithm identifies one miner under benchmark: a display name used in
// results and artifact names, and the executable to invoke.
type Algorithm struct {
	Name string
	Path string
}

// Pair is one cell of the sweep grid.
type Pair struct {
	Algorithm Algorithm
	Support   float64
}

// RunError describes a hard miner failure: which invocation failed, how it
// exited, and where the full log lives.
type RunError struct {
	Algorithm string
	Support   float64
	ExitCode  int // -1 when the process never ran to completion
	LogPath   string
	Reason    string
	Err       error
}

// Error renders the failure with enough context to act on it directly.
func (e *RunError) Error() string {
	msg := fmt.Sprintf("algorithm %s at support %s%%: %s",
		e.Algorithm, results.FormatSupport(e.Support), e.Reason)
	if e.LogPath != "" {
		msg += fmt.Sprintf(" (full log: %s)", e.LogPath)
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *RunError) Unwrap() error {
	return e.Err
}

// SweepResult carries the outcome of a sweep execution. Table holds every
// record appended before the sweep finished or aborted, so a failed sweep
// still reports its partial results.
type SweepResult struct {
	Dataset     string
	OutputDir   string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Table       *results.Table
	Success     bool
}

// Options configures a Runner.
type Options struct {
	Algorithms []Algorithm
	Supports   []float64     // percentages; run ascending per algorithm
	Dataset    string        // transaction or graph dataset fed to every miner
	OutputDir  string        // per-run artifacts, results.csv and plot land here
	Timeout    time.Duration // per-invocation; zero means no timeout
	Invoker    Invoker       // nil selects ChildInvoker
	Logger     *logger.Logger
}

// Runner coordinates one benchmark sweep. It must be initialized with
// Initialize() before Execute().
type Runner struct {
	algorithms  []Algorithm
	supports    []float64
	dataset     string
	outputDir   string
	timeout     time.Duration
	invoker     Invoker
	logger      *logger.Logger
	plan        []Pair
	initialized bool
}

// NewRunner creates a sweep runner. Algorithm order is preserved; supports
// are sorted ascending during initialization.
func NewRunner(opts Options) (*Runner, error) {
	if len(opts.Algorithms) == 0 {
		return nil, fmt.Errorf("no algorithms configured")
	}
	if len(opts.Supports) == 0 {
		return nil, fmt.Errorf("no support thresholds configured")
	}
	if opts.Dataset == "" {
		return nil, fmt.Errorf("dataset path is empty")
	}
	if opts.OutputDir == "" {
		return nil, fmt.Errorf("output directory is empty")
	}

	invoker := opts.Invoker
	if invoker == nil {
		invoker = ChildInvoker{}
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewDefault()
	}

	supports := make([]float64, len(opts.Supports))
	copy(supports, opts.Supports)

	algorithms := make([]Algorithm, len(opts.Algorithms))
	copy(algorithms, opts.Algorithms)

	return &Runner{
		algorithms: algorithms,
		supports:   supports,
		dataset:    opts.Dataset,
		outputDir:  opts.OutputDir,
		timeout:    opts.Timeout,
		invoker:    invoker,
		logger:     log,
	}, nil
}

// Initialize runs the preflight checks, prepares the output directory and
// builds the run plan. It must be called before Execute().
func (r *Runner) Initialize() error {
	if r.initialized {
		return nil
	}

	r.logger.Infow("Initializing sweep",
		"dataset", r.dataset,
		"algorithms", len(r.algorithms),
		"supports", len(r.supports),
	)

	if err := Preflight(r.dataset, r.algorithms); err != nil {
		return err
	}

	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", r.outputDir, err)
	}

	sort.Float64s(r.supports)

	// Algorithms stay in declared order; thresholds run ascending within
	// each algorithm.
	r.plan = make([]Pair, 0, len(r.algorithms)*len(r.supports))
	for _, algo := range r.algorithms {
		for _, sup := range r.supports {
			r.plan = append(r.plan, Pair{Algorithm: algo, Support: sup})
		}
	}

	r.initialized = true

	r.logger.Infow("Sweep initialized",
		"runs_planned", len(r.plan),
		"output_dir", r.outputDir,
	)

	return nil
}

// Plan returns the runs in execution order. Returns an error when the
// runner has not been initialized.
func (r *Runner) Plan() ([]Pair, error) {
	if !r.initialized {
		return nil, fmt.Errorf("runner not initialized")
	}
	out := make([]Pair, len(r.plan))
	copy(out, r.plan)
	return out, nil
}

// OutputName returns the output artifact file name for one run. The support
// is embedded in its exact decimal form, so every (algorithm, threshold)
// pair gets a distinct name.
func OutputName(algorithm string, support float64) string {
	return fmt.Sprintf("%s-s%s.out", algorithm, results.FormatSupport(support))
}

// LogName returns the combined stdout+stderr log file name for one run.
func LogName(algorithm string, support float64) string {
	return fmt.Sprintf("%s-s%s.log", algorithm, results.FormatSupport(support))
}

// OutputPath returns the output artifact path for one run.
func (r *Runner) OutputPath(algorithm string, support float64) string {
	return filepath.Join(r.outputDir, OutputName(algorithm, support))
}

// LogPath returns the combined stdout+stderr log path for one run.
func (r *Runner) LogPath(algorithm string, support float64) string {
	return filepath.Join(r.outputDir, LogName(algorithm, support))
}

// Execute runs the full sweep sequentially and fail-fast: the first hard
// failure aborts the remaining runs. The returned SweepResult always
// carries the records collected so far; the error is non-nil when the
// sweep aborted (hard failure or cancellation).
func (r *Runner) Execute(ctx context.Context) (*SweepResult, error) {
	if !r.initialized {
		return nil, fmt.Errorf("runner not initialized")
	}
	if ctx == nil {
		return nil, fmt.Errorf("context is nil")
	}

	result := &SweepResult{
		Dataset:   r.dataset,
		OutputDir: r.outputDir,
		StartedAt: time.Now(),
		Table:     results.NewTable(),
	}

	r.logger.Infow("Starting sweep",
		"runs", len(r.plan),
		"timeout", r.timeout.String(),
	)

	for _, pair := range r.plan {
		select {
		case <-ctx.Done():
			r.logger.Warn("Sweep cancelled - stopping before next run")
			return finalize(result, false), ctx.Err()
		default:
		}

		record, err := r.runOne(ctx, pair)
		if record != nil {
			result.Table.Append(*record)
		}
		if err != nil {
			return finalize(result, false), err
		}
	}

	finalize(result, true)

	r.logger.Infow("Sweep completed",
		"duration", result.Duration,
		"runs", result.Table.Len(),
	)

	return result, nil
}

func finalize(result *SweepResult, success bool) *SweepResult {
	result.Success = success
	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)
	return result
}

// runOne invokes a single miner and classifies the outcome. A nil error
// means the sweep continues; the record is nil only when the run was
// aborted by cancellation rather than classified.
func (r *Runner) runOne(ctx context.Context, pair Pair) (*results.RunRecord, error) {
	algo := pair.Algorithm
	supText := results.FormatSupport(pair.Support)
	outPath := r.OutputPath(algo.Name, pair.Support)
	logPath := r.LogPath(algo.Name, pair.Support)

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	log := r.logger.WithAlgorithm(algo.Name).WithSupport(pair.Support)
	log.Infow("Running miner", "executable", algo.Path)

	args := []string{"-s" + supText, r.dataset, outPath}

	start := time.Now()
	exitCode, invokeErr := r.invoker.Invoke(runCtx, algo.Path, args, logPath)
	elapsed := time.Since(start)

	record := &results.RunRecord{
		Algorithm: algo.Name,
		Support:   pair.Support,
		Runtime:   elapsed,
		Output:    outPath,
	}

	// Cancellation of the whole sweep is not a run outcome.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if runCtx.Err() == context.DeadlineExceeded {
		record.Status = results.StatusFailed
		return record, &RunError{
			Algorithm: algo.Name,
			Support:   pair.Support,
			ExitCode:  -1,
			LogPath:   logPath,
			Reason:    fmt.Sprintf("timed out after %s", r.timeout),
			Err:       context.DeadlineExceeded,
		}
	}

	if invokeErr != nil {
		record.Status = results.StatusFailed
		return record, &RunError{
			Algorithm: algo.Name,
			Support:   pair.Support,
			ExitCode:  -1,
			LogPath:   logPath,
			Reason:    "could not be started",
			Err:       invokeErr,
		}
	}

	logHead := readLogHead(logPath)

	if exitCode != 0 {
		if BenignEmpty(logHead) {
			return r.emptyRecord(record, log, exitCode)
		}
		record.Status = results.StatusFailed
		return record, &RunError{
			Algorithm: algo.Name,
			Support:   pair.Support,
			ExitCode:  exitCode,
			LogPath:   logPath,
			Reason:    fmt.Sprintf("exit status %d without a recognized empty-result message", exitCode),
		}
	}

	if outputEmpty(outPath) {
		if BenignEmpty(logHead) {
			return r.emptyRecord(record, log, exitCode)
		}
		record.Status = results.StatusFailed
		return record, &RunError{
			Algorithm: algo.Name,
			Support:   pair.Support,
			ExitCode:  exitCode,
			LogPath:   logPath,
			Reason:    "exited cleanly but produced no output and no empty-result message",
		}
	}

	record.Status = results.StatusOK
	log.Infow("Run completed", "status", record.Status, "runtime", record.Runtime.String())
	return record, nil
}

// emptyRecord finishes classification of a benign-empty run: the output
// artifact is guaranteed to exist (possibly zero bytes) and the sweep goes
// on.
func (r *Runner) emptyRecord(record *results.RunRecord, log *logger.Logger, exitCode int) (*results.RunRecord, error) {
	if err := ensureArtifact(record.Output); err != nil {
		record.Status = results.StatusFailed
		return record, &RunError{
			Algorithm: record.Algorithm,
			Support:   record.Support,
			ExitCode:  exitCode,
			Reason:    "could not create empty output artifact",
			Err:       err,
		}
	}

	record.Status = results.StatusEmpty
	log.Infow("Run found nothing at this support", "exit_code", exitCode, "runtime", record.Runtime.String())
	return record, nil
}
