package driver

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"quibble/internal/config"
	"quibble/internal/diag"
	"quibble/internal/lint"
	"quibble/internal/observ"
	"quibble/internal/parser"
	"quibble/internal/source"
)

// Options configures a lint run.
type Options struct {
	Fs      afero.Fs
	BaseDir string
	Config  *config.Config
	// Rules overrides Config.EnabledRules when non-nil.
	Rules          []lint.Enabled
	Jobs           int
	MaxDiagnostics int
	Cache          *DiskCache
	Version        string
	Progress       ProgressSink
	// Timings adds an obs-timings diagnostic to every file.
	Timings bool
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path    string
	FileID  source.FileID
	Bag     *diag.Bag
	Cached  bool
	Elapsed time.Duration
}

// Result holds every file of a run. Files are in input order.
type Result struct {
	FileSet *source.FileSet
	Files   []FileResult
}

// Diagnostics flattens the per-file bags in file order.
func (r *Result) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range r.Files {
		if f.Bag != nil {
			out = append(out, f.Bag.Items()...)
		}
	}
	return out
}

// HasErrors reports whether any file produced an error-severity diagnostic.
func (r *Result) HasErrors() bool {
	for _, f := range r.Files {
		if f.Bag != nil && f.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// LintFiles loads, parses and lints paths in parallel. Per-file failures
// become diagnostics; only cancellation and rule setup errors are returned.
func LintFiles(ctx context.Context, opts Options, paths []string) (*Result, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	rules := opts.Rules
	if rules == nil {
		var err error
		rules, err = opts.Config.EnabledRules()
		if err != nil {
			return nil, err
		}
	}
	logger := zerolog.Ctx(ctx)
	fileSet := source.NewFileSetWithFs(opts.Fs, opts.BaseDir)
	result := &Result{FileSet: fileSet, Files: make([]FileResult, len(paths))}
	if len(paths) == 0 {
		return result, nil
	}

	// Загружаем последовательно: FileID (а значит и id исправлений) не зависят от планировщика.
	fileIDs := make([]source.FileID, len(paths))
	loadErrors := make(map[int]error)
	for i, path := range paths {
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			id = fileSet.Add(path, nil, source.FileVirtual)
		}
		fileIDs[i] = id
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
	}

	cfgHash := opts.Config.Hash()
	parseOpts := parser.Options{Template: opts.Config.Lint.Template}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			file := fileSet.Get(fileIDs[i])
			res := FileResult{Path: path, FileID: file.ID, Bag: diag.NewBag(opts.MaxDiagnostics)}

			w := worker{
				opts:    opts,
				rules:   rules,
				parse:   parseOpts,
				cfgHash: cfgHash,
				timer:   observ.NewTimer(),
				logger:  logger.With().Str("file", path).Logger(),
			}
			status, err := w.run(gctx, file, loadErrors[i], &res)
			if err != nil {
				emit(opts.Progress, Event{File: path, Stage: StageLint, Status: StatusError, Err: err})
				return err
			}
			res.Elapsed = time.Since(start)
			if opts.Timings {
				appendTimingDiagnostic(res.Bag, file, w.timer.Report())
			}
			w.timer.Log(&w.logger, "file timings")
			result.Files[i] = res // индекс i уникален, мьютекс не нужен
			emit(opts.Progress, Event{File: path, Stage: StageLint, Status: status, Elapsed: res.Elapsed})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

type worker struct {
	opts    Options
	rules   []lint.Enabled
	parse   parser.Options
	cfgHash Digest
	timer   *observ.Timer
	logger  zerolog.Logger
}

func (w *worker) run(ctx context.Context, file *source.File, loadErr error, res *FileResult) (Status, error) {
	if loadErr != nil {
		w.logger.Warn().Err(loadErr).Msg("load failed")
		res.Bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: file.ID}, "failed to load file: "+loadErr.Error()))
		return StatusError, nil
	}

	key := CacheKey(file.Hash, w.cfgHash, w.opts.Version)
	if w.opts.Cache != nil {
		var payload DiskPayload
		ok, err := w.opts.Cache.Get(key, &payload)
		switch {
		case err != nil:
			w.logger.Warn().Err(err).Msg("cache read failed")
		case ok:
			w.logger.Debug().Msg("cache hit")
			for _, d := range payload.restore(file.ID) {
				res.Bag.Add(d)
			}
			res.Cached = true
			return StatusCached, nil
		default:
			w.logger.Debug().Msg("cache miss")
		}
	}

	emit(w.opts.Progress, Event{File: file.Path, Stage: StageParse, Status: StatusWorking})
	idx := w.timer.Begin("parse")
	src, err := parser.Parse(ctx, file, w.parse)
	w.timer.End(idx, "")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return StatusError, ctxErr
		}
		code := diag.ParseFailed
		if errors.Is(err, parser.ErrUnsupportedLanguage) {
			code = diag.ParseUnsupportedLanguage
		}
		w.logger.Debug().Err(err).Msg("parse failed")
		res.Bag.Add(diag.NewError(code, source.Span{File: file.ID}, err.Error()))
		return StatusError, nil
	}

	emit(w.opts.Progress, Event{File: file.Path, Stage: StageLint, Status: StatusWorking})
	idx = w.timer.Begin("lint")
	err = lint.Run(ctx, src, w.rules, diag.BagReporter{Bag: res.Bag})
	w.timer.End(idx, "")
	if err != nil {
		return StatusError, err
	}
	res.Bag.Sort()

	if w.opts.Cache != nil {
		if err := w.opts.Cache.Put(key, newPayload(file, res.Bag.Items())); err != nil {
			w.logger.Warn().Err(err).Msg("cache write failed")
		}
	}
	return StatusDone, nil
}
