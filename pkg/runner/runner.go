package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/yaklabco/gocleanup/internal/logging"
	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/fsutil"
	"github.com/yaklabco/gocleanup/pkg/langdetect"
	"github.com/yaklabco/gocleanup/pkg/project"
)

// Runner cleans up files on disk with a cleanup.Engine.
type Runner struct {
	// Parser parses documents for rules that need a tree.
	Parser cleanup.Parser
}

// New creates a new Runner with the given parser.
func New(parser cleanup.Parser) *Runner {
	return &Runner{Parser: parser}
}

type readOutcome struct {
	path string
	snap *fsutil.Snapshot
	err  error
}

// Run discovers files under opts.Paths, reads them concurrently, runs every
// enabled rule over all of them in one engine run and, with opts.Write,
// saves the changes marked force-save.
//
// Files that changed on disk after they were read are never overwritten;
// they are reported as skipped. Files are reported in path order.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)

	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	opts.WorkingDir = workDir

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	logger.Debug("discovered files", logging.FieldFiles, len(files), logging.FieldWorkingDir, workDir)

	if len(files) == 0 {
		return result, nil
	}

	snaps := readAll(ctx, files, opts.Jobs)
	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	outcomes := make([]FileOutcome, len(files))
	var docs []*cleanup.Document
	byID := make(map[string]int, len(files))
	for i, path := range files {
		rel, relErr := filepath.Rel(workDir, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		outcomes[i] = FileOutcome{Path: path, RelPath: rel}

		rd := snaps[path]
		if rd.err != nil {
			outcomes[i].Error = rd.err
			continue
		}
		outcomes[i].Original = rd.snap.Content
		outcomes[i].Language = langdetect.DetectFile(path, rd.snap.Content)

		byID[rel] = i
		docs = append(docs, &cleanup.Document{
			ID:       rel,
			Path:     path,
			Content:  rd.snap.Content,
			Language: outcomes[i].Language,
		})
	}

	rules := opts.registry().Build(opts.Settings)
	engine := cleanup.NewEngine(r.Parser, project.NewResolver(workDir, opts.ParserOptions))
	engine.MemoryBudget = opts.MemoryBudget
	engine.Jobs = opts.Jobs

	res, runErr := engine.Run(ctx, docs, rules, cleanup.RunOptions{
		LeaveDirty: opts.LeaveDirty,
		Progress:   opts.Progress,
	})
	if res != nil {
		result.RunID = res.RunID
		result.Stats.Engine = res.Stats
		r.attach(res, outcomes, byID, result)
	}

	if opts.Write && runErr == nil {
		for i := range outcomes {
			r.save(ctx, &outcomes[i], snaps[outcomes[i].Path].snap, opts.Backup)
		}
	}

	for _, o := range outcomes {
		result.accumulate(o)
	}
	result.countDiagnostics(result.Diagnostics)

	logger.Debug("run complete",
		logging.FieldRunID, result.RunID,
		logging.FieldFilesChanged, result.Stats.FilesChanged,
		logging.FieldFilesWritten, result.Stats.FilesWritten,
		logging.FieldFilesSkipped, result.Stats.FilesSkipped,
	)

	if runErr != nil {
		result.Errors = append(result.Errors, runErr)
		if errors.Is(runErr, cleanup.ErrCancelled) {
			return result, fmt.Errorf("run cancelled: %w", runErr)
		}
		return result, fmt.Errorf("clean up: %w", runErr)
	}
	return result, nil
}

// attach distributes engine changes and diagnostics onto file outcomes.
func (r *Runner) attach(res *cleanup.Result, outcomes []FileOutcome, byID map[string]int, result *Result) {
	for _, c := range res.Changes {
		if i, ok := byID[c.Document().ID]; ok {
			outcomes[i].Change = c
		}
	}
	for _, d := range res.Diagnostics {
		i, ok := byID[d.DocumentID]
		if !ok {
			result.Diagnostics = append(result.Diagnostics, d)
			continue
		}
		outcomes[i].Diagnostics = append(outcomes[i].Diagnostics, d)
	}
}

func (r *Runner) save(ctx context.Context, o *FileOutcome, snap *fsutil.Snapshot, backup fsutil.BackupConfig) {
	if o.Change == nil || snap == nil {
		return
	}
	// Leave-dirty changes are reported like unsaved dry-run changes.
	if o.Change.SaveMode() != cleanup.ForceSave {
		return
	}

	content, err := o.Change.Apply(snap.Content)
	if err != nil {
		o.Error = err
		return
	}

	written, err := fsutil.Save(ctx, snap, content, backup)
	switch {
	case errors.Is(err, fsutil.ErrModified):
		o.Skipped = true
		logging.FromContext(ctx).Warn("file modified during run, not saved", logging.FieldPath, o.RelPath)
	case err != nil:
		o.Error = err
	default:
		o.Written = written
	}
}

// readAll reads files with a bounded worker pool. Files not read before ctx
// is cancelled are absent from the returned map.
func readAll(ctx context.Context, files []string, jobs int) map[string]readOutcome {
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	workCh := make(chan string)
	outCh := make(chan readOutcome)

	var wg sync.WaitGroup
	for range jobs {
		wg.Go(func() {
			for path := range workCh {
				snap, err := fsutil.Read(ctx, path)
				select {
				case <-ctx.Done():
					return
				case outCh <- readOutcome{path: path, snap: snap, err: err}:
				}
			}
		})
	}

	go func() {
		defer close(workCh)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outCh)
	}()

	out := make(map[string]readOutcome, len(files))
	for rd := range outCh {
		out[rd.path] = rd
	}
	return out
}
