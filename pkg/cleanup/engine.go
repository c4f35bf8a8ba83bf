package cleanup

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yaklabco/gocleanup/internal/logging"
)

// DefaultProjectName names the project of documents without a resolver.
const DefaultProjectName = "default"

// Stats counts what happened during a run.
type Stats struct {
	// Documents is the number of documents handed to Run.
	Documents int

	// Projects is the number of projects the documents belonged to.
	Projects int

	// Passes is the largest number of passes any project needed.
	Passes int

	// Parsed is the number of successful parses across all passes.
	Parsed int

	// ParseFailures is the number of documents that failed to parse.
	ParseFailures int

	// Fixes is the number of fixes merged into solutions.
	Fixes int

	// Deferrals is the number of times a rule was deferred to a later pass.
	Deferrals int

	// Changes is the number of documents with a change.
	Changes int
}

func (s *Stats) add(o Stats) {
	s.Passes = max(s.Passes, o.Passes)
	s.Parsed += o.Parsed
	s.ParseFailures += o.ParseFailures
	s.Fixes += o.Fixes
	s.Deferrals += o.Deferrals
}

// RunOptions controls a single Run.
type RunOptions struct {
	// LeaveDirty asks the host not to save documents after applying changes.
	LeaveDirty bool

	// Progress, if set, is called once per processed document per pass.
	Progress func(ProgressEvent)
}

// Result is the outcome of Run.
type Result struct {
	// RunID identifies the run in logs and reports.
	RunID string

	// Changes holds one change per edited document, in input order.
	Changes []Change

	// Diagnostics lists failures, warnings and rules that never applied,
	// grouped by document in input order.
	Diagnostics []Diagnostic

	// Stats counts what happened.
	Stats Stats
}

// HasErrors reports whether any diagnostic is an error.
func (r *Result) HasErrors() bool {
	return slices.ContainsFunc(r.Diagnostics, Diagnostic.IsError)
}

// Change returns the change for a document ID.
func (r *Result) Change(docID string) (Change, bool) {
	for _, c := range r.Changes {
		if c.Document().ID == docID {
			return c, true
		}
	}
	return nil, false
}

// Engine runs clean up rules over documents.
type Engine struct {
	// Parser parses documents for rules that need a tree.
	Parser Parser

	// Projects resolves documents to projects. Nil puts every document in
	// one default project.
	Projects ProjectResolver

	// Policy maps the memory budget to a parse batch size.
	Policy BatchSizePolicy

	// MemoryBudget in bytes. Zero uses the runtime memory limit, or
	// DefaultMemoryBudget if none is set.
	MemoryBudget uint64

	// Jobs bounds parallel parses within a batch. Zero uses GOMAXPROCS.
	Jobs int
}

// NewEngine creates a new Engine with the given parser and project resolver.
func NewEngine(parser Parser, projects ProjectResolver) *Engine {
	return &Engine{
		Parser:   parser,
		Projects: projects,
		Policy:   DefaultBatchSizePolicy(),
	}
}

type projectGroup struct {
	project *Project
	docs    []*Document
}

// Run applies rules, in priority order, to docs and assembles the resulting
// changes. Identical inputs produce identical results apart from RunID.
//
// Document IDs must be unique; a repeated ID fails with ErrDuplicateDocument
// and a nil Result. Otherwise the returned error is non-nil if the run was
// cancelled or a rule failed with ErrUnrecoverable. The Result is valid in
// both cases and describes everything finished before the failure.
func (e *Engine) Run(ctx context.Context, docs []*Document, rules []Rule, opts RunOptions) (_ *Result, err error) {
	seen := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		if _, dup := seen[d.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDocument, d.ID)
		}
		seen[d.ID] = struct{}{}
	}

	result := &Result{RunID: uuid.NewString()}
	result.Stats.Documents = len(docs)
	if len(rules) == 0 || len(docs) == 0 {
		return result, nil
	}

	ctx, span := tracer.Start(ctx, "cleanup.Run",
		trace.WithAttributes(
			attribute.String("cleanup.run_id", result.RunID),
			attribute.Int("cleanup.documents", len(docs)),
			attribute.Int("cleanup.rules", len(rules)),
		),
	)
	defer func() { endSpan(span, err) }()

	logger := logging.FromContext(ctx).With(logging.FieldRunID, result.RunID)
	ctx = logging.WithLogger(ctx, logger)

	budget := e.MemoryBudget
	if budget == 0 {
		budget = AvailableMemory(DefaultMemoryBudget)
	}
	parser := e.Parser
	if parser == nil {
		parser = noParser{}
	}
	batches := NewBatchParser(parser, e.Policy, budget, e.Jobs)

	logger.Debug("clean up started",
		logging.FieldDocuments, len(docs),
		logging.FieldRules, len(rules),
		logging.FieldBatchSize, batches.BatchSize())

	groups := e.group(docs, result)
	result.Stats.Projects = len(groups)

	var errs []error
	for i, g := range groups {
		it, perr := e.runProject(ctx, batches, g, rules, opts)
		result.Changes = append(result.Changes, it.Changes(g.docs, opts.LeaveDirty)...)
		result.Diagnostics = append(result.Diagnostics, it.Diagnostics()...)
		result.Stats.add(it.Stats())

		if perr == nil {
			continue
		}
		errs = append(errs, perr)
		if errors.Is(perr, ErrCancelled) {
			for _, rest := range groups[i+1:] {
				result.Diagnostics = append(result.Diagnostics, unappliedAll(rest.docs, rules, KindCancelled, perr)...)
			}
			break
		}
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Kind:     KindProject,
			Severity: SeverityFatal,
			Message:  fmt.Sprintf("project %s aborted: %v", g.project.Name, perr),
			Err:      perr,
		})
	}

	orderResult(result, docs)
	result.Stats.Changes = len(result.Changes)

	logger.Debug("clean up finished",
		logging.FieldChanges, result.Stats.Changes,
		logging.FieldPasses, result.Stats.Passes,
		logging.FieldDiagnostics, len(result.Diagnostics))

	return result, errors.Join(errs...)
}

func (e *Engine) runProject(
	ctx context.Context,
	batches *BatchParser,
	g *projectGroup,
	rules []Rule,
	opts RunOptions,
) (_ *Iterator, err error) {
	ctx, span := tracer.Start(ctx, "cleanup.Project",
		trace.WithAttributes(
			attribute.String("cleanup.project", g.project.Name),
			attribute.Int("cleanup.documents", len(g.docs)),
		),
	)
	defer func() { endSpan(span, err) }()

	it := NewIterator(g.project, batches, opts.Progress)

	if !checkPreconditions(ctx, it, g, rules) {
		it.diags = append(it.diags, unappliedAll(g.docs, rules, KindUnapplied, errPreconditions)...)
		return it, nil
	}
	if err := it.Run(ctx, g.docs, rules); err != nil {
		return it, err
	}
	checkPostconditions(ctx, it, rules)
	return it, nil
}

var errPreconditions = errors.New("preconditions failed")

// checkPreconditions records the precondition status of every rule and
// reports whether the project may proceed.
func checkPreconditions(ctx context.Context, it *Iterator, g *projectGroup, rules []Rule) bool {
	ok := true
	for _, rule := range rules {
		checker, isChecker := rule.(PreconditionChecker)
		if !isChecker {
			continue
		}
		st := checker.CheckPreconditions(ctx, g.project, g.docs)
		if st.IsOK() {
			continue
		}
		it.diag(Diagnostic{RuleID: rule.ID(), Kind: KindPrecondition, Severity: st.Severity, Message: st.Message})
		if st.Severity == SeverityFatal {
			ok = false
		}
	}
	return ok
}

func checkPostconditions(ctx context.Context, it *Iterator, rules []Rule) {
	for _, rule := range rules {
		checker, isChecker := rule.(PostconditionChecker)
		if !isChecker {
			continue
		}
		if st := checker.CheckPostconditions(ctx); !st.IsOK() {
			it.diag(Diagnostic{RuleID: rule.ID(), Kind: KindPostcondition, Severity: st.Severity, Message: st.Message})
		}
	}
}

// group partitions docs by project, in order of first appearance.
func (e *Engine) group(docs []*Document, result *Result) []*projectGroup {
	resolver := e.Projects
	if resolver == nil {
		resolver = SingleProject(&Project{Name: DefaultProjectName})
	}

	byKey := make(map[string]*projectGroup)
	var groups []*projectGroup
	for _, doc := range docs {
		project, err := resolver.Resolve(doc)
		if err != nil {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{
				DocumentID: doc.ID,
				Kind:       KindProject,
				Severity:   SeverityError,
				Message:    fmt.Sprintf("resolve project: %v", err),
				Err:        err,
			})
			continue
		}

		key := project.Root
		if key == "" {
			key = project.Name
		}
		g, ok := byKey[key]
		if !ok {
			g = &projectGroup{project: project}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.docs = append(g.docs, doc)
	}
	return groups
}

func unappliedAll(docs []*Document, rules []Rule, kind DiagnosticKind, cause error) []Diagnostic {
	out := make([]Diagnostic, 0, len(docs)*len(rules))
	for _, doc := range docs {
		for _, rule := range rules {
			out = append(out, Diagnostic{
				DocumentID: doc.ID,
				RuleID:     rule.ID(),
				Kind:       kind,
				Severity:   SeverityError,
				Message:    "not applied: " + cause.Error(),
				Err:        cause,
			})
		}
	}
	return out
}

// orderResult sorts changes and diagnostics by the position of their
// document in docs. Project-wide diagnostics come first.
func orderResult(result *Result, docs []*Document) {
	pos := make(map[string]int, len(docs))
	for i, doc := range docs {
		if _, ok := pos[doc.ID]; !ok {
			pos[doc.ID] = i
		}
	}
	position := func(id string) int {
		if id == "" {
			return -1
		}
		return pos[id]
	}

	slices.SortStableFunc(result.Changes, func(a, b Change) int {
		return position(a.Document().ID) - position(b.Document().ID)
	})
	slices.SortStableFunc(result.Diagnostics, func(a, b Diagnostic) int {
		return position(a.DocumentID) - position(b.DocumentID)
	})
}

// ErrNoParser is returned for documents that need a tree when the engine
// has no parser.
var ErrNoParser = errors.New("no parser configured")

type noParser struct{}

func (noParser) Parse(_ context.Context, doc *Document, _ Options) (Tree, error) {
	return nil, fmt.Errorf("%s: %w", doc.Language, ErrNoParser)
}
