package cleanup

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yaklabco/gocleanup/internal/logging"
	"github.com/yaklabco/gocleanup/pkg/fix"
)

// ProgressEvent reports that one document was processed in a pass.
type ProgressEvent struct {
	// Pass is the 1-based pass number.
	Pass int

	// Index is the 1-based position of the document within the pass.
	Index int

	// Total is the number of documents pending in the pass.
	Total int

	// Document is the processed document.
	Document *Document
}

// pending is a document with the rules it still has to run.
type pending struct {
	doc   *Document
	rules []Rule
	order int
}

// Iterator runs the fixpoint for the documents of one project.
// An Iterator is single-use and not safe for concurrent use.
type Iterator struct {
	project  *Project
	parser   *BatchParser
	progress func(ProgressEvent)

	working map[string][]byte // document ID -> text after the latest pass
	passes  map[string][]*Pass
	diags   []Diagnostic
	stats   Stats
}

// NewIterator creates an iterator for project. progress may be nil.
func NewIterator(project *Project, parser *BatchParser, progress func(ProgressEvent)) *Iterator {
	return &Iterator{
		project:  project,
		parser:   parser,
		progress: progress,
		working:  make(map[string][]byte),
		passes:   make(map[string][]*Pass),
	}
}

// Run applies rules to docs until no document has deferred rules.
//
// Every pass removes at least one rule from each document it processes, so
// Run finishes after at most len(rules) passes. Rules that never applied
// because of cancellation or an unrecoverable error are reported as
// diagnostics.
func (it *Iterator) Run(ctx context.Context, docs []*Document, rules []Rule) error {
	defer it.Close()

	if len(rules) == 0 {
		return nil
	}

	queue := make([]*pending, 0, len(docs))
	for i, doc := range docs {
		queue = append(queue, &pending{doc: doc, rules: rules, order: i})
	}

	for n := 1; len(queue) > 0; n++ {
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("%w: %w", ErrCancelled, err)
			it.abandon(queue, KindCancelled, err)
			return err
		}

		next, err := it.pass(ctx, n, queue)
		if err != nil {
			kind := KindUnapplied
			if errors.Is(err, ErrCancelled) {
				kind = KindCancelled
			}
			it.abandon(next, kind, err)
			return err
		}
		queue = next
	}
	return nil
}

// Close discards all working copies. It is safe to call more than once.
func (it *Iterator) Close() {
	clear(it.working)
}

// Changes assembles the change of every document in docs that had edits,
// in docs order.
func (it *Iterator) Changes(docs []*Document, leaveDirty bool) []Change {
	var out []Change
	for _, doc := range docs {
		if c := assemble(doc, it.passes[doc.ID], leaveDirty); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Diagnostics returns the diagnostics collected so far.
func (it *Iterator) Diagnostics() []Diagnostic {
	return it.diags
}

// Stats returns counters collected so far.
func (it *Iterator) Stats() Stats {
	return it.stats
}

// pass runs one fixpoint pass over queue and returns the documents that
// still have deferred rules. On error, the returned slice holds every
// document that did not complete the pass.
func (it *Iterator) pass(ctx context.Context, n int, queue []*pending) (_ []*pending, err error) {
	ctx, span := tracer.Start(ctx, "cleanup.Pass",
		trace.WithAttributes(
			attribute.String("cleanup.project", it.project.Name),
			attribute.Int("cleanup.pass", n),
			attribute.Int("cleanup.documents", len(queue)),
		),
	)
	defer func() { endSpan(span, err) }()

	recordPass(ctx, it.project.Name)
	it.stats.Passes = max(it.stats.Passes, n)

	logger := logging.FromContext(ctx)
	logger.Debug("pass started",
		logging.FieldProject, it.project.Name,
		logging.FieldPass, n,
		logging.FieldDocuments, len(queue))

	var (
		next      []*pending
		processed = make(map[*pending]bool, len(queue))
		index     int
	)

	remaining := func() []*pending {
		out := slices.Clone(next)
		for _, p := range queue {
			if !processed[p] {
				out = append(out, p)
			}
		}
		sortPending(out)
		return out
	}

	step := func(p *pending, opts Options, tree Tree) error {
		index++
		it.report(n, index, len(queue), p.doc)

		undone, err := it.calculate(ctx, n, p, opts, tree)
		if err != nil {
			return err
		}
		processed[p] = true
		if len(undone) > 0 {
			next = append(next, &pending{doc: p.doc, rules: undone, order: p.order})
		} else {
			delete(it.working, p.doc.ID)
		}
		return nil
	}

	groups := make(map[string]*parseGroup)
	var groupOrder []*parseGroup

	for _, p := range queue {
		opts := it.optionsFor(p.rules)
		if !needsTree(p) {
			if err := step(p, opts, nil); err != nil {
				return remaining(), err
			}
			continue
		}

		key := opts.Key()
		g, ok := groups[key]
		if !ok {
			g = &parseGroup{opts: opts, byID: make(map[string]*pending)}
			groups[key] = g
			groupOrder = append(groupOrder, g)
		}
		g.docs = append(g.docs, p.doc.withContent(it.content(p.doc)))
		g.byID[p.doc.ID] = p
	}

	for _, g := range groupOrder {
		err := it.parser.ParseAll(ctx, g.docs, g.opts, func(doc *Document, tree Tree, perr error) error {
			p := g.byID[doc.ID]
			if perr != nil {
				index++
				it.report(n, index, len(queue), p.doc)
				it.parseFailed(ctx, p, perr)
				processed[p] = true
				return nil
			}
			it.stats.Parsed++
			return step(p, g.opts, tree)
		})
		if err != nil {
			return remaining(), err
		}
	}

	sortPending(next)
	logger.Debug("pass completed",
		logging.FieldProject, it.project.Name,
		logging.FieldPass, n,
		logging.FieldDocuments, len(next))
	return next, nil
}

type parseGroup struct {
	opts Options
	docs []*Document
	byID map[string]*pending
}

// calculate runs the pending rules of p in order and records the merged
// solution as a pass. It returns the rules deferred to the next pass.
func (it *Iterator) calculate(ctx context.Context, n int, p *pending, opts Options, tree Tree) ([]Rule, error) {
	logger := logging.FromContext(ctx)
	content := it.content(p.doc)
	arena := fix.NewArena()
	rc := &RuleContext{
		Ctx:      ctx,
		Document: p.doc,
		Content:  content,
		Tree:     tree,
		Options:  opts,
		Edits:    arena,
	}

	var (
		solution = fix.NoNode
		undone   []Rule
		applied  []string
		label    string
		groups   []Group
		status   Status
	)

	for i, rule := range p.rules {
		if len(undone) > 0 && rule.NeedsFreshTree(tree) {
			logger.Debug("deferring rules until the tree reflects deferred edits",
				logging.FieldDocument, p.doc.ID,
				logging.FieldRule, rule.ID())
			it.stats.Deferrals += len(p.rules) - i
			undone = append(undone, p.rules[i:]...)
			break
		}

		f, err := rule.TryFix(rc)
		if err != nil {
			rerr := &RuleError{RuleID: rule.ID(), DocumentID: p.doc.ID, Err: err}
			if errors.Is(err, ErrUnrecoverable) {
				return nil, rerr
			}
			logger.Warn("rule failed",
				logging.FieldDocument, p.doc.ID,
				logging.FieldRule, rule.ID(),
				logging.FieldError, err)
			it.diag(Diagnostic{
				DocumentID: p.doc.ID,
				RuleID:     rule.ID(),
				Kind:       KindRuleError,
				Severity:   SeverityError,
				Message:    err.Error(),
				Err:        rerr,
			})
			undone = append(undone, p.rules[i+1:]...)
			break
		}
		if f == nil || f.Root == fix.NoNode || arena.IsEmpty(f.Root) {
			continue
		}

		edits := arena.Edits(f.Root)
		if f.Status.Severity >= SeverityError {
			it.rejectFix(ctx, p.doc, rule, f.Status.Message, nil)
			undone = append(undone, p.rules[i+1:]...)
			break
		}
		if err := fix.ValidateEdits(edits, len(content)); err != nil {
			it.rejectFix(ctx, p.doc, rule, err.Error(), err)
			undone = append(undone, p.rules[i+1:]...)
			break
		}

		fixGroups := resolveGroups(arena, f.Groups)
		packed := arena.Pack(f.Root)
		if arena.IsEmpty(packed) {
			continue
		}

		switch {
		case solution == fix.NoNode:
			solution = packed
		case arena.Intersects(solution, packed):
			logger.Debug("edits conflict, deferring rule",
				logging.FieldDocument, p.doc.ID,
				logging.FieldRule, rule.ID(),
				logging.FieldPass, n)
			it.stats.Deferrals++
			recordDeferral(ctx, rule.ID())
			undone = append(undone, rule)
			continue
		default:
			solution, err = arena.Merge(solution, packed)
			if err != nil {
				return nil, &RuleError{RuleID: rule.ID(), DocumentID: p.doc.ID, Err: err}
			}
		}

		applied = append(applied, rule.ID())
		label = f.Label
		if label == "" {
			label = rule.Name()
		}
		groups = append(groups, fixGroups...)
		if f.Status.Severity == SeverityWarning {
			status = status.Merge(f.Status)
			it.diag(Diagnostic{
				DocumentID: p.doc.ID,
				RuleID:     rule.ID(),
				Kind:       KindValidationWarning,
				Severity:   SeverityWarning,
				Message:    f.Status.Message,
			})
		}
		it.stats.Fixes++
		recordFix(ctx, rule.ID())
	}

	if solution == fix.NoNode || arena.IsEmpty(solution) {
		return undone, nil
	}

	if len(applied) > 1 {
		label = MultiFixLabel
	}
	edits := arena.Edits(solution)
	after := fix.ApplyEdits(content, edits)
	it.passes[p.doc.ID] = append(it.passes[p.doc.ID], &Pass{
		Index:  n,
		Label:  label,
		Rules:  applied,
		Before: content,
		After:  after,
		Edits:  edits,
		Undo:   fix.UndoEdits(content, edits),
		Groups: groups,
		Status: status,
	})
	it.working[p.doc.ID] = after

	return undone, nil
}

// resolveGroups converts change groups to text edits. It must run before
// the fix tree is packed.
func resolveGroups(arena *fix.Arena, groups []ChangeGroup) []Group {
	if len(groups) == 0 {
		return nil
	}
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		var edits []fix.TextEdit
		for _, id := range g.Edits {
			edits = append(edits, arena.Edits(id)...)
		}
		out = append(out, Group{Name: g.Name, Edits: edits})
	}
	return out
}

func (it *Iterator) rejectFix(ctx context.Context, doc *Document, rule Rule, msg string, err error) {
	logging.FromContext(ctx).Warn("fix rejected",
		logging.FieldDocument, doc.ID,
		logging.FieldRule, rule.ID(),
		logging.FieldError, msg)
	it.diag(Diagnostic{
		DocumentID: doc.ID,
		RuleID:     rule.ID(),
		Kind:       KindValidationError,
		Severity:   SeverityError,
		Message:    msg,
		Err:        err,
	})
}

func (it *Iterator) parseFailed(ctx context.Context, p *pending, err error) {
	logging.FromContext(ctx).Warn("parse failed",
		logging.FieldDocument, p.doc.ID,
		logging.FieldError, err)

	it.stats.ParseFailures++
	delete(it.working, p.doc.ID)
	it.diag(Diagnostic{
		DocumentID: p.doc.ID,
		Kind:       KindParseError,
		Severity:   SeverityError,
		Message:    err.Error(),
		Err:        err,
	})
	for _, rule := range p.rules {
		it.diag(Diagnostic{
			DocumentID: p.doc.ID,
			RuleID:     rule.ID(),
			Kind:       KindUnapplied,
			Severity:   SeverityError,
			Message:    "not applied: document could not be parsed",
			Err:        err,
		})
	}
}

// abandon reports every rule still pending in queue.
func (it *Iterator) abandon(queue []*pending, kind DiagnosticKind, cause error) {
	for _, p := range queue {
		for _, rule := range p.rules {
			it.diag(Diagnostic{
				DocumentID: p.doc.ID,
				RuleID:     rule.ID(),
				Kind:       kind,
				Severity:   SeverityError,
				Message:    "not applied: " + cause.Error(),
				Err:        cause,
			})
		}
	}
}

func (it *Iterator) diag(d Diagnostic) {
	it.diags = append(it.diags, d)
}

func (it *Iterator) report(n, index, total int, doc *Document) {
	if it.progress == nil {
		return
	}
	it.progress(ProgressEvent{Pass: n, Index: index, Total: total, Document: doc})
}

// content returns the working copy of doc, or its original text.
func (it *Iterator) content(doc *Document) []byte {
	if wc, ok := it.working[doc.ID]; ok {
		return wc
	}
	return doc.Content
}

// optionsFor merges the project baseline with the options of rules.
// Later rules override earlier ones.
func (it *Iterator) optionsFor(rules []Rule) Options {
	opts := it.project.Options.Clone()
	for _, r := range rules {
		opts = opts.Merge(r.RequiredOptions())
	}
	return opts
}

func needsTree(p *pending) bool {
	for _, r := range p.rules {
		if r.RequiresParsedTree(p.doc) {
			return true
		}
	}
	return false
}

func sortPending(ps []*pending) {
	slices.SortFunc(ps, func(a, b *pending) int {
		return a.order - b.order
	})
}
