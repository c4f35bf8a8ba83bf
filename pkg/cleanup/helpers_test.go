package cleanup_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/fix"
)

// patternRule replaces the first match of re with text.
type patternRule struct {
	cleanup.BaseRule
	re     *regexp.Regexp
	text   string
	fresh  bool
	status cleanup.Status
	err    error
	groups bool

	mu    sync.Mutex
	calls int
	seen  []cleanup.Options
}

func newPatternRule(id, pattern, text string) *patternRule {
	return &patternRule{
		BaseRule: cleanup.NewBaseRule(id, id+"-name", "replaces "+pattern, false, nil),
		re:       regexp.MustCompile(pattern),
		text:     text,
	}
}

func newTreeRule(id, pattern, text string, opts cleanup.Options) *patternRule {
	return &patternRule{
		BaseRule: cleanup.NewBaseRule(id, id+"-name", "replaces "+pattern, true, opts),
		re:       regexp.MustCompile(pattern),
		text:     text,
	}
}

func (r *patternRule) NeedsFreshTree(_ cleanup.Tree) bool {
	return r.fresh
}

func (r *patternRule) TryFix(rc *cleanup.RuleContext) (*cleanup.Fix, error) {
	r.mu.Lock()
	r.calls++
	r.seen = append(r.seen, rc.Options)
	r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	loc := r.re.FindIndex(rc.Content)
	if loc == nil {
		return nil, nil
	}
	leaf := rc.Edits.Replace(loc[0], loc[1]-loc[0], r.text)
	f, err := rc.NewFix("Apply "+r.ID(), leaf)
	if err != nil {
		return nil, err
	}
	f.Status = r.status
	if r.groups {
		f.Groups = []cleanup.ChangeGroup{{Name: r.ID() + " group", Edits: []fix.NodeID{leaf}}}
	}
	return f, nil
}

func (r *patternRule) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// tagRule appends "#tag" at the end of the document once.
type tagRule struct {
	cleanup.BaseRule
	tag string
}

func newTagRule(tag string) *tagRule {
	return &tagRule{
		BaseRule: cleanup.NewBaseRule("tag."+tag, "tag "+tag, "appends a tag", false, nil),
		tag:      "#" + tag,
	}
}

func (r *tagRule) TryFix(rc *cleanup.RuleContext) (*cleanup.Fix, error) {
	if regexp.MustCompile(regexp.QuoteMeta(r.tag)).Match(rc.Content) {
		return nil, nil
	}
	return rc.NewFix("tag", rc.Edits.Insert(len(rc.Content), r.tag))
}

// rangeRule returns a fixed edit regardless of content.
type rangeRule struct {
	cleanup.BaseRule
	start, end int
}

func (r *rangeRule) TryFix(rc *cleanup.RuleContext) (*cleanup.Fix, error) {
	return rc.NewFix("range", rc.Edits.Replace(r.start, r.end-r.start, "!"))
}

type fakeTree struct {
	content []byte
	parser  *fakeParser
}

func (t *fakeTree) Content() []byte  { return t.content }
func (t *fakeTree) Language() string { return "fake" }
func (t *fakeTree) HasErrors() bool  { return false }
func (t *fakeTree) Close()           { t.parser.live.Add(-1) }

var errFakeParse = errors.New("fake syntax error")

// fakeParser records what it parsed and how many trees are alive.
type fakeParser struct {
	fail func(doc *cleanup.Document) bool

	mu     sync.Mutex
	parsed []string
	opts   []cleanup.Options

	live atomic.Int64
	peak atomic.Int64
}

func (p *fakeParser) Parse(_ context.Context, doc *cleanup.Document, opts cleanup.Options) (cleanup.Tree, error) {
	if p.fail != nil && p.fail(doc) {
		return nil, errFakeParse
	}

	n := p.live.Add(1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	p.mu.Lock()
	p.parsed = append(p.parsed, string(doc.Content))
	p.opts = append(p.opts, opts)
	p.mu.Unlock()

	return &fakeTree{content: doc.Content, parser: p}, nil
}

func (p *fakeParser) Parsed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.parsed...)
}

func doc(id, content string) *cleanup.Document {
	return &cleanup.Document{ID: id, Path: id, Content: []byte(content), Language: "text"}
}

func run(ctx context.Context, e *cleanup.Engine, docs []*cleanup.Document, rules ...cleanup.Rule) (*cleanup.Result, error) {
	return e.Run(ctx, docs, rules, cleanup.RunOptions{})
}

// hollowRule returns a fix whose root nests only empty composites.
type hollowRule struct {
	cleanup.BaseRule
}

func newHollowRule(id string) *hollowRule {
	return &hollowRule{BaseRule: cleanup.NewBaseRule(id, id+"-name", "edits nothing", false, nil)}
}

func (r *hollowRule) TryFix(rc *cleanup.RuleContext) (*cleanup.Fix, error) {
	inner := rc.Edits.Multi()
	if err := rc.Edits.AddChild(inner, rc.Edits.Multi()); err != nil {
		return nil, err
	}
	return rc.NewFix("hollow", inner)
}
