package goldmark

import (
	"context"
	"testing"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
)

func mdDoc(content string) *cleanup.Document {
	return &cleanup.Document{ID: "a.md", Path: "a.md", Content: []byte(content), Language: "markdown"}
}

func TestParser_New(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		flavor     string
		wantFlavor string
	}{
		{"commonmark", FlavorCommonMark, FlavorCommonMark},
		{"gfm", FlavorGFM, FlavorGFM},
		{"invalid defaults to commonmark", "invalid", FlavorCommonMark},
		{"empty defaults to commonmark", "", FlavorCommonMark},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := New(tt.flavor)
			if p.Flavor() != tt.wantFlavor {
				t.Errorf("Flavor() = %q, want %q", p.Flavor(), tt.wantFlavor)
			}
		})
	}
}

func TestParser_Parse_Basic(t *testing.T) {
	t.Parallel()

	content := []byte("# Hello\n\nWorld")
	doc := &cleanup.Document{ID: "test.md", Path: "test.md", Content: content}

	tree, err := New(FlavorCommonMark).Parse(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	defer tree.Close()

	if string(tree.Content()) != string(content) {
		t.Errorf("Content mismatch")
	}
	if &tree.Content()[0] == &content[0] {
		t.Error("Content should be a copy, not the same slice")
	}
	if tree.Language() != "markdown" {
		t.Errorf("Language() = %q, want markdown", tree.Language())
	}
	if tree.HasErrors() {
		t.Error("markdown trees never have errors")
	}

	root := tree.(*Tree).Root()
	if root.Kind() != ast.KindDocument {
		t.Fatalf("root kind = %v, want Document", root.Kind())
	}
	if root.FirstChild() == nil || root.FirstChild().Kind() != ast.KindHeading {
		t.Error("expected first child to be a heading")
	}
}

func TestParser_Parse_FlavorOption(t *testing.T) {
	t.Parallel()

	content := "| a | b |\n|---|---|\n| 1 | 2 |\n"
	p := New(FlavorCommonMark)

	hasTable := func(opts cleanup.Options) bool {
		tree, err := p.Parse(context.Background(), mdDoc(content), opts)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		found := false
		_ = ast.Walk(tree.(*Tree).Root(), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if entering && n.Kind() == east.KindTable {
				found = true
			}
			return ast.WalkContinue, nil
		})
		return found
	}

	if hasTable(nil) {
		t.Error("commonmark should not parse tables")
	}
	if !hasTable(cleanup.Options{OptionFlavor: FlavorGFM}) {
		t.Error("gfm option should enable tables")
	}
}

func TestParser_Parse_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(FlavorGFM).Parse(ctx, mdDoc("x"), nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestEmphasisDelimiters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		wantOK      bool
		wantOpen    int
		wantClosing int
		wantDelim   byte
	}{
		{"star", "a *b* c", true, 2, 4, '*'},
		{"underscore", "a _b_ c", true, 2, 4, '_'},
		{"multi word", "*one two*", true, 0, 8, '*'},
		{"ends in link", "*[a](u)*", false, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree, err := New(FlavorCommonMark).Parse(context.Background(), mdDoc(tt.content), nil)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			md := tree.(*Tree)

			var em *ast.Emphasis
			_ = ast.Walk(md.Root(), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
				if e, ok := n.(*ast.Emphasis); ok && entering && em == nil {
					em = e
				}
				return ast.WalkContinue, nil
			})
			if em == nil {
				t.Fatal("no emphasis found")
			}

			open, closing, delim, ok := EmphasisDelimiters(em, md.Content())
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if open != tt.wantOpen || closing != tt.wantClosing || delim != tt.wantDelim {
				t.Errorf("got (%d, %d, %q), want (%d, %d, %q)",
					open, closing, delim, tt.wantOpen, tt.wantClosing, tt.wantDelim)
			}
		})
	}
}

// FuzzParse checks that parsing never panics and delimiter offsets stay in bounds.
func FuzzParse(f *testing.F) {
	seeds := []string{"", "*a*", "**b**", "_c_", "*[l](u)*", "\\*x\\*", "***y***", "# h\n\n*e* f"}
	for _, s := range seeds {
		f.Add([]byte(s))
	}

	p := New(FlavorGFM)
	f.Fuzz(func(t *testing.T, data []byte) {
		tree, err := p.Parse(context.Background(), mdDoc(string(data)), nil)
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		md := tree.(*Tree)
		_ = ast.Walk(md.Root(), func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			if e, ok := n.(*ast.Emphasis); ok && entering {
				if open, closing, _, found := EmphasisDelimiters(e, md.Content()); found {
					if open < 0 || closing+e.Level > len(md.Content()) || open > closing {
						t.Errorf("delimiters out of range: %d %d", open, closing)
					}
				}
			}
			return ast.WalkContinue, nil
		})
	})
}
