package cleanup

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Document is one source file handed to the engine.
type Document struct {
	// ID uniquely identifies the document within a run. Usually the path.
	ID string

	// Path is the file path used in change names and diagnostics.
	Path string

	// Content is the original text. It is never modified by the engine.
	Content []byte

	// Language selects the parser (e.g., "javascript", "markdown", "text").
	Language string

	// Dirty is true if the host buffer has unsaved changes.
	Dirty bool
}

// withContent returns a shallow copy of d holding content.
func (d *Document) withContent(content []byte) *Document {
	cp := *d
	cp.Content = content
	return &cp
}

// Options is a flat option_name -> value map used for parser options and
// rule settings. Boolean options are spelled "true" and "false".
type Options map[string]string

// Clone returns a copy of o. Cloning a nil map yields an empty map.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	maps.Copy(out, o)
	return out
}

// Merge returns a new map holding o overlaid with other.
// Keys in other win.
func (o Options) Merge(other Options) Options {
	out := o.Clone()
	maps.Copy(out, other)
	return out
}

// Key returns a canonical fingerprint of o. Equal maps have equal keys.
func (o Options) Key() string {
	keys := slices.Sorted(maps.Keys(o))

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(strconv.Quote(k))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(o[k]))
		b.WriteByte(';')
	}
	return b.String()
}

// Bool returns the boolean value of key, or def if the key is missing or
// not a valid boolean.
func (o Options) Bool(key string, def bool) bool {
	v, ok := o[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Int returns the integer value of key, or def if missing or invalid.
func (o Options) Int(key string, def int) int {
	v, ok := o[key]
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Project groups documents that share parser configuration.
type Project struct {
	// Name identifies the project in logs and diagnostics.
	Name string

	// Root is the project directory. Projects are keyed by Root.
	Root string

	// Options are the baseline parser options for every document.
	Options Options
}

// ProjectResolver resolves a document to its owning project.
type ProjectResolver interface {
	Resolve(doc *Document) (*Project, error)
}

// ProjectResolverFunc adapts a function to ProjectResolver.
type ProjectResolverFunc func(doc *Document) (*Project, error)

// Resolve calls f(doc).
func (f ProjectResolverFunc) Resolve(doc *Document) (*Project, error) {
	return f(doc)
}

// SingleProject returns a resolver that places every document in p.
func SingleProject(p *Project) ProjectResolver {
	return ProjectResolverFunc(func(*Document) (*Project, error) {
		return p, nil
	})
}
