package cleanup

// BaseRule provides a default implementation of the Rule interface.
// Embed this in rule implementations and override methods as needed.
//
// Fields are unexported to avoid stutter and name collisions with interface methods.
type BaseRule struct {
	id       string  // Unique identifier (e.g., "js.var-to-let")
	name     string  // Human-readable name
	desc     string  // Detailed description
	needTree bool    // Whether TryFix needs a parsed tree
	options  Options // Parser options required by the rule
}

// NewBaseRule creates a BaseRule with the given properties.
func NewBaseRule(id, name, desc string, needTree bool, options Options) BaseRule {
	return BaseRule{
		id:       id,
		name:     name,
		desc:     desc,
		needTree: needTree,
		options:  options,
	}
}

// ID returns the unique identifier for this rule.
func (r *BaseRule) ID() string {
	return r.id
}

// Name returns the human-readable name of the rule.
func (r *BaseRule) Name() string {
	return r.name
}

// Description returns a detailed description of what the rule rewrites.
func (r *BaseRule) Description() string {
	return r.desc
}

// RequiresParsedTree returns the value given to NewBaseRule for every document.
func (r *BaseRule) RequiresParsedTree(_ *Document) bool {
	return r.needTree
}

// RequiredOptions returns a copy of the rule's parser options.
func (r *BaseRule) RequiredOptions() Options {
	return r.options.Clone()
}

// NeedsFreshTree returns false. Override it for rules whose detection
// depends on edits made by earlier rules.
func (r *BaseRule) NeedsFreshTree(_ Tree) bool {
	return false
}

// TryFix must be overridden by concrete rule implementations.
// The default implementation has nothing to change.
func (r *BaseRule) TryFix(_ *RuleContext) (*Fix, error) {
	return nil, nil
}
