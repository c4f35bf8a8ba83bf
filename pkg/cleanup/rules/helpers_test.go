package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/parser"
)

// cleanupText runs rules over one document and returns the final text, the
// number of passes, and the result.
func cleanupText(t *testing.T, language, content string, rules ...cleanup.Rule) (string, int, *cleanup.Result) {
	t.Helper()

	doc := &cleanup.Document{ID: "doc", Path: "doc", Content: []byte(content), Language: language}
	engine := cleanup.NewEngine(parser.Default("gfm"), nil)

	result, err := engine.Run(context.Background(), []*cleanup.Document{doc}, rules, cleanup.RunOptions{})
	require.NoError(t, err)

	change, ok := result.Change("doc")
	if !ok {
		return content, 0, result
	}
	out, err := change.Apply([]byte(content))
	require.NoError(t, err)
	require.Equal(t, string(change.Preview()), string(out))
	return string(out), len(change.Passes()), result
}
