package cleanup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
)

func TestOptions(t *testing.T) {
	t.Parallel()

	base := cleanup.Options{"a": "1", "b": "true"}
	merged := base.Merge(cleanup.Options{"b": "false", "c": "x"})

	assert.Equal(t, cleanup.Options{"a": "1", "b": "false", "c": "x"}, merged)
	assert.Equal(t, "true", base["b"], "merge must not modify the receiver")

	var nilOpts cleanup.Options
	assert.NotNil(t, nilOpts.Clone())
	assert.Empty(t, nilOpts.Merge(nil))

	assert.True(t, base.Bool("b", false))
	assert.False(t, merged.Bool("b", true))
	assert.True(t, merged.Bool("missing", true))
	assert.True(t, merged.Bool("c", true), "invalid boolean yields default")

	assert.Equal(t, 1, base.Int("a", 0))
	assert.Equal(t, 7, base.Int("b", 7))
	assert.Equal(t, 9, base.Int("missing", 9))
}

func TestOptions_Key(t *testing.T) {
	t.Parallel()

	a := cleanup.Options{"x": "1", "y": "2"}
	b := cleanup.Options{"y": "2", "x": "1"}
	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), cleanup.Options{"x": "1"}.Key())
	assert.NotEqual(t, cleanup.Options{"a": "b;c"}.Key(), cleanup.Options{"a": "b", "c": ""}.Key())
	assert.Empty(t, cleanup.Options(nil).Key())
}

func TestStatus_Merge(t *testing.T) {
	t.Parallel()

	st := cleanup.OK().Merge(cleanup.Warning("w1")).Merge(cleanup.OK()).Merge(cleanup.Error("e1"))
	assert.Equal(t, cleanup.SeverityError, st.Severity)
	assert.Equal(t, "w1; e1", st.Message)
	assert.Equal(t, "error", st.Severity.String())
	assert.True(t, cleanup.OK().IsOK())
}
