package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/gocleanup/pkg/cleanup"
	"github.com/yaklabco/gocleanup/pkg/cleanup/rules"
)

func TestRulesCommand_RuleFormatFlag(t *testing.T) {
	cmd := newRulesCommand()
	flag := cmd.Flags().Lookup("rule-format")
	require.NotNil(t, flag)
	assert.Equal(t, "combined", flag.DefValue)
}

func TestCollectRuleInfo(t *testing.T) {
	t.Parallel()

	reg := cleanup.NewRegistry()
	rules.Register(reg)
	optIn := rules.NewVarToLetRule()
	reg.Register(optIn, cleanup.EnabledBy(optIn, false))

	infos := collectRuleInfo(reg)
	require.Len(t, infos, len(reg.IDs()))

	for i, info := range infos {
		assert.Equal(t, i+1, info.Priority)
		assert.Equal(t, info.ID != rules.VarToLetID, info.Enabled, info.ID)
	}
}

func TestWriteRulesJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := writeRulesJSON(&buf, []ruleInfo{{ID: "a", Name: "A", Priority: 1, Enabled: true}})
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0]["id"])
	assert.Equal(t, true, got[0]["enabled"])
}

func TestWriteRulesJSON_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, writeRulesJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestRulesCommand_InvalidFlags(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{{"--format", "yaml"}, {"--rule-format", "title"}} {
		cmd := newRulesCommand()
		cmd.SetArgs(args)
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		err := cmd.Execute()
		require.Error(t, err, args)
		assert.Equal(t, ExitInvalidUsage, ExitCode(err), args)
	}
}
