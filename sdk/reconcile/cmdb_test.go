package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovh/lagoonctl/sdk"
)

func TestCMDBDiffStrict(t *testing.T) {
	head := []Row{{"name": "X", "value": "1"}}
	base := []Row{{"name": "X", "value": "2"}}

	facts, err := CMDBDiff(head, base, CMDBOptions{Mode: CMDBModeStrict})
	require.NoError(t, err)
	assert.Equal(t, head, facts.Write)
	assert.Empty(t, facts.Remove)
}

func TestCMDBDiffStrictEqual(t *testing.T) {
	head := []Row{{"name": "X", "value": "1", "sensitive": true}}
	base := []Row{{"name": "X", "value": "1", "sensitive": "true"}}

	facts, err := CMDBDiff(head, base, CMDBOptions{})
	require.NoError(t, err)
	assert.Empty(t, facts.Write)
	assert.Empty(t, facts.Remove)
	assert.Empty(t, facts.DiffMessage)
}

func TestCMDBDiffKeyBoolean(t *testing.T) {
	head := []Row{{"name": "X", "value": "a", "sensitive": true}}
	base := []Row{{"name": "X", "value": "a", "sensitive": "true"}}

	facts, err := CMDBDiff(head, base, CMDBOptions{Mode: CMDBModeKey, Keys: []string{"sensitive"}})
	require.NoError(t, err)
	assert.Empty(t, facts.Write)
	assert.Empty(t, facts.Remove)
}

func TestCMDBDiffKey(t *testing.T) {
	head := []Row{
		{"name": "NEW", "value": "1", "scope": "runtime"},
		{"name": "SCOPE", "value": "1", "scope": "RUNTIME"},
		{"name": "CHANGED", "value": "2", "scope": "build"},
		{"name": "SECRET", "value": "b", "scope": "build", "sensitive": true},
		{"name": "IGNORED", "value": "b", "scope": "build"},
		{"name": "NOSCOPE", "value": "1"},
	}
	base := []Row{
		{"name": "SCOPE", "value": "1", "scope": "runtime"},
		{"name": "CHANGED", "value": "1", "scope": "build"},
		{"name": "SECRET", "value": "a", "scope": "build"},
		{"name": "IGNORED", "value": "a", "scope": "build"},
		{"name": "NOSCOPE", "value": "1", "scope": "build"},
		{"name": "OLD", "value": "1", "scope": "build"},
	}

	facts, err := CMDBDiff(head, base, CMDBOptions{Mode: CMDBModeKey, Keys: []string{"value", "scope"}, Ignore: []string{"IGNORED"}})
	require.NoError(t, err)

	var written []string
	for _, r := range facts.Write {
		written = append(written, r.Name())
	}
	assert.Equal(t, []string{"NEW", "CHANGED", "SECRET", "NOSCOPE"}, written)
	require.Len(t, facts.Remove, 1)
	assert.Equal(t, "OLD", facts.Remove[0].Name())
	assert.Equal(t, []string{
		"+ NEW",
		"CHANGED: [value] -1 +2",
		"SECRET: [value] -**** +****",
		"NOSCOPE: [scope] - +",
		"- OLD",
	}, facts.DiffMessage)
}

func TestCMDBDiffNoRemove(t *testing.T) {
	no := false
	facts, err := CMDBDiff(nil, []Row{{"name": "OLD", "value": "1"}}, CMDBOptions{Remove: &no})
	require.NoError(t, err)
	assert.Empty(t, facts.Remove)
}

func TestCMDBDiffEmptyKeysNoRemove(t *testing.T) {
	base := []Row{{"name": "OLD", "value": "1"}}

	facts, err := CMDBDiff(nil, base, CMDBOptions{Keys: []string{}})
	require.NoError(t, err)
	assert.Empty(t, facts.Remove)

	yes := true
	facts, err = CMDBDiff(nil, base, CMDBOptions{Keys: []string{}, Remove: &yes})
	require.NoError(t, err)
	require.Len(t, facts.Remove, 1)

	facts, err = CMDBDiff(nil, base, CMDBOptions{Keys: []string{"value"}})
	require.NoError(t, err)
	require.Len(t, facts.Remove, 1)
}

func TestCMDBDiffJSON(t *testing.T) {
	head := []Row{
		{"name": "VALID", "value": `{"a":1}`, "type": "json"},
		{"name": "INVALID", "value": `{"a":1}`, "type": "json"},
	}
	base := []Row{
		{"name": "VALID", "value": `{ "a": 2 }`},
		{"name": "INVALID", "value": `{a:1`},
	}

	facts, err := CMDBDiff(head, base, CMDBOptions{})
	require.NoError(t, err)
	assert.Empty(t, facts.Write)
	require.Len(t, facts.Remove, 1)
	assert.Equal(t, "INVALID", facts.Remove[0].Name())
	assert.Equal(t, []string{"INVALID is invalid JSON marking for write"}, facts.DiffMessage)
}

func TestCMDBDiffDedup(t *testing.T) {
	head := []Row{{"name": "X", "value": "1"}, {"name": "X", "value": "2"}}

	facts, err := CMDBDiff(head, nil, CMDBOptions{})
	require.NoError(t, err)
	require.Len(t, facts.Write, 1)
	assert.Equal(t, "2", facts.Write[0]["value"])
}

func TestCMDBDiffInvalidOptions(t *testing.T) {
	_, err := CMDBDiff(nil, nil, CMDBOptions{Mode: "fuzzy"})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrInvalidEnumValue))

	_, err = CMDBDiff(nil, nil, CMDBOptions{Mode: CMDBModeKey})
	assert.True(t, sdk.ErrorIs(err, sdk.ErrWrongRequest))
}
