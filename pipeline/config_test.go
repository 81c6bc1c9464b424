package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `{
	"max_input_inactivity_period": 500,
	"input": [
		{"name": "screen", "priority": 10, "members": [{"kind": "GrabInput", "config": {}}]}
	],
	"output": [
		{"name": "serial", "members": [{"kind": "SerialOutput", "config": {}}]}
	]
}`

func TestParseConfig_Valid(t *testing.T) {
	cfg, err := ParseConfig(validConfig)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), cfg.MaxInputInactivityPeriod)
	require.Len(t, cfg.Input, 1)
	assert.Equal(t, "screen", cfg.Input[0].Name)
	assert.Equal(t, uint8(10), cfg.Input[0].Priority)
	require.Len(t, cfg.Output, 1)
	assert.Equal(t, "serial", cfg.Output[0].Name)
}

func TestParseConfig_MalformedJSON(t *testing.T) {
	_, err := ParseConfig(`{not json`)
	require.Error(t, err)
	var pipeErr *Error
	require.ErrorAs(t, err, &pipeErr)
	assert.Equal(t, ErrConfig, pipeErr.Kind)
}

func TestParseConfig_DuplicateNameAcrossInputAndOutput(t *testing.T) {
	_, err := ParseConfig(`{
		"input": [{"name": "x", "priority": 1, "members": [{"kind": "a"}]}],
		"output": [{"name": "x", "members": [{"kind": "b"}]}]
	}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate pipeline name")
}

func TestParseConfig_PriorityOutOfRange(t *testing.T) {
	_, err := ParseConfig(`{"input": [{"name": "x", "priority": 0, "members": [{"kind": "a"}]}]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "priority")
}

func TestParseConfig_EmptyPipeline(t *testing.T) {
	_, err := ParseConfig(`{"input": [{"name": "x", "priority": 1, "members": []}]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline is empty")
}

func TestParseConfig_MissingName(t *testing.T) {
	_, err := ParseConfig(`{"output": [{"name": "", "members": [{"kind": "a"}]}]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no name")
}

func TestDecodeConfigInto(t *testing.T) {
	type cfg struct {
		Amount int `json:"amount"`
	}
	var dst cfg
	require.NoError(t, DecodeConfigInto([]byte(`{"amount": 3}`), &dst))
	assert.Equal(t, 3, dst.Amount)
}

func TestDecodeConfigInto_EmptyRawIsNoOp(t *testing.T) {
	type cfg struct {
		Amount int `json:"amount"`
	}
	dst := cfg{Amount: 7}
	require.NoError(t, DecodeConfigInto(nil, &dst))
	assert.Equal(t, 7, dst.Amount, "absent config subtree leaves the zero/default value untouched")
}

func TestDecodeConfigInto_TypeMismatch(t *testing.T) {
	type cfg struct {
		Amount int `json:"amount"`
	}
	var dst cfg
	err := DecodeConfigInto([]byte(`{"amount": "not a number"}`), &dst)
	require.Error(t, err)
}
