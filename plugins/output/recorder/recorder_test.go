package recorder

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gamadril/lightoros/pipeline"
)

func TestSend_AppendsFrames(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)

	f1 := pipeline.NewFrame([]pipeline.RGB{{1, 1, 1}}, nil)
	f2 := pipeline.NewFrame([]pipeline.RGB{{2, 2, 2}}, nil)

	require.NoError(t, p.Send(f1))
	require.NoError(t, p.Send(f2))

	assert.Equal(t, []*pipeline.Frame{f1, f2}, p.Frames())
}

func TestSend_SimulatedFailuresThenRecovers(t *testing.T) {
	raw, err := json.Marshal(Config{FailNextN: 2})
	require.NoError(t, err)
	p, err := New(raw)
	require.NoError(t, err)

	require.Error(t, p.Send(pipeline.NewFrame([]pipeline.RGB{{1, 1, 1}}, nil)))
	require.Error(t, p.Send(pipeline.NewFrame([]pipeline.RGB{{1, 1, 1}}, nil)))
	require.NoError(t, p.Send(pipeline.NewFrame([]pipeline.RGB{{1, 1, 1}}, nil)))

	assert.Len(t, p.Frames(), 1, "only the send that succeeded should be recorded")
}

func TestAttachWriter_WritesSummaryLine(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	p.AttachWriter(&buf)

	frame := pipeline.NewFrame([]pipeline.RGB{{1, 1, 1}, {2, 2, 2}},
		map[string]string{pipeline.MetaWidth: "2", pipeline.MetaHeight: "1"})
	require.NoError(t, p.Send(frame))

	assert.Contains(t, buf.String(), "2 pixels (2x1)")
}

func TestFrames_ReturnsDefensiveCopy(t *testing.T) {
	p, err := New(nil)
	require.NoError(t, err)
	require.NoError(t, p.Send(pipeline.NewFrame([]pipeline.RGB{{1, 1, 1}}, nil)))

	snap := p.Frames()
	snap[0] = nil

	assert.NotNil(t, p.Frames()[0], "mutating the returned slice must not affect internal state")
}
