package sequence

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeq(t *testing.T, cfg Config) *plugin {
	t.Helper()
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	p, err := New(raw)
	require.NoError(t, err)
	require.NoError(t, p.Init())
	return p
}

func TestGet_ReplaysFramesInOrder(t *testing.T) {
	p := newSeq(t, Config{
		Frames: []FrameSpec{
			{Width: 1, Height: 1, Pixels: [][3]uint8{{1, 1, 1}}},
			{Width: 1, Height: 1, Pixels: [][3]uint8{{2, 2, 2}}},
		},
	})

	f1, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), f1.Pixels[0].R)

	f2, err := p.Get()
	require.NoError(t, err)
	assert.Equal(t, uint8(2), f2.Pixels[0].R)
}

func TestGet_RepeatWrapsAround(t *testing.T) {
	p := newSeq(t, Config{
		Repeat: true,
		Frames: []FrameSpec{
			{Pixels: [][3]uint8{{1, 1, 1}}},
		},
	})

	for i := 0; i < 3; i++ {
		f, err := p.Get()
		require.NoError(t, err)
		assert.Equal(t, uint8(1), f.Pixels[0].R)
	}
}

func TestGet_NoRepeatBlocksThenUnblocks(t *testing.T) {
	p := newSeq(t, Config{
		Repeat: false,
		Frames: []FrameSpec{{Pixels: [][3]uint8{{1, 1, 1}}}},
	})

	_, err := p.Get()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := p.Get()
		done <- err
	}()

	select {
	case <-done:
		t.Fatal("Get must block once the frame list is exhausted and Repeat is false")
	case <-time.After(20 * time.Millisecond):
	}

	p.Unblock()
	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("Get did not return after Unblock")
	}
}

func TestNew_RejectsEmptyFrameList(t *testing.T) {
	raw, _ := json.Marshal(Config{})
	_, err := New(raw)
	require.Error(t, err)
}

func TestUnblock_IsIdempotent(t *testing.T) {
	p := newSeq(t, Config{Frames: []FrameSpec{{Pixels: [][3]uint8{{1, 1, 1}}}}})
	p.Unblock()
	assert.NotPanics(t, func() { p.Unblock() })
}
