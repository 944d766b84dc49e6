package stack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushByte_ValidRange(t *testing.T) {
	s := newTestStack(t, 4)

	tests := []struct {
		name string
		v    byte
	}{
		{"first byte", 0x01},
		{"second byte", 0x02},
		{"third byte", 0x03},
		{"last byte before capacity", 0x04},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.PushByte(tt.v)
			assert.NoError(t, err, "push within capacity should not error")
		})
	}
	assert.True(t, s.IsFull(), "stack should be full after filling its capacity")
}

func TestPushByte_OverflowAtCapacity(t *testing.T) {
	s := newTestStack(t, 2)
	require.NoError(t, s.PushByte(1))
	require.NoError(t, s.PushByte(2))

	err := s.PushByte(3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds capacity")
}

func TestPopByte_UnderflowBelowFrameFloor(t *testing.T) {
	s := newTestStack(t, 8)
	require.NoError(t, s.PushByte(1))
	s.SetFrameToTop() // fp = 0, floor = 1
	require.NoError(t, s.PushByte(2))

	_, err := s.PopByte()
	require.NoError(t, err, "popping the local byte above the frame should succeed")

	_, err = s.PopByte()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "would cross below frame floor")
}

func TestPeekByteFromBase_OutOfRange(t *testing.T) {
	s := newTestStack(t, 8)
	require.NoError(t, s.PushByte(0xAA))

	_, err := s.PeekByteFromBase(0)
	assert.NoError(t, err, "offset within sp should peek cleanly")

	_, err = s.PeekByteFromBase(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at or beyond sp")
}

func TestPeekByteFromFrame_NegativeOffsetUnderflows(t *testing.T) {
	s := newTestStack(t, 8)
	_, err := s.PeekByteFromFrame(-1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is negative")
}
