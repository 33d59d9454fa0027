package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSession struct {
	got []byte
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry[*fakeSession](zap.NewNop())
	reg.Register(0x02, []SessionState{StateInWorld}, func(s *fakeSession, r *Reader) {
		s.got = append(s.got, r.ReadC())
	})

	sess := &fakeSession{}
	require.NoError(t, reg.Dispatch(sess, StateInWorld, []byte{0x02, 0x7F}))
	assert.Equal(t, []byte{0x7F}, sess.got)

	assert.True(t, reg.Handles(0x02, StateInWorld))
	assert.False(t, reg.Handles(0x02, StateConnected))
	assert.False(t, reg.Handles(0x03, StateInWorld))
}

func TestRegistryRejects(t *testing.T) {
	reg := NewRegistry[*fakeSession](zap.NewNop())
	reg.Register(0x02, []SessionState{StateInWorld}, func(*fakeSession, *Reader) {})
	sess := &fakeSession{}

	assert.ErrorIs(t, reg.Dispatch(sess, StateInWorld, nil), ErrEmptyPacket)
	assert.ErrorIs(t, reg.Dispatch(sess, StateConnected, []byte{0x02}), ErrStateNotAllowed)
	assert.NoError(t, reg.Dispatch(sess, StateInWorld, []byte{0x55}), "unknown opcodes are ignored")
}

func TestRegistryRecoversPanic(t *testing.T) {
	reg := NewRegistry[*fakeSession](nil)
	reg.Register(0x04, []SessionState{StateConnected}, func(*fakeSession, *Reader) {
		panic("bad packet")
	})
	err := reg.Dispatch(&fakeSession{}, StateConnected, []byte{0x04})
	assert.ErrorIs(t, err, ErrHandlerPanic)
	assert.Contains(t, err.Error(), "bad packet")
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "InWorld", StateInWorld.String())
	assert.Equal(t, "Unknown(9)", SessionState(9).String())
}
