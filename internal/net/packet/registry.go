package packet

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// SessionState represents the session's current protocol phase. A session
// is Connected until C_OPCODE_ENTER_WORLD binds it to a player.
type SessionState int

const (
	StateConnected SessionState = iota
	StateInWorld
	StateDisconnecting
)

func (s SessionState) String() string {
	switch s {
	case StateConnected:
		return "Connected"
	case StateInWorld:
		return "InWorld"
	case StateDisconnecting:
		return "Disconnecting"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

var (
	ErrEmptyPacket     = errors.New("packet: empty payload")
	ErrStateNotAllowed = errors.New("packet: opcode not allowed in session state")
	ErrHandlerPanic    = errors.New("packet: handler panicked")
)

// HandlerFunc handles one client packet. The reader is positioned after
// the opcode byte.
type HandlerFunc[S any] func(sess S, r *Reader)

type route[S any] struct {
	fn     HandlerFunc[S]
	states uint32 // bit per SessionState
}

// Registry routes client opcodes to handlers, gated by session state. S is
// the session type; the net package cannot be imported here.
type Registry[S any] struct {
	routes [256]*route[S]
	log    *zap.Logger
}

func NewRegistry[S any](log *zap.Logger) *Registry[S] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry[S]{log: log}
}

// Register routes opcode to fn in the given states. A second Register for
// the same opcode replaces the first.
func (reg *Registry[S]) Register(opcode byte, states []SessionState, fn HandlerFunc[S]) {
	var mask uint32
	for _, s := range states {
		mask |= 1 << uint(s)
	}
	reg.routes[opcode] = &route[S]{fn: fn, states: mask}
}

// Handles reports whether opcode has a handler in state.
func (reg *Registry[S]) Handles(opcode byte, state SessionState) bool {
	rt := reg.routes[opcode]
	return rt != nil && rt.states&(1<<uint(state)) != 0
}

// Dispatch runs the handler for data[0]. Unknown opcodes are ignored; a
// known opcode outside its states returns ErrStateNotAllowed.
func (reg *Registry[S]) Dispatch(sess S, state SessionState, data []byte) error {
	if len(data) == 0 {
		return ErrEmptyPacket
	}
	opcode := data[0]
	reg.log.Debug("收到封包",
		zap.String("op", fmt.Sprintf("0x%02X", opcode)),
		zap.Int("size", len(data)),
		zap.Stringer("state", state),
	)

	rt := reg.routes[opcode]
	if rt == nil {
		reg.log.Debug("未知操作碼", zap.String("op", fmt.Sprintf("0x%02X", opcode)))
		return nil
	}
	if rt.states&(1<<uint(state)) == 0 {
		reg.log.Warn("操作碼在此狀態下不允許",
			zap.String("op", fmt.Sprintf("0x%02X", opcode)),
			zap.Stringer("state", state),
		)
		return fmt.Errorf("%w: 0x%02X in %s", ErrStateNotAllowed, opcode, state)
	}
	return reg.call(rt.fn, sess, NewReader(data), opcode)
}

// call keeps one malformed packet from taking down the game loop.
func (reg *Registry[S]) call(fn HandlerFunc[S], sess S, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("處理器 panic 已恢復",
				zap.String("op", fmt.Sprintf("0x%02X", opcode)),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("%w: 0x%02X: %v", ErrHandlerPanic, opcode, rec)
		}
	}()
	fn(sess, r)
	return nil
}
