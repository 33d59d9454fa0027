package net

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/net/packet"
)

const writeTimeout = 10 * time.Second

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; game state is accessed only from the game loop.
type Session struct {
	ID    uint64
	Token uuid.UUID
	conn  Conn

	state atomic.Int32 // packet.SessionState stored as int32

	InQueue  chan []byte // game loop reads packets from here
	OutQueue chan []byte // writer goroutine reads from here

	IP string

	// Buffered packets, flushed once per tick by the output system. Partition
	// ticks running on different workers append concurrently.
	outMu  sync.Mutex
	outBuf [][]byte

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	onClose   func(id uint64)

	limit inboundLimit // readLoop only

	log *zap.Logger
}

func NewSession(conn Conn, id uint64, inSize, outSize, pktPerSec int, log *zap.Logger) *Session {
	s := &Session{
		ID:       id,
		Token:    uuid.New(),
		conn:     conn,
		InQueue:  make(chan []byte, inSize),
		OutQueue: make(chan []byte, outSize),
		IP:       conn.RemoteAddr(),
		closeCh:  make(chan struct{}),
		limit:    inboundLimit{max: pktPerSec},
		log:      log.With(zap.Uint64("session", id)),
	}
	s.state.Store(int32(packet.StateConnected))
	return s
}

func (s *Session) State() packet.SessionState {
	return packet.SessionState(s.state.Load())
}

func (s *Session) SetState(st packet.SessionState) {
	s.state.Store(int32(st))
}

// OnClose registers a callback run once when the session closes. Must be
// set before Start.
func (s *Session) OnClose(fn func(id uint64)) { s.onClose = fn }

// Start writes the hello packet carrying the session token, then launches
// the reader and writer goroutines.
func (s *Session) Start() {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_HELLO)
	w.WriteBytes(s.Token[:])
	if err := s.conn.WritePacket(w.Bytes(), time.Now().Add(writeTimeout)); err != nil {
		s.log.Error("初始封包發送失敗", zap.Error(err))
		s.Close()
		return
	}

	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a packet for sending. The packet is not written until
// FlushOutput is called by the output system.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	s.outMu.Lock()
	s.outBuf = append(s.outBuf, data)
	s.outMu.Unlock()
}

// Pending returns the number of buffered packets.
func (s *Session) Pending() int {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	return len(s.outBuf)
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop goroutine.
// Non-blocking: if OutQueue is full, the session is disconnected (backpressure).
func (s *Session) FlushOutput() {
	s.outMu.Lock()
	buf := s.outBuf
	s.outBuf = nil
	s.outMu.Unlock()

	for _, data := range buf {
		select {
		case s.OutQueue <- data:
		default:
			s.log.Warn("輸出佇列已滿，斷開慢速連線")
			s.Close()
			return
		}
	}
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.SetState(packet.StateDisconnecting)
		close(s.closeCh)
		s.conn.Close()
		if s.onClose != nil {
			s.onClose(s.ID)
		}
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop feeds InQueue until the transport fails, the peer floods, or
// the session closes.
func (s *Session) readLoop() {
	defer s.Close()

	for !s.closed.Load() {
		payload, err := s.conn.ReadPacket()
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("讀取錯誤", zap.Error(err))
			}
			return
		}
		if n, ok := s.limit.allow(time.Now().Unix()); !ok {
			s.log.Warn("封包速率超限，斷開連線", zap.Int("pps", n))
			return
		}

		// Blocks while the game loop is behind. Dropping a move would leave
		// the server position behind the client's.
		select {
		case s.InQueue <- payload:
		case <-s.closeCh:
			return
		}
	}
}

// inboundLimit counts packets per wall-clock second. max 0 disables it.
type inboundLimit struct {
	max    int
	count  int
	second int64
}

func (l *inboundLimit) allow(now int64) (int, bool) {
	if l.max <= 0 {
		return 0, true
	}
	if now != l.second {
		l.second, l.count = now, 0
	}
	l.count++
	return l.count, l.count <= l.max
}

// writeLoop drains OutQueue onto the transport.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case <-s.closeCh:
			return
		case data := <-s.OutQueue:
			if err := s.write(data); err != nil {
				if !s.closed.Load() {
					s.log.Debug("寫入錯誤", zap.Error(err))
				}
				return
			}
		}
	}
}

func (s *Session) write(data []byte) error {
	if len(data) > 0 && s.log.Core().Enabled(zap.DebugLevel) {
		s.log.Debug("TX",
			zap.String("op", fmt.Sprintf("0x%02X", data[0])),
			zap.Int("len", len(data)),
		)
	}
	return s.conn.WritePacket(data, time.Now().Add(writeTimeout))
}
