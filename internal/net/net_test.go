package net

import (
	"bytes"
	gonet "net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/net/packet"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	big := bytes.Repeat([]byte{0xA9}, 70000)
	require.NoError(t, WriteFrame(&buf, []byte{1, 2, 3}))
	require.NoError(t, WriteFrame(&buf, big))
	assert.Equal(t, []byte{7, 0, 0, 0, 1, 2, 3}, buf.Bytes()[:7])

	got, err := ReadFrame(&buf, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
	got, err = ReadFrame(&buf, 0)
	require.NoError(t, err)
	assert.Len(t, got, 70000)
}

func TestReadFrameRejects(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader([]byte{4, 0, 0, 0}), 0)
	assert.Error(t, err, "empty payload")

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, make([]byte, 100)))
	_, err = ReadFrame(&buf, 64)
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	_, err = ReadFrame(bytes.NewReader([]byte{9, 0, 0, 0, 1}), 0)
	assert.Error(t, err, "truncated payload")
}

func TestSessionOverTCP(t *testing.T) {
	server, client := gonet.Pipe()
	defer client.Close()

	closed := make(chan uint64, 1)
	sess := NewSession(NewTCPConn(server, 0), 7, 4, 4, 0, zap.NewNop())
	sess.OnClose(func(id uint64) { closed <- id })
	go sess.Start()

	hello, err := ReadFrame(client, 0)
	require.NoError(t, err)
	require.Len(t, hello, 17)
	assert.Equal(t, packet.S_OPCODE_HELLO, hello[0])
	assert.Equal(t, sess.Token[:], hello[1:])
	assert.Equal(t, packet.StateConnected, sess.State())

	sess.Send([]byte{packet.S_OPCODE_PONG, 1})
	assert.Equal(t, 1, sess.Pending())
	sess.FlushOutput()
	assert.Equal(t, 0, sess.Pending())
	out, err := ReadFrame(client, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{packet.S_OPCODE_PONG, 1}, out)

	require.NoError(t, WriteFrame(client, []byte{packet.C_OPCODE_PING, 9, 0, 0, 0}))
	select {
	case in := <-sess.InQueue:
		assert.Equal(t, packet.C_OPCODE_PING, in[0])
	case <-time.After(2 * time.Second):
		t.Fatal("packet not delivered")
	}

	sess.Close()
	sess.Close()
	assert.True(t, sess.IsClosed())
	assert.Equal(t, packet.StateDisconnecting, sess.State())
	assert.Equal(t, uint64(7), <-closed)

	sess.Send([]byte{1})
	assert.Equal(t, 0, sess.Pending(), "closed sessions drop output")
}

func TestSessionBackpressureCloses(t *testing.T) {
	server, client := gonet.Pipe()
	defer client.Close()
	sess := NewSession(NewTCPConn(server, 0), 1, 1, 1, 0, zap.NewNop())

	// no writer running: the queue of one fills immediately
	sess.Send([]byte{1})
	sess.Send([]byte{2})
	sess.FlushOutput()
	assert.True(t, sess.IsClosed())
}

func TestWebSocketSession(t *testing.T) {
	srv := &Server{
		newConns: make(chan *Session, 1),
		deadCh:   make(chan uint64, 1),
		opts:     ServerOptions{InQueueSize: 4, OutQueueSize: 4, MaxFrameSize: DefaultMaxFrameSize},
		log:      zap.NewNop(),
		closeCh:  make(chan struct{}),
	}
	hs := httptest.NewServer(http.HandlerFunc(srv.handleWebSocket))
	defer hs.Close()

	u := "ws" + strings.TrimPrefix(hs.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	defer conn.Close()

	typ, hello, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.BinaryMessage, typ)
	assert.Equal(t, packet.S_OPCODE_HELLO, hello[0])

	var sess *Session
	select {
	case sess = <-srv.NewSessions():
	case <-time.After(2 * time.Second):
		t.Fatal("no session")
	}
	assert.Equal(t, sess.Token[:], hello[1:])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ignored")))
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte{packet.C_OPCODE_LOGOUT}))
	select {
	case in := <-sess.InQueue:
		assert.Equal(t, []byte{packet.C_OPCODE_LOGOUT}, in)
	case <-time.After(2 * time.Second):
		t.Fatal("packet not delivered")
	}

	conn.Close()
	select {
	case id := <-srv.DeadSessions():
		assert.Equal(t, sess.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("session not reported dead")
	}
}

func TestInboundLimit(t *testing.T) {
	l := inboundLimit{max: 2}
	_, ok := l.allow(100)
	assert.True(t, ok)
	_, ok = l.allow(100)
	assert.True(t, ok)
	n, ok := l.allow(100)
	assert.False(t, ok)
	assert.Equal(t, 3, n)

	_, ok = l.allow(101)
	assert.True(t, ok, "a new second resets the count")

	off := inboundLimit{}
	for i := 0; i < 1000; i++ {
		_, ok = off.allow(5)
	}
	assert.True(t, ok)
}
