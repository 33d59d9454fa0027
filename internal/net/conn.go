package net

import (
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one client transport. A session reads and writes whole packets;
// framing is the transport's business.
type Conn interface {
	ReadPacket() ([]byte, error)
	WritePacket(data []byte, deadline time.Time) error
	RemoteAddr() string
	Close() error
}

// tcpConn frames packets with a 32-bit length header.
type tcpConn struct {
	c       net.Conn
	maxSize int
}

func NewTCPConn(c net.Conn, maxFrame int) Conn {
	return &tcpConn{c: c, maxSize: maxFrame}
}

func (t *tcpConn) ReadPacket() ([]byte, error) { return ReadFrame(t.c, t.maxSize) }

func (t *tcpConn) WritePacket(data []byte, deadline time.Time) error {
	t.c.SetWriteDeadline(deadline)
	return WriteFrame(t.c, data)
}

func (t *tcpConn) RemoteAddr() string { return t.c.RemoteAddr().String() }
func (t *tcpConn) Close() error       { return t.c.Close() }

// wsConn carries one packet per binary websocket message.
type wsConn struct {
	c *websocket.Conn
}

func NewWebSocketConn(c *websocket.Conn, maxFrame int) Conn {
	if maxFrame > 0 {
		c.SetReadLimit(int64(maxFrame))
	}
	return &wsConn{c: c}
}

func (w *wsConn) ReadPacket() ([]byte, error) {
	for {
		typ, data, err := w.c.ReadMessage()
		if err != nil {
			return nil, err
		}
		if typ == websocket.BinaryMessage && len(data) > 0 {
			return data, nil
		}
	}
}

func (w *wsConn) WritePacket(data []byte, deadline time.Time) error {
	w.c.SetWriteDeadline(deadline)
	return w.c.WriteMessage(websocket.BinaryMessage, data)
}

func (w *wsConn) RemoteAddr() string { return w.c.RemoteAddr().String() }
func (w *wsConn) Close() error       { return w.c.Close() }
