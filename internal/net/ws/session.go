package ws

import (
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sasha-s/go-deadlock"

	"horde-hunt/server/internal/net/proto"
	"horde-hunt/server/internal/telemetry"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
	sendBuffer     = 64
)

var (
	// ErrClosed is returned by Send after the session closed.
	ErrClosed = errors.New("session closed")
	// ErrSlowConsumer is returned when the outgoing buffer is full.
	ErrSlowConsumer = errors.New("send buffer full")
)

// Session is one websocket client. Frames queue on a buffered channel that a
// single write pump drains, so the room goroutine never blocks on the network.
type Session struct {
	id     string
	conn   *websocket.Conn
	codec  proto.Codec
	logger telemetry.Logger

	mu     deadlock.Mutex
	send   chan []byte
	closed bool
	reason string
}

func newSession(id string, conn *websocket.Conn, codec proto.Codec, logger telemetry.Logger) *Session {
	return &Session{
		id:     id,
		conn:   conn,
		codec:  codec,
		logger: logger,
		send:   make(chan []byte, sendBuffer),
	}
}

func (s *Session) ID() string         { return s.id }
func (s *Session) Codec() proto.Codec { return s.codec }

// Send queues a frame without blocking.
func (s *Session) Send(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.send <- frame:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// Close flushes queued frames, then sends a close frame carrying reason.
func (s *Session) Close(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.reason = reason
	close(s.send)
}

func (s *Session) closeReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

func (s *Session) messageType() int {
	if s.codec.Binary() {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// writePump owns every write on the connection.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, s.closeReason())
				s.conn.WriteMessage(websocket.CloseMessage, msg)
				return
			}
			if err := s.conn.WriteMessage(s.messageType(), frame); err != nil {
				s.logger.Printf("write to %s failed: %v", s.id, err)
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
