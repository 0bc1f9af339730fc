package ws

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"horde-hunt/server/internal/net/proto"
	"horde-hunt/server/internal/room"
	"horde-hunt/server/internal/telemetry"
	"horde-hunt/server/logging"
	loggingnetwork "horde-hunt/server/logging/network"
)

// DefaultRoom is used when the client does not name a room.
const DefaultRoom = "lobby"

// Rooms resolves the room a connection asks for.
type Rooms interface {
	Join(id string) (*room.Room, error)
}

type HandlerConfig struct {
	Logger    telemetry.Logger
	Publisher logging.Publisher
	Metrics   telemetry.Metrics
}

type Handler struct {
	rooms     Rooms
	logger    telemetry.Logger
	publisher logging.Publisher
	metrics   telemetry.Metrics
	upgrader  websocket.Upgrader
}

func NewHandler(rooms Rooms, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = logging.NopPublisher()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		rooms:     rooms,
		logger:    logger,
		publisher: publisher,
		metrics:   metrics,
		upgrader:  upgrader,
	}
}

// Handle upgrades GET /ws?room=<id>&codec=json|msgpack and runs the session
// until the client goes away.
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = DefaultRoom
	}
	codec, err := proto.CodecFor(r.URL.Query().Get("codec"))
	if err != nil {
		nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
		return
	}
	rm, err := h.rooms.Join(roomID)
	if err != nil {
		nethttp.Error(w, err.Error(), nethttp.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed for room %s: %v", roomID, err)
		return
	}

	s := newSession(uuid.NewString(), conn, codec, h.logger)
	go s.writePump()

	welcome, err := codec.Marshal(proto.Welcome{Type: proto.TypeWelcome, ConnectionID: s.ID()})
	if err != nil {
		h.logger.Printf("failed to encode welcome for %s: %v", s.ID(), err)
		s.Close("internal error")
		return
	}
	if err := s.Send(welcome); err != nil {
		s.Close("internal error")
		return
	}
	if err := rm.Connect(s); err != nil {
		s.Close("room closed")
		return
	}
	h.metrics.Add("ws_sessions", 1)

	h.readPump(rm, s)
	rm.Disconnect(s.ID(), "closed")
	s.Close("")
}

func (h *Handler) readPump(rm *room.Room, s *Session) {
	conn := s.conn
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Printf("read from %s failed: %v", s.ID(), err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(pongWait))

		var codec proto.Codec = proto.JSONCodec{}
		if kind == websocket.BinaryMessage {
			codec = proto.MsgpackCodec{}
		}
		msg, err := proto.Decode(codec, payload)
		if err != nil {
			h.metrics.Add("messages_dropped", 1)
			loggingnetwork.MessageDropped(context.Background(), h.publisher, 0, logging.Ref(s.ID(), logging.EntityKindClient),
				loggingnetwork.MessageDroppedPayload{MessageType: msg.Type, Reason: err.Error()}, nil)
			continue
		}
		rm.Deliver(s.ID(), msg)
	}
}
