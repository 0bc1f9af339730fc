package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/net/proto"
	"horde-hunt/server/internal/room"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Seed = "ws-test"
	cfg.AI.MaxCount = 0
	cfg.Boss.Enabled = false
	manager := room.NewManager(context.Background(), cfg, nil, room.Deps{})
	t.Cleanup(manager.Close)

	handler := NewHandler(manager, HandlerConfig{})
	srv := httptest.NewServer(http.HandlerFunc(handler.Handle))
	t.Cleanup(srv.Close)
	return srv
}

func websocketURL(t *testing.T, baseURL string, query url.Values) string {
	t.Helper()
	parsed, err := url.Parse(baseURL)
	if err != nil {
		t.Fatalf("failed to parse server url: %v", err)
	}
	parsed.Scheme = "ws"
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func dial(t *testing.T, srv *httptest.Server, query url.Values) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, query), nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

// readUntil reads frames until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, codec proto.Codec, want string) map[string]any {
	t.Helper()
	for i := 0; i < 200; i++ {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("failed waiting for %q: %v", want, err)
		}
		var envelope map[string]any
		if err := codec.Unmarshal(payload, &envelope); err != nil {
			t.Fatalf("failed to decode frame: %v", err)
		}
		if envelope["type"] == want {
			return envelope
		}
	}
	t.Fatalf("no %q frame within 200 messages", want)
	return nil
}

func TestHandleSendsWelcomeThenJoins(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, url.Values{"room": {"alpha"}})

	kind, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read welcome: %v", err)
	}
	if kind != websocket.TextMessage {
		t.Fatalf("expected a text frame for json, got %d", kind)
	}
	var welcome proto.Welcome
	if err := json.Unmarshal(payload, &welcome); err != nil {
		t.Fatalf("failed to decode welcome: %v", err)
	}
	if welcome.Type != proto.TypeWelcome || welcome.ConnectionID == "" {
		t.Fatalf("unexpected welcome %+v", welcome)
	}

	join, _ := json.Marshal(map[string]any{"type": "join_room", "role": "hunter", "name": "Ash"})
	if err := conn.WriteMessage(websocket.TextMessage, join); err != nil {
		t.Fatalf("failed to send join: %v", err)
	}
	joined := readUntil(t, conn, proto.JSONCodec{}, proto.TypeJoined)
	if joined["playerId"] != welcome.ConnectionID || joined["role"] != "hunter" {
		t.Fatalf("unexpected joined message %+v", joined)
	}
	readUntil(t, conn, proto.JSONCodec{}, proto.TypeState)
}

func TestHandleIgnoresMalformedMessages(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, url.Values{})
	readUntil(t, conn, proto.JSONCodec{}, proto.TypeWelcome)

	for _, raw := range []string{"not json", `{"type":"teleport"}`, `[1,2,3]`} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("failed to send %q: %v", raw, err)
		}
	}
	join, _ := json.Marshal(map[string]any{"type": "join_room", "role": "horde"})
	if err := conn.WriteMessage(websocket.TextMessage, join); err != nil {
		t.Fatalf("failed to send join: %v", err)
	}
	joined := readUntil(t, conn, proto.JSONCodec{}, proto.TypeJoined)
	if joined["role"] != "horde" {
		t.Fatalf("unexpected joined message %+v", joined)
	}
}

func TestHandleMsgpackCodec(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, url.Values{"room": {"beta"}, "codec": {"msgpack"}})
	codec := proto.MsgpackCodec{}

	kind, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read welcome: %v", err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("expected a binary frame for msgpack, got %d", kind)
	}
	var welcome proto.Welcome
	if err := codec.Unmarshal(payload, &welcome); err != nil {
		t.Fatalf("failed to decode welcome: %v", err)
	}
	if welcome.ConnectionID == "" {
		t.Fatalf("missing connection id")
	}

	join, err := codec.Marshal(proto.ClientMessage{Type: proto.TypeJoinRoom, Role: "hunter"})
	if err != nil {
		t.Fatalf("failed to encode join: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, join); err != nil {
		t.Fatalf("failed to send join: %v", err)
	}
	readUntil(t, conn, codec, proto.TypeJoined)
}

func TestHandleRejectsUnknownCodec(t *testing.T) {
	srv := newTestServer(t)
	_, resp, err := websocket.DefaultDialer.Dial(websocketURL(t, srv.URL, url.Values{"codec": {"xml"}}), nil)
	if err == nil {
		t.Fatalf("expected the handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %+v", resp)
	}
	resp.Body.Close()
}
