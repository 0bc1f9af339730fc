package room

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/net/proto"
	"horde-hunt/server/logging"
	logginglifecycle "horde-hunt/server/logging/lifecycle"
	loggingnetwork "horde-hunt/server/logging/network"
	loggingsimulation "horde-hunt/server/logging/simulation"
	"horde-hunt/server/logging/sinks"
)

type fakeConn struct {
	id      string
	codec   proto.Codec
	frames  [][]byte
	sendErr error
	closed  string
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id, codec: proto.JSONCodec{}}
}

func (c *fakeConn) ID() string         { return c.id }
func (c *fakeConn) Codec() proto.Codec { return c.codec }
func (c *fakeConn) Close(reason string) {
	if c.closed == "" {
		c.closed = reason
	}
}

func (c *fakeConn) Send(frame []byte) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.frames = append(c.frames, frame)
	return nil
}

func (c *fakeConn) types(t *testing.T) []string {
	t.Helper()
	out := make([]string, 0, len(c.frames))
	for _, frame := range c.frames {
		var envelope map[string]any
		if err := c.codec.Unmarshal(frame, &envelope); err != nil {
			t.Fatalf("failed to decode frame: %v", err)
		}
		kind, _ := envelope["type"].(string)
		out = append(out, kind)
	}
	return out
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func quietConfig() config.Config {
	cfg := config.Default()
	cfg.Seed = "room-test"
	cfg.AI.MaxCount = 0
	cfg.Boss.Enabled = false
	return cfg
}

func newTestRoom(t *testing.T, now time.Time) (*Room, *sinks.MemorySink) {
	t.Helper()
	mem := sinks.NewMemorySink()
	r, err := New("test-room", quietConfig(), Deps{
		Publisher: mem,
		Clock:     func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("failed to construct room: %v", err)
	}
	return r, mem
}

func attach(r *Room, c *fakeConn) {
	r.conns[c.ID()] = c
}

func TestJoinedConnectionsReceiveBroadcasts(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r, _ := newTestRoom(t, now)
	hunter := newFakeConn("a")
	lurker := newFakeConn("b")
	attach(r, hunter)
	attach(r, lurker)

	r.handle("a", proto.ClientMessage{Type: proto.TypeJoinRoom, Role: "hunter", Name: "Ash"}, now)
	got := hunter.types(t)
	for _, want := range []string{proto.TypeJoined, proto.TypeMap, proto.TypePlayersUpdate} {
		if !contains(got, want) {
			t.Fatalf("expected %q after join, got %v", want, got)
		}
	}

	hunter.frames = nil
	r.tick(now.Add(50 * time.Millisecond))
	if got := hunter.types(t); !contains(got, proto.TypeState) {
		t.Fatalf("expected a state frame, got %v", got)
	}
	if len(lurker.frames) != 0 {
		t.Fatalf("a connection that never joined must not receive broadcasts, got %d frames", len(lurker.frames))
	}
}

func TestMsgpackConnectionsGetTheirOwnEncoding(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r, _ := newTestRoom(t, now)
	jsonConn := newFakeConn("a")
	binConn := newFakeConn("b")
	binConn.codec = proto.MsgpackCodec{}
	attach(r, jsonConn)
	attach(r, binConn)

	r.handle("a", proto.ClientMessage{Type: proto.TypeJoinRoom, Role: "hunter"}, now)
	r.handle("b", proto.ClientMessage{Type: proto.TypeJoinRoom, Role: "horde"}, now)
	jsonConn.frames, binConn.frames = nil, nil

	r.tick(now.Add(50 * time.Millisecond))
	if !contains(binConn.types(t), proto.TypeState) {
		t.Fatalf("msgpack connection missed the state frame")
	}
	var state proto.State
	if err := json.Unmarshal(jsonConn.frames[len(jsonConn.frames)-1], &state); err != nil {
		t.Fatalf("json frame did not decode: %v", err)
	}
	if len(state.Players) != 2 {
		t.Fatalf("expected two players in state, got %d", len(state.Players))
	}
}

func TestPingIsAnsweredWithPong(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r, _ := newTestRoom(t, now)
	c := newFakeConn("a")
	attach(r, c)
	r.handle("a", proto.ClientMessage{Type: proto.TypeJoinRoom}, now)
	c.frames = nil

	r.handle("a", proto.ClientMessage{Type: proto.TypePing, Timestamp: 4242}, now)
	if len(c.frames) != 1 {
		t.Fatalf("expected exactly one pong frame, got %d", len(c.frames))
	}
	var pong proto.Pong
	if err := json.Unmarshal(c.frames[0], &pong); err != nil {
		t.Fatalf("failed to decode pong: %v", err)
	}
	if pong.Type != proto.TypePong || pong.Timestamp != 4242 {
		t.Fatalf("unexpected pong %+v", pong)
	}
}

func TestRejectedMessagesAreLoggedAndDropped(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r, mem := newTestRoom(t, now)
	c := newFakeConn("a")
	attach(r, c)

	r.handle("a", proto.ClientMessage{Type: proto.TypeInput, Up: true}, now)
	if len(c.frames) != 0 {
		t.Fatalf("expected no reply to a rejected message")
	}
	events := mem.OfType(loggingnetwork.EventMessageDropped)
	if len(events) != 1 {
		t.Fatalf("expected one dropped-message event, got %d", len(events))
	}
	if events[0].Actor.ID != "a" {
		t.Fatalf("unexpected actor %+v", events[0].Actor)
	}
}

func TestHeartbeatTimeoutClosesConnection(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r, _ := newTestRoom(t, now)
	idle := newFakeConn("idle")
	busy := newFakeConn("busy")
	attach(r, idle)
	attach(r, busy)
	r.handle("idle", proto.ClientMessage{Type: proto.TypeJoinRoom}, now)
	r.handle("busy", proto.ClientMessage{Type: proto.TypeJoinRoom}, now)

	r.handle("busy", proto.ClientMessage{Type: proto.TypePong}, now.Add(10*time.Second))
	r.tick(now.Add(16 * time.Second))

	if idle.closed != "heartbeat timeout" {
		t.Fatalf("expected idle connection to be closed, got %q", idle.closed)
	}
	if busy.closed != "" {
		t.Fatalf("active connection closed: %q", busy.closed)
	}
	if _, ok := r.conns["idle"]; ok {
		t.Fatalf("idle connection still registered")
	}
	if r.world.PlayerCount() != 1 {
		t.Fatalf("expected one remaining player, got %d", r.world.PlayerCount())
	}
}

func TestSendFailureRemovesPlayer(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r, mem := newTestRoom(t, now)
	c := newFakeConn("a")
	attach(r, c)
	r.handle("a", proto.ClientMessage{Type: proto.TypeJoinRoom}, now)

	c.sendErr = errors.New("broken pipe")
	r.tick(now.Add(50 * time.Millisecond))

	if c.closed != "send failed" {
		t.Fatalf("expected connection closed after send failure, got %q", c.closed)
	}
	if r.world.PlayerCount() != 0 {
		t.Fatalf("expected player removed")
	}
	if len(mem.OfType(loggingnetwork.EventSendFailed)) == 0 {
		t.Fatalf("expected a send failure event")
	}
}

func TestTickBudgetOverrunStreak(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	r, mem := newTestRoom(t, now)

	r.checkBudget(120*time.Millisecond, 50*time.Millisecond)
	r.checkBudget(80*time.Millisecond, 50*time.Millisecond)
	events := mem.OfType(loggingsimulation.EventTickBudgetOverrun)
	if len(events) != 2 {
		t.Fatalf("expected two overrun events, got %d", len(events))
	}
	payload, ok := events[1].Payload.(loggingsimulation.TickBudgetOverrunPayload)
	if !ok {
		t.Fatalf("unexpected payload %T", events[1].Payload)
	}
	if payload.Streak != 2 || payload.BudgetMillis != 50 {
		t.Fatalf("unexpected payload %+v", payload)
	}

	r.checkBudget(10*time.Millisecond, 50*time.Millisecond)
	if r.overrunStreak != 0 {
		t.Fatalf("expected streak reset, got %d", r.overrunStreak)
	}
}

func TestRunLoopLifecycle(t *testing.T) {
	mem := sinks.NewMemorySink()
	r, err := New("loop", quietConfig(), Deps{Publisher: mem})
	if err != nil {
		t.Fatalf("failed to construct room: %v", err)
	}
	r.Start(context.Background())

	c := newFakeConn("a")
	if err := r.Connect(c); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if !r.Deliver("a", proto.ClientMessage{Type: proto.TypeJoinRoom, Role: "hunter", Name: "Ash"}) {
		t.Fatalf("deliver refused")
	}
	info, err := r.Info()
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if info.Players != 1 || info.Hunter != "Ash" || info.Connections != 1 {
		t.Fatalf("unexpected info %+v", info)
	}

	bad := quietConfig()
	bad.Tick.IntervalMS = 1
	if err := r.ApplyConfig(bad); err == nil {
		t.Fatalf("expected invalid config to be rejected")
	}
	good := quietConfig()
	good.Tick.IntervalMS = 40
	if err := r.ApplyConfig(good); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	cfg, err := r.Config()
	if err != nil || cfg.Tick.IntervalMS != 40 {
		t.Fatalf("expected new tick interval, got %d (%v)", cfg.Tick.IntervalMS, err)
	}

	r.Stop()
	if c.closed != "room closed" {
		t.Fatalf("expected connection closed on stop, got %q", c.closed)
	}
	if _, err := r.Info(); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped after stop, got %v", err)
	}
	if r.Deliver("a", proto.ClientMessage{Type: proto.TypePong}) {
		t.Fatalf("deliver after stop should fail")
	}
	if len(mem.OfType(logginglifecycle.EventRoomStarted)) != 1 || len(mem.OfType(logginglifecycle.EventRoomStopped)) != 1 {
		t.Fatalf("expected one start and one stop event")
	}
	for _, ev := range mem.OfType(logginglifecycle.EventRoomStarted) {
		if ev.Actor.Kind != logging.EntityKindRoom {
			t.Fatalf("unexpected actor %+v", ev.Actor)
		}
	}
}

func TestStopBeforeStart(t *testing.T) {
	r, _ := newTestRoom(t, time.Unix(0, 0))
	r.Stop()
	select {
	case <-r.Done():
	default:
		t.Fatalf("expected done to be closed")
	}
	if err := r.Connect(newFakeConn("a")); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}
