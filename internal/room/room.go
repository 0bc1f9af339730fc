package room

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/net/intake"
	"horde-hunt/server/internal/net/proto"
	"horde-hunt/server/internal/telemetry"
	"horde-hunt/server/internal/world"
	"horde-hunt/server/logging"
	logginglifecycle "horde-hunt/server/logging/lifecycle"
	loggingnetwork "horde-hunt/server/logging/network"
	loggingsimulation "horde-hunt/server/logging/simulation"
)

const inboxSize = 256

// ErrStopped is returned by calls made after the room shut down.
var ErrStopped = errors.New("room stopped")

// Conn is one client connection attached to a room. Send must not block for
// long; the room goroutine calls it for every outbound frame.
type Conn interface {
	ID() string
	Codec() proto.Codec
	Send(frame []byte) error
	Close(reason string)
}

// Deps bundles the collaborators of a room.
type Deps struct {
	Publisher logging.Publisher
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Clock     func() time.Time
}

// Info summarises a room for listings and diagnostics.
type Info struct {
	ID            string  `json:"id"`
	Players       int     `json:"players"`
	Connections   int     `json:"connections"`
	Tick          uint64  `json:"tick"`
	RoundActive   bool    `json:"roundActive"`
	RemainingTime float64 `json:"remainingTime"`
	Hunter        string  `json:"hunter,omitempty"`
}

// Room runs one world on its own goroutine. Timers and inbound messages are
// serialised through the actor loop, so the world is never shared.
type Room struct {
	id        string
	world     *world.World
	publisher logging.Publisher
	logger    telemetry.Logger
	metrics   telemetry.Metrics
	clock     func() time.Time

	inbox chan func(now time.Time)
	conns map[string]Conn

	retime        bool
	overrunStreak uint64

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// New builds a room around a fresh world. The room does nothing until Start.
func New(id string, cfg config.Config, deps Deps) (*Room, error) {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	publisher := logging.ForRoom(deps.Publisher, id, nil)
	w, err := world.New(cfg, clock(), world.Deps{Publisher: publisher})
	if err != nil {
		return nil, fmt.Errorf("room %s: %w", id, err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}
	return &Room{
		id:        id,
		world:     w,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		inbox:     make(chan func(time.Time), inboxSize),
		conns:     make(map[string]Conn),
		done:      make(chan struct{}),
	}, nil
}

// ID returns the room id.
func (r *Room) ID() string {
	return r.id
}

// Start launches the actor loop. Cancelling ctx or calling Stop ends it.
func (r *Room) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)
		r.cancel = cancel
		go r.run(ctx)
	})
}

// Stop ends the actor loop and waits for it to close every connection.
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		r.startOnce.Do(func() {})
		if r.cancel == nil {
			close(r.done)
			return
		}
		r.cancel()
		<-r.done
	})
}

// Done is closed once the room has shut down.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

func (r *Room) run(ctx context.Context) {
	defer close(r.done)

	derived := r.world.Config().Derived()
	ticker := time.NewTicker(derived.TickInterval)
	defer ticker.Stop()
	pickups := time.NewTicker(derived.PickupInterval)
	defer pickups.Stop()

	cfg := r.world.Config()
	logginglifecycle.RoomStarted(ctx, r.publisher, logging.Ref(r.id, logging.EntityKindRoom),
		logginglifecycle.RoomStartedPayload{Seed: cfg.Seed, TickMillis: cfg.Tick.IntervalMS})
	r.logger.Printf("room %s started (tick %s)", r.id, derived.TickInterval)

	for {
		select {
		case <-ctx.Done():
			r.shutdown("stopped")
			return
		case <-ticker.C:
			r.tick(r.clock())
		case <-pickups.C:
			r.world.SpawnPickup(r.clock())
		case fn := <-r.inbox:
			fn(r.clock())
		}
		if r.retime {
			r.retime = false
			derived = r.world.Config().Derived()
			ticker.Reset(derived.TickInterval)
			pickups.Reset(derived.PickupInterval)
		}
	}
}

// tick expires idle players, advances the world and flushes its messages.
func (r *Room) tick(now time.Time) {
	started := time.Now()
	for _, id := range r.world.ExpireIdle(now) {
		if c, ok := r.conns[id]; ok {
			delete(r.conns, id)
			c.Close("heartbeat timeout")
		}
	}
	r.world.Step(now)
	r.flush()

	elapsed := time.Since(started)
	r.metrics.Add("room_ticks", 1)
	r.checkBudget(elapsed, r.world.Config().Derived().TickInterval)
}

func (r *Room) checkBudget(elapsed, budget time.Duration) {
	if budget <= 0 || elapsed <= budget {
		r.overrunStreak = 0
		return
	}
	r.overrunStreak++
	r.metrics.Add("tick_budget_overruns", 1)
	loggingsimulation.TickBudgetOverrun(context.Background(), r.publisher, r.world.Tick(), loggingsimulation.TickBudgetOverrunPayload{
		DurationMillis: elapsed.Milliseconds(),
		BudgetMillis:   budget.Milliseconds(),
		Ratio:          float64(elapsed) / float64(budget),
		Streak:         r.overrunStreak,
	}, nil)
}

// flush encodes every queued world message once per codec and hands the
// frames to the addressed connections. Broadcasts reach joined players only.
func (r *Room) flush() {
	out := r.world.Drain()
	if len(out) == 0 {
		return
	}
	ids := r.connIDs()
	var failed []string
	frames := make(map[string][]byte)
	for _, o := range out {
		clear(frames)
		if o.To != "" {
			if c, ok := r.conns[o.To]; ok && !r.send(c, o.Message, frames) {
				failed = append(failed, o.To)
			}
			continue
		}
		for _, id := range ids {
			if _, joined := r.world.Player(id); !joined {
				continue
			}
			if !r.send(r.conns[id], o.Message, frames) {
				failed = append(failed, id)
			}
		}
	}
	for _, id := range failed {
		if c, ok := r.conns[id]; ok {
			delete(r.conns, id)
			c.Close("send failed")
			r.world.Leave(id, "send_failed")
		}
	}
}

func (r *Room) send(c Conn, msg any, frames map[string][]byte) bool {
	if c == nil {
		return true
	}
	codec := c.Codec()
	frame, ok := frames[codec.Name()]
	if !ok {
		data, err := codec.Marshal(msg)
		if err != nil {
			r.logger.Printf("room %s: encode %T for %s: %v", r.id, msg, codec.Name(), err)
			return true
		}
		frame = data
		frames[codec.Name()] = frame
	}
	if err := c.Send(frame); err != nil {
		loggingnetwork.SendFailed(context.Background(), r.publisher, logging.Ref(c.ID(), logging.EntityKindClient),
			loggingnetwork.SendFailedPayload{Error: err.Error()})
		return false
	}
	r.metrics.Add("bytes_sent", uint64(len(frame)))
	return true
}

func (r *Room) connIDs() []string {
	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Room) shutdown(reason string) {
	for _, id := range r.connIDs() {
		r.conns[id].Close("room closed")
		delete(r.conns, id)
	}
	logginglifecycle.RoomStopped(context.Background(), r.publisher, r.world.Tick(), logging.Ref(r.id, logging.EntityKindRoom),
		logginglifecycle.RoomStoppedPayload{Reason: reason, Ticks: r.world.Tick()})
	r.logger.Printf("room %s stopped after %d ticks", r.id, r.world.Tick())
}

// call runs fn on the room goroutine and waits for it to finish.
func (r *Room) call(fn func(now time.Time)) error {
	finished := make(chan struct{})
	select {
	case r.inbox <- func(now time.Time) { fn(now); close(finished) }:
	case <-r.done:
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-r.done:
		return ErrStopped
	}
}

// Connect attaches a connection. It receives nothing until it joins.
func (r *Room) Connect(c Conn) error {
	return r.call(func(time.Time) {
		if old, ok := r.conns[c.ID()]; ok && old != c {
			old.Close("replaced")
		}
		r.conns[c.ID()] = c
	})
}

// Disconnect detaches a connection and removes its player.
func (r *Room) Disconnect(connID, reason string) {
	_ = r.call(func(time.Time) {
		delete(r.conns, connID)
		r.world.Leave(connID, reason)
		r.flush()
	})
}

// Deliver queues an inbound client message without waiting. A full inbox
// drops the message.
func (r *Room) Deliver(connID string, msg proto.ClientMessage) bool {
	fn := func(now time.Time) { r.handle(connID, msg, now) }
	select {
	case r.inbox <- fn:
		return true
	case <-r.done:
		return false
	default:
		r.metrics.Add("messages_dropped", 1)
		loggingnetwork.MessageDropped(context.Background(), r.publisher, 0, logging.Ref(connID, logging.EntityKindClient),
			loggingnetwork.MessageDroppedPayload{MessageType: msg.Type, Reason: "inbox full"}, nil)
		return false
	}
}

func (r *Room) handle(connID string, msg proto.ClientMessage, now time.Time) {
	if _, ok := r.conns[connID]; !ok {
		return
	}
	err := intake.Dispatch(intake.CommandContext{
		World: r.world,
		HasPlayer: func(id string) bool {
			_, ok := r.world.Player(id)
			return ok
		},
		Now: func() time.Time { return now },
	}, connID, msg)
	if err != nil {
		r.metrics.Add("messages_dropped", 1)
		loggingnetwork.MessageDropped(context.Background(), r.publisher, r.world.Tick(), logging.Ref(connID, logging.EntityKindClient),
			loggingnetwork.MessageDroppedPayload{MessageType: msg.Type, Reason: err.Error()}, nil)
	}
	r.flush()
}

// ApplyConfig swaps the room's rules. Tick cadence changes take effect
// immediately.
func (r *Room) ApplyConfig(cfg config.Config) error {
	var applyErr error
	err := r.call(func(time.Time) {
		applyErr = r.world.ApplyConfig(cfg)
		if applyErr == nil {
			r.retime = true
		}
		r.flush()
	})
	if err != nil {
		return err
	}
	return applyErr
}

// Config returns the live configuration.
func (r *Room) Config() (config.Config, error) {
	var cfg config.Config
	err := r.call(func(time.Time) { cfg = r.world.Config() })
	return cfg, err
}

// Info reports the room summary.
func (r *Room) Info() (Info, error) {
	var info Info
	err := r.call(func(now time.Time) { info = r.info(now) })
	return info, err
}

func (r *Room) info(now time.Time) Info {
	info := Info{
		ID:            r.id,
		Players:       r.world.PlayerCount(),
		Connections:   len(r.conns),
		Tick:          r.world.Tick(),
		RoundActive:   r.world.RoundActive(),
		RemainingTime: r.world.RemainingTime(now),
	}
	if h := r.world.Hunter(); h != nil {
		info.Hunter = h.Name
	}
	return info
}
