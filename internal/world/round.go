package world

import (
	"context"
	"fmt"
	"math"
	"time"

	"horde-hunt/server/internal/boss"
	"horde-hunt/server/internal/config"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/random"
	"horde-hunt/server/internal/schedule"
	"horde-hunt/server/logging"
	logginglifecycle "horde-hunt/server/logging/lifecycle"
	loggingsimulation "horde-hunt/server/logging/simulation"
)

// startRound opens a round. Every round after the first plays on a fresh map;
// scores carry over.
func (w *World) startRound(now time.Time) {
	w.round++
	if w.round > 1 {
		w.mapDirty = true
	}
	w.roundActive = true
	w.roundEnds = time.Time{}
	if length := w.derived.RoundLength; length > 0 {
		w.roundEnds = now.Add(length)
	}
	w.director = boss.NewDirector(now, w.bossTuning)
	w.spawner.NextAt = now
	w.freezeUntil = time.Time{}
	w.ensureMap()

	for _, p := range w.sortedPlayers() {
		p.Revive()
		p.Status = entity.Status{}
		p.Vel = geom.Vec2{}
		p.RespawnAt = time.Time{}
		w.placePlayer(p)
	}
	if w.round > 1 {
		w.notice(fmt.Sprintf("Round %d begins", w.round))
		w.broadcastPlayers()
	}
}

func (w *World) checkRound(now time.Time) {
	if w.roundActive && !w.roundEnds.IsZero() && !now.Before(w.roundEnds) {
		w.endRound(now)
	}
}

// endRound clears the arena and schedules the next round after the break.
func (w *World) endRound(now time.Time) {
	w.roundActive = false

	var leader *entity.Player
	for _, p := range w.sortedPlayers() {
		if leader == nil || p.Score > leader.Score {
			leader = p
		}
	}
	payload := logginglifecycle.RoundEndedPayload{Round: w.round}
	if leader != nil {
		payload.Leader, payload.TopScore = leader.Name, leader.Score
		w.notice(fmt.Sprintf("Round %d over! %s leads with %d", w.round, leader.Name, leader.Score))
	} else {
		w.notice(fmt.Sprintf("Round %d over!", w.round))
	}
	logginglifecycle.RoundEnded(context.Background(), w.publisher, w.tick, logging.Ref("", logging.EntityKindRoom), payload)

	w.hostiles = nil
	w.bosses = nil
	w.minions = nil
	w.bullets = nil
	w.globs = nil
	w.pickups = nil
	w.weaponDrops = nil
	w.fields = nil
	w.damage = nil
	w.pending = make(map[string]pendingBoss)
	w.queue.Clear()
	w.queue.Push(now.Add(time.Duration(w.cfg.Round.BreakSeconds)*time.Second), schedule.RoundStart, "")
}

// runSchedule fires every due deferred event. Handlers re-check that their
// subject still exists.
func (w *World) runSchedule(now time.Time) {
	for _, ev := range w.queue.Due(now) {
		switch ev.Kind {
		case schedule.RespawnHorde:
			if p, ok := w.players[ev.Subject]; ok && !p.Alive && !p.Hunter() {
				w.respawnHorde(p)
			}
		case schedule.RespawnHunter:
			if p, ok := w.players[ev.Subject]; ok && !p.Alive && p.Hunter() {
				w.respawnHunter(p, now)
			}
		case schedule.BossArrive:
			w.arriveBoss(ev.Subject, now)
		case schedule.RoundStart:
			if !w.roundActive {
				w.startRound(now)
			}
		}
	}
}

// RemainingTime is the seconds left in the current round. Rounds without a
// timer and round breaks report zero.
func (w *World) RemainingTime(now time.Time) float64 {
	if !w.roundActive || w.roundEnds.IsZero() {
		return 0
	}
	return math.Max(0, w.roundEnds.Sub(now).Seconds())
}

// RoundActive reports whether a round is being played.
func (w *World) RoundActive() bool {
	return w.roundActive
}

// ApplyConfig swaps in a new rule set. The map is regenerated when any field
// that shapes it changed; everything else takes effect on the next tick.
func (w *World) ApplyConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	previous := w.cfg
	w.applyConfig(cfg.Clone())
	if cfg.Seed != previous.Seed {
		w.seed = cfg.Seed
		if w.seed == "" {
			w.seed = random.DefaultSeed
		}
	}
	if cfg.Chat.Enabled != previous.Chat.Enabled {
		w.chatEnabled = cfg.Chat.Enabled
	}
	regenerated := w.mapDirty
	w.ensureMap()
	loggingsimulation.ConfigApplied(context.Background(), w.publisher, w.tick,
		loggingsimulation.ConfigAppliedPayload{Regenerated: regenerated}, nil)
	return nil
}

func (w *World) publishMap() {
	m := w.tiles
	loggingsimulation.MapGenerated(context.Background(), w.publisher, w.tick, loggingsimulation.MapGeneratedPayload{
		Width:  m.W,
		Height: m.H,
		Rooms:  len(m.Rooms),
		Walls:  len(m.Walls),
		Theme:  m.Theme,
		Seed:   w.seed,
	})
}
