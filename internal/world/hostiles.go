package world

import (
	"time"

	"horde-hunt/server/internal/ai"
	"horde-hunt/server/internal/combat"
	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/movement"
)

// stepHostiles spawns, thinks and moves the AI horde. Pits and tile hazards
// hurt hostiles through r, so their deaths take the normal kill path.
func (w *World) stepHostiles(r *combat.Resolver, now time.Time, dt float64) {
	w.spawnHostile(now)

	hunter := w.Hunter()
	m := w.Map()
	ctx := ai.Context{
		Now:        now,
		Hunter:     hunter,
		Walls:      m.Walls,
		Tuning:     w.aiTuning,
		GlobalSlow: w.globalSlow(now),
		NextID:     w.idFunc("glob"),
		Strike: func(h *entity.Hostile, s combat.Strike) {
			w.strikeHunter(h.ID, s, now)
		},
	}
	mctx := w.moveContext(now, dt)

	movers := make([]*entity.Hostile, 0, len(w.hostiles))
	bodies := make([]*movement.Body, 0, len(w.hostiles))
	for _, h := range w.hostiles {
		if !h.Alive {
			continue
		}
		d := ai.Think(ctx, h)
		if d.Glob != nil {
			w.globs = append(w.globs, d.Glob)
		}
		body := &movement.Body{
			Pos:        h.Pos,
			Radius:     h.Radius,
			Intent:     d.Intent,
			Speed:      d.Speed,
			Stunned:    h.Stunned(now),
			NextHazard: &h.NextHazard,
		}
		out := movement.Step(mctx, body)
		if !w.tileHarm(r, h, out) {
			h.Vel = geom.Vec2{}
			continue
		}
		movers = append(movers, h)
		bodies = append(bodies, body)
	}
	movement.Separate(bodies, mctx)
	for i, h := range movers {
		if dt > 0 {
			h.Vel = bodies[i].Pos.Sub(h.Pos).Scale(1 / dt)
		}
		h.Pos = bodies[i].Pos
	}
}

// tileHarm applies a movement outcome to an AI body and reports whether it
// survived. A pit kills outright.
func (w *World) tileHarm(r *combat.Resolver, t entity.Target, out movement.Outcome) bool {
	life := t.Life()
	if out.Lethal {
		r.Apply(t, life.Health, sourcePit, false)
	} else if out.Damage > 0 {
		r.Apply(t, out.Damage, sourceHazard, false)
	}
	return life.Alive
}

func (w *World) spawnHostile(now time.Time) {
	alive := 0
	for _, h := range w.hostiles {
		if h.Alive {
			alive++
		}
	}
	if alive >= w.spawnCfg.MaxCount || now.Before(w.spawner.NextAt) {
		return
	}
	req := ai.SpawnRequest{
		Now:   now,
		Alive: alive,
		Map:   w.Map(),
		Rand:  w.rng,
		ID:    w.nextID("hostile"),
	}
	if h := w.Hunter(); h != nil && h.Alive {
		req.HunterPos, req.HasHunter = h.Pos, true
	}
	if spawned := w.spawner.Tick(w.spawnCfg, req); spawned != nil {
		w.hostiles = append(w.hostiles, spawned)
	}
}

// stepGlobs flies spitter globs. A glob that reaches the hunter bursts.
func (w *World) stepGlobs(now time.Time, dt float64) {
	bounds := w.bounds()
	hunter := w.Hunter()
	kept := w.globs[:0]
	for _, g := range w.globs {
		if !combat.AdvanceGlob(g, dt, bounds) {
			continue
		}
		if hunter != nil && hunter.Alive && geom.CirclesOverlap(g.Pos, g.Radius, hunter.Pos, hunter.Radius) {
			w.strikeHunter(g.Owner, combat.Strike{Amount: g.Damage, From: g.Pos}, now)
			continue
		}
		kept = append(kept, g)
	}
	w.globs = kept
}
