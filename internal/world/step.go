package world

import "time"

// maxStepSeconds caps dt so a stalled tick cannot tunnel bodies through walls.
const maxStepSeconds = 0.25

// Step advances the room by one tick: deferred events, the round timer and
// player movement first, then the round simulation while a round runs. A state
// snapshot is queued for every player at the end.
func (w *World) Step(now time.Time) {
	dt := w.derived.TickInterval.Seconds()
	if !w.lastStep.IsZero() {
		dt = now.Sub(w.lastStep).Seconds()
	}
	if dt < 0 {
		dt = 0
	}
	if dt > maxStepSeconds {
		dt = maxStepSeconds
	}
	w.lastStep = now
	w.tick++

	w.ensureMap()
	w.runSchedule(now)
	w.checkRound(now)

	w.movePlayers(now, dt)
	if w.roundActive {
		w.simulate(now, dt)
	}

	w.pruneDamage(now)
	w.broadcast(w.Snapshot(now))
}

func (w *World) simulate(now time.Time, dt float64) {
	r := w.resolver(now)
	w.hunterActions(r, now)
	w.hordeAttacks(now)

	w.stepHostiles(r, now, dt)
	w.announceBoss(now)
	w.stepBosses(r, now, dt)

	r.Targets = w.targets()
	w.bullets = r.Step(w.bullets, dt, w.bounds())
	w.stepGlobs(now, dt)
	w.stepFields(now)
	r.Sweep()

	w.collect(r, now)
	w.reap(now)
}
