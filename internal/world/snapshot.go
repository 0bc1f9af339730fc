package world

import (
	"time"

	"horde-hunt/server/internal/entity"
	"horde-hunt/server/internal/geom"
	"horde-hunt/server/internal/net/proto"
	"horde-hunt/server/internal/stats"
)

// Snapshot builds the per-tick state message. Every collection is non-nil so
// clients never see null arrays.
func (w *World) Snapshot(now time.Time) proto.State {
	m := w.Map()
	arena := w.cfg.Arena
	state := proto.State{
		Type:          proto.TypeState,
		T:             now.UnixMilli(),
		Players:       w.playerViews(now),
		Bullets:       make([]proto.BulletView, 0, len(w.bullets)),
		Globs:         make([]proto.GlobView, 0, len(w.globs)),
		Walls:         m.Walls,
		Pickups:       make([]entity.Pickup, 0, len(w.pickups)),
		WeaponDrops:   make([]entity.WeaponDrop, 0, len(w.weaponDrops)),
		AIZombies:     make([]proto.HostileView, 0, len(w.hostiles)),
		DamageNumbers: make([]proto.DamageNumberView, 0, len(w.damage)),
		Bosses:        make([]proto.BossView, 0, len(w.bosses)),
		BossMinions:   make([]proto.MinionView, 0, len(w.minions)),
		PoisonFields:  make([]proto.PoisonFieldView, 0, len(w.fields)),
		Arena:         proto.Arena{Width: arena.Width, Height: arena.Height, TileSize: arena.TileSize},
		RemainingTime: w.RemainingTime(now),
		ChatEnabled:   w.chatEnabled,
		RoundActive:   w.roundActive,
	}
	if state.Walls == nil {
		state.Walls = []geom.Rect{}
	}

	for _, b := range w.bullets {
		state.Bullets = append(state.Bullets, proto.BulletView{
			ID: b.ID, X: b.Pos.X, Y: b.Pos.Y, VX: b.Vel.X, VY: b.Vel.Y, Radius: b.Meta.Radius, Weapon: b.Weapon,
		})
	}
	for _, g := range w.globs {
		state.Globs = append(state.Globs, proto.GlobView{ID: g.ID, X: g.Pos.X, Y: g.Pos.Y, Radius: g.Radius})
	}
	for _, p := range w.pickups {
		state.Pickups = append(state.Pickups, *p)
	}
	for _, d := range w.weaponDrops {
		state.WeaponDrops = append(state.WeaponDrops, *d)
	}
	for _, h := range w.hostiles {
		if !h.Alive {
			continue
		}
		burning, bleeding := effectFlags(h.Effects)
		state.AIZombies = append(state.AIZombies, proto.HostileView{
			ID:        h.ID,
			Class:     string(h.Class),
			X:         h.Pos.X,
			Y:         h.Pos.Y,
			Radius:    h.Radius,
			Health:    h.Health,
			MaxHealth: h.MaxHealth,
			State:     string(h.State),
			Burning:   burning,
			Bleeding:  bleeding,
			Slowed:    h.Slowed(now) < 1,
		})
	}
	for _, d := range w.damage {
		state.DamageNumbers = append(state.DamageNumbers, proto.DamageNumberView{
			X: d.Pos.X, Y: d.Pos.Y, Amount: d.Amount, Crit: d.Crit, DOT: d.DOT, At: d.At.UnixMilli(),
		})
	}
	for _, b := range w.bosses {
		state.Bosses = append(state.Bosses, proto.BossView{
			ID:        b.ID,
			BossType:  string(b.Type),
			X:         b.Pos.X,
			Y:         b.Pos.Y,
			Radius:    b.Radius,
			Health:    b.Health,
			MaxHealth: b.MaxHealth,
			State:     string(b.State),
			Enraged:   b.Enraged,
			Phased:    b.Phased(now),
			Charging:  entity.Active(b.ChargeUntil, now),
			Draining:  entity.Active(b.DrainUntil, now),
		})
	}
	for _, mn := range w.minions {
		state.BossMinions = append(state.BossMinions, proto.MinionView{
			ID: mn.ID, BossID: mn.BossID, Clone: mn.Clone, X: mn.Pos.X, Y: mn.Pos.Y,
			Radius: mn.Radius, Health: mn.Health, MaxHealth: mn.MaxHealth,
		})
	}
	for _, f := range w.fields {
		state.PoisonFields = append(state.PoisonFields, fieldView(f))
	}
	return state
}

// playerViews lists players in collector order.
func (w *World) playerViews(now time.Time) []proto.PlayerView {
	players := w.sortedPlayers()
	out := make([]proto.PlayerView, 0, len(players))
	for _, p := range players {
		out = append(out, w.playerView(p, now))
	}
	return out
}

func (w *World) playerView(p *entity.Player, now time.Time) proto.PlayerView {
	burning, bleeding := effectFlags(p.Effects)
	v := proto.PlayerView{
		ID:        p.ID,
		Name:      p.Name,
		Role:      string(p.Role),
		Class:     string(p.Class),
		X:         p.Pos.X,
		Y:         p.Pos.Y,
		VX:        p.Vel.X,
		VY:        p.Vel.Y,
		Radius:    p.Radius,
		Health:    p.Health,
		MaxHealth: p.MaxHealth,
		Alive:     p.Alive,
		Score:     p.Score,
		Currency:  p.Currency,
		Kills:     p.Kills,
		Deaths:    p.Deaths,
		Level:     p.Progress.Level,
		XP:        p.Progress.XP,
		XPToNext:  stats.XPToNext(p.Progress.Level, w.rewards.BaseXP, w.rewards.Growth),
		Boosted:   entity.Active(p.BoostUntil, now),
		Stunned:   p.Stunned(now),
		Slowed:    p.Slowed(now) < 1,
		Burning:   burning,
		Bleeding:  bleeding,
	}
	if p.Hunter() {
		v.Class = ""
		v.Weapon = p.Weapon
		v.Weapons = append([]string(nil), p.Weapons...)
		v.Ammo = make(map[string]int, len(p.Ammo))
		for kind, n := range p.Ammo {
			v.Ammo[kind] = n
		}
		v.Upgrades = append(stats.Stacks(nil), p.Upgrades...)
		v.Shielded = p.Shielded(now)
		v.Dashing = entity.Active(p.DashUntil, now)
		v.Magnet = entity.Active(p.MagnetUntil, now)
		v.WeaponBoost = entity.Active(p.WeaponBoostUntil, now)
	}
	if entity.Active(p.EmoteUntil, now) {
		v.Emote = p.Emote
	}
	return v
}

func effectFlags(effects []entity.TimedEffect) (burning, bleeding bool) {
	for _, e := range effects {
		switch e.Kind {
		case entity.EffectBurn:
			burning = true
		case entity.EffectBleed:
			bleeding = true
		}
	}
	return burning, bleeding
}

func fieldView(f *entity.PoisonField) proto.PoisonFieldView {
	return proto.PoisonFieldView{
		ID: f.ID, BossID: f.BossID, X: f.Pos.X, Y: f.Pos.Y, Radius: f.Radius, DPS: f.DPS, Expires: f.Expires.UnixMilli(),
	}
}

// MapMessage encodes the current map for clients.
func (w *World) MapMessage() proto.Map {
	m := w.Map()
	return proto.Map{
		Type:        proto.TypeMap,
		W:           m.W,
		H:           m.H,
		Size:        m.TileSize,
		Theme:       m.Theme,
		TilesBase64: m.Encode(),
		Props:       m.Props,
		Lights:      m.Lights,
	}
}
