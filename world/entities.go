package world

import (
	"github.com/zond/etlua/host"
)

// Health at or below which a body is gibbed.
const gibHealth = -175

func (w *World) Entity(num int) *host.Entity {
	if num < 0 || num >= host.MaxGEntities {
		return nil
	}
	return &w.entities[num]
}

// Spawn claims the first free non-client entity, or returns nil when the
// entity table is full.
func (w *World) Spawn() *host.Entity {
	for i := host.FirstNonClient; i < host.EntityNumWorld; i++ {
		ent := &w.entities[i]
		if ent.InUse {
			continue
		}
		*ent = host.Entity{
			Number:    i,
			InUse:     true,
			Classname: "noclass",
		}
		if i >= w.numEntities {
			w.numEntities = i + 1
		}
		return ent
	}
	w.console.Printf("Spawn: no free entities")
	return nil
}

func (w *World) TempEntity(origin host.Vec3, event int) *host.Entity {
	ent := w.Spawn()
	if ent == nil {
		return nil
	}
	ent.Classname = "tempEntity"
	ent.EType = host.ETEFTypes + event
	ent.Event = event
	ent.Origin = origin
	ent.FreeAt = w.levelTime + tempEntityLifetime
	w.LinkEntity(ent)
	return ent
}

func (w *World) FreeEntity(e *host.Entity) {
	if e == nil {
		return
	}
	w.UnlinkEntity(e)
	client := e.Client
	*e = host.Entity{Number: e.Number}
	if e.Number < host.MaxClients {
		e.Client = client
	}
}

func (w *World) LinkEntity(e *host.Entity) {
	if e != nil && e.InUse {
		e.Linked = true
	}
}

func (w *World) UnlinkEntity(e *host.Entity) {
	if e != nil {
		e.Linked = false
	}
}

func (w *World) EntitiesFree() int {
	count := 0
	for i := host.FirstNonClient; i < w.numEntities; i++ {
		if !w.entities[i].InUse {
			count++
		}
	}
	return count
}

// Damage takes amount health from entity num and reports whether that
// killed it. Entities flagged godmode take no damage.
func (w *World) Damage(num, amount int) bool {
	ent := w.Entity(num)
	if ent == nil || !ent.InUse || ent.Health <= 0 || ent.Flags&host.FLGodmode != 0 {
		return false
	}
	ent.Health -= amount
	if ent.Client != nil {
		ent.Client.PS.Stats[host.StatHealth] = ent.Health
	}
	if ent.Health > 0 {
		return false
	}
	ent.EFlags |= host.EFDead
	if ent.Client != nil {
		ent.Client.PS.PMType = host.PMDead
	}
	return true
}

// DamageEntity hands the damage to OnDamage when set, and otherwise just
// applies it.
func (w *World) DamageEntity(target, inflictor, attacker, damage, dflags, mod int) {
	if w.Entity(target) == nil {
		return
	}
	if w.OnDamage != nil {
		w.OnDamage(target, attacker, damage, dflags, mod)
		return
	}
	w.Damage(target, damage)
}

func (w *World) GibEntity(num int) {
	ent := w.Entity(num)
	if ent == nil || !ent.InUse {
		return
	}
	if ent.Health > gibHealth {
		ent.Health = gibHealth
	}
	ent.EFlags |= host.EFDead
	ent.Contents = 0
	if ent.Client != nil {
		ent.Client.PS.Stats[host.StatHealth] = ent.Health
		ent.Client.PS.PMType = host.PMDead
	} else {
		ent.EType = host.ETInvisible
	}
	w.LinkEntity(ent)
}
