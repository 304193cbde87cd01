package api

import (
	"strings"

	"github.com/zond/etlua/host"

	lua "github.com/yuin/gopher-lua"
)

// field describes one named slot of a host structure T. Array fields take an
// extra index argument, read as the first argument after the field name.
type field[T any] struct {
	name       string
	readOnly   bool
	clientOnly bool
	size       int
	get        func(L *lua.LState, v *T, idx int) lua.LValue
	set        func(L *lua.LState, v *T, idx int, arg int)
}

func (f field[T]) ro() field[T] {
	f.readOnly = true
	return f
}

func (f field[T]) client() field[T] {
	f.clientOnly = true
	return f
}

func (f field[T]) indexed() bool {
	return f.size > 0
}

func intField[T any](name string, p func(*T) *int) field[T] {
	return field[T]{
		name: name,
		get: func(L *lua.LState, v *T, _ int) lua.LValue {
			return lua.LNumber(*p(v))
		},
		set: func(L *lua.LState, v *T, _ int, arg int) {
			*p(v) = L.CheckInt(arg)
		},
	}
}

func boolField[T any](name string, p func(*T) *bool) field[T] {
	return field[T]{
		name: name,
		get: func(L *lua.LState, v *T, _ int) lua.LValue {
			if *p(v) {
				return lua.LNumber(1)
			}
			return lua.LNumber(0)
		},
		set: func(L *lua.LState, v *T, _ int, arg int) {
			*p(v) = L.CheckInt(arg) != 0
		},
	}
}

func floatField[T any](name string, p func(*T) *float32) field[T] {
	return field[T]{
		name: name,
		get: func(L *lua.LState, v *T, _ int) lua.LValue {
			return lua.LNumber(*p(v))
		},
		set: func(L *lua.LState, v *T, _ int, arg int) {
			*p(v) = float32(L.CheckNumber(arg))
		},
	}
}

func stringField[T any](name string, size int, p func(*T) *string) field[T] {
	return field[T]{
		name: name,
		get: func(L *lua.LState, v *T, _ int) lua.LValue {
			return lua.LString(*p(v))
		},
		set: func(L *lua.LState, v *T, _ int, arg int) {
			*p(v) = CheckString(L, arg, size)
		},
	}
}

func vectorField[T any](name string, p func(*T) *host.Vec3) field[T] {
	return field[T]{
		name: name,
		get: func(L *lua.LState, v *T, _ int) lua.LValue {
			return VectorTable(L, *p(v))
		},
		set: func(L *lua.LState, v *T, _ int, arg int) {
			*p(v) = CheckVector3(L, arg)
		},
	}
}

func arrayField[T any](name string, size int, p func(*T) []int) field[T] {
	return field[T]{
		name: name,
		size: size,
		get: func(L *lua.LState, v *T, idx int) lua.LValue {
			return lua.LNumber(p(v)[idx])
		},
		set: func(L *lua.LState, v *T, idx int, arg int) {
			p(v)[idx] = L.CheckInt(arg)
		},
	}
}

// tableField exposes a whole array as a 0-based table. It cannot be written.
func tableField[T any](name string, p func(*T) []int) field[T] {
	return field[T]{
		name:     name,
		readOnly: true,
		get: func(L *lua.LState, v *T, _ int) lua.LValue {
			return intTable(L, p(v))
		},
	}
}

// EntityField identifies a gentity_get/gentity_set field.
type EntityField int

const (
	EntityFieldUnknown EntityField = iota
	EntityClassname
	EntityTargetname
	EntityTarget
	EntityHealth
	EntityDamage
	EntitySpawnflags
	EntityClipmask
	EntityCount
	EntityFlags
	EntityInuse
	EntityOrigin
	EntityAngles
	EntityMins
	EntityMaxs
	EntityType
	EntityEFlags
	EntityNumber
	EntityClientNum
	EntityWeapon
	EntityTeamNum
	EntityModelIndex
	EntityNetname
	EntitySessionTeam
	EntityPlayerType
	EntityPlayerWeapon
	EntityStats
	EntityPersistant
	EntityPowerups
	EntityAmmo
	EntityAmmoClip
	EntityPSWeapon
	EntityPMType
	EntityPMFlags
	EntityPSOrigin
	EntityPSVelocity
	EntityPSViewAngles
	entityFieldCount
)

var entityFields = [entityFieldCount]field[host.Entity]{
	EntityClassname:  stringField("classname", host.MaxStringChars, func(e *host.Entity) *string { return &e.Classname }).ro(),
	EntityTargetname: stringField("targetname", host.MaxStringChars, func(e *host.Entity) *string { return &e.Targetname }).ro(),
	EntityTarget:     stringField("target", host.MaxStringChars, func(e *host.Entity) *string { return &e.Target }).ro(),
	EntityHealth:     intField("health", func(e *host.Entity) *int { return &e.Health }),
	EntityDamage:     intField("damage", func(e *host.Entity) *int { return &e.Damage }),
	EntitySpawnflags: intField("spawnflags", func(e *host.Entity) *int { return &e.Spawnflags }),
	EntityClipmask:   intField("clipmask", func(e *host.Entity) *int { return &e.ClipMask }),
	EntityCount:      intField("count", func(e *host.Entity) *int { return &e.Count }),
	EntityFlags:      intField("flags", func(e *host.Entity) *int { return &e.Flags }),
	EntityInuse:      boolField("inuse", func(e *host.Entity) *bool { return &e.InUse }).ro(),
	EntityOrigin:     vectorField("origin", func(e *host.Entity) *host.Vec3 { return &e.Origin }),
	EntityAngles:     vectorField("angles", func(e *host.Entity) *host.Vec3 { return &e.Angles }),
	EntityMins:       vectorField("mins", func(e *host.Entity) *host.Vec3 { return &e.Mins }),
	EntityMaxs:       vectorField("maxs", func(e *host.Entity) *host.Vec3 { return &e.Maxs }),
	EntityType:       intField("s.eType", func(e *host.Entity) *int { return &e.EType }),
	EntityEFlags:     intField("s.eFlags", func(e *host.Entity) *int { return &e.EFlags }),
	EntityNumber:     intField("s.number", func(e *host.Entity) *int { return &e.Number }).ro(),
	EntityClientNum:  intField("s.clientNum", func(e *host.Entity) *int { return &e.Client.Num }).ro().client(),
	EntityWeapon:     intField("s.weapon", func(e *host.Entity) *int { return &e.Weapon }),
	EntityTeamNum:    intField("s.teamNum", func(e *host.Entity) *int { return &e.TeamNum }),
	EntityModelIndex: intField("s.modelindex", func(e *host.Entity) *int { return &e.ModelIndex }),

	EntityNetname:      stringField("pers.netname", host.MaxNetname, func(e *host.Entity) *string { return &e.Client.Netname }).ro().client(),
	EntitySessionTeam:  intField("sess.sessionTeam", func(e *host.Entity) *int { return &e.Client.Sess.Team }).ro().client(),
	EntityPlayerType:   intField("sess.playerType", func(e *host.Entity) *int { return &e.Client.Sess.PlayerType }).ro().client(),
	EntityPlayerWeapon: intField("sess.playerWeapon", func(e *host.Entity) *int { return &e.Client.Sess.PlayerWeapon }).ro().client(),
	EntityStats:        arrayField("ps.stats", host.MaxStats, func(e *host.Entity) []int { return e.Client.PS.Stats[:] }).client(),
	EntityPersistant:   arrayField("ps.persistant", host.MaxPersistant, func(e *host.Entity) []int { return e.Client.PS.Persistant[:] }).client(),
	EntityPowerups:     arrayField("ps.powerups", host.MaxPowerups, func(e *host.Entity) []int { return e.Client.PS.Powerups[:] }).client(),
	EntityAmmo:         arrayField("ps.ammo", host.MaxWeapons, func(e *host.Entity) []int { return e.Client.PS.Ammo[:] }).client(),
	EntityAmmoClip:     arrayField("ps.ammoclip", host.MaxWeapons, func(e *host.Entity) []int { return e.Client.PS.AmmoClip[:] }).client(),
	EntityPSWeapon:     intField("ps.weapon", func(e *host.Entity) *int { return &e.Client.PS.Weapon }).client(),
	EntityPMType:       intField("ps.pm_type", func(e *host.Entity) *int { return &e.Client.PS.PMType }).client(),
	EntityPMFlags:      intField("ps.pm_flags", func(e *host.Entity) *int { return &e.Client.PS.PMFlags }).client(),
	EntityPSOrigin:     vectorField("ps.origin", func(e *host.Entity) *host.Vec3 { return &e.Client.PS.Origin }).client(),
	EntityPSVelocity:   vectorField("ps.velocity", func(e *host.Entity) *host.Vec3 { return &e.Client.PS.Velocity }).client(),
	EntityPSViewAngles: vectorField("ps.viewangles", func(e *host.Entity) *host.Vec3 { return &e.Client.PS.ViewAngles }).client(),
}

// PlayerField identifies a playerstate_get/playerstate_set field.
type PlayerField int

const (
	PlayerFieldUnknown PlayerField = iota
	PlayerClientNum
	PlayerCommandTime
	PlayerPMType
	PlayerPMFlags
	PlayerPMTime
	PlayerEFlags
	PlayerWeapon
	PlayerWeaponState
	PlayerViewAngles
	PlayerOrigin
	PlayerVelocity
	PlayerViewHeight
	PlayerGravity
	PlayerSpeed
	PlayerPing
	PlayerLeanf
	PlayerStats
	PlayerPersistant
	PlayerPowerups
	PlayerAmmo
	PlayerAmmoClip
	playerFieldCount
)

var playerFields = [playerFieldCount]field[host.PlayerState]{
	PlayerClientNum:   intField("clientNum", func(p *host.PlayerState) *int { return &p.ClientNum }).ro(),
	PlayerCommandTime: intField("commandTime", func(p *host.PlayerState) *int { return &p.CommandTime }).ro(),
	PlayerPMType:      intField("pm_type", func(p *host.PlayerState) *int { return &p.PMType }),
	PlayerPMFlags:     intField("pm_flags", func(p *host.PlayerState) *int { return &p.PMFlags }),
	PlayerPMTime:      intField("pm_time", func(p *host.PlayerState) *int { return &p.PMTime }),
	PlayerEFlags:      intField("eFlags", func(p *host.PlayerState) *int { return &p.EFlags }),
	PlayerWeapon:      intField("weapon", func(p *host.PlayerState) *int { return &p.Weapon }),
	PlayerWeaponState: intField("weaponstate", func(p *host.PlayerState) *int { return &p.WeaponState }),
	PlayerViewAngles:  vectorField("viewangles", func(p *host.PlayerState) *host.Vec3 { return &p.ViewAngles }),
	PlayerOrigin:      vectorField("origin", func(p *host.PlayerState) *host.Vec3 { return &p.Origin }),
	PlayerVelocity:    vectorField("velocity", func(p *host.PlayerState) *host.Vec3 { return &p.Velocity }),
	PlayerViewHeight:  intField("viewheight", func(p *host.PlayerState) *int { return &p.ViewHeight }),
	PlayerGravity:     intField("gravity", func(p *host.PlayerState) *int { return &p.Gravity }),
	PlayerSpeed:       intField("speed", func(p *host.PlayerState) *int { return &p.Speed }),
	PlayerPing:        intField("ping", func(p *host.PlayerState) *int { return &p.Ping }).ro(),
	PlayerLeanf:       floatField("leanf", func(p *host.PlayerState) *float32 { return &p.Leanf }),
	PlayerStats:       tableField("stats", func(p *host.PlayerState) []int { return p.Stats[:] }),
	PlayerPersistant:  tableField("persistant", func(p *host.PlayerState) []int { return p.Persistant[:] }),
	PlayerPowerups:    tableField("powerups", func(p *host.PlayerState) []int { return p.Powerups[:] }),
	PlayerAmmo:        tableField("ammo", func(p *host.PlayerState) []int { return p.Ammo[:host.WeaponCount] }),
	PlayerAmmoClip:    tableField("ammoclip", func(p *host.PlayerState) []int { return p.AmmoClip[:host.WeaponCount] }),
}

var (
	entityFieldsByName = fieldIndex(entityFields[:])
	playerFieldsByName = fieldIndex(playerFields[:])
)

func fieldIndex[T any](fields []field[T]) map[string]int {
	result := map[string]int{}
	for i, f := range fields {
		if f.name != "" {
			result[strings.ToLower(f.name)] = i
		}
	}
	return result
}

// ResolveEntityField maps a case-insensitive field name to its identifier.
func ResolveEntityField(name string) EntityField {
	return EntityField(entityFieldsByName[strings.ToLower(name)])
}

func ResolvePlayerField(name string) PlayerField {
	return PlayerField(playerFieldsByName[strings.ToLower(name)])
}

func (f EntityField) String() string {
	if f <= EntityFieldUnknown || f >= entityFieldCount {
		return "unknown"
	}
	return entityFields[f].name
}

func (f PlayerField) String() string {
	if f <= PlayerFieldUnknown || f >= playerFieldCount {
		return "unknown"
	}
	return playerFields[f].name
}

// getField pushes the value of f in v, or nil for out of range indexes.
// Array fields read their index from argument arg.
func getField[T any](L *lua.LState, f field[T], v *T, arg int) {
	idx := 0
	if f.indexed() {
		var ok bool
		if idx, ok = OptBoundedIndex(L, arg, 0, f.size); !ok {
			L.Push(lua.LNil)
			return
		}
	}
	L.Push(f.get(L, v, idx))
}

// setField writes f in v from argument arg. Array fields take the index at
// arg and the value at arg+1. Read-only fields and out of range indexes are
// ignored.
func setField[T any](L *lua.LState, f field[T], v *T, arg int) {
	if f.readOnly || f.set == nil {
		return
	}
	if f.indexed() {
		if idx, ok := BoundedIndex(L, arg, f.size); ok {
			f.set(L, v, idx, arg+1)
		}
		return
	}
	f.set(L, v, 0, arg)
}
