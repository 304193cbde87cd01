package api

import (
	"strings"

	"github.com/zond/etlua/host"

	lua "github.com/yuin/gopher-lua"
)

// entity returns the in-use entity numbered by argument n, or nil.
func (b *binding) entity(L *lua.LState, n int) *host.Entity {
	ent := b.env.Host.Entity(L.CheckInt(n))
	if ent == nil || !ent.InUse {
		return nil
	}
	return ent
}

func truthy(v lua.LValue) bool {
	if n, ok := v.(lua.LNumber); ok {
		return n != 0
	}
	return lua.LVAsBool(v)
}

// find returns the first in-use entity after start whose field matches value
// case-insensitively.
func (b *binding) find(start int, value string, field func(*host.Entity) string) (int, bool) {
	for i := start + 1; i < host.MaxGEntities; i++ {
		ent := b.env.Host.Entity(i)
		if ent == nil || !ent.InUse {
			continue
		}
		if strings.EqualFold(field(ent), value) {
			return i, true
		}
	}
	return 0, false
}

func classname(e *host.Entity) string  { return e.Classname }
func targetname(e *host.Entity) string { return e.Targetname }

func pushFound(L *lua.LState, num int, found bool) int {
	if found {
		L.Push(lua.LNumber(num))
	} else {
		L.Push(lua.LNil)
	}
	return 1
}

func (b *binding) addEntities(f Functions) {
	f["G_Spawn"] = func(L *lua.LState) int {
		ent := b.env.Host.Spawn()
		if ent == nil {
			return pushFound(L, 0, false)
		}
		return pushFound(L, ent.Number, true)
	}
	f["G_CreateEntity"] = func(L *lua.LState) int {
		name := CheckString(L, 1, host.MaxStringChars)
		ent := b.env.Host.Spawn()
		if ent == nil {
			return pushFound(L, 0, false)
		}
		ent.Classname = name
		return pushFound(L, ent.Number, true)
	}
	f["G_TempEntity"] = func(L *lua.LState) int {
		origin := CheckVector3(L, 1)
		ent := b.env.Host.TempEntity(origin, L.CheckInt(2))
		if ent == nil {
			return pushFound(L, 0, false)
		}
		return pushFound(L, ent.Number, true)
	}
	f["G_FreeEntity"] = func(L *lua.LState) int {
		// Player bodies belong to their clients.
		if ent := b.entity(L, 1); ent != nil && ent.Number >= host.FirstNonClient {
			b.env.Host.FreeEntity(ent)
		}
		return 0
	}
	f["G_DeleteEntity"] = func(L *lua.LState) int {
		name := L.CheckString(1)
		deleted := 0
		for num, found := b.find(-1, name, targetname); found; num, found = b.find(num, name, targetname) {
			ent := b.env.Host.Entity(num)
			if num >= host.FirstNonClient && ent.SvFlags&host.SVFNoClient == 0 {
				b.env.Host.FreeEntity(ent)
				deleted++
			}
		}
		L.Push(lua.LNumber(deleted))
		return 1
	}
	f["G_EntitiesFree"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(b.env.Host.EntitiesFree()))
		return 1
	}
	f["G_AddEvent"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		event := L.CheckInt(2)
		parm := L.CheckInt(3)
		if ent != nil {
			ent.Event = event
			ent.EventParm = parm
		}
		return 0
	}
	f["trap_LinkEntity"] = func(L *lua.LState) int {
		if ent := b.entity(L, 1); ent != nil {
			b.env.Host.LinkEntity(ent)
		}
		return 0
	}
	f["trap_UnlinkEntity"] = func(L *lua.LState) int {
		if ent := b.entity(L, 1); ent != nil {
			b.env.Host.UnlinkEntity(ent)
		}
		return 0
	}
	f["gentity_get"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		spec := entityFields[ResolveEntityField(L.CheckString(2))]
		if ent == nil || spec.get == nil || (spec.clientOnly && ent.Client == nil) {
			L.Push(lua.LNil)
			return 1
		}
		getField(L, spec, ent, 3)
		return 1
	}
	f["gentity_set"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		spec := entityFields[ResolveEntityField(L.CheckString(2))]
		if ent == nil || spec.get == nil || (spec.clientOnly && ent.Client == nil) {
			return 0
		}
		setField(L, spec, ent, 3)
		return 0
	}
	b.addEntityVector(f, "Origin", func(e *host.Entity) *host.Vec3 { return &e.Origin })
	b.addEntityVector(f, "Angles", func(e *host.Entity) *host.Vec3 { return &e.Angles })
	f["G_GetEntHealth"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		if ent == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(ent.Health))
		return 1
	}
	f["G_SetEntHealth"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		health := L.CheckInt(2)
		if ent != nil {
			ent.Health = health
		}
		return 0
	}
	f["G_GetEntInuse"] = func(L *lua.LState) int {
		PushBool(L, b.entity(L, 1) != nil)
		return 1
	}
	f["G_Find"] = func(L *lua.LState) int {
		start := L.OptInt(1, -1)
		fieldName := L.CheckString(2)
		value := L.CheckString(3)
		if start < -1 || start >= host.MaxGEntities {
			return pushFound(L, 0, false)
		}
		var num int
		var found bool
		switch strings.ToLower(fieldName) {
		case "classname":
			num, found = b.find(start, value, classname)
		case "targetname":
			num, found = b.find(start, value, targetname)
		}
		return pushFound(L, num, found)
	}
	f["G_FindByTargetname"] = func(L *lua.LState) int {
		start := L.OptInt(1, -1)
		value := L.CheckString(2)
		if start < -1 || start >= host.MaxGEntities {
			return pushFound(L, 0, false)
		}
		num, found := b.find(start, value, targetname)
		return pushFound(L, num, found)
	}
	f["G_IterateEntities"] = func(L *lua.LState) int {
		start := L.OptInt(1, 0)
		name, filtered := "", L.Get(2) != lua.LNil
		if filtered {
			name = L.CheckString(2)
		}
		for i := max(start, 0); i < host.MaxGEntities; i++ {
			ent := b.env.Host.Entity(i)
			if ent == nil || !ent.InUse {
				continue
			}
			if !filtered || ent.Classname == name {
				return pushFound(L, i, true)
			}
		}
		return pushFound(L, 0, false)
	}
	b.addEntityString(f, "Classname", func(e *host.Entity) *string { return &e.Classname })
	b.addEntityString(f, "Targetname", func(e *host.Entity) *string { return &e.Targetname })
	f["G_GetEntityModel"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		if ent == nil || ent.Model == "" {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(ent.Model))
		return 1
	}
	f["G_SetEntityModel"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		model := CheckString(L, 2, host.MaxQPath)
		if ent != nil {
			ent.Model = model
			ent.ModelIndex = b.env.Host.ModelIndex(model)
		}
		return 0
	}
	b.addEntityLinkedInt(f, "Contents", func(e *host.Entity) *int { return &e.Contents })
	b.addEntityLinkedInt(f, "SvFlags", func(e *host.Entity) *int { return &e.SvFlags })
	f["G_GetBoundingBox"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		if ent == nil {
			L.Push(lua.LNil)
			return 1
		}
		PushVector3(L, ent.Mins)
		PushVector3(L, ent.Maxs)
		return 2
	}
	f["G_SetBoundingBox"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		mins := CheckVector3(L, 2)
		maxs := CheckVector3(L, 3)
		if ent != nil {
			ent.Mins = mins
			ent.Maxs = maxs
			b.env.Host.LinkEntity(ent)
		}
		return 0
	}
	f["G_SetEntityFlag"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		flag := L.CheckInt(2)
		set := truthy(L.CheckAny(3))
		if ent == nil {
			PushBool(L, false)
			return 1
		}
		if set {
			ent.Flags |= flag
		} else {
			ent.Flags &^= flag
		}
		PushBool(L, true)
		return 1
	}
	f["G_GetEntityFlag"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		flag := L.CheckInt(2)
		PushBool(L, ent != nil && ent.Flags&flag != 0)
		return 1
	}
	f["G_SpawnInfo"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		if ent == nil {
			L.Push(lua.LNil)
			return 1
		}
		tbl := L.CreateTable(0, 6)
		for key, value := range map[string]string{
			"classname":  ent.Classname,
			"targetname": ent.Targetname,
			"target":     ent.Target,
		} {
			if value != "" {
				tbl.RawSetString(key, lua.LString(value))
			}
		}
		tbl.RawSetString("spawnflags", lua.LNumber(ent.Spawnflags))
		tbl.RawSetString("origin", VectorTable(L, ent.Origin))
		tbl.RawSetString("angles", VectorTable(L, ent.Angles))
		L.Push(tbl)
		return 1
	}
}

func (b *binding) addEntityVector(f Functions, name string, p func(*host.Entity) *host.Vec3) {
	f["G_Get"+name] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		if ent == nil {
			L.Push(lua.LNil)
			return 1
		}
		PushVector3(L, *p(ent))
		return 1
	}
	f["G_Set"+name] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		v := CheckVector3(L, 2)
		if ent != nil {
			*p(ent) = v
		}
		return 0
	}
}

func (b *binding) addEntityString(f Functions, name string, p func(*host.Entity) *string) {
	f["G_GetEntity"+name] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		if ent == nil || *p(ent) == "" {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(*p(ent)))
		return 1
	}
	f["G_SetEntity"+name] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		value := CheckString(L, 2, host.MaxStringChars)
		if ent != nil {
			*p(ent) = value
		}
		return 0
	}
}

// addEntityLinkedInt exposes a collision relevant integer, the entity is
// relinked after every write.
func (b *binding) addEntityLinkedInt(f Functions, name string, p func(*host.Entity) *int) {
	f["G_GetEntity"+name] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		if ent == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(*p(ent)))
		return 1
	}
	f["G_SetEntity"+name] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		value := L.CheckInt(2)
		if ent != nil {
			*p(ent) = value
			b.env.Host.LinkEntity(ent)
		}
		return 0
	}
}
