package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zond/etlua/host"

	lua "github.com/yuin/gopher-lua"
)

// configstringInt reads a numeric configstring, zero when unset.
func (b *binding) configstringInt(index int) int {
	i, err := strconv.Atoi(strings.TrimSpace(b.env.Host.Configstring(index)))
	if err != nil {
		return 0
	}
	return i
}

func (b *binding) countAlive(team func(int) bool) int {
	count := 0
	for i := 0; i < host.MaxClients; i++ {
		client := b.env.Host.Client(i)
		if client == nil || !client.Connected {
			continue
		}
		if team(client.Sess.Team) && client.PS.PMType != host.PMDead {
			count++
		}
	}
	return count
}

// optEntity returns the entity numbered by argument n whether in use or
// not, or nil when the number is out of range.
func (b *binding) optEntity(L *lua.LState, n int) *host.Entity {
	return b.env.Host.Entity(L.CheckInt(n))
}

func (b *binding) addMatch(f Functions) {
	f["G_MatchIsWarmup"] = func(L *lua.LState) int {
		PushBool(L, b.configstringInt(host.CSWarmup) != 0)
		return 1
	}
	f["G_MatchIsIntermission"] = func(L *lua.LState) int {
		PushBool(L, b.configstringInt(host.CSIntermission) != 0)
		return 1
	}
	f["G_MatchIsPaused"] = func(L *lua.LState) int {
		PushBool(L, b.cvarInt("g_paused") != 0)
		return 1
	}
	f["G_TimeLimit"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(b.cvarInt("timelimit")))
		return 1
	}
	f["G_SetTimeLimit"] = func(L *lua.LState) int {
		b.env.Host.CvarSet("timelimit", fmt.Sprint(L.CheckInt(1)))
		return 0
	}
	f["GetNumAlivePlayers"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(b.countAlive(func(team int) bool { return team != host.TeamSpectator })))
		return 1
	}
	f["GetNumAliveAxis"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(b.countAlive(func(team int) bool { return team == host.TeamAxis })))
		return 1
	}
	f["GetNumAliveAllies"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(b.countAlive(func(team int) bool { return team == host.TeamAllies })))
		return 1
	}
	f["G_NextMap"] = func(L *lua.LState) int {
		b.env.Host.SendConsoleCommand(host.ExecAppend, "vstr nextmap\n")
		return 0
	}
	f["G_RestartMap"] = func(L *lua.LState) int {
		b.env.Host.SendConsoleCommand(host.ExecAppend, "map_restart 0\n")
		return 0
	}
	f["G_SetWinner"] = func(L *lua.LState) int {
		b.env.Host.SetConfigstring(host.CSMultiInfo, fmt.Sprint(L.CheckInt(1)))
		return 0
	}
	f["G_SetGlobalFog"] = func(L *lua.LState) int {
		on := L.CheckInt(1)
		duration := L.CheckInt(2)
		r := float32(L.CheckNumber(3))
		g := float32(L.CheckNumber(4))
		bl := float32(L.CheckNumber(5))
		depth := float32(L.CheckNumber(6))
		b.env.Host.SetConfigstring(host.CSGlobalFogVars, fmt.Sprintf("%d %d %f %f %f %f", on, duration, r, g, bl, depth))
		return 0
	}
	f["G_ShaderRemap"] = func(L *lua.LState) int {
		oldShader := CheckString(L, 1, host.MaxQPath)
		newShader := CheckString(L, 2, host.MaxQPath)
		b.env.Host.RemapShader(oldShader, newShader, float32(b.env.Host.LevelTime())*0.001)
		return 0
	}
	f["G_ShaderRemapFlush"] = func(L *lua.LState) int {
		b.env.Host.SetConfigstring(host.CSShaderState, b.env.Host.ShaderState())
		return 0
	}
	f["G_ResetRemappedShaders"] = func(L *lua.LState) int {
		b.env.Host.ResetRemappedShaders()
		return 0
	}
	f["InPVS"] = func(L *lua.LState) int {
		a := CheckVector3(L, 1)
		c := CheckVector3(L, 2)
		PushBool(L, b.env.Host.InPVS(a, c))
		return 1
	}
	f["G_HistoricalTrace"] = func(L *lua.LState) int {
		start := CheckVector3(L, 1)
		end := CheckVector3(L, 2)
		passEnt := L.OptInt(3, host.EntityNumNone)
		mask := L.OptInt(4, host.MaskShot)
		PushTrace(L, b.env.Host.Trace(start, host.Vec3{}, host.Vec3{}, end, passEnt, mask))
		return 1
	}
	f["G_Damage"] = func(L *lua.LState) int {
		target := L.CheckInt(1)
		inflictor := L.CheckInt(2)
		attacker := L.CheckInt(3)
		damage := L.CheckInt(4)
		dflags := L.CheckInt(5)
		mod := L.CheckInt(6)
		if ent := b.env.Host.Entity(target); ent != nil && ent.InUse {
			b.env.Host.DamageEntity(target, inflictor, attacker, damage, dflags, mod)
		}
		return 0
	}
	f["G_Sound"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		idx := L.CheckInt(2)
		if ent != nil {
			ent.Event = host.EVGeneralSound
			ent.EventParm = idx
		}
		return 0
	}
	f["G_ClientSound"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		idx := L.CheckInt(2)
		if client == nil {
			return 0
		}
		if te := b.env.Host.TempEntity(client.PS.Origin, host.EVGlobalClientSound); te != nil {
			te.TeamNum = client.Num
			te.EventParm = idx
		}
		return 0
	}
	f["G_UseEntity"] = func(L *lua.LState) int {
		ent := b.optEntity(L, 1)
		activator := b.optEntity(L, 2)
		if ent != nil && ent.Use != nil {
			ent.Use(ent, activator, activator)
		}
		return 0
	}
	f["G_Activate"] = func(L *lua.LState) int {
		ent := b.optEntity(L, 1)
		other := b.optEntity(L, 2)
		activator := b.optEntity(L, 3)
		if ent != nil && ent.Use != nil {
			ent.Use(ent, other, activator)
		}
		return 0
	}
	f["G_SetEntState"] = func(L *lua.LState) int {
		ent := b.entity(L, 1)
		state := L.CheckInt(2)
		if ent == nil {
			return 0
		}
		ent.EntState = state
		if state == host.StateDefault {
			ent.SvFlags &^= host.SVFNoClient
			b.env.Host.LinkEntity(ent)
		} else {
			ent.SvFlags |= host.SVFNoClient
			b.env.Host.UnlinkEntity(ent)
		}
		return 0
	}
	f["G_SetNextThinkTime"] = func(L *lua.LState) int {
		ent := b.optEntity(L, 1)
		delay := L.CheckInt(2)
		if ent != nil {
			ent.NextThink = b.env.Host.LevelTime() + delay
		}
		return 0
	}
	// Spawn variables only exist while a map is being parsed, and the
	// rest need game code the host does not have.
	f["G_GetSpawnVar"] = func(L *lua.LState) int {
		L.Push(lua.LNil)
		return 1
	}
	f["G_SetSpawnVar"] = func(L *lua.LState) int { return 0 }
	f["G_SetEntityThink"] = func(L *lua.LState) int { return 0 }
	f["G_EndRound"] = func(L *lua.LState) int { return 0 }
	f["G_PushDyno"] = func(L *lua.LState) int { return 0 }
	f["G_FireTeamCount"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(0))
		return 1
	}
}
