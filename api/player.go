package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zond/etlua/host"

	lua "github.com/yuin/gopher-lua"
)

// client returns the connected client numbered by argument n, or nil.
func (b *binding) client(L *lua.LState, n int) *host.Client {
	client := b.env.Host.Client(L.CheckInt(n))
	if client == nil || !client.Connected {
		return nil
	}
	return client
}

// addClientArray exposes one player state array as G_Get<name> and
// G_Set<name>, indexed by argument 2.
func (b *binding) addClientArray(f Functions, name string, p func(*host.Client) []int) {
	f["G_Get"+name] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			L.Push(lua.LNil)
			return 1
		}
		arr := p(client)
		idx, ok := BoundedIndex(L, 2, len(arr))
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(arr[idx]))
		return 1
	}
	f["G_Set"+name] = func(L *lua.LState) int {
		client := b.client(L, 1)
		value := L.CheckInt(3)
		if client == nil {
			return 0
		}
		arr := p(client)
		if idx, ok := BoundedIndex(L, 2, len(arr)); ok {
			arr[idx] = value
		}
		return 0
	}
}

func (b *binding) maxClients() int {
	n, err := strconv.Atoi(strings.TrimSpace(b.env.Host.CvarGet("sv_maxclients")))
	if err != nil || n <= 0 || n > host.MaxClients {
		return host.MaxClients
	}
	return n
}

func (b *binding) addPlayers(f Functions) {
	f["playerstate_get"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		spec := playerFields[ResolvePlayerField(L.CheckString(2))]
		if client == nil || spec.get == nil {
			L.Push(lua.LNil)
			return 1
		}
		getField(L, spec, &client.PS, 3)
		return 1
	}
	f["playerstate_set"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		spec := playerFields[ResolvePlayerField(L.CheckString(2))]
		if client == nil || spec.get == nil {
			return 0
		}
		setField(L, spec, &client.PS, 3)
		return 0
	}
	f["G_IsClientConnected"] = func(L *lua.LState) int {
		PushBool(L, b.client(L, 1) != nil)
		return 1
	}
	f["G_GetClientTeam"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(client.Sess.Team))
		return 1
	}
	f["G_SetClientTeam"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		team := L.CheckInt(2)
		if client == nil {
			return 0
		}
		if team != host.TeamAxis && team != host.TeamAllies {
			team = host.TeamSpectator
		}
		client.Sess.Team = team
		if ent := b.env.Host.Entity(client.Num); ent != nil {
			ent.TeamNum = team
		}
		b.env.Host.UserinfoChanged(client.Num)
		return 0
	}
	f["G_GetClientClass"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(client.Sess.PlayerType))
		return 1
	}
	f["G_GetClientName"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			L.Push(lua.LString(""))
			return 1
		}
		L.Push(lua.LString(client.Netname))
		return 1
	}
	f["G_GetClientPing"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(client.PS.Ping))
		return 1
	}
	f["G_GetClientGuid"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			L.Push(lua.LString(""))
			return 1
		}
		L.Push(lua.LString(host.InfoValueForKey(client.Userinfo, "cl_guid")))
		return 1
	}
	f["G_IsClientSpectator"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		PushBool(L, client != nil && client.Sess.Team == host.TeamSpectator)
		return 1
	}
	f["G_ClientIsBot"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		PushBool(L, client != nil && client.Bot)
		return 1
	}
	f["G_IsClientDead"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		PushBool(L, client == nil || client.PS.PMType == host.PMDead)
		return 1
	}
	f["G_IsClientAlive"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		PushBool(L, client != nil && client.Sess.Team != host.TeamSpectator && client.PS.PMType != host.PMDead)
		return 1
	}
	f["GetCurrentWeapon"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(client.PS.Weapon))
		return 1
	}
	f["G_ClientSetGodmode"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		god := lua.LVAsBool(L.Get(2))
		if client == nil {
			return 0
		}
		if ent := b.env.Host.Entity(client.Num); ent != nil {
			if god {
				ent.Flags |= host.FLGodmode
			} else {
				ent.Flags &^= host.FLGodmode
			}
		}
		return 0
	}
	f["G_ClientKill"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil || client.PS.PMType == host.PMDead {
			return 0
		}
		if ent := b.env.Host.Entity(client.Num); ent != nil {
			ent.Flags &^= host.FLGodmode
			ent.Health = 0
			ent.EFlags |= host.EFDead
		}
		client.PS.Stats[host.StatHealth] = 0
		client.PS.PMType = host.PMDead
		return 0
	}
	f["G_SetAmmo"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		weapon := L.CheckInt(2)
		ammo := L.OptInt(3, -1)
		clip := L.OptInt(4, -1)
		if client == nil || weapon < 0 || weapon >= host.WeaponCount {
			return 0
		}
		if ammo >= 0 {
			client.PS.Ammo[weapon] = ammo
		}
		if clip >= 0 {
			client.PS.AmmoClip[weapon] = clip
		}
		return 0
	}
	f["G_GetAmmo"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		weapon := L.CheckInt(2)
		if client == nil || weapon < 0 || weapon >= host.WeaponCount {
			L.Push(lua.LNil)
			L.Push(lua.LNil)
			return 2
		}
		L.Push(lua.LNumber(client.PS.Ammo[weapon]))
		L.Push(lua.LNumber(client.PS.AmmoClip[weapon]))
		return 2
	}
	f["G_SetClipAmmo"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		weapon := L.CheckInt(2)
		clip := L.CheckInt(3)
		if client != nil && weapon >= 0 && weapon < host.WeaponCount {
			client.PS.AmmoClip[weapon] = clip
		}
		return 0
	}
	b.addClientArray(f, "PlayerStat", func(c *host.Client) []int { return c.PS.Stats[:] })
	b.addClientArray(f, "Powerup", func(c *host.Client) []int { return c.PS.Powerups[:] })
	f["GetPlayerSkill"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		skill, ok := BoundedIndex(L, 2, host.SkillCount)
		if client == nil || !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(client.Sess.Skill[skill]))
		return 1
	}
	f["GetPlayerXP"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		skill, ok := BoundedIndex(L, 2, host.SkillCount)
		if client == nil || !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(client.Sess.SkillPoints[skill]))
		return 1
	}
	f["G_AddSkillPoints"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		skill, ok := BoundedIndex(L, 2, host.SkillCount)
		points := float32(L.CheckNumber(3))
		if client != nil && ok {
			b.env.Host.AddSkillPoints(client.Num, skill, points)
		}
		return 0
	}
	f["MutePlayer"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		seconds := L.OptInt(2, 0)
		reason := L.OptString(3, "")
		if client == nil {
			return 0
		}
		client.Sess.Muted = true
		client.Sess.MutedUntil = 0
		if seconds > 0 {
			client.Sess.MutedUntil = b.env.Host.LevelTime() + seconds*1000
		}
		if reason != "" {
			reason = ": " + reason
		}
		b.env.Host.SendServerCommand(client.Num, host.Truncate(fmt.Sprintf("print \"You have been muted%s\n\"", reason), host.MaxStringChars))
		return 0
	}
	f["UnmutePlayer"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			return 0
		}
		client.Sess.Muted = false
		client.Sess.MutedUntil = 0
		b.env.Host.SendServerCommand(client.Num, "print \"You have been unmuted\n\"")
		return 0
	}
	f["G_IsPlayerMuted"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		PushBool(L, client != nil && client.Sess.Muted)
		return 1
	}
	f["GetMaxClients"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(b.maxClients()))
		return 1
	}
	f["GetNumClients"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(b.env.Host.NumConnected()))
		return 1
	}
	f["GetNumPlayingClients"] = func(L *lua.LState) int {
		count := 0
		for num := range host.MaxClients {
			if client := b.env.Host.Client(num); client != nil && client.Connected && client.Sess.Team != host.TeamSpectator {
				count++
			}
		}
		L.Push(lua.LNumber(count))
		return 1
	}
}

func (b *binding) addTrace(f Functions) {
	f["trap_Trace"] = func(L *lua.LState) int {
		start := CheckVector3(L, 1)
		mins := OptVector3(L, 2, host.Vec3{})
		maxs := OptVector3(L, 3, host.Vec3{})
		end := CheckVector3(L, 4)
		passEnt := L.CheckInt(5)
		mask := L.CheckInt(6)
		PushTrace(L, b.env.Host.Trace(start, mins, maxs, end, passEnt, mask))
		return 1
	}
	f["trap_PointContents"] = func(L *lua.LState) int {
		point := CheckVector3(L, 1)
		L.Push(lua.LNumber(b.env.Host.PointContents(point, L.OptInt(2, -1))))
		return 1
	}
}

// addClientCounter exposes one client integer as G_<name>Get and
// G_<name>Set.
func (b *binding) addClientCounter(f Functions, name string, p func(*host.Client) *int) {
	f["G_"+name+"Get"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(*p(client)))
		return 1
	}
	f["G_"+name+"Set"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		value := L.CheckInt(2)
		if client != nil {
			*p(client) = value
		}
		return 0
	}
}

// addUserinfoInt exposes a numeric userinfo key. Unset keys read as zero.
func (b *binding) addUserinfoInt(f Functions, name, key string) {
	f["G_GetPlayer"+name] = func(L *lua.LState) int {
		num := L.CheckInt(1)
		if num < 0 || num >= host.MaxClients {
			L.Push(lua.LNil)
			return 1
		}
		value, err := strconv.Atoi(strings.TrimSpace(host.InfoValueForKey(b.env.Host.Userinfo(num), key)))
		if err != nil {
			value = 0
		}
		L.Push(lua.LNumber(value))
		return 1
	}
}

// centerPrint returns a function sending format with its text argument
// to one client.
func (b *binding) centerPrint(format string) lua.LGFunction {
	return func(L *lua.LState) int {
		num := L.CheckInt(1)
		text := L.CheckString(2)
		if num < 0 || num >= host.MaxClients {
			return 0
		}
		b.env.Host.SendServerCommand(num, host.Truncate(fmt.Sprintf(format, text), host.MaxStringChars))
		return 0
	}
}

func (b *binding) addProgress(f Functions) {
	b.addClientCounter(f, "Score", func(c *host.Client) *int { return &c.PS.Persistant[host.PersScore] })
	b.addClientCounter(f, "Kills", func(c *host.Client) *int { return &c.Sess.Kills })
	b.addClientCounter(f, "Deaths", func(c *host.Client) *int { return &c.Sess.Deaths })
	b.addClientCounter(f, "Headshots", func(c *host.Client) *int { return &c.Sess.Headshots })
	b.addClientCounter(f, "TeamDamage", func(c *host.Client) *int { return &c.Sess.TeamDamage })
	b.addClientCounter(f, "TeamKills", func(c *host.Client) *int { return &c.Sess.TeamKills })
	b.addClientCounter(f, "Revives", func(c *host.Client) *int { return &c.Sess.Revives })
	b.addUserinfoInt(f, "Rate", "rate")
	b.addUserinfoInt(f, "Snaps", "snaps")
	b.addUserinfoInt(f, "MaxPackets", "cl_maxpackets")
	f["G_PrintCenter"] = b.centerPrint("cp \"%s\"")
	f["G_PrintBanner"] = b.centerPrint("cpm \"%s\"")
	f["G_PopupMessage"] = func(L *lua.LState) int {
		num := L.CheckInt(1)
		icon := L.CheckInt(2)
		text := L.CheckString(3)
		if num < 0 || num >= host.MaxClients {
			return 0
		}
		b.env.Host.SendServerCommand(num, host.Truncate(fmt.Sprintf("pm %d %s", icon, text), host.MaxStringChars))
		return 0
	}
	f["G_GetPlayerIP"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(host.InfoValueForKey(client.Userinfo, "ip")))
		return 1
	}
	f["G_GetPlayerRespawnTime"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(client.RespawnTime))
		return 1
	}
	f["G_SetPlayerRespawnTime"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		delay := L.CheckInt(2)
		if client != nil {
			client.RespawnTime = b.env.Host.LevelTime() + delay
		}
		return 0
	}
	f["G_GetPlayerTimeRun"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(b.env.Host.LevelTime() - client.EnterTime))
		return 1
	}
	f["G_GetBotEntity"] = func(L *lua.LState) int {
		num := L.CheckInt(1)
		if num < 0 || num >= host.MaxClients {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(num))
		return 1
	}
	f["G_Gib"] = func(L *lua.LState) int {
		if client := b.client(L, 1); client != nil {
			b.env.Host.GibEntity(client.Num)
		}
		return 0
	}
	f["G_ClientSetNoclip"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		noclip := lua.LVAsBool(L.Get(2))
		if client != nil {
			client.Noclip = noclip
		}
		return 0
	}
	f["G_ClientHasWeapon"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		weapon := L.CheckInt(2)
		PushBool(L, client != nil && weapon < host.WeaponCount && client.PS.HasWeapon(weapon))
		return 1
	}
	f["AddWeaponToPlayer"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		weapon := L.CheckInt(2)
		ammo := L.OptInt(3, 0)
		clip := L.OptInt(4, 0)
		current := L.OptInt(5, 1)
		if client == nil || weapon < 0 || weapon >= host.WeaponCount {
			return 0
		}
		client.PS.SetWeapon(weapon, true)
		client.PS.Ammo[weapon] = ammo
		client.PS.AmmoClip[weapon] = clip
		if current != 0 {
			client.PS.Weapon = weapon
		}
		return 0
	}
	f["RemoveWeaponFromPlayer"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		weapon := L.CheckInt(2)
		if client == nil || weapon < 0 || weapon >= host.WeaponCount {
			return 0
		}
		client.PS.SetWeapon(weapon, false)
		client.PS.Ammo[weapon] = 0
		client.PS.AmmoClip[weapon] = 0
		return 0
	}
	f["G_XP_Set"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		xp := float32(L.CheckNumber(2))
		skill, ok := BoundedIndex(L, 3, host.SkillCount)
		add := L.OptInt(4, 0)
		if client == nil || !ok {
			return 0
		}
		if add != 0 {
			b.env.Host.AddSkillPoints(client.Num, skill, xp)
		} else {
			b.env.Host.SetSkillPoints(client.Num, skill, xp)
		}
		return 0
	}
	f["G_ResetXP"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		if client == nil {
			return 0
		}
		client.Sess.SkillPoints = [host.SkillCount]float32{}
		client.Sess.Skill = [host.SkillCount]int{}
		return 0
	}
	f["G_LoseSkillPoints"] = func(L *lua.LState) int {
		client := b.client(L, 1)
		skill, ok := BoundedIndex(L, 2, host.SkillCount)
		points := float32(L.CheckNumber(3))
		if client != nil && ok {
			b.env.Host.LoseSkillPoints(client.Num, skill, points)
		}
		return 0
	}
}
