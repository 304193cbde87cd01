package world

import (
	"fmt"

	"github.com/zond/etlua/host"
)

var (
	playerMins = host.Vec3{-18, -18, -24}
	playerMaxs = host.Vec3{18, 18, 48}
	// Points needed for each skill level above zero.
	skillLevels = []float32{20, 50, 90, 140}
)

func (w *World) Client(num int) *host.Client {
	if num < 0 || num >= host.MaxClients {
		return nil
	}
	return &w.clients[num]
}

// Connect puts a client in slot num and spawns its player entity.
func (w *World) Connect(num int, userinfo string, bot bool) *host.Client {
	client := w.Client(num)
	if client == nil {
		return nil
	}
	*client = host.Client{
		Num:       num,
		Connected: true,
		Bot:       bot,
		Userinfo:  userinfo,
		Sess:      host.Session{Team: host.TeamSpectator},
		EnterTime: w.levelTime,
	}
	client.PS.ClientNum = num
	client.PS.Stats[host.StatHealth] = 100
	client.PS.Stats[host.StatMaxHealth] = 100
	client.PS.PMType = host.PMSpectator
	w.UserinfoChanged(num)
	ent := &w.entities[num]
	*ent = host.Entity{
		Number:    num,
		InUse:     true,
		Classname: "player",
		EType:     host.ETPlayer,
		Contents:  host.ContentsBody,
		ClipMask:  host.MaskPlayerSolid,
		Health:    100,
		Mins:      playerMins,
		Maxs:      playerMaxs,
		Client:    client,
	}
	w.LinkEntity(ent)
	return client
}

// Disconnect empties client slot num.
func (w *World) Disconnect(num int) {
	client := w.Client(num)
	if client == nil {
		return
	}
	*client = host.Client{Num: num}
	client.PS.ClientNum = num
	w.FreeEntity(&w.entities[num])
	w.entities[num].Client = nil
}

func (w *World) Userinfo(num int) string {
	if client := w.Client(num); client != nil {
		return client.Userinfo
	}
	return ""
}

func (w *World) SetUserinfo(num int, info string) {
	if client := w.Client(num); client != nil {
		client.Userinfo = host.Truncate(info, host.MaxInfoString)
	}
}

func (w *World) UserinfoChanged(num int) {
	client := w.Client(num)
	if client == nil || !client.Connected {
		return
	}
	name := host.InfoValueForKey(client.Userinfo, "name")
	if name == "" {
		name = "UnnamedPlayer"
	}
	client.Netname = host.Truncate(name, host.MaxNetname)
}

func (w *World) DropClient(num int, reason string, banTime int) {
	client := w.Client(num)
	if client == nil || !client.Connected {
		return
	}
	w.console.Printf("%s dropped: %s", client.Netname, reason)
	if banTime > 0 {
		w.console.Printf("%s banned for %d seconds", client.Netname, banTime)
	}
	w.Disconnect(num)
}

func (w *World) Say(clientNum, mode int, text string) {
	client := w.Client(clientNum)
	if client == nil || !client.Connected {
		return
	}
	prefix := "say"
	if mode == host.SayTeam || mode == host.SayTeamNL {
		prefix = "say_team"
	} else if mode == host.SayBuddy {
		prefix = "say_buddy"
	}
	line := fmt.Sprintf("%s: %s", client.Netname, text)
	w.console.Printf("%s: %s", prefix, line)
	for i := range w.clients {
		other := &w.clients[i]
		if !other.Connected {
			continue
		}
		if mode != host.SayAll && other.Sess.Team != client.Sess.Team {
			continue
		}
		w.SendServerCommand(i, fmt.Sprintf("chat %q", line))
	}
}

func (w *World) NumConnected() int {
	count := 0
	for i := range w.clients {
		if w.clients[i].Connected {
			count++
		}
	}
	return count
}

func (w *World) AddSkillPoints(clientNum, skill int, points float32) {
	client := w.Client(clientNum)
	if client == nil || !client.Connected || skill < 0 || skill >= host.SkillCount {
		return
	}
	w.SetSkillPoints(clientNum, skill, client.Sess.SkillPoints[skill]+points)
}

func (w *World) SetSkillPoints(clientNum, skill int, points float32) {
	client := w.Client(clientNum)
	if client == nil || !client.Connected || skill < 0 || skill >= host.SkillCount {
		return
	}
	client.Sess.SkillPoints[skill] = points
	level := 0
	for _, threshold := range skillLevels {
		if points >= threshold {
			level++
		}
	}
	client.Sess.Skill[skill] = level
}

func (w *World) LoseSkillPoints(clientNum, skill int, points float32) {
	client := w.Client(clientNum)
	if client == nil || !client.Connected || skill < 0 || skill >= host.SkillCount {
		return
	}
	client.Sess.SkillPoints[skill] -= points
	if client.Sess.SkillPoints[skill] < 0 {
		client.Sess.SkillPoints[skill] = 0
	}
}
