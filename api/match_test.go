package api

import (
	"fmt"
	"strings"
	"testing"

	"github.com/zond/etlua/host"
)

func TestClientCounters(t *testing.T) {
	f := newFixture(t)
	client := f.world.Connect(2, "\\name\\Sniper", false)
	client.Sess.Headshots = 7
	got := f.eval(t, `
et.G_ScoreSet(2, 12)
et.G_KillsSet(2, 3)
et.G_DeathsSet(2, 4)
et.G_TeamDamageSet(2, 150)
et.G_TeamKillsSet(2, 1)
et.G_RevivesSet(2, 5)
et.G_KillsSet(9, 3)
result = {
	score = et.G_ScoreGet(2),
	kills = et.G_KillsGet(2),
	deaths = et.G_DeathsGet(2),
	headshots = et.G_HeadshotsGet(2),
	teamDamage = et.G_TeamDamageGet(2),
	teamKills = et.G_TeamKillsGet(2),
	revives = et.G_RevivesGet(2),
	disconnected = et.G_KillsGet(9),
}`)
	check(t, got, map[any]any{
		"score":      12.0,
		"kills":      3.0,
		"deaths":     4.0,
		"headshots":  7.0,
		"teamDamage": 150.0,
		"teamKills":  1.0,
		"revives":    5.0,
	})
	if client.PS.Persistant[host.PersScore] != 12 {
		t.Errorf("score not stored in persistant, got %d", client.PS.Persistant[host.PersScore])
	}
}

func TestWeapons(t *testing.T) {
	f := newFixture(t)
	f.world.Connect(1, "\\name\\Rambo", false)
	got := f.eval(t, `
et.AddWeaponToPlayer(1, et.WP_MP40, 90, 30)
et.AddWeaponToPlayer(1, et.WP_KNIFE, 0, 0, 0)
local hadMP40 = et.G_ClientHasWeapon(1, et.WP_MP40)
local current = et.GetCurrentWeapon(1)
et.RemoveWeaponFromPlayer(1, et.WP_MP40)
local ammo, clip = et.G_GetAmmo(1, et.WP_MP40)
et.AddWeaponToPlayer(1, et.WP_NUM_WEAPONS, 1, 1)
result = {
	hadMP40 = hadMP40,
	current = current,
	knife = et.G_ClientHasWeapon(1, et.WP_KNIFE),
	mp40 = et.G_ClientHasWeapon(1, et.WP_MP40),
	ammo = ammo,
	clip = clip,
	negative = et.G_ClientHasWeapon(1, -1),
	tooLarge = et.G_ClientHasWeapon(1, et.WP_NUM_WEAPONS),
}`)
	check(t, got, map[any]any{
		"hadMP40":  true,
		"current":  float64(host.WeaponMP40),
		"knife":    true,
		"mp40":     false,
		"ammo":     0.0,
		"clip":     0.0,
		"negative": false,
		"tooLarge": false,
	})
}

func TestExperience(t *testing.T) {
	f := newFixture(t)
	f.world.Connect(1, "\\name\\Vet", false)
	got := f.eval(t, `
local skill = et.SK_FIRST_AID
et.G_XP_Set(1, 60, skill)
local set = {et.GetPlayerXP(1, skill), et.GetPlayerSkill(1, skill)}
et.G_XP_Set(1, 40, skill, 1)
local added = {et.GetPlayerXP(1, skill), et.GetPlayerSkill(1, skill)}
et.G_LoseSkillPoints(1, skill, 95)
local lost = {et.GetPlayerXP(1, skill), et.GetPlayerSkill(1, skill)}
et.G_LoseSkillPoints(1, skill, 95)
local floor = et.GetPlayerXP(1, skill)
et.G_XP_Set(1, 500, et.SK_NUM_SKILLS)
et.G_ResetXP(1)
result = {
	set = set,
	added = added,
	lost = lost,
	floor = floor,
	reset = {et.GetPlayerXP(1, skill), et.GetPlayerSkill(1, skill)},
}`)
	check(t, got, map[any]any{
		"set":   map[any]any{1.0: 60.0, 2.0: 2.0},
		"added": map[any]any{1.0: 100.0, 2.0: 3.0},
		"lost":  map[any]any{1.0: 5.0, 2.0: 3.0},
		"floor": 0.0,
		"reset": map[any]any{1.0: 0.0, 2.0: 0.0},
	})
}

func TestMatchState(t *testing.T) {
	f := newFixture(t)
	f.world.SetConfigstring(host.CSWarmup, "30000")
	f.world.CvarSet("g_paused", "1")
	f.world.CvarSet("timelimit", "15")
	got := f.eval(t, `
local limit = et.G_TimeLimit()
et.G_SetTimeLimit(20)
result = {
	warmup = et.G_MatchIsWarmup(),
	intermission = et.G_MatchIsIntermission(),
	paused = et.G_MatchIsPaused(),
	limit = limit,
	newLimit = et.G_TimeLimit(),
	fireteams = et.G_FireTeamCount(et.TEAM_AXIS),
	spawnVar = et.G_GetSpawnVar(0, "classname"),
}`)
	check(t, got, map[any]any{
		"warmup":       true,
		"intermission": false,
		"paused":       true,
		"limit":        15.0,
		"newLimit":     20.0,
		"fireteams":    0.0,
	})
}

func TestAliveCounts(t *testing.T) {
	f := newFixture(t)
	for num, team := range []int{host.TeamAxis, host.TeamAxis, host.TeamAllies, host.TeamSpectator} {
		client := f.world.Connect(num, "\\name\\p", false)
		client.Sess.Team = team
		client.PS.PMType = host.PMNormal
	}
	f.world.Client(1).PS.PMType = host.PMDead
	got := f.eval(t, `result = {et.GetNumAlivePlayers(), et.GetNumAliveAxis(), et.GetNumAliveAllies()}`)
	check(t, got, map[any]any{1.0: 2.0, 2.0: 1.0, 3.0: 1.0})
}

func TestCenterPrints(t *testing.T) {
	f := newFixture(t)
	f.world.Connect(1, "\\name\\p", false)
	f.eval(t, `
et.G_PrintCenter(1, "center")
et.G_PrintBanner(1, "banner")
et.G_PopupMessage(1, 2, "popup")
et.G_PrintCenter(-1, "everyone")
et.G_PopupMessage(64, 0, "nobody")`)
	check(t, f.commands, []string{
		`1 cp "center"`,
		`1 cpm "banner"`,
		`1 pm 2 popup`,
	})
}

func TestPlayerUserinfoAndTimers(t *testing.T) {
	f := newFixture(t)
	f.world.RunFrame(5000)
	f.world.Connect(1, "\\name\\p\\ip\\10.0.0.1:27960\\rate\\25000\\snaps\\20", false)
	f.world.Connect(2, "\\name\\q", false)
	f.world.RunFrame(8000)
	got := f.eval(t, `
et.G_SetPlayerRespawnTime(1, 2000)
result = {
	ip = et.G_GetPlayerIP(1),
	noIP = et.G_GetPlayerIP(2),
	rate = et.G_GetPlayerRate(1),
	snaps = et.G_GetPlayerSnaps(1),
	maxPackets = et.G_GetPlayerMaxPackets(1),
	outOfRange = et.G_GetPlayerRate(64),
	respawn = et.G_GetPlayerRespawnTime(1),
	timeRun = et.G_GetPlayerTimeRun(1),
	bot = et.G_GetBotEntity(2),
	noBot = et.G_GetBotEntity(-1),
}`)
	check(t, got, map[any]any{
		"ip":         "10.0.0.1:27960",
		"noIP":       "",
		"rate":       25000.0,
		"snaps":      20.0,
		"maxPackets": 0.0,
		"respawn":    10000.0,
		"timeRun":    3000.0,
		"bot":        2.0,
	})
}

func TestMapControl(t *testing.T) {
	f := newFixture(t)
	f.world.RunFrame(1500)
	f.eval(t, `
et.G_SetWinner(et.TEAM_ALLIES)
et.G_SetGlobalFog(1, 500, 0.5, 0.25, 1, 2048)
et.G_ShaderRemap("textures/a", "textures/b")
et.G_ShaderRemapFlush()
et.G_NextMap()
et.G_RestartMap()`)
	check(t, []string{
		f.world.Configstring(host.CSMultiInfo),
		f.world.Configstring(host.CSGlobalFogVars),
		f.world.Configstring(host.CSShaderState),
	}, []string{
		"2",
		"1 500 0.500000 0.250000 1.000000 2048.000000",
		"textures/a=textures/b: 1.50@",
	})
	for _, want := range []string{"console command: vstr nextmap", "console command: map_restart 0"} {
		if !strings.Contains(f.console.String(), want) {
			t.Errorf("console %q lacks %q", f.console, want)
		}
	}
	f.eval(t, `
et.G_ResetRemappedShaders()
et.G_ShaderRemapFlush()`)
	if got := f.world.Configstring(host.CSShaderState); got != "" {
		t.Errorf("remaps survived a reset: %q", got)
	}
}

func TestDamageGibAndUse(t *testing.T) {
	f := newFixture(t)
	f.world.Connect(1, "\\name\\Target", false)
	f.world.Connect(2, "\\name\\Shooter", false)
	button := f.world.Spawn()
	uses := []string{}
	button.Use = func(self, other, activator *host.Entity) {
		num := func(e *host.Entity) int {
			if e == nil {
				return -1
			}
			return e.Number
		}
		uses = append(uses, fmt.Sprintf("%d %d %d", num(self), num(other), num(activator)))
	}
	got := f.eval(t, fmt.Sprintf(`
local button = %d
et.G_Damage(1, 2, 2, 30, 0, et.MOD_KNIFE)
local hurt = et.gentity_get(1, "health")
et.G_Damage(1, 2, 2, 100, 0, et.MOD_KNIFE)
local dead = et.G_IsClientDead(1)
et.G_Gib(1)
et.G_UseEntity(button, 2)
et.G_Activate(button, 1, 2)
et.G_Activate(button, -1, 2)
et.G_UseEntity(0, 2)
result = {
	hurt = hurt,
	dead = dead,
	gibbed = et.gentity_get(1, "health"),
}`, button.Number))
	check(t, got, map[any]any{
		"hurt":   70.0,
		"dead":   true,
		"gibbed": -175.0,
	})
	check(t, uses, []string{
		fmt.Sprintf("%d 2 2", button.Number),
		fmt.Sprintf("%d 1 2", button.Number),
		fmt.Sprintf("%d -1 2", button.Number),
	})
}

func TestEntityStateAndSounds(t *testing.T) {
	f := newFixture(t)
	client := f.world.Connect(1, "\\name\\p", false)
	client.PS.Origin = host.Vec3{1, 2, 3}
	door := f.world.Spawn()
	f.world.LinkEntity(door)
	f.world.RunFrame(1000)
	f.eval(t, fmt.Sprintf(`
local door = %d
et.G_SetEntState(door, et.STATE_INVISIBLE)
et.G_SetNextThinkTime(door, 250)
et.G_Sound(door, 7)
et.G_ClientSound(1, 9)`, door.Number))
	if door.Linked || door.SvFlags&host.SVFNoClient == 0 || door.EntState != host.StateInvisible {
		t.Errorf("invisible door: %+v", door)
	}
	if door.NextThink != 1250 || door.Event != host.EVGeneralSound || door.EventParm != 7 {
		t.Errorf("door events: %+v", door)
	}
	var sound *host.Entity
	for i := host.FirstNonClient; i < host.MaxGEntities; i++ {
		if ent := f.world.Entity(i); ent.InUse && ent.Event == host.EVGlobalClientSound {
			sound = ent
		}
	}
	if sound == nil || sound.TeamNum != 1 || sound.EventParm != 9 || sound.Origin != client.PS.Origin {
		t.Errorf("client sound: %+v", sound)
	}
	f.eval(t, fmt.Sprintf(`et.G_SetEntState(%d, et.STATE_DEFAULT)`, door.Number))
	if !door.Linked || door.SvFlags&host.SVFNoClient != 0 {
		t.Errorf("visible door: %+v", door)
	}
}

func TestVisibility(t *testing.T) {
	f := newFixture(t)
	wall := f.world.Spawn()
	wall.Contents = host.ContentsSolid
	wall.Origin = host.Vec3{100, 0, 0}
	wall.Mins = host.Vec3{-10, -10, -10}
	wall.Maxs = host.Vec3{10, 10, 10}
	f.world.LinkEntity(wall)
	got := f.eval(t, `
local tr = et.G_HistoricalTrace({0, 0, 0}, {200, 0, 0})
result = {
	blocked = et.InPVS({0, 0, 0}, {200, 0, 0}),
	clear = et.InPVS({0, 50, 0}, {200, 50, 0}),
	hit = tr.entityNum,
}`)
	check(t, got, map[any]any{
		"blocked": false,
		"clear":   true,
		"hit":     float64(wall.Number),
	})
}
