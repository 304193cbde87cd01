// Package host describes the game server collaborators the scripting layer
// calls into. Nothing here is implemented; world provides an in-memory
// rendition and a real engine would provide its own.
package host

import (
	"unicode/utf8"
)

const (
	MaxClients         = 64
	MaxGEntities       = 1024
	MaxStats           = 16
	MaxPersistant      = 16
	MaxPowerups        = 16
	MaxWeapons         = 64
	MaxStringChars     = 1024
	MaxInfoString      = 1024
	MaxCvarValueString = 256
	MaxQPath           = 64
	MaxConfigstrings   = 1024
	MaxModels          = 256
	MaxSounds          = 256
	MaxNetname         = 36
	EntityNumNone      = MaxGEntities - 1
	EntityNumWorld     = MaxGEntities - 2
	// Entity numbers below this are reserved for clients.
	FirstNonClient = MaxClients
)

// Truncate cuts s so that it fits a host buffer of size bytes including the
// terminator, without splitting a UTF-8 sequence.
func Truncate(s string, size int) string {
	if size <= 0 {
		return ""
	}
	if len(s) < size {
		return s
	}
	s = s[:size-1]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}

type Vec3 [3]float32

type TraceResult struct {
	AllSolid     bool
	StartSolid   bool
	Fraction     float32
	EndPos       Vec3
	SurfaceFlags int
	Contents     int
	EntityNum    int
}

type PlayerState struct {
	ClientNum   int
	CommandTime int
	PMType      int
	PMFlags     int
	PMTime      int
	EFlags      int
	Weapon      int
	WeaponState int
	ViewAngles  Vec3
	Origin      Vec3
	Velocity    Vec3
	ViewHeight  int
	Gravity     int
	Speed       int
	Ping        int
	Leanf       float32
	Stats       [MaxStats]int
	Persistant  [MaxPersistant]int
	Powerups    [MaxPowerups]int
	Ammo        [MaxWeapons]int
	AmmoClip    [MaxWeapons]int
	// Weapons is a bitset of carried weapons.
	Weapons [MaxWeapons / 32]uint32
}

func (ps *PlayerState) HasWeapon(weapon int) bool {
	if weapon < 0 || weapon >= MaxWeapons {
		return false
	}
	return ps.Weapons[weapon/32]&(1<<uint(weapon%32)) != 0
}

func (ps *PlayerState) SetWeapon(weapon int, carried bool) {
	if weapon < 0 || weapon >= MaxWeapons {
		return
	}
	if carried {
		ps.Weapons[weapon/32] |= 1 << uint(weapon%32)
	} else {
		ps.Weapons[weapon/32] &^= 1 << uint(weapon%32)
	}
}

type Session struct {
	Team         int
	PlayerType   int
	PlayerWeapon int
	Skill        [SkillCount]int
	SkillPoints  [SkillCount]float32
	Muted        bool
	// MutedUntil is the level time the mute lifts, zero for indefinitely.
	MutedUntil int
	Kills      int
	Deaths     int
	Headshots  int
	TeamDamage int
	TeamKills  int
	Revives    int
}

type Client struct {
	Num       int
	Connected bool
	Bot       bool
	Netname   string
	Userinfo  string
	PS        PlayerState
	Sess      Session
	Noclip    bool
	// EnterTime is the level time the client entered the game.
	EnterTime int
	// RespawnTime is the level time of the next respawn.
	RespawnTime int
}

type Entity struct {
	Number     int
	InUse      bool
	Linked     bool
	Classname  string
	Targetname string
	Target     string
	Model      string
	Health     int
	Damage     int
	Spawnflags int
	ClipMask   int
	Count      int
	Flags      int
	SvFlags    int
	Contents   int
	EType      int
	EFlags     int
	Event      int
	EventParm  int
	ModelIndex int
	Weapon     int
	TeamNum    int
	Origin     Vec3
	Angles     Vec3
	Mins       Vec3
	Maxs       Vec3
	FreeAt     int
	NextThink  int
	EntState   int
	Client     *Client
	// Use runs when the entity is triggered, other is what touched it.
	Use func(self, other, activator *Entity)
}

type Console interface {
	// Print writes to the server console.
	Print(text string)
	// LogPrint writes to the game log.
	LogPrint(text string)
}

type Cvars interface {
	CvarGet(name string) string
	CvarSet(name, value string)
}

type Commands interface {
	SendConsoleCommand(when int, text string)
	// SendServerCommand sends text to one client, or every client when
	// clientNum is -1.
	SendServerCommand(clientNum int, text string)
	// Args returns the tokens of the command currently being handled.
	Args() []string
}

type Configstrings interface {
	Configstring(index int) string
	SetConfigstring(index int, value string)
}

type Clients interface {
	// Client returns nil for numbers outside [0, MaxClients).
	Client(num int) *Client
	Userinfo(num int) string
	SetUserinfo(num int, info string)
	UserinfoChanged(num int)
	DropClient(num int, reason string, banTime int)
	Say(clientNum, mode int, text string)
	NumConnected() int
}

type FileSystem interface {
	// Open returns a handle and the file length. Writes report length 0.
	Open(name string, mode int) (fd int, length int, err error)
	Read(fd int, n int) ([]byte, error)
	Write(fd int, data []byte) (int, error)
	Close(fd int) error
	Rename(from, to string) error
	List(dir, ext string) ([]string, error)
}

type Entities interface {
	// Entity returns nil for numbers outside [0, MaxGEntities).
	Entity(num int) *Entity
	Spawn() *Entity
	TempEntity(origin Vec3, event int) *Entity
	FreeEntity(e *Entity)
	LinkEntity(e *Entity)
	UnlinkEntity(e *Entity)
	EntitiesFree() int
}

type Collision interface {
	// Trace sweeps a box from start to end. passEnt is ignored as an
	// obstacle, mask selects which contents stop the sweep.
	Trace(start, mins, maxs, end Vec3, passEnt, mask int) TraceResult
	PointContents(point Vec3, passEnt int) int
	// InPVS reports whether b could be seen from a.
	InPVS(a, b Vec3) bool
}

type Combat interface {
	// DamageEntity hurts target the way a weapon would, running every
	// game rule attached to damage.
	DamageEntity(target, inflictor, attacker, damage, dflags, mod int)
	// GibEntity blows a dead or dying entity apart.
	GibEntity(num int)
}

type Shaders interface {
	// RemapShader replaces oldShader with newShader, starting at
	// timeOffset seconds.
	RemapShader(oldShader, newShader string, timeOffset float32)
	ResetRemappedShaders()
	// ShaderState encodes the active remaps for the shader configstring.
	ShaderState() string
}

type Assets interface {
	SoundIndex(name string) int
	ModelIndex(name string) int
	GlobalSound(name string)
}

type Clock interface {
	// Milliseconds is wall time since the server started.
	Milliseconds() int
	// LevelTime is game time since the map started.
	LevelTime() int
}

type Random interface {
	// Float returns a value in [0, 1).
	Float() float64
	// Intn returns a value in [0, n).
	Intn(n int) int
}

type Skills interface {
	AddSkillPoints(clientNum, skill int, points float32)
	// SetSkillPoints replaces the points of one skill and recomputes its
	// level.
	SetSkillPoints(clientNum, skill int, points float32)
	// LoseSkillPoints takes points away without lowering the level.
	LoseSkillPoints(clientNum, skill int, points float32)
}

type Host interface {
	Console
	Cvars
	Commands
	Configstrings
	Clients
	FileSystem
	Entities
	Collision
	Combat
	Shaders
	Assets
	Clock
	Random
	Skills
}
