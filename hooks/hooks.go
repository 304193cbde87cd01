// Package hooks fires server events into every loaded module.
//
// Modules are visited in slot order. Depending on the hook's contract the
// first module returning a qualifying value ends the dispatch.
package hooks

import (
	"math"
	"strconv"
	"strings"

	"github.com/zond/etlua/vm"

	lua "github.com/yuin/gopher-lua"
)

type Contract int

const (
	// ContractNone hooks are notifications, return values are ignored.
	ContractNone Contract = iota
	// ContractVeto hooks stop at the first module returning Sentinel.
	ContractVeto
	// ContractValue hooks stop at the first module returning a string or
	// number.
	ContractValue
)

func (c Contract) String() string {
	switch c {
	case ContractVeto:
		return "veto"
	case ContractValue:
		return "value"
	default:
		return "none"
	}
}

type Hook struct {
	Name     string
	Function string
	Contract Contract
	Sentinel int
	// Args names the arguments, for documentation and dumps.
	Args []string
}

func notify(name string, args ...string) Hook {
	return Hook{Name: name, Function: "et_" + name, Contract: ContractNone, Args: args}
}

func veto(name string, sentinel int, args ...string) Hook {
	return Hook{Name: name, Function: "et_" + name, Contract: ContractVeto, Sentinel: sentinel, Args: args}
}

var (
	InitGame                = notify("InitGame", "levelTime", "randomSeed", "restart")
	ShutdownGame            = notify("ShutdownGame", "restart")
	RunFrame                = notify("RunFrame", "levelTime")
	ClientConnect           = Hook{Name: "ClientConnect", Function: "et_ClientConnect", Contract: ContractValue, Args: []string{"clientNum", "firstTime", "isBot"}}
	ClientDisconnect        = notify("ClientDisconnect", "clientNum")
	ClientBegin             = notify("ClientBegin", "clientNum")
	ClientUserinfoChanged   = notify("ClientUserinfoChanged", "clientNum")
	ClientSpawn             = notify("ClientSpawn", "clientNum", "revived", "teamChange", "restoreHealth")
	ClientCommand           = veto("ClientCommand", 1, "clientNum", "command")
	ConsoleCommand          = veto("ConsoleCommand", 1, "command")
	Print                   = notify("Print", "text")
	Obituary                = notify("Obituary", "victim", "killer", "meansOfDeath")
	Damage                  = veto("Damage", 1, "target", "attacker", "damage", "dflags", "mod")
	ChatMessage             = veto("ChatMessage", 1, "clientNum", "mode", "chatType", "message")
	WeaponFire              = veto("WeaponFire", 1, "clientNum", "weapon")
	Revive                  = notify("Revive", "clientNum", "reviverNum")
	SetPlayerSkill          = veto("SetPlayerSkill", 1, "clientNum", "skill", "level")
	UpgradeSkill            = veto("UpgradeSkill", -1, "clientNum", "skill")
	FixedMGFire             = veto("FixedMGFire", 1, "clientNum")
	MountedMGFire           = veto("MountedMGFire", 1, "clientNum")
	AAGunFire               = veto("AAGunFire", 1, "clientNum")
	SpawnEntitiesFromString = notify("SpawnEntitiesFromString")
	Quit                    = notify("Quit")
	IPCReceive              = notify("IPCReceive", "senderID", "message")
)

// All lists the catalogue in the order the engine documents it.
func All() []Hook {
	return []Hook{
		InitGame, ShutdownGame, RunFrame,
		ClientConnect, ClientDisconnect, ClientBegin, ClientUserinfoChanged, ClientSpawn,
		ClientCommand, ConsoleCommand, Print, Obituary, Damage, ChatMessage,
		WeaponFire, Revive, SetPlayerSkill, UpgradeSkill,
		FixedMGFire, MountedMGFire, AAGunFire, SpawnEntitiesFromString,
		Quit, IPCReceive,
	}
}

type ResultKind int

const (
	None ResultKind = iota
	Blocked
	Value
)

type Result struct {
	Kind  ResultKind
	Value string
	// Slot is the id of the module that decided the result, or -1.
	Slot int
}

func (r Result) Blocked() bool {
	return r.Kind != None
}

type Dispatcher struct {
	Registry *vm.Registry
}

func NewDispatcher(registry *vm.Registry) *Dispatcher {
	return &Dispatcher{Registry: registry}
}

// Dispatch calls h in every module defining it. Module errors are logged and
// counted by the slot and never stop the dispatch.
func (d *Dispatcher) Dispatch(h Hook, args ...lua.LValue) Result {
	nret := 1
	if h.Contract == ContractNone {
		nret = 0
	}
	for slot := range d.Registry.Each() {
		fn, found := slot.Function(h.Function)
		if !found {
			continue
		}
		results, err := slot.Call(fn, h.Function, nret, args...)
		if err != nil || nret == 0 || len(results) == 0 {
			continue
		}
		switch h.Contract {
		case ContractVeto:
			if isSentinel(results[0], h.Sentinel) {
				return Result{Kind: Blocked, Slot: slot.ID}
			}
		case ContractValue:
			if s, ok := stringValue(results[0]); ok {
				return Result{Kind: Value, Value: s, Slot: slot.ID}
			}
		}
	}
	return Result{Kind: None, Slot: -1}
}

func isSentinel(v lua.LValue, sentinel int) bool {
	var n float64
	switch v := v.(type) {
	case lua.LNumber:
		n = float64(v)
	case lua.LString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		if err != nil {
			return false
		}
		n = parsed
	default:
		return false
	}
	return n == math.Trunc(n) && int(n) == sentinel
}

func stringValue(v lua.LValue) (string, bool) {
	switch v := v.(type) {
	case lua.LString:
		return string(v), true
	case lua.LNumber:
		return v.String(), true
	}
	return "", false
}
