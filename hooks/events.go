package hooks

import (
	"github.com/zond/etlua/host"

	lua "github.com/yuin/gopher-lua"
)

func ints(vals ...int) []lua.LValue {
	result := make([]lua.LValue, len(vals))
	for i, v := range vals {
		result[i] = lua.LNumber(v)
	}
	return result
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (d *Dispatcher) InitGame(levelTime, randomSeed int, restart bool) {
	d.Dispatch(InitGame, ints(levelTime, randomSeed, flag(restart))...)
}

func (d *Dispatcher) ShutdownGame(restart bool) {
	d.Dispatch(ShutdownGame, ints(flag(restart))...)
}

func (d *Dispatcher) RunFrame(levelTime int) {
	d.Dispatch(RunFrame, ints(levelTime)...)
}

// ClientConnect returns the rejection reason of the first module refusing
// the client.
func (d *Dispatcher) ClientConnect(clientNum int, firstTime, isBot bool) (string, bool) {
	res := d.Dispatch(ClientConnect, ints(clientNum, flag(firstTime), flag(isBot))...)
	if res.Kind != Value {
		return "", false
	}
	return host.Truncate(res.Value, host.MaxStringChars), true
}

func (d *Dispatcher) ClientDisconnect(clientNum int) {
	d.Dispatch(ClientDisconnect, ints(clientNum)...)
}

func (d *Dispatcher) ClientBegin(clientNum int) {
	d.Dispatch(ClientBegin, ints(clientNum)...)
}

func (d *Dispatcher) ClientUserinfoChanged(clientNum int) {
	d.Dispatch(ClientUserinfoChanged, ints(clientNum)...)
}

func (d *Dispatcher) ClientSpawn(clientNum int, revived, teamChange, restoreHealth bool) {
	d.Dispatch(ClientSpawn, ints(clientNum, flag(revived), flag(teamChange), flag(restoreHealth))...)
}

func (d *Dispatcher) ClientCommand(clientNum int, command string) bool {
	return d.Dispatch(ClientCommand, lua.LNumber(clientNum), lua.LString(command)).Blocked()
}

func (d *Dispatcher) ConsoleCommand(command string) bool {
	return d.Dispatch(ConsoleCommand, lua.LString(command)).Blocked()
}

func (d *Dispatcher) Print(text string) {
	d.Dispatch(Print, lua.LString(text))
}

func (d *Dispatcher) Obituary(victim, killer, meansOfDeath int) {
	d.Dispatch(Obituary, ints(victim, killer, meansOfDeath)...)
}

func (d *Dispatcher) Damage(target, attacker, damage, dflags, mod int) bool {
	return d.Dispatch(Damage, ints(target, attacker, damage, dflags, mod)...).Blocked()
}

func (d *Dispatcher) ChatMessage(clientNum, mode, chatType int, message string) bool {
	args := append(ints(clientNum, mode, chatType), lua.LString(message))
	return d.Dispatch(ChatMessage, args...).Blocked()
}

func (d *Dispatcher) WeaponFire(clientNum, weapon int) bool {
	return d.Dispatch(WeaponFire, ints(clientNum, weapon)...).Blocked()
}

func (d *Dispatcher) Revive(clientNum, reviverNum int) {
	d.Dispatch(Revive, ints(clientNum, reviverNum)...)
}

func (d *Dispatcher) SetPlayerSkill(clientNum, skill, level int) bool {
	return d.Dispatch(SetPlayerSkill, ints(clientNum, skill, level)...).Blocked()
}

func (d *Dispatcher) UpgradeSkill(clientNum, skill int) bool {
	return d.Dispatch(UpgradeSkill, ints(clientNum, skill)...).Blocked()
}

func (d *Dispatcher) FixedMGFire(clientNum int) bool {
	return d.Dispatch(FixedMGFire, ints(clientNum)...).Blocked()
}

func (d *Dispatcher) MountedMGFire(clientNum int) bool {
	return d.Dispatch(MountedMGFire, ints(clientNum)...).Blocked()
}

func (d *Dispatcher) AAGunFire(clientNum int) bool {
	return d.Dispatch(AAGunFire, ints(clientNum)...).Blocked()
}

func (d *Dispatcher) SpawnEntitiesFromString() {
	d.Dispatch(SpawnEntitiesFromString)
}
