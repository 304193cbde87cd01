package api

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zond/etlua/hooks"
	"github.com/zond/etlua/host"

	lua "github.com/yuin/gopher-lua"
)

func (b *binding) addModule(f Functions) {
	f["G_Print"] = func(L *lua.LState) int {
		text := CheckString(L, 1, host.MaxStringChars)
		b.env.Host.Print(text)
		if b.slot != nil && b.slot.Console != nil {
			io.WriteString(b.slot.Console, text)
		}
		return 0
	}
	f["G_LogPrint"] = func(L *lua.LState) int {
		b.env.Host.LogPrint(CheckString(L, 1, host.MaxStringChars))
		return 0
	}
	f["RegisterModname"] = func(L *lua.LState) int {
		b.slot.Name = CheckString(L, 1, host.MaxCvarValueString)
		return 0
	}
	f["FindSelf"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(b.slot.ID))
		return 1
	}
	f["FindMod"] = func(L *lua.LState) int {
		other, found := b.env.Registry.Get(L.CheckInt(1))
		if !found {
			L.Push(lua.LNil)
			L.Push(lua.LNil)
			return 2
		}
		L.Push(lua.LString(other.Name))
		L.Push(lua.LString(other.Signature.String()))
		return 2
	}
	f["IPCSend"] = func(L *lua.LState) int {
		target := L.CheckInt(1)
		message := L.CheckString(2)
		PushFlag(L, hooks.Deliver(b.env.Registry, b.slot, target, message))
		return 1
	}
}

func (b *binding) addCommands(f Functions) {
	f["trap_Cvar_Get"] = func(L *lua.LState) int {
		PushString(L, b.env.Host.CvarGet(L.CheckString(1)), host.MaxCvarValueString)
		return 1
	}
	f["trap_Cvar_Set"] = func(L *lua.LState) int {
		b.env.Host.CvarSet(L.CheckString(1), L.CheckString(2))
		return 0
	}
	f["trap_SendConsoleCommand"] = func(L *lua.LState) int {
		b.env.Host.SendConsoleCommand(L.CheckInt(1), L.CheckString(2))
		return 0
	}
	f["trap_SendServerCommand"] = func(L *lua.LState) int {
		b.env.Host.SendServerCommand(L.CheckInt(1), CheckString(L, 2, host.MaxStringChars))
		return 0
	}
	f["trap_Argc"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(len(b.env.Host.Args())))
		return 1
	}
	f["trap_Argv"] = func(L *lua.LState) int {
		n := L.CheckInt(1)
		args := b.env.Host.Args()
		if n < 0 || n >= len(args) {
			L.Push(lua.LString(""))
			return 1
		}
		PushString(L, args[n], host.MaxStringChars)
		return 1
	}
	f["ConcatArgs"] = func(L *lua.LState) int {
		n := L.CheckInt(1)
		args := b.env.Host.Args()
		if n < 0 {
			n = 0
		}
		if n >= len(args) {
			L.Push(lua.LString(""))
			return 1
		}
		PushString(L, strings.Join(args[n:], " "), host.MaxStringChars)
		return 1
	}
	f["trap_GetConfigstring"] = func(L *lua.LState) int {
		index, ok := BoundedIndex(L, 1, host.MaxConfigstrings)
		if !ok {
			L.Push(lua.LString(""))
			return 1
		}
		PushString(L, b.env.Host.Configstring(index), host.MaxStringChars)
		return 1
	}
	f["trap_SetConfigstring"] = func(L *lua.LState) int {
		index, ok := BoundedIndex(L, 1, host.MaxConfigstrings)
		value := L.CheckString(2)
		if ok {
			b.env.Host.SetConfigstring(index, value)
		}
		return 0
	}
	f["trap_GetUserinfo"] = func(L *lua.LState) int {
		PushString(L, b.env.Host.Userinfo(L.CheckInt(1)), host.MaxInfoString)
		return 1
	}
	f["trap_SetUserinfo"] = func(L *lua.LState) int {
		b.env.Host.SetUserinfo(L.CheckInt(1), CheckString(L, 2, host.MaxInfoString))
		return 0
	}
	f["ClientUserinfoChanged"] = func(L *lua.LState) int {
		b.env.Host.UserinfoChanged(L.CheckInt(1))
		return 0
	}
	f["trap_DropClient"] = func(L *lua.LState) int {
		b.env.Host.DropClient(L.CheckInt(1), L.CheckString(2), L.CheckInt(3))
		return 0
	}
	f["ClientNumberFromString"] = func(L *lua.LState) int {
		matches := ClientNumbersFromString(b.env.Host, L.CheckString(1))
		if len(matches) != 1 {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(matches[0]))
		return 1
	}
	f["G_Say"] = func(L *lua.LState) int {
		b.env.Host.Say(L.CheckInt(1), L.CheckInt(2), CheckString(L, 3, host.MaxStringChars))
		return 0
	}
}

// ClientNumbersFromString finds the connected clients search refers to. A
// slot number selects that client alone, otherwise every client whose
// cleaned name contains the cleaned search matches.
func ClientNumbersFromString(h host.Clients, search string) []int {
	if num, err := strconv.Atoi(search); err == nil {
		if client := h.Client(num); client != nil && client.Connected {
			return []int{num}
		}
		return nil
	}
	needle := strings.ToLower(host.CleanString(search))
	if needle == "" {
		return nil
	}
	result := []int{}
	for num := range host.MaxClients {
		client := h.Client(num)
		if client == nil || !client.Connected {
			continue
		}
		if strings.Contains(strings.ToLower(host.CleanString(client.Netname)), needle) {
			result = append(result, num)
		}
	}
	return result
}

func (b *binding) addInfo(f Functions) {
	f["Info_RemoveKey"] = func(L *lua.LState) int {
		info := CheckString(L, 1, host.MaxInfoString)
		L.Push(lua.LString(host.InfoRemoveKey(info, L.CheckString(2))))
		return 1
	}
	f["Info_SetValueForKey"] = func(L *lua.LState) int {
		info := CheckString(L, 1, host.MaxInfoString)
		key := L.CheckString(2)
		value := L.CheckString(3)
		if updated, ok := host.InfoSetValueForKey(info, key, value); ok {
			info = updated
		}
		L.Push(lua.LString(info))
		return 1
	}
	f["Info_ValueForKey"] = func(L *lua.LState) int {
		L.Push(lua.LString(host.InfoValueForKey(L.CheckString(1), L.CheckString(2))))
		return 1
	}
	f["Q_CleanStr"] = func(L *lua.LState) int {
		L.Push(lua.LString(host.CleanString(CheckString(L, 1, host.MaxStringChars))))
		return 1
	}
}

func (b *binding) addFiles(f Functions) {
	f["trap_FS_FOpenFile"] = func(L *lua.LState) int {
		fd, length, err := b.env.Host.Open(L.CheckString(1), L.CheckInt(2))
		if err != nil {
			L.Push(lua.LNumber(0))
			L.Push(lua.LNumber(-1))
			return 2
		}
		L.Push(lua.LNumber(fd))
		L.Push(lua.LNumber(length))
		return 2
	}
	f["trap_FS_Read"] = func(L *lua.LState) int {
		fd := L.CheckInt(1)
		count := L.CheckInt(2)
		if count <= 0 {
			L.Push(lua.LString(""))
			return 1
		}
		data, err := b.env.Host.Read(fd, count)
		if err != nil {
			L.Push(lua.LString(""))
			return 1
		}
		L.Push(lua.LString(data))
		return 1
	}
	f["trap_FS_Write"] = func(L *lua.LState) int {
		data := L.CheckString(1)
		count := L.CheckInt(2)
		fd := L.CheckInt(3)
		if count < 0 {
			count = 0
		}
		if count > len(data) {
			count = len(data)
		}
		n, err := b.env.Host.Write(fd, []byte(data[:count]))
		if err != nil {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(n))
		return 1
	}
	f["trap_FS_FCloseFile"] = func(L *lua.LState) int {
		if err := b.env.Host.Close(L.CheckInt(1)); err != nil {
			b.env.logger().Printf("Lua API: trap_FS_FCloseFile: %v", err)
		}
		return 0
	}
	f["trap_FS_Rename"] = func(L *lua.LState) int {
		if err := b.env.Host.Rename(L.CheckString(1), L.CheckString(2)); err != nil {
			b.env.logger().Printf("Lua API: trap_FS_Rename: %v", err)
		}
		return 0
	}
	f["trap_FS_GetFileList"] = func(L *lua.LState) int {
		names, err := b.env.Host.List(L.CheckString(1), L.CheckString(2))
		if err != nil {
			names = nil
		}
		PushStrings(L, names)
		return 1
	}
}

func (b *binding) addAssets(f Functions) {
	f["G_SoundIndex"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(b.env.Host.SoundIndex(CheckString(L, 1, host.MaxQPath))))
		return 1
	}
	f["G_ModelIndex"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(b.env.Host.ModelIndex(CheckString(L, 1, host.MaxQPath))))
		return 1
	}
	f["G_globalSound"] = func(L *lua.LState) int {
		b.env.Host.GlobalSound(CheckString(L, 1, host.MaxQPath))
		return 0
	}
}

func (b *binding) cvarInt(name string) int {
	i, err := strconv.Atoi(strings.TrimSpace(b.env.Host.CvarGet(name)))
	if err != nil {
		return 0
	}
	return i
}

func (b *binding) addMisc(f Functions) {
	milliseconds := func(L *lua.LState) int {
		L.Push(lua.LNumber(b.env.Host.Milliseconds()))
		return 1
	}
	levelTime := func(L *lua.LState) int {
		L.Push(lua.LNumber(b.env.Host.LevelTime()))
		return 1
	}
	f["trap_Milliseconds"] = milliseconds
	f["G_GetRealTime"] = milliseconds
	f["GetLevelTime"] = levelTime
	f["G_GetServerTime"] = levelTime
	f["G_Random"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(b.env.Host.Float()))
		return 1
	}
	f["G_RandomInt"] = func(L *lua.LState) int {
		low := L.CheckInt(1)
		high := L.CheckInt(2)
		if high < low {
			L.Push(lua.LNumber(low))
			return 1
		}
		span := int64(high) - int64(low) + 1
		if span <= 0 {
			L.Push(lua.LNumber(low))
			return 1
		}
		L.Push(lua.LNumber(int64(low) + int64(b.env.Host.Intn(int(span)))))
		return 1
	}
	f["isBitSet"] = func(L *lua.LState) int {
		bit := L.CheckInt(1)
		value := L.CheckInt(2)
		PushBool(L, value&bit != 0)
		return 1
	}
	f["G_GetMapName"] = func(L *lua.LState) int {
		PushString(L, b.env.Host.CvarGet("mapname"), host.MaxStringChars)
		return 1
	}
	f["G_GetGametype"] = func(L *lua.LState) int {
		L.Push(lua.LNumber(b.cvarInt("g_gametype")))
		return 1
	}
	f["G_IsVotingEnabled"] = func(L *lua.LState) int {
		PushBool(L, b.cvarInt("g_allowVote") != 0)
		return 1
	}
	for _, name := range []string{"Gravity", "Speed"} {
		cvar := "g_" + strings.ToLower(name)
		f["G_Get"+name] = func(L *lua.LState) int {
			L.Push(lua.LNumber(b.cvarInt(cvar)))
			return 1
		}
		f["G_Set"+name] = func(L *lua.LState) int {
			b.env.Host.CvarSet(cvar, fmt.Sprint(L.CheckInt(1)))
			return 0
		}
	}
}
