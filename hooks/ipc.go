package hooks

import (
	"github.com/zond/etlua/vm"

	lua "github.com/yuin/gopher-lua"
)

const ipcLabel = "et.IPCSend"

// Deliver hands message from sender to the module in slot target by calling
// its et_IPCReceive synchronously. It reports whether the receiver existed,
// had never failed, defined the function and ran it without error. Whatever
// the receiver returns is ignored.
func Deliver(registry *vm.Registry, sender *vm.Slot, target int, message string) bool {
	receiver, found := registry.Get(target)
	if !found || receiver.Errors > 0 {
		return false
	}
	fn, found := receiver.Function(IPCReceive.Function)
	if !found {
		return false
	}
	var from lua.LValue = lua.LNil
	if sender != nil {
		from = lua.LNumber(sender.ID)
	}
	_, err := receiver.Call(fn, ipcLabel, 0, from, lua.LString(message))
	return err == nil
}
