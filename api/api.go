// Package api is the native surface modules see: the et namespace with its
// functions and integer constants.
package api

import (
	"io"
	"log"

	"github.com/zond/etlua/host"
	"github.com/zond/etlua/vm"

	lua "github.com/yuin/gopher-lua"
)

const Namespace = "et"

// Functions maps et function names to their implementations.
type Functions map[string]lua.LGFunction

// Env is what the native functions reach: the host they drive and the
// registry of sibling modules.
type Env struct {
	Host     host.Host
	Registry *vm.Registry
	Logger   *log.Logger
}

// Bind installs the et namespace into slot's interpreter. It has the
// vm.Binder signature.
func (e *Env) Bind(slot *vm.Slot) error {
	b := &binding{env: e, slot: slot}
	tbl := slot.Interp().RegisterTable(Namespace, b.functions())
	for _, c := range Constants {
		tbl.RawSetString(c.Name, lua.LNumber(c.Value))
	}
	return nil
}

func (e *Env) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return e.Logger
}

// binding is the et namespace of one slot.
type binding struct {
	env  *Env
	slot *vm.Slot
}

func (b *binding) functions() Functions {
	result := Functions{}
	b.addModule(result)
	b.addCommands(result)
	b.addInfo(result)
	b.addFiles(result)
	b.addAssets(result)
	b.addEntities(result)
	b.addPlayers(result)
	b.addProgress(result)
	b.addTrace(result)
	b.addMath(result)
	b.addMisc(result)
	b.addMatch(result)
	return result
}

// FunctionNames lists every function the et namespace carries.
func FunctionNames() []string {
	b := &binding{env: &Env{}}
	result := []string{}
	for name := range b.functions() {
		result = append(result, name)
	}
	return result
}
