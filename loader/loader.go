// Package loader turns module names into running slots: it reads the source
// through the host file system, fingerprints it, checks the allow-list and
// starts the interpreter.
package loader

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/zond/etlua"
	"github.com/zond/etlua/host"
	"github.com/zond/etlua/interp"
	"github.com/zond/etlua/signature"
	"github.com/zond/etlua/vm"

	cache "github.com/go-pkgz/expirable-cache/v3"
	lua "github.com/yuin/gopher-lua"
)

const (
	Extension   = ".lua"
	MaxFileSize = 1024 * 1024

	protoCacheTTL  = time.Hour
	protoCacheKeys = 4 * vm.DefaultCapacity
)

var (
	ErrNotFound    = errors.New("module not found")
	ErrTooLarge    = errors.New("module too large")
	ErrACLDenied   = errors.New("module disallowed by ACL")
	ErrNoFreeSlots = vm.ErrNoFreeSlots
	ErrCompile     = errors.New("module failed to compile")
	ErrRuntime     = errors.New("module failed to start")
)

// LoadError says which step of loading Module failed. Kind is one of the Err
// variables above, Err the underlying cause if there was one.
type LoadError struct {
	Kind      error
	Module    string
	Signature string
	Err       error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Module, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Module, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

type compiled struct {
	source []byte
	proto  *lua.FunctionProto
}

type Loader struct {
	Registry *vm.Registry
	FS       host.FileSystem
	Bind     vm.Binder
	// AllowList returns the current signature allow-list. Nil or empty
	// allows every module.
	AllowList func() string
	Options   interp.Options
	// Prepare, if set, sees every slot before its top level runs.
	Prepare func(slot *vm.Slot)
	// OnLoad, if set, sees the outcome of every Load.
	OnLoad func(file string, slot *vm.Slot, err error)
	Logger *log.Logger

	protos cache.Cache[string, *compiled]
}

func New(registry *vm.Registry, fs host.FileSystem, bind vm.Binder) *Loader {
	return &Loader{
		Registry: registry,
		FS:       fs,
		Bind:     bind,
		Options:  interp.Options{StdLib: true},
		Logger:   registry.Logger(),
		protos:   cache.NewCache[string, *compiled]().WithTTL(protoCacheTTL).WithMaxKeys(protoCacheKeys).WithLRU(),
	}
}

func (l *Loader) logger() *log.Logger {
	if l.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return l.Logger
}

// Normalize returns the file name a module is loaded from.
func Normalize(name string) string {
	name = host.Truncate(name, host.MaxQPath)
	if len(name) < len(Extension) || !strings.EqualFold(name[len(name)-len(Extension):], Extension) {
		name = host.Truncate(name+Extension, host.MaxQPath)
	}
	return name
}

func (l *Loader) read(name string) ([]byte, error) {
	fd, length, err := l.FS.Open(name, host.FSRead)
	if err != nil {
		l.logger().Printf("Lua API: can not open file '%s'", name)
		return nil, &LoadError{Kind: ErrNotFound, Module: name, Err: err}
	}
	defer l.FS.Close(fd)
	if length > MaxFileSize {
		l.logger().Printf("Lua API: ignoring file '%s' (too big)", name)
		return nil, &LoadError{Kind: ErrTooLarge, Module: name}
	}
	data, err := l.FS.Read(fd, length)
	if err != nil {
		return nil, &LoadError{Kind: ErrNotFound, Module: name, Err: err}
	}
	return data, nil
}

func (l *Loader) compile(name string, sig signature.Signature, source []byte) (*lua.FunctionProto, error) {
	key := sig.String()
	if c, found := l.protos.Get(key); found && bytes.Equal(c.source, source) {
		return c.proto, nil
	}
	proto, err := interp.Compile(name, source)
	if err != nil {
		return nil, err
	}
	l.protos.Set(key, &compiled{source: source, proto: proto}, 0)
	return proto, nil
}

// CacheStats reports how often compiled modules were reused.
func (l *Loader) CacheStats() cache.Stats {
	return l.protos.Stat()
}

// Load reads, vets and starts one module, and places it in the registry.
func (l *Loader) Load(module string) (slot *vm.Slot, err error) {
	name := Normalize(module)
	if l.OnLoad != nil {
		defer func() {
			l.OnLoad(name, slot, err)
		}()
	}
	source, err := l.read(name)
	if err != nil {
		return nil, err
	}
	sig := signature.Compute(source)
	if l.AllowList != nil && !signature.Allowed(l.AllowList(), sig) {
		l.logger().Printf("Lua API: Lua module [%s] [%s] disallowed by ACL", name, sig)
		return nil, &LoadError{Kind: ErrACLDenied, Module: name, Signature: sig.String()}
	}
	id, err := l.Registry.Reserve()
	if err != nil {
		l.logger().Printf("Lua API: no free VMs left to load module: %q", module)
		return nil, &LoadError{Kind: ErrNoFreeSlots, Module: name, Signature: sig.String()}
	}
	proto, err := l.compile(name, sig, source)
	if err != nil {
		l.Registry.Release(id)
		msg := err.Error()
		ierr := &interp.Error{}
		if errors.As(err, &ierr) {
			msg = ierr.Message
		}
		l.logger().Printf("Lua API: syntax error during pre-compilation: %s", msg)
		return nil, &LoadError{Kind: ErrCompile, Module: name, Signature: sig.String(), Err: err}
	}
	slot = vm.NewSlot(id, name, sig, len(source), l.logger())
	if l.Prepare != nil {
		l.Prepare(slot)
	}
	if err := slot.Start(l.Options, proto, l.Bind); err != nil {
		l.Registry.Release(id)
		kind := ErrRuntime
		// Running out of memory at load counts like a compile failure.
		if interp.IsKind(err, interp.KindMemory) {
			kind = ErrCompile
		}
		return nil, &LoadError{Kind: kind, Module: name, Signature: sig.String(), Err: err}
	}
	if err := l.Registry.Occupy(slot); err != nil {
		slot.Stop()
		l.Registry.Release(id)
		return nil, etlua.WithStack(err)
	}
	return slot, nil
}

// Discover loads every module in list, in order, until the registry is
// full. It returns how many loaded and how many were never attempted.
func (l *Loader) Discover(list string) (loaded, skipped int) {
	modules := signature.Split(list)
	if len(modules) == 0 {
		l.logger().Printf("Lua API: no Lua files set (use lua_modules cvar)")
		return 0, 0
	}
	for i, module := range modules {
		if loaded >= l.Registry.Cap() {
			skipped = len(modules) - i
			l.logger().Printf("Lua API: too many lua files specified, only the first %d have been loaded, %d skipped", l.Registry.Cap(), skipped)
			break
		}
		if _, err := l.Load(module); err == nil {
			loaded++
		}
	}
	return loaded, skipped
}
