// Package interp wraps one embedded Lua interpreter.
//
// A Context exclusively owns its *lua.LState. Nothing in here is safe for
// concurrent use; the server main loop is the only caller.
package interp

import (
	"bytes"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/gopher-lua/parse"
	"github.com/zond/etlua"

	lua "github.com/yuin/gopher-lua"
)

type Options struct {
	// StdLib opens every library gopher-lua ships with. Without it only the
	// base library is opened, minus the globals that reach the filesystem.
	StdLib bool
	// CallStackSize overrides the interpreter default when positive.
	CallStackSize int
}

var sandboxedGlobals = []string{
	"dofile",
	"loadfile",
	"require",
	"module",
}

type Context struct {
	state   *lua.LState
	lastErr string
}

func New(opts Options) (ctx *Context, err error) {
	defer func() {
		if rcv := recover(); rcv != nil {
			ctx = nil
			err = etlua.WithStack(&Error{Kind: KindMemory, Message: "unable to create interpreter"})
		}
	}()
	state := lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: opts.CallStackSize,
	})
	ctx = &Context{state: state}
	if opts.StdLib {
		state.OpenLibs()
		return ctx, nil
	}
	state.Push(state.NewFunction(lua.OpenBase))
	state.Push(lua.LString(lua.BaseLibName))
	if err := state.PCall(1, 0, nil); err != nil {
		state.Close()
		return nil, etlua.WithStack(classify("", err))
	}
	for _, name := range sandboxedGlobals {
		state.SetGlobal(name, lua.LNil)
	}
	return ctx, nil
}

// State exposes the underlying interpreter to native bindings.
func (c *Context) State() *lua.LState {
	return c.state
}

func (c *Context) Closed() bool {
	return c.state == nil
}

// Close releases the interpreter. Calling it again is a no-op.
func (c *Context) Close() {
	if c.state == nil {
		return
	}
	c.state.Close()
	c.state = nil
}

func (c *Context) LastError() string {
	return c.lastErr
}

func (c *Context) fail(name string, err error) error {
	ierr := classify(name, err)
	c.lastErr = ierr.Message
	return etlua.WithStack(ierr)
}

// Compile parses and compiles src without running it. The returned proto is
// immutable and may be run in any Context.
func Compile(name string, src []byte) (*lua.FunctionProto, error) {
	chunk, err := parse.Parse(bytes.NewReader(src), name)
	if err != nil {
		return nil, etlua.WithStack(classify(name, err))
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		return nil, etlua.WithStack(&Error{Kind: KindSyntax, Name: name, Message: err.Error()})
	}
	return proto, nil
}

func (c *Context) Compile(name string, src []byte) (*lua.FunctionProto, error) {
	proto, err := Compile(name, src)
	if err != nil {
		var ierr *Error
		if errors.As(err, &ierr) {
			c.lastErr = ierr.Message
		}
		return nil, err
	}
	return proto, nil
}

// RunProto runs a compiled chunk as top level code.
func (c *Context) RunProto(proto *lua.FunctionProto) error {
	if c.state == nil {
		return etlua.WithStack(&Error{Kind: KindRuntime, Name: proto.SourceName, Message: "interpreter closed"})
	}
	fn := c.state.NewFunctionFromProto(proto)
	_, err := c.Call(fn, 0)
	return err
}

func (c *Context) RunSource(name string, src []byte) error {
	proto, err := c.Compile(name, src)
	if err != nil {
		return err
	}
	return c.RunProto(proto)
}

func (c *Context) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		ierr := &Error{Kind: KindFile, Name: path, Message: err.Error()}
		c.lastErr = ierr.Message
		return etlua.WithStack(ierr)
	}
	return c.RunSource(path, src)
}

// Call runs fn in protected mode and returns its results. nret may be
// lua.MultRet. The interpreter stack is restored whatever happens.
func (c *Context) Call(fn *lua.LFunction, nret int, args ...lua.LValue) ([]lua.LValue, error) {
	if c.state == nil {
		return nil, etlua.WithStack(&Error{Kind: KindRuntime, Message: "interpreter closed"})
	}
	L := c.state
	base := L.GetTop()
	defer L.SetTop(base)
	L.Push(fn)
	for _, arg := range args {
		L.Push(arg)
	}
	if err := L.PCall(len(args), nret, nil); err != nil {
		name := ""
		if fn.Proto != nil {
			name = fn.Proto.SourceName
		}
		return nil, c.fail(name, err)
	}
	top := L.GetTop()
	results := make([]lua.LValue, 0, top-base)
	for i := base + 1; i <= top; i++ {
		results = append(results, L.Get(i))
	}
	return results, nil
}

// Function returns the global function called name, if the script defined one.
func (c *Context) Function(name string) (*lua.LFunction, bool) {
	if c.state == nil {
		return nil, false
	}
	fn, ok := c.state.GetGlobal(name).(*lua.LFunction)
	return fn, ok
}

func (c *Context) Register(name string, fn lua.LGFunction) {
	c.state.SetGlobal(name, c.state.NewFunction(fn))
}

// RegisterTable installs funcs in the global table called name, creating it
// when missing, and returns the table.
func (c *Context) RegisterTable(name string, funcs map[string]lua.LGFunction) *lua.LTable {
	tbl, ok := c.state.GetGlobal(name).(*lua.LTable)
	if !ok {
		tbl = c.state.NewTable()
		c.state.SetGlobal(name, tbl)
	}
	c.state.SetFuncs(tbl, funcs)
	return tbl
}

// GetGlobalInt returns the named global as an integer. Numeric strings count,
// anything else yields def.
func (c *Context) GetGlobalInt(name string, def int) int {
	switch v := c.state.GetGlobal(name).(type) {
	case lua.LNumber:
		return int(v)
	case lua.LString:
		if n, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64); err == nil {
			return int(n)
		}
	}
	return def
}

func (c *Context) GetGlobalString(name, def string) string {
	switch v := c.state.GetGlobal(name).(type) {
	case lua.LString:
		return string(v)
	case lua.LNumber:
		return v.String()
	}
	return def
}

func (c *Context) SetGlobalInt(name string, value int) {
	c.state.SetGlobal(name, lua.LNumber(value))
}

func (c *Context) SetGlobalString(name, value string) {
	c.state.SetGlobal(name, lua.LString(value))
}
