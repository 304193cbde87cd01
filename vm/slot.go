// Package vm holds loaded modules: one Slot per module and the fixed
// capacity Registry they live in.
package vm

import (
	"io"
	"log"
	"time"

	"github.com/zond/etlua"
	"github.com/zond/etlua/interp"
	"github.com/zond/etlua/signature"

	lua "github.com/yuin/gopher-lua"
)

const (
	unnamed = "(unnamed)"

	QuitFunction = "et_Quit"
	startLabel   = "main chunk"
)

// Binder installs the native API into a slot's interpreter before the module
// top level runs.
type Binder func(slot *Slot) error

type Slot struct {
	ID         int
	SourcePath string
	Name       string
	Signature  signature.Signature
	Size       int
	Errors     int
	LoadedAt   time.Time

	// Console receives what the module prints, in addition to the server
	// console.
	Console io.Writer

	ctx    *interp.Context
	logger *log.Logger
}

func NewSlot(id int, sourcePath string, sig signature.Signature, size int, logger *log.Logger) *Slot {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Slot{
		ID:         id,
		SourcePath: sourcePath,
		Signature:  sig,
		Size:       size,
		Console:    io.Discard,
		logger:     logger,
	}
}

func (s *Slot) DisplayName() string {
	if s.Name == "" {
		return unnamed
	}
	return s.Name
}

func (s *Slot) Interp() *interp.Context {
	return s.ctx
}

func (s *Slot) Running() bool {
	return s.ctx != nil && !s.ctx.Closed()
}

// Start creates the interpreter, binds the native API and runs proto as the
// module's top level. On failure the interpreter is gone and Errors has
// grown, the caller is expected to drop the slot.
func (s *Slot) Start(opts interp.Options, proto *lua.FunctionProto, bind Binder) error {
	ctx, err := interp.New(opts)
	if err != nil {
		s.Errors++
		s.logger.Printf("Lua API: failed to initialise Lua state.")
		return err
	}
	s.ctx = ctx
	if bind != nil {
		if err := bind(s); err != nil {
			s.Errors++
			s.close()
			return etlua.WithStack(err)
		}
	}
	fn := ctx.State().NewFunctionFromProto(proto)
	if _, err := s.Call(fn, startLabel, 0); err != nil {
		s.logger.Printf("Lua API: Lua VM start failed (%s)", s.SourcePath)
		s.close()
		return err
	}
	s.LoadedAt = time.Now()
	s.logger.Printf("Lua API: file '%s' loaded into Lua VM", s.SourcePath)
	return nil
}

// Function looks up a global function the module defined.
func (s *Slot) Function(name string) (*lua.LFunction, bool) {
	if !s.Running() {
		return nil, false
	}
	return s.ctx.Function(name)
}

// Call runs fn in protected mode. Failures are logged and counted, they never
// stop the slot.
func (s *Slot) Call(fn *lua.LFunction, label string, nret int, args ...lua.LValue) ([]lua.LValue, error) {
	if !s.Running() {
		return nil, etlua.WithStack(&interp.Error{Kind: interp.KindRuntime, Name: s.SourcePath, Message: "module not running"})
	}
	results, err := s.ctx.Call(fn, nret, args...)
	if err != nil {
		s.Errors++
		if interp.IsKind(err, interp.KindMemory) {
			s.logger.Printf("Lua API: memory allocation error (%s)", s.SourcePath)
		} else {
			s.logger.Printf("Lua API: %s error running lua script: '%s'", label, s.ctx.LastError())
		}
		return nil, err
	}
	return results, nil
}

// Stop gives the module a chance to run et_Quit, then destroys the
// interpreter. Stopping twice is harmless.
func (s *Slot) Stop() {
	if !s.Running() {
		return
	}
	if fn, found := s.Function(QuitFunction); found {
		_, _ = s.Call(fn, QuitFunction, 0)
	}
	s.close()
}

func (s *Slot) close() {
	if s.ctx != nil {
		s.ctx.Close()
	}
}
