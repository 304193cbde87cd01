package vm

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"github.com/zond/etlua/interp"
	"github.com/zond/etlua/signature"

	lua "github.com/yuin/gopher-lua"
)

func compile(t *testing.T, name, src string) *lua.FunctionProto {
	t.Helper()
	proto, err := interp.Compile(name, []byte(src))
	if err != nil {
		t.Fatal(err)
	}
	return proto
}

func startSlot(t *testing.T, r *Registry, name, src string) *Slot {
	t.Helper()
	id, err := r.Reserve()
	if err != nil {
		t.Fatal(err)
	}
	slot := NewSlot(id, name, signature.Compute([]byte(src)), len(src), r.Logger())
	if err := slot.Start(interp.Options{}, compile(t, name, src), nil); err != nil {
		r.Release(id)
		t.Fatal(err)
	}
	if err := r.Occupy(slot); err != nil {
		t.Fatal(err)
	}
	return slot
}

func testRegistry(t *testing.T, capacity int) (*Registry, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	r := NewRegistry(capacity, log.New(buf, "", 0))
	t.Cleanup(r.UnloadAll)
	return r, buf
}

func TestReserveCapacity(t *testing.T) {
	r, _ := testRegistry(t, 3)
	for want := 0; want < 3; want++ {
		id, err := r.Reserve()
		if err != nil || id != want {
			t.Fatalf("Reserve() = %d, %v, want %d", id, err, want)
		}
	}
	if _, err := r.Reserve(); !errors.Is(err, ErrNoFreeSlots) {
		t.Errorf("Reserve on full registry: %v", err)
	}
	r.Release(1)
	if id, err := r.Reserve(); err != nil || id != 1 {
		t.Errorf("Reserve after release = %d, %v", id, err)
	}
	if r.Len() != 0 {
		t.Errorf("reserved ids should not count as occupied, Len = %d", r.Len())
	}
}

func TestEachOrderAndLookup(t *testing.T) {
	r, _ := testRegistry(t, 4)
	a := startSlot(t, r, "a.lua", `x = 1`)
	b := startSlot(t, r, "b.lua", `x = 2`)
	c := startSlot(t, r, "c.lua", `x = 3`)
	r.Unload(b)
	d := startSlot(t, r, "d.lua", `x = 4`)
	var got []string
	for slot := range r.Each() {
		got = append(got, slot.SourcePath)
	}
	if diff := cmp.Diff([]string{"a.lua", "d.lua", "c.lua"}, got); diff != "" {
		t.Errorf("Each() mismatch (-want +got):\n%s", diff)
	}
	if found, ok := r.ByState(c.Interp().State()); !ok || found != c {
		t.Errorf("ByState did not find c")
	}
	if _, ok := r.Get(b.ID); d.ID != b.ID || !ok {
		t.Errorf("d should reuse b's id %d, got %d", b.ID, d.ID)
	}
	if _, ok := r.Get(99); ok {
		t.Error("out of range id should not resolve")
	}
	if a.DisplayName() != "(unnamed)" {
		t.Errorf("DisplayName = %q", a.DisplayName())
	}
}

func TestRuntimeErrorsCountAndKeepSlot(t *testing.T) {
	r, buf := testRegistry(t, 2)
	slot := startSlot(t, r, "flaky.lua", `
calls = 0
function et_RunFrame(levelTime)
	calls = calls + 1
	error("frame " .. levelTime)
end
`)
	fn, ok := slot.Function("et_RunFrame")
	if !ok {
		t.Fatal("et_RunFrame missing")
	}
	for i := 1; i <= 3; i++ {
		if _, err := slot.Call(fn, "et_RunFrame", 0, lua.LNumber(i)); err == nil {
			t.Fatal("expected error")
		}
		if slot.Errors != i {
			t.Errorf("Errors = %d, want %d", slot.Errors, i)
		}
	}
	if got := slot.Interp().GetGlobalInt("calls", 0); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
	if !strings.Contains(buf.String(), "Lua API: et_RunFrame error running lua script: 'flaky.lua:5: frame 3'") {
		t.Errorf("log = %q", buf.String())
	}
	if r.Len() != 1 {
		t.Errorf("failing slot should stay loaded, Len = %d", r.Len())
	}
}

func TestUnloadLogsOnlyCleanModules(t *testing.T) {
	r, buf := testRegistry(t, 2)
	clean := startSlot(t, r, "clean.lua", `function et_Quit() quit = true end`)
	dirty := startSlot(t, r, "dirty.lua", `function et_Quit() error("cannot quit") end`)

	r.Unload(clean)
	wantClean := "Lua API: Lua module [clean.lua] [" + clean.Signature.String() + "] unloaded."
	if !strings.Contains(buf.String(), wantClean) {
		t.Errorf("missing %q in %q", wantClean, buf.String())
	}
	if clean.Running() {
		t.Error("unloaded slot should be stopped")
	}

	r.Unload(dirty)
	if strings.Contains(buf.String(), "[dirty.lua]") {
		t.Errorf("module that errored should not log a clean unload: %q", buf.String())
	}
	if dirty.Errors != 1 {
		t.Errorf("et_Quit failure should count, Errors = %d", dirty.Errors)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d", r.Len())
	}
}

func TestStartFailureClosesInterpreter(t *testing.T) {
	r, buf := testRegistry(t, 1)
	id, _ := r.Reserve()
	slot := NewSlot(id, "bad.lua", signature.Compute(nil), 0, r.Logger())
	err := slot.Start(interp.Options{}, compile(t, "bad.lua", `error("nope")`), nil)
	if !interp.IsKind(err, interp.KindRuntime) {
		t.Fatalf("Start = %v", err)
	}
	if slot.Running() || slot.Errors != 1 {
		t.Errorf("Running = %v, Errors = %d", slot.Running(), slot.Errors)
	}
	if !strings.Contains(buf.String(), "Lua API: Lua VM start failed (bad.lua)") {
		t.Errorf("log = %q", buf.String())
	}

	bindErr := errors.New("bind failed")
	other := NewSlot(id, "other.lua", signature.Compute(nil), 0, r.Logger())
	if err := other.Start(interp.Options{}, compile(t, "other.lua", ``), func(*Slot) error { return bindErr }); !errors.Is(err, bindErr) {
		t.Errorf("Start with failing binder = %v", err)
	}
}

func TestStatus(t *testing.T) {
	r, _ := testRegistry(t, 4)
	a := startSlot(t, r, "a.lua", `x = 1`)
	a.Name = "alpha"
	startSlot(t, r, "b.lua", `y = 2`)
	want := []Status{
		{ID: 0, Name: "alpha", Signature: signature.Compute([]byte(`x = 1`)).String(), File: "a.lua", Size: 5},
		{ID: 1, Name: "(unnamed)", Signature: signature.Compute([]byte(`y = 2`)).String(), File: "b.lua", Size: 5},
	}
	if diff := cmp.Diff(want, r.Status(), cmpopts.IgnoreFields(Status{}, "LoadedAt")); diff != "" {
		t.Errorf("Status() mismatch (-want +got):\n%s", diff)
	}
}
