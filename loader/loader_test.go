package loader

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/zond/etlua/host"
	"github.com/zond/etlua/interp"
	"github.com/zond/etlua/signature"
	"github.com/zond/etlua/vm"
	"github.com/zond/etlua/world"
)

type fixture struct {
	dir      string
	log      *bytes.Buffer
	registry *vm.Registry
	loader   *Loader
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	f := &fixture{
		dir: t.TempDir(),
		log: &bytes.Buffer{},
	}
	w := world.New(world.Options{BaseDir: f.dir, Console: &bytes.Buffer{}, Seed: 1})
	f.registry = vm.NewRegistry(capacity, log.New(f.log, "", 0))
	f.loader = New(f.registry, w, nil)
	t.Cleanup(f.registry.UnloadAll)
	return f
}

func (f *fixture) write(t *testing.T, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(f.dir, name), []byte(src), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestNormalize(t *testing.T) {
	long := strings.Repeat("x", 80)
	for _, tc := range []struct {
		in, want string
	}{
		{"mod", "mod.lua"},
		{"mod.lua", "mod.lua"},
		{"MOD.LUA", "MOD.LUA"},
		{"a/b.txt", "a/b.txt.lua"},
		{long, strings.Repeat("x", host.MaxQPath-1)},
	} {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLoad(t *testing.T) {
	f := newFixture(t, 4)
	src := "x = 1\n"
	f.write(t, "hello.lua", src)
	slot, err := f.loader.Load("hello")
	if err != nil {
		t.Fatal(err)
	}
	if slot.ID != 0 || slot.SourcePath != "hello.lua" || slot.Size != len(src) {
		t.Errorf("got slot %+v", slot)
	}
	if slot.Signature != signature.Compute([]byte(src)) {
		t.Errorf("got signature %v", slot.Signature)
	}
	if got, found := f.registry.Get(0); !found || got != slot {
		t.Errorf("slot not registered")
	}
	if !strings.Contains(f.log.String(), "Lua API: file 'hello.lua' loaded into Lua VM") {
		t.Errorf("got log %q", f.log)
	}
}

func TestLoadNotFound(t *testing.T) {
	f := newFixture(t, 4)
	_, err := f.loader.Load("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if !strings.Contains(f.log.String(), "Lua API: can not open file 'missing.lua'") {
		t.Errorf("got log %q", f.log)
	}
	if f.registry.Len() != 0 {
		t.Errorf("registry not empty")
	}
}

func TestLoadSizeLimit(t *testing.T) {
	f := newFixture(t, 4)
	exact := "--" + strings.Repeat("x", MaxFileSize-3) + "\n"
	f.write(t, "exact.lua", exact)
	f.write(t, "big.lua", exact+" ")
	if _, err := f.loader.Load("exact.lua"); err != nil {
		t.Errorf("loading exactly %d bytes: %v", MaxFileSize, err)
	}
	_, err := f.loader.Load("big.lua")
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("got %v, want ErrTooLarge", err)
	}
	if !strings.Contains(f.log.String(), "Lua API: ignoring file 'big.lua' (too big)") {
		t.Errorf("got log %q", f.log)
	}
}

func TestLoadACL(t *testing.T) {
	f := newFixture(t, 4)
	f.write(t, "a.lua", "a = 1")
	f.write(t, "b.lua", "b = 1")
	allowed := strings.ToLower(signature.Compute([]byte("a = 1")).String())
	f.loader.AllowList = func() string { return "  ," + allowed + "; " }
	if _, err := f.loader.Load("a"); err != nil {
		t.Errorf("allowed module refused: %v", err)
	}
	_, err := f.loader.Load("b")
	if !errors.Is(err, ErrACLDenied) {
		t.Fatalf("got %v, want ErrACLDenied", err)
	}
	lerr := &LoadError{}
	if !errors.As(err, &lerr) || lerr.Signature != signature.Compute([]byte("b = 1")).String() {
		t.Errorf("got %+v", lerr)
	}
	if !strings.Contains(f.log.String(), "disallowed by ACL") {
		t.Errorf("got log %q", f.log)
	}
}

func TestLoadSyntaxErrorReleasesSlot(t *testing.T) {
	f := newFixture(t, 4)
	f.write(t, "broken.lua", "function (")
	f.write(t, "good.lua", "ok = true")
	_, err := f.loader.Load("broken")
	if !errors.Is(err, ErrCompile) {
		t.Fatalf("got %v, want ErrCompile", err)
	}
	if !strings.Contains(f.log.String(), "Lua API: syntax error during pre-compilation:") {
		t.Errorf("got log %q", f.log)
	}
	slot, err := f.loader.Load("good")
	if err != nil {
		t.Fatal(err)
	}
	if slot.ID != 0 {
		t.Errorf("got id %d, want the released id 0", slot.ID)
	}
}

func TestLoadRuntimeError(t *testing.T) {
	f := newFixture(t, 4)
	f.write(t, "fail.lua", "error('boom')")
	_, err := f.loader.Load("fail")
	if !errors.Is(err, ErrRuntime) {
		t.Fatalf("got %v, want ErrRuntime", err)
	}
	if !strings.Contains(f.log.String(), "Lua API: Lua VM start failed (fail.lua)") {
		t.Errorf("got log %q", f.log)
	}
	if strings.Contains(f.log.String(), "unloaded") {
		t.Errorf("failed start logged an unload: %q", f.log)
	}
	if f.registry.Len() != 0 {
		t.Errorf("failed module registered")
	}
}

func TestLoadOutOfMemoryFailsLikeCompile(t *testing.T) {
	f := newFixture(t, 1)
	f.loader.Options.CallStackSize = 64
	f.write(t, "deep.lua", "local function f() return 1 + f() end f()")
	_, err := f.loader.Load("deep")
	if !errors.Is(err, ErrCompile) || errors.Is(err, ErrRuntime) {
		t.Fatalf("got %v, want ErrCompile", err)
	}
	if !interp.IsKind(err, interp.KindMemory) {
		t.Errorf("got %v, want a memory error", err)
	}
	if !strings.Contains(f.log.String(), "Lua API: memory allocation error (deep.lua)") {
		t.Errorf("got log %q", f.log)
	}
	if f.registry.Len() != 0 {
		t.Errorf("failed module registered")
	}
	if _, err := f.registry.Reserve(); err != nil {
		t.Errorf("slot not released: %v", err)
	}
}

func TestPrepareRunsBeforeTopLevel(t *testing.T) {
	f := newFixture(t, 4)
	f.write(t, "named.lua", "x = 1")
	var prepared []string
	f.loader.Prepare = func(slot *vm.Slot) {
		prepared = append(prepared, slot.SourcePath)
	}
	if _, err := f.loader.Load("named"); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"named.lua"}, prepared); diff != "" {
		t.Errorf("-want +got:\n%s", diff)
	}
}

func TestDiscover(t *testing.T) {
	f := newFixture(t, 2)
	for _, name := range []string{"one.lua", "two.lua", "three.lua"} {
		f.write(t, name, "x = 1")
	}
	f.write(t, "bad.lua", "error('no')")
	loaded, skipped := f.loader.Discover("bad one, two;three")
	if loaded != 2 || skipped != 1 {
		t.Errorf("got loaded %d skipped %d, want 2 and 1", loaded, skipped)
	}
	var names []string
	for slot := range f.registry.Each() {
		names = append(names, slot.SourcePath)
	}
	if diff := cmp.Diff([]string{"one.lua", "two.lua"}, names); diff != "" {
		t.Errorf("-want +got:\n%s", diff)
	}
	if !strings.Contains(f.log.String(), "Lua API: too many lua files specified, only the first 2 have been loaded, 1 skipped") {
		t.Errorf("got log %q", f.log)
	}
}

func TestDiscoverEmpty(t *testing.T) {
	f := newFixture(t, 2)
	if loaded, skipped := f.loader.Discover(" ;, "); loaded != 0 || skipped != 0 {
		t.Errorf("got %d %d", loaded, skipped)
	}
	if !strings.Contains(f.log.String(), "Lua API: no Lua files set (use lua_modules cvar)") {
		t.Errorf("got log %q", f.log)
	}
}

func TestNoFreeSlots(t *testing.T) {
	f := newFixture(t, 1)
	f.write(t, "a.lua", "x = 1")
	if _, err := f.loader.Load("a"); err != nil {
		t.Fatal(err)
	}
	_, err := f.loader.Load("a")
	if !errors.Is(err, ErrNoFreeSlots) {
		t.Fatalf("got %v, want ErrNoFreeSlots", err)
	}
	if !strings.Contains(f.log.String(), `Lua API: no free VMs left to load module: "a"`) {
		t.Errorf("got log %q", f.log)
	}
}

func TestCompiledModulesAreReused(t *testing.T) {
	f := newFixture(t, 4)
	f.write(t, "a.lua", "x = 1")
	for i := 0; i < 3; i++ {
		if _, err := f.loader.Load("a"); err != nil {
			t.Fatal(err)
		}
	}
	stats := f.loader.CacheStats()
	if stats.Hits != 2 || stats.Added != 1 {
		t.Errorf("got %+v", stats)
	}
}

func TestOnLoadSeesEveryOutcome(t *testing.T) {
	f := newFixture(t, 4)
	f.write(t, "good.lua", "x = 1")
	type outcome struct {
		File   string
		Loaded bool
		Failed bool
	}
	got := []outcome{}
	f.loader.OnLoad = func(file string, slot *vm.Slot, err error) {
		got = append(got, outcome{File: file, Loaded: slot != nil, Failed: err != nil})
	}
	f.loader.Discover("good missing")
	want := []outcome{{File: "good.lua", Loaded: true}, {File: "missing.lua", Failed: true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("-want +got:\n%s", diff)
	}
}
