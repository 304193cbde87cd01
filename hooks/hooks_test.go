package hooks

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zond/etlua/interp"
	"github.com/zond/etlua/signature"
	"github.com/zond/etlua/vm"

	lua "github.com/yuin/gopher-lua"
)

type fixture struct {
	registry   *vm.Registry
	dispatcher *Dispatcher
	log        *bytes.Buffer
}

func newFixture(t *testing.T, sources ...string) *fixture {
	t.Helper()
	f := &fixture{log: &bytes.Buffer{}}
	f.registry = vm.NewRegistry(vm.DefaultCapacity, log.New(f.log, "", 0))
	f.dispatcher = NewDispatcher(f.registry)
	for i, src := range sources {
		name := fmt.Sprintf("mod%d.lua", i)
		proto, err := interp.Compile(name, []byte(src))
		if err != nil {
			t.Fatal(err)
		}
		id, err := f.registry.Reserve()
		if err != nil {
			t.Fatal(err)
		}
		slot := vm.NewSlot(id, name, signature.Compute([]byte(src)), len(src), f.registry.Logger())
		if err := slot.Start(interp.Options{}, proto, nil); err != nil {
			t.Fatal(err)
		}
		if err := f.registry.Occupy(slot); err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(f.registry.UnloadAll)
	return f
}

func (f *fixture) global(t *testing.T, id int, name string) int {
	t.Helper()
	slot, ok := f.registry.Get(id)
	if !ok {
		t.Fatalf("no slot %d", id)
	}
	return slot.Interp().GetGlobalInt(name, -1)
}

func vetoModule(ret string) string {
	return fmt.Sprintf(`
calls = 0
function et_ClientCommand(clientNum, command)
	calls = calls + 1
	return %s
end
`, ret)
}

func TestVetoStopsAtFirstSentinel(t *testing.T) {
	f := newFixture(t,
		vetoModule("0"),
		vetoModule("nil"),
		vetoModule("1"),
		vetoModule("1"),
		vetoModule("0"),
	)
	res := f.dispatcher.Dispatch(ClientCommand, intsAndString(3, "kill")...)
	if diff := cmp.Diff(Result{Kind: Blocked, Slot: 2}, res); diff != "" {
		t.Errorf("Dispatch() mismatch (-want +got):\n%s", diff)
	}
	var calls []int
	for id := 0; id < 5; id++ {
		calls = append(calls, f.global(t, id, "calls"))
	}
	if diff := cmp.Diff([]int{1, 1, 1, 0, 0}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestVetoOrderChangesSkippedSlots(t *testing.T) {
	f := newFixture(t,
		vetoModule("1"),
		vetoModule("0"),
		vetoModule("1"),
	)
	if !f.dispatcher.ClientCommand(0, "say") {
		t.Fatal("should be blocked")
	}
	for id, want := range []int{1, 0, 0} {
		if got := f.global(t, id, "calls"); got != want {
			t.Errorf("slot %d calls = %d, want %d", id, got, want)
		}
	}
}

func TestVetoQualification(t *testing.T) {
	for _, tc := range []struct {
		ret  string
		want bool
	}{
		{ret: "1", want: true},
		{ret: "1.0", want: true},
		{ret: `"1"`, want: true},
		{ret: `" 1 "`, want: true},
		{ret: "1.5", want: false},
		{ret: "2", want: false},
		{ret: "true", want: false},
		{ret: `"yes"`, want: false},
		{ret: "{}", want: false},
	} {
		f := newFixture(t, vetoModule(tc.ret))
		if got := f.dispatcher.ClientCommand(0, "x"); got != tc.want {
			t.Errorf("return %s: blocked = %v, want %v", tc.ret, got, tc.want)
		}
	}
}

func TestUpgradeSkillSentinel(t *testing.T) {
	f := newFixture(t, `function et_UpgradeSkill(clientNum, skill) return 1 end`)
	if f.dispatcher.UpgradeSkill(0, 2) {
		t.Error("1 must not veto a skill upgrade")
	}
	g := newFixture(t, `function et_UpgradeSkill(clientNum, skill) return -1 end`)
	if !g.dispatcher.UpgradeSkill(0, 2) {
		t.Error("-1 should veto a skill upgrade")
	}
	h := newFixture(t, `function et_SetPlayerSkill(clientNum, skill, level) return -1 end`)
	if h.dispatcher.SetPlayerSkill(0, 2, 3) {
		t.Error("-1 must not veto SetPlayerSkill")
	}
}

func TestClientConnectFirstRejectionWins(t *testing.T) {
	f := newFixture(t,
		`function et_ClientConnect(clientNum, firstTime, isBot) return "banned by A" end`,
		`calls = 0
function et_ClientConnect(clientNum, firstTime, isBot)
	calls = calls + 1
	return "banned by B"
end`,
	)
	reason, rejected := f.dispatcher.ClientConnect(5, true, false)
	if !rejected || reason != "banned by A" {
		t.Errorf("ClientConnect = %q, %v", reason, rejected)
	}
	if got := f.global(t, 1, "calls"); got != 0 {
		t.Errorf("B was called %d times", got)
	}
}

func TestClientConnectValues(t *testing.T) {
	f := newFixture(t,
		`function et_ClientConnect() return nil end`,
		`function et_ClientConnect() return false end`,
		`function et_ClientConnect() return 42 end`,
	)
	res := f.dispatcher.Dispatch(ClientConnect, ints(1, 1, 0)...)
	if diff := cmp.Diff(Result{Kind: Value, Value: "42", Slot: 2}, res); diff != "" {
		t.Errorf("Dispatch() mismatch (-want +got):\n%s", diff)
	}
}

func TestClientConnectReasonTruncated(t *testing.T) {
	src := fmt.Sprintf(`function et_ClientConnect() return "%s" end`, strings.Repeat("x", 5000))
	f := newFixture(t, src)
	reason, rejected := f.dispatcher.ClientConnect(0, false, false)
	if !rejected || len(reason) != 1023 {
		t.Errorf("reason length = %d, rejected = %v", len(reason), rejected)
	}
}

func TestErroringSlotKeepsReceivingHooks(t *testing.T) {
	f := newFixture(t, `
calls = 0
function et_RunFrame(levelTime)
	calls = calls + 1
	error("broken frame")
end
`, `
frames = 0
function et_RunFrame(levelTime) frames = frames + 1 end
`)
	for i := 1; i <= 3; i++ {
		f.dispatcher.RunFrame(i * 50)
		slot, _ := f.registry.Get(0)
		if slot.Errors != i {
			t.Errorf("after frame %d Errors = %d", i, slot.Errors)
		}
	}
	if got := f.global(t, 0, "calls"); got != 3 {
		t.Errorf("failing slot calls = %d, want 3", got)
	}
	if got := f.global(t, 1, "frames"); got != 3 {
		t.Errorf("healthy slot frames = %d, want 3", got)
	}
	if got := strings.Count(f.log.String(), "Lua API: et_RunFrame error running lua script"); got != 3 {
		t.Errorf("logged %d errors, want 3", got)
	}
}

func TestErrorDoesNotCountAsVeto(t *testing.T) {
	f := newFixture(t,
		`function et_Damage() error("nope") end`,
		`function et_Damage(target, attacker, damage, dflags, mod) if mod == 7 then return 1 end end`,
	)
	if !f.dispatcher.Damage(1, 2, 50, 0, 7) {
		t.Error("second module should veto")
	}
	if f.dispatcher.Damage(1, 2, 50, 0, 8) {
		t.Error("nothing should veto")
	}
}

func TestNotificationArguments(t *testing.T) {
	f := newFixture(t, `
function et_InitGame(levelTime, randomSeed, restart) seen = levelTime + randomSeed + restart end
function et_ClientSpawn(c, revived, teamChange, restore) spawn = c * 1000 + revived * 100 + teamChange * 10 + restore end
function et_ChatMessage(c, mode, chatType, msg) if msg == "blockme" then return 1 end end
`)
	f.dispatcher.InitGame(1000, 20, true)
	if got := f.global(t, 0, "seen"); got != 1021 {
		t.Errorf("seen = %d", got)
	}
	f.dispatcher.ClientSpawn(3, true, false, true)
	if got := f.global(t, 0, "spawn"); got != 3101 {
		t.Errorf("spawn = %d", got)
	}
	if !f.dispatcher.ChatMessage(1, 0, 0, "blockme") || f.dispatcher.ChatMessage(1, 0, 0, "fine") {
		t.Error("chat veto misbehaves")
	}
}

func TestDeliver(t *testing.T) {
	f := newFixture(t,
		`x = 1`,
		`function et_IPCReceive(from, msg) got_from = from; got_msg = msg; return 0 end`,
		`function et_IPCReceive(from, msg) error("refused") end`,
	)
	sender, _ := f.registry.Get(0)
	if !Deliver(f.registry, sender, 1, "hello") {
		t.Error("delivery to 1 should succeed")
	}
	receiver, _ := f.registry.Get(1)
	if receiver.Interp().GetGlobalInt("got_from", -1) != 0 || receiver.Interp().GetGlobalString("got_msg", "") != "hello" {
		t.Errorf("receiver saw from=%d msg=%q", receiver.Interp().GetGlobalInt("got_from", -1), receiver.Interp().GetGlobalString("got_msg", ""))
	}
	if Deliver(f.registry, receiver, 0, "x") {
		t.Error("slot 0 has no et_IPCReceive")
	}
	if Deliver(f.registry, sender, 2, "x") {
		t.Error("erroring receiver should report failure")
	}
	if Deliver(f.registry, sender, 2, "x") {
		t.Error("receiver with errors should be refused")
	}
	if failing, _ := f.registry.Get(2); failing.Errors != 1 {
		t.Errorf("refused delivery should not call the receiver, Errors = %d", failing.Errors)
	}
	if Deliver(f.registry, sender, 63, "x") || Deliver(f.registry, sender, -1, "x") {
		t.Error("empty or invalid targets should fail")
	}
}

func TestCatalogue(t *testing.T) {
	seen := map[string]bool{}
	for _, h := range All() {
		if seen[h.Function] {
			t.Errorf("duplicate hook %s", h.Function)
		}
		seen[h.Function] = true
		if h.Function != "et_"+h.Name {
			t.Errorf("hook %s calls %s", h.Name, h.Function)
		}
		if h.Contract == ContractVeto && h.Sentinel == 0 {
			t.Errorf("veto hook %s has no sentinel", h.Name)
		}
	}
	if len(seen) != 24 {
		t.Errorf("catalogue has %d hooks", len(seen))
	}
}

func intsAndString(n int, s string) []lua.LValue {
	return []lua.LValue{lua.LNumber(n), lua.LString(s)}
}
