package world

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/zond/etlua/host"
)

func testWorld(t *testing.T) (*World, *bytes.Buffer) {
	t.Helper()
	console := &bytes.Buffer{}
	w := New(Options{BaseDir: t.TempDir(), Console: console, Seed: 1})
	t.Cleanup(func() {
		if err := w.CloseFiles(); err != nil {
			t.Error(err)
		}
	})
	return w, console
}

func TestSpawnAndFree(t *testing.T) {
	w, _ := testWorld(t)
	before := w.EntitiesFree()
	ent := w.Spawn()
	if ent == nil {
		t.Fatal("Spawn returned nil")
	}
	if ent.Number != host.FirstNonClient {
		t.Errorf("first spawn = %d, want %d", ent.Number, host.FirstNonClient)
	}
	second := w.Spawn()
	w.FreeEntity(ent)
	if ent.InUse || ent.Number != host.FirstNonClient {
		t.Errorf("freed entity = %+v", ent)
	}
	if got := w.EntitiesFree(); got != before+1 {
		t.Errorf("EntitiesFree = %d, want %d", got, before+1)
	}
	if again := w.Spawn(); again.Number != host.FirstNonClient {
		t.Errorf("spawn should reuse slot %d, got %d", host.FirstNonClient, again.Number)
	}
	if second.Number != host.FirstNonClient+1 {
		t.Errorf("second spawn = %d", second.Number)
	}
	if w.Entity(-1) != nil || w.Entity(host.MaxGEntities) != nil {
		t.Error("out of range entities should be nil")
	}
}

func TestSpawnExhaustion(t *testing.T) {
	w, console := testWorld(t)
	count := 0
	for w.Spawn() != nil {
		count++
	}
	if want := host.EntityNumWorld - host.FirstNonClient; count != want {
		t.Errorf("spawned %d, want %d", count, want)
	}
	if !strings.Contains(console.String(), "no free entities") {
		t.Errorf("console = %q", console.String())
	}
}

func TestTempEntityExpires(t *testing.T) {
	w, _ := testWorld(t)
	ent := w.TempEntity(host.Vec3{1, 2, 3}, 7)
	if !ent.InUse || !ent.Linked || ent.Event != 7 {
		t.Fatalf("temp entity = %+v", ent)
	}
	w.RunFrame(100)
	if !ent.InUse {
		t.Error("temp entity freed too early")
	}
	w.RunFrame(tempEntityLifetime)
	if ent.InUse {
		t.Error("temp entity should be freed")
	}
}

func TestClients(t *testing.T) {
	w, _ := testWorld(t)
	client := w.Connect(3, `\name\^2Alice\rate\5000`, false)
	if client.Netname != "^2Alice" {
		t.Errorf("Netname = %q", client.Netname)
	}
	if ent := w.Entity(3); ent.Client != client || !ent.InUse {
		t.Errorf("player entity not wired: %+v", ent)
	}
	if w.NumConnected() != 1 {
		t.Errorf("NumConnected = %d", w.NumConnected())
	}
	w.AddSkillPoints(3, host.SkillFirstAid, 55)
	if got := client.Sess.Skill[host.SkillFirstAid]; got != 2 {
		t.Errorf("skill level = %d, want 2", got)
	}
	w.DropClient(3, "bye", 0)
	if client.Connected || w.Entity(3).InUse {
		t.Error("dropped client should be gone")
	}
}

func TestSay(t *testing.T) {
	w, _ := testWorld(t)
	w.Connect(0, `\name\A`, false).Sess.Team = host.TeamAxis
	w.Connect(1, `\name\B`, false).Sess.Team = host.TeamAllies
	w.Connect(2, `\name\C`, false).Sess.Team = host.TeamAxis
	got := map[int][]string{}
	w.OnServerCommand = func(clientNum int, text string) {
		got[clientNum] = append(got[clientNum], text)
	}
	w.Say(0, host.SayTeam, "hold")
	want := map[int][]string{
		0: {`chat "A: hold"`},
		2: {`chat "A: hold"`},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("server commands mismatch (-want +got):\n%s", diff)
	}
}

func TestCvars(t *testing.T) {
	w, _ := testWorld(t)
	var changes []Cvar
	w.OnCvarSet = func(c Cvar) {
		changes = append(changes, c)
	}
	w.CvarSet("g_gravity", "800")
	w.CvarSetArchive("Lua_Modules", "a.lua")
	if got := w.CvarGet("G_GRAVITY"); got != "800" {
		t.Errorf("CvarGet = %q", got)
	}
	w.CvarSet("g_long", strings.Repeat("x", 1000))
	if got := len(w.CvarGet("g_long")); got != host.MaxCvarValueString-1 {
		t.Errorf("cvar value length = %d", got)
	}
	want := []Cvar{
		{Name: "g_gravity", Value: "800"},
		{Name: "Lua_Modules", Value: "a.lua", Archive: true},
	}
	if diff := cmp.Diff(want, changes[:2]); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}
}

func TestFiles(t *testing.T) {
	w, _ := testWorld(t)
	fd, length, err := w.Open("data/out.txt", host.FSWrite)
	if err != nil {
		t.Fatal(err)
	}
	if length != 0 {
		t.Errorf("write length = %d", length)
	}
	if _, err := w.Write(fd, []byte("hello world")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(fd); err != nil {
		t.Fatal(err)
	}
	if err := w.Rename("data/out.txt", "data/in.txt"); err != nil {
		t.Fatal(err)
	}
	fd, length, err = w.Open("data/in.txt", host.FSRead)
	if err != nil {
		t.Fatal(err)
	}
	if length != 11 {
		t.Errorf("length = %d, want 11", length)
	}
	b, err := w.Read(fd, length)
	if err != nil || string(b) != "hello world" {
		t.Errorf("Read = %q, %v", b, err)
	}
	if _, err := w.Write(fd, []byte("x")); !errors.Is(err, ErrBadHandle) {
		t.Errorf("writing a read handle: %v", err)
	}
	if err := w.Close(fd); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(fd); !errors.Is(err, ErrBadHandle) {
		t.Errorf("double close: %v", err)
	}
	if _, _, err := w.Open("missing.txt", host.FSRead); err == nil {
		t.Error("opening a missing file should fail")
	}
	names, err := w.List("data", "txt")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"in.txt"}, names); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestFilesStayInsideBase(t *testing.T) {
	w, _ := testWorld(t)
	outside := filepath.Join(filepath.Dir(w.opts.BaseDir), "escaped.txt")
	fd, _, err := w.Open("../escaped.txt", host.FSWrite)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(fd); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(outside); !os.IsNotExist(err) {
		t.Errorf("file escaped the base directory: %v", err)
	}
	if _, err := os.Stat(filepath.Join(w.opts.BaseDir, "escaped.txt")); err != nil {
		t.Errorf("file should land inside base: %v", err)
	}
}

func TestTrace(t *testing.T) {
	w, _ := testWorld(t)
	wall := w.Spawn()
	wall.Contents = host.ContentsSolid
	wall.Origin = host.Vec3{100, 0, 0}
	wall.Mins = host.Vec3{-10, -10, -10}
	wall.Maxs = host.Vec3{10, 10, 10}
	w.LinkEntity(wall)

	tr := w.Trace(host.Vec3{0, 0, 0}, host.Vec3{}, host.Vec3{}, host.Vec3{200, 0, 0}, -1, host.MaskSolid)
	want := host.TraceResult{
		Fraction:  0.45,
		EndPos:    host.Vec3{90, 0, 0},
		Contents:  host.ContentsSolid,
		EntityNum: wall.Number,
	}
	if diff := cmp.Diff(want, tr); diff != "" {
		t.Errorf("Trace mismatch (-want +got):\n%s", diff)
	}

	tr = w.Trace(host.Vec3{0, 0, 0}, host.Vec3{}, host.Vec3{}, host.Vec3{200, 0, 0}, wall.Number, host.MaskSolid)
	if tr.Fraction != 1 || tr.EntityNum != host.EntityNumNone {
		t.Errorf("passEnt should be ignored: %+v", tr)
	}
	tr = w.Trace(host.Vec3{0, 0, 0}, host.Vec3{}, host.Vec3{}, host.Vec3{200, 0, 0}, -1, host.MaskWater)
	if tr.Fraction != 1 {
		t.Errorf("mask should filter contents: %+v", tr)
	}
	tr = w.Trace(host.Vec3{100, 0, 0}, host.Vec3{}, host.Vec3{}, host.Vec3{105, 0, 0}, -1, host.MaskSolid)
	if !tr.StartSolid || !tr.AllSolid {
		t.Errorf("trace inside the box: %+v", tr)
	}
	if got := w.PointContents(host.Vec3{95, 5, 5}, -1); got != host.ContentsSolid {
		t.Errorf("PointContents = %d", got)
	}
	w.UnlinkEntity(wall)
	if got := w.PointContents(host.Vec3{95, 5, 5}, -1); got != 0 {
		t.Errorf("unlinked PointContents = %d", got)
	}
}

func TestIndexes(t *testing.T) {
	w, _ := testWorld(t)
	a := w.SoundIndex("sound/a.wav")
	b := w.SoundIndex("sound/b.wav")
	if a != 1 || b != 2 || w.SoundIndex("sound/a.wav") != 1 {
		t.Errorf("sound indexes = %d, %d", a, b)
	}
	if got := w.Configstring(host.CSSounds + 1); got != "sound/a.wav" {
		t.Errorf("configstring = %q", got)
	}
	if w.ModelIndex("") != 0 {
		t.Error("empty model should be index 0")
	}
}

func TestLogPrint(t *testing.T) {
	logBuf := &bytes.Buffer{}
	w := New(Options{Console: &bytes.Buffer{}, GameLog: logBuf})
	w.RunFrame(125000)
	w.LogPrint("Kill: 1 2 3\n")
	if got := logBuf.String(); got != "  2:05 Kill: 1 2 3\n" {
		t.Errorf("LogPrint = %q", got)
	}
}

func TestReadStopsAtEndOfFile(t *testing.T) {
	w, _ := testWorld(t)
	if err := os.WriteFile(filepath.Join(w.opts.BaseDir, "short.txt"), []byte("abc"), 0600); err != nil {
		t.Fatal(err)
	}
	fd, _, err := w.Open("short.txt", host.FSRead)
	if err != nil {
		t.Fatal(err)
	}
	if b, err := w.Read(fd, -5); err != nil || len(b) != 0 {
		t.Errorf("negative read = %q, %v", b, err)
	}
	if b, err := w.Read(fd, 1<<40); err != nil || string(b) != "abc" {
		t.Errorf("huge read = %q, %v", b, err)
	}
	if b, err := w.Read(fd, 1<<40); err != nil || len(b) != 0 {
		t.Errorf("read past end = %q, %v", b, err)
	}
}

func TestShaderRemaps(t *testing.T) {
	w, _ := testWorld(t)
	w.RemapShader("a", "b", 1)
	w.RemapShader("c", "d", 2)
	w.RemapShader("A", "e", 3)
	if got, want := w.ShaderState(), "a=e: 3.00@c=d: 2.00@"; got != want {
		t.Errorf("ShaderState = %q, want %q", got, want)
	}
	w.ResetRemappedShaders()
	if got := w.ShaderState(); got != "" {
		t.Errorf("ShaderState after reset = %q", got)
	}
}

func TestSkillPoints(t *testing.T) {
	w, _ := testWorld(t)
	client := w.Connect(1, `\name\Vet`, false)
	w.SetSkillPoints(1, host.SkillSignals, 95)
	w.LoseSkillPoints(1, host.SkillSignals, 200)
	if got := client.Sess.SkillPoints[host.SkillSignals]; got != 0 {
		t.Errorf("points = %v, want 0", got)
	}
	if got := client.Sess.Skill[host.SkillSignals]; got != 3 {
		t.Errorf("level = %d, want 3", got)
	}
	w.SetSkillPoints(1, host.SkillCount, 95)
	w.LoseSkillPoints(2, host.SkillSignals, 1)
}

func TestDamageEntity(t *testing.T) {
	w, _ := testWorld(t)
	w.Connect(1, `\name\Target`, false)
	w.DamageEntity(1, 2, 2, 40, 0, host.ModKnife)
	if got := w.Entity(1).Health; got != 60 {
		t.Errorf("health = %d, want 60", got)
	}
	calls := []int{}
	w.OnDamage = func(target, attacker, damage, dflags, mod int) {
		calls = append(calls, target, attacker, damage, dflags, mod)
	}
	w.DamageEntity(1, 3, 2, 10, 4, host.ModLuger)
	w.DamageEntity(host.MaxGEntities, 3, 2, 10, 4, host.ModLuger)
	if diff := cmp.Diff([]int{1, 2, 10, 4, host.ModLuger}, calls); diff != "" {
		t.Errorf("OnDamage mismatch (-want +got):\n%s", diff)
	}
	w.GibEntity(1)
	if ent := w.Entity(1); ent.Health != gibHealth || ent.EFlags&host.EFDead == 0 || ent.Contents != 0 {
		t.Errorf("gibbed player: %+v", ent)
	}
}
