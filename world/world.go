// Package world is an in-memory game world implementing host.Host.
//
// It keeps just enough state for scripts to observe and mutate: entities,
// clients, cvars, configstrings, a sandboxed file area and a clock. Like the
// engine it stands in for, it is owned by the main loop and not safe for
// concurrent use.
package world

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/zond/etlua/host"
)

const (
	tempEntityLifetime = 250
	maxShaderRemaps    = 128
)

type Options struct {
	// BaseDir is the root of everything the FileSystem methods can reach.
	BaseDir string
	// Console receives G_Print style output. Defaults to os.Stdout.
	Console io.Writer
	// GameLog receives G_LogPrint output. Nil discards it.
	GameLog io.Writer
	Seed    int64
}

type Cvar struct {
	Name    string
	Value   string
	Archive bool
}

type World struct {
	opts          Options
	console       *log.Logger
	started       time.Time
	levelTime     int
	rng           *rand.Rand
	cvars         map[string]*Cvar
	configstrings [host.MaxConfigstrings]string
	entities      [host.MaxGEntities]host.Entity
	clients       [host.MaxClients]host.Client
	numEntities   int
	files         map[int]*openFile
	nextFD        int
	sounds        []string
	models        []string
	args          []string
	remaps        []shaderRemap

	// OnCvarSet is called after every cvar change.
	OnCvarSet func(cvar Cvar)
	// OnConsoleCommand receives trap_SendConsoleCommand text. Without it
	// commands are only echoed to the console.
	OnConsoleCommand func(when int, text string)
	// OnServerCommand receives trap_SendServerCommand traffic.
	OnServerCommand func(clientNum int, text string)
	// OnLogPrint sees every game log line, without the timestamp.
	OnLogPrint func(text string)
	// OnDamage replaces the plain health arithmetic of DamageEntity.
	OnDamage func(target, attacker, damage, dflags, mod int)
}

type shaderRemap struct {
	oldShader  string
	newShader  string
	timeOffset float32
}

var _ host.Host = (*World)(nil)

func New(opts Options) *World {
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	w := &World{
		opts:        opts,
		console:     log.New(opts.Console, "", 0),
		started:     time.Now(),
		rng:         rand.New(rand.NewSource(opts.Seed)),
		cvars:       map[string]*Cvar{},
		files:       map[int]*openFile{},
		nextFD:      1,
		sounds:      []string{""},
		models:      []string{""},
		numEntities: host.MaxClients,
	}
	for i := range w.entities {
		w.entities[i].Number = i
	}
	for i := range w.clients {
		w.clients[i].Num = i
		w.clients[i].PS.ClientNum = i
	}
	return w
}

// CloseFiles releases every file handle scripts left open.
func (w *World) CloseFiles() error {
	for fd := range w.files {
		if err := w.Close(fd); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) Print(text string) {
	fmt.Fprint(w.opts.Console, text)
}

func (w *World) LogPrint(text string) {
	if w.opts.GameLog != nil {
		secs := w.levelTime / 1000
		fmt.Fprintf(w.opts.GameLog, "%3d:%02d %s", secs/60, secs%60, text)
	}
	if w.OnLogPrint != nil {
		w.OnLogPrint(text)
	}
}

func (w *World) CvarGet(name string) string {
	if cvar, found := w.cvars[strings.ToLower(name)]; found {
		return cvar.Value
	}
	return ""
}

func (w *World) CvarSet(name, value string) {
	w.setCvar(name, value, false)
}

// CvarSetArchive sets a cvar and flags it for persistence.
func (w *World) CvarSetArchive(name, value string) {
	w.setCvar(name, value, true)
}

func (w *World) setCvar(name, value string, archive bool) {
	key := strings.ToLower(name)
	cvar, found := w.cvars[key]
	if !found {
		cvar = &Cvar{Name: name}
		w.cvars[key] = cvar
	}
	cvar.Value = host.Truncate(value, host.MaxCvarValueString)
	cvar.Archive = cvar.Archive || archive
	if w.OnCvarSet != nil {
		w.OnCvarSet(*cvar)
	}
}

func (w *World) LookupCvar(name string) (Cvar, bool) {
	if cvar, found := w.cvars[strings.ToLower(name)]; found {
		return *cvar, true
	}
	return Cvar{}, false
}

// Cvars returns every cvar sorted by name.
func (w *World) Cvars() []Cvar {
	result := make([]Cvar, 0, len(w.cvars))
	for _, cvar := range w.cvars {
		result = append(result, *cvar)
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name) < strings.ToLower(result[j].Name)
	})
	return result
}

func (w *World) SendConsoleCommand(when int, text string) {
	if w.OnConsoleCommand != nil {
		w.OnConsoleCommand(when, text)
		return
	}
	w.console.Printf("console command: %s", strings.TrimRight(text, "\n"))
}

func (w *World) SendServerCommand(clientNum int, text string) {
	if clientNum < -1 || clientNum >= host.MaxClients {
		return
	}
	if w.OnServerCommand != nil {
		w.OnServerCommand(clientNum, text)
	}
}

// SetArgs installs the tokens of the command being handled.
func (w *World) SetArgs(args []string) {
	w.args = args
}

func (w *World) Args() []string {
	return w.args
}

func (w *World) Configstring(index int) string {
	if index < 0 || index >= host.MaxConfigstrings {
		return ""
	}
	return w.configstrings[index]
}

func (w *World) SetConfigstring(index int, value string) {
	if index < 0 || index >= host.MaxConfigstrings {
		return
	}
	w.configstrings[index] = value
}

func (w *World) index(list *[]string, name string, max, base int) int {
	if name == "" {
		return 0
	}
	for i, existing := range *list {
		if existing == name {
			return i
		}
	}
	if len(*list) >= max {
		w.console.Printf("index overflow for %q", name)
		return 0
	}
	*list = append(*list, name)
	idx := len(*list) - 1
	w.SetConfigstring(base+idx, name)
	return idx
}

func (w *World) SoundIndex(name string) int {
	return w.index(&w.sounds, name, host.MaxSounds, host.CSSounds)
}

func (w *World) ModelIndex(name string) int {
	return w.index(&w.models, name, host.MaxModels, host.CSModels)
}

func (w *World) GlobalSound(name string) {
	idx := w.SoundIndex(name)
	if ent := w.TempEntity(host.Vec3{}, host.EVGlobalSound); ent != nil {
		ent.EventParm = idx
		ent.SvFlags |= host.SVFBroadcast
	}
}

func (w *World) RemapShader(oldShader, newShader string, timeOffset float32) {
	for i := range w.remaps {
		if strings.EqualFold(w.remaps[i].oldShader, oldShader) {
			w.remaps[i].newShader = newShader
			w.remaps[i].timeOffset = timeOffset
			return
		}
	}
	if len(w.remaps) >= maxShaderRemaps {
		return
	}
	w.remaps = append(w.remaps, shaderRemap{
		oldShader:  oldShader,
		newShader:  newShader,
		timeOffset: timeOffset,
	})
}

func (w *World) ResetRemappedShaders() {
	w.remaps = nil
}

func (w *World) ShaderState() string {
	buf := &strings.Builder{}
	for _, remap := range w.remaps {
		entry := fmt.Sprintf("%s=%s:%5.2f@", remap.oldShader, remap.newShader, remap.timeOffset)
		if buf.Len()+len(entry) >= host.MaxStringChars {
			w.console.Printf("ShaderState: too many remaps")
			break
		}
		buf.WriteString(entry)
	}
	return buf.String()
}

func (w *World) Milliseconds() int {
	return int(time.Since(w.started) / time.Millisecond)
}

func (w *World) LevelTime() int {
	return w.levelTime
}

// RunFrame advances level time, expires temporary entities and lifts timed
// mutes.
func (w *World) RunFrame(levelTime int) {
	w.levelTime = levelTime
	for i := range w.clients {
		sess := &w.clients[i].Sess
		if sess.Muted && sess.MutedUntil > 0 && sess.MutedUntil <= levelTime {
			sess.Muted = false
			sess.MutedUntil = 0
		}
	}
	for i := host.FirstNonClient; i < w.numEntities; i++ {
		ent := &w.entities[i]
		if ent.InUse && ent.FreeAt > 0 && ent.FreeAt <= levelTime {
			w.FreeEntity(ent)
		}
	}
}

func (w *World) Float() float64 {
	return w.rng.Float64()
}

func (w *World) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return w.rng.Intn(n)
}
