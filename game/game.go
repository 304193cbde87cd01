// Package game runs the scripting host. It owns the world, the module
// registry and the frame loop, and executes operator commands on the loop.
package game

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gertd/go-pluralize"
	"github.com/pkg/errors"
	"github.com/zond/etlua"
	"github.com/zond/etlua/api"
	"github.com/zond/etlua/hooks"
	"github.com/zond/etlua/interp"
	"github.com/zond/etlua/loader"
	"github.com/zond/etlua/storage"
	"github.com/zond/etlua/structs"
	"github.com/zond/etlua/vm"
	"github.com/zond/etlua/world"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ModulesCvar        = "lua_modules"
	AllowedModulesCvar = "lua_allowedmodules"
	RconPasswordCvar   = "rconpassword"

	// Commands modules may queue between two drains.
	maxPendingCommands = 256
	// Drain rounds before queued commands are dropped.
	maxDrainRounds = 16
)

var (
	ErrNotMainLoop = errors.New("not on the main loop")
	ErrNotRunning  = errors.New("game loop not running")
)

type Game struct {
	ctx         context.Context
	cfg         *structs.Config
	storage     *storage.Storage
	world       *world.World
	registry    *vm.Registry
	loader      *loader.Loader
	hooks       *hooks.Dispatcher
	env         *api.Env
	switchboard *Switchboard
	console     *Fanout
	logger      *log.Logger
	gameLog     io.WriteCloser
	plural      *pluralize.Client

	loginRateLimiter *loginRateLimiter

	calls   chan func()
	stopped chan struct{}

	levelTime int
	frameMsec int
	seed      int
	pending   []string
	printing  bool
}

// New builds a game from cfg. Everything printed to the server console goes
// to stdout, os.Stdout if nil, and to the operators following the console.
func New(ctx context.Context, cfg *structs.Config, s *storage.Storage, stdout io.Writer) (*Game, error) {
	if stdout == nil {
		stdout = os.Stdout
	}
	g := &Game{
		ctx:         ctx,
		cfg:         cfg,
		storage:     s,
		switchboard: NewSwitchboard(),
		console:     &Fanout{},
		plural:      pluralize.NewClient(),
		calls:       make(chan func()),
		stopped:     make(chan struct{}),
		frameMsec:   1000 / cfg.FPS,
		seed:        int(time.Now().UnixNano() & 0x7fffffff),
	}
	out := io.MultiWriter(stdout, g.console)
	g.logger = log.New(out, "", 0)
	opts := world.Options{
		BaseDir: cfg.Dir,
		Console: out,
	}
	if cfg.GameLog != "" {
		g.gameLog = &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, cfg.GameLog),
			MaxSize:    50,
			MaxBackups: 3,
		}
		opts.GameLog = g.gameLog
	}
	g.world = world.New(opts)
	g.world.OnLogPrint = g.logPrinted
	g.world.OnConsoleCommand = g.queueCommand
	g.world.OnDamage = g.damage

	g.registry = vm.NewRegistry(cfg.Capacity, g.logger)
	g.env = &api.Env{Host: g.world, Registry: g.registry, Logger: g.logger}
	g.hooks = hooks.NewDispatcher(g.registry)
	g.loader = loader.New(g.registry, g.world, g.env.Bind)
	g.loader.Options = interp.Options{StdLib: !cfg.Sandbox}
	g.loader.AllowList = func() string {
		return g.world.CvarGet(AllowedModulesCvar)
	}
	g.loader.Prepare = g.prepare
	g.loader.OnLoad = g.loaded

	if err := g.loadCvars(ctx); err != nil {
		return nil, err
	}
	g.world.OnCvarSet = g.cvarSet
	g.loginRateLimiter = newLoginRateLimiter(ctx)
	return g, nil
}

func (g *Game) World() *world.World {
	return g.world
}

func (g *Game) Registry() *vm.Registry {
	return g.registry
}

func (g *Game) Hooks() *hooks.Dispatcher {
	return g.hooks
}

func (g *Game) LevelTime() int {
	return g.levelTime
}

func (g *Game) loadCvars(ctx context.Context) error {
	stored, err := g.storage.LoadCvars(ctx)
	if err != nil {
		return err
	}
	for _, cvar := range stored {
		g.world.CvarSetArchive(cvar.Name, cvar.Value)
	}
	for _, pair := range g.cfg.StartupCvars() {
		g.world.CvarSet(pair[0], pair[1])
	}
	return nil
}

func (g *Game) cvarSet(cvar world.Cvar) {
	if !cvar.Archive {
		return
	}
	if err := g.storage.StoreCvar(g.ctx, cvar.Name, cvar.Value); err != nil {
		log.Printf("storing cvar %q: %v", cvar.Name, err)
	}
}

func (g *Game) logPrinted(text string) {
	if g.printing {
		return
	}
	g.printing = true
	defer func() {
		g.printing = false
	}()
	g.hooks.Print(text)
}

func (g *Game) prepare(slot *vm.Slot) {
	g.switchboard.Clear(slot.ID)
	slot.Console = g.switchboard.Writer(slot.ID)
}

func (g *Game) loaded(file string, slot *vm.Slot, err error) {
	if err != nil {
		refused := storage.AuditModuleRefused{File: file, Reason: err.Error()}
		lerr := &loader.LoadError{}
		if errors.As(err, &lerr) {
			refused.Signature = lerr.Signature
			refused.Reason = lerr.Kind.Error()
		}
		g.storage.Audit().Log(g.ctx, "MODULE_REFUSED", refused)
		return
	}
	g.storage.Audit().Log(g.ctx, "MODULE_LOAD", storage.AuditModuleLoad{
		Module: moduleRef(slot),
		Size:   slot.Size,
	})
	if err := g.storage.RecordModule(g.ctx, storage.Module{
		Signature: slot.Signature.String(),
		File:      slot.SourcePath,
		Name:      slot.Name,
		Size:      slot.Size,
	}); err != nil {
		log.Printf("recording module %q: %v", file, err)
	}
}

func moduleRef(slot *vm.Slot) storage.AuditModuleRef {
	return storage.AuditModuleRef{
		Slot:      slot.ID,
		File:      slot.SourcePath,
		Signature: slot.Signature.String(),
	}
}

func (g *Game) unload(slot *vm.Slot) {
	g.registry.Unload(slot)
	g.storage.Audit().Log(g.ctx, "MODULE_UNLOAD", storage.AuditModuleUnload{
		Module: moduleRef(slot),
		Errors: slot.Errors,
	})
	if slot.Name != "" {
		if err := g.storage.NameModule(g.ctx, slot.Signature.String(), slot.Name); err != nil {
			log.Printf("naming module %q: %v", slot.SourcePath, err)
		}
	}
}

func (g *Game) unloadAll() {
	for slot := range g.registry.Each() {
		g.unload(slot)
	}
}

// Discover loads the modules lua_modules names.
func (g *Game) Discover() (loaded, skipped int) {
	return g.loader.Discover(g.world.CvarGet(ModulesCvar))
}

// Init loads the modules and starts the level.
func (g *Game) Init(restart bool) {
	g.Discover()
	g.hooks.InitGame(g.levelTime, g.seed, restart)
	g.drain()
}

// Restart reloads every module without touching the level.
func (g *Game) Restart() {
	g.unloadAll()
	g.Discover()
}

func (g *Game) RunFrame() {
	g.levelTime += g.frameMsec
	g.world.RunFrame(g.levelTime)
	g.hooks.RunFrame(g.levelTime)
	g.drain()
}

// Shutdown ends the level and unloads every module. Unless restart is set
// the game log is closed too.
func (g *Game) Shutdown(restart bool) {
	g.hooks.ShutdownGame(restart)
	g.unloadAll()
	if err := g.world.CloseFiles(); err != nil {
		log.Printf("closing module files: %v", err)
	}
	if !restart && g.gameLog != nil {
		if err := g.gameLog.Close(); err != nil {
			log.Printf("closing game log: %v", err)
		}
	}
}

// MapRestart shuts the level down and starts it over.
func (g *Game) MapRestart() {
	g.Shutdown(true)
	g.levelTime = 0
	g.world.RunFrame(0)
	g.Init(true)
}

// Run owns the main loop until ctx is done: it starts the level, runs frames
// at the configured rate and executes what Do posts.
func (g *Game) Run(ctx context.Context) error {
	defer close(g.stopped)
	g.Init(false)
	ticker := time.NewTicker(time.Duration(g.frameMsec) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			g.Shutdown(false)
			return nil
		case <-ticker.C:
			g.RunFrame()
		case f := <-g.calls:
			f()
		}
	}
}

// Do runs f on the main loop and waits for it to finish. The context f gets
// is allowed to touch the world and the registry.
func (g *Game) Do(ctx context.Context, f func(ctx context.Context)) error {
	done := make(chan struct{})
	call := func() {
		defer close(done)
		f(etlua.MakeMainContext(ctx))
	}
	select {
	case g.calls <- call:
	case <-ctx.Done():
		return etlua.WithStack(ctx.Err())
	case <-g.stopped:
		return errors.WithStack(ErrNotRunning)
	}
	<-done
	return nil
}

func (g *Game) queueCommand(when int, text string) {
	for _, line := range splitCommands(text) {
		if len(g.pending) >= maxPendingCommands {
			g.logger.Printf("command buffer overflow, dropped %q", line)
			continue
		}
		g.pending = append(g.pending, line)
	}
}

// drain executes what modules queued, including what those commands queue
// in turn.
func (g *Game) drain() {
	ctx := etlua.MakeMainContext(g.ctx)
	for round := 0; len(g.pending) > 0; round++ {
		if round >= maxDrainRounds {
			g.logger.Printf("dropping %d queued commands, too many rounds", len(g.pending))
			g.pending = nil
			return
		}
		batch := g.pending
		g.pending = nil
		for _, line := range batch {
			if err := g.execute(ctx, &Call{ctx: ctx, out: g.logger.Writer()}, line); err != nil {
				g.logger.Printf("%q: %v", line, err)
			}
		}
	}
}

// splitCommands cuts console text into commands at newlines and at
// semicolons outside double quotes.
func splitCommands(text string) []string {
	result := []string{}
	current := &strings.Builder{}
	quoted := false
	flush := func() {
		if line := strings.TrimSpace(current.String()); line != "" {
			result = append(result, line)
		}
		current.Reset()
	}
	for _, r := range text {
		switch {
		case r == '"':
			quoted = !quoted
			current.WriteRune(r)
		case r == '\n' || r == '\r':
			quoted = false
			flush()
		case r == ';' && !quoted:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return result
}
