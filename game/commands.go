package game

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/buildkite/shellwords"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rodaine/table"
	"github.com/zond/etlua"
	"github.com/zond/etlua/api"
	"github.com/zond/etlua/host"
	"github.com/zond/etlua/storage"
	"github.com/zond/etlua/vm"
	"golang.org/x/term"

	goccy "github.com/goccy/go-json"
)

const (
	chatText = 0

	statusRule = "-- ------------------------ ---------------------------------------- ------------------------"
)

// Call is one command being executed.
type Call struct {
	ctx  context.Context
	out  io.Writer
	term *term.Terminal
	args []string
}

func (c *Call) arg(i int) string {
	if i < len(c.args) {
		return c.args[i]
	}
	return ""
}

type command struct {
	names map[string]bool
	usage string
	min   int
	// audited commands change state and end up in the audit log.
	audited bool
	f       func(g *Game, c *Call) error
}

type commands []command

func (cs commands) find(name string) (command, bool) {
	name = strings.ToLower(name)
	for _, cmd := range cs {
		if cmd.names[name] {
			return cmd, true
		}
	}
	return command{}, false
}

func m(s ...string) map[string]bool {
	res := map[string]bool{}
	for _, p := range s {
		res[p] = true
	}
	return res
}

func (cmd command) run(g *Game, c *Call) error {
	if len(c.args)-1 < cmd.min {
		fmt.Fprintf(c.out, "usage: %s\n", cmd.usage)
		return nil
	}
	if cmd.audited {
		g.storage.Audit().Log(c.ctx, "COMMAND", storage.AuditCommand{
			Command: strings.ToLower(c.args[0]),
			Args:    redact(c.args[1:]),
		})
	}
	return cmd.f(g, c)
}

// redact hides the value in arguments setting the rcon password.
func redact(args []string) []string {
	if len(args) > 1 && strings.EqualFold(args[0], RconPasswordCvar) {
		result := []string{args[0]}
		for range args[1:] {
			result = append(result, "***")
		}
		return result
	}
	return args
}

// Execute runs one console line, then whatever modules queued while it ran.
// It must run on the main loop.
func (g *Game) Execute(ctx context.Context, out io.Writer, t *term.Terminal, line string) error {
	if !etlua.IsMainContext(ctx) {
		return errors.WithStack(ErrNotMainLoop)
	}
	err := g.execute(ctx, &Call{ctx: ctx, out: out, term: t}, line)
	g.drain()
	return err
}

// execute looks a command up among the Lua commands, then lets modules
// claim it, then tries the server commands and finally the cvars.
func (g *Game) execute(ctx context.Context, c *Call, line string) error {
	args, err := shellwords.SplitPosix(line)
	if err != nil {
		return etlua.WithStack(err)
	}
	if len(args) == 0 {
		return nil
	}
	c.args = args
	g.world.SetArgs(args)
	defer g.world.SetArgs(nil)
	if cmd, found := g.luaCommands().find(args[0]); found {
		return cmd.run(g, c)
	}
	if g.hooks.ConsoleCommand(args[0]) {
		return nil
	}
	if cmd, found := g.serverCommands().find(args[0]); found {
		return cmd.run(g, c)
	}
	if cvar, found := g.world.LookupCvar(args[0]); found {
		if len(args) > 1 {
			g.world.CvarSet(cvar.Name, strings.Join(args[1:], " "))
		} else {
			fmt.Fprintf(c.out, "%q is %q\n", cvar.Name, cvar.Value)
		}
		return nil
	}
	fmt.Fprintf(c.out, "Unknown command %q\n", args[0])
	return nil
}

func (g *Game) luaCommands() commands {
	return []command{
		{
			names: m("lua_status"),
			usage: "lua_status [json|long]",
			f: func(g *Game, c *Call) error {
				return g.printStatus(c.out, c.arg(1))
			},
		},
		{
			names:   m("lua_restart"),
			usage:   "lua_restart",
			audited: true,
			f: func(g *Game, c *Call) error {
				g.Restart()
				return nil
			},
		},
		{
			names:   m("lua_load"),
			usage:   "lua_load <module>",
			min:     1,
			audited: true,
			f: func(g *Game, c *Call) error {
				slot, err := g.loader.Load(c.arg(1))
				if err != nil {
					fmt.Fprintf(c.out, "Error: %v\n", err)
					return nil
				}
				fmt.Fprintf(c.out, "Loaded %q into slot %d\n", slot.SourcePath, slot.ID)
				return nil
			},
		},
		{
			names:   m("lua_unload"),
			usage:   "lua_unload <slot|file|modname>",
			min:     1,
			audited: true,
			f: func(g *Game, c *Call) error {
				slot, found := g.findSlot(c.arg(1))
				if !found {
					fmt.Fprintf(c.out, "No module %q loaded\n", c.arg(1))
					return nil
				}
				g.switchboard.Clear(slot.ID)
				g.unload(slot)
				return nil
			},
		},
		{
			names: m("lua_api"),
			usage: "lua_api",
			f: func(g *Game, c *Call) error {
				api.Dump(c.out)
				return nil
			},
		},
		{
			names: m("lua_debug"),
			usage: "lua_debug <slot|file|modname|off>",
			min:   1,
			f: func(g *Game, c *Call) error {
				if c.term == nil {
					fmt.Fprintln(c.out, "lua_debug needs an interactive console")
					return nil
				}
				if strings.EqualFold(c.arg(1), "off") {
					detached := g.switchboard.DetachAll(c.term)
					fmt.Fprintf(c.out, "Detached from %d %s\n", len(detached), g.plural.Pluralize("slot", len(detached), false))
					return nil
				}
				slot, found := g.findSlot(c.arg(1))
				if !found {
					fmt.Fprintf(c.out, "No module %q loaded\n", c.arg(1))
					return nil
				}
				backlog := g.switchboard.Attach(slot.ID, c.term)
				fmt.Fprintf(c.out, "----- console of slot %d (%s), %s buffered -----\n", slot.ID, slot.DisplayName(), g.plural.Pluralize("line", len(backlog), true))
				for _, line := range backlog {
					if _, err := c.out.Write(line); err != nil {
						return etlua.WithStack(err)
					}
				}
				return nil
			},
		},
		{
			names: m("lua_history"),
			usage: "lua_history",
			f: func(g *Game, c *Call) error {
				modules, err := g.storage.Modules(c.ctx)
				if err != nil {
					return err
				}
				t := table.New("Signature", "File", "Modname", "Size", "Loads", "Last loaded").WithWriter(c.out)
				for _, mod := range modules {
					t.AddRow(mod.Signature, mod.File, mod.Name, humanize.Bytes(uint64(mod.Size)), mod.Loads, humanize.Time(time.Unix(mod.LastLoaded, 0)))
				}
				t.Print()
				return nil
			},
		},
	}
}

func (g *Game) findSlot(ref string) (*vm.Slot, bool) {
	if id, err := strconv.Atoi(ref); err == nil {
		return g.registry.Get(id)
	}
	for slot := range g.registry.Each() {
		if strings.EqualFold(slot.SourcePath, ref) || strings.EqualFold(slot.Name, ref) {
			return slot, true
		}
	}
	return nil, false
}

func (g *Game) printStatus(out io.Writer, format string) error {
	status := g.registry.Status()
	switch strings.ToLower(format) {
	case "json":
		b, err := goccy.MarshalIndent(status, "", "  ")
		if err != nil {
			return etlua.WithStack(err)
		}
		fmt.Fprintln(out, string(b))
	case "long":
		t := table.New("VM", "Modname", "Signature", "Filename", "Size", "Errors", "Loaded").WithWriter(out)
		for _, s := range status {
			t.AddRow(s.ID, s.Name, s.Signature, s.File, humanize.Bytes(uint64(s.Size)), s.Errors, humanize.Time(s.LoadedAt))
		}
		t.Print()
	default:
		if len(status) == 0 {
			fmt.Fprintln(out, "Lua API: no scripts loaded.")
			return nil
		}
		fmt.Fprintf(out, "Lua API: showing lua information (%s loaded)\n", g.plural.Pluralize("module", len(status), true))
		fmt.Fprintln(out, "VM Modname                  Signature                                Filename")
		fmt.Fprintln(out, statusRule)
		for _, s := range status {
			fmt.Fprintf(out, "%2d %-24s %-40s %-24s\n", s.ID, s.Name, s.Signature, s.File)
		}
		fmt.Fprintln(out, statusRule)
	}
	return nil
}

func teamName(team int) string {
	switch team {
	case host.TeamFree:
		return "free"
	case host.TeamAxis:
		return "axis"
	case host.TeamAllies:
		return "allies"
	case host.TeamSpectator:
		return "spectator"
	}
	return strconv.Itoa(team)
}

// clientPrinter sends what is written to it to one client as print
// commands, a line at a time.
type clientPrinter struct {
	world interface {
		SendServerCommand(clientNum int, text string)
	}
	clientNum int
}

func (p *clientPrinter) Write(b []byte) (int, error) {
	for _, line := range strings.SplitAfter(string(b), "\n") {
		if line != "" {
			p.world.SendServerCommand(p.clientNum, fmt.Sprintf("print %q", line))
		}
	}
	return len(b), nil
}
