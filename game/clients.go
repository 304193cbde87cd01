package game

import (
	"fmt"
	"strings"

	"github.com/zond/etlua/host"
)

// ClientConnect brings a client in the way the engine does: modules may
// refuse it, otherwise it begins and spawns. It returns the refusal reason.
func (g *Game) ClientConnect(num int, userinfo string, bot bool) (string, bool) {
	client := g.world.Connect(num, userinfo, bot)
	if client == nil {
		return "", false
	}
	if reason, rejected := g.hooks.ClientConnect(num, true, bot); rejected {
		g.logger.Printf("%s refused: %s", client.Netname, reason)
		g.world.Disconnect(num)
		return reason, true
	}
	g.world.LogPrint(fmt.Sprintf("ClientConnect: %d\n", num))
	g.hooks.ClientUserinfoChanged(num)
	g.hooks.ClientBegin(num)
	g.hooks.ClientSpawn(num, false, false, true)
	g.drain()
	return "", false
}

func (g *Game) ClientDisconnect(num int) {
	client := g.world.Client(num)
	if client == nil || !client.Connected {
		return
	}
	g.hooks.ClientDisconnect(num)
	g.world.LogPrint(fmt.Sprintf("ClientDisconnect: %d\n", num))
	g.world.Disconnect(num)
	g.drain()
}

// ClientCommand runs a command a client sent. Modules see it first and may
// swallow it.
func (g *Game) ClientCommand(num int, args []string) {
	if len(args) == 0 {
		return
	}
	g.world.SetArgs(args)
	defer g.world.SetArgs(nil)
	defer g.drain()
	if g.hooks.ClientCommand(num, args[0]) {
		return
	}
	printer := &clientPrinter{world: g.world, clientNum: num}
	switch cmd := strings.ToLower(args[0]); cmd {
	case "lua_status":
		if err := g.printStatus(printer, ""); err != nil {
			g.logger.Printf("lua_status for client %d: %v", num, err)
		}
	case "say", "say_team", "say_buddy":
		mode := host.SayAll
		if cmd == "say_team" {
			mode = host.SayTeam
		} else if cmd == "say_buddy" {
			mode = host.SayBuddy
		}
		text := strings.Join(args[1:], " ")
		if g.hooks.ChatMessage(num, mode, chatText, text) {
			return
		}
		if g.world.Client(num).Sess.Muted {
			fmt.Fprintln(printer, "You are muted")
			return
		}
		g.world.Say(num, mode, text)
	default:
		fmt.Fprintf(printer, "unknown cmd %s\n", args[0])
	}
}

// Damage hurts target unless a module vetoes it, and reports an obituary if
// it died.
func (g *Game) Damage(target, attacker, damage, dflags, mod int) {
	g.damage(target, attacker, damage, dflags, mod)
	g.drain()
}

// damage is Damage without draining queued commands, for modules that
// deal damage from inside a callback.
func (g *Game) damage(target, attacker, damage, dflags, mod int) {
	if g.hooks.Damage(target, attacker, damage, dflags, mod) {
		return
	}
	if g.world.Damage(target, damage) {
		g.hooks.Obituary(target, attacker, mod)
		g.world.LogPrint(fmt.Sprintf("Kill: %d %d %d\n", attacker, target, mod))
	}
}
