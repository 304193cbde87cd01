package game

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rodaine/table"
	"github.com/zond/etlua"
	"github.com/zond/etlua/host"
)

func (g *Game) connectedClient(c *Call, arg int) (*host.Client, bool) {
	num, err := strconv.Atoi(c.arg(arg))
	if err != nil {
		fmt.Fprintf(c.out, "%q is not a client number\n", c.arg(arg))
		return nil, false
	}
	client := g.world.Client(num)
	if client == nil || !client.Connected {
		fmt.Fprintf(c.out, "Client %d is not connected\n", num)
		return nil, false
	}
	return client, true
}

func (g *Game) serverCommands() commands {
	return []command{
		{
			names: m("cvar"),
			usage: "cvar <name> [value]",
			min:   1,
			f: func(g *Game, c *Call) error {
				if len(c.args) > 2 {
					g.world.CvarSet(c.arg(1), strings.Join(c.args[2:], " "))
					return nil
				}
				fmt.Fprintf(c.out, "%q is %q\n", c.arg(1), g.world.CvarGet(c.arg(1)))
				return nil
			},
		},
		{
			names:   m("set", "seta"),
			usage:   "set|seta <name> <value>",
			min:     2,
			audited: true,
			f: func(g *Game, c *Call) error {
				value := strings.Join(c.args[2:], " ")
				if strings.EqualFold(c.arg(0), "seta") {
					g.world.CvarSetArchive(c.arg(1), value)
				} else {
					g.world.CvarSet(c.arg(1), value)
				}
				return nil
			},
		},
		{
			names: m("cvarlist"),
			usage: "cvarlist [prefix]",
			f: func(g *Game, c *Call) error {
				t := table.New("Name", "Value", "Archive").WithWriter(c.out)
				for _, cvar := range g.world.Cvars() {
					if !strings.HasPrefix(strings.ToLower(cvar.Name), strings.ToLower(c.arg(1))) {
						continue
					}
					value := cvar.Value
					if strings.EqualFold(cvar.Name, RconPasswordCvar) {
						value = "***"
					}
					t.AddRow(cvar.Name, value, cvar.Archive)
				}
				t.Print()
				return nil
			},
		},
		{
			names: m("exec"),
			usage: "exec <file>",
			min:   1,
			f: func(g *Game, c *Call) error {
				fd, length, err := g.world.Open(c.arg(1), host.FSRead)
				if err != nil {
					fmt.Fprintf(c.out, "couldn't exec %s\n", c.arg(1))
					return nil
				}
				defer g.world.Close(fd)
				data, err := g.world.Read(fd, length)
				if err != nil {
					return etlua.WithStack(err)
				}
				fmt.Fprintf(c.out, "execing %s\n", c.arg(1))
				g.queueCommand(host.ExecAppend, string(data))
				return nil
			},
		},
		{
			names: m("status"),
			usage: "status",
			f: func(g *Game, c *Call) error {
				count := g.world.NumConnected()
				fmt.Fprintf(c.out, "level time %d, %s connected\n", g.levelTime, g.plural.Pluralize("client", count, true))
				t := table.New("Num", "Name", "Team", "Health", "Ping", "Bot", "Muted").WithWriter(c.out)
				for i := 0; i < host.MaxClients; i++ {
					client := g.world.Client(i)
					if !client.Connected {
						continue
					}
					t.AddRow(i, host.CleanString(client.Netname), teamName(client.Sess.Team), client.PS.Stats[host.StatHealth], client.PS.Ping, client.Bot, client.Sess.Muted)
				}
				t.Print()
				return nil
			},
		},
		{
			names:   m("connect"),
			usage:   "connect <num> [name] [bot]",
			min:     1,
			audited: true,
			f: func(g *Game, c *Call) error {
				num, err := strconv.Atoi(c.arg(1))
				if err != nil || g.world.Client(num) == nil {
					fmt.Fprintf(c.out, "%q is not a client number\n", c.arg(1))
					return nil
				}
				if g.world.Client(num).Connected {
					fmt.Fprintf(c.out, "Client %d is already connected\n", num)
					return nil
				}
				name := c.arg(2)
				if name == "" {
					name = fmt.Sprintf("Player%d", num)
				}
				bot := strings.EqualFold(c.arg(3), "bot")
				userinfo, ok := host.InfoSetValueForKey("", "name", name)
				if !ok {
					fmt.Fprintf(c.out, "%q is not a valid name\n", name)
					return nil
				}
				g.ClientConnect(num, userinfo, bot)
				return nil
			},
		},
		{
			names:   m("disconnect", "kick"),
			usage:   "disconnect <num>",
			min:     1,
			audited: true,
			f: func(g *Game, c *Call) error {
				if client, ok := g.connectedClient(c, 1); ok {
					g.ClientDisconnect(client.Num)
				}
				return nil
			},
		},
		{
			names: m("clientcmd"),
			usage: "clientcmd <num> <command> [args...]",
			min:   2,
			f: func(g *Game, c *Call) error {
				if client, ok := g.connectedClient(c, 1); ok {
					g.ClientCommand(client.Num, c.args[2:])
				}
				return nil
			},
		},
		{
			names:   m("damage"),
			usage:   "damage <target> <attacker> <amount> [mod]",
			min:     3,
			audited: true,
			f: func(g *Game, c *Call) error {
				nums := make([]int, 4)
				for i := range nums {
					if i == 3 && c.arg(4) == "" {
						break
					}
					n, err := strconv.Atoi(c.arg(i + 1))
					if err != nil {
						fmt.Fprintf(c.out, "%q is not a number\n", c.arg(i+1))
						return nil
					}
					nums[i] = n
				}
				if g.world.Entity(nums[0]) == nil {
					fmt.Fprintf(c.out, "No entity %d\n", nums[0])
					return nil
				}
				g.Damage(nums[0], nums[1], nums[2], 0, nums[3])
				return nil
			},
		},
		{
			names: m("say"),
			usage: "say <text>",
			min:   1,
			f: func(g *Game, c *Call) error {
				text := strings.Join(c.args[1:], " ")
				g.world.SendServerCommand(-1, fmt.Sprintf("chat %q", "console: "+text))
				g.world.LogPrint(fmt.Sprintf("say: console: %s\n", text))
				return nil
			},
		},
		{
			names: m("vstr"),
			usage: "vstr <variable>",
			min:   1,
			f: func(g *Game, c *Call) error {
				g.queueCommand(host.ExecInsert, g.world.CvarGet(c.arg(1)))
				return nil
			},
		},
		{
			names:   m("map_restart"),
			usage:   "map_restart",
			audited: true,
			f: func(g *Game, c *Call) error {
				g.MapRestart()
				return nil
			},
		},
	}
}
