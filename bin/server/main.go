package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/zond/etlua/server"
	"github.com/zond/etlua/structs"
)

func main() {
	configPath := flag.String("config", "", "TOML file to read settings from, ETLUA_* environment variables apply on top.")
	dumpConfig := flag.Bool("dump-config", false, "Print the effective settings and exit.")
	noConsole := flag.Bool("no-console", false, "Don't read commands from stdin.")
	sshAddr := flag.String("ssh", "", "Where to listen to remote console connections, overrides the config.")
	dir := flag.String("dir", "", "Where the game files, database and logs live, overrides the config.")
	modules := flag.String("modules", "", "Modules to load, overrides lua_modules.")

	flag.Parse()

	config, err := structs.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ssh":
			config.SSHAddr = *sshAddr
		case "dir":
			config.Dir = *dir
		case "modules":
			config.Modules = *modules
		}
	})

	if *dumpConfig {
		if err := config.Write(os.Stdout); err != nil {
			log.Fatal(err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(config)
	if !*noConsole {
		srv.Stdin = os.Stdin
	}
	if err := srv.Start(ctx); err != nil {
		log.Fatal(err)
	}
}
