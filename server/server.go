// Package server wires storage, the game loop and the remote console
// together.
package server

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/gliderlabs/ssh"
	"github.com/pkg/errors"
	"github.com/zond/etlua/game"
	"github.com/zond/etlua/pemfile"
	"github.com/zond/etlua/storage"
	"github.com/zond/etlua/structs"

	gossh "golang.org/x/crypto/ssh"
)

type Server struct {
	config *structs.Config
	// Stdin feeds the local server console. Nil disables it.
	Stdin io.Reader
	// Stdout receives the server console. Defaults to os.Stdout.
	Stdout io.Writer
}

func New(config *structs.Config) *Server {
	return &Server{
		config: config,
		Stdout: os.Stdout,
	}
}

func (s *Server) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.config.Dir, name)
}

// Start runs the server until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if err := os.MkdirAll(s.config.Dir, 0700); err != nil {
		return errors.WithStack(err)
	}
	store, err := storage.New(ctx, s.config.Dir)
	if err != nil {
		return err
	}
	defer store.Close()

	g, err := game.New(ctx, s.config, store, s.Stdout)
	if err != nil {
		return err
	}

	var sshServer *ssh.Server
	if s.config.SSHAddr != "" {
		signer, generated, err := pemfile.Load(s.path(s.config.HostKey))
		if err != nil {
			return err
		}
		if generated {
			log.Printf("Generated host key %q", s.path(s.config.HostKey))
		}
		sshServer = &ssh.Server{
			Addr:    s.config.SSHAddr,
			Handler: g.HandleSession,
		}
		sshServer.AddHostKey(signer)
		go func() {
			log.Printf("Remote console on %q with host key %q", s.config.SSHAddr, gossh.FingerprintSHA256(signer.PublicKey()))
			if err := sshServer.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
				log.Printf("remote console: %v", err)
			}
		}()
	}

	if s.Stdin != nil {
		go s.console(ctx, g)
	}

	err = g.Run(ctx)
	if sshServer != nil {
		if cerr := sshServer.Close(); cerr != nil {
			log.Printf("closing remote console: %v", cerr)
		}
	}
	return err
}

// console executes the lines typed on the local terminal.
func (s *Server) console(ctx context.Context, g *game.Game) {
	scanner := bufio.NewScanner(s.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if err := g.Do(ctx, func(ctx context.Context) {
			if err := g.Execute(ctx, s.Stdout, nil, line); err != nil {
				log.Printf("%q: %v", line, err)
			}
		}); err != nil {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("reading console: %v", err)
	}
}
