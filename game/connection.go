package game

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/pkg/errors"
	"github.com/zond/etlua"
	"github.com/zond/etlua/storage"
	"golang.org/x/term"
)

var (
	ErrLoginFailed = errors.New("login failed")
)

const (
	maxLoginAttempts     = 3
	loginAttemptInterval = 10 * time.Second
	loginAttemptCleanup  = 1 * time.Minute
)

// loginRateLimiter remembers the last failed login per remote host. Entries
// are dropped by a cleanup loop once they no longer delay anyone.
type loginRateLimiter struct {
	mu       sync.RWMutex
	attempts map[string]time.Time
}

func newLoginRateLimiter(ctx context.Context) *loginRateLimiter {
	l := &loginRateLimiter{
		attempts: map[string]time.Time{},
	}
	go l.runCleanupLoop(ctx)
	return l
}

func (l *loginRateLimiter) runCleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(loginAttemptCleanup)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.cleanup(time.Now())
		}
	}
}

func (l *loginRateLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for remote, last := range l.attempts {
		if now.Sub(last) > loginAttemptInterval {
			delete(l.attempts, remote)
		}
	}
}

// wait returns how long remote has to wait before trying again.
func (l *loginRateLimiter) wait(remote string) time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if last, found := l.attempts[remote]; found {
		if wait := loginAttemptInterval - time.Since(last); wait > 0 {
			return wait
		}
	}
	return 0
}

func (l *loginRateLimiter) recordFailure(remote string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts[remote] = time.Now()
}

func (l *loginRateLimiter) clearFailure(remote string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, remote)
}

func remoteHost(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr.String()); err == nil {
		return host
	}
	return addr.String()
}

// Connection is one operator on the remote console.
type Connection struct {
	game *Game
	sess ssh.Session
	term *term.Terminal
	ctx  context.Context
}

func (g *Game) HandleSession(sess ssh.Session) {
	c := &Connection{
		game: g,
		sess: sess,
		term: term.NewTerminal(sess, "] "),
		ctx:  storage.WithSessionID(sess.Context(), storage.NewSessionID()),
	}
	if err := c.Connect(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, ErrLoginFailed) {
		fmt.Fprintf(c.term, "InternalServerError: %v\n", err)
		log.Println(err)
		log.Println(etlua.StackTrace(err))
	}
}

func (c *Connection) remote() string {
	return c.sess.RemoteAddr().String()
}

func (c *Connection) cvar(name string) (string, error) {
	value := ""
	if err := c.game.Do(c.ctx, func(context.Context) {
		value = c.game.world.CvarGet(name)
	}); err != nil {
		return "", err
	}
	return value, nil
}

func (c *Connection) login() error {
	limiter := c.game.loginRateLimiter
	host := remoteHost(c.sess.RemoteAddr())
	for attempt := 0; attempt < maxLoginAttempts; attempt++ {
		if wait := limiter.wait(host); wait > 0 {
			fmt.Fprintf(c.term, "Please wait %v before trying again.\n", wait.Round(time.Second))
			time.Sleep(wait)
		}
		password, err := c.term.ReadPassword("rcon password: ")
		if err != nil {
			return etlua.WithStack(err)
		}
		want, err := c.cvar(RconPasswordCvar)
		if err != nil {
			return err
		}
		if want == "" {
			fmt.Fprintln(c.term, "Remote console is disabled, set rconpassword to enable it.")
			return errors.WithStack(ErrLoginFailed)
		}
		if subtle.ConstantTimeCompare([]byte(password), []byte(want)) == 1 {
			limiter.clearFailure(host)
			c.game.storage.Audit().Log(c.ctx, "CONSOLE_LOGIN", storage.AuditConsoleLogin{
				User:   c.sess.User(),
				Remote: c.remote(),
			})
			return nil
		}
		limiter.recordFailure(host)
		c.game.storage.Audit().Log(c.ctx, "LOGIN_FAILED", storage.AuditLoginFailed{
			User:   c.sess.User(),
			Remote: c.remote(),
		})
		fmt.Fprintln(c.term, "Bad rconpassword.")
	}
	return errors.WithStack(ErrLoginFailed)
}

func (c *Connection) Connect() error {
	if err := c.login(); err != nil {
		return err
	}
	defer c.game.storage.Audit().Log(c.ctx, "SESSION_END", storage.AuditSessionEnd{User: c.sess.User()})
	hostname, err := c.cvar("sv_hostname")
	if err != nil {
		return err
	}
	fmt.Fprintf(c.term, "Remote console of %q.\n", hostname)
	return c.Process()
}

// Process reads commands until the operator leaves. Besides the game
// commands the console knows quit and follow, which mirrors the server
// console here until the next follow.
func (c *Connection) Process() error {
	defer c.game.switchboard.DetachAll(c.term)
	defer c.game.console.Drop(c.term)
	for {
		line, err := c.term.ReadLine()
		if err != nil {
			return etlua.WithStack(err)
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "follow":
			if c.game.console.Has(c.term) {
				c.game.console.Drop(c.term)
				fmt.Fprintln(c.term, "No longer following the server console.")
			} else {
				c.game.console.Push(c.term)
				fmt.Fprintln(c.term, "Following the server console.")
			}
			continue
		}
		var execErr error
		if err := c.game.Do(c.ctx, func(ctx context.Context) {
			execErr = c.game.Execute(ctx, c.term, c.term, line)
		}); err != nil {
			return err
		}
		if execErr != nil {
			fmt.Fprintf(c.term, "Error: %v\n", execErr)
		}
	}
}
