// Package structs holds the server configuration.
package structs

import (
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"github.com/zond/etlua"
)

const (
	EnvPrefix = "ETLUA_"

	DefaultFPS      = 20
	DefaultSSHAddr  = "127.0.0.1:27961"
	DefaultCapacity = 64
)

// Config is read from a TOML file, then overridden by ETLUA_ prefixed
// environment variables.
type Config struct {
	// Dir holds the game files modules can reach, the database and the logs.
	Dir     string `toml:"dir" env:"DIR"`
	SSHAddr string `toml:"ssh_addr" env:"SSH_ADDR"`
	// HostKey is the SSH host key file, created if missing. Relative paths
	// are inside Dir.
	HostKey  string `toml:"host_key" env:"HOST_KEY"`
	FPS      int    `toml:"fps" env:"FPS"`
	Capacity int    `toml:"capacity" env:"CAPACITY"`
	// GameLog is the G_LogPrint target, relative to Dir. Empty disables it.
	GameLog string `toml:"game_log" env:"GAME_LOG"`
	// Sandbox withholds the os and io libraries from modules.
	Sandbox bool `toml:"sandbox" env:"SANDBOX"`

	Modules        string `toml:"lua_modules" env:"MODULES"`
	AllowedModules string `toml:"lua_allowedmodules" env:"ALLOWED_MODULES"`
	RconPassword   string `toml:"rconpassword" env:"RCON_PASSWORD"`
	MaxClients     int    `toml:"sv_maxclients" env:"MAXCLIENTS"`

	// Cvars are set at startup after the archived ones.
	Cvars map[string]string `toml:"cvars"`
}

func DefaultConfig() *Config {
	return &Config{
		Dir:        ".",
		SSHAddr:    DefaultSSHAddr,
		HostKey:    "hostkey.pem",
		FPS:        DefaultFPS,
		Capacity:   DefaultCapacity,
		GameLog:    "games.log",
		MaxClients: 20,
		Cvars:      map[string]string{},
	}
}

// LoadConfig reads path, if not empty, on top of the defaults and then
// applies the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, etlua.WithStack(err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("unknown config keys in %q: %v", path, undecoded)
		}
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, etlua.WithStack(err)
	}
	if cfg.Cvars == nil {
		cfg.Cvars = map[string]string{}
	}
	if cfg.FPS <= 0 {
		return nil, errors.Errorf("fps must be positive, got %d", cfg.FPS)
	}
	if cfg.Capacity <= 0 {
		return nil, errors.Errorf("capacity must be positive, got %d", cfg.Capacity)
	}
	return cfg, nil
}

// StartupCvars returns the cvars the config sets, sorted by name. The
// dedicated fields win over the generic table.
func (c *Config) StartupCvars() [][2]string {
	merged := map[string]string{}
	for name, value := range c.Cvars {
		merged[name] = value
	}
	merged["sv_fps"] = strconv.Itoa(c.FPS)
	merged["sv_maxclients"] = strconv.Itoa(c.MaxClients)
	if c.Modules != "" {
		merged["lua_modules"] = c.Modules
	}
	if c.AllowedModules != "" {
		merged["lua_allowedmodules"] = c.AllowedModules
	}
	if c.RconPassword != "" {
		merged["rconpassword"] = c.RconPassword
	}
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	result := make([][2]string, len(names))
	for i, name := range names {
		result[i] = [2]string{name, merged[name]}
	}
	return result
}

// Write renders the effective configuration as TOML.
func (c *Config) Write(w io.Writer) error {
	return etlua.WithStack(toml.NewEncoder(w).Encode(c))
}

// WriteFile saves the configuration to path.
func (c *Config) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return etlua.WithStack(err)
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}
	return etlua.WithStack(f.Close())
}
