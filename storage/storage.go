// Package storage persists what must survive a server restart: archived
// cvars and the history of modules the server has run.
package storage

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/zond/etlua"

	_ "modernc.org/sqlite"
)

const (
	DatabaseFile = "etlua.sqlite"
	AuditFile    = "audit.log"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS cvars (
		name TEXT PRIMARY KEY COLLATE NOCASE,
		value TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS modules (
		signature TEXT PRIMARY KEY,
		file TEXT NOT NULL,
		name TEXT NOT NULL,
		size INTEGER NOT NULL,
		loads INTEGER NOT NULL,
		first_loaded INTEGER NOT NULL,
		last_loaded INTEGER NOT NULL
	)`,
}

type Cvar struct {
	Name      string `db:"name"`
	Value     string `db:"value"`
	UpdatedAt int64  `db:"updated_at"`
}

// Module is everything remembered about one module source, keyed by its
// signature.
type Module struct {
	Signature   string `db:"signature" json:"signature"`
	File        string `db:"file" json:"file"`
	Name        string `db:"name" json:"name"`
	Size        int    `db:"size" json:"size"`
	Loads       int    `db:"loads" json:"loads"`
	FirstLoaded int64  `db:"first_loaded" json:"first_loaded"`
	LastLoaded  int64  `db:"last_loaded" json:"last_loaded"`
}

type Storage struct {
	db    *sqlx.DB
	audit *AuditLogger
}

// New opens or creates the database and audit log in dir.
func New(ctx context.Context, dir string) (*Storage, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite", filepath.Join(dir, DatabaseFile))
	if err != nil {
		return nil, etlua.WithStack(err)
	}
	// A single connection keeps sqlite from reporting busy between the
	// frame loop and the consoles.
	db.SetMaxOpenConns(1)
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, etlua.WithStack(err)
		}
	}
	audit, err := NewAuditLogger(filepath.Join(dir, AuditFile))
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Storage{db: db, audit: audit}, nil
}

func (s *Storage) Close() error {
	if err := s.audit.Close(); err != nil {
		s.db.Close()
		return err
	}
	return etlua.WithStack(s.db.Close())
}

func (s *Storage) Audit() *AuditLogger {
	return s.audit
}

func (s *Storage) LoadCvars(ctx context.Context) ([]Cvar, error) {
	result := []Cvar{}
	if err := s.db.SelectContext(ctx, &result, "SELECT * FROM cvars ORDER BY name"); err != nil {
		return nil, etlua.WithStack(err)
	}
	return result, nil
}

func (s *Storage) StoreCvar(ctx context.Context, name, value string) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO cvars (name, value, updated_at) VALUES (:name, :value, :updated_at)
		ON CONFLICT (name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		&Cvar{Name: strings.ToLower(name), Value: value, UpdatedAt: time.Now().Unix()})
	return etlua.WithStack(err)
}

func (s *Storage) RemoveCvar(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM cvars WHERE name = ?", name)
	if err != nil {
		return false, etlua.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, etlua.WithStack(err)
	}
	return n > 0, nil
}

// RecordModule counts a successful load of the module with the given
// signature.
func (s *Storage) RecordModule(ctx context.Context, m Module) error {
	now := time.Now().Unix()
	m.Loads = 1
	m.FirstLoaded = now
	m.LastLoaded = now
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO modules (signature, file, name, size, loads, first_loaded, last_loaded)
		VALUES (:signature, :file, :name, :size, :loads, :first_loaded, :last_loaded)
		ON CONFLICT (signature) DO UPDATE SET
			file = excluded.file,
			name = CASE WHEN excluded.name = '' THEN modules.name ELSE excluded.name END,
			loads = modules.loads + 1,
			last_loaded = excluded.last_loaded`, &m)
	return etlua.WithStack(err)
}

// NameModule remembers the name a module registered for itself.
func (s *Storage) NameModule(ctx context.Context, signature, name string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE modules SET name = ? WHERE signature = ?", name, signature)
	return etlua.WithStack(err)
}

func (s *Storage) Modules(ctx context.Context) ([]Module, error) {
	result := []Module{}
	if err := s.db.SelectContext(ctx, &result, "SELECT * FROM modules ORDER BY last_loaded DESC, file"); err != nil {
		return nil, etlua.WithStack(err)
	}
	return result, nil
}

func (s *Storage) Module(ctx context.Context, signature string) (*Module, error) {
	result := &Module{}
	if err := s.db.GetContext(ctx, result, "SELECT * FROM modules WHERE signature = ?", signature); err != nil {
		return nil, etlua.WithStack(err)
	}
	return result, nil
}
