package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	goccy "github.com/goccy/go-json"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey int

const (
	sessionIDKey contextKey = iota
)

var sessionCounter uint64

// NewSessionID returns an id unique to this process run.
func NewSessionID() string {
	return fmt.Sprintf("%x-%x", time.Now().UnixNano(), atomic.AddUint64(&sessionCounter, 1))
}

func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

func SessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok
}

// AuditLogger writes operator and module lifecycle events as JSON lines to
// a rotated log file.
type AuditLogger struct {
	mu  sync.Mutex
	out io.WriteCloser
}

// AuditData is the interface for typed audit event data.
type AuditData interface {
	auditData()
}

type AuditEntry struct {
	Time      string    `json:"time"`
	SessionID string    `json:"session_id,omitempty"`
	Event     string    `json:"event"`
	Data      AuditData `json:"data"`
}

// AuditModuleRef identifies a module by file and signature.
type AuditModuleRef struct {
	Slot      int    `json:"slot"`
	File      string `json:"file"`
	Signature string `json:"signature"`
}

type AuditModuleLoad struct {
	Module AuditModuleRef `json:"module"`
	Size   int            `json:"size"`
}

func (AuditModuleLoad) auditData() {}

type AuditModuleUnload struct {
	Module AuditModuleRef `json:"module"`
	Errors int            `json:"errors"`
}

func (AuditModuleUnload) auditData() {}

// AuditModuleRefused is logged when a module fails to load, for any reason.
type AuditModuleRefused struct {
	File      string `json:"file"`
	Signature string `json:"signature,omitempty"`
	Reason    string `json:"reason"`
}

func (AuditModuleRefused) auditData() {}

type AuditConsoleLogin struct {
	User   string `json:"user"`
	Remote string `json:"remote"`
}

func (AuditConsoleLogin) auditData() {}

type AuditLoginFailed struct {
	User   string `json:"user"`
	Remote string `json:"remote"`
}

func (AuditLoginFailed) auditData() {}

type AuditSessionEnd struct {
	User string `json:"user"`
}

func (AuditSessionEnd) auditData() {}

// AuditCommand is logged for every operator command that changes state.
type AuditCommand struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

func (AuditCommand) auditData() {}

// NewAuditLogger creates a new audit logger writing to path, rotating it
// when it grows large.
func NewAuditLogger(path string) (*AuditLogger, error) {
	out := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 5,
		Compress:   true,
	}
	return &AuditLogger{out: out}, nil
}

// Log writes a structured audit entry as JSON.
// Panics if encoding fails (indicates a bug in the typed AuditData structs).
func (a *AuditLogger) Log(ctx context.Context, event string, data AuditData) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	sessionID, _ := SessionID(ctx)
	b, err := goccy.Marshal(AuditEntry{
		Time:      time.Now().UTC().Format(time.RFC3339Nano),
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
	if err != nil {
		panic(fmt.Sprintf("audit log encode failed: %v", err))
	}
	if _, err := a.out.Write(append(b, '\n')); err != nil {
		log.Printf("audit log write failed: %v", err)
	}
}

func (a *AuditLogger) Close() error {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.out.Close()
}
