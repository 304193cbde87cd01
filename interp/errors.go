package interp

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
)

type Kind int

const (
	KindRuntime Kind = iota
	KindSyntax
	KindMemory
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindMemory:
		return "memory"
	case KindFile:
		return "file"
	default:
		return "runtime"
	}
}

// Error carries the interpreter's own diagnostic for a failed compile or call.
type Error struct {
	Kind    Kind
	Name    string
	Message string
}

func (e *Error) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("%v error: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%v error in %q: %s", e.Kind, e.Name, e.Message)
}

// IsKind reports whether err wraps an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var ierr *Error
	if errors.As(err, &ierr) {
		return ierr.Kind == k
	}
	return false
}

var memoryMarkers = []string{
	"stack overflow",
	"registry overflow",
	"not enough memory",
}

func classify(name string, err error) *Error {
	var apiErr *lua.ApiError
	var parseErr *parse.Error
	switch {
	case errors.As(err, &parseErr):
		return &Error{Kind: KindSyntax, Name: name, Message: parseErr.Error()}
	case errors.As(err, &apiErr):
		msg := apiErr.Error()
		if apiErr.Object != nil {
			msg = apiErr.Object.String()
		}
		kind := KindRuntime
		switch apiErr.Type {
		case lua.ApiErrorSyntax:
			kind = KindSyntax
		case lua.ApiErrorFile:
			kind = KindFile
		}
		for _, marker := range memoryMarkers {
			if strings.Contains(msg, marker) {
				kind = KindMemory
			}
		}
		return &Error{Kind: kind, Name: name, Message: msg}
	default:
		return &Error{Kind: KindRuntime, Name: name, Message: err.Error()}
	}
}
