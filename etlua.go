package etlua

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pkg/errors"
)

type contextKey int

var (
	mainContext contextKey = 0
)

// IsMainContext reports whether ctx belongs to the server main loop. Registry
// mutation is only allowed from there.
func IsMainContext(ctx context.Context) bool {
	val := ctx.Value(mainContext)
	if val == nil {
		return false
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return false
}

func MakeMainContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, mainContext, true)
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func WithStack(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(stackTracer); !ok {
		return errors.WithStack(err)
	}
	return err
}

func StackTrace(err error) string {
	buf := &bytes.Buffer{}
	if err, ok := err.(stackTracer); ok {
		for _, f := range err.StackTrace() {
			fmt.Fprintf(buf, "%+v\n", f)
		}
	}
	return buf.String()
}
