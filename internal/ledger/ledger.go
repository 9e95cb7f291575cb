// Package ledger implements an append-only diagnostic stack: every error a
// session encounters is pushed with its call site, and the accumulated
// frames can be rendered on demand instead of only at the point of failure.
package ledger

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// coder is implemented by errors that carry a numeric code.
type coder interface {
	Code() int
}

// Frame is one diagnostic entry.
type Frame struct {
	Err  error
	Code int
	Line int
	Func string
}

// Ledger is an append-only stack of diagnostic frames, safe for concurrent
// use since both the reader goroutine and the caller's goroutine push to
// it.
type Ledger struct {
	mu     sync.Mutex
	frames []Frame
}

// Push records err at the caller's call site and returns err unchanged, so
// call sites can write `return ledger.Push(err)`. A nil err is a no-op.
func (l *Ledger) Push(err error) error {
	if err == nil {
		return nil
	}
	code := 0
	if c, ok := err.(coder); ok {
		code = c.Code()
	}

	pc, _, line, ok := runtime.Caller(1)
	funcName := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			funcName = fn.Name()
		}
	}

	l.mu.Lock()
	l.frames = append(l.frames, Frame{Err: err, Code: code, Line: line, Func: funcName})
	l.mu.Unlock()
	return err
}

// Frames returns a snapshot of the recorded frames, oldest first.
func (l *Ledger) Frames() []Frame {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Frame, len(l.frames))
	copy(out, l.frames)
	return out
}

// Render renders the ledger as a human-readable stack, oldest first.
func (l *Ledger) Render() string {
	frames := l.Frames()
	if len(frames) == 0 {
		return "(no errors recorded)"
	}
	var b strings.Builder
	for i, f := range frames {
		fmt.Fprintf(&b, "#%d %s:%d code=%d: %v\n", i, f.Func, f.Line, f.Code, f.Err)
	}
	return b.String()
}
