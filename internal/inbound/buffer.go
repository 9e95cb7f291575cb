// Package inbound implements the mutex-protected byte queue that the
// session's background reader appends to and synchronous callers drain
// from, via either a destructive or a peeking read.
package inbound

import (
	"sync"
	"time"
)

// pollInterval is how often Read retries while waiting for data to arrive.
const pollInterval = 10 * time.Millisecond

// Buffer is an ordered, growable byte queue. It is safe for one writer
// goroutine (the reader) and one reader goroutine (the caller) to use
// concurrently.
type Buffer struct {
	mu   sync.Mutex
	data []byte
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{}
}

// Write appends p in order. Called only by the session's reader goroutine.
func (b *Buffer) Write(p []byte) {
	if len(p) == 0 {
		return
	}
	b.mu.Lock()
	b.data = append(b.data, p...)
	b.mu.Unlock()
}

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(c byte) {
	b.mu.Lock()
	b.data = append(b.data, c)
	b.mu.Unlock()
}

// Len reports the number of buffered, unread bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

func (b *Buffer) read(out []byte, peek bool) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := copy(out, b.data)
	if n > 0 && !peek {
		b.data = b.data[n:]
	}
	return n
}

// Read copies up to len(out) buffered bytes into out. With peek=false the
// copied prefix is consumed; with peek=true it remains for a later Read.
// It polls every 10ms until data is available or timeout elapses, and
// returns 0 rather than blocking indefinitely — absence of data is not an
// error at this layer.
func (b *Buffer) Read(out []byte, peek bool, timeout time.Duration) int {
	if n := b.read(out, peek); n > 0 {
		return n
	}
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		time.Sleep(pollInterval)
		if n := b.read(out, peek); n > 0 {
			return n
		}
	}
	return 0
}
