package rtelnet

import (
	"bytes"
	"context"
	"time"
)

// pollInterval is how often the quiescence loop checks the inbound buffer
// while waiting for either more output or the idle/total timeout.
const pollInterval = 50 * time.Millisecond

// Execute sends command followed by a newline and accumulates inbound
// bytes until the server goes quiet for IdleTimeout, or TotalTimeout
// elapses, whichever comes first. It does not parse or interpret output.
func (s *Session) Execute(ctx context.Context, command string) (string, error) {
	if !s.loggedIn.Load() {
		return "", s.ledger.Push(ErrNotLoggedIn)
	}
	if err := s.sendLine(command); err != nil {
		return "", s.ledger.Push(wrapErr(CodeFailedSend, "sending command", err))
	}
	return s.drainUntilQuiescent(ctx)
}

// FlushBanner drains whatever the server sends unprompted right after
// negotiation (MOTD, welcome banner) using the same quiescence rule as
// Execute, without requiring a prior login.
func (s *Session) FlushBanner(ctx context.Context) (string, error) {
	if !s.negotiated.Load() {
		return "", s.ledger.Push(ErrNotNegotiated)
	}
	return s.drainUntilQuiescent(ctx)
}

func (s *Session) drainUntilQuiescent(ctx context.Context) (string, error) {
	var out bytes.Buffer
	scratch := make([]byte, s.cfg.BufferSize)

	start := time.Now()
	lastRead := start
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, _ := s.Read(scratch, false, 0)
		if n > 0 {
			out.Write(scratch[:n])
			lastRead = time.Now()
		}

		now := time.Now()
		if now.Sub(lastRead) > s.cfg.IdleTimeout || now.Sub(start) > s.cfg.TotalTimeout {
			return out.String(), nil
		}
		time.Sleep(pollInterval)
	}
}
