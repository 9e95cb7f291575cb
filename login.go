package rtelnet

import (
	"bytes"
	"context"
	"strings"
	"time"
)

// login drives the expect/send login sub-protocol: wait for a "login:"
// prompt, send the username, wait for "Password:", send the password, then
// watch for either a failure banner or a shell prompt.
func (s *Session) login(ctx context.Context) error {
	if s.cfg.Username == "" {
		return s.ledger.Push(ErrUsernameNotSet)
	}
	if s.cfg.Password == "" {
		return s.ledger.Push(ErrPasswordNotSet)
	}

	if _, err := s.expect(ctx, "login:", s.cfg.ExpectTimeout); err != nil {
		return s.ledger.Push(err)
	}
	if err := s.sendLine(s.cfg.Username); err != nil {
		return s.ledger.Push(wrapErr(CodeFailedSend, "sending username", err))
	}

	if _, err := s.expect(ctx, "Password:", s.cfg.ExpectTimeout); err != nil {
		return s.ledger.Push(err)
	}
	if err := s.sendLine(s.cfg.Password); err != nil {
		return s.ledger.Push(wrapErr(CodeFailedSend, "sending password", err))
	}

	if err := s.awaitPromptOrFailure(ctx); err != nil {
		return s.ledger.Push(err)
	}

	s.loggedIn.Store(true)
	return nil
}

// expect polls inbound data, stripping CR/LF, until substr appears or
// budget elapses. The match is case-insensitive, per the original banner
// convention of greeting in whatever case the server operator chose.
func (s *Session) expect(ctx context.Context, substr string, budget time.Duration) (string, error) {
	var acc bytes.Buffer
	scratch := make([]byte, s.cfg.BufferSize)
	deadline := time.Now().Add(budget)
	substr = strings.ToLower(substr)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return acc.String(), wrapErr(CodeCantFindExpected, "expect canceled", ctx.Err())
		default:
		}
		n, _ := s.Read(scratch, false, 200*time.Millisecond)
		if n > 0 {
			acc.Write(stripCRLF(scratch[:n]))
			if strings.Contains(strings.ToLower(acc.String()), substr) {
				return acc.String(), nil
			}
		}
	}
	return acc.String(), ErrCantFindExpected
}

func stripCRLF(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		if c == '\r' || c == '\n' {
			continue
		}
		out = append(out, c)
	}
	return out
}

// awaitPromptOrFailure peeks inbound data for up to LoginTimeout, stripping
// CR/LF, watching for a failure banner or a shell-prompt heuristic (or an
// explicit ExpectedPrompt, when configured). Timing out without either
// verdict is treated as a successful login — a slow or silent shell is not
// a failure.
func (s *Session) awaitPromptOrFailure(ctx context.Context) error {
	deadline := time.Now().Add(s.cfg.LoginTimeout)
	var acc bytes.Buffer
	scratch := make([]byte, s.cfg.BufferSize)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, _ := s.Read(scratch, true, 100*time.Millisecond)
		if n > 0 {
			acc.Write(stripCRLF(scratch[:n]))
			text := acc.String()
			if strings.Contains(text, "Login incorrect") {
				return ErrFailedLogin
			}
			if s.cfg.ExpectedPrompt != "" {
				if strings.Contains(text, s.cfg.ExpectedPrompt) {
					return nil
				}
			} else if strings.ContainsAny(text, "$>#") {
				return nil
			}
		}
	}
	return nil
}
