package rtelnet

import (
	"bufio"

	"go.uber.org/zap"

	"github.com/chronicle-d/relic-telnet/internal/iacproto"
)

// runReader is the background goroutine spawned by Connect. It is the only
// code path that reads from the transport after Connect returns: it
// demultiplexes IAC negotiation from user data, answers negotiations
// according to the policy table, and appends user bytes to the inbound
// buffer. It never restarts once stopped — a failure here is terminal and
// surfaces through BackgroundError.
func (s *Session) runReader() {
	defer s.readerWG.Done()

	r := s.transport.Reader()
	for !s.stop.Load() {
		s.transport.SetReadDeadlineSlice()
		b, err := r.ReadByte()
		if err != nil {
			if isTimeout(err) {
				continue
			}
			s.latchBackgroundError(wrapErr(CodeConnectionClosed, "reader", err))
			return
		}

		if b != iacproto.IAC {
			s.inbound.WriteByte(b)
			if s.cfg.Verbosity >= 4 {
				s.logger.Debug("byte received", zap.Uint8("byte", b))
			}
			continue
		}

		if err := s.handleIAC(r); err != nil {
			s.latchBackgroundError(err)
			return
		}
	}
}

func (s *Session) handleIAC(r *bufio.Reader) error {
	cmd, err := r.ReadByte()
	if err != nil {
		return wrapErr(CodeConnectionClosed, "reading IAC command", err)
	}

	switch cmd {
	case iacproto.WILL, iacproto.WONT, iacproto.DO, iacproto.DONT:
		opt, err := r.ReadByte()
		if err != nil {
			return wrapErr(CodeConnectionClosed, "reading IAC option", err)
		}

		decision := iacproto.Decide(cmd, opt)
		if s.cfg.Verbosity >= 4 {
			s.logger.Debug("negotiation",
				zap.String("cmd", iacproto.CommandName(cmd)),
				zap.String("option", iacproto.OptionName(opt)),
			)
		}

		if decision.SetBinarySend {
			s.binarySend.Store(true)
		}
		if decision.SetBinaryReceive {
			s.binaryReceive.Store(true)
		}
		if decision.Reply != nil {
			if err := s.transport.SendRaw(decision.Reply); err != nil {
				return wrapErr(CodeFailedSend, "sending negotiation reply", err)
			}
		}
		s.negotiated.Store(true)
		return nil

	case iacproto.SB:
		if err := iacproto.DrainSubnegotiation(r); err != nil {
			return wrapErr(CodeConnectionClosed, "draining sub-negotiation", err)
		}
		return nil

	case iacproto.IAC:
		// Escaped IAC: a literal 0xFF in the data stream.
		s.inbound.WriteByte(iacproto.IAC)
		return nil

	default:
		// NOP, GA, and other zero-argument commands: nothing to do.
		return nil
	}
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	te, ok := err.(timeouter)
	return ok && te.Timeout()
}
