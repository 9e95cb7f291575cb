package rtelnet

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/chronicle-d/relic-telnet/internal/inbound"
	"github.com/chronicle-d/relic-telnet/internal/ledger"
	"github.com/chronicle-d/relic-telnet/internal/observability"
	"github.com/chronicle-d/relic-telnet/internal/transport"
)

// Session is a Telnet client session: a TCP connection, a background
// reader that demultiplexes IAC negotiation from user data, and the login
// and command-execution sub-protocols layered on top of it.
type Session struct {
	cfg Config

	transport *transport.Transport
	inbound   *inbound.Buffer
	logger    *zap.Logger
	ledger    *ledger.Ledger

	connected  atomic.Bool
	negotiated atomic.Bool
	loggedIn   atomic.Bool
	stop       atomic.Bool

	binarySend    atomic.Bool
	binaryReceive atomic.Bool

	errMu sync.Mutex
	bgErr error

	readerWG  sync.WaitGroup
	closeOnce sync.Once
}

// NewSession validates cfg and returns a Session ready for Connect.
func NewSession(cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		var err error
		logger, err = observability.NewLoggerForVerbosity(cfg.Verbosity)
		if err != nil {
			return nil, err
		}
	}

	return &Session{
		cfg:     cfg,
		inbound: inbound.New(),
		logger:  logger,
		ledger:  &ledger.Ledger{},
	}, nil
}

// Connect resolves the address, dials the socket, starts the background
// reader, waits for the first negotiation reply, and runs Login.
func (s *Session) Connect(ctx context.Context) error {
	if err := s.dialAndNegotiate(ctx); err != nil {
		return s.ledger.Push(err)
	}

	if err := s.login(ctx); err != nil {
		return err
	}

	s.logger.Info("logged in", zap.String("username", s.cfg.Username))
	return nil
}

// dialAndNegotiate is the pre-login half of Connect: resolve, dial, start
// the reader, and wait for the first negotiation reply. Split out from
// Connect so FlushBanner's "drain the unprompted MOTD" use case can be
// exercised without an account to log into.
func (s *Session) dialAndNegotiate(ctx context.Context) error {
	addr, err := transport.Resolve(s.cfg.Address, s.cfg.Port, s.cfg.Family)
	if err != nil {
		return wrapErr(CodeAddressNotValid, "resolving address", err)
	}

	tr, err := transport.Dial(ctx, addr)
	if err != nil {
		return wrapErr(CodeNotConnected, "dialing", err)
	}
	s.transport = tr
	s.connected.Store(true)
	s.logger.Info("connected", zap.String("addr", addr.String()))

	s.readerWG.Add(1)
	go s.runReader()

	return s.waitNegotiated(ctx)
}

func (s *Session) waitNegotiated(ctx context.Context) error {
	deadline := time.Now().Add(s.cfg.NegotiationTimeout)
	for time.Now().Before(deadline) {
		if s.negotiated.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return wrapErr(CodeNegotiationTimeout, "waiting for negotiation", ctx.Err())
		default:
		}
		time.Sleep(10 * time.Millisecond)
	}
	return ErrNegotiationTimeout
}

// Read copies up to len(out) bytes from the inbound buffer. With peek=false
// the copied bytes are consumed; with peek=true they remain for a later
// Read. It polls for up to timeout before returning 0 bytes.
func (s *Session) Read(out []byte, peek bool, timeout time.Duration) (int, error) {
	if !s.connected.Load() {
		return 0, ErrNotConnected
	}
	return s.inbound.Read(out, peek, timeout), nil
}

// Close stops the background reader and closes the transport. Idempotent.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.stop.Store(true)
		s.readerWG.Wait()
		if s.transport != nil {
			err = s.transport.Close()
		}
		s.connected.Store(false)
	})
	return err
}

// IsConnected reports whether the TCP connection has been dialed and Close
// has not yet been called. It stays true when Connect dials successfully
// but then fails during negotiation or login.
func (s *Session) IsConnected() bool { return s.connected.Load() }

// IsNegotiated reports whether at least one IAC option negotiation has
// completed.
func (s *Session) IsNegotiated() bool { return s.negotiated.Load() }

// IsLoggedIn reports whether the login sub-protocol has completed.
func (s *Session) IsLoggedIn() bool { return s.loggedIn.Load() }

// BackgroundError returns the error that stopped the background reader, or
// nil if it is still running (or was stopped by Close).
func (s *Session) BackgroundError() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.bgErr
}

// HasBackgroundError reports whether the background reader has failed.
func (s *Session) HasBackgroundError() bool { return s.BackgroundError() != nil }

// ErrorStack renders every error this session has pushed to its ledger,
// oldest first.
func (s *Session) ErrorStack() string { return s.ledger.Render() }

func (s *Session) latchBackgroundError(err error) {
	s.errMu.Lock()
	s.bgErr = err
	s.errMu.Unlock()
	s.stop.Store(true)
	_ = s.ledger.Push(err)
	s.logger.Error("background reader stopped", zap.Error(err))
}

func (s *Session) sendLine(line string) error {
	return s.transport.SendText(line+"\n", s.binarySend.Load() && s.binaryReceive.Load())
}
