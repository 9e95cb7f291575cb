package rtelnet

import "fmt"

// Numeric error codes, grouped by the concern that raises them. 200-209 is
// library-logic failures, 210-219 is transport failures, 300-319 is
// protocol/session failures.
const (
	CodeCantFindExpected = 200

	CodeAddressNotValid  = 210
	CodeCannotAllocateFD = 211
	CodeConnectionClosed = 212
	CodeNotConnected     = 213
	CodeFailedSend       = 214
	CodePartialSend      = 215

	CodeNotNegotiated      = 300
	CodeUsernameNotSet     = 301
	CodePasswordNotSet     = 302
	CodeNotLoggedIn        = 303
	CodeFailedLogin        = 304
	CodeNegotiationTimeout = 305
)

// CodedError pairs a Go error with one of the numeric codes above, and
// optionally wraps a lower-level error so errors.Is/As still reaches it.
type CodedError struct {
	code int
	msg  string
	err  error
}

func (e *CodedError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Code returns the numeric error code, for ledger frames and callers that
// want to branch on the C-style error ranges.
func (e *CodedError) Code() int { return e.code }

// Unwrap exposes the wrapped lower-level error, if any.
func (e *CodedError) Unwrap() error { return e.err }

// Is reports whether target is a CodedError with the same code, so an
// error built with wrapErr still matches its sentinel under errors.Is.
func (e *CodedError) Is(target error) bool {
	t, ok := target.(*CodedError)
	return ok && t.code == e.code
}

func newErr(code int, msg string) error {
	return &CodedError{code: code, msg: msg}
}

func wrapErr(code int, msg string, err error) error {
	return &CodedError{code: code, msg: msg, err: err}
}

// Library-logic errors.
var ErrCantFindExpected = newErr(CodeCantFindExpected, "rtelnet: could not find expected text before timeout")

// Transport errors.
var (
	ErrAddressNotValid  = newErr(CodeAddressNotValid, "rtelnet: address is not a valid IPv4 literal")
	ErrCannotAllocateFD = newErr(CodeCannotAllocateFD, "rtelnet: cannot allocate a socket")
	ErrConnectionClosed = newErr(CodeConnectionClosed, "rtelnet: connection closed by peer")
	ErrNotConnected     = newErr(CodeNotConnected, "rtelnet: operation requires an established connection")
	ErrFailedSend       = newErr(CodeFailedSend, "rtelnet: send transferred zero bytes")
	ErrPartialSend      = newErr(CodePartialSend, "rtelnet: send transferred fewer bytes than requested")
)

// Protocol/session errors.
var (
	ErrNotNegotiated      = newErr(CodeNotNegotiated, "rtelnet: option negotiation has not completed")
	ErrUsernameNotSet     = newErr(CodeUsernameNotSet, "rtelnet: username is required before login")
	ErrPasswordNotSet     = newErr(CodePasswordNotSet, "rtelnet: password is required before login")
	ErrNotLoggedIn        = newErr(CodeNotLoggedIn, "rtelnet: session is not logged in")
	ErrFailedLogin        = newErr(CodeFailedLogin, "rtelnet: server reported \"Login incorrect\"")
	ErrNegotiationTimeout = newErr(CodeNegotiationTimeout, "rtelnet: timed out waiting for option negotiation")
)
