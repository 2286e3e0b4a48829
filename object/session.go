package object

import (
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/objbridge/capi"
	"github.com/wippyai/objbridge/errors"
)

// Session is the proof that the caller may touch foreign objects. Every
// handle belongs to the session it was created under and must not be used
// after that session is closed.
//
// A Session is not safe for concurrent use. Sessions on a runtime that
// implements capi.Locker hold its lock from Acquire until Close.
type Session struct {
	api    capi.API
	locker capi.Locker
	live   atomic.Int64
	closed atomic.Bool
}

// Acquire opens a session on api, taking the runtime lock when there is one.
func Acquire(api capi.API) *Session {
	if api == nil {
		fatal(errors.NilPointer(errors.PhaseContract, "runtime"))
	}
	s := &Session{api: api}
	if l, ok := api.(capi.Locker); ok {
		l.Lock()
		s.locker = l
	}
	return s
}

// Close ends the session and releases the runtime lock. Handles still
// owned at this point are leaked into the runtime and logged.
func (s *Session) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	if n := s.live.Load(); n > 0 {
		Logger().Warn("session closed with live handles", zap.Int64("live", n))
	}
	if s.locker != nil {
		s.locker.Unlock()
	}
}

// Live returns the number of handles owned under this session that have
// not been released or stolen.
func (s *Session) Live() int {
	return int(s.live.Load())
}

// API returns the capability surface of the session. Calls made through it
// bypass handle bookkeeping.
func (s *Session) API() capi.API {
	return s.check()
}

func (s *Session) check() capi.API {
	if s == nil {
		fatal(errors.NilPointer(errors.PhaseContract, "session"))
	}
	if s.closed.Load() {
		fatal(errors.New(errors.PhaseContract, errors.KindSessionClosed).
			Detail("session used after Close").
			Build())
	}
	return s.api
}

func (s *Session) String() string {
	return fmt.Sprintf("Session{live: %d, closed: %t}", s.live.Load(), s.closed.Load())
}

// ContractViolation is the panic value for misuse that the foreign API
// treats as undefined behavior: out-of-range indices, null handles, use of
// released handles.
type ContractViolation struct {
	Err *errors.Error
}

func (c *ContractViolation) Error() string {
	return "contract violation: " + c.Err.Error()
}

func (c *ContractViolation) Unwrap() error {
	return c.Err
}

func fatal(err *errors.Error) {
	Logger().Error("contract violation",
		zap.String("phase", string(err.Phase)),
		zap.String("kind", string(err.Kind)),
		zap.String("detail", err.Detail))
	panic(&ContractViolation{Err: err})
}

// cstr rejects strings that cannot cross as C strings.
func cstr(what, s string) string {
	if strings.IndexByte(s, 0) >= 0 {
		fatal(errors.New(errors.PhaseContract, errors.KindInvalidInput).
			Path(what).
			Detail("embedded NUL in %q", s).
			Build())
	}
	return s
}
