package netspec

import (
	"errors"
	"fmt"

	"github.com/talostrading/netspec/netspecerrors"
)

// AddressClass is the class of address a clause expected when it failed
// with netspecerrors.ErrWrongAddressClass.
type AddressClass uint8

const (
	ClassNone AddressClass = iota
	ClassUnicast
	ClassMulticast
)

func (c AddressClass) String() string {
	switch c {
	case ClassUnicast:
		return "unicast"
	case ClassMulticast:
		return "multicast"
	default:
		return "none"
	}
}

// Error is returned by every failed resolution. Kind is one of the
// netspecerrors sentinels and errors.Is matches against it.
type Error struct {
	Kind  error
	Token string
	Msg   string

	// Expected is set for netspecerrors.ErrWrongAddressClass.
	Expected AddressClass

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v: %s token=%q", e.Kind, e.Msg, e.Token)
	if e.Expected != ClassNone {
		msg += fmt.Sprintf(" expected=%s", e.Expected)
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" err=%v", e.Err)
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, token, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Token: token, Msg: fmt.Sprintf(format, args...)}
}

func wrongClass(token string, expected AddressClass, format string, args ...interface{}) *Error {
	err := newError(netspecerrors.ErrWrongAddressClass, token, format, args...)
	err.Expected = expected
	return err
}

// wrapError classifies an error of a collaborator. An *Error passes
// through untouched.
func wrapError(token string, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	kind := netspecerrors.ErrSystem
	for _, k := range []error{
		netspecerrors.ErrNotFound,
		netspecerrors.ErrInvalidInput,
		netspecerrors.ErrAmbiguous,
		netspecerrors.ErrWrongAddressClass,
	} {
		if errors.Is(err, k) {
			kind = k
			break
		}
	}
	return &Error{Kind: kind, Token: token, Msg: fmt.Sprintf(format, args...), Err: err}
}
