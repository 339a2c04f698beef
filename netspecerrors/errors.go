package netspecerrors

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")       // malformed specification, token or character
	ErrNotFound          = errors.New("not found")           // no device, name or address matched
	ErrAmbiguous         = errors.New("ambiguous")           // more than one candidate where exactly one was required
	ErrWrongAddressClass = errors.New("wrong address class") // multicast where unicast was expected, or the reverse
	ErrSystem            = errors.New("system error")        // the name resolver or the OS failed
)
