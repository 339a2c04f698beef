package netspec

import (
	"errors"
	"strings"

	"github.com/talostrading/netspec/netspecerrors"
	"github.com/talostrading/netspec/sockaddr"
)

type state uint8

const (
	stateInterface state = iota
	stateReceive
	stateSend
	stateDone
)

func (s state) String() string {
	switch s {
	case stateInterface:
		return "interface"
	case stateReceive:
		return "receive"
	case stateSend:
		return "send"
	default:
		return "done"
	}
}

type outcome uint8

const (
	outcomeResolved  outcome = iota
	outcomeDeferred          // ambiguous interface, settled once the family is known
	outcomeMulticast         // interface field holds a group
)

type transitionKey struct {
	from state
	on   outcome
}

type transition struct {
	to state

	// replay feeds the same field to the next state.
	replay bool
}

// Any pair missing from the table is fatal.
var transitions = map[transitionKey]transition{
	{stateInterface, outcomeResolved}:  {to: stateReceive},
	{stateInterface, outcomeDeferred}:  {to: stateReceive},
	{stateInterface, outcomeMulticast}: {to: stateReceive, replay: true},
	{stateReceive, outcomeResolved}:    {to: stateSend},
	{stateSend, outcomeResolved}:       {to: stateDone},
}

const maxFields = 3

// resolution is the state of one Resolve call. Nothing in it outlives the
// call unless resolution succeeds.
type resolution struct {
	r *Resolver

	// family is pinned by the caller or by the first receive group.
	family sockaddr.Family

	ifaceToken string // empty when no interface was given
	iface      InterfaceSpec
	deferred   bool

	recv []GroupSourceReq
	send []GroupSourceReq
}

func (res *resolution) run(text string) error {
	if err := validate(text, res.family); err != nil {
		return err
	}

	fields := strings.Split(text, ";")
	if len(fields) == maxFields+1 && fields[maxFields] == "" {
		fields = fields[:maxFields] // trailing separator
	}
	if len(fields) > maxFields {
		return newError(netspecerrors.ErrInvalidInput, text, "fields=%d exceed %d", len(fields), maxFields)
	}
	for len(fields) < maxFields {
		fields = append(fields, "")
	}

	var (
		current = stateInterface
		i       = 0
	)
	for current != stateDone {
		field := fields[i]

		var (
			o   outcome
			err error
		)
		switch current {
		case stateInterface:
			o, err = res.interfaceEntity(field)
		case stateReceive:
			o, err = res.receiveEntity(field)
		case stateSend:
			o, err = res.sendEntity(field)
		}
		if err != nil {
			return err
		}

		t, ok := transitions[transitionKey{current, o}]
		if !ok {
			return newError(netspecerrors.ErrInvalidInput, field, "unexpected outcome in %s field", current)
		}
		res.r.log.Debug("entity resolved", "field", current, "text", field, "next", t.to)

		current = t.to
		if !t.replay {
			i++
		}
	}

	// A replayed interface field leaves the last field unread.
	for _, field := range fields[i:] {
		if field != "" {
			return newError(netspecerrors.ErrInvalidInput, field, "field after the send group")
		}
	}
	return nil
}

func (res *resolution) interfaceEntity(field string) (outcome, error) {
	if field == "" {
		res.r.log.Debug("no interface given")
		return outcomeResolved, nil
	}

	tokens, err := splitTokens(field)
	if err != nil {
		return 0, err
	}

	// The first token decides whether the field is a group list.
	token := tokens[0]
	spec, err := res.r.resolveInterface(token, res.family)
	if errors.Is(err, netspecerrors.ErrWrongAddressClass) {
		res.r.log.Debug("interface field holds a group, reading it as the receive field", "token", token)
		return outcomeMulticast, nil
	}
	if len(tokens) > 1 {
		return 0, newError(netspecerrors.ErrInvalidInput, field, "interfaces=%d, only one is supported", len(tokens))
	}

	switch {
	case err == nil:
		res.ifaceToken, res.iface = token, spec
		return outcomeResolved, nil
	case errors.Is(err, netspecerrors.ErrAmbiguous):
		res.r.log.Debug("interface is ambiguous, deferring until the family is known", "token", token)
		res.ifaceToken, res.iface, res.deferred = token, spec, true
		return outcomeDeferred, nil
	}
	return 0, err
}

func (res *resolution) receiveEntity(field string) (outcome, error) {
	if field == "" {
		family, err := res.inferFamily()
		if err != nil {
			return 0, err
		}
		res.family = family
		iface, err := res.bindInterface(family)
		if err != nil {
			return 0, err
		}
		group := DefaultGroup(family)
		res.r.log.Debug("assigning default receive group", "group", group)
		res.recv = append(res.recv, bindGroup(iface, group))
		return outcomeResolved, nil
	}

	tokens, err := splitTokens(field)
	if err != nil {
		return 0, err
	}
	groups := make([]sockaddr.SockAddr, 0, len(tokens))
	for _, token := range tokens {
		group, err := res.r.resolveGroup(token, res.family, res.ifaceFamily())
		if err != nil {
			return 0, err
		}
		if res.family == sockaddr.Unspec {
			res.family = group.Family()
		}
		groups = append(groups, group)
	}

	iface, err := res.bindInterface(res.family)
	if err != nil {
		return 0, err
	}
	for _, group := range groups {
		res.recv = append(res.recv, bindGroup(iface, group))
	}
	return outcomeResolved, nil
}

func (res *resolution) sendEntity(field string) (outcome, error) {
	if field == "" {
		if len(res.recv) > 1 {
			return 0, newError(
				netspecerrors.ErrInvalidInput, field,
				"send group required with receive groups=%d", len(res.recv))
		}
		res.r.log.Debug("send group defaults to the receive group", "group", res.recv[0].Group)
		res.send = append(res.send, res.recv[0])
		return outcomeResolved, nil
	}

	tokens, err := splitTokens(field)
	if err != nil {
		return 0, err
	}
	if len(tokens) > 1 {
		return 0, newError(netspecerrors.ErrInvalidInput, field, "send groups=%d, only one is supported", len(tokens))
	}

	group, err := res.r.resolveGroup(tokens[0], res.family, res.ifaceFamily())
	if err != nil {
		return 0, err
	}
	iface, err := res.bindInterface(group.Family())
	if err != nil {
		return 0, err
	}
	res.send = append(res.send, bindGroup(iface, group))
	return outcomeResolved, nil
}

// splitTokens splits a clause on commas. Empty tokens are invalid.
func splitTokens(field string) ([]string, error) {
	tokens := strings.Split(field, ",")
	for _, token := range tokens {
		if token == "" {
			return nil, newError(netspecerrors.ErrInvalidInput, field, "empty token")
		}
	}
	return tokens, nil
}

// validate checks the character classes of a specification: host names,
// IPv4 and IPv6 literals and networks, separators. '%' and '_' of IPv6
// zones are refused once the family is pinned.
func validate(text string, family sockaddr.Family) error {
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '.', c == '/', c == ':', c == '[', c == ']':
		case c == ',', c == ';':
		case (c == '%' || c == '_') && family == sockaddr.Unspec:
		default:
			return newError(netspecerrors.ErrInvalidInput, text, "invalid character=%q at offset=%d", c, i)
		}
	}
	return nil
}
