// Package netspec resolves multicast network specifications of the form
// "interface;receive-groups;send-group" into interface-bound group
// requests for a multicast transport.
//
//	"eth0;239.192.0.1"                   receive and send on one group
//	"10.6.28.0/24;239.192.0.1,239.192.0.2;239.192.0.3"
//	";ff08::1"                           any interface
//	""                                   the default group of the node's family
//
// Interfaces may be given by name, address, network, networks(5) name or
// host name; groups by address, networks(5) name or host name.
package netspec

import (
	"log/slog"

	"github.com/talostrading/netspec/netdb"
	"github.com/talostrading/netspec/netspecerrors"
	"github.com/talostrading/netspec/netspecopts"
	"github.com/talostrading/netspec/sockaddr"
)

// Resolver resolves network specifications against a name database and an
// interface table. It holds no per-resolution state and is safe for
// concurrent use.
type Resolver struct {
	family sockaddr.Family
	log    *slog.Logger
	names  netdb.Resolver
	table  netdb.InterfaceTable
}

func NewResolver(opts ...netspecopts.Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		switch opt.Type() {
		case netspecopts.TypeFamily:
			r.family, _ = opt.Value().(sockaddr.Family)
		case netspecopts.TypeLogger:
			r.log, _ = opt.Value().(*slog.Logger)
		case netspecopts.TypeResolver:
			r.names, _ = opt.Value().(netdb.Resolver)
		case netspecopts.TypeInterfaces:
			r.table, _ = opt.Value().(netdb.InterfaceTable)
		}
	}

	if r.log == nil {
		r.log = slog.Default()
	}
	if r.table == nil {
		r.table = netdb.SystemInterfaces{}
	}
	if r.names == nil {
		r.names = &netdb.System{Table: r.table}
	}
	return r
}

// Resolve resolves text with a resolver built from opts.
func Resolve(text string, family sockaddr.Family, opts ...netspecopts.Option) (Result, error) {
	return NewResolver(opts...).Resolve(text, family)
}

// Resolve resolves a network specification. family pins the address family
// of every binding; with sockaddr.Unspec it is taken from the Family
// option, then inferred from the groups, the interface and finally the
// node's own address.
//
// Resolution is all or nothing: on error the Result is empty and the error
// is an *Error.
func (r *Resolver) Resolve(text string, family sockaddr.Family) (Result, error) {
	if family == sockaddr.Unspec {
		family = r.family
	}
	r.log.Debug("resolving network specification", "text", text, "family", family)

	res := &resolution{r: r, family: family}
	if err := res.run(text); err != nil {
		r.log.Debug("network specification failed", "text", text, "err", err)
		return Result{}, err
	}
	return Result{Recv: res.recv, Send: res.send}, nil
}

// ResolveInto resolves text into the caller's receive buffer. It returns
// the number of receive requests written and the send request. A
// specification with more receive groups than len(recv) fails with
// netspecerrors.ErrInvalidInput.
func (r *Resolver) ResolveInto(text string, family sockaddr.Family, recv []GroupSourceReq) (n int, send GroupSourceReq, err error) {
	if len(recv) == 0 {
		return 0, GroupSourceReq{}, newError(netspecerrors.ErrInvalidInput, text, "empty receive buffer")
	}

	result, err := r.Resolve(text, family)
	if err != nil {
		return 0, GroupSourceReq{}, err
	}
	if len(result.Recv) > len(recv) {
		return 0, GroupSourceReq{}, newError(
			netspecerrors.ErrInvalidInput, text,
			"receive groups=%d exceed buffer=%d", len(result.Recv), len(recv))
	}
	n = copy(recv, result.Recv)
	return n, result.Send[0], nil
}

// ResolveInto is Resolver.ResolveInto with a resolver built from opts.
func ResolveInto(text string, family sockaddr.Family, recv []GroupSourceReq, opts ...netspecopts.Option) (int, GroupSourceReq, error) {
	return NewResolver(opts...).ResolveInto(text, family, recv)
}

// LogInterfaces logs every entry of the interface table at info level.
func (r *Resolver) LogInterfaces() error {
	iffs, err := r.table.Interfaces()
	if err != nil {
		return wrapError("", err, "cannot list interfaces")
	}
	for _, iff := range iffs {
		r.log.Info("interface",
			"name", iff.Name,
			"index", iff.Index,
			"family", iff.Addr.Family(),
			"addr", iff.Addr,
			"up", iff.Flags&sockaddr.FlagUp != 0,
			"loopback", iff.Flags&sockaddr.FlagLoopback != 0,
			"broadcast", iff.Flags&sockaddr.FlagBroadcast != 0,
			"multicast", iff.Flags&sockaddr.FlagMulticast != 0)
	}
	return nil
}

// LogInterfaces logs the system interface table to slog.Default().
func LogInterfaces() error {
	return NewResolver().LogInterfaces()
}
