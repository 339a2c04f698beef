package netspecopts

import "github.com/talostrading/netspec/netdb"

type optionResolver struct {
	r netdb.Resolver
}

// Resolver replaces the system name resolver.
func Resolver(r netdb.Resolver) Option {
	return &optionResolver{
		r: r,
	}
}

func (o *optionResolver) Type() OptionType {
	return TypeResolver
}

func (o *optionResolver) Value() interface{} {
	return o.r
}

type optionInterfaces struct {
	t netdb.InterfaceTable
}

// Interfaces replaces the system interface table.
func Interfaces(t netdb.InterfaceTable) Option {
	return &optionInterfaces{
		t: t,
	}
}

func (o *optionInterfaces) Type() OptionType {
	return TypeInterfaces
}

func (o *optionInterfaces) Value() interface{} {
	return o.t
}
