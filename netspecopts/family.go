package netspecopts

import "github.com/talostrading/netspec/sockaddr"

type optionFamily struct {
	v sockaddr.Family
}

// Family pins the address family of every resolved address. It takes the
// place of the family argument of Resolve when that is sockaddr.Unspec.
func Family(v sockaddr.Family) Option {
	return &optionFamily{
		v: v,
	}
}

func (o *optionFamily) Type() OptionType {
	return TypeFamily
}

func (o *optionFamily) Value() interface{} {
	return o.v
}
