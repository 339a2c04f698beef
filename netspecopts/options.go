package netspecopts

import "fmt"

type OptionType uint8

type Option interface {
	Type() OptionType
	Value() interface{}
}

const (
	TypeFamily OptionType = iota
	TypeLogger
	TypeResolver
	TypeInterfaces
	MaxOption
)

func (t OptionType) String() string {
	switch t {
	case TypeFamily:
		return "family"
	case TypeLogger:
		return "logger"
	case TypeResolver:
		return "resolver"
	case TypeInterfaces:
		return "interfaces"
	default:
		panic(fmt.Errorf("invalid option %d", t))
	}
}

func AddOption(add Option, opts []Option) []Option {
	for i, cur := range opts {
		if cur.Type() == add.Type() {
			opts[i] = add
			return opts
		}
	}
	opts = append(opts, add)
	return opts
}

func DelOption(del OptionType, opts []Option) []Option {
	for i := 0; i < len(opts); i++ {
		if opts[i].Type() == del {
			return append(opts[:i], opts[i+1:]...)
		}
	}
	return opts
}
