package netspecopts

import "log/slog"

type optionLogger struct {
	l *slog.Logger
}

// Logger sets the logger warnings and resolution traces go to,
// slog.Default() otherwise.
func Logger(l *slog.Logger) Option {
	return &optionLogger{
		l: l,
	}
}

func (o *optionLogger) Type() OptionType {
	return TypeLogger
}

func (o *optionLogger) Value() interface{} {
	return o.l
}
