package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type Option func(*zap.Config)

func WithLevel(level string) Option {
	return func(c *zap.Config) {
		ll := zapcore.InfoLevel
		_ = ll.Set(level)
		c.Level.SetLevel(ll)
	}
}

func WithFormat(format string) Option {
	return func(c *zap.Config) {
		switch format {
		case FormatConsole:
			c.Encoding = FormatConsole
		default:
			c.Encoding = FormatJSON
		}
	}
}

// New builds the process logger from the production config.
func New(opts ...Option) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Sampling = nil
	zc.DisableStacktrace = true

	for _, opt := range opts {
		opt(&zc)
	}

	return zc.Build()
}
