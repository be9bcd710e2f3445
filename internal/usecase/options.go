package usecase

import (
	"io"
	"log/slog"
)

type common struct {
	log *slog.Logger
}

// Option configures any configuration use case.
type Option func(*common)

func WithLogger(l *slog.Logger) Option {
	return func(c *common) {
		if l != nil {
			c.log = l
		}
	}
}

func newCommon(opts []Option) common {
	c := common{log: slog.New(slog.NewJSONHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
