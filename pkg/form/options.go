package form

import (
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for dropped submissions and collaborator
// failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the clock used to stamp notices.
func WithClock(clk clock.PassiveClock) Option {
	return func(c *Controller) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithNoticeTTL sets how long notices stay visible.
func WithNoticeTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		if ttl > 0 {
			c.noticeTTL = ttl
		}
	}
}

// WithCreateMode puts the form in create mode. Submit then requires a new
// name that is not one of existing.
func WithCreateMode(existing []string) Option {
	return func(c *Controller) {
		c.create = true
		c.existing = make(map[string]struct{}, len(existing))
		for _, name := range existing {
			c.existing[name] = struct{}{}
		}
	}
}

// WithName sets the name of the entry being edited. It is passed to the
// upserter outside create mode.
func WithName(name string) Option {
	return func(c *Controller) {
		c.name = name
	}
}

// WithRemover enables the remove workflow in edit mode.
func WithRemover(remover Remover) Option {
	return func(c *Controller) {
		if remover != nil {
			c.remover = remover
		}
	}
}
