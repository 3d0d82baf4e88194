// Package boot resolves kernel startup configuration. Pintos folds
// command-line parsing and option construction into one step at
// pintos_init, since boot args are the kernel's only configuration
// source; this package keeps that shape, modeled on eventloop's
// functional-options configuration layer (LoopOption /
// resolveLoopOptions), generalized from a fixed three-flag set to an
// open slice of Options plus a separate action token parsed from argv.
package boot

import (
	"fmt"

	"github.com/gothread/tinykernel/kerr"
)

// Config holds resolved boot configuration.
type Config struct {
	Help           bool
	Format         bool
	MLFQS          bool
	RandomSeed     uint64
	UserPageLimit  int
	RunThreadTests bool
	PowerOffDone   bool
}

// Option configures a Config.
type Option interface {
	apply(*Config) error
}

type optionFunc func(*Config) error

func (f optionFunc) apply(c *Config) error { return f(c) }

// WithMLFQS selects the multilevel feedback-queue scheduler in place of
// the default strict-priority scheduler.
func WithMLFQS() Option {
	return optionFunc(func(c *Config) error {
		c.MLFQS = true
		return nil
	})
}

// WithRandomSeed fixes the seed for the kernel's PRNG (random_init's
// equivalent), exposed at runtime via Kernel.Rand and consumed by
// workloads that want reproducible-but-varied timing, such as the
// threads-tests suite's alarm scenario.
func WithRandomSeed(seed uint64) Option {
	return optionFunc(func(c *Config) error {
		c.RandomSeed = seed
		return nil
	})
}

// WithHelp requests that the boot command line's usage text be printed
// and the kernel powered off without running any action.
func WithHelp() Option {
	return optionFunc(func(c *Config) error {
		c.Help = true
		return nil
	})
}

// WithFormat recognizes the -f flag. File-system formatting is out of
// scope for this kernel, so this is a no-op beyond letting the flag
// parse instead of being rejected as unknown.
func WithFormat() Option {
	return optionFunc(func(c *Config) error {
		c.Format = true
		return nil
	})
}

// WithUserPageLimit bounds the page allocator's capacity. n must be
// positive.
func WithUserPageLimit(n int) Option {
	return optionFunc(func(c *Config) error {
		if n <= 0 {
			return kerr.NewBootError(fmt.Sprintf("user page limit must be positive, got %d", n), nil)
		}
		c.UserPageLimit = n
		return nil
	})
}

// WithThreadsTests enables the threads-tests action (run_tests equivalent).
func WithThreadsTests() Option {
	return optionFunc(func(c *Config) error {
		c.RunThreadTests = true
		return nil
	})
}

// WithPowerOffWhenDone causes the kernel to shut down once its action
// completes, rather than idling forever.
func WithPowerOffWhenDone() Option {
	return optionFunc(func(c *Config) error {
		c.PowerOffDone = true
		return nil
	})
}

// Resolve applies opts to a default Config (strict-priority scheduler,
// a 4096-page limit, no fixed seed).
func Resolve(opts []Option) (*Config, error) {
	cfg := &Config{UserPageLimit: 4096}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
