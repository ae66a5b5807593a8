package radio

import (
	"fmt"
	"time"
)

// Defaults used by TEA5767Config.Validate.
const (
	// DefaultFrequency is the frequency tuned on Start when none is set.
	DefaultFrequency = 100.0

	// DefaultPollInterval is the delay between two status reads while searching.
	DefaultPollInterval = 10 * time.Millisecond
)

// TEA5767Config holds the additional configuration needed for TEA5767Driver.
type TEA5767Config struct {
	// Frequency in MHz tuned when the driver starts.
	Frequency float64

	// PollInterval is the delay between status reads during a search.
	PollInterval time.Duration

	// MaxPolls bounds the number of status reads during a search.
	// Zero keeps polling until the chip reports ready.
	MaxPolls int

	// IgnoreOutOfRange turns out of band frequencies into a silent no-op
	// instead of an ErrFrequencyOutOfRange error.
	IgnoreOutOfRange bool

	// Sleep blocks between polls. Defaults to time.Sleep.
	Sleep func(time.Duration)

	DebugMode bool
	DebugLog  func(format string, v ...interface{})
	Log       func(format string, v ...interface{})
}

// Validate ensures that our TEA5767Driver configuration is valid.
//
//goland:noinspection GoUnnecessarilyExportedIdentifiers
func (c *TEA5767Config) Validate() error {
	if c.Log == nil {
		panic("logging function cannot be nil. Use something like log.Printf or an empty function instead")
	}
	if c.DebugMode && c.DebugLog == nil {
		panic("cannot use debugging mode without configuring a DebugLog function, e.g. log.Printf")
	}

	if c.Frequency == 0 {
		c.Frequency = DefaultFrequency
	}

	if !InBand(c.Frequency) {
		return fmt.Errorf("%w: frequency %.2f MHz not in %.1f MHz ... %.1f MHz bounds",
			ErrInvalidConfig, c.Frequency, LowFrequency, HighFrequency)
	}

	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	} else if c.PollInterval < 0 {
		c.Log("Poll interval %s is not positive, defaulting to %s\n", c.PollInterval, DefaultPollInterval)
		c.PollInterval = DefaultPollInterval
	}

	if c.MaxPolls < 0 {
		return fmt.Errorf("%w: max polls %d is negative", ErrInvalidConfig, c.MaxPolls)
	}

	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}

	return nil
}
