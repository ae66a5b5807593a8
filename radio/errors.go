package radio

import "errors"

var (
	// ErrFrequencyOutOfRange is returned when a frequency is outside of
	// the LowFrequency ... HighFrequency band.
	ErrFrequencyOutOfRange = errors.New("frequency out of the 87.5 MHz ... 108 MHz band")

	// ErrNotStarted is returned when the tuner is used before it has a bus.
	ErrNotStarted = errors.New("tuner has no bus, call Start() first")

	// ErrShortRead is returned when the device sent fewer bytes than requested.
	ErrShortRead = errors.New("short read from the i2c bus")

	// ErrShortWrite is returned when the bus accepted fewer bytes than sent.
	ErrShortWrite = errors.New("short write to the i2c bus")

	// ErrSearchTimeout is returned when the ready flag was not set
	// within the configured number of polls.
	ErrSearchTimeout = errors.New("search did not complete")

	// ErrInvalidConfig is returned by TEA5767Config.Validate.
	ErrInvalidConfig = errors.New("invalid TEA5767 configuration")
)
