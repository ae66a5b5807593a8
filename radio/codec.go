package radio

import (
	"fmt"
	"math"
)

// Band and PLL constants for high side injection with a 32.768 kHz crystal.
const (
	// LowFrequency is the bottom of the band, in MHz.
	LowFrequency = 87.5

	// HighFrequency is the top of the band, in MHz.
	HighFrequency = 108.0

	// StepFrequency is the tuning step, in MHz.
	StepFrequency = 0.1

	crystalHz       = 32768
	intermediateHz  = 225000
	pllRefMultiple  = 4
	divisorMask     = 0x3FFF
	quantizationMHz = 10 // 1 / 100 kHz
)

// InBand reports whether freq, in MHz, can be tuned.
func InBand(freq float64) bool {
	return freq >= LowFrequency && freq <= HighFrequency
}

// Divisor computes the 14 bit PLL word for freq, in MHz.
// It does not check the band limits, words outside 0..0x3FFF are clamped.
func Divisor(freq float64) uint16 {
	d := math.Round((pllRefMultiple * (freq*1000000 + intermediateHz)) / crystalHz)
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	if d > divisorMask {
		return divisorMask
	}
	return uint16(d)
}

// EncodeFrequency returns the two PLL bytes the chip expects for freq.
func EncodeFrequency(freq float64) (high, low byte, err error) {
	if !InBand(freq) {
		return 0, 0, fmt.Errorf("%w: %.2f MHz", ErrFrequencyOutOfRange, freq)
	}

	d := Divisor(freq)
	return byte(d >> 8), byte(d & 0xFF), nil
}

// DecodeFrequency converts a PLL word back into MHz, rounded to 100 kHz.
func DecodeFrequency(divisor uint16) float64 {
	hz := float64(divisor&divisorMask)*crystalHz/pllRefMultiple - intermediateHz
	return math.Floor(hz/100000+0.5) / quantizationMHz
}

// quantize snaps freq to the 100 kHz grid so that ±0.1 arithmetic does
// not drift past the band edges.
func quantize(freq float64) float64 {
	return math.Round(freq*quantizationMHz) / quantizationMHz
}
