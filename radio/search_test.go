package radio

import (
	"errors"
	"testing"
	"time"

	"gobot.io/x/gobot/gobottest"
)

func TestStepUpWraps(t *testing.T) {
	bus := &fakeBus{}
	tuner := newTestTuner(t, bus)
	gobottest.Assert(t, tuner.Init(107.9), nil)

	gobottest.Assert(t, tuner.StepUp(), nil)
	gobottest.Assert(t, tuner.Frequency(), HighFrequency)

	gobottest.Assert(t, tuner.StepUp(), nil)
	gobottest.Assert(t, tuner.Frequency(), LowFrequency)

	high, low, _ := EncodeFrequency(LowFrequency)
	gobottest.Assert(t, bus.lastWrite()[:2], []byte{high, low})
}

func TestStepDownWraps(t *testing.T) {
	bus := &fakeBus{}
	tuner := newTestTuner(t, bus)
	gobottest.Assert(t, tuner.Init(87.6), nil)

	gobottest.Assert(t, tuner.StepDown(), nil)
	gobottest.Assert(t, tuner.Frequency(), LowFrequency)

	gobottest.Assert(t, tuner.StepDown(), nil)
	gobottest.Assert(t, tuner.Frequency(), HighFrequency)
}

func TestStepFromUntunedChip(t *testing.T) {
	bus := &fakeBus{reads: [][]byte{
		{0x80, 0x00, 0x00, 0x00, 0x00},
		{0x80, 0x00, 0x00, 0x00, 0x00},
	}}
	tuner := newTestTuner(t, bus)

	// A zero divisor reads back below the band.
	gobottest.Assert(t, tuner.Read(), nil)
	gobottest.Assert(t, InBand(tuner.Frequency()), false)
	gobottest.Assert(t, tuner.StepUp(), nil)
	gobottest.Assert(t, tuner.Frequency(), LowFrequency)

	gobottest.Assert(t, tuner.Read(), nil)
	gobottest.Assert(t, tuner.StepDown(), nil)
	gobottest.Assert(t, tuner.Frequency(), HighFrequency)
}

func TestStepAcrossBand(t *testing.T) {
	bus := &fakeBus{}
	tuner := newTestTuner(t, bus)
	gobottest.Assert(t, tuner.Init(LowFrequency), nil)

	// 205 steps up reach the top of the band, one more wraps.
	for i := 0; i < 205; i++ {
		gobottest.Assert(t, tuner.StepUp(), nil)
	}
	gobottest.Assert(t, tuner.Frequency(), HighFrequency)

	gobottest.Assert(t, tuner.StepUp(), nil)
	gobottest.Assert(t, tuner.Frequency(), LowFrequency)

	// Stepping never reads the chip.
	gobottest.Assert(t, len(bus.addrs), len(bus.writes))
}

func TestStepKeepsMute(t *testing.T) {
	bus := &fakeBus{}
	tuner := newTestTuner(t, bus)
	gobottest.Assert(t, tuner.Init(98.5), nil)
	gobottest.Assert(t, tuner.SetMute(), nil)

	gobottest.Assert(t, tuner.StepUp(), nil)
	gobottest.Assert(t, bus.lastWrite()[0]&W1_MUTE, byte(W1_MUTE))
}

func TestSearchUpLocks(t *testing.T) {
	bus := &fakeBus{reads: [][]byte{
		statusImage(98.5, true, false, true, 9),
		statusImage(99.2, false, false, false, 2),
		statusImage(101.3, true, false, true, 11),
	}}
	tuner := newTestTuner(t, bus)

	res, err := tuner.SearchUp()
	gobottest.Assert(t, err, nil)
	gobottest.Assert(t, res, SearchResult{State: Locked, Frequency: 101.3, Polls: 2})

	d986, d1013 := Divisor(98.6), Divisor(101.3)
	gobottest.Assert(t, bus.writes, [][]byte{
		// one step up, not muted yet
		{byte(d986 >> 8), byte(d986), 0xF0, 0x10, 0x00},
		// mute
		{byte(d986>>8) | W1_MUTE, byte(d986), 0xF0, 0x10, 0x00},
		// search up
		{byte(d986>>8) | W1_MUTE, byte(d986), 0xF0, 0x10, 0x00},
		// start searching
		{byte(d986>>8) | W1_MUTE | W1_SM, byte(d986), 0xF0, 0x10, 0x00},
		// keep the station found, stop searching
		{byte(d1013>>8) | W1_MUTE, byte(d1013), 0xF0, 0x10, 0x00},
		// unmute
		{byte(d1013 >> 8), byte(d1013), 0xF0, 0x10, 0x00},
	})

	gobottest.Assert(t, tuner.Frequency(), 101.3)
	gobottest.Assert(t, tuner.Stereo(), true)
	gobottest.Assert(t, tuner.Muted(), false)
	gobottest.Assert(t, tuner.Searching(), false)
	gobottest.Assert(t, tuner.State(), Idle)
}

func TestSearchDownBandLimit(t *testing.T) {
	bus := &fakeBus{reads: [][]byte{
		statusImage(88.0, true, false, false, 5),
		statusImage(87.7, false, false, false, 0),
		statusImage(87.5, true, true, false, 0),
	}}
	tuner := newTestTuner(t, bus)

	res, err := tuner.SearchDown()
	gobottest.Assert(t, err, nil)
	gobottest.Assert(t, res.State, BandLimitHit)
	gobottest.Assert(t, res.Frequency, HighFrequency)
	gobottest.Assert(t, res.Polls, 2)

	d := Divisor(HighFrequency)
	gobottest.Assert(t, bus.lastWrite(), []byte{byte(d >> 8), byte(d), 0x70, 0x10, 0x00})
	gobottest.Assert(t, tuner.Frequency(), HighFrequency)
	gobottest.Assert(t, tuner.Muted(), false)
	gobottest.Assert(t, tuner.Searching(), false)
}

func TestSearchUpBandLimit(t *testing.T) {
	bus := &fakeBus{reads: [][]byte{
		statusImage(107.5, true, false, false, 5),
		statusImage(108.0, true, true, false, 0),
	}}
	tuner := newTestTuner(t, bus)

	res, err := tuner.SearchUp()
	gobottest.Assert(t, err, nil)
	gobottest.Assert(t, res.State, BandLimitHit)
	gobottest.Assert(t, res.Frequency, LowFrequency)
	gobottest.Assert(t, tuner.Muted(), false)
}

func TestSearchFromBandEdge(t *testing.T) {
	bus := &fakeBus{reads: [][]byte{
		statusImage(HighFrequency, true, false, false, 5),
		statusImage(88.1, true, false, false, 8),
	}}
	tuner := newTestTuner(t, bus)

	_, err := tuner.SearchUp()
	gobottest.Assert(t, err, nil)

	d := Divisor(LowFrequency)
	gobottest.Assert(t, bus.writes[0][:2], []byte{byte(d >> 8), byte(d)})
}

func TestSearchUpFromUntunedChip(t *testing.T) {
	bus := &fakeBus{reads: [][]byte{
		{0x80, 0x00, 0x00, 0x00, 0x00},
		statusImage(88.1, true, false, false, 8),
	}}
	tuner := newTestTuner(t, bus)

	res, err := tuner.SearchUp()
	gobottest.Assert(t, err, nil)
	gobottest.Assert(t, res, SearchResult{State: Locked, Frequency: 88.1, Polls: 1})

	d := Divisor(LowFrequency)
	gobottest.Assert(t, bus.writes[0][:2], []byte{byte(d >> 8), byte(d)})
}

func TestSearchState(t *testing.T) {
	var (
		tuner  *Tuner
		sleeps []time.Duration
		states []SearchState
	)

	bus := &fakeBus{reads: [][]byte{
		statusImage(98.5, true, false, false, 5),
		statusImage(98.9, false, false, false, 0),
		statusImage(99.5, true, false, false, 6),
	}}
	cfg := testConfig(t)
	cfg.PollInterval = 25 * time.Millisecond
	cfg.Sleep = func(d time.Duration) {
		sleeps = append(sleeps, d)
		states = append(states, tuner.State())
	}

	tuner, err := NewTuner(bus, cfg)
	gobottest.Assert(t, err, nil)

	_, err = tuner.SearchUp()
	gobottest.Assert(t, err, nil)
	gobottest.Assert(t, sleeps, []time.Duration{25 * time.Millisecond, 25 * time.Millisecond})
	gobottest.Assert(t, states, []SearchState{Searching, Searching})
	gobottest.Assert(t, tuner.State(), Idle)
}

func TestSearchTimeout(t *testing.T) {
	bus := &fakeBus{reads: [][]byte{
		statusImage(98.5, true, false, false, 5),
		statusImage(98.9, false, false, false, 0),
		statusImage(99.3, false, false, false, 0),
		statusImage(99.7, false, false, false, 0),
	}}
	cfg := testConfig(t)
	cfg.MaxPolls = 3
	tuner, err := NewTuner(bus, cfg)
	gobottest.Assert(t, err, nil)

	res, err := tuner.SearchUp()
	gobottest.Assert(t, errors.Is(err, ErrSearchTimeout), true)
	gobottest.Assert(t, res.Polls, 3)
	gobottest.Assert(t, res.State, Idle)
	gobottest.Assert(t, len(bus.reads), 0)

	gobottest.Assert(t, tuner.Muted(), false)
	gobottest.Assert(t, tuner.Searching(), false)
	gobottest.Assert(t, tuner.State(), Idle)
}

func TestSearchReadFailure(t *testing.T) {
	bus := &fakeBus{reads: [][]byte{
		statusImage(98.5, true, false, false, 5),
	}}
	tuner := newTestTuner(t, bus)

	// The scripted reads run out during the first poll.
	_, err := tuner.SearchDown()
	gobottest.Refute(t, err, nil)
	gobottest.Assert(t, errors.Is(err, ErrSearchTimeout), false)
	gobottest.Assert(t, tuner.Muted(), false)
	gobottest.Assert(t, tuner.Searching(), false)
}

func TestSearchCleanupFailure(t *testing.T) {
	failure := errors.New("bus gone")
	bus := &fakeBus{reads: [][]byte{
		statusImage(98.5, true, false, false, 5),
		statusImage(98.9, false, false, false, 0),
	}}
	cfg := testConfig(t)
	cfg.MaxPolls = 1
	cfg.Sleep = func(time.Duration) { bus.writeErr = failure }
	tuner, err := NewTuner(bus, cfg)
	gobottest.Assert(t, err, nil)

	_, err = tuner.SearchUp()
	gobottest.Assert(t, errors.Is(err, ErrSearchTimeout), true)
	gobottest.Assert(t, errors.Is(err, failure), true)

	// Nothing reached the chip, so the image still says muted and searching.
	gobottest.Assert(t, tuner.Muted(), true)
	gobottest.Assert(t, tuner.Searching(), true)
	gobottest.Assert(t, tuner.State(), Idle)
}

func TestSearchStateString(t *testing.T) {
	gobottest.Assert(t, Idle.String(), "idle")
	gobottest.Assert(t, Searching.String(), "searching")
	gobottest.Assert(t, Locked.String(), "locked")
	gobottest.Assert(t, BandLimitHit.String(), "band limit")
	gobottest.Assert(t, SearchState(9).String(), "SearchState(9)")
}
