package radio

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// SearchState is the state of the search controller.
type SearchState int

// The search controller goes Idle -> Searching -> Locked or BandLimitHit
// and back to Idle once the output is unmuted.
const (
	Idle SearchState = iota
	Searching
	Locked
	BandLimitHit
)

func (s SearchState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Locked:
		return "locked"
	case BandLimitHit:
		return "band limit"
	default:
		return fmt.Sprintf("SearchState(%d)", int(s))
	}
}

// SearchResult describes how a search ended.
type SearchResult struct {
	State     SearchState
	Frequency float64
	Polls     int
}

// State returns the current search controller state.
func (t *Tuner) State() SearchState {
	return t.state
}

// SearchUp lets the chip look for the next station above the current one.
// Reaching the top of the band wraps the tuner to LowFrequency.
func (t *Tuner) SearchUp() (SearchResult, error) {
	return t.search(true)
}

// SearchDown lets the chip look for the next station below the current one.
// Reaching the bottom of the band wraps the tuner to HighFrequency.
func (t *Tuner) SearchDown() (SearchResult, error) {
	return t.search(false)
}

func (t *Tuner) search(up bool) (SearchResult, error) {
	res := SearchResult{State: Idle}

	if err := t.Read(); err != nil {
		return res, err
	}

	// Move one step away so the chip does not lock on the current station again.
	if err := t.SetFrequency(t.next(up)); err != nil {
		return res, err
	}

	t.state = Searching

	if err := t.SetMute(); err != nil {
		return res, t.abortSearch(err)
	}

	direction := t.SetSearchModeDown
	if up {
		direction = t.SetSearchModeUp
	}
	if err := direction(); err != nil {
		return res, t.abortSearch(err)
	}

	if err := t.SetSearchMode(); err != nil {
		return res, t.abortSearch(err)
	}

	polls, err := t.poll()
	res.Polls = polls
	if err != nil {
		return res, t.abortSearch(err)
	}

	// Keep the station the chip found and stop it from searching again
	// on the next write.
	found := t.status.Divisor
	if err = t.update(func(c *control) {
		c.divisor = found
		c.search = false
	}); err != nil {
		return res, t.abortSearch(err)
	}

	res.State = Locked
	if t.status.BandLimit {
		res.State = BandLimitHit
		edge := HighFrequency
		if up {
			edge = LowFrequency
		}
		t.log("Band limit reached, wrapping to %.1f MHz\n", edge)
		if err = t.SetFrequency(edge); err != nil {
			return res, t.abortSearch(err)
		}
	}
	t.state = res.State

	if err = t.UnsetMute(); err != nil {
		t.state = Idle
		return res, err
	}

	t.state = Idle
	res.Frequency = t.current
	return res, nil
}

// poll reads the status until the chip reports ready.
func (t *Tuner) poll() (int, error) {
	for polls := 1; t.maxPolls == 0 || polls <= t.maxPolls; polls++ {
		t.sleep(t.pollInterval)

		if err := t.Read(); err != nil {
			return polls, err
		}
		if t.debugMode {
			t.debugLog("Search poll %d: %s\n", polls, t.status)
		}
		if t.status.Ready {
			return polls, nil
		}
	}

	return t.maxPolls, fmt.Errorf("%w after %d polls", ErrSearchTimeout, t.maxPolls)
}

// abortSearch leaves search mode and unmutes, keeping every failure.
func (t *Tuner) abortSearch(cause error) error {
	var result *multierror.Error
	result = multierror.Append(result, cause)

	if err := t.UnsetSearchMode(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := t.UnsetMute(); err != nil {
		result = multierror.Append(result, err)
	}

	t.state = Idle
	return result.ErrorOrNil()
}

// StepUp tunes 100 kHz higher, wrapping to LowFrequency past the top of the band.
// The chip is not asked to confirm the new frequency.
func (t *Tuner) StepUp() error {
	return t.SetFrequency(t.next(true))
}

// StepDown tunes 100 kHz lower, wrapping to HighFrequency past the bottom of the band.
func (t *Tuner) StepDown() error {
	return t.SetFrequency(t.next(false))
}

// next returns the neighbouring channel of the current frequency.
func (t *Tuner) next(up bool) float64 {
	freq := t.current - StepFrequency
	if up {
		freq = t.current + StepFrequency
	}
	freq = quantize(freq)

	if InBand(freq) {
		return freq
	}
	// Outside the band, including an untuned chip reading below it, going
	// up restarts at the bottom and going down at the top.
	if up {
		return LowFrequency
	}
	return HighFrequency
}
