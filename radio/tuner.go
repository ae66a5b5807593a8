package radio

import (
	"fmt"
	"time"
)

// Address is the fixed 7 bit i2c address of the TEA5767.
const Address = 0x60

// Tuner owns the register images of one TEA5767 and talks to it over a Bus.
// It is not safe for concurrent use.
type Tuner struct {
	bus  Bus
	addr uint16

	ctl     control
	readImg []byte
	status  Status
	current float64
	state   SearchState

	pollInterval     time.Duration
	maxPolls         int
	ignoreOutOfRange bool
	sleep            func(time.Duration)

	debugMode bool
	debugLog  func(format string, v ...interface{})
	log       func(format string, v ...interface{})
}

// NewTuner creates a tuner on top of an already opened bus.
// Nothing is sent to the chip until Init or another setter is called.
func NewTuner(bus Bus, cfg TEA5767Config) (*Tuner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := newTuner(cfg)
	t.bus = bus
	return t, nil
}

func newTuner(cfg TEA5767Config) *Tuner {
	return &Tuner{
		addr:    Address,
		ctl:     defaultControl(),
		readImg: make([]byte, registerSize),
		current: DefaultFrequency,
		state:   Idle,

		pollInterval:     cfg.PollInterval,
		maxPolls:         cfg.MaxPolls,
		ignoreOutOfRange: cfg.IgnoreOutOfRange,
		sleep:            cfg.Sleep,
		debugMode:        cfg.DebugMode,
		debugLog:         cfg.DebugLog,
		log:              cfg.Log,
	}
}

// Init tunes the first frequency. It must be called before any other operation.
func (t *Tuner) Init(freq float64) error {
	return t.SetFrequency(freq)
}

// SetFrequency tunes freq, in MHz, keeping the mute and search bits.
func (t *Tuner) SetFrequency(freq float64) error {
	high, low, err := EncodeFrequency(freq)
	if err != nil {
		if t.ignoreOutOfRange {
			if t.debugMode {
				t.debugLog("Ignoring %.2f MHz: %v\n", freq, err)
			}
			return nil
		}
		return err
	}

	divisor := uint16(high)<<8 | uint16(low)
	if err = t.update(func(c *control) { c.divisor = divisor }); err != nil {
		return err
	}

	t.current = DecodeFrequency(divisor)
	return nil
}

// SetMute silences the audio output.
func (t *Tuner) SetMute() error {
	return t.update(func(c *control) { c.mute = true })
}

// UnsetMute enables the audio output.
func (t *Tuner) UnsetMute() error {
	return t.update(func(c *control) { c.mute = false })
}

// SetSearchMode starts the chip autosearch.
func (t *Tuner) SetSearchMode() error {
	return t.update(func(c *control) { c.search = true })
}

// UnsetSearchMode stops the chip autosearch.
func (t *Tuner) UnsetSearchMode() error {
	return t.update(func(c *control) { c.search = false })
}

// SetSearchModeUp makes the next search go up the band.
func (t *Tuner) SetSearchModeUp() error {
	return t.update(func(c *control) { c.searchUp = true })
}

// SetSearchModeDown makes the next search go down the band.
func (t *Tuner) SetSearchModeDown() error {
	return t.update(func(c *control) { c.searchUp = false })
}

// update applies change to a copy of the write image, pushes it and only
// keeps it once the chip accepted it.
func (t *Tuner) update(change func(c *control)) error {
	next := t.ctl
	change(&next)
	if err := t.push(next); err != nil {
		return err
	}
	t.ctl = next
	return nil
}

// Write sends the current write image to the chip.
func (t *Tuner) Write() error {
	return t.push(t.ctl)
}

func (t *Tuner) push(c control) error {
	if t.bus == nil {
		return ErrNotStarted
	}

	img := c.pack()
	if t.debugMode {
		t.debugLog("write %s\n", sliceToString(img))
	}
	if err := t.bus.Write(t.addr, img); err != nil {
		return fmt.Errorf("failed to write registers: %w", err)
	}
	return nil
}

// Read fetches the status registers and decodes them. On failure the
// previous status is kept.
func (t *Tuner) Read() error {
	if t.bus == nil {
		return ErrNotStarted
	}

	img := make([]byte, registerSize)
	if err := t.bus.Read(t.addr, img); err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}
	if t.debugMode {
		t.debugLog("read %s\n", sliceToString(img))
	}

	t.readImg = img
	t.status = decodeStatus(img)
	t.current = t.status.Frequency
	return nil
}

// Frequency returns the last tuned or read frequency, in MHz.
func (t *Tuner) Frequency() float64 {
	return t.current
}

// Level returns the last read signal level, 0 to 15.
func (t *Tuner) Level() uint8 {
	return t.status.Level
}

// Ready returns the last read ready flag.
func (t *Tuner) Ready() bool {
	return t.status.Ready
}

// BandLimit returns the last read band limit flag.
func (t *Tuner) BandLimit() bool {
	return t.status.BandLimit
}

// Stereo returns the last read stereo flag.
func (t *Tuner) Stereo() bool {
	return t.status.Stereo
}

// IFCounter returns the last read IF counter.
func (t *Tuner) IFCounter() uint8 {
	return t.status.IFCounter
}

// Status returns the last decoded read image.
func (t *Tuner) Status() Status {
	return t.status
}

// Muted reports whether the mute bit is set in the write image.
func (t *Tuner) Muted() bool {
	return t.ctl.mute
}

// Searching reports whether the search bit is set in the write image.
func (t *Tuner) Searching() bool {
	return t.ctl.search
}

// SearchUpward reports whether the search direction bit points up.
func (t *Tuner) SearchUpward() bool {
	return t.ctl.searchUp
}

// WriteImage returns a copy of the bytes the next Write sends.
func (t *Tuner) WriteImage() []byte {
	return t.ctl.pack()
}

// ReadImage returns a copy of the last successfully read bytes.
func (t *Tuner) ReadImage() []byte {
	img := make([]byte, len(t.readImg))
	copy(img, t.readImg)
	return img
}

func sliceToString(val []byte) string {
	res := ""
	for idx := range val {
		res += fmt.Sprintf("[%d]=0x%x(%d) ", idx, val[idx], val[idx])
	}
	return res
}
