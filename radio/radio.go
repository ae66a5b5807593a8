// Package radio implements the driver for the NXP TEA5767 single chip
// stereo FM receiver, as found on the common "TEA5767 FM radio module"
// breakouts.
//
// The chip has no register addresses: every write sends the full 5 byte
// control image and every read returns the full 5 byte status image.
// The core of the driver is the Tuner, which works on top of any Bus.
// TEA5767Driver wraps a Tuner into a GoBot driver, and NewTinyGoBus and
// NewPeriphBus let the Tuner run on tinygo or periph.io buses instead.
//
// To read about the specifications of the receiver, read the following documents:
// https://www.voti.nl/docs/TEA5767.pdf
// https://www.nxp.com/docs/en/application-note/AN10133.pdf
package radio

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"gobot.io/x/gobot"
	"gobot.io/x/gobot/drivers/i2c"
)

// Events published by TEA5767Driver.
const (
	// Tuned is published with the new frequency after a set or a step.
	Tuned = "tuned"

	// Station is published with the SearchResult of a completed search.
	Station = "station"
)

// TEA5767Driver holds the implementation to talk to a TEA5767 FM receiver
// through a GoBot i2c connector.
//
// It is not safe for concurrent use: run its commands from the robot's work
// goroutine, not from the gobot HTTP API.
//
//goland:noinspection GoUnnecessarilyExportedIdentifiers
type TEA5767Driver struct {
	*Tuner

	name         string
	conn         i2c.Connection
	i2cConnector i2c.Connector
	i2c.Config
	gobot.Commander
	gobot.Eventer

	frequency float64
}

// Name of our device.
func (d *TEA5767Driver) Name() string {
	return d.name
}

// SetName set the name of our device.
func (d *TEA5767Driver) SetName(name string) {
	d.name = name
}

// Start opens the i2c connection and tunes the configured frequency.
func (d *TEA5767Driver) Start() error {
	bus := d.GetBusOrDefault(d.i2cConnector.GetDefaultBus())
	address := d.GetAddressOrDefault(Address)

	var err error
	d.conn, err = d.i2cConnector.GetConnection(address, bus)
	if err != nil {
		return err
	}
	d.Tuner.bus = NewConnectionBus(d.conn)

	if d.debugMode {
		d.debugLog("Tuning into %.1f MHz on bus %d address 0x%x\n", d.frequency, bus, address)
	}
	return d.Init(d.frequency)
}

// Halt stops any search and mutes the receiver.
func (d *TEA5767Driver) Halt() error {
	var result *multierror.Error
	if err := d.UnsetSearchMode(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := d.SetMute(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Connection retrieves the i2c connection to the device.
func (d *TEA5767Driver) Connection() gobot.Connection {
	return d.i2cConnector.(gobot.Connection)
}

// SetFrequency tunes freq, in MHz, and publishes the Tuned event.
func (d *TEA5767Driver) SetFrequency(freq float64) error {
	if err := d.Tuner.SetFrequency(freq); err != nil {
		return err
	}
	d.Publish(Tuned, d.Frequency())
	return nil
}

// StepUp tunes 100 kHz higher and publishes the Tuned event.
func (d *TEA5767Driver) StepUp() error {
	if err := d.Tuner.StepUp(); err != nil {
		return err
	}
	d.Publish(Tuned, d.Frequency())
	return nil
}

// StepDown tunes 100 kHz lower and publishes the Tuned event.
func (d *TEA5767Driver) StepDown() error {
	if err := d.Tuner.StepDown(); err != nil {
		return err
	}
	d.Publish(Tuned, d.Frequency())
	return nil
}

// SearchUp searches the next station up the band and publishes the Station event.
func (d *TEA5767Driver) SearchUp() (SearchResult, error) {
	res, err := d.Tuner.SearchUp()
	if err != nil {
		return res, err
	}
	d.Publish(Station, res)
	return res, nil
}

// SearchDown searches the next station down the band and publishes the Station event.
func (d *TEA5767Driver) SearchDown() (SearchResult, error) {
	res, err := d.Tuner.SearchDown()
	if err != nil {
		return res, err
	}
	d.Publish(Station, res)
	return res, nil
}

// ReadStatus reads the chip and returns the decoded status.
func (d *TEA5767Driver) ReadStatus() (Status, error) {
	if err := d.Read(); err != nil {
		return Status{}, err
	}
	return d.Status(), nil
}

func (d *TEA5767Driver) addCommands() {
	d.AddCommand("SetFrequency", func(params map[string]interface{}) interface{} {
		freq, err := frequencyParam(params)
		if err != nil {
			return err
		}
		return d.SetFrequency(freq)
	})
	d.AddCommand("StepUp", func(map[string]interface{}) interface{} {
		return d.StepUp()
	})
	d.AddCommand("StepDown", func(map[string]interface{}) interface{} {
		return d.StepDown()
	})
	d.AddCommand("SearchUp", func(map[string]interface{}) interface{} {
		return searchReply(d.SearchUp())
	})
	d.AddCommand("SearchDown", func(map[string]interface{}) interface{} {
		return searchReply(d.SearchDown())
	})
	d.AddCommand("Mute", func(map[string]interface{}) interface{} {
		return d.SetMute()
	})
	d.AddCommand("Unmute", func(map[string]interface{}) interface{} {
		return d.UnsetMute()
	})
	d.AddCommand("Status", func(map[string]interface{}) interface{} {
		status, err := d.ReadStatus()
		if err != nil {
			return err
		}
		return map[string]interface{}{
			"frequency":  status.Frequency,
			"stereo":     status.Stereo,
			"level":      status.Level,
			"ready":      status.Ready,
			"band_limit": status.BandLimit,
			"if_counter": status.IFCounter,
		}
	})
}

func searchReply(res SearchResult, err error) interface{} {
	if err != nil {
		return err
	}
	return map[string]interface{}{
		"state":     res.State.String(),
		"frequency": res.Frequency,
		"polls":     res.Polls,
	}
}

func frequencyParam(params map[string]interface{}) (float64, error) {
	switch v := params["frequency"].(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case string:
		var freq float64
		if _, err := fmt.Sscanf(v, "%g", &freq); err != nil {
			return 0, fmt.Errorf("invalid frequency %q: %w", v, err)
		}
		return freq, nil
	default:
		return 0, fmt.Errorf("missing frequency parameter")
	}
}

// NewTEA5767Driver creates a new GoBot driver for our FM receiver.
func NewTEA5767Driver(connector i2c.Connector, cfg TEA5767Config, options ...func(i2c.Config)) (*TEA5767Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &TEA5767Driver{
		Tuner:        newTuner(cfg),
		name:         gobot.DefaultName("TEA5767Driver"),
		i2cConnector: connector,
		Config:       i2c.NewConfig(),
		Commander:    gobot.NewCommander(),
		Eventer:      gobot.NewEventer(),
		frequency:    cfg.Frequency,
	}

	for _, option := range options {
		option(res)
	}

	res.AddEvent(Tuned)
	res.AddEvent(Station)
	res.addCommands()

	return res, nil
}
