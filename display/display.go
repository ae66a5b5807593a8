// Package display drives the SunFounder LCD1602 i2c backpack and knows how
// to render the state of the FM tuner on its two lines.
package display

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"gobot.io/x/gobot"
	"gobot.io/x/gobot/drivers/i2c"
)

const (
	// command signals that we want to send a command to the screen
	command = 0x04

	// data signals that we want to send a character to the screen
	data = 0x05

	// Address is the default address of the backpack
	Address = 0x27

	// Columns per line
	Columns = 16

	backlightOn  = 0x08
	backlightOff = 0x07
	enableMask   = 0xFB

	lineOne = 0x80
	lineTwo = 0x80 + 0x40
)

// SunFounderLCD1602Driver controls the LCD 1602 from SunFounder
//
//goland:noinspection GoUnnecessarilyExportedIdentifiers
type SunFounderLCD1602Driver struct {
	name         string
	i2cConnector i2c.Connector
	i2c.Config
	gobot.Commander

	conn  i2c.Connection
	sleep func(time.Duration)

	backlightEnabled bool
}

// Name of our device
func (lcd *SunFounderLCD1602Driver) Name() string {
	return lcd.name
}

// SetName set the name of our device
func (lcd *SunFounderLCD1602Driver) SetName(name string) {
	lcd.name = name
}

// Start initialises the controller in 4 bit mode and clears the screen
func (lcd *SunFounderLCD1602Driver) Start() error {
	bus := lcd.GetBusOrDefault(lcd.i2cConnector.GetDefaultBus())

	var err error
	lcd.conn, err = lcd.i2cConnector.GetConnection(lcd.GetAddressOrDefault(Address), bus)
	if err != nil {
		return err
	}

	// 4 bit mode, 2 lines, display on without cursor
	for _, cmd := range []byte{0x33, 0x32, 0x28, 0x0C} {
		if err = lcd.sendCommand(cmd); err != nil {
			return err
		}
		lcd.sleep(5 * time.Millisecond)
	}

	return lcd.ClearScreen()
}

// Halt clears the screen and turns off the backlight
func (lcd *SunFounderLCD1602Driver) Halt() error {
	lcd.backlightEnabled = false
	return lcd.ClearScreen()
}

// Connection retrieves the i2c connection to the device
func (lcd *SunFounderLCD1602Driver) Connection() gobot.Connection {
	return lcd.i2cConnector.(gobot.Connection)
}

func (lcd *SunFounderLCD1602Driver) sendCommand(cmd byte) error {
	return lcd.communicate(command, cmd)
}

func (lcd *SunFounderLCD1602Driver) sendData(ch byte) error {
	return lcd.communicate(data, ch)
}

func (lcd *SunFounderLCD1602Driver) write(b byte) error {
	if lcd.backlightEnabled {
		b |= backlightOn
	} else {
		b |= backlightOff
	}
	return lcd.conn.WriteByte(b)
}

// communicate sends one byte as two pulsed nibbles, high nibble first
func (lcd *SunFounderLCD1602Driver) communicate(kind byte, b byte) error {
	for _, nibble := range []byte{b & 0xF0, (b & 0x0F) << 4} {
		buf := nibble | kind // RS, RW = 0, EN = 1
		if err := lcd.write(buf); err != nil {
			return err
		}
		lcd.sleep(2 * time.Millisecond)

		if err := lcd.write(buf & enableMask); err != nil {
			return err
		}
	}
	return nil
}

// EnableBacklight turns on the screen backlight
func (lcd *SunFounderLCD1602Driver) EnableBacklight() error {
	lcd.backlightEnabled = true
	err := lcd.conn.WriteByte(backlightOn)
	lcd.sleep(2 * time.Millisecond)
	return err
}

// DisableBacklight turns off the screen backlight
func (lcd *SunFounderLCD1602Driver) DisableBacklight() error {
	lcd.backlightEnabled = false
	err := lcd.conn.WriteByte(backlightOff)
	lcd.sleep(2 * time.Millisecond)
	return err
}

// ClearScreen removes any message from the LCD screen
func (lcd *SunFounderLCD1602Driver) ClearScreen() error {
	// The clear command needs the backlight on
	keep := lcd.backlightEnabled
	lcd.backlightEnabled = true
	if err := lcd.sendCommand(0x01); err != nil {
		return err
	}
	lcd.sleep(2 * time.Millisecond)

	if keep {
		return lcd.EnableBacklight()
	}
	return lcd.DisableBacklight()
}

// DisplayLines writes both lines, padding or cutting each to 16 characters
func (lcd *SunFounderLCD1602Driver) DisplayLines(top, bottom string) error {
	if err := lcd.displayLine(lineOne, top); err != nil {
		return err
	}
	return lcd.displayLine(lineTwo, bottom)
}

func (lcd *SunFounderLCD1602Driver) displayLine(addr byte, msg string) error {
	if err := lcd.sendCommand(addr); err != nil {
		return err
	}
	for _, ch := range []byte(fitLine(msg)) {
		if err := lcd.sendData(ch); err != nil {
			return err
		}
	}
	return nil
}

// DisplayMessage splits msg over the two lines. Characters outside of
// ASCII are shown as '?'.
func (lcd *SunFounderLCD1602Driver) DisplayMessage(msg string) error {
	msg = toASCII(msg)
	if len(msg) <= Columns {
		return lcd.DisplayLines(msg, "")
	}
	return lcd.DisplayLines(msg[:Columns], msg[Columns:])
}

// DisplayStatus renders the tuned frequency on the first line and the
// reception quality on the second one.
func (lcd *SunFounderLCD1602Driver) DisplayStatus(freq float64, stereo bool, level uint8) error {
	top, bottom := StatusLines(freq, stereo, level)
	return lcd.DisplayLines(top, bottom)
}

// StatusLines formats the tuner state, e.g. "FM   98.5 MHz" and "ST |#######   |".
func StatusLines(freq float64, stereo bool, level uint8) (string, string) {
	mode := "MO"
	if stereo {
		mode = "ST"
	}
	if level > 15 {
		level = 15
	}

	// 15 levels on a 10 cell bar
	cells := int(level) * 10 / 15
	bar := strings.Repeat("#", cells) + strings.Repeat(" ", 10-cells)

	return fmt.Sprintf("FM %6.1f MHz", freq), fmt.Sprintf("%s |%s|", mode, bar)
}

func fitLine(msg string) string {
	msg = toASCII(msg)
	if len(msg) > Columns {
		return msg[:Columns]
	}
	return msg + strings.Repeat(" ", Columns-len(msg))
}

// toASCII maps every rune the character ROM cannot show to '?' so that
// one byte is one cell.
func toASCII(msg string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return '?'
		}
		return r
	}, msg)
}

// WithSleep replaces time.Sleep between the controller commands
func WithSleep(sleep func(time.Duration)) func(i2c.Config) {
	return func(c i2c.Config) {
		if lcd, ok := c.(*SunFounderLCD1602Driver); ok {
			lcd.sleep = sleep
		}
	}
}

// NewLCD1602Driver creates a new GoBot driver for the LCD
func NewLCD1602Driver(connector i2c.Connector, options ...func(i2c.Config)) (*SunFounderLCD1602Driver, error) {
	lcd := &SunFounderLCD1602Driver{
		name:             gobot.DefaultName("SunFounderLCD1602Driver"),
		i2cConnector:     connector,
		Config:           i2c.NewConfig(),
		Commander:        gobot.NewCommander(),
		sleep:            time.Sleep,
		backlightEnabled: true,
	}

	for _, option := range options {
		option(lcd)
	}

	lcd.AddCommand("DisplayMessage", func(params map[string]interface{}) interface{} {
		msg, _ := params["message"].(string)
		return lcd.DisplayMessage(msg)
	})
	lcd.AddCommand("ClearScreen", func(map[string]interface{}) interface{} {
		return lcd.ClearScreen()
	})

	return lcd, nil
}
