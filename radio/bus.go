package radio

import (
	"fmt"

	"gobot.io/x/gobot/drivers/i2c"
	periphi2c "periph.io/x/conn/v3/i2c"
	"tinygo.org/x/drivers"
)

// Bus is the minimal two-wire transport the tuner needs: one addressed
// write and one addressed read, each of a whole buffer.
type Bus interface {
	Write(addr uint16, b []byte) error
	Read(addr uint16, b []byte) error
}

// connectionBus adapts a gobot i2c.Connection. The connection is already
// bound to the device address, so addr is ignored.
type connectionBus struct {
	conn i2c.Connection
}

// NewConnectionBus wraps an already opened gobot i2c connection.
func NewConnectionBus(conn i2c.Connection) Bus {
	return &connectionBus{conn: conn}
}

func (c *connectionBus) Write(_ uint16, b []byte) error {
	n, err := c.conn.Write(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(b))
	}
	return nil
}

func (c *connectionBus) Read(_ uint16, b []byte) error {
	n, err := c.conn.Read(b)
	if err != nil {
		return err
	}
	if n != len(b) {
		return fmt.Errorf("%w: read %d of %d bytes", ErrShortRead, n, len(b))
	}
	return nil
}

// txer is implemented by both tinygo's drivers.I2C and periph's i2c.Bus.
type txer interface {
	Tx(addr uint16, w, r []byte) error
}

type txBus struct {
	tx txer
}

// NewTinyGoBus wraps a tinygo I2C peripheral, e.g. machine.I2C0.
func NewTinyGoBus(bus drivers.I2C) Bus {
	return &txBus{tx: bus}
}

// NewPeriphBus wraps a periph.io I2C bus.
func NewPeriphBus(bus periphi2c.Bus) Bus {
	return &txBus{tx: bus}
}

func (t *txBus) Write(addr uint16, b []byte) error {
	return t.tx.Tx(addr, b, nil)
}

func (t *txBus) Read(addr uint16, b []byte) error {
	return t.tx.Tx(addr, nil, b)
}
