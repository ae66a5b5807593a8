package radio

import (
	"errors"
	"fmt"
	"sync"

	"gobot.io/x/gobot/drivers/i2c"
)

// I2CTestAdaptor is useful to implement tests for
// passing i2c messages back and forth.
type I2CTestAdaptor struct {
	name          string
	written       [][]byte
	lastWritten   []byte
	mtx           sync.Mutex
	i2cConnectErr bool
	i2cReadImpl   func(*I2CTestAdaptor, []byte) (int, error)
	i2cWriteImpl  func(*I2CTestAdaptor, []byte) (int, error)
}

// writes returns a copy of every block written so far.
func (t *I2CTestAdaptor) writes() [][]byte {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	res := make([][]byte, len(t.written))
	copy(res, t.written)
	return res
}

func (t *I2CTestAdaptor) Read(b []byte) (count int, err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	return t.i2cReadImpl(t, b)
}

func (t *I2CTestAdaptor) Write(b []byte) (count int, err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.written = append(t.written, append([]byte(nil), b...))
	return t.i2cWriteImpl(t, b)
}

func (t *I2CTestAdaptor) Close() error {
	return nil
}

// The TEA5767 has no registers, so the register based helpers are only
// here to satisfy i2c.Connection.

func (t *I2CTestAdaptor) ReadByte() (val byte, err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	bytes := []byte{0}
	bytesRead, err := t.i2cReadImpl(t, bytes)
	if err != nil {
		return 0, err
	}
	if bytesRead != 1 {
		return 0, fmt.Errorf("buffer underrun")
	}
	return bytes[0], nil
}

func (t *I2CTestAdaptor) ReadByteData(uint8) (val uint8, err error) {
	return t.ReadByte()
}

func (t *I2CTestAdaptor) ReadWordData(uint8) (val uint16, err error) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	bytes := []byte{0, 0}
	bytesRead, err := t.i2cReadImpl(t, bytes)
	if err != nil {
		return 0, err
	}
	if bytesRead != 2 {
		return 0, fmt.Errorf("buffer underrun")
	}
	return uint16(bytes[1])<<8 | uint16(bytes[0]), nil
}

func (t *I2CTestAdaptor) WriteByte(val byte) error {
	_, err := t.Write([]byte{val})
	return err
}

func (t *I2CTestAdaptor) WriteByteData(reg uint8, val uint8) error {
	_, err := t.Write([]byte{reg, val})
	return err
}

func (t *I2CTestAdaptor) WriteWordData(reg uint8, val uint16) error {
	_, err := t.Write([]byte{reg, uint8(val & 0xff), uint8(val >> 8)})
	return err
}

func (t *I2CTestAdaptor) WriteBlockData(reg uint8, b []byte) error {
	_, err := t.Write(append([]byte{reg}, b...))
	return err
}

func (t *I2CTestAdaptor) GetConnection( /* address */ int /* bus */, int) (connection i2c.Connection, err error) {
	if t.i2cConnectErr {
		return nil, errors.New("invalid i2c connection")
	}
	return t, nil
}

func (t *I2CTestAdaptor) GetDefaultBus() int {
	return 0
}

func (t *I2CTestAdaptor) Name() string          { return t.name }
func (t *I2CTestAdaptor) SetName(n string)      { t.name = n }
func (t *I2CTestAdaptor) Connect() (err error)  { return }
func (t *I2CTestAdaptor) Finalize() (err error) { return }
