package radio

import "fmt"

// Size of both register images, in bytes.
const registerSize = 5

// Write register bits.
//
//goland:noinspection GoSnakeCaseUsage
const (
	// byte 0
	W1_MUTE = 0x80
	W1_SM   = 0x40

	// byte 2
	W3_SUD  = 0x80
	W3_SSL  = 0x60 // search stop level high
	W3_HLSI = 0x10 // high side injection

	// byte 3
	W4_XTAL = 0x10 // 32.768 kHz
)

// Read register bits.
//
//goland:noinspection GoSnakeCaseUsage
const (
	R1_RF  = 0x80
	R1_BLF = 0x40
	R1_PLL = 0x3F

	R3_STEREO = 0x80
	R3_IF     = 0x7F

	R4_LEV = 0xF0
)

// control holds everything the driver can change in the write image.
// Each field is packed into its own bits, so updating one never touches
// the others.
type control struct {
	divisor  uint16
	mute     bool
	search   bool
	searchUp bool
}

// defaultControl matches the chip power-on image used by the driver:
// search up, high stop level, high side injection, 32.768 kHz crystal.
func defaultControl() control {
	return control{searchUp: true}
}

// pack builds the 5 byte write image.
func (c control) pack() []byte {
	img := make([]byte, registerSize)

	img[0] = byte(c.divisor>>8) & R1_PLL
	if c.mute {
		img[0] |= W1_MUTE
	}
	if c.search {
		img[0] |= W1_SM
	}

	img[1] = byte(c.divisor & 0xFF)

	img[2] = W3_SSL | W3_HLSI
	if c.searchUp {
		img[2] |= W3_SUD
	}

	img[3] = W4_XTAL
	img[4] = 0x00

	return img
}

// Status is the decoded read image.
type Status struct {
	Ready     bool
	BandLimit bool
	Stereo    bool
	Level     uint8
	IFCounter uint8
	Divisor   uint16
	Frequency float64
}

// decodeStatus unpacks a 5 byte read image.
func decodeStatus(img []byte) Status {
	divisor := uint16(img[0]&R1_PLL)<<8 | uint16(img[1])

	return Status{
		Ready:     img[0]&R1_RF != 0,
		BandLimit: img[0]&R1_BLF != 0,
		Stereo:    img[2]&R3_STEREO != 0,
		IFCounter: img[2] & R3_IF,
		Level:     (img[3] & R4_LEV) >> 4,
		Divisor:   divisor,
		Frequency: DecodeFrequency(divisor),
	}
}

func (s Status) String() string {
	mode := "mono"
	if s.Stereo {
		mode = "stereo"
	}
	return fmt.Sprintf("%.1f MHz %s level %d if %d ready %t band limit %t",
		s.Frequency, mode, s.Level, s.IFCounter, s.Ready, s.BandLimit)
}
