package driver

import "fmt"

// boardPins maps the pin names accepted on init requests to BCM GPIO
// numbers. Names follow the D<n> convention clients already use, with
// aliases for the hardware SPI pair.
var boardPins = map[string]int{
	"SDA": 2, "SCL": 3,
	"MOSI": 10, "MISO": 9, "SCK": 11,
	"CE0": 8, "CE1": 7,
	"TX": 14, "RX": 15,
}

func init() {
	for n := 0; n <= 27; n++ {
		boardPins[fmt.Sprintf("D%d", n)] = n
	}
}

// Hardware SPI pin numbers for the DotStar two-wire transport.
const (
	spiClockPin = 11 // SCK
	spiDataPin  = 10 // MOSI
)

// HasPin reports whether a pin name is resolvable on this board.
func HasPin(name string) bool {
	_, ok := boardPins[name]
	return ok
}

// ResolvePin maps a pin name to its BCM GPIO number.
func ResolvePin(name string) (int, error) {
	gpio, ok := boardPins[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPin, name)
	}
	return gpio, nil
}
