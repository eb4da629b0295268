package circuit

import "fmt"

// Shared electrical constants for the NMOS logic family.
const (
	// Voltage is the supply rail in volts.
	Voltage = 5.0

	// HighThreshold is the minimum voltage read as logic HIGH.
	HighThreshold = 4.7

	// LowThreshold is the maximum voltage read as logic LOW.
	LowThreshold = 0.3

	// Bits is the machine word width.
	Bits = 6
)

// BitNames returns n numbered port names sharing a prefix, e.g.
// BitNames("in_", 3) = [in_0 in_1 in_2].
func BitNames(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return names
}
