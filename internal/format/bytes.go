package format

import "fmt"

var byteUnits = [...]string{"B", "KB", "MB", "GB", "TB"}

// Bytes renders n in base-1024 units with two decimals, e.g. "1.00 MB".
// Values past the terabyte range stay in TB.
func Bytes(n uint64) string {
	return BytesFloat(float64(n))
}

// BytesFloat is Bytes for fractional values such as rates.
func BytesFloat(v float64) string {
	if v < 0 {
		v = 0
	}
	unit := 0
	// Promote on the rounded value so 1023.999 KB prints as 1.00 MB.
	for v >= 1024-0.005 && unit < len(byteUnits)-1 {
		v /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", v, byteUnits[unit])
}

// Rate renders a bytes/second value, e.g. "1.00 MB/s".
func Rate(bytesPerSec float64) string {
	return BytesFloat(bytesPerSec) + "/s"
}

// Percent renders p with one decimal.
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}
