// Package units provides shared constants and conversions for
// temperature units. Sensors and the database always work in degrees
// Celsius; conversion happens at presentation time.
package units

import "fmt"

// Unit constants
const (
	Celsius    = "celsius"
	Fahrenheit = "fahrenheit"
	Kelvin     = "kelvin"
)

// ValidUnits contains all valid unit values.
var ValidUnits = []string{Celsius, Fahrenheit, Kelvin}

// IsValid checks if the given unit is in the list of valid units.
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// CelsiusToFahrenheit converts degrees Celsius to degrees Fahrenheit.
func CelsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}

// CelsiusToKelvin converts degrees Celsius to Kelvin.
func CelsiusToKelvin(c float64) float64 {
	return c + 273.15
}

// Convert converts a Celsius temperature to the target unit. Unknown
// units pass the value through unchanged.
func Convert(celsius float64, targetUnit string) float64 {
	switch targetUnit {
	case Fahrenheit:
		return CelsiusToFahrenheit(celsius)
	case Kelvin:
		return CelsiusToKelvin(celsius)
	default:
		return celsius
	}
}

// Format renders a temperature with its unit suffix.
func Format(celsius float64, targetUnit string) string {
	v := Convert(celsius, targetUnit)
	switch targetUnit {
	case Fahrenheit:
		return fmt.Sprintf("%.1f°F", v)
	case Kelvin:
		return fmt.Sprintf("%.2fK", v)
	default:
		return fmt.Sprintf("%.1f°C", v)
	}
}
