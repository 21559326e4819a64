package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Address is an I2C sensor address. The config file may write it as an
// integer (52) or as a hexadecimal string ("0x34"); both normalize to
// the same integer value.
type Address int

// ParseAddress normalizes a textual address. Accepts decimal digits and
// "0x"-prefixed hexadecimal.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "0x"); ok {
		v, err := strconv.ParseInt(rest, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("malformed hexadecimal address %q: %w", s, err)
		}
		return Address(v), nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("malformed address %q: %w", s, err)
	}
	return Address(v), nil
}

// UnmarshalJSON accepts either a JSON number or a string form.
func (a *Address) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*a = Address(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("addr must be an integer or a hex string, got %s", data)
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON writes the canonical integer form.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(a))
}

func (a Address) String() string { return fmt.Sprintf("0x%02x", int(a)) }
