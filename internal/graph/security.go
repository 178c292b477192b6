package graph

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrBadSecurity is returned for true-security text that is not a plain decimal.
var ErrBadSecurity = errors.New("malformed true-security")

// Class is the security tier of a system.
type Class int

const (
	Nullsec Class = iota // hazardous
	Lowsec               // marginal
	Hisec                // safe
)

func (c Class) String() string {
	switch c {
	case Nullsec:
		return "nullsec"
	case Lowsec:
		return "lowsec"
	case Hisec:
		return "hisec"
	}
	return fmt.Sprintf("class(%d)", int(c))
}

// MarshalText lets Class serialize as its name in JSON.
func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText parses a name produced by String.
func (c *Class) UnmarshalText(b []byte) error {
	switch string(b) {
	case "nullsec":
		*c = Nullsec
	case "lowsec":
		*c = Lowsec
	case "hisec":
		*c = Hisec
	default:
		return fmt.Errorf("unknown security class %q", b)
	}
	return nil
}

// Security is the rounded security status the game client displays.
// The value is kept as tenths plus an explicit sign so that -0.0 survives.
type Security struct {
	tenths   int
	negative bool
}

// ParseSecurity derives the displayed security from true-security text.
// The client truncates the text to two decimals and only then rounds to one
// decimal (half away from zero), so "0.45231" -> "0.45" -> 0.5.
func ParseSecurity(text string) (Security, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Security{}, fmt.Errorf("%w: empty", ErrBadSecurity)
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" && fracPart == "" {
		return Security{}, fmt.Errorf("%w: %q", ErrBadSecurity, text)
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return Security{}, fmt.Errorf("%w: %q", ErrBadSecurity, text)
	}

	// Two fractional digits, string level.
	frac := (fracPart + "00")[:2]
	whole, err := strconv.Atoi(intPart)
	if err != nil {
		return Security{}, fmt.Errorf("%w: %q", ErrBadSecurity, text)
	}
	hundredths := whole*100 + int(frac[0]-'0')*10 + int(frac[1]-'0')

	return Security{tenths: (hundredths + 5) / 10, negative: neg}, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Class classifies the rounded value. Any negative sign, including -0.0, is nullsec.
func (s Security) Class() Class {
	if s.negative {
		return Nullsec
	}
	if s.tenths >= 5 {
		return Hisec
	}
	return Lowsec
}

// String formats with one decimal, e.g. "0.5" or "-0.0".
func (s Security) String() string {
	sign := ""
	if s.negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%d.%d", sign, s.tenths/10, s.tenths%10)
}

// MarshalJSON emits the displayed value as a JSON number.
func (s Security) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalJSON reads a number written by MarshalJSON. The text goes through
// ParseSecurity, so "-0.0" stays nullsec.
func (s *Security) UnmarshalJSON(b []byte) error {
	v, err := ParseSecurity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
