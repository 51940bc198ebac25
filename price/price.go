// Package price implements the fixed-point price representation used
// throughout the book: a decimal price multiplied by 100, stored as a
// signed 64-bit integer. All arithmetic on prices is plain integer
// arithmetic — there is no floating point anywhere in this package.
package price

import (
	"fmt"
	"strconv"
	"strings"
)

// Raw is a price expressed as decimal price * 100.
type Raw int64

// Parse converts a decimal string such as "100.5", "100.50", "-3", or
// "7.1" into its fixed-point representation. An optional leading minus
// and at most two fractional digits are accepted; missing fractional
// digits are zero-padded on the right.
func Parse(s string) (Raw, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("price: empty string")
	}

	neg := false
	if s[0] == '-' {
		neg = true
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("price: invalid value %q", s)
	}

	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}

	if len(fracPart) > 2 {
		return 0, fmt.Errorf("price: too many fractional digits in %q", s)
	}
	for len(fracPart) < 2 {
		fracPart += "0"
	}
	if intPart == "" {
		intPart = "0"
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("price: invalid value %q: %w", s, err)
	}
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("price: invalid value %q: %w", s, err)
	}

	raw := whole*100 + frac
	if neg {
		raw = -raw
	}
	return Raw(raw), nil
}

// String formats the price with exactly two fractional digits when the
// fractional part is nonzero, otherwise as a bare integer.
func (r Raw) String() string {
	v := int64(r)
	neg := v < 0
	if neg {
		v = -v
	}

	whole := v / 100
	frac := v % 100

	var sb strings.Builder
	if neg && v != 0 {
		sb.WriteByte('-')
	}
	sb.WriteString(strconv.FormatInt(whole, 10))
	if frac != 0 {
		sb.WriteByte('.')
		sb.WriteString(fmt.Sprintf("%02d", frac))
	}
	return sb.String()
}
