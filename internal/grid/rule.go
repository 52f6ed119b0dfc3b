package grid

import (
	"fmt"
	"strings"
)

// Rule is an outer-totalistic two-state rule in B/S notation.
type Rule struct {
	Birth   [9]bool
	Survive [9]bool
}

// Life is Conway's rule.
var Life = MustParseRule("B3/S23")

// ParseRule accepts "B3/S23" style rules (any case) and the older
// "23/3" survive/birth form.
func ParseRule(s string) (Rule, error) {
	var r Rule
	t := strings.ToUpper(strings.TrimSpace(s))
	parts := strings.Split(t, "/")
	if len(parts) != 2 {
		return r, fmt.Errorf("%w: %q", ErrBadRule, s)
	}

	birth, survive := parts[0], parts[1]
	switch {
	case strings.HasPrefix(birth, "B") && strings.HasPrefix(survive, "S"):
		birth, survive = birth[1:], survive[1:]
	case strings.HasPrefix(birth, "S") && strings.HasPrefix(survive, "B"):
		birth, survive = survive[1:], birth[1:]
	default:
		// S/B digits only
		birth, survive = survive, birth
	}

	if err := digits(birth, &r.Birth); err != nil {
		return r, fmt.Errorf("%w: %q: %v", ErrBadRule, s, err)
	}
	if err := digits(survive, &r.Survive); err != nil {
		return r, fmt.Errorf("%w: %q: %v", ErrBadRule, s, err)
	}
	return r, nil
}

// MustParseRule is ParseRule for constants.
func MustParseRule(s string) Rule {
	r, err := ParseRule(s)
	if err != nil {
		panic(err)
	}
	return r
}

func digits(s string, set *[9]bool) error {
	for _, ch := range s {
		if ch < '0' || ch > '8' {
			return fmt.Errorf("bad neighbour count %q", ch)
		}
		set[ch-'0'] = true
	}
	return nil
}

// String returns the canonical B/S form.
func (r Rule) String() string {
	var b strings.Builder
	b.WriteByte('B')
	for i, on := range r.Birth {
		if on {
			b.WriteByte(byte('0' + i))
		}
	}
	b.WriteString("/S")
	for i, on := range r.Survive {
		if on {
			b.WriteByte(byte('0' + i))
		}
	}
	return b.String()
}
