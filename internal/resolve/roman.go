package resolve

import "strings"

var romanValues = []struct {
	symbol string
	value  int
}{
	{"M", 1000}, {"CM", 900}, {"D", 500}, {"CD", 400},
	{"C", 100}, {"XC", 90}, {"L", 50}, {"XL", 40},
	{"X", 10}, {"IX", 9}, {"V", 5}, {"IV", 4}, {"I", 1},
}

// ParseRoman parses a Roman numeral using the right-to-left subtractive
// principle, accepting values in [1, 3999]. It rejects the empty string,
// non-Roman characters, repeated-four forms like "IIII", and any input
// that does not round-trip to the same canonical form (which catches
// invalid combinations such as "IM" or overflow beyond 3999).
func ParseRoman(s string) (value int, uppercase bool, ok bool) {
	if s == "" {
		return 0, false, false
	}
	upper := strings.ToUpper(s)
	for _, r := range upper {
		if !strings.ContainsRune("MDCLXVI", r) {
			return 0, false, false
		}
	}
	uppercase = upper == s

	remaining := upper
	total := 0
	for _, rv := range romanValues {
		for strings.HasPrefix(remaining, rv.symbol) {
			total += rv.value
			remaining = remaining[len(rv.symbol):]
		}
	}
	if remaining != "" || total == 0 || total > 3999 {
		return 0, false, false
	}
	// Round-trip check rejects malformed-but-greedily-consumable strings.
	if ToRoman(total) != upper {
		return 0, false, false
	}
	return total, uppercase, true
}

// ToRoman renders v in [1, 3999] as an uppercase Roman numeral.
func ToRoman(v int) string {
	if v <= 0 || v > 3999 {
		return ""
	}
	var b strings.Builder
	for _, rv := range romanValues {
		for v >= rv.value {
			b.WriteString(rv.symbol)
			v -= rv.value
		}
	}
	return b.String()
}
