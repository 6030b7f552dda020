package resolve

import "testing"

func TestRomanRoundTrip(t *testing.T) {
	for v := 1; v <= 3999; v++ {
		s := ToRoman(v)
		got, upper, ok := ParseRoman(s)
		if !ok {
			t.Fatalf("ParseRoman(%q) for value %d: not ok", s, v)
		}
		if got != v {
			t.Fatalf("ParseRoman(%q) = %d, want %d", s, got, v)
		}
		if !upper {
			t.Fatalf("ParseRoman(%q): want uppercase=true", s)
		}
	}
}

func TestRomanRejectsMalformed(t *testing.T) {
	cases := []string{"", "IIII", "IM", "VX", "MMMM", "ABC", "iiii"}
	for _, c := range cases {
		if _, _, ok := ParseRoman(c); ok {
			t.Errorf("ParseRoman(%q): expected rejection, got ok", c)
		}
	}
}

func TestRomanLowercaseRoundTrip(t *testing.T) {
	v, upper, ok := ParseRoman("xiv")
	if !ok || v != 14 || upper {
		t.Fatalf("ParseRoman(%q) = (%d, %v, %v), want (14, false, true)", "xiv", v, upper, ok)
	}
}
