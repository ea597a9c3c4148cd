package timeutil

import (
	"math"
	"math/rand"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name      string
		seconds   float64
		precision Precision
		want      string
	}{
		{"zero millis", 0, Millisecond, "0:00.000"},
		{"sub minute millis", 5.25, Millisecond, "0:05.250"},
		{"minutes millis", 83.5, Millisecond, "1:23.500"},
		{"hours millis", 3723.004, Millisecond, "1:02:03.004"},
		{"rounds up to next second", 59.9996, Millisecond, "1:00.000"},
		{"zero whole", 0, WholeSecond, "0:00"},
		{"truncates whole", 59.9, WholeSecond, "0:59"},
		{"minutes whole", 754, WholeSecond, "12:34"},
		{"hours whole", 4271, WholeSecond, "1:11:11"},
		{"negative clamps", -3, WholeSecond, "0:00"},
		{"nan clamps", math.NaN(), Millisecond, "0:00.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.seconds, tt.precision); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    float64
		wantNaN bool
	}{
		{"raw seconds", "90", 90, false},
		{"fractional seconds", "12.5", 12.5, false},
		{"minutes", "1:30", 90, false},
		{"minutes with millis", "1:23.500", 83.5, false},
		{"hours", "1:02:03", 3723, false},
		{"hours with millis", "1:02:03.004", 3723.004, false},
		{"surrounding spaces", " 0:05 ", 5, false},
		{"empty", "", 0, true},
		{"letters", "abc", 0, true},
		{"letters in minutes", "x:30", 0, true},
		{"empty segment", "1::30", 0, true},
		{"too many segments", "1:2:3:4", 0, true},
		{"nan literal", "NaN", 0, true},
		{"inf literal", "Inf", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if tt.wantNaN {
				if !math.IsNaN(got) {
					t.Errorf("Parse(%q) = %v, want NaN", tt.text, got)
				}
				return
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Parse(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		v := rng.Float64() * 36000

		if got := Parse(Format(v, Millisecond)); math.Abs(got-v) > 0.001 {
			t.Fatalf("millisecond round trip of %v = %v", v, got)
		}
		if got := Parse(Format(v, WholeSecond)); math.Abs(got-v) >= 1 {
			t.Fatalf("whole-second round trip of %v = %v", v, got)
		}
	}
}

func TestParseTimeToSeconds(t *testing.T) {
	if v, err := ParseTimeToSeconds("2:00"); err != nil || v != 120 {
		t.Errorf("ParseTimeToSeconds(2:00) = %v, %v", v, err)
	}
	if _, err := ParseTimeToSeconds("two minutes"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}
