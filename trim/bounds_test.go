package trim

import (
	"math"
	"math/rand"
	"testing"
)

func checkInvariant(t *testing.T, s Snapshot) {
	t.Helper()
	if s.Start < 0 {
		t.Fatalf("start %v < 0", s.Start)
	}
	if s.Start+MinGap > s.End+1e-9 {
		t.Fatalf("start %v + gap > end %v", s.Start, s.End)
	}
	if s.End > s.Duration {
		t.Fatalf("end %v > duration %v", s.End, s.Duration)
	}
}

func TestDefault(t *testing.T) {
	b := Default(120)
	s := b.Snapshot()
	if s.Start != 0 || s.End != 120 || s.CurrentTime != 0 || s.Duration != 120 {
		t.Errorf("Default(120) = %+v", s)
	}
}

func TestSetStart(t *testing.T) {
	tests := []struct {
		name  string
		end   float64
		input float64
		want  float64
	}{
		{"inside range", 60, 10, 10},
		{"negative clamps to zero", 60, -5, 0},
		{"past end clamps to end minus gap", 60, 65, 59},
		{"exactly at gap", 60, 59, 59},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Default(120)
			b.SetEnd(tt.end)
			if got := b.SetStart(tt.input); got != tt.want {
				t.Errorf("SetStart(%v) = %v, want %v", tt.input, got, tt.want)
			}
			checkInvariant(t, b.Snapshot())
		})
	}
}

func TestSetEnd(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		input float64
		want  float64
	}{
		{"inside range", 10, 50, 50},
		{"past duration clamps", 10, 500, 120},
		{"before start clamps to start plus gap", 10, 3, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Default(120)
			b.SetStart(tt.start)
			if got := b.SetEnd(tt.input); got != tt.want {
				t.Errorf("SetEnd(%v) = %v, want %v", tt.input, got, tt.want)
			}
			checkInvariant(t, b.Snapshot())
		})
	}
}

func TestSetIgnoresNaN(t *testing.T) {
	b := New(120, 5, 10)
	b.SetStart(math.NaN())
	b.SetEnd(math.NaN())
	b.SetCurrentTime(math.NaN())
	s := b.Snapshot()
	if s.Start != 5 || s.End != 10 || s.CurrentTime != 0 {
		t.Errorf("NaN mutated bounds: %+v", s)
	}
}

func TestInvariantHoldsUnderRandomMutation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 200; run++ {
		duration := 1 + rng.Float64()*600
		b := Default(duration)
		for i := 0; i < 50; i++ {
			v := rng.Float64()*duration*1.5 - duration*0.25
			if rng.Intn(2) == 0 {
				b.SetStart(v)
			} else {
				b.SetEnd(v)
			}
			checkInvariant(t, b.Snapshot())
		}
	}
}

func TestShortMediaPinsRange(t *testing.T) {
	b := Default(0.5)
	b.SetStart(0.3)
	b.SetEnd(0.1)
	s := b.Snapshot()
	if s.Start != 0 || s.End != 0.5 {
		t.Errorf("short media bounds = %+v, want [0, 0.5]", s)
	}
}

func TestClampCurrent(t *testing.T) {
	b := New(120, 5, 10)
	b.SetCurrentTime(42)
	if got := b.ClampCurrent(); got != 10 {
		t.Errorf("ClampCurrent() = %v, want 10", got)
	}
	b.SetCurrentTime(1)
	if got := b.ClampCurrent(); got != 5 {
		t.Errorf("ClampCurrent() = %v, want 5", got)
	}
}

func TestSnapshotContains(t *testing.T) {
	s := Snapshot{Start: 5, End: 10}
	if !s.Contains(5) || s.Contains(10) || s.Contains(4.9) {
		t.Error("Contains should be half-open [start, end)")
	}
	if s.Length() != 5 {
		t.Errorf("Length() = %v, want 5", s.Length())
	}
}
