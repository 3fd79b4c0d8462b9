package normalize

import "testing"

func TestPenalty_Coerces(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"currency string", "$1,234.5", 1234.50},
		{"plain number", 47500.0, 47500.00},
		{"integer", 3000000, 3000000.00},
		{"trailing text", "$250,000 civil penalty", 250000.00},
		{"extra precision rounds", 99.999, 100.00},
		{"zero", "0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Penalty(tt.in)
			if err != nil {
				t.Fatalf("Penalty(%v) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("Penalty(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPenalty_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"negative string", "-50"},
		{"negative number", -50.0},
		{"non numeric", "abc"},
		{"empty", ""},
		{"bool", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Penalty(tt.in); err == nil {
				t.Fatalf("Penalty(%v) expected rejection, got nil error", tt.in)
			}
		})
	}
}

func TestPenalty_Idempotent(t *testing.T) {
	first, err := Penalty("$1,234.5")
	if err != nil {
		t.Fatalf("Penalty() error = %v", err)
	}
	second, err := Penalty(first)
	if err != nil {
		t.Fatalf("Penalty() on coerced value error = %v", err)
	}
	if second != first {
		t.Fatalf("Penalty() not idempotent: %v != %v", second, first)
	}
}
