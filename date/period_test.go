package date

import (
	"testing"
	"time"
)

func TestRangeIdentifier(t *testing.T) {
	d := New(2024, time.February, 14)
	tests := []struct {
		r    Range
		want string
	}{
		{NewRange(d, Daily), "2024-02-14"},
		{NewRange(d, Monthly), "2024-02"},
		{NewRange(d, Yearly), "2024"},
		{Range{From: d, To: d.Add(3)}, "2024-02-14_2024-02-17"},
	}
	for _, tt := range tests {
		if got := tt.r.Identifier(); got != tt.want {
			t.Errorf("%v.Identifier() = %q want %q", tt.r, got, tt.want)
		}
	}
}

func TestEndOfMonth(t *testing.T) {
	if got := New(2024, time.February, 3).EndOf(Monthly); got != New(2024, time.February, 29) {
		t.Errorf("EndOf(Monthly) = %v want 2024-02-29", got)
	}
	r := NewRange(New(2024, time.February, 3), Monthly)
	if !r.Contains(New(2024, time.February, 29)) || r.Contains(New(2024, time.March, 1)) {
		t.Errorf("monthly range %v has wrong boundaries", r)
	}
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{"day": Daily, "Monthly": Monthly, "year": Yearly} {
		got, err := ParsePeriod(in)
		if err != nil || got != want {
			t.Errorf("ParsePeriod(%q) = %v, %v want %v", in, got, err, want)
		}
	}
	if _, err := ParsePeriod("fortnight"); err == nil {
		t.Errorf("ParsePeriod(fortnight) want error")
	}
}
