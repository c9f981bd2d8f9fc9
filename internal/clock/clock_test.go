package clock

import (
	"testing"
	"time"
)

func TestDaysBetween(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		want int
	}{
		{
			name: "same instant",
			a:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "same calendar day different hours",
			a:    time.Date(2025, 3, 10, 0, 1, 0, 0, time.UTC),
			b:    time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC),
			want: 0,
		},
		{
			name: "adjacent days across midnight",
			a:    time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC),
			b:    time.Date(2025, 3, 11, 0, 1, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "multi day gap",
			a:    time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC),
			want: 5,
		},
		{
			name: "negative when b precedes a",
			a:    time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
			want: -5,
		},
		{
			name: "month boundary",
			a:    time.Date(2025, 2, 28, 10, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			want: 1,
		},
		{
			name: "non-UTC inputs normalized",
			a:    time.Date(2025, 3, 10, 23, 0, 0, 0, time.FixedZone("minus5", -5*3600)),
			b:    time.Date(2025, 3, 11, 12, 0, 0, 0, time.UTC),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DaysBetween(tt.a, tt.b); got != tt.want {
				t.Errorf("DaysBetween(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSameDay(t *testing.T) {
	t.Parallel()

	a := time.Date(2025, 6, 1, 0, 0, 1, 0, time.UTC)
	b := time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC)
	if !SameDay(a, b) {
		t.Error("expected same UTC day to report true")
	}
	if SameDay(a, b.Add(time.Second)) {
		t.Error("expected midnight rollover to report false")
	}
}

func TestIsFirstOfMonth(t *testing.T) {
	t.Parallel()

	if !IsFirstOfMonth(time.Date(2025, 7, 1, 15, 0, 0, 0, time.UTC)) {
		t.Error("expected July 1 to be first of month")
	}
	if IsFirstOfMonth(time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)) {
		t.Error("expected July 2 not to be first of month")
	}
	// The UTC day decides, not the local one.
	lastDayLocal := time.Date(2025, 7, 1, 1, 0, 0, 0, time.FixedZone("plus3", 3*3600))
	if IsFirstOfMonth(lastDayLocal) {
		t.Error("expected June 30 UTC not to be first of month")
	}
}

func TestWeekday(t *testing.T) {
	t.Parallel()

	// 2025-06-01 is a Sunday, 2025-06-02 a Monday.
	if got := Weekday(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)); got != 0 {
		t.Errorf("Weekday(sunday) = %d, want 0", got)
	}
	if got := Weekday(time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)); got != 1 {
		t.Errorf("Weekday(monday) = %d, want 1", got)
	}
}

func TestHourOf(t *testing.T) {
	t.Parallel()

	local := time.Date(2025, 6, 1, 22, 30, 0, 0, time.FixedZone("plus2", 2*3600))
	if got := HourOf(local); got != 20 {
		t.Errorf("HourOf = %d, want 20 (UTC hour)", got)
	}
}
