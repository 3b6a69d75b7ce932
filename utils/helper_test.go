package utils

import (
	"errors"
	"testing"
	"time"
)

func TestStartOfQuarter(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2026, time.February, 15, 10, 0, 0, 0, time.UTC), time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC), time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := StartOfQuarter(tt.in); !got.Equal(tt.want) {
			t.Errorf("StartOfQuarter(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetQuarterRange(t *testing.T) {
	start, end := GetQuarterRange(2026, time.May)
	if !start.Equal(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("quarter start = %v", start)
	}
	if end.Month() != time.June || end.Day() != 30 {
		t.Errorf("quarter end = %v, want June 30", end)
	}
}

func TestGetLastMonthsRange(t *testing.T) {
	start, end := GetLastMonthsRange(12)

	now := time.Now()
	wantStart := StartOfMonth(now).AddDate(0, -11, 0)
	if !start.Equal(wantStart) {
		t.Errorf("12-month window start = %v, want %v", start, wantStart)
	}
	if start.Day() != 1 || start.Hour() != 0 {
		t.Errorf("window start must be the first of a month at midnight, got %v", start)
	}
	if end.Before(now) {
		t.Errorf("window end %v must cover the current month through %v", end, now)
	}
	if end.Month() != now.Month() || end.Year() != now.Year() {
		t.Errorf("window end = %v, want the current month", end)
	}
}

func TestGetThisMonthRange(t *testing.T) {
	start, end := GetThisMonthRange()

	now := time.Now()
	if !start.Equal(StartOfMonth(now)) {
		t.Errorf("month start = %v, want %v", start, StartOfMonth(now))
	}
	if end.Month() != now.Month() || end.Hour() != 23 || end.Minute() != 59 {
		t.Errorf("month end = %v, want last second of the current month", end)
	}
}

func TestFindOldestDate(t *testing.T) {
	a := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC)

	if got := FindOldestDate(&a, nil, &b); got == nil || !got.Equal(b) {
		t.Errorf("FindOldestDate = %v, want %v", got, b)
	}
	if got := FindOldestDate(nil, nil); got != nil {
		t.Errorf("FindOldestDate(nil, nil) = %v, want nil", got)
	}
}

func TestParseDecimal(t *testing.T) {
	if d, err := ParseDecimal("12.34"); err != nil || d.String() != "12.34" {
		t.Errorf("ParseDecimal(12.34) = %s, %v", d, err)
	}
	if d, err := ParseDecimal(""); err != nil || !d.IsZero() {
		t.Errorf("ParseDecimal(\"\") = %s, %v, want 0", d, err)
	}
	if _, err := ParseDecimal("abc"); err == nil {
		t.Error("ParseDecimal must reject non-numeric input")
	}
}

func TestDereferencePtr(t *testing.T) {
	v := 42
	if got := DereferencePtr(&v); got != 42 {
		t.Errorf("DereferencePtr(&42) = %d", got)
	}
	if got := DereferencePtr[int](nil); got != 0 {
		t.Errorf("DereferencePtr(nil) = %d, want 0", got)
	}
	if got := DereferencePtr(nil, 7); got != 7 {
		t.Errorf("DereferencePtr(nil, 7) = %d, want 7", got)
	}
}

func TestProcessValidationErrorsFallback(t *testing.T) {
	got := ProcessValidationErrors(errors.New("boom"))
	if got["error"] != "boom" {
		t.Errorf("fallback map = %v", got)
	}
}
