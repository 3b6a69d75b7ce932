package utils

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func ProcessValidationErrors(err error) map[string]string {

	errorResponse := make(map[string]string)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errorResponse["error"] = err.Error()
		return errorResponse
	}

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

// StartOfMonth truncates t to the first day of its month at midnight.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfQuarter truncates t to the first day of its calendar quarter.
func StartOfQuarter(t time.Time) time.Time {
	startMonth := ((int(t.Month())-1)/3)*3 + 1
	return time.Date(t.Year(), time.Month(startMonth), 1, 0, 0, 0, 0, t.Location())
}

// StartOfYear truncates t to January 1st of its year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// GetLastMonthsRange returns the window covering the last n calendar
// months inclusive of the current month: the first day of the month
// n-1 months ago through the last second of the current month.
func GetLastMonthsRange(months int) (time.Time, time.Time) {
	now := time.Now()
	start := StartOfMonth(now).AddDate(0, -(months - 1), 0)
	end := StartOfMonth(now).AddDate(0, 1, -1).Add(time.Hour*23 + time.Minute*59 + time.Second*59)
	return start, end
}

// GetThisMonthRange returns the start and end dates of the current month.
func GetThisMonthRange() (time.Time, time.Time) {
	now := time.Now()
	start := StartOfMonth(now)
	end := start.AddDate(0, 1, -1).Add(time.Hour*23 + time.Minute*59 + time.Second*59)
	return start, end
}

// GetQuarterRange returns the start and end dates for the quarter containing the specified month.
func GetQuarterRange(year int, month time.Month) (time.Time, time.Time) {
	startMonth := ((int(month)-1)/3)*3 + 1
	start := time.Date(year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, -1).Add(time.Hour*23 + time.Minute*59 + time.Second*59)
	return start, end
}

func FindOldestDate(dates ...*time.Time) *time.Time {
	var oldest *time.Time
	for _, d := range dates {
		if d == nil {
			continue
		}
		if oldest == nil || d.Before(*oldest) {
			oldest = d
		}
	}
	return oldest
}

func ParseDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}
