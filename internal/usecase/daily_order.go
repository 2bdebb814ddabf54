package usecase

import "time"

// DailyOrder rotates items right by the UTC day of year (0-based) modulo len(items).
// Everyone sees the same order on a given calendar day. The input is never modified.
func DailyOrder[T any](items []T, date time.Time) []T {
	n := len(items)
	if n == 0 {
		return items
	}

	dayOfYear := date.UTC().YearDay() - 1
	rotate := dayOfYear % n

	out := make([]T, 0, n)
	out = append(out, items[n-rotate:]...)
	out = append(out, items[:n-rotate]...)
	return out
}
