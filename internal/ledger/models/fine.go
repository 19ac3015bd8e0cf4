package models

import (
	"fmt"
	"time"
)

// Fine schedule. Amounts are integer cents so repeated assessment of the same
// loan always lands on the same value.
const (
	DailyFineCents int64 = 50
	MaxFineCents   int64 = 2500
)

// OverdueDays counts whole 24-hour periods elapsed since the due date,
// truncating any partial day. A loan 47 hours past due is 1 day overdue.
func OverdueDays(dueAt, ref time.Time) int64 {
	if !ref.After(dueAt) {
		return 0
	}
	return int64(ref.Sub(dueAt) / (24 * time.Hour))
}

// FineCents is the fine owed at ref for a loan due at dueAt, capped at
// MaxFineCents. Zero while the loan is inside its grace of a partial day.
func FineCents(dueAt, ref time.Time) int64 {
	fine := OverdueDays(dueAt, ref) * DailyFineCents
	if fine > MaxFineCents {
		return MaxFineCents
	}
	return fine
}

// FormatCents renders cents as a dollar string, e.g. 250 -> "2.50".
func FormatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
