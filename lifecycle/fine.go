package lifecycle

import (
	"time"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// OverdueDays counts started days past due. Returns before the due date
// count as zero.
func OverdueDays(due, returned time.Time) int {
	late := returned.Sub(due)
	if late <= 0 {
		return 0
	}
	days := int(late / day)
	if late%day != 0 {
		days++
	}
	return days
}

// Fine is days × rate, rounded to cents. A negative rate counts as zero.
func Fine(days int, rate decimal.Decimal) decimal.Decimal {
	if days <= 0 || rate.IsNegative() {
		return decimal.Zero
	}
	return rate.Mul(decimal.NewFromInt(int64(days))).Round(2)
}
