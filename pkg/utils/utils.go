package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculateTotalPayable calculates the total loan amount including interest
// Formula: principal * (1 + rate), rounded half-up to 2 decimal places
func CalculateTotalPayable(principal decimal.Decimal, interestRate decimal.Decimal) decimal.Decimal {
	total := principal.Mul(decimal.NewFromInt(1).Add(interestRate))
	return total.Round(2)
}

// CalculateInstallmentAmount divides the total payable amount into equal
// monthly installments. Each installment is rounded independently, so the
// sum of installments can drift from the total by a few cents; the residual
// is not reconciled.
func CalculateInstallmentAmount(totalPayable decimal.Decimal, numberOfInstallment int) decimal.Decimal {
	return totalPayable.Div(decimal.NewFromInt(int64(numberOfInstallment))).Round(2)
}

// FirstDayOfNextMonth returns the first day of the month following date,
// at midnight in the same location.
func FirstDayOfNextMonth(date time.Time) time.Time {
	year, month, _ := date.Date()
	return time.Date(year, month+1, 1, 0, 0, 0, 0, date.Location())
}

// TruncateToDay strips the time-of-day component, keeping the location.
func TruncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// WholeDaysBetween returns the number of whole calendar days from a to b,
// ignoring time of day. Negative when b is before a. Calendar dates are
// compared in UTC so DST transitions cannot skew the count.
func WholeDaysBetween(a, b time.Time) int {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	start := time.Date(ya, ma, da, 0, 0, 0, 0, time.UTC)
	end := time.Date(yb, mb, db, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// DecimalFromFloat converts float64 to decimal.Decimal
func DecimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
