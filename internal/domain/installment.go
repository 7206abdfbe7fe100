package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Installment represents one scheduled payment of a loan. Amount is fixed at
// origination; PaidAmount and PaymentDate are set exactly once, when IsPaid
// flips to true.
type Installment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	LoanID      uuid.UUID       `json:"loan_id" db:"loan_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	DueDate     time.Time       `json:"due_date" db:"due_date"`
	PaymentDate *time.Time      `json:"payment_date,omitempty" db:"payment_date"`
	IsPaid      bool            `json:"is_paid" db:"is_paid"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// SortInstallmentsByDueDate orders installments earliest-due first. The sort
// is stable so equal due dates keep their storage order.
func SortInstallmentsByDueDate(installments []*Installment) {
	sort.SliceStable(installments, func(i, j int) bool {
		return installments[i].DueDate.Before(installments[j].DueDate)
	})
}
