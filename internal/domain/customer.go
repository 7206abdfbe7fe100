package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer represents a credit customer. The invariant
// 0 <= UsedCreditLimit <= CreditLimit holds at all times; only loan
// origination and full payoff move UsedCreditLimit.
type Customer struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	Surname         string          `json:"surname" db:"surname"`
	CreditLimit     decimal.Decimal `json:"credit_limit" db:"credit_limit"`
	UsedCreditLimit decimal.Decimal `json:"used_credit_limit" db:"used_credit_limit"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// AvailableCredit returns the credit still open for new loans.
func (c *Customer) AvailableCredit() decimal.Decimal {
	return c.CreditLimit.Sub(c.UsedCreditLimit)
}

// SameEntity reports whether two entity ids identify the same persisted
// entity. Transient entities (zero id) are never equal, not even to
// themselves.
func SameEntity(a, b uuid.UUID) bool {
	if a == uuid.Nil || b == uuid.Nil {
		return false
	}
	return a == b
}
