package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Loan represents an installment loan. LoanAmount is the total payable
// amount with interest already applied, not the borrowed principal.
type Loan struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	CustomerID          uuid.UUID       `json:"customer_id" db:"customer_id"`
	LoanAmount          decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	InterestRate        decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	NumberOfInstallment int             `json:"number_of_installment" db:"number_of_installment"`
	CreateDate          time.Time       `json:"create_date" db:"create_date"`
	IsPaid              bool            `json:"is_paid" db:"is_paid"`

	Installments []*Installment `json:"installments,omitempty" db:"-"`
}

// AllInstallmentsPaid reports whether every installment on the loan is paid.
func (l *Loan) AllInstallmentsPaid() bool {
	for _, installment := range l.Installments {
		if !installment.IsPaid {
			return false
		}
	}
	return true
}

// DTOs for requests and responses

type CreateLoanRequest struct {
	LoanAmount          decimal.Decimal `json:"loan_amount" validate:"required,gt=0"`
	NumberOfInstallment int             `json:"number_of_installment" validate:"required,oneof=6 9 12 24"`
	InterestRate        decimal.Decimal `json:"interest_rate" validate:"required,gte=0.1,lte=0.5"`
}

type CreateLoanResponse struct {
	Loan *Loan `json:"loan"`
}

// LoanFilter narrows a customer's loan listing. Nil fields are ignored.
type LoanFilter struct {
	IsPaid              *bool
	NumberOfInstallment *int
	IsOverdue           *bool
}
