package domain

import "github.com/shopspring/decimal"

type PayLoanRequest struct {
	PaymentAmount decimal.Decimal `json:"payment_amount" validate:"required,gt=0"`
}

// PaymentResult summarizes one allocation run. TotalPaid is the sum of
// adjusted amounts actually collected; discounts and penalties are reported
// separately.
type PaymentResult struct {
	InstallmentsPaid int             `json:"installments_paid"`
	TotalPaid        decimal.Decimal `json:"total_paid"`
	LoanFullyPaid    bool            `json:"loan_fully_paid"`
	TotalDiscount    decimal.Decimal `json:"total_discount"`
	TotalPenalty     decimal.Decimal `json:"total_penalty"`
}
