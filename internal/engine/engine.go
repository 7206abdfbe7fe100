// Package engine implements the loan lifecycle engine: credit-limit
// admission, installment schedule generation and payment allocation. The
// engine is a pure computation over entities supplied by the caller; it
// performs no I/O and expects the caller to serialize operations per
// customer/loan and to persist mutated entities atomically.
package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/furkanbegen/credit-module/internal/domain"
	customError "github.com/furkanbegen/credit-module/pkg/errors"
	"github.com/furkanbegen/credit-module/pkg/utils"
)

type Engine struct {
	policy Policy
}

func New(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// OriginationRequest carries the validated inputs of a loan origination.
// Principal is the borrowed amount before the interest markup.
type OriginationRequest struct {
	Principal           decimal.Decimal
	NumberOfInstallment int
	InterestRate        decimal.Decimal
}

// Originate validates the request against the policy and the customer's
// available credit, builds the loan with its installment schedule and debits
// the customer's used credit limit. On error neither entity is mutated.
func (e *Engine) Originate(customer *domain.Customer, request OriginationRequest, now time.Time) (*domain.Loan, error) {
	if !request.Principal.IsPositive() {
		return nil, customError.WrapInvalidLoanAmount(request.Principal)
	}
	if !e.policy.interestRateAllowed(request.InterestRate) {
		return nil, customError.WrapInvalidInterestRate(request.InterestRate, e.policy.MinInterestRate, e.policy.MaxInterestRate)
	}
	if !e.policy.installmentCountAllowed(request.NumberOfInstallment) {
		return nil, customError.WrapInvalidInstallmentCount(request.NumberOfInstallment, e.policy.AllowedInstallments)
	}

	// The loan amount is the total payable including interest; admission is
	// checked against that total, never against the bare principal.
	totalPayable := utils.CalculateTotalPayable(request.Principal, request.InterestRate)

	available := customer.AvailableCredit()
	if available.LessThan(totalPayable) {
		return nil, customError.WrapInsufficientCredit(customer.ID, totalPayable, available)
	}

	loan := &domain.Loan{
		ID:                  uuid.New(),
		CustomerID:          customer.ID,
		LoanAmount:          totalPayable,
		InterestRate:        request.InterestRate,
		NumberOfInstallment: request.NumberOfInstallment,
		CreateDate:          now,
		IsPaid:              false,
	}

	// Equal installments, each rounded on its own. The cents lost or gained
	// against the total are intentionally left unreconciled.
	installmentAmount := utils.CalculateInstallmentAmount(totalPayable, request.NumberOfInstallment)

	firstDueDate := utils.FirstDayOfNextMonth(now)
	installments := make([]*domain.Installment, 0, request.NumberOfInstallment)
	for i := 0; i < request.NumberOfInstallment; i++ {
		installments = append(installments, &domain.Installment{
			ID:         uuid.New(),
			LoanID:     loan.ID,
			Amount:     installmentAmount,
			PaidAmount: decimal.Zero,
			DueDate:    firstDueDate.AddDate(0, i, 0),
			IsPaid:     false,
			CreatedAt:  now,
		})
	}
	loan.Installments = installments

	customer.UsedCreditLimit = customer.UsedCreditLimit.Add(totalPayable)

	return loan, nil
}

// Pay allocates a payment across the loan's unpaid installments inside the
// forward payment window, earliest due date first. Installments are paid
// whole at their adjusted amount or not at all; leftover funds after the
// last affordable installment are not tracked. When the payment settles the
// final installment the loan is closed and the scheduled loan amount is
// released from the customer's used credit limit.
func (e *Engine) Pay(loan *domain.Loan, customer *domain.Customer, paymentAmount decimal.Decimal, now time.Time) (*domain.PaymentResult, error) {
	if loan.IsPaid {
		return nil, customError.WrapLoanAlreadyPaid(loan.ID)
	}
	if !paymentAmount.IsPositive() {
		return nil, customError.WrapInvalidPaymentAmount(paymentAmount)
	}

	horizon := now.AddDate(0, e.policy.PaymentHorizonMonths, 0)

	payable := make([]*domain.Installment, 0, len(loan.Installments))
	for _, installment := range loan.Installments {
		if !installment.IsPaid && installment.DueDate.Before(horizon) {
			payable = append(payable, installment)
		}
	}
	domain.SortInstallmentsByDueDate(payable)

	if len(payable) == 0 {
		return nil, customError.WrapNoPayableInstallments(loan.ID)
	}

	remaining := paymentAmount
	result := &domain.PaymentResult{
		TotalPaid:     decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalPenalty:  decimal.Zero,
	}

	for _, installment := range payable {
		adjusted := e.adjustedAmount(installment, now)
		if remaining.LessThan(adjusted) {
			break
		}

		paymentDate := now
		installment.IsPaid = true
		installment.PaidAmount = adjusted
		installment.PaymentDate = &paymentDate

		remaining = remaining.Sub(adjusted)
		result.InstallmentsPaid++
		result.TotalPaid = result.TotalPaid.Add(adjusted)

		// Classify from the realized adjustment, not from the day count, so
		// the reported discount/penalty always matches the collected amount.
		adjustment := adjusted.Sub(installment.Amount)
		if adjustment.IsNegative() {
			result.TotalDiscount = result.TotalDiscount.Add(adjustment.Abs())
		} else {
			result.TotalPenalty = result.TotalPenalty.Add(adjustment)
		}
	}

	if result.InstallmentsPaid == 0 {
		return nil, customError.WrapInsufficientPaymentAmount(loan.ID, paymentAmount)
	}

	if loan.AllInstallmentsPaid() {
		loan.IsPaid = true
		result.LoanFullyPaid = true

		// Release the scheduled total, not the adjusted sum actually
		// collected.
		customer.UsedCreditLimit = customer.UsedCreditLimit.Sub(loan.LoanAmount)
	}

	return result, nil
}

// adjustedAmount applies the daily discount/penalty rate for the whole
// calendar days between the installment's due date and the payment date.
// Time of day is ignored; paying on the due date costs exactly the
// scheduled amount.
func (e *Engine) adjustedAmount(installment *domain.Installment, now time.Time) decimal.Decimal {
	days := utils.WholeDaysBetween(installment.DueDate, now)
	if days == 0 {
		return installment.Amount
	}

	absDays := days
	if absDays < 0 {
		absDays = -absDays
	}

	rate := e.policy.DailyAdjustmentRate.Mul(decimal.NewFromInt(int64(absDays)))
	adjustment := installment.Amount.Mul(rate)

	if days < 0 {
		// Early payment earns a discount.
		return installment.Amount.Sub(adjustment)
	}
	// Late payment accrues a penalty.
	return installment.Amount.Add(adjustment)
}
