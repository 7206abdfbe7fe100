package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrCustomerNotFound          = errors.New("customer not found")
	ErrLoanNotFound              = errors.New("loan not found")
	ErrInsufficientCredit        = errors.New("insufficient credit limit")
	ErrLoanAlreadyPaid           = errors.New("loan is already fully paid")
	ErrNoPayableInstallments     = errors.New("no payable installments found")
	ErrInsufficientPaymentAmount = errors.New("payment amount is insufficient for any installment")
	ErrInvalidLoanAmount         = errors.New("invalid loan amount")
	ErrInvalidInterestRate       = errors.New("interest rate out of allowed range")
	ErrInvalidInstallmentCount   = errors.New("invalid number of installments")
	ErrInvalidPaymentAmount      = errors.New("invalid payment amount")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeCustomerNotFound        = "CUSTOMER_NOT_FOUND"
	ErrCodeLoanNotFound            = "LOAN_NOT_FOUND"
	ErrCodeInsufficientCredit      = "INSUFFICIENT_CREDIT_LIMIT"
	ErrCodeLoanAlreadyPaid         = "LOAN_ALREADY_PAID"
	ErrCodeNoPayableInstallments   = "NO_PAYABLE_INSTALLMENTS"
	ErrCodeInsufficientPayment     = "INSUFFICIENT_PAYMENT_AMOUNT"
	ErrCodeInvalidLoanAmount       = "INVALID_LOAN_AMOUNT"
	ErrCodeInvalidInterestRate     = "INVALID_INTEREST_RATE"
	ErrCodeInvalidInstallmentCount = "INVALID_INSTALLMENT_COUNT"
	ErrCodeInvalidPaymentAmount    = "INVALID_PAYMENT_AMOUNT"
	ErrCodeDatabaseError           = "DATABASE_ERROR"
	ErrCodeCacheError              = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapCustomerNotFound(customerID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeCustomerNotFound,
		fmt.Sprintf("Customer with ID %s not found", customerID),
		ErrCustomerNotFound,
	)
}

func WrapLoanNotFound(loanID, customerID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found for customer %s", loanID, customerID),
		ErrLoanNotFound,
	)
}

func WrapInsufficientCredit(customerID uuid.UUID, requested, available decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientCredit,
		fmt.Sprintf("Customer %s has %s available credit, %s requested", customerID, available, requested),
		ErrInsufficientCredit,
	)
}

func WrapLoanAlreadyPaid(loanID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyPaid,
		fmt.Sprintf("Loan with ID %s is already fully paid", loanID),
		ErrLoanAlreadyPaid,
	)
}

func WrapNoPayableInstallments(loanID uuid.UUID) *BusinessError {
	return NewBusinessError(
		ErrCodeNoPayableInstallments,
		fmt.Sprintf("Loan with ID %s has no unpaid installments inside the payment window", loanID),
		ErrNoPayableInstallments,
	)
}

func WrapInsufficientPaymentAmount(loanID uuid.UUID, amount decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientPayment,
		fmt.Sprintf("Payment of %s does not cover the earliest installment of loan %s", amount, loanID),
		ErrInsufficientPaymentAmount,
	)
}

func WrapInvalidLoanAmount(amount decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanAmount,
		fmt.Sprintf("Loan amount must be greater than 0, got %s", amount),
		ErrInvalidLoanAmount,
	)
}

func WrapInvalidInterestRate(rate, min, max decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInterestRate,
		fmt.Sprintf("Interest rate %s is outside the allowed range [%s, %s]", rate, min, max),
		ErrInvalidInterestRate,
	)
}

func WrapInvalidInstallmentCount(count int, allowed []int) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidInstallmentCount,
		fmt.Sprintf("Number of installments %d is not one of the allowed options %v", count, allowed),
		ErrInvalidInstallmentCount,
	)
}

func WrapInvalidPaymentAmount(amount decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Payment amount must be greater than 0, got %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
