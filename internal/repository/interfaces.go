package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/furkanbegen/credit-module/internal/domain"
)

// CustomerRepository defines the interface for customer data operations
type CustomerRepository interface {
	// Create creates a new customer
	Create(ctx context.Context, customer *domain.Customer) error

	// GetByID retrieves a customer by id
	GetByID(ctx context.Context, customerID uuid.UUID) (*domain.Customer, error)

	// Update persists the customer's mutable fields (used credit limit)
	Update(ctx context.Context, customer *domain.Customer) error
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a loan together with its installments in one transaction
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByIDAndCustomerID retrieves a loan with its installments ordered by
	// due date
	GetByIDAndCustomerID(ctx context.Context, loanID, customerID uuid.UUID) (*domain.Loan, error)

	// Update persists the loan flags and installment payment mutations in one
	// transaction
	Update(ctx context.Context, loan *domain.Loan) error

	// ListByCustomerID retrieves a customer's loans, optionally filtered
	ListByCustomerID(ctx context.Context, customerID uuid.UUID, filter *domain.LoanFilter, now time.Time) ([]*domain.Loan, error)

	// ListOverdueInstallments retrieves unpaid installments past due across
	// all open loans
	ListOverdueInstallments(ctx context.Context, now time.Time) ([]*domain.Installment, error)
}
