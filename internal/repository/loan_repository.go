package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/furkanbegen/credit-module/internal/domain"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	loanQuery := `
		INSERT INTO loans (id, customer_id, loan_amount, interest_rate, number_of_installment, create_date, is_paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	installmentQuery := `
		INSERT INTO loan_installments (id, loan_id, amount, paid_amount, due_date, payment_date, is_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, loanQuery,
		loan.ID,
		loan.CustomerID,
		loan.LoanAmount,
		loan.InterestRate,
		loan.NumberOfInstallment,
		loan.CreateDate,
		loan.IsPaid,
	)
	if err != nil {
		return err
	}

	for _, installment := range loan.Installments {
		_, err = tx.ExecContext(ctx, installmentQuery,
			installment.ID,
			installment.LoanID,
			installment.Amount,
			installment.PaidAmount,
			installment.DueDate,
			installment.PaymentDate,
			installment.IsPaid,
			installment.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) GetByIDAndCustomerID(ctx context.Context, loanID, customerID uuid.UUID) (*domain.Loan, error) {
	loanQuery := `
		SELECT id, customer_id, loan_amount, interest_rate, number_of_installment, create_date, is_paid
		FROM loans
		WHERE id = $1 AND customer_id = $2
	`

	var loan domain.Loan
	err := r.db.GetContext(ctx, &loan, loanQuery, loanID, customerID)
	if err != nil {
		return nil, err
	}

	// Due-date order here fixes the allocation order; equal due dates fall
	// back to id so the sequence stays deterministic.
	installmentQuery := `
		SELECT id, loan_id, amount, paid_amount, due_date, payment_date, is_paid, created_at
		FROM loan_installments
		WHERE loan_id = $1
		ORDER BY due_date, id
	`

	var installments []*domain.Installment
	if err := r.db.SelectContext(ctx, &installments, installmentQuery, loanID); err != nil {
		return nil, err
	}
	loan.Installments = installments

	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	loanQuery := `
		UPDATE loans
		SET is_paid = $2
		WHERE id = $1
	`
	installmentQuery := `
		UPDATE loan_installments
		SET paid_amount = $2, payment_date = $3, is_paid = $4
		WHERE id = $1
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, loanQuery, loan.ID, loan.IsPaid); err != nil {
		return err
	}

	for _, installment := range loan.Installments {
		_, err = tx.ExecContext(ctx, installmentQuery,
			installment.ID,
			installment.PaidAmount,
			installment.PaymentDate,
			installment.IsPaid,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *loanRepository) ListByCustomerID(ctx context.Context, customerID uuid.UUID, filter *domain.LoanFilter, now time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT id, customer_id, loan_amount, interest_rate, number_of_installment, create_date, is_paid
		FROM loans l
		WHERE customer_id = $1
		AND ($2::boolean IS NULL OR is_paid = $2)
		AND ($3::int IS NULL OR number_of_installment = $3)
		AND ($4::boolean IS NULL OR $4 = false OR EXISTS (
			SELECT 1 FROM loan_installments li
			WHERE li.loan_id = l.id
			AND li.is_paid = false
			AND li.due_date < $5
		))
		ORDER BY create_date
	`

	var isPaid *bool
	var numberOfInstallment *int
	var isOverdue *bool
	if filter != nil {
		isPaid = filter.IsPaid
		numberOfInstallment = filter.NumberOfInstallment
		isOverdue = filter.IsOverdue
	}

	var loans []*domain.Loan
	err := r.db.SelectContext(ctx, &loans, query, customerID, isPaid, numberOfInstallment, isOverdue, now)
	if err != nil {
		return nil, err
	}

	if len(loans) == 0 {
		return loans, nil
	}

	loanIDs := make([]uuid.UUID, 0, len(loans))
	byID := make(map[uuid.UUID]*domain.Loan, len(loans))
	for _, loan := range loans {
		loanIDs = append(loanIDs, loan.ID)
		byID[loan.ID] = loan
	}

	installmentQuery, args, err := sqlx.In(`
		SELECT id, loan_id, amount, paid_amount, due_date, payment_date, is_paid, created_at
		FROM loan_installments
		WHERE loan_id IN (?)
		ORDER BY due_date, id
	`, loanIDs)
	if err != nil {
		return nil, err
	}

	var installments []*domain.Installment
	err = r.db.SelectContext(ctx, &installments, r.db.Rebind(installmentQuery), args...)
	if err != nil {
		return nil, err
	}

	for _, installment := range installments {
		if loan, ok := byID[installment.LoanID]; ok {
			loan.Installments = append(loan.Installments, installment)
		}
	}

	return loans, nil
}

func (r *loanRepository) ListOverdueInstallments(ctx context.Context, now time.Time) ([]*domain.Installment, error) {
	query := `
		SELECT i.id, i.loan_id, i.amount, i.paid_amount, i.due_date, i.payment_date, i.is_paid, i.created_at
		FROM loan_installments i
		JOIN loans l ON l.id = i.loan_id
		WHERE i.is_paid = false AND l.is_paid = false AND i.due_date < $1
		ORDER BY i.due_date, i.id
	`

	var installments []*domain.Installment
	err := r.db.SelectContext(ctx, &installments, query, now)
	if err != nil {
		return nil, err
	}

	return installments, nil
}
