package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/furkanbegen/credit-module/internal/config"
	"github.com/furkanbegen/credit-module/internal/domain"
	"github.com/furkanbegen/credit-module/internal/engine"
	"github.com/furkanbegen/credit-module/internal/repository"
	customError "github.com/furkanbegen/credit-module/pkg/errors"
)

// LoanService orchestrates the loan lifecycle engine: it resolves the
// customer and loan snapshots, runs the engine, and persists the mutated
// entities. Operations on the same customer/loan must be serialized by the
// deployment (one instance per logical transaction); the engine itself does
// no locking.
type LoanService struct {
	customerRepo repository.CustomerRepository
	loanRepo     repository.LoanRepository
	engine       *engine.Engine
	redis        *redis.Client
	cacheTTL     time.Duration
}

func NewLoanService(
	customerRepo repository.CustomerRepository,
	loanRepo repository.LoanRepository,
	loanEngine *engine.Engine,
	redisClient *redis.Client,
	cfg *config.Config,
) *LoanService {
	var ttl time.Duration
	if cfg != nil {
		ttl = cfg.Business.LoanCacheTTL
	}
	return &LoanService{
		customerRepo: customerRepo,
		loanRepo:     loanRepo,
		engine:       loanEngine,
		redis:        redisClient,
		cacheTTL:     ttl,
	}
}

// CreateLoan originates a loan for the customer and persists the loan, its
// installments and the debited credit limit.
func (s *LoanService) CreateLoan(ctx context.Context, customerID uuid.UUID, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCustomerNotFound(customerID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	loan, err := s.engine.Originate(customer, engine.OriginationRequest{
		Principal:           request.LoanAmount,
		NumberOfInstallment: request.NumberOfInstallment,
		InterestRate:        request.InterestRate,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	// Loan and installments go in one transaction; the customer debit is a
	// separate statement. Serialized access per customer keeps the pair
	// consistent.
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loan, nil
}

// PayLoan allocates a payment across the loan's installments and persists
// the mutated loan, installments and, on full payoff, the released credit
// limit.
func (s *LoanService) PayLoan(ctx context.Context, customerID, loanID uuid.UUID, request *domain.PayLoanRequest) (*domain.PaymentResult, error) {
	loan, err := s.getLoan(ctx, customerID, loanID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCustomerNotFound(customerID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	result, err := s.engine.Pay(loan, customer, request.PaymentAmount, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.loanRepo.Update(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if result.LoanFullyPaid {
		if err := s.customerRepo.Update(ctx, customer); err != nil {
			return nil, customError.WrapDatabaseError(err)
		}
	}

	s.invalidateLoanCache(ctx, loanID)

	return result, nil
}

// GetLoans lists a customer's loans, optionally filtered by paid state,
// installment count and overdue state.
func (s *LoanService) GetLoans(ctx context.Context, customerID uuid.UUID, filter *domain.LoanFilter) ([]*domain.Loan, error) {
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapCustomerNotFound(customerID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	loans, err := s.loanRepo.ListByCustomerID(ctx, customerID, filter, time.Now())
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loans, nil
}

// GetLoanWithInstallments returns one loan with its installment schedule,
// served from the Redis cache when possible.
func (s *LoanService) GetLoanWithInstallments(ctx context.Context, customerID, loanID uuid.UUID) (*domain.Loan, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, loanCacheKey(loanID)).Result(); err == nil {
			var loan domain.Loan
			if err := json.Unmarshal([]byte(cached), &loan); err == nil && loan.CustomerID == customerID {
				return &loan, nil
			}
		}
	}

	loan, err := s.getLoan(ctx, customerID, loanID)
	if err != nil {
		return nil, err
	}

	s.cacheLoan(ctx, loan)

	return loan, nil
}

func (s *LoanService) getLoan(ctx context.Context, customerID, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loanRepo.GetByIDAndCustomerID(ctx, loanID, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapLoanNotFound(loanID, customerID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

func (s *LoanService) cacheLoan(ctx context.Context, loan *domain.Loan) {
	if s.redis == nil {
		return
	}

	payload, err := json.Marshal(loan)
	if err != nil {
		return
	}

	if err := s.redis.Set(ctx, loanCacheKey(loan.ID), payload, s.cacheTTL).Err(); err != nil {
		log.Printf("Failed to cache loan %s: %v", loan.ID, err)
	}
}

func (s *LoanService) invalidateLoanCache(ctx context.Context, loanID uuid.UUID) {
	if s.redis == nil {
		return
	}

	if err := s.redis.Del(ctx, loanCacheKey(loanID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("Failed to invalidate loan cache %s: %v", loanID, err)
	}
}

func loanCacheKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:%s", loanID)
}
