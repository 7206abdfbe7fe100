package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furkanbegen/credit-module/internal/domain"
	customError "github.com/furkanbegen/credit-module/pkg/errors"
)

var testNow = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func newTestCustomer(creditLimit, usedCreditLimit int64) *domain.Customer {
	return &domain.Customer{
		ID:              uuid.New(),
		Name:            "John",
		Surname:         "Doe",
		CreditLimit:     decimal.NewFromInt(creditLimit),
		UsedCreditLimit: decimal.NewFromInt(usedCreditLimit),
	}
}

func TestOriginate_Success(t *testing.T) {
	e := New(DefaultPolicy())
	customer := newTestCustomer(50000, 0)

	loan, err := e.Originate(customer, OriginationRequest{
		Principal:           decimal.NewFromInt(10000),
		NumberOfInstallment: 12,
		InterestRate:        decimal.NewFromFloat(0.2),
	}, testNow)

	require.NoError(t, err)
	assert.True(t, loan.LoanAmount.Equal(decimal.NewFromInt(12000)), "loan amount should be principal * 1.2, got %s", loan.LoanAmount)
	assert.Equal(t, 12, loan.NumberOfInstallment)
	assert.Equal(t, customer.ID, loan.CustomerID)
	assert.False(t, loan.IsPaid)
	assert.Equal(t, testNow, loan.CreateDate)
	require.Len(t, loan.Installments, 12)

	firstDueDate := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	for i, installment := range loan.Installments {
		assert.True(t, installment.Amount.Equal(decimal.NewFromInt(1000)), "installment %d amount, got %s", i, installment.Amount)
		assert.True(t, installment.PaidAmount.IsZero())
		assert.False(t, installment.IsPaid)
		assert.Nil(t, installment.PaymentDate)
		assert.Equal(t, firstDueDate.AddDate(0, i, 0), installment.DueDate, "installment %d due date", i)
		assert.Equal(t, loan.ID, installment.LoanID)
	}

	assert.True(t, customer.UsedCreditLimit.Equal(decimal.NewFromInt(12000)), "used credit limit should equal the total payable")
}

func TestOriginate_RoundingDriftPreserved(t *testing.T) {
	e := New(DefaultPolicy())
	customer := newTestCustomer(1000, 0)

	// 100 * 1.1 = 110.00; 110 / 9 = 12.2222... -> 12.22 each.
	// 9 * 12.22 = 109.98, two cents under the total, left as-is.
	loan, err := e.Originate(customer, OriginationRequest{
		Principal:           decimal.NewFromInt(100),
		NumberOfInstallment: 9,
		InterestRate:        decimal.NewFromFloat(0.1),
	}, testNow)

	require.NoError(t, err)
	assert.True(t, loan.LoanAmount.Equal(decimal.RequireFromString("110.00")))

	sum := decimal.Zero
	for _, installment := range loan.Installments {
		assert.True(t, installment.Amount.Equal(decimal.RequireFromString("12.22")))
		sum = sum.Add(installment.Amount)
	}
	assert.True(t, sum.Equal(decimal.RequireFromString("109.98")))
}

func TestOriginate_InstallmentAmountRoundsHalfUp(t *testing.T) {
	e := New(DefaultPolicy())
	customer := newTestCustomer(1000, 0)

	// 91 * 1.1 = 100.10; 100.10 / 12 = 8.34166... -> 8.34
	loan, err := e.Originate(customer, OriginationRequest{
		Principal:           decimal.NewFromInt(91),
		NumberOfInstallment: 12,
		InterestRate:        decimal.NewFromFloat(0.1),
	}, testNow)

	require.NoError(t, err)
	assert.True(t, loan.Installments[0].Amount.Equal(decimal.RequireFromString("8.34")))
}

func TestOriginate_InsufficientCredit(t *testing.T) {
	e := New(DefaultPolicy())
	customer := newTestCustomer(10000, 0)

	// Total payable is 12000, above the 10000 limit even though the
	// principal alone would fit.
	_, err := e.Originate(customer, OriginationRequest{
		Principal:           decimal.NewFromInt(10000),
		NumberOfInstallment: 12,
		InterestRate:        decimal.NewFromFloat(0.2),
	}, testNow)

	require.ErrorIs(t, err, customError.ErrInsufficientCredit)
	assert.True(t, customer.UsedCreditLimit.IsZero(), "failed origination must not touch the customer")
}

func TestOriginate_AdmissionBoundary(t *testing.T) {
	e := New(DefaultPolicy())

	// available == total payable: admitted
	customer := newTestCustomer(20000, 8000)
	loan, err := e.Originate(customer, OriginationRequest{
		Principal:           decimal.NewFromInt(10000),
		NumberOfInstallment: 12,
		InterestRate:        decimal.NewFromFloat(0.2),
	}, testNow)
	require.NoError(t, err)
	assert.True(t, customer.UsedCreditLimit.Equal(decimal.NewFromInt(20000)))
	assert.True(t, customer.UsedCreditLimit.LessThanOrEqual(customer.CreditLimit))
	assert.True(t, loan.LoanAmount.Equal(decimal.NewFromInt(12000)))

	// one cent short: rejected
	customer = newTestCustomer(20000, 8000)
	customer.UsedCreditLimit = customer.UsedCreditLimit.Add(decimal.RequireFromString("0.01"))
	_, err = e.Originate(customer, OriginationRequest{
		Principal:           decimal.NewFromInt(10000),
		NumberOfInstallment: 12,
		InterestRate:        decimal.NewFromFloat(0.2),
	}, testNow)
	require.ErrorIs(t, err, customError.ErrInsufficientCredit)
}

func TestOriginate_Validation(t *testing.T) {
	e := New(DefaultPolicy())

	tests := []struct {
		name        string
		request     OriginationRequest
		expectedErr error
	}{
		{
			name: "zero principal",
			request: OriginationRequest{
				Principal:           decimal.Zero,
				NumberOfInstallment: 12,
				InterestRate:        decimal.NewFromFloat(0.2),
			},
			expectedErr: customError.ErrInvalidLoanAmount,
		},
		{
			name: "negative principal",
			request: OriginationRequest{
				Principal:           decimal.NewFromInt(-100),
				NumberOfInstallment: 12,
				InterestRate:        decimal.NewFromFloat(0.2),
			},
			expectedErr: customError.ErrInvalidLoanAmount,
		},
		{
			name: "interest rate below minimum",
			request: OriginationRequest{
				Principal:           decimal.NewFromInt(1000),
				NumberOfInstallment: 12,
				InterestRate:        decimal.NewFromFloat(0.05),
			},
			expectedErr: customError.ErrInvalidInterestRate,
		},
		{
			name: "interest rate above maximum",
			request: OriginationRequest{
				Principal:           decimal.NewFromInt(1000),
				NumberOfInstallment: 12,
				InterestRate:        decimal.NewFromFloat(0.51),
			},
			expectedErr: customError.ErrInvalidInterestRate,
		},
		{
			name: "installment count not in the allowed set",
			request: OriginationRequest{
				Principal:           decimal.NewFromInt(1000),
				NumberOfInstallment: 10,
				InterestRate:        decimal.NewFromFloat(0.2),
			},
			expectedErr: customError.ErrInvalidInstallmentCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customer := newTestCustomer(100000, 0)
			_, err := e.Originate(customer, tt.request, testNow)
			require.ErrorIs(t, err, tt.expectedErr)
			assert.True(t, customer.UsedCreditLimit.IsZero())
		})
	}
}

func TestOriginate_DueDatesCrossYearBoundary(t *testing.T) {
	e := New(DefaultPolicy())
	customer := newTestCustomer(50000, 0)
	november := time.Date(2025, 11, 20, 14, 0, 0, 0, time.UTC)

	loan, err := e.Originate(customer, OriginationRequest{
		Principal:           decimal.NewFromInt(6000),
		NumberOfInstallment: 6,
		InterestRate:        decimal.NewFromFloat(0.1),
	}, november)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), loan.Installments[0].DueDate)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), loan.Installments[1].DueDate)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), loan.Installments[5].DueDate)
}

// newTestLoan builds an originated loan and returns it with its customer.
func newTestLoan(t *testing.T, e *Engine, installments int) (*domain.Loan, *domain.Customer) {
	t.Helper()
	customer := newTestCustomer(100000, 0)
	loan, err := e.Originate(customer, OriginationRequest{
		Principal:           decimal.NewFromInt(10000),
		NumberOfInstallment: installments,
		InterestRate:        decimal.NewFromFloat(0.2),
	}, testNow)
	require.NoError(t, err)
	return loan, customer
}

func TestPay_OnDueDatePaysAtFaceValue(t *testing.T) {
	e := New(DefaultPolicy())
	loan, customer := newTestLoan(t, e, 12)

	// Exactly one installment's worth, paid on its due date: face value,
	// nothing partial, no adjustment either way.
	payDate := loan.Installments[0].DueDate
	result, err := e.Pay(loan, customer, decimal.NewFromInt(1000), payDate)

	require.NoError(t, err)
	assert.Equal(t, 1, result.InstallmentsPaid)
	assert.True(t, result.TotalPaid.Equal(decimal.NewFromInt(1000)))
	assert.True(t, result.TotalDiscount.IsZero())
	assert.True(t, result.TotalPenalty.IsZero())
	assert.False(t, result.LoanFullyPaid)
	assert.False(t, loan.IsPaid)

	assert.True(t, loan.Installments[0].IsPaid)
	require.NotNil(t, loan.Installments[0].PaymentDate)
	assert.Equal(t, payDate, *loan.Installments[0].PaymentDate)
	assert.True(t, loan.Installments[0].PaidAmount.Equal(decimal.NewFromInt(1000)))

	// Unpaid installments stay untouched.
	assert.False(t, loan.Installments[1].IsPaid)
	assert.True(t, loan.Installments[1].PaidAmount.IsZero())
	assert.Nil(t, loan.Installments[1].PaymentDate)
}

func TestPay_TwoInstallmentsDueToday(t *testing.T) {
	e := New(DefaultPolicy())
	customer := newTestCustomer(100000, 3000)
	now := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	// Two of three installments due exactly today: 2000.00 settles both at
	// face value with no adjustment and leaves the loan open.
	loan := &domain.Loan{
		ID:                  uuid.New(),
		CustomerID:          customer.ID,
		LoanAmount:          decimal.NewFromInt(3000),
		InterestRate:        decimal.NewFromFloat(0.2),
		NumberOfInstallment: 6,
		CreateDate:          now.AddDate(0, -2, 0),
	}
	for i := 0; i < 3; i++ {
		loan.Installments = append(loan.Installments, &domain.Installment{
			ID:         uuid.New(),
			LoanID:     loan.ID,
			Amount:     decimal.NewFromInt(1000),
			PaidAmount: decimal.Zero,
			DueDate:    now.AddDate(0, i, 0),
		})
	}
	loan.Installments[1].DueDate = now

	result, err := e.Pay(loan, customer, decimal.NewFromInt(2000), now)

	require.NoError(t, err)
	assert.Equal(t, 2, result.InstallmentsPaid)
	assert.True(t, result.TotalPaid.Equal(decimal.NewFromInt(2000)))
	assert.True(t, result.TotalDiscount.IsZero())
	assert.True(t, result.TotalPenalty.IsZero())
	assert.False(t, result.LoanFullyPaid)
	assert.False(t, loan.Installments[2].IsPaid)
}

func TestPay_EarlyPaymentDiscount(t *testing.T) {
	e := New(DefaultPolicy())
	loan, customer := newTestLoan(t, e, 12)

	// 10 whole days before the first due date:
	// adjusted = 1000 - 1000*0.001*10 = 990.00
	payDate := loan.Installments[0].DueDate.AddDate(0, 0, -10)
	result, err := e.Pay(loan, customer, decimal.NewFromInt(1000), payDate)

	require.NoError(t, err)
	assert.Equal(t, 1, result.InstallmentsPaid)
	assert.True(t, result.TotalPaid.Equal(decimal.NewFromInt(990)), "got %s", result.TotalPaid)
	assert.True(t, result.TotalDiscount.Equal(decimal.NewFromInt(10)))
	assert.True(t, result.TotalPenalty.IsZero())
	assert.True(t, loan.Installments[0].PaidAmount.Equal(decimal.NewFromInt(990)))

	// The leftover 10.00 is below the next adjusted amount and is simply
	// not tracked.
	assert.False(t, loan.Installments[1].IsPaid)
}

func TestPay_LatePaymentPenalty(t *testing.T) {
	e := New(DefaultPolicy())
	loan, customer := newTestLoan(t, e, 12)

	// 10 whole days after the first due date:
	// adjusted = 1000 + 1000*0.001*10 = 1010.00
	payDate := loan.Installments[0].DueDate.AddDate(0, 0, 10)
	result, err := e.Pay(loan, customer, decimal.NewFromInt(1010), payDate)

	require.NoError(t, err)
	assert.Equal(t, 1, result.InstallmentsPaid)
	assert.True(t, result.TotalPaid.Equal(decimal.NewFromInt(1010)))
	assert.True(t, result.TotalPenalty.Equal(decimal.NewFromInt(10)))
	assert.True(t, result.TotalDiscount.IsZero())
}

func TestPay_TimeOfDayIgnored(t *testing.T) {
	e := New(DefaultPolicy())
	loan, customer := newTestLoan(t, e, 12)

	// 23:59 on the due date is still day zero.
	payDate := loan.Installments[0].DueDate.Add(23*time.Hour + 59*time.Minute)
	result, err := e.Pay(loan, customer, decimal.NewFromInt(1000), payDate)

	require.NoError(t, err)
	assert.Equal(t, 1, result.InstallmentsPaid)
	assert.True(t, result.TotalDiscount.IsZero())
	assert.True(t, result.TotalPenalty.IsZero())
}

func TestPay_EarliestDueFirst(t *testing.T) {
	e := New(DefaultPolicy())
	loan, customer := newTestLoan(t, e, 12)

	// Shuffle the slice; allocation must still consume the earliest due
	// date first.
	loan.Installments[0], loan.Installments[2] = loan.Installments[2], loan.Installments[0]

	payDate := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := e.Pay(loan, customer, decimal.NewFromInt(1000), payDate)
	require.NoError(t, err)

	for _, installment := range loan.Installments {
		if installment.DueDate.Equal(payDate) {
			assert.True(t, installment.IsPaid, "earliest installment must be the one paid")
		} else {
			assert.False(t, installment.IsPaid)
		}
	}
}

func TestPay_HorizonExcludesFarInstallments(t *testing.T) {
	e := New(DefaultPolicy())
	loan, customer := newTestLoan(t, e, 12)

	// Due dates run Feb 1 2025 onward. Paying on Jan 15 with more than
	// enough for everything must stop at the 3-month horizon (Apr 15):
	// Feb 1, Mar 1 and Apr 1 are payable, May 1 is not.
	result, err := e.Pay(loan, customer, decimal.NewFromInt(100000), testNow)

	require.NoError(t, err)
	assert.Equal(t, 3, result.InstallmentsPaid)
	assert.False(t, loan.IsPaid)
	for i, installment := range loan.Installments {
		assert.Equal(t, i < 3, installment.IsPaid, "installment %d due %s", i, installment.DueDate)
	}
}

func TestPay_AllInstallmentsBeyondHorizon(t *testing.T) {
	policy := DefaultPolicy()
	policy.PaymentHorizonMonths = 1
	e := New(policy)
	loan, customer := newTestLoan(t, e, 12)

	// With a one-month horizon on Jan 1, the Feb 1 installment is exactly
	// at the boundary and dueDate < horizon is strict.
	payDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := e.Pay(loan, customer, decimal.NewFromInt(100000), payDate)

	require.ErrorIs(t, err, customError.ErrNoPayableInstallments)
}

func TestPay_InsufficientForAnyInstallment(t *testing.T) {
	e := New(DefaultPolicy())
	loan, customer := newTestLoan(t, e, 12)
	usedBefore := customer.UsedCreditLimit

	payDate := loan.Installments[0].DueDate
	_, err := e.Pay(loan, customer, decimal.RequireFromString("999.99"), payDate)

	require.ErrorIs(t, err, customError.ErrInsufficientPaymentAmount)

	// Failed payment must leave everything untouched.
	for _, installment := range loan.Installments {
		assert.False(t, installment.IsPaid)
		assert.True(t, installment.PaidAmount.IsZero())
	}
	assert.True(t, customer.UsedCreditLimit.Equal(usedBefore))
}

func TestPay_InvalidPaymentAmount(t *testing.T) {
	e := New(DefaultPolicy())
	loan, customer := newTestLoan(t, e, 12)

	_, err := e.Pay(loan, customer, decimal.Zero, testNow)
	require.ErrorIs(t, err, customError.ErrInvalidPaymentAmount)

	_, err = e.Pay(loan, customer, decimal.NewFromInt(-100), testNow)
	require.ErrorIs(t, err, customError.ErrInvalidPaymentAmount)
}

func TestPay_AlreadyPaidLoan(t *testing.T) {
	e := New(DefaultPolicy())
	loan, customer := newTestLoan(t, e, 12)
	loan.IsPaid = true

	_, err := e.Pay(loan, customer, decimal.NewFromInt(1000), testNow)
	require.ErrorIs(t, err, customError.ErrLoanAlreadyPaid)
}

func TestPay_FullPayoffReleasesScheduledAmount(t *testing.T) {
	e := New(DefaultPolicy())
	loan, customer := newTestLoan(t, e, 6)
	require.True(t, customer.UsedCreditLimit.Equal(decimal.NewFromInt(12000)))

	// Pay the first five on their due dates.
	for i := 0; i < 5; i++ {
		result, err := e.Pay(loan, customer, decimal.NewFromInt(2000), loan.Installments[i].DueDate)
		require.NoError(t, err)
		assert.False(t, result.LoanFullyPaid)
	}

	// Pay the last one 5 days early: adjusted = 2000 - 2000*0.001*5 = 1990.
	payDate := loan.Installments[5].DueDate.AddDate(0, 0, -5)
	result, err := e.Pay(loan, customer, decimal.NewFromInt(2000), payDate)

	require.NoError(t, err)
	assert.True(t, result.LoanFullyPaid)
	assert.True(t, result.TotalPaid.Equal(decimal.NewFromInt(1990)))
	assert.True(t, loan.IsPaid)

	// The release is the scheduled loan amount, not the discounted sum
	// actually collected.
	assert.True(t, customer.UsedCreditLimit.IsZero(), "used credit should be fully released, got %s", customer.UsedCreditLimit)
}

func TestPay_MultipleInstallmentsMixedAdjustments(t *testing.T) {
	e := New(DefaultPolicy())
	loan, customer := newTestLoan(t, e, 12)

	// Pay on Mar 6 2025: Feb 1 is 33 days late (penalty 33.00), Mar 1 is
	// 5 days late (penalty 5.00), Apr 1 is 26 days early (discount 26.00).
	payDate := time.Date(2025, 3, 6, 12, 0, 0, 0, time.UTC)
	amount := decimal.NewFromInt(1033).Add(decimal.NewFromInt(1005)).Add(decimal.NewFromInt(974))
	result, err := e.Pay(loan, customer, amount, payDate)

	require.NoError(t, err)
	assert.Equal(t, 3, result.InstallmentsPaid)
	assert.True(t, result.TotalPenalty.Equal(decimal.NewFromInt(38)), "got %s", result.TotalPenalty)
	assert.True(t, result.TotalDiscount.Equal(decimal.NewFromInt(26)), "got %s", result.TotalDiscount)
	assert.True(t, result.TotalPaid.Equal(amount))
}

func TestPay_CustomPolicyRate(t *testing.T) {
	policy := DefaultPolicy()
	policy.DailyAdjustmentRate = decimal.NewFromFloat(0.002)
	e := New(policy)
	loan, customer := newTestLoan(t, e, 12)

	// Doubled daily rate: 10 days early gives a 20.00 discount.
	payDate := loan.Installments[0].DueDate.AddDate(0, 0, -10)
	result, err := e.Pay(loan, customer, decimal.NewFromInt(1000), payDate)

	require.NoError(t, err)
	assert.True(t, result.TotalDiscount.Equal(decimal.NewFromInt(20)), "got %s", result.TotalDiscount)
	assert.True(t, loan.Installments[0].PaidAmount.Equal(decimal.NewFromInt(980)))
}
