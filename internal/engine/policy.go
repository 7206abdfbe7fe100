package engine

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/furkanbegen/credit-module/internal/config"
)

// Policy is the immutable economic policy of the loan engine: the daily
// early/late adjustment rate, the forward payment window, and the admission
// bounds on interest rate and installment count.
type Policy struct {
	DailyAdjustmentRate  decimal.Decimal
	PaymentHorizonMonths int
	AllowedInstallments  []int
	MinInterestRate      decimal.Decimal
	MaxInterestRate      decimal.Decimal
}

// DefaultPolicy returns the production policy.
func DefaultPolicy() Policy {
	return Policy{
		DailyAdjustmentRate:  decimal.NewFromFloat(0.001),
		PaymentHorizonMonths: 3,
		AllowedInstallments:  []int{6, 9, 12, 24},
		MinInterestRate:      decimal.NewFromFloat(0.1),
		MaxInterestRate:      decimal.NewFromFloat(0.5),
	}
}

// PolicyFromConfig builds a Policy from the business configuration.
func PolicyFromConfig(cfg *config.Config) (Policy, error) {
	allowed, err := cfg.GetAllowedInstallments()
	if err != nil {
		return Policy{}, err
	}

	return Policy{
		DailyAdjustmentRate:  cfg.GetDailyAdjustmentRate(),
		PaymentHorizonMonths: cfg.Business.PaymentHorizonMonths,
		AllowedInstallments:  allowed,
		MinInterestRate:      cfg.GetMinInterestRate(),
		MaxInterestRate:      cfg.GetMaxInterestRate(),
	}, nil
}

func (p Policy) installmentCountAllowed(count int) bool {
	return slices.Contains(p.AllowedInstallments, count)
}

func (p Policy) interestRateAllowed(rate decimal.Decimal) bool {
	return rate.GreaterThanOrEqual(p.MinInterestRate) && rate.LessThanOrEqual(p.MaxInterestRate)
}
