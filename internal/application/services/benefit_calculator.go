package services

import (
	"math"

	"github.com/billharmony/backend/internal/domain/entities"
)

// BenefitCalculator converts a base price into an out-of-pocket amount under a plan.
// Deductible, then copay, then coinsurance are applied in that fixed order to the
// unpaid remainder, and the sum is clamped to the out-of-pocket max and the base price.
type BenefitCalculator struct{}

// NewBenefitCalculator creates a new benefit calculator
func NewBenefitCalculator() *BenefitCalculator {
	return &BenefitCalculator{}
}

// Apply returns the out-of-pocket amount for basePrice under benefits
func (c *BenefitCalculator) Apply(basePrice float64, benefits entities.PlanBenefits) float64 {
	return c.Share(basePrice, benefits).Total
}

// Share returns the per-step split along with the clamped total
func (c *BenefitCalculator) Share(basePrice float64, benefits entities.PlanBenefits) entities.CostShare {
	share := entities.CostShare{BasePrice: basePrice}
	remaining := basePrice

	if remaining > 0 && benefits.Deductible > 0 {
		share.Deductible = math.Min(benefits.Deductible, remaining)
		remaining -= share.Deductible
	}

	// The full copay applies even when it exceeds what is left.
	if remaining > 0 && benefits.Copay > 0 {
		share.Copay = benefits.Copay
		remaining -= benefits.Copay
	}

	if remaining > 0 && benefits.CoinsurancePercent > 0 {
		share.Coinsurance = math.Round(remaining * benefits.CoinsurancePercent / 100)
	}

	total := share.Deductible + share.Copay + share.Coinsurance
	total = math.Min(total, benefits.OutOfPocketMax)
	share.Total = math.Min(total, basePrice)

	return share
}
