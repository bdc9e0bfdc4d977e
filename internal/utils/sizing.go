package utils

import (
	"math"

	"github.com/rxtech-lab/argo-gate/internal/backtest/engine/engine_v1/commission_fee"
)

// CalculateMaxQuantity calculates the largest quantity whose cost plus fee fits in budget.
func CalculateMaxQuantity(budget float64, price float64, commissionFee commission_fee.CommissionFee) float64 {
	// Handle edge cases
	if price <= 0 || budget <= 0 {
		return 0
	}

	// Initial rough estimate (ignoring fees)
	maxQty := budget / price

	// Iteratively refine by accounting for fees
	for i := 0; i < 10; i++ { // Usually converges quickly, limit iterations
		totalCost := maxQty*price + commissionFee.Calculate(maxQty, price)
		if totalCost <= budget {
			break
		}
		// Adjust quantity down proportionally
		adjustment := budget / totalCost
		maxQty *= adjustment
	}

	// absorb float rounding left over by the proportional adjustment
	if maxQty*price+commissionFee.Calculate(maxQty, price) > budget {
		maxQty *= 1 - 1e-9
	}

	if maxQty*price+commissionFee.Calculate(maxQty, price) > budget {
		return 0
	}

	return maxQty
}

// RoundToDecimalPrecision rounds the quantity down to the specified decimal precision.
// A negative precision leaves the quantity unchanged.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	if decimalPrecision < 0 {
		return quantity
	}

	multiplier := math.Pow10(decimalPrecision)

	return math.Floor(quantity*multiplier) / multiplier
}

// CalculateQuantityByPercentage sizes a position committing percentage (0..100) of equity.
func CalculateQuantityByPercentage(equity float64, price float64, commissionFee commission_fee.CommissionFee, percentage float64) float64 {
	if percentage <= 0 {
		return 0
	}

	budget := equity * math.Min(percentage, 100) / 100

	return CalculateMaxQuantity(budget, price, commissionFee)
}
