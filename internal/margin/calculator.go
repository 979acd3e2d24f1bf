package margin

import (
	"fmt"
	"strings"

	"github.com/gaithtours/margin-engine/internal/constants"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Quote 利润计算结果
type Quote struct {
	BasePrice     decimal.Decimal
	MarginAmount  decimal.Decimal
	FinalPrice    decimal.Decimal
	MarginPercent decimal.Decimal
}

// CheckCurrency 固定金额部分的币种必须与报价币种一致（本引擎不做汇率换算）
func CheckCurrency(rule *Rule, currency string) error {
	if rule == nil {
		return nil
	}
	switch strings.ToLower(rule.CalculationType) {
	case constants.MarginCalculationFixed, constants.MarginCalculationHybrid:
		if !strings.EqualFold(strings.TrimSpace(rule.Currency), strings.TrimSpace(currency)) {
			return fmt.Errorf("%w: rule %d is priced in %s, booking in %s", ErrCurrencyMismatch, rule.ID, rule.Currency, currency)
		}
	}
	return nil
}

// Compute 计算利润与最终价格；rule 为空时使用默认百分比
func Compute(rule *Rule, basePrice decimal.Decimal, defaultPercent decimal.Decimal) (Quote, error) {
	if basePrice.IsNegative() {
		return Quote{}, fmt.Errorf("%w: base_price is negative", ErrInvalidContext)
	}

	var amount decimal.Decimal
	if rule == nil {
		if defaultPercent.IsNegative() {
			return Quote{}, fmt.Errorf("%w: default percent is negative", ErrInvalidRule)
		}
		amount = percentOf(basePrice, defaultPercent)
	} else {
		if rule.PercentValue.IsNegative() || rule.FixedAmount.IsNegative() {
			return Quote{}, fmt.Errorf("%w: rule %d has negative values", ErrInvalidRule, rule.ID)
		}
		switch strings.ToLower(rule.CalculationType) {
		case constants.MarginCalculationPercentage:
			amount = percentOf(basePrice, rule.PercentValue)
		case constants.MarginCalculationFixed:
			amount = rule.FixedAmount
		case constants.MarginCalculationHybrid:
			amount = percentOf(basePrice, rule.PercentValue).Add(rule.FixedAmount)
		default:
			return Quote{}, fmt.Errorf("%w: rule %d has unknown calculation type %q", ErrInvalidRule, rule.ID, rule.CalculationType)
		}
		amount = applyCaps(amount, rule.MinMargin, rule.MaxMargin)
	}

	amount = amount.Round(2)
	quote := Quote{
		BasePrice:    basePrice.Round(2),
		MarginAmount: amount,
		FinalPrice:   basePrice.Add(amount).Round(2),
	}
	if basePrice.IsPositive() {
		quote.MarginPercent = amount.Mul(hundred).Div(basePrice).Round(2)
	}
	return quote, nil
}

func percentOf(base, percent decimal.Decimal) decimal.Decimal {
	return base.Mul(percent).Div(hundred)
}

func applyCaps(amount, minMargin, maxMargin decimal.Decimal) decimal.Decimal {
	if minMargin.IsPositive() && amount.LessThan(minMargin) {
		amount = minMargin
	}
	if maxMargin.IsPositive() && amount.GreaterThan(maxMargin) {
		amount = maxMargin
	}
	return amount
}
