package margin

import (
	"errors"
	"testing"

	"github.com/gaithtours/margin-engine/internal/constants"

	"github.com/shopspring/decimal"
)

func TestComputeScenarios(t *testing.T) {
	cases := []struct {
		name       string
		rule       *Rule
		base       int64
		wantMargin string
		wantFinal  string
	}{
		{
			name:       "global_percentage",
			rule:       &Rule{CalculationType: constants.MarginCalculationPercentage, PercentValue: decimal.NewFromInt(15)},
			base:       500,
			wantMargin: "75",
			wantFinal:  "575",
		},
		{
			name:       "hybrid",
			rule:       &Rule{CalculationType: constants.MarginCalculationHybrid, PercentValue: decimal.NewFromInt(5), FixedAmount: decimal.NewFromInt(20)},
			base:       1000,
			wantMargin: "70",
			wantFinal:  "1070",
		},
		{
			name:       "fixed",
			rule:       &Rule{CalculationType: constants.MarginCalculationFixed, FixedAmount: decimal.NewFromInt(42)},
			base:       1000,
			wantMargin: "42",
			wantFinal:  "1042",
		},
		{
			name:       "default_when_no_rule",
			rule:       nil,
			base:       200,
			wantMargin: "30",
			wantFinal:  "230",
		},
		{
			name: "max_cap",
			rule: &Rule{CalculationType: constants.MarginCalculationPercentage, PercentValue: decimal.NewFromInt(50),
				MaxMargin: decimal.NewFromInt(100)},
			base:       1000,
			wantMargin: "100",
			wantFinal:  "1100",
		},
		{
			name: "min_cap",
			rule: &Rule{CalculationType: constants.MarginCalculationPercentage, PercentValue: decimal.NewFromInt(1),
				MinMargin: decimal.NewFromInt(25)},
			base:       1000,
			wantMargin: "25",
			wantFinal:  "1025",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote, err := Compute(tc.rule, decimal.NewFromInt(tc.base), decimal.NewFromInt(15))
			if err != nil {
				t.Fatalf("compute failed: %v", err)
			}
			if !quote.MarginAmount.Equal(decimal.RequireFromString(tc.wantMargin)) {
				t.Fatalf("margin want %s got %s", tc.wantMargin, quote.MarginAmount)
			}
			if !quote.FinalPrice.Equal(decimal.RequireFromString(tc.wantFinal)) {
				t.Fatalf("final want %s got %s", tc.wantFinal, quote.FinalPrice)
			}
		})
	}
}

func TestComputeMonotonicAndNeverBelowBase(t *testing.T) {
	rules := map[string]*Rule{
		constants.MarginCalculationPercentage: {CalculationType: constants.MarginCalculationPercentage, PercentValue: decimal.RequireFromString("12.5")},
		constants.MarginCalculationHybrid:     {CalculationType: constants.MarginCalculationHybrid, PercentValue: decimal.NewFromInt(3), FixedAmount: decimal.NewFromInt(7)},
		constants.MarginCalculationFixed:      {CalculationType: constants.MarginCalculationFixed, FixedAmount: decimal.NewFromInt(33)},
	}
	bases := []string{"0", "0.01", "1", "99.99", "250", "1000", "123456.78"}
	for name, rule := range rules {
		var previous *Quote
		for _, raw := range bases {
			quote, err := Compute(rule, decimal.RequireFromString(raw), decimal.NewFromInt(15))
			if err != nil {
				t.Fatalf("%s compute failed: %v", name, err)
			}
			if quote.FinalPrice.LessThan(quote.BasePrice) {
				t.Fatalf("%s final price below base for %s", name, raw)
			}
			if previous != nil {
				switch name {
				case constants.MarginCalculationFixed:
					if !quote.MarginAmount.Equal(previous.MarginAmount) {
						t.Fatalf("fixed margin must be constant in base price")
					}
				default:
					if quote.MarginAmount.LessThan(previous.MarginAmount) {
						t.Fatalf("%s margin must be monotonic in base price", name)
					}
				}
			}
			q := quote
			previous = &q
		}
	}
}

func TestComputeRejectsInvalidInput(t *testing.T) {
	if _, err := Compute(nil, decimal.NewFromInt(-1), decimal.NewFromInt(15)); !errors.Is(err, ErrInvalidContext) {
		t.Fatalf("expected invalid context, got %v", err)
	}
	rule := &Rule{ID: 3, CalculationType: "tiered"}
	if _, err := Compute(rule, decimal.NewFromInt(10), decimal.NewFromInt(15)); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected invalid rule, got %v", err)
	}
	negative := &Rule{ID: 4, CalculationType: constants.MarginCalculationFixed, FixedAmount: decimal.NewFromInt(-5)}
	if _, err := Compute(negative, decimal.NewFromInt(10), decimal.NewFromInt(15)); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected invalid rule for negative amount, got %v", err)
	}
}

func TestComputeRoundsToCents(t *testing.T) {
	rule := &Rule{CalculationType: constants.MarginCalculationPercentage, PercentValue: decimal.RequireFromString("7.5")}
	quote, err := Compute(rule, decimal.RequireFromString("99.99"), decimal.Zero)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if !quote.MarginAmount.Equal(decimal.RequireFromString("7.50")) {
		t.Fatalf("margin want 7.50 got %s", quote.MarginAmount)
	}
	if !quote.FinalPrice.Equal(decimal.RequireFromString("107.49")) {
		t.Fatalf("final want 107.49 got %s", quote.FinalPrice)
	}
}

func TestCheckCurrency(t *testing.T) {
	percent := &Rule{CalculationType: constants.MarginCalculationPercentage, Currency: "USD"}
	if err := CheckCurrency(percent, "SAR"); err != nil {
		t.Fatalf("percentage rules ignore currency, got %v", err)
	}
	fixed := &Rule{CalculationType: constants.MarginCalculationFixed, Currency: "USD"}
	if err := CheckCurrency(fixed, "SAR"); !errors.Is(err, ErrCurrencyMismatch) {
		t.Fatalf("expected currency mismatch, got %v", err)
	}
	hybrid := &Rule{CalculationType: constants.MarginCalculationHybrid, Currency: "sar"}
	if err := CheckCurrency(hybrid, "SAR"); err != nil {
		t.Fatalf("currency compare should be case-insensitive, got %v", err)
	}
	if err := CheckCurrency(nil, "SAR"); err != nil {
		t.Fatalf("nil rule has no currency constraint")
	}
}
