package margin

import (
	"testing"

	"github.com/gaithtours/margin-engine/internal/constants"

	"github.com/shopspring/decimal"
)

func intPtr(v int) *int { return &v }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func datePtr(raw string) *Date {
	d, err := ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return &d
}

func baseContext() BookingContext {
	return BookingContext{
		BasePrice:    decimal.NewFromInt(500),
		Currency:     "SAR",
		Country:      "Saudi Arabia",
		City:         "Riyadh",
		StarRating:   4,
		CheckInDate:  NewDate(2026, 3, 10),
		Nights:       2,
		Rooms:        1,
		MealType:     constants.MealTypeBreakfast,
		CustomerType: constants.CustomerTypeB2C,
	}
}

func TestMatchesGlobalRule(t *testing.T) {
	contexts := []BookingContext{
		baseContext(),
		{CheckInDate: NewDate(2030, 1, 1)},
		{BasePrice: decimal.NewFromInt(1), Country: "Egypt", City: "Cairo", StarRating: 1, CheckInDate: NewDate(2020, 12, 31), MealType: "room_only", CustomerType: "b2b"},
	}
	for i, ctx := range contexts {
		if !Matches(Conditions{}, ctx) {
			t.Fatalf("global rule should match context #%d", i)
		}
		if !Matches(Conditions{CustomerType: constants.CustomerTypeAll}, ctx) {
			t.Fatalf("customer_type=all should match context #%d", i)
		}
	}
}

func TestMatchesEachDimensionRejectsViolation(t *testing.T) {
	ctx := baseContext()
	cases := []struct {
		name string
		cond Conditions
	}{
		{name: "country", cond: Conditions{Countries: []string{"Egypt", "Jordan"}}},
		{name: "city", cond: Conditions{Cities: []string{"Jeddah"}}},
		{name: "star_min", cond: Conditions{StarRating: &IntRange{Min: intPtr(5)}}},
		{name: "star_max", cond: Conditions{StarRating: &IntRange{Max: intPtr(3)}}},
		{name: "value_min", cond: Conditions{BookingValue: &DecimalRange{Min: decPtr(1001)}}},
		{name: "value_max", cond: Conditions{BookingValue: &DecimalRange{Max: decPtr(999)}}},
		{name: "date_start", cond: Conditions{DateRange: &DateRange{Start: datePtr("2026-03-11")}}},
		{name: "date_end", cond: Conditions{DateRange: &DateRange{End: datePtr("2026-03-09")}}},
		{name: "meal", cond: Conditions{MealTypes: []string{constants.MealTypeHalfBoard, constants.MealTypeFullBoard}}},
		{name: "customer", cond: Conditions{CustomerType: constants.CustomerTypeB2B}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if Matches(tc.cond, ctx) {
				t.Fatalf("expected %s condition to reject context", tc.name)
			}
		})
	}
}

func TestMatchesEachDimensionAcceptsSatisfied(t *testing.T) {
	ctx := baseContext()
	cases := []struct {
		name string
		cond Conditions
	}{
		{name: "country_case_insensitive", cond: Conditions{Countries: []string{"egypt", "SAUDI ARABIA"}}},
		{name: "city", cond: Conditions{Cities: []string{" riyadh "}}},
		{name: "star_inclusive", cond: Conditions{StarRating: &IntRange{Min: intPtr(4), Max: intPtr(4)}}},
		{name: "value_inclusive", cond: Conditions{BookingValue: &DecimalRange{Min: decPtr(1000), Max: decPtr(1000)}}},
		{name: "date_inclusive", cond: Conditions{DateRange: &DateRange{Start: datePtr("2026-03-10"), End: datePtr("2026-03-10")}}},
		{name: "meal", cond: Conditions{MealTypes: []string{constants.MealTypeBreakfast}}},
		{name: "customer", cond: Conditions{CustomerType: "B2C"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !Matches(tc.cond, ctx) {
				t.Fatalf("expected %s condition to accept context", tc.name)
			}
		})
	}
}

func TestMatchesStarMinRejectsRegardlessOfOtherDimensions(t *testing.T) {
	ctx := baseContext()
	ctx.StarRating = 3
	cond := Conditions{
		Countries:    []string{"Saudi Arabia"},
		Cities:       []string{"Riyadh"},
		StarRating:   &IntRange{Min: intPtr(4)},
		MealTypes:    []string{constants.MealTypeBreakfast},
		CustomerType: constants.CustomerTypeB2C,
	}
	if Matches(cond, ctx) {
		t.Fatalf("star_rating.min=4 must not match a 3 star hotel")
	}
}

func TestMatchesUnknownContextFieldAgainstSetCondition(t *testing.T) {
	ctx := baseContext()
	ctx.Country = ""
	if Matches(Conditions{Countries: []string{"Saudi Arabia"}}, ctx) {
		t.Fatalf("missing country must not satisfy a country condition")
	}
	ctx = baseContext()
	ctx.CustomerType = ""
	if Matches(Conditions{CustomerType: constants.CustomerTypeB2B}, ctx) {
		t.Fatalf("missing customer type must not satisfy b2b condition")
	}
}

func TestMatchesUnknownStarRating(t *testing.T) {
	ctx := BookingContext{
		BasePrice:   decimal.NewFromInt(100),
		Country:     "Saudi Arabia",
		CheckInDate: NewDate(2026, 5, 1),
	}
	if err := ctx.Validate(); err != nil {
		t.Fatalf("unrated hotel context should be valid: %v", err)
	}
	for _, r := range []*IntRange{{Max: intPtr(3)}, {Min: intPtr(1)}, {Min: intPtr(1), Max: intPtr(5)}} {
		if Matches(Conditions{StarRating: r}, ctx) {
			t.Fatalf("unknown star rating must not satisfy %+v", *r)
		}
	}

	rules := []Rule{
		{ID: 1, Name: "global", Active: true, Priority: 1},
		{ID: 2, Name: "budget", Active: true, Priority: 10, Conditions: Conditions{StarRating: &IntRange{Max: intPtr(3)}}},
	}
	winner := Select(rules, ctx)
	if winner == nil || winner.Name != "global" {
		t.Fatalf("unrated hotel should fall back to the global rule, got %+v", winner)
	}
}

func TestMatchesDerivedBookingValue(t *testing.T) {
	ctx := baseContext()
	checkout := NewDate(2026, 3, 13)
	ctx.CheckOutDate = &checkout
	ctx.Rooms = 2
	// 500 x 3 晚 x 2 间 = 3000
	if !Matches(Conditions{BookingValue: &DecimalRange{Min: decPtr(3000)}}, ctx) {
		t.Fatalf("derived booking value should be 3000")
	}
	if Matches(Conditions{BookingValue: &DecimalRange{Min: decPtr(3001)}}, ctx) {
		t.Fatalf("derived booking value should be below 3001")
	}

	explicit := decimal.NewFromInt(10)
	ctx.BookingValue = &explicit
	if !Matches(Conditions{BookingValue: &DecimalRange{Max: decPtr(10)}}, ctx) {
		t.Fatalf("explicit booking value should win over derived value")
	}
}
