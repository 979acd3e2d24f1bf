package margin

import (
	"errors"
	"reflect"
	"testing"

	"github.com/gaithtours/margin-engine/internal/constants"
)

func TestConditionsNormalize(t *testing.T) {
	cond := Conditions{
		Countries:    []string{"  Saudi   Arabia ", "saudi arabia", "", "Egypt"},
		Cities:       []string{" "},
		MealTypes:    []string{"Breakfast", "breakfast"},
		StarRating:   &IntRange{},
		CustomerType: " ",
	}
	got := cond.Normalize()
	if !reflect.DeepEqual(got.Countries, []string{"Saudi Arabia", "Egypt"}) {
		t.Fatalf("unexpected countries: %#v", got.Countries)
	}
	if got.Cities != nil {
		t.Fatalf("blank cities should collapse to nil, got %#v", got.Cities)
	}
	if !reflect.DeepEqual(got.MealTypes, []string{constants.MealTypeBreakfast}) {
		t.Fatalf("unexpected meal types: %#v", got.MealTypes)
	}
	if got.StarRating != nil {
		t.Fatalf("empty star range should be dropped")
	}
	if got.CustomerType != constants.CustomerTypeAll {
		t.Fatalf("customer type want all got %q", got.CustomerType)
	}
	if got.Specificity() != 2 {
		t.Fatalf("specificity want 2 got %d", got.Specificity())
	}
}

func TestConditionsValidate(t *testing.T) {
	cases := []struct {
		name   string
		cond   Conditions
		field  string
		reason ConditionReason
	}{
		{name: "star_out_of_range", cond: Conditions{StarRating: &IntRange{Min: intPtr(0)}}, field: "star_rating", reason: ReasonOutOfRange},
		{name: "star_inverted", cond: Conditions{StarRating: &IntRange{Min: intPtr(5), Max: intPtr(3)}}, field: "star_rating", reason: ReasonMinAboveMax},
		{name: "value_negative", cond: Conditions{BookingValue: &DecimalRange{Min: decPtr(-1)}}, field: "booking_value", reason: ReasonNegative},
		{name: "value_inverted", cond: Conditions{BookingValue: &DecimalRange{Min: decPtr(10), Max: decPtr(5)}}, field: "booking_value", reason: ReasonMinAboveMax},
		{name: "date_inverted", cond: Conditions{DateRange: &DateRange{Start: datePtr("2026-05-01"), End: datePtr("2026-04-01")}}, field: "date_range", reason: ReasonMinAboveMax},
		{name: "meal_unknown", cond: Conditions{MealTypes: []string{"brunch"}}, field: "meal_types", reason: ReasonUnknownValue},
		{name: "customer_unknown", cond: Conditions{CustomerType: "vip"}, field: "customer_type", reason: ReasonUnknownValue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cond.Validate()
			if !errors.Is(err, ErrInvalidConditions) {
				t.Fatalf("expected invalid conditions, got %v", err)
			}
			var condErr *ConditionError
			if !errors.As(err, &condErr) || condErr.Field != tc.field || condErr.Reason != tc.reason {
				t.Fatalf("want %s/%s got %v", tc.field, tc.reason, err)
			}
		})
	}

	valid := Conditions{
		Countries:    []string{"Saudi Arabia"},
		StarRating:   &IntRange{Min: intPtr(3), Max: intPtr(5)},
		BookingValue: &DecimalRange{Min: decPtr(0), Max: decPtr(5000)},
		DateRange:    &DateRange{Start: datePtr("2026-01-01"), End: datePtr("2026-01-01")},
		MealTypes:    []string{constants.MealTypeHalfBoard},
		CustomerType: constants.CustomerTypeB2B,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid conditions, got %v", err)
	}
}

func TestConditionsBadges(t *testing.T) {
	if got := (Conditions{}).Badges(); !reflect.DeepEqual(got, []string{constants.MarginBadgeGlobal}) {
		t.Fatalf("unexpected global badges: %#v", got)
	}
	cond := Conditions{
		Cities:       []string{"Riyadh"},
		BookingValue: &DecimalRange{Min: decPtr(100)},
		CustomerType: constants.CustomerTypeB2C,
	}
	want := []string{constants.MarginBadgeCity, constants.MarginBadgeValueFilter, constants.MarginBadgeCustomerType}
	if got := cond.Badges(); !reflect.DeepEqual(got, want) {
		t.Fatalf("badges want %#v got %#v", want, got)
	}
	if cond.Specificity() != 3 {
		t.Fatalf("specificity want 3 got %d", cond.Specificity())
	}
}

func TestConditionsValueScanRoundTrip(t *testing.T) {
	cond := Conditions{
		Countries:  []string{"Saudi Arabia"},
		StarRating: &IntRange{Min: intPtr(4)},
		DateRange:  &DateRange{Start: datePtr("2026-06-01")},
	}
	raw, err := cond.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}
	var decoded Conditions
	if err := decoded.Scan(raw); err != nil {
		t.Fatalf("scan string failed: %v", err)
	}
	if decoded.Countries[0] != "Saudi Arabia" || *decoded.StarRating.Min != 4 {
		t.Fatalf("unexpected decoded conditions: %+v", decoded)
	}
	if decoded.DateRange.Start.String() != "2026-06-01" {
		t.Fatalf("unexpected start date: %s", decoded.DateRange.Start)
	}

	var empty Conditions
	if err := empty.Scan(nil); err != nil || !empty.IsGlobal() {
		t.Fatalf("nil column should decode to global conditions")
	}
	if err := empty.Scan([]byte("{}")); err != nil || !empty.IsGlobal() {
		t.Fatalf("empty object should decode to global conditions")
	}
	if err := empty.Scan(42); err == nil {
		t.Fatalf("expected error for unsupported column type")
	}
}
