package margin

import (
	"strings"

	"github.com/gaithtours/margin-engine/internal/constants"
)

// Matches 判断上下文是否满足规则全部非空条件（维度间 AND，集合内 OR）
func Matches(cond Conditions, ctx BookingContext) bool {
	if len(cond.Countries) > 0 && !containsFold(cond.Countries, ctx.Country) {
		return false
	}
	if len(cond.Cities) > 0 && !containsFold(cond.Cities, ctx.City) {
		return false
	}
	// 星级未知（0）不满足任何星级条件
	if !cond.StarRating.Empty() && (ctx.StarRating == 0 || !cond.StarRating.Contains(ctx.StarRating)) {
		return false
	}
	if !cond.BookingValue.Empty() && !cond.BookingValue.Contains(ctx.EffectiveBookingValue()) {
		return false
	}
	if !cond.DateRange.Empty() && !cond.DateRange.Contains(ctx.CheckInDate) {
		return false
	}
	if len(cond.MealTypes) > 0 && !containsFold(cond.MealTypes, ctx.MealType) {
		return false
	}
	if customerType := NormalizeCustomerType(cond.CustomerType); customerType != constants.CustomerTypeAll {
		if !strings.EqualFold(customerType, strings.TrimSpace(ctx.CustomerType)) {
			return false
		}
	}
	return true
}

func containsFold(values []string, target string) bool {
	needle := strings.Join(strings.Fields(target), " ")
	if needle == "" {
		return false
	}
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), needle) {
			return true
		}
	}
	return false
}
