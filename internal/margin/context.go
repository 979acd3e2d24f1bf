package margin

import (
	"fmt"
	"strings"

	"github.com/gaithtours/margin-engine/internal/constants"

	"github.com/shopspring/decimal"
)

// BookingContext 单次评估的预订上下文
type BookingContext struct {
	BasePrice    decimal.Decimal
	Currency     string
	Country      string
	City         string
	StarRating   int // 0 表示未知
	CheckInDate  Date
	CheckOutDate *Date
	Nights       int
	Rooms        int
	MealType     string
	CustomerType string
	BookingValue *decimal.Decimal // 为空时按 基础价 × 晚数 × 房间数 推导
}

// Normalize 规范化文本字段
func (b BookingContext) Normalize() BookingContext {
	b.Currency = strings.ToUpper(strings.TrimSpace(b.Currency))
	b.Country = strings.Join(strings.Fields(b.Country), " ")
	b.City = strings.Join(strings.Fields(b.City), " ")
	b.MealType = strings.ToLower(strings.TrimSpace(b.MealType))
	b.CustomerType = strings.ToLower(strings.TrimSpace(b.CustomerType))
	return b
}

// Validate 校验上下文，不做静默纠正
func (b BookingContext) Validate() error {
	if b.BasePrice.IsNegative() {
		return fmt.Errorf("%w: base_price is negative", ErrInvalidContext)
	}
	if b.CheckInDate.IsZero() {
		return fmt.Errorf("%w: check_in_date is required", ErrInvalidContext)
	}
	if b.CheckOutDate != nil && !b.CheckOutDate.IsZero() && b.CheckOutDate.Compare(b.CheckInDate) <= 0 {
		return fmt.Errorf("%w: check_out_date must be after check_in_date", ErrInvalidContext)
	}
	if b.StarRating != 0 && (b.StarRating < constants.MarginStarRatingLowerLimit || b.StarRating > constants.MarginStarRatingUpperLimit) {
		return fmt.Errorf("%w: star_rating must be between 1 and 5", ErrInvalidContext)
	}
	if b.Nights < 0 {
		return fmt.Errorf("%w: nights is negative", ErrInvalidContext)
	}
	if b.Rooms < 0 {
		return fmt.Errorf("%w: rooms is negative", ErrInvalidContext)
	}
	if b.BookingValue != nil && b.BookingValue.IsNegative() {
		return fmt.Errorf("%w: booking_value is negative", ErrInvalidContext)
	}
	if meal := strings.TrimSpace(b.MealType); meal != "" && !IsMealType(meal) {
		return fmt.Errorf("%w: unknown meal_type %q", ErrInvalidContext, b.MealType)
	}
	switch strings.ToLower(strings.TrimSpace(b.CustomerType)) {
	case "", constants.CustomerTypeB2C, constants.CustomerTypeB2B:
	default:
		return fmt.Errorf("%w: unknown customer_type %q", ErrInvalidContext, b.CustomerType)
	}
	return nil
}

// StayNights 入住晚数：优先按退房日期计算，其次 Nights，缺省 1
func (b BookingContext) StayNights() int {
	if b.CheckOutDate != nil && !b.CheckOutDate.IsZero() && !b.CheckInDate.IsZero() {
		if nights := b.CheckInDate.DaysUntil(*b.CheckOutDate); nights > 0 {
			return nights
		}
	}
	if b.Nights > 0 {
		return b.Nights
	}
	return 1
}

// RoomCount 房间数，缺省 1
func (b BookingContext) RoomCount() int {
	if b.Rooms > 0 {
		return b.Rooms
	}
	return 1
}

// EffectiveBookingValue 订单价值
func (b BookingContext) EffectiveBookingValue() decimal.Decimal {
	if b.BookingValue != nil {
		return *b.BookingValue
	}
	return b.BasePrice.Mul(decimal.NewFromInt(int64(b.StayNights()))).Mul(decimal.NewFromInt(int64(b.RoomCount())))
}
