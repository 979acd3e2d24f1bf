package margin

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// BookingInput 预订上下文的传输格式（HTTP 请求与队列任务共用）
type BookingInput struct {
	BasePrice    *decimal.Decimal `json:"base_price"`
	Currency     string           `json:"currency"`
	Country      string           `json:"country"`
	City         string           `json:"city"`
	StarRating   int              `json:"star_rating"`
	CheckInDate  string           `json:"check_in_date"`
	CheckOutDate string           `json:"check_out_date,omitempty"`
	Nights       int              `json:"nights,omitempty"`
	Rooms        int              `json:"rooms,omitempty"`
	MealType     string           `json:"meal_type"`
	CustomerType string           `json:"customer_type"`
	BookingValue *decimal.Decimal `json:"booking_value,omitempty"`
}

// ToContext 解析为预订上下文，缺失或格式错误返回 ErrInvalidContext
func (in BookingInput) ToContext() (BookingContext, error) {
	if in.BasePrice == nil {
		return BookingContext{}, fmt.Errorf("%w: base_price is required", ErrInvalidContext)
	}
	if strings.TrimSpace(in.CheckInDate) == "" {
		return BookingContext{}, fmt.Errorf("%w: check_in_date is required", ErrInvalidContext)
	}
	checkIn, err := ParseDate(in.CheckInDate)
	if err != nil {
		return BookingContext{}, fmt.Errorf("%w: check_in_date: %v", ErrInvalidContext, err)
	}
	ctx := BookingContext{
		BasePrice:    *in.BasePrice,
		Currency:     in.Currency,
		Country:      in.Country,
		City:         in.City,
		StarRating:   in.StarRating,
		CheckInDate:  checkIn,
		Nights:       in.Nights,
		Rooms:        in.Rooms,
		MealType:     in.MealType,
		CustomerType: in.CustomerType,
	}
	if strings.TrimSpace(in.CheckOutDate) != "" {
		checkOut, err := ParseDate(in.CheckOutDate)
		if err != nil {
			return BookingContext{}, fmt.Errorf("%w: check_out_date: %v", ErrInvalidContext, err)
		}
		ctx.CheckOutDate = &checkOut
	}
	if in.BookingValue != nil {
		value := *in.BookingValue
		ctx.BookingValue = &value
	}
	return ctx, nil
}
