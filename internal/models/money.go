package models

import (
	"database/sql/driver"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// moneyScale 金额与百分比统一保留的小数位
const moneyScale = 2

// Money 两位小数的金额，JSON 输出为定点字符串，避免前端浮点误差
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 四舍五入到两位小数
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(moneyScale)}
}

// NewMoneyFromString 解析金额字符串，允许首尾空白
func NewMoneyFromString(raw string) (Money, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Money{}, err
	}
	return NewMoneyFromDecimal(amount), nil
}

func (m Money) String() string {
	return m.Decimal.StringFixed(moneyScale)
}

// MarshalJSON 输出 "12.50" 形式
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON 接受字符串或数字，按十进制解析不经过 float64
func (m *Money) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var amount decimal.Decimal
	if err := amount.UnmarshalJSON(b); err != nil {
		return err
	}
	*m = NewMoneyFromDecimal(amount)
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(moneyScale).Value()
}

func (m *Money) Scan(value interface{}) error {
	var amount decimal.Decimal
	if err := amount.Scan(value); err != nil {
		return err
	}
	*m = NewMoneyFromDecimal(amount)
	return nil
}
