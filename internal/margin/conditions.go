package margin

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gaithtours/margin-engine/internal/constants"

	"github.com/shopspring/decimal"
)

// IntRange 整数区间，边界为空表示不限制
type IntRange struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// Empty 两端均未设置
func (r *IntRange) Empty() bool {
	return r == nil || (r.Min == nil && r.Max == nil)
}

// Contains 闭区间判断
func (r *IntRange) Contains(value int) bool {
	if r.Empty() {
		return true
	}
	if r.Min != nil && value < *r.Min {
		return false
	}
	if r.Max != nil && value > *r.Max {
		return false
	}
	return true
}

// DecimalRange 金额区间
type DecimalRange struct {
	Min *decimal.Decimal `json:"min,omitempty"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

// Empty 两端均未设置
func (r *DecimalRange) Empty() bool {
	return r == nil || (r.Min == nil && r.Max == nil)
}

// Contains 闭区间判断
func (r *DecimalRange) Contains(value decimal.Decimal) bool {
	if r.Empty() {
		return true
	}
	if r.Min != nil && value.LessThan(*r.Min) {
		return false
	}
	if r.Max != nil && value.GreaterThan(*r.Max) {
		return false
	}
	return true
}

// DateRange 入住日期区间
type DateRange struct {
	Start *Date `json:"start,omitempty"`
	End   *Date `json:"end,omitempty"`
}

// Empty 两端均未设置
func (r *DateRange) Empty() bool {
	return r == nil || ((r.Start == nil || r.Start.IsZero()) && (r.End == nil || r.End.IsZero()))
}

// Contains 闭区间判断
func (r *DateRange) Contains(day Date) bool {
	if r.Empty() {
		return true
	}
	if r.Start != nil && !r.Start.IsZero() && day.Compare(*r.Start) < 0 {
		return false
	}
	if r.End != nil && !r.End.IsZero() && day.Compare(*r.End) > 0 {
		return false
	}
	return true
}

// Conditions 规则适用条件，各维度为空表示不限制
type Conditions struct {
	Countries    []string      `json:"countries,omitempty"`
	Cities       []string      `json:"cities,omitempty"`
	StarRating   *IntRange     `json:"star_rating,omitempty"`
	BookingValue *DecimalRange `json:"booking_value,omitempty"`
	DateRange    *DateRange    `json:"date_range,omitempty"`
	MealTypes    []string      `json:"meal_types,omitempty"`
	CustomerType string        `json:"customer_type,omitempty"`
}

// Normalize 去空白、去重，空区间置空，客户类型缺省为 all
func (c Conditions) Normalize() Conditions {
	out := Conditions{
		Countries:    normalizeNames(c.Countries),
		Cities:       normalizeNames(c.Cities),
		MealTypes:    normalizeCodes(c.MealTypes),
		CustomerType: NormalizeCustomerType(c.CustomerType),
	}
	if !c.StarRating.Empty() {
		r := *c.StarRating
		out.StarRating = &r
	}
	if !c.BookingValue.Empty() {
		r := *c.BookingValue
		out.BookingValue = &r
	}
	if !c.DateRange.Empty() {
		r := DateRange{}
		if c.DateRange.Start != nil && !c.DateRange.Start.IsZero() {
			start := *c.DateRange.Start
			r.Start = &start
		}
		if c.DateRange.End != nil && !c.DateRange.End.IsZero() {
			end := *c.DateRange.End
			r.End = &end
		}
		out.DateRange = &r
	}
	return out
}

// ConditionReason 条件校验失败类别
type ConditionReason string

const (
	ReasonOutOfRange   ConditionReason = "out_of_range"
	ReasonMinAboveMax  ConditionReason = "min_above_max"
	ReasonNegative     ConditionReason = "negative"
	ReasonUnknownValue ConditionReason = "unknown_value"
)

// ConditionError 指明出错的条件维度，errors.Is 可匹配 ErrInvalidConditions。
// Args 为区间边界（OutOfRange）或可选值（UnknownValue）
type ConditionError struct {
	Field  string
	Reason ConditionReason
	Args   []string
}

func (e *ConditionError) Error() string {
	msg := fmt.Sprintf("%s: %s %s", ErrInvalidConditions.Error(), e.Field, e.Reason)
	if len(e.Args) > 0 {
		msg += " (" + strings.Join(e.Args, ", ") + ")"
	}
	return msg
}

func (e *ConditionError) Unwrap() error {
	return ErrInvalidConditions
}

// MealTypes 可选餐食类型
func MealTypes() []string {
	return []string{
		constants.MealTypeAllInclusive,
		constants.MealTypeBreakfast,
		constants.MealTypeHalfBoard,
		constants.MealTypeFullBoard,
		constants.MealTypeRoomOnly,
	}
}

var starBounds = []string{
	strconv.Itoa(constants.MarginStarRatingLowerLimit),
	strconv.Itoa(constants.MarginStarRatingUpperLimit),
}

// Validate 校验条件结构（不含地点目录校验），失败返回 *ConditionError
func (c Conditions) Validate() error {
	if r := c.StarRating; !r.Empty() {
		for _, bound := range []*int{r.Min, r.Max} {
			if bound != nil && (*bound < constants.MarginStarRatingLowerLimit || *bound > constants.MarginStarRatingUpperLimit) {
				return &ConditionError{Field: "star_rating", Reason: ReasonOutOfRange, Args: starBounds}
			}
		}
		if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
			return &ConditionError{Field: "star_rating", Reason: ReasonMinAboveMax}
		}
	}
	if r := c.BookingValue; !r.Empty() {
		if (r.Min != nil && r.Min.IsNegative()) || (r.Max != nil && r.Max.IsNegative()) {
			return &ConditionError{Field: "booking_value", Reason: ReasonNegative}
		}
		if r.Min != nil && r.Max != nil && r.Min.GreaterThan(*r.Max) {
			return &ConditionError{Field: "booking_value", Reason: ReasonMinAboveMax}
		}
	}
	if r := c.DateRange; !r.Empty() {
		if r.Start != nil && r.End != nil && !r.Start.IsZero() && !r.End.IsZero() && r.Start.Compare(*r.End) > 0 {
			return &ConditionError{Field: "date_range", Reason: ReasonMinAboveMax}
		}
	}
	for _, meal := range c.MealTypes {
		if !IsMealType(meal) {
			return &ConditionError{Field: "meal_types", Reason: ReasonUnknownValue, Args: MealTypes()}
		}
	}
	switch NormalizeCustomerType(c.CustomerType) {
	case constants.CustomerTypeAll, constants.CustomerTypeB2C, constants.CustomerTypeB2B:
	default:
		return &ConditionError{
			Field:  "customer_type",
			Reason: ReasonUnknownValue,
			Args:   []string{constants.CustomerTypeAll, constants.CustomerTypeB2C, constants.CustomerTypeB2B},
		}
	}
	return nil
}

// Specificity 非空条件维度数量，越大越精确
func (c Conditions) Specificity() int {
	count := 0
	if len(c.Countries) > 0 {
		count++
	}
	if len(c.Cities) > 0 {
		count++
	}
	if !c.StarRating.Empty() {
		count++
	}
	if !c.BookingValue.Empty() {
		count++
	}
	if !c.DateRange.Empty() {
		count++
	}
	if len(c.MealTypes) > 0 {
		count++
	}
	if NormalizeCustomerType(c.CustomerType) != constants.CustomerTypeAll {
		count++
	}
	return count
}

// IsGlobal 无任何条件的全局规则
func (c Conditions) IsGlobal() bool {
	return c.Specificity() == 0
}

// Badges 管理端列表徽标，由非空条件维度推导
func (c Conditions) Badges() []string {
	if c.IsGlobal() {
		return []string{constants.MarginBadgeGlobal}
	}
	badges := make([]string, 0, 7)
	if len(c.Countries) > 0 {
		badges = append(badges, constants.MarginBadgeCountry)
	}
	if len(c.Cities) > 0 {
		badges = append(badges, constants.MarginBadgeCity)
	}
	if !c.StarRating.Empty() {
		badges = append(badges, constants.MarginBadgeStarRating)
	}
	if !c.BookingValue.Empty() {
		badges = append(badges, constants.MarginBadgeValueFilter)
	}
	if !c.DateRange.Empty() {
		badges = append(badges, constants.MarginBadgeDateRange)
	}
	if len(c.MealTypes) > 0 {
		badges = append(badges, constants.MarginBadgeMealType)
	}
	if NormalizeCustomerType(c.CustomerType) != constants.CustomerTypeAll {
		badges = append(badges, constants.MarginBadgeCustomerType)
	}
	return badges
}

// Value 实现 driver.Valuer 接口
func (c Conditions) Value() (driver.Value, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(payload), nil
}

// Scan 实现 sql.Scanner 接口
func (c *Conditions) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*c = Conditions{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported conditions column type %T", value)
	}
	if len(raw) == 0 {
		*c = Conditions{}
		return nil
	}
	var decoded Conditions
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*c = decoded
	return nil
}

// NormalizeCustomerType 客户类型归一，空值视为 all
func NormalizeCustomerType(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return constants.CustomerTypeAll
	}
	return normalized
}

// IsMealType 判断餐食类型是否合法
func IsMealType(value string) bool {
	return slices.Contains(MealTypes(), strings.ToLower(strings.TrimSpace(value)))
}

func normalizeNames(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.Join(strings.Fields(value), " ")
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeCodes(values []string) []string {
	names := normalizeNames(values)
	for i := range names {
		names[i] = strings.ToLower(names[i])
	}
	return names
}
