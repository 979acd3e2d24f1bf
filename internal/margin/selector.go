package margin

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Rule 评估用的规则快照（不可变值）
type Rule struct {
	ID              uint            `json:"id"`
	Name            string          `json:"name"`
	CalculationType string          `json:"calculation_type"`
	PercentValue    decimal.Decimal `json:"percent_value"`
	FixedAmount     decimal.Decimal `json:"fixed_amount"`
	Currency        string          `json:"currency"`
	MinMargin       decimal.Decimal `json:"min_margin"`
	MaxMargin       decimal.Decimal `json:"max_margin"`
	Priority        int             `json:"priority"`
	Active          bool            `json:"active"`
	Conditions      Conditions      `json:"conditions"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Specificity 规则精确度
func (r Rule) Specificity() int {
	return r.Conditions.Specificity()
}

// Select 从规则集中选出唯一胜出规则，无命中返回 nil
func Select(rules []Rule, ctx BookingContext) *Rule {
	var winner *Rule
	for i := range rules {
		candidate := &rules[i]
		if !candidate.Active || !Matches(candidate.Conditions, ctx) {
			continue
		}
		if winner == nil || Outranks(*candidate, *winner) {
			winner = candidate
		}
	}
	if winner == nil {
		return nil
	}
	picked := *winner
	return &picked
}

// Rank 返回全部命中的启用规则，按胜出顺序排列
func Rank(rules []Rule, ctx BookingContext) []Rule {
	matched := make([]Rule, 0)
	for _, rule := range rules {
		if rule.Active && Matches(rule.Conditions, ctx) {
			matched = append(matched, rule)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return Outranks(matched[i], matched[j])
	})
	return matched
}

// Outranks 全序比较：优先级高者胜，其次条件更精确者，其次创建更晚者，最后 ID 更大者
func Outranks(a, b Rule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if sa, sb := a.Specificity(), b.Specificity(); sa != sb {
		return sa > sb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
