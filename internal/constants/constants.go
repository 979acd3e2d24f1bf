package constants

// 利润规则计算方式常量
const (
	MarginCalculationPercentage = "percentage"
	MarginCalculationFixed      = "fixed"
	MarginCalculationHybrid     = "hybrid"
)

// 利润规则状态常量
const (
	MarginRuleStatusActive   = "active"
	MarginRuleStatusInactive = "inactive"
)

// 餐食类型常量
const (
	MealTypeAllInclusive = "all_inclusive"
	MealTypeBreakfast    = "breakfast"
	MealTypeHalfBoard    = "half_board"
	MealTypeFullBoard    = "full_board"
	MealTypeRoomOnly     = "room_only"
)

// 客户类型常量
const (
	CustomerTypeAll = "all"
	CustomerTypeB2C = "b2c"
	CustomerTypeB2B = "b2b"
)

// 规则徽标常量（管理端列表展示用）
const (
	MarginBadgeGlobal       = "global"
	MarginBadgeCountry      = "country"
	MarginBadgeCity         = "city"
	MarginBadgeStarRating   = "star_rating"
	MarginBadgeValueFilter  = "value_filter"
	MarginBadgeDateRange    = "date_range"
	MarginBadgeMealType     = "meal_type"
	MarginBadgeCustomerType = "customer_type"
)

// 默认值常量
const (
	DefaultPricingCurrency     = "SAR"
	DefaultMarginPercent       = 15
	DefaultMarginCacheTTL      = 60
	MarginRuleNameMaxLength    = 120
	MarginStarRatingLowerLimit = 1
	MarginStarRatingUpperLimit = 5
)

// 队列与任务常量
const (
	QueueDefault     = "default"
	QueueCritical    = "critical"
	TaskMarginRecord = "margin:record"
)

// 缓存 key 常量
const (
	CacheKeyActiveMarginRules = "margin:active_rules"
)
