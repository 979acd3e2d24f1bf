package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/gaithtours/margin-engine/internal/config"
	"github.com/gaithtours/margin-engine/internal/constants"
	"github.com/gaithtours/margin-engine/internal/logger"
	"github.com/gaithtours/margin-engine/internal/margin"
	"github.com/gaithtours/margin-engine/internal/models"
	"github.com/gaithtours/margin-engine/internal/provider"
	"github.com/gaithtours/margin-engine/internal/repository"
	"github.com/gaithtours/margin-engine/internal/service"

	"github.com/shopspring/decimal"
)

func main() {
	var (
		adminID    uint
		roles      string
		issueToken bool
		tokenTTL   time.Duration
		skipRules  bool
	)
	flag.UintVar(&adminID, "admin-id", 0, "为指定管理员授予角色（0 表示跳过）")
	flag.StringVar(&roles, "roles", "pricing_manager", "逗号分隔的角色列表")
	flag.BoolVar(&issueToken, "issue-token", false, "为 -admin-id 签发开发用 JWT")
	flag.DurationVar(&tokenTTL, "token-ttl", 12*time.Hour, "开发令牌有效期")
	flag.BoolVar(&skipRules, "skip-rules", false, "不写入示例规则")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.Open(cfg.Database); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	container, err := provider.NewContainer(cfg, models.DB)
	if err != nil {
		stdLog.Fatalf("Failed to build container: %v", err)
	}
	ctx := service.WithOperator(context.Background(), service.Operator{Subject: "seed"})

	// 导入地点目录
	if path := strings.TrimSpace(cfg.Catalog.File); path != "" {
		catalog, err := service.LoadCatalogFile(path)
		if err != nil {
			stdLog.Fatalf("Failed to load catalog %s: %v", path, err)
		}
		summary, err := container.LocationService.ImportCatalog(ctx, catalog)
		if err != nil {
			stdLog.Fatalf("Failed to import catalog: %v", err)
		}
		stdLog.Printf("Imported catalog: countries=%d cities=%d", summary.Countries, summary.Cities)
	}

	created := 0
	if !skipRules {
		for _, input := range sampleRules() {
			existing, _, err := container.MarginRuleService.List(ctx, repository.MarginRuleListFilter{Page: 1, PageSize: 50, Search: input.Name})
			if err != nil {
				stdLog.Printf("Failed to query rule %s: %v", input.Name, err)
				continue
			}
			if hasRuleNamed(existing, input.Name) {
				stdLog.Printf("Rule already exists: %s", input.Name)
				continue
			}
			rule, err := container.MarginRuleService.Create(ctx, input)
			if err != nil {
				stdLog.Printf("Failed to create rule %s: %v", input.Name, err)
				continue
			}
			created++
			stdLog.Printf("Created rule #%d: %s", rule.ID, rule.Name)
		}
	}

	roleList := splitRoles(roles)
	if adminID > 0 && len(roleList) > 0 {
		if err := container.AuthzService.SetAdminRoles(adminID, roleList); err != nil {
			stdLog.Fatalf("Failed to set roles for admin %d: %v", adminID, err)
		}
		stdLog.Printf("Granted roles to admin %d: %s", adminID, strings.Join(roleList, ","))
	}

	fmt.Println("\n✅ Seed finished")
	fmt.Printf("- %d margin rules created\n", created)

	if issueToken {
		if adminID == 0 {
			stdLog.Fatalf("-issue-token requires -admin-id")
		}
		token, expiresAt, err := container.AdminTokens.Issue(service.AdminClaims{
			AdminID:  adminID,
			Username: fmt.Sprintf("seed-admin-%d", adminID),
			Roles:    roleList,
		}, tokenTTL)
		if err != nil {
			stdLog.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Printf("- admin token (expires %s):\n%s\n", expiresAt.Format(time.RFC3339), token)
	}
}

func sampleRules() []service.MarginRuleInput {
	active := true
	inactive := false
	five, three := 5, 3
	summerStart := margin.NewDate(time.Now().Year(), time.June, 1)
	summerEnd := margin.NewDate(time.Now().Year(), time.August, 31)
	highValue := decimal.NewFromInt(5000)

	return []service.MarginRuleInput{
		{
			Name:            "Global baseline",
			Description:     "默认 15% 利润率",
			CalculationType: constants.MarginCalculationPercentage,
			PercentValue:    models.NewMoneyFromDecimal(decimal.NewFromInt(15)),
			Priority:        0,
			IsActive:        &active,
		},
		{
			Name:            "Makkah luxury",
			Description:     "麦加五星酒店",
			CalculationType: constants.MarginCalculationPercentage,
			PercentValue:    models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
			Priority:        50,
			IsActive:        &active,
			Conditions: margin.Conditions{
				Countries:  []string{"Saudi Arabia"},
				Cities:     []string{"Makkah"},
				StarRating: &margin.IntRange{Min: &five, Max: &five},
			},
		},
		{
			Name:            "B2B summer hybrid",
			Description:     "夏季 B2B 混合利润",
			CalculationType: constants.MarginCalculationHybrid,
			PercentValue:    models.NewMoneyFromDecimal(decimal.NewFromInt(8)),
			FixedAmount:     models.NewMoneyFromDecimal(decimal.NewFromInt(25)),
			MaxMargin:       models.NewMoneyFromDecimal(decimal.NewFromInt(400)),
			Priority:        40,
			IsActive:        &active,
			Conditions: margin.Conditions{
				DateRange:    &margin.DateRange{Start: &summerStart, End: &summerEnd},
				CustomerType: constants.CustomerTypeB2B,
			},
		},
		{
			Name:            "High value fixed",
			Description:     "高额订单固定利润",
			CalculationType: constants.MarginCalculationFixed,
			FixedAmount:     models.NewMoneyFromDecimal(decimal.NewFromInt(350)),
			Priority:        30,
			IsActive:        &active,
			Conditions: margin.Conditions{
				BookingValue: &margin.DecimalRange{Min: &highValue},
				StarRating:   &margin.IntRange{Min: &three},
			},
		},
		{
			Name:            "All inclusive promo",
			Description:     "停用中的全包餐食促销",
			CalculationType: constants.MarginCalculationPercentage,
			PercentValue:    models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			Priority:        60,
			IsActive:        &inactive,
			Conditions: margin.Conditions{
				MealTypes: []string{constants.MealTypeAllInclusive},
			},
		},
	}
}

func hasRuleNamed(rules []models.MarginRule, name string) bool {
	for _, rule := range rules {
		if strings.EqualFold(strings.TrimSpace(rule.Name), name) {
			return true
		}
	}
	return false
}

func splitRoles(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
