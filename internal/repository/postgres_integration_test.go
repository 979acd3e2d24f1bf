//go:build integration
// +build integration

package repository

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/gaithtours/margin-engine/internal/constants"
	"github.com/gaithtours/margin-engine/internal/margin"
	"github.com/gaithtours/margin-engine/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.MarginApplication{},
		&models.MarginRule{},
		&models.City{},
		&models.Country{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(cleanupModels...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresMarginRuleRepository(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewMarginRuleRepository(db)
	ctx := context.Background()

	rule := &models.MarginRule{
		Name:            "Riyadh corporate",
		CalculationType: constants.MarginCalculationHybrid,
		PercentValue:    models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		FixedAmount:     models.NewMoneyFromDecimal(decimal.NewFromInt(20)),
		Currency:        "SAR",
		Priority:        2,
		Status:          constants.MarginRuleStatusActive,
		Conditions: margin.Conditions{
			Cities:       []string{"Riyadh"},
			CustomerType: constants.CustomerTypeB2B,
		},
	}
	if err := repo.Create(ctx, rule); err != nil {
		t.Fatalf("create rule failed: %v", err)
	}

	rules, total, err := repo.List(ctx, MarginRuleListFilter{CustomerType: "b2b", Search: "RIYADH"})
	if err != nil {
		t.Fatalf("list rules failed: %v", err)
	}
	if total != 1 || len(rules) != 1 || rules[0].ID != rule.ID {
		t.Fatalf("postgres filter mismatch: total=%d len=%d", total, len(rules))
	}

	if err := repo.IncrementApplied(ctx, rule.ID, models.NewMoneyFromDecimal(decimal.NewFromInt(70))); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	deleted, err := repo.DeleteIfUnused(ctx, rule.ID)
	if err != nil || deleted {
		t.Fatalf("applied rule must not be deleted on postgres, got %v %v", deleted, err)
	}
}
