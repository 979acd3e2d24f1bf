package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gaithtours/margin-engine/internal/constants"
	"github.com/gaithtours/margin-engine/internal/margin"
	"github.com/gaithtours/margin-engine/internal/models"
	"github.com/gaithtours/margin-engine/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openMarginTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.MarginRule{},
		&models.MarginApplication{},
		&models.Country{},
		&models.City{},
		&models.MarginRuleAuditLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func testCatalog() *Catalog {
	return &Catalog{Countries: []CatalogCountry{
		{Code: "SA", Name: "Saudi Arabia", Cities: []string{"Riyadh", "Jeddah", "Makkah"}},
		{Code: "AE", Name: "United Arab Emirates", Cities: []string{"Dubai", "Abu Dhabi"}},
		{Code: "EG", Name: "Egypt", Cities: []string{"Cairo"}},
		{Code: "QA", Name: "Qatar", Inactive: true, Cities: []string{"Doha"}},
	}}
}

func importTestCatalog(t *testing.T, db *gorm.DB) *LocationService {
	t.Helper()
	svc := NewLocationService(db, repository.NewLocationRepository(db))
	if _, err := svc.ImportCatalog(context.Background(), testCatalog()); err != nil {
		t.Fatalf("import catalog failed: %v", err)
	}
	return svc
}

type countingInvalidator struct {
	calls atomic.Int32
}

func (c *countingInvalidator) Invalidate(context.Context) {
	c.calls.Add(1)
}

func seedMarginRule(t *testing.T, db *gorm.DB, rule models.MarginRule) *models.MarginRule {
	t.Helper()
	if rule.Status == "" {
		rule.Status = constants.MarginRuleStatusActive
	}
	if rule.Currency == "" {
		rule.Currency = constants.DefaultPricingCurrency
	}
	if rule.CalculationType == "" {
		rule.CalculationType = constants.MarginCalculationPercentage
	}
	if err := repository.NewMarginRuleRepository(db).Create(context.Background(), &rule); err != nil {
		t.Fatalf("seed rule failed: %v", err)
	}
	return &rule
}

func money(value string) models.Money {
	m, err := models.NewMoneyFromString(value)
	if err != nil {
		panic(err)
	}
	return m
}

func testBooking(base string) margin.BookingContext {
	return margin.BookingContext{
		BasePrice:    decimal.RequireFromString(base),
		Currency:     "SAR",
		Country:      "Saudi Arabia",
		City:         "Riyadh",
		StarRating:   4,
		CheckInDate:  margin.NewDate(2026, 3, 10),
		Nights:       1,
		MealType:     constants.MealTypeBreakfast,
		CustomerType: constants.CustomerTypeB2C,
	}
}

func intValue(v int) *int {
	return &v
}
