package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/gaithtours/margin-engine/internal/models"

	"gorm.io/gorm"
)

// MarginApplicationRepository 利润应用记录数据访问接口
type MarginApplicationRepository interface {
	GetByBookingID(ctx context.Context, bookingID string) (*models.MarginApplication, error)
	Create(ctx context.Context, application *models.MarginApplication) error
	WithTx(tx *gorm.DB) *GormMarginApplicationRepository
}

// GormMarginApplicationRepository GORM 实现
type GormMarginApplicationRepository struct {
	db *gorm.DB
}

// NewMarginApplicationRepository 创建利润应用记录仓库
func NewMarginApplicationRepository(db *gorm.DB) *GormMarginApplicationRepository {
	return &GormMarginApplicationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMarginApplicationRepository) WithTx(tx *gorm.DB) *GormMarginApplicationRepository {
	if tx == nil {
		return r
	}
	return &GormMarginApplicationRepository{db: tx}
}

// GetByBookingID 根据预订号获取记录
func (r *GormMarginApplicationRepository) GetByBookingID(ctx context.Context, bookingID string) (*models.MarginApplication, error) {
	var application models.MarginApplication
	err := r.db.WithContext(ctx).Where("booking_id = ?", strings.TrimSpace(bookingID)).First(&application).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &application, nil
}

// Create 创建记录
func (r *GormMarginApplicationRepository) Create(ctx context.Context, application *models.MarginApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

