package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/gaithtours/margin-engine/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LocationRepository 国家城市目录数据访问接口
type LocationRepository interface {
	ListCountries(ctx context.Context, search string) ([]models.Country, error)
	FindCountry(ctx context.Context, value string) (*models.Country, error)
	ListCities(ctx context.Context, countryCodes []string) ([]models.City, error)
	FindCity(ctx context.Context, countryCodes []string, name string) (*models.City, error)
	UpsertCountry(ctx context.Context, country *models.Country) error
	UpsertCity(ctx context.Context, city *models.City) error
	WithTx(tx *gorm.DB) *GormLocationRepository
}

// GormLocationRepository GORM 实现
type GormLocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository 创建目录仓库
func NewLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLocationRepository) WithTx(tx *gorm.DB) *GormLocationRepository {
	if tx == nil {
		return r
	}
	return &GormLocationRepository{db: tx}
}

// ListCountries 查询启用国家，search 按名称或代码模糊匹配
func (r *GormLocationRepository) ListCountries(ctx context.Context, search string) ([]models.Country, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if keyword := strings.ToLower(strings.TrimSpace(search)); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", like, like)
	}
	countries := make([]models.Country, 0)
	if err := query.Order("name ASC").Find(&countries).Error; err != nil {
		return nil, err
	}
	return countries, nil
}

// FindCountry 按代码或名称（不区分大小写）查找启用国家
func (r *GormLocationRepository) FindCountry(ctx context.Context, value string) (*models.Country, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(value), " "))
	if normalized == "" {
		return nil, nil
	}
	var country models.Country
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("LOWER(code) = ? OR LOWER(name) = ?", normalized, normalized).
		First(&country).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &country, nil
}

// ListCities 查询启用城市，countryCodes 为空时返回全部
func (r *GormLocationRepository) ListCities(ctx context.Context, countryCodes []string) ([]models.City, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)
	if codes := upperCodes(countryCodes); len(codes) > 0 {
		query = query.Where("country_code IN ?", codes)
	}
	cities := make([]models.City, 0)
	if err := query.Order("name ASC").Find(&cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}

// FindCity 按名称（不区分大小写）查找启用城市，可限定国家
func (r *GormLocationRepository) FindCity(ctx context.Context, countryCodes []string, name string) (*models.City, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(name), " "))
	if normalized == "" {
		return nil, nil
	}
	query := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("LOWER(name) = ?", normalized)
	if codes := upperCodes(countryCodes); len(codes) > 0 {
		query = query.Where("country_code IN ?", codes)
	}
	var city models.City
	if err := query.Order("id ASC").First(&city).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

// UpsertCountry 按代码新增或更新国家
func (r *GormLocationRepository) UpsertCountry(ctx context.Context, country *models.Country) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "is_active", "updated_at"}),
	}).Create(country).Error
}

// UpsertCity 按国家与名称新增或更新城市
func (r *GormLocationRepository) UpsertCity(ctx context.Context, city *models.City) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "country_code"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_active", "updated_at"}),
	}).Create(city).Error
}

func upperCodes(values []string) []string {
	codes := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.ToUpper(strings.TrimSpace(value))
		if trimmed != "" {
			codes = append(codes, trimmed)
		}
	}
	return codes
}
