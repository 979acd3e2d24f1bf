package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gaithtours/margin-engine/internal/models"
	"github.com/gaithtours/margin-engine/internal/repository"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// CountryOption 国家下拉选项
type CountryOption struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// CatalogCountry 目录文件中的国家
type CatalogCountry struct {
	Code     string   `yaml:"code"`
	Name     string   `yaml:"name"`
	Inactive bool     `yaml:"inactive"`
	Cities   []string `yaml:"cities"`
}

// Catalog 国家城市目录文件
type Catalog struct {
	Countries []CatalogCountry `yaml:"countries"`
}

// ImportSummary 目录导入统计
type ImportSummary struct {
	Countries int `json:"countries"`
	Cities    int `json:"cities"`
}

// LocationService 国家城市目录服务
type LocationService struct {
	db   *gorm.DB
	repo repository.LocationRepository
}

// NewLocationService 创建目录服务
func NewLocationService(db *gorm.DB, repo repository.LocationRepository) *LocationService {
	return &LocationService{db: db, repo: repo}
}

// LoadCatalogFile 读取 YAML 目录文件
func LoadCatalogFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var catalog Catalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return &catalog, nil
}

// ResolveCountries 查询国家选项（名称或代码模糊匹配，按名称排序）
func (s *LocationService) ResolveCountries(ctx context.Context, search string) ([]CountryOption, error) {
	countries, err := s.repo.ListCountries(ctx, search)
	if err != nil {
		return nil, err
	}
	options := make([]CountryOption, 0, len(countries))
	for _, country := range countries {
		options = append(options, CountryOption{Code: country.Code, Name: country.Name})
	}
	return options, nil
}

// ResolveCities 查询城市名称，countries 接受代码或名称，为空返回全部启用城市
func (s *LocationService) ResolveCities(ctx context.Context, countries []string) ([]string, error) {
	codes, err := s.countryCodes(ctx, countries)
	if err != nil {
		return nil, err
	}
	if len(countries) > 0 && len(codes) == 0 {
		return []string{}, nil
	}
	cities, err := s.repo.ListCities(ctx, codes)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cities))
	seen := make(map[string]struct{}, len(cities))
	for _, city := range cities {
		key := strings.ToLower(city.Name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, city.Name)
	}
	return names, nil
}

// CanonicalCountry 返回目录中的规范国家名称
func (s *LocationService) CanonicalCountry(ctx context.Context, value string) (string, error) {
	country, err := s.repo.FindCountry(ctx, value)
	if err != nil {
		return "", err
	}
	if country == nil {
		return "", fmt.Errorf("%w: country %q", ErrLocationNotFound, strings.TrimSpace(value))
	}
	return country.Name, nil
}

// CanonicalCity 返回目录中的规范城市名称，countryNames 非空时城市必须属于其中之一
func (s *LocationService) CanonicalCity(ctx context.Context, countryNames []string, value string) (string, error) {
	codes, err := s.countryCodes(ctx, countryNames)
	if err != nil {
		return "", err
	}
	if len(countryNames) > 0 && len(codes) == 0 {
		return "", fmt.Errorf("%w: city %q", ErrLocationNotFound, strings.TrimSpace(value))
	}
	city, err := s.repo.FindCity(ctx, codes, value)
	if err != nil {
		return "", err
	}
	if city == nil {
		return "", fmt.Errorf("%w: city %q", ErrLocationNotFound, strings.TrimSpace(value))
	}
	return city.Name, nil
}

// ImportCatalog 在事务内批量写入国家与城市（按代码、名称幂等）
func (s *LocationService) ImportCatalog(ctx context.Context, catalog *Catalog) (ImportSummary, error) {
	summary := ImportSummary{}
	if catalog == nil {
		return summary, nil
	}
	for i, country := range catalog.Countries {
		code := strings.ToUpper(strings.TrimSpace(country.Code))
		name := strings.Join(strings.Fields(country.Name), " ")
		if len(code) != 2 || name == "" {
			return summary, fmt.Errorf("catalog entry %d: country code must be 2 letters and name is required", i)
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewLocationRepository(tx)
		now := time.Now()
		for _, entry := range catalog.Countries {
			code := strings.ToUpper(strings.TrimSpace(entry.Code))
			country := &models.Country{
				Code:      code,
				Name:      strings.Join(strings.Fields(entry.Name), " "),
				IsActive:  !entry.Inactive,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.UpsertCountry(ctx, country); err != nil {
				return fmt.Errorf("upsert country %s: %w", code, err)
			}
			summary.Countries++
			for _, cityName := range entry.Cities {
				name := strings.Join(strings.Fields(cityName), " ")
				if name == "" {
					continue
				}
				city := &models.City{
					CountryCode: code,
					Name:        name,
					IsActive:    !entry.Inactive,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := repo.UpsertCity(ctx, city); err != nil {
					return fmt.Errorf("upsert city %s/%s: %w", code, name, err)
				}
				summary.Cities++
			}
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}
	return summary, nil
}

// countryCodes 将代码或名称转换为国家代码，未知项忽略
func (s *LocationService) countryCodes(ctx context.Context, values []string) ([]string, error) {
	codes := make([]string, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		country, err := s.repo.FindCountry(ctx, value)
		if err != nil {
			return nil, err
		}
		if country != nil {
			codes = append(codes, country.Code)
		}
	}
	return codes, nil
}
