package models

import "time"

// Country 国家目录
type Country struct {
	ID        uint      `gorm:"primarykey" json:"id"`                      // 主键
	Code      string    `gorm:"size:2;uniqueIndex;not null" json:"code"`   // ISO 3166-1 二位码
	Name      string    `gorm:"size:120;uniqueIndex;not null" json:"name"` // 名称
	IsActive  bool      `gorm:"not null" json:"is_active"`                 // 是否启用
	CreatedAt time.Time `json:"created_at"`                                // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                // 更新时间
}

// TableName 指定表名
func (Country) TableName() string {
	return "countries"
}

// City 城市目录
type City struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                  // 主键
	CountryCode string    `gorm:"size:2;not null;uniqueIndex:idx_city_country_name" json:"country_code"` // 所属国家
	Name        string    `gorm:"size:120;not null;uniqueIndex:idx_city_country_name" json:"name"`       // 名称
	IsActive    bool      `gorm:"not null" json:"is_active"`                                             // 是否启用
	CreatedAt   time.Time `json:"created_at"`                                                            // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                                            // 更新时间
}

// TableName 指定表名
func (City) TableName() string {
	return "cities"
}
