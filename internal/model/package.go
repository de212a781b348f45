package model

import "time"

// Package 带时间窗口 [StartsAt, EndsAt) 的测试包
// swagger:model Package
type Package struct {
	BaseModel

	Title    string    `gorm:"size:255;not null" json:"title"`
	StartsAt time.Time `gorm:"not null" json:"startsAt"`
	EndsAt   time.Time `gorm:"not null" json:"endsAt"`
	Sections []Section `gorm:"foreignKey:PackageID" json:"sections,omitempty"`
}

func (Package) TableName() string {
	return "packages"
}

// IsOpenAt reports whether t falls inside the package window.
func (p Package) IsOpenAt(t time.Time) bool {
	return !t.Before(p.StartsAt) && t.Before(p.EndsAt)
}
