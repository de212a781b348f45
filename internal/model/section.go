package model

import "time"

// Section 一个限时、可评分的测试单元（例如一门科目）
// swagger:model Section
type Section struct {
	BaseModel

	PackageID       uint       `gorm:"index;not null" json:"packageId"`
	Title           string     `gorm:"size:255;not null" json:"title"`
	SectionType     string     `gorm:"size:50" json:"sectionType"`
	DurationMinutes int        `gorm:"not null" json:"durationMinutes"`
	Position        int        `gorm:"default:0" json:"position"`
	Package         *Package   `gorm:"foreignKey:PackageID" json:"package,omitempty"`
	Questions       []Question `gorm:"foreignKey:SectionID" json:"questions,omitempty"`
}

func (Section) TableName() string {
	return "sections"
}

func (s Section) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
