package model

// Course 有序主题序列，解锁规则按 Position 依次推进
// swagger:model Course
type Course struct {
	BaseModel

	Title  string  `gorm:"size:255;not null" json:"title"`
	Topics []Topic `gorm:"foreignKey:CourseID" json:"topics,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Topic
type Topic struct {
	BaseModel

	CourseID       uint   `gorm:"not null;uniqueIndex:idx_topics_course_position,priority:1" json:"courseId"`
	Position       int    `gorm:"not null;uniqueIndex:idx_topics_course_position,priority:2" json:"position"` // 从 1 开始
	Title          string `gorm:"size:255;not null" json:"title"`
	VideoURL       string `gorm:"size:500" json:"videoUrl"`
	DrillSectionID *uint  `gorm:"index" json:"drillSectionId,omitempty"`
}

func (Topic) TableName() string {
	return "topics"
}

func (t Topic) HasDrill() bool {
	return t.DrillSectionID != nil
}
