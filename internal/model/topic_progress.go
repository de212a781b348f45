package model

import "time"

// TopicProgress 记录学员在某个主题上的视频/练习完成状态
// swagger:model TopicProgress
type TopicProgress struct {
	RecordBase

	LearnerID        uint       `gorm:"not null;uniqueIndex:idx_topic_progress_key,priority:1" json:"learnerId"`
	TopicID          uint       `gorm:"not null;uniqueIndex:idx_topic_progress_key,priority:2" json:"topicId"`
	VideoCompleted   bool       `gorm:"default:false" json:"videoCompleted"`
	DrillCompleted   bool       `gorm:"default:false" json:"drillCompleted"`
	VideoCompletedAt *time.Time `json:"videoCompletedAt,omitempty"`
	DrillCompletedAt *time.Time `json:"drillCompletedAt,omitempty"`
}

func (TopicProgress) TableName() string {
	return "topic_progress"
}
