package model

import (
	"time"

	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionCreated    SessionStatus = "created"
	SessionInProgress SessionStatus = "in_progress"
	SessionClosed     SessionStatus = "closed"
)

type CloseReason string

const (
	CloseSubmitted CloseReason = "submitted"
	CloseExpired   CloseReason = "expired"
)

// Session 学员对某个 Section 的一次限时作答
// (learner_id, section_id) 唯一，由数据库唯一索引保证
// swagger:model Session
type Session struct {
	ID              string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	LearnerID       uint          `gorm:"not null;uniqueIndex:idx_sessions_learner_section,priority:1" json:"learnerId"`
	SectionID       uint          `gorm:"not null;uniqueIndex:idx_sessions_learner_section,priority:2" json:"sectionId"`
	PackageID       uint          `gorm:"index;not null" json:"packageId"`
	Status          SessionStatus `gorm:"size:20;not null;default:'created'" json:"status"`
	StartTime       time.Time     `gorm:"not null" json:"startTime"`
	DurationMinutes int           `gorm:"not null" json:"durationMinutes"`
	EndTime         *time.Time    `json:"endTime,omitempty"`
	CloseReason     CloseReason   `gorm:"size:20" json:"closeReason,omitempty"`
	Score           *int          `json:"score,omitempty"`
	NumCorrect      *int          `json:"numCorrect,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s *Session) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = GenerateUUID()
	}
	return
}

func (s Session) IsClosed() bool {
	return s.EndTime != nil
}

// Deadline is min(StartTime + duration, pkg.EndsAt). Sections outside a
// package (drills) only have the duration bound, so pkg may be nil.
func (s Session) Deadline(pkg *Package) time.Time {
	d := s.StartTime.Add(time.Duration(s.DurationMinutes) * time.Minute)
	if pkg != nil && pkg.EndsAt.Before(d) {
		return pkg.EndsAt
	}
	return d
}
