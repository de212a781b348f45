package repository

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/util"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

func (r *SessionRepository) WithTx(tx *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: tx}
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return r.first(r.DB.WithContext(ctx).Where("id = ?", id))
}

// FindForUpdate 读取并锁定 Session 行，需在事务中调用
func (r *SessionRepository) FindForUpdate(ctx context.Context, id string) (*model.Session, error) {
	return r.first(r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

func (r *SessionRepository) FindByLearnerSection(ctx context.Context, learnerID, sectionID uint) (*model.Session, error) {
	return r.first(r.DB.WithContext(ctx).
		Where("learner_id = ? AND section_id = ?", learnerID, sectionID))
}

// FindByLearnerSectionLocked 使用锁定读，能看到其他事务刚提交的行
func (r *SessionRepository) FindByLearnerSectionLocked(ctx context.Context, learnerID, sectionID uint) (*model.Session, error) {
	return r.first(r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("learner_id = ? AND section_id = ?", learnerID, sectionID))
}

func (r *SessionRepository) first(q *gorm.DB) (*model.Session, error) {
	var s model.Session
	err := q.First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateIfAbsent 插入 Session，(learner_id, section_id) 冲突时不写入并返回 false
func (r *SessionRepository) CreateIfAbsent(ctx context.Context, s *model.Session) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "section_id"}},
			DoNothing: true,
		}).
		Create(s)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *SessionRepository) UpdateStatus(ctx context.Context, id string, status model.SessionStatus) error {
	return r.DB.WithContext(ctx).Model(&model.Session{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Close 一次写入结束时间、原因和得分
func (r *SessionRepository) Close(ctx context.Context, s *model.Session) error {
	return r.DB.WithContext(ctx).Model(&model.Session{}).
		Where("id = ? AND end_time IS NULL", s.ID).
		Updates(map[string]interface{}{
			"status":       s.Status,
			"end_time":     s.EndTime,
			"close_reason": s.CloseReason,
			"score":        s.Score,
			"num_correct":  s.NumCorrect,
		}).Error
}
