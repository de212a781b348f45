package repository

import (
	"assessment_backend/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ResponseRepository struct {
	DB *gorm.DB
}

func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: db}
}

func (r *ResponseRepository) WithTx(tx *gorm.DB) *ResponseRepository {
	return &ResponseRepository{DB: tx}
}

// Upsert 按 (learner_id, session_id, question_id) 覆盖写入答案
func (r *ResponseRepository) Upsert(ctx context.Context, resp *model.Response) (*model.Response, error) {
	db := r.DB.WithContext(ctx)
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "learner_id"}, {Name: "session_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"kind", "selected_option_ids", "text_answer", "updated_at",
		}),
	}).Create(resp).Error
	if err != nil {
		return nil, err
	}

	// 冲突更新时部分驱动不会回填主键，重新读取
	return r.FindOne(ctx, resp.LearnerID, resp.SessionID, resp.QuestionID)
}

func (r *ResponseRepository) FindOne(ctx context.Context, learnerID uint, sessionID string, questionID uint) (*model.Response, error) {
	var resp model.Response
	err := r.DB.WithContext(ctx).
		Where("learner_id = ? AND session_id = ? AND question_id = ?", learnerID, sessionID, questionID).
		First(&resp).Error
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *ResponseRepository) FindBySession(ctx context.Context, sessionID string) ([]model.Response, error) {
	var responses []model.Response
	err := r.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_id ASC").
		Find(&responses).Error
	return responses, err
}

func (r *ResponseRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Response{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

// SetCorrectness 写入每道已作答题目的判分结果
func (r *ResponseRepository) SetCorrectness(ctx context.Context, sessionID string, correct map[uint]bool) error {
	db := r.DB.WithContext(ctx)
	for questionID, ok := range correct {
		err := db.Model(&model.Response{}).
			Where("session_id = ? AND question_id = ?", sessionID, questionID).
			Update("is_correct", ok).Error
		if err != nil {
			return err
		}
	}
	return nil
}
