package repository

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/util"
	"context"
	"errors"

	"gorm.io/gorm"
)

// ContentRepository 读取测试包、Section、题目及选项
type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

func (r *ContentRepository) WithTx(tx *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: tx}
}

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC, id ASC")
}

// FindSection 返回 Section 及其所属 Package；练习 Section 的 PackageID 为 0，Package 为 nil
func (r *ContentRepository) FindSection(ctx context.Context, id uint) (*model.Section, error) {
	var s model.Section
	err := r.DB.WithContext(ctx).Preload("Package").First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSectionNotFound
	}
	if err != nil {
		return nil, err
	}
	if s.PackageID != 0 && s.Package == nil {
		return nil, util.ErrPackageNotFound
	}
	return &s, nil
}

// FindQuestions 按顺序返回 Section 下全部题目（含答案）
func (r *ContentRepository) FindQuestions(ctx context.Context, sectionID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.WithContext(ctx).
		Preload("Options", orderedOptions).
		Where("section_id = ?", sectionID).
		Order("position ASC, id ASC").
		Find(&questions).Error
	return questions, err
}

// FindQuestion 只在指定 Section 内查找题目
func (r *ContentRepository) FindQuestion(ctx context.Context, sectionID, questionID uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.WithContext(ctx).
		Preload("Options", orderedOptions).
		Where("id = ? AND section_id = ?", questionID, sectionID).
		First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *ContentRepository) CreatePackage(ctx context.Context, p *model.Package) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *ContentRepository) CreateSection(ctx context.Context, s *model.Section) error {
	return r.DB.WithContext(ctx).Create(s).Error
}
