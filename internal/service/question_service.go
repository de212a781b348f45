package service

import (
	"assessment_backend/internal/cache"
	"assessment_backend/internal/model"
	"assessment_backend/internal/repository"
	"assessment_backend/pkg/logger"
	"context"
	"errors"

	"go.uber.org/zap"
)

// QuestionService 向作答中的学员提供题目，不返回正确选项和参考答案
type QuestionService struct {
	ContentRepo *repository.ContentRepository
	Cache       cache.QuestionCache
}

// NewQuestionService questionCache 可以为 nil
func NewQuestionService(contentRepo *repository.ContentRepository, questionCache cache.QuestionCache) *QuestionService {
	return &QuestionService{ContentRepo: contentRepo, Cache: questionCache}
}

func (s *QuestionService) GetQuestions(ctx context.Context, sectionID uint) ([]model.QuestionView, error) {
	if s.Cache != nil {
		views, err := s.Cache.GetQuestions(ctx, sectionID)
		if err == nil {
			return views, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Log.Warn("读取题目缓存失败", zap.Uint("sectionId", sectionID), zap.Error(err))
		}
	}

	if _, err := s.ContentRepo.FindSection(ctx, sectionID); err != nil {
		return nil, err
	}
	questions, err := s.ContentRepo.FindQuestions(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	views := make([]model.QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, model.NewQuestionView(q))
	}

	if s.Cache != nil {
		if err := s.Cache.SetQuestions(ctx, sectionID, views); err != nil {
			logger.Log.Warn("写入题目缓存失败", zap.Uint("sectionId", sectionID), zap.Error(err))
		}
	}
	return views, nil
}
