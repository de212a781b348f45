package service

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/repository"
	"assessment_backend/internal/util"
	"assessment_backend/pkg/logger"
	"assessment_backend/pkg/tracing"
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ProgressService struct {
	DB         *gorm.DB
	CourseRepo *repository.CourseRepository
	Clock      Clock
}

func NewProgressService(db *gorm.DB, courseRepo *repository.CourseRepository, clock Clock) *ProgressService {
	return &ProgressService{DB: db, CourseRepo: courseRepo, Clock: clock}
}

// GetCourseProgress 返回学员在课程各主题上的解锁状态
func (s *ProgressService) GetCourseProgress(ctx context.Context, learnerID, courseID uint) ([]TopicGate, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.GetCourseProgress")
	defer span.End()

	if _, err := s.CourseRepo.FindCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.gate(ctx, s.CourseRepo, learnerID, courseID)
}

func (s *ProgressService) gate(ctx context.Context, repo *repository.CourseRepository, learnerID, courseID uint) ([]TopicGate, error) {
	topics, err := repo.FindTopics(ctx, courseID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(topics))
	for _, t := range topics {
		ids = append(ids, t.ID)
	}
	progress, err := repo.FindProgress(ctx, learnerID, ids)
	if err != nil {
		return nil, err
	}
	return ComputeGate(topics, progress), nil
}

// MarkVideoDone 记录视频完成，已完成时不做修改
func (s *ProgressService) MarkVideoDone(ctx context.Context, learnerID, topicID uint) ([]TopicGate, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.MarkVideoDone")
	defer span.End()

	return s.mark(ctx, learnerID, topicID, func(topic *model.Topic, g TopicGate) (*model.TopicProgress, []string, error) {
		if g.State == TopicLocked {
			return nil, nil, util.ErrTopicLocked
		}
		if g.State != TopicUnlocked {
			return nil, nil, nil
		}
		now := s.Clock.Now()
		return &model.TopicProgress{
			LearnerID:        learnerID,
			TopicID:          topic.ID,
			VideoCompleted:   true,
			VideoCompletedAt: &now,
		}, []string{"video_completed", "video_completed_at"}, nil
	})
}

// MarkDrillDone 记录练习完成，要求视频已完成
func (s *ProgressService) MarkDrillDone(ctx context.Context, learnerID, topicID uint) ([]TopicGate, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.MarkDrillDone")
	defer span.End()

	return s.mark(ctx, learnerID, topicID, func(topic *model.Topic, g TopicGate) (*model.TopicProgress, []string, error) {
		if !topic.HasDrill() {
			return nil, nil, util.ErrTopicHasNoDrill
		}
		switch g.State {
		case TopicLocked:
			return nil, nil, util.ErrTopicLocked
		case TopicUnlocked:
			return nil, nil, util.ErrVideoNotCompleted
		case TopicDrillDone:
			return nil, nil, nil
		}
		now := s.Clock.Now()
		return &model.TopicProgress{
			LearnerID:        learnerID,
			TopicID:          topic.ID,
			VideoCompleted:   true,
			DrillCompleted:   true,
			DrillCompletedAt: &now,
		}, []string{"drill_completed", "drill_completed_at"}, nil
	})
}

// transition 返回 nil 表示无需写入
type transition func(topic *model.Topic, current TopicGate) (*model.TopicProgress, []string, error)

func (s *ProgressService) mark(ctx context.Context, learnerID, topicID uint, next transition) ([]TopicGate, error) {
	var gates []TopicGate
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.CourseRepo.WithTx(tx)

		topic, err := repo.FindTopic(ctx, topicID)
		if err != nil {
			return err
		}
		current, err := s.gate(ctx, repo, learnerID, topic.CourseID)
		if err != nil {
			return err
		}
		g, _ := GateFor(current, topic.ID)

		row, columns, err := next(topic, g)
		if err != nil {
			return err
		}
		if row == nil {
			gates = current
			return nil
		}
		if err := repo.UpsertProgress(ctx, row, columns...); err != nil {
			return err
		}

		logger.Log.Info("主题进度已更新",
			zap.Uint("learnerId", learnerID),
			zap.Uint("topicId", topicID),
			zap.Strings("columns", columns),
		)
		gates, err = s.gate(ctx, repo, learnerID, topic.CourseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return gates, nil
}
