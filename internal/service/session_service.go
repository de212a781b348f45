package service

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/repository"
	"assessment_backend/internal/util"
	"assessment_backend/pkg/logger"
	"assessment_backend/pkg/monitoring"
	"assessment_backend/pkg/tracing"
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxCreateAttempts = 3

// SessionDetails Session 及其全部答案；Deadline 和 RemainingSeconds 仅供客户端展示
type SessionDetails struct {
	Session          *model.Session   `json:"session"`
	Responses        []model.Response `json:"responses"`
	Deadline         time.Time        `json:"deadline"`
	RemainingSeconds int64            `json:"remainingSeconds"`
}

// SessionReview 结束后的回顾，包含答案与判分
type SessionReview struct {
	Session   *model.Session   `json:"session"`
	Questions []model.Question `json:"questions"`
	Responses []model.Response `json:"responses"`
}

type SessionService struct {
	DB           *gorm.DB
	ContentRepo  *repository.ContentRepository
	SessionRepo  *repository.SessionRepository
	ResponseRepo *repository.ResponseRepository
	Scorer       *Scorer
	Clock        Clock
}

func NewSessionService(
	db *gorm.DB,
	contentRepo *repository.ContentRepository,
	sessionRepo *repository.SessionRepository,
	responseRepo *repository.ResponseRepository,
	scorer *Scorer,
	clock Clock,
) *SessionService {
	return &SessionService{
		DB:           db,
		ContentRepo:  contentRepo,
		SessionRepo:  sessionRepo,
		ResponseRepo: responseRepo,
		Scorer:       scorer,
		Clock:        clock,
	}
}

// CreateOrGetSession 返回学员在该 Section 的 Session，不存在时创建
func (s *SessionService) CreateOrGetSession(ctx context.Context, learnerID, sectionID uint, durationMinutes int) (*model.Session, error) {
	ctx, span := tracing.Tracer.Start(ctx, "SessionService.CreateOrGetSession")
	defer span.End()

	var (
		sess    *model.Session
		created bool
		err     error
	)
	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		sess, created, err = s.createOrGet(ctx, learnerID, sectionID, durationMinutes)
		if !errors.Is(err, util.ErrConflict) {
			break
		}
		logger.Log.Warn("创建 Session 发生冲突，重试",
			zap.Uint("learnerId", learnerID),
			zap.Uint("sectionId", sectionID),
			zap.Int("attempt", attempt),
		)
	}
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	if created {
		monitoring.SessionsCreated.Inc()
		logger.Log.Info("Session 已创建",
			zap.String("sessionId", sess.ID),
			zap.Uint("learnerId", learnerID),
			zap.Uint("sectionId", sectionID),
			zap.Int("durationMinutes", sess.DurationMinutes),
		)
	}
	return sess, nil
}

func (s *SessionService) createOrGet(ctx context.Context, learnerID, sectionID uint, durationMinutes int) (*model.Session, bool, error) {
	var (
		sess    *model.Session
		created bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessions := s.SessionRepo.WithTx(tx)

		section, err := s.ContentRepo.WithTx(tx).FindSection(ctx, sectionID)
		if err != nil {
			return err
		}

		existing, err := sessions.FindByLearnerSection(ctx, learnerID, sectionID)
		if err == nil {
			sess = existing
			return nil
		}
		if !errors.Is(err, util.ErrSessionNotFound) {
			return err
		}

		now := s.Clock.Now()
		if pkg := section.Package; pkg != nil && !pkg.IsOpenAt(now) {
			if now.Before(pkg.StartsAt) {
				return util.ErrPackageNotOpen
			}
			return util.ErrPackageClosed
		}

		candidate := &model.Session{
			LearnerID:       learnerID,
			SectionID:       sectionID,
			PackageID:       section.PackageID,
			Status:          model.SessionCreated,
			StartTime:       now,
			DurationMinutes: effectiveDuration(durationMinutes, section.DurationMinutes),
		}
		inserted, err := sessions.CreateIfAbsent(ctx, candidate)
		if err != nil {
			return err
		}
		if inserted {
			sess, created = candidate, true
			return nil
		}

		// 并发请求先插入成功，返回胜出的那一行
		winner, err := sessions.FindByLearnerSectionLocked(ctx, learnerID, sectionID)
		if errors.Is(err, util.ErrSessionNotFound) {
			return util.ErrSessionConflict
		}
		if err != nil {
			return err
		}
		sess = winner
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return sess, created, nil
}

// effectiveDuration 请求的时长不能超过 Section 的时长预算
func effectiveDuration(requested, budget int) int {
	if requested <= 0 || requested > budget {
		return budget
	}
	return requested
}

// GetDetails 返回 Session 与答案；已过截止时间的 Session 会先被关闭
func (s *SessionService) GetDetails(ctx context.Context, learnerID uint, sessionID string) (*SessionDetails, error) {
	ctx, span := tracing.Tracer.Start(ctx, "SessionService.GetDetails")
	defer span.End()

	sess, err := s.SessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.LearnerID != learnerID {
		return nil, util.ErrSessionOwnership
	}

	section, err := s.ContentRepo.FindSection(ctx, sess.SectionID)
	if err != nil {
		return nil, err
	}
	deadline := sess.Deadline(section.Package)
	now := s.Clock.Now()

	if !sess.IsClosed() && !now.Before(deadline) {
		sess, err = s.Submit(ctx, learnerID, sessionID)
		if err != nil {
			tracing.RecordError(span, err)
			return nil, err
		}
	}

	responses, err := s.ResponseRepo.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionDetails{
		Session:          sess,
		Responses:        responses,
		Deadline:         deadline,
		RemainingSeconds: remainingSeconds(sess, deadline, now),
	}, nil
}

func remainingSeconds(sess *model.Session, deadline, now time.Time) int64 {
	if sess.IsClosed() || !now.Before(deadline) {
		return 0
	}
	return int64(deadline.Sub(now) / time.Second)
}

// Submit 关闭 Session 并在同一事务内写入得分；重复提交返回已有结果
func (s *SessionService) Submit(ctx context.Context, learnerID uint, sessionID string) (*model.Session, error) {
	ctx, span := tracing.Tracer.Start(ctx, "SessionService.Submit")
	defer span.End()

	var (
		sess      *model.Session
		closedNow bool
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.SessionRepo.WithTx(tx).FindForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if locked.LearnerID != learnerID {
			return util.ErrSessionOwnership
		}
		if locked.IsClosed() {
			sess = locked
			return nil
		}

		section, err := s.ContentRepo.WithTx(tx).FindSection(ctx, locked.SectionID)
		if err != nil {
			return err
		}
		if err := s.closeLocked(ctx, tx, locked, section, s.Clock.Now()); err != nil {
			return err
		}
		sess, closedNow = locked, true
		return nil
	})
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	if closedNow {
		s.afterClose(sess)
	}
	return sess, nil
}

// closeLocked 要求调用方已在 tx 中锁定 sess
func (s *SessionService) closeLocked(ctx context.Context, tx *gorm.DB, sess *model.Session, section *model.Section, now time.Time) error {
	deadline := sess.Deadline(section.Package)
	end, reason := now, model.CloseSubmitted
	if !now.Before(deadline) {
		end, reason = deadline, model.CloseExpired
	}
	if end.Before(sess.StartTime) {
		end = sess.StartTime
	}

	questions, err := s.ContentRepo.WithTx(tx).FindQuestions(ctx, sess.SectionID)
	if err != nil {
		return err
	}
	responseRepo := s.ResponseRepo.WithTx(tx)
	responses, err := responseRepo.FindBySession(ctx, sess.ID)
	if err != nil {
		return err
	}

	result, err := s.Scorer.Score(questions, responses)
	if err != nil {
		return err
	}

	sess.Status = model.SessionClosed
	sess.EndTime = &end
	sess.CloseReason = reason
	sess.Score = &result.Score
	sess.NumCorrect = &result.NumCorrect
	if err := s.SessionRepo.WithTx(tx).Close(ctx, sess); err != nil {
		return err
	}

	answered := make(map[uint]bool, len(responses))
	for _, r := range responses {
		answered[r.QuestionID] = result.Correct[r.QuestionID]
	}
	return responseRepo.SetCorrectness(ctx, sess.ID, answered)
}

func (s *SessionService) afterClose(sess *model.Session) {
	monitoring.SessionsClosed.WithLabelValues(string(sess.CloseReason)).Inc()
	logger.Log.Info("Session 已结束",
		zap.String("sessionId", sess.ID),
		zap.Uint("learnerId", sess.LearnerID),
		zap.String("reason", string(sess.CloseReason)),
		zap.Int("score", *sess.Score),
		zap.Int("numCorrect", *sess.NumCorrect),
	)
}

// Review 仅对已结束的 Session 返回带答案的题目
func (s *SessionService) Review(ctx context.Context, learnerID uint, sessionID string) (*SessionReview, error) {
	details, err := s.GetDetails(ctx, learnerID, sessionID)
	if err != nil {
		return nil, err
	}
	if !details.Session.IsClosed() {
		return nil, util.ErrSessionStillOpen
	}

	questions, err := s.ContentRepo.FindQuestions(ctx, details.Session.SectionID)
	if err != nil {
		return nil, err
	}
	return &SessionReview{
		Session:   details.Session,
		Questions: questions,
		Responses: details.Responses,
	}, nil
}
