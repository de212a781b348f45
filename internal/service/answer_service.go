package service

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/util"
	"assessment_backend/pkg/monitoring"
	"assessment_backend/pkg/tracing"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnswerService 保存作答，每个 (learner, session, question) 只保留一行
type AnswerService struct {
	Sessions *SessionService
}

func NewAnswerService(sessions *SessionService) *AnswerService {
	return &AnswerService{Sessions: sessions}
}

// Save 覆盖写入答案。Session 已结束返回 ErrSessionClosed；
// 截止时间已过则先按到期关闭 Session 再拒绝写入
func (s *AnswerService) Save(ctx context.Context, learnerID uint, sessionID string, questionID uint, payload model.AnswerPayload) (*model.Response, error) {
	ctx, span := tracing.Tracer.Start(ctx, "AnswerService.Save")
	defer span.End()

	m := s.Sessions
	var (
		saved   *model.Response
		expired *model.Session
	)
	err := m.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessions := m.SessionRepo.WithTx(tx)
		content := m.ContentRepo.WithTx(tx)

		sess, err := sessions.FindForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if sess.LearnerID != learnerID {
			return util.ErrSessionOwnership
		}
		if sess.IsClosed() {
			return util.ErrSessionClosed
		}

		section, err := content.FindSection(ctx, sess.SectionID)
		if err != nil {
			return err
		}
		now := m.Clock.Now()
		if !now.Before(sess.Deadline(section.Package)) {
			// 提交关闭结果，事务外再返回 ErrSessionClosed
			if err := m.closeLocked(ctx, tx, sess, section, now); err != nil {
				return err
			}
			expired = sess
			return nil
		}

		question, err := content.FindQuestion(ctx, sess.SectionID, questionID)
		if err != nil {
			return err
		}
		resp, err := buildResponse(sess, question, payload)
		if err != nil {
			return err
		}
		saved, err = m.ResponseRepo.WithTx(tx).Upsert(ctx, resp)
		if err != nil {
			return err
		}

		if sess.Status == model.SessionCreated {
			return sessions.UpdateStatus(ctx, sess.ID, model.SessionInProgress)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, util.ErrSessionClosed) {
			monitoring.RejectedSaves.Inc()
		}
		tracing.RecordError(span, err)
		return nil, err
	}

	if expired != nil {
		m.afterClose(expired)
		monitoring.RejectedSaves.Inc()
		return nil, util.ErrSessionClosed
	}

	monitoring.ResponsesSaved.WithLabelValues(string(saved.Kind)).Inc()
	return saved, nil
}

// buildResponse 校验 payload 与题型一致，选项必须属于该题
func buildResponse(sess *model.Session, q *model.Question, payload model.AnswerPayload) (*model.Response, error) {
	if payload.Kind != model.PayloadChoice && payload.Kind != model.PayloadEssay {
		return nil, util.ErrUnknownPayloadKind
	}

	expected := q.Type.PayloadKind()
	if expected == "" {
		return nil, fmt.Errorf("question %d has unknown type %q", q.ID, q.Type)
	}
	if payload.Kind != expected {
		return nil, fmt.Errorf("%w: %s question expects %s", util.ErrPayloadKindMismatch, q.Type, expected)
	}

	resp := &model.Response{
		LearnerID:  sess.LearnerID,
		SessionID:  sess.ID,
		QuestionID: q.ID,
		Kind:       payload.Kind,
	}

	switch expected {
	case model.PayloadChoice:
		ids := dedupe(payload.OptionIDs)
		for _, id := range ids {
			if !q.HasOption(id) {
				return nil, fmt.Errorf("%w: %d", util.ErrUnknownOption, id)
			}
		}
		raw, err := json.Marshal(ids)
		if err != nil {
			return nil, err
		}
		resp.SelectedOptionIDs = datatypes.JSON(raw)
	case model.PayloadEssay:
		resp.TextAnswer = payload.Text
	}
	return resp, nil
}

// dedupe 去重并保持原有顺序，结果不为 nil
func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
