package service

import (
	"assessment_backend/internal/model"
	"fmt"
	"strings"
)

// ScoreResult 一次判分的结果，Correct 覆盖 Section 内全部题目
type ScoreResult struct {
	Score      int           `json:"score"`
	NumCorrect int           `json:"numCorrect"`
	Correct    map[uint]bool `json:"-"`
}

// Scorer 纯函数判分：相同输入总是得到相同结果
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

func (s *Scorer) Score(questions []model.Question, responses []model.Response) (ScoreResult, error) {
	byQuestion := make(map[uint]*model.Response, len(responses))
	for i := range responses {
		byQuestion[responses[i].QuestionID] = &responses[i]
	}

	result := ScoreResult{Correct: make(map[uint]bool, len(questions))}
	for _, q := range questions {
		ok, err := s.isCorrect(q, byQuestion[q.ID])
		if err != nil {
			return ScoreResult{}, err
		}
		result.Correct[q.ID] = ok
		if ok {
			result.NumCorrect++
			result.Score += q.Weight
		}
	}
	return result, nil
}

// isCorrect 未作答视为错误
func (s *Scorer) isCorrect(q model.Question, resp *model.Response) (bool, error) {
	switch q.Type {
	case model.QuestionSingleChoice, model.QuestionMultiChoice:
		if resp == nil || resp.Kind != model.PayloadChoice {
			return false, nil
		}
		selected, err := resp.OptionIDs()
		if err != nil {
			return false, fmt.Errorf("decode response %d: %w", resp.ID, err)
		}
		return sameSet(selected, q.CorrectOptionIDs()), nil
	case model.QuestionEssay:
		if resp == nil || resp.Kind != model.PayloadEssay {
			return false, nil
		}
		return matchEssay(resp.TextAnswer, q.ReferenceAnswer), nil
	default:
		return false, fmt.Errorf("question %d has unknown type %q", q.ID, q.Type)
	}
}

// sameSet 集合相等，忽略顺序与重复
func sameSet(a, b []uint) bool {
	as := toSet(a)
	bs := toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if _, ok := bs[id]; !ok {
			return false
		}
	}
	return true
}

func toSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// matchEssay 去掉首尾空白后忽略大小写完全匹配
func matchEssay(answer, reference string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(reference))
}
