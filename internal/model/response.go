package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

type PayloadKind string

const (
	PayloadChoice PayloadKind = "choice"
	PayloadEssay  PayloadKind = "essay"
)

// AnswerPayload is the tagged union submitted on save: OptionIDs for
// choice, Text for essay.
type AnswerPayload struct {
	Kind      PayloadKind `json:"kind" binding:"required,oneof=choice essay"`
	OptionIDs []uint      `json:"optionIds,omitempty"`
	Text      string      `json:"text,omitempty"`
}

// Response 学员在一次 Session 中对一道题的答案，(learner, session, question) 唯一
// swagger:model Response
type Response struct {
	RecordBase

	LearnerID         uint           `gorm:"not null;uniqueIndex:idx_responses_key,priority:1" json:"learnerId"`
	SessionID         string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_responses_key,priority:2" json:"sessionId"`
	QuestionID        uint           `gorm:"not null;uniqueIndex:idx_responses_key,priority:3" json:"questionId"`
	Kind              PayloadKind    `gorm:"size:10;not null" json:"kind"`
	SelectedOptionIDs datatypes.JSON `json:"optionIds,omitempty"`
	TextAnswer        string         `gorm:"type:text" json:"text,omitempty"`
	IsCorrect         *bool          `json:"isCorrect,omitempty"`
}

func (Response) TableName() string {
	return "responses"
}

// OptionIDs decodes the stored selection. A response without a selection
// yields an empty slice.
func (r Response) OptionIDs() ([]uint, error) {
	if len(r.SelectedOptionIDs) == 0 {
		return []uint{}, nil
	}
	var ids []uint
	if err := json.Unmarshal(r.SelectedOptionIDs, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Payload rebuilds the payload the response was saved with.
func (r Response) Payload() (AnswerPayload, error) {
	p := AnswerPayload{Kind: r.Kind}
	switch r.Kind {
	case PayloadChoice:
		ids, err := r.OptionIDs()
		if err != nil {
			return AnswerPayload{}, err
		}
		p.OptionIDs = ids
	case PayloadEssay:
		p.Text = r.TextAnswer
	}
	return p, nil
}
