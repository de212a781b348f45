package model

type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single_choice"
	QuestionMultiChoice  QuestionType = "multi_choice"
	QuestionEssay        QuestionType = "essay"
)

func (t QuestionType) Valid() bool {
	switch t {
	case QuestionSingleChoice, QuestionMultiChoice, QuestionEssay:
		return true
	}
	return false
}

// PayloadKind returns the answer payload kind accepted by questions of this type.
func (t QuestionType) PayloadKind() PayloadKind {
	switch t {
	case QuestionSingleChoice, QuestionMultiChoice:
		return PayloadChoice
	case QuestionEssay:
		return PayloadEssay
	}
	return ""
}

// swagger:model Question
type Question struct {
	BaseModel

	SectionID       uint         `gorm:"index;not null" json:"sectionId"`
	Type            QuestionType `gorm:"size:30;not null" json:"type"`
	Prompt          string       `gorm:"type:text" json:"prompt"`
	Position        int          `gorm:"default:0" json:"position"`
	Weight          int          `gorm:"not null;default:1" json:"weight"`
	ReferenceAnswer string       `gorm:"type:text" json:"referenceAnswer,omitempty"` // 仅问答题
	Options         []Option     `gorm:"foreignKey:QuestionID" json:"options,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOptionIDs returns the ids of options flagged correct.
func (q Question) CorrectOptionIDs() []uint {
	ids := make([]uint, 0, 1)
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// HasOption reports whether id belongs to one of the question's options.
func (q Question) HasOption(id uint) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

// swagger:model Option
type Option struct {
	BaseModel

	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Label      string `gorm:"type:text" json:"label"`
	Position   int    `gorm:"default:0" json:"position"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (Option) TableName() string {
	return "options"
}
