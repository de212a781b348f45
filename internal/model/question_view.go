package model

// QuestionView is the learner-facing shape of a question: no correct flags,
// no reference answer.
type QuestionView struct {
	ID       uint         `json:"id"`
	Type     QuestionType `json:"type"`
	Prompt   string       `json:"prompt"`
	Position int          `json:"position"`
	Weight   int          `json:"weight"`
	Options  []OptionView `json:"options,omitempty"`
}

type OptionView struct {
	ID       uint   `json:"id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

func NewQuestionView(q Question) QuestionView {
	v := QuestionView{
		ID:       q.ID,
		Type:     q.Type,
		Prompt:   q.Prompt,
		Position: q.Position,
		Weight:   q.Weight,
	}
	for _, o := range q.Options {
		v.Options = append(v.Options, OptionView{ID: o.ID, Label: o.Label, Position: o.Position})
	}
	return v
}
