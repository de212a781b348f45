package testutil

import (
	"assessment_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SectionFixture 一个测试包下的单个 Section 及其题目
type SectionFixture struct {
	Package   model.Package
	Section   model.Section
	Questions []model.Question
}

// Option 按标签查找题目选项
func (f *SectionFixture) Option(questionIdx int, label string) model.Option {
	for _, o := range f.Questions[questionIdx].Options {
		if o.Label == label {
			return o
		}
	}
	panic("option " + label + " not found")
}

// CreateSection 写入 Package、Section 和题目；package 窗口为 [start, end)
func CreateSection(t *testing.T, db *gorm.DB, start, end time.Time, durationMinutes int, questions ...model.Question) *SectionFixture {
	t.Helper()

	pkg := model.Package{Title: "Mock exam", StartsAt: start, EndsAt: end}
	require.NoError(t, db.Create(&pkg).Error)

	section := model.Section{PackageID: pkg.ID, Title: "Math", SectionType: "math", DurationMinutes: durationMinutes}
	require.NoError(t, db.Create(&section).Error)

	for i := range questions {
		questions[i].SectionID = section.ID
		if questions[i].Position == 0 {
			questions[i].Position = i + 1
		}
		require.NoError(t, db.Create(&questions[i]).Error)
	}

	return &SectionFixture{Package: pkg, Section: section, Questions: questions}
}

// SingleChoice 生成单选题，correct 为正确选项的标签
func SingleChoice(weight int, correct string, labels ...string) model.Question {
	return choice(model.QuestionSingleChoice, weight, []string{correct}, labels...)
}

func MultiChoice(weight int, correct []string, labels ...string) model.Question {
	return choice(model.QuestionMultiChoice, weight, correct, labels...)
}

func Essay(weight int, reference string) model.Question {
	return model.Question{Type: model.QuestionEssay, Prompt: "essay", Weight: weight, ReferenceAnswer: reference}
}

func choice(typ model.QuestionType, weight int, correct []string, labels ...string) model.Question {
	isCorrect := make(map[string]bool, len(correct))
	for _, c := range correct {
		isCorrect[c] = true
	}
	q := model.Question{Type: typ, Prompt: "choose", Weight: weight}
	for i, l := range labels {
		q.Options = append(q.Options, model.Option{Label: l, Position: i + 1, IsCorrect: isCorrect[l]})
	}
	return q
}

// CreateCourse 写入课程及主题，hasDrill[i] 表示第 i+1 个主题是否带练习
func CreateCourse(t *testing.T, db *gorm.DB, hasDrill ...bool) (model.Course, []model.Topic) {
	t.Helper()

	course := model.Course{Title: "Algebra"}
	require.NoError(t, db.Create(&course).Error)

	topics := make([]model.Topic, 0, len(hasDrill))
	for i, drill := range hasDrill {
		topic := model.Topic{CourseID: course.ID, Position: i + 1, Title: "topic", VideoURL: "https://example.com/v.mp4"}
		if drill {
			section := model.Section{Title: "drill", SectionType: "drill", DurationMinutes: 10}
			require.NoError(t, db.Create(&section).Error)
			topic.DrillSectionID = &section.ID
		}
		require.NoError(t, db.Create(&topic).Error)
		topics = append(topics, topic)
	}
	return course, topics
}
