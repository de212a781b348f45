// Package seed 从 YAML 文件导入测试包与课程内容
package seed

import (
	"assessment_backend/internal/cache"
	"assessment_backend/internal/model"
	"assessment_backend/internal/repository"
	"assessment_backend/internal/util"
	"assessment_backend/pkg/logger"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type File struct {
	Packages []PackageDoc `yaml:"packages"`
	Courses  []CourseDoc  `yaml:"courses"`
}

type PackageDoc struct {
	Title    string       `yaml:"title"`
	StartsAt time.Time    `yaml:"startsAt"`
	EndsAt   time.Time    `yaml:"endsAt"`
	Sections []SectionDoc `yaml:"sections"`
}

type SectionDoc struct {
	Title           string        `yaml:"title"`
	Type            string        `yaml:"type"`
	DurationMinutes int           `yaml:"durationMinutes"`
	Questions       []QuestionDoc `yaml:"questions"`
}

type QuestionDoc struct {
	Type      model.QuestionType `yaml:"type"`
	Prompt    string             `yaml:"prompt"`
	Weight    int                `yaml:"weight"`
	Reference string             `yaml:"reference,omitempty"`
	Options   []OptionDoc        `yaml:"options,omitempty"`
}

type OptionDoc struct {
	Label   string `yaml:"label"`
	Correct bool   `yaml:"correct,omitempty"`
}

type CourseDoc struct {
	Title  string     `yaml:"title"`
	Topics []TopicDoc `yaml:"topics"`
}

type TopicDoc struct {
	Title    string      `yaml:"title"`
	Position int         `yaml:"position"`
	VideoURL string      `yaml:"videoUrl"`
	Drill    *SectionDoc `yaml:"drill,omitempty"`
}

// Summary 导入结果统计
type Summary struct {
	Packages  int
	Sections  int
	Questions int
	Courses   int
	Topics    int
}

func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

func LoadFile(path string) (*File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return Parse(fp)
}

// Validate 检查内容是否可评分，错误归类为 util.ErrValidation
func (f *File) Validate() error {
	for i, p := range f.Packages {
		where := fmt.Sprintf("packages[%d]", i)
		if strings.TrimSpace(p.Title) == "" {
			return invalid(where, "title is required")
		}
		if !p.EndsAt.After(p.StartsAt) {
			return invalid(where, "endsAt must be after startsAt")
		}
		for j, s := range p.Sections {
			if err := s.validate(fmt.Sprintf("%s.sections[%d]", where, j)); err != nil {
				return err
			}
		}
	}

	for i, c := range f.Courses {
		where := fmt.Sprintf("courses[%d]", i)
		if strings.TrimSpace(c.Title) == "" {
			return invalid(where, "title is required")
		}
		seen := make(map[int]bool, len(c.Topics))
		for j, t := range c.Topics {
			tw := fmt.Sprintf("%s.topics[%d]", where, j)
			if t.Position < 1 || t.Position > len(c.Topics) || seen[t.Position] {
				return invalid(tw, "positions must be unique and contiguous from 1")
			}
			seen[t.Position] = true
			if t.Drill != nil {
				if err := t.Drill.validate(tw + ".drill"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s SectionDoc) validate(where string) error {
	if strings.TrimSpace(s.Title) == "" {
		return invalid(where, "title is required")
	}
	if s.DurationMinutes <= 0 {
		return invalid(where, "durationMinutes must be positive")
	}
	for k, q := range s.Questions {
		if err := q.validate(fmt.Sprintf("%s.questions[%d]", where, k)); err != nil {
			return err
		}
	}
	return nil
}

func (q QuestionDoc) validate(where string) error {
	if !q.Type.Valid() {
		return invalid(where, fmt.Sprintf("unknown question type %q", q.Type))
	}
	if q.Weight <= 0 {
		return invalid(where, "weight must be positive")
	}

	correct := 0
	for _, o := range q.Options {
		if o.Correct {
			correct++
		}
	}
	switch q.Type {
	case model.QuestionSingleChoice:
		if correct != 1 {
			return invalid(where, "single_choice needs exactly one correct option")
		}
	case model.QuestionMultiChoice:
		if correct == 0 {
			return invalid(where, "multi_choice needs at least one correct option")
		}
	case model.QuestionEssay:
		if len(q.Options) > 0 {
			return invalid(where, "essay cannot have options")
		}
		if strings.TrimSpace(q.Reference) == "" {
			return invalid(where, "essay needs a reference answer")
		}
	}
	return nil
}

func invalid(where, msg string) error {
	return util.NewValidationError(where + ": " + msg)
}

// Apply 在一个事务中写入全部内容，任一失败整体回滚。
// 提交后清除写入 Section 的题目缓存，questionCache 可以为 nil
func Apply(ctx context.Context, db *gorm.DB, f *File, questionCache cache.QuestionCache) (Summary, error) {
	var (
		sum        Summary
		sectionIDs []uint
	)
	if err := f.Validate(); err != nil {
		return sum, err
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		content := repository.NewContentRepository(tx)
		courses := repository.NewCourseRepository(tx)

		for _, p := range f.Packages {
			pkg := model.Package{Title: p.Title, StartsAt: p.StartsAt.UTC(), EndsAt: p.EndsAt.UTC()}
			for i, s := range p.Sections {
				pkg.Sections = append(pkg.Sections, s.build(i+1))
				sum.Sections++
				sum.Questions += len(s.Questions)
			}
			if err := content.CreatePackage(ctx, &pkg); err != nil {
				return fmt.Errorf("create package %q: %w", p.Title, err)
			}
			for _, s := range pkg.Sections {
				sectionIDs = append(sectionIDs, s.ID)
			}
			sum.Packages++
		}

		for _, c := range f.Courses {
			course := model.Course{Title: c.Title}
			for _, t := range c.Topics {
				topic := model.Topic{Position: t.Position, Title: t.Title, VideoURL: t.VideoURL}
				if t.Drill != nil {
					// 练习 Section 不属于任何测试包
					drill := t.Drill.build(0)
					if err := content.CreateSection(ctx, &drill); err != nil {
						return fmt.Errorf("create drill for topic %q: %w", t.Title, err)
					}
					topic.DrillSectionID = &drill.ID
					sectionIDs = append(sectionIDs, drill.ID)
					sum.Sections++
					sum.Questions += len(t.Drill.Questions)
				}
				course.Topics = append(course.Topics, topic)
				sum.Topics++
			}
			if err := courses.CreateCourse(ctx, &course); err != nil {
				return fmt.Errorf("create course %q: %w", c.Title, err)
			}
			sum.Courses++
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	if questionCache != nil {
		for _, id := range sectionIDs {
			if err := questionCache.Invalidate(ctx, id); err != nil {
				logger.Log.Warn("清除题目缓存失败", zap.Uint("sectionId", id), zap.Error(err))
			}
		}
	}

	logger.Log.Info("Seed applied",
		zap.Int("packages", sum.Packages),
		zap.Int("sections", sum.Sections),
		zap.Int("questions", sum.Questions),
		zap.Int("courses", sum.Courses),
		zap.Int("topics", sum.Topics))
	return sum, nil
}

func (s SectionDoc) build(position int) model.Section {
	section := model.Section{
		Title:           s.Title,
		SectionType:     s.Type,
		DurationMinutes: s.DurationMinutes,
		Position:        position,
	}
	for i, q := range s.Questions {
		question := model.Question{
			Type:            q.Type,
			Prompt:          q.Prompt,
			Position:        i + 1,
			Weight:          q.Weight,
			ReferenceAnswer: q.Reference,
		}
		for j, o := range q.Options {
			question.Options = append(question.Options, model.Option{Label: o.Label, Position: j + 1, IsCorrect: o.Correct})
		}
		section.Questions = append(section.Questions, question)
	}
	return section
}
