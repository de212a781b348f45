package repository

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/util"
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

func (r *CourseRepository) FindCourse(ctx context.Context, id uint) (*model.Course, error) {
	var c model.Course
	err := r.DB.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) FindTopic(ctx context.Context, id uint) (*model.Topic, error) {
	var t model.Topic
	err := r.DB.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTopicNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindTopics 按 position 升序返回课程下的主题
func (r *CourseRepository) FindTopics(ctx context.Context, courseID uint) ([]model.Topic, error) {
	var topics []model.Topic
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&topics).Error
	return topics, err
}

// FindProgress 返回学员在这些主题上的进度，按 topic_id 索引
func (r *CourseRepository) FindProgress(ctx context.Context, learnerID uint, topicIDs []uint) (map[uint]model.TopicProgress, error) {
	result := make(map[uint]model.TopicProgress, len(topicIDs))
	if len(topicIDs) == 0 {
		return result, nil
	}

	var rows []model.TopicProgress
	err := r.DB.WithContext(ctx).
		Where("learner_id = ? AND topic_id IN ?", learnerID, topicIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		result[p.TopicID] = p
	}
	return result, nil
}

// UpsertProgress 首次交互时创建记录，之后只更新 columns 指定的字段
func (r *CourseRepository) UpsertProgress(ctx context.Context, p *model.TopicProgress, columns ...string) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "learner_id"}, {Name: "topic_id"}},
		DoUpdates: clause.AssignmentColumns(append(columns, "updated_at")),
	}).Create(p).Error
}

// CreateCourse 同时写入课程下的 Topics
func (r *CourseRepository) CreateCourse(ctx context.Context, c *model.Course) error {
	return r.DB.WithContext(ctx).Create(c).Error
}
