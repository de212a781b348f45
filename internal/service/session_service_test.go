package service

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/repository"
	"assessment_backend/internal/testutil"
	"assessment_backend/internal/util"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const learnerID uint = 42

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	clock    *testutil.FakeClock
	sessions *SessionService
	answers  *AnswerService
	content  *testutil.SectionFixture
}

// newFixture 测试包窗口为 [t0-1h, t0+packageOpen)
func newFixture(t *testing.T, durationMinutes int, packageOpen time.Duration, questions ...model.Question) *fixture {
	t.Helper()

	db := testutil.NewTestDB(t)
	clock := testutil.NewFakeClock(t0)
	sessions := NewSessionService(
		db,
		repository.NewContentRepository(db),
		repository.NewSessionRepository(db),
		repository.NewResponseRepository(db),
		NewScorer(),
		clock,
	)
	return &fixture{
		db:       db,
		clock:    clock,
		sessions: sessions,
		answers:  NewAnswerService(sessions),
		content:  testutil.CreateSection(t, db, t0.Add(-time.Hour), t0.Add(packageOpen), durationMinutes, questions...),
	}
}

func (f *fixture) start(t *testing.T) *model.Session {
	t.Helper()
	sess, err := f.sessions.CreateOrGetSession(context.Background(), learnerID, f.content.Section.ID, 0)
	require.NoError(t, err)
	return sess
}

func (f *fixture) choose(t *testing.T, sess *model.Session, questionIdx int, labels ...string) {
	t.Helper()
	ids := make([]uint, 0, len(labels))
	for _, l := range labels {
		ids = append(ids, f.content.Option(questionIdx, l).ID)
	}
	_, err := f.answers.Save(context.Background(), learnerID, sess.ID, f.content.Questions[questionIdx].ID,
		model.AnswerPayload{Kind: model.PayloadChoice, OptionIDs: ids})
	require.NoError(t, err)
}

func (f *fixture) countSessions(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Session{}).Count(&n).Error)
	return n
}

func TestCreateOrGetSessionIdempotent(t *testing.T) {
	f := newFixture(t, 60, 24*time.Hour, testutil.SingleChoice(10, "A", "A", "B"))
	ctx := context.Background()

	first, err := f.sessions.CreateOrGetSession(ctx, learnerID, f.content.Section.ID, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, model.SessionCreated, first.Status)
	assert.WithinDuration(t, t0, first.StartTime, 0)
	assert.Nil(t, first.EndTime)
	assert.Equal(t, f.content.Package.ID, first.PackageID)

	f.clock.Advance(5 * time.Minute)
	second, err := f.sessions.CreateOrGetSession(ctx, learnerID, f.content.Section.ID, 30)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.WithinDuration(t, first.StartTime, second.StartTime, 0)
	assert.Equal(t, 60, second.DurationMinutes)
	assert.Equal(t, int64(1), f.countSessions(t))

	other, err := f.sessions.CreateOrGetSession(ctx, learnerID+1, f.content.Section.ID, 0)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestCreateOrGetSessionDuration(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{requested: 0, want: 60},
		{requested: -5, want: 60},
		{requested: 30, want: 30},
		{requested: 60, want: 60},
		{requested: 90, want: 60},
	}
	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			f := newFixture(t, 60, 24*time.Hour)
			sess, err := f.sessions.CreateOrGetSession(context.Background(), learnerID, f.content.Section.ID, tt.requested)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sess.DurationMinutes)
		})
	}
}

func TestCreateOrGetSessionPackageWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("before start", func(t *testing.T) {
		f := newFixture(t, 60, time.Hour)
		f.clock.Set(t0.Add(-2 * time.Hour))
		_, err := f.sessions.CreateOrGetSession(ctx, learnerID, f.content.Section.ID, 0)
		assert.ErrorIs(t, err, util.ErrPackageNotOpen)
		assert.ErrorIs(t, err, util.ErrValidation)
	})

	t.Run("at end", func(t *testing.T) {
		f := newFixture(t, 60, time.Hour)
		f.clock.Set(t0.Add(time.Hour))
		_, err := f.sessions.CreateOrGetSession(ctx, learnerID, f.content.Section.ID, 0)
		assert.ErrorIs(t, err, util.ErrPackageClosed)
	})

	t.Run("existing session returned after end", func(t *testing.T) {
		f := newFixture(t, 60, time.Hour)
		sess := f.start(t)
		f.clock.Set(t0.Add(2 * time.Hour))
		again, err := f.sessions.CreateOrGetSession(ctx, learnerID, f.content.Section.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, sess.ID, again.ID)
	})

	t.Run("unknown section", func(t *testing.T) {
		f := newFixture(t, 60, time.Hour)
		_, err := f.sessions.CreateOrGetSession(ctx, learnerID, 9999, 0)
		assert.ErrorIs(t, err, util.ErrSectionNotFound)
		assert.ErrorIs(t, err, util.ErrNotFound)
	})
}

func TestCreateOrGetSessionConcurrent(t *testing.T) {
	f := newFixture(t, 60, 24*time.Hour)

	const workers = 10
	ids := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := f.sessions.CreateOrGetSession(context.Background(), learnerID, f.content.Section.ID, 0)
			errs[i] = err
			if err == nil {
				ids[i] = sess.ID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, int64(1), f.countSessions(t))
}

func TestSubmitScoresSection(t *testing.T) {
	f := newFixture(t, 60, 24*time.Hour,
		testutil.SingleChoice(10, "A", "A", "B", "C"),
		testutil.SingleChoice(10, "B", "A", "B", "C"),
		testutil.SingleChoice(10, "C", "A", "B", "C"),
	)
	ctx := context.Background()
	sess := f.start(t)

	f.choose(t, sess, 0, "A")
	f.choose(t, sess, 1, "C")
	f.clock.Advance(10 * time.Minute)

	closed, err := f.sessions.Submit(ctx, learnerID, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.EndTime)
	assert.Equal(t, model.SessionClosed, closed.Status)
	assert.Equal(t, model.CloseSubmitted, closed.CloseReason)
	assert.WithinDuration(t, t0.Add(10*time.Minute), *closed.EndTime, 0)
	assert.Equal(t, 10, *closed.Score)
	assert.Equal(t, 1, *closed.NumCorrect)

	// 重复提交结果不变
	f.clock.Advance(10 * time.Minute)
	again, err := f.sessions.Submit(ctx, learnerID, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, *closed.Score, *again.Score)
	assert.Equal(t, *closed.NumCorrect, *again.NumCorrect)
	assert.WithinDuration(t, *closed.EndTime, *again.EndTime, 0)

	details, err := f.sessions.GetDetails(ctx, learnerID, sess.ID)
	require.NoError(t, err)
	require.Len(t, details.Responses, 2)
	correct := map[uint]bool{}
	for _, r := range details.Responses {
		require.NotNil(t, r.IsCorrect)
		correct[r.QuestionID] = *r.IsCorrect
	}
	assert.Equal(t, map[uint]bool{
		f.content.Questions[0].ID: true,
		f.content.Questions[1].ID: false,
	}, correct)
	assert.Zero(t, details.RemainingSeconds)
}

func TestSubmitAfterPackageEnd(t *testing.T) {
	// startTime + duration 晚于 package 结束时间
	f := newFixture(t, 60, 30*time.Minute, testutil.Essay(5, "Paris"))
	ctx := context.Background()
	sess := f.start(t)

	details, err := f.sessions.GetDetails(ctx, learnerID, sess.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, t0.Add(30*time.Minute), details.Deadline, 0)
	assert.Equal(t, int64(30*60), details.RemainingSeconds)

	_, err = f.answers.Save(ctx, learnerID, sess.ID, f.content.Questions[0].ID,
		model.AnswerPayload{Kind: model.PayloadEssay, Text: " paris "})
	require.NoError(t, err)

	f.clock.Advance(45 * time.Minute)
	closed, err := f.sessions.Submit(ctx, learnerID, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.EndTime)
	assert.Equal(t, model.CloseExpired, closed.CloseReason)
	assert.WithinDuration(t, f.content.Package.EndsAt, *closed.EndTime, 0)
	assert.False(t, closed.EndTime.Before(closed.StartTime))
	assert.Equal(t, 5, *closed.Score)
}

func TestGetDetailsImplicitSubmit(t *testing.T) {
	f := newFixture(t, 20, 24*time.Hour, testutil.SingleChoice(10, "A", "A", "B"))
	ctx := context.Background()
	sess := f.start(t)
	f.choose(t, sess, 0, "A")

	f.clock.Advance(5 * time.Minute)
	open, err := f.sessions.GetDetails(ctx, learnerID, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, open.Session.EndTime)
	assert.Equal(t, model.SessionInProgress, open.Session.Status)
	assert.Equal(t, int64(15*60), open.RemainingSeconds)

	f.clock.Advance(time.Hour)
	expired, err := f.sessions.GetDetails(ctx, learnerID, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, expired.Session.EndTime)
	assert.Equal(t, model.CloseExpired, expired.Session.CloseReason)
	assert.WithinDuration(t, t0.Add(20*time.Minute), *expired.Session.EndTime, 0)
	assert.Equal(t, 10, *expired.Session.Score)

	stored, err := f.sessions.SessionRepo.FindByID(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EndTime)
	assert.Equal(t, 10, *stored.Score)
}

func TestSessionOwnership(t *testing.T) {
	f := newFixture(t, 60, 24*time.Hour, testutil.SingleChoice(10, "A", "A", "B"))
	ctx := context.Background()
	sess := f.start(t)
	intruder := learnerID + 1

	_, err := f.sessions.GetDetails(ctx, intruder, sess.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = f.sessions.Submit(ctx, intruder, sess.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = f.answers.Save(ctx, intruder, sess.ID, f.content.Questions[0].ID,
		model.AnswerPayload{Kind: model.PayloadChoice})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, err = f.sessions.GetDetails(ctx, learnerID, "missing")
	assert.ErrorIs(t, err, util.ErrSessionNotFound)
}

func TestReview(t *testing.T) {
	f := newFixture(t, 60, 24*time.Hour, testutil.SingleChoice(10, "A", "A", "B"))
	ctx := context.Background()
	sess := f.start(t)
	f.choose(t, sess, 0, "B")

	_, err := f.sessions.Review(ctx, learnerID, sess.ID)
	assert.ErrorIs(t, err, util.ErrSessionStillOpen)
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = f.sessions.Submit(ctx, learnerID, sess.ID)
	require.NoError(t, err)

	review, err := f.sessions.Review(ctx, learnerID, sess.ID)
	require.NoError(t, err)
	require.Len(t, review.Questions, 1)
	assert.Equal(t, []uint{f.content.Option(0, "A").ID}, review.Questions[0].CorrectOptionIDs())
	require.Len(t, review.Responses, 1)
	assert.False(t, *review.Responses[0].IsCorrect)
	assert.Equal(t, 0, *review.Session.Score)
}

func TestDrillSectionSession(t *testing.T) {
	f := newFixture(t, 60, time.Hour)
	ctx := context.Background()

	_, topics := testutil.CreateCourse(t, f.db, true)
	drillID := *topics[0].DrillSectionID
	q := testutil.SingleChoice(5, "A", "A", "B")
	q.SectionID = drillID
	require.NoError(t, f.db.Create(&q).Error)

	views, err := NewQuestionService(f.sessions.ContentRepo, nil).GetQuestions(ctx, drillID)
	require.NoError(t, err)
	require.Len(t, views, 1)

	// 练习不受测试包窗口限制
	f.clock.Set(t0.Add(2 * time.Hour))
	start := f.clock.Now()
	sess, err := f.sessions.CreateOrGetSession(ctx, learnerID, drillID, 0)
	require.NoError(t, err)
	assert.Equal(t, uint(0), sess.PackageID)
	assert.Equal(t, 10, sess.DurationMinutes)

	_, err = f.answers.Save(ctx, learnerID, sess.ID, q.ID,
		model.AnswerPayload{Kind: model.PayloadChoice, OptionIDs: []uint{q.Options[0].ID}})
	require.NoError(t, err)

	details, err := f.sessions.GetDetails(ctx, learnerID, sess.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, start.Add(10*time.Minute), details.Deadline, 0)

	f.clock.Advance(3 * time.Minute)
	closed, err := f.sessions.Submit(ctx, learnerID, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CloseSubmitted, closed.CloseReason)
	assert.Equal(t, 5, *closed.Score)
	assert.Equal(t, 1, *closed.NumCorrect)

	// 另一学员超时后读取，按时长截止
	other, err := f.sessions.CreateOrGetSession(ctx, learnerID+1, drillID, 0)
	require.NoError(t, err)
	f.clock.Advance(time.Hour)
	expired, err := f.sessions.GetDetails(ctx, learnerID+1, other.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CloseExpired, expired.Session.CloseReason)
	assert.WithinDuration(t, other.StartTime.Add(10*time.Minute), *expired.Session.EndTime, 0)
}

// insertRivalOnCreate 在本次插入 Session 之前，用同一事务写入同一 (learner, section) 的另一行，
// 让存在性检查之后的插入落在唯一索引冲突上
func insertRivalOnCreate(t *testing.T, db *gorm.DB, rival *model.Session) {
	t.Helper()
	var fired bool
	err := db.Callback().Create().Before("gorm:create").Register("test:rival_session", func(tx *gorm.DB) {
		if fired {
			return
		}
		if _, ok := tx.Statement.Dest.(*model.Session); !ok {
			return
		}
		fired = true
		if err := tx.Session(&gorm.Session{NewDB: true}).Create(rival).Error; err != nil {
			tx.AddError(err)
		}
	})
	require.NoError(t, err)
}

func TestCreateOrGetSessionLosesInsertRace(t *testing.T) {
	f := newFixture(t, 60, 24*time.Hour)
	rival := &model.Session{
		LearnerID:       learnerID,
		SectionID:       f.content.Section.ID,
		PackageID:       f.content.Package.ID,
		Status:          model.SessionCreated,
		StartTime:       t0.Add(-time.Minute),
		DurationMinutes: 45,
	}
	insertRivalOnCreate(t, f.db, rival)

	sess, err := f.sessions.CreateOrGetSession(context.Background(), learnerID, f.content.Section.ID, 0)
	require.NoError(t, err)
	require.NotEmpty(t, rival.ID)
	assert.Equal(t, rival.ID, sess.ID)
	assert.Equal(t, 45, sess.DurationMinutes)
	assert.Equal(t, int64(1), f.countSessions(t))
}
