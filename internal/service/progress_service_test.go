package service

import (
	"assessment_backend/internal/model"
	"assessment_backend/internal/repository"
	"assessment_backend/internal/testutil"
	"assessment_backend/internal/util"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProgressService(t *testing.T, hasDrill ...bool) (*ProgressService, model.Course, []model.Topic) {
	t.Helper()
	db := testutil.NewTestDB(t)
	course, topics := testutil.CreateCourse(t, db, hasDrill...)
	return NewProgressService(db, repository.NewCourseRepository(db), testutil.NewFakeClock(t0)), course, topics
}

func stateOf(t *testing.T, gates []TopicGate, topic model.Topic) TopicState {
	t.Helper()
	g, ok := GateFor(gates, topic.ID)
	require.True(t, ok)
	return g.State
}

func TestTopicWithoutDrillUnlocksOnVideo(t *testing.T) {
	svc, course, topics := newProgressService(t, false, false, true)
	ctx := context.Background()

	gates, err := svc.MarkVideoDone(ctx, learnerID, topics[0].ID)
	require.NoError(t, err)
	assert.Equal(t, TopicUnlocked, stateOf(t, gates, topics[1]))

	gates, err = svc.MarkVideoDone(ctx, learnerID, topics[1].ID)
	require.NoError(t, err)
	assert.Equal(t, TopicDrillDone, stateOf(t, gates, topics[1]))
	assert.Equal(t, TopicUnlocked, stateOf(t, gates, topics[2]))

	_, err = svc.MarkDrillDone(ctx, learnerID, topics[1].ID)
	assert.ErrorIs(t, err, util.ErrTopicHasNoDrill)

	view, err := svc.GetCourseProgress(ctx, learnerID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, gates, view)
}

func TestTopicWithDrillNeedsDrill(t *testing.T) {
	svc, course, topics := newProgressService(t, false, true, false)
	ctx := context.Background()

	_, err := svc.MarkVideoDone(ctx, learnerID, topics[0].ID)
	require.NoError(t, err)

	gates, err := svc.MarkVideoDone(ctx, learnerID, topics[1].ID)
	require.NoError(t, err)
	assert.Equal(t, TopicVideoDone, stateOf(t, gates, topics[1]))
	assert.Equal(t, TopicLocked, stateOf(t, gates, topics[2]))
	g, _ := GateFor(gates, topics[1].ID)
	assert.True(t, g.DrillAccessible)

	gates, err = svc.MarkDrillDone(ctx, learnerID, topics[1].ID)
	require.NoError(t, err)
	assert.Equal(t, TopicDrillDone, stateOf(t, gates, topics[1]))
	assert.Equal(t, TopicUnlocked, stateOf(t, gates, topics[2]))

	// 只读查询同样重新计算
	view, err := svc.GetCourseProgress(ctx, learnerID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, TopicUnlocked, stateOf(t, view, topics[2]))

	// 其他学员的进度互不影响
	other, err := svc.GetCourseProgress(ctx, learnerID+1, course.ID)
	require.NoError(t, err)
	assert.Equal(t, TopicLocked, stateOf(t, other, topics[1]))
}

func TestMarkTransitionsRejected(t *testing.T) {
	svc, _, topics := newProgressService(t, true, true)
	ctx := context.Background()

	_, err := svc.MarkVideoDone(ctx, learnerID, topics[1].ID)
	assert.ErrorIs(t, err, util.ErrTopicLocked)

	_, err = svc.MarkDrillDone(ctx, learnerID, topics[0].ID)
	assert.ErrorIs(t, err, util.ErrVideoNotCompleted)

	_, err = svc.MarkDrillDone(ctx, learnerID, topics[1].ID)
	assert.ErrorIs(t, err, util.ErrTopicLocked)

	_, err = svc.MarkVideoDone(ctx, learnerID, 9999)
	assert.ErrorIs(t, err, util.ErrTopicNotFound)

	_, err = svc.GetCourseProgress(ctx, learnerID, 9999)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestMarkIsIdempotent(t *testing.T) {
	svc, _, topics := newProgressService(t, true)
	ctx := context.Background()

	_, err := svc.MarkVideoDone(ctx, learnerID, topics[0].ID)
	require.NoError(t, err)
	_, err = svc.MarkDrillDone(ctx, learnerID, topics[0].ID)
	require.NoError(t, err)

	gates, err := svc.MarkVideoDone(ctx, learnerID, topics[0].ID)
	require.NoError(t, err)
	assert.Equal(t, TopicDrillDone, stateOf(t, gates, topics[0]))

	gates, err = svc.MarkDrillDone(ctx, learnerID, topics[0].ID)
	require.NoError(t, err)
	assert.Equal(t, TopicDrillDone, stateOf(t, gates, topics[0]))

	var rows []model.TopicProgress
	require.NoError(t, svc.DB.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].VideoCompleted)
	assert.True(t, rows[0].DrillCompleted)
	assert.NotNil(t, rows[0].VideoCompletedAt)
	assert.NotNil(t, rows[0].DrillCompletedAt)
}
