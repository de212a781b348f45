package service

import (
	"assessment_backend/internal/model"
	"sort"
)

type TopicState string

const (
	TopicLocked    TopicState = "locked"
	TopicUnlocked  TopicState = "unlocked"
	TopicVideoDone TopicState = "video_done"
	TopicDrillDone TopicState = "drill_done"
)

// TopicGate 单个主题的解锁视图
type TopicGate struct {
	TopicID         uint       `json:"topicId"`
	Position        int        `json:"position"`
	State           TopicState `json:"state"`
	HasDrill        bool       `json:"hasDrill"`
	DrillAccessible bool       `json:"drillAccessible"`
}

// ComputeGate 由进度记录推导每个主题的状态。
// 第一个主题总是解锁；之后的主题在前一个达到 drill_done 时解锁，
// 没有练习的主题看完视频即视为 drill_done。前一个未完成时忽略本主题自身的记录。
func ComputeGate(topics []model.Topic, progress map[uint]model.TopicProgress) []TopicGate {
	ordered := make([]model.Topic, len(topics))
	copy(ordered, topics)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	gates := make([]TopicGate, 0, len(ordered))
	prevDone := true
	for _, t := range ordered {
		state := TopicLocked
		if prevDone {
			state = ownState(t, progress[t.ID])
		}
		gates = append(gates, TopicGate{
			TopicID:         t.ID,
			Position:        t.Position,
			State:           state,
			HasDrill:        t.HasDrill(),
			DrillAccessible: t.HasDrill() && (state == TopicVideoDone || state == TopicDrillDone),
		})
		prevDone = state == TopicDrillDone
	}
	return gates
}

func ownState(t model.Topic, p model.TopicProgress) TopicState {
	switch {
	case p.VideoCompleted && (p.DrillCompleted || !t.HasDrill()):
		return TopicDrillDone
	case p.VideoCompleted:
		return TopicVideoDone
	default:
		return TopicUnlocked
	}
}

// GateFor 在视图中查找指定主题
func GateFor(gates []TopicGate, topicID uint) (TopicGate, bool) {
	for _, g := range gates {
		if g.TopicID == topicID {
			return g, true
		}
	}
	return TopicGate{}, false
}
