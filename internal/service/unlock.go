package service

import (
	"sort"

	"coursehub_backend/internal/model"
)

// ModuleState 模块及当前用户的完成状态
type ModuleState struct {
	Module      *model.Module
	IsCompleted bool
}

// IsUnlocked 判断模块能否打开，preceding 为按位置排在前面的模块，第一个模块为 nil
//
// 第一个模块对已报名用户开放；免费试看模块（IsEnabled）对所有人开放，只对自身生效；
// 其余模块需要已报名且前一个模块已完成
func IsUnlocked(module *model.Module, preceding *ModuleState, isEnrolled bool) bool {
	if module == nil {
		return false
	}
	if module.IsEnabled {
		return true
	}
	if preceding == nil {
		return isEnrolled
	}
	return isEnrolled && preceding.IsCompleted
}

// EvaluationUnlocked 模块可打开且已完成时测评入口可用
func EvaluationUnlocked(state ModuleState, moduleUnlocked bool) bool {
	return moduleUnlocked && state.IsCompleted
}

// OutlineEvaluation 大纲中模块的测评入口
type OutlineEvaluation struct {
	ID          string               `json:"id"`
	Type        model.EvaluationType `json:"type"`
	MaxAttempts int                  `json:"maxAttempts"`
	IsUnlocked  bool                 `json:"isUnlocked"`
}

// OutlineItem 课程大纲中的一个模块
type OutlineItem struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Position      int                `json:"position"`
	VideoDuration float64            `json:"videoDuration"`
	IsEnabled     bool               `json:"isEnabled"`
	IsCompleted   bool               `json:"isCompleted"`
	IsUnlocked    bool               `json:"isUnlocked"`
	Evaluation    *OutlineEvaluation `json:"evaluation,omitempty"`
}

// BuildOutline 按位置（相同时按 ID）遍历模块并计算解锁链，completion 为模块 ID 到完成状态的映射
// 大纲中只出现已发布的测评
func BuildOutline(modules []model.Module, completion map[string]bool, isEnrolled bool) []OutlineItem {
	ordered := make([]model.Module, len(modules))
	copy(ordered, modules)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Position != ordered[j].Position {
			return ordered[i].Position < ordered[j].Position
		}
		return ordered[i].ID < ordered[j].ID
	})

	items := make([]OutlineItem, 0, len(ordered))
	var preceding *ModuleState
	for i := range ordered {
		m := &ordered[i]
		state := ModuleState{Module: m, IsCompleted: completion[m.ID]}
		unlocked := IsUnlocked(m, preceding, isEnrolled)

		item := OutlineItem{
			ID:            m.ID,
			Title:         m.Title,
			Position:      m.Position,
			VideoDuration: m.VideoDuration,
			IsEnabled:     m.IsEnabled,
			IsCompleted:   state.IsCompleted,
			IsUnlocked:    unlocked,
		}
		if m.Evaluation != nil && m.Evaluation.IsPublished {
			item.Evaluation = &OutlineEvaluation{
				ID:          m.Evaluation.ID,
				Type:        m.Evaluation.Type,
				MaxAttempts: m.Evaluation.MaxAttempts,
				IsUnlocked:  EvaluationUnlocked(state, unlocked),
			}
		}
		items = append(items, item)
		preceding = &state
	}
	return items
}
