package service

import (
	"time"

	"coursehub_backend/internal/grading"
	"coursehub_backend/internal/model"
)

type AttemptState string

const (
	StateNotStarted      AttemptState = "not_started"
	StatePassedWithRoom  AttemptState = "passed_with_room"
	StatePassedMax       AttemptState = "passed_max"
	StateFailedRetryable AttemptState = "failed_retryable"
	StateFailedExhausted AttemptState = "failed_exhausted"
	StatePassedExhausted AttemptState = "passed_exhausted"
)

type Action string

const (
	ActionBegin       Action = "begin"
	ActionRetry       Action = "retry"
	ActionReturn      Action = "return"
	ActionAdvance     Action = "advance"
	ActionViewHistory Action = "view_history"
)

// AttemptSummary 完全由已保存的作答记录推导，不单独存储状态
type AttemptSummary struct {
	State        AttemptState `json:"state"`
	MaxAttempts  int          `json:"maxAttempts"`
	AttemptsUsed int          `json:"attemptsUsed"`
	AttemptsLeft int          `json:"attemptsLeft"`
	BestScore    int          `json:"bestScore"`
	LastScore    int          `json:"lastScore"`
	LastAttempt  *time.Time   `json:"lastAttempt,omitempty"`
	Passed       bool         `json:"passed"`
	Actions      []Action     `json:"actions"`
}

// DeriveAttemptState 根据用户在某测评上的作答记录推导状态和可执行操作
// hasNext 表示测评所在模块之后是否还有模块
func DeriveAttemptState(maxAttempts int, history []model.EvaluationResult, hasNext bool) AttemptSummary {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	summary := AttemptSummary{
		MaxAttempts:  maxAttempts,
		AttemptsUsed: len(history),
	}
	summary.AttemptsLeft = maxAttempts - summary.AttemptsUsed
	if summary.AttemptsLeft < 0 {
		summary.AttemptsLeft = 0
	}

	if len(history) == 0 {
		summary.State = StateNotStarted
		summary.Actions = []Action{ActionBegin}
		return summary
	}

	var last *model.EvaluationResult
	for i := range history {
		r := &history[i]
		if r.Score > summary.BestScore {
			summary.BestScore = r.Score
		}
		if last == nil || r.Attempt > last.Attempt {
			last = r
		}
	}
	summary.LastScore = last.Score
	completedAt := last.CompletedAt
	summary.LastAttempt = &completedAt
	summary.Passed = grading.Passed(summary.BestScore)

	exhausted := summary.AttemptsLeft == 0
	switch {
	case grading.MaxPassed(summary.BestScore):
		summary.State = StatePassedMax
	case summary.Passed && exhausted:
		summary.State = StatePassedExhausted
	case summary.Passed:
		summary.State = StatePassedWithRoom
	case exhausted:
		summary.State = StateFailedExhausted
	default:
		summary.State = StateFailedRetryable
	}

	actions := []Action{ActionReturn}
	switch summary.State {
	case StatePassedWithRoom, StateFailedRetryable:
		actions = append(actions, ActionRetry)
	case StatePassedMax, StatePassedExhausted:
		if hasNext {
			actions = append(actions, ActionAdvance)
		}
	}
	summary.Actions = append(actions, ActionViewHistory)
	return summary
}

// CanAttempt 是否还能再提交一次
func (s AttemptSummary) CanAttempt() bool {
	return s.AttemptsLeft > 0
}
