package model

import "time"

type EvaluationType string

const (
	EvaluationSingle   EvaluationType = "single"
	EvaluationMultiple EvaluationType = "multiple"
	EvaluationOpen     EvaluationType = "open"
	EvaluationSequence EvaluationType = "sequence"
	EvaluationLocate   EvaluationType = "locate"
)

// Valid reports whether t belongs to the closed set of evaluation types.
func (t EvaluationType) Valid() bool {
	switch t {
	case EvaluationSingle, EvaluationMultiple, EvaluationOpen, EvaluationSequence, EvaluationLocate:
		return true
	}
	return false
}

// swagger:model Evaluation
type Evaluation struct {
	UUIDBase
	ModuleID    string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"moduleId"`
	Type        EvaluationType `gorm:"size:20;not null" json:"type"`
	MaxAttempts int            `gorm:"default:1;not null" json:"maxAttempts"`
	IsPublished bool           `gorm:"default:false" json:"isPublished"`
	Questions   []Question     `gorm:"foreignKey:EvaluationID" json:"questions,omitempty"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}

// swagger:model Question
type Question struct {
	UUIDBase
	Title        string   `gorm:"type:text;not null" json:"title"`
	Position     int      `gorm:"default:0" json:"position"`
	EvaluationID string   `gorm:"type:varchar(36);index;not null" json:"evaluationId"`
	Answers      []Answer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// Answer is one option of a question. For open questions a correct answer is an accepted
// literal; for sequence questions every answer is marked correct and Order carries the
// required position.
// swagger:model Answer
type Answer struct {
	UUIDBase
	Title      string `gorm:"type:text;not null" json:"title"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	Order      int    `gorm:"default:0" json:"order"`
	QuestionID string `gorm:"type:varchar(36);index;not null" json:"questionId"`
}

func (Answer) TableName() string {
	return "answers"
}

// EvaluationResult is one graded attempt. Rows are append-only; Attempt is 1-based and
// contiguous per (UserID, EvaluationID).
// swagger:model EvaluationResult
type EvaluationResult struct {
	UUIDBase
	UserID          string           `gorm:"size:64;uniqueIndex:idx_result_user_eval_attempt;not null" json:"userId"`
	EvaluationID    string           `gorm:"type:varchar(36);uniqueIndex:idx_result_user_eval_attempt;not null" json:"evaluationId"`
	Attempt         int              `gorm:"uniqueIndex:idx_result_user_eval_attempt;not null" json:"attempt"`
	Score           int              `gorm:"not null" json:"score"`
	CompletedAt     time.Time        `gorm:"not null" json:"completedAt"`
	SelectedAnswers []SelectedAnswer `gorm:"foreignKey:EvaluationResultID" json:"selectedAnswers,omitempty"`
}

func (EvaluationResult) TableName() string {
	return "evaluation_results"
}

// SelectedAnswer records what was chosen or typed for a question at grading time.
// swagger:model SelectedAnswer
type SelectedAnswer struct {
	UUIDBase
	EvaluationResultID string `gorm:"type:varchar(36);index;not null" json:"evaluationResultId"`
	QuestionID         string `gorm:"type:varchar(36);index;not null" json:"questionId"`
	Title              string `gorm:"type:text" json:"title"`
	IsCorrect          bool   `json:"isCorrect"`
}

func (SelectedAnswer) TableName() string {
	return "selected_answers"
}
