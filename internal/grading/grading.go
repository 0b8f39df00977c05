// Package grading scores evaluation submissions. It knows nothing about storage: callers
// hand it a question/answer key and the learner's responses and get back a score plus a
// per-question record of what was chosen and whether it was right.
package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"go.uber.org/zap"
)

const (
	PassingScore = 80
	MaxScore     = 100
)

// Passed reports whether score clears the fixed passing threshold.
func Passed(score int) bool { return score >= PassingScore }

// MaxPassed reports whether score is the ceiling; no further retries are offered.
func MaxPassed(score int) bool { return score >= MaxScore }

type Type string

const (
	Single   Type = "single"
	Multiple Type = "multiple"
	Open     Type = "open"
	Sequence Type = "sequence"
	Locate   Type = "locate"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case Single, Multiple, Open, Sequence, Locate:
		return t, nil
	}
	return "", fmt.Errorf("unknown evaluation type %q", s)
}

type Answer struct {
	ID        string
	Title     string
	IsCorrect bool
	Order     int
}

type Question struct {
	ID      string
	Title   string
	Answers []Answer
}

// Response is a learner's answer to one question. Single choice and open text carry one
// value; multiple choice carries the selected answer ids.
type Response struct {
	Values []string
}

func Choice(id string) Response      { return Response{Values: []string{id}} }
func Choices(ids ...string) Response { return Response{Values: ids} }
func Text(text string) Response      { return Response{Values: []string{text}} }

// First returns the single value of the response, or "" when nothing was given.
func (r Response) First() string {
	if len(r.Values) == 0 {
		return ""
	}
	return r.Values[0]
}

// UnmarshalJSON accepts either a string or an array of strings.
func (r *Response) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		r.Values = nil
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("response must be a string or an array of strings: %w", err)
		}
		r.Values = values
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("response must be a string or an array of strings: %w", err)
	}
	r.Values = []string{value}
	return nil
}

func (r Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Values)
}

// Selection is what a learner picked or typed for a question, judged at grading time.
type Selection struct {
	QuestionID string `json:"questionId"`
	Title      string `json:"title"`
	IsCorrect  bool   `json:"isCorrect"`
}

// Outcome is the grade for one question.
type Outcome struct {
	Correct    bool
	Selections []Selection
}

// Grader grades one question of a given evaluation type.
type Grader interface {
	Grade(q Question, r Response, answered bool) Outcome
}

// Result is the aggregate grade of a submission.
type Result struct {
	Score      int         `json:"score"`
	Correct    int         `json:"correct"`
	Total      int         `json:"total"`
	Gradable   bool        `json:"gradable"`
	Selections []Selection `json:"selections"`
}

// Scorer routes each evaluation type to its Grader.
type Scorer struct {
	graders map[Type]Grader
	log     *zap.Logger
}

// NewScorer installs the built-in graders. sequence and locate are recognised types with
// no grader yet.
func NewScorer(log *zap.Logger) *Scorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scorer{
		graders: map[Type]Grader{
			Single:   singleChoice{},
			Multiple: multipleChoice{},
			Open:     openText{},
		},
		log: log,
	}
}

// Register adds or replaces the grader for t.
func (s *Scorer) Register(t Type, g Grader) {
	s.graders[t] = g
}

// CanGrade reports whether submissions of type t produce a meaningful score.
func (s *Scorer) CanGrade(t Type) bool {
	_, ok := s.graders[t]
	return ok
}

// Score grades every question and aggregates round(100*correct/total). An evaluation
// type without a grader scores zero for every question.
func (s *Scorer) Score(t Type, questions []Question, responses map[string]Response) Result {
	res := Result{Total: len(questions), Selections: []Selection{}}

	grader, ok := s.graders[t]
	if !ok {
		s.log.Warn("evaluation type has no grading rule, scoring as zero",
			zap.String("type", string(t)),
			zap.Int("questions", len(questions)),
		)
		return res
	}
	res.Gradable = true

	for _, q := range questions {
		r, answered := responses[q.ID]
		out := grader.Grade(q, r, answered)
		if out.Correct {
			res.Correct++
		}
		res.Selections = append(res.Selections, out.Selections...)
	}

	res.Score = Percent(res.Correct, res.Total)
	return res
}

// Percent returns round(100*part/whole), or 0 when whole is 0.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
