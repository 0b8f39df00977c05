package grading

import "strings"

type singleChoice struct{}

func (singleChoice) Grade(q Question, r Response, answered bool) Outcome {
	chosen := r.First()
	if !answered || chosen == "" {
		return Outcome{Selections: []Selection{{QuestionID: q.ID}}}
	}
	for _, a := range q.Answers {
		if a.ID == chosen {
			return Outcome{
				Correct:    a.IsCorrect,
				Selections: []Selection{{QuestionID: q.ID, Title: a.Title, IsCorrect: a.IsCorrect}},
			}
		}
	}
	// id not on this question
	return Outcome{Selections: []Selection{{QuestionID: q.ID}}}
}

// multipleChoice gives no partial credit: the selection must equal the correct set.
type multipleChoice struct{}

func (multipleChoice) Grade(q Question, r Response, answered bool) Outcome {
	byID := make(map[string]Answer, len(q.Answers))
	correct := make(map[string]struct{})
	for _, a := range q.Answers {
		byID[a.ID] = a
		if a.IsCorrect {
			correct[a.ID] = struct{}{}
		}
	}

	selected := make(map[string]struct{}, len(r.Values))
	var out Outcome
	for _, id := range r.Values {
		if _, dup := selected[id]; dup {
			continue
		}
		selected[id] = struct{}{}
		a, ok := byID[id]
		if !ok {
			out.Selections = append(out.Selections, Selection{QuestionID: q.ID})
			continue
		}
		out.Selections = append(out.Selections, Selection{QuestionID: q.ID, Title: a.Title, IsCorrect: a.IsCorrect})
	}

	if !answered || len(selected) != len(correct) {
		return out
	}
	for id := range selected {
		if _, ok := correct[id]; !ok {
			return out
		}
	}
	out.Correct = true
	return out
}

type openText struct{}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (openText) Grade(q Question, r Response, answered bool) Outcome {
	given := normalize(r.First())
	sel := Selection{QuestionID: q.ID, Title: given}
	if !answered || given == "" {
		return Outcome{Selections: []Selection{sel}}
	}
	for _, a := range q.Answers {
		if a.IsCorrect && normalize(a.Title) == given {
			sel.IsCorrect = true
			return Outcome{Correct: true, Selections: []Selection{sel}}
		}
	}
	return Outcome{Selections: []Selection{sel}}
}
