package model

// All lists every table owned by the service, in migration order.
func All() []interface{} {
	return []interface{}{
		&Category{},
		&Course{},
		&Attachment{},
		&Registration{},
		&Module{},
		&UserProgress{},
		&Evaluation{},
		&Question{},
		&Answer{},
		&EvaluationResult{},
		&SelectedAnswer{},
		&Event{},
	}
}
