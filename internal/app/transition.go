package app

import "quiz-session-service/internal/domain"

// ValidateUpdate decides whether a host-issued update is legal for the
// session's current status. Updates without a status change are always
// allowed; the remaining fields are free-form.
func ValidateUpdate(session domain.Session, quiz domain.Quiz, upd domain.SessionUpdate) error {
	if upd.Status == nil {
		return nil
	}
	switch *upd.Status {
	case domain.StatusReady:
		// Ready is the creation state, never a transition target.
		return domain.ErrInvalidStatus
	case domain.StatusActive:
		if len(quiz.QuestionsOrder) == 0 {
			return domain.ErrNoQuestions
		}
		if session.Status == domain.StatusCanceled || session.Status == domain.StatusComplete {
			return domain.ErrInvalidStatus
		}
	case domain.StatusCanceled:
		if session.Status == domain.StatusComplete {
			return domain.ErrInvalidStatus
		}
	case domain.StatusComplete:
		if session.Status == domain.StatusCanceled || session.Status == domain.StatusReady {
			return domain.ErrInvalidStatus
		}
	default:
		return domain.ErrInvalidStatus
	}
	return nil
}

// ImpliedEvents computes the broadcasts an accepted update implies, in emit
// order. The rules are independent; one update can imply several events.
func ImpliedEvents(prev domain.Session, upd domain.SessionUpdate) []domain.Event {
	var events []domain.Event

	statusChanged := upd.Status != nil && prev.Status != *upd.Status

	prevIndex := int64(0)
	if prev.QuestionIndex != nil {
		prevIndex = *prev.QuestionIndex
	}
	indexChanged := upd.QuestionIndex != nil && prevIndex != *upd.QuestionIndex

	if upd.StartTime != nil {
		events = append(events, domain.QuizCountdownEvent(*upd.StartTime))
	}
	if statusChanged {
		switch *upd.Status {
		case domain.StatusActive:
			if upd.QuestionEndTime != nil {
				events = append(events, domain.QuizStartEvent(*upd.QuestionEndTime))
			}
		case domain.StatusComplete:
			events = append(events, domain.QuizEndEvent())
		case domain.StatusCanceled:
			events = append(events, domain.QuizCancelEvent())
		}
	}
	if indexChanged && upd.QuestionEndTime != nil {
		events = append(events, domain.QuestionStartEvent(*upd.QuestionIndex, *upd.QuestionEndTime))
	}
	// A deadline change with no advance extends or shortens the current question.
	if !statusChanged && !indexChanged && upd.QuestionEndTime != nil {
		events = append(events, domain.QuestionEndUpdateEvent(*upd.QuestionEndTime))
	}
	return events
}
