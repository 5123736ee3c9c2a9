package domain

// EventType tags a server-to-client websocket message.
type EventType string

const (
	EventReady             EventType = "Ready"
	EventJoined            EventType = "Joined"
	EventQuizCountdown     EventType = "QuizCountdown"
	EventQuizStart         EventType = "QuizStart"
	EventQuestionStart     EventType = "QuestionStart"
	EventQuestionEndUpdate EventType = "QuestionEndUpdate"
	EventQuizResponse      EventType = "QuizResponse"
	EventQuizEnd           EventType = "QuizEnd"
	EventQuizCancel        EventType = "QuizCancel"
)

// ReceiverHost and ReceiverParticipant are the payloads of a Ready notice.
const (
	ReceiverHost        = "Host"
	ReceiverParticipant = "Participant"
)

// Event is one tagged server-to-client message. The message set is closed;
// use the constructors below rather than building literals. Value carries the
// single-payload variants (counts, countdown target, ready role); question
// events use the two explicit fields.
type Event struct {
	Type            EventType `json:"type"`
	Value           any       `json:"value,omitempty"`
	QuestionIndex   *int64    `json:"question_index,omitempty"`
	QuestionEndTime *int64    `json:"question_end_time,omitempty"`
}

// HostOnly reports whether the event must be withheld from participant connections.
func (e Event) HostOnly() bool {
	return e.Type == EventJoined || e.Type == EventQuizResponse
}

func ReadyEvent(receiver string) Event {
	return Event{Type: EventReady, Value: receiver}
}

func JoinedEvent(count int64) Event {
	return Event{Type: EventJoined, Value: count}
}

func QuizCountdownEvent(startTime int64) Event {
	return Event{Type: EventQuizCountdown, Value: startTime}
}

// QuizStartEvent announces the transition to Active; the first question is
// always index 0.
func QuizStartEvent(questionEndTime int64) Event {
	idx := int64(0)
	return Event{Type: EventQuizStart, QuestionIndex: &idx, QuestionEndTime: &questionEndTime}
}

func QuestionStartEvent(questionIndex, questionEndTime int64) Event {
	return Event{Type: EventQuestionStart, QuestionIndex: &questionIndex, QuestionEndTime: &questionEndTime}
}

func QuestionEndUpdateEvent(questionEndTime int64) Event {
	return Event{Type: EventQuestionEndUpdate, QuestionEndTime: &questionEndTime}
}

func QuizResponseEvent(count int64) Event {
	return Event{Type: EventQuizResponse, Value: count}
}

func QuizEndEvent() Event {
	return Event{Type: EventQuizEnd, Value: int64(0)}
}

func QuizCancelEvent() Event {
	return Event{Type: EventQuizCancel, Value: int64(0)}
}
