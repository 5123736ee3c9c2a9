package domain

import "time"

// SessionStatus is the lifecycle state of a live quiz session.
type SessionStatus string

const (
	StatusReady    SessionStatus = "Ready"
	StatusActive   SessionStatus = "Active"
	StatusComplete SessionStatus = "Complete"
	StatusCanceled SessionStatus = "Canceled"
)

// DefaultQuestionDuration is the per-question answer window applied at
// session creation, in milliseconds.
const DefaultQuestionDuration int64 = 30 * 1000

// Session is one live run of a quiz, driven by its host.
// Times are epoch milliseconds; optional fields are nil until the host sets them.
type Session struct {
	ID               string        `json:"id"`
	QuizID           string        `json:"quizId"`
	HostID           string        `json:"hostId"`
	Code             string        `json:"code"`
	HostName         string        `json:"hostName"`
	HostAvatar       string        `json:"hostAvatar"`
	Status           SessionStatus `json:"status"`
	StartTime        *int64        `json:"startTime,omitempty"`
	EndTime          *int64        `json:"endTime,omitempty"`
	QuestionIndex    *int64        `json:"questionIndex,omitempty"`
	QuestionEndTime  *int64        `json:"questionEndTime,omitempty"`
	QuestionDuration int64         `json:"questionDuration"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// Terminal reports whether no further participant activity is allowed.
func (s SessionStatus) Terminal() bool {
	return s == StatusComplete || s == StatusCanceled
}

// SessionUpdate carries the partial fields of a host-issued session update.
// Nil means "leave unchanged".
type SessionUpdate struct {
	Code             *string        `json:"code,omitempty"`
	HostName         *string        `json:"hostName,omitempty"`
	HostAvatar       *string        `json:"hostAvatar,omitempty"`
	Status           *SessionStatus `json:"status,omitempty"`
	StartTime        *int64         `json:"startTime,omitempty"`
	EndTime          *int64         `json:"endTime,omitempty"`
	QuestionIndex    *int64         `json:"questionIndex,omitempty"`
	QuestionEndTime  *int64         `json:"questionEndTime,omitempty"`
	QuestionDuration *int64         `json:"questionDuration,omitempty"`
}

// Participant is a joined attendee, possibly anonymous.
type Participant struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	UserID    *string   `json:"userId,omitempty"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}

// Response records one answer submission. Append-only.
type Response struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participantId"`
	QuestionID    string    `json:"questionId"`
	AnswerID      string    `json:"answerId"`
	IsCorrect     bool      `json:"isCorrect"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Answer is one choice of a question; correctness and point value are authored.
type Answer struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
	Points    int    `json:"points"`
}

// Question is an authored question with its answer choices.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Answers []Answer `json:"answers"`
}

// Quiz is authored content; QuestionsOrder holds question ids in play order.
type Quiz struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Title          string     `json:"title"`
	QuestionsOrder []string   `json:"questionsOrder"`
	Questions      []Question `json:"questions"`
}

// Question returns the question with the given id, or nil.
func (q Quiz) Question(id string) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// ActiveQuestionID returns the question id at index in the play order.
func (q Quiz) ActiveQuestionID(index int64) (string, bool) {
	if index < 0 || index >= int64(len(q.QuestionsOrder)) {
		return "", false
	}
	return q.QuestionsOrder[index], true
}

// Role classifies a verified principal.
type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleUser      Role = "User"
	RoleAnonymous Role = "Anonymous"
)

// Principal is the outcome of credential verification. UserID is empty for
// anonymous principals.
type Principal struct {
	Role   Role
	UserID string
}

// CanActFor reports whether the principal may act on a resource owned by ownerID.
func (p Principal) CanActFor(ownerID string) bool {
	if p.Role == RoleAdmin {
		return true
	}
	return p.Role == RoleUser && p.UserID == ownerID
}

// LeaderboardEntry is a points-ordered view of a participant.
type LeaderboardEntry struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
	Points        int    `json:"points"`
}
