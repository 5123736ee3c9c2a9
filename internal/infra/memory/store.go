package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
)

// Store is an in-memory implementation of app.Store for dev mode and tests.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]domain.Session
	participants map[string]domain.Participant
	responses    map[string]domain.Response
}

var _ app.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		sessions:     make(map[string]domain.Session),
		participants: make(map[string]domain.Participant),
		responses:    make(map[string]domain.Response),
	}
}

func (s *Store) CreateSession(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *Store) GetSession(_ context.Context, id string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) GetSessionByCode(_ context.Context, code string) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code = strings.ToLower(code)
	for _, session := range s.sessions {
		if session.Code == code {
			return session, nil
		}
	}
	return domain.Session{}, domain.ErrSessionNotFound
}

func (s *Store) UpdateSession(_ context.Context, id string, upd domain.SessionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	if upd.Code != nil {
		session.Code = strings.ToLower(*upd.Code)
	}
	if upd.HostName != nil {
		session.HostName = *upd.HostName
	}
	if upd.HostAvatar != nil {
		session.HostAvatar = *upd.HostAvatar
	}
	if upd.Status != nil {
		session.Status = *upd.Status
	}
	if upd.StartTime != nil {
		session.StartTime = upd.StartTime
	}
	if upd.EndTime != nil {
		session.EndTime = upd.EndTime
	}
	if upd.QuestionIndex != nil {
		session.QuestionIndex = upd.QuestionIndex
	}
	if upd.QuestionEndTime != nil {
		session.QuestionEndTime = upd.QuestionEndTime
	}
	if upd.QuestionDuration != nil {
		session.QuestionDuration = *upd.QuestionDuration
	}
	s.sessions[id] = session
	return nil
}

func (s *Store) CreateParticipant(_ context.Context, participant domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[participant.ID] = participant
	return nil
}

func (s *Store) GetParticipant(_ context.Context, id string) (domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participant, ok := s.participants[id]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return participant, nil
}

func (s *Store) CountParticipants(_ context.Context, sessionID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, participant := range s.participants {
		if participant.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (s *Store) SetParticipantPoints(_ context.Context, participantID string, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	participant, ok := s.participants[participantID]
	if !ok {
		return domain.ErrParticipantNotFound
	}
	participant.Points = points
	s.participants[participantID] = participant
	return nil
}

func (s *Store) ListLeaders(_ context.Context, sessionID string, limit int) ([]domain.LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]domain.LeaderboardEntry, 0)
	for _, p := range s.participants {
		if p.SessionID != sessionID {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			ParticipantID: p.ID,
			Name:          p.Name,
			Avatar:        p.Avatar,
			Points:        p.Points,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *Store) CreateResponse(_ context.Context, response domain.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[response.ID] = response
	return nil
}

func (s *Store) CountResponses(_ context.Context, questionID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for _, response := range s.responses {
		if response.QuestionID == questionID {
			count++
		}
	}
	return count, nil
}
