package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-session-service/internal/app"
	"quiz-session-service/internal/domain"
)

// Store is the durable app.Store backed by Postgres. Updates are single
// read-modify-write statements; concurrent host updates race at
// last-write-wins granularity.
type Store struct {
	pool *pgxpool.Pool
}

var _ app.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const sessionColumns = `id, quiz_id, host_id, code, host_name, host_avatar, status,
	start_time, end_time, question_index, question_end_time, question_duration,
	created_at, updated_at`

func (s *Store) CreateSession(ctx context.Context, session domain.Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		session.ID, session.QuizID, session.HostID, session.Code,
		session.HostName, session.HostAvatar, session.Status,
		session.StartTime, session.EndTime, session.QuestionIndex,
		session.QuestionEndTime, session.QuestionDuration,
		session.CreatedAt, session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (domain.Session, error) {
	return s.scanSession(s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM quiz_sessions WHERE id = $1`, id))
}

func (s *Store) GetSessionByCode(ctx context.Context, code string) (domain.Session, error) {
	return s.scanSession(s.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM quiz_sessions WHERE lower(code) = lower($1)`, code))
}

func (s *Store) scanSession(row pgx.Row) (domain.Session, error) {
	var session domain.Session
	err := row.Scan(
		&session.ID, &session.QuizID, &session.HostID, &session.Code,
		&session.HostName, &session.HostAvatar, &session.Status,
		&session.StartTime, &session.EndTime, &session.QuestionIndex,
		&session.QuestionEndTime, &session.QuestionDuration,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("scan session: %w", err)
	}
	return session, nil
}

func (s *Store) UpdateSession(ctx context.Context, id string, upd domain.SessionUpdate) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE quiz_sessions SET
			code              = COALESCE($2, code),
			host_name         = COALESCE($3, host_name),
			host_avatar       = COALESCE($4, host_avatar),
			status            = COALESCE($5, status),
			start_time        = COALESCE($6, start_time),
			end_time          = COALESCE($7, end_time),
			question_index    = COALESCE($8, question_index),
			question_end_time = COALESCE($9, question_end_time),
			question_duration = COALESCE($10, question_duration),
			updated_at        = now()
		WHERE id = $1`,
		id, upd.Code, upd.HostName, upd.HostAvatar, upd.Status,
		upd.StartTime, upd.EndTime, upd.QuestionIndex,
		upd.QuestionEndTime, upd.QuestionDuration,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *Store) CreateParticipant(ctx context.Context, participant domain.Participant) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO participants (id, session_id, user_id, name, avatar, points, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		participant.ID, participant.SessionID, participant.UserID,
		participant.Name, participant.Avatar, participant.Points, participant.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

func (s *Store) GetParticipant(ctx context.Context, id string) (domain.Participant, error) {
	var participant domain.Participant
	err := s.pool.QueryRow(ctx, `
		SELECT id, session_id, user_id, name, avatar, points, created_at
		FROM participants WHERE id = $1`, id,
	).Scan(
		&participant.ID, &participant.SessionID, &participant.UserID,
		&participant.Name, &participant.Avatar, &participant.Points, &participant.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	if err != nil {
		return domain.Participant{}, fmt.Errorf("get participant: %w", err)
	}
	return participant, nil
}

func (s *Store) CountParticipants(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM participants WHERE session_id = $1`, sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}

func (s *Store) SetParticipantPoints(ctx context.Context, participantID string, points int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE participants SET points = $2 WHERE id = $1`, participantID, points)
	if err != nil {
		return fmt.Errorf("set points: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (s *Store) ListLeaders(ctx context.Context, sessionID string, limit int) ([]domain.LeaderboardEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, avatar, points FROM participants
		WHERE session_id = $1
		ORDER BY points DESC, name ASC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("list leaders: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LeaderboardEntry, 0, limit)
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.ParticipantID, &entry.Name, &entry.Avatar, &entry.Points); err != nil {
			return nil, fmt.Errorf("scan leader: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *Store) CreateResponse(ctx context.Context, response domain.Response) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quiz_responses (id, participant_id, question_id, answer_id, is_correct, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		response.ID, response.ParticipantID, response.QuestionID,
		response.AnswerID, response.IsCorrect, response.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create response: %w", err)
	}
	return nil
}

func (s *Store) CountResponses(ctx context.Context, questionID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM quiz_responses WHERE question_id = $1`, questionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return count, nil
}
