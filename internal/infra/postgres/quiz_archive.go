package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizapp-client/internal/domain"
)

// QuizArchive stores created quizzes in Postgres so the invite and results commands can find
// them again across runs.
type QuizArchive struct {
	pool *pgxpool.Pool
}

func NewQuizArchive(pool *pgxpool.Pool) *QuizArchive {
	return &QuizArchive{pool: pool}
}

func (a *QuizArchive) Save(ctx context.Context, quiz domain.ArchivedQuiz) error {
	participants, err := json.Marshal(quiz.Participants)
	if err != nil {
		return fmt.Errorf("marshal participants: %w", err)
	}
	_, err = a.pool.Exec(ctx, `
		INSERT INTO created_quizzes (id, title, participants, created_at)
		VALUES ($1, $2, $3::jsonb, $4)
		ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, participants = EXCLUDED.participants`,
		quiz.ID.String(), quiz.Title, string(participants), quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("save quiz %s: %w", quiz.ID, err)
	}
	return nil
}

func (a *QuizArchive) Get(ctx context.Context, quizID domain.ID) (domain.ArchivedQuiz, error) {
	row := a.pool.QueryRow(ctx, `SELECT id, title, participants, created_at FROM created_quizzes WHERE id = $1`, quizID.String())
	quiz, err := scanQuiz(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ArchivedQuiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.ArchivedQuiz{}, fmt.Errorf("load quiz %s: %w", quizID, err)
	}
	return quiz, nil
}

// List returns the newest quizzes first; limit <= 0 means all.
func (a *QuizArchive) List(ctx context.Context, limit int) ([]domain.ArchivedQuiz, error) {
	query := `SELECT id, title, participants, created_at FROM created_quizzes ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []domain.ArchivedQuiz
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		out = append(out, quiz)
	}
	return out, rows.Err()
}

func scanQuiz(row pgx.Row) (domain.ArchivedQuiz, error) {
	var (
		id, title string
		raw       []byte
		quiz      domain.ArchivedQuiz
	)
	if err := row.Scan(&id, &title, &raw, &quiz.CreatedAt); err != nil {
		return quiz, err
	}
	quiz.ID = domain.ID(id)
	quiz.Title = title
	if err := json.Unmarshal(raw, &quiz.Participants); err != nil {
		return quiz, fmt.Errorf("unmarshal participants: %w", err)
	}
	return quiz, nil
}
