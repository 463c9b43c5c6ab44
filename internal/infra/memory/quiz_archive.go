package memory

import (
	"context"
	"sort"
	"sync"

	"quizapp-client/internal/domain"
)

// QuizArchive keeps created quizzes for the lifetime of the process.
type QuizArchive struct {
	mu      sync.RWMutex
	quizzes map[domain.ID]domain.ArchivedQuiz
}

func NewQuizArchive() *QuizArchive {
	return &QuizArchive{quizzes: make(map[domain.ID]domain.ArchivedQuiz)}
}

func (a *QuizArchive) Save(_ context.Context, quiz domain.ArchivedQuiz) error {
	quiz.Participants = append([]domain.Participant(nil), quiz.Participants...)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.quizzes[quiz.ID] = quiz
	return nil
}

func (a *QuizArchive) Get(_ context.Context, quizID domain.ID) (domain.ArchivedQuiz, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	quiz, ok := a.quizzes[quizID]
	if !ok {
		return domain.ArchivedQuiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

// List returns the newest quizzes first; limit <= 0 means all.
func (a *QuizArchive) List(_ context.Context, limit int) ([]domain.ArchivedQuiz, error) {
	a.mu.RLock()
	out := make([]domain.ArchivedQuiz, 0, len(a.quizzes))
	for _, q := range a.quizzes {
		out = append(out, q)
	}
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
