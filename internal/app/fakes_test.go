package app_test

import (
	"context"
	"sync"
	"time"

	"quizapp-client/internal/app"
	"quizapp-client/internal/domain"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

// fakeClock is advanced by hand.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type notice struct {
	level   app.NoticeLevel
	message string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *recordingNotifier) Notify(level app.NoticeLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{level, message})
}

func (n *recordingNotifier) messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.notices))
	for _, x := range n.notices {
		out = append(out, x.message)
	}
	return out
}

func (n *recordingNotifier) has(message string) bool {
	for _, m := range n.messages() {
		if m == message {
			return true
		}
	}
	return false
}

// fakeAPI records what reaches the backend.
type fakeAPI struct {
	mu        sync.Mutex
	createErr error
	createdID domain.ID
	drafts    []domain.QuizDraft
	submitErr error
	responses []domain.ResponseSubmission
	entered   chan struct{}
	gate      chan struct{}
}

func (f *fakeAPI) CreateQuiz(_ context.Context, draft domain.QuizDraft) (domain.CreatedQuiz, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.CreatedQuiz{}, f.createErr
	}
	f.drafts = append(f.drafts, draft)
	return domain.CreatedQuiz{ID: f.createdID}, nil
}

func (f *fakeAPI) SubmitResponse(_ context.Context, resp domain.ResponseSubmission) error {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeAPI) GetResults(context.Context, domain.ID, int, int) (domain.ResultsPage, error) {
	return domain.ResultsPage{}, nil
}

func (f *fakeAPI) submitted() []domain.ResponseSubmission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ResponseSubmission(nil), f.responses...)
}

type quizMap map[domain.ID]domain.Quiz

func (m quizMap) GetQuiz(_ context.Context, id domain.ID) (domain.Quiz, error) {
	q, ok := m[id]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return q, nil
}

func completeDraft() domain.QuizDraft {
	return domain.QuizDraft{
		Title:             "Geography",
		DurationInSeconds: 60,
		StartTime:         domain.StartTime(fixedNow),
		Questions: []domain.Question{{
			Text:    "Capital of France?",
			Options: []domain.Option{{Text: "Paris", Correct: true}, {Text: "Lyon"}},
		}},
		Participants: []domain.Participant{{PhoneNumber: "0612345678"}},
	}
}
