package app

import (
	"context"
	"log"

	"quizapp-client/internal/domain"
)

// QuizAPI is the backend REST surface consumed by this client.
type QuizAPI interface {
	CreateQuiz(ctx context.Context, draft domain.QuizDraft) (domain.CreatedQuiz, error)
	SubmitResponse(ctx context.Context, response domain.ResponseSubmission) error
	GetResults(ctx context.Context, quizID domain.ID, page, size int) (domain.ResultsPage, error)
}

// QuizRepository loads quiz content (from cache/backend).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID domain.ID) (domain.Quiz, error)
}

// QuizArchive keeps a local record of quizzes created from this client.
type QuizArchive interface {
	Save(ctx context.Context, quiz domain.ArchivedQuiz) error
	Get(ctx context.Context, quizID domain.ID) (domain.ArchivedQuiz, error)
	List(ctx context.Context, limit int) ([]domain.ArchivedQuiz, error)
}

// InviteLedger remembers which participants of a quiz were already invited.
type InviteLedger interface {
	// MarkInvited records the invite and reports false if it was already recorded.
	MarkInvited(ctx context.Context, quizID domain.ID, phone domain.PhoneNumber) (bool, error)
	// Forget drops a record so a failed send can be retried.
	Forget(ctx context.Context, quizID domain.ID, phone domain.PhoneNumber) error
}

// NoticeLevel grades user-facing notices.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
	NoticeSuccess
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	case NoticeSuccess:
		return "success"
	default:
		return "info"
	}
}

// Notifier surfaces short messages to the user (toasts in a browser, lines on a terminal).
type Notifier interface {
	Notify(level NoticeLevel, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level NoticeLevel, message string)

func (f NotifierFunc) Notify(level NoticeLevel, message string) { f(level, message) }

// LogNotifier writes notices to the standard logger.
type LogNotifier struct{}

func (LogNotifier) Notify(level NoticeLevel, message string) {
	log.Printf("%s: %s", level, message)
}
