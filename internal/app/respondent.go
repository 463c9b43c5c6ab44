package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizapp-client/internal/domain"
)

// Phase is the respondent session state.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseUsername
	PhaseQuestions
	PhaseCompleted
	PhaseTimeUp
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseUsername:
		return "username"
	case PhaseQuestions:
		return "questions"
	case PhaseCompleted:
		return "completed"
	case PhaseTimeUp:
		return "time-up"
	case PhaseError:
		return "error"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Terminal reports whether no further transition is possible.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseTimeUp || p == PhaseError
}

const (
	defaultTickInterval = time.Second
	defaultMinSpacing   = time.Second
	warnAtSeconds       = 30
)

// ResponseSubmitter posts one answer.
type ResponseSubmitter interface {
	SubmitResponse(ctx context.Context, response domain.ResponseSubmission) error
}

// RespondentOptions tunes a flow; zero values take the defaults.
type RespondentOptions struct {
	Notifier     Notifier
	Now          func() time.Time
	TickInterval time.Duration
	MinSpacing   time.Duration
}

// RespondentSnapshot is a copy of everything a respondent screen renders.
type RespondentSnapshot struct {
	SessionID     string
	Phase         Phase
	QuizID        domain.ID
	PhoneNumber   string
	Username      string
	Title         string
	Question      domain.Question
	QuestionIndex int
	QuestionCount int
	TimeLeft      int
	Err           error
	Message       string
}

// RespondentFlow walks one participant through a timed quiz. The countdown goroutine and the
// input side share it; answers are posted outside the lock with at most one in flight.
type RespondentFlow struct {
	quizzes   QuizRepository
	responses ResponseSubmitter
	notifier  Notifier
	now       func() time.Time
	tick      time.Duration
	spacing   time.Duration

	mu           sync.Mutex
	id           string
	phase        Phase
	quizID       domain.ID
	phone        string
	username     string
	quiz         domain.Quiz
	index        int
	timeLeft     int
	err          error
	inFlight     bool
	lastAccepted time.Time
}

// NewRespondentFlow starts a session from invite link parameters. Missing or malformed
// parameters put the session straight into the error phase.
func NewRespondentFlow(quizID, phoneNumber string, quizzes QuizRepository, responses ResponseSubmitter, opts RespondentOptions) *RespondentFlow {
	f := &RespondentFlow{
		quizzes:   quizzes,
		responses: responses,
		notifier:  opts.Notifier,
		now:       opts.Now,
		tick:      opts.TickInterval,
		spacing:   opts.MinSpacing,
		id:        uuid.NewString(),
		phase:     PhaseLoading,
		quizID:    domain.ID(quizID).Canonical(),
		phone:     strings.TrimSpace(phoneNumber),
	}
	if f.notifier == nil {
		f.notifier = LogNotifier{}
	}
	if f.now == nil {
		f.now = time.Now
	}
	if f.tick <= 0 {
		f.tick = defaultTickInterval
	}
	if f.spacing <= 0 {
		f.spacing = defaultMinSpacing
	}

	if f.quizID == "" || f.phone == "" {
		f.failLocked(domain.ErrMissingParameters)
		return f
	}
	phone, err := domain.ValidatePhoneNumber(f.phone)
	if err != nil {
		f.failLocked(err)
		return f
	}
	f.phone = phone.String()
	return f
}

// Load fetches the quiz and seeds the countdown from its duration.
func (f *RespondentFlow) Load(ctx context.Context) error {
	f.mu.Lock()
	if f.phase != PhaseLoading {
		defer f.mu.Unlock()
		if f.phase == PhaseError {
			return f.err
		}
		return ErrInvalidTransition
	}
	quizID := f.quizID
	f.mu.Unlock()

	quiz, err := f.quizzes.GetQuiz(ctx, quizID)
	if err == nil {
		err = checkQuiz(quiz)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseLoading {
		return domain.ErrSessionOver
	}
	if err != nil {
		log.Printf("respondent %s: load quiz %s: %v", f.id, quizID, err)
		f.failLocked(err)
		return err
	}
	f.quiz = quiz
	f.timeLeft = quiz.DurationInSeconds
	f.phase = PhaseUsername
	return nil
}

func checkQuiz(q domain.Quiz) error {
	if len(q.Questions) == 0 {
		return fmt.Errorf("quiz has no questions: %w", domain.ErrInvalidQuizData)
	}
	if q.DurationInSeconds <= 0 {
		return fmt.Errorf("quiz has no duration: %w", domain.ErrInvalidQuizData)
	}
	for i, question := range q.Questions {
		if question.ID == "" || len(question.Options) == 0 {
			return fmt.Errorf("question %d is incomplete: %w", i+1, domain.ErrInvalidQuizData)
		}
	}
	return nil
}

// Start registers the display name and enters the questions phase. Closed quizzes and quizzes
// whose start time lies ahead are refused without a transition.
func (f *RespondentFlow) Start(username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseUsername {
		return ErrInvalidTransition
	}
	name := strings.TrimSpace(username)
	if name == "" {
		err := &domain.ValidationError{Index: -1, Message: "Please enter a username", Err: domain.ErrEmptyUsername}
		f.notifier.Notify(NoticeError, err.Error())
		return err
	}
	if f.quiz.Closed {
		f.notifier.Notify(NoticeError, "This quiz is closed.")
		return domain.ErrQuizClosed
	}
	if start := f.quiz.StartTime.Time(); !start.IsZero() && start.After(f.now()) {
		f.notifier.Notify(NoticeError, fmt.Sprintf("This quiz starts at %s.", start.Format("2006-01-02 15:04")))
		return domain.ErrQuizNotStarted
	}
	f.username = name
	f.index = 0
	f.phase = PhaseQuestions
	log.Printf("respondent %s: %q started quiz %s with %ds", f.id, name, f.quizID, f.timeLeft)
	return nil
}

// Tick advances the countdown by one second while questions are shown.
func (f *RespondentFlow) Tick() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseQuestions {
		return f.phase
	}
	f.timeLeft--
	if f.timeLeft == warnAtSeconds {
		f.notifier.Notify(NoticeWarning, "30 seconds remaining!")
	}
	if f.timeLeft <= 0 {
		f.timeLeft = 0
		f.phase = PhaseTimeUp
		f.notifier.Notify(NoticeWarning, "Time is up! Your answers so far have been saved.")
	}
	return f.phase
}

// RunCountdown ticks until the session leaves the questions phase or ctx ends. It waits for
// Start if the session is still in the username phase.
func (f *RespondentFlow) RunCountdown(ctx context.Context) {
	ticker := time.NewTicker(f.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			phase := f.Tick()
			if phase.Terminal() {
				return
			}
		}
	}
}

// Answer posts the option at optionIndex for the current question. A success advances to the
// next question or completes the session; a failure keeps the question so it can be retried.
func (f *RespondentFlow) Answer(ctx context.Context, optionIndex int) error {
	f.mu.Lock()
	switch f.phase {
	case PhaseQuestions:
	case PhaseTimeUp:
		f.mu.Unlock()
		return domain.ErrTimeUp
	case PhaseCompleted, PhaseError:
		f.mu.Unlock()
		return domain.ErrSessionOver
	default:
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	if f.inFlight {
		f.mu.Unlock()
		return domain.ErrSubmissionInFlight
	}
	now := f.now()
	if !f.lastAccepted.IsZero() && now.Sub(f.lastAccepted) < f.spacing {
		f.mu.Unlock()
		f.notifier.Notify(NoticeWarning, "Please wait a moment before answering again.")
		return domain.ErrTooSoon
	}
	question := f.quiz.Questions[f.index]
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		f.mu.Unlock()
		return domain.ErrOptionNotFound
	}
	submission := domain.ResponseSubmission{
		PhoneNumber:    f.phone,
		Username:       f.username,
		QuestionID:     question.ID,
		SelectedAnswer: question.Options[optionIndex].Text,
		QuizID:         f.quizID,
	}
	index := f.index
	f.inFlight = true
	f.lastAccepted = now
	f.mu.Unlock()

	err := f.responses.SubmitResponse(ctx, submission)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false
	if f.phase != PhaseQuestions || f.index != index {
		// the countdown ended the session while the answer was on the wire
		if f.phase == PhaseTimeUp {
			return domain.ErrTimeUp
		}
		return domain.ErrSessionOver
	}
	if err != nil {
		log.Printf("respondent %s: submit answer for question %s: %v", f.id, submission.QuestionID, err)
		f.notifier.Notify(NoticeError, "Failed to submit answer. Please try again.")
		return fmt.Errorf("submit answer: %w", err)
	}
	if f.index >= len(f.quiz.Questions)-1 {
		f.phase = PhaseCompleted
		f.notifier.Notify(NoticeSuccess, "Thank you for completing the quiz!")
		return nil
	}
	f.index++
	return nil
}

// Snapshot returns the state a screen renders.
func (f *RespondentFlow) Snapshot() RespondentSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := RespondentSnapshot{
		SessionID:     f.id,
		Phase:         f.phase,
		QuizID:        f.quizID,
		PhoneNumber:   f.phone,
		Username:      f.username,
		Title:         f.quiz.Title,
		QuestionIndex: f.index,
		QuestionCount: len(f.quiz.Questions),
		TimeLeft:      f.timeLeft,
		Err:           f.err,
	}
	if f.index < len(f.quiz.Questions) {
		q := f.quiz.Questions[f.index]
		snap.Question = domain.Question{ID: q.ID, Text: q.Text, Options: append([]domain.Option(nil), q.Options...)}
	}
	if f.err != nil {
		snap.Message = FetchFailureMessage(f.err)
	}
	return snap
}

func (f *RespondentFlow) failLocked(err error) {
	f.err = err
	f.phase = PhaseError
	f.notifier.Notify(NoticeError, FetchFailureMessage(err))
}

// FetchFailureMessage maps a session-fatal error onto the fixed set of user messages.
func FetchFailureMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrMissingParameters):
		return "Invalid quiz link. The quiz ID or phone number is missing."
	case errors.Is(err, domain.ErrInvalidPhoneNumber):
		return "Invalid quiz link. Phone number must be 10 digits starting with 06."
	case errors.Is(err, domain.ErrQuizNotFound):
		return "Quiz not found. Please check your invite link."
	case errors.Is(err, domain.ErrInvalidQuizData):
		return "The quiz data is invalid. Please contact the quiz organizer."
	case errors.Is(err, domain.ErrServer):
		return "The server encountered an error. Please try again later."
	default:
		return "Failed to load quiz questions"
	}
}
