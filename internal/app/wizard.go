package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"quizapp-client/internal/domain"
)

const (
	StepNameNone         = "none"
	StepNameBasic        = "basic"
	StepNameQuestions    = "questions"
	StepNameAddAnother   = "add-another"
	StepNameParticipants = "participants"
	StepNameInvite       = "invite"
)

// ErrInvalidTransition is returned when an action does not apply to the current step.
var ErrInvalidTransition = errors.New("action not available in the current step")

// ErrSubmitting is returned when a submit is requested while one is outstanding.
var ErrSubmitting = errors.New("quiz is already being submitted")

// Step is the visible wizard screen. Each variant carries only the data its screen needs.
type Step interface {
	Name() string
	isStep()
}

type StepNone struct{}

type StepBasic struct{}

// StepQuestions edits the question at Index.
type StepQuestions struct{ Index int }

// StepAddAnother asks whether to add another question after question Index was confirmed.
type StepAddAnother struct{ Index int }

type StepParticipants struct{}

// StepInvite holds what invite generation needs after a successful submission.
type StepInvite struct {
	QuizID       domain.ID
	Participants []domain.Participant
}

func (StepNone) Name() string         { return StepNameNone }
func (StepBasic) Name() string        { return StepNameBasic }
func (StepQuestions) Name() string    { return StepNameQuestions }
func (StepAddAnother) Name() string   { return StepNameAddAnother }
func (StepParticipants) Name() string { return StepNameParticipants }
func (StepInvite) Name() string       { return StepNameInvite }

func (StepNone) isStep()         {}
func (StepBasic) isStep()        {}
func (StepQuestions) isStep()    {}
func (StepAddAnother) isStep()   {}
func (StepParticipants) isStep() {}
func (StepInvite) isStep()       {}

// QuizCreator turns a finished draft into a backend quiz id.
type QuizCreator interface {
	Submit(ctx context.Context, draft domain.QuizDraft) (domain.ID, error)
}

// Wizard drives quiz authoring: which step is visible and which question is being edited.
// The draft survives Cancel; only CreateNew and a successful Submit reset it.
type Wizard struct {
	draft    *DraftStore
	creator  QuizCreator
	notifier Notifier

	mu         sync.Mutex
	step       Step
	submitting bool
}

func NewWizard(draft *DraftStore, creator QuizCreator, notifier Notifier) *Wizard {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Wizard{draft: draft, creator: creator, notifier: notifier, step: StepNone{}}
}

// Draft exposes the store edited while the wizard is open.
func (w *Wizard) Draft() *DraftStore { return w.draft }

// Step returns the current step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Open shows the basic step, resuming whatever draft is in progress.
func (w *Wizard) Open() (Step, error) {
	return w.transition(func(cur Step) (Step, error) {
		if _, ok := cur.(StepNone); !ok {
			return nil, ErrInvalidTransition
		}
		return StepBasic{}, nil
	})
}

// CreateNew discards the in-progress draft and opens the basic step from any step.
func (w *Wizard) CreateNew() (Step, error) {
	return w.transition(func(Step) (Step, error) {
		w.draft.Reset()
		return StepBasic{}, nil
	})
}

// Next moves forward. Leaving a question requires that question to be complete.
func (w *Wizard) Next() (Step, error) {
	return w.transition(func(cur Step) (Step, error) {
		switch s := cur.(type) {
		case StepBasic:
			return StepQuestions{Index: 0}, nil
		case StepQuestions:
			if err := w.draft.ValidateQuestion(s.Index); err != nil {
				return nil, err
			}
			return StepAddAnother{Index: s.Index}, nil
		default:
			return nil, ErrInvalidTransition
		}
	})
}

// AddAnother appends a blank question and starts editing it.
func (w *Wizard) AddAnother() (Step, error) {
	return w.transition(func(cur Step) (Step, error) {
		if _, ok := cur.(StepAddAnother); !ok {
			return nil, ErrInvalidTransition
		}
		return StepQuestions{Index: w.draft.AddQuestion()}, nil
	})
}

// Finish leaves the question set as-is and moves to participants.
func (w *Wizard) Finish() (Step, error) {
	return w.transition(func(cur Step) (Step, error) {
		if _, ok := cur.(StepAddAnother); !ok {
			return nil, ErrInvalidTransition
		}
		return StepParticipants{}, nil
	})
}

// Back is unconditional; no validation guards backward navigation.
func (w *Wizard) Back() (Step, error) {
	return w.transition(func(cur Step) (Step, error) {
		switch s := cur.(type) {
		case StepQuestions:
			return StepBasic{}, nil
		case StepAddAnother:
			return StepQuestions{Index: s.Index}, nil
		case StepParticipants:
			return StepQuestions{Index: w.draft.QuestionCount() - 1}, nil
		default:
			return nil, ErrInvalidTransition
		}
	})
}

// SelectQuestion jumps to an existing question while on the questions step.
func (w *Wizard) SelectQuestion(index int) (Step, error) {
	return w.transition(func(cur Step) (Step, error) {
		if _, ok := cur.(StepQuestions); !ok {
			return nil, ErrInvalidTransition
		}
		if index < 0 || index >= w.draft.QuestionCount() {
			return nil, fmt.Errorf("question %d: %w", index+1, ErrInvalidTransition)
		}
		return StepQuestions{Index: index}, nil
	})
}

// RemoveQuestion drops the edited question (never the last one) and keeps the index in range.
func (w *Wizard) RemoveQuestion() (Step, error) {
	return w.transition(func(cur Step) (Step, error) {
		s, ok := cur.(StepQuestions)
		if !ok {
			return nil, ErrInvalidTransition
		}
		w.draft.RemoveQuestion(s.Index)
		if n := w.draft.QuestionCount(); s.Index >= n {
			s.Index = n - 1
		}
		return s, nil
	})
}

// Cancel closes the visible step. The draft is kept so the wizard can be resumed with Open.
func (w *Wizard) Cancel() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = StepNone{}
	return w.step
}

// Done closes the invite step after invites were handled.
func (w *Wizard) Done() (Step, error) {
	return w.transition(func(cur Step) (Step, error) {
		if _, ok := cur.(StepInvite); !ok {
			return nil, ErrInvalidTransition
		}
		return StepNone{}, nil
	})
}

// Submit validates the whole draft and posts it. Validation failures return the first blocking
// violation (wrapping the full domain.ValidationErrors) and keep the step; transport failures keep
// the draft so the user can retry.
func (w *Wizard) Submit(ctx context.Context) (Step, error) {
	w.mu.Lock()
	if _, ok := w.step.(StepParticipants); !ok {
		w.mu.Unlock()
		return w.Step(), ErrInvalidTransition
	}
	if w.submitting {
		w.mu.Unlock()
		return StepParticipants{}, ErrSubmitting
	}
	if err := w.draft.ValidateForSubmission(); err != nil {
		w.mu.Unlock()
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs.First()
			w.notifier.Notify(NoticeError, first.Error())
			return StepParticipants{}, &submitValidationError{first: first, all: verrs}
		}
		w.notifier.Notify(NoticeError, err.Error())
		return StepParticipants{}, err
	}
	w.submitting = true
	w.mu.Unlock()

	draft := w.draft.Draft()
	id, err := w.creator.Submit(ctx, draft)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		w.notifier.Notify(NoticeError, UserMessage(err))
		return w.step, err
	}
	w.draft.Reset()
	w.step = StepInvite{QuizID: id, Participants: draft.Participants}
	w.notifier.Notify(NoticeSuccess, "Quiz created successfully!")
	return w.step, nil
}

func (w *Wizard) transition(fn func(cur Step) (Step, error)) (Step, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return w.step, ErrSubmitting
	}
	next, err := fn(w.step)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			w.notifier.Notify(NoticeError, verr.Error())
		}
		return w.step, err
	}
	w.step = next
	return next, nil
}

// submitValidationError reports the blocking violation while keeping the full list reachable
// through errors.As.
type submitValidationError struct {
	first *domain.ValidationError
	all   domain.ValidationErrors
}

func (e *submitValidationError) Error() string { return e.first.Error() }

func (e *submitValidationError) Unwrap() []error {
	return []error{e.first, e.all}
}
