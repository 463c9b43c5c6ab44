package app

import (
	"strings"
	"sync"
	"time"

	"quizapp-client/internal/domain"
)

const (
	minOptions      = 2
	minQuestions    = 1
	minParticipants = 1
)

// DraftStore owns the quiz being authored. Edits address questions, options and participants
// by index; out-of-range indexes and edits that would break a floor are ignored.
type DraftStore struct {
	mu    sync.RWMutex
	now   func() time.Time
	draft domain.QuizDraft
}

func NewDraftStore() *DraftStore {
	return NewDraftStoreWithClock(time.Now)
}

// NewDraftStoreWithClock is used by tests for deterministic start times.
func NewDraftStoreWithClock(now func() time.Time) *DraftStore {
	s := &DraftStore{now: now}
	s.draft = s.fresh()
	return s
}

// FreshDraft returns the shape a new wizard starts from.
func FreshDraft(now time.Time) domain.QuizDraft {
	return domain.QuizDraft{
		DurationInSeconds: domain.DefaultDurationSeconds,
		StartTime:         domain.StartTime(now.Truncate(time.Second)),
		Questions:         []domain.Question{blankQuestion()},
		Participants:      []domain.Participant{{}},
	}
}

func (s *DraftStore) fresh() domain.QuizDraft {
	return FreshDraft(s.now())
}

func blankQuestion() domain.Question {
	return domain.Question{Options: make([]domain.Option, minOptions)}
}

// Draft returns a snapshot that does not alias the stored draft.
func (s *DraftStore) Draft() domain.QuizDraft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft.Clone()
}

// Load replaces the draft wholesale, e.g. from a draft file. Floors and entry constraints are re-applied.
func (s *DraftStore) Load(d domain.QuizDraft) {
	d = d.Clone()
	if d.DurationInSeconds < domain.MinDurationSeconds {
		d.DurationInSeconds = domain.MinDurationSeconds
	}
	if d.StartTime.Time().IsZero() {
		d.StartTime = domain.StartTime(s.now().Truncate(time.Second))
	}
	d.Closed = false
	for len(d.Questions) < minQuestions {
		d.Questions = append(d.Questions, blankQuestion())
	}
	for i := range d.Questions {
		for len(d.Questions[i].Options) < minOptions {
			d.Questions[i].Options = append(d.Questions[i].Options, domain.Option{})
		}
	}
	for len(d.Participants) < minParticipants {
		d.Participants = append(d.Participants, domain.Participant{})
	}
	for i := range d.Participants {
		d.Participants[i].PhoneNumber = domain.SanitizePhoneInput(d.Participants[i].PhoneNumber)
	}

	s.mu.Lock()
	s.draft = d
	s.mu.Unlock()
}

// Reset discards the draft and starts from the fresh shape.
func (s *DraftStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = s.fresh()
}

func (s *DraftStore) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Title = title
}

// SetDuration applies the input floor of 30 seconds.
func (s *DraftStore) SetDuration(seconds int) {
	if seconds < domain.MinDurationSeconds {
		seconds = domain.MinDurationSeconds
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.DurationInSeconds = seconds
}

func (s *DraftStore) SetStartTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.StartTime = domain.StartTime(t.Truncate(time.Second))
}

func (s *DraftStore) SetQuestionText(q int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasQuestion(q) {
		return
	}
	s.draft.Questions[q].Text = text
}

func (s *DraftStore) SetOptionText(q, o int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasOption(q, o) {
		return
	}
	s.draft.Questions[q].Options[o].Text = text
}

func (s *DraftStore) ToggleOptionCorrect(q, o int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasOption(q, o) {
		return
	}
	opt := &s.draft.Questions[q].Options[o]
	opt.Correct = !opt.Correct
}

// AddOption appends a blank, non-correct option.
func (s *DraftStore) AddOption(q int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasQuestion(q) {
		return
	}
	s.draft.Questions[q].Options = append(s.draft.Questions[q].Options, domain.Option{})
}

// RemoveOption never leaves a question with fewer than two options.
func (s *DraftStore) RemoveOption(q, o int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasOption(q, o) || len(s.draft.Questions[q].Options) <= minOptions {
		return
	}
	opts := s.draft.Questions[q].Options
	s.draft.Questions[q].Options = append(opts[:o:o], opts[o+1:]...)
}

// AddQuestion appends a question with two blank options and returns its index.
func (s *DraftStore) AddQuestion() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Questions = append(s.draft.Questions, blankQuestion())
	return len(s.draft.Questions) - 1
}

// RemoveQuestion keeps at least one question.
func (s *DraftStore) RemoveQuestion(q int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasQuestion(q) || len(s.draft.Questions) <= minQuestions {
		return
	}
	qs := s.draft.Questions
	s.draft.Questions = append(qs[:q:q], qs[q+1:]...)
}

// QuestionCount is the number of questions in the draft.
func (s *DraftStore) QuestionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.draft.Questions)
}

// SetParticipantPhone stores only digits, truncated to 10.
func (s *DraftStore) SetParticipantPhone(i int, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.draft.Participants) {
		return
	}
	s.draft.Participants[i].PhoneNumber = domain.SanitizePhoneInput(raw)
}

func (s *DraftStore) AddParticipant() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Participants = append(s.draft.Participants, domain.Participant{})
	return len(s.draft.Participants) - 1
}

// RemoveParticipant keeps at least one participant.
func (s *DraftStore) RemoveParticipant(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ps := s.draft.Participants
	if i < 0 || i >= len(ps) || len(ps) <= minParticipants {
		return
	}
	s.draft.Participants = append(ps[:i:i], ps[i+1:]...)
}

// ValidateQuestion checks one question: text, every option text, at least one correct option.
func (s *DraftStore) ValidateQuestion(q int) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasQuestion(q) {
		return &domain.ValidationError{Step: StepNameQuestions, Index: q, Err: domain.ErrEmptyQuestion}
	}
	if errs := validateQuestion(q, s.draft.Questions[q]); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateForSubmission collects every violation in draft order: title, questions, participants.
func (s *DraftStore) ValidateForSubmission() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ValidateDraft(s.draft)
}

// ValidateDraft returns domain.ValidationErrors or nil.
func ValidateDraft(d domain.QuizDraft) error {
	var errs domain.ValidationErrors
	if strings.TrimSpace(d.Title) == "" {
		errs = append(errs, &domain.ValidationError{Step: StepNameBasic, Index: -1, Err: domain.ErrEmptyTitle})
	}
	if len(d.Questions) == 0 {
		errs = append(errs, &domain.ValidationError{Step: StepNameQuestions, Index: 0, Err: domain.ErrEmptyQuestion})
	}
	for i, q := range d.Questions {
		errs = append(errs, validateQuestion(i, q)...)
	}
	if len(d.Participants) == 0 {
		errs = append(errs, &domain.ValidationError{Step: StepNameParticipants, Index: 0, Err: domain.ErrInvalidPhoneNumber})
	}
	for i, p := range d.Participants {
		if _, err := domain.ValidatePhoneNumber(p.PhoneNumber); err != nil {
			errs = append(errs, &domain.ValidationError{
				Step:    StepNameParticipants,
				Index:   i,
				Message: err.Error(),
				Err:     domain.ErrInvalidPhoneNumber,
			})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateQuestion(i int, q domain.Question) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, &domain.ValidationError{Step: StepNameQuestions, Index: i, Err: domain.ErrEmptyQuestion})
	}
	correct := false
	emptyOption := false
	for _, o := range q.Options {
		if strings.TrimSpace(o.Text) == "" {
			emptyOption = true
		}
		correct = correct || o.Correct
	}
	if emptyOption || len(q.Options) < minOptions {
		errs = append(errs, &domain.ValidationError{Step: StepNameQuestions, Index: i, Err: domain.ErrEmptyOption})
	}
	if !correct {
		errs = append(errs, &domain.ValidationError{Step: StepNameQuestions, Index: i, Err: domain.ErrNoCorrectOption})
	}
	return errs
}

func (s *DraftStore) hasQuestion(q int) bool {
	return q >= 0 && q < len(s.draft.Questions)
}

func (s *DraftStore) hasOption(q, o int) bool {
	return s.hasQuestion(q) && o >= 0 && o < len(s.draft.Questions[q].Options)
}
