package domain

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyTitle is returned when a draft has no title.
	ErrEmptyTitle = errors.New("please enter a quiz title")
	// ErrEmptyQuestion is returned when a question has no text.
	ErrEmptyQuestion = errors.New("please fill in all questions")
	// ErrEmptyOption is returned when an option has no text.
	ErrEmptyOption = errors.New("please fill in all options")
	// ErrNoCorrectOption is returned when no option of a question is marked correct.
	ErrNoCorrectOption = errors.New("each question must have at least one correct answer")
	// ErrInvalidPhoneNumber is returned for numbers that are not 10 digits starting with 06.
	ErrInvalidPhoneNumber = errors.New("phone number must be 10 digits starting with 06")
	// ErrEmptyUsername is returned when a respondent starts without a display name.
	ErrEmptyUsername = errors.New("please enter a username")

	// ErrEmptyResponse indicates a successful transport call without a body.
	ErrEmptyResponse = errors.New("empty response from server")
	// ErrMissingID indicates the server accepted a quiz but returned no identifier.
	ErrMissingID = errors.New("server response is missing the quiz id")

	// ErrMissingParameters is returned when an invite link lacks the quiz id or phone number.
	ErrMissingParameters = errors.New("invite link is missing the quiz id or phone number")
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidQuizData indicates the quiz payload could not be used.
	ErrInvalidQuizData = errors.New("invalid quiz data")
	// ErrServer indicates a 5xx response from the backend.
	ErrServer = errors.New("server error")
	// ErrQuizClosed is returned when a respondent tries to start a closed quiz.
	ErrQuizClosed = errors.New("this quiz is closed")
	// ErrQuizNotStarted is returned when the quiz start time lies in the future.
	ErrQuizNotStarted = errors.New("this quiz has not started yet")
	// ErrTimeUp is returned for answers submitted after the countdown expired.
	ErrTimeUp = errors.New("time is up")
	// ErrSubmissionInFlight is returned while another answer is still being submitted.
	ErrSubmissionInFlight = errors.New("an answer is already being submitted")
	// ErrTooSoon is returned when answers are submitted less than a second apart.
	ErrTooSoon = errors.New("answer submitted too quickly, please wait")
	// ErrSessionOver is returned for actions on a terminal respondent session.
	ErrSessionOver = errors.New("quiz session is over")
	// ErrOptionNotFound indicates a selected option index is out of range.
	ErrOptionNotFound = errors.New("option not found")
)

// ValidationError is a user-correctable input problem. Step names the wizard step owning the field;
// Index is the question or participant position, -1 when not applicable.
type ValidationError struct {
	Step    string
	Index   int
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidationErrors collects every violation of a draft. It unwraps to each entry so
// errors.Is works against any of the sentinels.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(v))
	for _, e := range v {
		out = append(out, e)
	}
	return out
}

// First returns the blocking violation, or nil for an empty list.
func (v ValidationErrors) First() *ValidationError {
	if len(v) == 0 {
		return nil
	}
	return v[0]
}
