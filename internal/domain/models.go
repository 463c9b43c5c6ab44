package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// StartTimeLayout is the seconds-precision timestamp the backend expects for quiz start times.
const StartTimeLayout = "2006-01-02T15:04:05"

// MinDurationSeconds is the input-level floor for a quiz countdown.
const MinDurationSeconds = 30

// DefaultDurationSeconds seeds a fresh draft.
const DefaultDurationSeconds = 120

// ID is a backend identifier. The backend emits numeric ids; links and tests use strings.
type ID string

func (id ID) String() string { return string(id) }

// Canonical trims the id and rewrites integral values in plain decimal form, so "007" and "+7"
// both become "7". Other ids are returned trimmed.
func (id ID) Canonical() ID {
	s := strings.TrimSpace(string(id))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ID(strconv.FormatInt(n, 10))
	}
	return ID(s)
}

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits integral ids as numbers so the backend can bind them to numeric fields.
func (id ID) MarshalJSON() ([]byte, error) {
	if id != "" {
		if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
			return []byte(strconv.FormatInt(n, 10)), nil
		}
	}
	return json.Marshal(string(id))
}

// StartTime marshals a time trimmed to seconds without a zone suffix.
type StartTime time.Time

func (t StartTime) Time() time.Time { return time.Time(t) }

func (t StartTime) MarshalJSON() ([]byte, error) {
	if time.Time(t).IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(time.Time(t).Format(StartTimeLayout))
}

// UnmarshalJSON accepts the backend layout, RFC 3339 and fractional-second variants.
func (t *StartTime) UnmarshalJSON(data []byte) error {
	var raw string
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = StartTime{}
		return nil
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("start time: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*t = StartTime{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, StartTimeLayout, "2006-01-02T15:04:05.999999999"} {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			*t = StartTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("start time: unrecognized layout %q", raw)
}

// Option is one answer choice. Several options of a question may be correct.
type Option struct {
	Text    string `json:"text" yaml:"text"`
	Correct bool   `json:"correct" yaml:"correct"`
}

// Question is a multiple-choice question. ID is only set on questions fetched from the backend.
type Question struct {
	ID      ID       `json:"id,omitempty" yaml:"-"`
	Text    string   `json:"text" yaml:"text"`
	Options []Option `json:"options" yaml:"options"`
}

// Participant is invited by phone number.
type Participant struct {
	PhoneNumber string `json:"phoneNumber" yaml:"phoneNumber"`
}

// QuizDraft is a quiz being authored, held only in client memory until submitted.
type QuizDraft struct {
	Title             string        `json:"title" yaml:"title"`
	DurationInSeconds int           `json:"durationInSeconds" yaml:"durationInSeconds"`
	StartTime         StartTime     `json:"startTime" yaml:"-"`
	Closed            bool          `json:"closed" yaml:"-"`
	Questions         []Question    `json:"questions" yaml:"questions"`
	Participants      []Participant `json:"participants" yaml:"participants"`
}

// Clone returns a deep copy so callers never alias the owned draft.
func (d QuizDraft) Clone() QuizDraft {
	out := d
	out.Questions = make([]Question, len(d.Questions))
	for i, q := range d.Questions {
		out.Questions[i] = q.clone()
	}
	out.Participants = append([]Participant(nil), d.Participants...)
	return out
}

func (q Question) clone() Question {
	out := q
	out.Options = append([]Option(nil), q.Options...)
	return out
}

// Quiz is the backend's view of a created quiz.
type Quiz struct {
	ID                ID            `json:"id"`
	Title             string        `json:"title"`
	DurationInSeconds int           `json:"durationInSeconds"`
	StartTime         StartTime     `json:"startTime"`
	Closed            bool          `json:"closed"`
	Questions         []Question    `json:"questions"`
	Participants      []Participant `json:"participants"`
}

// CreatedQuiz is the response to a quiz creation.
type CreatedQuiz struct {
	ID ID `json:"id"`
}

// ResponseSubmission is one answer posted by a respondent.
type ResponseSubmission struct {
	PhoneNumber    string `json:"phoneNumber"`
	Username       string `json:"username"`
	QuestionID     ID     `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
	QuizID         ID     `json:"quizId"`
}

// ResultRow is one scoreboard line.
type ResultRow struct {
	ParticipantID   ID        `json:"participantId"`
	Username        string    `json:"username"`
	Score           int       `json:"score"`
	QuizID          ID        `json:"quizId"`
	LastSubmittedAt StartTime `json:"lastSubmittedAt"`
	QuestionIDs     []ID      `json:"questionIds"`
}

// ResultsPage is one page of the scoreboard.
type ResultsPage struct {
	Page         int         `json:"page"`
	Size         int         `json:"size"`
	TotalPages   int         `json:"totalPages"`
	TotalResults int         `json:"totalResults"`
	Results      []ResultRow `json:"results"`
}

// ArchivedQuiz is the local record of a quiz this client created.
type ArchivedQuiz struct {
	ID           ID
	Title        string
	Participants []Participant
	CreatedAt    time.Time
}
