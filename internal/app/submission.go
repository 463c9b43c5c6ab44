package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"quizapp-client/internal/domain"
)

const genericSubmitFailure = "An error occurred while creating the quiz"

// ServerMessenger is implemented by transport errors that carry a message from the server.
type ServerMessenger interface {
	ServerMessage() string
}

// Submitter posts completed drafts and turns the response into a quiz id.
type Submitter struct {
	api     QuizAPI
	archive QuizArchive
	now     func() time.Time
}

// NewSubmitter builds a submitter. archive may be nil.
func NewSubmitter(api QuizAPI, archive QuizArchive) *Submitter {
	return &Submitter{api: api, archive: archive, now: time.Now}
}

// Submit validates phone numbers, posts the draft and requires a non-empty id back.
// The draft is never modified.
func (s *Submitter) Submit(ctx context.Context, draft domain.QuizDraft) (domain.ID, error) {
	payload := draft.Clone()
	for i, p := range payload.Participants {
		phone, err := domain.ValidatePhoneNumber(p.PhoneNumber)
		if err != nil {
			return "", &domain.ValidationError{
				Step:    StepNameParticipants,
				Index:   i,
				Message: err.Error(),
				Err:     domain.ErrInvalidPhoneNumber,
			}
		}
		payload.Participants[i].PhoneNumber = phone.String()
	}
	payload.StartTime = domain.StartTime(payload.StartTime.Time().Truncate(time.Second))
	payload.Closed = false

	created, err := s.api.CreateQuiz(ctx, payload)
	if err != nil {
		return "", fmt.Errorf("create quiz: %w", err)
	}
	if strings.TrimSpace(created.ID.String()) == "" {
		return "", domain.ErrMissingID
	}

	if s.archive != nil {
		record := domain.ArchivedQuiz{
			ID:           created.ID,
			Title:        payload.Title,
			Participants: payload.Participants,
			CreatedAt:    s.now(),
		}
		if err := s.archive.Save(ctx, record); err != nil {
			log.Printf("archive quiz %s: %v", created.ID, err)
		}
	}
	return created.ID, nil
}

// UserMessage picks the text shown for a failed submission: validation text, the server's own
// message when it sent one, otherwise a generic failure string.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs.First().Error()
	}
	var sm ServerMessenger
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}
	if errors.Is(err, domain.ErrMissingID) || errors.Is(err, domain.ErrEmptyResponse) {
		return "The server did not return a quiz id"
	}
	return genericSubmitFailure
}
