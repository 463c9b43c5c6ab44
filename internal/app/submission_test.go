package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quizapp-client/internal/app"
	"quizapp-client/internal/domain"
	"quizapp-client/internal/infra/memory"
)

type serverError struct{ msg string }

func (e serverError) Error() string         { return "status 400: " + e.msg }
func (e serverError) ServerMessage() string { return e.msg }

func TestSubmitterPostsNormalizedDraftAndArchives(t *testing.T) {
	api := &fakeAPI{createdID: "42"}
	archive := memory.NewQuizArchive()
	submitter := app.NewSubmitter(api, archive)

	draft := completeDraft()
	draft.StartTime = domain.StartTime(fixedNow.Add(750 * time.Millisecond))
	draft.Closed = true
	draft.Participants[0].PhoneNumber = "06-12 34 56 78"

	id, err := submitter.Submit(context.Background(), draft)
	if err != nil || id != "42" {
		t.Fatalf("submit: %q %v", id, err)
	}
	posted := api.drafts[0]
	if posted.Closed || !posted.StartTime.Time().Equal(fixedNow) || posted.Participants[0].PhoneNumber != "0612345678" {
		t.Fatalf("unexpected payload %+v", posted)
	}
	if draft.Participants[0].PhoneNumber != "06-12 34 56 78" {
		t.Fatalf("caller's draft must not be modified")
	}
	record, err := archive.Get(context.Background(), "42")
	if err != nil || record.Title != "Geography" {
		t.Fatalf("expected archived record, got %+v %v", record, err)
	}
}

func TestSubmitterRejectsBadPhoneBeforePosting(t *testing.T) {
	api := &fakeAPI{createdID: "42"}
	draft := completeDraft()
	draft.Participants = append(draft.Participants, domain.Participant{PhoneNumber: "0512345678"})

	_, err := app.NewSubmitter(api, nil).Submit(context.Background(), draft)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Index != 1 || !errors.Is(err, domain.ErrInvalidPhoneNumber) {
		t.Fatalf("expected participant 2 phone error, got %v", err)
	}
	if len(api.drafts) != 0 {
		t.Fatalf("nothing may be posted")
	}
}

func TestSubmitterRequiresID(t *testing.T) {
	api := &fakeAPI{createdID: " "}
	_, err := app.NewSubmitter(api, nil).Submit(context.Background(), completeDraft())
	if !errors.Is(err, domain.ErrMissingID) {
		t.Fatalf("expected missing id, got %v", err)
	}
}

func TestUserMessage(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&domain.ValidationError{Index: -1, Message: "Please enter a quiz title", Err: domain.ErrEmptyTitle}, "Please enter a quiz title"},
		{fmt.Errorf("create quiz: %w", serverError{"Duration must be at least 30 seconds"}), "Duration must be at least 30 seconds"},
		{fmt.Errorf("create quiz: %w", serverError{""}), "An error occurred while creating the quiz"},
		{domain.ErrMissingID, "The server did not return a quiz id"},
		{errors.New("dial tcp: connection refused"), "An error occurred while creating the quiz"},
	}
	for _, tc := range cases {
		if got := app.UserMessage(tc.err); got != tc.want {
			t.Fatalf("UserMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
