package app_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"quizapp-client/internal/app"
	"quizapp-client/internal/domain"
	"quizapp-client/internal/infra/memory"
)

type stubSender struct {
	mu    sync.Mutex
	fail  map[domain.PhoneNumber]bool
	times []time.Time
	sent  []string
}

func (s *stubSender) Send(_ context.Context, phone domain.PhoneNumber, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail[phone] {
		return errors.New("rejected")
	}
	s.times = append(s.times, time.Now())
	s.sent = append(s.sent, message)
	return nil
}

func TestInviteLinkAndMessage(t *testing.T) {
	link := app.InviteLink("https://quiz.example.com/", "7", "0612345678")
	if link != "https://quiz.example.com/quiz/respond?quizId=7&phoneNumber=0612345678" {
		t.Fatalf("unexpected link %s", link)
	}
	id, phone, err := app.ParseInviteLink(link)
	if err != nil || id != "7" || phone != "0612345678" {
		t.Fatalf("round trip failed: %q %q %v", id, phone, err)
	}

	msg := app.InviteMessage(link)
	if !strings.Contains(msg, "1. Click this link: "+link) || !strings.HasPrefix(msg, "Hello! You've been invited") {
		t.Fatalf("unexpected message %q", msg)
	}

	wa := app.WhatsAppLink("0612345678", msg)
	if !strings.HasPrefix(wa, "https://wa.me/31612345678/?text=") {
		t.Fatalf("unexpected whatsapp link %s", wa)
	}
	if strings.Contains(wa, "+") {
		t.Fatalf("spaces must be encoded as %%20, got %s", wa)
	}
	text, err := url.QueryUnescape(strings.TrimPrefix(wa, "https://wa.me/31612345678/?text="))
	if err != nil || text != msg {
		t.Fatalf("message must survive encoding, got %q %v", text, err)
	}
}

func TestDispatchSkipsInvalidAndAlreadyInvited(t *testing.T) {
	sender := &stubSender{fail: map[domain.PhoneNumber]bool{"0600000000": true}}
	ledger := memory.NewInviteLedger()
	svc := app.NewInviteService("https://quiz.example.com", sender, ledger, time.Millisecond)
	participants := []domain.Participant{
		{PhoneNumber: "06 1234 5678"},
		{PhoneNumber: "0712345678"},
		{PhoneNumber: "0600000000"},
	}

	results, err := svc.Dispatch(context.Background(), "7", participants, false)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	statuses := []app.InviteStatus{results[0].Status, results[1].Status, results[2].Status}
	if statuses[0] != app.InviteSent || statuses[1] != app.InviteInvalid || statuses[2] != app.InviteFailed {
		t.Fatalf("unexpected statuses %v", statuses)
	}
	if results[0].Link != "https://quiz.example.com/quiz/respond?quizId=7&phoneNumber=0612345678" {
		t.Fatalf("unexpected link %s", results[0].Link)
	}

	results, _ = svc.Dispatch(context.Background(), "7", participants, false)
	if results[0].Status != app.InviteSkipped {
		t.Fatalf("expected already-invited skip, got %s", results[0].Status)
	}
	if results[2].Status != app.InviteFailed {
		t.Fatalf("a failed send must be retried, got %s", results[2].Status)
	}

	results, _ = svc.Dispatch(context.Background(), "7", participants[:1], true)
	if results[0].Status != app.InviteSent {
		t.Fatalf("resend must send again, got %s", results[0].Status)
	}
}

type brokenLedger struct{ forgets int }

func (l *brokenLedger) MarkInvited(context.Context, domain.ID, domain.PhoneNumber) (bool, error) {
	return false, errors.New("ledger down")
}

func (l *brokenLedger) Forget(context.Context, domain.ID, domain.PhoneNumber) error {
	l.forgets++
	return nil
}

func TestDispatchResendLogsLedgerFailure(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	sender := &stubSender{fail: map[domain.PhoneNumber]bool{"0600000000": true}}
	ledger := &brokenLedger{}
	svc := app.NewInviteService("https://quiz.example.com", sender, ledger, time.Millisecond)
	participants := []domain.Participant{{PhoneNumber: "0612345678"}, {PhoneNumber: "0600000000"}}

	results, err := svc.Dispatch(context.Background(), "7", participants, true)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if results[0].Status != app.InviteSent || results[1].Status != app.InviteFailed {
		t.Fatalf("unexpected statuses %s %s", results[0].Status, results[1].Status)
	}
	if !strings.Contains(logs.String(), "invite ledger for quiz 7: ledger down") {
		t.Fatalf("expected ledger failure in log, got %q", logs.String())
	}
	if ledger.forgets != 0 {
		t.Fatalf("a failed resend must keep the earlier invite record, got %d forgets", ledger.forgets)
	}
}

func TestDispatchPacesSends(t *testing.T) {
	sender := &stubSender{}
	svc := app.NewInviteService("https://quiz.example.com", sender, nil, 20*time.Millisecond)
	participants := []domain.Participant{{PhoneNumber: "0611111111"}, {PhoneNumber: "0622222222"}, {PhoneNumber: "0633333333"}}
	if _, err := svc.Dispatch(context.Background(), "7", participants, false); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(sender.times) != 3 {
		t.Fatalf("expected 3 sends, got %d", len(sender.times))
	}
	if gap := sender.times[2].Sub(sender.times[0]); gap < 30*time.Millisecond {
		t.Fatalf("expected sends to be spaced, total gap %s", gap)
	}
}

func TestDispatchStopsOnCancel(t *testing.T) {
	svc := app.NewInviteService("https://quiz.example.com", &stubSender{}, nil, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := svc.Dispatch(ctx, "7", []domain.Participant{{PhoneNumber: "0611111111"}}, false)
	if err == nil || len(results) != 0 {
		t.Fatalf("expected canceled dispatch, got %v %v", results, err)
	}
}
