package app

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"quizapp-client/internal/domain"
)

// DefaultInviteDelay spaces outbound invites so the messaging surface is not flooded.
const DefaultInviteDelay = time.Second

// Sender delivers one invite message to one participant.
type Sender interface {
	Send(ctx context.Context, phone domain.PhoneNumber, message string) error
}

// InviteStatus is the outcome for one participant.
type InviteStatus string

const (
	InviteSent    InviteStatus = "sent"
	InviteSkipped InviteStatus = "already-invited"
	InviteInvalid InviteStatus = "invalid-number"
	InviteFailed  InviteStatus = "failed"
)

// InviteResult reports one participant's dispatch.
type InviteResult struct {
	PhoneNumber string
	Link        string
	Status      InviteStatus
	Err         error
}

// InviteService builds invite links and dispatches them one participant at a time.
type InviteService struct {
	origin  string
	sender  Sender
	ledger  InviteLedger
	limiter *rate.Limiter
}

// NewInviteService paces sends with delay between participants. ledger may be nil.
func NewInviteService(origin string, sender Sender, ledger InviteLedger, delay time.Duration) *InviteService {
	if delay <= 0 {
		delay = DefaultInviteDelay
	}
	return &InviteService{
		origin:  strings.TrimSuffix(origin, "/"),
		sender:  sender,
		ledger:  ledger,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Link returns the respondent entry link for one participant.
func (s *InviteService) Link(quizID domain.ID, phone string) string {
	return InviteLink(s.origin, quizID, phone)
}

// InviteLink formats {origin}/quiz/respond?quizId={id}&phoneNumber={number}.
func InviteLink(origin string, quizID domain.ID, phone string) string {
	return fmt.Sprintf("%s/quiz/respond?quizId=%s&phoneNumber=%s",
		strings.TrimSuffix(origin, "/"), url.QueryEscape(quizID.String()), url.QueryEscape(phone))
}

// ParseInviteLink extracts the quiz id and phone number from an invite link. Either value may
// come back empty; the respondent flow decides what a missing parameter means.
func ParseInviteLink(raw string) (domain.ID, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("parse invite link: %w", err)
	}
	q := u.Query()
	return domain.ID(q.Get("quizId")), q.Get("phoneNumber"), nil
}

// InviteMessage is the text sent to a participant.
func InviteMessage(link string) string {
	return "Hello! You've been invited to participate in a quiz.\n\n" +
		"To start the quiz:\n" +
		"1. Click this link: " + link + "\n" +
		"2. Enter your username\n" +
		"3. Answer each question before the timer runs out\n\n" +
		"The quiz will save your answers automatically as you progress.\n\n" +
		"Good luck! 🎯"
}

// WhatsAppLink builds a click-to-chat link with the message pre-filled.
func WhatsAppLink(phone domain.PhoneNumber, message string) string {
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return "https://wa.me/" + phone.International() + "/?text=" + text
}

// Dispatch invites every participant, skipping malformed numbers and numbers already invited
// to this quiz unless resend is set. Only a canceled ctx aborts the run.
func (s *InviteService) Dispatch(ctx context.Context, quizID domain.ID, participants []domain.Participant, resend bool) ([]InviteResult, error) {
	results := make([]InviteResult, 0, len(participants))
	for _, p := range participants {
		res := InviteResult{PhoneNumber: p.PhoneNumber}
		phone, err := domain.ValidatePhoneNumber(p.PhoneNumber)
		if err != nil {
			res.Status, res.Err = InviteInvalid, err
			results = append(results, res)
			continue
		}
		res.PhoneNumber = phone.String()
		res.Link = s.Link(quizID, phone.String())

		if s.ledger != nil && !resend {
			fresh, err := s.ledger.MarkInvited(ctx, quizID, phone)
			if err != nil {
				log.Printf("invite ledger for quiz %s: %v", quizID, err)
			} else if !fresh {
				res.Status = InviteSkipped
				results = append(results, res)
				continue
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return results, err
		}
		if err := s.sender.Send(ctx, phone, InviteMessage(res.Link)); err != nil {
			log.Printf("send invite for quiz %s to %s: %v", quizID, phone, err)
			res.Status, res.Err = InviteFailed, err
			if s.ledger != nil && !resend {
				if ferr := s.ledger.Forget(ctx, quizID, phone); ferr != nil {
					log.Printf("invite ledger forget %s: %v", phone, ferr)
				}
			}
		} else {
			res.Status = InviteSent
			if s.ledger != nil && resend {
				if _, err := s.ledger.MarkInvited(ctx, quizID, phone); err != nil {
					log.Printf("invite ledger for quiz %s: %v", quizID, err)
				}
			}
		}
		results = append(results, res)
	}
	return results, nil
}
