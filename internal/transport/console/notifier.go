package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"quizapp-client/internal/app"
	"quizapp-client/internal/domain"
)

// Notifier prints notices as single prefixed lines.
type Notifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewNotifier(out io.Writer) *Notifier {
	return &Notifier{out: out}
}

func (n *Notifier) Notify(level app.NoticeLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "[%s] %s\n", strings.ToUpper(level.String()), message)
}

// LinkSender "sends" an invite by printing a click-to-chat link for the organizer to open.
type LinkSender struct {
	mu  sync.Mutex
	out io.Writer
}

func NewLinkSender(out io.Writer) *LinkSender {
	return &LinkSender{out: out}
}

func (s *LinkSender) Send(_ context.Context, phone domain.PhoneNumber, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.out, "%s: %s\n", phone, app.WhatsAppLink(phone, message))
	return err
}
