package memory

import (
	"context"
	"sync"

	"quizapp-client/internal/domain"
)

// InviteLedger is an in-memory implementation of app.InviteLedger.
type InviteLedger struct {
	mu      sync.Mutex
	invited map[domain.ID]map[domain.PhoneNumber]struct{}
}

func NewInviteLedger() *InviteLedger {
	return &InviteLedger{
		invited: make(map[domain.ID]map[domain.PhoneNumber]struct{}),
	}
}

func (l *InviteLedger) MarkInvited(_ context.Context, quizID domain.ID, phone domain.PhoneNumber) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	set, ok := l.invited[quizID]
	if !ok {
		set = make(map[domain.PhoneNumber]struct{})
		l.invited[quizID] = set
	}
	if _, seen := set[phone]; seen {
		return false, nil
	}
	set[phone] = struct{}{}
	return true, nil
}

func (l *InviteLedger) Forget(_ context.Context, quizID domain.ID, phone domain.PhoneNumber) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	set, ok := l.invited[quizID]
	if !ok {
		return nil
	}
	delete(set, phone)
	if len(set) == 0 {
		delete(l.invited, quizID)
	}
	return nil
}
