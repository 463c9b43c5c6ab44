package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"quizapp-client/internal/domain"
)

// InviteLedger records invited numbers in one Redis set per quiz so repeated `invite` runs,
// from any machine, do not message the same participant twice.
// Layout: SADD quiz:{quizID}:invited {phone}
type InviteLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewInviteLedger(client *redis.Client, ttl time.Duration) *InviteLedger {
	return &InviteLedger{client: client, ttl: ttl}
}

func (l *InviteLedger) MarkInvited(ctx context.Context, quizID domain.ID, phone domain.PhoneNumber) (bool, error) {
	key := l.key(quizID)
	pipe := l.client.TxPipeline()
	added := pipe.SAdd(ctx, key, phone.String())
	if l.ttl > 0 {
		pipe.Expire(ctx, key, l.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return added.Val() == 1, nil
}

func (l *InviteLedger) Forget(ctx context.Context, quizID domain.ID, phone domain.PhoneNumber) error {
	return l.client.SRem(ctx, l.key(quizID), phone.String()).Err()
}

func (l *InviteLedger) key(quizID domain.ID) string {
	return "quiz:" + quizID.String() + ":invited"
}
