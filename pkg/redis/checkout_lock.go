package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// releaseIfMatch deletes the lock only while it still holds our token, so a
// slow request cannot release a lock a newer request has since acquired.
const releaseIfMatch = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`

// CheckoutLock serialises order placement per user: the cart is read and
// cleared under one holder at a time.
type CheckoutLock struct {
	client *Client
	ttl    time.Duration
}

// NewCheckoutLock builds the per-user placement lock helper.
func NewCheckoutLock(client *Client, ttl time.Duration) *CheckoutLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CheckoutLock{client: client, ttl: ttl}
}

func checkoutLockKey(userID int64) string {
	return fmt.Sprintf("%s:checkout_lock:%d", keyNamespace, userID)
}

// Acquire takes the lock for the user and returns the release token.
// ok is false when another placement for the same user is in flight.
func (l *CheckoutLock) Acquire(ctx context.Context, userID int64) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = l.client.SetNX(ctx, checkoutLockKey(userID), token, l.ttl)
	if err != nil {
		return "", false, fmt.Errorf("acquire checkout lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock when the token still matches.
func (l *CheckoutLock) Release(ctx context.Context, userID int64, token string) error {
	err := l.client.store.Eval(ctx, releaseIfMatch, []string{checkoutLockKey(userID)}, token).Err()
	if err != nil && !IsNil(err) {
		return fmt.Errorf("release checkout lock: %w", err)
	}
	return nil
}
