package sms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySender struct {
	failures int
	calls    int
}

func (s *flakySender) Send(ctx context.Context, toNumber, message string) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("gateway timeout")
	}
	return nil
}

func TestRetryingSender_SucceedsAfterRetry(t *testing.T) {
	inner := &flakySender{failures: 2}
	sender := NewRetryingSender(inner, 3, time.Millisecond)

	require.NoError(t, sender.Send(context.Background(), "0712345678", "code 123456"))
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingSender_ExhaustionIsDeliveryFailure(t *testing.T) {
	inner := &flakySender{failures: 10}
	sender := NewRetryingSender(inner, 3, time.Millisecond)

	err := sender.Send(context.Background(), "0712345678", "code 123456")
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryingSender_StopsOnCancelledContext(t *testing.T) {
	inner := &flakySender{failures: 10}
	sender := NewRetryingSender(inner, 5, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sender.Send(ctx, "0712345678", "code 123456")
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryingSender_MinimumOneAttempt(t *testing.T) {
	inner := &flakySender{}
	sender := NewRetryingSender(inner, 0, time.Millisecond)

	require.NoError(t, sender.Send(context.Background(), "0712345678", "hello"))
	assert.Equal(t, 1, inner.calls)
}
