package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"lms-service/internal/config"
	"lms-service/internal/util"
)

var ErrDeliveryFailed = errors.New("sms delivery failed")

type Sender interface {
	Send(ctx context.Context, toNumber, message string) error
}

type TwilioSender struct {
	client     *twilio.RestClient
	fromNumber string
}

var _ Sender = (*TwilioSender)(nil)

func NewTwilioSender(cfg *config.Config) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.SMS.AccountSID,
		Password: cfg.SMS.AuthToken,
	})
	return &TwilioSender{
		client:     client,
		fromNumber: cfg.SMS.FromNumber,
	}
}

func (s *TwilioSender) Send(ctx context.Context, toNumber, message string) error {
	// Without configured credentials the message is logged, not sent.
	// Keeps local development working without a Twilio account.
	if s.fromNumber == "" {
		util.Info("SMS sending skipped, no from number configured",
			zap.String("to", toNumber))
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(s.fromNumber)
	params.SetBody(message)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}

// RetryingSender wraps a Sender with a fixed number of attempts and a fixed
// delay between them. The gateway treats exhaustion as ErrDeliveryFailed
// without unwinding whatever state was written before the send.
type RetryingSender struct {
	inner       Sender
	maxAttempts int
	retryDelay  time.Duration
}

var _ Sender = (*RetryingSender)(nil)

func NewRetryingSender(inner Sender, maxAttempts int, retryDelay time.Duration) *RetryingSender {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingSender{
		inner:       inner,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
	}
}

func (s *RetryingSender) Send(ctx context.Context, toNumber, message string) error {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.inner.Send(ctx, toNumber, message)
		if lastErr == nil {
			if attempt > 1 {
				util.Info("SMS delivered after retry",
					zap.String("to", toNumber),
					zap.Int("attempt", attempt))
			}
			return nil
		}

		util.Warn("SMS attempt failed",
			zap.String("to", toNumber),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))

		if attempt < s.maxAttempts {
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrDeliveryFailed, ctx.Err())
			}
		}
	}

	if !errors.Is(lastErr, ErrDeliveryFailed) {
		lastErr = fmt.Errorf("%w: %v", ErrDeliveryFailed, lastErr)
	}
	return lastErr
}
